package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFound("customer", 7)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrAlreadyRedeemed))
	assert.Equal(t, "NOT_FOUND: customer 7 not found", err.Error())
}

func TestError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("failed to check in: %w", AlreadyRedeemed(3))

	assert.True(t, errors.Is(err, ErrAlreadyRedeemed))
	assert.Equal(t, CodeAlreadyRedeemed, CodeOf(err))
}

func TestUnexpected_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Unexpected("failed to load visits", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrUnexpected))
	assert.Equal(t, CodeUnexpected, CodeOf(errors.New("plain")))
}
