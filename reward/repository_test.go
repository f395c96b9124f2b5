package reward

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"goflare.io/loyalty/apperr"
	"goflare.io/loyalty/models"
)

var rewardRowColumns = []string{"id", "customer_id", "business_id", "earned", "redeemed",
	"earned_at", "redeemed_at", "expires_at"}

var earnedAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newMockRepository(t *testing.T) (pgxmock.PgxPoolIface, Repository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewRepository(mock, zap.NewNop())
}

func TestRepositoryCreate(t *testing.T) {
	mock, repo := newMockRepository(t)
	expires := earnedAt.AddDate(0, 0, 30)

	mock.ExpectQuery(`INSERT INTO rewards`).
		WithArgs(uint64(5), uint64(1), true, false, earnedAt, pgxmock.AnyArg(), expires).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(uint64(11)))

	r := &models.Reward{CustomerID: 5, BusinessID: 1, Earned: true, EarnedAt: earnedAt, ExpiresAt: expires}
	require.NoError(t, repo.Create(context.Background(), nil, r))

	assert.Equal(t, uint64(11), r.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByIDForUpdate(t *testing.T) {
	mock, repo := newMockRepository(t)
	redeemedAt := earnedAt.Add(48 * time.Hour)

	mock.ExpectQuery(`FROM rewards WHERE id = \$1 FOR UPDATE`).
		WithArgs(uint64(11)).
		WillReturnRows(pgxmock.NewRows(rewardRowColumns).
			AddRow(uint64(11), uint64(5), uint64(1), true, true, earnedAt, &redeemedAt, earnedAt.AddDate(0, 0, 30)))

	r, err := repo.GetByIDForUpdate(context.Background(), nil, 11)
	require.NoError(t, err)

	assert.True(t, r.Redeemed)
	require.NotNil(t, r.RedeemedAt)
	assert.Equal(t, redeemedAt, *r.RedeemedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByID_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"missing", pgx.ErrNoRows, apperr.ErrNotFound},
		{"connection lost", errors.New("connection reset"), apperr.ErrUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, repo := newMockRepository(t)
			mock.ExpectQuery(`FROM rewards WHERE id = \$1`).
				WithArgs(uint64(99)).
				WillReturnError(tt.err)

			_, err := repo.GetByID(context.Background(), nil, 99)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepositoryUpdate(t *testing.T) {
	redeemedAt := earnedAt.Add(time.Hour)

	t.Run("marks redeemed", func(t *testing.T) {
		mock, repo := newMockRepository(t)
		mock.ExpectExec(`UPDATE rewards SET redeemed = \$2, redeemed_at = \$3 WHERE id = \$1`).
			WithArgs(uint64(11), true, &redeemedAt).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		r := &models.Reward{ID: 11, Redeemed: true, RedeemedAt: &redeemedAt}
		require.NoError(t, repo.Update(context.Background(), nil, r))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		mock, repo := newMockRepository(t)
		mock.ExpectExec(`UPDATE rewards`).
			WithArgs(uint64(12), true, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(context.Background(), nil, &models.Reward{ID: 12, Redeemed: true, RedeemedAt: &redeemedAt})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepositoryListAvailable_FiltersUnredeemedEarned(t *testing.T) {
	mock, repo := newMockRepository(t)
	mock.ExpectQuery(`WHERE customer_id = \$1 AND earned = TRUE AND redeemed = FALSE\s+ORDER BY earned_at, id`).
		WithArgs(uint64(5)).
		WillReturnRows(pgxmock.NewRows(rewardRowColumns).
			AddRow(uint64(11), uint64(5), uint64(1), true, false, earnedAt, nil, earnedAt.AddDate(0, 0, 30)).
			AddRow(uint64(14), uint64(5), uint64(1), true, false, earnedAt.Add(time.Hour), nil, earnedAt.AddDate(0, 0, 31)))

	rewards, err := repo.ListAvailable(context.Background(), nil, 5)
	require.NoError(t, err)

	require.Len(t, rewards, 2)
	assert.Equal(t, uint64(11), rewards[0].ID)
	assert.Equal(t, uint64(14), rewards[1].ID)
	for _, r := range rewards {
		assert.True(t, r.Available())
		assert.Nil(t, r.RedeemedAt)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListAvailable_EmptyIsNotNil(t *testing.T) {
	mock, repo := newMockRepository(t)
	mock.ExpectQuery(`FROM rewards`).
		WithArgs(uint64(5)).
		WillReturnRows(pgxmock.NewRows(rewardRowColumns))

	rewards, err := repo.ListAvailable(context.Background(), nil, 5)
	require.NoError(t, err)
	assert.NotNil(t, rewards)
	assert.Empty(t, rewards)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListByBusiness(t *testing.T) {
	mock, repo := newMockRepository(t)
	redeemedAt := earnedAt.Add(time.Hour)

	mock.ExpectQuery(`FROM rewards WHERE business_id = \$1 ORDER BY earned_at, id`).
		WithArgs(uint64(1)).
		WillReturnRows(pgxmock.NewRows(rewardRowColumns).
			AddRow(uint64(11), uint64(5), uint64(1), true, true, earnedAt, &redeemedAt, earnedAt.AddDate(0, 0, 30)).
			AddRow(uint64(14), uint64(6), uint64(1), true, false, earnedAt, nil, earnedAt.AddDate(0, 0, 30)))

	rewards, err := repo.ListByBusiness(context.Background(), nil, 1)
	require.NoError(t, err)

	require.Len(t, rewards, 2)
	assert.False(t, rewards[0].Available())
	assert.True(t, rewards[1].Available())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListByBusiness_QueryError(t *testing.T) {
	mock, repo := newMockRepository(t)
	mock.ExpectQuery(`FROM rewards WHERE business_id`).
		WithArgs(uint64(1)).
		WillReturnError(errors.New("statement timeout"))

	_, err := repo.ListByBusiness(context.Background(), nil, 1)
	assert.ErrorIs(t, err, apperr.ErrUnexpected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
