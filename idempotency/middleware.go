package idempotency

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type recorder struct {
	http.ResponseWriter
	body bytes.Buffer
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Middleware guards a route with the store. Requests without the header pass
// through untouched, and so does every request when Redis is unreachable.
func (s *Store) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(HeaderKey)
			if key == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			fingerprint := Fingerprint(c.Request().Method+" "+c.Request().URL.Path, key)

			record, err := s.Begin(ctx, fingerprint)
			switch {
			case errors.Is(err, ErrInFlight):
				return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
			case err != nil:
				s.logger.Warn("idempotency store unavailable", zap.Error(err))
				return next(c)
			case record != nil:
				return replay(c, record)
			}

			rec := &recorder{ResponseWriter: c.Response().Writer}
			c.Response().Writer = rec

			handlerErr := next(c)

			status := c.Response().Status
			if handlerErr != nil || status >= http.StatusInternalServerError || !c.Response().Committed {
				if err = s.Release(ctx, fingerprint); err != nil {
					s.logger.Warn("failed to release idempotency key", zap.Error(err))
				}
				return handlerErr
			}

			if err = s.Complete(ctx, fingerprint, status, rec.body.Bytes()); err != nil {
				s.logger.Warn("failed to store idempotent response", zap.Error(err))
			}
			return nil
		}
	}
}

// replay answers with the stored body. A stored 201 is replayed as 200
// since nothing new was created by this request.
func replay(c echo.Context, record *Record) error {
	status := record.Status
	if status == http.StatusCreated || status == 0 {
		status = http.StatusOK
	}
	c.Response().Header().Set(HeaderReplayed, "true")
	if len(record.Body) == 0 {
		return c.NoContent(status)
	}
	return c.JSONBlob(status, record.Body)
}
