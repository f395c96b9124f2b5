package reward

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"goflare.io/loyalty/apperr"
	"goflare.io/loyalty/driver"
	"goflare.io/loyalty/models"
)

var _ Repository = (*repository)(nil)

type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, reward *models.Reward) error
	GetByID(ctx context.Context, tx pgx.Tx, id uint64) (*models.Reward, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*models.Reward, error)
	Update(ctx context.Context, tx pgx.Tx, reward *models.Reward) error
	ListAvailable(ctx context.Context, tx pgx.Tx, customerID uint64) ([]*models.Reward, error)
	ListByBusiness(ctx context.Context, tx pgx.Tx, businessID uint64) ([]*models.Reward, error)
}

type repository struct {
	conn   driver.PostgresPool
	logger *zap.Logger
}

const rewardColumns = `id, customer_id, business_id, earned, redeemed, earned_at, redeemed_at, expires_at`

func NewRepository(conn driver.PostgresPool, logger *zap.Logger) Repository {
	return &repository{
		conn:   conn,
		logger: logger,
	}
}

func scanReward(row pgx.Row) (*models.Reward, error) {
	reward := models.NewReward()
	err := row.Scan(
		&reward.ID,
		&reward.CustomerID,
		&reward.BusinessID,
		&reward.Earned,
		&reward.Redeemed,
		&reward.EarnedAt,
		&reward.RedeemedAt,
		&reward.ExpiresAt,
	)
	return reward, err
}

func (r *repository) Create(ctx context.Context, tx pgx.Tx, reward *models.Reward) error {
	const query = `
	INSERT INTO rewards (customer_id, business_id, earned, redeemed, earned_at, redeemed_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id`

	if err := driver.WithTx(r.conn, tx).QueryRow(ctx, query,
		reward.CustomerID,
		reward.BusinessID,
		reward.Earned,
		reward.Redeemed,
		reward.EarnedAt,
		reward.RedeemedAt,
		reward.ExpiresAt,
	).Scan(&reward.ID); err != nil {
		r.logger.Error("error creating reward", zap.Error(err))
		return apperr.Unexpected("failed to create reward", err)
	}
	return nil
}

func (r *repository) get(ctx context.Context, tx pgx.Tx, query string, id uint64) (*models.Reward, error) {
	reward, err := scanReward(driver.WithTx(r.conn, tx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("reward", id)
		}
		r.logger.Error("error getting reward", zap.Error(err))
		return nil, apperr.Unexpected("failed to get reward", err)
	}
	return reward, nil
}

func (r *repository) GetByID(ctx context.Context, tx pgx.Tx, id uint64) (*models.Reward, error) {
	return r.get(ctx, tx, `SELECT `+rewardColumns+` FROM rewards WHERE id = $1`, id)
}

// GetByIDForUpdate locks the reward row until tx ends.
func (r *repository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*models.Reward, error) {
	return r.get(ctx, tx, `SELECT `+rewardColumns+` FROM rewards WHERE id = $1 FOR UPDATE`, id)
}

func (r *repository) Update(ctx context.Context, tx pgx.Tx, reward *models.Reward) error {
	const query = `UPDATE rewards SET redeemed = $2, redeemed_at = $3 WHERE id = $1`

	tag, err := driver.WithTx(r.conn, tx).Exec(ctx, query, reward.ID, reward.Redeemed, reward.RedeemedAt)
	if err != nil {
		return apperr.Unexpected("failed to update reward", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("reward", reward.ID)
	}
	return nil
}

func (r *repository) ListAvailable(ctx context.Context, tx pgx.Tx, customerID uint64) ([]*models.Reward, error) {
	query := `SELECT ` + rewardColumns + ` FROM rewards
	WHERE customer_id = $1 AND earned = TRUE AND redeemed = FALSE
	ORDER BY earned_at, id`
	return r.list(ctx, tx, query, customerID)
}

func (r *repository) ListByBusiness(ctx context.Context, tx pgx.Tx, businessID uint64) ([]*models.Reward, error) {
	query := `SELECT ` + rewardColumns + ` FROM rewards WHERE business_id = $1 ORDER BY earned_at, id`
	return r.list(ctx, tx, query, businessID)
}

func (r *repository) list(ctx context.Context, tx pgx.Tx, query string, id uint64) ([]*models.Reward, error) {
	rows, err := driver.WithTx(r.conn, tx).Query(ctx, query, id)
	if err != nil {
		r.logger.Error("error listing rewards", zap.Error(err))
		return nil, apperr.Unexpected("failed to list rewards", err)
	}
	defer rows.Close()

	rewards := make([]*models.Reward, 0)
	for rows.Next() {
		reward, err := scanReward(rows)
		if err != nil {
			return nil, apperr.Unexpected("failed to scan reward", err)
		}
		rewards = append(rewards, reward)
	}
	if err = rows.Err(); err != nil {
		return nil, apperr.Unexpected("failed to list rewards", err)
	}

	return rewards, nil
}
