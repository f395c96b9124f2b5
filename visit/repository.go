package visit

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"goflare.io/loyalty/apperr"
	"goflare.io/loyalty/driver"
	"goflare.io/loyalty/models"
)

var _ Repository = (*repository)(nil)

type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, visit *models.Visit) error
	ListRecent(ctx context.Context, tx pgx.Tx, businessID uint64, limit int) ([]*models.VisitWithCustomer, error)
	ListByCustomer(ctx context.Context, tx pgx.Tx, customerID uint64) ([]*models.Visit, error)
	ListByBusiness(ctx context.Context, tx pgx.Tx, businessID uint64) ([]*models.Visit, error)
}

type repository struct {
	conn   driver.PostgresPool
	logger *zap.Logger
}

const visitColumns = `v.id, v.customer_id, v.business_id, v.visit_date, v.reward_earned,
	v.service_type, v.amount_spent, COALESCE(v.notes, ''), v.rating`

func NewRepository(conn driver.PostgresPool, logger *zap.Logger) Repository {
	return &repository{
		conn:   conn,
		logger: logger,
	}
}

func visitDest(v *models.Visit) []any {
	return []any{
		&v.ID,
		&v.CustomerID,
		&v.BusinessID,
		&v.VisitDate,
		&v.RewardEarned,
		&v.ServiceType,
		&v.AmountSpent,
		&v.Notes,
		&v.Rating,
	}
}

func (r *repository) Create(ctx context.Context, tx pgx.Tx, visit *models.Visit) error {
	const query = `
	INSERT INTO visits (customer_id, business_id, visit_date, reward_earned, service_type, amount_spent, notes, rating)
	VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
	RETURNING id`

	if err := driver.WithTx(r.conn, tx).QueryRow(ctx, query,
		visit.CustomerID,
		visit.BusinessID,
		visit.VisitDate,
		visit.RewardEarned,
		visit.ServiceType,
		visit.AmountSpent,
		visit.Notes,
		visit.Rating,
	).Scan(&visit.ID); err != nil {
		r.logger.Error("error creating visit", zap.Error(err))
		return apperr.Unexpected("failed to create visit", err)
	}
	return nil
}

func (r *repository) ListRecent(ctx context.Context, tx pgx.Tx, businessID uint64, limit int) ([]*models.VisitWithCustomer, error) {
	query := `
	SELECT ` + visitColumns + `,
	       c.id, c.business_id, c.name, c.phone, COALESCE(c.email, ''), c.visits,
	       c.rewards_earned, c.rewards_redeemed, c.total_spent, c.last_visit, c.sms_opt_in, c.created_at
	FROM visits v
	JOIN customers c ON c.id = v.customer_id
	WHERE v.business_id = $1
	ORDER BY v.visit_date DESC, v.id DESC
	LIMIT $2`

	rows, err := driver.WithTx(r.conn, tx).Query(ctx, query, businessID, limit)
	if err != nil {
		r.logger.Error("error listing recent visits", zap.Error(err))
		return nil, apperr.Unexpected("failed to list recent visits", err)
	}
	defer rows.Close()

	visits := make([]*models.VisitWithCustomer, 0, limit)
	for rows.Next() {
		var v models.VisitWithCustomer
		c := &v.Customer
		dest := append(visitDest(&v.Visit),
			&c.ID, &c.BusinessID, &c.Name, &c.Phone, &c.Email, &c.Visits,
			&c.RewardsEarned, &c.RewardsRedeemed, &c.TotalSpent, &c.LastVisit, &c.SMSOptIn, &c.CreatedAt,
		)
		if err = rows.Scan(dest...); err != nil {
			return nil, apperr.Unexpected("failed to scan visit", err)
		}
		visits = append(visits, &v)
	}
	if err = rows.Err(); err != nil {
		return nil, apperr.Unexpected("failed to list recent visits", err)
	}

	return visits, nil
}

func (r *repository) ListByCustomer(ctx context.Context, tx pgx.Tx, customerID uint64) ([]*models.Visit, error) {
	query := `SELECT ` + visitColumns + ` FROM visits v WHERE v.customer_id = $1 ORDER BY v.visit_date DESC, v.id DESC`
	return r.list(ctx, tx, query, customerID)
}

func (r *repository) ListByBusiness(ctx context.Context, tx pgx.Tx, businessID uint64) ([]*models.Visit, error) {
	query := `SELECT ` + visitColumns + ` FROM visits v WHERE v.business_id = $1 ORDER BY v.visit_date, v.id`
	return r.list(ctx, tx, query, businessID)
}

func (r *repository) list(ctx context.Context, tx pgx.Tx, query string, id uint64) ([]*models.Visit, error) {
	rows, err := driver.WithTx(r.conn, tx).Query(ctx, query, id)
	if err != nil {
		r.logger.Error("error listing visits", zap.Error(err))
		return nil, apperr.Unexpected("failed to list visits", err)
	}
	defer rows.Close()

	visits := make([]*models.Visit, 0)
	for rows.Next() {
		v := models.NewVisit()
		if err = rows.Scan(visitDest(v)...); err != nil {
			return nil, apperr.Unexpected("failed to scan visit", err)
		}
		visits = append(visits, v)
	}
	if err = rows.Err(); err != nil {
		return nil, apperr.Unexpected("failed to list visits", err)
	}

	return visits, nil
}
