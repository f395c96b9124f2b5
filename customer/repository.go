package customer

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"goflare.io/loyalty/apperr"
	"goflare.io/loyalty/driver"
	"goflare.io/loyalty/models"
)

var _ Repository = (*repository)(nil)

type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, customer *models.Customer) error
	GetByID(ctx context.Context, tx pgx.Tx, id uint64) (*models.Customer, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*models.Customer, error)
	GetByPhone(ctx context.Context, tx pgx.Tx, businessID uint64, phone string) (*models.Customer, error)
	ListByBusiness(ctx context.Context, tx pgx.Tx, businessID uint64) ([]*models.Customer, error)
	Update(ctx context.Context, tx pgx.Tx, customer *models.Customer) error
	UpdateCounters(ctx context.Context, tx pgx.Tx, customer *models.Customer) error
}

type repository struct {
	conn   driver.PostgresPool
	logger *zap.Logger
}

const customerColumns = `id, business_id, name, phone, COALESCE(email, ''), COALESCE(notes, ''),
	visits, rewards_earned, rewards_redeemed, total_spent, last_visit, sms_opt_in, created_at`

func NewRepository(conn driver.PostgresPool, logger *zap.Logger) Repository {
	return &repository{
		conn:   conn,
		logger: logger,
	}
}

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	customer := models.NewCustomer()
	err := row.Scan(
		&customer.ID,
		&customer.BusinessID,
		&customer.Name,
		&customer.Phone,
		&customer.Email,
		&customer.Notes,
		&customer.Visits,
		&customer.RewardsEarned,
		&customer.RewardsRedeemed,
		&customer.TotalSpent,
		&customer.LastVisit,
		&customer.SMSOptIn,
		&customer.CreatedAt,
	)
	return customer, err
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func (r *repository) Create(ctx context.Context, tx pgx.Tx, customer *models.Customer) error {
	const query = `
	INSERT INTO customers (business_id, name, phone, email, notes, sms_opt_in)
	VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
	RETURNING id, created_at`

	err := driver.WithTx(r.conn, tx).QueryRow(ctx, query,
		customer.BusinessID,
		customer.Name,
		customer.Phone,
		customer.Email,
		customer.Notes,
		customer.SMSOptIn,
	).Scan(&customer.ID, &customer.CreatedAt)
	if err != nil {
		switch pgCode(err) {
		case "23505":
			return apperr.InvalidInput("customer with phone %s already exists", customer.Phone)
		case "23503":
			return apperr.NotFound("business", customer.BusinessID)
		}
		r.logger.Error("error creating customer", zap.Error(err))
		return apperr.Unexpected("failed to create customer", err)
	}
	return nil
}

func (r *repository) get(ctx context.Context, tx pgx.Tx, query string, id uint64) (*models.Customer, error) {
	customer, err := scanCustomer(driver.WithTx(r.conn, tx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("customer", id)
		}
		r.logger.Error("error getting customer", zap.Error(err))
		return nil, apperr.Unexpected("failed to get customer", err)
	}
	return customer, nil
}

func (r *repository) GetByID(ctx context.Context, tx pgx.Tx, id uint64) (*models.Customer, error) {
	return r.get(ctx, tx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

// GetByIDForUpdate locks the customer row until tx ends.
func (r *repository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*models.Customer, error) {
	return r.get(ctx, tx, `SELECT `+customerColumns+` FROM customers WHERE id = $1 FOR UPDATE`, id)
}

func (r *repository) GetByPhone(ctx context.Context, tx pgx.Tx, businessID uint64, phone string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE business_id = $1 AND phone = $2`
	customer, err := scanCustomer(driver.WithTx(r.conn, tx).QueryRow(ctx, query, businessID, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("customer", phone)
		}
		r.logger.Error("error getting customer by phone", zap.Error(err))
		return nil, apperr.Unexpected("failed to get customer", err)
	}
	return customer, nil
}

func (r *repository) ListByBusiness(ctx context.Context, tx pgx.Tx, businessID uint64) ([]*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE business_id = $1 ORDER BY last_visit DESC NULLS LAST, id DESC`

	rows, err := driver.WithTx(r.conn, tx).Query(ctx, query, businessID)
	if err != nil {
		r.logger.Error("error listing customers", zap.Error(err))
		return nil, apperr.Unexpected("failed to list customers", err)
	}
	defer rows.Close()

	customers := make([]*models.Customer, 0)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, apperr.Unexpected("failed to scan customer", err)
		}
		customers = append(customers, customer)
	}
	if err = rows.Err(); err != nil {
		return nil, apperr.Unexpected("failed to list customers", err)
	}

	return customers, nil
}

func (r *repository) Update(ctx context.Context, tx pgx.Tx, customer *models.Customer) error {
	const query = `
	UPDATE customers
	SET name = $2, phone = $3, email = NULLIF($4, ''), notes = NULLIF($5, ''), sms_opt_in = $6
	WHERE id = $1`

	tag, err := driver.WithTx(r.conn, tx).Exec(ctx, query,
		customer.ID,
		customer.Name,
		customer.Phone,
		customer.Email,
		customer.Notes,
		customer.SMSOptIn,
	)
	if err != nil {
		if pgCode(err) == "23505" {
			return apperr.InvalidInput("customer with phone %s already exists", customer.Phone)
		}
		return apperr.Unexpected("failed to update customer", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("customer", customer.ID)
	}
	return nil
}

// UpdateCounters writes the loyalty counters computed by a check-in or redemption.
func (r *repository) UpdateCounters(ctx context.Context, tx pgx.Tx, customer *models.Customer) error {
	const query = `
	UPDATE customers
	SET visits = $2, rewards_earned = $3, rewards_redeemed = $4, total_spent = $5, last_visit = $6
	WHERE id = $1`

	tag, err := driver.WithTx(r.conn, tx).Exec(ctx, query,
		customer.ID,
		customer.Visits,
		customer.RewardsEarned,
		customer.RewardsRedeemed,
		customer.TotalSpent,
		customer.LastVisit,
	)
	if err != nil {
		return apperr.Unexpected("failed to update customer counters", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("customer", customer.ID)
	}
	return nil
}
