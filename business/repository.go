package business

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"goflare.io/ember"
	"goflare.io/ignite"
	"goflare.io/loyalty/apperr"
	"goflare.io/loyalty/driver"
	"goflare.io/loyalty/models"
)

var _ Repository = (*repository)(nil)

// Repository reads go through the ember cache only when tx is nil. Reads
// inside a transaction hit Postgres, and the cache is written by Cache and
// Invalidate, which callers invoke after commit.
type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, business *models.Business) error
	GetByID(ctx context.Context, tx pgx.Tx, id uint64) (*models.Business, error)
	GetByIDForShare(ctx context.Context, tx pgx.Tx, id uint64) (*models.Business, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*models.Business, error)
	Update(ctx context.Context, tx pgx.Tx, business *models.Business) error
	Cache(ctx context.Context, business *models.Business)
	Invalidate(ctx context.Context, id uint64)
}

type repository struct {
	conn        driver.PostgresPool
	logger      *zap.Logger
	cache       *ember.MultiCache
	poolManager ignite.Manager
}

const businessColumns = `id, name, COALESCE(phone, ''), COALESCE(address, ''), visits_required,
	reward_description, sms_enabled, reward_expiry_days, created_at`

func NewRepository(conn driver.PostgresPool, logger *zap.Logger, cache *ember.MultiCache, poolManager ignite.Manager) (Repository, error) {
	if err := poolManager.RegisterPool(reflect.TypeOf(&models.Business{}), ignite.Config[any]{
		InitialSize: 10,
		MaxSize:     100,
		MaxIdleTime: 10 * time.Minute,
		Factory: func() (any, error) {
			return models.NewBusiness(), nil
		},
		Reset: func(obj any) error {
			b := obj.(*models.Business)
			*b = models.Business{}
			return nil
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to register business pool: %w", err)
	}

	return &repository{
		conn:        conn,
		logger:      logger,
		cache:       cache,
		poolManager: poolManager,
	}, nil
}

func cacheKey(id uint64) string {
	return fmt.Sprintf("business:%d", id)
}

func (r *repository) getFromPool(ctx context.Context) (*models.Business, func(), error) {
	pool, err := r.poolManager.GetPool(reflect.TypeOf(&models.Business{}))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get pool: %w", err)
	}

	objWrapper, err := pool.Get(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get object from pool: %w", err)
	}

	business := objWrapper.Object.(*models.Business)
	release := func() {
		pool.Put(objWrapper)
	}

	return business, release, nil
}

func (r *repository) Create(ctx context.Context, tx pgx.Tx, business *models.Business) error {
	const query = `
	INSERT INTO businesses (name, phone, address, visits_required, reward_description, sms_enabled, reward_expiry_days)
	VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7)
	RETURNING id, created_at`

	if err := driver.WithTx(r.conn, tx).QueryRow(ctx, query,
		business.Name,
		business.Phone,
		business.Address,
		business.VisitsRequired,
		business.RewardDescription,
		business.SMSEnabled,
		business.RewardExpiryDays,
	).Scan(&business.ID, &business.CreatedAt); err != nil {
		return apperr.Unexpected("failed to create business", err)
	}

	return nil
}

// GetByID serves committed businesses from cache when called outside a
// transaction.
func (r *repository) GetByID(ctx context.Context, tx pgx.Tx, id uint64) (*models.Business, error) {
	if tx != nil {
		return r.get(ctx, tx, `SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id)
	}

	business, release, err := r.getFromPool(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	found, err := r.cache.Get(ctx, cacheKey(id), business)
	if err != nil {
		r.logger.Warn("Failed to get business from cache", zap.Error(err), zap.Uint64("id", id))
	} else if found {
		result := *business
		return &result, nil
	}

	result, err := r.get(ctx, nil, `SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	r.Cache(ctx, result)
	return result, nil
}

// GetByIDForShare reads the reward policy under a share lock, so a
// concurrent policy update waits for tx to finish.
func (r *repository) GetByIDForShare(ctx context.Context, tx pgx.Tx, id uint64) (*models.Business, error) {
	return r.get(ctx, tx, `SELECT `+businessColumns+` FROM businesses WHERE id = $1 FOR SHARE`, id)
}

func (r *repository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*models.Business, error) {
	return r.get(ctx, tx, `SELECT `+businessColumns+` FROM businesses WHERE id = $1 FOR UPDATE`, id)
}

func (r *repository) get(ctx context.Context, tx pgx.Tx, query string, id uint64) (*models.Business, error) {
	business, release, err := r.getFromPool(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err = driver.WithTx(r.conn, tx).QueryRow(ctx, query, id).Scan(
		&business.ID,
		&business.Name,
		&business.Phone,
		&business.Address,
		&business.VisitsRequired,
		&business.RewardDescription,
		&business.SMSEnabled,
		&business.RewardExpiryDays,
		&business.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("business", id)
		}
		r.logger.Error("error getting business", zap.Error(err))
		return nil, apperr.Unexpected("failed to get business", err)
	}

	result := *business
	return &result, nil
}

func (r *repository) Update(ctx context.Context, tx pgx.Tx, business *models.Business) error {
	const query = `
	UPDATE businesses
	SET name = $2, phone = NULLIF($3, ''), address = NULLIF($4, ''), visits_required = $5,
	    reward_description = $6, sms_enabled = $7, reward_expiry_days = $8
	WHERE id = $1`

	tag, err := driver.WithTx(r.conn, tx).Exec(ctx, query,
		business.ID,
		business.Name,
		business.Phone,
		business.Address,
		business.VisitsRequired,
		business.RewardDescription,
		business.SMSEnabled,
		business.RewardExpiryDays,
	)
	if err != nil {
		return apperr.Unexpected("failed to update business", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("business", business.ID)
	}

	return nil
}

// Cache stores a committed business.
func (r *repository) Cache(ctx context.Context, business *models.Business) {
	if err := r.cache.Set(ctx, cacheKey(business.ID), business); err != nil {
		r.logger.Warn("Failed to cache business", zap.Error(err), zap.Uint64("id", business.ID))
	}
}

// Invalidate drops id from the cache after a committed change.
func (r *repository) Invalidate(ctx context.Context, id uint64) {
	if err := r.cache.Delete(ctx, cacheKey(id)); err != nil {
		r.logger.Warn("Failed to delete business from cache", zap.Error(err), zap.Uint64("id", id))
	}
}
