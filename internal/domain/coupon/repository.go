package coupon

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/staybook/booking-api/internal/pkg/database"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// FindByCode looks the coupon up by exact code inside tx.
func (r *Repository) FindByCode(ctx context.Context, tx *sqlx.Tx, code string) (*Coupon, error) {
	var c Coupon
	err := tx.GetContext(ctx, &c, `
		SELECT coupon_id, coupon_code, created_at
		FROM coupons
		WHERE coupon_code = $1
		LIMIT 1
	`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// IncrementUsage bumps the usage counter for (couponID, userID), creating the
// row on first use. The unique key on the pair keeps one row per pair even
// when two bookings race. Returns the new count.
func (r *Repository) IncrementUsage(ctx context.Context, tx *sqlx.Tx, couponID uuid.UUID, userID string) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, `
		INSERT INTO coupon_usage (usage_id, coupon_id, user_id, usage_count, last_used_at)
		VALUES ($1, $2, $3, 1, now())
		ON CONFLICT (coupon_id, user_id) DO UPDATE
		SET usage_count = coupon_usage.usage_count + 1,
		    last_used_at = now()
		RETURNING usage_count
	`, uuid.New(), couponID, userID)
	return count, err
}

// GetUsage returns the usage row for a code and user.
func (r *Repository) GetUsage(ctx context.Context, code, userID string) (*Usage, error) {
	var u Usage
	err := r.db.GetContext(ctx, &u, `
		SELECT cu.usage_id, cu.coupon_id, cu.user_id, cu.usage_count, cu.last_used_at
		FROM coupon_usage cu
		JOIN coupons c ON c.coupon_id = cu.coupon_id
		WHERE c.coupon_code = $1 AND cu.user_id = $2
	`, code, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create registers a coupon code.
func (r *Repository) Create(ctx context.Context, code string) (*Coupon, error) {
	c := Coupon{ID: uuid.New(), Code: code}
	err := r.db.GetContext(ctx, &c.CreatedAt, `
		INSERT INTO coupons (coupon_id, coupon_code)
		VALUES ($1, $2)
		RETURNING created_at
	`, c.ID, c.Code)
	if err != nil {
		if database.IsUniqueViolation(err, "coupons_coupon_code_key") {
			return nil, ErrCouponExists
		}
		return nil, err
	}
	return &c, nil
}
