package coupon

import (
	"time"

	"github.com/google/uuid"
)

type Coupon struct {
	ID        uuid.UUID `db:"coupon_id" json:"coupon_id"`
	Code      string    `db:"coupon_code" json:"coupon_code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Usage counts how often one user redeemed one coupon.
type Usage struct {
	ID         uuid.UUID `db:"usage_id" json:"usage_id"`
	CouponID   uuid.UUID `db:"coupon_id" json:"coupon_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	UsageCount int       `db:"usage_count" json:"usage_count"`
	LastUsedAt time.Time `db:"last_used_at" json:"last_used_at"`
}
