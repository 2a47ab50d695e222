package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/staybook/booking-api/internal/pkg/logger"
)

// Store is the persistence surface the tracker needs.
type Store interface {
	FindByCode(ctx context.Context, tx *sqlx.Tx, code string) (*Coupon, error)
	IncrementUsage(ctx context.Context, tx *sqlx.Tx, couponID uuid.UUID, userID string) (int, error)
	GetUsage(ctx context.Context, code, userID string) (*Usage, error)
	Create(ctx context.Context, code string) (*Coupon, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// RecordUsage counts one redemption of code by userID inside tx. Unknown
// codes and blank users are silently ignored; the booking still proceeds.
// It reports whether a usage row was written.
func (s *Service) RecordUsage(ctx context.Context, tx *sqlx.Tx, userID, code string) (bool, error) {
	if code == "" || strings.TrimSpace(userID) == "" {
		return false, nil
	}

	c, err := s.store.FindByCode(ctx, tx, code)
	if errors.Is(err, ErrCouponNotFound) {
		logger.FromContext(ctx).Debug().Str("coupon_code", code).Msg("unknown coupon code, usage not recorded")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find coupon: %w", err)
	}

	count, err := s.store.IncrementUsage(ctx, tx, c.ID, userID)
	if err != nil {
		return false, fmt.Errorf("record coupon usage: %w", err)
	}

	logger.FromContext(ctx).Info().
		Str("coupon_code", code).
		Str("user_id", userID).
		Int("usage_count", count).
		Msg("coupon usage recorded")
	return true, nil
}

// UsageCount returns how many times userID redeemed code; zero when never.
func (s *Service) UsageCount(ctx context.Context, code, userID string) (int, error) {
	u, err := s.store.GetUsage(ctx, code, userID)
	if errors.Is(err, ErrCouponNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return u.UsageCount, nil
}

func (s *Service) Create(ctx context.Context, code string) (*Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrInvalidCode
	}
	return s.store.Create(ctx, code)
}
