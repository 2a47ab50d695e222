package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/staybook/booking-api/internal/pkg/logger"
)

// Store is the persistence surface the ledger needs.
type Store interface {
	LockWallet(ctx context.Context, tx *sqlx.Tx, userID string) (*Wallet, error)
	ApplyDebit(ctx context.Context, tx *sqlx.Tx, w *Wallet, amount decimal.Decimal, bookingID string) (decimal.Decimal, error)
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	ListByReference(ctx context.Context, referenceID string) ([]Transaction, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Debit takes up to requested from the user's wallet inside tx and returns
// the amount actually debited. Amounts are whole cents; anything finer in
// requested is dropped. It never commits; the caller owns tx.
// The wallet row stays locked until tx ends, so concurrent debits of one
// wallet are serialized.
func (s *Service) Debit(ctx context.Context, tx *sqlx.Tx, userID, bookingID string, requested decimal.Decimal) (decimal.Decimal, error) {
	requested = requested.RoundDown(2)
	if !requested.IsPositive() {
		return decimal.Zero, nil
	}
	if strings.TrimSpace(userID) == "" {
		return decimal.Zero, ErrInvalidUser
	}

	w, err := s.store.LockWallet(ctx, tx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("lock wallet: %w", err)
	}

	debit := decimal.Min(w.Balance, requested)
	if !debit.IsPositive() {
		logger.FromContext(ctx).Debug().
			Str("user_id", userID).
			Str("booking_id", bookingID).
			Msg("wallet empty, nothing debited")
		return decimal.Zero, nil
	}

	balanceAfter, err := s.store.ApplyDebit(ctx, tx, w, debit, bookingID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("apply wallet debit: %w", err)
	}

	logger.FromContext(ctx).Info().
		Str("user_id", userID).
		Str("booking_id", bookingID).
		Str("requested", requested.StringFixed(2)).
		Str("debited", debit.StringFixed(2)).
		Str("balance_after", balanceAfter.StringFixed(2)).
		Msg("wallet debit applied")

	return debit, nil
}

func (s *Service) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	return s.store.GetBalance(ctx, userID)
}

func (s *Service) TransactionsFor(ctx context.Context, bookingID string) ([]Transaction, error) {
	return s.store.ListByReference(ctx, bookingID)
}
