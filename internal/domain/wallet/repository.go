package wallet

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// LockWallet creates the wallet if missing and locks its row until tx ends.
func (r *Repository) LockWallet(ctx context.Context, tx *sqlx.Tx, userID string) (*Wallet, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (wallet_id, user_id, balance, status)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, uuid.New(), userID, StatusActive); err != nil {
		return nil, err
	}

	var w Wallet
	err := tx.GetContext(ctx, &w, `
		SELECT wallet_id, user_id, balance, status, updated_at
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE
	`, userID)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ApplyDebit lowers the locked wallet balance and appends the ledger row.
// It returns the balance after the debit.
func (r *Repository) ApplyDebit(ctx context.Context, tx *sqlx.Tx, w *Wallet, amount decimal.Decimal, bookingID string) (decimal.Decimal, error) {
	var balanceAfter decimal.Decimal
	err := tx.GetContext(ctx, &balanceAfter, `
		UPDATE wallets
		SET balance = balance - $1, updated_at = now()
		WHERE wallet_id = $2
		RETURNING balance
	`, amount, w.ID)
	if err != nil {
		return decimal.Zero, err
	}

	txn := Transaction{
		ID:           uuid.New(),
		WalletID:     w.ID,
		Type:         TransactionTypeBookingPayment,
		Amount:       amount,
		Direction:    DirectionDebit,
		ReferenceID:  bookingID,
		Status:       TransactionStatusSuccess,
		Description:  BookingDescription(bookingID),
		BalanceAfter: balanceAfter,
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO wallet_transactions
			(txn_id, wallet_id, type, amount, direction, reference_id, status, description, balance_after_txn)
		VALUES
			(:txn_id, :wallet_id, :type, :amount, :direction, :reference_id, :status, :description, :balance_after_txn)
	`, txn)
	if err != nil {
		return decimal.Zero, err
	}
	return balanceAfter, nil
}

// GetBalance returns the wallet balance, zero when the user has no wallet.
func (r *Repository) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	return balance, err
}

// ListByReference returns ledger rows written for a booking.
func (r *Repository) ListByReference(ctx context.Context, referenceID string) ([]Transaction, error) {
	var txns []Transaction
	err := r.db.SelectContext(ctx, &txns, `
		SELECT txn_id, wallet_id, type, amount, direction, reference_id, status, description, balance_after_txn, created_at
		FROM wallet_transactions
		WHERE reference_id = $1
		ORDER BY created_at
	`, referenceID)
	return txns, err
}
