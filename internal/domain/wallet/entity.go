package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeBookingPayment TransactionType = "booking_payment"
)

type Direction string

const DirectionDebit Direction = "debit"

const (
	StatusActive             = "active"
	TransactionStatusSuccess = "success"
)

type Wallet struct {
	ID        uuid.UUID       `db:"wallet_id" json:"wallet_id"`
	UserID    string          `db:"user_id" json:"user_id"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	Status    string          `db:"status" json:"status"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Transaction is an append-only ledger row.
type Transaction struct {
	ID           uuid.UUID       `db:"txn_id" json:"txn_id"`
	WalletID     uuid.UUID       `db:"wallet_id" json:"wallet_id"`
	Type         TransactionType `db:"type" json:"type"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	Direction    Direction       `db:"direction" json:"direction"`
	ReferenceID  string          `db:"reference_id" json:"reference_id"`
	Status       string          `db:"status" json:"status"`
	Description  string          `db:"description" json:"description"`
	BalanceAfter decimal.Decimal `db:"balance_after_txn" json:"balance_after_txn"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// BookingDescription is the ledger description for a booking debit.
func BookingDescription(bookingID string) string {
	return "Wallet used for booking " + bookingID
}
