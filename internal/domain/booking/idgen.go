package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// IDGenerator produces booking and payment transaction identifiers.
type IDGenerator interface {
	BookingID() (string, error)
	TransactionID() (string, error)
}

type randomIDs struct{}

// NewIDGenerator returns the production generator.
func NewIDGenerator() IDGenerator {
	return randomIDs{}
}

var bookingNumberSpan = big.NewInt(900000)

// BookingID returns "BKG" followed by six digits, the first never zero.
func (randomIDs) BookingID() (string, error) {
	n, err := rand.Int(rand.Reader, bookingNumberSpan)
	if err != nil {
		return "", fmt.Errorf("generate booking id: %w", err)
	}
	return fmt.Sprintf("BKG%06d", n.Int64()+100000), nil
}

// TransactionID returns "TXN" followed by a time-ordered UUIDv7 in hex.
func (randomIDs) TransactionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate transaction id: %w", err)
	}
	return "TXN" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")), nil
}
