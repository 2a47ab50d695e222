package booking

import (
	"regexp"
	"testing"
)

var (
	bookingIDPattern     = regexp.MustCompile(`^BKG[1-9]\d{5}$`)
	transactionIDPattern = regexp.MustCompile(`^TXN[0-9A-F]{32}$`)
)

func TestRandomIDs(t *testing.T) {
	ids := NewIDGenerator()

	for i := 0; i < 200; i++ {
		id, err := ids.BookingID()
		if err != nil {
			t.Fatalf("booking id: %v", err)
		}
		if !bookingIDPattern.MatchString(id) {
			t.Fatalf("malformed booking id %q", id)
		}
	}

	first, err := ids.TransactionID()
	if err != nil {
		t.Fatalf("transaction id: %v", err)
	}
	second, _ := ids.TransactionID()
	if !transactionIDPattern.MatchString(first) {
		t.Fatalf("malformed transaction id %q", first)
	}
	if first == second {
		t.Fatal("expected distinct transaction ids")
	}
}
