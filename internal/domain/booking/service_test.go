package booking

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/staybook/booking-api/internal/pkg/logger"
	"github.com/staybook/booking-api/internal/pkg/normalize"
)

// memState is the in-memory stand-in for the tables a booking touches.
type memState struct {
	balances map[string]decimal.Decimal
	ledger   []string
	coupons  map[string]bool
	usage    map[string]int
	bookings map[string]*Booking
}

func newMemState() *memState {
	return &memState{
		balances: make(map[string]decimal.Decimal),
		coupons:  make(map[string]bool),
		usage:    make(map[string]int),
		bookings: make(map[string]*Booking),
	}
}

func (m *memState) clone() *memState {
	c := newMemState()
	for k, v := range m.balances {
		c.balances[k] = v
	}
	c.ledger = append(c.ledger, m.ledger...)
	for k, v := range m.coupons {
		c.coupons[k] = v
	}
	for k, v := range m.usage {
		c.usage[k] = v
	}
	for k, v := range m.bookings {
		b := *v
		c.bookings[k] = &b
	}
	return c
}

// fakeRunner restores the snapshot taken before fn when fn fails.
type fakeRunner struct {
	state *memState
	txs   int
}

func (r *fakeRunner) WithinTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	r.txs++
	snapshot := r.state.clone()
	if err := fn(nil); err != nil {
		*r.state = *snapshot
		return err
	}
	return nil
}

type fakeWallet struct {
	state  *memState
	calls  int
	err    error
	amount []decimal.Decimal
}

func (f *fakeWallet) Debit(_ context.Context, _ *sqlx.Tx, userID, bookingID string, requested decimal.Decimal) (decimal.Decimal, error) {
	f.calls++
	f.amount = append(f.amount, requested)
	if f.err != nil {
		return decimal.Zero, f.err
	}
	debit := decimal.Min(f.state.balances[userID], requested)
	if debit.IsPositive() {
		f.state.balances[userID] = f.state.balances[userID].Sub(debit)
		f.state.ledger = append(f.state.ledger, bookingID)
	}
	return debit, nil
}

type fakeCoupons struct {
	state *memState
	calls int
	err   error
}

func (f *fakeCoupons) RecordUsage(_ context.Context, _ *sqlx.Tx, userID, code string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	if !f.state.coupons[code] || strings.TrimSpace(userID) == "" {
		return false, nil
	}
	f.state.usage[code+"|"+userID]++
	return true, nil
}

var errStorage = errors.New("pq: relation \"bookings_info\" does not exist")

type fakeStore struct {
	state     *memState
	insertErr error
}

func (f *fakeStore) InsertTx(_ context.Context, _ *sqlx.Tx, b *Booking) error {
	if _, ok := f.state.bookings[b.BookingID]; ok {
		return ErrBookingIDConflict
	}
	f.state.bookings[b.BookingID] = b
	if f.insertErr != nil {
		return f.insertErr
	}
	return nil
}

func (f *fakeStore) UpdatePaymentStatus(_ context.Context, bookingID string, status PaymentStatus) error {
	b, ok := f.state.bookings[bookingID]
	if !ok {
		return ErrBookingNotFound
	}
	b.PaymentStatus = status
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, bookingID string) (*Booking, error) {
	b, ok := f.state.bookings[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

type sequenceIDs struct {
	bookingIDs []string
	next       int
}

func (s *sequenceIDs) BookingID() (string, error) {
	id := s.bookingIDs[s.next%len(s.bookingIDs)]
	s.next++
	return id, nil
}

func (s *sequenceIDs) TransactionID() (string, error) {
	return "TXN0001", nil
}

type harness struct {
	state   *memState
	runner  *fakeRunner
	wallet  *fakeWallet
	coupons *fakeCoupons
	store   *fakeStore
	svc     *Service
}

func newHarness(opts ...Option) *harness {
	state := newMemState()
	h := &harness{
		state:   state,
		runner:  &fakeRunner{state: state},
		wallet:  &fakeWallet{state: state},
		coupons: &fakeCoupons{state: state},
		store:   &fakeStore{state: state},
	}
	h.svc = NewService(h.runner, h.store, h.wallet, h.coupons, opts...)
	return h
}

func onlineRequest(t *testing.T) *CreateBookingRequest {
	return decodeRequest(t, `{
		"Hotel_ID": "H-17",
		"Hotel_Name": "Sea View",
		"Hotel_Type": "Resort",
		"Guest_Name": "Asha",
		"Email": "asha@example.com",
		"User_ID": "U1",
		"Check_In_Date": "05/03/2024",
		"Check_Out_Date": "2024-3-7",
		"Guest_Count": 2,
		"Adults": "2",
		"Children": 0,
		"Total_Rooms_Booked": 1,
		"Total_Days_at_Stay": 2,
		"Room_Price_Per_Day": "500",
		"Total_Price": "1,000",
		"Final_Payable_Amount": 700,
		"Amount_Paid_Online": 700,
		"Due_Amount_At_Hotel": 0,
		"Payment_Type": "Online",
		"Paid_Via": "UPI",
		"Payment_Status": "SUCCESS",
		"Wallet_Used": "Yes",
		"Wallet_Amount": 800
	}`)
}

func TestCreateDebitsWalletUpToBalance(t *testing.T) {
	h := newHarness()
	h.state.balances["U1"] = decimal.NewFromInt(300)

	resp, err := h.svc.Create(context.Background(), onlineRequest(t))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if resp.Message != MessageBookingStored {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if !h.wallet.amount[0].Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected request capped to 500, got %s", h.wallet.amount[0])
	}
	if !h.state.balances["U1"].IsZero() {
		t.Fatalf("expected wallet emptied, got %s", h.state.balances["U1"])
	}

	b := h.state.bookings[resp.BookingID]
	if b == nil {
		t.Fatalf("booking %s not stored", resp.BookingID)
	}
	if b.WalletUsed != WalletUsedYes || !b.WalletAmountDeducted.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected wallet columns: %s %s", b.WalletUsed, b.WalletAmountDeducted)
	}
	if !b.TransactionID.Valid || !strings.HasPrefix(b.TransactionID.String, "TXN") {
		t.Fatalf("expected transaction id, got %+v", b.TransactionID)
	}
	if b.PaymentStatus != PaymentStatusPaid {
		t.Fatalf("expected Paid, got %s", b.PaymentStatus)
	}
	if !b.OriginalAmount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected original amount 1000, got %s", b.OriginalAmount)
	}
	if got := b.CheckInDate.Time.Format("2006-01-02"); got != "2024-03-05" {
		t.Fatalf("expected check-in 2024-03-05, got %s", got)
	}
	if len(h.state.ledger) != 1 || h.state.ledger[0] != resp.BookingID {
		t.Fatalf("expected one ledger row for booking, got %v", h.state.ledger)
	}
}

func TestCreatePayAtHotelSkipsWalletAndTransaction(t *testing.T) {
	h := newHarness()
	h.state.balances["U1"] = decimal.NewFromInt(300)

	req := onlineRequest(t)
	req.PaymentType.Value = "pay at hotel"

	resp, err := h.svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if h.wallet.calls != 0 {
		t.Fatalf("expected no wallet debit, got %d calls", h.wallet.calls)
	}
	b := h.state.bookings[resp.BookingID]
	if b.TransactionID.Valid {
		t.Fatalf("expected no transaction id, got %s", b.TransactionID.String)
	}
	if resp.TransactionID != "" {
		t.Fatalf("expected empty transaction id in response, got %s", resp.TransactionID)
	}
	if b.WalletUsed != WalletUsedNo || !b.WalletAmountDeducted.IsZero() {
		t.Fatalf("unexpected wallet columns: %s %s", b.WalletUsed, b.WalletAmountDeducted)
	}
}

func TestCreateWalletPreconditions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CreateBookingRequest)
	}{
		{name: "flag not affirmative", mutate: func(r *CreateBookingRequest) { r.WalletUsed.Value = "No" }},
		{name: "zero request", mutate: func(r *CreateBookingRequest) { r.WalletAmount.Value = decimal.Zero }},
		{name: "request below one cent", mutate: func(r *CreateBookingRequest) { r.WalletAmount = normalize.NewFlexAmount("0.004") }},
		{name: "blank user", mutate: func(r *CreateBookingRequest) { r.UserID.Value = "  " }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			h.state.balances["U1"] = decimal.NewFromInt(300)
			req := onlineRequest(t)
			tc.mutate(req)

			resp, err := h.svc.Create(context.Background(), req)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if h.wallet.calls != 0 {
				t.Fatalf("expected no wallet debit, got %d", h.wallet.calls)
			}
			if h.state.bookings[resp.BookingID].WalletUsed != WalletUsedNo {
				t.Fatal("expected Wallet_Used No")
			}
		})
	}
}

func TestCreateEmptyWalletStoresNo(t *testing.T) {
	h := newHarness()

	resp, err := h.svc.Create(context.Background(), onlineRequest(t))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if h.wallet.calls != 1 {
		t.Fatalf("expected wallet to be consulted once, got %d", h.wallet.calls)
	}
	b := h.state.bookings[resp.BookingID]
	if b.WalletUsed != WalletUsedNo || !b.WalletAmountDeducted.IsZero() {
		t.Fatalf("unexpected wallet columns: %s %s", b.WalletUsed, b.WalletAmountDeducted)
	}
}

func TestCreateRollsBackOnInsertFailure(t *testing.T) {
	h := newHarness()
	h.state.balances["U1"] = decimal.NewFromInt(300)
	h.state.coupons["SAVE10"] = true
	h.store.insertErr = errors.New("value too long for column")

	req := onlineRequest(t)
	req.CouponCode.Value = "SAVE10"

	_, err := h.svc.Create(context.Background(), req)
	if !errors.Is(err, ErrBookingFailed) {
		t.Fatalf("expected ErrBookingFailed, got %v", err)
	}

	if !h.state.balances["U1"].Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected balance restored to 300, got %s", h.state.balances["U1"])
	}
	if len(h.state.ledger) != 0 {
		t.Fatalf("expected no ledger rows, got %v", h.state.ledger)
	}
	if n := h.state.usage["SAVE10|U1"]; n != 0 {
		t.Fatalf("expected coupon usage rolled back, got %d", n)
	}
	if len(h.state.bookings) != 0 {
		t.Fatalf("expected no bookings, got %d", len(h.state.bookings))
	}
}

func TestCreateRollsBackOnWalletFailure(t *testing.T) {
	h := newHarness()
	h.state.balances["U1"] = decimal.NewFromInt(300)
	h.wallet.err = errors.New("deadlock detected")

	_, err := h.svc.Create(context.Background(), onlineRequest(t))
	if !errors.Is(err, ErrBookingFailed) {
		t.Fatalf("expected ErrBookingFailed, got %v", err)
	}
	if h.coupons.calls != 0 {
		t.Fatal("coupon tracker must not run after a wallet failure")
	}
	if len(h.state.bookings) != 0 {
		t.Fatal("expected no booking row")
	}
}

func TestCreateCountsCouponUsage(t *testing.T) {
	h := newHarness()
	h.state.coupons["SAVE10"] = true

	for i := 0; i < 2; i++ {
		req := onlineRequest(t)
		req.CouponCode.Value = " SAVE10 "
		if _, err := h.svc.Create(context.Background(), req); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	if n := h.state.usage["SAVE10|U1"]; n != 2 {
		t.Fatalf("expected usage count 2, got %d", n)
	}
}

func TestCreateUnknownCouponStillBooks(t *testing.T) {
	h := newHarness()

	req := onlineRequest(t)
	req.CouponCode.Value = "GHOST"

	resp, err := h.svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if h.state.bookings[resp.BookingID].CouponCode != "GHOST" {
		t.Fatal("expected coupon code stored on booking")
	}
	if len(h.state.usage) != 0 {
		t.Fatalf("expected no usage rows, got %v", h.state.usage)
	}
}

func TestCreateRetriesOnBookingIDConflict(t *testing.T) {
	ids := &sequenceIDs{bookingIDs: []string{"BKG111111", "BKG222222"}}
	h := newHarness(WithIDGenerator(ids))
	h.state.balances["U1"] = decimal.NewFromInt(300)
	h.state.bookings["BKG111111"] = &Booking{BookingID: "BKG111111"}

	resp, err := h.svc.Create(context.Background(), onlineRequest(t))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if resp.BookingID != "BKG222222" {
		t.Fatalf("expected second id, got %s", resp.BookingID)
	}
	if h.runner.txs != 2 {
		t.Fatalf("expected two transactions, got %d", h.runner.txs)
	}
	if !h.state.balances["U1"].IsZero() {
		t.Fatalf("expected a single 300 debit, balance %s", h.state.balances["U1"])
	}
	if len(h.state.ledger) != 1 || h.state.ledger[0] != "BKG222222" {
		t.Fatalf("expected one ledger row for the committed id, got %v", h.state.ledger)
	}
}

func TestCreateGivesUpAfterRepeatedConflicts(t *testing.T) {
	ids := &sequenceIDs{bookingIDs: []string{"BKG111111"}}
	h := newHarness(WithIDGenerator(ids), WithIDAttempts(3))
	h.state.bookings["BKG111111"] = &Booking{BookingID: "BKG111111"}

	_, err := h.svc.Create(context.Background(), onlineRequest(t))
	if !errors.Is(err, ErrBookingFailed) || !errors.Is(err, ErrBookingIDConflict) {
		t.Fatalf("expected failed booking caused by id conflict, got %v", err)
	}
	if h.runner.txs != 3 {
		t.Fatalf("expected 3 attempts, got %d", h.runner.txs)
	}
}

func TestCreatePayingGuestMapping(t *testing.T) {
	h := newHarness()
	req := decodeRequest(t, `{
		"Hotel_ID": "PG-9",
		"Hotel_Type": "Hostel",
		"Guest_Name": "Ravi",
		"User_ID": "U2",
		"Selected_Room_Type": "Twin sharing",
		"Selected_Room_Price": "8,000",
		"Persons": 2,
		"Months": 3,
		"Room_Price_Per_Day": 450,
		"Total_Rooms_Booked": 4,
		"All_Months_Price": 24000,
		"Payment_Type": "Pay at Hotel"
	}`)

	resp, err := h.svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	b := h.state.bookings[resp.BookingID]
	if b.BookingMode != ModePayingGuest || b.HotelType != HotelTypePayingGuest {
		t.Fatalf("expected PG booking, got mode %s type %s", b.BookingMode, b.HotelType)
	}
	if b.GuestCount != 2 || b.Adults != 2 || b.Children != 0 || b.TotalRoomsBooked != 1 {
		t.Fatalf("unexpected occupancy: %+v", b)
	}
	if b.TotalDaysAtStay != 3 || b.Months != 3 {
		t.Fatalf("expected 3 months, got days %d months %d", b.TotalDaysAtStay, b.Months)
	}
	if !b.RoomPricePerDay.IsZero() {
		t.Fatalf("expected nightly rate 0, got %s", b.RoomPricePerDay)
	}
	if b.RoomType != "Twin sharing" || !b.RoomPricePerMonth.Equal(decimal.NewFromInt(8000)) {
		t.Fatalf("unexpected room fields %q %s", b.RoomType, b.RoomPricePerMonth)
	}
	if !b.AllDaysPrice.Equal(decimal.NewFromInt(24000)) {
		t.Fatalf("expected all months price 24000, got %s", b.AllDaysPrice)
	}
	if b.PaymentStatus != PaymentStatusPending {
		t.Fatalf("expected Pending, got %s", b.PaymentStatus)
	}
}

func TestCreateBadDatesStoreNull(t *testing.T) {
	h := newHarness()
	req := onlineRequest(t)
	req.CheckInDate = decodeRequest(t, `{"Check_In_Date":"31-02-2024"}`).CheckInDate

	var buf bytes.Buffer
	l := zerolog.New(&buf).With().Str("request_id", "req-42").Logger()
	ctx := logger.WithContext(context.Background(), &l)

	resp, err := h.svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if h.state.bookings[resp.BookingID].CheckInDate.Valid {
		t.Fatal("expected impossible date to be stored as NULL")
	}

	var dateLine string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(line, "unparsable date") {
			dateLine = line
		}
	}
	if !strings.Contains(dateLine, `"request_id":"req-42"`) || !strings.Contains(dateLine, `"input":"31-02-2024"`) {
		t.Fatalf("expected date warning on the request logger, got %q", buf.String())
	}
}

func TestUpdatePaymentStatus(t *testing.T) {
	h := newHarness()
	h.state.bookings["BKG123456"] = &Booking{BookingID: "BKG123456", PaymentStatus: PaymentStatusPending}

	status, err := h.svc.UpdatePaymentStatus(context.Background(), " BKG123456 ", "payment_success")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if status != PaymentStatusPaid || h.state.bookings["BKG123456"].PaymentStatus != PaymentStatusPaid {
		t.Fatalf("expected Paid, got %s", status)
	}

	if _, err := h.svc.UpdatePaymentStatus(context.Background(), "BKG000000", "paid"); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
	if _, err := h.svc.UpdatePaymentStatus(context.Background(), "", "paid"); !errors.Is(err, ErrInvalidBookingID) {
		t.Fatalf("expected ErrInvalidBookingID, got %v", err)
	}
}
