package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/staybook/booking-api/internal/pkg/logger"
)

// defaultIDAttempts bounds how often Create draws a fresh booking id after a collision.
const defaultIDAttempts = 3

// TxRunner runs fn in one database transaction, committing only when fn returns nil.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

// WalletLedger debits wallets inside the booking transaction.
type WalletLedger interface {
	Debit(ctx context.Context, tx *sqlx.Tx, userID, bookingID string, requested decimal.Decimal) (decimal.Decimal, error)
}

// CouponTracker records coupon redemptions inside the booking transaction.
type CouponTracker interface {
	RecordUsage(ctx context.Context, tx *sqlx.Tx, userID, code string) (bool, error)
}

// Store is the booking persistence surface.
type Store interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, b *Booking) error
	UpdatePaymentStatus(ctx context.Context, bookingID string, status PaymentStatus) error
	GetByID(ctx context.Context, bookingID string) (*Booking, error)
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator replaces the random id generator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(s *Service) { s.ids = ids }
}

// WithIDAttempts sets how many booking ids Create tries before giving up.
func WithIDAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.idAttempts = n
		}
	}
}

// Service orchestrates booking creation and payment status updates.
type Service struct {
	runner     TxRunner
	store      Store
	wallet     WalletLedger
	coupons    CouponTracker
	ids        IDGenerator
	idAttempts int
}

// NewService creates booking service
func NewService(runner TxRunner, store Store, wallet WalletLedger, coupons CouponTracker, opts ...Option) *Service {
	s := &Service{
		runner:     runner,
		store:      store,
		wallet:     wallet,
		coupons:    coupons,
		ids:        NewIDGenerator(),
		idAttempts: defaultIDAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create books a stay. The wallet debit, ledger row, coupon usage and booking
// row are written in one transaction: either all of them commit or none do.
// A booking id collision rolls the attempt back and starts over with a new id.
func (s *Service) Create(ctx context.Context, req *CreateBookingRequest) (*CreateBookingResponse, error) {
	mode := req.Mode(ctx)
	req.warnDiscardedDates(ctx)

	var lastErr error
	for attempt := 1; attempt <= s.idAttempts; attempt++ {
		bookingID, err := s.ids.BookingID()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBookingFailed, err)
		}

		resp, err := s.createOnce(ctx, req, mode, bookingID)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, ErrBookingIDConflict) {
			logger.FromContext(ctx).Error().Err(err).
				Str("booking_id", bookingID).
				Str("user_id", req.userID()).
				Msg("booking rolled back")
			return nil, fmt.Errorf("%w: %w", ErrBookingFailed, err)
		}

		logger.FromContext(ctx).Warn().
			Str("booking_id", bookingID).
			Int("attempt", attempt).
			Msg("booking id collision, retrying with a new id")
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %w", ErrBookingFailed, lastErr)
}

func (s *Service) createOnce(ctx context.Context, req *CreateBookingRequest, mode Mode, bookingID string) (*CreateBookingResponse, error) {
	b := newBooking(req, mode, bookingID)

	if !req.PaysAtHotel() {
		txnID, err := s.ids.TransactionID()
		if err != nil {
			return nil, err
		}
		b.TransactionID = sql.NullString{String: txnID, Valid: true}
	}

	walletRequested := req.CappedWalletAmount()
	userID := req.userID()
	couponCode := req.couponCode()

	err := s.runner.WithinTx(ctx, func(tx *sqlx.Tx) error {
		if !req.PaysAtHotel() && req.WantsWallet() && walletRequested.IsPositive() && userID != "" {
			debit, err := s.wallet.Debit(ctx, tx, userID, bookingID, walletRequested)
			if err != nil {
				return err
			}
			b.recordWalletDebit(debit)
		}

		if couponCode != "" {
			if _, err := s.coupons.RecordUsage(ctx, tx, userID, couponCode); err != nil {
				return err
			}
		}

		return s.store.InsertTx(ctx, tx, b)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("booking_id", b.BookingID).
		Str("booking_mode", string(b.BookingMode)).
		Str("user_id", b.UserID).
		Str("wallet_debited", b.WalletAmountDeducted.StringFixed(2)).
		Str("coupon_code", b.CouponCode).
		Str("payment_status", string(b.PaymentStatus)).
		Msg("booking stored")

	return &CreateBookingResponse{
		BookingID:            b.BookingID,
		Message:              MessageBookingStored,
		TransactionID:        b.TransactionID.String,
		PaymentStatus:        b.PaymentStatus,
		WalletAmountDeducted: b.WalletAmountDeducted.StringFixed(2),
	}, nil
}

// newBooking builds the row to insert from the normalized request.
func newBooking(req *CreateBookingRequest, mode Mode, bookingID string) *Booking {
	b := &Booking{
		BookingID:    bookingID,
		BookingMode:  mode,
		PartnerID:    req.PartnerID.Value,
		HotelID:      strings.TrimSpace(req.HotelID.Value),
		HotelName:    req.HotelName.Value,
		HotelType:    req.HotelType.Value,
		GuestName:    req.GuestName.Value,
		Email:        req.Email.Value,
		UserID:       req.userID(),
		CheckInDate:  req.CheckInDate.NullTime(),
		CheckOutDate: req.CheckOutDate.NullTime(),

		AllDaysPrice: req.AllPeriodPrice(),
		GST:          req.GST.Value,

		OriginalAmount:     req.OriginalAmount(),
		FinalPayableAmount: req.FinalPayableAmount.Value,
		AmountPaidOnline:   req.AmountPaidOnline.Value,
		DueAmountAtHotel:   req.DueAmountAtHotel.Value,

		PaymentMethodType: req.PaymentType.Value,
		PaidVia:           req.PaidVia.Value,
		PaymentStatus:     NormalizePaymentStatus(req.PaymentStatus.Value),

		WalletUsed:           WalletUsedNo,
		WalletAmountDeducted: decimal.Zero,
		CouponCode:           req.couponCode(),
		CouponDiscountAmount: req.CouponDiscountAmount.Value,

		RoomType:          req.ResolvedRoomType(),
		RoomPricePerMonth: req.MonthlyRoomPrice(),
		Months:            req.MonthCount(),
		HotelAddress:      req.HotelAddress.Value,
		HotelContact:      req.HotelContact.Value,
	}

	switch mode {
	case ModePayingGuest:
		persons := req.Persons.Value
		b.HotelType = HotelTypePayingGuest
		b.GuestCount = persons
		b.Adults = persons
		b.Children = 0
		b.TotalRoomsBooked = 1
		b.TotalDaysAtStay = req.MonthCount()
		b.RoomPricePerDay = decimal.Zero
	default:
		b.GuestCount = req.GuestCount.Value
		b.Adults = req.Adults.Value
		b.Children = req.Children.Value
		b.TotalRoomsBooked = req.TotalRoomsBooked.Value
		b.TotalDaysAtStay = req.TotalDaysAtStay.Value
		b.RoomPricePerDay = req.RoomPricePerDay.Value
	}

	return b
}

// UpdatePaymentStatus normalizes rawStatus and stores it on the booking.
func (s *Service) UpdatePaymentStatus(ctx context.Context, bookingID, rawStatus string) (PaymentStatus, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return "", ErrInvalidBookingID
	}

	status := NormalizePaymentStatus(rawStatus)
	if err := s.store.UpdatePaymentStatus(ctx, bookingID, status); err != nil {
		return "", err
	}

	logger.FromContext(ctx).Info().
		Str("booking_id", bookingID).
		Str("payment_status", string(status)).
		Msg("payment status updated")
	return status, nil
}

// Get returns a stored booking.
func (s *Service) Get(ctx context.Context, bookingID string) (*Booking, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	return s.store.GetByID(ctx, bookingID)
}
