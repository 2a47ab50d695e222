package booking

import (
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Mode distinguishes nightly hotel stays from monthly paying-guest stays.
type Mode string

const (
	ModeHotel       Mode = "hotel"
	ModePayingGuest Mode = "pg"
)

// ParseMode accepts "hotel" or "pg" in any case.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeHotel:
		return ModeHotel, true
	case ModePayingGuest:
		return ModePayingGuest, true
	}
	return "", false
}

const (
	// PayAtHotel is the payment type that skips the online transaction and the wallet.
	PayAtHotel = "Pay at Hotel"

	// HotelTypePayingGuest is stored as the hotel type of every paying-guest booking.
	HotelTypePayingGuest = "PG"

	WalletUsedYes = "Yes"
	WalletUsedNo  = "No"
)

// Booking is a row of bookings_info.
type Booking struct {
	BookingID   string `db:"booking_id"`
	BookingMode Mode   `db:"booking_mode"`
	PartnerID   string `db:"partner_id"`
	HotelID     string `db:"hotel_id"`
	HotelName   string `db:"hotel_name"`
	HotelType   string `db:"hotel_type"`
	GuestName   string `db:"guest_name"`
	Email       string `db:"email"`
	UserID      string `db:"user_id"`

	CheckInDate  sql.NullTime `db:"check_in_date"`
	CheckOutDate sql.NullTime `db:"check_out_date"`

	GuestCount       int             `db:"guest_count"`
	Adults           int             `db:"adults"`
	Children         int             `db:"children"`
	TotalRoomsBooked int             `db:"total_rooms_booked"`
	TotalDaysAtStay  int             `db:"total_days_at_stay"`
	RoomPricePerDay  decimal.Decimal `db:"room_price_per_day"`
	AllDaysPrice     decimal.Decimal `db:"all_days_price"`
	GST              decimal.Decimal `db:"gst"`

	OriginalAmount     decimal.Decimal `db:"original_amount"`
	FinalPayableAmount decimal.Decimal `db:"final_payable_amount"`
	AmountPaidOnline   decimal.Decimal `db:"amount_paid_online"`
	DueAmountAtHotel   decimal.Decimal `db:"due_amount_at_hotel"`

	PaymentMethodType string         `db:"payment_method_type"`
	PaidVia           string         `db:"paid_via"`
	PaymentStatus     PaymentStatus  `db:"payment_status"`
	TransactionID     sql.NullString `db:"transaction_id"`

	WalletUsed           string          `db:"wallet_used"`
	WalletAmountDeducted decimal.Decimal `db:"wallet_amount_deducted"`
	CouponCode           string          `db:"coupon_code"`
	CouponDiscountAmount decimal.Decimal `db:"coupon_discount_amount"`

	RoomType          string          `db:"room_type"`
	RoomPricePerMonth decimal.Decimal `db:"room_price_per_month"`
	Months            int             `db:"months"`
	HotelAddress      string          `db:"hotel_address"`
	HotelContact      string          `db:"hotel_contact"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// recordWalletDebit stores the amount actually taken from the wallet.
func (b *Booking) recordWalletDebit(debit decimal.Decimal) {
	b.WalletAmountDeducted = debit
	if debit.IsPositive() {
		b.WalletUsed = WalletUsedYes
	} else {
		b.WalletUsed = WalletUsedNo
	}
}
