package booking

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/staybook/booking-api/internal/pkg/logger"
	"github.com/staybook/booking-api/internal/pkg/normalize"
)

// walletCapRatio is the largest share of the original amount a wallet may cover.
var walletCapRatio = decimal.NewFromFloat(0.5)

// CreateBookingRequest for POST /booking.
// Keys keep the wire names existing booking clients already send.
type CreateBookingRequest struct {
	BookingMode string `json:"Booking_Mode" validate:"booking_mode"`

	PartnerID    normalize.FlexString `json:"Partner_ID"`
	HotelID      normalize.FlexString `json:"Hotel_ID" validate:"notblank"`
	HotelName    normalize.FlexString `json:"Hotel_Name"`
	HotelType    normalize.FlexString `json:"Hotel_Type"`
	HotelAddress normalize.FlexString `json:"Hotel_Address"`
	HotelContact normalize.FlexString `json:"Hotel_Contact"`
	GuestName    normalize.FlexString `json:"Guest_Name" validate:"notblank"`
	Email        normalize.FlexString `json:"Email" validate:"omitempty,email"`
	UserID       normalize.FlexString `json:"User_ID"`

	CheckInDate  normalize.FlexDate `json:"Check_In_Date"`
	CheckOutDate normalize.FlexDate `json:"Check_Out_Date"`

	GuestCount       normalize.FlexInt    `json:"Guest_Count"`
	Adults           normalize.FlexInt    `json:"Adults"`
	Children         normalize.FlexInt    `json:"Children"`
	TotalRoomsBooked normalize.FlexInt    `json:"Total_Rooms_Booked"`
	TotalDaysAtStay  normalize.FlexInt    `json:"Total_Days_at_Stay"`
	RoomPricePerDay  normalize.FlexAmount `json:"Room_Price_Per_Day"`
	Persons          normalize.FlexInt    `json:"Persons"`
	Months           normalize.FlexInt    `json:"Months"`

	AllDaysPrice   normalize.FlexAmount `json:"All_Days_Price"`
	AllMonthsPrice normalize.FlexAmount `json:"All_Months_Price"`
	GST            normalize.FlexAmount `json:"GST"`

	TotalPrice         normalize.FlexAmount `json:"Total_Price"`
	OriginalTotalPrice normalize.FlexAmount `json:"Original_Total_Price"`
	FinalPayableAmount normalize.FlexAmount `json:"Final_Payable_Amount"`
	AmountPaidOnline   normalize.FlexAmount `json:"Amount_Paid_Online"`
	DueAmountAtHotel   normalize.FlexAmount `json:"Due_Amount_At_Hotel"`

	PaymentType   normalize.FlexString `json:"Payment_Type"`
	PaidVia       normalize.FlexString `json:"Paid_Via"`
	PaymentStatus normalize.FlexString `json:"Payment_Status"`

	WalletUsed   normalize.FlexString `json:"Wallet_Used"`
	WalletAmount normalize.FlexAmount `json:"Wallet_Amount"`

	CouponCode           normalize.FlexString `json:"Coupon_Code"`
	CouponDiscountAmount normalize.FlexAmount `json:"Coupon_Discount_Amount"`

	RoomType          normalize.FlexString `json:"Room_Type"`
	SelectedRoomType  normalize.FlexString `json:"Selected_Room_Type"`
	RoomPricePerMonth normalize.FlexAmount `json:"Room_Price_Per_Month"`
	SelectedRoomPrice normalize.FlexAmount `json:"Selected_Room_Price"`
	MonthlyPrice      normalize.FlexAmount `json:"Monthly_Price"`
}

// Mode returns the booking mode. An explicit Booking_Mode wins; without it
// the presence of Selected_Room_Type or Monthly_Price marks a paying-guest
// booking, which is how older clients signal it.
func (r *CreateBookingRequest) Mode(ctx context.Context) Mode {
	if m, ok := ParseMode(r.BookingMode); ok {
		return m
	}
	mode := ModeHotel
	if r.SelectedRoomType.Present || r.MonthlyPrice.Present {
		mode = ModePayingGuest
	}
	logger.FromContext(ctx).Debug().Str("booking_mode", string(mode)).Msg("booking mode inferred from payload keys")
	return mode
}

// OriginalAmount resolves Total_Price, falling back to Original_Total_Price.
func (r *CreateBookingRequest) OriginalAmount() decimal.Decimal {
	return pickAmount(r.TotalPrice, r.OriginalTotalPrice)
}

// AllPeriodPrice resolves All_Days_Price, falling back to All_Months_Price.
func (r *CreateBookingRequest) AllPeriodPrice() decimal.Decimal {
	return pickAmount(r.AllDaysPrice, r.AllMonthsPrice)
}

// ResolvedRoomType resolves Room_Type, falling back to Selected_Room_Type.
func (r *CreateBookingRequest) ResolvedRoomType() string {
	if r.RoomType.Present {
		return r.RoomType.Value
	}
	return r.SelectedRoomType.Value
}

// MonthlyRoomPrice resolves Room_Price_Per_Month, falling back to Selected_Room_Price.
func (r *CreateBookingRequest) MonthlyRoomPrice() decimal.Decimal {
	return pickAmount(r.RoomPricePerMonth, r.SelectedRoomPrice)
}

// MonthCount defaults to one month when the key is absent.
func (r *CreateBookingRequest) MonthCount() int {
	if !r.Months.Present {
		return 1
	}
	return r.Months.Value
}

// PaysAtHotel reports whether the guest settles at the property.
func (r *CreateBookingRequest) PaysAtHotel() bool {
	return strings.EqualFold(strings.TrimSpace(r.PaymentType.Value), PayAtHotel)
}

// WantsWallet reports whether the client asked to spend wallet balance.
func (r *CreateBookingRequest) WantsWallet() bool {
	switch strings.ToLower(strings.TrimSpace(r.WalletUsed.Value)) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

// CappedWalletAmount is the requested wallet amount in whole cents, limited to
// half of the original amount. Without a positive original amount the request
// is kept. Both values round toward zero so the cap never exceeds half.
func (r *CreateBookingRequest) CappedWalletAmount() decimal.Decimal {
	requested := r.WalletAmount.Value.RoundDown(2)
	original := r.OriginalAmount()
	if original.IsPositive() && requested.IsPositive() {
		maxAllowed := original.Mul(walletCapRatio).RoundDown(2)
		if requested.GreaterThan(maxAllowed) {
			return maxAllowed
		}
	}
	return requested
}

// warnDiscardedDates logs dates that were sent but will be stored as NULL.
func (r *CreateBookingRequest) warnDiscardedDates(ctx context.Context) {
	dates := []struct {
		field string
		date  normalize.FlexDate
	}{
		{field: "Check_In_Date", date: r.CheckInDate},
		{field: "Check_Out_Date", date: r.CheckOutDate},
	}
	for _, d := range dates {
		if d.date.Discarded() {
			logger.FromContext(ctx).Warn().
				Str("field", d.field).
				Str("input", d.date.Input).
				Msg("unparsable date stored as NULL")
		}
	}
}

func (r *CreateBookingRequest) userID() string {
	return strings.TrimSpace(r.UserID.Value)
}

func (r *CreateBookingRequest) couponCode() string {
	return strings.TrimSpace(r.CouponCode.Value)
}

func pickAmount(primary, alias normalize.FlexAmount) decimal.Decimal {
	if primary.Present {
		return primary.Value
	}
	return alias.Value
}

// CreateBookingResponse is returned after a committed booking.
type CreateBookingResponse struct {
	BookingID            string        `json:"booking_id"`
	Message              string        `json:"message"`
	TransactionID        string        `json:"transaction_id,omitempty"`
	PaymentStatus        PaymentStatus `json:"payment_status"`
	WalletAmountDeducted string        `json:"wallet_amount_deducted"`
}

// UpdatePaymentRequest for POST /updatePayment
type UpdatePaymentRequest struct {
	BookingID     normalize.FlexString `json:"Booking_ID" validate:"notblank"`
	PaymentStatus normalize.FlexString `json:"Payment_Status"`
}

// UpdatePaymentResponse is returned after a payment status update.
type UpdatePaymentResponse struct {
	BookingID     string        `json:"booking_id"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Message       string        `json:"message"`
}

const (
	MessageBookingStored  = "Booking stored successfully"
	MessagePaymentUpdated = "Payment updated successfully"
)

// BookingResponse is the read model for GET /booking/{id}
type BookingResponse struct {
	BookingID            string        `json:"booking_id"`
	BookingMode          Mode          `json:"booking_mode"`
	HotelID              string        `json:"hotel_id"`
	HotelName            string        `json:"hotel_name,omitempty"`
	HotelType            string        `json:"hotel_type,omitempty"`
	GuestName            string        `json:"guest_name"`
	UserID               string        `json:"user_id,omitempty"`
	CheckInDate          *string       `json:"check_in_date,omitempty"`
	CheckOutDate         *string       `json:"check_out_date,omitempty"`
	GuestCount           int           `json:"guest_count"`
	TotalRoomsBooked     int           `json:"total_rooms_booked"`
	TotalDaysAtStay      int           `json:"total_days_at_stay"`
	Months               int           `json:"months"`
	OriginalAmount       string        `json:"original_amount"`
	FinalPayableAmount   string        `json:"final_payable_amount"`
	AmountPaidOnline     string        `json:"amount_paid_online"`
	DueAmountAtHotel     string        `json:"due_amount_at_hotel"`
	PaymentMethodType    string        `json:"payment_method_type,omitempty"`
	PaymentStatus        PaymentStatus `json:"payment_status"`
	TransactionID        string        `json:"transaction_id,omitempty"`
	WalletUsed           string        `json:"wallet_used"`
	WalletAmountDeducted string        `json:"wallet_amount_deducted"`
	CouponCode           string        `json:"coupon_code,omitempty"`
	CreatedAt            string        `json:"created_at"`
}

// BookingResponseFromEntity converts a stored booking
func BookingResponseFromEntity(b *Booking) *BookingResponse {
	return &BookingResponse{
		BookingID:            b.BookingID,
		BookingMode:          b.BookingMode,
		HotelID:              b.HotelID,
		HotelName:            b.HotelName,
		HotelType:            b.HotelType,
		GuestName:            b.GuestName,
		UserID:               b.UserID,
		CheckInDate:          formatDate(b.CheckInDate),
		CheckOutDate:         formatDate(b.CheckOutDate),
		GuestCount:           b.GuestCount,
		TotalRoomsBooked:     b.TotalRoomsBooked,
		TotalDaysAtStay:      b.TotalDaysAtStay,
		Months:               b.Months,
		OriginalAmount:       b.OriginalAmount.StringFixed(2),
		FinalPayableAmount:   b.FinalPayableAmount.StringFixed(2),
		AmountPaidOnline:     b.AmountPaidOnline.StringFixed(2),
		DueAmountAtHotel:     b.DueAmountAtHotel.StringFixed(2),
		PaymentMethodType:    b.PaymentMethodType,
		PaymentStatus:        b.PaymentStatus,
		TransactionID:        b.TransactionID.String,
		WalletUsed:           b.WalletUsed,
		WalletAmountDeducted: b.WalletAmountDeducted.StringFixed(2),
		CouponCode:           b.CouponCode,
		CreatedAt:            b.CreatedAt.Format(time.RFC3339),
	}
}

func formatDate(t sql.NullTime) *string {
	if !t.Valid {
		return nil
	}
	s := t.Time.Format(time.DateOnly)
	return &s
}
