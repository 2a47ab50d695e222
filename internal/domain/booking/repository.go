package booking

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/staybook/booking-api/internal/pkg/database"
)

// primaryKeyConstraint names the bookings_info primary key.
const primaryKeyConstraint = "bookings_info_pkey"

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// InsertTx writes the booking row inside tx. A duplicate booking id maps to
// ErrBookingIDConflict.
func (r *Repository) InsertTx(ctx context.Context, tx *sqlx.Tx, b *Booking) error {
	query := `
		INSERT INTO bookings_info (
			booking_id, booking_mode, partner_id, hotel_id, hotel_name, hotel_type,
			guest_name, email, user_id, check_in_date, check_out_date,
			guest_count, adults, children, total_rooms_booked, total_days_at_stay,
			room_price_per_day, all_days_price, gst,
			original_amount, final_payable_amount, amount_paid_online, due_amount_at_hotel,
			payment_method_type, paid_via, payment_status, transaction_id,
			wallet_used, wallet_amount_deducted, coupon_code, coupon_discount_amount,
			room_type, room_price_per_month, months, hotel_address, hotel_contact
		) VALUES (
			:booking_id, :booking_mode, :partner_id, :hotel_id, :hotel_name, :hotel_type,
			:guest_name, :email, :user_id, :check_in_date, :check_out_date,
			:guest_count, :adults, :children, :total_rooms_booked, :total_days_at_stay,
			:room_price_per_day, :all_days_price, :gst,
			:original_amount, :final_payable_amount, :amount_paid_online, :due_amount_at_hotel,
			:payment_method_type, :paid_via, :payment_status, :transaction_id,
			:wallet_used, :wallet_amount_deducted, :coupon_code, :coupon_discount_amount,
			:room_type, :room_price_per_month, :months, :hotel_address, :hotel_contact
		)`

	if _, err := tx.NamedExecContext(ctx, query, b); err != nil {
		if database.IsUniqueViolation(err, primaryKeyConstraint) {
			return ErrBookingIDConflict
		}
		return err
	}
	return nil
}

// UpdatePaymentStatus sets the payment status of one booking.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, bookingID string, status PaymentStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings_info
		SET payment_status = $1, updated_at = now()
		WHERE booking_id = $2
	`, status, bookingID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// GetByID returns a booking by id.
func (r *Repository) GetByID(ctx context.Context, bookingID string) (*Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, `SELECT * FROM bookings_info WHERE booking_id = $1`, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
