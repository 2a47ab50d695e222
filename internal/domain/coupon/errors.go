package coupon

import "errors"

var (
	ErrCouponNotFound = errors.New("coupon not found")
	ErrCouponExists   = errors.New("coupon code already exists")
	ErrInvalidCode    = errors.New("coupon code is required")
)
