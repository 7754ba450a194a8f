package service

import "errors"

var (
	ErrInvalidSessionID = errors.New("session id must not be empty")
	ErrEmptyCart        = errors.New("cart is empty, nothing to checkout")
	ErrOrderSubmission  = errors.New("order submission failed")
	ErrCartUnavailable  = errors.New("cart storage unavailable")
)
