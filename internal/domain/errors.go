package domain

import "errors"

// ErrValidation marks client-side input errors. Every validation error in this
// package wraps it so callers can tell bad input from remote failures.
var ErrValidation = errors.New("validation failed")

var (
	ErrInvalidPhone    = validationError("enter a valid 10-digit phone number")
	ErrInvalidOTP      = validationError("enter the 6-digit OTP")
	ErrInvalidPincode  = validationError("enter 6-digit pincode")
	ErrInvalidQuantity = validationError("quantity must be a positive integer")
	ErrInvalidRating   = validationError("rating must be between 1 and 5")
	ErrInvalidAddress  = validationError("full name, mobile number, address line and pincode are required")
)

type valErr struct {
	msg string
}

func (e *valErr) Error() string { return e.msg }

func (e *valErr) Unwrap() error { return ErrValidation }

func validationError(msg string) error {
	return &valErr{msg: msg}
}
