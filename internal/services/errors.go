package services

import "errors"

// Expected business outcomes surfaced as errors
var (
	ErrWorkOrderIDExhausted = errors.New("could not generate a unique work order ID")
	ErrCartNotDraft         = errors.New("cart is not in draft status")
	ErrEmptyCart            = errors.New("cart has no items")
	ErrInvalidItem          = errors.New("item quantity and unit price must be positive")
	ErrLoadTimeout          = errors.New("company data load timed out")
	ErrLoadSuperseded       = errors.New("company data load superseded by a newer request")
	ErrPaymentDeclined      = errors.New("payment authorization declined")
)
