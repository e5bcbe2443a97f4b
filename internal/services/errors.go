package services

import "errors"

// Validation and guard errors caught before any network call is made.
var (
	ErrQuantityTooLow    = errors.New("quantity must be at least 1")
	ErrEmptyDiscountCode = errors.New("enter a discount code")
	ErrEmptyCart         = errors.New("add items before checkout")
	ErrNotAuthenticated  = errors.New("please login to continue")
	ErrManagerOnly       = errors.New("manager role required")
	ErrRemovalDeclined   = errors.New("removal not confirmed")
	ErrMissingIdentifier = errors.New("missing session/transaction id in return URL")
	ErrCheckoutBusy      = errors.New("a checkout attempt is already in progress")
)
