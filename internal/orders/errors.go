package orders

import "errors"

// The "Insufficient balance" wording is part of the API contract: clients
// match on it to show the top-up hint.
var (
	ErrInsufficientBalance = errors.New("Insufficient balance in wallet")
	ErrOrderNotFound       = errors.New("order not found")
	ErrWrongCode           = errors.New("wrong confirmation code")
	ErrWrongStatus         = errors.New("order is not in the expected status")
	ErrScheduleNotOnRoute  = errors.New("stop does not belong to the relation")
)
