package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrDuplicateAccount    = errors.New("account id already exists")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidBalance      = errors.New("initial balance must not be negative")
	ErrSelfTransfer        = errors.New("cannot transfer to same account")
	ErrInvalidRequest      = errors.New("invalid request")
)
