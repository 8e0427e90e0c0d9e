package token

import "errors"

var (
	ErrNilState              = errors.New("token: state not configured")
	ErrInvalidSymbol         = errors.New("token: invalid symbol")
	ErrInvalidAmount         = errors.New("token: amount must be positive")
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrPermitExpired         = errors.New("token: permit deadline exceeded")
	ErrPermitInvalid         = errors.New("token: permit signature invalid")
	ErrNotMinter             = errors.New("token: caller is not the minter")
	ErrNoMinter              = errors.New("token: no minter registered")
)
