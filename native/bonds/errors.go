package bonds

import "errors"

var (
	ErrNilState         = errors.New("bonds: state not configured")
	ErrNilBank          = errors.New("bonds: bank not configured")
	ErrNilLedger        = errors.New("bonds: lock ledger not configured")
	ErrNotInitialized   = errors.New("bonds: terms not set")
	ErrPaused           = errors.New("bonds: teller paused")
	ErrNotStarted       = errors.New("bonds: sale not started")
	ErrConcluded        = errors.New("bonds: sale concluded")
	ErrInvalidAmount    = errors.New("bonds: amount must be positive")
	ErrZeroPrice        = errors.New("bonds: price is zero")
	ErrCapacityExceeded = errors.New("bonds: insufficient capacity")
	ErrMaxPayout        = errors.New("bonds: payout exceeds maximum")
	ErrSlippage         = errors.New("bonds: payout below minimum out")
	ErrBondNotFound     = errors.New("bonds: bond not found")
	ErrNotBondOwner     = errors.New("bonds: caller is not the bond owner")
	ErrInvalidTerms     = errors.New("bonds: invalid terms")
	ErrFeeTooHigh       = errors.New("bonds: fee exceeds 10000 bps")
	ErrUnknownSigner    = errors.New("bonds: price signer not registered")
	ErrPriceExpired     = errors.New("bonds: price attestation expired")
	ErrBadPriceSig      = errors.New("bonds: price signature invalid")
)
