package economy

import "errors"

// Engine failures. All are expected, recoverable, and user-facing;
// handlers map each one to a reply. None is fatal to the process.
var (
	ErrAlreadyRegistered    = errors.New("account already registered")
	ErrNoAccount            = errors.New("no account registered")
	ErrLoanActive           = errors.New("a loan is already active")
	ErrNoActiveLoan         = errors.New("no active loan")
	ErrAmountOutOfRange     = errors.New("amount out of allowed range")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrUnknownSymbol        = errors.New("unknown stock symbol")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrTierOutOfOrder       = errors.New("tier must be purchased in order")
)
