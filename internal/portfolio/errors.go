package portfolio

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-tracker/internal/models"
)

// ValidationError reports a missing or malformed input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// InsufficientFundsError rejects a buy or withdrawal that exceeds the cash
// balance in the matching currency
type InsufficientFundsError struct {
	Currency  string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient cash: need %s %s, have %s %s",
		e.Required.String(), e.Currency, e.Available.String(), e.Currency)
}

// InsufficientHoldingsError rejects a sell larger than the quantity held
// immediately before it
type InsufficientHoldingsError struct {
	Ticker    string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("insufficient holdings of %s: selling %s, holding %s",
		e.Ticker, e.Requested.String(), e.Available.String())
}

// PersistenceError wraps a failed store read or write
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// storeErr passes not-found errors through and wraps everything else as a
// PersistenceError
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrNotFound) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsNotFound reports whether err means the requested record does not exist
func IsNotFound(err error) bool { return errors.Is(err, models.ErrNotFound) }
