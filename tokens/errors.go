package tokens

import (
	"errors"
	"fmt"
	"math/big"
)

// common errors
var (
	ErrInvalidParam        = errors.New("invalid param")
	ErrAmountTooLow        = errors.New("amount too low")
	ErrNoQuoteFound        = errors.New("no quote found")
	ErrUpstreamUnavailable = errors.New("upstream provider unavailable")
	ErrUpstreamTransient   = errors.New("upstream provider transient error")
	ErrPreconditionFailed  = errors.New("precondition failed")

	ErrSwapLiquidityUnavailable = fmt.Errorf("%w: swap liquidity unavailable", ErrUpstreamUnavailable)
	ErrSourcesNotSupported      = fmt.Errorf("%w: sources not supported", ErrInvalidParam)
	ErrRouteNotSupported        = fmt.Errorf("%w: route not supported", ErrInvalidParam)
	ErrTokenNotSupported        = fmt.Errorf("%w: token not supported", ErrInvalidParam)
	ErrNotImplemented           = fmt.Errorf("%w: not implemented", ErrPreconditionFailed)
	ErrMissEntryPoint           = fmt.Errorf("%w: miss entry point config", ErrPreconditionFailed)
	ErrRPCQueryError            = fmt.Errorf("%w: rpc query error", ErrUpstreamTransient)
)

// ErrorKind error kind surfaced to clients
type ErrorKind string

// ErrorKind constants
const (
	KindInvalidParam        ErrorKind = "INVALID_PARAM"
	KindAmountTooLow        ErrorKind = "AMOUNT_TOO_LOW"
	KindNoQuoteFound        ErrorKind = "NO_QUOTE_FOUND"
	KindUpstreamUnavailable ErrorKind = "UPSTREAM_PROVIDER_UNAVAILABLE"
	KindUpstreamTransient   ErrorKind = "UPSTREAM_TRANSIENT"
	KindPreconditionFailed  ErrorKind = "PRECONDITION_FAILED"
	KindInternal            ErrorKind = "INTERNAL_ERROR"
)

// KindOf classify error
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAmountTooLow):
		return KindAmountTooLow
	case errors.Is(err, ErrInvalidParam):
		return KindInvalidParam
	case errors.Is(err, ErrPreconditionFailed):
		return KindPreconditionFailed
	case errors.Is(err, ErrUpstreamUnavailable):
		return KindUpstreamUnavailable
	case errors.Is(err, ErrUpstreamTransient):
		return KindUpstreamTransient
	case errors.Is(err, ErrNoQuoteFound):
		return KindNoQuoteFound
	default:
		return KindInternal
	}
}

// IsClientError is caused by request
func IsClientError(err error) bool {
	switch KindOf(err) {
	case KindInvalidParam, KindAmountTooLow, KindNoQuoteFound:
		return true
	}
	return false
}

// AmountTooLowError amount invariant violation with shortfall
type AmountTooLowError struct {
	Reason   string
	Required *big.Int
	Actual   *big.Int
}

// NewAmountTooLowError new amount too low error
func NewAmountTooLowError(reason string, required, actual *big.Int) *AmountTooLowError {
	return &AmountTooLowError{
		Reason:   reason,
		Required: required,
		Actual:   actual,
	}
}

// Error impl error interface
func (e *AmountTooLowError) Error() string {
	return fmt.Sprintf("%v: %v (required %v, actual %v, shortfall %v)",
		ErrAmountTooLow, e.Reason, e.Required, e.Actual, e.Shortfall())
}

// Is match ErrAmountTooLow
func (e *AmountTooLowError) Is(target error) bool {
	return target == ErrAmountTooLow
}

// Shortfall required minus actual
func (e *AmountTooLowError) Shortfall() *big.Int {
	if e.Required == nil || e.Actual == nil {
		return nil
	}
	return new(big.Int).Sub(e.Required, e.Actual)
}

// AssertMinAmount raise AmountTooLowError if actual < required
func AssertMinAmount(reason string, required, actual *big.Int) error {
	if actual == nil || actual.Cmp(required) < 0 {
		return NewAmountTooLowError(reason, required, actual)
	}
	return nil
}
