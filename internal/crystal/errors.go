package crystal

import (
	"errors"
	"fmt"
)

// Domain errors for constitutive updates.
var (
	// ErrConfiguration indicates an unsupported orientation or an invalid material constant.
	ErrConfiguration = errors.New("crystal: invalid configuration")

	// ErrDomain indicates the flow-rule exponentiation left the real-valued domain.
	ErrDomain = errors.New("crystal: flow-rule argument out of range")

	// ErrSlipIncrementExceeded indicates |γ̇|·h grew past the configured limit.
	ErrSlipIncrementExceeded = errors.New("crystal: maximum allowable slip increment exceeded")

	// ErrNonFiniteState indicates a step produced NaN or Inf.
	ErrNonFiniteState = errors.New("crystal: state is not finite (NaN or Inf detected)")
)

// ConfigurationError reports the offending field and value.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("crystal: invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// DomainError carries the stresses that pushed (|τ|-ST)/τ0 past 1.
type DomainError struct {
	Resolved  float64
	Threshold float64
	Ratio     float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("crystal: flow-rule argument out of range: (|tau|-ST)/tau0 = %.6g > 1 (tau=%.6g, ST=%.6g)",
		e.Ratio, e.Resolved, e.Threshold)
}

func (e *DomainError) Unwrap() error {
	return ErrDomain
}

// SlipIncrementError reports the slip increment that exceeded the limit.
type SlipIncrementError struct {
	Increment float64
	Limit     float64
}

func (e *SlipIncrementError) Error() string {
	return fmt.Sprintf("crystal: slip increment %.6g exceeds limit %.6g", e.Increment, e.Limit)
}

func (e *SlipIncrementError) Unwrap() error {
	return ErrSlipIncrementExceeded
}
