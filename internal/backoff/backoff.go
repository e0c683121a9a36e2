// Package backoff computes retry delays. The dispatcher's contract is a
// linear schedule (base * (attempt + 1)) even though delay-between-retries
// is conventionally described as "backoff" with exponential growth; the
// exponential strategy exists as an explicit opt-in.
package backoff

import "time"

// Strategy defines the interface for delay calculation algorithms.
type Strategy interface {
	// Delay returns the wait duration after the given zero-based attempt.
	Delay(attempt int, base time.Duration) time.Duration
}

// LinearStrategy grows the delay as base * (attempt + 1): after the first
// failed attempt the wait is base, after the second 2*base, and so on.
type LinearStrategy struct{}

// Delay implements the Strategy interface for linear growth.
func (LinearStrategy) Delay(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return base * time.Duration(attempt+1)
}

// ExponentialStrategy grows the delay as base * 2^attempt.
type ExponentialStrategy struct{}

// Delay implements the Strategy interface for exponential growth.
func (ExponentialStrategy) Delay(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	// Cap the shift so the duration arithmetic cannot overflow.
	if attempt > 30 {
		attempt = 30
	}
	return base * time.Duration(int64(1)<<attempt)
}

// Calculator provides delay calculation using a configurable strategy.
type Calculator struct {
	strategy Strategy
}

// NewCalculator creates a calculator with the specified strategy.
func NewCalculator(strategy Strategy) *Calculator {
	return &Calculator{strategy: strategy}
}

// Delay computes the wait duration for the given attempt.
func (c *Calculator) Delay(attempt int, base time.Duration) time.Duration {
	return c.strategy.Delay(attempt, base)
}

// Linear returns a calculator with the default linear schedule.
func Linear() *Calculator {
	return NewCalculator(LinearStrategy{})
}

// Exponential returns a calculator with doubling delays.
func Exponential() *Calculator {
	return NewCalculator(ExponentialStrategy{})
}
