package backoff

import (
	"testing"
	"time"
)

func TestLinearDelay(t *testing.T) {
	calc := Linear()
	base := 300 * time.Millisecond

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 300 * time.Millisecond},
		{1, 600 * time.Millisecond},
		{2, 900 * time.Millisecond},
		{-1, 300 * time.Millisecond},
	}

	for _, tc := range cases {
		if got := calc.Delay(tc.attempt, base); got != tc.want {
			t.Errorf("Delay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestExponentialDelay(t *testing.T) {
	calc := Exponential()
	base := 100 * time.Millisecond

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{-1, 100 * time.Millisecond},
	}

	for _, tc := range cases {
		if got := calc.Delay(tc.attempt, base); got != tc.want {
			t.Errorf("Delay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestExponentialDelayCapsShift(t *testing.T) {
	calc := Exponential()

	if got := calc.Delay(1000, time.Nanosecond); got != time.Duration(int64(1)<<30) {
		t.Errorf("expected capped shift, got %v", got)
	}
}

func TestZeroBase(t *testing.T) {
	if got := Linear().Delay(5, 0); got != 0 {
		t.Errorf("expected zero delay for zero base, got %v", got)
	}
}

func TestNewCalculatorCustomStrategy(t *testing.T) {
	calc := NewCalculator(LinearStrategy{})

	if got := calc.Delay(1, time.Second); got != 2*time.Second {
		t.Errorf("expected 2s, got %v", got)
	}
}
