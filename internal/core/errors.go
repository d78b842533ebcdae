package core

import (
	"errors"
	"fmt"
)

// Sentinels matched through errors.Is on the typed errors below.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrSplitMismatch = errors.New("split does not match total")
)

// InvalidInputError is returned when a calculation cannot run at all,
// typically because there is nobody to divide the amount between.
type InvalidInputError struct {
	Reason string
	Count  int // participant count seen by the failing call
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s (participants: %d)", e.Reason, e.Count)
}

// Is makes errors.Is(err, ErrInvalidInput) true.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// SplitMismatchError is returned when a custom allocation does not add up
// to the expense total. Difference is Sum - Total.
type SplitMismatchError struct {
	Total      float64
	Sum        float64
	Difference float64
}

func (e *SplitMismatchError) Error() string {
	return fmt.Sprintf("split amounts must equal the total expense amount: total %.2f, split %.2f, off by %.2f",
		e.Total, e.Sum, Abs(e.Difference))
}

// Is makes errors.Is(err, ErrSplitMismatch) true.
func (e *SplitMismatchError) Is(target error) bool {
	return target == ErrSplitMismatch
}

// NewInvalidInput builds an InvalidInputError.
func NewInvalidInput(reason string, count int) error {
	return &InvalidInputError{Reason: reason, Count: count}
}
