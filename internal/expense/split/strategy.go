package split

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fkhayef/splitease/internal/core"
)

// SplitType defines the type of split strategy
type SplitType string

const (
	SplitTypeEven       SplitType = "EVEN"
	SplitTypeExact      SplitType = "EXACT"
	SplitTypePercentage SplitType = "PERCENTAGE"
)

// SplitInput is one group member as offered to the allocator.
// Only selected members take part in the split.
type SplitInput struct {
	MemberID   uuid.UUID `json:"member_id"`
	Name       string    `json:"name"`
	Selected   bool      `json:"selected"`
	Amount     *float64  `json:"amount,omitempty"`     // For EXACT split
	Percentage *float64  `json:"percentage,omitempty"` // For PERCENTAGE split
}

// Allocation is the amount assigned to a single participant
type Allocation struct {
	MemberID uuid.UUID `json:"member_id"`
	Name     string    `json:"name"`
	Amount   float64   `json:"amount"`
}

// Strategy is the interface that all split strategies must implement
type Strategy interface {
	// Allocate computes the amount owed by every selected participant
	Allocate(total float64, participants []SplitInput) ([]Allocation, error)

	// Type returns the type identifier for this strategy
	Type() SplitType

	// Validate checks if the inputs are valid for this strategy
	Validate(total float64, participants []SplitInput) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewSplitStrategyFactory creates a new factory instance
func NewSplitStrategyFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(splitType SplitType) (Strategy, error) {
	switch splitType {
	case SplitTypeEven:
		return &EvenStrategy{}, nil
	case SplitTypeExact:
		return &ExactStrategy{}, nil
	case SplitTypePercentage:
		return &PercentageStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSplitType, splitType)
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests)
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	return f.Create(SplitType(splitType))
}

var (
	ErrUnknownSplitType     = errors.New("unknown split type")
	ErrNegativeAmount       = errors.New("amounts cannot be negative")
	ErrMissingExactAmount   = errors.New("exact amount required for all selected participants")
	ErrMissingPercentage    = errors.New("percentage value required for all selected participants")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
	ErrInvalidPercentages   = errors.New("percentages must sum to 100")
	ErrDuplicateParticipant = errors.New("participant listed more than once")
)

// EqualSplit divides total evenly between the selected participants, in input order.
func EqualSplit(total float64, participants []SplitInput) ([]Allocation, error) {
	selected := selectedOnly(participants)
	if len(selected) == 0 {
		return nil, core.NewInvalidInput("select at least one member to split with", 0)
	}
	if total < 0 || !core.IsFinite(total) {
		return nil, core.NewInvalidInput("total must be a non-negative amount", len(selected))
	}

	share := total / float64(len(selected))
	out := make([]Allocation, len(selected))
	for i, p := range selected {
		out[i] = Allocation{MemberID: p.MemberID, Name: p.Name, Amount: share}
	}
	return out, nil
}

// ValidateCustomSplit checks that allocations add up to total within core.Tolerance.
func ValidateCustomSplit(total float64, allocations []Allocation) error {
	if len(allocations) == 0 {
		return core.NewInvalidInput("a custom split needs at least one allocation", 0)
	}

	var sum float64
	for _, a := range allocations {
		if a.Amount < 0 {
			return ErrNegativeAmount
		}
		sum += a.Amount
	}

	if !core.WithinTolerance(sum, total) {
		return &core.SplitMismatchError{Total: total, Sum: sum, Difference: sum - total}
	}
	return nil
}

// selectedOnly keeps the participants marked selected
func selectedOnly(participants []SplitInput) []SplitInput {
	selected := make([]SplitInput, 0, len(participants))
	for _, p := range participants {
		if p.Selected {
			selected = append(selected, p)
		}
	}
	return selected
}

// checkSelection rejects an empty selection, a bad total and repeated member IDs
func checkSelection(total float64, participants []SplitInput) ([]SplitInput, error) {
	selected := selectedOnly(participants)
	if len(selected) == 0 {
		return nil, core.NewInvalidInput("select at least one member to split with", 0)
	}
	if total < 0 || !core.IsFinite(total) {
		return nil, core.NewInvalidInput("total must be a non-negative amount", len(selected))
	}

	seen := make(map[uuid.UUID]struct{}, len(selected))
	for _, p := range selected {
		if _, dup := seen[p.MemberID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateParticipant, p.MemberID)
		}
		seen[p.MemberID] = struct{}{}
	}
	return selected, nil
}
