package split

import "github.com/fkhayef/splitease/internal/core"

// =============================================================================
// PERCENTAGE SPLIT STRATEGY
// Divides the expense based on specified percentages for each participant
// =============================================================================

// PercentageStrategy implements the Strategy interface for percentage-based splits
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() SplitType {
	return SplitTypePercentage
}

// Validate checks if the inputs are valid for a percentage split
func (s *PercentageStrategy) Validate(total float64, participants []SplitInput) error {
	selected, err := checkSelection(total, participants)
	if err != nil {
		return err
	}

	var totalPercentage float64
	for _, p := range selected {
		if p.Percentage == nil {
			return ErrMissingPercentage
		}
		if *p.Percentage < 0 || *p.Percentage > 100 {
			return ErrPercentageOutOfRange
		}
		totalPercentage += *p.Percentage
	}

	// Allow for small floating point errors (99.99 to 100.01)
	if !core.WithinTolerance(totalPercentage, 100) {
		return ErrInvalidPercentages
	}

	return nil
}

// Allocate converts each participant's percentage into an amount and
// checks the result against the total like any custom split.
func (s *PercentageStrategy) Allocate(total float64, participants []SplitInput) ([]Allocation, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	selected := selectedOnly(participants)
	out := make([]Allocation, len(selected))
	for i, p := range selected {
		out[i] = Allocation{
			MemberID: p.MemberID,
			Name:     p.Name,
			Amount:   total * (*p.Percentage) / 100,
		}
	}

	if err := ValidateCustomSplit(total, out); err != nil {
		return nil, err
	}
	return out, nil
}
