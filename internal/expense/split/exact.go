package split

// =============================================================================
// EXACT SPLIT STRATEGY
// Each selected participant owes a manually entered amount (must sum to total)
// =============================================================================

// ExactStrategy implements the Strategy interface for custom amount splits
type ExactStrategy struct{}

// Type returns the split type identifier
func (s *ExactStrategy) Type() SplitType {
	return SplitTypeExact
}

// Validate checks if the inputs are valid for an exact split
func (s *ExactStrategy) Validate(total float64, participants []SplitInput) error {
	_, err := s.allocations(total, participants)
	return err
}

// Allocate returns the amounts entered for each selected participant
func (s *ExactStrategy) Allocate(total float64, participants []SplitInput) ([]Allocation, error) {
	return s.allocations(total, participants)
}

func (s *ExactStrategy) allocations(total float64, participants []SplitInput) ([]Allocation, error) {
	selected, err := checkSelection(total, participants)
	if err != nil {
		return nil, err
	}

	out := make([]Allocation, len(selected))
	for i, p := range selected {
		if p.Amount == nil {
			return nil, ErrMissingExactAmount
		}
		out[i] = Allocation{MemberID: p.MemberID, Name: p.Name, Amount: *p.Amount}
	}

	if err := ValidateCustomSplit(total, out); err != nil {
		return nil, err
	}
	return out, nil
}
