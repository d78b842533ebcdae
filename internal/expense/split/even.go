package split

// =============================================================================
// EVEN SPLIT STRATEGY
// Divides the expense equally among the selected participants
// =============================================================================

// EvenStrategy implements the Strategy interface for even splits
type EvenStrategy struct{}

// Type returns the split type identifier
func (s *EvenStrategy) Type() SplitType {
	return SplitTypeEven
}

// Validate checks if the inputs are valid for an even split
func (s *EvenStrategy) Validate(total float64, participants []SplitInput) error {
	_, err := checkSelection(total, participants)
	return err
}

// Allocate gives every selected participant total / count.
// Shares are not rounded; display precision belongs to the caller.
func (s *EvenStrategy) Allocate(total float64, participants []SplitInput) ([]Allocation, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}
	return EqualSplit(total, participants)
}
