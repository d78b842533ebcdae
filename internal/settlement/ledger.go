package settlement

import (
	"fmt"

	"github.com/google/uuid"
)

// Ledger accumulates payments per member into contributions, keeping the
// order in which members were seeded. It is keyed by member ID, so two
// members who share a display name stay separate.
type Ledger struct {
	entries []Contribution
	index   map[uuid.UUID]int
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{index: make(map[uuid.UUID]int)}
}

// Seed registers a member with a zero contribution. Seeding twice is a no-op.
func (l *Ledger) Seed(memberID uuid.UUID, name string) {
	if _, ok := l.index[memberID]; ok {
		return
	}
	l.index[memberID] = len(l.entries)
	l.entries = append(l.entries, Contribution{MemberID: memberID, Name: name})
}

// Record adds amount to a seeded member's contribution.
func (l *Ledger) Record(memberID uuid.UUID, amount float64) error {
	i, ok := l.index[memberID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMember, memberID)
	}
	l.entries[i].Amount += amount
	return nil
}

// Contributions returns a copy of the entries in seed order.
func (l *Ledger) Contributions() []Contribution {
	out := make([]Contribution, len(l.entries))
	copy(out, l.entries)
	return out
}
