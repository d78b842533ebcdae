package settlement

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fkhayef/splitease/internal/core"
)

// Status classifies a participant's balance against an equal share.
// The zero value is not a valid status.
type Status uint8

const (
	StatusSettled Status = iota + 1
	StatusOwes
	StatusReceives
)

func (s Status) String() string {
	switch s {
	case StatusOwes:
		return "owes"
	case StatusReceives:
		return "receives"
	case StatusSettled:
		return "settled"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// MarshalText encodes the status as its lowercase name.
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusOwes, StatusReceives, StatusSettled:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("unknown settlement status %d", uint8(s))
	}
}

// UnmarshalText accepts the names produced by MarshalText.
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "owes":
		*s = StatusOwes
	case "receives":
		*s = StatusReceives
	case "settled":
		*s = StatusSettled
	default:
		return fmt.Errorf("unknown settlement status %q", b)
	}
	return nil
}

// Contribution is the cumulative amount one member has paid toward a total.
type Contribution struct {
	MemberID uuid.UUID
	Name     string
	Amount   float64
}

// Result is one member's position after a calculation.
// Pending is always non-negative; Status says which way the money flows.
type Result struct {
	MemberID uuid.UUID `json:"member_id"`
	Name     string    `json:"name"`
	Pending  float64   `json:"pending"`
	Status   Status    `json:"status"`
}

// Summary is the header figures of a settlement view.
type Summary struct {
	Total        float64 `json:"total"`
	Share        float64 `json:"share"`
	TotalPaid    float64 `json:"total_paid"`
	Remaining    float64 `json:"remaining"`
	Participants int     `json:"participants"`
}

// classify applies the fixed tolerance to share - contributed.
func classify(remaining float64) Status {
	switch {
	case remaining > core.Tolerance:
		return StatusOwes
	case remaining < -core.Tolerance:
		return StatusReceives
	default:
		return StatusSettled
	}
}

// equalShare returns total / len(contributions) after checking the input.
func equalShare(total float64, contributions []Contribution) (float64, error) {
	n := len(contributions)
	if n == 0 {
		return 0, core.NewInvalidInput("no participants to share the total", 0)
	}
	if total < 0 || !core.IsFinite(total) {
		return 0, core.NewInvalidInput("total must be a non-negative amount", n)
	}

	seen := make(map[uuid.UUID]struct{}, n)
	for _, c := range contributions {
		if _, dup := seen[c.MemberID]; dup {
			return 0, core.NewInvalidInput(fmt.Sprintf("member %s appears more than once", c.MemberID), n)
		}
		seen[c.MemberID] = struct{}{}
		if !core.IsFinite(c.Amount) {
			return 0, core.NewInvalidInput(fmt.Sprintf("contribution for %s is not a number", c.MemberID), n)
		}
	}
	return total / float64(n), nil
}

// CalculatePending compares every member's contribution with an equal share of total.
// Results come back in the order of contributions. Every tracked member must be
// present, with a zero amount if they have not paid anything.
func CalculatePending(total float64, contributions []Contribution) ([]Result, error) {
	share, err := equalShare(total, contributions)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(contributions))
	for i, c := range contributions {
		remaining := share - c.Amount
		results[i] = Result{
			MemberID: c.MemberID,
			Name:     c.Name,
			Pending:  core.Abs(remaining),
			Status:   classify(remaining),
		}
	}
	return results, nil
}

// CalculateAdminPayback frames balances as money owed to adminID, who is taken
// to have fronted the whole bill. The admin counts toward the share but their
// own record is always settled with nothing pending; that is a convention of
// this view, not something derived from their contribution.
func CalculateAdminPayback(total float64, adminID uuid.UUID, contributions []Contribution) ([]Result, error) {
	share, err := equalShare(total, contributions)
	if err != nil {
		return nil, err
	}

	adminFound := false
	results := make([]Result, len(contributions))
	for i, c := range contributions {
		if c.MemberID == adminID {
			adminFound = true
			results[i] = Result{MemberID: c.MemberID, Name: c.Name, Status: StatusSettled}
			continue
		}

		owesToAdmin := share - c.Amount
		results[i] = Result{
			MemberID: c.MemberID,
			Name:     c.Name,
			Pending:  core.Abs(owesToAdmin),
			Status:   classify(owesToAdmin),
		}
	}

	if !adminFound {
		return nil, core.NewInvalidInput(fmt.Sprintf("admin %s is not a participant", adminID), len(contributions))
	}
	return results, nil
}

// Summarize returns the total, the equal share and how much is still outstanding.
func Summarize(total float64, contributions []Contribution) (Summary, error) {
	share, err := equalShare(total, contributions)
	if err != nil {
		return Summary{}, err
	}

	var paid float64
	for _, c := range contributions {
		paid += c.Amount
	}
	return Summary{
		Total:        total,
		Share:        share,
		TotalPaid:    paid,
		Remaining:    total - paid,
		Participants: len(contributions),
	}, nil
}

// Owing filters results down to members that still have to pay.
func Owing(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Status == StatusOwes {
			out = append(out, r)
		}
	}
	return out
}
