package settlement

import "fmt"

// DefaultCurrency is the symbol used when a Messenger has none configured.
const DefaultCurrency = "₹"

// Messenger renders calculation results as reminder text.
// The zero value uses DefaultCurrency.
type Messenger struct {
	Currency string
}

// NewMessenger returns a Messenger that prefixes amounts with currency.
func NewMessenger(currency string) Messenger {
	return Messenger{Currency: currency}
}

func (m Messenger) money(v float64) string {
	cur := m.Currency
	if cur == "" {
		cur = DefaultCurrency
	}
	return fmt.Sprintf("%s%.2f", cur, v)
}

// PaymentMessage renders the reminder for one result of CalculatePending.
// It panics on a status outside the known set.
func (m Messenger) PaymentMessage(r Result) string {
	switch r.Status {
	case StatusOwes:
		return fmt.Sprintf("Mail reminder to %s: You still need to pay %s for your share", r.Name, m.money(r.Pending))
	case StatusReceives:
		return fmt.Sprintf("Mail reminder to %s: You will receive %s back (you overpaid)", r.Name, m.money(r.Pending))
	case StatusSettled:
		return fmt.Sprintf("Mail reminder to %s: You are settled up, no payment needed - thank you!", r.Name)
	default:
		panic(fmt.Sprintf("settlement: cannot render message for %v", r.Status))
	}
}

// PaymentReminders renders PaymentMessage for every result, keeping order.
func (m Messenger) PaymentReminders(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = m.PaymentMessage(r)
	}
	return out
}

// AdminPaymentMessage renders one result of CalculateAdminPayback.
// The admin is recognised by ID; admin.Name is only used in the text.
func (m Messenger) AdminPaymentMessage(r Result, admin Contribution) string {
	if r.MemberID == admin.MemberID {
		return fmt.Sprintf("%s: You paid the full bill and will receive payments from others", admin.Name)
	}

	switch r.Status {
	case StatusOwes:
		return fmt.Sprintf("Mail to %s: You need to pay %s to %s", r.Name, m.money(r.Pending), admin.Name)
	case StatusReceives:
		return fmt.Sprintf("Mail to %s: %s owes you %s back", r.Name, admin.Name, m.money(r.Pending))
	case StatusSettled:
		return fmt.Sprintf("Mail to %s: You are settled up with %s, no payment needed", r.Name, admin.Name)
	default:
		panic(fmt.Sprintf("settlement: cannot render admin message for %v", r.Status))
	}
}

// AdminPaymentReminders renders AdminPaymentMessage for every result, keeping order.
func (m Messenger) AdminPaymentReminders(results []Result, admin Contribution) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = m.AdminPaymentMessage(r, admin)
	}
	return out
}

// PaymentMessage renders r with the default currency.
func PaymentMessage(r Result) string {
	return Messenger{}.PaymentMessage(r)
}

// AdminPaymentMessage renders r for the admin payback view with the default currency.
func AdminPaymentMessage(r Result, admin Contribution) string {
	return Messenger{}.AdminPaymentMessage(r, admin)
}
