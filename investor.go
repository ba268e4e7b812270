package fund

import (
	"strings"
)

// FundManagerID is the reserved investor id of the Fund Manager account.
// Fee-derived units are credited to it, and it is excluded from ordinary
// investor listings and statistics.
const FundManagerID int64 = 1

// Investor identifies a participant in the fund.
type Investor struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	JoinedOn    Date   `json:"joined_on"`
	FundManager bool   `json:"fund_manager,omitempty"`
}

// Validate checks the investor fields. It sets the join date to today if it
// is zero.
func (inv *Investor) Validate() error {
	if strings.TrimSpace(inv.Name) == "" {
		return errValidation("investor name", inv.Name, "must not be empty")
	}
	if inv.JoinedOn.IsZero() {
		inv.JoinedOn = Today()
	}
	return nil
}

// SameName reports whether the investor's name equals the given one under
// case-insensitive comparison. Investor names are unique under this rule.
func (inv *Investor) SameName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(inv.Name), strings.TrimSpace(name))
}

// NewFundManager returns the reserved Fund Manager account record.
func NewFundManager(on Date) *Investor {
	return &Investor{ID: FundManagerID, Name: "Fund Manager", JoinedOn: on, FundManager: true}
}
