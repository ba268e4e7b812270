package fund

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// SelectionPolicy defines the order in which an investor's tranches are
// drawn down by a withdrawal.
type SelectionPolicy int

const (
	// FIFO (First-In, First-Out) draws from the oldest tranche by entry date first.
	FIFO SelectionPolicy = iota
	// LIFO (Last-In, First-Out) draws from the newest tranche by entry date first.
	LIFO
)

func (p SelectionPolicy) String() string {
	switch p {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	default:
		return "unknown"
	}
}

// ParseSelectionPolicy parses a string into a SelectionPolicy.
func ParseSelectionPolicy(s string) (SelectionPolicy, error) {
	switch s {
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	default:
		return 0, fmt.Errorf("unknown tranche selection policy: %q", s)
	}
}

// Tranche is a capital lot owned by one investor. Each deposit opens a
// distinct tranche so that every lot keeps its own entry price and
// high-water mark; tranches are never merged.
//
// Units never go negative. A tranche whose units reach exactly zero is
// closed: it accrues no further fees but is retained for its fee history.
type Tranche struct {
	ID         int64
	InvestorID int64
	EntryDate  Date
	EntryNAV   Money // price per unit at entry
	Units      Quantity
	Invested   Money // nominal capital of the lot, never adjusted for performance
	// HighWaterMark is the price-per-unit basis already subject to fee.
	// Initialized to EntryNAV, raised on every positive fee assessment.
	HighWaterMark Money
	FeesPaid      Money // cumulative, never decreases

	// Original entry point, retained for gross lifetime performance even
	// after fee events reset the fee basis.
	OriginalEntryDate Date
	OriginalEntryNAV  Money
}

// newTranche opens a lot for a deposit of amount at the given unit price.
func newTranche(investorID int64, on Date, price Money, units Quantity, amount Money) *Tranche {
	return &Tranche{
		InvestorID:        investorID,
		EntryDate:         on,
		EntryNAV:          price,
		Units:             units,
		Invested:          amount,
		HighWaterMark:     price,
		FeesPaid:          M(0, amount.Currency()),
		OriginalEntryDate: on,
		OriginalEntryNAV:  price,
	}
}

// Open reports whether the tranche still holds units.
func (t *Tranche) Open() bool { return t.Units.IsPositive() }

// Value returns the tranche's market value at the given price per unit.
func (t *Tranche) Value(price Money) Money { return price.Mul(t.Units) }

// feeBasis is the value above which profit is subject to fee: the higher of
// the nominal invested capital and the already-certified high-water value.
func (t *Tranche) feeBasis() Money {
	return t.Invested.Max(t.HighWaterMark.Mul(t.Units))
}

// drain removes up to quantity units from the tranche and returns the number
// actually removed. The invested capital is reduced proportionally: a
// withdrawal returns capital, it does not realize performance.
func (t *Tranche) drain(quantity Quantity) Quantity {
	if quantity.GreaterThanOrEqual(t.Units) {
		taken := t.Units
		t.Units = Q(0)
		t.Invested = M(0, t.Invested.Currency())
		return taken
	}
	portion := t.Invested.Mul(quantity).Div(t.Units)
	t.Invested = t.Invested.Sub(portion)
	t.Units = t.Units.Sub(quantity)
	return quantity
}

// clone returns a deep copy of the tranche.
func (t *Tranche) clone() *Tranche {
	c := *t
	return &c
}

// sortTranches orders tranches for withdrawal according to the policy.
// Ordering is deterministic: entry date, then id as tie-breaker.
func sortTranches(tranches []*Tranche, policy SelectionPolicy) {
	sort.SliceStable(tranches, func(i, j int) bool {
		a, b := tranches[i], tranches[j]
		if a.EntryDate != b.EntryDate {
			if policy == LIFO {
				return b.EntryDate.Before(a.EntryDate)
			}
			return a.EntryDate.Before(b.EntryDate)
		}
		if policy == LIFO {
			return b.ID < a.ID
		}
		return a.ID < b.ID
	})
}

// MarshalJSON implements the json.Marshaler interface for Tranche.
func (t Tranche) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("investor", t.InvestorID)
	w.Append("entry_date", t.EntryDate)
	w.Append("entry_nav", t.EntryNAV.Decimal())
	w.Append("units", t.Units)
	w.Append("invested", t.Invested.Decimal())
	w.Append("hwm", t.HighWaterMark.Decimal())
	w.Append("fees_paid", t.FeesPaid.Decimal())
	w.Append("original_entry_date", t.OriginalEntryDate)
	w.Append("original_entry_nav", t.OriginalEntryNAV.Decimal())
	w.Optional("currency", t.Invested.Currency())
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Tranche.
func (t *Tranche) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID                int64           `json:"id"`
		InvestorID        int64           `json:"investor"`
		EntryDate         Date            `json:"entry_date"`
		EntryNAV          decimal.Decimal `json:"entry_nav"`
		Units             Quantity        `json:"units"`
		Invested          decimal.Decimal `json:"invested"`
		HWM               decimal.Decimal `json:"hwm"`
		FeesPaid          decimal.Decimal `json:"fees_paid"`
		OriginalEntryDate Date            `json:"original_entry_date"`
		OriginalEntryNAV  decimal.Decimal `json:"original_entry_nav"`
		Currency          string          `json:"currency"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.ID = temp.ID
	t.InvestorID = temp.InvestorID
	t.EntryDate = temp.EntryDate
	t.EntryNAV = M(temp.EntryNAV, temp.Currency)
	t.Units = temp.Units
	t.Invested = M(temp.Invested, temp.Currency)
	t.HighWaterMark = M(temp.HWM, temp.Currency)
	t.FeesPaid = M(temp.FeesPaid, temp.Currency)
	t.OriginalEntryDate = temp.OriginalEntryDate
	t.OriginalEntryNAV = M(temp.OriginalEntryNAV, temp.Currency)
	return nil
}
