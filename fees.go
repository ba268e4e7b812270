package fund

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// FeeRecord is one certified performance-fee assessment against one tranche.
// Records are append-only: an applied period is part of fund history and is
// verified on every replay.
type FeeRecord struct {
	ID               int64
	Period           string // period label, e.g. "2025"
	CalculatedOn     Date
	InvestorID       int64
	TrancheID        int64
	UnitPrice        Money // price per unit at assessment
	Fee              Money
	UnitsTransferred Quantity
	HWMBefore        Money
	HWMAfter         Money
	// Performance is the realized return above the fee basis, in percent.
	Performance Percent
}

// MarshalJSON implements the json.Marshaler interface for FeeRecord.
func (r FeeRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", r.ID)
	w.Append("period", r.Period)
	w.Append("calculated_on", r.CalculatedOn)
	w.Append("investor", r.InvestorID)
	w.Append("tranche", r.TrancheID)
	w.Append("price", r.UnitPrice.Decimal())
	w.Append("fee", r.Fee.Decimal())
	w.Append("units", r.UnitsTransferred)
	w.Append("hwm_before", r.HWMBefore.Decimal())
	w.Append("hwm_after", r.HWMAfter.Decimal())
	w.Append("perf", r.Performance)
	w.Optional("currency", r.Fee.Currency())
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for FeeRecord.
func (r *FeeRecord) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID           int64           `json:"id"`
		Period       string          `json:"period"`
		CalculatedOn Date            `json:"calculated_on"`
		InvestorID   int64           `json:"investor"`
		TrancheID    int64           `json:"tranche"`
		Price        decimal.Decimal `json:"price"`
		Fee          decimal.Decimal `json:"fee"`
		Units        Quantity        `json:"units"`
		HWMBefore    decimal.Decimal `json:"hwm_before"`
		HWMAfter     decimal.Decimal `json:"hwm_after"`
		Perf         Percent         `json:"perf"`
		Currency     string          `json:"currency"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*r = FeeRecord{
		ID:               temp.ID,
		Period:           temp.Period,
		CalculatedOn:     temp.CalculatedOn,
		InvestorID:       temp.InvestorID,
		TrancheID:        temp.TrancheID,
		UnitPrice:        M(temp.Price, temp.Currency),
		Fee:              M(temp.Fee, temp.Currency),
		UnitsTransferred: temp.Units,
		HWMBefore:        M(temp.HWMBefore, temp.Currency),
		HWMAfter:         M(temp.HWMAfter, temp.Currency),
		Performance:      temp.Perf,
	}
	return nil
}

// feePeriod is one assessed period reconstructed from its fee records.
type feePeriod struct {
	Period       string
	CalculatedOn Date
	UnitPrice    Money
	Records      []FeeRecord
}

// groupFeeRecords rebuilds the assessed periods from the flat record list,
// ordered by calculation date then label.
func groupFeeRecords(records []FeeRecord) []feePeriod {
	byPeriod := make(map[string]*feePeriod)
	var order []string
	for _, r := range records {
		fp, ok := byPeriod[r.Period]
		if !ok {
			fp = &feePeriod{Period: r.Period, CalculatedOn: r.CalculatedOn, UnitPrice: r.UnitPrice}
			byPeriod[r.Period] = fp
			order = append(order, r.Period)
		}
		fp.Records = append(fp.Records, r)
	}
	out := make([]feePeriod, 0, len(order))
	for _, p := range order {
		fp := byPeriod[p]
		sort.Slice(fp.Records, func(i, j int) bool { return fp.Records[i].TrancheID < fp.Records[j].TrancheID })
		out = append(out, *fp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CalculatedOn != out[j].CalculatedOn {
			return out[i].CalculatedOn.Before(out[j].CalculatedOn)
		}
		return out[i].Period < out[j].Period
	})
	return out
}

// FeeLine is the assessment of a single tranche within a fee preview.
type FeeLine struct {
	InvestorID       int64
	TrancheID        int64
	EntryDate        Date
	Units            Quantity
	Basis            Money // higher of invested capital and high-water value
	Value            Money // market value at the assessment price
	Excess           Money // value above the basis, floored at zero
	Fee              Money
	UnitsTransferred Quantity
	HWMBefore        Money
	HWMAfter         Money
	Return           Percent // realized return above the fee basis
}

// FeePreview is the dry-run result of a performance-fee assessment. Nothing
// is persisted until the preview is applied with its confirmation token.
type FeePreview struct {
	Period       string
	CalculatedOn Date
	UnitPrice    Money
	Rate         decimal.Decimal
	Lines        []FeeLine
	TotalFee     Money
	TotalUnits   Quantity
	Confirm      string
}

// assessTranche prices one open tranche at the given unit price and computes
// the fee it owes. The high-water mark moves to the assessment price only
// when a positive fee is charged.
func assessTranche(t *Tranche, price Money, rate decimal.Decimal, precision int32) FeeLine {
	line := FeeLine{
		InvestorID: t.InvestorID,
		TrancheID:  t.ID,
		EntryDate:  t.EntryDate,
		Units:      t.Units,
		Basis:      t.feeBasis(),
		Value:      t.Value(price),
		HWMBefore:  t.HighWaterMark,
		HWMAfter:   t.HighWaterMark,
	}
	line.Excess = line.Value.Sub(line.Basis).Max(M(0, price.Currency()))
	line.Return = returnOn(line.Excess, line.Basis)
	line.Fee = line.Excess.MulRate(rate).Round()
	if line.Fee.IsPositive() {
		line.UnitsTransferred = UnitsFor(line.Fee, price, precision)
		line.HWMAfter = price
	} else {
		line.Fee = M(0, price.Currency())
		line.UnitsTransferred = Q(0)
	}
	return line
}

// previewFees assesses every open investor tranche at the unit price implied
// by nav. Fund manager tranches are never assessed.
func (l *Ledger) previewFees(period string, on Date, nav Money) (*FeePreview, error) {
	if period == "" {
		return nil, errValidation("period", period, "fee period label must not be empty")
	}
	for _, r := range l.feeRecords {
		if r.Period == period {
			return nil, errValidation("period", period, "fee period already applied")
		}
	}
	if !nav.IsPositive() {
		return nil, errValidation("nav", nav, "assessment NAV must be positive")
	}
	if !l.units.IsPositive() {
		return nil, errValidation("nav", nav, "no units outstanding")
	}

	price := UnitPrice(nav, l.units)
	fp := &FeePreview{
		Period:       period,
		CalculatedOn: on,
		UnitPrice:    price,
		Rate:         l.feeRate,
		TotalFee:     M(0, l.currency),
		TotalUnits:   Q(0),
	}
	tranches := l.AllTranches()
	for _, t := range tranches {
		if t.InvestorID == FundManagerID || !t.Open() {
			continue
		}
		line := assessTranche(t, price, l.feeRate, l.precision)
		fp.Lines = append(fp.Lines, line)
		fp.TotalFee = fp.TotalFee.Add(line.Fee)
		fp.TotalUnits = fp.TotalUnits.Add(line.UnitsTransferred)
	}
	fp.Confirm = fp.token()
	return fp, nil
}

// token derives the confirmation token binding this preview to its inputs.
// Applying with a token computed from different state is refused.
func (fp *FeePreview) token() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s\n", fp.Period, fp.CalculatedOn, fp.UnitPrice.Decimal(), fp.Rate)
	for _, line := range fp.Lines {
		fmt.Fprintf(h, "%d|%d|%s|%s|%s|%s\n",
			line.InvestorID, line.TrancheID,
			line.Fee.Decimal(), line.UnitsTransferred,
			line.HWMBefore.Decimal(), line.HWMAfter.Decimal())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// records converts the preview's chargeable lines into persistent fee
// records. Zero-fee lines leave no trace.
func (fp *FeePreview) records() []FeeRecord {
	var out []FeeRecord
	for _, line := range fp.Lines {
		if !line.Fee.IsPositive() {
			continue
		}
		out = append(out, FeeRecord{
			Period:           fp.Period,
			CalculatedOn:     fp.CalculatedOn,
			InvestorID:       line.InvestorID,
			TrancheID:        line.TrancheID,
			UnitPrice:        fp.UnitPrice,
			Fee:              line.Fee,
			UnitsTransferred: line.UnitsTransferred,
			HWMBefore:        line.HWMBefore,
			HWMAfter:         line.HWMAfter,
			Performance:      line.Return,
		})
	}
	return out
}
