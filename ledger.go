package fund

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Ledger is the in-memory state of the fund: investors, the transaction log,
// the fee history, and the tranche book derived from them.
//
// The tranche book is never edited directly. It is rebuilt by replaying the
// full transaction log with fee assessments interleaved at their calculation
// dates, so any two replays of the same log yield the same book. Mutating
// operations build a candidate log, replay it, and commit only on success.
type Ledger struct {
	currency  string
	policy    SelectionPolicy
	precision int32
	feeRate   decimal.Decimal

	investors    []*Investor
	transactions []Transaction
	feeRecords   []FeeRecord

	tranches      []*Tranche
	nav           Money
	units         Quantity
	nextTrancheID int64
}

// ledgerData bundles the persisted inputs of a replay.
type ledgerData struct {
	Investors    []*Investor
	Transactions []Transaction
	FeeRecords   []FeeRecord
}

// newLedger replays the given data into a consistent ledger. It returns a
// ConsistencyError when the log cannot be reconciled, in which case the
// returned ledger is nil and no state must be kept.
func newLedger(data ledgerData, currency string, policy SelectionPolicy, precision int32, feeRate decimal.Decimal) (*Ledger, error) {
	l := &Ledger{
		currency:      currency,
		policy:        policy,
		precision:     precision,
		feeRate:       feeRate,
		investors:     data.Investors,
		feeRecords:    data.FeeRecords,
		nav:           M(0, currency),
		units:         Q(0),
		nextTrancheID: 1,
	}
	if err := l.replay(data.Transactions); err != nil {
		return nil, err
	}
	return l, nil
}

// replay rebuilds the tranche book from scratch. Transactions are applied in
// date order (id as tie-breaker) with fee assessments interleaved after the
// last transaction of their calculation date.
func (l *Ledger) replay(transactions []Transaction) error {
	txs := make([]Transaction, len(transactions))
	copy(txs, transactions)
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].When() != txs[j].When() {
			return txs[i].When().Before(txs[j].When())
		}
		return txs[i].TxID() < txs[j].TxID()
	})

	periods := groupFeeRecords(l.feeRecords)

	l.tranches = nil
	l.nav = M(0, l.currency)
	l.units = Q(0)
	l.nextTrancheID = 1

	p := 0
	for i, t := range txs {
		for p < len(periods) && periods[p].CalculatedOn.Before(t.When()) {
			if err := l.replayFeePeriod(periods[p]); err != nil {
				return err
			}
			p++
		}
		applied, err := l.apply(t)
		if err != nil {
			return err
		}
		txs[i] = applied
	}
	for ; p < len(periods); p++ {
		if err := l.replayFeePeriod(periods[p]); err != nil {
			return err
		}
	}

	l.transactions = txs
	return nil
}

// apply executes one transaction against the current book and returns the
// record with its derived fields (units moved, unit price) filled in. A
// record that already carries derived fields must reproduce them exactly.
func (l *Ledger) apply(t Transaction) (Transaction, error) {
	switch tx := t.(type) {
	case Deposit:
		price := UnitPrice(tx.NAVBefore(), l.units)
		if !price.IsPositive() {
			return nil, &ConsistencyError{TransactionID: tx.ID, Reason: "unit price is not positive"}
		}
		units := UnitsFor(tx.Amount, price, l.precision)
		if !tx.UnitsDelta.IsZero() && !tx.UnitsDelta.Equal(units) {
			return nil, &ConsistencyError{TransactionID: tx.ID, Reason: "recorded units diverge from replay"}
		}
		tr := newTranche(tx.InvestorID, tx.Date, price, units, tx.Amount)
		tr.ID = l.nextTrancheID
		l.nextTrancheID++
		l.tranches = append(l.tranches, tr)
		l.units = l.units.Add(units)
		l.nav = tx.NAV
		tx.UnitsDelta = units
		tx.UnitPrice = price
		return tx, nil

	case Withdraw:
		price := UnitPrice(tx.NAVBefore(), l.units)
		if !price.IsPositive() {
			return nil, &ConsistencyError{TransactionID: tx.ID, Reason: "unit price is not positive"}
		}
		needed := UnitsFor(tx.Amount, price, l.precision)
		if needed.GreaterThan(l.Holdings(tx.InvestorID)) {
			return nil, &ConsistencyError{TransactionID: tx.ID, Reason: "withdrawal exceeds investor holdings"}
		}
		if !tx.UnitsDelta.IsZero() && !tx.UnitsDelta.Equal(needed.Neg()) {
			return nil, &ConsistencyError{TransactionID: tx.ID, Reason: "recorded units diverge from replay"}
		}
		open := l.openTranches(tx.InvestorID)
		sortTranches(open, l.policy)
		remaining := needed
		for _, tr := range open {
			if !remaining.IsPositive() {
				break
			}
			remaining = remaining.Sub(tr.drain(remaining))
		}
		l.units = l.units.Sub(needed)
		l.nav = tx.NAV
		tx.UnitsDelta = needed.Neg()
		tx.UnitPrice = price
		return tx, nil

	case UpdateNAV:
		l.nav = tx.NAV
		return tx, nil

	default:
		return nil, &ConsistencyError{TransactionID: t.TxID(), Reason: "unknown transaction kind"}
	}
}

// replayFeePeriod re-applies one certified fee assessment. Every stored row
// must reconcile against the book as replayed so far; a divergence means the
// log was edited behind a certified period and the replay is refused.
func (l *Ledger) replayFeePeriod(fp feePeriod) error {
	totalFee := M(0, l.currency)
	totalUnits := Q(0)

	for _, rec := range fp.Records {
		tr := l.tranche(rec.TrancheID)
		if tr == nil {
			return &ConsistencyError{Reason: "fee period " + fp.Period + " references a tranche missing from replay"}
		}
		if !tr.HighWaterMark.Equal(rec.HWMBefore) {
			return &ConsistencyError{Reason: "fee period " + fp.Period + " no longer matches tranche state"}
		}
		if !rec.UnitsTransferred.Equal(UnitsFor(rec.Fee, rec.UnitPrice, l.precision)) {
			return &ConsistencyError{Reason: "fee period " + fp.Period + " unit transfer does not match its fee"}
		}
		tr.Units = tr.Units.Sub(rec.UnitsTransferred)
		tr.FeesPaid = tr.FeesPaid.Add(rec.Fee)
		tr.HighWaterMark = rec.HWMAfter
		totalFee = totalFee.Add(rec.Fee)
		totalUnits = totalUnits.Add(rec.UnitsTransferred)
	}

	// Fee units change owner, not existence: the fund manager receives one
	// lot per assessed period.
	if totalUnits.IsPositive() {
		tr := newTranche(FundManagerID, fp.CalculatedOn, fp.UnitPrice, totalUnits, totalFee)
		tr.ID = l.nextTrancheID
		l.nextTrancheID++
		l.tranches = append(l.tranches, tr)
	}
	return nil
}

// transaction returns the replayed transaction with the given id, or nil.
func (l *Ledger) transaction(id int64) Transaction {
	for _, t := range l.transactions {
		if t.TxID() == id {
			return t
		}
	}
	return nil
}

// tranche returns the tranche with the given id, or nil.
func (l *Ledger) tranche(id int64) *Tranche {
	for _, t := range l.tranches {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// openTranches returns the investor's tranches that still hold units.
func (l *Ledger) openTranches(investorID int64) []*Tranche {
	var open []*Tranche
	for _, t := range l.tranches {
		if t.InvestorID == investorID && t.Open() {
			open = append(open, t)
		}
	}
	return open
}

// Holdings returns the total units held by an investor across open tranches.
func (l *Ledger) Holdings(investorID int64) Quantity {
	sum := Q(0)
	for _, t := range l.openTranches(investorID) {
		sum = sum.Add(t.Units)
	}
	return sum
}

// CurrentNAV returns the fund total NAV after the latest transaction.
func (l *Ledger) CurrentNAV() Money { return l.nav }

// TotalUnits returns the units outstanding across all investors.
func (l *Ledger) TotalUnits() Quantity { return l.units }

// CurrentPrice returns the price per unit implied by the latest NAV.
func (l *Ledger) CurrentPrice() Money { return UnitPrice(l.nav, l.units) }

// Balance returns the market value of an investor's holdings at the latest
// price.
func (l *Ledger) Balance(investorID int64) Money {
	return l.CurrentPrice().Mul(l.Holdings(investorID))
}

// Transactions returns the replayed transaction log in application order.
func (l *Ledger) Transactions() []Transaction { return l.transactions }

// Tranches returns the investor's tranches, open and closed, in id order.
func (l *Ledger) Tranches(investorID int64) []*Tranche {
	var out []*Tranche
	for _, t := range l.tranches {
		if t.InvestorID == investorID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllTranches returns every tranche in the book in id order.
func (l *Ledger) AllTranches() []*Tranche {
	out := make([]*Tranche, len(l.tranches))
	copy(out, l.tranches)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Investor returns the investor with the given id, or nil.
func (l *Ledger) Investor(id int64) *Investor {
	for _, inv := range l.investors {
		if inv.ID == id {
			return inv
		}
	}
	return nil
}

// InvestorByName returns the investor matching name case-insensitively, or nil.
func (l *Ledger) InvestorByName(name string) *Investor {
	for _, inv := range l.investors {
		if inv.SameName(name) {
			return inv
		}
	}
	return nil
}

// Investors returns all ordinary investors, excluding the fund manager,
// sorted by id.
func (l *Ledger) Investors() []*Investor {
	var out []*Investor
	for _, inv := range l.investors {
		if !inv.FundManager {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// nextTxID returns an id greater than every transaction id in the log.
func (l *Ledger) nextTxID() int64 {
	var max int64
	for _, t := range l.transactions {
		if t.TxID() > max {
			max = t.TxID()
		}
	}
	return max + 1
}

// lastTransactionID returns the id of the most recently dated transaction, 0
// when the log is empty.
func (l *Ledger) lastTransactionID() int64 {
	if len(l.transactions) == 0 {
		return 0
	}
	return l.transactions[len(l.transactions)-1].TxID()
}
