package fund

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Config tunes an Engine. The zero value is usable: NewEngine fills in the
// defaults below.
type Config struct {
	// Currency is the ISO 4217 code all amounts are kept in.
	Currency string
	// FeeRate is the performance-fee rate applied to excess profit.
	FeeRate decimal.Decimal
	// LockTimeout bounds the wait for the ledger mutation lock.
	LockTimeout time.Duration
	// Policy selects the tranche draw-down order for withdrawals.
	Policy SelectionPolicy
	// UnitPrecision is the number of decimal places units are rounded to.
	UnitPrecision int32
}

// Default configuration values.
const (
	DefaultCurrency    = "VND"
	DefaultLockTimeout = 5 * time.Second
)

// DefaultFeeRate is the default performance-fee rate (20%).
var DefaultFeeRate = decimal.New(2, -1)

func (c Config) withDefaults() Config {
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.FeeRate.IsZero() {
		c.FeeRate = DefaultFeeRate
	}
	if c.LockTimeout <= 0 {
		c.LockTimeout = DefaultLockTimeout
	}
	if c.UnitPrecision <= 0 {
		c.UnitPrecision = DefaultUnitPrecision
	}
	return c
}

// Engine exposes the fund operations on top of a Store.
//
// All mutations are serialized through a single lock with a bounded wait:
// contention past Config.LockTimeout yields a LockTimeoutError and no work is
// performed. Every mutation replays the full candidate log before touching
// the store, so the persisted state is always a consistent replay.
type Engine struct {
	store Store
	cfg   Config
	sem   chan struct{}
}

// NewEngine creates an engine over the given store.
func NewEngine(store Store, cfg Config) *Engine {
	return &Engine{
		store: store,
		cfg:   cfg.withDefaults(),
		sem:   make(chan struct{}, 1),
	}
}

func (e *Engine) lock(ctx context.Context) error {
	timer := time.NewTimer(e.cfg.LockTimeout)
	defer timer.Stop()
	select {
	case e.sem <- struct{}{}:
		return nil
	case <-timer.C:
		return &LockTimeoutError{Timeout: e.cfg.LockTimeout}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) unlock() { <-e.sem }

// ledger loads the store and replays it into a consistent ledger. Callers
// must hold the lock.
func (e *Engine) ledger() (*Ledger, error) {
	data, err := loadLedgerData(e.store)
	if err != nil {
		return nil, err
	}
	return newLedger(data, e.cfg.Currency, e.cfg.Policy, e.cfg.UnitPrecision, e.cfg.FeeRate)
}

// amount normalizes a caller-supplied money value to the fund currency.
func (e *Engine) amount(m Money) Money {
	if m.Currency() == "" {
		return M(m.Decimal(), e.cfg.Currency)
	}
	return m
}

// AddInvestor registers a new investor. Names are unique case-insensitively.
// The reserved Fund Manager account is created on first use.
func (e *Engine) AddInvestor(ctx context.Context, inv *Investor) error {
	if err := e.lock(ctx); err != nil {
		return err
	}
	defer e.unlock()

	if err := inv.Validate(); err != nil {
		return err
	}
	investors, err := e.store.LoadInvestors()
	if err != nil {
		return err
	}
	for _, existing := range investors {
		if existing.SameName(inv.Name) {
			return errValidation("investor name", inv.Name, "already registered")
		}
	}
	if len(investors) == 0 {
		if err := e.store.SaveInvestor(NewFundManager(inv.JoinedOn)); err != nil {
			return err
		}
	}
	return e.store.SaveInvestor(inv)
}

// Investors lists the ordinary investors, excluding the fund manager.
func (e *Engine) Investors(ctx context.Context) ([]*Investor, error) {
	if err := e.lock(ctx); err != nil {
		return nil, err
	}
	defer e.unlock()

	l, err := e.ledger()
	if err != nil {
		return nil, err
	}
	return l.Investors(), nil
}

// RemoveInvestor deletes an investor that has no transaction history. The
// fund manager account cannot be removed.
func (e *Engine) RemoveInvestor(ctx context.Context, id int64) error {
	if err := e.lock(ctx); err != nil {
		return err
	}
	defer e.unlock()

	if id == FundManagerID {
		return errValidation("investor", id, "the fund manager account cannot be removed")
	}
	l, err := e.ledger()
	if err != nil {
		return err
	}
	if l.Investor(id) == nil {
		return errValidation("investor", id, "not found")
	}
	for _, t := range l.Transactions() {
		switch tx := t.(type) {
		case Deposit:
			if tx.InvestorID == id {
				return errValidation("investor", id, "has transaction history")
			}
		case Withdraw:
			if tx.InvestorID == id {
				return errValidation("investor", id, "has transaction history")
			}
		}
	}
	return e.store.DeleteInvestor(id)
}

// Deposit records a cash contribution. navBefore is the fund total NAV as it
// stands just before the cash lands; the deposit is priced against it and
// opens a new tranche.
func (e *Engine) Deposit(ctx context.Context, investorID int64, amount, navBefore Money, on Date, memo string) (Deposit, error) {
	var zero Deposit
	if err := e.lock(ctx); err != nil {
		return zero, err
	}
	defer e.unlock()

	l, err := e.ledger()
	if err != nil {
		return zero, err
	}
	if l.Investor(investorID) == nil {
		return zero, errValidation("investor", investorID, "not found")
	}
	if on.IsZero() {
		on = Today()
	}
	tx := NewDeposit(l.nextTxID(), on, memo, investorID, e.amount(amount), e.amount(navBefore))
	if err := tx.Validate(); err != nil {
		return zero, err
	}
	if l.TotalUnits().IsPositive() && !tx.NAVBefore().IsPositive() {
		return zero, errValidation("nav", navBefore, "unit price must be positive")
	}
	applied, err := e.commit(l, tx)
	if err != nil {
		return zero, err
	}
	return applied.(Deposit), nil
}

// Withdraw records a cash redemption. Units are removed from the investor's
// tranches in policy order; a request exceeding the investor's holdings is
// refused whole with an InsufficientUnitsError.
func (e *Engine) Withdraw(ctx context.Context, investorID int64, amount, navBefore Money, on Date, memo string) (Withdraw, error) {
	var zero Withdraw
	if err := e.lock(ctx); err != nil {
		return zero, err
	}
	defer e.unlock()

	l, err := e.ledger()
	if err != nil {
		return zero, err
	}
	if l.Investor(investorID) == nil {
		return zero, errValidation("investor", investorID, "not found")
	}
	if on.IsZero() {
		on = Today()
	}
	tx := NewWithdraw(l.nextTxID(), on, memo, investorID, e.amount(amount), e.amount(navBefore))
	if err := tx.Validate(); err != nil {
		return zero, err
	}

	price := UnitPrice(tx.NAVBefore(), l.TotalUnits())
	needed := UnitsFor(tx.Amount, price, e.cfg.UnitPrecision)
	held := l.Holdings(investorID)
	if needed.GreaterThan(held) {
		return zero, &InsufficientUnitsError{InvestorID: investorID, Requested: needed, Held: held}
	}

	applied, err := e.commit(l, tx)
	if err != nil {
		return zero, err
	}
	return applied.(Withdraw), nil
}

// UpdateNAV records the fund's total NAV as of a date, repricing all units.
func (e *Engine) UpdateNAV(ctx context.Context, nav Money, on Date, memo string) (UpdateNAV, error) {
	var zero UpdateNAV
	if err := e.lock(ctx); err != nil {
		return zero, err
	}
	defer e.unlock()

	l, err := e.ledger()
	if err != nil {
		return zero, err
	}
	if on.IsZero() {
		on = Today()
	}
	tx := NewUpdateNAV(l.nextTxID(), on, memo, e.amount(nav))
	if err := tx.Validate(); err != nil {
		return zero, err
	}
	applied, err := e.commit(l, tx)
	if err != nil {
		return zero, err
	}
	return applied.(UpdateNAV), nil
}

// commit replays the current log plus tx and, on success, persists the new
// transaction and the rebuilt tranche book in one atomic change.
func (e *Engine) commit(l *Ledger, tx Transaction) (Transaction, error) {
	candidate := append(append([]Transaction{}, l.transactions...), tx)
	next, err := newLedger(ledgerData{
		Investors:    l.investors,
		Transactions: candidate,
		FeeRecords:   l.feeRecords,
	}, e.cfg.Currency, e.cfg.Policy, e.cfg.UnitPrecision, e.cfg.FeeRate)
	if err != nil {
		return nil, err
	}
	applied := next.transaction(tx.TxID())
	if applied == nil {
		return nil, &ConsistencyError{TransactionID: tx.TxID(), Reason: "transaction lost during replay"}
	}
	change := &Change{
		AddTransactions:    []Transaction{applied},
		UpsertTranches:     next.AllTranches(),
		ReplaceAllTranches: true,
	}
	if err := e.store.Apply(change); err != nil {
		return nil, err
	}
	return applied, nil
}

// DeleteTransaction removes a transaction from the log. Deleting anything
// but the most recent transaction rewrites history for every later record,
// so it requires the explicit cascade acknowledgement. The remaining log
// must still replay cleanly; in particular, removing a record behind an
// applied fee period is refused with a ConsistencyError.
func (e *Engine) DeleteTransaction(ctx context.Context, id int64, cascade bool) error {
	if err := e.lock(ctx); err != nil {
		return err
	}
	defer e.unlock()

	l, err := e.ledger()
	if err != nil {
		return err
	}
	if id != l.lastTransactionID() && !cascade {
		return errValidation("transaction", id, "not the most recent; deleting requires the cascade acknowledgement")
	}
	var remaining []Transaction
	found := false
	for _, t := range l.transactions {
		if t.TxID() == id {
			found = true
			continue
		}
		remaining = append(remaining, t)
	}
	if !found {
		return errValidation("transaction", id, "not found")
	}
	next, err := newLedger(ledgerData{
		Investors:    l.investors,
		Transactions: remaining,
		FeeRecords:   l.feeRecords,
	}, e.cfg.Currency, e.cfg.Policy, e.cfg.UnitPrecision, e.cfg.FeeRate)
	if err != nil {
		return err
	}
	return e.store.Apply(&Change{
		RemoveTransactionIDs: []int64{id},
		UpsertTranches:       next.AllTranches(),
		ReplaceAllTranches:   true,
	})
}

// UndoTransaction records the inverse cash flow of a past transaction: a
// withdrawal undoes a deposit and vice versa. The inverse is priced at the
// current unit price, which may differ from the original one; undo is a
// compensating entry, not a rollback. With id 0 the most recent transaction
// is undone. NAV updates have no inverse and cannot be undone.
func (e *Engine) UndoTransaction(ctx context.Context, id int64) (Transaction, error) {
	if err := e.lock(ctx); err != nil {
		return nil, err
	}
	defer e.unlock()

	l, err := e.ledger()
	if err != nil {
		return nil, err
	}
	if id == 0 {
		id = l.lastTransactionID()
	}
	tx := l.transaction(id)
	if tx == nil {
		return nil, errValidation("transaction", id, "not found")
	}

	memo := fmt.Sprintf("undo of transaction %d", id)
	switch orig := tx.(type) {
	case Deposit:
		inverse := NewWithdraw(l.nextTxID(), Today(), memo, orig.InvestorID, orig.Amount, l.CurrentNAV())
		price := UnitPrice(inverse.NAVBefore(), l.TotalUnits())
		needed := UnitsFor(inverse.Amount, price, e.cfg.UnitPrecision)
		held := l.Holdings(orig.InvestorID)
		if needed.GreaterThan(held) {
			return nil, &InsufficientUnitsError{InvestorID: orig.InvestorID, Requested: needed, Held: held}
		}
		return e.commit(l, inverse)
	case Withdraw:
		inverse := NewDeposit(l.nextTxID(), Today(), memo, orig.InvestorID, orig.Amount, l.CurrentNAV())
		return e.commit(l, inverse)
	default:
		return nil, errValidation("transaction", id, "nav updates have no inverse cash flow")
	}
}

// Transactions returns the replayed transaction log in application order.
func (e *Engine) Transactions(ctx context.Context) ([]Transaction, error) {
	if err := e.lock(ctx); err != nil {
		return nil, err
	}
	defer e.unlock()

	l, err := e.ledger()
	if err != nil {
		return nil, err
	}
	return l.Transactions(), nil
}

// PreviewFees computes the performance-fee assessment for a period without
// persisting anything. The returned preview carries the confirmation token
// ApplyFees requires.
func (e *Engine) PreviewFees(ctx context.Context, period string, on Date, nav Money) (*FeePreview, error) {
	if err := e.lock(ctx); err != nil {
		return nil, err
	}
	defer e.unlock()

	l, err := e.ledger()
	if err != nil {
		return nil, err
	}
	if on.IsZero() {
		on = Today()
	}
	return l.previewFees(period, on, e.amount(nav))
}

// ApplyFees certifies a fee period. The assessment is recomputed from the
// current ledger state and compared against the confirmation token: any
// divergence since the preview yields a StaleConfirmationError and nothing
// is persisted. On success the fee units move to the fund manager and the
// high-water marks advance, all in one atomic change.
func (e *Engine) ApplyFees(ctx context.Context, period string, on Date, nav Money, confirm string) (*FeePreview, error) {
	if err := e.lock(ctx); err != nil {
		return nil, err
	}
	defer e.unlock()

	l, err := e.ledger()
	if err != nil {
		return nil, err
	}
	if on.IsZero() {
		on = Today()
	}
	fp, err := l.previewFees(period, on, e.amount(nav))
	if err != nil {
		return nil, err
	}
	if confirm == "" || confirm != fp.Confirm {
		return nil, &StaleConfirmationError{Period: period}
	}

	records := fp.records()
	next, err := newLedger(ledgerData{
		Investors:    l.investors,
		Transactions: l.transactions,
		FeeRecords:   append(append([]FeeRecord{}, l.feeRecords...), records...),
	}, e.cfg.Currency, e.cfg.Policy, e.cfg.UnitPrecision, e.cfg.FeeRate)
	if err != nil {
		return nil, err
	}
	if err := e.store.Apply(&Change{
		UpsertTranches:     next.AllTranches(),
		ReplaceAllTranches: true,
		AddFeeRecords:      records,
	}); err != nil {
		return nil, err
	}
	return fp, nil
}

// SimulateFees runs a fee assessment against a hypothetical NAV. It skips the
// period bookkeeping entirely and can never be applied.
func (e *Engine) SimulateFees(ctx context.Context, on Date, nav Money) (*FeePreview, error) {
	if err := e.lock(ctx); err != nil {
		return nil, err
	}
	defer e.unlock()

	l, err := e.ledger()
	if err != nil {
		return nil, err
	}
	if on.IsZero() {
		on = Today()
	}
	fp, err := l.previewFees(fmt.Sprintf("simulation-%s", on), on, e.amount(nav))
	if err != nil {
		return nil, err
	}
	fp.Confirm = ""
	return fp, nil
}

// Performance returns the investor's lifetime performance report. A positive
// nav prices the holdings against it; a zero nav uses the latest recorded one.
func (e *Engine) Performance(ctx context.Context, investorID int64, nav Money) (*PerformanceReport, error) {
	if err := e.lock(ctx); err != nil {
		return nil, err
	}
	defer e.unlock()

	l, err := e.ledger()
	if err != nil {
		return nil, err
	}
	if l.Investor(investorID) == nil {
		return nil, errValidation("investor", investorID, "not found")
	}
	if nav.IsNegative() {
		return nil, errValidation("nav", nav, "total NAV must not be negative")
	}
	return l.Performance(investorID, Today(), e.amount(nav)), nil
}

// Position is one investor's stake within a fund summary.
type Position struct {
	InvestorID int64
	Name       string
	Units      Quantity
	Value      Money
	Share      Percent
}

// FundSummary is the fund-wide state at the latest recorded NAV.
type FundSummary struct {
	AsOf          Date
	NAV           Money
	Units         Quantity
	UnitPrice     Money
	TotalInvested Money
	TotalFees     Money
	Positions     []Position
}

// Summary returns the fund-wide totals and every investor's position,
// including the fund manager's accrued fee stake.
func (e *Engine) Summary(ctx context.Context) (*FundSummary, error) {
	if err := e.lock(ctx); err != nil {
		return nil, err
	}
	defer e.unlock()

	l, err := e.ledger()
	if err != nil {
		return nil, err
	}
	sum := &FundSummary{
		AsOf:          Today(),
		NAV:           l.CurrentNAV(),
		Units:         l.TotalUnits(),
		UnitPrice:     l.CurrentPrice(),
		TotalInvested: M(0, e.cfg.Currency),
		TotalFees:     M(0, e.cfg.Currency),
	}
	for _, t := range l.AllTranches() {
		sum.TotalInvested = sum.TotalInvested.Add(t.Invested)
		sum.TotalFees = sum.TotalFees.Add(t.FeesPaid)
	}
	for _, inv := range l.investors {
		units := l.Holdings(inv.ID)
		if units.IsZero() && inv.FundManager {
			continue
		}
		pos := Position{
			InvestorID: inv.ID,
			Name:       inv.Name,
			Units:      units,
			Value:      l.Balance(inv.ID),
		}
		if sum.Units.IsPositive() {
			share, _ := units.Decimal().Div(sum.Units.Decimal()).Float64()
			pos.Share = Percent(100 * share)
		}
		sum.Positions = append(sum.Positions, pos)
	}
	return sum, nil
}
