package fund

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// KindType is a typed string identifying a ledger transaction kind.
type KindType string

// Transaction kinds recorded in the ledger.
const (
	KindDeposit   KindType = "deposit"
	KindWithdraw  KindType = "withdraw"
	KindUpdateNAV KindType = "nav_update"
)

// Transaction is the common interface of all ledger records.
//
// Transactions are append-only: once created they are deleted or explicitly
// undone, never silently mutated. Every transaction records the fund's total
// NAV *after* it was applied, so that replay can derive the "NAV before"
// deterministically from the record itself.
type Transaction interface {
	What() KindType // What returns the kind of the transaction.
	When() Date     // When returns the date on which the transaction occurred.
	TxID() int64
	NAVAfter() Money  // NAVAfter returns the fund total NAV after the transaction.
	NAVBefore() Money // NAVBefore returns the fund total NAV just before the transaction.
	Equal(Transaction) bool
}

type baseTx struct {
	ID   int64    `json:"id"`
	Kind KindType `json:"kind"` // Kind specifies the type of transaction.
	Date Date     `json:"date"` // Date is the date when the transaction took place.
	Memo string   `json:"memo,omitempty"`
}

func (t baseTx) What() KindType { return t.Kind }
func (t baseTx) When() Date     { return t.Date }
func (t baseTx) TxID() int64    { return t.ID }

// MarshalJSON implements the json.Marshaler interface for baseTx.
func (t baseTx) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("kind", t.Kind)
	w.Append("date", t.Date)
	w.Optional("memo", t.Memo)
	return w.MarshalJSON()
}

// cashTx is the component shared by deposits and withdrawals.
type cashTx struct {
	baseTx
	InvestorID int64
	Amount     Money    // cash moved by the transaction, always positive
	NAV        Money    // fund total NAV after the transaction
	UnitsDelta Quantity // units created (deposit) or removed (withdraw), signed
	UnitPrice  Money    // price per unit at execution time
}

func (t cashTx) NAVAfter() Money { return t.NAV }

func (t cashTx) equal(o cashTx) bool {
	return t.baseTx == o.baseTx &&
		t.InvestorID == o.InvestorID &&
		t.Amount.Equal(o.Amount) &&
		t.NAV.Equal(o.NAV) &&
		t.UnitsDelta.Equal(o.UnitsDelta) &&
		t.UnitPrice.Equal(o.UnitPrice)
}

func (t cashTx) marshal() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseTx)
	w.Append("investor", t.InvestorID)
	w.Append("amount", t.Amount.Decimal())
	w.Append("nav", t.NAV.Decimal())
	w.Append("units", t.UnitsDelta)
	w.Append("price", t.UnitPrice.Decimal())
	w.Optional("currency", t.Amount.Currency())
	return w.MarshalJSON()
}

// cashRec is a specialized struct to decode a cash transaction from JSON.
type cashRec struct {
	baseTx
	InvestorID int64           `json:"investor"`
	Amount     decimal.Decimal `json:"amount"`
	NAV        decimal.Decimal `json:"nav"`
	Units      Quantity        `json:"units"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
}

func (r cashRec) cashTx() cashTx {
	return cashTx{
		baseTx:     r.baseTx,
		InvestorID: r.InvestorID,
		Amount:     M(r.Amount, r.Currency),
		NAV:        M(r.NAV, r.Currency),
		UnitsDelta: r.Units,
		UnitPrice:  M(r.Price, r.Currency),
	}
}

// Deposit represents a cash contribution by an investor. It opens a new
// tranche priced at the unit price in effect just before the deposit.
type Deposit struct {
	cashTx
}

// NewDeposit creates a deposit record. navBefore is the fund total NAV as it
// stands immediately before the cash flow.
func NewDeposit(id int64, day Date, memo string, investorID int64, amount, navBefore Money) Deposit {
	return Deposit{cashTx{
		baseTx:     baseTx{ID: id, Kind: KindDeposit, Date: day, Memo: memo},
		InvestorID: investorID,
		Amount:     amount,
		NAV:        navBefore.Add(amount),
	}}
}

func (t Deposit) NAVBefore() Money { return t.NAV.Sub(t.Amount) }

func (t Deposit) Equal(other Transaction) bool {
	o, ok := other.(Deposit)
	return ok && t.cashTx.equal(o.cashTx)
}

// Validate checks the deposit fields.
func (t Deposit) Validate() error {
	if t.InvestorID == 0 {
		return errValidation("investor", t.InvestorID, "deposit requires an investor")
	}
	if !t.Amount.IsPositive() {
		return errValidation("amount", t.Amount, "deposit amount must be positive")
	}
	if t.NAVBefore().IsNegative() {
		return errValidation("nav", t.NAV, "total NAV before the deposit must not be negative")
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Deposit.
func (t Deposit) MarshalJSON() ([]byte, error) { return t.cashTx.marshal() }

// UnmarshalJSON implements the json.Unmarshaler interface for Deposit.
func (t *Deposit) UnmarshalJSON(data []byte) error {
	var temp cashRec
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.cashTx = temp.cashTx()
	return nil
}

// Withdraw represents a cash redemption by an investor. Units are removed
// from the investor's tranches in selection-policy order.
type Withdraw struct {
	cashTx
}

// NewWithdraw creates a withdrawal record. navBefore is the fund total NAV as
// it stands immediately before the cash flow.
func NewWithdraw(id int64, day Date, memo string, investorID int64, amount, navBefore Money) Withdraw {
	return Withdraw{cashTx{
		baseTx:     baseTx{ID: id, Kind: KindWithdraw, Date: day, Memo: memo},
		InvestorID: investorID,
		Amount:     amount,
		NAV:        navBefore.Sub(amount),
	}}
}

func (t Withdraw) NAVBefore() Money { return t.NAV.Add(t.Amount) }

func (t Withdraw) Equal(other Transaction) bool {
	o, ok := other.(Withdraw)
	return ok && t.cashTx.equal(o.cashTx)
}

// Validate checks the withdrawal fields.
func (t Withdraw) Validate() error {
	if t.InvestorID == 0 {
		return errValidation("investor", t.InvestorID, "withdrawal requires an investor")
	}
	if !t.Amount.IsPositive() {
		return errValidation("amount", t.Amount, "withdrawal amount must be positive")
	}
	if t.NAV.IsNegative() {
		return errValidation("nav", t.NAV, "withdrawal exceeds total NAV")
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Withdraw.
func (t Withdraw) MarshalJSON() ([]byte, error) { return t.cashTx.marshal() }

// UnmarshalJSON implements the json.Unmarshaler interface for Withdraw.
func (t *Withdraw) UnmarshalJSON(data []byte) error {
	var temp cashRec
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.cashTx = temp.cashTx()
	return nil
}

// UpdateNAV records the fund's new total NAV as of a given date. It moves no
// units and belongs to no investor; it exists so that the next cash flow can
// be priced against a fresh "NAV before".
type UpdateNAV struct {
	baseTx
	NAV Money
}

// NewUpdateNAV creates a NAV update record.
func NewUpdateNAV(id int64, day Date, memo string, nav Money) UpdateNAV {
	return UpdateNAV{
		baseTx: baseTx{ID: id, Kind: KindUpdateNAV, Date: day, Memo: memo},
		NAV:    nav,
	}
}

func (t UpdateNAV) NAVAfter() Money  { return t.NAV }
func (t UpdateNAV) NAVBefore() Money { return t.NAV }

func (t UpdateNAV) Equal(other Transaction) bool {
	o, ok := other.(UpdateNAV)
	return ok && t.baseTx == o.baseTx && t.NAV.Equal(o.NAV)
}

// Validate checks the NAV update fields.
func (t UpdateNAV) Validate() error {
	if !t.NAV.IsPositive() {
		return errValidation("nav", t.NAV, "total NAV must be positive")
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for UpdateNAV.
func (t UpdateNAV) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseTx)
	w.Append("nav", t.NAV.Decimal())
	w.Optional("currency", t.NAV.Currency())
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for UpdateNAV.
func (t *UpdateNAV) UnmarshalJSON(data []byte) error {
	var temp struct {
		baseTx
		NAV      decimal.Decimal `json:"nav"`
		Currency string          `json:"currency"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.baseTx = temp.baseTx
	t.NAV = M(temp.NAV, temp.Currency)
	return nil
}
