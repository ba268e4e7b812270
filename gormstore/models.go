package gormstore

import (
	fund "github.com/lignowhere/cnfund-sub001"
	"github.com/shopspring/decimal"
)

type investorRow struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;not null"`
	Email       string
	Phone       string
	JoinedOn    string `gorm:"not null"`
	FundManager bool
}

func (investorRow) TableName() string { return "investors" }

func (r investorRow) investor() (*fund.Investor, error) {
	joined, err := fund.ParseDate(r.JoinedOn)
	if err != nil {
		return nil, err
	}
	return &fund.Investor{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		JoinedOn:    joined,
		FundManager: r.FundManager,
	}, nil
}

func newInvestorRow(inv *fund.Investor) investorRow {
	return investorRow{
		ID:          inv.ID,
		Name:        inv.Name,
		Email:       inv.Email,
		Phone:       inv.Phone,
		JoinedOn:    inv.JoinedOn.String(),
		FundManager: inv.FundManager,
	}
}

type transactionRow struct {
	ID         int64  `gorm:"primaryKey"`
	Kind       string `gorm:"not null;index"`
	Date       string `gorm:"not null;index"`
	Memo       string
	InvestorID int64           `gorm:"index"`
	Amount     decimal.Decimal `gorm:"type:numeric"`
	NAV        decimal.Decimal `gorm:"type:numeric;not null"`
	Units      decimal.Decimal `gorm:"type:numeric"`
	Price      decimal.Decimal `gorm:"type:numeric"`
	Currency   string
}

func (transactionRow) TableName() string { return "transactions" }

func (r transactionRow) transaction() (fund.Transaction, error) {
	day, err := fund.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}
	switch fund.KindType(r.Kind) {
	case fund.KindDeposit:
		var t fund.Deposit
		t.ID, t.Kind, t.Date, t.Memo = r.ID, fund.KindDeposit, day, r.Memo
		t.InvestorID = r.InvestorID
		t.Amount = fund.M(r.Amount, r.Currency)
		t.NAV = fund.M(r.NAV, r.Currency)
		t.UnitsDelta = fund.Q(r.Units)
		t.UnitPrice = fund.M(r.Price, r.Currency)
		return t, nil
	case fund.KindWithdraw:
		var t fund.Withdraw
		t.ID, t.Kind, t.Date, t.Memo = r.ID, fund.KindWithdraw, day, r.Memo
		t.InvestorID = r.InvestorID
		t.Amount = fund.M(r.Amount, r.Currency)
		t.NAV = fund.M(r.NAV, r.Currency)
		t.UnitsDelta = fund.Q(r.Units)
		t.UnitPrice = fund.M(r.Price, r.Currency)
		return t, nil
	case fund.KindUpdateNAV:
		var t fund.UpdateNAV
		t.ID, t.Kind, t.Date, t.Memo = r.ID, fund.KindUpdateNAV, day, r.Memo
		t.NAV = fund.M(r.NAV, r.Currency)
		return t, nil
	default:
		return nil, errUnknownKind(r.Kind)
	}
}

func newTransactionRow(t fund.Transaction) transactionRow {
	row := transactionRow{
		ID:   t.TxID(),
		Kind: string(t.What()),
		Date: t.When().String(),
		NAV:  t.NAVAfter().Decimal(),
	}
	switch tx := t.(type) {
	case fund.Deposit:
		row.Memo = tx.Memo
		row.InvestorID = tx.InvestorID
		row.Amount = tx.Amount.Decimal()
		row.Units = tx.UnitsDelta.Decimal()
		row.Price = tx.UnitPrice.Decimal()
		row.Currency = tx.Amount.Currency()
	case fund.Withdraw:
		row.Memo = tx.Memo
		row.InvestorID = tx.InvestorID
		row.Amount = tx.Amount.Decimal()
		row.Units = tx.UnitsDelta.Decimal()
		row.Price = tx.UnitPrice.Decimal()
		row.Currency = tx.Amount.Currency()
	case fund.UpdateNAV:
		row.Memo = tx.Memo
		row.Currency = tx.NAV.Currency()
	}
	return row
}

type trancheRow struct {
	ID                int64 `gorm:"primaryKey"`
	InvestorID        int64 `gorm:"index;not null"`
	EntryDate         string
	EntryNAV          decimal.Decimal `gorm:"type:numeric"`
	Units             decimal.Decimal `gorm:"type:numeric"`
	Invested          decimal.Decimal `gorm:"type:numeric"`
	HWM               decimal.Decimal `gorm:"type:numeric"`
	FeesPaid          decimal.Decimal `gorm:"type:numeric"`
	OriginalEntryDate string
	OriginalEntryNAV  decimal.Decimal `gorm:"type:numeric"`
	Currency          string
}

func (trancheRow) TableName() string { return "tranches" }

func (r trancheRow) tranche() (*fund.Tranche, error) {
	entry, err := fund.ParseDate(r.EntryDate)
	if err != nil {
		return nil, err
	}
	original, err := fund.ParseDate(r.OriginalEntryDate)
	if err != nil {
		return nil, err
	}
	return &fund.Tranche{
		ID:                r.ID,
		InvestorID:        r.InvestorID,
		EntryDate:         entry,
		EntryNAV:          fund.M(r.EntryNAV, r.Currency),
		Units:             fund.Q(r.Units),
		Invested:          fund.M(r.Invested, r.Currency),
		HighWaterMark:     fund.M(r.HWM, r.Currency),
		FeesPaid:          fund.M(r.FeesPaid, r.Currency),
		OriginalEntryDate: original,
		OriginalEntryNAV:  fund.M(r.OriginalEntryNAV, r.Currency),
	}, nil
}

func newTrancheRow(t *fund.Tranche) trancheRow {
	return trancheRow{
		ID:                t.ID,
		InvestorID:        t.InvestorID,
		EntryDate:         t.EntryDate.String(),
		EntryNAV:          t.EntryNAV.Decimal(),
		Units:             t.Units.Decimal(),
		Invested:          t.Invested.Decimal(),
		HWM:               t.HighWaterMark.Decimal(),
		FeesPaid:          t.FeesPaid.Decimal(),
		OriginalEntryDate: t.OriginalEntryDate.String(),
		OriginalEntryNAV:  t.OriginalEntryNAV.Decimal(),
		Currency:          t.Invested.Currency(),
	}
}

type feeRecordRow struct {
	ID           int64  `gorm:"primaryKey"`
	Period       string `gorm:"index;not null"`
	CalculatedOn string
	InvestorID   int64           `gorm:"index"`
	TrancheID    int64           `gorm:"index"`
	Price        decimal.Decimal `gorm:"type:numeric"`
	Fee          decimal.Decimal `gorm:"type:numeric"`
	Units        decimal.Decimal `gorm:"type:numeric"`
	HWMBefore    decimal.Decimal `gorm:"type:numeric"`
	HWMAfter     decimal.Decimal `gorm:"type:numeric"`
	Perf         float64
	Currency     string
}

func (feeRecordRow) TableName() string { return "fee_records" }

func (r feeRecordRow) feeRecord() (fund.FeeRecord, error) {
	on, err := fund.ParseDate(r.CalculatedOn)
	if err != nil {
		return fund.FeeRecord{}, err
	}
	return fund.FeeRecord{
		ID:               r.ID,
		Period:           r.Period,
		CalculatedOn:     on,
		InvestorID:       r.InvestorID,
		TrancheID:        r.TrancheID,
		UnitPrice:        fund.M(r.Price, r.Currency),
		Fee:              fund.M(r.Fee, r.Currency),
		UnitsTransferred: fund.Q(r.Units),
		HWMBefore:        fund.M(r.HWMBefore, r.Currency),
		HWMAfter:         fund.M(r.HWMAfter, r.Currency),
		Performance:      fund.Percent(r.Perf),
	}, nil
}

func newFeeRecordRow(rec fund.FeeRecord) feeRecordRow {
	return feeRecordRow{
		ID:           rec.ID,
		Period:       rec.Period,
		CalculatedOn: rec.CalculatedOn.String(),
		InvestorID:   rec.InvestorID,
		TrancheID:    rec.TrancheID,
		Price:        rec.UnitPrice.Decimal(),
		Fee:          rec.Fee.Decimal(),
		Units:        rec.UnitsTransferred.Decimal(),
		HWMBefore:    rec.HWMBefore.Decimal(),
		HWMAfter:     rec.HWMAfter.Decimal(),
		Perf:         float64(rec.Performance),
		Currency:     rec.Fee.Currency(),
	}
}
