package fund

// Change is an atomic batch of ledger mutations. A Store must apply the whole
// batch or none of it.
type Change struct {
	AddTransactions      []Transaction
	UpdateTransactions   []Transaction
	RemoveTransactionIDs []int64

	// ReplaceAllTranches indicates that UpsertTranches is the complete new
	// tranche book: tranches absent from it are removed.
	UpsertTranches     []*Tranche
	ReplaceAllTranches bool

	AddFeeRecords []FeeRecord
}

// IsZero reports whether the change carries no mutation at all.
func (c *Change) IsZero() bool {
	return len(c.AddTransactions) == 0 &&
		len(c.UpdateTransactions) == 0 &&
		len(c.RemoveTransactionIDs) == 0 &&
		len(c.UpsertTranches) == 0 && !c.ReplaceAllTranches &&
		len(c.AddFeeRecords) == 0
}

// Store is the persistence contract of the fund ledger.
//
// Load methods return independent copies: mutating a returned value must not
// affect the store. Apply is all-or-nothing; after an error the store content
// is the same as before the call.
type Store interface {
	LoadInvestors() ([]*Investor, error)
	LoadTransactions() ([]Transaction, error)
	LoadTranches() ([]*Tranche, error)
	LoadFeeRecords() ([]FeeRecord, error)

	// SaveInvestor inserts the investor when its ID is zero, assigning a new
	// one, and updates it otherwise.
	SaveInvestor(inv *Investor) error
	// DeleteInvestor removes an investor record. It does not touch the
	// transaction log; callers must ensure the investor has no holdings.
	DeleteInvestor(id int64) error

	Apply(c *Change) error
}

// loadLedgerData reads every collection a replay needs from the store.
func loadLedgerData(s Store) (ledgerData, error) {
	var data ledgerData
	var err error
	if data.Investors, err = s.LoadInvestors(); err != nil {
		return data, err
	}
	if data.Transactions, err = s.LoadTransactions(); err != nil {
		return data, err
	}
	if data.FeeRecords, err = s.LoadFeeRecords(); err != nil {
		return data, err
	}
	return data, nil
}
