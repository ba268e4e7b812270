package fund

import (
	"fmt"
	"sort"
)

// MemoryStore is an in-memory Store. It is the reference implementation of
// the contract and the backend used by tests.
type MemoryStore struct {
	investors  map[int64]*Investor
	txs        map[int64]Transaction
	tranches   map[int64]*Tranche
	feeRecords []FeeRecord

	nextInvestorID  int64
	nextFeeRecordID int64
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		investors:       make(map[int64]*Investor),
		txs:             make(map[int64]Transaction),
		tranches:        make(map[int64]*Tranche),
		nextInvestorID:  1,
		nextFeeRecordID: 1,
	}
}

func (s *MemoryStore) LoadInvestors() ([]*Investor, error) {
	out := make([]*Investor, 0, len(s.investors))
	for _, inv := range s.investors {
		c := *inv
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) LoadTransactions() ([]Transaction, error) {
	out := make([]Transaction, 0, len(s.txs))
	for _, t := range s.txs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TxID() < out[j].TxID() })
	return out, nil
}

func (s *MemoryStore) LoadTranches() ([]*Tranche, error) {
	out := make([]*Tranche, 0, len(s.tranches))
	for _, t := range s.tranches {
		out = append(out, t.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) LoadFeeRecords() ([]FeeRecord, error) {
	out := make([]FeeRecord, len(s.feeRecords))
	copy(out, s.feeRecords)
	return out, nil
}

func (s *MemoryStore) SaveInvestor(inv *Investor) error {
	if inv.ID == 0 {
		inv.ID = s.nextInvestorID
	}
	if inv.ID >= s.nextInvestorID {
		s.nextInvestorID = inv.ID + 1
	}
	c := *inv
	s.investors[inv.ID] = &c
	return nil
}

func (s *MemoryStore) DeleteInvestor(id int64) error {
	if _, ok := s.investors[id]; !ok {
		return fmt.Errorf("investor %d not found", id)
	}
	delete(s.investors, id)
	return nil
}

func (s *MemoryStore) Apply(c *Change) error {
	// validate the whole batch first, so a bad change mutates nothing
	for _, t := range c.AddTransactions {
		if _, ok := s.txs[t.TxID()]; ok {
			return fmt.Errorf("transaction %d already exists", t.TxID())
		}
	}
	for _, t := range c.UpdateTransactions {
		if _, ok := s.txs[t.TxID()]; !ok {
			return fmt.Errorf("transaction %d not found", t.TxID())
		}
	}
	for _, id := range c.RemoveTransactionIDs {
		if _, ok := s.txs[id]; !ok {
			return fmt.Errorf("transaction %d not found", id)
		}
	}

	for _, t := range c.AddTransactions {
		s.txs[t.TxID()] = t
	}
	for _, t := range c.UpdateTransactions {
		s.txs[t.TxID()] = t
	}
	for _, id := range c.RemoveTransactionIDs {
		delete(s.txs, id)
	}
	if c.ReplaceAllTranches {
		s.tranches = make(map[int64]*Tranche)
	}
	for _, t := range c.UpsertTranches {
		s.tranches[t.ID] = t.clone()
	}
	for _, r := range c.AddFeeRecords {
		if r.ID == 0 {
			r.ID = s.nextFeeRecordID
		}
		if r.ID >= s.nextFeeRecordID {
			s.nextFeeRecordID = r.ID + 1
		}
		s.feeRecords = append(s.feeRecords, r)
	}
	return nil
}
