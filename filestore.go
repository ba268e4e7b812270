package fund

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// File names used by FileStore inside its directory.
const (
	investorsFile    = "investors.jsonl"
	transactionsFile = "transactions.jsonl"
	tranchesFile     = "tranches.jsonl"
	feesFile         = "fees.jsonl"
)

// FileStore persists the ledger as JSON Lines files in a single directory.
// Each file is rewritten whole through a temporary file and a rename, so a
// crash mid-write never leaves a truncated collection behind.
type FileStore struct {
	dir string
}

// NewFileStore opens (and creates if needed) a file store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create ledger directory %q: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (s *FileStore) Dir() string { return s.dir }

// read returns the file content, or nil when the file does not exist yet.
func (s *FileStore) read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", name, err)
	}
	return data, nil
}

// write replaces the file content using a temp file and an atomic rename.
func (s *FileStore) write(name string, content []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, name))
}

func (s *FileStore) LoadInvestors() ([]*Investor, error) {
	data, err := s.read(investorsFile)
	if err != nil {
		return nil, err
	}
	return DecodeInvestors(bytes.NewReader(data))
}

func (s *FileStore) LoadTransactions() ([]Transaction, error) {
	data, err := s.read(transactionsFile)
	if err != nil {
		return nil, err
	}
	return DecodeTransactions(bytes.NewReader(data))
}

func (s *FileStore) LoadTranches() ([]*Tranche, error) {
	data, err := s.read(tranchesFile)
	if err != nil {
		return nil, err
	}
	return DecodeTranches(bytes.NewReader(data))
}

func (s *FileStore) LoadFeeRecords() ([]FeeRecord, error) {
	data, err := s.read(feesFile)
	if err != nil {
		return nil, err
	}
	return DecodeFeeRecords(bytes.NewReader(data))
}

func (s *FileStore) SaveInvestor(inv *Investor) error {
	investors, err := s.LoadInvestors()
	if err != nil {
		return err
	}
	if inv.ID == 0 {
		var max int64
		for _, existing := range investors {
			if existing.ID > max {
				max = existing.ID
			}
		}
		inv.ID = max + 1
	}
	replaced := false
	for i, existing := range investors {
		if existing.ID == inv.ID {
			investors[i] = inv
			replaced = true
			break
		}
	}
	if !replaced {
		investors = append(investors, inv)
	}
	var buf bytes.Buffer
	if err := EncodeInvestors(&buf, investors); err != nil {
		return err
	}
	return s.write(investorsFile, buf.Bytes())
}

func (s *FileStore) DeleteInvestor(id int64) error {
	investors, err := s.LoadInvestors()
	if err != nil {
		return err
	}
	kept := investors[:0]
	found := false
	for _, inv := range investors {
		if inv.ID == id {
			found = true
			continue
		}
		kept = append(kept, inv)
	}
	if !found {
		return fmt.Errorf("investor %d not found", id)
	}
	var buf bytes.Buffer
	if err := EncodeInvestors(&buf, kept); err != nil {
		return err
	}
	return s.write(investorsFile, buf.Bytes())
}

// Apply stages every modified collection in memory first and only then
// rewrites the files, so a bad change leaves the directory untouched.
//
// Each file is replaced atomically, but the three renames are sequential: a
// crash in between can leave files from two different batches. That tear is
// healed on the next load, because the ledger is replayed from transactions
// and fee records and never trusts the stored tranche book.
func (s *FileStore) Apply(c *Change) error {
	if c.IsZero() {
		return nil
	}

	txs, err := s.LoadTransactions()
	if err != nil {
		return err
	}
	byID := make(map[int64]int, len(txs))
	for i, t := range txs {
		byID[t.TxID()] = i
	}
	for _, t := range c.AddTransactions {
		if _, ok := byID[t.TxID()]; ok {
			return fmt.Errorf("transaction %d already exists", t.TxID())
		}
		byID[t.TxID()] = len(txs)
		txs = append(txs, t)
	}
	for _, t := range c.UpdateTransactions {
		i, ok := byID[t.TxID()]
		if !ok {
			return fmt.Errorf("transaction %d not found", t.TxID())
		}
		txs[i] = t
	}
	if len(c.RemoveTransactionIDs) > 0 {
		remove := make(map[int64]bool, len(c.RemoveTransactionIDs))
		for _, id := range c.RemoveTransactionIDs {
			if _, ok := byID[id]; !ok {
				return fmt.Errorf("transaction %d not found", id)
			}
			remove[id] = true
		}
		kept := txs[:0]
		for _, t := range txs {
			if !remove[t.TxID()] {
				kept = append(kept, t)
			}
		}
		txs = kept
	}

	var tranches []*Tranche
	if c.ReplaceAllTranches {
		tranches = c.UpsertTranches
	} else {
		if tranches, err = s.LoadTranches(); err != nil {
			return err
		}
		for _, t := range c.UpsertTranches {
			replaced := false
			for i, existing := range tranches {
				if existing.ID == t.ID {
					tranches[i] = t
					replaced = true
					break
				}
			}
			if !replaced {
				tranches = append(tranches, t)
			}
		}
	}

	records, err := s.LoadFeeRecords()
	if err != nil {
		return err
	}
	var nextID int64 = 1
	for _, r := range records {
		if r.ID >= nextID {
			nextID = r.ID + 1
		}
	}
	for _, r := range c.AddFeeRecords {
		if r.ID == 0 {
			r.ID = nextID
			nextID++
		}
		records = append(records, r)
	}

	var txBuf, trBuf, feeBuf bytes.Buffer
	if err := EncodeTransactions(&txBuf, txs); err != nil {
		return err
	}
	if err := EncodeTranches(&trBuf, tranches); err != nil {
		return err
	}
	if err := EncodeFeeRecords(&feeBuf, records); err != nil {
		return err
	}

	if err := s.write(transactionsFile, txBuf.Bytes()); err != nil {
		return err
	}
	if err := s.write(tranchesFile, trBuf.Bytes()); err != nil {
		return err
	}
	return s.write(feesFile, feeBuf.Bytes())
}
