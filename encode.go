package fund

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// The ledger is persisted as JSON Lines: one object per line, human readable
// and diff friendly. Each collection lives in its own file.

// EncodeTransactions writes transactions one JSON object per line.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	for _, t := range txs {
		line, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("cannot encode transaction %d: %w", t.TxID(), err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// DecodeTransactions reads a JSON Lines transaction log. The "kind" field of
// each line selects the concrete record type.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	err := scanLines(r, func(line []byte) error {
		var peek struct {
			Kind KindType `json:"kind"`
		}
		if err := json.Unmarshal(line, &peek); err != nil {
			return fmt.Errorf("invalid transaction line: %w", err)
		}
		var t Transaction
		switch peek.Kind {
		case KindDeposit:
			var d Deposit
			if err := json.Unmarshal(line, &d); err != nil {
				return fmt.Errorf("invalid %s line: %w", peek.Kind, err)
			}
			t = d
		case KindWithdraw:
			var wd Withdraw
			if err := json.Unmarshal(line, &wd); err != nil {
				return fmt.Errorf("invalid %s line: %w", peek.Kind, err)
			}
			t = wd
		case KindUpdateNAV:
			var u UpdateNAV
			if err := json.Unmarshal(line, &u); err != nil {
				return fmt.Errorf("invalid %s line: %w", peek.Kind, err)
			}
			t = u
		default:
			return fmt.Errorf("unknown transaction kind %q", peek.Kind)
		}
		txs = append(txs, t)
		return nil
	})
	return txs, err
}

// EncodeTranches writes tranches one JSON object per line.
func EncodeTranches(w io.Writer, tranches []*Tranche) error {
	for _, t := range tranches {
		line, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("cannot encode tranche %d: %w", t.ID, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// DecodeTranches reads a JSON Lines tranche book.
func DecodeTranches(r io.Reader) ([]*Tranche, error) {
	var tranches []*Tranche
	err := scanLines(r, func(line []byte) error {
		var t Tranche
		if err := json.Unmarshal(line, &t); err != nil {
			return fmt.Errorf("invalid tranche line: %w", err)
		}
		tranches = append(tranches, &t)
		return nil
	})
	return tranches, err
}

// EncodeInvestors writes investors one JSON object per line.
func EncodeInvestors(w io.Writer, investors []*Investor) error {
	for _, inv := range investors {
		line, err := json.Marshal(inv)
		if err != nil {
			return fmt.Errorf("cannot encode investor %d: %w", inv.ID, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// DecodeInvestors reads a JSON Lines investor registry.
func DecodeInvestors(r io.Reader) ([]*Investor, error) {
	var investors []*Investor
	err := scanLines(r, func(line []byte) error {
		var inv Investor
		if err := json.Unmarshal(line, &inv); err != nil {
			return fmt.Errorf("invalid investor line: %w", err)
		}
		investors = append(investors, &inv)
		return nil
	})
	return investors, err
}

// EncodeFeeRecords writes fee records one JSON object per line.
func EncodeFeeRecords(w io.Writer, records []FeeRecord) error {
	for _, r := range records {
		line, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("cannot encode fee record %d: %w", r.ID, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// DecodeFeeRecords reads a JSON Lines fee history.
func DecodeFeeRecords(r io.Reader) ([]FeeRecord, error) {
	var records []FeeRecord
	err := scanLines(r, func(line []byte) error {
		var rec FeeRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("invalid fee record line: %w", err)
		}
		records = append(records, rec)
		return nil
	})
	return records, err
}

// scanLines calls fn for every non-empty line of r.
func scanLines(r io.Reader, fn func(line []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}
