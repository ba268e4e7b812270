package fund

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTransactionsJSONLRoundTrip(t *testing.T) {
	day := MustParseDate("2025-01-15")
	txs := []Transaction{
		NewDeposit(1, day, "initial", 2, M(100_000_000, "VND"), M(0, "VND")),
		NewUpdateNAV(2, MustParseDate("2025-06-30"), "", M(110_000_000, "VND")),
		NewWithdraw(3, MustParseDate("2025-07-01"), "", 2, M(10_000_000, "VND"), M(110_000_000, "VND")),
	}

	var buf bytes.Buffer
	if err := EncodeTransactions(&buf, txs); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "\n"); got != len(txs) {
		t.Fatalf("encoded %d lines, want %d", got, len(txs))
	}

	decoded, err := DecodeTransactions(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded) != len(txs) {
		t.Fatalf("decoded %d transactions, want %d", len(decoded), len(txs))
	}
	for i := range txs {
		if !txs[i].Equal(decoded[i]) {
			t.Errorf("transaction %d does not survive the round trip: %#v", txs[i].TxID(), decoded[i])
		}
	}
}

func TestDecodeTransactionsRejectsUnknownKind(t *testing.T) {
	in := strings.NewReader(`{"id":1,"kind":"dividend","date":"2025-01-15"}`)
	if _, err := DecodeTransactions(in); err == nil {
		t.Fatal("unknown kind should be rejected")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	alice := &Investor{Name: "Alice", JoinedOn: MustParseDate("2025-01-01")}
	if err := store.SaveInvestor(alice); err != nil {
		t.Fatal(err)
	}
	if alice.ID == 0 {
		t.Fatal("SaveInvestor did not assign an id")
	}

	day := MustParseDate("2025-01-15")
	tx := NewDeposit(1, day, "", alice.ID, M(1000, "VND"), M(0, "VND"))
	tranche := newTranche(alice.ID, day, M(1, "VND"), Q(1000), M(1000, "VND"))
	tranche.ID = 1
	if err := store.Apply(&Change{
		AddTransactions:    []Transaction{tx},
		UpsertTranches:     []*Tranche{tranche},
		ReplaceAllTranches: true,
	}); err != nil {
		t.Fatal(err)
	}

	// a fresh store over the same directory sees the same ledger
	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	txs, err := reopened.LoadTransactions()
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 || !txs[0].Equal(tx) {
		t.Fatalf("reloaded transactions = %#v", txs)
	}
	tranches, err := reopened.LoadTranches()
	if err != nil {
		t.Fatal(err)
	}
	if len(tranches) != 1 || !tranches[0].Units.Equal(Q(1000)) {
		t.Fatalf("reloaded tranches = %#v", tranches)
	}
	investors, err := reopened.LoadInvestors()
	if err != nil {
		t.Fatal(err)
	}
	if len(investors) != 1 || !investors[0].SameName("alice") {
		t.Fatalf("reloaded investors = %#v", investors)
	}
}

func TestFileStoreStaleTrancheFile(t *testing.T) {
	// a crash between Apply's renames can leave the tranche file behind the
	// transaction log; the replayed ledger must not depend on it
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(store, Config{Currency: "VND"})
	alice := addInvestor(t, e, "Alice")
	ctx := context.Background()
	if _, err := e.Deposit(ctx, alice.ID, M(1000, "VND"), M(0, "VND"), MustParseDate("2025-01-15"), ""); err != nil {
		t.Fatal(err)
	}

	// tear the batch: the tranche file reverts to its pre-deposit state
	if err := os.WriteFile(filepath.Join(dir, tranchesFile), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	e2 := NewEngine(reopened, Config{Currency: "VND"})
	sum, err := e2.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Units.Equal(Q(1000)) {
		t.Errorf("units after torn batch = %s, want 1000", sum.Units)
	}

	// the next commit rewrites the whole tranche book
	if _, err := e2.UpdateNAV(ctx, M(1100, "VND"), MustParseDate("2025-02-01"), ""); err != nil {
		t.Fatal(err)
	}
	tranches, err := reopened.LoadTranches()
	if err != nil {
		t.Fatal(err)
	}
	if len(tranches) != 1 || !tranches[0].Units.Equal(Q(1000)) {
		t.Fatalf("rewritten tranche book = %#v", tranches)
	}
}

func TestFileStoreEngine(t *testing.T) {
	// the whole engine running over the file backend
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(store, Config{Currency: "VND"})
	alice := addInvestor(t, e, "Alice")

	ctx := context.Background()
	if _, err := e.Deposit(ctx, alice.ID, M(1000, "VND"), M(0, "VND"), MustParseDate("2025-01-15"), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Withdraw(ctx, alice.ID, M(400, "VND"), M(1000, "VND"), MustParseDate("2025-02-01"), ""); err != nil {
		t.Fatal(err)
	}

	sum, err := e.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Units.Equal(Q(600)) {
		t.Errorf("outstanding units = %s, want 600", sum.Units)
	}
	if !sum.NAV.Equal(M(600, "VND")) {
		t.Errorf("nav = %s, want 600", sum.NAV.Decimal())
	}
}
