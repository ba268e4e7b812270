package fund

import (
	"context"
	"errors"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(NewMemoryStore(), Config{Currency: "VND"})
}

func addInvestor(t *testing.T, e *Engine, name string) *Investor {
	t.Helper()
	inv := &Investor{Name: name, JoinedOn: MustParseDate("2025-01-01")}
	if err := e.AddInvestor(context.Background(), inv); err != nil {
		t.Fatalf("AddInvestor(%s): %v", name, err)
	}
	return inv
}

func TestAddInvestor(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	alice := addInvestor(t, e, "Alice")
	if alice.ID == FundManagerID {
		t.Fatalf("investor got the reserved fund manager id")
	}

	// names are unique, case-insensitive
	err := e.AddInvestor(ctx, &Investor{Name: "alice"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("duplicate name: got %v, want ValidationError", err)
	}

	investors, err := e.Investors(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(investors) != 1 {
		t.Fatalf("Investors() = %d entries, want 1 (fund manager excluded)", len(investors))
	}
}

func TestDepositBootstrap(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	alice := addInvestor(t, e, "Alice")

	tx, err := e.Deposit(ctx, alice.ID, M(100_000_000, "VND"), M(0, "VND"), MustParseDate("2025-01-15"), "")
	if err != nil {
		t.Fatal(err)
	}
	if !tx.UnitPrice.Equal(M(1, "VND")) {
		t.Errorf("bootstrap unit price = %s, want 1", tx.UnitPrice.Decimal())
	}
	if !tx.UnitsDelta.Equal(Q(100_000_000)) {
		t.Errorf("units = %s, want 100000000", tx.UnitsDelta)
	}
	if !tx.NAVAfter().Equal(M(100_000_000, "VND")) {
		t.Errorf("nav after = %s, want 100000000", tx.NAVAfter().Decimal())
	}
}

func TestDepositPricedAgainstNAV(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	alice := addInvestor(t, e, "Alice")
	bob := addInvestor(t, e, "Bob")

	if _, err := e.Deposit(ctx, alice.ID, M(1000, "VND"), M(0, "VND"), MustParseDate("2025-01-15"), ""); err != nil {
		t.Fatal(err)
	}
	// the fund is now worth 1500 before Bob's cash: price 1.5
	tx, err := e.Deposit(ctx, bob.ID, M(300, "VND"), M(1500, "VND"), MustParseDate("2025-02-01"), "")
	if err != nil {
		t.Fatal(err)
	}
	if !tx.UnitPrice.Equal(M(1.5, "VND")) {
		t.Errorf("unit price = %s, want 1.5", tx.UnitPrice.Decimal())
	}
	if !tx.UnitsDelta.Equal(Q(200)) {
		t.Errorf("units = %s, want 200", tx.UnitsDelta)
	}
}

func TestWithdrawInsufficientUnits(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	alice := addInvestor(t, e, "Alice")
	bob := addInvestor(t, e, "Bob")

	if _, err := e.Deposit(ctx, alice.ID, M(1000, "VND"), M(0, "VND"), MustParseDate("2025-01-15"), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Deposit(ctx, bob.ID, M(500, "VND"), M(1000, "VND"), MustParseDate("2025-01-16"), ""); err != nil {
		t.Fatal(err)
	}

	// Bob holds 500 units; the fund holds 1500. Bob cannot take 600.
	_, err := e.Withdraw(ctx, bob.ID, M(600, "VND"), M(1500, "VND"), MustParseDate("2025-02-01"), "")
	var ierr *InsufficientUnitsError
	if !errors.As(err, &ierr) {
		t.Fatalf("got %v, want InsufficientUnitsError", err)
	}
	if !ierr.Held.Equal(Q(500)) {
		t.Errorf("held = %s, want 500", ierr.Held)
	}

	// nothing was debited
	txs, err := e.Transactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 2 {
		t.Fatalf("transaction log has %d entries, want 2", len(txs))
	}
}

func TestWithdrawFIFO(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	alice := addInvestor(t, e, "Alice")

	if _, err := e.Deposit(ctx, alice.ID, M(1000, "VND"), M(0, "VND"), MustParseDate("2025-01-15"), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Deposit(ctx, alice.ID, M(1000, "VND"), M(1000, "VND"), MustParseDate("2025-02-15"), ""); err != nil {
		t.Fatal(err)
	}

	tx, err := e.Withdraw(ctx, alice.ID, M(1200, "VND"), M(2000, "VND"), MustParseDate("2025-03-01"), "")
	if err != nil {
		t.Fatal(err)
	}
	if !tx.UnitsDelta.Neg().Equal(Q(1200)) {
		t.Fatalf("units removed = %s, want 1200", tx.UnitsDelta.Neg())
	}

	// the January tranche is fully drained, the February one keeps 800 units
	sum, err := e.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Units.Equal(Q(800)) {
		t.Errorf("outstanding units = %s, want 800", sum.Units)
	}
}

func TestUpdateNAVConservesUnits(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	alice := addInvestor(t, e, "Alice")

	if _, err := e.Deposit(ctx, alice.ID, M(1000, "VND"), M(0, "VND"), MustParseDate("2025-01-15"), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := e.UpdateNAV(ctx, M(1300, "VND"), MustParseDate("2025-02-01"), ""); err != nil {
		t.Fatal(err)
	}

	sum, err := e.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Units.Equal(Q(1000)) {
		t.Errorf("units after NAV update = %s, want 1000", sum.Units)
	}
	if !sum.UnitPrice.Equal(M(1.3, "VND")) {
		t.Errorf("unit price = %s, want 1.3", sum.UnitPrice.Decimal())
	}
}

func TestDeleteAndRecreate(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	alice := addInvestor(t, e, "Alice")

	tx, err := e.Deposit(ctx, alice.ID, M(1000, "VND"), M(0, "VND"), MustParseDate("2025-01-15"), "")
	if err != nil {
		t.Fatal(err)
	}
	if err := e.DeleteTransaction(ctx, tx.TxID(), false); err != nil {
		t.Fatal(err)
	}
	sum, err := e.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Units.IsZero() {
		t.Fatalf("units after delete = %s, want 0", sum.Units)
	}

	// re-recording the same deposit replays to the same state
	tx2, err := e.Deposit(ctx, alice.ID, M(1000, "VND"), M(0, "VND"), MustParseDate("2025-01-15"), "")
	if err != nil {
		t.Fatal(err)
	}
	if !tx2.UnitsDelta.Equal(tx.UnitsDelta) || !tx2.UnitPrice.Equal(tx.UnitPrice) {
		t.Errorf("recreated deposit diverges: %s at %s", tx2.UnitsDelta, tx2.UnitPrice.Decimal())
	}
}

func TestUndoTransaction(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	alice := addInvestor(t, e, "Alice")

	dep, err := e.Deposit(ctx, alice.ID, M(1000, "VND"), M(0, "VND"), MustParseDate("2025-01-15"), "")
	if err != nil {
		t.Fatal(err)
	}

	// undoing a deposit records the inverse withdrawal at the current price
	inverse, err := e.UndoTransaction(ctx, dep.TxID())
	if err != nil {
		t.Fatal(err)
	}
	if inverse.What() != KindWithdraw {
		t.Fatalf("inverse is a %s, want %s", inverse.What(), KindWithdraw)
	}
	sum, err := e.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Units.IsZero() {
		t.Errorf("units after undo = %s, want 0", sum.Units)
	}

	// the transaction log keeps both legs
	txs, err := e.Transactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 2 {
		t.Errorf("log has %d transactions, want 2", len(txs))
	}
}

func TestUndoNAVUpdateRefused(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	alice := addInvestor(t, e, "Alice")

	if _, err := e.Deposit(ctx, alice.ID, M(1000, "VND"), M(0, "VND"), MustParseDate("2025-01-15"), ""); err != nil {
		t.Fatal(err)
	}
	nav, err := e.UpdateNAV(ctx, M(1100, "VND"), MustParseDate("2025-02-01"), "")
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.UndoTransaction(ctx, nav.TxID())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestDeleteNotLastRequiresCascade(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	alice := addInvestor(t, e, "Alice")

	dep, err := e.Deposit(ctx, alice.ID, M(1000, "VND"), M(0, "VND"), MustParseDate("2025-01-15"), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.UpdateNAV(ctx, M(1100, "VND"), MustParseDate("2025-02-01"), ""); err != nil {
		t.Fatal(err)
	}

	err = e.DeleteTransaction(ctx, dep.TxID(), false)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError without cascade", err)
	}
	if err := e.DeleteTransaction(ctx, dep.TxID(), true); err != nil {
		t.Fatalf("cascade delete: %v", err)
	}
	sum, err := e.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Units.IsZero() {
		t.Errorf("units after cascade delete = %s, want 0", sum.Units)
	}
}

func TestRemoveInvestor(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	alice := addInvestor(t, e, "Alice")
	bob := addInvestor(t, e, "Bob")

	if _, err := e.Deposit(ctx, alice.ID, M(1000, "VND"), M(0, "VND"), MustParseDate("2025-01-15"), ""); err != nil {
		t.Fatal(err)
	}

	if err := e.RemoveInvestor(ctx, alice.ID); err == nil {
		t.Errorf("removing an investor with history should fail")
	}
	if err := e.RemoveInvestor(ctx, FundManagerID); err == nil {
		t.Errorf("removing the fund manager should fail")
	}
	if err := e.RemoveInvestor(ctx, bob.ID); err != nil {
		t.Errorf("removing an idle investor: %v", err)
	}
}

func TestLockTimeout(t *testing.T) {
	e := NewEngine(NewMemoryStore(), Config{Currency: "VND", LockTimeout: 1})
	e.sem <- struct{}{} // hold the lock

	_, err := e.Investors(context.Background())
	var lerr *LockTimeoutError
	if !errors.As(err, &lerr) {
		t.Fatalf("got %v, want LockTimeoutError", err)
	}
}
