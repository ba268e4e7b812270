package fund

import (
	"context"
	"errors"
	"testing"
)

// seedFund records a 100,000,000 bootstrap deposit and marks the NAV at
// 120,000,000 at year end.
func seedFund(t *testing.T, e *Engine) *Investor {
	t.Helper()
	ctx := context.Background()
	alice := addInvestor(t, e, "Alice")
	if _, err := e.Deposit(ctx, alice.ID, M(100_000_000, "VND"), M(0, "VND"), MustParseDate("2025-01-15"), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := e.UpdateNAV(ctx, M(120_000_000, "VND"), MustParseDate("2025-12-30"), ""); err != nil {
		t.Fatal(err)
	}
	return alice
}

func TestPreviewFees(t *testing.T) {
	e := newTestEngine(t)
	seedFund(t, e)

	fp, err := e.PreviewFees(context.Background(), "2025", MustParseDate("2025-12-31"), M(120_000_000, "VND"))
	if err != nil {
		t.Fatal(err)
	}
	if len(fp.Lines) != 1 {
		t.Fatalf("preview has %d lines, want 1", len(fp.Lines))
	}
	line := fp.Lines[0]
	if !fp.UnitPrice.Equal(M(1.2, "VND")) {
		t.Errorf("assessment price = %s, want 1.2", fp.UnitPrice.Decimal())
	}
	if !line.Excess.Equal(M(20_000_000, "VND")) {
		t.Errorf("excess = %s, want 20000000", line.Excess.Decimal())
	}
	if !line.Fee.Equal(M(4_000_000, "VND")) {
		t.Errorf("fee = %s, want 4000000", line.Fee.Decimal())
	}
	if !line.UnitsTransferred.Equal(Q(3_333_333.33)) {
		t.Errorf("units transferred = %s, want 3333333.33", line.UnitsTransferred)
	}
	if !line.HWMAfter.Equal(M(1.2, "VND")) {
		t.Errorf("hwm after = %s, want 1.2", line.HWMAfter.Decimal())
	}
	if fp.Confirm == "" {
		t.Errorf("preview carries no confirmation token")
	}
}

func TestApplyFees(t *testing.T) {
	e := newTestEngine(t)
	alice := seedFund(t, e)
	ctx := context.Background()
	on := MustParseDate("2025-12-31")
	nav := M(120_000_000, "VND")

	fp, err := e.PreviewFees(ctx, "2025", on, nav)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.ApplyFees(ctx, "2025", on, nav, fp.Confirm); err != nil {
		t.Fatal(err)
	}

	sum, err := e.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// the fee changed owner, not the fund: units outstanding are conserved
	if !sum.Units.Equal(Q(100_000_000)) {
		t.Errorf("outstanding units = %s, want 100000000", sum.Units)
	}
	if !sum.TotalFees.Equal(M(4_000_000, "VND")) {
		t.Errorf("total fees = %s, want 4000000", sum.TotalFees.Decimal())
	}

	report, err := e.Performance(ctx, alice.ID, Money{})
	if err != nil {
		t.Fatal(err)
	}
	if !report.Units.Equal(Q(96_666_666.67)) {
		t.Errorf("alice units = %s, want 96666666.67", report.Units)
	}
	if !report.FeesPaid.Equal(M(4_000_000, "VND")) {
		t.Errorf("alice fees paid = %s, want 4000000", report.FeesPaid.Decimal())
	}

	// the same period cannot be applied twice
	if _, err := e.PreviewFees(ctx, "2025", on, nav); err == nil {
		t.Errorf("previewing an applied period should fail")
	}
}

func TestApplyFeesStaleToken(t *testing.T) {
	e := newTestEngine(t)
	alice := seedFund(t, e)
	ctx := context.Background()
	on := MustParseDate("2025-12-31")
	nav := M(120_000_000, "VND")

	fp, err := e.PreviewFees(ctx, "2025", on, nav)
	if err != nil {
		t.Fatal(err)
	}

	// the ledger moves between preview and apply
	if _, err := e.Deposit(ctx, alice.ID, M(10_000_000, "VND"), M(120_000_000, "VND"), MustParseDate("2025-12-31"), ""); err != nil {
		t.Fatal(err)
	}

	_, err = e.ApplyFees(ctx, "2025", on, M(130_000_000, "VND"), fp.Confirm)
	var serr *StaleConfirmationError
	if !errors.As(err, &serr) {
		t.Fatalf("got %v, want StaleConfirmationError", err)
	}

	// nothing was persisted
	records, err := e.store.LoadFeeRecords()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("store holds %d fee records, want 0", len(records))
	}
}

func TestHighWaterMarkNoDoubleCharge(t *testing.T) {
	e := newTestEngine(t)
	seedFund(t, e)
	ctx := context.Background()
	nav := M(120_000_000, "VND")

	fp, err := e.PreviewFees(ctx, "2025", MustParseDate("2025-12-31"), nav)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.ApplyFees(ctx, "2025", MustParseDate("2025-12-31"), nav, fp.Confirm); err != nil {
		t.Fatal(err)
	}

	// a year later the price is unchanged: no profit above the mark, no fee
	if _, err := e.UpdateNAV(ctx, nav, MustParseDate("2026-12-30"), ""); err != nil {
		t.Fatal(err)
	}
	fp2, err := e.PreviewFees(ctx, "2026", MustParseDate("2026-12-31"), nav)
	if err != nil {
		t.Fatal(err)
	}
	if !fp2.TotalFee.IsZero() {
		t.Errorf("fee on flat performance = %s, want 0", fp2.TotalFee.Decimal())
	}
}

func TestDeleteBehindFeePeriodRefused(t *testing.T) {
	e := newTestEngine(t)
	seedFund(t, e)
	ctx := context.Background()
	nav := M(120_000_000, "VND")

	fp, err := e.PreviewFees(ctx, "2025", MustParseDate("2025-12-31"), nav)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.ApplyFees(ctx, "2025", MustParseDate("2025-12-31"), nav, fp.Confirm); err != nil {
		t.Fatal(err)
	}

	// the deposit backing the certified period cannot be removed
	err = e.DeleteTransaction(ctx, 1, true)
	var cerr *ConsistencyError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want ConsistencyError", err)
	}
}

func TestSimulateFees(t *testing.T) {
	e := newTestEngine(t)
	seedFund(t, e)
	ctx := context.Background()

	fp, err := e.SimulateFees(ctx, MustParseDate("2025-12-31"), M(150_000_000, "VND"))
	if err != nil {
		t.Fatal(err)
	}
	if !fp.TotalFee.Equal(M(10_000_000, "VND")) {
		t.Errorf("simulated fee = %s, want 10000000", fp.TotalFee.Decimal())
	}
	if fp.Confirm != "" {
		t.Errorf("a simulation must not carry a confirmation token")
	}

	records, err := e.store.LoadFeeRecords()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("simulation persisted %d fee records", len(records))
	}
}
