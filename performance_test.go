package fund

import (
	"context"
	"testing"
)

func TestPerformanceLifetime(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	alice := addInvestor(t, e, "Alice")

	if _, err := e.Deposit(ctx, alice.ID, M(1000, "VND"), M(0, "VND"), MustParseDate("2025-01-15"), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := e.UpdateNAV(ctx, M(1500, "VND"), MustParseDate("2025-06-30"), ""); err != nil {
		t.Fatal(err)
	}

	report, err := e.Performance(ctx, alice.ID, Money{})
	if err != nil {
		t.Fatal(err)
	}
	if !report.Invested.Equal(M(1000, "VND")) {
		t.Errorf("invested = %s, want 1000", report.Invested.Decimal())
	}
	if !report.Value.Equal(M(1500, "VND")) {
		t.Errorf("value = %s, want 1500", report.Value.Decimal())
	}
	if !report.NetProfit.Equal(M(500, "VND")) {
		t.Errorf("net profit = %s, want 500", report.NetProfit.Decimal())
	}
	if !report.NetReturn.Equal(Percent(50)) {
		t.Errorf("net return = %s, want 50%%", report.NetReturn)
	}
	if len(report.Tranches) != 1 {
		t.Fatalf("report has %d tranches, want 1", len(report.Tranches))
	}
	if !report.Tranches[0].EntryPrice.Equal(M(1, "VND")) {
		t.Errorf("entry price = %s, want 1", report.Tranches[0].EntryPrice.Decimal())
	}

	// a caller-supplied NAV reprices the report without touching the log
	report, err = e.Performance(ctx, alice.ID, M(2000, "VND"))
	if err != nil {
		t.Fatal(err)
	}
	if !report.Value.Equal(M(2000, "VND")) {
		t.Errorf("value at supplied NAV = %s, want 2000", report.Value.Decimal())
	}
	if !report.NetReturn.Equal(Percent(100)) {
		t.Errorf("net return at supplied NAV = %s, want 100%%", report.NetReturn)
	}
}

func TestPerformanceGrossKeepsFees(t *testing.T) {
	e := newTestEngine(t)
	alice := seedFund(t, e)
	ctx := context.Background()
	nav := M(120_000_000, "VND")

	fp, err := e.PreviewFees(ctx, "2025", MustParseDate("2025-12-31"), nav)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.ApplyFees(ctx, "2025", MustParseDate("2025-12-31"), nav, fp.Confirm); err != nil {
		t.Fatal(err)
	}

	report, err := e.Performance(ctx, alice.ID, Money{})
	if err != nil {
		t.Fatal(err)
	}
	// 96,666,666.67 units at 1.2: value 116,000,000.004
	net := report.Value.Sub(report.Invested)
	if !report.NetProfit.Equal(net) {
		t.Errorf("net profit = %s, want %s", report.NetProfit.Decimal(), net.Decimal())
	}
	// gross profit adds the certified fee back on top of the net figure
	if !report.GrossProfit.Equal(net.Add(M(4_000_000, "VND"))) {
		t.Errorf("gross profit = %s, want net + 4000000", report.GrossProfit.Decimal())
	}
	if report.GrossReturn <= report.NetReturn {
		t.Errorf("gross return %s should exceed net return %s", report.GrossReturn, report.NetReturn)
	}
}
