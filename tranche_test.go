package fund

import "testing"

func TestTrancheDrain(t *testing.T) {
	tr := newTranche(2, MustParseDate("2025-01-15"), M(1, "VND"), Q(1000), M(1000, "VND"))

	taken := tr.drain(Q(250))
	if !taken.Equal(Q(250)) {
		t.Fatalf("drain(250) took %s, want 250", taken)
	}
	if !tr.Units.Equal(Q(750)) {
		t.Errorf("units after drain = %s, want 750", tr.Units)
	}
	// invested capital shrinks in proportion, performance stays in the lot
	if !tr.Invested.Equal(M(750, "VND")) {
		t.Errorf("invested after drain = %s, want 750", tr.Invested.Decimal())
	}

	taken = tr.drain(Q(2000))
	if !taken.Equal(Q(750)) {
		t.Fatalf("drain(2000) took %s, want the remaining 750", taken)
	}
	if tr.Open() {
		t.Errorf("tranche should be closed after full drain")
	}
	if !tr.Invested.IsZero() {
		t.Errorf("invested after full drain = %s, want 0", tr.Invested.Decimal())
	}
}

func TestSortTranches(t *testing.T) {
	a := &Tranche{ID: 1, EntryDate: MustParseDate("2025-01-01")}
	b := &Tranche{ID: 2, EntryDate: MustParseDate("2025-03-01")}
	c := &Tranche{ID: 3, EntryDate: MustParseDate("2025-03-01")}

	tests := []struct {
		name   string
		policy SelectionPolicy
		want   []int64
	}{
		{"fifo oldest first", FIFO, []int64{1, 2, 3}},
		{"lifo newest first", LIFO, []int64{3, 2, 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tranches := []*Tranche{b, c, a}
			sortTranches(tranches, tc.policy)
			for i, id := range tc.want {
				if tranches[i].ID != id {
					t.Errorf("position %d: got tranche %d, want %d", i, tranches[i].ID, id)
				}
			}
		})
	}
}

func TestFeeBasis(t *testing.T) {
	tr := newTranche(2, MustParseDate("2025-01-15"), M(1, "VND"), Q(100), M(100, "VND"))
	// fresh tranche: basis is the invested capital
	if !tr.feeBasis().Equal(M(100, "VND")) {
		t.Errorf("fee basis = %s, want 100", tr.feeBasis().Decimal())
	}
	// after a certified assessment at 1.5 the high-water value dominates
	tr.HighWaterMark = M(1.5, "VND")
	if !tr.feeBasis().Equal(M(150, "VND")) {
		t.Errorf("fee basis = %s, want 150", tr.feeBasis().Decimal())
	}
}

func TestParseSelectionPolicy(t *testing.T) {
	if p, err := ParseSelectionPolicy("lifo"); err != nil || p != LIFO {
		t.Errorf("ParseSelectionPolicy(lifo) = %v, %v", p, err)
	}
	if _, err := ParseSelectionPolicy("random"); err == nil {
		t.Errorf("ParseSelectionPolicy(random) should fail")
	}
}
