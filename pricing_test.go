package fund

import "testing"

func TestUnitPrice(t *testing.T) {
	tests := []struct {
		name        string
		nav         Money
		outstanding Quantity
		want        Money
	}{
		{"bootstrap on empty fund", M(0, "VND"), Q(0), M(1, "VND")},
		{"bootstrap after full redemption", M(500, "VND"), Q(0), M(1, "VND")},
		{"nominal", M(120_000_000, "VND"), Q(100_000_000), M(1.2, "VND")},
		{"below par", M(80_000_000, "VND"), Q(100_000_000), M(0.8, "VND")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := UnitPrice(tc.nav, tc.outstanding)
			if !got.Equal(tc.want) {
				t.Errorf("UnitPrice() = %s, want %s", got.Decimal(), tc.want.Decimal())
			}
		})
	}
}

func TestUnitsFor(t *testing.T) {
	tests := []struct {
		name   string
		amount Money
		price  Money
		want   Quantity
	}{
		{"exact", M(100_000_000, "VND"), M(1, "VND"), Q(100_000_000)},
		{"rounded to 2 places", M(4_000_000, "VND"), M(1.2, "VND"), Q(3_333_333.33)},
		{"tiny amount", M(1, "VND"), M(3, "VND"), Q(0.33)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := UnitsFor(tc.amount, tc.price, DefaultUnitPrecision)
			if !got.Equal(tc.want) {
				t.Errorf("UnitsFor() = %s, want %s", got, tc.want)
			}
		})
	}
}
