package fund

// DefaultUnitPrecision is the number of decimal places units are rounded to
// when cash is converted into units.
const DefaultUnitPrecision int32 = 2

// BootstrapPrice returns the unit price used while the fund holds no units:
// one major currency unit buys exactly one fund unit.
func BootstrapPrice(currency string) Money { return M(1, currency) }

// UnitPrice returns the price per unit given the fund's total NAV just before
// a cash flow and the units outstanding at that moment.
//
// With zero units outstanding the fund is empty (or fully redeemed) and the
// price falls back to the bootstrap price, so the first deposit mints one
// unit per major currency unit.
func UnitPrice(navBefore Money, outstanding Quantity) Money {
	if !outstanding.IsPositive() {
		return BootstrapPrice(navBefore.Currency())
	}
	return navBefore.Div(outstanding)
}

// UnitsFor converts a cash amount into fund units at the given price, rounded
// to precision decimal places. The rounding residue stays in the fund and is
// shared by all unit holders.
func UnitsFor(amount, price Money, precision int32) Quantity {
	return amount.DivPrice(price).Round(precision)
}
