package fund

import "fmt"

// Percent is a percentage expressed in points: Percent(50) renders as 50.00%.
type Percent float64

// Equal compares with a small tolerance, floats do not round-trip exactly.
func (p Percent) Equal(q Percent) bool {
	const tolerance = 0.0001
	d := float64(p - q)
	if d < 0 {
		d = -d
	}
	return d < tolerance
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}

// SignedString renders with an explicit sign, an exact zero as a dash.
func (p Percent) SignedString() string {
	s := fmt.Sprintf("%+.2f%%", float64(p))
	if s == "+0.00%" {
		return "-"
	}
	return s
}
