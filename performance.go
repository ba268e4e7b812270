package fund

// TranchePerformance is the lifetime performance of a single capital lot.
// It is measured against the lot's original entry point, so fee assessments
// that move the fee basis do not hide earlier gains.
type TranchePerformance struct {
	TrancheID   int64
	EntryDate   Date  // original entry date of the lot
	EntryPrice  Money // price per unit at original entry
	Units       Quantity
	Invested    Money
	Value       Money
	FeesPaid    Money
	GrossProfit Money // profit before performance fees
	NetProfit   Money // profit after performance fees
	GrossReturn Percent
	NetReturn   Percent
}

// PerformanceReport is the lifetime performance of one investor across all
// their tranches, open and closed, at the latest recorded price.
type PerformanceReport struct {
	InvestorID  int64
	Name        string
	AsOf        Date
	UnitPrice   Money
	Units       Quantity
	Invested    Money
	Value       Money
	FeesPaid    Money
	GrossProfit Money
	NetProfit   Money
	GrossReturn Percent
	NetReturn   Percent
	Tranches    []TranchePerformance
}

// returnOn expresses profit as a percentage of the invested capital.
func returnOn(profit, invested Money) Percent {
	if !invested.IsPositive() {
		return Percent(0)
	}
	r, _ := profit.Decimal().Div(invested.Decimal()).Float64()
	return Percent(100 * r)
}

// Performance computes the investor's lifetime performance report. Holdings
// are priced against nav when it is positive, against the latest recorded
// NAV otherwise. Closed tranches contribute their fee history but no value.
func (l *Ledger) Performance(investorID int64, asOf Date, nav Money) *PerformanceReport {
	price := l.CurrentPrice()
	if nav.IsPositive() {
		price = UnitPrice(nav, l.units)
	}
	report := &PerformanceReport{
		InvestorID:  investorID,
		AsOf:        asOf,
		UnitPrice:   price,
		Units:       Q(0),
		Invested:    M(0, l.currency),
		Value:       M(0, l.currency),
		FeesPaid:    M(0, l.currency),
		GrossProfit: M(0, l.currency),
		NetProfit:   M(0, l.currency),
	}
	if inv := l.Investor(investorID); inv != nil {
		report.Name = inv.Name
	}

	for _, t := range l.Tranches(investorID) {
		value := t.Value(price)
		net := value.Sub(t.Invested)
		gross := net.Add(t.FeesPaid)
		tp := TranchePerformance{
			TrancheID:   t.ID,
			EntryDate:   t.OriginalEntryDate,
			EntryPrice:  t.OriginalEntryNAV,
			Units:       t.Units,
			Invested:    t.Invested,
			Value:       value,
			FeesPaid:    t.FeesPaid,
			GrossProfit: gross,
			NetProfit:   net,
			GrossReturn: returnOn(gross, t.Invested),
			NetReturn:   returnOn(net, t.Invested),
		}
		report.Tranches = append(report.Tranches, tp)

		report.Units = report.Units.Add(t.Units)
		report.Invested = report.Invested.Add(t.Invested)
		report.Value = report.Value.Add(value)
		report.FeesPaid = report.FeesPaid.Add(t.FeesPaid)
	}

	report.NetProfit = report.Value.Sub(report.Invested)
	report.GrossProfit = report.NetProfit.Add(report.FeesPaid)
	report.GrossReturn = returnOn(report.GrossProfit, report.Invested)
	report.NetReturn = returnOn(report.NetProfit, report.Invested)
	return report
}
