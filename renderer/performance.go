package renderer

import (
	"bytes"
	"fmt"

	fund "github.com/lignowhere/cnfund-sub001"
	md "github.com/nao1215/markdown"
)

// PerformanceMarkdown renders an investor's lifetime performance report.
func PerformanceMarkdown(r *fund.PerformanceReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Performance of %s on %s", r.Name, r.AsOf))
	doc.PlainText(fmt.Sprintf("Holdings: %s units worth %s at %s per unit", r.Units, r.Value, r.UnitPrice))

	doc.H2("Lifetime")
	totals := md.TableSet{
		Header: []string{"Invested", "Value", "Fees Paid", "Gross Profit", "Net Profit", "Gross Return", "Net Return"},
		Rows: [][]string{{
			r.Invested.String(),
			r.Value.String(),
			r.FeesPaid.String(),
			r.GrossProfit.SignedString(),
			r.NetProfit.SignedString(),
			r.GrossReturn.SignedString(),
			r.NetReturn.SignedString(),
		}},
	}
	doc.Table(totals)

	doc.H2("Tranches")
	table := md.TableSet{
		Header: []string{"ID", "Entry", "Entry Price", "Units", "Invested", "Value", "Fees", "Net Profit", "Net Return"},
	}
	for _, t := range r.Tranches {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", t.TrancheID),
			t.EntryDate.String(),
			t.EntryPrice.String(),
			t.Units.String(),
			t.Invested.String(),
			t.Value.String(),
			t.FeesPaid.String(),
			t.NetProfit.SignedString(),
			t.NetReturn.SignedString(),
		})
	}
	doc.Table(table)

	return doc.String()
}
