package renderer

import (
	"bytes"
	"fmt"

	fund "github.com/lignowhere/cnfund-sub001"
	md "github.com/nao1215/markdown"
)

// SummaryMarkdown renders the fund-wide summary.
func SummaryMarkdown(s *fund.FundSummary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Fund Summary on %s", s.AsOf))
	doc.PlainText(fmt.Sprintf("Total NAV: %s across %s units (%s per unit)", s.NAV, s.Units, s.UnitPrice))
	doc.PlainText(fmt.Sprintf("Capital invested: %s, performance fees collected: %s", s.TotalInvested, s.TotalFees))

	doc.H2("Positions")
	table := md.TableSet{
		Header: []string{"Investor", "Name", "Units", "Value", "Share"},
	}
	for _, p := range s.Positions {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", p.InvestorID),
			p.Name,
			p.Units.String(),
			p.Value.String(),
			p.Share.String(),
		})
	}
	doc.Table(table)

	return doc.String()
}

// InvestorsMarkdown renders the investor registry as a markdown table.
func InvestorsMarkdown(investors []*fund.Investor) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Investors")
	table := md.TableSet{
		Header: []string{"ID", "Name", "Email", "Phone", "Joined"},
	}
	for _, inv := range investors {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", inv.ID),
			inv.Name,
			inv.Email,
			inv.Phone,
			inv.JoinedOn.String(),
		})
	}
	doc.Table(table)

	return doc.String()
}
