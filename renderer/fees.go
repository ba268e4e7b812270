package renderer

import (
	"bytes"
	"fmt"

	fund "github.com/lignowhere/cnfund-sub001"
	md "github.com/nao1215/markdown"
)

// FeePreviewMarkdown renders a performance-fee preview, one row per assessed
// tranche, with the confirmation token needed to apply it.
func FeePreviewMarkdown(fp *fund.FeePreview) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Performance Fees %s", fp.Period))
	doc.PlainText(fmt.Sprintf("Assessed on %s at unit price %s", fp.CalculatedOn, fp.UnitPrice))

	table := md.TableSet{
		Header: []string{"Investor", "Tranche", "Entry", "Units", "Basis", "Value", "Excess", "Return", "Fee", "Units Due"},
	}
	for _, line := range fp.Lines {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", line.InvestorID),
			fmt.Sprintf("%d", line.TrancheID),
			line.EntryDate.String(),
			line.Units.String(),
			line.Basis.String(),
			line.Value.String(),
			line.Excess.String(),
			line.Return.SignedString(),
			line.Fee.String(),
			line.UnitsTransferred.String(),
		})
	}
	doc.Table(table)

	doc.PlainText(fmt.Sprintf("Total fee: %s (%s units to the fund manager)", fp.TotalFee, fp.TotalUnits))
	if fp.Confirm != "" {
		doc.PlainText(fmt.Sprintf("Confirmation token: `%s`", fp.Confirm))
	}

	return doc.String()
}
