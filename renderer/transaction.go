// Package renderer turns fund reports into markdown documents.
package renderer

import (
	"bytes"
	"fmt"

	fund "github.com/lignowhere/cnfund-sub001"
	md "github.com/nao1215/markdown"
)

// Transaction renders a transaction to a one-line string.
func Transaction(tx fund.Transaction) string {
	switch v := tx.(type) {
	case fund.Deposit:
		return fmt.Sprintf("Deposited %s for investor %d (%s units at %s)", v.Amount, v.InvestorID, v.UnitsDelta, v.UnitPrice)
	case fund.Withdraw:
		return fmt.Sprintf("Withdrew %s for investor %d (%s units at %s)", v.Amount, v.InvestorID, v.UnitsDelta, v.UnitPrice)
	case fund.UpdateNAV:
		return fmt.Sprintf("Updated total NAV to %s", v.NAV)
	default:
		return string(tx.What())
	}
}

// TransactionsMarkdown renders the transaction log as a markdown table.
func TransactionsMarkdown(txs []fund.Transaction) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Transactions")
	table := md.TableSet{
		Header: []string{"ID", "Date", "Kind", "Detail", "NAV After"},
	}
	for _, t := range txs {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", t.TxID()),
			t.When().String(),
			string(t.What()),
			Transaction(t),
			t.NAVAfter().String(),
		})
	}
	doc.Table(table)

	return doc.String()
}
