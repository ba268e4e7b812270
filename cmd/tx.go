package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	fund "github.com/lignowhere/cnfund-sub001"
	"github.com/lignowhere/cnfund-sub001/renderer"
)

type txCmd struct {
	start string
	end   string
	head  int
	tail  int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list the transaction log" }
func (*txCmd) Usage() string {
	return `fundadm tx [-s <start_date>] [-d <end_date>] [-head <n>] [-tail <n>]

  Lists the transaction log in application order, with optional date range
  and head/tail limits.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "Start date of the range.")
	f.StringVar(&c.end, "d", "", "End date of the range.")
	f.IntVar(&c.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&c.tail, "tail", 0, "Show only the last N transactions.")
}

func (c *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.head > 0 && c.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}
	e, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	txs, err := e.Transactions(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.start != "" || c.end != "" {
		var from, to fund.Date
		if c.start != "" {
			if from, err = fund.ParseDate(c.start); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return subcommands.ExitUsageError
			}
		}
		to = fund.Today()
		if c.end != "" {
			if to, err = fund.ParseDate(c.end); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return subcommands.ExitUsageError
			}
		}
		var kept []fund.Transaction
		for _, t := range txs {
			if !from.IsZero() && t.When().Before(from) {
				continue
			}
			if t.When().After(to) {
				continue
			}
			kept = append(kept, t)
		}
		txs = kept
	}

	if c.head > 0 && len(txs) > c.head {
		txs = txs[:c.head]
	}
	if c.tail > 0 && len(txs) > c.tail {
		txs = txs[len(txs)-c.tail:]
	}

	printMarkdown(renderer.TransactionsMarkdown(txs))
	return subcommands.ExitSuccess
}

type deleteCmd struct {
	id      int64
	cascade bool
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a transaction from the log" }
func (*deleteCmd) Usage() string {
	return `fundadm delete -id <transaction_id> [-cascade]

  Deletes a transaction. Deleting anything but the most recent transaction
  rewrites history for every later record and requires -cascade. The
  remaining log is replayed in full before the deletion is committed; a
  deletion that would contradict an applied fee period is refused.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Transaction id (required).")
	f.BoolVar(&c.cascade, "cascade", false, "Acknowledge the replay of every later transaction.")
}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := e.DeleteTransaction(ctx, c.id, c.cascade); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Deleted transaction %d\n", c.id)
	return subcommands.ExitSuccess
}

type undoCmd struct {
	id int64
}

func (*undoCmd) Name() string     { return "undo" }
func (*undoCmd) Synopsis() string { return "record the inverse of a past transaction" }
func (*undoCmd) Usage() string {
	return `fundadm undo [-id <transaction_id>]

  Records the inverse cash flow of a transaction: a withdrawal undoes a
  deposit and vice versa, priced at the current unit price. Defaults to the
  most recent transaction.
`
}

func (c *undoCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Transaction id, defaults to the most recent.")
}

func (c *undoCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	tx, err := e.UndoTransaction(ctx, c.id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded inverse: %s\n", renderer.Transaction(tx))
	return subcommands.ExitSuccess
}
