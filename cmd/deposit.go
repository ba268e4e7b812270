package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/lignowhere/cnfund-sub001/renderer"
)

type depositCmd struct {
	investor int64
	amount   string
	nav      string
	date     string
	memo     string
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "record a cash contribution" }
func (*depositCmd) Usage() string {
	return `fundadm deposit -i <investor> -a <amount> -nav <nav_before> [-d <date>] [-m <memo>]

  Records a deposit. The amount is converted into fund units at the price
  implied by the NAV just before the cash lands, and opens a new tranche.
  On an empty fund the bootstrap price of 1 per unit applies.

Usage Examples:
$ fundadm deposit -i 2 -a 100_000_000 -nav 0
`
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.investor, "i", 0, "Investor id (required).")
	f.StringVar(&c.amount, "a", "", "Cash amount (required).")
	f.StringVar(&c.nav, "nav", "", "Fund total NAV just before the deposit (required).")
	f.StringVar(&c.date, "d", "", "Transaction date, defaults to today.")
	f.StringVar(&c.memo, "m", "", "Free-form memo.")
}

func (c *depositCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := parseMoney(c.amount)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	nav, err := parseMoney(c.nav)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	on, err := parseDay(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	e, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	tx, err := e.Deposit(ctx, c.investor, amount, nav, on, c.memo)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println(renderer.Transaction(tx))
	return subcommands.ExitSuccess
}
