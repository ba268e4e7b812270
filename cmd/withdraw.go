package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/lignowhere/cnfund-sub001/renderer"
)

type withdrawCmd struct {
	investor int64
	amount   string
	nav      string
	date     string
	memo     string
}

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "record a cash redemption" }
func (*withdrawCmd) Usage() string {
	return `fundadm withdraw -i <investor> -a <amount> -nav <nav_before> [-d <date>] [-m <memo>]

  Records a withdrawal. Units are removed from the investor's tranches in
  policy order (oldest first by default). A request exceeding the investor's
  holdings is refused whole; nothing is debited.
`
}

func (c *withdrawCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.investor, "i", 0, "Investor id (required).")
	f.StringVar(&c.amount, "a", "", "Cash amount (required).")
	f.StringVar(&c.nav, "nav", "", "Fund total NAV just before the withdrawal (required).")
	f.StringVar(&c.date, "d", "", "Transaction date, defaults to today.")
	f.StringVar(&c.memo, "m", "", "Free-form memo.")
}

func (c *withdrawCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	tx, err := e.Withdraw(ctx, c.investor, amount, nav, on, c.memo)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println(renderer.Transaction(tx))
	return subcommands.ExitSuccess
}
