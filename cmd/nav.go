package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/lignowhere/cnfund-sub001/renderer"
)

type navCmd struct {
	nav  string
	date string
	memo string
}

func (*navCmd) Name() string     { return "nav" }
func (*navCmd) Synopsis() string { return "record the fund's total NAV" }
func (*navCmd) Usage() string {
	return `fundadm nav -t <total_nav> [-d <date>] [-m <memo>]

  Records the fund's total NAV as of a date. No units move; the update
  reprices every unit and drives subsequent deposits, withdrawals and fee
  assessments.
`
}

func (c *navCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.nav, "t", "", "Fund total NAV (required).")
	f.StringVar(&c.date, "d", "", "Valuation date, defaults to today.")
	f.StringVar(&c.memo, "m", "", "Free-form memo.")
}

func (c *navCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	tx, err := e.UpdateNAV(ctx, nav, on, c.memo)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println(renderer.Transaction(tx))
	return subcommands.ExitSuccess
}
