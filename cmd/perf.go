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

type perfCmd struct {
	investor int64
	nav      string
}

func (*perfCmd) Name() string     { return "perf" }
func (*perfCmd) Synopsis() string { return "show an investor's lifetime performance" }
func (*perfCmd) Usage() string {
	return `fundadm perf -i <investor> [-nav <nav>]

  Shows the investor's lifetime performance tranche by tranche, priced
  against the given NAV or, by default, the latest recorded one. Gross
  figures are measured from each tranche's original entry point, before
  performance fees.
`
}

func (c *perfCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.investor, "i", 0, "Investor id (required).")
	f.StringVar(&c.nav, "nav", "", "Fund total NAV to price against, defaults to the latest recorded.")
}

func (c *perfCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var nav fund.Money
	if c.nav != "" {
		var err error
		if nav, err = parseMoney(c.nav); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
	}
	e, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	report, err := e.Performance(ctx, c.investor, nav)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.PerformanceMarkdown(report))
	return subcommands.ExitSuccess
}

type summaryCmd struct{}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show the fund-wide summary" }
func (*summaryCmd) Usage() string {
	return `fundadm summary

  Shows the fund totals and every investor's position at the latest NAV.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	sum, err := e.Summary(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.SummaryMarkdown(sum))
	return subcommands.ExitSuccess
}
