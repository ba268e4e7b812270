package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/lignowhere/cnfund-sub001/renderer"
)

type feesPreviewCmd struct {
	period string
	nav    string
	date   string
}

func (*feesPreviewCmd) Name() string     { return "fees-preview" }
func (*feesPreviewCmd) Synopsis() string { return "preview the performance fees for a period" }
func (*feesPreviewCmd) Usage() string {
	return `fundadm fees-preview -p <period> -nav <nav> [-d <date>]

  Computes the performance-fee assessment for a period without persisting
  anything. Each open tranche is charged only on profit above its high-water
  mark. The printed confirmation token is required by fees-apply.

Usage Examples:
$ fundadm fees-preview -p 2025 -nav 120_000_000 -d 2025-12-31
`
}

func (c *feesPreviewCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "", "Period label, e.g. 2025 (required).")
	f.StringVar(&c.nav, "nav", "", "Fund total NAV at assessment (required).")
	f.StringVar(&c.date, "d", "", "Assessment date, defaults to today.")
}

func (c *feesPreviewCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	fp, err := e.PreviewFees(ctx, c.period, on, nav)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.FeePreviewMarkdown(fp))
	return subcommands.ExitSuccess
}

type feesApplyCmd struct {
	period  string
	nav     string
	date    string
	confirm string
}

func (*feesApplyCmd) Name() string     { return "fees-apply" }
func (*feesApplyCmd) Synopsis() string { return "certify a previewed fee period" }
func (*feesApplyCmd) Usage() string {
	return `fundadm fees-apply -p <period> -nav <nav> -confirm <token> [-d <date>]

  Applies a previously previewed fee assessment. The assessment is recomputed
  and compared to the confirmation token: if the ledger changed since the
  preview the apply is refused and must be previewed again. On success the
  fee units move to the fund manager and every charged tranche's high-water
  mark advances, atomically.
`
}

func (c *feesApplyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "", "Period label (required).")
	f.StringVar(&c.nav, "nav", "", "Fund total NAV at assessment (required).")
	f.StringVar(&c.date, "d", "", "Assessment date, defaults to today.")
	f.StringVar(&c.confirm, "confirm", "", "Confirmation token from fees-preview (required).")
}

func (c *feesApplyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	fp, err := e.ApplyFees(ctx, c.period, on, nav, c.confirm)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Applied period %s: %s in fees, %s units to the fund manager\n", fp.Period, fp.TotalFee, fp.TotalUnits)
	return subcommands.ExitSuccess
}

type feesSimulateCmd struct {
	nav  string
	date string
}

func (*feesSimulateCmd) Name() string     { return "simulate" }
func (*feesSimulateCmd) Synopsis() string { return "simulate fees against a hypothetical NAV" }
func (*feesSimulateCmd) Usage() string {
	return `fundadm simulate -nav <nav> [-d <date>]

  Runs a fee assessment against a hypothetical NAV. Nothing is persisted and
  the result carries no confirmation token.
`
}

func (c *feesSimulateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.nav, "nav", "", "Hypothetical fund total NAV (required).")
	f.StringVar(&c.date, "d", "", "Assessment date, defaults to today.")
}

func (c *feesSimulateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	fp, err := e.SimulateFees(ctx, on, nav)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.FeePreviewMarkdown(fp))
	return subcommands.ExitSuccess
}
