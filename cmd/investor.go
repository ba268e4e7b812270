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

type investorAddCmd struct {
	name   string
	email  string
	phone  string
	joined string
}

func (*investorAddCmd) Name() string     { return "investor-add" }
func (*investorAddCmd) Synopsis() string { return "register a new investor" }
func (*investorAddCmd) Usage() string {
	return `fundadm investor-add -name <name> [-email <email>] [-phone <phone>] [-joined <date>]

  Registers a new investor. Names are unique (case-insensitive). The reserved
  Fund Manager account is created automatically with the first investor.

Usage Examples:
$ fundadm investor-add -name "Alice Nguyen" -email alice@example.com
`
}

func (c *investorAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Investor name (required).")
	f.StringVar(&c.email, "email", "", "Contact email.")
	f.StringVar(&c.phone, "phone", "", "Contact phone.")
	f.StringVar(&c.joined, "joined", "", "Join date, defaults to today.")
}

func (c *investorAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	joined, err := parseDay(c.joined)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	e, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	inv := &fund.Investor{Name: c.name, Email: c.email, Phone: c.phone, JoinedOn: joined}
	if err := e.AddInvestor(ctx, inv); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Registered investor %d: %s\n", inv.ID, inv.Name)
	return subcommands.ExitSuccess
}

type investorsCmd struct{}

func (*investorsCmd) Name() string     { return "investors" }
func (*investorsCmd) Synopsis() string { return "list registered investors" }
func (*investorsCmd) Usage() string {
	return `fundadm investors

  Lists the registered investors, excluding the fund manager account.
`
}

func (c *investorsCmd) SetFlags(f *flag.FlagSet) {}

func (c *investorsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	investors, err := e.Investors(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.InvestorsMarkdown(investors))
	return subcommands.ExitSuccess
}

type investorRmCmd struct {
	id int64
}

func (*investorRmCmd) Name() string     { return "investor-rm" }
func (*investorRmCmd) Synopsis() string { return "remove an investor without transaction history" }
func (*investorRmCmd) Usage() string {
	return `fundadm investor-rm -id <id>

  Removes an investor. Refused when the investor has any transaction history
  or is the fund manager account.
`
}

func (c *investorRmCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Investor id (required).")
}

func (c *investorRmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := e.RemoveInvestor(ctx, c.id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Removed investor %d\n", c.id)
	return subcommands.ExitSuccess
}
