package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/lignowhere/cnfund-sub001/cmd"
	"github.com/posener/complete/v2"
)

func main() {
	// shell completion, a no-op outside of a completion request
	completion := &complete.Command{Sub: map[string]*complete.Command{}}
	for _, c := range cmd.Commands {
		completion.Sub[c.Name()] = &complete.Command{}
	}
	completion.Complete("fundadm")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
