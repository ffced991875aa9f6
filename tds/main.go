// Command tds synchronizes a brokerage account history into a local store.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/tdasync/cmd"
	"github.com/google/subcommands"
)

func main() {
	cmd.Completion().Complete("tds")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
