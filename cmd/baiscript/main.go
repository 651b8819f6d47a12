// Command baiscript is the driver for the BaiScript compiler: a `compile`
// subcommand that runs the full pipeline over a source file and writes its
// output artifacts, and a `repl` subcommand for interactively evaluating
// expressions through the semantic analyzer.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&compileCmd{}, "")
	subcommands.Register(&replCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
