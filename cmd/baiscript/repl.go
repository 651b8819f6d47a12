package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/samjoash9/baiscript/pkg/pipeline"
)

// replCmd registers `repl` as a subcommand of the baiscript binary: a
// bufio.Scanner loop over stdin, one pipeline.Compile per line, sharing a
// single pipeline.Run so declarations made on one line stay visible on the
// next.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive BaiScript session" }
func (*replCmd) Usage() string {
	return `repl:
  Evaluate BaiScript statements interactively, one line at a time.
`
}
func (*replCmd) SetFlags(*flag.FlagSet) {}

func (*replCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	repl(os.Stdin, os.Stdout)
	return subcommands.ExitSuccess
}

func repl(in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "Welcome to BaiScript! Type 'exit' to quit.")

	scanner := bufio.NewScanner(in)
	run := pipeline.NewRun()

	for {
		fmt.Fprint(out, ">>> ")
		if !scanner.Scan() {
			return
		}

		line := scanner.Text()
		if line == "exit" {
			return
		}
		if line == "" {
			continue
		}

		res, err := run.Compile(line)
		if err != nil {
			fmt.Fprintf(out, "ERROR: %s\n", err)
			continue
		}
		if res.ParseFailed {
			fmt.Fprintln(out, "ERROR: could not parse that line")
			continue
		}
		fmt.Fprint(out, res.PrintOutput)
	}
}
