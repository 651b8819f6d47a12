package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/teris-io/cli"

	"github.com/samjoash9/baiscript/pkg/pipeline"
)

// Output artifact filenames.
const (
	outPrint           = "output_print.txt"
	outTAC             = "output_tac.txt"
	outAssembly        = "output_assembly.txt"
	outMachine         = "output_machine.txt"
	outMachineAssembly = "output_machine_assembly.txt"
	outMachineBin      = "output_machine_bin.txt"
	outMachineHex      = "output_machine_hex.txt"
)

var downstreamOutputs = []string{outTAC, outAssembly, outMachine, outMachineAssembly, outMachineBin, outMachineHex}

var compileDescription = strings.ReplaceAll(`
The BaiScript compiler runs a source file through the full pipeline: parsing,
semantic analysis with constant folding, three-address code generation and
optimization, MIPS64-subset assembly lowering, and machine-code encoding. It
writes one output file per phase artifact, truncating each at the start of
the run.
`, "\n", " ")

// compileCLI owns the `compile` command's argument parsing and usage text;
// compileCmd below delegates both to it.
var compileCLI = cli.New(compileDescription).
	WithArg(cli.NewArg("input", `The BaiScript source file to compile (default "input.txt")`).
		AsOptional().WithType(cli.TypeString)).
	WithAction(compileHandler)

// compileCmd registers `compile` as a subcommand of the baiscript binary.
type compileCmd struct{}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "Compile a BaiScript source file" }
func (*compileCmd) Usage() string {
	return `compile [input.bai]:
  Compile a BaiScript source file and write its output artifacts to the current directory.
`
}
func (*compileCmd) SetFlags(*flag.FlagSet) {}

func (*compileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	argv := append([]string{"compile"}, f.Args()...)
	if code := compileCLI.Run(argv, os.Stdout); code != 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func compileHandler(args []string, _ map[string]string) int {
	inputPath := "input.txt"
	if len(args) > 0 && args[0] != "" {
		inputPath = args[0]
	}

	src, err := os.ReadFile(inputPath)
	if err != nil {
		explain(outPrint, fmt.Sprintf("Unable to open input file: %s", err))
		explainAll(downstreamOutputs, "Skipped: input file could not be opened.")
		return 1
	}

	res, err := pipeline.Compile(string(src))
	if err != nil {
		explain(outPrint, fmt.Sprintf("Internal pipeline error: %s", err))
		explainAll(downstreamOutputs, "Skipped: an internal pipeline error aborted the run.")
		return 1
	}

	writeFile(outPrint, res.PrintOutput)

	if res.ParseFailed {
		explainAll(downstreamOutputs, "Skipped: the source file could not be parsed.")
		return res.ExitCode
	}

	if res.ErrorCount > 0 {
		explainAll(downstreamOutputs, "Skipped: semantic analysis reported errors.")
		return res.ExitCode
	}

	writeFile(outTAC, renderTACListing(res.TACRaw.String(), res.TACOptimized.String()))
	writeFile(outAssembly, res.Assembly.String())
	writeFile(outMachine, res.Machine.String())

	var assemblyCol, binCol, hexCol strings.Builder
	for _, row := range res.Machine {
		assemblyCol.WriteString(row.Source + "\n")
		binCol.WriteString(row.Binary + "\n")
		hexCol.WriteString(row.Hex + "\n")
	}
	writeFile(outMachineAssembly, assemblyCol.String())
	writeFile(outMachineBin, binCol.String())
	writeFile(outMachineHex, hexCol.String())

	return res.ExitCode
}

func renderTACListing(raw, optimized string) string {
	var b strings.Builder
	b.WriteString("=== UNOPTIMIZED TAC ===\n")
	b.WriteString(raw)
	b.WriteString("=== END UNOPTIMIZED TAC ===\n")
	b.WriteString("=== OPTIMIZED TAC ===\n")
	b.WriteString(optimized)
	b.WriteString("=== END OPTIMIZED TAC ===\n")
	return b.String()
}

func writeFile(name, content string) {
	os.WriteFile(name, []byte(content), 0644)
}

func explain(name, message string) {
	writeFile(name, message+"\n")
}

func explainAll(names []string, message string) {
	for _, name := range names {
		explain(name, message)
	}
}
