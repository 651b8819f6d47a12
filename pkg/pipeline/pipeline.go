// Package pipeline threads one BaiScript source file through every
// compilation phase — parse, semantic analysis, TAC generation and
// optimization, assembly lowering, machine-code encoding — gating each phase
// on the error count of the one before it.
//
// Per-run state — symbol table and analyzer — lives on a Run value rather than
// package globals, and each Compile call creates its own TAC, assembly and
// machine-code generators, so a REPL or batch driver can run many
// compilations one after another in one process with nothing to reset
// between them.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/samjoash9/baiscript/pkg/asm"
	"github.com/samjoash9/baiscript/pkg/mcode"
	"github.com/samjoash9/baiscript/pkg/parser"
	"github.com/samjoash9/baiscript/pkg/sema"
	"github.com/samjoash9/baiscript/pkg/symtab"
	"github.com/samjoash9/baiscript/pkg/tac"
)

const successBanner = "=== COMPILATION SUCCESSFULL ==="

// Result is every artifact one Compile call can produce. A gated-off phase
// leaves its fields at their zero value; PrintOutput always explains why.
type Result struct {
	ParseFailed bool
	LexError    bool

	Diagnostics  []sema.Diagnostic
	ErrorCount   int
	WarningCount int

	PrintOutput string

	TACRaw       tac.Listing
	TACOptimized tac.Listing
	Assembly     asm.Listing
	Machine      mcode.Listing

	ExitCode int
}

// Run owns the per-compilation state: the symbol table threaded through
// semantic analysis and the symbol-to-`.data`-label pass in pkg/asm.
type Run struct {
	Symbols  *symtab.Table
	Analyzer *sema.Analyzer
}

// NewRun returns a Run with a fresh symbol table and analyzer.
func NewRun() *Run {
	symbols := symtab.New()
	return &Run{Symbols: symbols, Analyzer: sema.New(symbols)}
}

// Compile allocates a fresh Run and compiles src through every phase. Each
// call gets its own symbol table and analyzer; the parser's combinator tree
// is a package-level value shared by every call, so calls are not safe to run
// concurrently.
func Compile(src string) (*Result, error) {
	return NewRun().Compile(src)
}

// Compile runs src through Parse → Semantic → TAC → Optimize → Assembly →
// Machine, stopping as soon as a phase reports an error, exactly per the
// control-flow table: Parse failure stops immediately; semantic errors skip
// TAC/Optimize/Assembly/Machine but still populate PrintOutput and ExitCode.
func (r *Run) Compile(src string) (*Result, error) {
	p := parser.NewParser(strings.NewReader(src))
	prog, parseFailed, lexErr := p.Parse()

	res := &Result{ParseFailed: parseFailed, LexError: lexErr}
	if parseFailed {
		res.PrintOutput = "[SEM] No syntax tree to analyze\n"
		res.ExitCode = 1
		return res, nil
	}

	errCount := r.Analyzer.Analyze(prog)
	res.Diagnostics = r.Analyzer.Diagnostics()
	res.ErrorCount = r.Analyzer.ErrorCount()
	res.WarningCount = r.Analyzer.WarningCount()
	res.PrintOutput = renderPrintOutput(r.Analyzer)

	if errCount > 0 {
		res.ExitCode = 1
		return res, nil
	}

	tacGen := tac.New()
	res.TACRaw = tacGen.Generate(prog)
	res.TACOptimized = tac.Optimize(res.TACRaw)

	asmGen := asm.New(r.Symbols)
	res.Assembly = asmGen.Generate(res.TACOptimized)

	encoder := mcode.New()
	machine, err := encoder.Encode(res.Assembly)
	if err != nil {
		return nil, fmt.Errorf("encoding assembly: %w", err)
	}
	res.Machine = machine

	res.ExitCode = 0
	return res, nil
}

// renderPrintOutput builds output_print.txt's contents for a completed
// analysis: PRENT text plus the success banner and warnings on success, or
// the `[SEM ERROR]` lines on failure, each followed by a `[SEM]` summary
// line.
func renderPrintOutput(a *sema.Analyzer) string {
	var b strings.Builder

	if a.ErrorCount() == 0 {
		b.WriteString(a.Output())
		b.WriteString(successBanner)
		b.WriteString("\n")
		for _, d := range a.Diagnostics() {
			if d.Severity == sema.SevWarning {
				b.WriteString(d.String())
				b.WriteString("\n")
			}
		}
		fmt.Fprintf(&b, "[SEM] Analysis completed: no semantic errors (warnings: %d)\n", a.WarningCount())
		return b.String()
	}

	for _, d := range a.Diagnostics() {
		if d.Severity == sema.SevError {
			b.WriteString(d.String())
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "[SEM] Analysis completed: %d semantic error(s), %d warning(s)\n", a.ErrorCount(), a.WarningCount())
	return b.String()
}
