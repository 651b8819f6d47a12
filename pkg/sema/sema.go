// Package sema implements BaiScript's semantic analyzer: declaration/use checking,
// implicit char↔int promotion, a constant-folding expression evaluator, and the
// buffered textual output of PRENT statements.
//
// All per-run state — known variables, diagnostics, the PRENT output buffer —
// lives on an Analyzer value, so a test or batch driver can run many
// independent analyses in one process without any shared state to reset.
package sema

import (
	"fmt"
	"strings"

	"github.com/samjoash9/baiscript/pkg/ast"
	"github.com/samjoash9/baiscript/pkg/symtab"
)

// Type is the semantic type of a value: unresolved, integer or character.
type Type int

const (
	TypeUnknown Type = iota
	TypeInt
	TypeChar
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeChar:
		return "CHAR"
	default:
		return "UNKNOWN"
	}
}

// Temp is the evaluator's unit of work: every evaluated (sub)expression
// produces one Temp, constant or not. Temps are cheap values, not
// heap-allocated nodes, and nothing outside the evaluator needs to look one up
// after the fact — pkg/tac allocates its own temporaries independently.
type Temp struct {
	Type       Type
	IsConstant bool
	IntValue   int64
}

// KnownVar is the analyzer's per-name scratch record: whether the name has been
// assigned a value yet, and whether any read has been observed (for the
// unused-variable warning).
type KnownVar struct {
	Name        string
	Type        Type
	Initialized bool
	Used        bool
	Constant    bool
	IntValue    int64
	DeclLine    int
}

// Severity distinguishes a semantic error (counted, suppresses PRENT output and
// downstream phases) from a warning (never suppresses anything).
type Severity int

const (
	SevError Severity = iota
	SevWarning
)

// Diagnostic is one semantic error or warning, rendered to the
// "[SEM ERROR] <message> [line:N]" / "[SEM WARNING] ..." form only at the point
// of display — never formatted this way internally.
type Diagnostic struct {
	Severity Severity
	Message  string
	Line     int
}

func (d Diagnostic) String() string {
	tag := "[SEM ERROR]"
	if d.Severity == SevWarning {
		tag = "[SEM WARNING]"
	}
	if d.Line > 0 {
		return fmt.Sprintf("%s %s [line:%d]", tag, d.Message, d.Line)
	}
	return fmt.Sprintf("%s %s", tag, d.Message)
}

// Analyzer walks a BaiScript AST once, enforcing BaiScript's declaration and
// initialization rules while folding constants and buffering PRENT output.
type Analyzer struct {
	Symbols *symtab.Table

	known map[string]*KnownVar
	order []string // declaration/first-reference order, for deterministic diagnostics

	diagnostics []Diagnostic
	errors      int
	warnings    int

	output strings.Builder

	// inPrent is set while evaluating the expression list of a PRENT statement.
	// A postfix ++/-- on an uninitialized operand is a hard error everywhere
	// except inside PRENT, where it is silently tolerated as 0 — a deliberate
	// asymmetry, not an oversight; flagged as worth a second look in DESIGN.md.
	inPrent bool
}

// New returns an Analyzer that will populate symbols as it discovers declarations
// and references. symbols may be non-empty (e.g. pre-seeded by a REPL session);
// it is never cleared by New.
func New(symbols *symtab.Table) *Analyzer {
	if symbols == nil {
		symbols = symtab.New()
	}
	return &Analyzer{Symbols: symbols, known: make(map[string]*KnownVar)}
}

// Analyze walks prog top to bottom and returns the number of semantic errors
// found (0 means the program is safe to lower to TAC). Running Analyze again
// on the same Analyzer starts a fresh run: known-vars, diagnostics and the
// PRENT output buffer are all reset, but the backing symbol table is reused,
// so a REPL-style caller can keep accumulating declarations across calls.
func (a *Analyzer) Analyze(prog *ast.Program) int {
	a.known = make(map[string]*KnownVar)
	a.order = nil
	a.diagnostics = nil
	a.errors = 0
	a.warnings = 0
	a.output.Reset()
	a.inPrent = false

	if prog == nil {
		return 0
	}

	for _, stmt := range prog.Statements {
		a.analyzeStmt(stmt)
	}

	a.checkUnusedVariables()

	return a.errors
}

// Diagnostics returns every error and warning recorded by the most recent Analyze
// call, in the order they were raised.
func (a *Analyzer) Diagnostics() []Diagnostic {
	return a.diagnostics
}

// ErrorCount and WarningCount report the tallies from the most recent Analyze call.
func (a *Analyzer) ErrorCount() int   { return a.errors }
func (a *Analyzer) WarningCount() int { return a.warnings }

// Output returns the buffered PRENT text from the most recent Analyze call, or
// "" if that run reported any error — an erroring program produces no output.
func (a *Analyzer) Output() string {
	if a.errors > 0 {
		return ""
	}
	return a.output.String()
}

func (a *Analyzer) errorf(line int, format string, args ...interface{}) {
	a.errors++
	a.diagnostics = append(a.diagnostics, Diagnostic{Severity: SevError, Message: fmt.Sprintf(format, args...), Line: line})
}

func (a *Analyzer) warnf(line int, format string, args ...interface{}) {
	a.warnings++
	a.diagnostics = append(a.diagnostics, Diagnostic{Severity: SevWarning, Message: fmt.Sprintf(format, args...), Line: line})
}

// typeFromDatatype maps a BaiScript type keyword to its semantic Type.
func typeFromDatatype(dt ast.DataType) Type {
	switch dt {
	case ast.Enteger:
		return TypeInt
	case ast.Charot:
		return TypeChar
	default:
		return TypeUnknown
	}
}

func datatypeFromType(t Type) string {
	switch t {
	case TypeInt:
		return "ENTEGER"
	case TypeChar:
		return "CHAROT"
	default:
		return "KUAN"
	}
}

// lookupOrMirror returns the KnownVar for name, creating it (and mirroring it
// from the symbol table if already present there) on first reference. line is
// the referencing token's source line, used for the undeclared diagnostic.
func (a *Analyzer) lookupOrMirror(name string, line int) *KnownVar {
	if kv, ok := a.known[name]; ok {
		return kv
	}

	if idx, ok := a.Symbols.Find(name); ok {
		entry := a.Symbols.Get(idx)
		kv := &KnownVar{Name: name, Type: datatypeToType(entry.Datatype), Initialized: entry.Initialized}
		if entry.Initialized && entry.Value != "" {
			if v, ok := parseInt(entry.Value); ok {
				kv.Constant = true
				kv.IntValue = v
			}
		}
		a.known[name] = kv
		a.order = append(a.order, name)
		return kv
	}

	a.errorf(line, "Undeclared identifier '%s'", name)
	kv := &KnownVar{Name: name, Type: TypeUnknown}
	a.known[name] = kv
	a.order = append(a.order, name)
	return kv
}

func datatypeToType(dt string) Type {
	switch dt {
	case "ENTEGER":
		return TypeInt
	case "CHAROT":
		return TypeChar
	default:
		return TypeUnknown
	}
}

// declareVar registers a freshly declared name in both the known-vars map and the
// symbol table. Callers must have already checked for redeclaration.
func (a *Analyzer) declareVar(name string, t Type, initialized bool, line int) *KnownVar {
	kv := &KnownVar{Name: name, Type: t, Initialized: initialized, DeclLine: line}
	a.known[name] = kv
	a.order = append(a.order, name)
	a.Symbols.Add(name, datatypeFromType(t), initialized, "")
	return kv
}

func (a *Analyzer) checkUnusedVariables() {
	for _, name := range a.order {
		kv := a.known[name]
		if kv != nil && !kv.Used {
			a.warnf(kv.DeclLine, "Variable '%s' declared but never used", kv.Name)
		}
	}
}
