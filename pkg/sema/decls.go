package sema

import (
	"strconv"
	"strings"

	"github.com/samjoash9/baiscript/pkg/ast"
)

func (a *Analyzer) analyzeStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Declaration:
		a.handleDeclaration(s)
	case *ast.Assignment:
		a.handleAssignment(s)
	case *ast.Printing:
		a.handlePrinting(s)
	case *ast.ExprStatement:
		a.evalExpr(s.Expr)
	default:
		// Unrecognized statement kinds are a parser contract violation, not a
		// semantic one; nothing further to check here.
	}
}

// handleDeclaration processes an ENTEGER/CHAROT/KUAN declaration statement.
// Each declarator is checked for redeclaration independently; a redeclared
// name leaves the existing entry untouched.
func (a *Analyzer) handleDeclaration(decl *ast.Declaration) {
	baseType := typeFromDatatype(decl.Type)

	// A name counts as already declared if this run knows it or the (possibly
	// pre-seeded) symbol table already holds an entry for it.
	redeclared := func(name string) bool {
		if _, ok := a.known[name]; ok {
			return true
		}
		_, ok := a.Symbols.Find(name)
		return ok
	}

	for _, d := range decl.Decls {
		switch dd := d.(type) {
		case ast.PlainDeclarator:
			if redeclared(dd.Name) {
				a.errorf(dd.Line, "Redeclaration of variable '%s'", dd.Name)
				continue
			}
			if decl.Type == ast.Kuan {
				// KUAN with no initializer stays UNKNOWN/uninitialized until
				// its first assignment infers a concrete type.
				a.declareVar(dd.Name, TypeUnknown, false, dd.Line)
				continue
			}
			kv := a.declareVar(dd.Name, baseType, true, dd.Line)
			kv.Constant = true
			kv.IntValue = 0
			a.syncSymbol(dd.Name, kv)

		case ast.InitDeclarator:
			if redeclared(dd.Name) {
				// A redeclared declarator's initializer is not evaluated;
				// the statement contributes exactly one diagnostic.
				a.errorf(dd.Line, "Redeclaration of variable '%s'", dd.Name)
				continue
			}
			kv := a.declareVar(dd.Name, baseType, false, dd.Line)
			val := a.evalExpr(dd.Init)

			kv.Initialized = true
			if kv.Type == TypeUnknown && val.Type != TypeUnknown {
				kv.Type = val.Type // KUAN infers its type from the initializer
			}
			if val.IsConstant {
				kv.Constant = true
				kv.IntValue = val.IntValue
			}
			a.syncSymbol(dd.Name, kv)
		}
	}
}

// handleAssignment processes a top-level assignment statement. LHS must
// already be declared; assignment to an undeclared name is an error.
func (a *Analyzer) handleAssignment(assign *ast.Assignment) {
	if assign.Lhs == "" {
		a.errorf(assign.Line, "Invalid LHS in assignment")
		return
	}
	if _, known := a.known[assign.Lhs]; !known {
		if _, inTable := a.Symbols.Find(assign.Lhs); !inTable {
			a.errorf(assign.Line, "Assignment to undeclared variable '%s'", assign.Lhs)
			a.evalExpr(assign.Rhs) // still evaluate RHS to surface nested errors
			return
		}
	}
	a.assign(assign.Lhs, assign.Op, assign.Rhs, assign.Line)
}

// handlePrinting evaluates every item of a PRENT statement and appends its
// textual representation to the output buffer: CHAR emits its codepoint as a
// rune, INT/UNKNOWN emits the decimal value, and a bare string literal emits
// its unquoted contents. Items are concatenated with no separator; the whole
// statement is followed by exactly one newline.
func (a *Analyzer) handlePrinting(p *ast.Printing) {
	prevInPrent := a.inPrent
	a.inPrent = true
	defer func() { a.inPrent = prevInPrent }()

	var line strings.Builder
	for _, item := range p.Items {
		if item.Expr == nil {
			line.WriteString(unquote(item.Literal))
			continue
		}
		val := a.evalExpr(item.Expr)
		switch val.Type {
		case TypeChar:
			line.WriteRune(rune(val.IntValue))
		default: // TypeInt and TypeUnknown both render as a decimal integer
			line.WriteString(strconv.FormatInt(val.IntValue, 10))
		}
	}
	line.WriteByte('\n')
	a.output.WriteString(line.String())
}

// unquote strips a string literal's surrounding double quotes. Literal already
// omits escape processing beyond what the parser performed.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
