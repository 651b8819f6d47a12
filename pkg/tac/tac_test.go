package tac

import (
	"strings"
	"testing"

	"github.com/samjoash9/baiscript/pkg/ast"
)

func TestInstructionString(t *testing.T) {
	t.Run("copy", func(t *testing.T) {
		inst := Instruction{Result: varOperand("x"), Arg1: constOperand(5), Op: OpAssign}
		if got, want := inst.String(), "x = 5"; got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	})

	t.Run("binary", func(t *testing.T) {
		inst := Instruction{Result: tempOperand("temp0"), Arg1: varOperand("a"), Op: OpAdd, Arg2: constOperand(1)}
		if got, want := inst.String(), "temp0 = a + 1"; got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	})
}

func intLit(v string) *ast.IntLiteral   { return &ast.IntLiteral{Text: v} }
func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func TestGenerateDeclaration(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.Declaration{Type: ast.Enteger, Decls: []ast.Declarator{
			ast.InitDeclarator{Name: "a", Init: intLit("2")},
			ast.PlainDeclarator{Name: "b"},
		}},
	}}

	got := New().Generate(prog)
	want := "a = 2\n"
	if got.String() != want {
		t.Fatalf("got %q, want %q", got.String(), want)
	}
}

func TestGenerateBinaryExpression(t *testing.T) {
	// a = 2 + 3 * 4
	mul := &ast.BinaryExpr{Op: ast.Mul, Left: intLit("3"), Right: intLit("4")}
	add := &ast.BinaryExpr{Op: ast.Add, Left: intLit("2"), Right: mul}

	prog := &ast.Program{Statements: []ast.Statement{
		&ast.Assignment{Lhs: "a", Op: ast.Assign, Rhs: add},
	}}

	got := New().Generate(prog)
	want := "temp0 = 3 * 4\ntemp1 = 2 + temp0\na = temp1\n"
	if got.String() != want {
		t.Fatalf("got %q, want %q", got.String(), want)
	}
}

func TestGenerateCompoundAssignment(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.Assignment{Lhs: "a", Op: ast.AssignAdd, Rhs: intLit("5")},
	}}

	got := New().Generate(prog)
	want := "a = a + 5\n"
	if got.String() != want {
		t.Fatalf("got %q, want %q", got.String(), want)
	}
}

func TestGenerateCharLiteral(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.Declaration{Type: ast.Charot, Decls: []ast.Declarator{
			ast.InitDeclarator{Name: "c", Init: &ast.CharLiteral{Text: "'A'"}},
		}},
	}}

	got := New().Generate(prog)
	if !strings.Contains(got.String(), "c = 65") {
		t.Fatalf("expected codepoint 65 in %q", got.String())
	}
}

func TestGeneratePostfixPreservesOrder(t *testing.T) {
	// PRENT i++; must read the old value into a temp before i is incremented.
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.Printing{Items: []ast.PrintItem{
			{Expr: &ast.PostfixExpr{Op: ast.Incr, Operand: ident("i")}},
		}},
	}}

	got := New().Generate(prog)
	want := "temp0 = i\ni = i + 1\n"
	if got.String() != want {
		t.Fatalf("got %q, want %q", got.String(), want)
	}
}

func TestGenerateAssignFromPostfixDoesNotInlineAcrossMutation(t *testing.T) {
	// x = i++; the snapshot temp's source (i) is mutated in the very next
	// instruction, so Optimize must refuse to inline it — doing so would make
	// "x = temp0" observe i's post-increment value instead of its pre-increment one.
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.Assignment{Lhs: "x", Op: ast.Assign, Rhs: &ast.PostfixExpr{Op: ast.Incr, Operand: ident("i")}},
	}}

	listing := New().Generate(prog)
	want := "temp0 = i\ni = i + 1\nx = temp0\n"
	if listing.String() != want {
		t.Fatalf("got %q, want %q", listing.String(), want)
	}

	optimized := Optimize(listing)
	if optimized.String() != want {
		t.Fatalf("optimize unsoundly inlined across a mutation: got %q, want %q", optimized.String(), want)
	}
}

func TestOptimizeDropsDeadTemp(t *testing.T) {
	// PRENT i++; snapshots i into a temp nothing downstream ever reads — the
	// printed text comes from the semantic evaluator, not from TAC. The dead
	// snapshot goes away; the increment it guards does not.
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.Printing{Items: []ast.PrintItem{
			{Expr: &ast.PostfixExpr{Op: ast.Incr, Operand: ident("i")}},
		}},
	}}

	got := Optimize(New().Generate(prog))
	want := "i = i + 1\n"
	if got.String() != want {
		t.Fatalf("got %q, want %q", got.String(), want)
	}
}

func TestOptimizeCoalescesTrailingCopy(t *testing.T) {
	// a = 2 + 3 * 4; ends in `a = temp1`; the arithmetic definition is
	// retargeted at `a` and the copy dropped, leaving every temp with a consumer.
	mul := &ast.BinaryExpr{Op: ast.Mul, Left: intLit("3"), Right: intLit("4")}
	add := &ast.BinaryExpr{Op: ast.Add, Left: intLit("2"), Right: mul}
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.Assignment{Lhs: "a", Op: ast.Assign, Rhs: add},
	}}

	got := Optimize(New().Generate(prog))
	want := "temp0 = 3 * 4\na = 2 + temp0\n"
	if got.String() != want {
		t.Fatalf("got %q, want %q", got.String(), want)
	}
}

func TestOptimizeInlinesUnmutatedCopy(t *testing.T) {
	// A hand-built listing exercising the case this generator never itself
	// produces: a copy whose source survives untouched to its sole use.
	listing := Listing{
		{Result: tempOperand("temp0"), Arg1: varOperand("x"), Op: OpAssign},
		{Result: varOperand("y"), Arg1: tempOperand("temp0"), Op: OpAdd, Arg2: constOperand(1)},
	}

	got := Optimize(listing)
	want := "y = x + 1\n"
	if got.String() != want {
		t.Fatalf("got %q, want %q", got.String(), want)
	}
}

func TestOptimizeSkipsCopyUsedTwice(t *testing.T) {
	listing := Listing{
		{Result: tempOperand("temp0"), Arg1: varOperand("x"), Op: OpAssign},
		{Result: varOperand("y"), Arg1: tempOperand("temp0"), Op: OpAdd, Arg2: tempOperand("temp0")},
	}

	got := Optimize(listing)
	if got.String() != listing.String() {
		t.Fatalf("expected no change, got %q", got.String())
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	listing := Listing{
		{Result: tempOperand("temp0"), Arg1: varOperand("x"), Op: OpAssign},
		{Result: varOperand("y"), Arg1: tempOperand("temp0"), Op: OpAdd, Arg2: constOperand(1)},
	}

	once := Optimize(listing)
	twice := Optimize(once)
	if once.String() != twice.String() {
		t.Fatalf("optimize not idempotent: once=%q twice=%q", once.String(), twice.String())
	}
}
