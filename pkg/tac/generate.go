package tac

import (
	"fmt"
	"strconv"

	"github.com/samjoash9/baiscript/pkg/ast"
)

// Generator lowers an already-analyzed AST (zero semantic errors) to
// unoptimized three-address code. It performs its own independent walk of the
// tree — it does not consult pkg/sema's evaluation trace; TAC is lowered from
// the AST directly, not replayed from the analyzer.
type Generator struct {
	instrs   Listing
	nextTemp int
}

// New returns an empty Generator, ready to lower one program.
func New() *Generator {
	return &Generator{}
}

// Generate lowers prog and returns the complete, unoptimized instruction
// listing in program order.
func (g *Generator) Generate(prog *ast.Program) Listing {
	g.instrs = nil
	g.nextTemp = 0

	if prog == nil {
		return nil
	}
	for _, stmt := range prog.Statements {
		g.lowerStmt(stmt)
	}
	return g.instrs
}

func (g *Generator) newTemp() Operand {
	name := fmt.Sprintf("temp%d", g.nextTemp)
	g.nextTemp++
	return tempOperand(name)
}

func (g *Generator) emit(result, arg1 Operand, op Op, arg2 Operand) {
	g.instrs = append(g.instrs, Instruction{Result: result, Arg1: arg1, Op: op, Arg2: arg2})
}

func assignOpToOp(op ast.AssignOp) Op {
	switch op {
	case ast.AssignAdd:
		return OpAdd
	case ast.AssignSub:
		return OpSub
	case ast.AssignMul:
		return OpMul
	case ast.AssignDiv:
		return OpDiv
	default:
		return OpAssign
	}
}

func (g *Generator) lowerStmt(stmt ast.Statement) {
	switch s := stmt.(type) {

	case *ast.Declaration:
		for _, d := range s.Decls {
			if init, ok := d.(ast.InitDeclarator); ok {
				rhs := g.lowerExpr(init.Init)
				g.emit(varOperand(init.Name), rhs, OpAssign, Operand{})
			}
			// A PlainDeclarator needs no instruction: the target data word is
			// already zero-initialized by the assembly generator.
		}

	case *ast.Assignment:
		g.lowerAssign(s.Lhs, s.Op, s.Rhs)

	case *ast.Printing:
		for _, item := range s.Items {
			if item.Expr != nil {
				g.lowerExpr(item.Expr) // evaluated for side effects only
			}
		}

	case *ast.ExprStatement:
		g.lowerExpr(s.Expr)
	}
}

func (g *Generator) lowerAssign(name string, op ast.AssignOp, rhs ast.Expression) Operand {
	rhsVal := g.lowerExpr(rhs)
	if op == ast.Assign {
		g.emit(varOperand(name), rhsVal, OpAssign, Operand{})
	} else {
		g.emit(varOperand(name), varOperand(name), assignOpToOp(op), rhsVal)
	}
	return varOperand(name)
}

// lowerExpr lowers e and returns the Operand holding its value — either a
// constant, a variable, or a freshly emitted temporary.
func (g *Generator) lowerExpr(e ast.Expression) Operand {
	switch n := e.(type) {

	case nil:
		return Operand{}

	case *ast.IntLiteral:
		v, _ := strconv.ParseInt(n.Text, 10, 64)
		return constOperand(v)

	case *ast.CharLiteral:
		v, _ := parseCharLiteral(n.Text)
		return constOperand(v) // character literals are pre-converted to codepoint text

	case *ast.StringLiteral:
		return Operand{} // only meaningful as a bare PRENT item, handled there

	case *ast.Identifier:
		return varOperand(n.Name)

	case *ast.BinaryExpr:
		left := g.lowerExpr(n.Left)
		right := g.lowerExpr(n.Right)
		t := g.newTemp()
		g.emit(t, left, Op(n.Op), right)
		return t

	case *ast.UnaryExpr:
		return g.lowerUnary(n)

	case *ast.PostfixExpr:
		return g.lowerPostfix(n)

	case *ast.AssignExpr:
		ident, ok := n.Lhs.(*ast.Identifier)
		if !ok {
			return Operand{}
		}
		return g.lowerAssign(ident.Name, n.Op, n.Rhs)

	default:
		return Operand{}
	}
}

func (g *Generator) lowerUnary(n *ast.UnaryExpr) Operand {
	switch n.Op {
	case ast.Plus:
		return g.lowerExpr(n.Operand) // unary '+' is a no-op

	case ast.Minus:
		operand := g.lowerExpr(n.Operand)
		t := g.newTemp()
		g.emit(t, constOperand(0), OpSub, operand)
		return t

	case ast.Incr, ast.Decr:
		ident, ok := n.Operand.(*ast.Identifier)
		if !ok {
			return Operand{}
		}
		op := OpAdd
		if n.Op == ast.Decr {
			op = OpSub
		}
		g.emit(varOperand(ident.Name), varOperand(ident.Name), op, constOperand(1))
		return varOperand(ident.Name) // prefix yields the new value

	default:
		return Operand{}
	}
}

// lowerPostfix saves the variable's old value into a fresh temporary before
// incrementing/decrementing it in place — the optimizer must never reorder
// these two instructions relative to each other.
func (g *Generator) lowerPostfix(n *ast.PostfixExpr) Operand {
	ident, ok := n.Operand.(*ast.Identifier)
	if !ok {
		return Operand{}
	}

	old := g.newTemp()
	g.emit(old, varOperand(ident.Name), OpAssign, Operand{})

	op := OpAdd
	if n.Op == ast.Decr {
		op = OpSub
	}
	g.emit(varOperand(ident.Name), varOperand(ident.Name), op, constOperand(1))

	return old // postfix yields the old value
}

func parseCharLiteral(text string) (int64, bool) {
	if len(text) < 3 || text[0] != '\'' || text[len(text)-1] != '\'' {
		return 0, false
	}
	body := text[1 : len(text)-1]
	if len(body) == 1 {
		return int64(body[0]), true
	}
	if len(body) == 2 && body[0] == '\\' {
		switch body[1] {
		case 'n':
			return int64('\n'), true
		case 't':
			return int64('\t'), true
		case 'r':
			return int64('\r'), true
		case '0':
			return 0, true
		case '\\':
			return int64('\\'), true
		case '\'':
			return int64('\''), true
		case '"':
			return int64('"'), true
		}
	}
	return 0, false
}
