package parser

import (
	"fmt"

	pc "github.com/prataprc/goparsec"

	bai "github.com/samjoash9/baiscript/pkg/ast"
)

// allowedEscapes is the escape-letter set the language defines for single-
// quoted char and double-quoted string literals.
var allowedEscapes = map[byte]bool{
	'n': true, 't': true, 'r': true, '0': true, '\\': true, '\'': true, '"': true,
}

// builder converts the raw goparsec parse tree into a pkg/ast.Program. One
// builder handles exactly one source file.
type builder struct {
	tracker  *lineTracker
	lexError bool
}

func newBuilder(source []byte) *builder {
	return &builder{tracker: newLineTracker(source)}
}

// checkEscapes flags lexError when text (a char or string literal, quotes
// included) contains a backslash escape outside the language's allowed set.
// A malformed escape is tolerated, not fatal: the caller still gets a
// program back, but the flag lets the driver warn the user.
func (b *builder) checkEscapes(text string) {
	for i := 0; i+1 < len(text); i++ {
		if text[i] == '\\' && !allowedEscapes[text[i+1]] {
			b.lexError = true
		}
	}
}

func (b *builder) buildProgram(root pc.Queryable) (*bai.Program, error) {
	if root.GetName() != "program" {
		return nil, fmt.Errorf("expected node 'program', found %q", root.GetName())
	}

	prog := &bai.Program{}
	for _, item := range root.GetChildren() {
		kids := item.GetChildren()
		if len(kids) == 0 {
			continue
		}
		wrapped := kids[0]
		if wrapped.GetName() == "comment" {
			continue
		}
		if wrapped.GetName() != "statement" || len(wrapped.GetChildren()) == 0 {
			return nil, fmt.Errorf("unrecognized top-level node %q", wrapped.GetName())
		}

		stmt, err := b.buildStatement(wrapped.GetChildren()[0])
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

func (b *builder) buildStatement(node pc.Queryable) (bai.Statement, error) {
	switch node.GetName() {
	case "decl_stmt":
		return b.buildDeclaration(node)
	case "print_stmt":
		return b.buildPrinting(node)
	case "assign_stmt":
		return b.buildAssignment(node)
	case "expr_stmt":
		return b.buildExprStatement(node)
	default:
		return nil, fmt.Errorf("unrecognized statement node %q", node.GetName())
	}
}

func (b *builder) buildDeclaration(node pc.Queryable) (*bai.Declaration, error) {
	kids := node.GetChildren() // [data_type, declarators, ';']
	if len(kids) < 2 {
		return nil, fmt.Errorf("malformed declaration statement")
	}

	dtNode := kids[0].GetChildren()[0] // data_type is an OrdChoice
	decl := &bai.Declaration{
		Type: bai.DataType(dtNode.GetValue()),
		Line: b.tracker.lineOf(dtNode.GetValue()),
	}

	for _, d := range kids[1].GetChildren() { // each "declarator"
		inner := d.GetChildren()[0]
		switch inner.GetName() {
		case "init_declarator":
			ic := inner.GetChildren() // [IDENT, '=', additive]
			name := ic[0].GetValue()
			line := b.tracker.lineOf(name)
			init, _, err := b.buildExpr(ic[2])
			if err != nil {
				return nil, err
			}
			decl.Decls = append(decl.Decls, bai.InitDeclarator{Name: name, Init: init, Line: line})
		case "IDENT":
			name := inner.GetValue()
			decl.Decls = append(decl.Decls, bai.PlainDeclarator{Name: name, Line: b.tracker.lineOf(name)})
		default:
			return nil, fmt.Errorf("unrecognized declarator node %q", inner.GetName())
		}
	}
	return decl, nil
}

func (b *builder) buildPrinting(node pc.Queryable) (*bai.Printing, error) {
	kids := node.GetChildren() // ['PRENT', print_items, ';']
	if len(kids) < 2 {
		return nil, fmt.Errorf("malformed print statement")
	}

	p := &bai.Printing{Line: b.tracker.lineOf("PRENT")}
	for _, item := range kids[1].GetChildren() { // each "print_item"
		inner := item.GetChildren()[0]
		if inner.GetName() == "STRING" {
			b.checkEscapes(inner.GetValue())
			p.Items = append(p.Items, bai.PrintItem{Literal: inner.GetValue(), Line: b.tracker.lineOf(inner.GetValue())})
			continue
		}
		expr, line, err := b.buildExpr(inner)
		if err != nil {
			return nil, err
		}
		p.Items = append(p.Items, bai.PrintItem{Expr: expr, Line: line})
	}
	return p, nil
}

func (b *builder) buildAssignment(node pc.Queryable) (*bai.Assignment, error) {
	kids := node.GetChildren() // [IDENT, assign_op, additive, ';']
	if len(kids) < 3 {
		return nil, fmt.Errorf("malformed assignment statement")
	}

	name := kids[0].GetValue()
	line := b.tracker.lineOf(name)
	opNode := kids[1].GetChildren()[0]
	rhs, _, err := b.buildExpr(kids[2])
	if err != nil {
		return nil, err
	}
	return &bai.Assignment{Lhs: name, Op: bai.AssignOp(opNode.GetValue()), Rhs: rhs, Line: line}, nil
}

func (b *builder) buildExprStatement(node pc.Queryable) (*bai.ExprStatement, error) {
	kids := node.GetChildren() // [additive, ';']
	expr, line, err := b.buildExpr(kids[0])
	if err != nil {
		return nil, err
	}
	return &bai.ExprStatement{Expr: expr, Line: line}, nil
}

// buildExpr and friends return the expression's Line alongside it: the line
// of its leftmost token, needed by callers that build a containing node
// (declarator, statement) out of a sub-expression.

func (b *builder) buildExpr(node pc.Queryable) (bai.Expression, int, error) {
	return b.buildAdditive(node)
}

func (b *builder) buildAdditive(node pc.Queryable) (bai.Expression, int, error) {
	kids := node.GetChildren() // [multiplicative, additive_rest]
	left, line, err := b.buildMultiplicative(kids[0])
	if err != nil {
		return nil, 0, err
	}
	for _, term := range kids[1].GetChildren() { // each "add_term"
		tKids := term.GetChildren() // [add_op, multiplicative]
		opNode := tKids[0].GetChildren()[0]
		right, _, err := b.buildMultiplicative(tKids[1])
		if err != nil {
			return nil, 0, err
		}
		left = &bai.BinaryExpr{Op: bai.BinaryOp(opNode.GetValue()), Left: left, Right: right, Line: line}
	}
	return left, line, nil
}

func (b *builder) buildMultiplicative(node pc.Queryable) (bai.Expression, int, error) {
	kids := node.GetChildren() // [unary, mult_rest]
	left, line, err := b.buildUnary(kids[0])
	if err != nil {
		return nil, 0, err
	}
	for _, term := range kids[1].GetChildren() { // each "mul_term"
		tKids := term.GetChildren() // [mul_op, unary]
		opNode := tKids[0].GetChildren()[0]
		right, _, err := b.buildUnary(tKids[1])
		if err != nil {
			return nil, 0, err
		}
		left = &bai.BinaryExpr{Op: bai.BinaryOp(opNode.GetValue()), Left: left, Right: right, Line: line}
	}
	return left, line, nil
}

func (b *builder) buildUnary(node pc.Queryable) (bai.Expression, int, error) {
	inner := node.GetChildren()[0] // "prefix_op" or "postfix"
	switch inner.GetName() {
	case "prefix_op":
		kids := inner.GetChildren() // [prefix_sym, unary]
		symNode := kids[0].GetChildren()[0]
		operand, line, err := b.buildUnary(kids[1])
		if err != nil {
			return nil, 0, err
		}
		return &bai.UnaryExpr{Op: bai.UnaryOp(symNode.GetValue()), Operand: operand, Line: line}, line, nil
	case "postfix":
		return b.buildPostfix(inner)
	default:
		return nil, 0, fmt.Errorf("unrecognized unary node %q", inner.GetName())
	}
}

func (b *builder) buildPostfix(node pc.Queryable) (bai.Expression, int, error) {
	kids := node.GetChildren() // [factor, postfix_op (Maybe)]
	operand, line, err := b.buildFactor(kids[0])
	if err != nil {
		return nil, 0, err
	}
	if len(kids) > 1 && len(kids[1].GetChildren()) > 0 {
		symNode := kids[1].GetChildren()[0]
		return &bai.PostfixExpr{Op: bai.UnaryOp(symNode.GetValue()), Operand: operand, Line: line}, line, nil
	}
	return operand, line, nil
}

func (b *builder) buildFactor(node pc.Queryable) (bai.Expression, int, error) {
	inner := node.GetChildren()[0]
	switch inner.GetName() {
	case "paren_expr":
		kids := inner.GetChildren() // ['(', additive, ')']
		return b.buildAdditive(kids[1])
	case "CHAR":
		b.checkEscapes(inner.GetValue())
		line := b.tracker.lineOf(inner.GetValue())
		return &bai.CharLiteral{Text: inner.GetValue(), Line: line}, line, nil
	case "INT":
		line := b.tracker.lineOf(inner.GetValue())
		return &bai.IntLiteral{Text: inner.GetValue(), Line: line}, line, nil
	case "IDENT":
		line := b.tracker.lineOf(inner.GetValue())
		return &bai.Identifier{Name: inner.GetValue(), Line: line}, line, nil
	default:
		return nil, 0, fmt.Errorf("unrecognized factor node %q", inner.GetName())
	}
}
