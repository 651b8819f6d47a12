package sema

import (
	"strconv"

	"github.com/samjoash9/baiscript/pkg/ast"
)

// charEscapes maps the escape letter following a backslash inside a character
// literal to its codepoint.
var charEscapes = map[byte]int64{
	'n': '\n', 't': '\t', 'r': '\r', '0': 0, '\\': '\\', '\'': '\'', '"': '"',
}

func parseInt(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseCharLiteral converts a character literal's source text (including its
// surrounding single quotes, e.g. "'a'" or "'\\n'") to its integer codepoint.
func parseCharLiteral(text string) (int64, bool) {
	if len(text) < 3 || text[0] != '\'' || text[len(text)-1] != '\'' {
		return 0, false
	}
	body := text[1 : len(text)-1]
	if len(body) == 1 {
		return int64(body[0]), true
	}
	if len(body) == 2 && body[0] == '\\' {
		if v, ok := charEscapes[body[1]]; ok {
			return v, true
		}
	}
	return 0, false
}

// evalExpr evaluates e, enforcing declared-before-use and initialized-before-use,
// folding constants where possible, and recording diagnostics as it goes. The
// AST already encodes operator precedence via BinaryExpr nesting built by the
// parser, so one recursive function handles every precedence level; left-to-right,
// depth-first evaluation order falls out of the recursion shape.
func (a *Analyzer) evalExpr(e ast.Expression) Temp {
	switch n := e.(type) {

	case nil:
		return Temp{Type: TypeUnknown}

	case *ast.IntLiteral:
		if v, ok := parseInt(n.Text); ok {
			return Temp{Type: TypeInt, IsConstant: true, IntValue: v}
		}
		return Temp{Type: TypeUnknown}

	case *ast.CharLiteral:
		if v, ok := parseCharLiteral(n.Text); ok {
			return Temp{Type: TypeChar, IsConstant: true, IntValue: v}
		}
		return Temp{Type: TypeUnknown}

	case *ast.StringLiteral:
		// A bare string literal outside of a PRENT item has no numeric value.
		return Temp{Type: TypeUnknown}

	case *ast.Identifier:
		return a.evalIdentifier(n)

	case *ast.BinaryExpr:
		return a.evalBinary(n)

	case *ast.UnaryExpr:
		return a.evalUnary(n)

	case *ast.PostfixExpr:
		return a.evalPostfix(n)

	case *ast.AssignExpr:
		return a.evalAssignExpr(n)

	default:
		return Temp{Type: TypeUnknown}
	}
}

func (a *Analyzer) evalIdentifier(n *ast.Identifier) Temp {
	kv := a.lookupOrMirror(n.Name, n.Line)
	kv.Used = true
	if !kv.Initialized {
		a.errorf(n.Line, "Use of uninitialized variable '%s'", n.Name)
	}
	return Temp{Type: kv.Type, IsConstant: kv.Constant, IntValue: kv.IntValue}
}

// resultType implements the char/int promotion rule for binary operators: the
// result is CHAR only when both operands are CHAR, INT otherwise. A CHAROT
// variable's own declared type still wins whenever that variable is referenced
// directly (evalIdentifier above), which is what makes `CHAROT c = 'A' + 1;
// PRENT c;` print as a character despite the `+` itself always promoting to INT.
func resultType(l, r Type) Type {
	if l == TypeChar && r == TypeChar {
		return TypeChar
	}
	return TypeInt
}

func (a *Analyzer) evalBinary(n *ast.BinaryExpr) Temp {
	left := a.evalExpr(n.Left)
	right := a.evalExpr(n.Right)

	if n.Op == ast.Div && right.IsConstant && right.IntValue == 0 {
		a.errorf(n.Line, "Division by zero")
		return Temp{Type: resultType(left.Type, right.Type), IsConstant: true, IntValue: 0}
	}

	if left.IsConstant && right.IsConstant {
		var v int64
		switch n.Op {
		case ast.Add:
			v = left.IntValue + right.IntValue
		case ast.Sub:
			v = left.IntValue - right.IntValue
		case ast.Mul:
			v = left.IntValue * right.IntValue
		case ast.Div:
			v = left.IntValue / right.IntValue
		}
		return Temp{Type: resultType(left.Type, right.Type), IsConstant: true, IntValue: v}
	}

	return Temp{Type: resultType(left.Type, right.Type)}
}

func (a *Analyzer) evalUnary(n *ast.UnaryExpr) Temp {
	switch n.Op {
	case ast.Plus, ast.Minus:
		operand := a.evalExpr(n.Operand)
		if n.Op == ast.Plus {
			return operand
		}
		if operand.IsConstant {
			return Temp{Type: operand.Type, IsConstant: true, IntValue: -operand.IntValue}
		}
		return Temp{Type: operand.Type}

	case ast.Incr, ast.Decr:
		return a.evalIncrDecr(n.Operand, n.Op, n.Line, true, false)

	default:
		return Temp{Type: TypeUnknown}
	}
}

func (a *Analyzer) evalPostfix(n *ast.PostfixExpr) Temp {
	return a.evalIncrDecr(n.Operand, n.Op, n.Line, false, a.inPrent)
}

// evalIncrDecr implements both prefix and postfix ++/--. Both require an
// identifier operand; an uninitialized operand is always an error for prefix,
// but only an error for postfix when evaluated outside of a PRENT item — inside
// PRENT it is silently tolerated as 0. Either way the variable's stored value
// becomes old±1 immediately; prefix yields the new value, postfix the old one.
func (a *Analyzer) evalIncrDecr(operand ast.Expression, op ast.UnaryOp, line int, prefix bool, tolerateUninit bool) Temp {
	ident, ok := operand.(*ast.Identifier)
	if !ok {
		kind := "Postfix"
		if prefix {
			kind = "Prefix"
		}
		a.errorf(line, "%s %s on non-identifier operand", kind, op)
		return Temp{Type: TypeUnknown}
	}

	kv := a.lookupOrMirror(ident.Name, line)
	kv.Used = true

	old := kv.IntValue
	if !kv.Initialized {
		if !prefix && tolerateUninit {
			// Silently tolerated: no diagnostic, old value treated as 0.
		} else {
			a.errorf(line, "Use of uninitialized variable '%s'", ident.Name)
		}
		old = 0
	}

	delta := int64(1)
	if op == ast.Decr {
		delta = -1
	}
	next := old + delta

	kv.Initialized = true
	kv.Constant = true
	kv.IntValue = next
	a.syncSymbol(ident.Name, kv)

	result := old
	if prefix {
		result = next
	}
	return Temp{Type: kv.Type, IsConstant: true, IntValue: result}
}

// syncSymbol mirrors a KnownVar's freshly computed constant value back into the
// shared symbol table, keeping the two in lockstep.
func (a *Analyzer) syncSymbol(name string, kv *KnownVar) {
	if idx, ok := a.Symbols.Find(name); ok {
		entry := a.Symbols.Get(idx)
		entry.Initialized = kv.Initialized
		entry.Datatype = datatypeFromType(kv.Type)
		if kv.Constant {
			entry.Value = strconv.FormatInt(kv.IntValue, 10)
		}
		a.Symbols.Set(idx, entry)
	}
}

// evalAssignExpr handles assignment used in expression position (e.g. nested
// inside another expression or a PRENT item). Top-level assignment statements
// go through handleAssignment instead, but share this same core logic.
func (a *Analyzer) evalAssignExpr(n *ast.AssignExpr) Temp {
	ident, ok := n.Lhs.(*ast.Identifier)
	if !ok {
		a.errorf(n.Line, "Invalid LHS in assignment")
		return Temp{Type: TypeUnknown}
	}
	return a.assign(ident.Name, ast.AssignOp(n.Op), n.Rhs, n.Line)
}

// assign implements `=`, `+=`, `-=`, `*=` and `/=` against the named variable:
// compound assignment to an uninitialized variable is an error, `/=` by a zero
// constant is a "Division by zero" error substituting 0, and after the
// assignment the variable becomes initialized with its folded constant (when
// computable) stored in both the known-vars entry and the symbol table.
func (a *Analyzer) assign(name string, op ast.AssignOp, rhs ast.Expression, line int) Temp {
	kv := a.lookupOrMirror(name, line)

	if op != ast.Assign && !kv.Initialized {
		a.errorf(line, "Compound assignment to uninitialized variable '%s'", name)
	}

	rhsVal := a.evalExpr(rhs)

	var result Temp
	switch op {
	case ast.Assign:
		result = rhsVal

	case ast.AssignAdd, ast.AssignSub, ast.AssignMul, ast.AssignDiv:
		left := Temp{Type: kv.Type, IsConstant: kv.Constant, IntValue: kv.IntValue}

		if op == ast.AssignDiv && rhsVal.IsConstant && rhsVal.IntValue == 0 {
			a.errorf(line, "Division by zero")
			result = Temp{Type: resultType(left.Type, rhsVal.Type), IsConstant: true, IntValue: 0}
			break
		}

		if left.IsConstant && rhsVal.IsConstant {
			var v int64
			switch op {
			case ast.AssignAdd:
				v = left.IntValue + rhsVal.IntValue
			case ast.AssignSub:
				v = left.IntValue - rhsVal.IntValue
			case ast.AssignMul:
				v = left.IntValue * rhsVal.IntValue
			case ast.AssignDiv:
				v = left.IntValue / rhsVal.IntValue
			}
			result = Temp{Type: resultType(left.Type, rhsVal.Type), IsConstant: true, IntValue: v}
		} else {
			result = Temp{Type: resultType(left.Type, rhsVal.Type)}
		}

	default:
		a.errorf(line, "Unknown assignment operator '%s'", op)
		result = Temp{Type: TypeUnknown}
	}

	kv.Initialized = true
	if kv.Type == TypeUnknown && result.Type != TypeUnknown {
		kv.Type = result.Type // KUAN: infer type from first assignment
	}
	if result.IsConstant {
		kv.Constant = true
		kv.IntValue = result.IntValue
	} else {
		kv.Constant = false
	}
	a.syncSymbol(name, kv)

	return Temp{Type: kv.Type, IsConstant: result.IsConstant, IntValue: result.IntValue}
}
