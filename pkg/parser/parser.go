// Package parser turns BaiScript source text into a pkg/ast.Program using
// goparsec parser combinators.
//
// The grammar has no left recursion (PEG combinators can't express it):
// additive expressions are built as "term (op term)*" and folded into a
// left-associative tree afterward, the same way a hand-written recursive
// descent parser would loop instead of recurse at each precedence level.
package parser

import (
	"fmt"
	"io"
	"os"

	pc "github.com/prataprc/goparsec"

	bai "github.com/samjoash9/baiscript/pkg/ast"
)

// Top level object, generates the traversable AST based on the input and the
// parser combinators below.
var ast = pc.NewAST("baiscript", 0)

var (
	// Parser combinator for an entire BaiScript program: a sequence of
	// comments and statements terminated by end of input.
	pProgram = ast.ManyUntil("program", nil, ast.OrdChoice("stmt_item", nil, pComment, pStatement), pc.End())

	// Parser combinator for comments (not part of the language grammar proper
	// but tolerated between statements).
	pComment = ast.And("comment", nil, pc.Atom("//", "//"), pc.Token(`(?m).*$`, "COMMENT"))

	pStatement = ast.OrdChoice("statement", nil, pDeclarationStmt, pPrintStmt, pAssignStmt, pExprStmt)

	// ENTEGER/CHAROT/KUAN declarations, compliant with:
	// "{ENTEGER|CHAROT|KUAN} ident[=expr] (',' ident[=expr])* ';'"
	pDeclarationStmt = ast.And("decl_stmt", nil, pDataType, pDeclaratorList, pSemi)
	pDeclaratorList  = ast.Many("declarators", nil, pDeclarator, pComma)
	pDeclarator      = ast.OrdChoice("declarator", nil, pInitDeclarator, pIdent)
	pInitDeclarator  = ast.And("init_declarator", nil, pIdent, pc.Atom("=", "="), &pExpr)

	// PRENT print statement: "PRENT item (',' item)* ';'", where an item is
	// either a double-quoted string literal or an expression.
	pPrintStmt     = ast.And("print_stmt", nil, pc.Atom("PRENT", "PRENT"), pPrintItemList, pSemi)
	pPrintItemList = ast.Many("print_items", nil, pPrintItem, pComma)
	pPrintItem     = ast.OrdChoice("print_item", nil, pStringLit, &pExpr)

	// Top-level assignment statement: "ident {=|+=|-=|*=|/=} expr ';'".
	pAssignStmt = ast.And("assign_stmt", nil, pIdent, pAssignOp, &pExpr, pSemi)
	pAssignOp   = ast.OrdChoice("assign_op", nil,
		pc.Atom("+=", "+="), pc.Atom("-=", "-="), pc.Atom("*=", "*="), pc.Atom("/=", "/="), pc.Atom("=", "="),
	)

	// A bare expression statement, e.g. "i++;" with no surrounding assignment.
	pExprStmt = ast.And("expr_stmt", nil, &pExpr, pSemi)
)

// pExpr, pAdditive, pMultiplicative, pUnary, pPrefixOp, pPostfix, pFactor and
// pParenExpr are mutually recursive (expr -> ... -> factor -> paren_expr ->
// expr), so they're declared here and wired up in init() via pointers:
// goparsec's combinators accept a *Parser and dereference it lazily at parse
// time, which is how circular grammars are expressed without an
// initialization cycle.
var (
	pExpr           pc.Parser
	pAdditive       pc.Parser
	pAddOp          pc.Parser
	pMultiplicative pc.Parser
	pMulOp          pc.Parser
	pUnary          pc.Parser
	pPrefixOp       pc.Parser
	pPostfix        pc.Parser
	pFactor         pc.Parser
	pParenExpr      pc.Parser
)

func init() {
	// additive := multiplicative ( ('+'|'-') multiplicative )*
	pAdditive = ast.And("additive", nil, &pMultiplicative,
		ast.Kleene("additive_rest", nil, ast.And("add_term", nil, &pAddOp, &pMultiplicative)))
	pAddOp = ast.OrdChoice("add_op", nil, pc.Atom("+", "+"), pc.Atom("-", "-"))

	// multiplicative := unary ( ('*'|'/') unary )*
	pMultiplicative = ast.And("multiplicative", nil, &pUnary,
		ast.Kleene("mult_rest", nil, ast.And("mul_term", nil, &pMulOp, &pUnary)))
	pMulOp = ast.OrdChoice("mul_op", nil, pc.Atom("*", "*"), pc.Atom("/", "/"))

	// unary := ('++'|'--'|'+'|'-') unary | postfix
	pUnary = ast.OrdChoice("unary", nil, &pPrefixOp, &pPostfix)
	pPrefixOp = ast.And("prefix_op", nil,
		ast.OrdChoice("prefix_sym", nil, pc.Atom("++", "++"), pc.Atom("--", "--"), pc.Atom("+", "+"), pc.Atom("-", "-")),
		&pUnary,
	)

	// postfix := factor ('++'|'--')?
	pPostfix = ast.And("postfix", nil, &pFactor,
		ast.Maybe("postfix_op", nil, ast.OrdChoice("postfix_sym", nil, pc.Atom("++", "++"), pc.Atom("--", "--"))))

	// factor := '(' expr ')' | CHAR | INT | IDENT
	pFactor = ast.OrdChoice("factor", nil, &pParenExpr, pCharLit, pIntLit, pIdent)
	pParenExpr = ast.And("paren_expr", nil, pc.Atom("(", "("), &pExpr, pc.Atom(")", ")"))

	pExpr = pAdditive
}

var (
	// Identifiers: letters/underscore, then alphanumerics/underscore, capped
	// at 64 bytes total by the regex's bound on the repeated group.
	pIdent  = pc.Token(`[A-Za-z_][0-9a-zA-Z_]{0,63}`, "IDENT")
	pIntLit = pc.Int()
	// Character literal: 'x' or a backslash escape, e.g. '\n'.
	pCharLit = pc.Token(`'([^'\\]|\\.)'`, "CHAR")
	// Double-quoted string literal, legal only inside a PRENT item list.
	pStringLit = pc.Token(`"([^"\\]|\\.)*"`, "STRING")

	pDataType = ast.OrdChoice("data_type", nil,
		pc.Atom("ENTEGER", "ENTEGER"), pc.Atom("CHAROT", "CHAROT"), pc.Atom("KUAN", "KUAN"))

	pSemi  = pc.Atom(";", ";")
	pComma = pc.Atom(",", ",")
)

// Parser scans and parses BaiScript source text into a pkg/ast.Program.
//
// It uses parser combinators to obtain the AST from the source code, which
// can be provided via any io.Reader. The library reads the following
// feature-flag env vars:
//   - PARSEC_DEBUG: verbose logging of which combinator gets triggered
//   - EXPORT_AST:   exports a Graphviz representation of the raw parse tree
//   - PRINT_AST:    prints a textual representation of the raw parse tree
type Parser struct{ reader io.Reader }

// NewParser returns a Parser that will read BaiScript source from r.
func NewParser(r io.Reader) Parser {
	return Parser{reader: r}
}

// Parse reads the full program from the Parser's reader and returns the
// resulting AST plus the two-flag contract the core pipeline depends on:
// parseFailed (nothing usable was produced; downstream phases must not run)
// and lexError (a malformed literal escape was tolerated by best-effort
// recovery but should still be surfaced to the user).
func (p *Parser) Parse() (prog *bai.Program, parseFailed bool, lexError bool) {
	content, err := io.ReadAll(p.reader)
	if err != nil {
		return nil, true, false
	}

	root, ok := p.FromSource(content)
	if !ok || root == nil {
		return nil, true, false
	}

	b := newBuilder(content)
	program, buildErr := b.buildProgram(root)
	if buildErr != nil {
		return nil, true, false
	}

	return program, false, b.lexError
}

// FromSource scans the textual input and returns a traversable parse tree
// (text --> AST). AST --> in-memory pkg/ast.Program conversion happens in
// build.go.
func (p *Parser) FromSource(source []byte) (pc.Queryable, bool) {
	if os.Getenv("PARSEC_DEBUG") != "" {
		ast.SetDebug()
	}

	root, _ := ast.Parsewith(pProgram, pc.NewScanner(source))

	if os.Getenv("EXPORT_AST") != "" {
		file, err := os.Create(fmt.Sprintf("%s/debug.ast.dot", os.Getenv("DEBUG_FOLDER")))
		if err == nil {
			defer file.Close()
			file.Write([]byte(ast.Dotstring("\"BaiScript AST\"")))
		}
	}
	if os.Getenv("PRINT_AST") != "" {
		ast.Prettyprint()
	}

	// TODO(baiscript): goparsec's `root` already reflects whatever the
	// grammar matched before giving up; treating a non-nil root as success
	// means a partial parse is silently accepted rather than rejected for
	// leftover input. Tightening this needs a scanner-position check this
	// version of the library doesn't expose on pc.Queryable.
	return root, root != nil
}
