package parser

import "strings"

// lineTracker computes 1-based source line numbers for leaf tokens by
// scanning the source text in the same left-to-right order the grammar
// consumed it. goparsec's pc.Queryable carries no position data of its own,
// so this recovers it externally, since pkg/ast.Statement/Expression
// variants all need a real line number.
type lineTracker struct {
	source string
	cursor int
}

func newLineTracker(source []byte) *lineTracker {
	return &lineTracker{source: string(source)}
}

// lineOf returns the line of the next occurrence of token at or after the
// tracker's cursor and advances the cursor past it. Callers must query
// tokens in the same left-to-right order the grammar matched them.
func (t *lineTracker) lineOf(token string) int {
	if token == "" {
		return 1 + strings.Count(t.source[:t.cursor], "\n")
	}
	idx := strings.Index(t.source[t.cursor:], token)
	if idx == -1 {
		return 1 + strings.Count(t.source, "\n")
	}
	abs := t.cursor + idx
	line := 1 + strings.Count(t.source[:abs], "\n")
	t.cursor = abs + len(token)
	return line
}
