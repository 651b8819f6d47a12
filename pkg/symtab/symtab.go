// Package symtab implements the flat, insertion-ordered symbol table shared by
// every phase of the BaiScript pipeline: one Table value per compilation run,
// holding a name's declared type, initialization state and last known constant
// value, with names and values truncated to bounded widths.
package symtab

import "fmt"

const (
	maxNameLen     = 64
	maxValueLen    = 64
	maxDatatypeLen = 16
)

// Entry is one symbol table row: a declared or referenced name together with its
// declared type token, whether it has been initialized, and its most recently
// known constant value in textual form (empty when unknown/non-constant).
type Entry struct {
	Name        string
	Datatype    string
	Initialized bool
	Value       string
}

// Table is a flat, insertion-ordered collection of Entry values keyed by name.
//
// Names are unique: Add silently returns the existing index if the name is
// already present. The table itself never detects or reports redeclaration;
// that is the semantic analyzer's job.
type Table struct {
	entries []Entry
	index   map[string]int
}

// New returns an empty, ready-to-use Table.
func New() *Table {
	return &Table{index: make(map[string]int)}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// Add inserts a new entry for name, truncating name/datatype/value to their
// bounded widths. Returns the entry's index, or the existing index if name was
// already present (in which case the table is left unchanged).
func (t *Table) Add(name, datatype string, initialized bool, value string) int {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if idx, ok := t.index[name]; ok {
		return idx
	}
	idx := len(t.entries)
	t.entries = append(t.entries, Entry{
		Name:        truncate(name, maxNameLen),
		Datatype:    truncate(datatype, maxDatatypeLen),
		Initialized: initialized,
		Value:       truncate(value, maxValueLen),
	})
	t.index[name] = idx
	return idx
}

// Find returns the index of name and true, or (-1, false) if absent.
func (t *Table) Find(name string) (int, bool) {
	idx, ok := t.index[name]
	if !ok {
		return -1, false
	}
	return idx, true
}

// Get returns a copy of the entry at idx. idx must be in range [0, Len()).
func (t *Table) Get(idx int) Entry {
	return t.entries[idx]
}

// Set replaces the entry at idx with e.
func (t *Table) Set(idx int, e Entry) {
	t.entries[idx] = e
}

// Len returns the number of entries currently stored.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns the entries in insertion order. The returned slice aliases the
// table's internal storage and must not be mutated by the caller.
func (t *Table) Entries() []Entry {
	return t.entries
}

// Clear empties the table, discarding all entries.
func (t *Table) Clear() {
	t.entries = nil
	t.index = make(map[string]int)
}

// String renders the table as a debug-friendly listing.
func (t *Table) String() string {
	out := fmt.Sprintf("=== SYMBOL TABLE (%d entries) ===\n", len(t.entries))
	out += fmt.Sprintf("%-10s | %-10s | %-11s | %-10s\n", "Name", "Datatype", "Initialized", "Value")
	for _, e := range t.entries {
		init := "No"
		if e.Initialized {
			init = "Yes"
		}
		out += fmt.Sprintf("%-10s | %-10s | %-11s | %-10s\n", e.Name, e.Datatype, init, e.Value)
	}
	return out
}
