package metric

import (
	"errors"
	"fmt"
	"sort"
)

// ErrEmptyCatalog is returned when a catalog declares no methods.
var ErrEmptyCatalog = errors.New("no dynamic methods declared")

// Entry is a resolved table row.
type Entry struct {
	ID          string
	Kind        Kind
	Name        string // fully qualified metric name
	Description string
}

// Table maps method identifiers to metric names. It is immutable once built
// and safe for concurrent reads.
type Table struct {
	entries map[string]Entry
}

// BuildTable resolves every declaration against prefix. A later declaration
// with the same identifier replaces an earlier one.
func BuildTable(decls []Declaration, prefix string) (*Table, error) {
	if len(decls) == 0 {
		return nil, ErrEmptyCatalog
	}

	entries := make(map[string]Entry, len(decls))
	for _, d := range decls {
		if !d.Kind.Valid() {
			return nil, fmt.Errorf("declaration %q: unknown kind %d", d.Name, int(d.Kind))
		}
		if d.Name == "" {
			return nil, fmt.Errorf("declaration of kind %s: %w", d.Kind, errMissingMethodName)
		}

		id := d.ID()
		entries[id] = Entry{
			ID:          id,
			Kind:        d.Kind,
			Name:        FullName(prefix, d.Name),
			Description: d.Description,
		}
	}

	return &Table{entries: entries}, nil
}

// Lookup returns the entry for a method identifier.
func (t *Table) Lookup(id string) (Entry, bool) {
	e, ok := t.entries[id]
	return e, ok
}

// Len returns the number of method identifiers.
func (t *Table) Len() int {
	return len(t.entries)
}

// IDs returns all method identifiers, sorted.
func (t *Table) IDs() []string {
	ids := make([]string, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Entries returns all entries sorted by identifier.
func (t *Table) Entries() []Entry {
	ids := t.IDs()
	out := make([]Entry, len(ids))
	for i, id := range ids {
		out[i] = t.entries[id]
	}
	return out
}

// Names returns the distinct metric names, sorted. Several identifiers may
// resolve to the same name ("incX" and "decX").
func (t *Table) Names() []string {
	seen := make(map[string]struct{}, len(t.entries))
	names := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		if _, ok := seen[e.Name]; ok {
			continue
		}
		seen[e.Name] = struct{}{}
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}
