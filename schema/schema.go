// Package schema models the evolving table/index/trigger/view catalog that
// migration compilation builds up. A Schema is mutated strictly by
// migration statements, in file-sorted order; query compilation observes a
// frozen snapshot and never mutates it.
package schema

import (
	"fmt"

	"github.com/basilisk-labs/sqlitec/types"
)

// QualifiedName is schema.name, or bare name when Schema is empty. A CTE
// table (TableKind CTE) never carries a Schema qualifier.
type QualifiedName struct {
	Schema string
	Name   string
}

func (q QualifiedName) String() string {
	if q.Schema == "" {
		return q.Name
	}
	return q.Schema + "." + q.Name
}

// Key is the map key form: unqualified names and qualified names with an
// empty schema share representation, since "within a schema, duplicate
// unqualified names require differing schema qualifiers" is an invariant
// enforced at insert time, not at lookup time.
func (q QualifiedName) Key() string { return q.String() }

// Column is one table column: its declared name and inferred type. A
// column's type is Optional unless the column carries PRIMARY KEY or NOT
// NULL, and is wrapped in Alias when declared with a "TEXT AS UUID" suffix
// or a pragma type-alias.
type Column struct {
	Name string
	Type types.Type
}

// TableKind distinguishes how a Table entered the schema.
type TableKind uint8

const (
	KindNormal TableKind = iota
	KindView
	KindFTS5
	KindCTE
	KindSubquery
)

// Table is a relation: its qualified name, columns in declaration order,
// primary-key column names, and kind.
type Table struct {
	Name       QualifiedName
	Columns    []Column
	PrimaryKey []string
	Kind       TableKind
}

// Column looks up a column by name (case-insensitive, SQLite's default
// collation for identifiers), returning ok=false if absent.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if equalFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// Index is a CREATE INDEX entry; it does not affect typing directly but is
// retained so a backend can detect a covering unique index (used by the
// inferrer's cardinality analysis).
type Index struct {
	Name    string
	Table   QualifiedName
	Columns []string
	Unique  bool
}

// Trigger is a CREATE TRIGGER entry retained for completeness; its body is
// out of scope for typing.
type Trigger struct {
	Name  string
	Table QualifiedName
}

// View is a CREATE VIEW entry; its columns are the inferred SELECT output,
// stored alongside the underlying Table entry of the same name (Kind ==
// KindView) so the two stay in sync.
type View struct {
	Name   QualifiedName
	Select string
}

// Schema is the ordered mapping of qualified table names to column
// metadata described in the data model, plus side maps for indices,
// triggers, and views. Table insertion order is preserved because
// migrations are order-sensitive (ALTER TABLE RENAME reorders the map
// while keeping relative iteration order of the remaining tables).
type Schema struct {
	order   []QualifiedName
	tables  map[string]*Table
	Indices map[string]*Index
	Triggers map[string]*Trigger
	Views   map[string]*View
}

// New returns an empty schema.
func New() *Schema {
	return &Schema{
		tables:   make(map[string]*Table),
		Indices:  make(map[string]*Index),
		Triggers: make(map[string]*Trigger),
		Views:    make(map[string]*View),
	}
}

// Tables returns tables in insertion order. The returned slice is a fresh
// copy; the *Table values it holds are the schema's own.
func (s *Schema) Tables() []*Table {
	out := make([]*Table, 0, len(s.order))
	for _, name := range s.order {
		if t, ok := s.tables[name.Key()]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Table looks up a table by qualified name.
func (s *Schema) Table(name QualifiedName) (*Table, bool) {
	t, ok := s.tables[name.Key()]
	return t, ok
}

// Lookup resolves an unqualified or qualified name against the schema,
// trying an exact qualified match first and falling back to a bare-name
// match when the query omits the schema qualifier.
func (s *Schema) Lookup(schemaPart, name string) (*Table, bool) {
	if schemaPart != "" {
		return s.Table(QualifiedName{Schema: schemaPart, Name: name})
	}
	if t, ok := s.tables[(QualifiedName{Name: name}).Key()]; ok {
		return t, true
	}
	for _, q := range s.order {
		if equalFold(q.Name, name) {
			return s.tables[q.Key()], true
		}
	}
	return nil, false
}

// ErrTableExists is reported by CreateTable when a table with the same
// qualified name is already present and IF NOT EXISTS was not given.
type ErrTableExists struct{ Name QualifiedName }

func (e *ErrTableExists) Error() string { return fmt.Sprintf("table %q already exists", e.Name) }

// ErrTableNotExist is reported by any mutation targeting an absent table.
type ErrTableNotExist struct{ Name QualifiedName }

func (e *ErrTableNotExist) Error() string { return fmt.Sprintf("table %q does not exist", e.Name) }

// ErrColumnNotExist is reported by DROP COLUMN / RENAME COLUMN on an
// absent column.
type ErrColumnNotExist struct {
	Table  QualifiedName
	Column string
}

func (e *ErrColumnNotExist) Error() string {
	return fmt.Sprintf("column %q does not exist on table %q", e.Column, e.Table)
}

// ErrColumnExists is reported by ADD COLUMN when the column name collides.
type ErrColumnExists struct {
	Table  QualifiedName
	Column string
}

func (e *ErrColumnExists) Error() string {
	return fmt.Sprintf("column %q already exists on table %q", e.Column, e.Table)
}

// CreateTable inserts t at the end of iteration order. ifNotExists
// suppresses ErrTableExists.
func (s *Schema) CreateTable(t *Table, ifNotExists bool) error {
	key := t.Name.Key()
	if _, exists := s.tables[key]; exists {
		if ifNotExists {
			return nil
		}
		return &ErrTableExists{Name: t.Name}
	}
	s.tables[key] = t
	s.order = append(s.order, t.Name)
	return nil
}

// DropTable removes a table. ifExists suppresses ErrTableNotExist.
func (s *Schema) DropTable(name QualifiedName, ifExists bool) error {
	key := name.Key()
	if _, ok := s.tables[key]; !ok {
		if ifExists {
			return nil
		}
		return &ErrTableNotExist{Name: name}
	}
	delete(s.tables, key)
	for i, q := range s.order {
		if q.Key() == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// RenameTable moves a table to a new qualified name, preserving its
// position in iteration order and its column order.
func (s *Schema) RenameTable(old, newName QualifiedName) error {
	oldKey := old.Key()
	t, ok := s.tables[oldKey]
	if !ok {
		return &ErrTableNotExist{Name: old}
	}
	newKey := newName.Key()
	if _, exists := s.tables[newKey]; exists {
		return &ErrTableExists{Name: newName}
	}
	delete(s.tables, oldKey)
	t.Name = newName
	s.tables[newKey] = t
	for i, q := range s.order {
		if q.Key() == oldKey {
			s.order[i] = newName
			break
		}
	}
	return nil
}

// RenameColumn rebuilds t's column list preserving order, replacing old's
// name with newName.
func (s *Schema) RenameColumn(name QualifiedName, old, newName string) error {
	t, ok := s.tables[name.Key()]
	if !ok {
		return &ErrTableNotExist{Name: name}
	}
	found := false
	for i := range t.Columns {
		if equalFold(t.Columns[i].Name, old) {
			t.Columns[i].Name = newName
			found = true
			break
		}
	}
	if !found {
		return &ErrColumnNotExist{Table: name, Column: old}
	}
	for i, pk := range t.PrimaryKey {
		if equalFold(pk, old) {
			t.PrimaryKey[i] = newName
		}
	}
	return nil
}

// AddColumn appends col to t's column list.
func (s *Schema) AddColumn(name QualifiedName, col Column) error {
	t, ok := s.tables[name.Key()]
	if !ok {
		return &ErrTableNotExist{Name: name}
	}
	if _, exists := t.Column(col.Name); exists {
		return &ErrColumnExists{Table: name, Column: col.Name}
	}
	t.Columns = append(t.Columns, col)
	return nil
}

// DropColumn removes a column from t's column list.
func (s *Schema) DropColumn(name QualifiedName, col string) error {
	t, ok := s.tables[name.Key()]
	if !ok {
		return &ErrTableNotExist{Name: name}
	}
	for i := range t.Columns {
		if equalFold(t.Columns[i].Name, col) {
			t.Columns = append(t.Columns[:i], t.Columns[i+1:]...)
			return nil
		}
	}
	return &ErrColumnNotExist{Table: name, Column: col}
}

// AddIndex registers an index in the side map.
func (s *Schema) AddIndex(idx *Index) { s.Indices[idx.Name] = idx }

// DropIndex removes an index from the side map.
func (s *Schema) DropIndex(name string) { delete(s.Indices, name) }

// AddTrigger registers a trigger in the side map.
func (s *Schema) AddTrigger(tr *Trigger) { s.Triggers[tr.Name] = tr }

// DropTrigger removes a trigger from the side map.
func (s *Schema) DropTrigger(name string) { delete(s.Triggers, name) }

// AddView registers a view's side-map entry and its backing Table (whose
// Kind is KindView and whose Columns are the inferred SELECT output).
func (s *Schema) AddView(v *View, t *Table) error {
	t.Kind = KindView
	if err := s.CreateTable(t, false); err != nil {
		return err
	}
	s.Views[v.Name.Key()] = v
	return nil
}

// DropView removes a view's side-map entry and backing table.
func (s *Schema) DropView(name QualifiedName, ifExists bool) error {
	delete(s.Views, name.Key())
	return s.DropTable(name, ifExists)
}

// HasPrimaryKey reports whether colName is part of t's primary key.
func (t *Table) HasPrimaryKey(colName string) bool {
	for _, pk := range t.PrimaryKey {
		if equalFold(pk, colName) {
			return true
		}
	}
	return false
}

// UniquelyIdentifiedBy reports whether cols, as a set, covers every column
// of t's primary key; extra columns are allowed, and a table without a
// primary key is never uniquely identified (used by the inferrer to prove single-row cardinality from a
// WHERE clause's equality predicates).
func (t *Table) UniquelyIdentifiedBy(cols []string) bool {
	if len(t.PrimaryKey) == 0 || len(cols) < len(t.PrimaryKey) {
		return false
	}
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		seen[normalizeFold(c)] = true
	}
	for _, pk := range t.PrimaryKey {
		if !seen[normalizeFold(pk)] {
			return false
		}
	}
	return true
}

func equalFold(a, b string) bool { return normalizeFold(a) == normalizeFold(b) }

func normalizeFold(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}
