// Package schema holds the read-only schema descriptors consumed by the
// dictionary and the row builder: tables, columns, keys, indexes and
// sequences. Descriptors are populated once (by hand, by the YAML loader or
// from an atlas-inspected schema) and are not mutated afterwards.
package schema

import (
	"strings"
)

// Expr is a raw SQL expression used as a column default, e.g. CURRENT_TIMESTAMP.
type Expr string

// ReferenceAction is the action taken on a foreign key when the referenced
// row is deleted or updated.
type ReferenceAction int

const (
	// NoAction raises an error on violation and renders no clause.
	NoAction ReferenceAction = iota
	// Restrict renders RESTRICT.
	Restrict
	// Cascade renders CASCADE.
	Cascade
	// SetNull renders SET NULL.
	SetNull
	// SetDefault renders SET DEFAULT.
	SetDefault
	// Logical marks a foreign key that exists only in the mapping layer.
	// No database constraint is ever emitted for it.
	Logical
)

// String returns the SQL keyword of the action, or "" when none is rendered.
func (a ReferenceAction) String() string {
	switch a {
	case Restrict:
		return "RESTRICT"
	case Cascade:
		return "CASCADE"
	case SetNull:
		return "SET NULL"
	case SetDefault:
		return "SET DEFAULT"
	default:
		return ""
	}
}

// ParseReferenceAction parses an action name such as "cascade" or "set null".
func ParseReferenceAction(s string) (ReferenceAction, bool) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "_", " ")) {
	case "", "NO ACTION", "NONE":
		return NoAction, true
	case "RESTRICT":
		return Restrict, true
	case "CASCADE":
		return Cascade, true
	case "SET NULL", "NULL":
		return SetNull, true
	case "SET DEFAULT", "DEFAULT":
		return SetDefault, true
	case "LOGICAL":
		return Logical, true
	}
	return NoAction, false
}

// Version strategies of optimistic-lock columns.
const (
	VersionNumber    = "number"
	VersionTimestamp = "timestamp"
)

// Column describes a table column.
type Column struct {
	Name          string
	Type          Type
	TypeName      string // explicit type name; overrides the dialect type table
	Size          int
	DecimalDigits int
	Nullable      bool
	Default       any // nil, Expr, string, bool or a number
	Unique        bool
	AutoAssign    bool
	Version       string // non-empty marks an optimistic-lock column
	Comment       string

	table *Table
	index int
}

// Table returns the table owning the column, or nil for a detached column.
func (c *Column) Table() *Table { return c.table }

// Index returns the position of the column in its table.
func (c *Column) Index() int { return c.index }

// HasDefault reports whether the column declares a default value.
func (c *Column) HasDefault() bool { return c.Default != nil }

// NotNull reports whether the column rejects NULL values.
func (c *Column) NotNull() bool { return !c.Nullable }

// IsVersion reports whether the column carries an optimistic-lock strategy.
func (c *Column) IsVersion() bool { return c.Version != "" }

// PrimaryKey describes the primary key of a table.
type PrimaryKey struct {
	Name    string
	Columns []*Column
	Logical bool // exists in the mapping only; no constraint is emitted
	table   *Table
}

// Table returns the owning table.
func (pk *PrimaryKey) Table() *Table { return pk.table }

// ForeignKey describes a foreign key constraint.
type ForeignKey struct {
	Name       string
	Columns    []*Column
	RefTable   *Table
	RefColumns []*Column
	OnDelete   ReferenceAction
	OnUpdate   ReferenceAction
	Deferred   bool
	table      *Table
}

// Table returns the owning table.
func (fk *ForeignKey) Table() *Table { return fk.table }

// Unique describes a unique constraint.
type Unique struct {
	Name     string
	Columns  []*Column
	Deferred bool
	table    *Table
}

// Table returns the owning table.
func (u *Unique) Table() *Table { return u.table }

// Index describes a table index.
type Index struct {
	Name    string
	Columns []*Column
	Unique  bool
	table   *Table
}

// Table returns the owning table.
func (i *Index) Table() *Table { return i.table }

// Sequence describes a database sequence.
type Sequence struct {
	Name      string
	Schema    string
	Initial   int64
	Increment int
	Allocate  int
}

// Table describes a database table.
type Table struct {
	Name        string
	Schema      string
	Comment     string
	Columns     []*Column
	PrimaryKey  *PrimaryKey
	ForeignKeys []*ForeignKey
	Uniques     []*Unique
	Indexes     []*Index

	columns map[string]*Column
}

// NewTable returns a new table with the given name.
func NewTable(name string) *Table {
	return &Table{Name: name, columns: make(map[string]*Column)}
}

// SetSchema sets the schema of the table.
func (t *Table) SetSchema(s string) *Table {
	t.Schema = s
	return t
}

// AddColumn appends a column to the table.
func (t *Table) AddColumn(c *Column) *Table {
	if t.columns == nil {
		t.columns = make(map[string]*Column)
	}
	c.table = t
	c.index = len(t.Columns)
	t.Columns = append(t.Columns, c)
	t.columns[strings.ToUpper(c.Name)] = c
	return t
}

// AddColumns appends the columns to the table.
func (t *Table) AddColumns(cs ...*Column) *Table {
	for _, c := range cs {
		t.AddColumn(c)
	}
	return t
}

// Column returns the column with the given name (case-insensitive).
func (t *Table) Column(name string) (*Column, bool) {
	if t.columns == nil {
		t.reindex()
	}
	c, ok := t.columns[strings.ToUpper(name)]
	return c, ok
}

// HasColumn reports whether the column belongs to the table.
func (t *Table) HasColumn(c *Column) bool {
	return c != nil && c.table == t && c.index < len(t.Columns) && t.Columns[c.index] == c
}

// reindex rebuilds the lookup map and back references for tables built as
// struct literals.
func (t *Table) reindex() {
	t.columns = make(map[string]*Column, len(t.Columns))
	for i, c := range t.Columns {
		c.table, c.index = t, i
		t.columns[strings.ToUpper(c.Name)] = c
	}
}

// SetPrimaryKey sets the primary key of the table.
func (t *Table) SetPrimaryKey(name string, cols ...*Column) *Table {
	t.PrimaryKey = &PrimaryKey{Name: name, Columns: cols, table: t}
	return t
}

// AddForeignKey adds a foreign key to the table.
func (t *Table) AddForeignKey(fk *ForeignKey) *Table {
	fk.table = t
	t.ForeignKeys = append(t.ForeignKeys, fk)
	return t
}

// AddUnique adds a unique constraint to the table.
func (t *Table) AddUnique(u *Unique) *Table {
	u.table = t
	t.Uniques = append(t.Uniques, u)
	return t
}

// AddIndex adds an index to the table.
func (t *Table) AddIndex(idx *Index) *Table {
	idx.table = t
	t.Indexes = append(t.Indexes, idx)
	return t
}

// Attach sets the back references of keys, constraints and columns built as
// struct literals.
func (t *Table) Attach() *Table {
	t.reindex()
	if t.PrimaryKey != nil {
		t.PrimaryKey.table = t
	}
	for _, fk := range t.ForeignKeys {
		fk.table = t
	}
	for _, u := range t.Uniques {
		u.table = t
	}
	for _, idx := range t.Indexes {
		idx.table = t
	}
	return t
}

// AutoAssignColumns returns the columns whose values are assigned by the database.
func (t *Table) AutoAssignColumns() []*Column {
	var cs []*Column
	for _, c := range t.Columns {
		if c.AutoAssign {
			cs = append(cs, c)
		}
	}
	return cs
}

// VersionColumns returns the optimistic-lock columns of the table.
func (t *Table) VersionColumns() []*Column {
	var cs []*Column
	for _, c := range t.Columns {
		if c.IsVersion() {
			cs = append(cs, c)
		}
	}
	return cs
}

// IsNameTaken reports whether a column or constraint of the table already
// uses the name. It makes a table usable as a NameSet for column and
// constraint names.
func (t *Table) IsNameTaken(name string) bool {
	if _, ok := t.Column(name); ok {
		return true
	}
	eq := func(s string) bool { return s != "" && strings.EqualFold(s, name) }
	if t.PrimaryKey != nil && eq(t.PrimaryKey.Name) {
		return true
	}
	for _, fk := range t.ForeignKeys {
		if eq(fk.Name) {
			return true
		}
	}
	for _, u := range t.Uniques {
		if eq(u.Name) {
			return true
		}
	}
	for _, idx := range t.Indexes {
		if eq(idx.Name) {
			return true
		}
	}
	return false
}

// NameSet reports names already in use within a scope.
type NameSet interface {
	IsNameTaken(name string) bool
}

// Names is a case-insensitive NameSet.
type Names struct {
	set map[string]struct{}
}

// NewNames returns a name set holding the given names.
func NewNames(names ...string) *Names {
	n := &Names{set: make(map[string]struct{}, len(names))}
	for _, s := range names {
		n.Add(s)
	}
	return n
}

// Add records the name as taken.
func (n *Names) Add(name string) {
	if n.set == nil {
		n.set = make(map[string]struct{})
	}
	n.set[strings.ToUpper(name)] = struct{}{}
}

// IsNameTaken implements NameSet.
func (n *Names) IsNameTaken(name string) bool {
	if n == nil {
		return false
	}
	_, ok := n.set[strings.ToUpper(name)]
	return ok
}

// Len returns the number of names in the set.
func (n *Names) Len() int {
	if n == nil {
		return 0
	}
	return len(n.set)
}

var _ NameSet = (*Table)(nil)
