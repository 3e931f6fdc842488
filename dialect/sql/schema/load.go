package schema

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-openapi/inflect"
	"gopkg.in/yaml.v3"
)

// File is the YAML representation of a schema.
//
//	tables:
//	  - entity: User            # table name defaults to "users"
//	    columns:
//	      - name: id
//	        type: bigint
//	        auto: true
//	      - field: displayName   # column name defaults to "display_name"
//	        type: varchar
//	        size: 64
//	        nullable: true
//	    primary_key: [id]
//	sequences:
//	  - name: user_seq
type File struct {
	Tables    []TableDef    `yaml:"tables"`
	Sequences []SequenceDef `yaml:"sequences"`
}

// TableDef is a table entry of a schema file.
type TableDef struct {
	Name        string          `yaml:"name"`
	Entity      string          `yaml:"entity"`
	Schema      string          `yaml:"schema"`
	Comment     string          `yaml:"comment"`
	Columns     []ColumnDef     `yaml:"columns"`
	PrimaryKey  KeyDef          `yaml:"primary_key"`
	ForeignKeys []ForeignKeyDef `yaml:"foreign_keys"`
	Uniques     []KeyDef        `yaml:"uniques"`
	Indexes     []IndexDef      `yaml:"indexes"`
}

// ColumnDef is a column entry of a table.
type ColumnDef struct {
	Name      string `yaml:"name"`
	Field     string `yaml:"field"`
	Type      string `yaml:"type"`
	TypeName  string `yaml:"type_name"`
	Size      int    `yaml:"size"`
	Decimals  int    `yaml:"decimals"`
	Nullable  bool   `yaml:"nullable"`
	Default   any    `yaml:"default"`
	DefaultFn string `yaml:"default_expr"`
	Unique    bool   `yaml:"unique"`
	Auto      bool   `yaml:"auto"`
	Version   string `yaml:"version"`
	Comment   string `yaml:"comment"`
}

// KeyDef is a named column list. It decodes from either a plain list of
// column names or a mapping with name, columns and deferred keys.
type KeyDef struct {
	Name     string   `yaml:"name"`
	Columns  []string `yaml:"columns"`
	Deferred bool     `yaml:"deferred"`
	Logical  bool     `yaml:"logical"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *KeyDef) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.SequenceNode {
		return n.Decode(&k.Columns)
	}
	type plain KeyDef
	return n.Decode((*plain)(k))
}

// ForeignKeyDef is a foreign key entry of a table.
type ForeignKeyDef struct {
	Name       string   `yaml:"name"`
	Columns    []string `yaml:"columns"`
	References struct {
		Table   string   `yaml:"table"`
		Columns []string `yaml:"columns"`
	} `yaml:"references"`
	OnDelete string `yaml:"on_delete"`
	OnUpdate string `yaml:"on_update"`
	Deferred bool   `yaml:"deferred"`
}

// IndexDef is an index entry of a table.
type IndexDef struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
	Unique  bool     `yaml:"unique"`
}

// SequenceDef is a sequence entry of a schema file.
type SequenceDef struct {
	Name      string `yaml:"name"`
	Schema    string `yaml:"schema"`
	Initial   int64  `yaml:"initial"`
	Increment int    `yaml:"increment"`
	Allocate  int    `yaml:"allocate"`
}

// Loaded is the result of loading a schema file.
type Loaded struct {
	Tables    []*Table
	Sequences []*Sequence
}

// Table returns the loaded table with the given name (case-insensitive).
func (l *Loaded) Table(name string) (*Table, bool) {
	for _, t := range l.Tables {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return nil, false
}

// LoadFile reads a YAML schema file.
func LoadFile(path string) (*Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	l, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", path, err)
	}
	return l, nil
}

// Load decodes a YAML schema and resolves column references.
func Load(r io.Reader) (*Loaded, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return f.Build()
}

// Build converts the file definitions into descriptors. Foreign keys may
// reference tables declared later in the file.
func (f *File) Build() (*Loaded, error) {
	l := &Loaded{}
	byName := make(map[string]*Table, len(f.Tables))
	for i := range f.Tables {
		t, err := f.Tables[i].table()
		if err != nil {
			return nil, err
		}
		key := strings.ToUpper(t.Name)
		if _, ok := byName[key]; ok {
			return nil, fmt.Errorf("table %q declared twice", t.Name)
		}
		byName[key] = t
		l.Tables = append(l.Tables, t)
	}
	// Primary keys first: foreign keys without columns reference them.
	for i := range f.Tables {
		if err := f.Tables[i].linkPrimaryKey(l.Tables[i]); err != nil {
			return nil, err
		}
	}
	for i := range f.Tables {
		if err := f.Tables[i].link(l.Tables[i], byName); err != nil {
			return nil, err
		}
	}
	for _, s := range f.Sequences {
		if s.Name == "" {
			return nil, fmt.Errorf("sequence without name")
		}
		seq := &Sequence{Name: s.Name, Schema: s.Schema, Initial: s.Initial, Increment: s.Increment, Allocate: s.Allocate}
		if seq.Initial == 0 {
			seq.Initial = 1
		}
		if seq.Increment == 0 {
			seq.Increment = 1
		}
		l.Sequences = append(l.Sequences, seq)
	}
	return l, nil
}

func (d *TableDef) table() (*Table, error) {
	name := d.Name
	if name == "" {
		if d.Entity == "" {
			return nil, fmt.Errorf("table without name or entity")
		}
		name = inflect.Tableize(d.Entity)
	}
	t := NewTable(name).SetSchema(d.Schema)
	t.Comment = d.Comment
	for _, cd := range d.Columns {
		c, err := cd.column()
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", name, err)
		}
		if _, ok := t.Column(c.Name); ok {
			return nil, fmt.Errorf("table %q: column %q declared twice", name, c.Name)
		}
		t.AddColumn(c)
	}
	return t, nil
}

func (d *ColumnDef) column() (*Column, error) {
	name := d.Name
	if name == "" {
		if d.Field == "" {
			return nil, fmt.Errorf("column without name or field")
		}
		name = inflect.Underscore(d.Field)
	}
	c := &Column{
		Name:          name,
		TypeName:      d.TypeName,
		Size:          d.Size,
		DecimalDigits: d.Decimals,
		Nullable:      d.Nullable,
		Unique:        d.Unique,
		AutoAssign:    d.Auto,
		Comment:       d.Comment,
	}
	if d.Type != "" {
		typ, err := ParseType(d.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		c.Type = typ
	} else if d.TypeName == "" {
		return nil, fmt.Errorf("column %q: missing type", name)
	}
	switch v := strings.ToLower(d.Version); v {
	case "":
	case "true", VersionNumber:
		c.Version = VersionNumber
	case VersionTimestamp:
		c.Version = VersionTimestamp
	default:
		return nil, fmt.Errorf("column %q: unknown version strategy %q", name, d.Version)
	}
	switch {
	case d.DefaultFn != "":
		c.Default = Expr(d.DefaultFn)
	case d.Default != nil:
		c.Default = d.Default
	}
	return c, nil
}

func (d *TableDef) linkPrimaryKey(t *Table) error {
	if len(d.PrimaryKey.Columns) == 0 {
		return nil
	}
	pk, err := columns(t, d.PrimaryKey.Columns)
	if err != nil {
		return fmt.Errorf("table %q: primary key: %w", t.Name, err)
	}
	t.SetPrimaryKey(d.PrimaryKey.Name, pk...)
	t.PrimaryKey.Logical = d.PrimaryKey.Logical
	return nil
}

func (d *TableDef) link(t *Table, tables map[string]*Table) error {
	cols := func(names []string) ([]*Column, error) {
		return columns(t, names)
	}
	for _, fd := range d.ForeignKeys {
		local, err := cols(fd.Columns)
		if err != nil {
			return fmt.Errorf("table %q: foreign key: %w", t.Name, err)
		}
		ref, ok := tables[strings.ToUpper(fd.References.Table)]
		if !ok {
			return fmt.Errorf("table %q: foreign key references unknown table %q", t.Name, fd.References.Table)
		}
		refNames := fd.References.Columns
		if len(refNames) == 0 && ref.PrimaryKey == nil {
			return fmt.Errorf("table %q: foreign key to %q needs referenced columns", t.Name, ref.Name)
		}
		var refCols []*Column
		if len(refNames) == 0 {
			refCols = ref.PrimaryKey.Columns
		} else if refCols, err = columns(ref, refNames); err != nil {
			return fmt.Errorf("table %q: foreign key: %w", t.Name, err)
		}
		fk := &ForeignKey{Name: fd.Name, Columns: local, RefTable: ref, RefColumns: refCols, Deferred: fd.Deferred}
		if fk.OnDelete, ok = ParseReferenceAction(fd.OnDelete); !ok {
			return fmt.Errorf("table %q: unknown on_delete action %q", t.Name, fd.OnDelete)
		}
		if fk.OnUpdate, ok = ParseReferenceAction(fd.OnUpdate); !ok {
			return fmt.Errorf("table %q: unknown on_update action %q", t.Name, fd.OnUpdate)
		}
		t.AddForeignKey(fk)
	}
	for _, ud := range d.Uniques {
		us, err := cols(ud.Columns)
		if err != nil {
			return fmt.Errorf("table %q: unique: %w", t.Name, err)
		}
		t.AddUnique(&Unique{Name: ud.Name, Columns: us, Deferred: ud.Deferred})
	}
	for _, id := range d.Indexes {
		is, err := cols(id.Columns)
		if err != nil {
			return fmt.Errorf("table %q: index: %w", t.Name, err)
		}
		t.AddIndex(&Index{Name: id.Name, Columns: is, Unique: id.Unique})
	}
	return nil
}

func columns(t *Table, names []string) ([]*Column, error) {
	cs := make([]*Column, 0, len(names))
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok {
			// Entity-style references use the field name.
			if c, ok = t.Column(inflect.Underscore(n)); !ok {
				return nil, fmt.Errorf("unknown column %q in table %q", n, t.Name)
			}
		}
		cs = append(cs, c)
	}
	return cs, nil
}
