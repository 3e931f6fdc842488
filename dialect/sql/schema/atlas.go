package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	atlas "ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/dbdict/dialect"
)

// Inspect reads the schema of a live database through the atlas driver of
// the product and converts it into descriptors. An empty name inspects the
// schema the connection is bound to.
func Inspect(ctx context.Context, product string, db *sql.DB, name string) ([]*Table, error) {
	var (
		drv migrate.Driver
		err error
	)
	switch product {
	case dialect.SQLite:
		drv, err = sqlite.Open(db)
	case dialect.MySQL:
		drv, err = mysql.Open(db)
	case dialect.Postgres:
		drv, err = postgres.Open(db)
	default:
		return nil, fmt.Errorf("schema: inspect: unsupported dialect %q", product)
	}
	if err != nil {
		return nil, fmt.Errorf("schema: inspect: open %s driver: %w", product, err)
	}
	s, err := drv.InspectSchema(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("schema: inspect: %w", err)
	}
	return FromAtlas(s)
}

// FromAtlas converts an atlas schema into descriptors.
func FromAtlas(s *atlas.Schema) ([]*Table, error) {
	tables := make([]*Table, 0, len(s.Tables))
	byName := make(map[*atlas.Table]*Table, len(s.Tables))
	for _, at := range s.Tables {
		t := NewTable(at.Name)
		if s.Name != "" {
			t.SetSchema(s.Name)
		}
		for _, a := range at.Attrs {
			if c, ok := a.(*atlas.Comment); ok {
				t.Comment = c.Text
			}
		}
		for _, ac := range at.Columns {
			t.AddColumn(fromAtlasColumn(ac))
		}
		if pk := at.PrimaryKey; pk != nil {
			cols, err := atlasParts(t, pk.Parts)
			if err != nil {
				return nil, fmt.Errorf("schema: table %q: primary key: %w", at.Name, err)
			}
			// SQLite reports INTEGER PRIMARY KEY columns as nullable.
			for _, c := range cols {
				c.Nullable = false
			}
			t.SetPrimaryKey(pk.Name, cols...)
		}
		for _, ai := range at.Indexes {
			cols, err := atlasParts(t, ai.Parts)
			if err != nil {
				// Expression indexes have no column representation.
				continue
			}
			t.AddIndex(&Index{Name: ai.Name, Columns: cols, Unique: ai.Unique})
		}
		byName[at] = t
		tables = append(tables, t)
	}
	for _, at := range s.Tables {
		t := byName[at]
		for _, afk := range at.ForeignKeys {
			ref, ok := byName[afk.RefTable]
			if !ok {
				return nil, fmt.Errorf("schema: table %q: foreign key %q references a table outside the schema", at.Name, afk.Symbol)
			}
			fk := &ForeignKey{Name: afk.Symbol, RefTable: ref}
			for _, c := range afk.Columns {
				lc, ok := t.Column(c.Name)
				if !ok {
					return nil, fmt.Errorf("schema: table %q: unknown column %q", at.Name, c.Name)
				}
				fk.Columns = append(fk.Columns, lc)
			}
			for _, c := range afk.RefColumns {
				rc, ok := ref.Column(c.Name)
				if !ok {
					return nil, fmt.Errorf("schema: table %q: unknown column %q", ref.Name, c.Name)
				}
				fk.RefColumns = append(fk.RefColumns, rc)
			}
			fk.OnDelete, _ = ParseReferenceAction(string(afk.OnDelete))
			fk.OnUpdate, _ = ParseReferenceAction(string(afk.OnUpdate))
			t.AddForeignKey(fk)
		}
	}
	return tables, nil
}

func atlasParts(t *Table, parts []*atlas.IndexPart) ([]*Column, error) {
	cols := make([]*Column, 0, len(parts))
	for _, p := range parts {
		if p.C == nil {
			return nil, fmt.Errorf("expression part at position %d", p.SeqNo)
		}
		c, ok := t.Column(p.C.Name)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", p.C.Name)
		}
		cols = append(cols, c)
	}
	return cols, nil
}

func fromAtlasColumn(ac *atlas.Column) *Column {
	c := &Column{Name: ac.Name}
	if ac.Type != nil {
		c.Nullable = ac.Type.Null
		fromAtlasType(c, ac.Type.Type, ac.Type.Raw)
	}
	switch d := ac.Default.(type) {
	case *atlas.Literal:
		c.Default = literalValue(d.V)
	case *atlas.RawExpr:
		c.Default = Expr(d.X)
	}
	for _, a := range ac.Attrs {
		switch a := a.(type) {
		case *sqlite.AutoIncrement, *mysql.AutoIncrement, *postgres.Identity:
			c.AutoAssign = true
		case *atlas.Comment:
			c.Comment = a.Text
		}
	}
	return c
}

func literalValue(v string) any {
	if len(v) >= 2 && (v[0] == '\'' || v[0] == '"') && v[len(v)-1] == v[0] {
		return strings.ReplaceAll(v[1:len(v)-1], "''", "'")
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	switch strings.ToLower(v) {
	case "true":
		return true
	case "false":
		return false
	}
	return Expr(v)
}

func fromAtlasType(c *Column, typ atlas.Type, raw string) {
	switch t := typ.(type) {
	case *atlas.BoolType:
		c.Type = TypeBoolean
	case *atlas.IntegerType:
		switch strings.ToLower(t.T) {
		case "tinyint", "int1":
			c.Type = TypeTinyInt
		case "smallint", "int2":
			c.Type = TypeSmallInt
		case "bigint", "int8":
			c.Type = TypeBigInt
		default:
			c.Type = TypeInteger
		}
	case *atlas.DecimalType:
		c.Type = TypeDecimal
		if strings.EqualFold(t.T, "numeric") {
			c.Type = TypeNumeric
		}
		c.Size, c.DecimalDigits = t.Precision, t.Scale
	case *atlas.FloatType:
		switch strings.ToLower(t.T) {
		case "real", "float4":
			c.Type = TypeReal
		case "double", "double precision", "float8":
			c.Type = TypeDouble
		default:
			c.Type = TypeFloat
		}
	case *atlas.StringType:
		name := strings.ToLower(t.T)
		switch {
		case strings.Contains(name, "text"), strings.Contains(name, "clob"):
			c.Type = TypeClob
		case strings.HasPrefix(name, "nvarchar"), strings.HasPrefix(name, "national character varying"):
			c.Type = TypeNVarchar
		case strings.HasPrefix(name, "nchar"):
			c.Type = TypeNChar
		case strings.Contains(name, "varying"), strings.Contains(name, "varchar"):
			c.Type = TypeVarchar
		default:
			c.Type = TypeChar
		}
		if c.Type != TypeClob {
			c.Size = t.Size
		}
	case *atlas.BinaryType:
		name := strings.ToLower(t.T)
		switch {
		case strings.Contains(name, "blob"), name == "bytea", name == "image":
			c.Type = TypeBlob
		case name == "binary":
			c.Type = TypeBinary
		default:
			c.Type = TypeVarbinary
		}
		if t.Size != nil && c.Type != TypeBlob {
			c.Size = *t.Size
		}
	case *atlas.TimeType:
		name := strings.ToLower(t.T)
		switch {
		case name == "date":
			c.Type = TypeDate
		case strings.Contains(name, "tz"), strings.Contains(name, "with time zone"):
			c.Type = TypeTimestampTZ
		case strings.HasPrefix(name, "time") && !strings.HasPrefix(name, "timestamp"):
			c.Type = TypeTime
		default:
			c.Type = TypeTimestamp
		}
	case *atlas.JSONType:
		c.Type = TypeJSON
	case *atlas.UUIDType:
		c.Type = TypeUUID
	case *atlas.EnumType:
		c.Type, c.Size = TypeVarchar, enumSize(t.Values)
	default:
		c.Type, c.TypeName = TypeOther, raw
	}
}

func enumSize(values []string) int {
	n := 1
	for _, v := range values {
		n = max(n, len(v))
	}
	return n
}
