package dict

import (
	"strconv"
	"strings"

	"github.com/syssam/dbdict/dialect/sql"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

// TypeName returns the SQL type of the column, with its size clause.
// An explicit column type name is used as is.
func (d *Dictionary) TypeName(col *schema.Column) string {
	if col.TypeName != "" {
		return col.TypeName
	}
	c := d.Capabilities()
	name, ok := c.TypeNames[col.Type]
	if !ok || name == "" {
		name = c.TypeNames[schema.TypeOther]
	}
	return d.AppendSize(name, col)
}

// AppendSize appends the size clause of the column to the type name.
// Fixed-size types and names that already carry a size are returned as is.
// Character columns without a size get CharacterColumnSize.
func (d *Dictionary) AppendSize(name string, col *schema.Column) string {
	if d.IsFixedSizeType(name) {
		return strings.ReplaceAll(name, "({0})", "")
	}
	size := col.Size
	if size <= 0 && col.Type.IsCharacter() {
		size = d.Capabilities().CharacterColumnSize
	}
	if size <= 0 {
		return strings.ReplaceAll(name, "({0})", "")
	}
	if !strings.Contains(name, "{0}") && strings.Contains(name, "(") {
		return name
	}
	clause := strconv.Itoa(size)
	if col.DecimalDigits > 0 && (col.Type == schema.TypeDecimal || col.Type == schema.TypeNumeric) {
		clause += ", " + strconv.Itoa(col.DecimalDigits)
	}
	return InsertSize(name, "("+clause+")")
}

// InsertSize inserts the size clause into a type name. The clause replaces
// a "({0})" token when present; otherwise it goes before any modifier
// suffix, e.g. "INTEGER UNSIGNED" becomes "INTEGER(10) UNSIGNED".
func InsertSize(name, size string) string {
	if strings.Contains(name, "({0})") {
		return strings.Replace(name, "({0})", size, 1)
	}
	if strings.Contains(name, "{0}") {
		return strings.Replace(name, "{0}", strings.Trim(size, "()"), 1)
	}
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i] + size + name[i:]
	}
	return name + size
}

// IsFixedSizeType reports whether the type name never takes a size clause.
func (d *Dictionary) IsFixedSizeType(name string) bool {
	return d.Capabilities().isFixedSize(name)
}

// MarkerForInsertUpdate returns the placeholder expression of a value
// written to the column, e.g. a cast for JSON columns.
func (d *Dictionary) MarkerForInsertUpdate(col *schema.Column) string {
	if d.p.marker != nil && col != nil {
		if m := d.p.marker(col); m != "" {
			return m
		}
	}
	return "?"
}

// VersionColumn returns the expression comparing the optimistic-lock
// column in a WHERE clause. alias may be empty.
func (d *Dictionary) VersionColumn(col *schema.Column, alias string) string {
	name := d.QuoteIdent(col.Name)
	if alias != "" {
		name = d.QuoteIdent(alias) + "." + name
	}
	if d.p.versionColumn != nil {
		return d.p.versionColumn(col, name)
	}
	return name
}

// Literal renders v as a SQL literal of the product.
func (d *Dictionary) Literal(v any) string {
	c := d.Capabilities()
	if val, ok := v.(sql.Value); ok {
		switch val.Kind() {
		case sql.Unset, sql.Null:
			return "NULL"
		case sql.Raw:
			return val.SQL()
		}
		v = val.Data()
	}
	if d.p.literal != nil {
		if s := d.p.literal(c, v); s != "" {
			return s
		}
	}
	if b, ok := v.(bool); ok && !c.SupportsBooleanType {
		if b {
			return "1"
		}
		return "0"
	}
	return sql.FormatLiteral(v)
}

// DefaultValue renders the default of the column, or "" when it has none.
func (d *Dictionary) DefaultValue(col *schema.Column) string {
	switch v := col.Default.(type) {
	case nil:
		return ""
	case schema.Expr:
		return string(v)
	}
	return d.Literal(col.Default)
}
