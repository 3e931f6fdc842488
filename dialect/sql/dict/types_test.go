package dict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/dbdict/dialect"
	"github.com/syssam/dbdict/dialect/sql"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

func TestTypeNamesComplete(t *testing.T) {
	for _, name := range Products() {
		d := mustDict(t, name)
		for _, typ := range schema.Types() {
			got := d.TypeName(&schema.Column{Type: typ, Size: 12})
			assert.NotEmpty(t, got, "%s/%s", name, typ)
			assert.NotContains(t, got, "{0}", "%s/%s", name, typ)
		}
		for _, fixed := range d.Capabilities().FixedSizeTypeNames {
			assert.Equal(t, fixed, d.AppendSize(fixed, &schema.Column{Type: schema.TypeVarchar, Size: 20}), "%s/%s", name, fixed)
		}
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		product string
		col     *schema.Column
		want    string
	}{
		{dialect.Oracle, &schema.Column{Type: schema.TypeVarchar}, "VARCHAR2(255)"},
		{dialect.Oracle, &schema.Column{Type: schema.TypeBoolean}, "NUMBER(1)"},
		{dialect.Oracle, &schema.Column{Type: schema.TypeUUID}, "VARCHAR2(36)"},
		{dialect.DB2, &schema.Column{Type: schema.TypeBinary, Size: 16}, "CHAR(16) FOR BIT DATA"},
		{dialect.DB2, &schema.Column{Type: schema.TypeBinary}, "CHAR FOR BIT DATA"},
		{dialect.MySQL, &schema.Column{Type: schema.TypeInteger, Size: 10}, "INTEGER"},
		{dialect.MySQL, &schema.Column{Type: schema.TypeTimestamp}, "DATETIME(6)"},
		{dialect.Postgres, &schema.Column{Type: schema.TypeNumeric, Size: 12, DecimalDigits: 4}, "NUMERIC(12, 4)"},
		{dialect.Postgres, &schema.Column{Type: schema.TypeBlob, Size: 100}, "BYTEA"},
		{dialect.SQLServer, &schema.Column{Type: schema.TypeClob}, "VARCHAR(MAX)"},
		{dialect.SQLite, &schema.Column{Type: schema.TypeTimestamp}, "DATETIME"},
		{dialect.Generic, &schema.Column{Type: schema.TypeVarchar, TypeName: "CITEXT"}, "CITEXT"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mustDict(t, tt.product).TypeName(tt.col), "%s/%s", tt.product, tt.col.Type)
	}

	unsigned := mustDict(t, dialect.MySQL, WithTypeName(schema.TypeBigInt, "BIGINT UNSIGNED"))
	assert.Equal(t, "BIGINT(20) UNSIGNED", unsigned.TypeName(&schema.Column{Type: schema.TypeBigInt, Size: 20}))

	old := mustDict(t, dialect.MySQL)
	old.SetVersion(Version{Major: 5, Minor: 5, Patch: 62})
	assert.Equal(t, "DATETIME", old.TypeName(&schema.Column{Type: schema.TypeTimestamp}))
}

func TestInsertSize(t *testing.T) {
	assert.Equal(t, "VARCHAR(20)", InsertSize("VARCHAR", "(20)"))
	assert.Equal(t, "INTEGER(10) UNSIGNED", InsertSize("INTEGER UNSIGNED", "(10)"))
	assert.Equal(t, "CHAR(8) FOR BIT DATA", InsertSize("CHAR({0}) FOR BIT DATA", "(8)"))
	assert.Equal(t, "FLOAT(53)", InsertSize("FLOAT({0})", "(53)"))
	assert.Equal(t, "DECIMAL(10, 2)", InsertSize("DECIMAL", "(10, 2)"))
}

func TestLiteral(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		product string
		v       any
		want    string
	}{
		{dialect.Postgres, []byte{0xab, 0x01}, `'\xAB01'::BYTEA`},
		{dialect.Postgres, true, "TRUE"},
		{dialect.Postgres, "it's", "'it''s'"},
		{dialect.MySQL, `a\b'c`, `'a\\b''c'`},
		{dialect.SQLServer, "x", "N'x'"},
		{dialect.SQLServer, sql.TypedValue(schema.TypeNVarchar, "y"), "N'y'"},
		{dialect.SQLServer, true, "1"},
		{dialect.Oracle, at, "TIMESTAMP '2024-01-02 03:04:05'"},
		{dialect.Oracle, false, "0"},
		{dialect.Oracle, sql.NullValue(schema.TypeInteger), "NULL"},
		{dialect.Oracle, sql.RawValue("SYSDATE"), "SYSDATE"},
		{dialect.Generic, 42, "42"},
		{dialect.Generic, nil, "NULL"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mustDict(t, tt.product).Literal(tt.v), "%s %v", tt.product, tt.v)
	}
}

func TestDefaultValue(t *testing.T) {
	ora := mustDict(t, dialect.Oracle)
	assert.Empty(t, ora.DefaultValue(&schema.Column{Name: "a"}))
	assert.Equal(t, "SYSTIMESTAMP", ora.DefaultValue(&schema.Column{Name: "a", Default: schema.Expr("SYSTIMESTAMP")}))
	assert.Equal(t, "0", ora.DefaultValue(&schema.Column{Name: "a", Type: schema.TypeBoolean, Default: false}))
	assert.Equal(t, "'new'", ora.DefaultValue(&schema.Column{Name: "a", Default: "new"}))
	assert.Equal(t, "1.5", ora.DefaultValue(&schema.Column{Name: "a", Default: 1.5}))
}

func TestMarkersAndVersionColumns(t *testing.T) {
	pg := mustDict(t, dialect.Postgres)
	assert.Equal(t, "CAST(? AS JSONB)", pg.MarkerForInsertUpdate(&schema.Column{Type: schema.TypeJSON}))
	assert.Equal(t, "?", pg.MarkerForInsertUpdate(&schema.Column{Type: schema.TypeJSON, TypeName: "JSON"}))
	assert.Equal(t, "?", pg.MarkerForInsertUpdate(nil))
	assert.Equal(t, "?", mustDict(t, dialect.MySQL).MarkerForInsertUpdate(&schema.Column{Type: schema.TypeJSON}))

	version := &schema.Column{Name: "version", Type: schema.TypeInteger, Version: schema.VersionNumber}
	assert.Equal(t, "t0.version", pg.VersionColumn(version, "t0"))
	assert.Equal(t, "version", pg.VersionColumn(version, ""))

	ms := mustDict(t, dialect.SQLServer)
	rv := &schema.Column{Name: "rv", TypeName: "rowversion", Version: schema.VersionNumber}
	assert.Equal(t, "CAST(t0.rv AS BIGINT)", ms.VersionColumn(rv, "t0"))
	assert.Equal(t, "t0.version", ms.VersionColumn(version, "t0"))
}
