package dict

import (
	"time"

	"github.com/syssam/dbdict/dialect"
	"github.com/syssam/dbdict/dialect/sql"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

func init() {
	register(&product{
		name:     dialect.Postgres,
		defaults: postgresDefaults,
		reserved: []string{
			"ANALYSE", "ANALYZE", "ARRAY", "ASYMMETRIC", "BOTH", "CONCURRENTLY", "DO",
			"FREEZE", "ILIKE", "ISNULL", "LATERAL", "LIMIT", "NOTNULL", "OFFSET",
			"PLACING", "RETURNING", "SYMMETRIC", "VARIADIC", "VERBOSE", "WINDOW",
		},
		systemSchemas: []string{"pg_catalog", "information_schema", "pg_toast"},
		versionQuery:  "SHOW server_version",
		lockTimeout: func(d time.Duration) (string, int) {
			return "lock_timeout", int(d.Milliseconds())
		},
		overlay: func(v Version, c *Capabilities) {
			if !v.AtLeast(10, 0, 0) {
				c.AutoAssignTypeName = "BIGSERIAL"
				c.AutoAssignClause = ""
			}
		},
		appendRange: func(_ *Capabilities, b *sql.Buffer, _ sql.Select, start, end int64) {
			limitOffset(b, start, end)
		},
		forUpdate: func(c *Capabilities, sel sql.Select) string {
			// Joined selects lock the rows of the first table only; the
			// nullable side of an outer join cannot be locked.
			if ts := sel.Tables(); len(sel.Joins()) > 0 && len(ts) > 0 && ts[0].Alias != "" {
				return c.ForUpdateClause + " OF " + ts[0].Alias
			}
			return c.ForUpdateClause
		},
		marker: func(col *schema.Column) string {
			if col.Type == schema.TypeJSON && col.TypeName == "" {
				return "CAST(? AS JSONB)"
			}
			return ""
		},
		literal: func(_ *Capabilities, v any) string {
			if b, ok := v.([]byte); ok {
				return "'\\x" + sql.FormatLiteral(b)[2:] + "::BYTEA"
			}
			return ""
		},
	})
}

func postgresDefaults(c *Capabilities) {
	c.MaxTableNameLength = 63
	c.MaxColumnNameLength = 63
	c.MaxConstraintNameLength = 63
	c.MaxIndexNameLength = 63
	c.MaxSequenceNameLength = 63
	c.SchemaCase = CaseLower
	c.Placeholder = PlaceholderDollar
	c.SupportsSelectStartIndex = true
	c.SupportsSelectEndIndex = true
	c.SupportsLockingWithDistinctClause = false
	c.SupportsSequences = true
	c.NextSequenceQuery = "SELECT NEXTVAL('{0}')"
	c.SequenceCacheClause = "CACHE {0}"
	c.AutoAssignClause = "GENERATED BY DEFAULT AS IDENTITY"
	c.CommentStyle = CommentOn
	c.DatePrecision = 6
	c.TypeNames[schema.TypeBit] = "BOOLEAN"
	c.TypeNames[schema.TypeTinyInt] = "SMALLINT"
	c.TypeNames[schema.TypeDouble] = "DOUBLE PRECISION"
	c.TypeNames[schema.TypeFloat] = "DOUBLE PRECISION"
	c.TypeNames[schema.TypeLongVarchar] = "TEXT"
	c.TypeNames[schema.TypeNChar] = "CHAR"
	c.TypeNames[schema.TypeNVarchar] = "VARCHAR"
	c.TypeNames[schema.TypeClob] = "TEXT"
	c.TypeNames[schema.TypeNClob] = "TEXT"
	c.TypeNames[schema.TypeBinary] = "BYTEA"
	c.TypeNames[schema.TypeVarbinary] = "BYTEA"
	c.TypeNames[schema.TypeLongVarbinary] = "BYTEA"
	c.TypeNames[schema.TypeBlob] = "BYTEA"
	c.TypeNames[schema.TypeUUID] = "UUID"
	c.TypeNames[schema.TypeJSON] = "JSONB"
	c.TypeNames[schema.TypeXML] = "XML"
	c.TypeNames[schema.TypeOther] = "BYTEA"
	c.FixedSizeTypeNames = append(c.FixedSizeTypeNames,
		"BYTEA", "TEXT", "UUID", "JSONB", "XML", "DOUBLE PRECISION", "BIGSERIAL", "SERIAL")
}
