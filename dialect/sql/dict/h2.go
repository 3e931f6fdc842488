package dict

import (
	"github.com/syssam/dbdict/dialect"
	"github.com/syssam/dbdict/dialect/sql"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

func init() {
	register(&product{
		name:          dialect.H2,
		defaults:      h2Defaults,
		reserved:      []string{"LIMIT", "MINUS", "OFFSET", "QUALIFY", "ROWNUM", "TOP", "_ROWID_"},
		systemSchemas: []string{"INFORMATION_SCHEMA"},
		versionQuery:  "SELECT H2VERSION()",
		overlay: func(v Version, c *Capabilities) {
			if v.Major < 2 {
				c.AutoAssignClause = "AUTO_INCREMENT"
			}
		},
		appendRange: func(_ *Capabilities, b *sql.Buffer, _ sql.Select, start, end int64) {
			limitOffset(b, start, end)
		},
	})
}

func h2Defaults(c *Capabilities) {
	c.MaxTableNameLength = 256
	c.MaxColumnNameLength = 256
	c.MaxConstraintNameLength = 256
	c.MaxIndexNameLength = 256
	c.MaxSequenceNameLength = 256
	c.SupportsSelectStartIndex = true
	c.SupportsSelectEndIndex = true
	c.SupportsLockingWithDistinctClause = false
	c.SupportsDeferredConstraints = false
	c.SupportsSequences = true
	c.NextSequenceQuery = "SELECT NEXT VALUE FOR {0}"
	c.SequenceCacheClause = "CACHE {0}"
	c.AutoAssignClause = "GENERATED BY DEFAULT AS IDENTITY"
	c.CommentStyle = CommentOn
	c.DatePrecision = 9
	c.TypeNames[schema.TypeBit] = "BOOLEAN"
	c.TypeNames[schema.TypeLongVarchar] = "CLOB"
	c.TypeNames[schema.TypeLongVarbinary] = "BLOB"
	c.TypeNames[schema.TypeUUID] = "UUID"
	c.TypeNames[schema.TypeJSON] = "JSON"
	c.FixedSizeTypeNames = append(c.FixedSizeTypeNames, "UUID", "JSON")
}
