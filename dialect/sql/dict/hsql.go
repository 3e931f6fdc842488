package dict

import (
	"strconv"

	"github.com/syssam/dbdict/dialect"
	"github.com/syssam/dbdict/dialect/sql"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

func init() {
	register(&product{
		name:          dialect.HSQL,
		defaults:      hsqlDefaults,
		reserved:      []string{"LIMIT", "OFFSET", "TOP"},
		systemSchemas: []string{"INFORMATION_SCHEMA", "SYSTEM_LOBS"},
		versionQuery:  "CALL DATABASE_VERSION()",
		overlay: func(v Version, c *Capabilities) {
			if v.Major < 2 {
				c.RangePosition = RangePreDistinct
				c.AutoAssignClause = "GENERATED BY DEFAULT AS IDENTITY (START WITH 1)"
				c.SupportsLockingWithSelectRange = false
			}
		},
		appendRange: func(c *Capabilities, b *sql.Buffer, _ sql.Select, start, end int64) {
			if c.RangePosition != RangePreDistinct {
				limitOffset(b, start, end)
				return
			}
			// LIMIT <offset> <count> where a count of 0 means no limit.
			n := int64(0)
			if end != sql.NoLimit {
				n = end - start
			}
			b.Append("LIMIT ").Append(strconv.FormatInt(start, 10)).Append(" ").Append(strconv.FormatInt(n, 10)).Append(" ")
		},
	})
}

func hsqlDefaults(c *Capabilities) {
	c.SupportsSelectStartIndex = true
	c.SupportsSelectEndIndex = true
	c.SupportsDeferredConstraints = false
	c.SupportsSequences = true
	c.NextSequenceQuery = "CALL NEXT VALUE FOR {0}"
	c.AutoAssignClause = "GENERATED BY DEFAULT AS IDENTITY"
	c.CommentStyle = CommentOn
	c.DatePrecision = 9
	c.TypeNames[schema.TypeUUID] = "UUID"
	c.TypeNames[schema.TypeXML] = "CLOB"
	c.FixedSizeTypeNames = append(c.FixedSizeTypeNames, "UUID")
}
