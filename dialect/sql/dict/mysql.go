package dict

import (
	"strconv"
	"strings"
	"time"

	"github.com/syssam/dbdict"
	"github.com/syssam/dbdict/dialect"
	"github.com/syssam/dbdict/dialect/sql"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

func init() {
	register(&product{
		name:     dialect.MySQL,
		aliases:  []string{dialect.MariaDB},
		defaults: mysqlDefaults,
		reserved: []string{
			"ACCESSIBLE", "ANALYZE", "CHANGE", "DATABASE", "DATABASES", "DELAYED", "DISTINCTROW",
			"DIV", "DUAL", "ENCLOSED", "ESCAPED", "EXPLAIN", "FULLTEXT", "GROUPS", "HIGH_PRIORITY",
			"IGNORE", "INDEX", "INFILE", "KEY", "KEYS", "KILL", "LIMIT", "LINES", "LOAD", "LOCK",
			"LONG", "LOW_PRIORITY", "OPTIMIZE", "OPTIONALLY", "OUTFILE", "PURGE", "RANK", "READS",
			"REGEXP", "RENAME", "REPLACE", "RLIKE", "SCHEMAS", "SEPARATOR", "SHOW", "SPATIAL",
			"STARTING", "STRAIGHT_JOIN", "TERMINATED", "UNLOCK", "UNSIGNED", "USE", "ZEROFILL",
		},
		systemSchemas: []string{"mysql", "information_schema", "performance_schema", "sys"},
		versionQuery:  "SELECT VERSION()",
		lockTimeout: func(d time.Duration) (string, int) {
			// Whole seconds, at least one.
			return "innodb_lock_wait_timeout", max(int((d+time.Second-1)/time.Second), 1)
		},
		overlay: func(v Version, c *Capabilities) {
			if v.Flavor == dialect.MariaDB {
				if v.AtLeast(10, 3, 0) {
					c.SupportsSequences = true
					c.NextSequenceQuery = "SELECT NEXTVAL({0})"
					c.SequenceCacheClause = "CACHE {0}"
				}
				return
			}
			if !v.AtLeast(5, 6, 4) {
				c.DatePrecision = 0
				c.TypeNames[schema.TypeTimestamp] = "DATETIME"
				c.TypeNames[schema.TypeTimestampTZ] = "DATETIME"
			}
		},
		appendRange: func(_ *Capabilities, b *sql.Buffer, _ sql.Select, start, end int64) {
			b.Append(" LIMIT ")
			if start > 0 {
				b.Append(strconv.FormatInt(start, 10)).Append(", ")
			}
			if end == sql.NoLimit {
				b.Append("18446744073709551615")
				return
			}
			b.Append(strconv.FormatInt(end-start, 10))
		},
		literal: func(_ *Capabilities, v any) string {
			// Backslashes escape in string literals unless
			// NO_BACKSLASH_ESCAPES is set.
			if s, ok := v.(string); ok {
				return sql.FormatLiteral(strings.ReplaceAll(s, `\`, `\\`))
			}
			return ""
		},
		codes: map[int]dbdict.Kind{
			1062: dbdict.KindObjectExists,
			1451: dbdict.KindReferentialIntegrity,
			1452: dbdict.KindReferentialIntegrity,
			1048: dbdict.KindReferentialIntegrity,
			1406: dbdict.KindReferentialIntegrity,
			1205: dbdict.KindLock,
			1213: dbdict.KindLock,
			3572: dbdict.KindLock,
			3024: dbdict.KindQueryTimeout,
			1317: dbdict.KindQueryTimeout,
		},
	})
}

func mysqlDefaults(c *Capabilities) {
	c.MaxTableNameLength = 64
	c.MaxColumnNameLength = 64
	c.MaxConstraintNameLength = 64
	c.MaxIndexNameLength = 64
	c.MaxSequenceNameLength = 64
	c.MaxIndexesPerTable = 64
	c.LeadingDelimiter = "`"
	c.TrailingDelimiter = "`"
	c.SchemaCase = CasePreserve
	c.SupportsSelectStartIndex = true
	c.SupportsSelectEndIndex = true
	c.SupportsDeferredConstraints = false
	c.SupportsDefaultDeleteAction = false
	c.SupportsDefaultUpdateAction = false
	c.AutoAssignClause = "AUTO_INCREMENT"
	c.TableType = "ENGINE = InnoDB"
	c.CommentStyle = CommentInline
	c.DropForeignKeySQL = "ALTER TABLE {0} DROP FOREIGN KEY {1}"
	c.DropPrimaryKeySQL = "ALTER TABLE {0} DROP PRIMARY KEY"
	c.DropIndexSQL = "DROP INDEX {1} ON {0}"
	c.EmptyInsertClause = " () VALUES ()"
	c.TypeNames[schema.TypeDouble] = "DOUBLE"
	c.TypeNames[schema.TypeLongVarchar] = "LONGTEXT"
	c.TypeNames[schema.TypeClob] = "LONGTEXT"
	c.TypeNames[schema.TypeNClob] = "LONGTEXT"
	c.TypeNames[schema.TypeTimestamp] = "DATETIME(6)"
	c.TypeNames[schema.TypeTimestampTZ] = "DATETIME(6)"
	c.TypeNames[schema.TypeLongVarbinary] = "LONGBLOB"
	c.TypeNames[schema.TypeBlob] = "LONGBLOB"
	c.TypeNames[schema.TypeJSON] = "JSON"
	c.TypeNames[schema.TypeXML] = "LONGTEXT"
	c.TypeNames[schema.TypeOther] = "LONGBLOB"
	c.FixedSizeTypeNames = append(c.FixedSizeTypeNames,
		"TEXT", "MEDIUMTEXT", "LONGTEXT", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "JSON", "DOUBLE")
}
