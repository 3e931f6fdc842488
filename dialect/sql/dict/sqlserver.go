package dict

import (
	"strconv"
	"strings"

	"github.com/syssam/dbdict"
	"github.com/syssam/dbdict/dialect"
	"github.com/syssam/dbdict/dialect/sql"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

func init() {
	register(&product{
		name:     dialect.SQLServer,
		defaults: sqlserverDefaults,
		reserved: []string{
			"BACKUP", "BREAK", "BROWSE", "BULK", "CHECKPOINT", "CLUSTERED", "COMPUTE", "CONTAINSTABLE",
			"DATABASE", "DBCC", "DENY", "DISK", "DISTRIBUTED", "DUMP", "ERRLVL", "EXIT", "FILE",
			"FILLFACTOR", "FREETEXT", "FREETEXTTABLE", "FUNCTION", "HOLDLOCK", "IDENTITY_INSERT",
			"IDENTITYCOL", "IF", "KILL", "LINENO", "LOAD", "NOCHECK", "NONCLUSTERED", "OFF", "OFFSETS",
			"OPENDATASOURCE", "OPENQUERY", "OPENROWSET", "OPENXML", "OVER", "PERCENT", "PIVOT", "PLAN",
			"PRINT", "PROC", "RAISERROR", "READTEXT", "RECONFIGURE", "REPLICATION", "RESTORE", "RETURN",
			"REVERT", "ROWCOUNT", "ROWGUIDCOL", "RULE", "SAVE", "SECURITYAUDIT", "SETUSER", "SHUTDOWN",
			"STATISTICS", "TABLESAMPLE", "TEXTSIZE", "TOP", "TRAN", "TRIGGER", "TRUNCATE", "TSEQUAL",
			"UNPIVOT", "UPDATETEXT", "USE", "WAITFOR", "WHILE", "WRITETEXT",
		},
		systemSchemas: []string{"sys", "INFORMATION_SCHEMA", "guest"},
		versionQuery:  "SELECT CAST(SERVERPROPERTY('ProductVersion') AS NVARCHAR(128))",
		overlay: func(v Version, c *Capabilities) {
			if !v.AtLeast(11, 0, 0) {
				c.RangePosition = RangePostDistinct
				c.SupportsSelectStartIndex = false
				c.SupportsSequences = false
			}
		},
		appendRange: func(c *Capabilities, b *sql.Buffer, sel sql.Select, start, end int64) {
			if c.RangePosition == RangePostDistinct {
				if end != sql.NoLimit {
					b.Append("TOP ").Append(strconv.FormatInt(end, 10)).Append(" ")
				}
				return
			}
			// OFFSET requires an ORDER BY clause.
			if sel.Ordering().IsEmpty() {
				b.Append(" ORDER BY (SELECT NULL)")
			}
			offsetFetch(b, start, end)
		},
		literal: func(_ *Capabilities, v any) string {
			if s, ok := v.(string); ok {
				return "N" + sql.FormatLiteral(s)
			}
			return ""
		},
		// ROWVERSION columns are binary(8) and compared as numbers.
		versionColumn: func(col *schema.Column, name string) string {
			if strings.EqualFold(col.TypeName, "ROWVERSION") {
				return "CAST(" + name + " AS BIGINT)"
			}
			return name
		},
		codes: map[int]dbdict.Kind{
			2627: dbdict.KindObjectExists,
			2601: dbdict.KindObjectExists,
			547:  dbdict.KindReferentialIntegrity,
			515:  dbdict.KindReferentialIntegrity,
			8152: dbdict.KindReferentialIntegrity,
			1205: dbdict.KindLock,
			1222: dbdict.KindLock,
		},
	})
}

func sqlserverDefaults(c *Capabilities) {
	c.LeadingDelimiter = "["
	c.TrailingDelimiter = "]"
	c.SchemaCase = CasePreserve
	c.Placeholder = PlaceholderAtP
	c.SupportsSelectStartIndex = true
	c.SupportsSelectEndIndex = true
	c.SupportsLockingWithAggregate = true
	c.ForUpdateClause = ""
	c.TableForUpdateClause = "WITH (UPDLOCK, ROWLOCK)"
	c.SupportsDeferredConstraints = false
	c.SupportsRestrictDeleteAction = false
	c.SupportsRestrictUpdateAction = false
	c.SupportsSequences = true
	c.NextSequenceQuery = "SELECT NEXT VALUE FOR {0}"
	c.SequenceCacheClause = "CACHE {0}"
	c.AutoAssignClause = "IDENTITY"
	c.DropIndexSQL = "DROP INDEX {1} ON {0}"
	c.SupportsBooleanType = false
	c.BatchLimit = 100
	c.TypeNames[schema.TypeBoolean] = "BIT"
	c.TypeNames[schema.TypeDouble] = "FLOAT"
	c.TypeNames[schema.TypeLongVarchar] = "VARCHAR(MAX)"
	c.TypeNames[schema.TypeClob] = "VARCHAR(MAX)"
	c.TypeNames[schema.TypeNClob] = "NVARCHAR(MAX)"
	c.TypeNames[schema.TypeTimestamp] = "DATETIME2"
	c.TypeNames[schema.TypeTimestampTZ] = "DATETIMEOFFSET"
	c.TypeNames[schema.TypeLongVarbinary] = "VARBINARY(MAX)"
	c.TypeNames[schema.TypeBlob] = "VARBINARY(MAX)"
	c.TypeNames[schema.TypeUUID] = "UNIQUEIDENTIFIER"
	c.TypeNames[schema.TypeJSON] = "NVARCHAR(MAX)"
	c.TypeNames[schema.TypeXML] = "XML"
	c.TypeNames[schema.TypeOther] = "VARBINARY(MAX)"
	c.FixedSizeTypeNames = append(c.FixedSizeTypeNames, "BIT", "TINYINT", "UNIQUEIDENTIFIER", "XML")
}
