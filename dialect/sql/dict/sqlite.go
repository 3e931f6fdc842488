package dict

import (
	"strconv"

	"github.com/syssam/dbdict"
	"github.com/syssam/dbdict/dialect"
	"github.com/syssam/dbdict/dialect/sql"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

func init() {
	register(&product{
		name:     dialect.SQLite,
		defaults: sqliteDefaults,
		reserved: []string{
			"ABORT", "AUTOINCREMENT", "CONFLICT", "FAIL", "GLOB", "IGNORE", "INDEXED", "ISNULL",
			"LIMIT", "NOTNULL", "OFFSET", "PRAGMA", "RAISE", "REGEXP", "REINDEX", "RENAME",
			"REPLACE", "VACUUM",
		},
		systemTables: []string{"sqlite_master", "sqlite_schema", "sqlite_sequence", "sqlite_stat1", "sqlite_stat4"},
		versionQuery: "SELECT sqlite_version()",
		overlay: func(v Version, c *Capabilities) {
			if v.AtLeast(3, 35, 0) {
				c.SupportsAlterTableWithDropColumn = true
			}
			if !v.AtLeast(3, 7, 11) {
				c.SupportsMultiRowInsert = false
			}
		},
		appendRange: func(_ *Capabilities, b *sql.Buffer, _ sql.Select, start, end int64) {
			n := int64(-1)
			if end != sql.NoLimit {
				n = end - start
			}
			b.Append(" LIMIT ").Append(strconv.FormatInt(n, 10))
			if start > 0 {
				b.Append(" OFFSET ").Append(strconv.FormatInt(start, 10))
			}
		},
		codes: map[int]dbdict.Kind{
			2067: dbdict.KindObjectExists,         // SQLITE_CONSTRAINT_UNIQUE
			1555: dbdict.KindObjectExists,         // SQLITE_CONSTRAINT_PRIMARYKEY
			787:  dbdict.KindReferentialIntegrity, // SQLITE_CONSTRAINT_FOREIGNKEY
			1299: dbdict.KindReferentialIntegrity, // SQLITE_CONSTRAINT_NOTNULL
			275:  dbdict.KindReferentialIntegrity, // SQLITE_CONSTRAINT_CHECK
			19:   dbdict.KindReferentialIntegrity, // SQLITE_CONSTRAINT
			5:    dbdict.KindLock,                 // SQLITE_BUSY
			6:    dbdict.KindLock,                 // SQLITE_LOCKED
			517:  dbdict.KindLock,                 // SQLITE_BUSY_SNAPSHOT
			9:    dbdict.KindQueryTimeout,         // SQLITE_INTERRUPT
		},
	})
}

func sqliteDefaults(c *Capabilities) {
	c.MaxTableNameLength = 1024
	c.MaxColumnNameLength = 1024
	c.MaxConstraintNameLength = 1024
	c.MaxIndexNameLength = 1024
	c.MaxSequenceNameLength = 1024
	c.SchemaCase = CasePreserve
	c.SupportsSelectStartIndex = true
	c.SupportsSelectEndIndex = true
	// The database is locked as a whole by write transactions.
	c.SupportsSelectForUpdate = false
	c.SimulateLocking = true
	c.SupportsDeferredConstraints = false
	c.SupportsAlterTableWithDropColumn = false
	c.SupportsAlterForeignKey = false
	c.SupportsAlterPrimaryKey = false
	c.InlineForeignKeys = true
	c.AutoAssignTypeName = "INTEGER"
	c.AutoAssignClause = "AUTOINCREMENT"
	c.AutoAssignIsPrimaryKey = true
	c.DropForeignKeySQL = ""
	c.DropPrimaryKeySQL = ""
	c.DatePrecision = 9
	c.TypeNames[schema.TypeDouble] = "REAL"
	c.TypeNames[schema.TypeFloat] = "REAL"
	c.TypeNames[schema.TypeLongVarchar] = "TEXT"
	c.TypeNames[schema.TypeClob] = "TEXT"
	c.TypeNames[schema.TypeNClob] = "TEXT"
	c.TypeNames[schema.TypeTimestamp] = "DATETIME"
	c.TypeNames[schema.TypeTimestampTZ] = "DATETIME"
	c.TypeNames[schema.TypeUUID] = "TEXT"
	c.TypeNames[schema.TypeJSON] = "JSON"
	c.TypeNames[schema.TypeXML] = "TEXT"
	c.FixedSizeTypeNames = append(c.FixedSizeTypeNames, "TEXT", "DATETIME", "JSON")
}
