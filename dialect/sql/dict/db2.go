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
		name:     dialect.DB2,
		defaults: db2Defaults,
		reserved: []string{
			"ACTIVATE", "ALIAS", "ATTRIBUTES", "BUFFERPOOL", "CCSID", "COLLECTION", "CONTAINS",
			"DATABASE", "DB2GENERAL", "DB2SQL", "DBINFO", "DBPARTITIONNAME", "DOCUMENT", "EDITPROC",
			"ENCODING", "ERASE", "EXCLUSIVE", "FENCED", "FIELDPROC", "IMMEDIATE", "INHERIT",
			"LOCKMAX", "LOCKSIZE", "NODENAME", "NODENUMBER", "NULLS", "OBID", "PACKAGE", "PAGE",
			"PARTITION", "PIECESIZE", "RRN", "RUN", "SECQTY", "STOGROUP", "SUBPAGES", "VALIDPROC",
			"VCAT", "VOLUMES", "WLM",
		},
		systemSchemas: []string{"SYSIBM", "SYSCAT", "SYSSTAT", "SYSFUN", "SYSPROC", "SYSTOOLS", "SYSIBMADM", "NULLID"},
		versionQuery:  "SELECT SERVICE_LEVEL FROM SYSIBMADM.ENV_INST_INFO",
		overlay: func(v Version, c *Capabilities) {
			if v.AtLeast(9, 0, 0) {
				c.KeepUpdateLocks = true
				c.SupportsLockingWithOrderClause = true
				c.SupportsLockingWithMultipleTables = true
				c.SupportsLockingWithInnerJoin = true
				c.SupportsLockingWithOuterJoin = true
			}
			if v.AtLeast(9, 7, 0) {
				c.MaxConstraintNameLength = 128
				c.MaxIndexNameLength = 128
			}
			if v.AtLeast(11, 1, 0) {
				c.SupportsSelectStartIndex = true
				c.SupportsBooleanType = true
				c.TypeNames[schema.TypeBoolean] = "BOOLEAN"
			}
		},
		appendRange: func(c *Capabilities, b *sql.Buffer, _ sql.Select, start, end int64) {
			if c.SupportsSelectStartIndex && start > 0 {
				b.Append(" OFFSET ").Append(strconv.FormatInt(start, 10)).Append(" ROWS")
			}
			if end != sql.NoLimit {
				b.Append(" FETCH FIRST ").Append(strconv.FormatInt(end-start, 10)).Append(" ROWS ONLY")
			}
		},
		forUpdate: db2ForUpdate,
		codes: map[int]dbdict.Kind{
			-803: dbdict.KindObjectExists,
			-407: dbdict.KindReferentialIntegrity,
			-530: dbdict.KindReferentialIntegrity,
			-531: dbdict.KindReferentialIntegrity,
			-532: dbdict.KindReferentialIntegrity,
			-911: dbdict.KindLock,
			-913: dbdict.KindLock,
			-952: dbdict.KindQueryTimeout,
		},
	})
}

// db2ForUpdate returns the locking clause for the isolation requested by
// sel. Servers keeping update locks lock read-only cursors, which allows
// ordered and joined selects.
func db2ForUpdate(c *Capabilities, sel sql.Select) string {
	iso := "RS"
	switch sel.LockIsolation() {
	case sql.IsolationSerializable:
		iso = "RR"
	case sql.IsolationReadCommitted, sql.IsolationReadUncommitted:
		iso = "CS"
	}
	if c.KeepUpdateLocks && iso != "CS" {
		return "FOR READ ONLY WITH " + iso + " USE AND KEEP UPDATE LOCKS"
	}
	return "FOR UPDATE WITH " + iso
}

func db2Defaults(c *Capabilities) {
	c.MaxConstraintNameLength = 18
	c.MaxIndexNameLength = 18
	c.SupportsSelectEndIndex = true
	c.SupportsLockingWithDistinctClause = false
	c.SupportsLockingWithOrderClause = false
	c.SupportsLockingWithMultipleTables = false
	c.SupportsLockingWithInnerJoin = false
	c.SupportsLockingWithOuterJoin = false
	c.SupportsDeferredConstraints = false
	c.SupportsDefaultDeleteAction = false
	c.SupportsCascadeUpdateAction = false
	c.SupportsNullUpdateAction = false
	c.SupportsDefaultUpdateAction = false
	c.SupportsSequences = true
	c.NextSequenceQuery = "VALUES NEXTVAL FOR {0}"
	c.SequenceCacheClause = "CACHE {0}"
	c.DropSequenceSuffix = " RESTRICT"
	c.AutoAssignClause = "GENERATED BY DEFAULT AS IDENTITY"
	c.CommentStyle = CommentOn
	c.SupportsBooleanType = false
	c.EmptyInsertClause = ""
	c.TypeNames[schema.TypeBit] = "SMALLINT"
	c.TypeNames[schema.TypeTinyInt] = "SMALLINT"
	c.TypeNames[schema.TypeBoolean] = "SMALLINT"
	c.TypeNames[schema.TypeLongVarchar] = "CLOB"
	c.TypeNames[schema.TypeNChar] = "GRAPHIC"
	c.TypeNames[schema.TypeNVarchar] = "VARGRAPHIC"
	c.TypeNames[schema.TypeNClob] = "DBCLOB"
	c.TypeNames[schema.TypeTimestampTZ] = "TIMESTAMP"
	c.TypeNames[schema.TypeBinary] = "CHAR({0}) FOR BIT DATA"
	c.TypeNames[schema.TypeVarbinary] = "VARCHAR({0}) FOR BIT DATA"
	c.TypeNames[schema.TypeLongVarbinary] = "BLOB"
	c.TypeNames[schema.TypeXML] = "XML"
	c.FixedSizeTypeNames = append(c.FixedSizeTypeNames, "XML", "DBCLOB")
}
