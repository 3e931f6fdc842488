package dict

import (
	"strconv"
	"time"

	"github.com/syssam/dbdict"
	"github.com/syssam/dbdict/dialect"
	"github.com/syssam/dbdict/dialect/sql"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

func init() {
	register(&product{
		name:     dialect.Oracle,
		defaults: oracleDefaults,
		reserved: []string{
			"ACCESS", "AUDIT", "CLUSTER", "COMMENT", "COMPRESS", "EXCLUSIVE", "FILE", "IDENTIFIED",
			"INCREMENT", "INITIAL", "LEVEL", "LOCK", "LONG", "MAXEXTENTS", "MINUS", "MLSLABEL",
			"MODE", "MODIFY", "NOAUDIT", "NOCOMPRESS", "NOWAIT", "NUMBER", "OFFLINE", "ONLINE",
			"PCTFREE", "RAW", "RENAME", "RESOURCE", "ROW", "ROWID", "ROWNUM", "ROWS", "SHARE",
			"SUCCESSFUL", "SYNONYM", "SYSDATE", "UID", "VALIDATE", "VARCHAR2",
		},
		systemSchemas: []string{"SYS", "SYSTEM", "CTXSYS", "MDSYS", "OUTLN", "XDB", "WMSYS", "ORDSYS"},
		systemTables:  []string{"DUAL"},
		versionQuery:  "SELECT BANNER FROM V$VERSION WHERE BANNER LIKE 'Oracle%'",
		overlay: func(v Version, c *Capabilities) {
			if v.AtLeast(12, 2, 0) {
				c.MaxTableNameLength = 128
				c.MaxColumnNameLength = 128
				c.MaxConstraintNameLength = 128
				c.MaxIndexNameLength = 128
				c.MaxSequenceNameLength = 128
			}
			if !v.AtLeast(12, 1, 0) {
				c.AutoAssignClause = ""
			}
			if v.Major < 9 {
				c.JoinSyntax = JoinTraditional
			}
			if v.AtLeast(23, 0, 0) {
				c.SupportsBooleanType = true
				c.TypeNames[schema.TypeBoolean] = "BOOLEAN"
				c.TypeNames[schema.TypeBit] = "BOOLEAN"
			}
		},
		rangeFilter: func(end int64) string {
			return "ROWNUM <= " + strconv.FormatInt(end, 10)
		},
		// ROWNUM is assigned before ordering, grouping and duplicate
		// elimination, so those selects are ranged from the outside.
		needsWrap: func(sel sql.Select) bool {
			return sel.Distinct() || !sel.Ordering().IsEmpty() || !sel.Grouping().IsEmpty()
		},
		wrapRange: func(inner *sql.Buffer, start, end int64) *sql.Buffer {
			b := sql.NewBuffer(inner.Dialect())
			if start == 0 {
				b.Append("SELECT * FROM (").AppendBuffer(inner).Append(")")
				if end != sql.NoLimit {
					b.Append(" WHERE ROWNUM <= ").Append(strconv.FormatInt(end, 10))
				}
				return b
			}
			b.Append("SELECT * FROM (SELECT r.*, ROWNUM RNUM FROM (").AppendBuffer(inner).Append(") r")
			if end != sql.NoLimit {
				b.Append(" WHERE ROWNUM <= ").Append(strconv.FormatInt(end, 10))
			}
			return b.Append(") WHERE RNUM > ").Append(strconv.FormatInt(start, 10))
		},
		literal: func(_ *Capabilities, v any) string {
			if t, ok := v.(time.Time); ok {
				return "TIMESTAMP " + sql.FormatLiteral(t)
			}
			return ""
		},
		codes: map[int]dbdict.Kind{
			1:     dbdict.KindObjectExists,
			1400:  dbdict.KindReferentialIntegrity,
			1407:  dbdict.KindReferentialIntegrity,
			2291:  dbdict.KindReferentialIntegrity,
			2292:  dbdict.KindReferentialIntegrity,
			12899: dbdict.KindReferentialIntegrity,
			54:    dbdict.KindLock,
			60:    dbdict.KindLock,
			8177:  dbdict.KindLock,
			30006: dbdict.KindLock,
			1013:  dbdict.KindQueryTimeout,
		},
	})
}

func oracleDefaults(c *Capabilities) {
	c.MaxTableNameLength = 30
	c.MaxColumnNameLength = 30
	c.MaxConstraintNameLength = 30
	c.MaxIndexNameLength = 30
	c.MaxSequenceNameLength = 30
	c.Placeholder = PlaceholderColon
	c.SupportsSelectStartIndex = true
	c.SupportsSelectEndIndex = true
	c.SupportsLockingWithDistinctClause = false
	c.SupportsLockingWithOuterJoin = false
	c.SupportsLockingWithSelectRange = false
	c.SupportsRestrictDeleteAction = false
	c.SupportsDefaultDeleteAction = false
	c.SupportsCascadeUpdateAction = false
	c.SupportsRestrictUpdateAction = false
	c.SupportsNullUpdateAction = false
	c.SupportsDefaultUpdateAction = false
	c.SupportsSequences = true
	c.NextSequenceQuery = "SELECT {0}.NEXTVAL FROM DUAL"
	c.SequenceCacheClause = "CACHE {0}"
	c.AutoAssignClause = "GENERATED BY DEFAULT ON NULL AS IDENTITY"
	c.CommentStyle = CommentOn
	c.SupportsBooleanType = false
	c.SupportsMultiRowInsert = false
	c.EmptyInsertClause = ""
	c.TypeNames[schema.TypeBit] = "NUMBER(1)"
	c.TypeNames[schema.TypeBoolean] = "NUMBER(1)"
	c.TypeNames[schema.TypeTinyInt] = "SMALLINT"
	c.TypeNames[schema.TypeBigInt] = "NUMBER(19)"
	c.TypeNames[schema.TypeReal] = "FLOAT"
	c.TypeNames[schema.TypeDouble] = "DOUBLE PRECISION"
	c.TypeNames[schema.TypeNumeric] = "NUMBER"
	c.TypeNames[schema.TypeDecimal] = "NUMBER"
	c.TypeNames[schema.TypeVarchar] = "VARCHAR2"
	c.TypeNames[schema.TypeNVarchar] = "NVARCHAR2"
	c.TypeNames[schema.TypeLongVarchar] = "CLOB"
	c.TypeNames[schema.TypeTime] = "DATE"
	c.TypeNames[schema.TypeBinary] = "RAW"
	c.TypeNames[schema.TypeVarbinary] = "BLOB"
	c.TypeNames[schema.TypeLongVarbinary] = "BLOB"
	c.TypeNames[schema.TypeUUID] = "VARCHAR2(36)"
	c.TypeNames[schema.TypeXML] = "XMLTYPE"
	c.FixedSizeTypeNames = append(c.FixedSizeTypeNames, "XMLTYPE", "DOUBLE PRECISION", "NUMBER(1)", "NUMBER(19)")
}
