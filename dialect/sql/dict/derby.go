package dict

import (
	"github.com/syssam/dbdict/dialect"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

func init() {
	register(&product{
		name:     dialect.Derby,
		defaults: derbyDefaults,
		systemSchemas: []string{
			"SYS", "SYSCAT", "SYSCS_DIAG", "SYSCS_UTIL", "SYSFUN", "SYSIBM", "SYSPROC", "SYSSTAT", "NULLID", "SQLJ",
		},
		versionQuery: "VALUES SYSCS_UTIL.SYSCS_GET_DATABASE_PROPERTY('DataDictionaryVersion')",
		overlay: func(v Version, c *Capabilities) {
			if !v.AtLeast(10, 5, 0) {
				c.SupportsSelectStartIndex = false
				c.SupportsSelectEndIndex = false
			}
			if !v.AtLeast(10, 6, 0) {
				c.SupportsSequences = false
			}
			if v.AtLeast(10, 7, 0) {
				c.SupportsBooleanType = true
				c.TypeNames[schema.TypeBoolean] = "BOOLEAN"
			}
		},
	})
}

func derbyDefaults(c *Capabilities) {
	c.SupportsSelectStartIndex = true
	c.SupportsSelectEndIndex = true
	c.ForUpdateClause = "FOR UPDATE WITH RR"
	c.SupportsLockingWithDistinctClause = false
	c.SupportsLockingWithMultipleTables = false
	c.SupportsLockingWithOrderClause = false
	c.SupportsLockingWithInnerJoin = false
	c.SupportsLockingWithOuterJoin = false
	c.SupportsDeferredConstraints = false
	c.SupportsDefaultDeleteAction = false
	c.SupportsCascadeUpdateAction = false
	c.SupportsNullUpdateAction = false
	c.SupportsDefaultUpdateAction = false
	c.SupportsSequences = true
	c.NextSequenceQuery = "VALUES (NEXT VALUE FOR {0})"
	c.DropSequenceSuffix = " RESTRICT"
	c.AutoAssignClause = "GENERATED BY DEFAULT AS IDENTITY"
	c.SupportsBooleanType = false
	c.DatePrecision = 9
	c.EmptyInsertClause = ""
	c.TypeNames[schema.TypeBit] = "SMALLINT"
	c.TypeNames[schema.TypeTinyInt] = "SMALLINT"
	c.TypeNames[schema.TypeBoolean] = "SMALLINT"
	c.TypeNames[schema.TypeLongVarchar] = "CLOB"
	c.TypeNames[schema.TypeNChar] = "CHAR"
	c.TypeNames[schema.TypeNVarchar] = "VARCHAR"
	c.TypeNames[schema.TypeNClob] = "CLOB"
	c.TypeNames[schema.TypeTimestampTZ] = "TIMESTAMP"
	c.TypeNames[schema.TypeBinary] = "CHAR({0}) FOR BIT DATA"
	c.TypeNames[schema.TypeVarbinary] = "VARCHAR({0}) FOR BIT DATA"
	c.TypeNames[schema.TypeLongVarbinary] = "BLOB"
	c.TypeNames[schema.TypeXML] = "XML"
	c.FixedSizeTypeNames = append(c.FixedSizeTypeNames, "XML", "TIMESTAMP")
}
