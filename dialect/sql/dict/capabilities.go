package dict

import (
	"maps"
	"math"
	"strings"

	"github.com/syssam/dbdict/dialect/sql/schema"
)

// RangePosition is the point of a SELECT where the range clause is written.
type RangePosition int

// Range positions.
const (
	// RangePreDistinct writes the range right after SELECT.
	RangePreDistinct RangePosition = iota
	// RangePostDistinct writes the range after DISTINCT, before the projection.
	RangePostDistinct
	// RangePostSelect writes the range after the full select body.
	RangePostSelect
	// RangePostLock writes the range after the locking clause.
	RangePostLock
)

// String returns the name of the position.
func (p RangePosition) String() string {
	switch p {
	case RangePreDistinct:
		return "pre-distinct"
	case RangePostDistinct:
		return "post-distinct"
	case RangePostLock:
		return "post-lock"
	}
	return "post-select"
}

// JoinSyntax selects how joins are written.
type JoinSyntax int

// Join syntaxes.
const (
	// JoinSQL92 writes joins with JOIN ... ON.
	JoinSQL92 JoinSyntax = iota
	// JoinTraditional lists joined tables in FROM and their conditions in WHERE.
	JoinTraditional
)

// ConstraintNameMode is the position of the constraint name in a
// constraint clause.
type ConstraintNameMode int

// Constraint name modes.
const (
	// NameBefore writes CONSTRAINT n PRIMARY KEY (cols).
	NameBefore ConstraintNameMode = iota
	// NameMid writes PRIMARY KEY n (cols).
	NameMid
	// NameAfter writes PRIMARY KEY (cols) CONSTRAINT n.
	NameAfter
)

// SchemaCase is the case unquoted identifiers are folded to.
type SchemaCase int

// Schema cases.
const (
	CaseUpper SchemaCase = iota
	CaseLower
	CasePreserve
)

// Placeholder is the bind marker style of a product.
type Placeholder int

// Placeholder styles.
const (
	// PlaceholderQuestion writes ? markers.
	PlaceholderQuestion Placeholder = iota
	// PlaceholderDollar writes $1, $2, ...
	PlaceholderDollar
	// PlaceholderAtP writes @p1, @p2, ...
	PlaceholderAtP
	// PlaceholderColon writes :1, :2, ...
	PlaceholderColon
)

// CommentStyle is how table and column comments are written in DDL.
type CommentStyle int

// Comment styles.
const (
	CommentNone CommentStyle = iota
	// CommentOn emits COMMENT ON statements.
	CommentOn
	// CommentInline writes COMMENT clauses in CREATE TABLE.
	CommentInline
)

// Capabilities is the capability and behavior matrix of a product.
// A Dictionary never mutates a Capabilities value it handed out; the
// connection probe replaces it with a modified clone.
type Capabilities struct {
	// Identifiers.
	MaxTableNameLength      int
	MaxColumnNameLength     int
	MaxConstraintNameLength int
	MaxIndexNameLength      int
	MaxSequenceNameLength   int
	MaxIndexesPerTable      int
	DelimitIdentifiers      bool
	LeadingDelimiter        string
	TrailingDelimiter       string
	SchemaCase              SchemaCase

	// Selects, joins and ranges.
	RangePosition            RangePosition
	SupportsSelectStartIndex bool
	SupportsSelectEndIndex   bool
	SupportsHaving           bool
	SupportsSubselect        bool
	JoinSyntax               JoinSyntax
	InnerJoinClause          string
	OuterJoinClause          string
	CrossJoinClause          string

	// Locking.
	SupportsSelectForUpdate           bool
	SupportsLockingWithAggregate      bool
	SupportsLockingWithDistinctClause bool
	SupportsLockingWithMultipleTables bool
	SupportsLockingWithOrderClause    bool
	SupportsLockingWithOuterJoin      bool
	SupportsLockingWithInnerJoin      bool
	SupportsLockingWithSelectRange    bool
	SimulateLocking                   bool
	ForUpdateClause                   string
	TableForUpdateClause              string
	KeepUpdateLocks                   bool

	// Constraints and DDL.
	SupportsForeignKeys              bool
	SupportsDeferredConstraints      bool
	SupportsCascadeDeleteAction      bool
	SupportsRestrictDeleteAction     bool
	SupportsNullDeleteAction         bool
	SupportsDefaultDeleteAction      bool
	SupportsCascadeUpdateAction      bool
	SupportsRestrictUpdateAction     bool
	SupportsNullUpdateAction         bool
	SupportsDefaultUpdateAction      bool
	SupportsUniqueConstraints        bool
	SupportsAlterTableWithAddColumn  bool
	SupportsAlterTableWithDropColumn bool
	SupportsAlterForeignKey          bool
	SupportsAlterPrimaryKey          bool
	InlineForeignKeys                bool
	ConstraintNameMode               ConstraintNameMode
	SupportsSequences                bool
	AutoAssignClause                 string
	AutoAssignTypeName               string
	AutoAssignIsPrimaryKey           bool
	TableType                        string
	DropTableSuffix                  string
	CommentStyle                     CommentStyle

	// Statement templates; {0} is the table, {1} the constraint or index.
	DropForeignKeySQL   string
	DropPrimaryKeySQL   string
	DropIndexSQL        string
	NextSequenceQuery   string // {0} is the sequence
	SequenceCacheClause string // {0} is the allocation size
	DropSequenceSuffix  string

	// Types and storage.
	TypeNames                  map[schema.Type]string
	FixedSizeTypeNames         []string
	CharacterColumnSize        int
	DatePrecision              int // fractional second digits kept by timestamps
	SupportsBooleanType        bool
	StoreLargeNumbersAsStrings bool
	UUIDAsBinary               bool
	StorageLimitationsFatal    bool

	// Batching and binding.
	BatchLimit              int // rows per multi-row INSERT; 0 disables batching
	SupportsMultiRowInsert  bool
	EmptyInsertClause       string
	Placeholder             Placeholder
	AllowsAliasInBulkClause bool
}

// Clone returns a deep copy of the capabilities.
func (c *Capabilities) Clone() *Capabilities {
	nc := *c
	nc.TypeNames = maps.Clone(c.TypeNames)
	nc.FixedSizeTypeNames = append([]string(nil), c.FixedSizeTypeNames...)
	return &nc
}

// SupportsDeleteAction reports whether the action may be used in ON DELETE.
func (c *Capabilities) SupportsDeleteAction(a schema.ReferenceAction) bool {
	switch a {
	case schema.NoAction:
		return true
	case schema.Cascade:
		return c.SupportsCascadeDeleteAction
	case schema.Restrict:
		return c.SupportsRestrictDeleteAction
	case schema.SetNull:
		return c.SupportsNullDeleteAction
	case schema.SetDefault:
		return c.SupportsDefaultDeleteAction
	}
	return false
}

// SupportsUpdateAction reports whether the action may be used in ON UPDATE.
func (c *Capabilities) SupportsUpdateAction(a schema.ReferenceAction) bool {
	switch a {
	case schema.NoAction:
		return true
	case schema.Cascade:
		return c.SupportsCascadeUpdateAction
	case schema.Restrict:
		return c.SupportsRestrictUpdateAction
	case schema.SetNull:
		return c.SupportsNullUpdateAction
	case schema.SetDefault:
		return c.SupportsDefaultUpdateAction
	}
	return false
}

func (c *Capabilities) isFixedSize(name string) bool {
	for _, n := range c.FixedSizeTypeNames {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// baseCapabilities returns the capabilities shared by every product before
// the product defaults apply.
func baseCapabilities() *Capabilities {
	return &Capabilities{
		MaxTableNameLength:      128,
		MaxColumnNameLength:     128,
		MaxConstraintNameLength: 128,
		MaxIndexNameLength:      128,
		MaxSequenceNameLength:   128,
		MaxIndexesPerTable:      math.MaxInt,
		LeadingDelimiter:        `"`,
		TrailingDelimiter:       `"`,
		SchemaCase:              CaseUpper,

		RangePosition:     RangePostSelect,
		SupportsHaving:    true,
		SupportsSubselect: true,
		JoinSyntax:        JoinSQL92,
		InnerJoinClause:   "INNER JOIN",
		OuterJoinClause:   "LEFT OUTER JOIN",
		CrossJoinClause:   "CROSS JOIN",

		SupportsSelectForUpdate:           true,
		SupportsLockingWithDistinctClause: true,
		SupportsLockingWithMultipleTables: true,
		SupportsLockingWithOrderClause:    true,
		SupportsLockingWithOuterJoin:      true,
		SupportsLockingWithInnerJoin:      true,
		SupportsLockingWithSelectRange:    true,
		ForUpdateClause:                   "FOR UPDATE",

		SupportsForeignKeys:              true,
		SupportsDeferredConstraints:      true,
		SupportsCascadeDeleteAction:      true,
		SupportsRestrictDeleteAction:     true,
		SupportsNullDeleteAction:         true,
		SupportsDefaultDeleteAction:      true,
		SupportsCascadeUpdateAction:      true,
		SupportsRestrictUpdateAction:     true,
		SupportsNullUpdateAction:         true,
		SupportsDefaultUpdateAction:      true,
		SupportsUniqueConstraints:        true,
		SupportsAlterTableWithAddColumn:  true,
		SupportsAlterTableWithDropColumn: true,
		SupportsAlterForeignKey:          true,
		SupportsAlterPrimaryKey:          true,
		ConstraintNameMode:               NameBefore,

		DropForeignKeySQL: "ALTER TABLE {0} DROP CONSTRAINT {1}",
		DropPrimaryKeySQL: "ALTER TABLE {0} DROP CONSTRAINT {1}",
		DropIndexSQL:      "DROP INDEX {1}",

		TypeNames: map[schema.Type]string{
			schema.TypeBit:           "BIT",
			schema.TypeTinyInt:       "TINYINT",
			schema.TypeSmallInt:      "SMALLINT",
			schema.TypeInteger:       "INTEGER",
			schema.TypeBigInt:        "BIGINT",
			schema.TypeReal:          "REAL",
			schema.TypeFloat:         "FLOAT",
			schema.TypeDouble:        "DOUBLE",
			schema.TypeNumeric:       "NUMERIC",
			schema.TypeDecimal:       "DECIMAL",
			schema.TypeChar:          "CHAR",
			schema.TypeVarchar:       "VARCHAR",
			schema.TypeLongVarchar:   "LONGVARCHAR",
			schema.TypeNChar:         "NCHAR",
			schema.TypeNVarchar:      "NVARCHAR",
			schema.TypeClob:          "CLOB",
			schema.TypeNClob:         "NCLOB",
			schema.TypeDate:          "DATE",
			schema.TypeTime:          "TIME",
			schema.TypeTimestamp:     "TIMESTAMP",
			schema.TypeTimestampTZ:   "TIMESTAMP WITH TIME ZONE",
			schema.TypeBinary:        "BINARY",
			schema.TypeVarbinary:     "VARBINARY",
			schema.TypeLongVarbinary: "LONGVARBINARY",
			schema.TypeBlob:          "BLOB",
			schema.TypeBoolean:       "BOOLEAN",
			schema.TypeUUID:          "CHAR(36)",
			schema.TypeJSON:          "CLOB",
			schema.TypeXML:           "CLOB",
			schema.TypeOther:         "BLOB",
		},
		FixedSizeTypeNames: []string{
			"SMALLINT", "INTEGER", "BIGINT", "REAL", "DOUBLE", "DATE", "BOOLEAN",
			"CLOB", "NCLOB", "BLOB", "LONGVARCHAR", "LONGVARBINARY",
		},
		CharacterColumnSize: 255,
		DatePrecision:       6,
		SupportsBooleanType: true,

		SupportsMultiRowInsert: true,
		BatchLimit:             100,
		EmptyInsertClause:      " DEFAULT VALUES",
		Placeholder:            PlaceholderQuestion,
	}
}
