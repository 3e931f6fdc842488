package schema

import (
	"fmt"
	"strings"
)

// Type is the abstract SQL type code of a column. The dictionary of each
// dialect maps a Type to the concrete type name used in DDL.
type Type int

// Abstract type codes.
const (
	TypeInvalid Type = iota
	TypeBit
	TypeTinyInt
	TypeSmallInt
	TypeInteger
	TypeBigInt
	TypeReal
	TypeFloat
	TypeDouble
	TypeNumeric
	TypeDecimal
	TypeChar
	TypeVarchar
	TypeLongVarchar
	TypeNChar
	TypeNVarchar
	TypeClob
	TypeNClob
	TypeDate
	TypeTime
	TypeTimestamp
	TypeTimestampTZ
	TypeBinary
	TypeVarbinary
	TypeLongVarbinary
	TypeBlob
	TypeBoolean
	TypeUUID
	TypeJSON
	TypeXML
	TypeOther

	// TypeRaw marks a value that is inlined as literal SQL text.
	// It is never used as a column type.
	TypeRaw
)

var typeNames = [...]string{
	TypeInvalid:       "invalid",
	TypeBit:           "bit",
	TypeTinyInt:       "tinyint",
	TypeSmallInt:      "smallint",
	TypeInteger:       "integer",
	TypeBigInt:        "bigint",
	TypeReal:          "real",
	TypeFloat:         "float",
	TypeDouble:        "double",
	TypeNumeric:       "numeric",
	TypeDecimal:       "decimal",
	TypeChar:          "char",
	TypeVarchar:       "varchar",
	TypeLongVarchar:   "longvarchar",
	TypeNChar:         "nchar",
	TypeNVarchar:      "nvarchar",
	TypeClob:          "clob",
	TypeNClob:         "nclob",
	TypeDate:          "date",
	TypeTime:          "time",
	TypeTimestamp:     "timestamp",
	TypeTimestampTZ:   "timestamptz",
	TypeBinary:        "binary",
	TypeVarbinary:     "varbinary",
	TypeLongVarbinary: "longvarbinary",
	TypeBlob:          "blob",
	TypeBoolean:       "boolean",
	TypeUUID:          "uuid",
	TypeJSON:          "json",
	TypeXML:           "xml",
	TypeOther:         "other",
	TypeRaw:           "raw",
}

// String returns the lowercase name of the type code.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Types returns every type code that may be used as a column type.
func Types() []Type {
	ts := make([]Type, 0, int(TypeOther))
	for t := TypeBit; t <= TypeOther; t++ {
		ts = append(ts, t)
	}
	return ts
}

// ParseType returns the type code for the given name (case-insensitive).
func ParseType(s string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "int":
		return TypeInteger, nil
	case "bool":
		return TypeBoolean, nil
	case "text":
		return TypeClob, nil
	case "datetime":
		return TypeTimestamp, nil
	case "string":
		return TypeVarchar, nil
	case "bytes":
		return TypeVarbinary, nil
	}
	for t := TypeBit; t <= TypeOther; t++ {
		if typeNames[t] == name {
			return t, nil
		}
	}
	return TypeInvalid, fmt.Errorf("schema: unknown type %q", s)
}

// IsCharacter reports whether the type holds character data with a length.
func (t Type) IsCharacter() bool {
	switch t {
	case TypeChar, TypeVarchar, TypeNChar, TypeNVarchar:
		return true
	}
	return false
}

// IsLOB reports whether the type is a large object type.
func (t Type) IsLOB() bool {
	switch t {
	case TypeClob, TypeNClob, TypeBlob, TypeLongVarchar, TypeLongVarbinary:
		return true
	}
	return false
}

// IsNumeric reports whether the type is a numeric type.
func (t Type) IsNumeric() bool {
	return t >= TypeBit && t <= TypeDecimal
}

// IsTemporal reports whether the type is a date or time type.
func (t Type) IsTemporal() bool {
	return t >= TypeDate && t <= TypeTimestampTZ
}
