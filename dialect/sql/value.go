package sql

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/dbdict/dialect/sql/schema"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

// Value variants.
const (
	// Unset marks a slot that is not part of the statement.
	Unset ValueKind = iota
	// Null is a present SQL NULL.
	Null
	// Raw is literal SQL text inlined into the statement.
	Raw
	// Typed is a value bound as a parameter.
	Typed
)

// Value is a tagged statement value. The zero Value is Unset.
type Value struct {
	kind ValueKind
	typ  schema.Type
	data any
}

// NullValue returns a present SQL NULL of the given type.
func NullValue(t schema.Type) Value {
	return Value{kind: Null, typ: t}
}

// RawValue returns a value inlined as literal SQL, e.g. CURRENT_TIMESTAMP.
func RawValue(sql string) Value {
	return Value{kind: Raw, typ: schema.TypeRaw, data: sql}
}

// TypedValue returns a value bound as a parameter of the given type.
// A nil v yields a NULL value.
func TypedValue(t schema.Type, v any) Value {
	if v == nil {
		return NullValue(t)
	}
	return Value{kind: Typed, typ: t, data: v}
}

// ValueOf converts v into a Value. Values are returned as is, nil becomes
// NULL and anything else is a typed value with the type inferred from its
// Go type.
func ValueOf(v any) Value {
	switch v := v.(type) {
	case Value:
		return v
	case nil:
		return NullValue(schema.TypeOther)
	}
	return TypedValue(TypeOf(v), v)
}

// Kind returns the variant of the value.
func (v Value) Kind() ValueKind { return v.kind }

// IsSet reports whether the value takes part in a statement.
func (v Value) IsSet() bool { return v.kind != Unset }

// IsNull reports whether the value is SQL NULL.
func (v Value) IsNull() bool { return v.kind == Null }

// IsRaw reports whether the value is literal SQL.
func (v Value) IsRaw() bool { return v.kind == Raw }

// Type returns the type code of the value.
func (v Value) Type() schema.Type { return v.typ }

// Data returns the Go value, or nil for Unset and Null values.
func (v Value) Data() any {
	if v.kind == Raw || v.kind == Typed {
		return v.data
	}
	return nil
}

// SQL returns the literal text of a Raw value.
func (v Value) SQL() string {
	s, _ := v.data.(string)
	return s
}

// String implements fmt.Stringer.
func (v Value) String() string {
	switch v.kind {
	case Unset:
		return "<unset>"
	case Null:
		return "NULL"
	case Raw:
		return v.SQL()
	}
	return fmt.Sprintf("%v", v.data)
}

// TypeOf infers the type code of a Go value.
func TypeOf(v any) schema.Type {
	switch v.(type) {
	case bool:
		return schema.TypeBoolean
	case int8, uint8:
		return schema.TypeTinyInt
	case int16, uint16:
		return schema.TypeSmallInt
	case int32, uint32:
		return schema.TypeInteger
	case int, int64, uint, uint64:
		return schema.TypeBigInt
	case float32:
		return schema.TypeReal
	case float64:
		return schema.TypeDouble
	case *big.Float, *big.Int, *big.Rat:
		return schema.TypeDecimal
	case string:
		return schema.TypeVarchar
	case []byte:
		return schema.TypeVarbinary
	case time.Time:
		return schema.TypeTimestamp
	case uuid.UUID:
		return schema.TypeUUID
	}
	return schema.TypeOther
}

// FormatLiteral renders v as an ANSI SQL literal.
func FormatLiteral(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case Value:
		switch v.kind {
		case Unset, Null:
			return "NULL"
		case Raw:
			return v.SQL()
		}
		return FormatLiteral(v.data)
	case string:
		return quote(v)
	case []byte:
		return "X'" + strings.ToUpper(hex.EncodeToString(v)) + "'"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(v)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case *big.Int:
		return v.String()
	case *big.Float:
		return v.Text('f', -1)
	case *big.Rat:
		return v.FloatString(18)
	case time.Time:
		return "'" + v.Format("2006-01-02 15:04:05.999999") + "'"
	case uuid.UUID:
		return quote(v.String())
	case fmt.Stringer:
		return quote(v.String())
	}
	return quote(fmt.Sprint(v))
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
