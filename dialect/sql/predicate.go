package sql

import (
	"time"

	"github.com/google/uuid"

	"github.com/syssam/dbdict/dialect/sql/schema"
)

// Predicate renders a boolean condition into a buffer.
type Predicate func(*Buffer)

func compare(name, op string, v any) Predicate {
	return func(b *Buffer) {
		b.AppendIdent(name).Append(" " + op + " ").AppendValue(v, nil)
	}
}

// EQ returns a predicate that checks if the column equals v.
// A nil v renders IS NULL.
func EQ(name string, v any) Predicate {
	if isNull(v) {
		return IsNull(name)
	}
	return compare(name, "=", v)
}

// NEQ returns a predicate that checks if the column does not equal v.
func NEQ(name string, v any) Predicate {
	if isNull(v) {
		return NotNull(name)
	}
	return compare(name, "<>", v)
}

// GT returns a predicate that checks if the column is greater than v.
func GT(name string, v any) Predicate { return compare(name, ">", v) }

// GTE returns a predicate that checks if the column is greater than or equal to v.
func GTE(name string, v any) Predicate { return compare(name, ">=", v) }

// LT returns a predicate that checks if the column is less than v.
func LT(name string, v any) Predicate { return compare(name, "<", v) }

// LTE returns a predicate that checks if the column is less than or equal to v.
func LTE(name string, v any) Predicate { return compare(name, "<=", v) }

// Like returns a predicate that matches the column against a LIKE pattern.
func Like(name, pattern string) Predicate { return compare(name, "LIKE", pattern) }

// IsNull returns a predicate that checks if the column is NULL.
func IsNull(name string) Predicate {
	return func(b *Buffer) { b.AppendIdent(name).Append(" IS NULL") }
}

// NotNull returns a predicate that checks if the column is not NULL.
func NotNull(name string) Predicate {
	return func(b *Buffer) { b.AppendIdent(name).Append(" IS NOT NULL") }
}

// In returns a predicate that checks if the column value is in vs.
// An empty list never matches.
func In(name string, vs ...any) Predicate {
	return in(name, "IN", "1 = 0", vs)
}

// NotIn returns a predicate that checks if the column value is not in vs.
// An empty list always matches.
func NotIn(name string, vs ...any) Predicate {
	return in(name, "NOT IN", "1 = 1", vs)
}

func in(name, op, empty string, vs []any) Predicate {
	return func(b *Buffer) {
		if len(vs) == 0 {
			b.Append(empty)
			return
		}
		b.AppendIdent(name).Append(" " + op + " (")
		for i, v := range vs {
			if i > 0 {
				b.Append(", ")
			}
			b.AppendValue(v, nil)
		}
		b.Append(")")
	}
}

// InSubquery returns a predicate that checks if the column value is
// returned by the subquery. The subquery is rendered lazily.
func InSubquery(name string, sub Subquery) Predicate {
	return func(b *Buffer) {
		b.AppendIdent(name).Append(" IN ").AppendSubquery(sub, "")
	}
}

// ColumnsEQ returns a predicate that compares two columns, as used in join
// conditions.
func ColumnsEQ(left, right string) Predicate {
	return func(b *Buffer) {
		b.AppendIdent(left).Append(" = ").AppendIdent(right)
	}
}

// ColumnEQ compares a schema column, qualified by alias when non-empty, to
// v. The parameter carries the column so it is bound with the column type.
func ColumnEQ(alias string, c *schema.Column, v any) Predicate {
	name := c.Name
	if alias != "" {
		name = alias + "." + name
	}
	if isNull(v) {
		return IsNull(name)
	}
	return func(b *Buffer) {
		b.AppendIdent(name).Append(" = ").AppendValue(v, c)
	}
}

// UserParamEQ returns a predicate comparing the column to a user parameter. The
// compiled text can be reused with new values bound by key.
func UserParamEQ(name, key string, v any) Predicate {
	return func(b *Buffer) {
		b.AppendIdent(name).Append(" = ").AppendUserParam(key, v, nil)
	}
}

// Expr returns a predicate rendering raw SQL text.
func Expr(sql string) Predicate {
	return func(b *Buffer) { b.Append(sql) }
}

// And returns a predicate that is true when all the predicates are.
func And(ps ...Predicate) Predicate { return join(" AND ", ps) }

// Or returns a predicate that is true when any of the predicates is.
func Or(ps ...Predicate) Predicate { return join(" OR ", ps) }

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(b *Buffer) {
		b.Append("NOT (")
		p(b)
		b.Append(")")
	}
}

func join(sep string, ps []Predicate) Predicate {
	return func(b *Buffer) {
		if len(ps) == 1 {
			ps[0](b)
			return
		}
		b.Append("(")
		for i, p := range ps {
			if i > 0 {
				b.Append(sep)
			}
			p(b)
		}
		b.Append(")")
	}
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	val, ok := v.(Value)
	return ok && val.IsNull()
}

// Field is a typed column name providing predicate methods.
//
//	var Email = sql.Field[string]("email")
//	sel.Filter(Email.EQ("a@example.com"))
type Field[T any] string

// Name returns the column name.
func (f Field[T]) Name() string { return string(f) }

// EQ returns a predicate that checks if the field equals v.
func (f Field[T]) EQ(v T) Predicate { return EQ(string(f), v) }

// NEQ returns a predicate that checks if the field does not equal v.
func (f Field[T]) NEQ(v T) Predicate { return NEQ(string(f), v) }

// GT returns a predicate that checks if the field is greater than v.
func (f Field[T]) GT(v T) Predicate { return GT(string(f), v) }

// GTE returns a predicate that checks if the field is greater than or equal to v.
func (f Field[T]) GTE(v T) Predicate { return GTE(string(f), v) }

// LT returns a predicate that checks if the field is less than v.
func (f Field[T]) LT(v T) Predicate { return LT(string(f), v) }

// LTE returns a predicate that checks if the field is less than or equal to v.
func (f Field[T]) LTE(v T) Predicate { return LTE(string(f), v) }

// In returns a predicate that checks if the field value is in vs.
func (f Field[T]) In(vs ...T) Predicate { return In(string(f), anys(vs)...) }

// NotIn returns a predicate that checks if the field value is not in vs.
func (f Field[T]) NotIn(vs ...T) Predicate { return NotIn(string(f), anys(vs)...) }

// IsNull returns a predicate that checks if the field is NULL.
func (f Field[T]) IsNull() Predicate { return IsNull(string(f)) }

// NotNull returns a predicate that checks if the field is not NULL.
func (f Field[T]) NotNull() Predicate { return NotNull(string(f)) }

// Param returns a predicate comparing the field to a user parameter.
func (f Field[T]) Param(key string, v T) Predicate { return UserParamEQ(string(f), key, v) }

// Field types for the common column kinds.
type (
	StringField = Field[string]
	Int64Field  = Field[int64]
	BoolField   = Field[bool]
	TimeField   = Field[time.Time]
	UUIDField   = Field[uuid.UUID]
)

func anys[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}
