package sql

import (
	"fmt"

	"github.com/syssam/dbdict/dialect/sql/schema"
)

// Param is a bind parameter: the value of one placeholder.
type Param struct {
	Value  any
	Column *schema.Column // column the value is stored into, if any
	// User marks a caller-supplied value. A compiled buffer can be reused
	// with new user values without rebuilding its text.
	User bool
	// Key identifies the parameter: the user key for user parameters, the
	// column name otherwise.
	Key string
}

// String implements fmt.Stringer.
func (p Param) String() string {
	if p.User {
		return fmt.Sprintf(":%s=%v", p.Key, p.Value)
	}
	return fmt.Sprintf("%v", p.Value)
}

// Binder receives the values of a statement, one per placeholder.
// Positions are zero-based.
type Binder interface {
	Bind(pos int, v any, col *schema.Column) error
}

// BinderFunc adapts a function to the Binder interface.
type BinderFunc func(pos int, v any, col *schema.Column) error

// Bind implements Binder.
func (f BinderFunc) Bind(pos int, v any, col *schema.Column) error {
	return f(pos, v, col)
}

// Args is a Binder that collects the values in placeholder order.
type Args []any

// Bind implements Binder.
func (a *Args) Bind(pos int, v any, _ *schema.Column) error {
	if pos < 0 {
		return fmt.Errorf("dialect/sql: negative bind position %d", pos)
	}
	for len(*a) <= pos {
		*a = append(*a, nil)
	}
	(*a)[pos] = v
	return nil
}
