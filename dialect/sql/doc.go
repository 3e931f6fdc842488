// Package sql provides the SQL text primitives shared by the dictionaries
// and the row builder, and a database/sql backed driver to run them.
//
// # Buffers
//
// A Buffer accumulates SQL text and bind parameters. Values are written as
// canonical ? markers and rebound to the product placeholder style by
// Query:
//
//	b := sql.NewBuffer(d).
//	    Append("SELECT * FROM ").AppendIdent("users").
//	    Append(" WHERE ")
//	sql.And(sql.EQ("status", "active"), sql.GT("age", 18))(b)
//	query, args := b.Query()
//
// NULL and raw values never create parameters: NULL renders as the keyword
// and a raw value as its literal text. Parameters appended with
// AppendUserParam are caller-supplied and can be replaced with BindUser
// without rebuilding the text.
//
// # Subqueries
//
// AppendSubquery records a nested select whose text is computed when the
// enclosing buffer is read. Pending subqueries are resolved from the
// highest text offset to the lowest, so a buffer holding them only accepts
// new content at its end.
//
// # Selects
//
// Select is the read-only shape of a query consumed by the dictionaries to
// render pagination and locking. SelectSpec is a plain implementation:
//
//	s := sql.NewSelect(d).
//	    Columns("id", "name").
//	    From("users", "u").
//	    Filter(sql.EQ("u.active", true)).
//	    OrderBy("name").
//	    Limit(20, 10)
//
// # Drivers
//
// Driver wraps a *sql.DB and implements dialect.Driver. ExecBuffer and
// QueryBuffer run a Buffer through any dialect.ExecQuerier. StatsDriver
// and DebugDriver decorate a Driver with statistics and logging.
package sql
