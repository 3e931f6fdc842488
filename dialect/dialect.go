package dialect

import (
	"context"
	"strings"
)

// Database products with a dictionary.
const (
	Generic   = "generic"
	Postgres  = "postgres"
	MySQL     = "mysql"
	MariaDB   = "mariadb"
	Oracle    = "oracle"
	DB2       = "db2"
	SQLServer = "sqlserver"
	Derby     = "derby"
	H2        = "h2"
	HSQL      = "hsql"
	SQLite    = "sqlite"
)

// ExecQuerier wraps the two database operations.
type ExecQuerier interface {
	// Exec executes a query that does not return records. For example, in SQL, INSERT or UPDATE.
	// It scans the result into the pointer v. For SQL drivers, it is dialect/sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows, typically a SELECT in SQL.
	// It scans the result into the pointer v. For SQL drivers, it is *dialect/sql.Rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for executing
// the statements produced by a dictionary.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the product name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in transaction.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

// Normalize maps database/sql driver names and product aliases to the
// product name of their dictionary. Unknown names are returned lowercased.
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "pgx", "postgresql", "pq", "pg":
		return Postgres
	case "sqlite3":
		return SQLite
	case "mssql", "sqlserver2012", "azuresql":
		return SQLServer
	case "ora", "godror", "oci8":
		return Oracle
	case "go_ibm_db", "ibm_db":
		return DB2
	case "hsqldb":
		return HSQL
	}
	return n
}
