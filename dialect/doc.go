// Package dialect names the database products supported by dbdict and
// defines the driver contracts used to run the statements it produces.
//
// # Supported Products
//
//   - Postgres: PostgreSQL
//   - MySQL: MySQL and MariaDB
//   - Oracle: Oracle Database
//   - DB2: IBM Db2
//   - SQLServer: Microsoft SQL Server
//   - Derby: Apache Derby
//   - H2, HSQL: embedded Java databases
//   - SQLite: SQLite
//   - Generic: SQL-92 fallback
//
// Driver names used with database/sql are mapped to product names with
// Normalize:
//
//	dialect.Normalize("pgx")     // "postgres"
//	dialect.Normalize("sqlite3") // "sqlite"
//
// # Driver Interface
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// The Tx interface adds Commit and Rollback. Both satisfy ExecQuerier,
// which is all the dictionary probe and the row executor need.
//
// # Sub-packages
//
//   - dialect/sql: SQL buffer, bind parameters, select shape and the database/sql driver
//   - dialect/sql/schema: schema descriptors, validation and loading
//   - dialect/sql/dict: per-product dictionaries
//   - dialect/sql/sqlgraph: row mutations and their execution
//   - dialect/sql/sqlcache: compiled statement cache
package dialect
