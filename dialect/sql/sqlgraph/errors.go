package sqlgraph

import (
	"errors"
	"strings"

	"github.com/syssam/dbdict"
)

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	return dbdict.IsReferentialIntegrity(err) ||
		IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err)
}

// IsOptimisticLockError reports whether a versioned UPDATE or DELETE
// matched no row.
func IsOptimisticLockError(err error) bool {
	return dbdict.IsOptimistic(err)
}

// IsRetryableError reports whether the statement failed on a lock conflict,
// a deadlock or a timeout, and may succeed when the transaction is retried.
func IsRetryableError(err error) bool {
	return dbdict.IsLock(err) || dbdict.IsQueryTimeout(err)
}

// errorCoder is an interface for database errors that provide error codes.
type errorCoder interface {
	Code() string
}

// errorNumberer is an interface for database errors that provide numeric error codes.
type errorNumberer interface {
	Number() uint16
}

// sqlStateError is an interface for errors that provide SQLSTATE codes.
// Implemented by: pgconn.PgError, pq.Error.
type sqlStateError interface {
	SQLState() string
}

// SQLSTATE codes for constraint violations (Class 23).
const (
	stateUniqueViolation     = "23505"
	stateForeignKeyViolation = "23503"
	stateCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
// e.g. duplicate value in unique index.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if se, ok := dbdict.AsStoreError(err); ok {
		if se.Kind == dbdict.KindObjectExists || se.SQLState == stateUniqueViolation {
			return true
		}
	}
	if hasState(err, stateUniqueViolation) {
		return true
	}
	if e, ok := asError[errorNumberer](err); ok && e.Number() == mysqlDuplicateEntry {
		return true
	}

	// Fallback to string matching for drivers that don't implement interfaces
	return containsAny(err.Error(),
		"Error 1062",                 // MySQL
		"violates unique constraint", // Postgres
		"UNIQUE constraint failed",   // SQLite
		"ORA-00001",                  // Oracle
	)
}

// IsForeignKeyConstraintError reports if the error resulted from a database foreign-key constraint violation.
// e.g. parent row does not exist.
func IsForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if se, ok := dbdict.AsStoreError(err); ok && se.SQLState == stateForeignKeyViolation {
		return true
	}
	if hasState(err, stateForeignKeyViolation) {
		return true
	}
	if e, ok := asError[errorNumberer](err); ok {
		num := e.Number()
		if num == mysqlForeignKeyParent || num == mysqlForeignKeyChild {
			return true
		}
	}

	// Fallback to string matching for drivers that don't implement interfaces
	return containsAny(err.Error(),
		"Error 1451",                      // MySQL (Cannot delete or update a parent row)
		"Error 1452",                      // MySQL (Cannot add or update a child row)
		"violates foreign key constraint", // Postgres
		"FOREIGN KEY constraint failed",   // SQLite
		"ORA-02291", "ORA-02292",          // Oracle
	)
}

// IsCheckConstraintError reports if the error resulted from a database check constraint violation.
// e.g. a value does not satisfy a check condition.
func IsCheckConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if se, ok := dbdict.AsStoreError(err); ok && se.SQLState == stateCheckViolation {
		return true
	}
	if hasState(err, stateCheckViolation) {
		return true
	}
	if e, ok := asError[errorNumberer](err); ok && e.Number() == mysqlCheckConstraintViolate {
		return true
	}

	// Fallback to string matching for drivers that don't implement interfaces
	return containsAny(err.Error(),
		"Error 3819",                // MySQL
		"violates check constraint", // Postgres
		"CHECK constraint failed",   // SQLite
	)
}

// hasState reports whether a driver error in the chain carries the SQLSTATE.
func hasState(err error, state string) bool {
	if e, ok := asError[sqlStateError](err); ok && e.SQLState() == state {
		return true
	}
	if e, ok := asError[errorCoder](err); ok && e.Code() == state {
		return true
	}
	return false
}

// asError attempts to extract an error implementing interface T from the error chain.
func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
