package dbdict

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched by errors.Is against the typed errors below.
var (
	// ErrUnsupported is returned when an operation needs a capability the
	// dictionary does not have.
	ErrUnsupported = errors.New("dbdict: unsupported operation")

	// ErrStore matches every classified database error.
	ErrStore = errors.New("dbdict: store error")

	// ErrLock is returned when a lock could not be obtained.
	ErrLock = errors.New("dbdict: lock conflict")

	// ErrObjectExists is returned when a row or object already exists.
	ErrObjectExists = errors.New("dbdict: object exists")

	// ErrObjectNotFound is returned when a row or object does not exist.
	ErrObjectNotFound = errors.New("dbdict: object not found")

	// ErrOptimistic is returned when a concurrent modification was detected.
	ErrOptimistic = errors.New("dbdict: optimistic concurrency conflict")

	// ErrReferentialIntegrity is returned when a constraint was violated.
	ErrReferentialIntegrity = errors.New("dbdict: referential integrity violation")

	// ErrQueryTimeout is returned when a statement was cancelled by a timeout.
	ErrQueryTimeout = errors.New("dbdict: query timeout")

	// ErrStorage is returned when a value cannot be stored without loss.
	ErrStorage = errors.New("dbdict: storage limitation")

	// ErrNameLength is returned when an identifier exceeds the product limit.
	ErrNameLength = errors.New("dbdict: name too long")
)

// Kind classifies database errors.
type Kind int

// Error kinds.
const (
	KindGeneral Kind = iota
	KindLock
	KindObjectExists
	KindObjectNotFound
	KindOptimistic
	KindReferentialIntegrity
	KindQueryTimeout
	KindStorage
)

var kindNames = [...]string{
	KindGeneral:              "general",
	KindLock:                 "lock",
	KindObjectExists:         "object-exists",
	KindObjectNotFound:       "object-not-found",
	KindOptimistic:           "optimistic",
	KindReferentialIntegrity: "referential-integrity",
	KindQueryTimeout:         "query-timeout",
	KindStorage:              "storage",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses a kind name as returned by String.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return KindGeneral, fmt.Errorf("dbdict: unknown error kind %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k Kind) sentinel() error {
	switch k {
	case KindLock:
		return ErrLock
	case KindObjectExists:
		return ErrObjectExists
	case KindObjectNotFound:
		return ErrObjectNotFound
	case KindOptimistic:
		return ErrOptimistic
	case KindReferentialIntegrity:
		return ErrReferentialIntegrity
	case KindQueryTimeout:
		return ErrQueryTimeout
	case KindStorage:
		return ErrStorage
	}
	return nil
}

// UnsupportedError is returned when an operation is gated by a capability
// the dictionary does not have. It is a programming or configuration error.
type UnsupportedError struct {
	Dialect    string // product name
	Op         string // operation that was attempted
	Capability string // name of the missing capability flag
}

// Error returns the error string.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("dbdict: %s: %s is not supported (%s)", e.Dialect, e.Op, e.Capability)
}

// Is reports whether the target error matches ErrUnsupported.
func (e *UnsupportedError) Is(err error) bool {
	return err == ErrUnsupported
}

// NewUnsupportedError returns a new UnsupportedError.
func NewUnsupportedError(dialect, op, capability string) *UnsupportedError {
	return &UnsupportedError{Dialect: dialect, Op: op, Capability: capability}
}

// IsUnsupported returns true if the error is an UnsupportedError.
func IsUnsupported(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedError
	return errors.As(err, &e) || errors.Is(err, ErrUnsupported)
}

// StoreError is a database error classified into a Kind. The typed errors
// of each kind embed it.
type StoreError struct {
	Kind     Kind
	Msg      string // context of the failed operation
	SQLState string // SQL state reported by the driver, if any
	Code     int    // vendor error code, if any
	Failed   any    // object whose statement failed, if known
	Err      error  // driver error
}

// Error returns the error string.
func (e *StoreError) Error() string {
	var sb strings.Builder
	sb.WriteString("dbdict: ")
	if e.Msg != "" {
		sb.WriteString(e.Msg)
	} else {
		sb.WriteString(e.Kind.String())
	}
	if e.SQLState != "" || e.Code != 0 {
		sb.WriteString(" [")
		if e.SQLState != "" {
			sb.WriteString("state=")
			sb.WriteString(e.SQLState)
		}
		if e.Code != 0 {
			if e.SQLState != "" {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "code=%d", e.Code)
		}
		sb.WriteByte(']')
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the driver error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is matches ErrStore and the sentinel of the error kind.
func (e *StoreError) Is(err error) bool {
	return err == ErrStore || (err != nil && err == e.Kind.sentinel())
}

func (e *StoreError) store() *StoreError { return e }

type (
	// LockError reports a lock conflict or deadlock.
	LockError struct{ StoreError }
	// ObjectExistsError reports a duplicate key or existing object.
	ObjectExistsError struct{ StoreError }
	// ObjectNotFoundError reports a missing row or object.
	ObjectNotFoundError struct{ StoreError }
	// OptimisticError reports a concurrent modification. Failed holds the
	// object whose version did not match.
	OptimisticError struct{ StoreError }
	// ReferentialIntegrityError reports a violated constraint.
	ReferentialIntegrityError struct{ StoreError }
	// QueryTimeoutError reports a statement cancelled by a timeout.
	QueryTimeoutError struct{ StoreError }
	// StorageError reports a value that cannot be stored without loss.
	StorageError struct{ StoreError }
)

// NewStoreError returns the typed error of the kind. The returned error
// always satisfies errors.Is(err, ErrStore).
func NewStoreError(kind Kind, msg, state string, failed any, err error) error {
	se := StoreError{Kind: kind, Msg: msg, SQLState: state, Failed: failed, Err: err}
	return wrapKind(se)
}

// NewStoreErrorCode is like NewStoreError with a vendor error code.
func NewStoreErrorCode(kind Kind, msg, state string, code int, failed any, err error) error {
	se := StoreError{Kind: kind, Msg: msg, SQLState: state, Code: code, Failed: failed, Err: err}
	return wrapKind(se)
}

func wrapKind(se StoreError) error {
	switch se.Kind {
	case KindLock:
		return &LockError{se}
	case KindObjectExists:
		return &ObjectExistsError{se}
	case KindObjectNotFound:
		return &ObjectNotFoundError{se}
	case KindOptimistic:
		return &OptimisticError{se}
	case KindReferentialIntegrity:
		return &ReferentialIntegrityError{se}
	case KindQueryTimeout:
		return &QueryTimeoutError{se}
	case KindStorage:
		return &StorageError{se}
	}
	return &se
}

// NewOptimisticError returns an OptimisticError for the failed object.
func NewOptimisticError(msg string, failed any) *OptimisticError {
	return &OptimisticError{StoreError{Kind: KindOptimistic, Msg: msg, Failed: failed}}
}

// AsStoreError returns the classified error in the chain, whatever its kind.
func AsStoreError(err error) (*StoreError, bool) {
	type storer interface{ store() *StoreError }
	for err != nil {
		if s, ok := err.(storer); ok {
			return s.store(), true
		}
		err = errors.Unwrap(err)
	}
	return nil, false
}

// KindOf returns the kind of a classified error, or KindGeneral.
func KindOf(err error) Kind {
	if s, ok := AsStoreError(err); ok {
		return s.Kind
	}
	return KindGeneral
}

// IsLock returns true if the error is a lock conflict.
func IsLock(err error) bool {
	return err != nil && errors.Is(err, ErrLock)
}

// IsObjectExists returns true if the error reports an existing object.
func IsObjectExists(err error) bool {
	return err != nil && errors.Is(err, ErrObjectExists)
}

// IsObjectNotFound returns true if the error reports a missing object.
func IsObjectNotFound(err error) bool {
	return err != nil && errors.Is(err, ErrObjectNotFound)
}

// IsOptimistic returns true if the error is an optimistic concurrency conflict.
func IsOptimistic(err error) bool {
	return err != nil && errors.Is(err, ErrOptimistic)
}

// IsReferentialIntegrity returns true if the error is a constraint violation.
func IsReferentialIntegrity(err error) bool {
	return err != nil && errors.Is(err, ErrReferentialIntegrity)
}

// IsQueryTimeout returns true if the error is a statement timeout.
func IsQueryTimeout(err error) bool {
	return err != nil && errors.Is(err, ErrQueryTimeout)
}

// IsStorage returns true if the error is a storage limitation.
func IsStorage(err error) bool {
	return err != nil && errors.Is(err, ErrStorage)
}

// NameLengthError reports an identifier longer than the product allows.
type NameLengthError struct {
	Kind string // table, column, constraint, index or sequence
	Name string
	Max  int
}

// Error returns the error string.
func (e *NameLengthError) Error() string {
	return fmt.Sprintf("dbdict: %s name %q is %d characters long, the limit is %d", e.Kind, e.Name, len(e.Name), e.Max)
}

// Is reports whether the target error matches ErrNameLength.
func (e *NameLengthError) Is(err error) bool {
	return err == ErrNameLength
}

// IsNameLength returns true if the error is a NameLengthError.
func IsNameLength(err error) bool {
	if err == nil {
		return false
	}
	var e *NameLengthError
	return errors.As(err, &e) || errors.Is(err, ErrNameLength)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "dbdict: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("dbdict: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil. A single error is returned as is.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	switch len(filtered) {
	case 0:
		return nil
	case 1:
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
