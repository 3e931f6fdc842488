package sql

import (
	"math"
)

// NoLimit is the end index of an unbounded range.
const NoLimit int64 = math.MaxInt64

// JoinKind is the kind of a join.
type JoinKind int

// Join kinds.
const (
	JoinInner JoinKind = iota
	JoinOuter
	JoinCross
)

// String returns the name of the join kind.
func (k JoinKind) String() string {
	switch k {
	case JoinOuter:
		return "outer"
	case JoinCross:
		return "cross"
	}
	return "inner"
}

// Isolation is the isolation level requested for a locking select.
type Isolation int

// Isolation levels. IsolationDefault leaves the level to the connection.
const (
	IsolationDefault Isolation = iota
	IsolationReadUncommitted
	IsolationReadCommitted
	IsolationRepeatableRead
	IsolationSerializable
)

// String returns the SQL name of the isolation level.
func (i Isolation) String() string {
	switch i {
	case IsolationReadUncommitted:
		return "READ UNCOMMITTED"
	case IsolationReadCommitted:
		return "READ COMMITTED"
	case IsolationRepeatableRead:
		return "REPEATABLE READ"
	case IsolationSerializable:
		return "SERIALIZABLE"
	}
	return "DEFAULT"
}

// TableRef is a table in a FROM clause.
type TableRef struct {
	Name   string
	Schema string
	Alias  string
}

// Join is a joined table with its condition.
type Join struct {
	Kind  JoinKind
	Table TableRef
	On    *Buffer // nil for cross joins
}

// Select is the shape of a query as seen by the dictionary. It is built by
// a query compiler; the dictionary only reads it to render SQL.
type Select interface {
	// Selects returns the projection list.
	Selects() *Buffer
	// Tables returns the tables of the FROM clause, joined tables excluded.
	Tables() []TableRef
	// Joins returns the joins in declaration order.
	Joins() []Join
	// Where returns the condition, or an empty buffer.
	Where() *Buffer
	// Grouping returns the GROUP BY list, or an empty buffer.
	Grouping() *Buffer
	// Having returns the HAVING condition, or an empty buffer.
	Having() *Buffer
	// Ordering returns the ORDER BY list, or an empty buffer.
	Ordering() *Buffer
	// Distinct reports whether the projection is DISTINCT.
	Distinct() bool
	// Aggregate reports whether the projection computes aggregates.
	Aggregate() bool
	// Range returns the [start, end) window of rows; end is NoLimit when unbounded.
	Range() (start, end int64)
	// FromSelect returns the derived table queried by this select, or nil.
	// Its alias is the alias of the first table.
	FromSelect() Select
	// LockIsolation returns the isolation level requested for locking.
	LockIsolation() Isolation
}

// HasRange reports whether the select restricts its rows.
func HasRange(s Select) bool {
	start, end := s.Range()
	return start > 0 || end != NoLimit
}

// SelectSpec is a plain Select implementation with builder methods.
type SelectSpec struct {
	d         Dialect
	selects   *Buffer
	tables    []TableRef
	joins     []Join
	where     *Buffer
	grouping  *Buffer
	having    *Buffer
	ordering  *Buffer
	distinct  bool
	aggregate bool
	start     int64
	end       int64
	from      Select
	isolation Isolation
}

// NewSelect returns an empty select rendering identifiers for d.
func NewSelect(d Dialect) *SelectSpec {
	if d == nil {
		d = ANSI
	}
	return &SelectSpec{
		d:        d,
		selects:  NewBuffer(d),
		where:    NewBuffer(d),
		grouping: NewBuffer(d),
		having:   NewBuffer(d),
		ordering: NewBuffer(d),
		end:      NoLimit,
	}
}

// Columns appends columns to the projection.
func (s *SelectSpec) Columns(cols ...string) *SelectSpec {
	for _, c := range cols {
		s.sep(s.selects).AppendIdent(c)
	}
	return s
}

// Expr appends a raw expression to the projection.
func (s *SelectSpec) Expr(expr string) *SelectSpec {
	s.sep(s.selects).Append(expr)
	return s
}

// Count sets the projection to COUNT(*) and marks the select as aggregate.
func (s *SelectSpec) Count() *SelectSpec {
	s.selects = NewBuffer(s.d).Append("COUNT(*)")
	s.aggregate = true
	return s
}

func (s *SelectSpec) sep(b *Buffer) *Buffer {
	if !b.IsEmpty() {
		b.Append(", ")
	}
	return b
}

// From adds a table to the FROM clause.
func (s *SelectSpec) From(name, alias string) *SelectSpec {
	s.tables = append(s.tables, TableRef{Name: name, Alias: alias})
	return s
}

// FromTable adds a table reference to the FROM clause.
func (s *SelectSpec) FromTable(t TableRef) *SelectSpec {
	s.tables = append(s.tables, t)
	return s
}

// FromSubselect queries the derived table inner under the given alias.
func (s *SelectSpec) FromSubselect(inner Select, alias string) *SelectSpec {
	s.from = inner
	s.tables = append([]TableRef{{Alias: alias}}, s.tables...)
	return s
}

// Join joins a table on a condition.
func (s *SelectSpec) Join(kind JoinKind, name, alias string, on Predicate) *SelectSpec {
	j := Join{Kind: kind, Table: TableRef{Name: name, Alias: alias}}
	if on != nil {
		j.On = NewBuffer(s.d)
		on(j.On)
	}
	s.joins = append(s.joins, j)
	return s
}

// Filter ANDs the predicates into the WHERE condition.
func (s *SelectSpec) Filter(ps ...Predicate) *SelectSpec {
	for _, p := range ps {
		if !s.where.IsEmpty() {
			s.where.Append(" AND ")
		}
		p(s.where)
	}
	return s
}

// GroupBy appends columns to the GROUP BY list.
func (s *SelectSpec) GroupBy(cols ...string) *SelectSpec {
	for _, c := range cols {
		s.sep(s.grouping).AppendIdent(c)
	}
	s.aggregate = true
	return s
}

// HavingPred ANDs the predicate into the HAVING condition.
func (s *SelectSpec) HavingPred(p Predicate) *SelectSpec {
	if !s.having.IsEmpty() {
		s.having.Append(" AND ")
	}
	p(s.having)
	return s
}

// OrderBy appends ascending columns to the ORDER BY list.
func (s *SelectSpec) OrderBy(cols ...string) *SelectSpec {
	for _, c := range cols {
		s.sep(s.ordering).AppendIdent(c)
	}
	return s
}

// OrderByDesc appends descending columns to the ORDER BY list.
func (s *SelectSpec) OrderByDesc(cols ...string) *SelectSpec {
	for _, c := range cols {
		s.sep(s.ordering).AppendIdent(c).Append(" DESC")
	}
	return s
}

// SetDistinct sets the DISTINCT flag.
func (s *SelectSpec) SetDistinct(v bool) *SelectSpec {
	s.distinct = v
	return s
}

// SetAggregate sets the aggregate flag.
func (s *SelectSpec) SetAggregate(v bool) *SelectSpec {
	s.aggregate = v
	return s
}

// SetRange restricts the rows to [start, end).
func (s *SelectSpec) SetRange(start, end int64) *SelectSpec {
	s.start, s.end = max(start, 0), end
	return s
}

// Limit restricts the rows to the first n after skipping offset rows.
func (s *SelectSpec) Limit(offset, n int64) *SelectSpec {
	return s.SetRange(offset, offset+n)
}

// SetIsolation sets the isolation requested when locking.
func (s *SelectSpec) SetIsolation(i Isolation) *SelectSpec {
	s.isolation = i
	return s
}

// Selects implements Select.
func (s *SelectSpec) Selects() *Buffer { return s.selects }

// Tables implements Select.
func (s *SelectSpec) Tables() []TableRef { return s.tables }

// Joins implements Select.
func (s *SelectSpec) Joins() []Join { return s.joins }

// Where implements Select.
func (s *SelectSpec) Where() *Buffer { return s.where }

// Grouping implements Select.
func (s *SelectSpec) Grouping() *Buffer { return s.grouping }

// Having implements Select.
func (s *SelectSpec) Having() *Buffer { return s.having }

// Ordering implements Select.
func (s *SelectSpec) Ordering() *Buffer { return s.ordering }

// Distinct implements Select.
func (s *SelectSpec) Distinct() bool { return s.distinct }

// Aggregate implements Select.
func (s *SelectSpec) Aggregate() bool { return s.aggregate }

// Range implements Select.
func (s *SelectSpec) Range() (int64, int64) { return s.start, s.end }

// FromSelect implements Select.
func (s *SelectSpec) FromSelect() Select { return s.from }

// LockIsolation implements Select.
func (s *SelectSpec) LockIsolation() Isolation { return s.isolation }

var _ Select = (*SelectSpec)(nil)
