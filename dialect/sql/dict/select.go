package dict

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/syssam/dbdict/dialect/sql"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

// LockingBlocker returns the name of the first capability flag that
// prevents locking the rows of sel, or "" when they can be locked.
func (d *Dictionary) LockingBlocker(sel sql.Select) string {
	c := d.Capabilities()
	switch {
	case !c.SupportsSelectForUpdate:
		return "SupportsSelectForUpdate"
	case sel.Aggregate() && !c.SupportsLockingWithAggregate:
		return "SupportsLockingWithAggregate"
	case sel.Distinct() && !c.SupportsLockingWithDistinctClause:
		return "SupportsLockingWithDistinctClause"
	case len(sel.Tables())+len(sel.Joins()) > 1 && !c.SupportsLockingWithMultipleTables:
		return "SupportsLockingWithMultipleTables"
	case !sel.Ordering().IsEmpty() && !c.SupportsLockingWithOrderClause:
		return "SupportsLockingWithOrderClause"
	case sql.HasRange(sel) && !c.SupportsLockingWithSelectRange:
		return "SupportsLockingWithSelectRange"
	}
	for _, j := range sel.Joins() {
		if j.Kind == sql.JoinOuter && !c.SupportsLockingWithOuterJoin {
			return "SupportsLockingWithOuterJoin"
		}
		if j.Kind != sql.JoinOuter && !c.SupportsLockingWithInnerJoin {
			return "SupportsLockingWithInnerJoin"
		}
	}
	return ""
}

// SupportsLocking reports whether a locking clause may be added to sel.
func (d *Dictionary) SupportsLocking(sel sql.Select) bool {
	return d.LockingBlocker(sel) == ""
}

// WithLockTimeout returns a context bounding how long the statements run
// with it wait for row locks, such as those of ToSelect(sel, true). The
// driver sets the session variable before each statement. Products
// without one return ctx unchanged.
func (d *Dictionary) WithLockTimeout(ctx context.Context, timeout time.Duration) context.Context {
	if d.p.lockTimeout == nil || timeout <= 0 {
		return ctx
	}
	name, v := d.p.lockTimeout(timeout)
	return sql.WithIntVar(ctx, name, v)
}

// ForUpdateClause returns the locking clause written after the select
// body, or "" for products that lock with table hints.
func (d *Dictionary) ForUpdateClause(sel sql.Select) string {
	c := d.Capabilities()
	if d.p.forUpdate != nil {
		return d.p.forUpdate(c, sel)
	}
	return c.ForUpdateClause
}

// RowsToSkip returns the number of leading rows the caller must discard
// from the result of ToSelect, for products that cannot express the start
// of the range in SQL. Products that cannot express a range at all also
// leave the end to the caller.
func (d *Dictionary) RowsToSkip(sel sql.Select) int64 {
	if !sql.HasRange(sel) {
		return 0
	}
	start, _ := sel.Range()
	c := d.Capabilities()
	switch {
	case !c.SupportsSelectEndIndex, !c.SupportsSelectStartIndex:
		return start
	case d.inPlaceRange(sel):
		return start
	}
	return 0
}

func (d *Dictionary) inPlaceRange(sel sql.Select) bool {
	return d.p.rangeFilter != nil && (d.p.needsWrap == nil || !d.p.needsWrap(sel))
}

// effectiveRange returns the bounds written in SQL.
func (d *Dictionary) effectiveRange(c *Capabilities, sel sql.Select) (start, end int64) {
	start, end = sel.Range()
	if !c.SupportsSelectStartIndex || d.inPlaceRange(sel) {
		start = 0
	}
	return start, end
}

// ToSelect renders sel. With forUpdate, the rows are locked using the
// product syntax; when the shape of sel prevents locking, an
// *dbdict.UnsupportedError naming the blocking flag is returned unless
// the dictionary simulates locking.
func (d *Dictionary) ToSelect(sel sql.Select, forUpdate bool) (*sql.Buffer, error) {
	c := d.Capabilities()
	if forUpdate {
		if flag := d.LockingBlocker(sel); flag != "" {
			if !c.SimulateLocking {
				return nil, d.unsupported("select for update", flag)
			}
			d.log.Debug("locking simulated", "dialect", d.name, "blocker", flag)
			forUpdate = false
		}
	}
	if err := d.checkSelect(c, sel); err != nil {
		return nil, err
	}
	ranged := sql.HasRange(sel) && c.SupportsSelectEndIndex
	if ranged && d.p.wrapRange != nil && d.p.needsWrap != nil && d.p.needsWrap(sel) {
		start, end := d.effectiveRange(c, sel)
		b := d.p.wrapRange(d.selectBody(c, sel, false, false), start, end)
		if forUpdate {
			appendClause(b, d.ForUpdateClause(sel))
		}
		return b, nil
	}
	return d.selectBody(c, sel, forUpdate, ranged), nil
}

func (d *Dictionary) checkSelect(c *Capabilities, sel sql.Select) error {
	if !sel.Having().IsEmpty() && !c.SupportsHaving {
		return d.unsupported("having", "SupportsHaving")
	}
	if sel.FromSelect() != nil && !c.SupportsSubselect {
		return d.unsupported("select from subselect", "SupportsSubselect")
	}
	if c.JoinSyntax == JoinTraditional {
		for _, j := range sel.Joins() {
			if j.Kind == sql.JoinOuter {
				return d.unsupported("outer join", "JoinSyntax")
			}
		}
	}
	return nil
}

func appendClause(b *sql.Buffer, clause string) {
	if clause != "" {
		b.Append(" ").Append(clause)
	}
}

// selectBody renders the select with the range at its range position.
func (d *Dictionary) selectBody(c *Capabilities, sel sql.Select, forUpdate, ranged bool) *sql.Buffer {
	start, end := d.effectiveRange(c, sel)
	at := func(b *sql.Buffer, pos RangePosition) {
		if ranged && c.RangePosition == pos && !d.inPlaceRange(sel) {
			d.appendRange(c, b, sel, start, end)
		}
	}
	b := sql.NewBuffer(d).Append("SELECT ")
	at(b, RangePreDistinct)
	if sel.Distinct() {
		b.Append("DISTINCT ")
	}
	at(b, RangePostDistinct)
	if sel.Selects().IsEmpty() {
		b.Append("*")
	} else {
		b.AppendBuffer(sel.Selects())
	}
	b.Append(" FROM ")
	conds := d.appendFrom(c, b, sel, forUpdate)
	if !sel.Where().IsEmpty() {
		conds = append([]*sql.Buffer{sel.Where()}, conds...)
	}
	if ranged && d.inPlaceRange(sel) && end != sql.NoLimit {
		conds = append(conds, sql.NewBuffer(d).Append(d.p.rangeFilter(end)))
	}
	if len(conds) > 0 {
		b.Append(" WHERE ").Join(" AND ", conds...)
	}
	if !sel.Grouping().IsEmpty() {
		b.Append(" GROUP BY ").AppendBuffer(sel.Grouping())
	}
	if !sel.Having().IsEmpty() {
		b.Append(" HAVING ").AppendBuffer(sel.Having())
	}
	if !sel.Ordering().IsEmpty() {
		b.Append(" ORDER BY ").AppendBuffer(sel.Ordering())
	}
	at(b, RangePostSelect)
	if forUpdate {
		appendClause(b, d.ForUpdateClause(sel))
	}
	at(b, RangePostLock)
	return b
}

// appendFrom writes the FROM list and joins. With traditional join syntax
// the join conditions are returned to be ANDed into the WHERE clause.
func (d *Dictionary) appendFrom(c *Capabilities, b *sql.Buffer, sel sql.Select, forUpdate bool) []*sql.Buffer {
	hint := ""
	if forUpdate {
		hint = c.TableForUpdateClause
	}
	for i, t := range sel.Tables() {
		if i > 0 {
			b.Append(", ")
		}
		if inner := sel.FromSelect(); i == 0 && inner != nil {
			b.AppendSubquery(d.subquery(inner), t.Alias)
			continue
		}
		d.appendTable(b, t, hint)
	}
	var conds []*sql.Buffer
	for _, j := range sel.Joins() {
		if c.JoinSyntax == JoinTraditional {
			b.Append(", ")
			d.appendTable(b, j.Table, hint)
			if !j.On.IsEmpty() {
				conds = append(conds, j.On)
			}
			continue
		}
		b.Append(" ").Append(joinClause(c, j.Kind)).Append(" ")
		d.appendTable(b, j.Table, hint)
		if j.Kind != sql.JoinCross && !j.On.IsEmpty() {
			b.Append(" ON ").AppendBuffer(j.On)
		}
	}
	return conds
}

func (d *Dictionary) appendTable(b *sql.Buffer, t sql.TableRef, hint string) {
	if t.Schema != "" {
		b.AppendIdent(t.Schema).Append(".")
	}
	b.AppendIdent(t.Name)
	if t.Alias != "" {
		b.Append(" ").AppendIdent(t.Alias)
	}
	appendClause(b, hint)
}

func joinClause(c *Capabilities, k sql.JoinKind) string {
	switch k {
	case sql.JoinOuter:
		return c.OuterJoinClause
	case sql.JoinCross:
		return c.CrossJoinClause
	}
	return c.InnerJoinClause
}

// subquery returns the lazily rendered select of a derived table.
func (d *Dictionary) subquery(inner sql.Select) sql.Subquery {
	return sql.SubqueryFunc(func() *sql.Buffer {
		b, err := d.ToSelect(inner, false)
		if err != nil {
			return sql.NewBuffer(d).AddError(err)
		}
		return b
	})
}

func (d *Dictionary) appendRange(c *Capabilities, b *sql.Buffer, sel sql.Select, start, end int64) {
	if d.p.appendRange != nil {
		d.p.appendRange(c, b, sel, start, end)
		return
	}
	offsetFetch(b, start, end)
}

// limitOffset writes " LIMIT n OFFSET s".
func limitOffset(b *sql.Buffer, start, end int64) {
	if end != sql.NoLimit {
		b.Append(" LIMIT ").Append(strconv.FormatInt(end-start, 10))
	}
	if start > 0 {
		b.Append(" OFFSET ").Append(strconv.FormatInt(start, 10))
	}
}

// offsetFetch writes the SQL:2008 " OFFSET s ROWS FETCH NEXT n ROWS ONLY".
func offsetFetch(b *sql.Buffer, start, end int64) {
	b.Append(" OFFSET ").Append(strconv.FormatInt(start, 10)).Append(" ROWS")
	if end != sql.NoLimit {
		b.Append(" FETCH NEXT ").Append(strconv.FormatInt(end-start, 10)).Append(" ROWS ONLY")
	}
}

// countSelect is a select projected to COUNT(*) without ordering.
type countSelect struct {
	sql.Select
	d sql.Dialect
}

func (s countSelect) Selects() *sql.Buffer { return sql.NewBuffer(s.d).Append("COUNT(*)") }
func (s countSelect) Ordering() *sql.Buffer { return sql.NewBuffer(s.d) }
func (s countSelect) Aggregate() bool { return true }

// ToSelectCount renders a select counting the rows of sel. Distinct,
// grouped, ranged and derived selects are counted through a subselect.
func (d *Dictionary) ToSelectCount(sel sql.Select) (*sql.Buffer, error) {
	c := d.Capabilities()
	if sel.Distinct() || !sel.Grouping().IsEmpty() || sql.HasRange(sel) || sel.FromSelect() != nil {
		if !c.SupportsSubselect {
			return nil, d.unsupported("count of a distinct, grouped or ranged select", "SupportsSubselect")
		}
		inner, err := d.ToSelect(sel, false)
		if err != nil {
			return nil, err
		}
		return sql.NewBuffer(d).
			Append("SELECT COUNT(*) FROM ").
			AppendSubquery(sql.SubqueryFunc(func() *sql.Buffer { return inner }), "c"), nil
	}
	if err := d.checkSelect(c, sel); err != nil {
		return nil, err
	}
	return d.selectBody(c, countSelect{Select: sel, d: d}, false, false), nil
}

var errNoAssignments = errors.New("dict: bulk update without assignments")

// Assignment is a column assignment of a bulk update.
type Assignment struct {
	Column *schema.Column
	Value  any
}

// keySelect is a select projected to the primary key of its first table.
type keySelect struct {
	sql.Select
	proj *sql.Buffer
}

func (s keySelect) Selects() *sql.Buffer { return s.proj }
func (s keySelect) Distinct() bool { return false }
func (s keySelect) Aggregate() bool { return false }

// simpleBulk reports whether a bulk statement can use the WHERE clause of
// sel directly.
func (d *Dictionary) simpleBulk(c *Capabilities, sel sql.Select) bool {
	ts := sel.Tables()
	return len(ts) == 1 && len(sel.Joins()) == 0 && sel.FromSelect() == nil && !sql.HasRange(sel) &&
		(ts[0].Alias == "" || c.AllowsAliasInBulkClause)
}

// appendBulkWhere writes the condition of a bulk statement: the WHERE
// clause of sel, or a primary key IN subselect for joined selects.
func (d *Dictionary) appendBulkWhere(c *Capabilities, b *sql.Buffer, t *schema.Table, sel sql.Select, op string) error {
	if d.simpleBulk(c, sel) {
		if !sel.Where().IsEmpty() {
			b.Append(" WHERE ").AppendBuffer(sel.Where())
		}
		return nil
	}
	if !c.SupportsSubselect {
		return d.unsupported(op, "SupportsSubselect")
	}
	pk := t.PrimaryKey
	if pk == nil || len(pk.Columns) != 1 {
		return d.unsupported(op+" of a table without a single-column primary key", "SupportsSubselect")
	}
	col := pk.Columns[0].Name
	proj := sql.NewBuffer(d)
	if ts := sel.Tables(); len(ts) > 0 && ts[0].Alias != "" {
		proj.AppendIdent(ts[0].Alias).Append(".")
	}
	proj.AppendIdent(col)
	inner := keySelect{Select: sel, proj: proj}
	b.Append(" WHERE ").AppendIdent(col).Append(" IN ").AppendSubquery(d.subquery(inner), "")
	return nil
}

func (d *Dictionary) bulkTable(c *Capabilities, b *sql.Buffer, t *schema.Table, sel sql.Select) {
	b.Append(d.FullName(t))
	if ts := sel.Tables(); d.simpleBulk(c, sel) && ts[0].Alias != "" {
		b.Append(" ").AppendIdent(ts[0].Alias)
	}
}

// ToDelete renders a bulk delete of the rows of t matched by sel.
func (d *Dictionary) ToDelete(t *schema.Table, sel sql.Select) (*sql.Buffer, error) {
	c := d.Capabilities()
	b := sql.NewBuffer(d).Append("DELETE FROM ")
	d.bulkTable(c, b, t, sel)
	if err := d.appendBulkWhere(c, b, t, sel, "bulk delete"); err != nil {
		return nil, err
	}
	return b, nil
}

// ToUpdate renders a bulk update of the rows of t matched by sel. Every
// version column of t that is not assigned explicitly is bumped: numbers
// are incremented and timestamps set to CURRENT_TIMESTAMP.
func (d *Dictionary) ToUpdate(t *schema.Table, sel sql.Select, sets []Assignment) (*sql.Buffer, error) {
	c := d.Capabilities()
	b := sql.NewBuffer(d).Append("UPDATE ")
	d.bulkTable(c, b, t, sel)
	b.Append(" SET ")
	n := 0
	for _, a := range sets {
		if n > 0 {
			b.Append(", ")
		}
		b.AppendIdent(a.Column.Name).Append(" = ")
		d.AppendMarkedValue(b, a.Column, a.Value)
		n++
	}
	for _, vc := range t.VersionColumns() {
		if assigned(sets, vc) {
			continue
		}
		if n > 0 {
			b.Append(", ")
		}
		b.AppendIdent(vc.Name).Append(" = ")
		if vc.Version == schema.VersionTimestamp {
			b.Append("CURRENT_TIMESTAMP")
		} else {
			b.AppendIdent(vc.Name).Append(" + 1")
		}
		n++
	}
	if n == 0 {
		return nil, errNoAssignments
	}
	if err := d.appendBulkWhere(c, b, t, sel, "bulk update"); err != nil {
		return nil, err
	}
	return b, nil
}

func assigned(sets []Assignment, col *schema.Column) bool {
	for _, a := range sets {
		if a.Column == col || (a.Column != nil && strings.EqualFold(a.Column.Name, col.Name)) {
			return true
		}
	}
	return false
}

// AppendMarkedValue appends v as the value written to col, wrapping its
// placeholder in the marker of the column. NULL is bound as a parameter
// so the text does not depend on the value.
func (d *Dictionary) AppendMarkedValue(b *sql.Buffer, col *schema.Column, v any) {
	if val, ok := v.(sql.Value); ok && val.IsRaw() {
		b.AppendValue(v, col)
		return
	}
	pre, post, _ := strings.Cut(d.MarkerForInsertUpdate(col), "?")
	b.Append(pre).AppendParam(v, col).Append(post)
}
