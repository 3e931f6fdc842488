package sqlgraph

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/dbdict"
	"github.com/syssam/dbdict/dialect/sql"
	"github.com/syssam/dbdict/dialect/sql/dict"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

// Action is the statement a Row is planned for.
type Action uint8

// Row actions.
const (
	ActionInsert Action = iota + 1
	ActionUpdate
	ActionDelete
)

// String implements fmt.Stringer.
func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "INSERT"
	case ActionUpdate:
		return "UPDATE"
	case ActionDelete:
		return "DELETE"
	}
	return fmt.Sprintf("Action(%d)", a)
}

var (
	errNoAssignments = errors.New("sqlgraph: update row has no assignments")
	errCompiled      = errors.New("sqlgraph: row is already compiled")
)

// Row is a single-row INSERT, UPDATE or DELETE planned against a table.
// Values are written to slots indexed by column position: set slots hold
// the values written, where slots the equality conditions. A Row compiles
// its SQL once, on first use, and must not be modified afterwards.
//
// A Row is owned by one goroutine.
type Row struct {
	table  *schema.Table
	action Action
	set    []sql.Value
	where  []sql.Value
	valid  bool
	failed any
	errs   []error

	// compiled statement, for the dictionary it was built for.
	dict *dict.Dictionary
	buf  *sql.Buffer
	text string
}

// NewRow returns a row for the given table and action. DELETE rows are
// valid from the start.
func NewRow(t *schema.Table, action Action) *Row {
	return &Row{
		table:  t,
		action: action,
		set:    make([]sql.Value, len(t.Columns)),
		where:  make([]sql.Value, len(t.Columns)),
		valid:  action == ActionDelete,
	}
}

// Table returns the target table.
func (r *Row) Table() *schema.Table { return r.table }

// Action returns the planned statement.
func (r *Row) Action() Action { return r.action }

// IsValid reports whether the row must be flushed. An INSERT becomes valid
// with its first assignment, even one skipped for an auto-assigned column.
func (r *Row) IsValid() bool { return r.valid }

// SetFailed records the object reported when the statement of the row
// fails, e.g. by an optimistic lock conflict.
func (r *Row) SetFailed(v any) *Row {
	r.failed = v
	return r
}

// Failed returns the object recorded with SetFailed, or the row itself.
func (r *Row) Failed() any {
	if r.failed != nil {
		return r.failed
	}
	return r
}

// SetString sets a string value.
func (r *Row) SetString(col *schema.Column, v string) *Row {
	return r.setObject(col, typed(col, schema.TypeVarchar, v), false)
}

// SetInt64 sets an integer value.
func (r *Row) SetInt64(col *schema.Column, v int64) *Row {
	return r.setObject(col, typed(col, schema.TypeBigInt, v), false)
}

// SetFloat64 sets a floating point value.
func (r *Row) SetFloat64(col *schema.Column, v float64) *Row {
	return r.setObject(col, typed(col, schema.TypeDouble, v), false)
}

// SetBool sets a boolean value.
func (r *Row) SetBool(col *schema.Column, v bool) *Row {
	return r.setObject(col, typed(col, schema.TypeBoolean, v), false)
}

// SetBytes sets a binary value. A nil slice is NULL.
func (r *Row) SetBytes(col *schema.Column, v []byte) *Row {
	if v == nil {
		return r.setObject(col, nullOf(col), false)
	}
	return r.setObject(col, typed(col, schema.TypeVarbinary, v), false)
}

// SetTime sets a timestamp value.
func (r *Row) SetTime(col *schema.Column, v time.Time) *Row {
	return r.setObject(col, typed(col, schema.TypeTimestamp, v), false)
}

// SetUUID sets a UUID value.
func (r *Row) SetUUID(col *schema.Column, v uuid.UUID) *Row {
	return r.setObject(col, typed(col, schema.TypeUUID, v), false)
}

// SetNull sets NULL. On INSERT, a column with a default keeps it unless
// overrideDefault is set.
func (r *Row) SetNull(col *schema.Column, overrideDefault bool) *Row {
	return r.setObject(col, nullOf(col), overrideDefault)
}

// SetRaw sets literal SQL, e.g. CURRENT_TIMESTAMP.
func (r *Row) SetRaw(col *schema.Column, expr string) *Row {
	return r.setObject(col, sql.RawValue(expr), false)
}

// SetObject sets any value. nil is NULL and sql.Value is used as is.
func (r *Row) SetObject(col *schema.Column, v any) *Row {
	return r.setObject(col, valueOf(col, v), false)
}

// WhereString adds a string condition.
func (r *Row) WhereString(col *schema.Column, v string) *Row {
	return r.whereObject(col, typed(col, schema.TypeVarchar, v))
}

// WhereInt64 adds an integer condition.
func (r *Row) WhereInt64(col *schema.Column, v int64) *Row {
	return r.whereObject(col, typed(col, schema.TypeBigInt, v))
}

// WhereFloat64 adds a floating point condition.
func (r *Row) WhereFloat64(col *schema.Column, v float64) *Row {
	return r.whereObject(col, typed(col, schema.TypeDouble, v))
}

// WhereBool adds a boolean condition.
func (r *Row) WhereBool(col *schema.Column, v bool) *Row {
	return r.whereObject(col, typed(col, schema.TypeBoolean, v))
}

// WhereBytes adds a binary condition.
func (r *Row) WhereBytes(col *schema.Column, v []byte) *Row {
	if v == nil {
		return r.whereObject(col, nullOf(col))
	}
	return r.whereObject(col, typed(col, schema.TypeVarbinary, v))
}

// WhereTime adds a timestamp condition.
func (r *Row) WhereTime(col *schema.Column, v time.Time) *Row {
	return r.whereObject(col, typed(col, schema.TypeTimestamp, v))
}

// WhereUUID adds a UUID condition.
func (r *Row) WhereUUID(col *schema.Column, v uuid.UUID) *Row {
	return r.whereObject(col, typed(col, schema.TypeUUID, v))
}

// WhereNull adds an IS NULL condition.
func (r *Row) WhereNull(col *schema.Column) *Row {
	return r.whereObject(col, nullOf(col))
}

// WhereObject adds a condition on any value. nil renders IS NULL.
func (r *Row) WhereObject(col *schema.Column, v any) *Row {
	return r.whereObject(col, valueOf(col, v))
}

// WherePrimaryKey adds a condition per primary key column, in key order.
func (r *Row) WherePrimaryKey(vs ...any) *Row {
	pk := r.table.PrimaryKey
	if pk == nil {
		return r.addError(fmt.Errorf("sqlgraph: table %q has no primary key", r.table.Name))
	}
	if len(vs) != len(pk.Columns) {
		return r.addError(fmt.Errorf("sqlgraph: table %q: got %d primary key values, want %d", r.table.Name, len(vs), len(pk.Columns)))
	}
	for i, col := range pk.Columns {
		r.WhereObject(col, vs[i])
	}
	return r
}

func (r *Row) setObject(col *schema.Column, v sql.Value, overrideDefault bool) *Row {
	if !r.writable(col) {
		return r
	}
	if r.action == ActionDelete {
		return r.addError(fmt.Errorf("sqlgraph: set %q on a DELETE row", col.Name))
	}
	if r.action == ActionInsert {
		// Auto-assigned columns are written by the database, but the
		// insert itself must still be issued.
		if col.AutoAssign || (v.IsNull() && col.HasDefault() && !overrideDefault) {
			r.valid = true
			return r
		}
	}
	r.set[col.Index()] = v
	r.valid = true
	return r
}

func (r *Row) whereObject(col *schema.Column, v sql.Value) *Row {
	if !r.writable(col) {
		return r
	}
	r.where[col.Index()] = v
	if r.action == ActionDelete {
		r.valid = true
	}
	return r
}

func (r *Row) writable(col *schema.Column) bool {
	switch {
	case r.buf != nil:
		r.addError(errCompiled)
		return false
	case !r.table.HasColumn(col):
		name := "<nil>"
		if col != nil {
			name = col.Name
		}
		r.addError(fmt.Errorf("sqlgraph: column %q does not belong to table %q", name, r.table.Name))
		return false
	}
	return true
}

func (r *Row) addError(err error) *Row {
	r.errs = append(r.errs, err)
	return r
}

// Err returns the errors recorded while planning the row.
func (r *Row) Err() error {
	return errors.Join(r.errs...)
}

// HasVersionCondition reports whether the row is conditioned on an
// optimistic-lock column.
func (r *Row) HasVersionCondition() bool {
	for i, v := range r.where {
		if v.IsSet() && r.table.Columns[i].IsVersion() {
			return true
		}
	}
	return false
}

// SQL returns the statement of the row, rebound for the dictionary. The
// text is built on first call and the same string is returned afterwards.
func (r *Row) SQL(d *dict.Dictionary) (string, error) {
	if _, err := r.compile(d); err != nil {
		return "", err
	}
	return r.text, nil
}

// Flush binds the values of the statement in placeholder order. Raw values
// are part of the text and are not bound; NULL set values bind nil.
func (r *Row) Flush(b sql.Binder, d *dict.Dictionary) error {
	buf, err := r.compile(d)
	if err != nil {
		return err
	}
	return bindParams(b, d, buf.Params())
}

// Args returns the bound values of the statement.
func (r *Row) Args(d *dict.Dictionary) ([]any, error) {
	args := make(sql.Args, 0, len(r.set))
	if err := r.Flush(&args, d); err != nil {
		return nil, err
	}
	return args, nil
}

// Clone returns an uncompiled copy of the row with the same table, action
// and values.
func (r *Row) Clone() *Row {
	return &Row{
		table:  r.table,
		action: r.action,
		set:    slices.Clone(r.set),
		where:  slices.Clone(r.where),
		valid:  r.valid,
		failed: r.failed,
		errs:   slices.Clone(r.errs),
	}
}

func (r *Row) compile(d *dict.Dictionary) (*sql.Buffer, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	if r.buf != nil && r.dict == d {
		return r.buf, nil
	}
	var b *sql.Buffer
	switch r.action {
	case ActionInsert:
		b = r.insert(d)
	case ActionUpdate:
		b = r.update(d)
	case ActionDelete:
		b = r.delete(d)
	default:
		return nil, fmt.Errorf("sqlgraph: unknown row action %s", r.action)
	}
	if err := b.Err(); err != nil {
		return nil, err
	}
	r.dict, r.buf, r.text = d, b, d.Rebind(b.SQL())
	return b, nil
}

func (r *Row) insert(d *dict.Dictionary) *sql.Buffer {
	b := r.insertHead(d)
	if !r.hasSet() {
		clause := d.Capabilities().EmptyInsertClause
		if clause == "" {
			return b.AddError(dbdict.NewUnsupportedError(d.Name(), "insert without columns", "EmptyInsertClause"))
		}
		return b.Append(clause)
	}
	b.Append(" VALUES ")
	r.appendTuple(b, d)
	return b
}

// insertHead renders the statement up to the VALUES keyword.
func (r *Row) insertHead(d *dict.Dictionary) *sql.Buffer {
	b := sql.NewBuffer(d).Append("INSERT INTO ").Append(d.FullName(r.table))
	if !r.hasSet() {
		return b
	}
	b.Append(" (")
	n := 0
	for i, v := range r.set {
		if !v.IsSet() {
			continue
		}
		if n > 0 {
			b.Append(", ")
		}
		b.AppendIdent(r.table.Columns[i].Name)
		n++
	}
	return b.Append(")")
}

// appendTuple appends the parenthesized values of an INSERT.
func (r *Row) appendTuple(b *sql.Buffer, d *dict.Dictionary) {
	b.Append("(")
	n := 0
	for i, v := range r.set {
		if !v.IsSet() {
			continue
		}
		if n > 0 {
			b.Append(", ")
		}
		d.AppendMarkedValue(b, r.table.Columns[i], v)
		n++
	}
	b.Append(")")
}

func (r *Row) update(d *dict.Dictionary) *sql.Buffer {
	b := sql.NewBuffer(d).Append("UPDATE ").Append(d.FullName(r.table))
	if !r.hasSet() {
		return b.AddError(errNoAssignments)
	}
	b.Append(" SET ")
	n := 0
	for i, v := range r.set {
		if !v.IsSet() {
			continue
		}
		if n > 0 {
			b.Append(", ")
		}
		col := r.table.Columns[i]
		b.AppendIdent(col.Name).Append(" = ")
		d.AppendMarkedValue(b, col, v)
		n++
	}
	r.appendWhere(b, d)
	return b
}

func (r *Row) delete(d *dict.Dictionary) *sql.Buffer {
	b := sql.NewBuffer(d).Append("DELETE FROM ").Append(d.FullName(r.table))
	r.appendWhere(b, d)
	return b
}

// appendWhere renders the equality conditions joined by AND. NULL renders
// as IS NULL and version columns through the dictionary hook.
func (r *Row) appendWhere(b *sql.Buffer, d *dict.Dictionary) {
	n := 0
	for i, v := range r.where {
		if !v.IsSet() {
			continue
		}
		if n == 0 {
			b.Append(" WHERE ")
		} else {
			b.Append(" AND ")
		}
		n++
		col := r.table.Columns[i]
		if col.IsVersion() {
			b.Append(d.VersionColumn(col, ""))
		} else {
			b.AppendIdent(col.Name)
		}
		if v.IsNull() {
			b.Append(" IS NULL")
			continue
		}
		b.Append(" = ").AppendValue(v, col)
	}
}

func (r *Row) hasSet() bool {
	return slices.ContainsFunc(r.set, sql.Value.IsSet)
}

// bindParams binds the parameters of a statement after converting them to
// the storage representation of the dictionary.
func bindParams(b sql.Binder, d *dict.Dictionary, ps []sql.Param) error {
	for i, p := range ps {
		v, err := d.BindValue(p.Column, p.Value)
		if err != nil {
			return err
		}
		if err := b.Bind(i, v, p.Column); err != nil {
			return fmt.Errorf("sqlgraph: bind parameter %d: %w", i, err)
		}
	}
	return nil
}

// typed returns a value of the column type, or of t for untyped columns.
func typed(col *schema.Column, t schema.Type, v any) sql.Value {
	if col != nil && col.Type != 0 {
		t = col.Type
	}
	return sql.TypedValue(t, v)
}

// nullOf returns a NULL of the column type.
func nullOf(col *schema.Column) sql.Value {
	if col == nil || col.Type == 0 {
		return sql.NullValue(schema.TypeOther)
	}
	return sql.NullValue(col.Type)
}

func valueOf(col *schema.Column, v any) sql.Value {
	switch v := v.(type) {
	case sql.Value:
		return v
	case nil:
		return nullOf(col)
	}
	val := sql.ValueOf(v)
	if col != nil && col.Type != 0 {
		return sql.TypedValue(col.Type, v)
	}
	return val
}
