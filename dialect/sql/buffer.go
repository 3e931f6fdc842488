package sql

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/dbdict/dialect/sql/schema"
)

// Dialect is the part of a dictionary a Buffer needs to render text.
type Dialect interface {
	// Name returns the product name.
	Name() string
	// QuoteIdent returns the identifier delimited as needed.
	QuoteIdent(name string) string
	// Rebind converts canonical ? markers to the product placeholder style.
	Rebind(query string) string
	// Literal renders a value as SQL literal text.
	Literal(v any) string
}

// ErrSplicePending is returned when text is spliced into the middle of a
// buffer that holds unresolved subqueries.
var ErrSplicePending = errors.New("dialect/sql: cannot splice into a buffer with pending subqueries")

// Subquery is a nested select whose SQL is computed when the enclosing
// buffer is read.
type Subquery interface {
	SubqueryBuffer() *Buffer
}

// SubqueryFunc adapts a function to the Subquery interface.
type SubqueryFunc func() *Buffer

// SubqueryBuffer implements Subquery.
func (f SubqueryFunc) SubqueryBuffer() *Buffer { return f() }

// pending is an unresolved subquery recorded at a text and a parameter
// offset of the buffer.
type pending struct {
	sub      Subquery
	pos      int
	paramPos int
	seq      int
}

// Buffer accumulates SQL text and its bind parameters. Placeholders are
// written as canonical ? markers; Query rebinds them for the dialect.
//
// Subqueries appended with AppendSubquery are resolved lazily, from the
// highest text offset to the lowest, right before the text is read. While
// any is pending, content may only be appended at the end.
type Buffer struct {
	d       Dialect
	text    []byte
	params  []Param
	marks   []int // text offset of the marker of each param
	pending []pending
	seq     int
	errs    []error
}

// NewBuffer returns an empty buffer rendering for the given dialect.
// A nil dialect renders ANSI SQL.
func NewBuffer(d Dialect) *Buffer {
	if d == nil {
		d = ANSI
	}
	return &Buffer{d: d}
}

// Dialect returns the dialect of the buffer.
func (b *Buffer) Dialect() Dialect { return b.d }

// Append appends raw SQL text.
func (b *Buffer) Append(s string) *Buffer {
	b.text = append(b.text, s...)
	return b
}

// Appendf appends formatted raw SQL text.
func (b *Buffer) Appendf(format string, args ...any) *Buffer {
	b.text = fmt.Appendf(b.text, format, args...)
	return b
}

// AppendIdent appends an identifier, delimited as the dialect requires.
func (b *Buffer) AppendIdent(name string) *Buffer {
	return b.Append(b.d.QuoteIdent(name))
}

// AppendIdents appends identifiers separated by commas.
func (b *Buffer) AppendIdents(names ...string) *Buffer {
	for i, n := range names {
		if i > 0 {
			b.Append(", ")
		}
		b.AppendIdent(n)
	}
	return b
}

// AppendColumns appends column names separated by commas.
func (b *Buffer) AppendColumns(cols ...*schema.Column) *Buffer {
	for i, c := range cols {
		if i > 0 {
			b.Append(", ")
		}
		b.AppendIdent(c.Name)
	}
	return b
}

// AppendValue appends a system value. NULL renders as the NULL keyword and
// Raw values as their literal text; anything else adds a placeholder and
// a parameter keyed by the column.
func (b *Buffer) AppendValue(v any, col *schema.Column) *Buffer {
	return b.appendValue(v, col, false, "")
}

// AppendUserParam appends a caller-supplied value identified by key.
func (b *Buffer) AppendUserParam(key string, v any, col *schema.Column) *Buffer {
	return b.appendValue(v, col, true, key)
}

func (b *Buffer) appendValue(v any, col *schema.Column, user bool, key string) *Buffer {
	if val, ok := v.(Value); ok {
		switch val.Kind() {
		case Raw:
			return b.Append(val.SQL())
		case Unset:
			b.AddError(fmt.Errorf("dialect/sql: unset value appended"))
			return b
		case Null:
			// A NULL user parameter keeps its placeholder so the compiled
			// text can be rebound with a non-NULL value.
			if !user {
				return b.Append("NULL")
			}
			v = nil
		default:
			v = val.Data()
		}
	} else if v == nil && !user {
		return b.Append("NULL")
	}
	return b.addParam(v, col, user, key)
}

// AppendParam appends a system value as a parameter. Unlike AppendValue,
// NULL keeps its placeholder and is bound as nil. Raw values are inlined.
func (b *Buffer) AppendParam(v any, col *schema.Column) *Buffer {
	if val, ok := v.(Value); ok {
		switch val.Kind() {
		case Null:
			v = nil
		case Raw, Unset:
			return b.AppendValue(v, col)
		default:
			v = val.Data()
		}
	}
	return b.addParam(v, col, false, "")
}

func (b *Buffer) addParam(v any, col *schema.Column, user bool, key string) *Buffer {
	if !user && col != nil {
		key = col.Name
	}
	b.marks = append(b.marks, len(b.text))
	b.params = append(b.params, Param{Value: v, Column: col, User: user, Key: key})
	b.text = append(b.text, '?')
	return b
}

// AppendBuffer appends the text, parameters and pending subqueries of o at
// the end of b.
func (b *Buffer) AppendBuffer(o *Buffer) *Buffer {
	if o == nil {
		return b
	}
	pos, paramPos := len(b.text), len(b.params)
	b.text = append(b.text, o.text...)
	b.params = append(b.params, o.params...)
	for _, m := range o.marks {
		b.marks = append(b.marks, m+pos)
	}
	for _, p := range o.pending {
		b.seq++
		b.pending = append(b.pending, pending{sub: p.sub, pos: p.pos + pos, paramPos: p.paramPos + paramPos, seq: b.seq})
	}
	b.errs = append(b.errs, o.errs...)
	return b
}

// AppendBufferAt inserts o at the given text offset of b, merging its
// parameters at the matching parameter offset. Inserting anywhere but the
// end fails with ErrSplicePending while b holds unresolved subqueries.
func (b *Buffer) AppendBufferAt(o *Buffer, pos int) error {
	if pos < 0 || pos > len(b.text) {
		return fmt.Errorf("dialect/sql: splice offset %d out of range [0, %d]", pos, len(b.text))
	}
	if pos == len(b.text) {
		b.AppendBuffer(o)
		return nil
	}
	if len(b.pending) > 0 {
		return ErrSplicePending
	}
	if o == nil {
		return nil
	}
	o = o.Clone()
	o.resolve()
	paramPos, _ := slices.BinarySearch(b.marks, pos)
	n := len(o.text)
	b.text = slices.Insert(b.text, pos, o.text...)
	for i := paramPos; i < len(b.marks); i++ {
		b.marks[i] += n
	}
	marks := make([]int, len(o.marks))
	for i, m := range o.marks {
		marks[i] = m + pos
	}
	b.marks = slices.Insert(b.marks, paramPos, marks...)
	b.params = slices.Insert(b.params, paramPos, o.params...)
	b.errs = append(b.errs, o.errs...)
	return nil
}

// AppendSubquery appends "(" sub ")" followed by an optional alias. The SQL
// of sub is computed when the text of b is read.
func (b *Buffer) AppendSubquery(sub Subquery, alias string) *Buffer {
	b.Append("(")
	b.seq++
	b.pending = append(b.pending, pending{sub: sub, pos: len(b.text), paramPos: len(b.params), seq: b.seq})
	b.Append(")")
	if alias != "" {
		b.Append(" ").AppendIdent(alias)
	}
	return b
}

// resolve splices every pending subquery into the text, highest offset
// first, so that no splice shifts an offset that is still to be processed.
func (b *Buffer) resolve() {
	if len(b.pending) == 0 {
		return
	}
	ps := b.pending
	b.pending = nil
	slices.SortStableFunc(ps, func(x, y pending) int {
		if x.pos != y.pos {
			return y.pos - x.pos
		}
		return y.seq - x.seq
	})
	for _, p := range ps {
		sub := p.sub.SubqueryBuffer()
		if sub == nil {
			b.AddError(fmt.Errorf("dialect/sql: subquery at offset %d returned no buffer", p.pos))
			continue
		}
		sub = sub.Clone()
		sub.resolve()
		n := len(sub.text)
		b.text = slices.Insert(b.text, p.pos, sub.text...)
		for i := p.paramPos; i < len(b.marks); i++ {
			b.marks[i] += n
		}
		marks := make([]int, len(sub.marks))
		for i, m := range sub.marks {
			marks[i] = m + p.pos
		}
		b.marks = slices.Insert(b.marks, p.paramPos, marks...)
		b.params = slices.Insert(b.params, p.paramPos, sub.params...)
		b.errs = append(b.errs, sub.errs...)
	}
}

// Len returns the length of the text written so far, excluding pending
// subqueries.
func (b *Buffer) Len() int { return len(b.text) }

// IsEmpty reports whether no text was written.
func (b *Buffer) IsEmpty() bool { return b == nil || len(b.text) == 0 }

// HasPending reports whether subqueries are still unresolved.
func (b *Buffer) HasPending() bool { return len(b.pending) > 0 }

// SQL resolves pending subqueries and returns the text with canonical ?
// markers.
func (b *Buffer) SQL() string {
	if b == nil {
		return ""
	}
	b.resolve()
	return string(b.text)
}

// String implements fmt.Stringer.
func (b *Buffer) String() string { return b.SQL() }

// Query returns the text rebound to the dialect placeholder style and the
// values of its parameters.
func (b *Buffer) Query() (string, []any) {
	query := b.SQL()
	args := make([]any, len(b.params))
	for i, p := range b.params {
		args[i] = p.Value
	}
	return b.d.Rebind(query), args
}

// Inline returns the text with every parameter rendered as a literal.
// It is meant for logging and debugging.
func (b *Buffer) Inline() string {
	b.resolve()
	var (
		sb   strings.Builder
		last int
	)
	for i, m := range b.marks {
		sb.Write(b.text[last:m])
		sb.WriteString(b.d.Literal(b.params[i].Value))
		last = m + 1
	}
	sb.Write(b.text[last:])
	return sb.String()
}

// Params returns the parameters in placeholder order.
func (b *Buffer) Params() []Param {
	b.resolve()
	return slices.Clone(b.params)
}

// UserParams returns the caller-supplied parameters in placeholder order.
func (b *Buffer) UserParams() []Param {
	b.resolve()
	var ps []Param
	for _, p := range b.params {
		if p.User {
			ps = append(ps, p)
		}
	}
	return ps
}

// SetParams replaces the parameter list. The number of parameters must
// match the placeholders of the text.
func (b *Buffer) SetParams(ps []Param) error {
	b.resolve()
	if len(ps) != len(b.params) {
		return fmt.Errorf("dialect/sql: set params: got %d parameters, want %d", len(ps), len(b.params))
	}
	b.params = slices.Clone(ps)
	return nil
}

// BindUser replaces the values of user parameters by key.
func (b *Buffer) BindUser(values map[string]any) error {
	b.resolve()
	for i, p := range b.params {
		if !p.User {
			continue
		}
		v, ok := values[p.Key]
		if !ok {
			return fmt.Errorf("dialect/sql: bind user: missing value for parameter %q", p.Key)
		}
		b.params[i].Value = v
	}
	return nil
}

// SetParameters binds every parameter, in placeholder order.
func (b *Buffer) SetParameters(binder Binder) error {
	b.resolve()
	for i, p := range b.params {
		if err := binder.Bind(i, p.Value, p.Column); err != nil {
			return fmt.Errorf("dialect/sql: bind parameter %d: %w", i, err)
		}
	}
	return nil
}

// Clone returns a copy of the buffer. Pending subqueries are shared.
func (b *Buffer) Clone() *Buffer {
	if b == nil {
		return nil
	}
	return &Buffer{
		d:       b.d,
		text:    slices.Clone(b.text),
		params:  slices.Clone(b.params),
		marks:   slices.Clone(b.marks),
		pending: slices.Clone(b.pending),
		seq:     b.seq,
		errs:    slices.Clone(b.errs),
	}
}

// AddError records an error raised while building the buffer.
func (b *Buffer) AddError(err error) *Buffer {
	if err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Err returns the errors recorded while building the buffer, including
// those of resolved subqueries.
func (b *Buffer) Err() error {
	if b == nil {
		return nil
	}
	b.resolve()
	return errors.Join(b.errs...)
}

// Join appends the non-empty buffers separated by sep.
func (b *Buffer) Join(sep string, bs ...*Buffer) *Buffer {
	first := true
	for _, o := range bs {
		if o.IsEmpty() {
			continue
		}
		if !first {
			b.Append(sep)
		}
		first = false
		b.AppendBuffer(o)
	}
	return b
}

// ANSI is the dialect used by buffers created without one.
var ANSI Dialect = ansi{}

type ansi struct{}

func (ansi) Name() string { return "ansi" }

func (ansi) QuoteIdent(name string) string { return name }

func (ansi) Rebind(query string) string { return query }

func (ansi) Literal(v any) string { return FormatLiteral(v) }
