// Package dict implements the dictionaries of the supported database
// products. A Dictionary holds the capability matrix of a product and the
// algorithms that use it to render DDL, selects, bulk updates and deletes,
// and to classify driver errors.
//
// Dictionaries are created by product name:
//
//	d, err := dict.New(dialect.Oracle, dict.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	b, err := d.ToSelect(sel, false)
//
// A Dictionary is safe for concurrent use. Its capabilities are fixed at
// construction, except for the one-time adjustment made by Connected when
// the first connection reports the server version.
package dict

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/syssam/dbdict"
	"github.com/syssam/dbdict/dialect"
	"github.com/syssam/dbdict/dialect/sql"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

// product is the strategy of one database product: its defaults and the
// few algorithms that differ from the base dictionary.
type product struct {
	name          string
	aliases       []string
	defaults      func(*Capabilities)
	reserved      []string
	systemSchemas []string
	systemTables  []string

	// versionQuery returns the server version as a single string.
	versionQuery string
	// overlay adjusts the capabilities to the probed server version.
	overlay func(Version, *Capabilities)

	// appendRange writes the range clause at the range position.
	appendRange func(c *Capabilities, b *sql.Buffer, sel sql.Select, start, end int64)
	// rangeFilter returns a condition restricting the rows in place, for
	// products that express ranges in the WHERE clause.
	rangeFilter func(end int64) string
	// wrapRange wraps a select without range in the subselects expressing
	// the range. needsWrap decides when it is used instead of rangeFilter.
	wrapRange func(inner *sql.Buffer, start, end int64) *sql.Buffer
	needsWrap func(sel sql.Select) bool

	forUpdate func(c *Capabilities, sel sql.Select) string
	marker    func(col *schema.Column) string
	literal   func(c *Capabilities, v any) string

	// versionColumn returns the expression comparing a version column
	// given its delimited name.
	versionColumn func(col *schema.Column, name string) string

	// lockTimeout returns the session variable bounding lock waits.
	lockTimeout func(time.Duration) (name string, value int)

	// codes maps vendor error codes to error kinds.
	codes map[int]dbdict.Kind
}

// Product registry.
var (
	productsMu sync.RWMutex
	products   = make(map[string]*product)
)

// register adds a product to the registry. It is called from the init
// functions of the product files.
func register(p *product) {
	productsMu.Lock()
	defer productsMu.Unlock()
	products[p.name] = p
	for _, a := range p.aliases {
		products[a] = p
	}
}

func lookup(name string) (*product, bool) {
	productsMu.RLock()
	defer productsMu.RUnlock()
	p, ok := products[strings.ToLower(name)]
	return p, ok
}

// Products returns the names of the registered products, sorted.
// Aliases are not included.
func Products() []string {
	productsMu.RLock()
	defer productsMu.RUnlock()
	names := make([]string, 0, len(products))
	for name, p := range products {
		if p.name == name {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Dictionary is the dictionary of one database product.
type Dictionary struct {
	name          string
	p             *product
	caps          atomic.Pointer[Capabilities]
	reserved      map[string]struct{}
	systemSchemas map[string]struct{}
	systemTables  map[string]struct{}
	states        map[string]dbdict.Kind
	log           *slog.Logger

	warned    sync.Map // Go type name -> struct{}
	connected atomic.Bool
	probe     singleflight.Group
	version   atomic.Pointer[Version]
	setMu     sync.Mutex // serializes SetVersion
}

// Option configures a Dictionary.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	overrides []Overrides
	states    map[string]dbdict.Kind
	caps      []func(*Capabilities)
	reserved  []string
}

// WithLogger sets the logger used for storage warnings and the connection
// probe. The default logger discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithOverrides applies configured overrides on top of the product defaults.
func WithOverrides(ov Overrides) Option {
	return func(o *options) {
		o.overrides = append(o.overrides, ov)
	}
}

// WithErrorStates classifies the given SQL states as kind, in addition to
// the built-in table. Configured states take precedence.
func WithErrorStates(kind dbdict.Kind, states ...string) Option {
	return func(o *options) {
		if o.states == nil {
			o.states = make(map[string]dbdict.Kind)
		}
		for _, s := range states {
			o.states[strings.ToUpper(s)] = kind
		}
	}
}

// WithCapabilities applies fn to the capabilities after the defaults and
// overrides.
func WithCapabilities(fn func(*Capabilities)) Option {
	return func(o *options) {
		o.caps = append(o.caps, fn)
	}
}

// WithTypeName sets the SQL type name of a type code.
func WithTypeName(t schema.Type, name string) Option {
	return WithCapabilities(func(c *Capabilities) {
		c.TypeNames[t] = name
	})
}

// WithReservedWords adds words to the reserved word set.
func WithReservedWords(words ...string) Option {
	return func(o *options) {
		o.reserved = append(o.reserved, words...)
	}
}

// New returns the dictionary of the named product.
func New(name string, opts ...Option) (*Dictionary, error) {
	p, ok := lookup(name)
	if !ok {
		return nil, fmt.Errorf("dict: unknown product %q", name)
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	c := baseCapabilities()
	if p.defaults != nil {
		p.defaults(c)
	}
	for _, ov := range o.overrides {
		if err := ov.apply(c); err != nil {
			return nil, fmt.Errorf("dict: %s: %w", p.name, err)
		}
	}
	for _, fn := range o.caps {
		fn(c)
	}
	d := &Dictionary{
		name:          p.name,
		p:             p,
		reserved:      upperSet(sqlReserved, p.reserved, o.reserved),
		systemSchemas: upperSet(p.systemSchemas),
		systemTables:  upperSet(p.systemTables),
		log:           o.logger,
	}
	for _, ov := range o.overrides {
		for _, w := range ov.ReservedWords {
			d.reserved[strings.ToUpper(w)] = struct{}{}
		}
	}
	if d.log == nil {
		d.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	states, err := stateTable(p.name)
	if err != nil {
		return nil, err
	}
	for _, ov := range o.overrides {
		for k, ss := range ov.ErrorStates {
			kind, err := dbdict.ParseKind(k)
			if err != nil {
				return nil, fmt.Errorf("dict: %s: error states: %w", p.name, err)
			}
			for _, s := range ss {
				states[strings.ToUpper(s)] = kind
			}
		}
	}
	for s, k := range o.states {
		states[s] = k
	}
	d.states = states
	d.caps.Store(c)
	return d, nil
}

// Open returns the dictionary for a database/sql driver name or product
// alias, e.g. "pgx" or "sqlite3".
func Open(driverName string, opts ...Option) (*Dictionary, error) {
	return New(dialect.Normalize(driverName), opts...)
}

// MustNew is like New but panics on error.
func MustNew(name string, opts ...Option) *Dictionary {
	d, err := New(name, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the product name.
func (d *Dictionary) Name() string { return d.name }

// Capabilities returns the current capabilities. The returned value must
// not be modified.
func (d *Dictionary) Capabilities() *Capabilities { return d.caps.Load() }

// IsReserved reports whether the word is reserved by the product.
func (d *Dictionary) IsReserved(word string) bool {
	_, ok := d.reserved[strings.ToUpper(word)]
	return ok
}

// IsSystemSchema reports whether the schema belongs to the product catalog.
func (d *Dictionary) IsSystemSchema(name string) bool {
	_, ok := d.systemSchemas[strings.ToUpper(name)]
	return ok
}

// IsSystemTable reports whether the table belongs to the product catalog.
func (d *Dictionary) IsSystemTable(name string) bool {
	_, ok := d.systemTables[strings.ToUpper(name)]
	return ok
}

// unsupported returns the error of an operation gated by the named flag.
func (d *Dictionary) unsupported(op, flag string) error {
	return dbdict.NewUnsupportedError(d.name, op, flag)
}

func upperSet(lists ...[]string) map[string]struct{} {
	m := make(map[string]struct{})
	for _, l := range lists {
		for _, w := range l {
			m[strings.ToUpper(w)] = struct{}{}
		}
	}
	return m
}

var _ sql.Dialect = (*Dictionary)(nil)
