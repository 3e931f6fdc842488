// Package sqlcache caches compiled statements. A cached statement keeps its
// rebound text and system values; user parameters are rebound on each use.
package sqlcache

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/dbdict/dialect/sql"
	"github.com/syssam/dbdict/dialect/sql/dict"
)

// Statement is a compiled statement.
type Statement struct {
	Query  string  `msgpack:"q"`
	Params []Param `msgpack:"p"`
	// Skip is the number of leading rows the caller discards, for products
	// that cannot express the start of a range.
	Skip int64 `msgpack:"s,omitempty"`
}

// Param is a parameter of a compiled statement. Value is kept for system
// parameters only.
type Param struct {
	Key   string `msgpack:"k"`
	User  bool   `msgpack:"u,omitempty"`
	Value any    `msgpack:"v"`
}

// Compile returns the statement of a buffer. System values are converted
// to their storage representation; user values are dropped.
func Compile(d *dict.Dictionary, b *sql.Buffer) (*Statement, error) {
	if err := b.Err(); err != nil {
		return nil, err
	}
	query, _ := b.Query()
	ps := b.Params()
	st := &Statement{Query: query, Params: make([]Param, len(ps))}
	for i, p := range ps {
		st.Params[i] = Param{Key: p.Key, User: p.User}
		if p.User {
			continue
		}
		v, err := d.BindValue(p.Column, p.Value)
		if err != nil {
			return nil, fmt.Errorf("sqlcache: compile parameter %d: %w", i, err)
		}
		st.Params[i].Value = v
	}
	return st, nil
}

// CompileSelect compiles a select with its range and locking clause.
func CompileSelect(d *dict.Dictionary, sel sql.Select, forUpdate bool) (*Statement, error) {
	b, err := d.ToSelect(sel, forUpdate)
	if err != nil {
		return nil, err
	}
	st, err := Compile(d, b)
	if err != nil {
		return nil, err
	}
	st.Skip = d.RowsToSkip(sel)
	return st, nil
}

// Args returns the statement arguments with user parameters bound by key.
func (s *Statement) Args(d *dict.Dictionary, values map[string]any) ([]any, error) {
	args := make([]any, len(s.Params))
	for i, p := range s.Params {
		if !p.User {
			args[i] = p.Value
			continue
		}
		v, ok := values[p.Key]
		if !ok {
			return nil, fmt.Errorf("sqlcache: missing value for parameter %q", p.Key)
		}
		bv, err := d.BindValue(nil, v)
		if err != nil {
			return nil, fmt.Errorf("sqlcache: bind parameter %q: %w", p.Key, err)
		}
		args[i] = bv
	}
	return args, nil
}

// UserKeys returns the keys of the user parameters in placeholder order.
func (s *Statement) UserKeys() []string {
	var keys []string
	for _, p := range s.Params {
		if p.User {
			keys = append(keys, p.Key)
		}
	}
	return keys
}

func (s *Statement) marshal() ([]byte, error) {
	return msgpack.Marshal(s)
}

func unmarshal(b []byte) (*Statement, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.UseLooseInterfaceDecoding(true)
	st := &Statement{}
	if err := dec.Decode(st); err != nil {
		return nil, err
	}
	return st, nil
}
