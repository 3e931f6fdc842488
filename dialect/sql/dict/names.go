package dict

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/dbdict"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

// NameKind is the kind of a schema object name.
type NameKind string

// Name kinds.
const (
	NameTable      NameKind = "table"
	NameColumn     NameKind = "column"
	NameConstraint NameKind = "constraint"
	NameIndex      NameKind = "index"
	NameSequence   NameKind = "sequence"
)

// Prefixes of generated constraint and index names.
const (
	foreignKeyPrefix = "F_"
	primaryKeyPrefix = "P_"
	uniquePrefix     = "U_"
	indexPrefix      = "I_"
)

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// MaxNameLength returns the limit of names of the given kind.
func (d *Dictionary) MaxNameLength(kind NameKind) int {
	c := d.Capabilities()
	switch kind {
	case NameTable:
		return c.MaxTableNameLength
	case NameColumn:
		return c.MaxColumnNameLength
	case NameIndex:
		return c.MaxIndexNameLength
	case NameSequence:
		return c.MaxSequenceNameLength
	}
	return c.MaxConstraintNameLength
}

// CheckNameLength returns a *dbdict.NameLengthError if the name exceeds the
// limit of its kind.
func (d *Dictionary) CheckNameLength(kind NameKind, name string) error {
	if n := d.MaxNameLength(kind); utf8.RuneCountInString(name) > n {
		return &dbdict.NameLengthError{Kind: string(kind), Name: name, Max: n}
	}
	return nil
}

// Shorten shortens name to at most target characters. It removes the
// first remaining vowel until none is left, then the middle character,
// until the name fits.
func Shorten(name string, target int) string {
	if target <= 0 {
		return ""
	}
	rs := []rune(name)
	for len(rs) > target {
		if i := slices.IndexFunc(rs, isVowel); i >= 0 {
			rs = slices.Delete(rs, i, i+1)
			continue
		}
		mid := len(rs) / 2
		rs = slices.Delete(rs, mid, mid+1)
	}
	return string(rs)
}

func isVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func truncate(name string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(name) <= n {
		return name
	}
	return string([]rune(name)[:n])
}

// MakeNameValid returns a name of at most maxLen characters that is not a
// reserved word and is not taken in scope. The name is truncated, a "0" is
// appended when it is reserved, and a growing numeric suffix is appended
// until it is free. A nil scope only checks the length and reserved words.
// It fails with dbdict.ErrNameLength when no suffix fits in maxLen.
func (d *Dictionary) MakeNameValid(name string, scope schema.NameSet, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = max(utf8.RuneCountInString(name), 1)
	}
	n := truncate(name, maxLen)
	if d.IsReserved(n) {
		n = truncate(n, maxLen-1) + "0"
	}
	if !d.taken(n, scope) {
		return n, nil
	}
	for i := 1; ; i++ {
		suffix := strconv.Itoa(i)
		if len(suffix) > maxLen {
			return "", fmt.Errorf("dict: no free name for %q within %d characters: %w", name, maxLen, dbdict.ErrNameLength)
		}
		cand := truncate(n, maxLen-len(suffix)) + suffix
		if !d.taken(cand, scope) {
			return cand, nil
		}
	}
}

func (d *Dictionary) taken(name string, scope schema.NameSet) bool {
	if d.IsReserved(name) {
		return true
	}
	return scope != nil && scope.IsNameTaken(name)
}

// Fold converts an unquoted name to the case the product stores it in.
func (d *Dictionary) Fold(name string) string {
	switch d.Capabilities().SchemaCase {
	case CaseUpper:
		return upper.String(name)
	case CaseLower:
		return lower.String(name)
	}
	return name
}

// ValidTableName returns a valid table name not taken in scope.
func (d *Dictionary) ValidTableName(name string, scope schema.NameSet) (string, error) {
	return d.MakeNameValid(d.Fold(name), scope, d.Capabilities().MaxTableNameLength)
}

// ValidColumnName returns a valid column name not taken in t, which may be nil.
func (d *Dictionary) ValidColumnName(name string, t *schema.Table) (string, error) {
	var scope schema.NameSet
	if t != nil {
		scope = t
	}
	return d.MakeNameValid(d.Fold(name), scope, d.Capabilities().MaxColumnNameLength)
}

// ValidSequenceName returns a valid sequence name not taken in scope.
func (d *Dictionary) ValidSequenceName(name string, scope schema.NameSet) (string, error) {
	return d.MakeNameValid(d.Fold(name), scope, d.Capabilities().MaxSequenceNameLength)
}

// ValidPrimaryKeyName returns the name of the primary key, generating one
// from the table name when it has none.
func (d *Dictionary) ValidPrimaryKeyName(pk *schema.PrimaryKey) (string, error) {
	return d.constraintName(pk.Name, primaryKeyPrefix, pk.Table(), nil, d.Capabilities().MaxConstraintNameLength)
}

// ValidForeignKeyName returns the name of the foreign key, generating one
// from the table and column names when it has none.
func (d *Dictionary) ValidForeignKeyName(fk *schema.ForeignKey) (string, error) {
	return d.constraintName(fk.Name, foreignKeyPrefix, fk.Table(), fk.Columns, d.Capabilities().MaxConstraintNameLength)
}

// ValidUniqueName returns the name of the unique constraint, generating
// one when it has none.
func (d *Dictionary) ValidUniqueName(u *schema.Unique) (string, error) {
	return d.constraintName(u.Name, uniquePrefix, u.Table(), u.Columns, d.Capabilities().MaxConstraintNameLength)
}

// ValidIndexName returns the name of the index, generating one when it
// has none.
func (d *Dictionary) ValidIndexName(idx *schema.Index) (string, error) {
	return d.constraintName(idx.Name, indexPrefix, idx.Table(), idx.Columns, d.Capabilities().MaxIndexNameLength)
}

func (d *Dictionary) constraintName(name, prefix string, t *schema.Table, cols []*schema.Column, maxLen int) (string, error) {
	if name != "" {
		return d.MakeNameValid(name, nil, maxLen)
	}
	var sb strings.Builder
	if t != nil {
		sb.WriteString(t.Name)
	}
	if len(cols) > 0 && cols[0] != nil {
		sb.WriteByte('_')
		sb.WriteString(cols[0].Name)
	}
	base := prefix + Shorten(sb.String(), maxLen-len(prefix))
	var scope schema.NameSet
	if t != nil {
		scope = t
	}
	return d.MakeNameValid(d.Fold(base), scope, maxLen)
}

// NameConstraints assigns generated names to the unnamed keys, constraints
// and indexes of the tables. It is meant to run while the descriptors are
// being populated.
func (d *Dictionary) NameConstraints(tables ...*schema.Table) error {
	var errs []error
	name := func(dst *string, gen func() (string, error)) {
		if *dst != "" {
			return
		}
		n, err := gen()
		if err != nil {
			errs = append(errs, err)
			return
		}
		*dst = n
	}
	for _, t := range tables {
		if pk := t.PrimaryKey; pk != nil && !pk.Logical {
			name(&pk.Name, func() (string, error) { return d.ValidPrimaryKeyName(pk) })
		}
		for _, fk := range t.ForeignKeys {
			name(&fk.Name, func() (string, error) { return d.ValidForeignKeyName(fk) })
		}
		for _, u := range t.Uniques {
			name(&u.Name, func() (string, error) { return d.ValidUniqueName(u) })
		}
		for _, idx := range t.Indexes {
			name(&idx.Name, func() (string, error) { return d.ValidIndexName(idx) })
		}
	}
	return errors.Join(errs...)
}

// QuoteIdent delimits each part of a dotted name when the product requires
// it: always when DelimitIdentifiers is set, otherwise for reserved words
// and names that are not plain identifiers. "*" is never delimited.
func (d *Dictionary) QuoteIdent(name string) string {
	if name == "" {
		return ""
	}
	c := d.Capabilities()
	if !strings.Contains(name, ".") {
		return d.quotePart(c, name)
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = d.quotePart(c, p)
	}
	return strings.Join(parts, ".")
}

func (d *Dictionary) quotePart(c *Capabilities, p string) string {
	switch {
	case p == "*", p == "":
		return p
	case c.LeadingDelimiter != "" && strings.HasPrefix(p, c.LeadingDelimiter) && strings.HasSuffix(p, c.TrailingDelimiter) && len(p) > 1:
		return p
	case !c.DelimitIdentifiers && plainIdent(p) && !d.IsReserved(p):
		return p
	}
	return c.LeadingDelimiter + strings.ReplaceAll(p, c.TrailingDelimiter, c.TrailingDelimiter+c.TrailingDelimiter) + c.TrailingDelimiter
}

func plainIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || r == '$' || r == '#'):
		default:
			return false
		}
	}
	return true
}

// FullName returns the delimited, schema-qualified name of the table.
func (d *Dictionary) FullName(t *schema.Table) string {
	if t.Schema == "" {
		return d.QuoteIdent(t.Name)
	}
	return d.QuoteIdent(t.Schema) + "." + d.QuoteIdent(t.Name)
}

// SequenceName returns the delimited, schema-qualified name of the sequence.
func (d *Dictionary) SequenceName(s *schema.Sequence) string {
	if s.Schema == "" {
		return d.QuoteIdent(s.Name)
	}
	return d.QuoteIdent(s.Schema) + "." + d.QuoteIdent(s.Name)
}
