package dict

import (
	"strconv"
	"strings"

	"github.com/syssam/dbdict/dialect/sql"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

// format substitutes {0}, {1}, ... in a statement template.
func format(tmpl string, args ...string) string {
	for i, a := range args {
		tmpl = strings.ReplaceAll(tmpl, "{"+strconv.Itoa(i)+"}", a)
	}
	return tmpl
}

func (d *Dictionary) columnList(cols []*schema.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = d.QuoteIdent(c.Name)
	}
	return "(" + strings.Join(names, ", ") + ")"
}

// named writes a constraint clause with its name at the position the
// product expects.
func (d *Dictionary) named(name, keyword, rest string) string {
	if name == "" {
		return keyword + " " + rest
	}
	name = d.QuoteIdent(name)
	switch d.Capabilities().ConstraintNameMode {
	case NameMid:
		return keyword + " " + name + " " + rest
	case NameAfter:
		return keyword + " " + rest + " CONSTRAINT " + name
	}
	return "CONSTRAINT " + name + " " + keyword + " " + rest
}

// autoPrimaryKey reports whether the primary key is declared inline by its
// auto-assigned column.
func (d *Dictionary) autoPrimaryKey(pk *schema.PrimaryKey) bool {
	return d.Capabilities().AutoAssignIsPrimaryKey && pk != nil && len(pk.Columns) == 1 && pk.Columns[0].AutoAssign
}

// ColumnDeclaration returns the declaration of the column in CREATE TABLE
// and ALTER TABLE ADD: name, type, default, nullability and the
// auto-assign clause.
func (d *Dictionary) ColumnDeclaration(col *schema.Column) string {
	c := d.Capabilities()
	auto := col.AutoAssign && col.TypeName == ""
	var sb strings.Builder
	sb.WriteString(d.QuoteIdent(col.Name))
	sb.WriteByte(' ')
	if auto && c.AutoAssignTypeName != "" {
		sb.WriteString(c.AutoAssignTypeName)
	} else {
		sb.WriteString(d.TypeName(col))
	}
	if def := d.DefaultValue(col); def != "" && !auto {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(def)
	}
	if auto && c.AutoAssignIsPrimaryKey {
		sb.WriteString(" PRIMARY KEY")
		if c.AutoAssignClause != "" {
			sb.WriteByte(' ')
			sb.WriteString(c.AutoAssignClause)
		}
		return sb.String()
	}
	if auto && c.AutoAssignClause != "" {
		sb.WriteByte(' ')
		sb.WriteString(c.AutoAssignClause)
	}
	if col.NotNull() {
		sb.WriteString(" NOT NULL")
	}
	if col.Comment != "" && c.CommentStyle == CommentInline {
		sb.WriteString(" COMMENT ")
		sb.WriteString(sql.FormatLiteral(col.Comment))
	}
	return sb.String()
}

// PrimaryKeyConstraint returns the primary key clause, or "" for logical
// keys.
func (d *Dictionary) PrimaryKeyConstraint(pk *schema.PrimaryKey) string {
	if pk == nil || pk.Logical || len(pk.Columns) == 0 {
		return ""
	}
	return d.named(pk.Name, "PRIMARY KEY", d.columnList(pk.Columns))
}

// deferredClause follows deferred unique and foreign key constraints.
const deferredClause = " INITIALLY DEFERRED DEFERRABLE"

// UniqueConstraint returns the unique constraint clause, or "" when the
// product has no unique constraints.
func (d *Dictionary) UniqueConstraint(u *schema.Unique) string {
	c := d.Capabilities()
	if !c.SupportsUniqueConstraints || len(u.Columns) == 0 {
		return ""
	}
	s := d.named(u.Name, "UNIQUE", d.columnList(u.Columns))
	if u.Deferred && c.SupportsDeferredConstraints {
		s += deferredClause
	}
	return s
}

// ForeignKeyConstraint returns the foreign key clause. It returns "" for
// logical foreign keys and when the product does not support the
// referential actions of fk.
func (d *Dictionary) ForeignKeyConstraint(fk *schema.ForeignKey) string {
	c := d.Capabilities()
	switch {
	case !c.SupportsForeignKeys, fk.RefTable == nil, len(fk.Columns) == 0:
		return ""
	case fk.OnDelete == schema.Logical || fk.OnUpdate == schema.Logical:
		return ""
	case !c.SupportsDeleteAction(fk.OnDelete):
		d.log.Debug("foreign key skipped", "dialect", d.name, "name", fk.Name, "on_delete", fk.OnDelete.String())
		return ""
	case !c.SupportsUpdateAction(fk.OnUpdate):
		d.log.Debug("foreign key skipped", "dialect", d.name, "name", fk.Name, "on_update", fk.OnUpdate.String())
		return ""
	}
	var sb strings.Builder
	sb.WriteString(d.columnList(fk.Columns))
	sb.WriteString(" REFERENCES ")
	sb.WriteString(d.FullName(fk.RefTable))
	sb.WriteByte(' ')
	sb.WriteString(d.columnList(fk.RefColumns))
	if fk.OnDelete != schema.NoAction {
		sb.WriteString(" ON DELETE ")
		sb.WriteString(fk.OnDelete.String())
	}
	if fk.OnUpdate != schema.NoAction {
		sb.WriteString(" ON UPDATE ")
		sb.WriteString(fk.OnUpdate.String())
	}
	s := d.named(fk.Name, "FOREIGN KEY", sb.String())
	if fk.Deferred && c.SupportsDeferredConstraints {
		s += deferredClause
	}
	return s
}

// CreateTableSQL returns the statements creating the table: CREATE TABLE
// with its primary key and unique constraints, followed by comment
// statements where the product uses them. Products with inline foreign
// keys declare them in CREATE TABLE too.
func (d *Dictionary) CreateTableSQL(t *schema.Table) []string {
	c := d.Capabilities()
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(d.FullName(t))
	sb.WriteString(" (")
	for i, col := range t.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(d.ColumnDeclaration(col))
	}
	clauses := make([]string, 0, 1+len(t.Uniques)+len(t.ForeignKeys))
	if !d.autoPrimaryKey(t.PrimaryKey) {
		clauses = append(clauses, d.PrimaryKeyConstraint(t.PrimaryKey))
	}
	for _, u := range t.Uniques {
		clauses = append(clauses, d.UniqueConstraint(u))
	}
	if c.InlineForeignKeys {
		for _, fk := range t.ForeignKeys {
			clauses = append(clauses, d.ForeignKeyConstraint(fk))
		}
	}
	for _, cl := range clauses {
		if cl != "" {
			sb.WriteString(", ")
			sb.WriteString(cl)
		}
	}
	sb.WriteByte(')')
	if c.TableType != "" {
		sb.WriteByte(' ')
		sb.WriteString(c.TableType)
	}
	if t.Comment != "" && c.CommentStyle == CommentInline {
		sb.WriteString(" COMMENT = ")
		sb.WriteString(sql.FormatLiteral(t.Comment))
	}
	stmts := []string{sb.String()}
	if c.CommentStyle == CommentOn {
		if t.Comment != "" {
			stmts = append(stmts, "COMMENT ON TABLE "+d.FullName(t)+" IS "+sql.FormatLiteral(t.Comment))
		}
		for _, col := range t.Columns {
			if col.Comment != "" {
				stmts = append(stmts, "COMMENT ON COLUMN "+d.FullName(t)+"."+d.QuoteIdent(col.Name)+" IS "+sql.FormatLiteral(col.Comment))
			}
		}
	}
	return stmts
}

// DropTableSQL returns the statement dropping the table.
func (d *Dictionary) DropTableSQL(t *schema.Table) []string {
	return []string{"DROP TABLE " + d.FullName(t) + d.Capabilities().DropTableSuffix}
}

// AddColumnSQL returns the statement adding the column to its table, or
// nil when the product cannot add columns.
func (d *Dictionary) AddColumnSQL(col *schema.Column) []string {
	t := col.Table()
	if t == nil || !d.Capabilities().SupportsAlterTableWithAddColumn {
		return nil
	}
	return []string{"ALTER TABLE " + d.FullName(t) + " ADD " + d.ColumnDeclaration(col)}
}

// DropColumnSQL returns the statement dropping the column, or nil when the
// product cannot drop columns.
func (d *Dictionary) DropColumnSQL(col *schema.Column) []string {
	t := col.Table()
	if t == nil || !d.Capabilities().SupportsAlterTableWithDropColumn {
		return nil
	}
	return []string{"ALTER TABLE " + d.FullName(t) + " DROP COLUMN " + d.QuoteIdent(col.Name)}
}

// AddPrimaryKeySQL returns the statement adding the primary key, or nil
// when the product cannot alter primary keys.
func (d *Dictionary) AddPrimaryKeySQL(pk *schema.PrimaryKey) []string {
	clause := d.PrimaryKeyConstraint(pk)
	if clause == "" || pk.Table() == nil || !d.Capabilities().SupportsAlterPrimaryKey {
		return nil
	}
	return []string{"ALTER TABLE " + d.FullName(pk.Table()) + " ADD " + clause}
}

// DropPrimaryKeySQL returns the statement dropping the primary key, or
// nil when it cannot be dropped.
func (d *Dictionary) DropPrimaryKeySQL(pk *schema.PrimaryKey) []string {
	c := d.Capabilities()
	if pk == nil || pk.Logical || pk.Table() == nil || !c.SupportsAlterPrimaryKey || c.DropPrimaryKeySQL == "" {
		return nil
	}
	if pk.Name == "" && strings.Contains(c.DropPrimaryKeySQL, "{1}") {
		return nil
	}
	return []string{format(c.DropPrimaryKeySQL, d.FullName(pk.Table()), d.QuoteIdent(pk.Name))}
}

// AddForeignKeySQL returns the statement adding the foreign key. It
// returns nil when the product cannot add foreign keys with ALTER TABLE,
// in which case the table must be recreated.
func (d *Dictionary) AddForeignKeySQL(fk *schema.ForeignKey) []string {
	c := d.Capabilities()
	if fk.Table() == nil || !c.SupportsAlterForeignKey {
		return nil
	}
	clause := d.ForeignKeyConstraint(fk)
	if clause == "" {
		return nil
	}
	return []string{"ALTER TABLE " + d.FullName(fk.Table()) + " ADD " + clause}
}

// DropForeignKeySQL returns the statement dropping the foreign key, or nil
// when it has no name or the product cannot drop foreign keys.
func (d *Dictionary) DropForeignKeySQL(fk *schema.ForeignKey) []string {
	c := d.Capabilities()
	if fk.Name == "" || fk.Table() == nil || !c.SupportsAlterForeignKey || c.DropForeignKeySQL == "" {
		return nil
	}
	return []string{format(c.DropForeignKeySQL, d.FullName(fk.Table()), d.QuoteIdent(fk.Name))}
}

// CreateIndexSQL returns the statement creating the index. Unnamed
// indexes get a generated name; none is returned when no name fits.
func (d *Dictionary) CreateIndexSQL(idx *schema.Index) []string {
	if idx.Table() == nil || len(idx.Columns) == 0 {
		return nil
	}
	name, err := d.ValidIndexName(idx)
	if err != nil {
		d.log.Warn("index skipped", "dialect", d.name, "table", idx.Table().Name, "err", err)
		return nil
	}
	var sb strings.Builder
	sb.WriteString("CREATE ")
	if idx.Unique {
		sb.WriteString("UNIQUE ")
	}
	sb.WriteString("INDEX ")
	sb.WriteString(d.QuoteIdent(name))
	sb.WriteString(" ON ")
	sb.WriteString(d.FullName(idx.Table()))
	sb.WriteByte(' ')
	sb.WriteString(d.columnList(idx.Columns))
	return []string{sb.String()}
}

// DropIndexSQL returns the statement dropping the index.
func (d *Dictionary) DropIndexSQL(idx *schema.Index) []string {
	c := d.Capabilities()
	if idx.Name == "" || idx.Table() == nil || c.DropIndexSQL == "" {
		return nil
	}
	return []string{format(c.DropIndexSQL, d.FullName(idx.Table()), d.QuoteIdent(idx.Name))}
}

// CreateSequenceSQL returns the statement creating the sequence, or nil
// when the product has no sequences.
func (d *Dictionary) CreateSequenceSQL(s *schema.Sequence) []string {
	c := d.Capabilities()
	if !c.SupportsSequences {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("CREATE SEQUENCE ")
	sb.WriteString(d.SequenceName(s))
	if s.Initial != 0 {
		sb.WriteString(" START WITH ")
		sb.WriteString(strconv.FormatInt(s.Initial, 10))
	}
	if s.Increment != 0 {
		sb.WriteString(" INCREMENT BY ")
		sb.WriteString(strconv.Itoa(s.Increment))
	}
	if s.Allocate > 1 && c.SequenceCacheClause != "" {
		sb.WriteByte(' ')
		sb.WriteString(format(c.SequenceCacheClause, strconv.Itoa(s.Allocate)))
	}
	return []string{sb.String()}
}

// DropSequenceSQL returns the statement dropping the sequence, or nil when
// the product has no sequences.
func (d *Dictionary) DropSequenceSQL(s *schema.Sequence) []string {
	c := d.Capabilities()
	if !c.SupportsSequences {
		return nil
	}
	return []string{"DROP SEQUENCE " + d.SequenceName(s) + c.DropSequenceSuffix}
}

// NextSequenceSQL returns the query selecting the next value of the
// sequence.
func (d *Dictionary) NextSequenceSQL(s *schema.Sequence) (string, error) {
	c := d.Capabilities()
	if !c.SupportsSequences || c.NextSequenceQuery == "" {
		return "", d.unsupported("next sequence value", "SupportsSequences")
	}
	return format(c.NextSequenceQuery, d.SequenceName(s)), nil
}

// SchemaSQL returns the statements creating the sequences and tables,
// then the foreign keys and indexes of the tables.
func (d *Dictionary) SchemaSQL(tables []*schema.Table, seqs ...*schema.Sequence) []string {
	var stmts []string
	for _, s := range seqs {
		stmts = append(stmts, d.CreateSequenceSQL(s)...)
	}
	for _, t := range tables {
		stmts = append(stmts, d.CreateTableSQL(t)...)
	}
	if !d.Capabilities().InlineForeignKeys {
		for _, t := range tables {
			for _, fk := range t.ForeignKeys {
				stmts = append(stmts, d.AddForeignKeySQL(fk)...)
			}
		}
	}
	for _, t := range tables {
		for _, idx := range t.Indexes {
			stmts = append(stmts, d.CreateIndexSQL(idx)...)
		}
	}
	return stmts
}

// DropSchemaSQL returns the statements dropping the tables in reverse
// order, dropping foreign keys first where the product can.
func (d *Dictionary) DropSchemaSQL(tables []*schema.Table, seqs ...*schema.Sequence) []string {
	var stmts []string
	if !d.Capabilities().InlineForeignKeys {
		for _, t := range tables {
			for _, fk := range t.ForeignKeys {
				stmts = append(stmts, d.DropForeignKeySQL(fk)...)
			}
		}
	}
	for i := len(tables) - 1; i >= 0; i-- {
		stmts = append(stmts, d.DropTableSQL(tables[i])...)
	}
	for _, s := range seqs {
		stmts = append(stmts, d.DropSequenceSQL(s)...)
	}
	return stmts
}
