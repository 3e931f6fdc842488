package dict

import (
	"fmt"

	"github.com/syssam/dbdict/dialect/sql/schema"
)

// Validate validates the tables and checks them against the limits of the
// product: name lengths, indexes per table, reserved words and foreign key
// actions.
func (d *Dictionary) Validate(tables []*schema.Table) *schema.ValidationResult {
	result := schema.ValidateSchema(tables)
	c := d.Capabilities()
	errorf := func(t *schema.Table, col, format string, args ...any) {
		result.Errors = append(result.Errors, &schema.ValidationError{Table: t.Name, Column: col, Message: fmt.Sprintf(format, args...)})
	}
	warnf := func(t *schema.Table, col, format string, args ...any) {
		result.Warnings = append(result.Warnings, &schema.ValidationError{Table: t.Name, Column: col, Message: fmt.Sprintf(format, args...)})
	}
	check := func(t *schema.Table, col string, kind NameKind, name string) {
		if err := d.CheckNameLength(kind, name); err != nil {
			errorf(t, col, "%v", err)
		}
	}
	for _, t := range tables {
		check(t, "", NameTable, t.Name)
		if d.IsSystemTable(t.Name) {
			errorf(t, "", "table name is a %s system table", d.name)
		}
		if t.Schema != "" && d.IsSystemSchema(t.Schema) {
			errorf(t, "", "schema %q is a %s system schema", t.Schema, d.name)
		}
		for _, col := range t.Columns {
			check(t, col.Name, NameColumn, col.Name)
			if d.IsReserved(col.Name) {
				warnf(t, col.Name, "column name is a reserved word and is always delimited")
			}
		}
		if pk := t.PrimaryKey; pk != nil && pk.Name != "" {
			check(t, "", NameConstraint, pk.Name)
		}
		for _, fk := range t.ForeignKeys {
			if fk.Name != "" {
				check(t, "", NameConstraint, fk.Name)
			}
			if fk.OnDelete == schema.Logical || fk.OnUpdate == schema.Logical {
				continue
			}
			if !c.SupportsForeignKeys {
				warnf(t, "", "foreign key %q is not created: foreign keys are not supported", fk.Name)
				continue
			}
			if !c.SupportsDeleteAction(fk.OnDelete) {
				warnf(t, "", "foreign key %q is not created: ON DELETE %v is not supported", fk.Name, fk.OnDelete)
			}
			if !c.SupportsUpdateAction(fk.OnUpdate) {
				warnf(t, "", "foreign key %q is not created: ON UPDATE %v is not supported", fk.Name, fk.OnUpdate)
			}
		}
		for _, u := range t.Uniques {
			if u.Name != "" {
				check(t, "", NameConstraint, u.Name)
			}
		}
		if len(t.Indexes) > c.MaxIndexesPerTable {
			errorf(t, "", "table has %d indexes, the limit is %d", len(t.Indexes), c.MaxIndexesPerTable)
		}
		for _, idx := range t.Indexes {
			if idx.Name != "" {
				check(t, "", NameIndex, idx.Name)
			}
		}
	}
	return result
}
