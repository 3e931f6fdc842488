package schema

import (
	"fmt"
	"strings"
)

// ValidationError is a single finding of schema validation.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking marks a change that can lose data or fail on existing rows.
	Breaking bool
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the findings of a validation run.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasBreakingChanges returns true if any finding is breaking.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, list := range [][]*ValidationError{r.Errors, r.Warnings} {
		for _, e := range list {
			if e.Breaking {
				return true
			}
		}
	}
	return false
}

// Merge appends the findings of o to r.
func (r *ValidationResult) Merge(o *ValidationResult) {
	if o == nil {
		return
	}
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// Err returns the findings as an error, or nil when there are no errors.
func (r *ValidationResult) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return fmt.Errorf("schema: %d validation error(s):\n%s", len(r.Errors), r)
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	write := func(title string, list []*ValidationError) {
		if len(list) == 0 {
			return
		}
		sb.WriteString(title)
		sb.WriteString(":\n")
		for _, e := range list {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	write("Errors", r.Errors)
	write("Warnings", r.Warnings)
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// ValidateOption configures schema validation.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	allowDropColumn    bool
	allowDropTable     bool
	allowDropIndex     bool
	allowNullToNotNull bool
}

// AllowDropColumn reports dropped columns as warnings.
func AllowDropColumn() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropColumn = true
	}
}

// AllowDropTable reports dropped tables as warnings.
func AllowDropTable() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropTable = true
	}
}

// AllowDropIndex reports dropped indexes as warnings.
func AllowDropIndex() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropIndex = true
	}
}

// AllowNullToNotNull reports NULL to NOT NULL changes as warnings.
func AllowNullToNotNull() ValidateOption {
	return func(c *validateConfig) {
		c.allowNullToNotNull = true
	}
}

func (cfg *validateConfig) report(r *ValidationResult, allowed bool, e *ValidationError) {
	if allowed {
		r.Warnings = append(r.Warnings, e)
	} else {
		r.Errors = append(r.Errors, e)
	}
}

// Diff lists the columns added to and dropped from tables present in both
// the current and desired schemas. Tables are matched by name, ignoring case.
type Diff struct {
	Table   *Table
	Added   []*Column
	Dropped []*Column
}

// ValidateDiff validates moving from the current to the desired schema.
// Breaking changes are errors unless allowed by an option, risky ones are
// warnings. The per-table column differences are returned alongside, so the
// caller can render the matching ALTER statements.
func ValidateDiff(current, desired []*Table, opts ...ValidateOption) (*ValidationResult, []*Diff) {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	var (
		result     = &ValidationResult{}
		diffs      []*Diff
		desiredMap = tableMap(desired)
	)
	for _, t := range current {
		if _, ok := desiredMap[strings.ToUpper(t.Name)]; !ok {
			cfg.report(result, cfg.allowDropTable, &ValidationError{
				Table:    t.Name,
				Message:  "table will be dropped",
				Breaking: true,
			})
		}
	}
	currentMap := tableMap(current)
	for _, t := range desired {
		cur, ok := currentMap[strings.ToUpper(t.Name)]
		if !ok {
			continue
		}
		if d := validateTableDiff(cur, t, cfg, result); d != nil {
			diffs = append(diffs, d)
		}
	}
	return result, diffs
}

func tableMap(ts []*Table) map[string]*Table {
	m := make(map[string]*Table, len(ts))
	for _, t := range ts {
		m[strings.ToUpper(t.Name)] = t
	}
	return m
}

func validateTableDiff(current, desired *Table, cfg *validateConfig, result *ValidationResult) *Diff {
	d := &Diff{Table: desired}
	for _, c := range current.Columns {
		if _, ok := desired.Column(c.Name); ok {
			continue
		}
		d.Dropped = append(d.Dropped, c)
		cfg.report(result, cfg.allowDropColumn, &ValidationError{
			Table:    current.Name,
			Column:   c.Name,
			Message:  "column will be dropped",
			Breaking: true,
		})
	}
	for _, dc := range desired.Columns {
		cc, ok := current.Column(dc.Name)
		if !ok {
			d.Added = append(d.Added, dc)
			if dc.NotNull() && !dc.HasDefault() && !dc.AutoAssign {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   current.Name,
					Column:  dc.Name,
					Message: "new NOT NULL column without default value may fail if table has data",
				})
			}
			continue
		}
		if cc.Type != dc.Type {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   current.Name,
				Column:  dc.Name,
				Message: fmt.Sprintf("column type changing from %v to %v", cc.Type, dc.Type),
			})
		}
		if cc.Nullable && !dc.Nullable {
			cfg.report(result, cfg.allowNullToNotNull, &ValidationError{
				Table:    current.Name,
				Column:   dc.Name,
				Message:  "column changing from NULL to NOT NULL may fail if column has NULL values",
				Breaking: true,
			})
		}
		if cc.Size > 0 && dc.Size > 0 && dc.Size < cc.Size {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   current.Name,
				Column:  dc.Name,
				Message: fmt.Sprintf("column size reducing from %d to %d may truncate data", cc.Size, dc.Size),
			})
		}
		if !cc.Unique && dc.Unique {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   current.Name,
				Column:  dc.Name,
				Message: "adding UNIQUE constraint may fail if duplicate values exist",
			})
		}
	}
	for _, idx := range current.Indexes {
		found := false
		for _, di := range desired.Indexes {
			if strings.EqualFold(di.Name, idx.Name) {
				found = true
				break
			}
		}
		if !found {
			cfg.report(result, cfg.allowDropIndex, &ValidationError{
				Table:   current.Name,
				Message: fmt.Sprintf("index %q will be dropped", idx.Name),
			})
		}
	}
	if len(d.Added) == 0 && len(d.Dropped) == 0 {
		return nil
	}
	return d
}

// ValidateTable validates a single table definition.
func ValidateTable(t *Table) *ValidationResult {
	result := &ValidationResult{}
	errorf := func(col, format string, args ...any) {
		result.Errors = append(result.Errors, &ValidationError{Table: t.Name, Column: col, Message: fmt.Sprintf(format, args...)})
	}
	if t.PrimaryKey == nil || len(t.PrimaryKey.Columns) == 0 {
		result.Warnings = append(result.Warnings, &ValidationError{
			Table:   t.Name,
			Message: "table has no primary key",
		})
	}
	cols := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		key := strings.ToUpper(c.Name)
		if cols[key] {
			errorf(c.Name, "duplicate column name")
		}
		cols[key] = true
		if c.Type == TypeInvalid && c.TypeName == "" {
			errorf(c.Name, "column has no type")
		}
		if c.IsVersion() && !c.Type.IsNumeric() && !c.Type.IsTemporal() {
			errorf(c.Name, "version column must be numeric or temporal, got %v", c.Type)
		}
	}
	known := func(c *Column) bool { return c != nil && cols[strings.ToUpper(c.Name)] }
	if pk := t.PrimaryKey; pk != nil {
		for _, c := range pk.Columns {
			if !known(c) {
				errorf("", "primary key references non-existent column %q", name(c))
			}
		}
	}
	idxNames := make(map[string]bool)
	for _, idx := range t.Indexes {
		key := strings.ToUpper(idx.Name)
		if idx.Name != "" && idxNames[key] {
			errorf("", "duplicate index name: %s", idx.Name)
		}
		idxNames[key] = true
		if len(idx.Columns) == 0 {
			errorf("", "index %q has no columns", idx.Name)
		}
		for _, c := range idx.Columns {
			if !known(c) {
				errorf("", "index %q references non-existent column %q", idx.Name, name(c))
			}
		}
	}
	for _, fk := range t.ForeignKeys {
		for _, c := range fk.Columns {
			if !known(c) {
				errorf("", "foreign key references non-existent column %q", name(c))
			}
		}
		if fk.RefTable == nil {
			errorf("", "foreign key %q has no referenced table", fk.Name)
			continue
		}
		if len(fk.RefColumns) != len(fk.Columns) {
			errorf("", "foreign key %q maps %d column(s) to %d referenced column(s)", fk.Name, len(fk.Columns), len(fk.RefColumns))
		}
		for _, c := range fk.Columns {
			if fk.OnDelete == SetNull && c != nil && c.NotNull() {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   t.Name,
					Column:  c.Name,
					Message: "ON DELETE SET NULL on a NOT NULL column is downgraded",
				})
			}
		}
	}
	return result
}

func name(c *Column) string {
	if c == nil {
		return "<nil>"
	}
	return c.Name
}

// ValidateSchema validates all tables of a schema, including cross-table
// foreign key references.
func ValidateSchema(tables []*Table) *ValidationResult {
	result := &ValidationResult{}
	names := make(map[string]bool)
	for _, t := range tables {
		key := strings.ToUpper(t.Name)
		if names[key] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: "duplicate table name",
			})
		}
		names[key] = true
		result.Merge(ValidateTable(t))
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			if fk.RefTable != nil && !names[strings.ToUpper(fk.RefTable.Name)] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("foreign key references non-existent table %q", fk.RefTable.Name),
				})
			}
		}
	}
	return result
}
