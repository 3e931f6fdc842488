package dict

import (
	"fmt"
	"strings"

	"github.com/syssam/dbdict/dialect/sql/schema"
)

// Overrides are configured changes to the product defaults. Nil fields
// keep the default. The koanf tags name the configuration keys.
type Overrides struct {
	MaxTableNameLength         *int    `koanf:"max_table_name_length" yaml:"max_table_name_length"`
	MaxColumnNameLength        *int    `koanf:"max_column_name_length" yaml:"max_column_name_length"`
	MaxConstraintNameLength    *int    `koanf:"max_constraint_name_length" yaml:"max_constraint_name_length"`
	MaxIndexNameLength         *int    `koanf:"max_index_name_length" yaml:"max_index_name_length"`
	MaxSequenceNameLength      *int    `koanf:"max_sequence_name_length" yaml:"max_sequence_name_length"`
	DelimitIdentifiers         *bool   `koanf:"delimit_identifiers" yaml:"delimit_identifiers"`
	SchemaCase                 *string `koanf:"schema_case" yaml:"schema_case"`
	SupportsSelectForUpdate    *bool   `koanf:"supports_select_for_update" yaml:"supports_select_for_update"`
	SimulateLocking            *bool   `koanf:"simulate_locking" yaml:"simulate_locking"`
	StorageLimitationsFatal    *bool   `koanf:"storage_limitations_fatal" yaml:"storage_limitations_fatal"`
	StoreLargeNumbersAsStrings *bool   `koanf:"store_large_numbers_as_strings" yaml:"store_large_numbers_as_strings"`
	CharacterColumnSize        *int    `koanf:"character_column_size" yaml:"character_column_size"`
	DatePrecision              *int    `koanf:"date_precision" yaml:"date_precision"`
	BatchLimit                 *int    `koanf:"batch_limit" yaml:"batch_limit"`
	TableType                  *string `koanf:"table_type" yaml:"table_type"`

	// TypeNames maps type code names (see schema.ParseType) to SQL type names.
	TypeNames map[string]string `koanf:"type_names" yaml:"type_names"`
	// ReservedWords are added to the reserved word set.
	ReservedWords []string `koanf:"reserved_words" yaml:"reserved_words"`
	// ErrorStates maps error kind names to additional SQL states.
	ErrorStates map[string][]string `koanf:"error_states" yaml:"error_states"`
}

func (o Overrides) apply(c *Capabilities) error {
	setInt := func(dst *int, v *int, name string, minimum int) error {
		if v == nil {
			return nil
		}
		if *v < minimum {
			return fmt.Errorf("%s must be at least %d, got %d", name, minimum, *v)
		}
		*dst = *v
		return nil
	}
	for _, f := range []struct {
		dst  *int
		v    *int
		name string
		min  int
	}{
		{&c.MaxTableNameLength, o.MaxTableNameLength, "max_table_name_length", 1},
		{&c.MaxColumnNameLength, o.MaxColumnNameLength, "max_column_name_length", 1},
		{&c.MaxConstraintNameLength, o.MaxConstraintNameLength, "max_constraint_name_length", 1},
		{&c.MaxIndexNameLength, o.MaxIndexNameLength, "max_index_name_length", 1},
		{&c.MaxSequenceNameLength, o.MaxSequenceNameLength, "max_sequence_name_length", 1},
		{&c.CharacterColumnSize, o.CharacterColumnSize, "character_column_size", 1},
		{&c.DatePrecision, o.DatePrecision, "date_precision", 0},
		{&c.BatchLimit, o.BatchLimit, "batch_limit", 0},
	} {
		if err := setInt(f.dst, f.v, f.name, f.min); err != nil {
			return err
		}
	}
	if c.DatePrecision > 9 {
		return fmt.Errorf("date_precision must be at most 9, got %d", c.DatePrecision)
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setBool(&c.DelimitIdentifiers, o.DelimitIdentifiers)
	setBool(&c.SupportsSelectForUpdate, o.SupportsSelectForUpdate)
	setBool(&c.SimulateLocking, o.SimulateLocking)
	setBool(&c.StorageLimitationsFatal, o.StorageLimitationsFatal)
	setBool(&c.StoreLargeNumbersAsStrings, o.StoreLargeNumbersAsStrings)
	if o.TableType != nil {
		c.TableType = *o.TableType
	}
	if o.SchemaCase != nil {
		sc, err := ParseSchemaCase(*o.SchemaCase)
		if err != nil {
			return err
		}
		c.SchemaCase = sc
	}
	for k, v := range o.TypeNames {
		t, err := schema.ParseType(k)
		if err != nil {
			return err
		}
		c.TypeNames[t] = v
	}
	return nil
}

// ParseSchemaCase parses "upper", "lower" or "preserve".
func ParseSchemaCase(s string) (SchemaCase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "upper":
		return CaseUpper, nil
	case "lower":
		return CaseLower, nil
	case "preserve":
		return CasePreserve, nil
	}
	return CaseUpper, fmt.Errorf("unknown schema case %q", s)
}

// String returns the name of the schema case.
func (s SchemaCase) String() string {
	switch s {
	case CaseLower:
		return "lower"
	case CasePreserve:
		return "preserve"
	}
	return "upper"
}
