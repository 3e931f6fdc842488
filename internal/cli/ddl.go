package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/dbdict/dialect/sql/dict"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

// loadSchema reads the schema file named by the first argument or the
// configuration, and names its unnamed constraints.
func loadSchema(e *env, d *dict.Dictionary, args []string) (*schema.Loaded, error) {
	path := e.cfg.Schema
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return nil, errors.New("no schema file: pass one as argument or set --schema")
	}
	l, err := schema.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := d.NameConstraints(l.Tables...); err != nil {
		return nil, err
	}
	e.log.Debug("loaded schema", "path", path, "tables", len(l.Tables), "sequences", len(l.Sequences))
	return l, nil
}

func newDDLCmd() *cobra.Command {
	var (
		drop  bool
		force bool
	)
	cmd := &cobra.Command{
		Use:   "ddl [schema-file]",
		Short: "Print the DDL of a schema file",
		Example: `  dbdict ddl schema.yaml --dialect postgres
  dbdict ddl schema.yaml --dialect oracle --drop`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd.Context())
			d, err := e.dictionary()
			if err != nil {
				return err
			}
			l, err := loadSchema(e, d, args)
			if err != nil {
				return err
			}
			r := d.Validate(l.Tables)
			if r.HasErrors() && !force {
				return r.Err()
			}
			for _, f := range append(r.Errors, r.Warnings...) {
				e.log.Warn("schema finding", "finding", f.Error())
			}
			stmts := d.SchemaSQL(l.Tables, l.Sequences...)
			if drop {
				stmts = d.DropSchemaSQL(l.Tables, l.Sequences...)
			}
			printStatements(cmd.OutOrStdout(), stmts)
			return nil
		},
	}
	cmd.Flags().BoolVar(&drop, "drop", false, "print the statements dropping the schema")
	cmd.Flags().BoolVar(&force, "force", false, "print the DDL even if validation fails")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [schema-file]",
		Short: "Validate a schema file against the limits of a product",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd.Context())
			d, err := e.dictionary()
			if err != nil {
				return err
			}
			l, err := loadSchema(e, d, args)
			if err != nil {
				return err
			}
			r := d.Validate(l.Tables)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), r.String())
			if r.HasErrors() {
				return fmt.Errorf("%d validation error(s)", len(r.Errors))
			}
			return nil
		},
	}
}
