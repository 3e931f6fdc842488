package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/syssam/dbdict/dialect/sql/dict"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

type diffOptions struct {
	name    string
	timeout time.Duration
	force   bool
	allow   []string
}

func newDiffCmd() *cobra.Command {
	opts := &diffOptions{}
	cmd := &cobra.Command{
		Use:   "diff [schema-file]",
		Short: "Compare a live database with a schema file and print the migration",
		Long: `Inspect the schema of a live database, compare it with a schema file and
print the statements moving the database to the file. Breaking changes fail
the command unless allowed with --allow or --force.

Supported products: postgres, mysql, sqlite.`,
		Example: `  dbdict diff schema.yaml -d sqlite --dsn file:app.db
  dbdict diff schema.yaml -d postgres --dsn postgres://localhost/app --allow drop-column`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.name, "schema-name", "", "database schema to inspect (default: the connection's)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "inspection timeout")
	cmd.Flags().BoolVar(&opts.force, "force", false, "print the migration even with breaking changes")
	cmd.Flags().StringSliceVar(&opts.allow, "allow", nil, "breaking changes to allow: drop-column, drop-table, drop-index, not-null")
	return cmd
}

func validateOptions(allow []string) ([]schema.ValidateOption, error) {
	var opts []schema.ValidateOption
	for _, a := range allow {
		switch strings.ToLower(a) {
		case "drop-column":
			opts = append(opts, schema.AllowDropColumn())
		case "drop-table":
			opts = append(opts, schema.AllowDropTable())
		case "drop-index":
			opts = append(opts, schema.AllowDropIndex())
		case "not-null":
			opts = append(opts, schema.AllowNullToNotNull())
		default:
			return nil, fmt.Errorf("unknown change %q for --allow", a)
		}
	}
	return opts, nil
}

func runDiff(cmd *cobra.Command, opts *diffOptions, args []string) error {
	vopts, err := validateOptions(opts.allow)
	if err != nil {
		return err
	}
	e := envFrom(cmd.Context())
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()
	s, d, err := connect(ctx, e)
	if err != nil {
		return err
	}
	defer s.Close()
	desired, err := loadSchema(e, d, args)
	if err != nil {
		return err
	}
	current, err := schema.Inspect(ctx, d.Name(), s.stats.DB(), opts.name)
	if err != nil {
		return err
	}
	e.log.Debug("inspected database", "tables", len(current))

	r, diffs := schema.ValidateDiff(current, desired.Tables, vopts...)
	r.Merge(d.Validate(desired.Tables))
	w := cmd.OutOrStdout()
	for _, line := range strings.Split(strings.TrimRight(r.String(), "\n"), "\n") {
		_, _ = fmt.Fprintf(w, "-- %s\n", line)
	}
	if r.HasErrors() && !opts.force {
		return fmt.Errorf("%d blocking change(s), see --allow", len(r.Errors))
	}
	printStatements(w, migration(d, current, desired.Tables, diffs, opts.allow))
	return nil
}

// migration returns the statements moving the current tables to the
// desired ones.
func migration(d *dict.Dictionary, current, desired []*schema.Table, diffs []*schema.Diff, allow []string) []string {
	has := make(map[string]bool, len(current))
	for _, t := range current {
		has[strings.ToUpper(t.Name)] = true
	}
	var (
		stmts   []string
		created []*schema.Table
	)
	for _, t := range desired {
		if !has[strings.ToUpper(t.Name)] {
			created = append(created, t)
		}
	}
	stmts = append(stmts, d.SchemaSQL(created)...)
	for _, df := range diffs {
		for _, c := range df.Added {
			stmts = append(stmts, d.AddColumnSQL(c)...)
		}
		for _, c := range df.Dropped {
			stmts = append(stmts, d.DropColumnSQL(c)...)
		}
	}
	if allowed(allow, "drop-table") {
		want := make(map[string]bool, len(desired))
		for _, t := range desired {
			want[strings.ToUpper(t.Name)] = true
		}
		for _, t := range current {
			if !want[strings.ToUpper(t.Name)] {
				stmts = append(stmts, d.DropTableSQL(t)...)
			}
		}
	}
	return stmts
}

func allowed(allow []string, change string) bool {
	for _, a := range allow {
		if strings.EqualFold(a, change) {
			return true
		}
	}
	return false
}
