package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/syssam/dbdict/dialect/sql/dict"
)

func newDialectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects [product]",
		Short: "List the database products and their capabilities",
		Long: `Without arguments, list every product with a summary of its capabilities.
With a product name, show its capabilities in detail, with the configured
overrides applied.`,
		Example: `  dbdict dialects
  dbdict dialects oracle
  dbdict dialects mysql --config dbdict.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd.Context())
			if len(args) == 0 {
				return listDialects(cmd.OutOrStdout())
			}
			cfg := *e.cfg
			cfg.Dialect = args[0]
			d, err := cfg.Dictionary(e.log)
			if err != nil {
				return err
			}
			showDialect(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

func listDialects(w io.Writer) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Product", "Marker", "Range", "For update", "Sequences", "Multi-row insert", "Max name"})
	for _, name := range dict.Products() {
		d, err := dict.New(name)
		if err != nil {
			return err
		}
		c := d.Capabilities()
		t.AppendRow(table.Row{
			name,
			d.Rebind("?"),
			rangeSupport(c),
			yesNo(c.SupportsSelectForUpdate || c.SimulateLocking),
			yesNo(c.SupportsSequences),
			yesNo(c.SupportsMultiRowInsert),
			c.MaxTableNameLength,
		})
	}
	t.Render()
	return nil
}

func showDialect(w io.Writer, d *dict.Dictionary) {
	c := d.Capabilities()
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(d.Name())
	t.AppendHeader(table.Row{"Capability", "Value"})
	t.AppendRows([]table.Row{
		{"max table name length", c.MaxTableNameLength},
		{"max column name length", c.MaxColumnNameLength},
		{"max constraint name length", c.MaxConstraintNameLength},
		{"max index name length", c.MaxIndexNameLength},
		{"delimit identifiers", yesNo(c.DelimitIdentifiers)},
		{"delimiters", c.LeadingDelimiter + c.TrailingDelimiter},
		{"schema case", c.SchemaCase},
		{"bind marker", d.Rebind("?")},
		{"range", rangeSupport(c)},
		{"range position", c.RangePosition},
		{"for update clause", quoted(c.ForUpdateClause)},
		{"simulate locking", yesNo(c.SimulateLocking)},
		{"foreign keys", yesNo(c.SupportsForeignKeys)},
		{"deferred constraints", yesNo(c.SupportsDeferredConstraints)},
		{"sequences", yesNo(c.SupportsSequences)},
		{"auto assign clause", quoted(c.AutoAssignClause)},
		{"boolean type", yesNo(c.SupportsBooleanType)},
		{"date precision", c.DatePrecision},
		{"batch limit", c.BatchLimit},
		{"multi-row insert", yesNo(c.SupportsMultiRowInsert)},
		{"empty insert clause", quoted(c.EmptyInsertClause)},
	})
	t.Render()
}

func rangeSupport(c *dict.Capabilities) string {
	switch {
	case c.SupportsSelectStartIndex && c.SupportsSelectEndIndex:
		return "start, end"
	case c.SupportsSelectEndIndex:
		return "end"
	case c.SupportsSelectStartIndex:
		return "start"
	}
	return "none"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func quoted(s string) string {
	if s == "" {
		return "-"
	}
	return strconv.Quote(s)
}

// printStatements writes statements terminated by semicolons.
func printStatements(w io.Writer, stmts []string) {
	for _, s := range stmts {
		_, _ = fmt.Fprintf(w, "%s;\n", s)
	}
}
