// Package cli provides the dbdict command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/dbdict/config"
	"github.com/syssam/dbdict/dialect/sql/dict"

	// database/sql drivers used by probe and diff.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Version information (set at build time).
var (
	Version   = "dev"
	GitCommit = "unknown"
)

type envKey struct{}

// env is the state shared by the commands of one run.
type env struct {
	cfg *config.Config
	log *slog.Logger
}

func envFrom(ctx context.Context) *env {
	if e, ok := ctx.Value(envKey{}).(*env); ok {
		return e
	}
	return &env{cfg: &config.Config{}, log: slog.New(slog.DiscardHandler)}
}

// dictionary returns the dictionary of the configured product.
func (e *env) dictionary() (*dict.Dictionary, error) {
	return e.cfg.Dictionary(e.log)
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:   "dbdict",
		Short: "Inspect and exercise SQL database dictionaries",
		Long: `dbdict renders the SQL of a database product from its dictionary:
capabilities, DDL for a schema file, schema validation and diffs against a
live database.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			if f := cfg.File(); f != "" {
				log.Debug("using config file", "path", f)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, &env{cfg: cfg, log: log}))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./dbdict.yaml)")
	pf.StringP("dialect", "d", "", "database product, e.g. postgres, mysql, oracle")
	pf.String("driver", "", "database/sql driver name (default: derived from the dialect)")
	pf.String("dsn", "", "data source name of a live database")
	pf.StringP("schema", "s", "", "schema file")
	pf.BoolP("verbose", "v", false, "verbose output")
	_ = root.RegisterFlagCompletionFunc("dialect", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return dict.Products(), cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newVersionCmd(),
		newDialectsCmd(),
		newDDLCmd(),
		newValidateCmd(),
		newDiffCmd(),
		newProbeCmd(),
	)
	return root
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dbdict %s (%s)\n", Version, GitCommit)
		},
	}
}
