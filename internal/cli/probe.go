package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/syssam/dbdict/dialect"
	"github.com/syssam/dbdict/dialect/sql"
	"github.com/syssam/dbdict/dialect/sql/dict"
)

// session is an open database connection. Statements go through drv,
// which logs every statement in verbose mode.
type session struct {
	drv   dialect.Driver
	stats *sql.StatsDriver
}

func (s *session) Close() error { return s.stats.Close() }

// connect opens the configured database and probes its version. Slow
// statements are logged.
func connect(ctx context.Context, e *env) (*session, *dict.Dictionary, error) {
	if e.cfg.DSN == "" {
		return nil, nil, errors.New("no data source: set --dsn or DBDICT_DSN")
	}
	if e.cfg.Driver == "" {
		return nil, nil, fmt.Errorf("no database/sql driver for dialect %q: set --driver", e.cfg.Dialect)
	}
	d, err := e.dictionary()
	if err != nil {
		return nil, nil, err
	}
	stats, _, err := sql.OpenWithStats(e.cfg.Driver, e.cfg.DSN, sql.WithSlowQueryLog(e.log))
	if err != nil {
		return nil, nil, err
	}
	s := &session{drv: stats, stats: stats}
	if e.cfg.Verbose {
		s.drv = sql.NewDebugDriver(stats, sql.DebugWithLogger(e.log))
	}
	if err := d.Connect(ctx, s.drv); err != nil {
		s.Close()
		return nil, nil, err
	}
	return s, d, nil
}

func newProbeCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Connect to a live database and show the capabilities for its version",
		Example: `  dbdict probe --dialect postgres --dsn postgres://localhost/app
  DBDICT_DSN=file:app.db dbdict probe -d sqlite`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := envFrom(cmd.Context())
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			s, d, err := connect(ctx, e)
			if err != nil {
				return err
			}
			defer s.Close()
			if v, ok := d.Version(); ok {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", d.Name(), v)
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (no version query)\n", d.Name())
			}
			showDialect(cmd.OutOrStdout(), d)
			e.log.Debug("probe statements", "stats", s.stats.QueryStats().Stats().String())
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "connection timeout")
	return cmd
}
