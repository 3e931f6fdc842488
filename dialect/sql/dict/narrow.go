package dict

import (
	"context"
	stdsql "database/sql"
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gopkg.in/yaml.v3"
	"modernc.org/sqlite"

	"github.com/syssam/dbdict"
)

//go:embed sqlstates.yaml
var sqlStatesYAML []byte

var (
	statesOnce sync.Once
	statesDoc  map[string]map[string][]string
	statesErr  error
)

// stateTable returns the state classification of the product: the
// default section overlaid with the product section.
func stateTable(name string) (map[string]dbdict.Kind, error) {
	statesOnce.Do(func() {
		statesErr = yaml.Unmarshal(sqlStatesYAML, &statesDoc)
	})
	if statesErr != nil {
		return nil, fmt.Errorf("dict: parse sql states: %w", statesErr)
	}
	m := make(map[string]dbdict.Kind)
	for _, section := range []string{"default", name} {
		for k, states := range statesDoc[section] {
			kind, err := dbdict.ParseKind(k)
			if err != nil {
				return nil, fmt.Errorf("dict: sql states section %q: %w", section, err)
			}
			for _, s := range states {
				m[strings.ToUpper(s)] = kind
			}
		}
	}
	return m, nil
}

// ErrorStates returns a copy of the state classification table.
func (d *Dictionary) ErrorStates() map[string]dbdict.Kind {
	return maps.Clone(d.states)
}

// Message patterns of drivers that only report codes in the error text.
var (
	oraCode = regexp.MustCompile(`ORA-(\d{5})`)
	stateRe = regexp.MustCompile(`SQLSTATE[=:\s]+([0-9A-Z]{5})`)
	sqlCode = regexp.MustCompile(`SQLCODE[=:\s]+(-?\d+)`)
)

// ErrorCodes returns the SQL state and the vendor code reported by a
// driver error. Either may be empty or zero.
func ErrorCodes(err error) (state string, code int) {
	var (
		pgErr    *pgconn.PgError
		pqErr    *pq.Error
		myErr    *mysql.MySQLError
		liteErr  *sqlite.Error
		stater   interface{ SQLState() string }
		numberer interface{ Number() int32 }
		mssqlErr interface{ SQLErrorNumber() int32 }
	)
	switch {
	case errors.As(err, &pgErr):
		return pgErr.Code, 0
	case errors.As(err, &pqErr):
		return pqErr.SQLState(), 0
	case errors.As(err, &myErr):
		if myErr.SQLState != [5]byte{} {
			state = string(myErr.SQLState[:])
		}
		return state, int(myErr.Number)
	case errors.As(err, &liteErr):
		return "", liteErr.Code()
	case errors.As(err, &stater):
		state = stater.SQLState()
	case errors.As(err, &numberer):
		code = int(numberer.Number())
	case errors.As(err, &mssqlErr):
		code = int(mssqlErr.SQLErrorNumber())
	}
	msg := err.Error()
	if state == "" {
		if m := stateRe.FindStringSubmatch(msg); m != nil {
			state = m[1]
		}
	}
	if code == 0 {
		for _, re := range []*regexp.Regexp{oraCode, sqlCode} {
			if m := re.FindStringSubmatch(msg); m != nil {
				code, _ = strconv.Atoi(m[1])
				break
			}
		}
	}
	return state, code
}

// Classify returns the error kind of a driver error. Vendor codes take
// precedence over SQL states; unknown states fall back to their class.
func (d *Dictionary) Classify(err error) dbdict.Kind {
	if err == nil {
		return dbdict.KindGeneral
	}
	if k := dbdict.KindOf(err); k != dbdict.KindGeneral {
		return k
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return dbdict.KindQueryTimeout
	case errors.Is(err, stdsql.ErrNoRows):
		return dbdict.KindObjectNotFound
	}
	state, code := ErrorCodes(err)
	return d.classify(state, code)
}

func (d *Dictionary) classify(state string, code int) dbdict.Kind {
	if code != 0 {
		if k, ok := d.p.codes[code]; ok {
			return k
		}
	}
	if state == "" {
		return dbdict.KindGeneral
	}
	state = strings.ToUpper(state)
	if k, ok := d.states[state]; ok {
		return k
	}
	switch {
	case strings.HasPrefix(state, "23"):
		return dbdict.KindReferentialIntegrity
	case strings.HasPrefix(state, "40"):
		return dbdict.KindLock
	}
	return dbdict.KindGeneral
}

// Narrow classifies a driver error into the typed error of its kind,
// carrying the driver error as cause and the object whose statement
// failed. Classified errors are returned unchanged.
func (d *Dictionary) Narrow(msg string, err error, failed any) error {
	if err == nil {
		return nil
	}
	if _, ok := dbdict.AsStoreError(err); ok {
		return err
	}
	kind := d.Classify(err)
	state, code := ErrorCodes(err)
	return dbdict.NewStoreErrorCode(kind, msg, state, code, failed, err)
}
