package dict

import (
	"context"
	"errors"
	"regexp"
	"runtime"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dbdict/dialect"
	"github.com/syssam/dbdict/dialect/sql"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"16.2", Version{Major: 16, Minor: 2}},
		{"8.0.36", Version{Major: 8, Patch: 36}},
		{"PostgreSQL 9.6.24 on x86_64-pc-linux-gnu", Version{Major: 9, Minor: 6, Patch: 24}},
		{"10.11.6-MariaDB-1:10.11.6+maria~ubu2204", Version{Major: 10, Minor: 11, Patch: 6, Flavor: dialect.MariaDB}},
		{"Oracle Database 19c Enterprise Edition Release 19.0.0.0.0 - Production", Version{Major: 19}},
		{"15", Version{Major: 15}},
	}
	for _, tt := range tests {
		v, err := ParseVersion(tt.in)
		require.NoError(t, err, tt.in)
		tt.want.Raw = tt.in
		assert.Equal(t, tt.want, v, tt.in)
	}
	_, err := ParseVersion("unknown")
	assert.Error(t, err)
}

func TestVersionAtLeast(t *testing.T) {
	v := Version{Major: 12, Minor: 2, Patch: 1}
	assert.True(t, v.AtLeast(12, 2, 0))
	assert.True(t, v.AtLeast(11, 9, 9))
	assert.True(t, v.AtLeast(12, 2, 1))
	assert.False(t, v.AtLeast(12, 2, 2))
	assert.False(t, v.AtLeast(13, 0, 0))
	assert.Equal(t, "12.2.1", v.String())
	assert.Equal(t, "10.11.6 (mariadb)", Version{Major: 10, Minor: 11, Patch: 6, Flavor: dialect.MariaDB}.String())
}

func TestConnect(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery(regexp.QuoteMeta("SHOW server_version")).
		WillReturnRows(sqlmock.NewRows([]string{"server_version"}).AddRow("9.6.24"))

	d := mustDict(t, dialect.Postgres)
	drv := sql.OpenDB(dialect.Postgres, db)
	assert.False(t, d.Connected())
	assert.Equal(t, "GENERATED BY DEFAULT AS IDENTITY", d.Capabilities().AutoAssignClause)

	require.NoError(t, d.Connect(context.Background(), drv))
	require.NoError(t, d.Connect(context.Background(), drv))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.True(t, d.Connected())
	v, ok := d.Version()
	require.True(t, ok)
	assert.Equal(t, 9, v.Major)
	assert.Equal(t, 6, v.Minor)
	assert.Equal(t, "BIGSERIAL", d.Capabilities().AutoAssignTypeName)
	assert.Empty(t, d.Capabilities().AutoAssignClause)
}

func TestConnectConcurrent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT VERSION()")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("10.11.6-MariaDB"))

	d := mustDict(t, dialect.MySQL)
	drv := sql.OpenDB(dialect.MySQL, db)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, d.Connect(context.Background(), drv))
		}()
	}
	wg.Wait()
	require.NoError(t, mock.ExpectationsWereMet())
	assert.True(t, d.Capabilities().SupportsSequences)
}

func TestConnectError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT sqlite_version()")).WillReturnError(errors.New("database is locked"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT sqlite_version()")).
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow("3.45.1"))

	d := mustDict(t, dialect.SQLite)
	drv := sql.OpenDB(dialect.SQLite, db)
	err = d.Connect(context.Background(), drv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "probe version")
	assert.False(t, d.Connected())
	assert.False(t, d.Capabilities().SupportsAlterTableWithDropColumn)

	// A failed probe is retried.
	require.NoError(t, d.Connect(context.Background(), drv))
	assert.True(t, d.Capabilities().SupportsAlterTableWithDropColumn)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetVersionOnce(t *testing.T) {
	d := mustDict(t, dialect.Oracle)
	before := d.Capabilities()
	d.SetVersion(Version{Major: 19})
	assert.Equal(t, 128, d.Capabilities().MaxColumnNameLength)
	assert.Equal(t, 30, before.MaxColumnNameLength, "capabilities are replaced, not mutated")

	d.SetVersion(Version{Major: 11})
	v, _ := d.Version()
	assert.Equal(t, 19, v.Major)
	assert.Equal(t, 128, d.Capabilities().MaxColumnNameLength)

	// Products without a version query connect without a round trip.
	g := mustDict(t, dialect.Generic)
	require.NoError(t, g.Connect(context.Background(), nil))
	assert.True(t, g.Connected())
}

func TestSetVersionPublishesCapabilities(t *testing.T) {
	for range 50 {
		d := mustDict(t, dialect.SQLServer)
		require.True(t, d.Capabilities().SupportsSelectStartIndex)
		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for !d.Connected() {
					runtime.Gosched()
				}
				assert.False(t, d.Capabilities().SupportsSelectStartIndex, "connected before the overlay was applied")
			}()
		}
		d.SetVersion(Version{Major: 10, Minor: 50})
		wg.Wait()
	}
}
