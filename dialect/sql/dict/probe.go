package dict

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/syssam/dbdict/dialect"
	"github.com/syssam/dbdict/dialect/sql"
)

// Version is a database server version.
type Version struct {
	Major, Minor, Patch int
	// Flavor names a product served under the name of another one, e.g.
	// "mariadb" for a server probed with the mysql dictionary.
	Flavor string
	Raw    string
}

var versionRe = regexp.MustCompile(`(\d+)(?:\.(\d+))?(?:\.(\d+))?`)

// ParseVersion parses the first dotted number of a version string, e.g.
// "8.0.36" or "PostgreSQL 16.2 on x86_64". Numbers with a dot are
// preferred over bare numbers.
func ParseVersion(s string) (Version, error) {
	v := Version{Raw: s}
	ms := versionRe.FindAllStringSubmatch(s, -1)
	if len(ms) == 0 {
		return v, fmt.Errorf("dict: no version number in %q", s)
	}
	m := ms[0]
	for _, c := range ms {
		if c[2] != "" {
			m = c
			break
		}
	}
	v.Major, _ = strconv.Atoi(m[1])
	v.Minor, _ = strconv.Atoi(m[2])
	v.Patch, _ = strconv.Atoi(m[3])
	if strings.Contains(strings.ToLower(s), "mariadb") {
		v.Flavor = dialect.MariaDB
	}
	return v, nil
}

// AtLeast reports whether v is major.minor.patch or later.
func (v Version) AtLeast(major, minor, patch int) bool {
	switch {
	case v.Major != major:
		return v.Major > major
	case v.Minor != minor:
		return v.Minor > minor
	}
	return v.Patch >= patch
}

// String returns the dotted version.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Flavor != "" {
		s += " (" + v.Flavor + ")"
	}
	return s
}

// Connected reports whether the server version was probed.
func (d *Dictionary) Connected() bool { return d.connected.Load() }

// Version returns the probed server version.
func (d *Dictionary) Version() (Version, bool) {
	v := d.version.Load()
	if v == nil {
		return Version{}, false
	}
	return *v, true
}

// Connect probes the server version through q on the first call and
// adjusts the capabilities to it. Later calls return immediately.
// Concurrent first calls share one probe.
func (d *Dictionary) Connect(ctx context.Context, q dialect.ExecQuerier) error {
	if d.connected.Load() {
		return nil
	}
	_, err, _ := d.probe.Do("connect", func() (any, error) {
		if d.connected.Load() {
			return nil, nil
		}
		if d.p.versionQuery == "" {
			d.setMu.Lock()
			d.connected.Store(true)
			d.setMu.Unlock()
			return nil, nil
		}
		raw, err := d.queryVersion(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("dict: %s: probe version: %w", d.name, err)
		}
		v, err := ParseVersion(raw)
		if err != nil {
			return nil, err
		}
		d.SetVersion(v)
		d.log.InfoContext(ctx, "database version probed", "dialect", d.name, "version", v.String())
		return nil, nil
	})
	return err
}

// SetVersion adjusts the capabilities to the server version, as Connect
// does after probing it. Only the first call has an effect. The version
// and capabilities are in place before Connected reports true.
func (d *Dictionary) SetVersion(v Version) {
	d.setMu.Lock()
	defer d.setMu.Unlock()
	if d.connected.Load() {
		return
	}
	d.version.Store(&v)
	if d.p.overlay != nil {
		c := d.caps.Load().Clone()
		d.p.overlay(v, c)
		d.caps.Store(c)
	}
	d.connected.Store(true)
}

func (d *Dictionary) queryVersion(ctx context.Context, q dialect.ExecQuerier) (string, error) {
	rows := &sql.Rows{}
	if err := q.Query(ctx, d.p.versionQuery, []any{}, rows); err != nil {
		return "", err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("no rows returned by %q", d.p.versionQuery)
	}
	var s sql.NullString
	if err := rows.Scan(&s); err != nil {
		return "", err
	}
	return s.String, rows.Close()
}
