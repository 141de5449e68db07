package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects the SQL flavor of the backing database.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
)

// driverName returns the database/sql driver registered for the dialect.
func (d Dialect) driverName() (string, error) {
	switch d {
	case DialectPostgres:
		return "pgx", nil
	case DialectMySQL:
		return "mysql", nil
	case DialectSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unknown dialect: %q", d)
	}
}

// dsn builds the driver connection string from the store configuration.
func (d Dialect) dsn(cfg Config) (string, error) {
	switch d {
	case DialectPostgres:
		host := cfg.Host
		if host == "" {
			host = "localhost"
		}
		return fmt.Sprintf("postgres://%s:%s@%s/%s", cfg.User, cfg.Password, host, cfg.Database), nil
	case DialectMySQL:
		host := cfg.Host
		if host == "" {
			host = "localhost:3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", cfg.User, cfg.Password, host, cfg.Database), nil
	case DialectSQLite:
		if cfg.Path == "" {
			return "", fmt.Errorf("sqlite dialect requires a database path")
		}
		return fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", cfg.Path), nil
	default:
		return "", fmt.Errorf("unknown dialect: %q", d)
	}
}

// fieldsQuery returns the catalog query listing column names of a table
// in definition order, with one bound parameter (the table name).
func (d Dialect) fieldsQuery() string {
	switch d {
	case DialectPostgres:
		return `SELECT column_name FROM information_schema.columns WHERE table_name = $1 ORDER BY ordinal_position`
	case DialectMySQL:
		return `SELECT column_name FROM information_schema.columns WHERE table_name = ? AND table_schema = DATABASE() ORDER BY ordinal_position`
	default:
		return `SELECT name FROM pragma_table_info(?) ORDER BY cid`
	}
}

// rebind converts ?-style placeholders to the dialect's native form.
// Postgres uses numbered $N placeholders; MySQL and SQLite take ? as is.
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
