package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// Database drivers
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// idColumn is the synthetic leading primary key every bot table carries.
// It is stripped from all results; callers never see it.
const idColumn = "id"

// RowStore wraps one database connection pool and translates generic
// search/update/insert requests into parametrized SQL, mapping result rows
// back into field-name dictionaries.
//
// Each call runs exactly one statement and commits immediately; there is no
// transaction spanning calls. Table field lists are re-read from the catalog
// on every fetch rather than cached.
type RowStore struct {
	db      *sql.DB
	cfg     Config
	dialect Dialect
}

// Config holds the explicit store configuration. Credential sourcing is the
// caller's concern (see pkg/config); the store never reads files itself.
type Config struct {
	Driver   string // postgres, mysql or sqlite; defaults to postgres
	Host     string
	User     string
	Password string
	Database string
	Path     string // sqlite only

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// New creates a new RowStore. The connection is not opened until Init.
func New(cfg Config) (*RowStore, error) {
	if cfg.Driver == "" {
		cfg.Driver = string(DialectPostgres)
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}

	dialect := Dialect(cfg.Driver)
	if _, err := dialect.driverName(); err != nil {
		return nil, err
	}

	return &RowStore{cfg: cfg, dialect: dialect}, nil
}

// Dialect reports the SQL dialect the store was configured with.
func (s *RowStore) Dialect() Dialect {
	return s.dialect
}

// Init opens the database connection and verifies it.
func (s *RowStore) Init(ctx context.Context) error {
	driver, err := s.dialect.driverName()
	if err != nil {
		return err
	}

	dsn, err := s.dialect.dsn(s.cfg)
	if err != nil {
		return err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(s.cfg.MaxOpenConns)
	db.SetMaxIdleConns(s.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(s.cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if s.dialect == DialectSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	s.db = db
	return nil
}

// Close releases the database connection.
func (s *RowStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs the embedded schema migrations for the configured dialect.
func (s *RowStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations/"+string(s.dialect))
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	var m *migrate.Migrate
	switch s.dialect {
	case DialectPostgres:
		driver, derr := migratepgx.WithInstance(s.db, &migratepgx.Config{})
		if derr != nil {
			return fmt.Errorf("failed to create database driver: %w", derr)
		}
		m, err = migrate.NewWithInstance("iofs", sourceDriver, "pgx", driver)
	case DialectMySQL:
		driver, derr := migratemysql.WithInstance(s.db, &migratemysql.Config{})
		if derr != nil {
			return fmt.Errorf("failed to create database driver: %w", derr)
		}
		m, err = migrate.NewWithInstance("iofs", sourceDriver, "mysql", driver)
	default:
		driver, derr := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
		if derr != nil {
			return fmt.Errorf("failed to create database driver: %w", derr)
		}
		m, err = migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	}
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (s *RowStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return s.db.PingContext(ctx)
}

// Search returns the first row of table matching the filter, or nil when
// nothing matches. A missing row is not an error.
func (s *RowStore) Search(ctx context.Context, table string, f Filter) (Row, error) {
	results, err := s.SearchAll(ctx, table, f)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// SearchAll returns every row of table matching the filter, in the order the
// database produced them. The result dictionaries never contain the leading
// synthetic id column.
func (s *RowStore) SearchAll(ctx context.Context, table string, f Filter) ([]Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	cond, args, err := f.condition()
	if err != nil {
		return nil, err
	}

	query := s.dialect.rebind(fmt.Sprintf("SELECT * FROM %s %s", table, cond))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", table, err)
	}

	return s.formatRows(ctx, table, rows)
}

// Update sets a single field on every row matching the filter.
func (s *RowStore) Update(ctx context.Context, table string, f Filter, field string, value any) error {
	return s.UpdateMany(ctx, table, f, map[string]any{field: value})
}

// UpdateMany sets each field in updates on every row matching the filter,
// in one statement committed immediately. Field order in the generated SQL
// is lexical so statements are deterministic.
func (s *RowStore) UpdateMany(ctx context.Context, table string, f Filter, updates map[string]any) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if len(updates) == 0 {
		return fmt.Errorf("no fields to update")
	}

	assigns := make([]string, 0, len(updates))
	args := make([]any, 0, len(updates)+1)
	for _, field := range sortedKeys(updates) {
		if err := checkIdent(field); err != nil {
			return err
		}
		assigns = append(assigns, field+" = ?")
		value, err := encodeValue(updates[field])
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", field, err)
		}
		args = append(args, value)
	}

	cond, condArgs, err := f.condition()
	if err != nil {
		return err
	}
	args = append(args, condArgs...)

	query := s.dialect.rebind(fmt.Sprintf("UPDATE %s SET %s %s", table, strings.Join(assigns, ", "), cond))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}

	return nil
}

// Add inserts a new row with the given values, scoped to guildID. The
// server_id column is always set from guildID, overriding any value the
// caller supplied. Structured values (maps, slices, structs) are stored as
// JSON text.
func (s *RowStore) Add(ctx context.Context, table string, guildID int64, values map[string]any) error {
	if err := checkTable(table); err != nil {
		return err
	}

	row := make(map[string]any, len(values)+1)
	for k, v := range values {
		row[k] = v
	}
	row["server_id"] = guildID

	fields := make([]string, 0, len(row))
	blanks := make([]string, 0, len(row))
	args := make([]any, 0, len(row))
	for _, field := range sortedKeys(row) {
		if err := checkIdent(field); err != nil {
			return err
		}
		value, err := encodeValue(row[field])
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", field, err)
		}
		fields = append(fields, field)
		blanks = append(blanks, "?")
		args = append(args, value)
	}

	query := s.dialect.rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(fields, ", "), strings.Join(blanks, ", ")))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	return nil
}

// TableFields returns the column names of table in catalog order, with the
// leading synthetic id column dropped. The catalog is queried fresh on every
// call so schema changes are picked up without a restart.
func (s *RowStore) TableFields(ctx context.Context, table string) ([]string, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.fieldsQuery(), table)
	if err != nil {
		return nil, fmt.Errorf("failed to read fields of %s: %w", table, err)
	}
	defer rows.Close()

	var fields []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan field name: %w", err)
		}
		fields = append(fields, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fields: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("table has no columns: %s", table)
	}

	if fields[0] == idColumn {
		fields = fields[1:]
	}
	return fields, nil
}

// formatRows consumes a SELECT * result set and zips each row, minus its
// leading id column, with the table's current field list.
func (s *RowStore) formatRows(ctx context.Context, table string, rows *sql.Rows) ([]Row, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var raw [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		raw = append(raw, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if len(raw) == 0 {
		return []Row{}, nil
	}

	// Result set fully consumed; safe to run the catalog query now.
	fields, err := s.TableFields(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(fields) != len(cols)-1 {
		return nil, fmt.Errorf("field count mismatch for %s: %d fields, %d columns", table, len(fields), len(cols))
	}

	results := make([]Row, 0, len(raw))
	for _, vals := range raw {
		row := make(Row, len(fields))
		for i, field := range fields {
			row[field] = normalize(vals[i+1])
		}
		results = append(results, row)
	}
	return results, nil
}

// encodeValue prepares a value for binding. Structured values are stored as
// JSON text; everything else passes through to the driver unchanged.
func encodeValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch v.(type) {
	case string, []byte, bool, time.Time,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, nil
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Ptr:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	default:
		return v, nil
	}
}

// normalize converts driver []byte text into string so results compare
// naturally. All other values are returned as is.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
