package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

const (
	// DefaultSQLTable is the snapshots table name used when none is configured.
	DefaultSQLTable = "todolist_snapshots"
	// DefaultSnapshotName is the row holding the collection.
	DefaultSnapshotName = "default"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// dialect holds the driver-specific SQL for one database.
type dialect struct {
	name        string
	driver      string
	quote       func(string) string
	createTable string
	upsert      string
	selectData  string
	describe    func(dsn string) string
}

var postgresDialect = dialect{
	name:   "postgres",
	driver: "postgres",
	quote:  pq.QuoteIdentifier,
	createTable: `CREATE TABLE IF NOT EXISTS %s (
	name VARCHAR(191) PRIMARY KEY,
	data BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`,
	upsert: `INSERT INTO %s (name, data, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
	selectData: `SELECT data FROM %s WHERE name = $1`,
	describe:   describePostgresDSN,
}

var mysqlDialect = dialect{
	name:   "mysql",
	driver: "mysql",
	quote:  func(s string) string { return "`" + s + "`" },
	createTable: `CREATE TABLE IF NOT EXISTS %s (
	name VARCHAR(191) PRIMARY KEY,
	data LONGBLOB NOT NULL,
	updated_at DATETIME(6) NOT NULL
)`,
	upsert: `INSERT INTO %s (name, data, updated_at) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE data = VALUES(data), updated_at = VALUES(updated_at)`,
	selectData: `SELECT data FROM %s WHERE name = ?`,
	describe:   describeMySQLDSN,
}

func dialectFor(name string) (dialect, error) {
	switch name {
	case "postgres", "postgresql", "pg":
		return postgresDialect, nil
	case "mysql", "mariadb":
		return mysqlDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported sql dialect %q", name)
	}
}

// SQLBackend keeps the snapshot in one row of a snapshots table.
type SQLBackend struct {
	db      *sql.DB
	dialect dialect
	table   string
	name    string
	dsn     string
	owned   bool
	now     func() time.Time
}

// OpenSQL opens a database for the named dialect ("postgres" or "mysql"),
// pings it and creates the snapshots table if needed.
func OpenSQL(ctx context.Context, dialectName, dsn, table, name string) (*SQLBackend, error) {
	d, err := dialectFor(dialectName)
	if err != nil {
		return nil, err
	}
	if dsn == "" {
		return nil, fmt.Errorf("%s dsn is empty", d.name)
	}
	if d.name == "mysql" {
		if _, err := mysql.ParseDSN(dsn); err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}

	b, err := NewSQL(ctx, db, dialectName, table, name)
	if err != nil {
		db.Close()
		return nil, err
	}
	b.dsn = dsn
	b.owned = true
	return b, nil
}

// NewSQL wraps an open database handle and ensures the snapshots table
// exists. The caller keeps ownership of db.
func NewSQL(ctx context.Context, db *sql.DB, dialectName, table, name string) (*SQLBackend, error) {
	d, err := dialectFor(dialectName)
	if err != nil {
		return nil, err
	}
	if table == "" {
		table = DefaultSQLTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if name == "" {
		name = DefaultSnapshotName
	}

	b := &SQLBackend{
		db:      db,
		dialect: d,
		table:   table,
		name:    name,
		now:     time.Now,
	}
	if _, err := db.ExecContext(ctx, b.query(d.createTable)); err != nil {
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}
	return b, nil
}

func (b *SQLBackend) query(format string) string {
	return fmt.Sprintf(format, b.dialect.quote(b.table))
}

func (b *SQLBackend) SaveSnapshot(ctx context.Context, data []byte) error {
	if _, err := b.db.ExecContext(ctx, b.query(b.dialect.upsert), b.name, data, b.now().UTC()); err != nil {
		return fmt.Errorf("save snapshot row: %w", err)
	}
	return nil
}

func (b *SQLBackend) LoadSnapshot(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx, b.query(b.dialect.selectData), b.name).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("load snapshot row: %w", err)
	}
	return data, nil
}

func (b *SQLBackend) Describe() string {
	where := b.dialect.name
	if b.dsn != "" {
		where += " " + b.dialect.describe(b.dsn)
	}
	return fmt.Sprintf("%s table %s row %s", where, b.table, b.name)
}

// Close closes the database if the backend opened it.
func (b *SQLBackend) Close() error {
	if !b.owned {
		return nil
	}
	return b.db.Close()
}

func describePostgresDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		// key=value form; only report that one is configured.
		return "(dsn)"
	}
	return u.Redacted()
}

func describeMySQLDSN(dsn string) string {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "(dsn)"
	}
	if cfg.Passwd != "" {
		cfg.Passwd = "xxxxx"
	}
	return cfg.FormatDSN()
}
