package db

import (
	"context"
	"database/sql"
	"embed"
	"strconv"
	"strings"
	"sync"
	"time"

	"restogrades/internal/logging"
	"restogrades/internal/util"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/stdlib"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*/*.sql
var embedMigrations embed.FS

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

func (d dialect) String() string {
	if d == dialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

func (d dialect) gooseDialect() string {
	if d == dialectPostgres {
		return "postgres"
	}
	return "sqlite3"
}

func (d dialect) migrationsDir() string {
	return "migrations/" + d.String()
}

// MigrateDirection selects what Migrate does.
type MigrateDirection string

const (
	MigrateUp     MigrateDirection = "up"
	MigrateDown   MigrateDirection = "down"
	MigrateStatus MigrateDirection = "status"
)

// goose keeps its dialect, filesystem and logger in package globals.
var gooseMu sync.Mutex

// Store is the restaurants and grades database.
type Store struct {
	db      *sql.DB
	dialect dialect
	log     *logging.Logger
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Open connects to the database named by dsn and migrates it to the latest
// schema. A dsn starting with postgres:// or postgresql:// selects PostgreSQL;
// anything else is treated as a SQLite path or file: URI.
func Open(ctx context.Context, log *logging.Logger, dsn string) (*Store, error) {
	s, err := Connect(ctx, log, dsn)
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(MigrateUp); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// Connect opens and pings the database without touching the schema.
func Connect(ctx context.Context, log *logging.Logger, dsn string) (*Store, error) {
	s := &Store{log: log.Named("db")}

	if isPostgres(dsn) {
		cfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse postgres connection string")
		}
		s.db = stdlib.OpenDB(*cfg)
		s.dialect = dialectPostgres
	} else {
		db, err := sql.Open("sqlite", sqliteDSN(dsn))
		if err != nil {
			return nil, errors.Wrap(err, "failed to open database")
		}
		// SQLite allows a single writer; one connection also keeps :memory:
		// databases alive between queries.
		db.SetMaxOpenConns(1)
		s.db = db
		s.dialect = dialectSQLite
	}

	if err := s.db.PingContext(ctx); err != nil {
		s.db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	s.log.Debug("connected to database", logging.String("dialect", s.dialect.String()))
	return s, nil
}

// Close releases the underlying connections.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies, reverts or reports the embedded schema migrations.
// Down reverts a single migration.
func (s *Store) Migrate(direction MigrateDirection) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(s.log.Named("migration").GooseLogger())
	if err := goose.SetDialect(s.dialect.gooseDialect()); err != nil {
		return errors.Wrap(err, "failed to set migration dialect")
	}

	dir := s.dialect.migrationsDir()
	var err error
	switch direction {
	case MigrateUp:
		err = goose.Up(s.db, dir)
	case MigrateDown:
		err = goose.Down(s.db, dir)
	case MigrateStatus:
		err = goose.Status(s.db, dir)
	default:
		return errors.Errorf("unknown migration direction %q", direction)
	}

	return errors.Wrapf(err, "failed to migrate schema %s", direction)
}

// bindVar appends arg to args and returns its placeholder.
func (s *Store) bindVar(args *[]interface{}, arg interface{}) string {
	*args = append(*args, arg)
	if s.dialect == dialectPostgres {
		return "$" + strconv.Itoa(len(*args))
	}
	return "?"
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func sqliteDSN(dsn string) string {
	dsn = strings.TrimPrefix(dsn, "sqlite://")
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// timeArg binds t as a native timestamp for PostgreSQL and as sortable UTC text
// for SQLite.
func (s *Store) timeArg(t time.Time) interface{} {
	if s.dialect == dialectPostgres {
		return t.UTC()
	}
	return util.FormatTimestamp(t)
}

// parseTimestamp reads a timestamp column. database/sql renders PostgreSQL
// timestamptz values as RFC 3339 text when scanning into a string.
func parseTimestamp(column, value string) (time.Time, error) {
	t, err := util.ParseTimestamp(value)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid %s", column)
	}
	return t, nil
}

// nullable converts an optional value into a driver argument.
func nullable[T any](v *T) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
