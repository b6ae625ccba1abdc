package database

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/nawanshu18/student-result-management-system/core"
	appfs "github.com/nawanshu18/student-result-management-system/fs"
)

const (
	EngineSQLite   = "sqlite3"
	EnginePostgres = "postgres"
)

var ErrUnknownEngine = errors.New("unknown database engine")

func sqliteDSN(path string) string {
	q := make(url.Values)
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", "5000")
	q.Set("_journal_mode", "WAL")
	return "file:" + path + "?" + q.Encode()
}

func postgresDSN(conf *core.Config) string {
	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   EnginePostgres,
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.Database.Address(),
		Path:     conf.Database.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open connects to the configured database and waits for it to answer.
// SQLite files (and their directory) are created when missing.
func Open(conf *core.Config) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error

	switch conf.Database.Engine {
	case EngineSQLite:
		if err = os.MkdirAll(filepath.Dir(conf.Database.Path), 0o755); err != nil {
			return nil, errors.Wrap(err, "creating database directory")
		}
		if db, err = sqlx.Open(EngineSQLite, sqliteDSN(conf.Database.Path)); err != nil {
			return nil, errors.Wrap(err, "opening database")
		}
		// a single connection serializes writers
		db.SetMaxOpenConns(1)
	case EnginePostgres:
		if db, err = sqlx.Open(EnginePostgres, postgresDSN(conf)); err != nil {
			return nil, errors.Wrap(err, "opening database")
		}
	default:
		return nil, errors.Wrap(ErrUnknownEngine, conf.Database.Engine)
	}

	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 20
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}
	return errors.Wrap(err, "DB ping timeout")
}

// MigrationsDir is the embedded directory holding the migrations of a database engine.
func MigrationsDir(engine string) string {
	return filepath.ToSlash(filepath.Join("migrations", engine))
}

// InitGoose points goose at the embedded migrations of db's engine.
func InitGoose(db *sqlx.DB) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect(db.DriverName()); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	return nil
}

// Migrate applies all pending migrations.
func Migrate(db *sqlx.DB) error {
	if err := InitGoose(db); err != nil {
		return err
	}
	if err := goose.Up(db.DB, MigrationsDir(db.DriverName())); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// RunMigration runs any goose command (up, down, status, redo, version...) on db.
func RunMigration(db *sqlx.DB, command string, args ...string) error {
	if err := InitGoose(db); err != nil {
		return err
	}
	if err := goose.Run(command, db.DB, MigrationsDir(db.DriverName()), args...); err != nil {
		return errors.Wrap(err, fmt.Sprintf("running migration %q", command))
	}
	return nil
}
