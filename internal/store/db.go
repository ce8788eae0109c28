// Package store persists a symbol graph into a Sourcetrail project
// database: a SQLite file with a fixed schema the Sourcetrail viewer can
// open, plus a small XML project descriptor next to it.
//
// All writes run inside one long transaction per open/commit pair, so
// everything recorded between Commit calls is atomic and uncommitted work
// is discarded on Close.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	// storageVersion is the Sourcetrail database format written here.
	storageVersion = "25"

	dbExtension      = ".srctrldb"
	projectExtension = ".srctrlprj"
)

// projectSettings is written verbatim to the project descriptor file and
// mirrored into the project_settings meta row.
const projectSettings = `<?xml version="1.0" encoding="utf-8" ?>
<config>
   <version>0</version>
</config>`

var (
	// ErrNoDatabase is returned when opening a path with no database file,
	// or when operating on a handle that is not open.
	ErrNoDatabase = errors.New("store: no database")

	// ErrAlreadyOpen is returned when Open or Create is called on a handle
	// that already holds a live connection.
	ErrAlreadyOpen = errors.New("store: database already open")

	// ErrNotFound is returned by lookups that match no row.
	ErrNotFound = errors.New("store: not found")

	// ErrAmbiguous is returned by single-row lookups that match more than
	// one row.
	ErrAmbiguous = errors.New("store: more than one row matched")

	// ErrDuplicateSymbol is returned when attaching a symbol to a node that
	// already carries one.
	ErrDuplicateSymbol = errors.New("store: node already has a symbol")
)

// Database is a handle on one Sourcetrail project database.
type Database struct {
	db     *sql.DB
	tx     *sql.Tx
	path   string
	logger *zap.Logger
}

// Option configures a Database handle.
type Option func(*Database)

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Database) {
		d.logger = logger
	}
}

// New returns a closed handle. Call Open or Create to bind it to a file.
func New(opts ...Option) *Database {
	d := &Database{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Exists reports whether a database file exists at path. The .srctrldb
// extension is appended when missing, as in Open and Create.
func Exists(path string) bool {
	_, err := os.Stat(normalizePath(path))
	return err == nil
}

// Open binds the handle to an existing database file and begins the write
// transaction. The path may omit the .srctrldb extension.
func (d *Database) Open(path string) error {
	if d.db != nil {
		return ErrAlreadyOpen
	}
	path = normalizePath(path)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open %s: %w", path, ErrNoDatabase)
	}
	if err := d.connect(path); err != nil {
		return err
	}
	d.logger.Info("database opened", zap.String("path", path))
	return d.begin()
}

// Create makes a new database file at path, writes the schema, the default
// node display rows, the meta rows, and the project descriptor file next to
// it, then begins the write transaction. An existing file is an error.
func (d *Database) Create(path string) error {
	if d.db != nil {
		return ErrAlreadyOpen
	}
	path = normalizePath(path)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("create %s: %w", path, os.ErrExist)
	}
	if err := d.connect(path); err != nil {
		return err
	}
	if err := d.initialize(); err != nil {
		d.db.Close()
		d.db = nil
		os.Remove(path)
		return err
	}
	if err := os.WriteFile(d.ProjectFilePath(), []byte(projectSettings), 0644); err != nil {
		d.db.Close()
		d.db = nil
		return fmt.Errorf("writing project file: %w", err)
	}
	d.logger.Info("database created", zap.String("path", path))
	return d.begin()
}

// Commit makes everything recorded since the last commit durable and
// begins a fresh transaction for further writes.
func (d *Database) Commit() error {
	if d.tx == nil {
		return ErrNoDatabase
	}
	if err := d.tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	d.tx = nil
	d.logger.Debug("transaction committed")
	return d.begin()
}

// Close discards uncommitted writes and releases the connection. The
// handle can be reopened afterwards.
func (d *Database) Close() error {
	if d.db == nil {
		return ErrNoDatabase
	}
	if d.tx != nil {
		if err := d.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			d.db.Close()
			d.db, d.tx = nil, nil
			return fmt.Errorf("rolling back: %w", err)
		}
		d.tx = nil
	}
	err := d.db.Close()
	d.db = nil
	d.logger.Info("database closed", zap.String("path", d.path))
	if err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Clear removes all recorded data and restores the default node display
// rows. The meta rows are kept.
func (d *Database) Clear() error {
	if d.tx == nil {
		return ErrNoDatabase
	}
	tables := []string{
		"occurrence", "source_location", "element_component", "error",
		"component_access", "local_symbol", "filecontent", "file",
		"symbol", "edge", "node", "element",
	}
	for _, table := range tables {
		if _, err := d.tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing table %s: %w", table, err)
		}
	}
	return d.ResetNodeDisplays()
}

// Path returns the path of the database file.
func (d *Database) Path() string {
	return d.path
}

// ProjectFilePath returns the path of the project descriptor file.
func (d *Database) ProjectFilePath() string {
	return strings.TrimSuffix(d.path, dbExtension) + projectExtension
}

// Savepoint runs fn inside a named savepoint. When fn returns an error the
// savepoint is rolled back and the error returned; otherwise the savepoint
// is released into the enclosing transaction.
func (d *Database) Savepoint(name string, fn func() error) error {
	if d.tx == nil {
		return ErrNoDatabase
	}
	if _, err := d.tx.Exec("SAVEPOINT " + name); err != nil {
		return fmt.Errorf("savepoint %s: %w", name, err)
	}
	if err := fn(); err != nil {
		d.tx.Exec("ROLLBACK TO SAVEPOINT " + name)
		d.tx.Exec("RELEASE SAVEPOINT " + name)
		return err
	}
	if _, err := d.tx.Exec("RELEASE SAVEPOINT " + name); err != nil {
		return fmt.Errorf("release savepoint %s: %w", name, err)
	}
	return nil
}

// SetMeta stores a key/value pair in the meta table, replacing an existing
// value for the key.
func (d *Database) SetMeta(key, value string) error {
	res, err := d.exec("UPDATE meta SET value = ? WHERE key = ?", value, key)
	if err != nil {
		return fmt.Errorf("updating meta %s: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	if _, err := d.exec("INSERT INTO meta (id, key, value) VALUES (NULL, ?, ?)", key, value); err != nil {
		return fmt.Errorf("writing meta %s: %w", key, err)
	}
	return nil
}

// GetMeta retrieves a value from the meta table.
func (d *Database) GetMeta(key string) (string, error) {
	row, err := d.queryRow("SELECT value FROM meta WHERE key = ?", key)
	if err != nil {
		return "", err
	}
	var value string
	err = row.Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading meta %s: %w", key, err)
	}
	return value, nil
}

func (d *Database) connect(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps the session pragma and the long write
	// transaction on the same underlying handle.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("setting pragma: %w", err)
	}
	d.db = db
	d.path = path
	return nil
}

// initialize writes the schema and the fixed bootstrap rows. Runs in
// autocommit mode so a created file is valid even if the handle is closed
// without a commit.
func (d *Database) initialize() error {
	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	meta := [][2]string{
		{"storage_version", storageVersion},
		{"project_settings", projectSettings},
	}
	for _, kv := range meta {
		_, err := d.db.Exec("INSERT INTO meta (id, key, value) VALUES (NULL, ?, ?)", kv[0], kv[1])
		if err != nil {
			return fmt.Errorf("writing meta %s: %w", kv[0], err)
		}
	}
	for _, nd := range defaultNodeDisplays {
		_, err := d.db.Exec(
			"INSERT INTO node_type (id, graph_display, hover_display) VALUES (?, ?, ?)",
			nd.ID, nd.GraphDisplay, nd.HoverDisplay,
		)
		if err != nil {
			return fmt.Errorf("writing node_type %d: %w", nd.ID, err)
		}
	}
	return nil
}

func (d *Database) begin() error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	d.tx = tx
	return nil
}

// exec runs a statement inside the current write transaction.
func (d *Database) exec(query string, args ...any) (sql.Result, error) {
	if d.tx == nil {
		return nil, ErrNoDatabase
	}
	return d.tx.Exec(query, args...)
}

// query runs a read inside the current write transaction so uncommitted
// rows are visible.
func (d *Database) query(query string, args ...any) (*sql.Rows, error) {
	if d.tx == nil {
		return nil, ErrNoDatabase
	}
	return d.tx.Query(query, args...)
}

// queryRow runs a single-row read inside the current write transaction.
func (d *Database) queryRow(query string, args ...any) (*sql.Row, error) {
	if d.tx == nil {
		return nil, ErrNoDatabase
	}
	return d.tx.QueryRow(query, args...), nil
}

func normalizePath(path string) string {
	if strings.HasSuffix(path, dbExtension) {
		return path
	}
	return path + dbExtension
}

// nullable maps the empty string to NULL for optional text columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
