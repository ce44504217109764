package db

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// gooseMu serializes migrations, goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

// Repository provides a centralized structure for database operations, embedding the database connection.
// It acts as a receiver for the methods implementing domain.FavoritesStore and domain.SecretStore.
type Repository struct {
	dbConn  *sqlx.DB      // dbConn is the active database connection pool.
	logger  *slog.Logger  // logger receives failures that happen inside watchers.
	changes *changeHub    // changes wakes favorite watchers after every committed mutation.
	secrets *secretCipher // secrets seals and opens secret values, nil until WithMasterKey is applied.

	closeOnce sync.Once
	done      chan struct{} // done is closed by Close to stop every watcher.
}

// NewRepo initializes a new Repository with the given sqlx.DB database connection
// and applies the options in order.
func NewRepo(db *sqlx.DB, options ...func(*Repository) error) (*Repository, error) {
	repo := &Repository{
		dbConn:  db,
		logger:  slog.Default(),
		changes: newChangeHub(),
		done:    make(chan struct{}),
	}
	for _, option := range options {
		if err := option(repo); err != nil {
			return nil, fmt.Errorf("applying option on repo : %w", err)
		}
	}
	return repo, nil
}

// WithLogger sets the logger used for failures that cannot be returned to a caller.
// A nil logger keeps the default.
func WithLogger(logger *slog.Logger) func(*Repository) error {
	return func(repo *Repository) error {
		if logger != nil {
			repo.logger = logger
		}
		return nil
	}
}

// WithMasterKey derives the secret store keys from the 32 byte master key.
func WithMasterKey(masterKey []byte) func(*Repository) error {
	return func(repo *Repository) error {
		cipher, err := newSecretCipher(masterKey)
		if err != nil {
			return fmt.Errorf("deriving secret keys : %w", err)
		}
		repo.secrets = cipher
		return nil
	}
}

// Close stops every watcher and terminates the database connection.
// It is critical to call this to free up database resources.
func (repo *Repository) Close() error {
	repo.closeOnce.Do(func() {
		close(repo.done)
	})
	err := repo.dbConn.Close()
	if err != nil {
		return fmt.Errorf("closing repo : %w", err)
	}
	return nil
}

// New establishes a new connection to a SQLite database file and applies all pending migrations.
// It enables WAL mode, a busy timeout and foreign keys, and limits the pool to a single connection
// so that transactions are serialized.
//
// The `name` parameter should be the file path for the SQLite database.
//
// It returns a ready-to-use sqlx.DB connection pool or an error if the connection or migrations fail.
func New(name string) (*sqlx.DB, error) {
	if name == "" {
		return nil, errors.New("database name is empty")
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", name)
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to db : %w", err)
	}

	db.SetMaxOpenConns(1)

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting dialect for migrations : %w", err)
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying migration : %w", err)
	}
	return db, nil
}
