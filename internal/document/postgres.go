package document

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore keeps documents as rows of the documents table. Bodies are
// stored as jsonb, so Read returns an equivalent document rather than the
// exact bytes written.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to the PostgreSQL database at the
// given URL and runs any pending migrations.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Write inserts or replaces the named document.
func (s *PostgresStore) Write(ctx context.Context, name string, data []byte) error {
	return queryPutDocument(ctx, s.db, name, data)
}

// Read returns the named document.
func (s *PostgresStore) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := queryGetDocument(ctx, s.db, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotExist)
	}
	return data, err
}

// List returns every document name, sorted.
func (s *PostgresStore) List(ctx context.Context) ([]string, error) {
	return queryListDocuments(ctx, s.db)
}

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryPutDocument(ctx context.Context, db executor, name string, data []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO documents (name, body)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET body = $2, updated_at = NOW()`,
		name, string(data),
	)
	if err != nil {
		return fmt.Errorf("put document: %w", err)
	}
	return nil
}

func queryGetDocument(ctx context.Context, db executor, name string) ([]byte, error) {
	var body string
	err := db.QueryRowContext(ctx, `
		SELECT body FROM documents WHERE name = $1`, name,
	).Scan(&body)
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

func queryListDocuments(ctx context.Context, db executor) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM documents ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan document name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
