// Package postgres persists generated datasets in PostgreSQL. Each run is
// stored under its run ID; saving the same run again replaces it.
package postgres

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

	"github.com/alfredjeanlab/ticketforge/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a store.Sink backed by a PostgreSQL database.
type Store struct {
	db *sql.DB
}

// Compile-time check that Store implements store.Sink.
var _ store.Sink = (*Store)(nil)

// RunInfo summarizes one stored run.
type RunInfo struct {
	ID          string
	GeneratedAt time.Time
	Tickets     int
}

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an already open database without running migrations.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
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

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes ds in a single transaction, replacing any previous run
// with the same ID.
func (s *Store) Save(ctx context.Context, ds *store.Dataset) error {
	if ds.RunID == "" {
		return errors.New("save dataset: empty run id")
	}
	return s.runInTransaction(ctx, func(tx executor) error {
		if err := queryDeleteRun(ctx, tx, ds.RunID); err != nil {
			return fmt.Errorf("delete previous run: %w", err)
		}
		if err := queryInsertRun(ctx, tx, ds.RunID, ds.GeneratedAt); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		for _, id := range sortedKeys(ds.Teams) {
			if err := queryInsertTeam(ctx, tx, ds.RunID, ds.Teams[id]); err != nil {
				return fmt.Errorf("insert team %s: %w", id, err)
			}
		}
		for _, id := range sortedKeys(ds.FixVersions) {
			if err := queryInsertFixVersion(ctx, tx, ds.RunID, ds.FixVersions[id]); err != nil {
				return fmt.Errorf("insert fix version %s: %w", id, err)
			}
		}
		for _, id := range sortedKeys(ds.Sprints) {
			if err := queryInsertSprint(ctx, tx, ds.RunID, ds.Sprints[id]); err != nil {
				return fmt.Errorf("insert sprint %s: %w", id, err)
			}
		}
		ticketIDs := sortedKeys(ds.Tickets)
		for _, id := range ticketIDs {
			if err := queryInsertTicket(ctx, tx, ds.RunID, ds.Tickets[id]); err != nil {
				return fmt.Errorf("insert ticket %s: %w", id, err)
			}
		}
		// Links and sprint membership reference tickets, so they go last.
		for _, id := range ticketIDs {
			if err := queryInsertLinks(ctx, tx, ds.RunID, ds.Tickets[id]); err != nil {
				return fmt.Errorf("insert links of %s: %w", id, err)
			}
		}
		for _, id := range sortedKeys(ds.Sprints) {
			if err := queryInsertSprintTickets(ctx, tx, ds.RunID, ds.Sprints[id]); err != nil {
				return fmt.Errorf("insert tickets of sprint %s: %w", id, err)
			}
		}
		return nil
	})
}

// Load reads a stored run back into a dataset. It returns
// store.ErrNotFound when the run does not exist.
func (s *Store) Load(ctx context.Context, runID string) (*store.Dataset, error) {
	return queryLoadRun(ctx, s.db, runID)
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	return queryListRuns(ctx, s.db)
}

// runInTransaction begins a transaction, calls fn, and commits on success
// or rolls back on error.
func (s *Store) runInTransaction(ctx context.Context, fn func(tx executor) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
