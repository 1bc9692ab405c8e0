package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cbodonnell/rigid2d/pkg/messages"
	"github.com/cbodonnell/rigid2d/pkg/scenario"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database at path and applies the embedded
// migrations. The caller is responsible for calling Close() on the repository.
func NewSQLiteRepository(ctx context.Context, path string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	migrations, err := migrations("sqlite")
	if err != nil {
		db.Close()
		return nil, err
	}
	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %d: %v", i, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) ListScenarios(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM scenarios ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenarios: %v", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %v", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scenarios: %v", err)
	}

	return names, nil
}

func (r *SQLiteRepository) LoadScenario(ctx context.Context, name string) (*scenario.Scenario, error) {
	q := `
	SELECT definition FROM scenarios WHERE name = ?;
	`
	var definition string
	if err := r.db.QueryRowContext(ctx, q, name).Scan(&definition); err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan scenario: %v", err)
	}

	return decodeScenario([]byte(definition))
}

func (r *SQLiteRepository) SaveScenario(ctx context.Context, sc *scenario.Scenario) error {
	definition, err := encodeScenario(sc)
	if err != nil {
		return err
	}

	q := `
	INSERT OR REPLACE INTO scenarios (name, definition, updated_at)
	VALUES (?, ?, ?);
	`
	if _, err := r.db.ExecContext(ctx, q, sc.Name, string(definition), time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to insert scenario: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, snapshot *messages.Snapshot) error {
	b, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	q := `
	INSERT OR REPLACE INTO snapshots (scenario, tick, timestamp, snapshot)
	VALUES (?, ?, ?, ?);
	`
	if _, err := r.db.ExecContext(ctx, q, snapshot.Scenario, snapshot.Tick, snapshot.Timestamp, string(b)); err != nil {
		return fmt.Errorf("failed to insert snapshot: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) LoadSnapshot(ctx context.Context, scenarioName string) (*messages.Snapshot, error) {
	q := `
	SELECT snapshot FROM snapshots WHERE scenario = ?;
	`
	var b string
	if err := r.db.QueryRowContext(ctx, q, scenarioName).Scan(&b); err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan snapshot: %v", err)
	}

	return decodeSnapshot([]byte(b))
}
