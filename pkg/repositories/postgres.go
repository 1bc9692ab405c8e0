package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/cbodonnell/rigid2d/pkg/log"
	"github.com/cbodonnell/rigid2d/pkg/messages"
	"github.com/cbodonnell/rigid2d/pkg/scenario"
	"github.com/jackc/pgx/v5"
)

type PostgresRepository struct {
	conn *pgx.Conn
}

// NewPostgresRepository connects to the database and applies the embedded
// migrations. The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	conn, err := connectDb(ctx, connStr)
	if err != nil {
		return nil, err
	}

	migrations, err := migrations("postgres")
	if err != nil {
		conn.Close(ctx)
		return nil, err
	}
	for i, migration := range migrations {
		if _, err := conn.Exec(ctx, migration); err != nil {
			conn.Close(ctx)
			return nil, fmt.Errorf("failed to execute migration %d: %v", i, err)
		}
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func connectDb(ctx context.Context, connStr string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	var username string
	var database string
	err = conn.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to query database: %v", err)
	}

	log.Info("Connected to %s as %s", database, username)

	return conn, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) ListScenarios(ctx context.Context) ([]string, error) {
	rows, err := r.conn.Query(ctx, "SELECT name FROM scenarios ORDER BY name")
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

func (r *PostgresRepository) LoadScenario(ctx context.Context, name string) (*scenario.Scenario, error) {
	q := `
	SELECT definition FROM scenarios WHERE name = $1;
	`
	var definition []byte
	if err := r.conn.QueryRow(ctx, q, name).Scan(&definition); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan scenario: %v", err)
	}

	return decodeScenario(definition)
}

func (r *PostgresRepository) SaveScenario(ctx context.Context, sc *scenario.Scenario) error {
	definition, err := encodeScenario(sc)
	if err != nil {
		return err
	}

	q := `
	INSERT INTO scenarios (name, definition) VALUES ($1, $2)
	ON CONFLICT (name) DO UPDATE SET definition = $2, updated_at = NOW();
	`
	if _, err := r.conn.Exec(ctx, q, sc.Name, string(definition)); err != nil {
		return fmt.Errorf("failed to insert scenario: %v", err)
	}

	return nil
}

func (r *PostgresRepository) SaveSnapshot(ctx context.Context, snapshot *messages.Snapshot) error {
	b, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	q := `
	INSERT INTO snapshots (scenario, tick, timestamp, snapshot) VALUES ($1, $2, $3, $4)
	ON CONFLICT (scenario) DO UPDATE SET tick = $2, timestamp = $3, snapshot = $4;
	`
	if _, err := r.conn.Exec(ctx, q, snapshot.Scenario, snapshot.Tick, snapshot.Timestamp, string(b)); err != nil {
		return fmt.Errorf("failed to insert snapshot: %v", err)
	}

	return nil
}

func (r *PostgresRepository) LoadSnapshot(ctx context.Context, scenarioName string) (*messages.Snapshot, error) {
	q := `
	SELECT snapshot FROM snapshots WHERE scenario = $1;
	`
	var b []byte
	if err := r.conn.QueryRow(ctx, q, scenarioName).Scan(&b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan snapshot: %v", err)
	}

	return decodeSnapshot(b)
}
