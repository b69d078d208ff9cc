package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS prediction_logs (
	id                 TEXT PRIMARY KEY,
	recorded_at        TIMESTAMPTZ NOT NULL,
	status             TEXT NOT NULL,
	crowd_level        TEXT NOT NULL DEFAULT '',
	predicted_visitors INTEGER,
	rules_applied      TEXT[] NOT NULL DEFAULT '{}',
	record             JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS prediction_logs_recorded_at ON prediction_logs (recorded_at);`

// PostgresStore persists records to PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects with dsn and ensures the schema.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Append inserts the record. Re-appending an ID is a no-op.
func (s *PostgresStore) Append(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	var visitors *int
	rules := []string{}
	if rec.Result != nil {
		visitors = &rec.Result.PredictedVisitors
		rules = rec.Result.RulesApplied
	}
	const query = `
		INSERT INTO prediction_logs (
			id, recorded_at, status, crowd_level, predicted_visitors, rules_applied, record
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`
	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.Timestamp, rec.Status, rec.crowdLevel(), visitors, pq.Array(rules), b)
	return err
}

type recordRow struct {
	Record []byte `db:"record"`
}

// Query filters in SQL, including the rule filter through the rules_applied array.
func (s *PostgresStore) Query(ctx context.Context, q Query) ([]Record, error) {
	var (
		args  []any
		query = `SELECT record FROM prediction_logs WHERE 1=1`
	)
	add := func(cond string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(cond, len(args))
	}
	if !q.Start.IsZero() {
		add(` AND recorded_at >= $%d`, q.Start.UTC())
	}
	if !q.End.IsZero() {
		add(` AND recorded_at <= $%d`, q.End.UTC())
	}
	if q.Status != "" {
		add(` AND status = $%d`, q.Status)
	}
	if q.CrowdLevel != "" {
		add(` AND crowd_level = $%d`, q.CrowdLevel)
	}
	if q.Rule != "" {
		add(` AND $%d = ANY(rules_applied)`, q.Rule)
	}
	query += ` ORDER BY recorded_at`
	if q.Limit > 0 {
		add(` LIMIT $%d`, q.Limit)
	}

	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	res := make([]Record, 0, len(rows))
	for _, row := range rows {
		var r Record
		if err := json.Unmarshal(row.Record, &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		res = append(res, r)
	}
	return res, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }
