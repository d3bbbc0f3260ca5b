// Package sqlite persists plan records and mappings in a local SQLite
// database, for development runs without a MongoDB deployment.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	caravan "github.com/nevindra/caravan"
)

const schema = `
CREATE TABLE IF NOT EXISTS travel_agency_plans (
	id         TEXT PRIMARY KEY,
	record     TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS travel_agency_plan_mappings (
	plan_id    TEXT PRIMARY KEY,
	mapping    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
`

// Store implements caravan.RecordStore on a single SQLite file. Documents
// are stored as JSON text, mirroring the document-store layout.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// modernc sqlite serializes writes; one connection avoids lock errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// PutPlan stores the record as a JSON document keyed by its id.
func (s *Store) PutPlan(ctx context.Context, record caravan.PlanRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode plan record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO travel_agency_plans (id, record, created_at) VALUES (?, ?, ?)`,
		record.ID, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert plan record: %w", err)
	}
	return nil
}

// PutMapping stores the mapping as a JSON document keyed by the plan id.
func (s *Store) PutMapping(ctx context.Context, mapping caravan.PlanMapping) error {
	data, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("encode plan mapping: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO travel_agency_plan_mappings (plan_id, mapping, created_at) VALUES (?, ?, ?)`,
		mapping.PlanID, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert plan mapping: %w", err)
	}
	return nil
}

// GetPlan loads a stored record by id, for inspection tooling and tests.
func (s *Store) GetPlan(ctx context.Context, id string) (caravan.PlanRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM travel_agency_plans WHERE id = ?`, id).Scan(&data)
	if err != nil {
		return caravan.PlanRecord{}, err
	}
	var record caravan.PlanRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return caravan.PlanRecord{}, fmt.Errorf("decode plan record: %w", err)
	}
	return record, nil
}

// Compile-time interface check.
var _ caravan.RecordStore = (*Store)(nil)
