// Package db persists exported project snapshots in a libsql database. The
// database is a sink and source for serialized trees only; all tree semantics
// live in the trees and snapshot packages.
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "github.com/tursodatabase/go-libsql"

	internal "github.com/draftwing/sketchfs/sketchfs"
	"github.com/draftwing/sketchfs/sketchfs/snapshot"
)

// SnapshotProvider stores snapshots in a snapshots table keyed by uuid.
type SnapshotProvider struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSnapshotProvider opens or initializes the snapshot database at the given
// DSN. An empty DSN falls back to the default in-memory database.
func NewSnapshotProvider(dsn string) (*SnapshotProvider, error) {
	if dsn == "" {
		dsn = internal.DefaultDatabaseDSN
	}

	conn, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	provider := &SnapshotProvider{
		db:     conn,
		logger: internal.GetLogger(),
	}
	if err := provider.init(); err != nil {
		conn.Close()
		return nil, err
	}
	return provider, nil
}

// init sets up the snapshots table.
func (p *SnapshotProvider) init() error {
	_, err := p.db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY UNIQUE,
		taken_at TEXT NOT NULL,
		state BLOB
	)`)
	if err != nil {
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}
	return nil
}

// SaveSnapshot persists one exported snapshot and returns its record id.
func (p *SnapshotProvider) SaveSnapshot(snap *snapshot.Snapshot) (uuid.UUID, error) {
	state, err := json.Marshal(snap)
	if err != nil {
		return uuid.Nil, fmt.Errorf("error marshalling snapshot: %w", err)
	}

	id := uuid.New()
	takenAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := p.db.Exec(
		"INSERT INTO snapshots (id, taken_at, state) VALUES ($1, $2, $3)",
		id.String(), takenAt, state,
	); err != nil {
		return uuid.Nil, fmt.Errorf("error inserting snapshot into database: %w", err)
	}

	p.logger.Debug().Str("id", id.String()).Int("entries", snap.Len()).Msg("snapshot saved")
	return id, nil
}

// GetSnapshot loads one snapshot by id.
func (p *SnapshotProvider) GetSnapshot(id uuid.UUID) (*snapshot.Snapshot, error) {
	row := p.db.QueryRow("SELECT state FROM snapshots WHERE id = $1", id.String())

	var state []byte
	if err := row.Scan(&state); err != nil {
		return nil, fmt.Errorf("error loading snapshot %s: %w", id, err)
	}
	return decodeState(state)
}

// GetLatestSnapshot loads the most recently taken snapshot.
func (p *SnapshotProvider) GetLatestSnapshot() (*snapshot.Snapshot, error) {
	row := p.db.QueryRow("SELECT state FROM snapshots ORDER BY taken_at DESC LIMIT 1")

	var state []byte
	if err := row.Scan(&state); err != nil {
		return nil, fmt.Errorf("error loading latest snapshot: %w", err)
	}
	return decodeState(state)
}

// ListSnapshots returns every stored snapshot record, state included.
func (p *SnapshotProvider) ListSnapshots() ([]SnapshotRecord, error) {
	rows, err := p.db.Query("SELECT id, taken_at, state FROM snapshots ORDER BY taken_at")
	if err != nil {
		return nil, fmt.Errorf("error querying snapshots: %w", err)
	}
	defer rows.Close()

	var records []SnapshotRecord
	for rows.Next() {
		var idText, takenAtText string
		var record SnapshotRecord
		if err := rows.Scan(&idText, &takenAtText, &record.State); err != nil {
			return nil, fmt.Errorf("error scanning snapshot: %w", err)
		}
		if record.ID, err = uuid.Parse(idText); err != nil {
			return nil, fmt.Errorf("error parsing snapshot id: %w", err)
		}
		if record.TakenAt, err = time.Parse(time.RFC3339, takenAtText); err != nil {
			return nil, fmt.Errorf("error parsing snapshot time: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Close releases the database handle.
func (p *SnapshotProvider) Close() error {
	return p.db.Close()
}

func decodeState(state []byte) (*snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	if err := json.Unmarshal(state, &snap); err != nil {
		return nil, fmt.Errorf("error unmarshalling snapshot state: %w", err)
	}
	return &snap, nil
}
