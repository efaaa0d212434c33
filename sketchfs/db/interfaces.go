package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/draftwing/sketchfs/sketchfs/snapshot"
)

// SnapshotRecord is one persisted snapshot row.
type SnapshotRecord struct {
	ID      uuid.UUID
	TakenAt time.Time
	State   []byte
}

// ISnapshotProvider is the storage boundary for persisted project snapshots.
// The tree core never touches the database directly; it hands a snapshot to
// this provider and gets one back on restore.
type ISnapshotProvider interface {
	SaveSnapshot(snap *snapshot.Snapshot) (uuid.UUID, error)
	GetSnapshot(id uuid.UUID) (*snapshot.Snapshot, error)
	GetLatestSnapshot() (*snapshot.Snapshot, error)
	ListSnapshots() ([]SnapshotRecord, error)
	Close() error
}
