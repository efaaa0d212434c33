package db

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/draftwing/sketchfs/sketchfs/snapshot"
)

// MockSnapshotProvider is an in-memory ISnapshotProvider for tests.
type MockSnapshotProvider struct {
	mu      sync.Mutex
	records []SnapshotRecord
}

var _ ISnapshotProvider = (*MockSnapshotProvider)(nil)

func NewMockSnapshotProvider() *MockSnapshotProvider {
	return &MockSnapshotProvider{}
}

func (m *MockSnapshotProvider) SaveSnapshot(snap *snapshot.Snapshot) (uuid.UUID, error) {
	state, err := json.Marshal(snap)
	if err != nil {
		return uuid.Nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	record := SnapshotRecord{ID: uuid.New(), TakenAt: time.Now(), State: state}
	m.records = append(m.records, record)
	return record.ID, nil
}

func (m *MockSnapshotProvider) GetSnapshot(id uuid.UUID) (*snapshot.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.records {
		if record.ID == id {
			return decodeState(record.State)
		}
	}
	return nil, fmt.Errorf("snapshot %s not found", id)
}

func (m *MockSnapshotProvider) GetLatestSnapshot() (*snapshot.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.records) == 0 {
		return nil, fmt.Errorf("no snapshots stored")
	}
	return decodeState(m.records[len(m.records)-1].State)
}

func (m *MockSnapshotProvider) ListSnapshots() ([]SnapshotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SnapshotRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *MockSnapshotProvider) Close() error {
	return nil
}
