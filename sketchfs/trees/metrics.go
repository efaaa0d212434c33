package trees

import (
	"maps"
	"time"
)

// TreeMetrics holds statistical information about a FileTree.
type TreeMetrics struct {
	TotalNodes      int64
	TotalBytes      int64
	MaxDepth        int
	LastUpdated     time.Time
	OperationCounts map[string]int64
}

func newTreeMetrics() *TreeMetrics {
	return &TreeMetrics{
		OperationCounts: make(map[string]int64),
		LastUpdated:     time.Now(),
	}
}

func (m *TreeMetrics) record(op string) {
	m.OperationCounts[op]++
	m.LastUpdated = time.Now()
}

// clone returns a copy safe to hand out to callers.
func (m *TreeMetrics) clone() *TreeMetrics {
	return &TreeMetrics{
		TotalNodes:      m.TotalNodes,
		TotalBytes:      m.TotalBytes,
		MaxDepth:        m.MaxDepth,
		LastUpdated:     m.LastUpdated,
		OperationCounts: maps.Clone(m.OperationCounts),
	}
}
