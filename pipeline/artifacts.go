package pipeline

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

// ArtifactManager tracks every intermediate file a job produces and
// guarantees deletion once the job settles, success or failure. Deletion
// failures are logged, never escalated: a leftover temp file must not fail
// a job. The final output and the original uploaded sources are never
// registered here.
type ArtifactManager struct {
	jobID string
	log   *zap.Logger

	mu    sync.Mutex
	paths []string
}

// NewArtifactManager creates a manager for one job's intermediates
func NewArtifactManager(jobID string, log *zap.Logger) *ArtifactManager {
	return &ArtifactManager{jobID: jobID, log: log}
}

// Register records a path for cleanup
func (m *ArtifactManager) Register(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, path)
}

// Tracked returns a snapshot of the registered paths
func (m *ArtifactManager) Tracked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.paths))
	copy(out, m.paths)
	return out
}

// Cleanup deletes every tracked intermediate. Paths that were never written
// (a stage failed before producing them) are skipped silently.
func (m *ArtifactManager) Cleanup() {
	m.mu.Lock()
	paths := m.paths
	m.paths = nil
	m.mu.Unlock()

	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			m.log.Warn("failed to remove intermediate",
				zap.String("job_id", m.jobID),
				zap.String("path", path),
				zap.Error(err))
		}
	}
}
