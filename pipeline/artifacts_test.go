package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestArtifactManagerCleanup(t *testing.T) {
	dir := t.TempDir()
	written := writeTempFile(t, dir, "job-x-subtitles.srt")
	neverWritten := filepath.Join(dir, "job-x-audio-concat.mp3")

	m := NewArtifactManager("job-x", zap.NewNop())
	m.Register(written)
	m.Register(neverWritten)

	if got := len(m.Tracked()); got != 2 {
		t.Fatalf("tracked %d paths, want 2", got)
	}

	m.Cleanup()

	if _, err := os.Stat(written); !os.IsNotExist(err) {
		t.Errorf("tracked file survived cleanup: %s", written)
	}
	if got := len(m.Tracked()); got != 0 {
		t.Errorf("tracked %d paths after cleanup, want 0", got)
	}
}

func TestArtifactManagerCleanupIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "job-y-concat.mp4")

	m := NewArtifactManager("job-y", zap.NewNop())
	m.Register(path)

	m.Cleanup()
	// A second pass over already-deleted paths must be a no-op
	m.Cleanup()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file survived cleanup: %s", path)
	}
}
