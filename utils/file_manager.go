package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// CreateJobDir creates a job's transient working directory under baseDir,
// namespaced by job id
func CreateJobDir(baseDir, jobID string) (string, error) {
	jobDir := filepath.Join(baseDir, jobID)
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", jobDir, err)
	}
	return jobDir, nil
}

// RemoveJobDir removes a job's working directory and everything under it
func RemoveJobDir(baseDir, jobID string) error {
	return os.RemoveAll(filepath.Join(baseDir, jobID))
}

// EnsureDirs creates every directory in the list
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
