package util

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// CopyFileAtomic copies a file atomically, preserving permissions
func CopyFileAtomic(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer srcFile.Close()

	// Temp file in the destination directory so the final rename stays
	// on one filesystem
	tmpFile, err := os.CreateTemp(filepath.Dir(dst), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy contents: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, srcInfo.Mode()); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("failed to rename: %w", err)
	}

	success = true
	return nil
}

// GenerateUniqueID generates a unique ID for backups
// Format: YYYYMMDD-HHMMSS-mmm-RRRR
// Where mmm = milliseconds, RRRR = random hex suffix
func GenerateUniqueID() string {
	timestamp := time.Now().Format("20060102-150405")
	ms := time.Now().UnixMilli() % 1000

	randBytes := make([]byte, 4)
	if _, err := rand.Read(randBytes); err != nil {
		// Extremely rare; a timestamp-only ID is still usable
		return fmt.Sprintf("%s-%03d-fallback", timestamp, ms)
	}

	return fmt.Sprintf("%s-%03d-%x", timestamp, ms, randBytes[:2])
}
