// Package backup keeps timestamped copies of svxlink.conf so a bad write
// can be undone. Each backup is a directory holding the config file plus a
// metadata.json describing when and why it was taken.
package backup

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/svxtools/svxconf/pkg/logger"
	"github.com/svxtools/svxconf/pkg/util"
	"github.com/svxtools/svxconf/pkg/version"
)

const (
	DefaultBackupDir = "/var/lib/svxconf/backups"
	MetadataFile     = "metadata.json"
	configFileName   = "svxlink.conf"

	// Backups beyond this count are pruned, oldest first.
	maxBackups = 50
)

// Metadata contains information about a backup
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`   // path the config was copied from
	ID        string    `json:"id"`       // backup ID (timestamp-based)
	Version   string    `json:"version"`  // svxconf version that created it
	Checksum  string    `json:"checksum"` // SHA256 of the config file
}

// Backup represents one stored copy of the configuration
type Backup struct {
	ID       string
	Metadata Metadata
	Path     string
}

// ConfigPath returns the path of the stored config file inside the backup.
func (b *Backup) ConfigPath() string {
	return filepath.Join(b.Path, configFileName)
}

// Manager manages configuration backups
type Manager struct {
	backupDir string
}

// NewManager creates a new backup manager
func NewManager(backupDir string) *Manager {
	if backupDir == "" {
		backupDir = DefaultBackupDir
	}
	return &Manager{backupDir: backupDir}
}

// Create copies the config at sourcePath into a new backup and returns it.
func (m *Manager) Create(sourcePath, message string) (*Backup, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	id := util.GenerateUniqueID()
	backupPath := filepath.Join(m.backupDir, id)

	if err := os.MkdirAll(backupPath, 0700); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	// Remove the partial backup on any error below
	success := false
	defer func() {
		if !success {
			os.RemoveAll(backupPath)
		}
	}()

	dstPath := filepath.Join(backupPath, configFileName)
	if err := util.CopyFileAtomic(sourcePath, dstPath); err != nil {
		return nil, fmt.Errorf("failed to copy %s: %w", sourcePath, err)
	}

	data, err := os.ReadFile(dstPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup for checksum: %w", err)
	}

	metadata := Metadata{
		Timestamp: time.Now(),
		Message:   message,
		Source:    sourcePath,
		ID:        id,
		Version:   version.GetVersion(),
		Checksum:  fmt.Sprintf("%x", sha256.Sum256(data)),
	}

	if err := m.writeMetadata(backupPath, metadata); err != nil {
		return nil, err
	}

	success = true

	if pruned, err := m.prune(maxBackups); err != nil {
		logger.Warn("Failed to prune old backups", "error", err)
	} else if pruned > 0 {
		logger.Info("Pruned old backups", "count", pruned)
	}

	logger.Info("Backup created", "id", id, "source", sourcePath)

	return &Backup{ID: id, Metadata: metadata, Path: backupPath}, nil
}

// writeMetadata writes metadata.json atomically inside the backup dir.
func (m *Manager) writeMetadata(backupPath string, metadata Metadata) error {
	tmpFile, err := os.CreateTemp(backupPath, ".metadata-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp metadata file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	encoder := json.NewEncoder(tmpFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(metadata); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync metadata: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close metadata file: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(backupPath, MetadataFile)); err != nil {
		return fmt.Errorf("failed to rename metadata file: %w", err)
	}

	success = true
	return nil
}

// List returns all backups, sorted by timestamp (newest first)
func (m *Manager) List() ([]*Backup, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []*Backup{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		backup, err := m.Load(entry.Name())
		if err != nil {
			// Not a valid backup directory, skip it
			continue
		}
		backups = append(backups, backup)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Metadata.Timestamp.After(backups[j].Metadata.Timestamp)
	})

	return backups, nil
}

// Load loads a backup by ID
func (m *Manager) Load(id string) (*Backup, error) {
	backupPath := filepath.Join(m.backupDir, id)

	if _, err := os.Stat(backupPath); err != nil {
		return nil, fmt.Errorf("backup not found: %s", id)
	}

	f, err := os.Open(filepath.Join(backupPath, MetadataFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata: %w", err)
	}
	defer f.Close()

	var metadata Metadata
	if err := json.NewDecoder(f).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}

	return &Backup{ID: id, Metadata: metadata, Path: backupPath}, nil
}

// Restore copies the backed-up config back over targetPath atomically.
func (m *Manager) Restore(id, targetPath string) error {
	backup, err := m.Load(id)
	if err != nil {
		return err
	}

	if err := util.CopyFileAtomic(backup.ConfigPath(), targetPath); err != nil {
		return fmt.Errorf("failed to restore backup %s: %w", id, err)
	}

	logger.Info("Backup restored", "id", id, "target", targetPath)
	return nil
}

// Delete removes a backup by ID
func (m *Manager) Delete(id string) error {
	backupPath := filepath.Join(m.backupDir, id)
	if _, err := os.Stat(backupPath); err != nil {
		return fmt.Errorf("backup not found: %s", id)
	}
	return os.RemoveAll(backupPath)
}

// prune deletes the oldest backups beyond keep, returning how many went.
func (m *Manager) prune(keep int) (int, error) {
	backups, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}

	pruned := 0
	for _, backup := range backups[keep:] {
		if err := m.Delete(backup.ID); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}
