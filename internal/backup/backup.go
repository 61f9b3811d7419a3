// Package backup snapshots the local store to timestamped JSON archives
// and restores from them. Archives are the same envelope the export
// command produces, so they stay portable across store backends.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/habitkit/habitkit/internal/constants"
	"github.com/habitkit/habitkit/internal/storage"
)

const (
	// BackupDirName is the name of the backup directory
	BackupDirName = "backups"
	// BackupFilePrefix is the prefix for backup files
	BackupFilePrefix = "habitkit-"
	// BackupFileSuffix is the suffix for backup files
	BackupFileSuffix = ".json"
)

// Info describes one backup archive on disk.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager writes and restores store snapshots under a backup directory
// next to the store.
type Manager struct {
	store     *storage.LocalStore
	backupDir string
}

// NewManager creates a backup manager rooted next to storePath.
func NewManager(store *storage.LocalStore, storePath string) *Manager {
	return &Manager{
		store:     store,
		backupDir: filepath.Join(filepath.Dir(storePath), BackupDirName),
	}
}

// Dir returns the backup directory path.
func (m *Manager) Dir() string {
	return m.backupDir
}

// Create exports the store into a new timestamped archive and rotates
// old archives beyond the retention limit.
func (m *Manager) Create(ctx context.Context) (string, error) {
	return m.create(ctx, false)
}

func (m *Manager) create(ctx context.Context, skipRotation bool) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	data, err := m.store.Export(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to export store: %w", err)
	}

	path, err := m.uniquePath()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if !skipRotation {
		if err := m.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to rotate old backups: %v\n", err)
		}
	}

	return path, nil
}

// uniquePath picks a timestamped filename, adding seconds and finally a
// counter when backups land in the same minute.
func (m *Manager) uniquePath() (string, error) {
	timestamp := time.Now().Format("20060102-1504")
	path := filepath.Join(m.backupDir, BackupFilePrefix+timestamp+BackupFileSuffix)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	}

	timestamp = time.Now().Format("20060102-150405")
	path = filepath.Join(m.backupDir, BackupFilePrefix+timestamp+BackupFileSuffix)
	counter := 1
	for {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s%s-%d%s", BackupFilePrefix, timestamp, counter, BackupFileSuffix))
		counter++
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
	}
}

// List returns all archives, newest first. Files whose names do not
// parse as backup timestamps are skipped.
func (m *Manager) List() ([]Info, error) {
	if _, err := os.Stat(m.backupDir); os.IsNotExist(err) {
		return []Info{}, nil
	}

	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, BackupFilePrefix) || !strings.HasSuffix(name, BackupFileSuffix) {
			continue
		}

		stamp := strings.TrimSuffix(strings.TrimPrefix(name, BackupFilePrefix), BackupFileSuffix)
		if idx := strings.LastIndex(stamp, "-"); idx > 0 {
			// Strip a trailing collision counter
			tail := stamp[idx+1:]
			if len(tail) != 4 && len(tail) != 6 && isDigits(tail) {
				stamp = stamp[:idx]
			}
		}

		ts, err := time.Parse("20060102-1504", stamp)
		if err != nil {
			ts, err = time.Parse("20060102-150405", stamp)
			if err != nil {
				continue
			}
		}

		path := filepath.Join(m.backupDir, name)
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		backups = append(backups, Info{Path: path, Timestamp: ts, Size: fi.Size()})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Restore imports an archive into the store, snapshotting the current
// contents first so a bad restore can be undone.
func (m *Manager) Restore(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	if !json.Valid(data) {
		return fmt.Errorf("backup file is corrupted or invalid: %s", path)
	}

	if current, err := m.create(ctx, true); err == nil {
		fmt.Printf("Created backup of current store: %s\n", filepath.Base(current))
	}

	return m.store.Import(ctx, string(data))
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
