package backup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/habitkit/habitkit/internal/models"
	"github.com/habitkit/habitkit/internal/storage"
)

func setupBackup(t *testing.T) (*Manager, *storage.LocalStore, string) {
	t.Helper()
	dir := t.TempDir()
	storePath := filepath.Join(dir, "store")
	kv, err := storage.NewDiskvStore(storePath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	store := storage.NewLocalStore(kv)
	return NewManager(store, storePath), store, dir
}

func TestCreateWritesArchive(t *testing.T) {
	mgr, store, dir := setupBackup(t)
	ctx := context.Background()

	habit := models.Habit{ID: "h1", Title: "Read", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := store.SaveHabit(ctx, habit); err != nil {
		t.Fatalf("failed to save habit: %v", err)
	}

	path, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), BackupFilePrefix) {
		t.Errorf("unexpected backup name %q", filepath.Base(path))
	}
	if filepath.Dir(path) != filepath.Join(dir, BackupDirName) {
		t.Errorf("backup written outside backup dir: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if !strings.Contains(string(data), `"h1"`) {
		t.Error("expected archive to contain the exported habit")
	}
}

func TestCreateAvoidsNameCollisions(t *testing.T) {
	mgr, _, _ := setupBackup(t)
	ctx := context.Background()

	first, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("first Create() failed: %v", err)
	}
	second, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("second Create() failed: %v", err)
	}
	if first == second {
		t.Errorf("expected distinct backup paths, both were %s", first)
	}
}

func TestListSortedNewestFirst(t *testing.T) {
	mgr, _, dir := setupBackup(t)
	backupDir := filepath.Join(dir, BackupDirName)
	if err := os.MkdirAll(backupDir, 0700); err != nil {
		t.Fatalf("failed to create backup dir: %v", err)
	}

	for _, name := range []string{
		"habitkit-20240101-0900.json",
		"habitkit-20240301-0900.json",
		"habitkit-20240201-0900.json",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(backupDir, name), []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to seed backup: %v", err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups not sorted newest first: %v", backups)
		}
	}
}

func TestRestoreReplacesStore(t *testing.T) {
	mgr, store, _ := setupBackup(t)
	ctx := context.Background()

	old := models.Habit{ID: "old", Title: "Old", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := store.SaveHabit(ctx, old); err != nil {
		t.Fatalf("failed to save habit: %v", err)
	}
	path, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	replacement := models.Habit{ID: "new", Title: "New", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := store.SaveHabit(ctx, replacement); err != nil {
		t.Fatalf("failed to save habit: %v", err)
	}

	if err := mgr.Restore(ctx, path); err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}

	habits := store.Habits(ctx)
	if len(habits) != 1 || habits[0].ID != "old" {
		t.Errorf("expected restored snapshot with habit old, got %+v", habits)
	}
}

func TestRestoreRejectsCorruptArchive(t *testing.T) {
	mgr, _, dir := setupBackup(t)
	ctx := context.Background()

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("not json"), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := mgr.Restore(ctx, bad); err == nil {
		t.Error("expected error restoring corrupt archive")
	}
}
