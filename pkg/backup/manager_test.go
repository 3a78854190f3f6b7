package backup

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConf(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "svxlink.conf")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	return path
}

func TestCreateAndList(t *testing.T) {
	src := writeConf(t, t.TempDir(), "[GLOBAL]\nLOGICS=SimplexLogic\n")
	m := NewManager(t.TempDir())

	created, err := m.Create(src, "before adding NodeB")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if created.Metadata.Message != "before adding NodeB" {
		t.Errorf("Message = %q", created.Metadata.Message)
	}
	if created.Metadata.Checksum == "" {
		t.Error("Checksum not recorded")
	}

	backups, err := m.List()
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("Expected 1 backup, got %d", len(backups))
	}
	if backups[0].ID != created.ID {
		t.Errorf("List returned ID %q, want %q", backups[0].ID, created.ID)
	}
}

func TestCreateMissingSource(t *testing.T) {
	m := NewManager(t.TempDir())
	if _, err := m.Create(filepath.Join(t.TempDir(), "nope.conf"), "x"); err == nil {
		t.Fatal("Expected error backing up a missing file")
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := writeConf(t, dir, "[NodeA]\nTYPE=Net\nHOST=1.2.3.4\n")
	m := NewManager(t.TempDir())

	created, err := m.Create(src, "checkpoint")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// Clobber the live file, then restore.
	if err := os.WriteFile(src, []byte("garbage"), 0644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	if err := m.Restore(created.ID, src); err != nil {
		t.Fatalf("Restore error: %v", err)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(data) != "[NodeA]\nTYPE=Net\nHOST=1.2.3.4\n" {
		t.Errorf("Restored content = %q", string(data))
	}
}

func TestRestoreUnknownID(t *testing.T) {
	m := NewManager(t.TempDir())
	if err := m.Restore("20200101-000000-000-dead", "/dev/null"); err == nil {
		t.Fatal("Expected error restoring an unknown backup")
	}
}

func TestDelete(t *testing.T) {
	src := writeConf(t, t.TempDir(), "[GLOBAL]\n")
	m := NewManager(t.TempDir())

	created, err := m.Create(src, "x")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := m.Delete(created.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	backups, err := m.List()
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("Expected no backups after delete, got %d", len(backups))
	}
}
