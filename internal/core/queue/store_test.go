package queue

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestStore_SaveAndLoad(t *testing.T) {
	queueFile := filepath.Join(t.TempDir(), "nested", "queue.json")
	store := NewStore(queueFile)

	task1 := NewTask("session-1", "rm -rf /tmp/test", "dangerous")
	task2 := NewTask("session-1", "ls -la", "")

	if err := store.Save([]*Task{task1, task2}); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	info, err := os.Stat(queueFile)
	if err != nil {
		t.Fatalf("Queue file was not created: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0o600 {
		t.Errorf("Expected 0600 permissions, got %v", info.Mode().Perm())
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(loaded))
	}
	if loaded[0].ID != task1.ID || loaded[0].Command != "rm -rf /tmp/test" || loaded[0].Reason != "dangerous" {
		t.Errorf("Unexpected first task: %+v", loaded[0])
	}
	if loaded[1].Command != "ls -la" {
		t.Errorf("Unexpected second task command %q", loaded[1].Command)
	}
}

func TestStore_LoadNonExistent(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.json"))

	tasks, err := store.Load()
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Expected empty queue, got %d tasks", len(tasks))
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	queueFile := filepath.Join(t.TempDir(), "queue.json")
	if err := os.WriteFile(queueFile, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewStore(queueFile).Load(); err == nil {
		t.Error("Expected error for corrupt queue file")
	}
}

func TestStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "queue.json"))

	for i := 0; i < 3; i++ {
		if err := store.Save([]*Task{NewTask("s", "ls", "")}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the queue file, found %d entries", len(entries))
	}
}
