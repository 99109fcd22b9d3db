package db

import (
	"path/filepath"
	"testing"
)

func TestNew_CreatesDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	database, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer database.Close()

	tables := []string{"media", "annotations", "config", "_migrations"}
	for _, table := range tables {
		var name string
		err := database.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestNew_WALEnabled(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	database, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer database.Close()

	var journalMode string
	err = database.Conn().QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("PRAGMA journal_mode error = %v", err)
	}

	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}
}

func TestNew_MigrationsIdempotent(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db1, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	db1.Close()

	db2, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("second New() error = %v", err)
	}
	defer db2.Close()

	var count int
	err = db2.Conn().QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&count)
	if err != nil {
		t.Fatalf("count migrations error = %v", err)
	}

	if count != 1 {
		t.Errorf("migration count = %d, want 1", count)
	}
}

func TestNew_AnnotationsCascadeOnMediaDelete(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	database, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer database.Close()

	_, err = database.Conn().Exec(`
		INSERT INTO media (id, path, filename, created_at) VALUES ('m1', '/v.mp4', 'v.mp4', datetime('now'))
	`)
	if err != nil {
		t.Fatalf("insert media error = %v", err)
	}
	_, err = database.Conn().Exec(`
		INSERT INTO annotations (id, media_id, locator, created_at) VALUES ('a1', 'm1', '/v.json', datetime('now'))
	`)
	if err != nil {
		t.Fatalf("insert annotation error = %v", err)
	}

	if _, err := database.Conn().Exec("DELETE FROM media WHERE id = 'm1'"); err != nil {
		t.Fatalf("delete media error = %v", err)
	}

	var count int
	if err := database.Conn().QueryRow("SELECT COUNT(*) FROM annotations").Scan(&count); err != nil {
		t.Fatalf("count annotations error = %v", err)
	}
	if count != 0 {
		t.Errorf("annotation count after cascade = %d, want 0", count)
	}
}
