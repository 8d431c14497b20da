package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatingFileBasicWrite(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "out.log")

	w, err := openRotatingFile(logFile, 1024, 2)
	if err != nil {
		t.Fatalf("Failed to open writer: %v", err)
	}
	defer w.Close()

	msg := []byte("hello\n")
	n, err := w.Write(msg)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(msg) {
		t.Errorf("Expected %d bytes written, got %d", len(msg), n)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != "hello\n" {
		t.Errorf("Unexpected file contents: %q", data)
	}
}

func TestRotatingFileRotates(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "out.log")

	// Tiny max size so the second write forces a rotation
	w, err := openRotatingFile(logFile, 10, 2)
	if err != nil {
		t.Fatalf("Failed to open writer: %v", err)
	}
	defer w.Close()

	if _, err := w.Write([]byte("0123456789")); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if _, err := w.Write([]byte("abcdef")); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}

	backupFound := false
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "out-") && strings.HasSuffix(e.Name(), ".1.log") {
			backupFound = true
		}
	}
	if !backupFound {
		t.Errorf("Expected a rotated backup file, found %v", entries)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read current file: %v", err)
	}
	if string(data) != "abcdef" {
		t.Errorf("Expected fresh file after rotation, got %q", data)
	}
}

func TestRotatingFileDropsOldestBackup(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "out.log")

	w, err := openRotatingFile(logFile, 4, 2)
	if err != nil {
		t.Fatalf("Failed to open writer: %v", err)
	}
	defer w.Close()

	// Each write overflows the 4-byte cap, so every write after the
	// first triggers a rotation
	for _, chunk := range []string{"aaaa", "bbbb", "cccc", "dddd"} {
		if _, err := w.Write([]byte(chunk)); err != nil {
			t.Fatalf("Write %q failed: %v", chunk, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}

	backups := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "out-") {
			backups++
		}
	}
	if backups > 2 {
		t.Errorf("Expected at most 2 backups kept, found %d: %v", backups, entries)
	}
}
