package logger_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quirbit/qb/internal/logger"
)

func TestNewFile_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "qb.log")

	log, err := logger.NewFile(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	log.Info("something happened",
		logger.String("name", "Blog"),
		logger.Int("count", 3),
		logger.Error(errors.New("boom")),
	)
	if err := log.Sync(); err != nil {
		t.Fatalf("failed to sync: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	line := strings.TrimSpace(string(data))
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", line, err)
	}
	if entry["msg"] != "something happened" {
		t.Errorf("unexpected message: %v", entry["msg"])
	}
	if entry["name"] != "Blog" {
		t.Errorf("expected structured field, got %v", entry)
	}
}

func TestNewFile_DebugBelowThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qb.log")

	log, err := logger.NewFile(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	log.Debug("too quiet")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected debug output suppressed, got %q", data)
	}
}

func TestNop(t *testing.T) {
	log := logger.Nop()
	log.Info("discarded")
	if err := log.Sync(); err != nil {
		t.Errorf("expected nop sync to succeed, got %v", err)
	}
}
