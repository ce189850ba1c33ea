package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subsync/internal/logging"
	"subsync/internal/services"
)

func TestNewWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "subsync.log")
	logger, err := logging.New(logging.Options{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("segments stored", logging.Int("segments", 3))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `"msg":"segments stored"`) {
		t.Fatalf("unexpected log content: %s", content)
	}
	if !strings.Contains(content, `"segments":3`) {
		t.Fatalf("missing attribute in log content: %s", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "subsync.log")
	logger, err := logging.New(logging.Options{
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := services.WithInterviewID(t.Context(), "intv-7")
	ctx = services.WithStage(ctx, "translate")
	ctx = services.WithLanguage(ctx, "he")

	logging.WithContext(ctx, logger).Info("batch dispatched")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	for _, want := range []string{`"interview_id":"intv-7"`, `"stage":"translate"`, `"language":"he"`} {
		if !strings.Contains(content, want) {
			t.Fatalf("missing %s in log content: %s", want, content)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("should not panic", logging.Error(nil))
}
