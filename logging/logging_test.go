package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToRotatingFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "exprobe.log")

	cfg := Default()
	cfg.File = file
	cfg.Level = "debug"

	logger, closer, err := New(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	logger.Sugar().Debugw("loaded markets", "exchange", "kraken", "count", 3)

	if err := closer.Close(); err != nil {
		t.Fatalf("Failed to close the logger: %s", err)
	}

	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("Expected a log file to be written: %s", err)
	}

	line := string(b)
	for _, want := range []string{`"msg":"loaded markets"`, `"exchange":"kraken"`, `"app":"exprobe"`} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected the log line to contain %s but got %s.", want, line)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	file := filepath.Join(t.TempDir(), "exprobe.log")

	logger, closer, err := New(Config{File: file, Level: "warn"})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	logger.Info("hidden")
	logger.Warn("shown")

	_ = closer.Close()

	b, _ := os.ReadFile(file)
	if strings.Contains(string(b), "hidden") || !strings.Contains(string(b), "shown") {
		t.Errorf("Expected only warnings to be written but got %s.", b)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, _, err := New(Config{File: Stderr, Level: "chatty"}); err == nil {
		t.Errorf("Expected an unknown level to be rejected.")
	}
}
