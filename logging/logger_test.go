package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yookoala/submarines/logging"
)

func TestInitLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peer.log")
	log, err := logging.InitLogger(path, "info")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	log.Debug("hidden")
	log.Infow("session established", "session", "abc123")
	logging.SyncLogger(log)

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error reading log: %s", err)
	}
	out := string(b)
	if !strings.Contains(out, "session established") || !strings.Contains(out, "abc123") {
		t.Errorf("expected the entry in the log, have %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("did not expect debug entries at info level, have %q", out)
	}
}

func TestInitLogger_BadLevel(t *testing.T) {
	if _, err := logging.InitLogger(filepath.Join(t.TempDir(), "x.log"), "loud"); err == nil {
		t.Error("expected an error")
	}
}
