package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("debug", "json", &buf)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	log.Debug().Str("run_id", "abc").Msg("fetching")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a JSON line, got %q: %v", buf.String(), err)
	}
	if entry["run_id"] != "abc" || entry["message"] != "fetching" || entry["level"] != "debug" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected a timestamp field")
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("warn", "json", &buf)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	log.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info line written at warn level: %q", buf.String())
	}
	log.Warn().Msg("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn line missing: %q", buf.String())
	}
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("", "console", &buf)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	log.Info().Msg("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("console output missing message: %q", buf.String())
	}
}

func TestNew_InvalidInput(t *testing.T) {
	if _, err := New("loud", "json", nil); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := New("info", "xml", nil); err == nil {
		t.Error("expected error for invalid format")
	}
}
