package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewWithWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("warn", &buf)

	logger.Info("should be filtered")
	logger.Warn("should appear", "key", "value")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Fatal("info record should not pass a warn-level logger")
	}
	if !strings.Contains(out, "should appear") {
		t.Fatalf("warn record missing from output: %s", out)
	}
}

func TestWithCarriesAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("info", &buf).With("screen", "caja")

	logger.Info("loaded")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["screen"] != "caja" {
		t.Fatalf("screen attribute = %v, want caja", rec["screen"])
	}
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("whatever", &buf)
	logger.Debug("hidden")
	logger.Info("visible")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatal("debug record should be filtered at default level")
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Fatal("info record should pass at default level")
	}
}
