package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("Level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New("warn", "text", &buf)

		logger.Info("hidden")
		logger.Warn("visible")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Errorf("info record passed a warn-level logger: %q", out)
		}
		if !strings.Contains(out, "visible") {
			t.Errorf("warn record missing: %q", out)
		}
	})

	t.Run("JSON format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New("info", "json", &buf)

		logger.Info("hello", "k", "v")

		var record map[string]any
		if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
			t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
		}
		if record["msg"] != "hello" || record["k"] != "v" {
			t.Errorf("record = %v", record)
		}
	})

	t.Run("Unknown strings fall back", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New("loud", "xml", &buf)

		logger.Debug("hidden")
		logger.Info("visible")

		out := buf.String()
		if strings.Contains(out, "hidden") || !strings.Contains(out, "visible") {
			t.Errorf("fallback not info-level text: %q", out)
		}
	})
}
