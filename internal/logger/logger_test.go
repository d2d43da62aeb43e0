package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	if err := Setup(LogConfig{Level: "debug", Format: "json", Output: path}); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	t.Cleanup(func() { Setup(DefaultConfig()) })

	log := WithFile(WithRunID(WithComponent("pipeline"), "run-42"), "batch.pdf")
	log.Info().Msg("Document read")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	for _, want := range []string{`"component":"pipeline"`, `"run_id":"run-42"`, `"file":"batch.pdf"`, `"message":"Document read"`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %s missing %s", line, want)
		}
	}
}

func TestSetupRejectsLevel(t *testing.T) {
	if err := Setup(LogConfig{Level: "loud"}); err == nil {
		t.Error("Setup() accepted an unknown level")
	}
}
