package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"TEXT_SOURCE", "ROTATE_DEGREES", "MAX_DUPLICATES", "ADJUST_OVERDUE", "TOTALS_TOLERANCE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TextSource != "local" || cfg.MaxDuplicates != 999 || !cfg.AdjustOverdue {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.TotalsTolerance.String() != "0.01" {
		t.Errorf("tolerance = %s", cfg.TotalsTolerance)
	}
	if got := cfg.SourceConfig().Kind; got != "local" {
		t.Errorf("SourceConfig().Kind = %q", got)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown source", map[string]string{"TEXT_SOURCE": "tesseract"}, "TEXT_SOURCE"},
		{"documentai without processor", map[string]string{"TEXT_SOURCE": "documentai", "GOOGLE_CLOUD_PROJECT": "p", "DOCUMENT_AI_PROCESSOR_ID": ""}, "DOCUMENT_AI_PROCESSOR_ID"},
		{"rotation", map[string]string{"ROTATE_DEGREES": "45"}, "ROTATE_DEGREES"},
		{"not a number", map[string]string{"MAX_DUPLICATES": "lots"}, "MAX_DUPLICATES"},
		{"zero duplicates", map[string]string{"MAX_DUPLICATES": "0"}, "MAX_DUPLICATES"},
		{"bool", map[string]string{"ADJUST_OVERDUE": "maybe"}, "ADJUST_OVERDUE"},
		{"tolerance", map[string]string{"TOTALS_TOLERANCE": "-1"}, "TOTALS_TOLERANCE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"TEXT_SOURCE", "ROTATE_DEGREES", "MAX_DUPLICATES", "ADJUST_OVERDUE", "TOTALS_TOLERANCE"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}
