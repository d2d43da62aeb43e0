package diag

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestCollectorRecordsWarnings(t *testing.T) {
	c := NewCollector(zerolog.Nop())
	c.Warn("CleanCurrency", "net_0", "abc", "could not parse currency value")
	c.Warn("NewMetadata", "", "", "no date")

	if got := c.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	if !c.HasWarnings() {
		t.Fatal("HasWarnings() = false, want true")
	}

	strs := c.Strings()
	want := `CleanCurrency: net_0: could not parse currency value (value: "abc")`
	if strs[0] != want {
		t.Errorf("Strings()[0] = %q, want %q", strs[0], want)
	}
	if strs[1] != "NewMetadata: no date" {
		t.Errorf("Strings()[1] = %q", strs[1])
	}

	ws := c.Warnings()
	ws[0].Message = "mutated"
	if c.Warnings()[0].Message == "mutated" {
		t.Error("Warnings() must return a copy")
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.Warn("op", "field", "value", "logged only")

	if c.Len() != 0 || c.HasWarnings() {
		t.Error("nil collector must report no warnings")
	}
	if c.Warnings() != nil || c.Strings() != nil {
		t.Error("nil collector must return nil slices")
	}
}
