package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFilingRecordValues(t *testing.T) {
	r := FilingRecord{
		ProcessedAt: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		Pages:       []int{1, 2},
		Status:      StatusFiled,
		Gross:       decimal.RequireFromString("160.00"),
		Warnings:    []string{"a", "b"},
	}

	v := r.Values()
	if len(v) != len(RegisterColumns) {
		t.Fatalf("Values() has %d cells, want %d", len(v), len(RegisterColumns))
	}
	if v[0] != "2025-06-01 09:30:00" || v[3] != "1,2" || v[16] != 160.0 || v[18] != "a; b" {
		t.Errorf("Values() = %v", v)
	}
	if r.Failed() {
		t.Error("filed record reports failed")
	}
}
