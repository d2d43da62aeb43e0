package sheets

import "testing"

func TestExtractSpreadsheetID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0", "1AbC-d_9", false},
		{"https://docs.google.com/spreadsheets/d/xyz", "xyz", false},
		{"https://example.com/sheet", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := extractSpreadsheetID(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("extractSpreadsheetID(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("extractSpreadsheetID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestColumnLetter(t *testing.T) {
	tests := map[int]string{1: "A", 20: "T", 26: "Z", 27: "AA", 52: "AZ", 53: "BA"}
	for n, want := range tests {
		if got := columnLetter(n); got != want {
			t.Errorf("columnLetter(%d) = %q, want %q", n, got, want)
		}
	}
}
