package extract

import (
	"reflect"
	"testing"
)

func batch() []Page {
	return []Page{
		{Number: 1, Text: "INVOICE\nInvoice No: 1001\npage 1 of 2"},
		{Number: 2, Text: "continued\npage 2 of 2"},
		{Number: 3, Text: "DELIVERY NOTE\nNo: 88"},
		{Number: 4, Text: "INVOICE\nInvoice No: 1002"},
	}
}

func TestTargetPages(t *testing.T) {
	got, ok := TargetPages(batch(), `(?m)^invoice$`)
	if !ok {
		t.Fatal("TargetPages() reported no match")
	}
	if nums := (PageGroup{Pages: got}).Numbers(); !reflect.DeepEqual(nums, []int{1, 4}) {
		t.Errorf("TargetPages() pages = %v, want [1 4]", nums)
	}
}

func TestTargetPagesNoMatch(t *testing.T) {
	got, ok := TargetPages(batch(), `credit memo`)
	if ok || got != nil {
		t.Errorf("TargetPages() = (%v, %v), want (nil, false)", got, ok)
	}
}

func TestTargetPagesPerPage(t *testing.T) {
	// The pattern spans a page break and must not match across pages.
	pages := []Page{{Number: 1, Text: "total"}, {Number: 2, Text: "due"}}
	if _, ok := TargetPages(pages, `total\s+due`); ok {
		t.Error("TargetPages() matched across pages")
	}
}

func TestGroupPages(t *testing.T) {
	groups := GroupPages(batch(), `invoice no:\s*(\d+)`)
	if len(groups) != 2 {
		t.Fatalf("GroupPages() returned %d groups, want 2", len(groups))
	}
	if groups[0].Key != "1001" || !reflect.DeepEqual(groups[0].Numbers(), []int{1, 2, 3}) {
		t.Errorf("group 0 = %q %v", groups[0].Key, groups[0].Numbers())
	}
	if groups[1].Key != "1002" || !reflect.DeepEqual(groups[1].Numbers(), []int{4}) {
		t.Errorf("group 1 = %q %v", groups[1].Key, groups[1].Numbers())
	}
}

func TestGroupPagesLeadingUnkeyed(t *testing.T) {
	pages := []Page{
		{Number: 1, Text: "cover letter"},
		{Number: 2, Text: "Invoice No: 5"},
		{Number: 3, Text: "Invoice No: 5"},
	}
	groups := GroupPages(pages, `invoice no:\s*(\d+)`)
	if len(groups) != 2 {
		t.Fatalf("GroupPages() returned %d groups, want 2", len(groups))
	}
	if groups[0].Key != "" || len(groups[0].Pages) != 1 {
		t.Errorf("leading group = %+v", groups[0])
	}
	if groups[1].Key != "5" || !reflect.DeepEqual(groups[1].Numbers(), []int{2, 3}) {
		t.Errorf("keyed group = %q %v", groups[1].Key, groups[1].Numbers())
	}
}

func TestGroupPagesWithoutKey(t *testing.T) {
	groups := GroupPages(batch(), "")
	if len(groups) != 1 || len(groups[0].Pages) != 4 {
		t.Errorf("GroupPages(\"\") = %+v, want one group of 4", groups)
	}
	if GroupPages(nil, "x(.)") != nil {
		t.Error("GroupPages(nil) must be nil")
	}
}

func TestJoinPages(t *testing.T) {
	got := JoinPages([]Page{{Text: "a"}, {Text: "b"}})
	if got != "a\nb" {
		t.Errorf("JoinPages() = %q", got)
	}
}
