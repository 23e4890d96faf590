package importer

import (
	"strings"
	"testing"
)

func TestFromJSONL_ValidLines(t *testing.T) {
	input := `{"source":"openalex","id":"W1","title":"First Paper","year":2024,"cited_by":3}
{"source":"crossref","id":"C1","doi":"10.1234/x","title":"Second Paper"}
`

	records, errs := FromJSONL(strings.NewReader(input))
	if len(errs) > 0 {
		t.Fatalf("FromJSONL() returned errors: %v", errs)
	}
	if len(records) != 2 {
		t.Fatalf("FromJSONL() returned %d records, want 2", len(records))
	}
	if records[0].ID != "W1" || records[0].Year != 2024 {
		t.Errorf("first record = %+v, want W1/2024", records[0])
	}
	if records[1].DOI != "10.1234/x" {
		t.Errorf("second record DOI = %q, want 10.1234/x", records[1].DOI)
	}
}

func TestFromJSONL_SkipsBlankLines(t *testing.T) {
	input := `{"id":"W1","title":"A"}

{"id":"W2","title":"B"}
`

	records, errs := FromJSONL(strings.NewReader(input))
	if len(errs) > 0 {
		t.Fatalf("FromJSONL() returned errors: %v", errs)
	}
	if len(records) != 2 {
		t.Errorf("FromJSONL() returned %d records, want 2", len(records))
	}
}

func TestFromJSONL_ViolationsCarryLineNumbers(t *testing.T) {
	input := `{"id":"W1","title":"Good Line"}
{"id":"W2","title":"Bad Year","year":"2024"}
{"id":"W3","title":"Another Good Line"}
`

	records, errs := FromJSONL(strings.NewReader(input))
	if len(errs) != 1 {
		t.Fatalf("FromJSONL() returned %d errors, want 1: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "line 2") {
		t.Errorf("error = %v, want line 2 in message", errs[0])
	}

	// Valid lines still parse
	if len(records) != 2 {
		t.Fatalf("FromJSONL() returned %d records, want 2", len(records))
	}
	if records[0].ID != "W1" || records[1].ID != "W3" {
		t.Errorf("surviving records = %q, %q, want W1, W3", records[0].ID, records[1].ID)
	}
}

func TestFromJSONL_RejectsMissingTitle(t *testing.T) {
	input := `{"id":"W1","doi":"10.1234/x"}
`

	records, errs := FromJSONL(strings.NewReader(input))
	if len(errs) != 1 {
		t.Fatalf("FromJSONL() returned %d errors, want 1", len(errs))
	}
	if len(records) != 0 {
		t.Errorf("FromJSONL() returned %d records, want 0", len(records))
	}
}

func TestFromJSONL_RejectsUnknownFields(t *testing.T) {
	input := `{"id":"W1","title":"Typo Field","yaer":2024}
`

	_, errs := FromJSONL(strings.NewReader(input))
	if len(errs) != 1 {
		t.Fatalf("FromJSONL() returned %d errors, want 1", len(errs))
	}
}

func TestFromJSONL_RejectsTrailingContent(t *testing.T) {
	input := `{"id":"W1","title":"A"} {"id":"W2","title":"B"}
`

	_, errs := FromJSONL(strings.NewReader(input))
	if len(errs) != 1 {
		t.Fatalf("FromJSONL() returned %d errors, want 1: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "trailing content") {
		t.Errorf("error = %v, want trailing content in message", errs[0])
	}
}

func TestFromJSONL_RejectsNonObjectLine(t *testing.T) {
	input := `["not","an","object"]
`

	_, errs := FromJSONL(strings.NewReader(input))
	if len(errs) != 1 {
		t.Fatalf("FromJSONL() returned %d errors, want 1: %v", len(errs), errs)
	}
}

func TestFromJSONL_EmptyInput(t *testing.T) {
	records, errs := FromJSONL(strings.NewReader(""))
	if len(errs) != 0 {
		t.Fatalf("FromJSONL() returned errors for empty input: %v", errs)
	}
	if len(records) != 0 {
		t.Errorf("FromJSONL() returned %d records, want 0", len(records))
	}
}
