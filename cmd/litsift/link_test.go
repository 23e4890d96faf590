package main

import (
	"path/filepath"
	"testing"

	"github.com/litsift/litsift/internal/record"
)

func TestMatchByTitle(t *testing.T) {
	records := []record.Record{
		{ID: "rec1", TitleNorm: "machine learning for autism screening"},
		{ID: "rec2", TitleNorm: "deep learning in radiology"},
		{ID: "rec3", TitleNorm: ""},
	}

	tests := []struct {
		name      string
		titleNorm string
		wantIdx   int
	}{
		{
			name:      "exact normalized match",
			titleNorm: "machine learning for autism screening",
			wantIdx:   0,
		},
		{
			name:      "near match above threshold",
			titleNorm: "machine learning for autism screenings",
			wantIdx:   0,
		},
		{
			name:      "unrelated title matches nothing",
			titleNorm: "randomized trial of cognitive behavioral therapy",
			wantIdx:   -1,
		},
		{
			name:      "empty candidate matches nothing",
			titleNorm: "",
			wantIdx:   -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, method := matchByTitle(tt.titleNorm, records, linkTitleThreshold)
			if idx != tt.wantIdx {
				t.Errorf("matchByTitle(%q) idx = %d, want %d", tt.titleNorm, idx, tt.wantIdx)
			}
			wantMethod := ""
			if tt.wantIdx >= 0 {
				wantMethod = "title"
			}
			if method != wantMethod {
				t.Errorf("method = %q, want %q", method, wantMethod)
			}
		})
	}
}

func TestMatchByTitleSkipsEmptyTitleNorm(t *testing.T) {
	// A record whose normalized title was never filled must not match,
	// even against an empty-ish candidate
	records := []record.Record{
		{ID: "rec1", Title: "Machine Learning for Autism Screening", TitleNorm: ""},
	}

	idx, _ := matchByTitle("machine learning for autism screening", records, linkTitleThreshold)
	if idx != -1 {
		t.Errorf("idx = %d, want -1 for records without TitleNorm", idx)
	}
}

func TestMatchByTitlePicksBestScore(t *testing.T) {
	records := []record.Record{
		{ID: "close", TitleNorm: "effects of exercise on depression outcome"},
		{ID: "exact", TitleNorm: "effects of exercise on depression outcomes"},
	}

	idx, _ := matchByTitle("effects of exercise on depression outcomes", records, linkTitleThreshold)
	if idx != 1 {
		t.Errorf("idx = %d, want 1 (highest similarity wins)", idx)
	}
}

func TestWorkspaceRelative(t *testing.T) {
	workspaceRoot := t.TempDir()

	inside := filepath.Join(workspaceRoot, "pdfs", "paper.pdf")
	if got := workspaceRelative(workspaceRoot, inside); got != filepath.Join("pdfs", "paper.pdf") {
		t.Errorf("inside path = %q, want pdfs/paper.pdf", got)
	}

	outside := filepath.Join(t.TempDir(), "paper.pdf")
	if got := workspaceRelative(workspaceRoot, outside); got != outside {
		t.Errorf("outside path = %q, want absolute %q", got, outside)
	}
}
