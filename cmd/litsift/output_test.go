package main

import (
	"errors"
	"testing"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a longer string", 10, "this is..."},
		{"", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			got := truncateString(tt.s, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
			if len(got) > tt.maxLen {
				t.Errorf("truncated length %d exceeds max %d", len(got), tt.maxLen)
			}
		})
	}
}

func TestFormatAuthorsShort(t *testing.T) {
	tests := []struct {
		name    string
		authors string
		max     int
		want    string
	}{
		{
			name:    "empty",
			authors: "",
			max:     3,
			want:    "",
		},
		{
			name:    "single author",
			authors: "Smith, J.",
			max:     3,
			want:    "Smith, J.",
		},
		{
			name:    "under the cap",
			authors: "Smith, J.; Lee, K.",
			max:     3,
			want:    "Smith, J., Lee, K.",
		},
		{
			name:    "over the cap gets et al",
			authors: "Smith, J.; Lee, K.; Chen, W.; Garcia, M.",
			max:     3,
			want:    "Smith, J., Lee, K., Chen, W., et al.",
		},
		{
			name:    "blank entries dropped",
			authors: "Smith, J.; ; Lee, K.",
			max:     3,
			want:    "Smith, J., Lee, K.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatAuthorsShort(tt.authors, tt.max)
			if got != tt.want {
				t.Errorf("formatAuthorsShort(%q, %d) = %q, want %q", tt.authors, tt.max, got, tt.want)
			}
		})
	}
}

func TestErrorsToStrings(t *testing.T) {
	errs := []error{errors.New("first"), errors.New("second")}
	got := errorsToStrings(errs)
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("errorsToStrings() = %v, want [first second]", got)
	}

	if got := errorsToStrings(nil); len(got) != 0 {
		t.Errorf("errorsToStrings(nil) = %v, want empty", got)
	}
}
