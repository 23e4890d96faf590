package pdf

import "testing"

func TestFindDOI(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "plain doi",
			text: "Available at doi 10.1234/abcd.5678 in print.",
			want: "10.1234/abcd.5678",
		},
		{
			name: "trailing period stripped",
			text: "See https://doi.org/10.1234/abcd.5678.",
			want: "10.1234/abcd.5678",
		},
		{
			name: "trailing paren stripped",
			text: "(doi: 10.1038/s41586-020-2649-2)",
			want: "10.1038/s41586-020-2649-2",
		},
		{
			name: "first valid match wins",
			text: "10.1234/first and later 10.5678/second",
			want: "10.1234/first",
		},
		{
			name: "no doi",
			text: "Nothing to see here, volume 12 issue 3.",
			want: "",
		},
		{
			name: "registrant too short",
			text: "10.12/not-a-doi",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findDOI(tt.text); got != tt.want {
				t.Errorf("findDOI() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsValidDOI(t *testing.T) {
	tests := []struct {
		doi  string
		want bool
	}{
		{"10.1234/abcd", true},
		{"10.1038/s41586-020-2649-2", true},
		{"10.1234/", false},
		{"11.1234/abcd", false},
		{"10.1234", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.doi, func(t *testing.T) {
			if got := isValidDOI(tt.doi); got != tt.want {
				t.Errorf("isValidDOI(%q) = %v, want %v", tt.doi, got, tt.want)
			}
		})
	}
}

func TestIsHeaderLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Journal of Important Results", true},
		{"Volume 12, Issue 3, March 2020", true},
		{"Copyright 2020 The Authors", true},
		{"A randomized trial of screening strategies in adults", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := isHeaderLine(tt.line); got != tt.want {
				t.Errorf("isHeaderLine(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}
