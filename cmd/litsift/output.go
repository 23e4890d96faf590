package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/litsift/litsift/internal/record"
)

// Constants for output formatting.
// Names indicate the context where each constant is used.
const (
	DefaultSearchLimit = 50 // Default limit for search/list commands

	// Title truncation lengths by context
	ImportTitleMaxLen = 60 // Used in import command output
	SearchTitleMaxLen = 70 // Used in search result summaries
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError writes an error message to stderr and returns the exit code.
func outputError(code int, format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// silentExitError signals an exit code without printing a message.
type silentExitError struct {
	code int
}

func (e silentExitError) Error() string {
	return ""
}

func exitErrorSilent(code int) error {
	return silentExitError{code: code}
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatAuthorsShort abbreviates a semicolon-separated author list to
// maxCount names plus "et al.".
func formatAuthorsShort(authors string, maxCount int) string {
	if authors == "" {
		return ""
	}
	parts := strings.Split(authors, ";")
	var names []string
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			continue
		}
		if len(names) >= maxCount {
			names = append(names, "et al.")
			break
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

// printRecordSummary prints one search result in human-readable format.
func printRecordSummary(num int, r record.Record) {
	fmt.Printf("[%d] %s\n", num, r.ID)
	fmt.Printf("    %s\n", truncateString(r.Title, SearchTitleMaxLen))

	if r.Authors != "" {
		fmt.Printf("    %s\n", formatAuthorsShort(r.Authors, 3))
	}

	switch {
	case r.Journal != "" && r.Year != 0:
		fmt.Printf("    %s (%d)\n", r.Journal, r.Year)
	case r.Journal != "":
		fmt.Printf("    %s\n", r.Journal)
	case r.Year != 0:
		fmt.Printf("    (%d)\n", r.Year)
	}
	fmt.Println()
}

// errorsToStrings converts a slice of errors to strings.
func errorsToStrings(errs []error) []string {
	strs := make([]string, len(errs))
	for i, e := range errs {
		strs[i] = e.Error()
	}
	return strs
}
