// Package integration provides integration tests for litsift commands.
package integration

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

var (
	litsiftBinary     string
	litsiftBinaryOnce sync.Once
	litsiftBinaryErr  error
)

// getLitsiftBinary builds the litsift binary once and returns its path.
func getLitsiftBinary(t *testing.T) string {
	t.Helper()
	litsiftBinaryOnce.Do(func() {
		// Get module root directory
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			litsiftBinaryErr = os.ErrInvalid
			return
		}
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))

		// Build litsift to a temp location
		tmpDir, err := os.MkdirTemp("", "litsift-test-*")
		if err != nil {
			litsiftBinaryErr = err
			return
		}
		litsiftBinary = filepath.Join(tmpDir, "litsift")

		cmd := exec.Command("go", "build", "-o", litsiftBinary, "./cmd/litsift")
		cmd.Dir = moduleRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			litsiftBinaryErr = &buildError{output: string(output), err: err}
			return
		}
	})
	if litsiftBinaryErr != nil {
		t.Fatalf("failed to build litsift: %v", litsiftBinaryErr)
	}
	return litsiftBinary
}

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

// runLitsift executes the litsift command with given args in dir and returns
// output. XDG_CONFIG_HOME points inside the test dir so a developer's real
// global config never leaks into the run.
func runLitsift(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	bin := getLitsiftBinary(t)
	cmd := exec.Command(bin, args...)
	cmd.Dir = dir
	configHome := filepath.Join(dir, "xdg-config")
	cmd.Env = append(os.Environ(), "XDG_CONFIG_HOME="+configHome)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// setupWorkspace initializes a litsift workspace in a temp directory.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "xdg-config"), 0755); err != nil {
		t.Fatal(err)
	}
	output, err := runLitsift(t, dir, "init")
	if err != nil {
		t.Fatalf("init failed: %v\nOutput: %s", err, output)
	}
	return dir
}

// harvestCSV is a small export with one exact duplicate pair (W1/C1 share a
// DOI), one fuzzy duplicate (P1's title is a close variant of W1's one year
// later), one German record, and one unrelated record.
const harvestCSV = `source,id,doi,pmid,title,abstract,authors,journal,year,doc_type,lang,cited_by
openalex,W1,10.1234/alpha,,Screening Outcomes in Adults,"BACKGROUND: We screened adults for depression in primary care settings.",John Smith,JAMA,2020,journal-article,en,25
crossref,C1,10.1234/ALPHA,,Screening outcomes in adults,,Smith J,JAMA,2020,journal-article,en,10
pubmed,P1,,31112223,Screening Outcomes in Adult Populations,"We screened adult populations for depression in community clinics.","Smith J, Jones M",JAMA,2021,journal-article,en,5
openalex,W2,10.1234/beta,,Die Wirksamkeit der kognitiven Therapie bei Depressionen,"Die Wirksamkeit der kognitiven Therapie bei Depressionen wurde untersucht.",Weber K,Der Nervenarzt,2019,journal-article,de,3
openalex,W3,10.1234/gamma,,Machine Learning for Protein Structure Prediction,"We present a deep learning approach to protein structure prediction evaluated on benchmark datasets.",Ana Costa,Nature,2022,journal-article,en,120
`

// writeHarvest drops the fixture CSV into the workspace.
func writeHarvest(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "harvest.csv")
	if err := os.WriteFile(path, []byte(harvestCSV), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "xdg-config"), 0755); err != nil {
		t.Fatal(err)
	}

	output, err := runLitsift(t, dir, "init")
	if err != nil {
		t.Fatalf("init failed: %v\nOutput: %s", err, output)
	}

	var result struct {
		Status      string `json:"status"`
		Root        string `json:"root"`
		RecordsPath string `json:"records_path"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if result.Status != "initialized" {
		t.Errorf("expected status 'initialized', got %q", result.Status)
	}
	if _, err := os.Stat(filepath.Join(dir, ".litsift", "config.json")); err != nil {
		t.Errorf("config.json not created: %v", err)
	}
	if _, err := os.Stat(result.RecordsPath); err != nil {
		t.Errorf("records file not created: %v", err)
	}

	// Initializing an existing workspace fails
	if _, err := runLitsift(t, dir, "init"); err == nil {
		t.Error("expected error initializing an existing workspace")
	}
}

func TestImportDedupeFilter(t *testing.T) {
	dir := setupWorkspace(t)
	harvest := writeHarvest(t, dir)

	// Import: all five records are new
	output, err := runLitsift(t, dir, "import", "--format", "csv", harvest)
	if err != nil {
		t.Fatalf("import failed: %v\nOutput: %s", err, output)
	}

	var imported struct {
		New     int `json:"new"`
		Updated int `json:"updated"`
		Skipped int `json:"skipped"`
	}
	if err := json.Unmarshal([]byte(output), &imported); err != nil {
		t.Fatalf("failed to parse import output: %v\nOutput: %s", err, output)
	}
	if imported.New != 5 || imported.Updated != 0 || imported.Skipped != 0 {
		t.Errorf("import = %+v, want 5 new", imported)
	}

	// Dedupe: W1/C1 collapse on the shared DOI, P1 merges fuzzily into W1
	output, err = runLitsift(t, dir, "dedupe")
	if err != nil {
		t.Fatalf("dedupe failed: %v\nOutput: %s", err, output)
	}

	var deduped struct {
		DryRun  bool `json:"dry_run"`
		Summary struct {
			Input        int `json:"input_count"`
			ExactRemoved int `json:"exact_removed"`
			FuzzyRemoved int `json:"fuzzy_removed"`
			Final        int `json:"final_count"`
		} `json:"summary"`
		Groups []struct {
			Kind     string   `json:"kind"`
			Survivor string   `json:"survivor"`
			Removed  []string `json:"removed"`
		} `json:"groups"`
	}
	if err := json.Unmarshal([]byte(output), &deduped); err != nil {
		t.Fatalf("failed to parse dedupe output: %v\nOutput: %s", err, output)
	}
	if deduped.Summary.Input != 5 || deduped.Summary.ExactRemoved != 1 ||
		deduped.Summary.FuzzyRemoved != 1 || deduped.Summary.Final != 3 {
		t.Errorf("dedupe summary = %+v, want 5 in, 1 exact, 1 fuzzy, 3 out", deduped.Summary)
	}
	if len(deduped.Groups) != 2 {
		t.Fatalf("expected 2 duplicate groups, got %d", len(deduped.Groups))
	}
	for _, g := range deduped.Groups {
		if g.Survivor != "W1" {
			t.Errorf("group %s survivor = %q, want W1 (most complete)", g.Kind, g.Survivor)
		}
	}

	// Filter: the German record falls to the language rule
	output, err = runLitsift(t, dir, "filter", "--langs", "en")
	if err != nil {
		t.Fatalf("filter failed: %v\nOutput: %s", err, output)
	}

	var filtered struct {
		Report struct {
			Input    int            `json:"total_input"`
			Excluded map[string]int `json:"excluded_by_rule"`
			Final    int            `json:"final_count"`
		} `json:"report"`
	}
	if err := json.Unmarshal([]byte(output), &filtered); err != nil {
		t.Fatalf("failed to parse filter output: %v\nOutput: %s", err, output)
	}
	if filtered.Report.Input != 3 || filtered.Report.Final != 2 {
		t.Errorf("filter report = %+v, want 3 in, 2 out", filtered.Report)
	}
	if filtered.Report.Excluded["language"] != 1 {
		t.Errorf("excluded = %v, want 1 by language", filtered.Report.Excluded)
	}

	// Prisma reflects the recorded dedupe and filter stages
	output, err = runLitsift(t, dir, "prisma")
	if err != nil {
		t.Fatalf("prisma failed: %v\nOutput: %s", err, output)
	}

	var flow struct {
		DuplicatesRemoved int `json:"duplicates_removed"`
		AfterDedupe       int `json:"after_deduplication"`
		AfterFiltering    int `json:"after_filtering"`
		FinalIncluded     int `json:"final_included"`
	}
	if err := json.Unmarshal([]byte(output), &flow); err != nil {
		t.Fatalf("failed to parse prisma output: %v\nOutput: %s", err, output)
	}
	if flow.DuplicatesRemoved != 2 || flow.AfterDedupe != 3 ||
		flow.AfterFiltering != 2 || flow.FinalIncluded != 2 {
		t.Errorf("flow = %+v, want 2 removed, 3 after dedupe, 2 final", flow)
	}
}

func TestDedupeDryRunLeavesCorpus(t *testing.T) {
	dir := setupWorkspace(t)
	harvest := writeHarvest(t, dir)

	if output, err := runLitsift(t, dir, "import", "--format", "csv", harvest); err != nil {
		t.Fatalf("import failed: %v\nOutput: %s", err, output)
	}

	output, err := runLitsift(t, dir, "dedupe", "--dry-run")
	if err != nil {
		t.Fatalf("dedupe --dry-run failed: %v\nOutput: %s", err, output)
	}

	var result struct {
		DryRun  bool `json:"dry_run"`
		Summary struct {
			Final int `json:"final_count"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse dedupe output: %v\nOutput: %s", err, output)
	}
	if !result.DryRun {
		t.Error("expected dry_run true")
	}
	if result.Summary.Final != 3 {
		t.Errorf("summary final = %d, want 3", result.Summary.Final)
	}

	// Corpus untouched: still five records on disk
	data, err := os.ReadFile(filepath.Join(dir, ".litsift", "records.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Count(strings.TrimSpace(string(data)), "\n") + 1
	if lines != 5 {
		t.Errorf("records.jsonl has %d lines after dry run, want 5", lines)
	}
}

func TestProcessPipeline(t *testing.T) {
	dir := setupWorkspace(t)
	harvest := writeHarvest(t, dir)

	output, err := runLitsift(t, dir, "process", "--format", "csv", harvest)
	if err != nil {
		t.Fatalf("process failed: %v\nOutput: %s", err, output)
	}

	var result struct {
		RunID    string `json:"run_id"`
		Imported int    `json:"imported"`
		Merged   int    `json:"merged"`
		Dedupe   struct {
			ExactRemoved int `json:"exact_removed"`
			FuzzyRemoved int `json:"fuzzy_removed"`
			Final        int `json:"final_count"`
		} `json:"deduplicate"`
		Final int `json:"final_included"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse process output: %v\nOutput: %s", err, output)
	}
	if result.RunID == "" {
		t.Error("expected a run_id")
	}
	if result.Imported != 5 || result.Merged != 5 {
		t.Errorf("imported/merged = %d/%d, want 5/5", result.Imported, result.Merged)
	}
	if result.Dedupe.ExactRemoved != 1 || result.Dedupe.FuzzyRemoved != 1 || result.Dedupe.Final != 3 {
		t.Errorf("dedupe = %+v, want 1 exact, 1 fuzzy, 3 final", result.Dedupe)
	}
	// Default rules only require essential fields; every survivor has them
	if result.Final != 3 {
		t.Errorf("final = %d, want 3", result.Final)
	}

	// Prisma has the full flow including per-source identification
	output, err = runLitsift(t, dir, "prisma")
	if err != nil {
		t.Fatalf("prisma failed: %v\nOutput: %s", err, output)
	}

	var flow struct {
		Identified        map[string]int `json:"identified"`
		TotalIdentified   int            `json:"total_identified"`
		AfterMerge        int            `json:"after_merge"`
		DuplicatesRemoved int            `json:"duplicates_removed"`
		FinalIncluded     int            `json:"final_included"`
	}
	if err := json.Unmarshal([]byte(output), &flow); err != nil {
		t.Fatalf("failed to parse prisma output: %v\nOutput: %s", err, output)
	}
	if flow.Identified["openalex"] != 3 || flow.Identified["crossref"] != 1 || flow.Identified["pubmed"] != 1 {
		t.Errorf("identified = %v, want openalex 3, crossref 1, pubmed 1", flow.Identified)
	}
	if flow.TotalIdentified != 5 || flow.AfterMerge != 5 {
		t.Errorf("identified/merged = %d/%d, want 5/5", flow.TotalIdentified, flow.AfterMerge)
	}
	if flow.DuplicatesRemoved != 2 || flow.FinalIncluded != 3 {
		t.Errorf("removed/final = %d/%d, want 2/3", flow.DuplicatesRemoved, flow.FinalIncluded)
	}
}

func TestRebuildSearchStats(t *testing.T) {
	dir := setupWorkspace(t)
	harvest := writeHarvest(t, dir)

	if output, err := runLitsift(t, dir, "process", "--format", "csv", harvest); err != nil {
		t.Fatalf("process failed: %v\nOutput: %s", err, output)
	}

	// Rebuild the search cache from the deduplicated corpus
	output, err := runLitsift(t, dir, "rebuild")
	if err != nil {
		t.Fatalf("rebuild failed: %v\nOutput: %s", err, output)
	}

	var rebuilt struct {
		Records int `json:"records"`
	}
	if err := json.Unmarshal([]byte(output), &rebuilt); err != nil {
		t.Fatalf("failed to parse rebuild output: %v\nOutput: %s", err, output)
	}
	if rebuilt.Records != 3 {
		t.Errorf("rebuilt %d records, want 3", rebuilt.Records)
	}

	// Full-text query hits the unrelated record only
	output, err = runLitsift(t, dir, "search", "protein")
	if err != nil {
		t.Fatalf("search failed: %v\nOutput: %s", err, output)
	}

	var hits []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(output), &hits); err != nil {
		t.Fatalf("failed to parse search output: %v\nOutput: %s", err, output)
	}
	if len(hits) != 1 || hits[0].ID != "W3" {
		t.Errorf("search hits = %v, want just W3", hits)
	}

	// Author prefix search
	output, err = runLitsift(t, dir, "search", "-a", "Cos")
	if err != nil {
		t.Fatalf("author search failed: %v\nOutput: %s", err, output)
	}
	if err := json.Unmarshal([]byte(output), &hits); err != nil {
		t.Fatalf("failed to parse search output: %v\nOutput: %s", err, output)
	}
	if len(hits) != 1 || hits[0].ID != "W3" {
		t.Errorf("author search hits = %v, want just W3", hits)
	}

	// Stats over the cache
	output, err = runLitsift(t, dir, "stats")
	if err != nil {
		t.Fatalf("stats failed: %v\nOutput: %s", err, output)
	}

	var stats struct {
		Total    int            `json:"total"`
		BySource map[string]int `json:"by_source"`
	}
	if err := json.Unmarshal([]byte(output), &stats); err != nil {
		t.Fatalf("failed to parse stats output: %v\nOutput: %s", err, output)
	}
	if stats.Total != 3 {
		t.Errorf("stats total = %d, want 3", stats.Total)
	}
	if stats.BySource["openalex"] != 3 {
		t.Errorf("by_source = %v, want openalex 3", stats.BySource)
	}
}

func TestExportRIS(t *testing.T) {
	dir := setupWorkspace(t)
	harvest := writeHarvest(t, dir)

	if output, err := runLitsift(t, dir, "process", "--format", "csv", harvest); err != nil {
		t.Fatalf("process failed: %v\nOutput: %s", err, output)
	}

	output, err := runLitsift(t, dir, "export", "--format", "ris", "-")
	if err != nil {
		t.Fatalf("export failed: %v\nOutput: %s", err, output)
	}
	if strings.Count(output, "TY  - JOUR") != 3 {
		t.Errorf("expected 3 RIS entries, got:\n%s", output)
	}
	if !strings.Contains(output, "DO  - 10.1234/alpha") {
		t.Errorf("RIS output missing survivor DOI:\n%s", output)
	}
	if strings.Contains(output, "Adult Populations") {
		t.Errorf("removed duplicate leaked into export:\n%s", output)
	}

	// File export reports what it wrote
	outPath := filepath.Join(dir, "refs.bib")
	output, err = runLitsift(t, dir, "export", "--format", "bibtex", outPath)
	if err != nil {
		t.Fatalf("bibtex export failed: %v\nOutput: %s", err, output)
	}

	var result struct {
		Status  string `json:"status"`
		Records int    `json:"records"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse export output: %v\nOutput: %s", err, output)
	}
	if result.Status != "exported" || result.Records != 3 {
		t.Errorf("export result = %+v, want 3 exported", result)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "@article{W1,") {
		t.Errorf("bib file missing survivor entry:\n%s", data)
	}
}
