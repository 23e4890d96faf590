package importer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/litsift/litsift/internal/record"
	"github.com/litsift/litsift/internal/storage"
)

// FromJSONL parses records from JSONL input, validating every line against
// the embedded record schema. Violations carry line numbers; valid lines
// still parse when others fail, so the caller decides whether errors abort
// the import.
func FromJSONL(r io.Reader) ([]record.Record, []error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, storage.MaxJSONLLineCapacity)
	scanner.Buffer(buf, storage.MaxJSONLLineCapacity)

	var records []record.Record
	var errs []error

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		if err := validateRecordPayload(line); err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		var rec record.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("reading input: %w", err))
	}

	return records, errs
}
