package eval

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DatasetRecord is one line of a JSONL dataset file. Input is required;
// expected, tags and metadata are optional.
type DatasetRecord struct {
	ID       string          `json:"id,omitempty"`
	Input    json.RawMessage `json:"input"`
	Expected json.RawMessage `json:"expected,omitempty"`
	Tags     []string        `json:"tags,omitempty"`
	Metadata map[string]any  `json:"metadata,omitempty"`
}

const datasetSchema = `{
	"type": "object",
	"required": ["input"],
	"properties": {
		"id": {"type": "string"},
		"input": {},
		"expected": {},
		"tags": {"type": "array", "items": {"type": "string"}},
		"metadata": {"type": "object"}
	},
	"additionalProperties": false
}`

var datasetRecordSchema = jsonschema.MustCompileString("dataset-record.schema.json", datasetSchema)

// LoadDataset reads a JSONL dataset file, validating every record. Blank
// lines are skipped; the line number of the first invalid record is reported.
func LoadDataset(path string) ([]DatasetRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var records []DatasetRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("dataset line %d: %w", line, err)
		}
		if err := datasetRecordSchema.Validate(value); err != nil {
			return nil, fmt.Errorf("dataset line %d: %w", line, err)
		}

		var record DatasetRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("dataset line %d: %w", line, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	return records, nil
}

// DecodeInputs unmarshals every record's input into the evaluation's input
// type, preserving dataset order.
func DecodeInputs[I any](records []DatasetRecord) ([]I, error) {
	inputs := make([]I, 0, len(records))
	for i, record := range records {
		var input I
		if err := json.Unmarshal(record.Input, &input); err != nil {
			id := record.ID
			if id == "" {
				id = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("decode input for record %s: %w", strings.TrimSpace(id), err)
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}
