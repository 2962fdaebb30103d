package batch

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ReadIDs extracts one candidate ID per input line. CSV files are read
// column-wise: the column headed "cpf" (case-insensitive) when present,
// otherwise the first column; the header row is never treated as data.
// Any other file is read as plain text, one ID per line. Blank lines are
// skipped and IDs are returned as-is, unvalidated.
func ReadIDs(r io.Reader, name string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return readCSV(r)
	}

	return readLines(r)
}

func readLines(r io.Reader) ([]string, error) {
	var ids []string

	scanner := bufio.NewScanner(r)
	first := true

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if first {
			line = strings.TrimPrefix(line, "\uFEFF")
			first = false
		}

		if line == "" {
			continue
		}

		ids = append(ids, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	return ids, nil
}

func readCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	column := 0

	for i, field := range header {
		field = strings.TrimPrefix(field, "\uFEFF")

		if strings.EqualFold(strings.TrimSpace(field), "cpf") {
			column = i
			break
		}
	}

	var ids []string

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}

		if column >= len(record) {
			continue
		}

		id := strings.TrimSpace(record[column])
		if id == "" {
			continue
		}

		ids = append(ids, id)
	}

	return ids, nil
}
