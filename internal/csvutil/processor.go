package csvutil

import (
	"encoding/csv"
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ProcessorOptions configures CSV processing behavior.
type ProcessorOptions struct {
	// SkipInvalid controls whether to skip invalid records or return an error.
	SkipInvalid bool
}

// Record is a single CSV row addressed by header name.
type Record struct {
	Line   int
	header map[string]int
	fields []string
}

// Get returns the first non-empty field among the given column names.
// Column names are matched case-insensitively.
func (r Record) Get(names ...string) string {
	for _, name := range names {
		i, ok := r.header[normalizeHeader(name)]
		if !ok || i >= len(r.fields) {
			continue
		}
		if v := strings.TrimSpace(r.fields[i]); v != "" {
			return v
		}
	}
	return ""
}

// Has reports whether any of the given columns exists in the header.
func (r Record) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := r.header[normalizeHeader(name)]; ok {
			return true
		}
	}
	return false
}

// ProcessCSVFile opens filename and parses it with ProcessCSV.
func ProcessCSVFile[T any](filename string, parser func(Record) (T, error), opts ProcessorOptions) ([]T, error) {
	csvFile, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = csvFile.Close() }()

	return ProcessCSV(csvFile, parser, opts)
}

// ProcessCSV reads a CSV stream with a header row and parses each record into type T.
func ProcessCSV[T any](r io.Reader, parser func(Record) (T, error), opts ProcessorOptions) ([]T, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headerRow, err := reader.Read()
	if stdErrors.Is(err, io.EOF) {
		return nil, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	header := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		key := normalizeHeader(name)
		if _, dup := header[key]; !dup {
			header[key] = i
		}
	}

	var items []T
	line := 1
	for {
		fields, err := reader.Read()
		if stdErrors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			if opts.SkipInvalid {
				slog.Warn("Error reading record", "line", line, "error", err)
				continue
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		item, err := parser(Record{Line: line, header: header, fields: fields})
		if err != nil {
			if opts.SkipInvalid {
				slog.Warn("Skipping invalid record", "line", line, "error", err)
				continue
			}
			return nil, fmt.Errorf("invalid record on line %d: %w", line, err)
		}

		items = append(items, item)
	}

	return items, nil
}

func normalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ToLower(strings.TrimSpace(name))
}
