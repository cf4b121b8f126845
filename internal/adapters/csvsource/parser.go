package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/doctordirectory/backend/pkg/errors"
)

const utf8BOM = "\ufeff"

// ParseOptions configures tokenization. Every field is read as a string.
type ParseOptions struct {
	Delimiter rune
	Header    bool
}

// DefaultParseOptions matches the published exports: comma separated, header row present
func DefaultParseOptions() ParseOptions {
	return ParseOptions{Delimiter: ',', Header: true}
}

// ParseError describes a line that could not be tokenized
type ParseError struct {
	Line   int
	Reason string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// ParseResult holds the rows in source order and the lines that were skipped
type ParseResult struct {
	Header []string
	Rows   []entities.RawRow
	Errors []ParseError
}

// Parse tokenizes raw text. Malformed lines are collected in Errors and skipped;
// only an empty input or an unreadable header yields a PARSE_FAILURE error.
func Parse(raw string, opts ParseOptions) (*ParseResult, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(raw, utf8BOM)))
	reader.Comma = opts.Delimiter
	reader.FieldsPerRecord = -1

	result := &ParseResult{}
	lastLine := 0

	if opts.Header {
		header, err := reader.Read()
		if err == io.EOF {
			return nil, apperrors.NewParseError(1, errors.New("empty source"))
		}
		if err != nil {
			return nil, apperrors.NewParseError(errorLine(err, 1), fmt.Errorf("failed to read header: %w", err))
		}
		result.Header = normalizeHeader(header)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if !errors.As(err, &csvErr) {
				return nil, apperrors.NewParseError(lastLine+1, fmt.Errorf("failed to read source: %w", err))
			}
			result.Errors = append(result.Errors, ParseError{Line: csvErr.StartLine, Reason: csvErr.Err.Error()})
			continue
		}

		line, _ := reader.FieldPos(0)
		lastLine = line
		if isBlank(record) {
			continue
		}

		if result.Header == nil {
			result.Header = positionalHeader(len(record))
		}
		if len(record) != len(result.Header) {
			result.Errors = append(result.Errors, ParseError{
				Line:   line,
				Reason: fmt.Sprintf("expected %d fields, got %d", len(result.Header), len(record)),
			})
			continue
		}

		fields := make(map[string]string, len(record))
		for i, value := range record {
			fields[result.Header[i]] = value
		}
		result.Rows = append(result.Rows, entities.RawRow{Line: line, Fields: fields})
	}

	return result, nil
}

// errorLine returns the line a csv.ParseError starts on, or fallback
func errorLine(err error, fallback int) int {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) && csvErr.StartLine > 0 {
		return csvErr.StartLine
	}
	return fallback
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, name := range header {
		out[i] = strings.ToLower(strings.TrimSpace(name))
	}
	return out
}

// positionalHeader names columns by 1-based index when the source has no header row
func positionalHeader(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
