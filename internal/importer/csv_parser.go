// Package importer reads historical sales exports into rows the sale service
// can replay.
package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("CSV file is not valid UTF-8")
	ErrMissingHeader   = errors.New("CSV file missing header row")
)

// Parser reads a header row followed by data rows. Field values are trimmed.
type Parser struct {
	reader     *csv.Reader
	headerMap  map[string]int
	headers    []string
	currentRow int
}

// NewParser strips a UTF-8 BOM and checks the encoding of the first block.
func NewParser(r io.Reader) (*Parser, error) {
	buf := bufio.NewReader(r)

	bom, err := buf.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(bom) == 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = buf.Discard(3)
	}

	head, err := buf.Peek(4096)
	if err != nil && err != io.EOF && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}
	if !utf8.Valid(head) {
		return nil, ErrInvalidEncoding
	}

	reader := csv.NewReader(buf)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	return &Parser{reader: reader, headerMap: make(map[string]int)}, nil
}

func (p *Parser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		h = strings.TrimSpace(h)
		p.headers[i] = h
		if _, dup := p.headerMap[h]; !dup {
			p.headerMap[h] = i
		}
	}
	p.currentRow = 1
	return nil
}

func (p *Parser) Headers() []string {
	return p.headers
}

// Row is one data line. LineNumber counts the header as line 1.
type Row struct {
	LineNumber int
	Data       map[string]string
}

// First returns the first non-empty value among the given column names.
func (r *Row) First(columns ...string) string {
	for _, c := range columns {
		if v := r.Data[c]; v != "" {
			return v
		}
	}
	return ""
}

func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

func (p *Parser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.currentRow++
	if err != nil {
		return nil, err
	}

	row := &Row{LineNumber: p.currentRow, Data: make(map[string]string, len(p.headers))}
	for i, header := range p.headers {
		if i < len(record) {
			row.Data[header] = strings.TrimSpace(record[i])
		} else {
			row.Data[header] = ""
		}
	}
	return row, nil
}

// ReadAllRows returns every non-empty row. Malformed lines are reported and skipped.
func (p *Parser) ReadAllRows() ([]*Row, []RowError) {
	var rows []*Row
	var errs []RowError
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			return rows, errs
		}
		if err != nil {
			errs = append(errs, RowError{Line: p.currentRow, Err: err})
			continue
		}
		if !row.IsEmpty() {
			rows = append(rows, row)
		}
	}
}
