// Package tabular streams rows out of delimited text and spreadsheet files.
// Every reader yields rows keyed by normalized header names.
package tabular

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"unicode"
)

// Format is a supported tabular file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// Common read errors
var (
	// ErrEmptyFile is returned when the input has no bytes
	ErrEmptyFile = errors.New("file is empty")

	// ErrInvalidEncoding is returned when delimited text is not UTF-8
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")

	// ErrMissingHeader is returned when the input has no header row
	ErrMissingHeader = errors.New("file has no header row")

	// ErrUnsupportedFormat is returned when the format cannot be determined
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// zipMagic starts every xlsx file
var zipMagic = []byte("PK\x03\x04")

// Row is one data row. Index counts data records from 1, including records
// whose cells are all blank. Line is the physical line or sheet row.
type Row struct {
	Index  int
	Line   int
	Values map[string]string
}

// Get returns the value of a column, or "" when the row has none
func (r *Row) Get(column string) string {
	return r.Values[column]
}

// IsEmpty returns true if the row has no non-blank values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Reader yields the rows of one file. Next returns io.EOF after the last row.
type Reader interface {
	Format() Format
	Headers() []string
	Next() (*Row, error)
	Close() error
}

// DetectFormat infers the format from a file name and a content type.
// The file name wins when both are usable.
func DetectFormat(filename, contentType string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, true
	case ".tsv", ".tab":
		return FormatTSV, true
	case ".xlsx", ".xlsm":
		return FormatXLSX, true
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	switch mediaType {
	case "text/csv", "application/csv", "text/plain":
		return FormatCSV, true
	case "text/tab-separated-values":
		return FormatTSV, true
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-excel.sheet.macroenabled.12":
		return FormatXLSX, true
	}
	return "", false
}

// Sniff guesses the format from the first bytes of a file: zip archives are
// spreadsheets, text with more tabs than commas in its first line is TSV.
func Sniff(head []byte) Format {
	if bytes.HasPrefix(head, zipMagic) {
		return FormatXLSX
	}
	line := head
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if bytes.Count(line, []byte{'\t'}) > bytes.Count(line, []byte{','}) {
		return FormatTSV
	}
	return FormatCSV
}

// ParseFormat parses a format name such as "csv" or ".xlsx"
func ParseFormat(s string) (Format, error) {
	switch Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")) {
	case FormatCSV, "txt":
		return FormatCSV, nil
	case FormatTSV:
		return FormatTSV, nil
	case FormatXLSX, "xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// NewReader opens a reader for format over r
func NewReader(r io.Reader, format Format, opts ...Option) (Reader, error) {
	switch format {
	case FormatCSV:
		return NewDelimitedReader(r, append([]Option{WithDelimiter(',')}, opts...)...)
	case FormatTSV:
		return NewDelimitedReader(r, append([]Option{WithDelimiter('\t')}, opts...)...)
	case FormatXLSX:
		return NewSpreadsheetReader(r, opts...)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Option configures a reader
type Option func(*options)

type options struct {
	delimiter rune
	sheet     string
}

// WithDelimiter sets the field delimiter of delimited text
func WithDelimiter(d rune) Option {
	return func(o *options) {
		o.delimiter = d
	}
}

// WithSheet selects a spreadsheet sheet by name instead of the first one
func WithSheet(name string) Option {
	return func(o *options) {
		o.sheet = name
	}
}

func buildOptions(opts []Option) options {
	o := options{delimiter: ','}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NormalizeHeader converts a header cell to lower snake case:
// "Product ID" and "product-id" both become "product_id".
func NormalizeHeader(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingSep = true
		}
	}
	return b.String()
}

// normalizeHeaders normalizes every header and reports whether any is usable
func normalizeHeaders(raw []string) ([]string, bool) {
	headers := make([]string, len(raw))
	usable := false
	for i, h := range raw {
		headers[i] = NormalizeHeader(h)
		if headers[i] != "" {
			usable = true
		}
	}
	return headers, usable
}

// rowValues maps cells to headers. Extra cells and blank headers are dropped;
// missing cells are "". The first of two equal headers wins.
func rowValues(headers, cells []string) map[string]string {
	values := make(map[string]string, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		if _, seen := values[h]; seen {
			continue
		}
		if i < len(cells) {
			values[h] = strings.TrimSpace(cells[i])
		} else {
			values[h] = ""
		}
	}
	return values
}
