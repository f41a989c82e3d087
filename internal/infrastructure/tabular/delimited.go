package tabular

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"
)

// utf8CheckSize is how much of the input is checked for valid UTF-8
const utf8CheckSize = 4096

// DelimitedReader streams rows of comma or tab separated text
type DelimitedReader struct {
	format  Format
	reader  *csv.Reader
	headers []string
	index   int
}

var _ Reader = (*DelimitedReader)(nil)

// NewDelimitedReader strips a UTF-8 BOM, checks the encoding and reads the
// header row.
func NewDelimitedReader(r io.Reader, opts ...Option) (*DelimitedReader, error) {
	o := buildOptions(opts)
	buf := bufio.NewReader(r)

	// UTF-8 BOM: 0xEF, 0xBB, 0xBF
	bom, err := buf.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(bom) == 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = buf.Discard(3)
	}

	head, err := buf.Peek(utf8CheckSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}
	if !validUTF8Prefix(head) {
		return nil, ErrInvalidEncoding
	}

	reader := csv.NewReader(buf)
	reader.Comma = o.delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	format := FormatCSV
	if o.delimiter == '\t' {
		format = FormatTSV
	}
	d := &DelimitedReader{format: format, reader: reader}
	if err := d.readHeader(); err != nil {
		return nil, err
	}
	return d, nil
}

// validUTF8Prefix is utf8.Valid tolerating a rune cut off at the end of the
// peeked window.
func validUTF8Prefix(b []byte) bool {
	if utf8.Valid(b) {
		return true
	}
	for cut := 1; cut < utf8.UTFMax && cut < len(b); cut++ {
		if utf8.Valid(b[:len(b)-cut]) {
			return !utf8.FullRune(b[len(b)-cut:])
		}
	}
	return false
}

func (d *DelimitedReader) readHeader() error {
	for {
		record, err := d.reader.Read()
		if err == io.EOF {
			return ErrMissingHeader
		}
		if err != nil {
			return fmt.Errorf("failed to read header: %w", err)
		}
		headers, ok := normalizeHeaders(record)
		if !ok {
			// leading blank lines are not a header
			continue
		}
		d.headers = headers
		return nil
	}
}

// Format returns FormatCSV or FormatTSV
func (d *DelimitedReader) Format() Format {
	return d.format
}

// Headers returns the normalized header names
func (d *DelimitedReader) Headers() []string {
	return d.headers
}

// Next reads the next data row
func (d *DelimitedReader) Next() (*Row, error) {
	record, err := d.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	d.index++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", d.index, err)
	}
	line, _ := d.reader.FieldPos(0)
	return &Row{
		Index:  d.index,
		Line:   line,
		Values: rowValues(d.headers, record),
	}, nil
}

// Close is a no-op; the caller owns the underlying reader
func (d *DelimitedReader) Close() error {
	return nil
}
