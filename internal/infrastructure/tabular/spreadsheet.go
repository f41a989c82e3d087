package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SpreadsheetReader streams rows of one sheet of an xlsx workbook. Cells are
// read raw, so dates arrive as serial numbers and numbers unformatted.
type SpreadsheetReader struct {
	file    *excelize.File
	rows    *excelize.Rows
	sheet   string
	headers []string
	index   int
	// sheetRow is the 1-based sheet row last returned by rows.Next
	sheetRow int
}

var _ Reader = (*SpreadsheetReader)(nil)

// NewSpreadsheetReader opens the workbook in r and reads the header row of
// the selected sheet (the first sheet by default).
func NewSpreadsheetReader(r io.Reader, opts ...Option) (*SpreadsheetReader, error) {
	o := buildOptions(opts)

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}

	sheet := o.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			_ = f.Close()
			return nil, ErrMissingHeader
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	s := &SpreadsheetReader{file: f, rows: rows, sheet: sheet}
	if err := s.readHeader(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *SpreadsheetReader) readHeader() error {
	for s.rows.Next() {
		s.sheetRow++
		cells, err := s.rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return fmt.Errorf("failed to read header: %w", err)
		}
		headers, ok := normalizeHeaders(cells)
		if !ok {
			continue
		}
		s.headers = headers
		return nil
	}
	if err := s.rows.Error(); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	return ErrMissingHeader
}

// Format returns FormatXLSX
func (s *SpreadsheetReader) Format() Format {
	return FormatXLSX
}

// Sheet returns the name of the sheet being read
func (s *SpreadsheetReader) Sheet() string {
	return s.sheet
}

// Headers returns the normalized header names
func (s *SpreadsheetReader) Headers() []string {
	return s.headers
}

// Next reads the next data row
func (s *SpreadsheetReader) Next() (*Row, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	s.index++
	s.sheetRow++
	cells, err := s.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("error reading sheet row %d: %w", s.sheetRow, err)
	}
	return &Row{
		Index:  s.index,
		Line:   s.sheetRow,
		Values: rowValues(s.headers, cells),
	}, nil
}

// Close releases the row iterator and the workbook
func (s *SpreadsheetReader) Close() error {
	var err error
	if s.rows != nil {
		err = s.rows.Close()
	}
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}
