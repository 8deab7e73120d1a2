package cardsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Record is one data row. Columns and Values are parallel and keep file order.
type Record struct {
	Index   int // position among loaded records, 0-based
	Row     int // 1-based source row (CSV: line of the first field); header is 1
	Columns []string
	Values  []string
}

// Get returns the value of the first column named name.
func (r Record) Get(name string) (string, bool) {
	for i, c := range r.Columns {
		if c == name {
			return r.value(i), true
		}
	}
	return "", false
}

func (r Record) value(i int) string {
	if i < len(r.Values) {
		return r.Values[i]
	}
	return ""
}

// Bindings returns the marker-stripped key to value map for eligible columns.
// Columns without the marker never take part in the merge.
func (r Record) Bindings(marker string) (map[string]string, error) {
	if err := validateMarker(marker); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for i, c := range r.Columns {
		key, ok := strings.CutPrefix(c, marker)
		if !ok || key == "" {
			continue
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrDataParse, c)
		}
		out[key] = r.value(i)
	}
	return out, nil
}

// LoadOptions configures LoadRecords.
type LoadOptions struct {
	Sheet  string // XLSX sheet name; empty = first sheet
	Marker string // column prefix checked for duplicates; empty = "@"
}

// LoadRecords reads a CSV or XLSX file (chosen by extension) into records.
func LoadRecords(path string, opts LoadOptions) ([]Record, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided data path
	if err != nil {
		return nil, fmt.Errorf("%w: data %s: %w", ErrReadFile, path, err)
	}
	defer func() { _ = f.Close() }()

	var records []Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		records, err = ReadXLSX(f, opts.Sheet)
	default:
		records, err = ReadCSV(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	marker := opts.Marker
	if marker == "" {
		marker = DefaultMarker
	}
	if len(records) > 0 {
		if _, err := records[0].Bindings(marker); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return records, nil
}

// ReadCSV parses CSV with a header row. A UTF-8 BOM is stripped, short rows
// are padded, extra cells are ignored and blank rows are skipped.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header row", ErrDataParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataParse, err)
	}

	var (
		rows  [][]string
		lines []int
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataParse, err)
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
	return buildRecords(header, rows, lines)
}

// ReadXLSX parses one worksheet of an XLSX workbook; the first row is the header.
func ReadXLSX(r io.Reader, sheet string) ([]Record, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataParse, err)
	}
	defer func() { _ = book.Close() }()

	if sheet == "" {
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrDataParse)
		}
		sheet = sheets[0]
	} else if idx, err := book.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: sheet %q not found", ErrDataParse, sheet)
	}

	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrDataParse, sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q: missing header row", ErrDataParse, sheet)
	}
	return buildRecords(rows[0], rows[1:], nil)
}

// buildRecords pairs rows with the header. lines holds the source line of
// each row; nil means rows are consecutive from row 2.
func buildRecords(header []string, rows [][]string, lines []int) ([]Record, error) {
	columns := make([]string, len(header))
	blank := true
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		columns[i] = strings.TrimSpace(h)
		if columns[i] != "" {
			blank = false
		}
	}
	if blank {
		return nil, fmt.Errorf("%w: empty header row", ErrDataParse)
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}
		values := make([]string, len(columns))
		copy(values, row)
		rowNum := i + 2
		if i < len(lines) {
			rowNum = lines[i]
		}
		records = append(records, Record{
			Index:   len(records),
			Row:     rowNum,
			Columns: columns,
			Values:  values,
		})
	}
	return records, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
