package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// RawTable is a CSV table with every cell kept as text.
type RawTable struct {
	Path    string
	Columns []string
	Rows    [][]string
	index   map[string]int
}

// ColumnIndex returns the position of a column, or -1.
func (t *RawTable) ColumnIndex(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// HasColumn reports whether the header carries the column.
func (t *RawTable) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Require returns a SchemaError naming every absent column.
func (t *RawTable) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Path: t.Path, Missing: missing}
	}
	return nil
}

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	return len(t.Rows)
}

// ReadTable reads a headed CSV file. A missing path yields MissingFileError;
// an empty file yields a table without columns.
func ReadTable(path string) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingFileError{Path: path}
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Ragged rows are squared up below instead of failing the whole file.
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}

	table := &RawTable{Path: path}
	if len(records) == 0 {
		table.index = map[string]int{}
		return table, nil
	}

	header := records[0]
	if len(header) > 0 {
		// Spreadsheet exports often lead with a UTF-8 BOM.
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	table.Columns = header
	table.index = indexColumns(header)

	if len(records) == 1 {
		return table, nil
	}
	// gota renames repeated names in place; give it its own header.
	records[0] = append([]string(nil), header...)
	for i := 1; i < len(records); i++ {
		records[i] = fitRow(records[i], len(header))
	}

	// No NaN markers: every cell, NA and <nil> included, stays as written.
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("load records %s: %w", path, df.Err)
	}
	if df.Ncol() != len(header) || df.Nrow() != len(records)-1 {
		return nil, fmt.Errorf("load records %s: got %dx%d table, want %dx%d",
			path, df.Nrow(), df.Ncol(), len(records)-1, len(header))
	}

	table.Rows = df.Records()[1:]
	return table, nil
}

// fitRow pads a short row with empty cells and drops cells past width.
func fitRow(row []string, width int) []string {
	switch {
	case len(row) < width:
		padded := make([]string, width)
		copy(padded, row)
		return padded
	case len(row) > width:
		return row[:width]
	}
	return row
}

func indexColumns(columns []string) map[string]int {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}
	return index
}
