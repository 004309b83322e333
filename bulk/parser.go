package bulk

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RowSet is a parsed upload: header in file order plus one Row per record.
type RowSet struct {
	Columns []string
	Rows    []Row
}

// ParseRows reads every record of data. Quoting follows RFC 4180 with lazy
// quotes; short records get "" for missing cells and extra cells are
// dropped, so no record is ever discarded.
func ParseRows(data []byte) (*RowSet, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &EmptyFileError{}
	}
	if err != nil {
		return nil, &MalformedCSVError{Err: fmt.Errorf("header: %w", err)}
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	set := &RowSet{Columns: columns}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedCSVError{Err: err}
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			if col == "" {
				continue
			}
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		set.Rows = append(set.Rows, row)
	}
	if len(set.Rows) == 0 {
		return nil, &EmptyFileError{}
	}
	return set, nil
}

// CheckRequired verifies that every column format requires is a key of the
// first row. Values are not inspected.
func CheckRequired(rows []Row, format Format) error {
	if len(rows) == 0 {
		return &EmptyFileError{}
	}
	first := rows[0]
	var missing []string
	for _, f := range format.RequiredFields() {
		if _, ok := first[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Format: format, MissingFields: missing}
	}
	return nil
}

// CheckExtension rejects anything but a .csv file name.
func CheckExtension(filename string) error {
	if strings.ToLower(filepath.Ext(filename)) != ".csv" {
		return &BadExtensionError{Filename: filename}
	}
	return nil
}

// Load runs the whole upload-time validation: parse then schema check.
func Load(data []byte, format Format) (*RowSet, error) {
	set, err := ParseRows(data)
	if err != nil {
		return nil, err
	}
	if err := CheckRequired(set.Rows, format); err != nil {
		return nil, err
	}
	return set, nil
}
