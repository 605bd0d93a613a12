package statement

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Parse reads comma-delimited statement data. Rows the CSV layer itself
// rejects become row errors like value-level failures do.
func Parse(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records []record
	var csvErrors []RowError
	rowNum := 0

	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				csvErrors = append(csvErrors, RowError{
					Row:    rowNum,
					Reason: parseErr.Err.Error(),
				})
				continue
			}
			return nil, &ParseError{Message: "read failed", Cause: err}
		}
		records = append(records, record{num: rowNum, fields: fields})
	}

	result := parseRecordList(records)
	if len(csvErrors) > 0 {
		result.RowErrors = append(result.RowErrors, csvErrors...)
		sort.Slice(result.RowErrors, func(i, j int) bool {
			return result.RowErrors[i].Row < result.RowErrors[j].Row
		})
	}
	return result, nil
}

// ParseXLSX reads the first sheet of a workbook as statement rows
func ParseXLSX(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Message: "failed to open workbook", Cause: err}
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Message: "failed to read sheet " + sheet, Cause: err}
	}
	return ParseRecords(rows), nil
}

// ParseFile parses a statement file, dispatching on extension. CSV and
// plain-text files go through the delimited parser, .xlsx through excelize.
func ParseFile(path string) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{File: path, Message: "failed to open file", Cause: err}
	}
	defer file.Close()

	var result *Result
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		result, err = Parse(file)
	case ".xlsx":
		result, err = ParseXLSX(file)
	default:
		return nil, &ParseError{File: path, Message: "unsupported file type " + filepath.Ext(path)}
	}
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) && parseErr.File == "" {
			parseErr.File = path
		}
		return nil, err
	}
	return result, nil
}
