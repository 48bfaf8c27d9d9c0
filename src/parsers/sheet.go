package parsers

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet holds the row-oriented content of the first worksheet of an uploaded
// workbook: one header row plus data rows, all as display strings.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ReadWorkbook opens an .xlsx/.xls upload and extracts its first worksheet.
// Adapter selection and parsing both operate on the returned Sheet so the
// workbook is only decoded once per import.
func ReadWorkbook(data []byte) (*Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook contains no worksheets")
	}
	name := sheets[0]

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet %q is empty", name)
	}

	return &Sheet{
		Name:   name,
		Header: rows[0],
		Rows:   rows[1:],
	}, nil
}

// rowNumber converts a data-row slice index to the 1-based spreadsheet row,
// accounting for the header row.
func rowNumber(dataIndex int) int {
	return dataIndex + 2
}
