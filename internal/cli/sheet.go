package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// sheetSummary describes one worksheet of an upload file.
type sheetSummary struct {
	Name   string
	Rows   int // data rows, header excluded
	Header []string
}

// isWorkbook reports whether path names a spreadsheet excelize can open.
func isWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return true
	}
	return false
}

// inspectWorkbook lists the sheets of the workbook at path. The first
// non-empty row of a sheet is taken as its header.
func inspectWorkbook(path string) ([]sheetSummary, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	var out []sheetSummary
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q of %s: %w", name, filepath.Base(path), err)
		}
		s := sheetSummary{Name: name}
		for _, row := range rows {
			if blank(row) {
				continue
			}
			if s.Header == nil {
				s.Header = trimRow(row)
				continue
			}
			s.Rows++
		}
		out = append(out, s)
	}
	return out, nil
}

// checkUploadFile fails when a workbook has no sheet with data rows.
// Files that are not workbooks are left for the backend to judge.
func checkUploadFile(path string) error {
	if !isWorkbook(path) {
		return nil
	}
	sheets, err := inspectWorkbook(path)
	if err != nil {
		return err
	}
	for _, s := range sheets {
		if s.Rows > 0 {
			return nil
		}
	}
	return fmt.Errorf("%s: no sheet has data rows below a header", filepath.Base(path))
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func trimRow(row []string) []string {
	out := make([]string, 0, len(row))
	for _, c := range row {
		out = append(out, strings.TrimSpace(c))
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}
