package problem

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Batch import column contract, shared by CSV and XLSX:
// type,title,content,answer,keywords,difficulty. keywords is a
// comma-separated list inside one cell.
var importColumns = []string{"type", "title", "content", "answer", "keywords", "difficulty"}

type ImportRowError struct {
	Row   int    `json:"row"`
	Title string `json:"title,omitempty"`
	Error string `json:"error"`
}

// ImportReport counts row outcomes. One bad row never aborts the batch.
type ImportReport struct {
	TotalRows   int              `json:"total_rows"`
	SuccessRows int              `json:"success_rows"`
	FailedRows  int              `json:"failed_rows"`
	Errors      []ImportRowError `json:"errors"`
}

// ImportCSV reads a problem batch from CSV. A header missing a required
// column fails the whole import; everything after that is row-by-row.
func (s *Service) ImportCSV(r io.Reader) (*ImportReport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return s.importRows(rows)
}

// ImportXLSX reads a problem batch from the first sheet of an xlsx file.
func (s *Service) ImportXLSX(r io.Reader) (*ImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: xlsx has no sheets", ErrInvalidInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return s.importRows(rows)
}

func (s *Service) importRows(rows [][]string) (*ImportReport, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}

	header := map[string]int{}
	for i, h := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range importColumns {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("%w: missing required column %q", ErrInvalidInput, col)
		}
	}

	report := &ImportReport{Errors: make([]ImportRowError, 0)}
	for i := 1; i < len(rows); i++ {
		rowNo := i + 1
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		report.TotalRows++

		get := func(key string) string {
			idx, ok := header[key]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		in := CreateProblemInput{
			Type:        get("type"),
			Title:       get("title"),
			Content:     get("content"),
			ModelAnswer: get("answer"),
			Keywords:    splitKeywords(get("keywords")),
			Difficulty:  get("difficulty"),
		}
		if v := get("time_limit"); v != "" {
			fmt.Sscanf(v, "%d", &in.TimeLimit)
		}

		if _, err := s.Create(in); err != nil {
			report.FailedRows++
			report.Errors = append(report.Errors, ImportRowError{
				Row:   rowNo,
				Title: in.Title,
				Error: err.Error(),
			})
			continue
		}
		report.SuccessRows++
	}
	return report, nil
}

// ExportCSV writes the whole bank using the import column contract, so an
// export round-trips through ImportCSV.
func (s *Service) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(importColumns); err != nil {
		return err
	}
	for _, p := range s.problems.All() {
		rec := []string{p.Type, p.Title, p.Content, p.ModelAnswer, strings.Join(p.Keywords, ","), p.Difficulty}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportXLSX renders the bank as a spreadsheet with a wider column set than
// the CSV contract.
func (s *Service) ExportXLSX() ([]byte, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"id", "type", "title", "difficulty", "content", "answer", "keywords", "time_limit", "points", "created_at"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, p := range s.problems.All() {
		row := i + 2
		values := []any{
			p.ID,
			p.Type,
			p.Title,
			p.Difficulty,
			p.Content,
			p.ModelAnswer,
			strings.Join(p.Keywords, ","),
			p.TimeLimit,
			p.Points,
			p.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	_ = f.SetColWidth(sheet, "A", "J", 22)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func splitKeywords(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
