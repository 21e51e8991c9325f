package report

import (
	"bytes"
	"fmt"
	"time"
	"unicode"

	"github.com/jung-kurt/gofpdf"
)

// ReportCardPDF renders a student's summary as a one-page PDF. The core
// fonts cannot render Hangul, so non-ASCII names fall back to the student
// id.
func (s *Service) ReportCardPDF(studentID int64) ([]byte, error) {
	summary, err := s.StudentSummary(studentID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Student Report Card", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "English Lab Report Card")
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Student: %s", displayName(summary.Student.Name, studentID)))
	pdf.Ln(7)
	if summary.Student.Grade != "" && isASCII(summary.Student.Grade) {
		pdf.Cell(0, 7, fmt.Sprintf("Grade: %s", summary.Student.Grade))
		pdf.Ln(7)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Level: %s", summary.Student.Level))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Issued: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Assigned problems: %d", summary.Assigned))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Submitted: %d", summary.Submitted))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Graded: %d", summary.Graded))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Average score: %.1f", summary.AverageScore))
	pdf.Ln(12)

	if len(summary.ByType) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "By problem type")
		pdf.Ln(9)

		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(50, 7, "Type", "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, "Assigned", "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, "Graded", "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, "Avg score", "1", 1, "R", false, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		for _, ts := range summary.ByType {
			pdf.CellFormat(50, 7, ts.Type, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 7, fmt.Sprintf("%d", ts.Assigned), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 7, fmt.Sprintf("%d", ts.Graded), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 7, fmt.Sprintf("%.1f", ts.AverageScore), "1", 1, "R", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func displayName(name string, id int64) string {
	if isASCII(name) && name != "" {
		return name
	}
	return fmt.Sprintf("Student #%d", id)
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
