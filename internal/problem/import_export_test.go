package problem

import (
	"bytes"
	"strings"
	"testing"
)

func TestImportCSVPartialFailure(t *testing.T) {
	svc := newTestService(t)

	csvData := strings.Join([]string{
		"type,title,content,answer,keywords,difficulty",
		`grammar,Verb Forms,"Choose the verb.","He plays soccer.","play,plays",beginner`,
		`vocabulary,Opposites,"Opposite of happy?",,"sad,unhappy",beginner`,
		`reading,Short Passage,"Read and answer.","The dog is black.","dog,black",intermediate`,
	}, "\n")

	report, err := svc.ImportCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if report.TotalRows != 3 {
		t.Fatalf("expected 3 rows, got %d", report.TotalRows)
	}
	if report.SuccessRows != 2 || report.FailedRows != 1 {
		t.Fatalf("expected 2 ok / 1 failed, got %d / %d", report.SuccessRows, report.FailedRows)
	}
	if len(report.Errors) != 1 || report.Errors[0].Row != 3 {
		t.Fatalf("expected one error on row 3, got %+v", report.Errors)
	}
	if got := len(svc.List("", "")); got != 2 {
		t.Fatalf("expected bank to gain exactly 2 problems, got %d", got)
	}
}

func TestImportCSVMissingColumnAbortsBatch(t *testing.T) {
	svc := newTestService(t)

	csvData := strings.Join([]string{
		"type,title,content,answer,keywords",
		`grammar,Verb Forms,"Choose the verb.","He plays.","play"`,
	}, "\n")

	if _, err := svc.ImportCSV(strings.NewReader(csvData)); err == nil {
		t.Fatalf("expected error for missing difficulty column")
	}
	if got := len(svc.List("", "")); got != 0 {
		t.Fatalf("expected no problems imported, got %d", got)
	}
}

func TestExportCSVRoundTrips(t *testing.T) {
	src := newTestService(t)
	in := validInput()
	in.Keywords = []string{"play", "plays"}
	if _, err := src.Create(in); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := src.ExportCSV(&buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	dst := newTestService(t)
	report, err := dst.ImportCSV(&buf)
	if err != nil {
		t.Fatalf("re-import failed: %v", err)
	}
	if report.SuccessRows != 1 || report.FailedRows != 0 {
		t.Fatalf("expected clean round trip, got %+v", report)
	}
	got, ok := dst.Get(1)
	if !ok {
		t.Fatalf("expected re-imported problem")
	}
	if got.Title != in.Title || len(got.Keywords) != 2 {
		t.Fatalf("round trip mangled the record: %+v", got)
	}
}

func TestImportXLSXRoundTrips(t *testing.T) {
	src := newTestService(t)
	if _, err := src.Create(validInput()); err != nil {
		t.Fatal(err)
	}
	data, err := src.ExportXLSX()
	if err != nil {
		t.Fatalf("xlsx export failed: %v", err)
	}

	dst := newTestService(t)
	report, err := dst.ImportXLSX(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("xlsx import failed: %v", err)
	}
	if report.SuccessRows != 1 {
		t.Fatalf("expected 1 imported row, got %+v", report)
	}
}
