package report

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"englab/internal/model"
	"englab/internal/store"
)

type fixture struct {
	svc         *Service
	students    *store.Collection[model.Student]
	problems    *store.Collection[model.Problem]
	assignments *store.Collection[model.Assignment]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	students, err := store.Open[model.Student](filepath.Join(dir, "students.json"))
	if err != nil {
		t.Fatal(err)
	}
	problems, err := store.Open[model.Problem](filepath.Join(dir, "problems.json"))
	if err != nil {
		t.Fatal(err)
	}
	assignments, err := store.Open[model.Assignment](filepath.Join(dir, "assignments.json"))
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{
		svc:         NewService(students, problems, assignments),
		students:    students,
		problems:    problems,
		assignments: assignments,
	}
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	err := f.students.Update(func(items []model.Student) ([]model.Student, error) {
		return append(items,
			model.Student{ID: 1, Name: "Minji", Grade: "중1", Level: model.LevelBeginner, Status: model.StudentActive, CreatedAt: time.Now()},
			model.Student{ID: 2, Name: "Junho", Grade: "중2", Level: model.LevelIntermediate, Status: model.StudentActive, CreatedAt: time.Now()},
		), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	err = f.problems.Update(func(items []model.Problem) ([]model.Problem, error) {
		return append(items,
			model.Problem{ID: 10, Title: "A", Type: model.TypeGrammar, Difficulty: model.LevelBeginner, Content: "c", ModelAnswer: "a", TimeLimit: 15, Points: 100, CreatedAt: time.Now()},
			model.Problem{ID: 11, Title: "B", Type: model.TypeVocabulary, Difficulty: model.LevelBeginner, Content: "c", ModelAnswer: "a", TimeLimit: 15, Points: 100, CreatedAt: time.Now()},
		), nil
	})
	if err != nil {
		t.Fatal(err)
	}

	score80, score60 := 80, 60
	now := time.Now()
	err = f.assignments.Update(func(items []model.Assignment) ([]model.Assignment, error) {
		return append(items,
			model.Assignment{ID: 1, StudentID: 1, ProblemID: 10, AssignedAt: now, Completed: true, SubmittedAt: &now, Score: &score80},
			model.Assignment{ID: 2, StudentID: 1, ProblemID: 11, AssignedAt: now, Completed: true, SubmittedAt: &now, Score: &score60},
			model.Assignment{ID: 3, StudentID: 1, ProblemID: 10, AssignedAt: now},
			model.Assignment{ID: 4, StudentID: 2, ProblemID: 10, AssignedAt: now},
		), nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestStudentSummary(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	summary, err := f.svc.StudentSummary(1)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.Assigned != 3 || summary.Submitted != 2 || summary.Graded != 2 {
		t.Fatalf("counts wrong: %+v", summary)
	}
	if math.Abs(summary.AverageScore-70) > 0.01 {
		t.Fatalf("average = %f, want 70", summary.AverageScore)
	}
	if len(summary.ByType) != 2 {
		t.Fatalf("expected 2 type buckets, got %+v", summary.ByType)
	}
	// Sorted by type name: grammar before vocabulary.
	if summary.ByType[0].Type != model.TypeGrammar || summary.ByType[0].Assigned != 2 || summary.ByType[0].Graded != 1 {
		t.Fatalf("grammar bucket wrong: %+v", summary.ByType[0])
	}
	if math.Abs(summary.ByType[1].AverageScore-60) > 0.01 {
		t.Fatalf("vocabulary average = %f, want 60", summary.ByType[1].AverageScore)
	}
}

func TestStudentSummaryToleratesDanglingProblem(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	err := f.assignments.Update(func(items []model.Assignment) ([]model.Assignment, error) {
		return append(items, model.Assignment{ID: 5, StudentID: 1, ProblemID: 999, AssignedAt: time.Now()}), nil
	})
	if err != nil {
		t.Fatal(err)
	}

	summary, err := f.svc.StudentSummary(1)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Assigned != 4 {
		t.Fatalf("dangling reference should still count as assigned, got %d", summary.Assigned)
	}
	if len(summary.ByType) != 2 {
		t.Fatalf("dangling reference should not create a type bucket: %+v", summary.ByType)
	}
}

func TestStudentSummaryMissingStudent(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.StudentSummary(7); !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	o := f.svc.Overview()
	if o.Students != 2 || o.Problems != 2 || o.Assigned != 4 || o.Submitted != 2 {
		t.Fatalf("overview totals wrong: %+v", o)
	}
	if len(o.ByGrade) != 2 {
		t.Fatalf("expected 2 grade buckets, got %+v", o.ByGrade)
	}
	first := o.ByGrade[0]
	if first.Grade != "중1" || first.Assigned != 3 || first.Submitted != 2 {
		t.Fatalf("grade bucket wrong: %+v", first)
	}
	if math.Abs(first.AverageScore-70) > 0.01 {
		t.Fatalf("grade average = %f, want 70", first.AverageScore)
	}
}

func TestReportCardPDF(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	data, err := f.svc.ReportCardPDF(1)
	if err != nil {
		t.Fatalf("pdf failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF, starts with %q", data[:8])
	}
}
