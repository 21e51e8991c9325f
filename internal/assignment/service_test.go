package assignment

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"englab/internal/model"
	"englab/internal/store"
)

type fixture struct {
	svc         *Service
	problems    *store.Collection[model.Problem]
	students    *store.Collection[model.Student]
	assignments *store.Collection[model.Assignment]
	settings    *store.Object[model.SettingsFile]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	problems, err := store.Open[model.Problem](filepath.Join(dir, "problems.json"))
	if err != nil {
		t.Fatal(err)
	}
	students, err := store.Open[model.Student](filepath.Join(dir, "students.json"))
	if err != nil {
		t.Fatal(err)
	}
	assignments, err := store.Open[model.Assignment](filepath.Join(dir, "assignments.json"))
	if err != nil {
		t.Fatal(err)
	}
	settings, err := store.OpenObject(filepath.Join(dir, "settings.json"),
		model.SettingsFile{AutoAssign: model.DefaultAutoAssignSettings()})
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{
		svc:         NewService(assignments, problems, students, settings),
		problems:    problems,
		students:    students,
		assignments: assignments,
		settings:    settings,
	}
}

func (f *fixture) addStudent(t *testing.T, id int64, level string) {
	t.Helper()
	err := f.students.Update(func(items []model.Student) ([]model.Student, error) {
		return append(items, model.Student{
			ID: id, Name: fmt.Sprintf("student-%d", id),
			Level: level, Status: model.StudentActive, CreatedAt: time.Now(),
		}), nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) addProblem(t *testing.T, id int64, ptype, difficulty string) {
	t.Helper()
	err := f.problems.Update(func(items []model.Problem) ([]model.Problem, error) {
		return append(items, model.Problem{
			ID: id, Title: fmt.Sprintf("problem-%d", id), Type: ptype,
			Difficulty: difficulty, Content: "content", ModelAnswer: "answer",
			TimeLimit: 15, Points: 100, CreatedAt: time.Now(),
		}), nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) setSettings(t *testing.T, cfg model.AutoAssignSettings) {
	t.Helper()
	if err := f.settings.Set(model.SettingsFile{AutoAssign: cfg}); err != nil {
		t.Fatal(err)
	}
}

func TestAssignBatch(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, 1, model.LevelBeginner)

	created, err := f.svc.Assign(1, []int64{10, 11, 10})
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(created))
	}
	// The same problem can be assigned twice; each row is its own run.
	if created[0].ProblemID != 10 || created[2].ProblemID != 10 {
		t.Fatalf("unexpected problem ids: %+v", created)
	}
	for i, a := range created {
		if a.ID != int64(i+1) {
			t.Fatalf("expected sequential ids, got %d at %d", a.ID, i)
		}
		if a.Completed || a.StudentAnswer != nil || a.Score != nil {
			t.Fatalf("new assignment should be pristine: %+v", a)
		}
	}
}

func TestAssignUnknownStudent(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Assign(99, []int64{1}); !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}
}

func TestAutoAssignRespectsCountLevelAndUniqueness(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, 1, model.LevelIntermediate)
	for i := int64(1); i <= 8; i++ {
		f.addProblem(t, i, model.TypeGrammar, model.LevelBeginner)
	}
	for i := int64(9); i <= 14; i++ {
		f.addProblem(t, i, model.TypeGrammar, model.LevelIntermediate)
	}
	for i := int64(15); i <= 20; i++ {
		f.addProblem(t, i, model.TypeGrammar, model.LevelAdvanced)
	}

	picked, err := f.svc.AutoAssign(1, 10, "전체")
	if err != nil {
		t.Fatalf("auto assign failed: %v", err)
	}
	if len(picked) > 10 {
		t.Fatalf("got %d problems, want at most 10", len(picked))
	}
	seen := map[int64]bool{}
	for _, p := range picked {
		if model.LevelOrdinal(p.Difficulty) > model.LevelOrdinal(model.LevelIntermediate) {
			t.Fatalf("problem %d above student level: %s", p.ID, p.Difficulty)
		}
		if seen[p.ID] {
			t.Fatalf("problem %d picked twice in one call", p.ID)
		}
		seen[p.ID] = true
	}
	if got := len(f.svc.ListForStudent(1)); got != len(picked) {
		t.Fatalf("expected %d persisted assignments, got %d", len(picked), got)
	}
}

func TestAutoAssignTypeFilter(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, 1, model.LevelAdvanced)
	f.addProblem(t, 1, model.TypeGrammar, model.LevelBeginner)
	f.addProblem(t, 2, model.TypeVocabulary, model.LevelBeginner)
	f.addProblem(t, 3, model.TypeVocabulary, model.LevelIntermediate)

	picked, err := f.svc.AutoAssign(1, 5, "어휘")
	if err != nil {
		t.Fatalf("auto assign failed: %v", err)
	}
	for _, p := range picked {
		if p.Type != model.TypeVocabulary {
			t.Fatalf("type filter leaked problem %d of type %s", p.ID, p.Type)
		}
	}
	if len(picked) != 2 {
		t.Fatalf("expected the 2 vocabulary problems, got %d", len(picked))
	}
}

func TestAutoAssignDisabled(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, 1, model.LevelBeginner)
	cfg := model.DefaultAutoAssignSettings()
	cfg.Enabled = false
	f.setSettings(t, cfg)

	if _, err := f.svc.AutoAssign(1, 5, ""); !errors.Is(err, ErrAutoAssignDisabled) {
		t.Fatalf("expected ErrAutoAssignDisabled, got %v", err)
	}
}

func TestAutoAssignCountOptions(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, 1, model.LevelBeginner)

	// Default options are 5/10/15/20; 7 is not one of them.
	if _, err := f.svc.AutoAssign(1, 7, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for off-menu count, got %v", err)
	}
}

func TestAutoAssignDailyQuota(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, 1, model.LevelBeginner)
	for i := int64(1); i <= 60; i++ {
		f.addProblem(t, i, model.TypeGrammar, model.LevelBeginner)
	}
	cfg := model.DefaultAutoAssignSettings()
	cfg.Options = []int{25, 30}
	cfg.MaxDailyProblems = 50
	f.setSettings(t, cfg)

	if _, err := f.svc.AutoAssign(1, 30, ""); err != nil {
		t.Fatalf("first call within quota failed: %v", err)
	}
	if _, err := f.svc.AutoAssign(1, 25, ""); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded on 30+25 against cap 50, got %v", err)
	}
}

func TestAutoAssignQuotaResetsNextDay(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, 1, model.LevelBeginner)
	for i := int64(1); i <= 60; i++ {
		f.addProblem(t, i, model.TypeGrammar, model.LevelBeginner)
	}
	cfg := model.DefaultAutoAssignSettings()
	cfg.Options = []int{30}
	cfg.MaxDailyProblems = 50
	f.setSettings(t, cfg)

	day := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	f.svc.now = func() time.Time { return day }
	if _, err := f.svc.AutoAssign(1, 30, ""); err != nil {
		t.Fatal(err)
	}
	f.svc.now = func() time.Time { return day.Add(24 * time.Hour) }
	if _, err := f.svc.AutoAssign(1, 30, ""); err != nil {
		t.Fatalf("quota should reset on the next day: %v", err)
	}
}

func TestSubmitOverwrites(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, 1, model.LevelBeginner)
	created, err := f.svc.Assign(1, []int64{1})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Submit(created[0].ID, "first try"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	a, err := f.svc.Submit(created[0].ID, "second try")
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if a.StudentAnswer == nil || *a.StudentAnswer != "second try" {
		t.Fatalf("expected last submission to win, got %+v", a.StudentAnswer)
	}
	if !a.Completed || a.SubmittedAt == nil {
		t.Fatalf("submission did not mark completion: %+v", a)
	}
}

func TestSubmitMissingAssignment(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Submit(404, "hello"); !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}
}

func TestGradeRangeAndVisibility(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, 1, model.LevelBeginner)
	created, err := f.svc.Assign(1, []int64{1})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Grade(created[0].ID, 150); !errors.Is(err, ErrScoreOutOfRange) {
		t.Fatalf("expected ErrScoreOutOfRange for 150, got %v", err)
	}
	if _, err := f.svc.Grade(created[0].ID, 70); err != nil {
		t.Fatalf("grade failed: %v", err)
	}
	list := f.svc.ListForStudent(1)
	if len(list) != 1 || list[0].Score == nil || *list[0].Score != 70 {
		t.Fatalf("expected score 70 visible in listing, got %+v", list)
	}
}

func TestListForStudentOrder(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, 1, model.LevelBeginner)
	f.addStudent(t, 2, model.LevelBeginner)
	if _, err := f.svc.Assign(1, []int64{3}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Assign(2, []int64{9}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Assign(1, []int64{5}); err != nil {
		t.Fatal(err)
	}

	list := f.svc.ListForStudent(1)
	if len(list) != 2 {
		t.Fatalf("expected 2 assignments for student 1, got %d", len(list))
	}
	if list[0].ProblemID != 3 || list[1].ProblemID != 5 {
		t.Fatalf("expected insertion order, got %+v", list)
	}
}

func TestUpdateSettingsValidation(t *testing.T) {
	f := newFixture(t)
	cfg := model.DefaultAutoAssignSettings()
	cfg.MaxDailyProblems = 0
	if err := f.svc.UpdateSettings(cfg); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	cfg = model.DefaultAutoAssignSettings()
	cfg.MaxDailyProblems = 80
	if err := f.svc.UpdateSettings(cfg); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := f.svc.Settings().MaxDailyProblems; got != 80 {
		t.Fatalf("expected persisted cap 80, got %d", got)
	}
}
