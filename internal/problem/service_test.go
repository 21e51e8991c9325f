package problem

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"englab/internal/model"
	"englab/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	col, err := store.Open[model.Problem](filepath.Join(t.TempDir(), "problems.json"))
	if err != nil {
		t.Fatal(err)
	}
	return NewService(col)
}

func validInput() CreateProblemInput {
	return CreateProblemInput{
		Title:       "Basic Grammar",
		Type:        "grammar",
		Difficulty:  "beginner",
		Content:     "Choose the correct verb form.",
		ModelAnswer: "He plays basketball.",
		Keywords:    []string{"play", "plays"},
		TimeLimit:   15,
	}
}

func TestCreateThenGet(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID != 1 {
		t.Fatalf("expected first id 1, got %d", created.ID)
	}
	if created.Points != model.DefaultPoints {
		t.Fatalf("expected default points %d, got %d", model.DefaultPoints, created.Points)
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be stamped")
	}

	got, ok := svc.Get(created.ID)
	if !ok {
		t.Fatalf("expected to find created problem")
	}
	if got.Title != "Basic Grammar" || got.Type != model.TypeGrammar {
		t.Fatalf("unexpected stored problem: %+v", got)
	}
}

func TestCreateNormalizesKoreanLabels(t *testing.T) {
	svc := newTestService(t)

	in := validInput()
	in.Type = "영작문"
	in.Difficulty = "중급"
	created, err := svc.Create(in)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Type != model.TypeWriting {
		t.Fatalf("expected type writing, got %q", created.Type)
	}
	if created.Difficulty != model.LevelIntermediate {
		t.Fatalf("expected difficulty intermediate, got %q", created.Difficulty)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*CreateProblemInput)
	}{
		{name: "missing title", mutate: func(in *CreateProblemInput) { in.Title = " " }},
		{name: "missing content", mutate: func(in *CreateProblemInput) { in.Content = "" }},
		{name: "missing answer", mutate: func(in *CreateProblemInput) { in.ModelAnswer = "" }},
		{name: "unknown type", mutate: func(in *CreateProblemInput) { in.Type = "algebra" }},
		{name: "unknown difficulty", mutate: func(in *CreateProblemInput) { in.Difficulty = "expert" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			if _, err := svc.Create(in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestUpdatePreservesIDAndCreatedAt(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(validInput())
	if err != nil {
		t.Fatal(err)
	}

	newTitle := "Renamed"
	updated, err := svc.Update(created.ID, UpdateProblemInput{Title: &newTitle})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Fatalf("expected new title, got %q", updated.Title)
	}
	if updated.ID != created.ID {
		t.Fatalf("id changed on update")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at changed on update")
	}
	if updated.Content != created.Content {
		t.Fatalf("unpatched field changed")
	}
}

func TestUpdateMissingProblem(t *testing.T) {
	svc := newTestService(t)
	title := "x"
	if _, err := svc.Update(99, UpdateProblemInput{Title: &title}); !errors.Is(err, ErrProblemNotFound) {
		t.Fatalf("expected ErrProblemNotFound, got %v", err)
	}
}

func TestDeleteThenGetMisses(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(validInput())
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := svc.Get(created.ID); ok {
		t.Fatalf("expected get to miss after delete")
	}
	if err := svc.Delete(created.ID); !errors.Is(err, ErrProblemNotFound) {
		t.Fatalf("expected ErrProblemNotFound on second delete, got %v", err)
	}
}

func TestIDsNotReusedAfterDelete(t *testing.T) {
	svc := newTestService(t)
	first, _ := svc.Create(validInput())
	second, _ := svc.Create(validInput())
	if err := svc.Delete(first.ID); err != nil {
		t.Fatal(err)
	}
	third, err := svc.Create(validInput())
	if err != nil {
		t.Fatal(err)
	}
	if third.ID <= second.ID {
		t.Fatalf("expected fresh id above %d, got %d", second.ID, third.ID)
	}
}

func TestListFilters(t *testing.T) {
	svc := newTestService(t)
	in := validInput()
	if _, err := svc.Create(in); err != nil {
		t.Fatal(err)
	}
	in2 := validInput()
	in2.Type = "vocabulary"
	in2.Difficulty = "advanced"
	if _, err := svc.Create(in2); err != nil {
		t.Fatal(err)
	}

	if got := len(svc.List("", "")); got != 2 {
		t.Fatalf("expected 2 problems unfiltered, got %d", got)
	}
	if got := len(svc.List("전체", "")); got != 2 {
		t.Fatalf("expected 전체 to match all, got %d", got)
	}
	if got := len(svc.List("vocabulary", "")); got != 1 {
		t.Fatalf("expected 1 vocabulary problem, got %d", got)
	}
	if got := len(svc.List("", "advanced")); got != 1 {
		t.Fatalf("expected 1 advanced problem, got %d", got)
	}
	if got := len(svc.List("speaking", "")); got != 0 {
		t.Fatalf("expected no speaking problems, got %d", got)
	}
}

func TestSeedStarterOnlyOnEmptyBank(t *testing.T) {
	svc := newTestService(t)

	seeded, err := svc.SeedStarter()
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if seeded != len(starterProblems) {
		t.Fatalf("expected %d seeded, got %d", len(starterProblems), seeded)
	}

	again, err := svc.SeedStarter()
	if err != nil {
		t.Fatal(err)
	}
	if again != 0 {
		t.Fatalf("expected second seed to be a no-op, seeded %d", again)
	}
}

func TestAdoptAssignsFreshIdentity(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(validInput())
	if err != nil {
		t.Fatal(err)
	}

	draft := created
	draft.ID = 777
	draft.CreatedAt = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	adopted, err := svc.Adopt(draft)
	if err != nil {
		t.Fatalf("adopt failed: %v", err)
	}
	if adopted.ID == 777 {
		t.Fatalf("expected adopt to assign a new id")
	}
	if adopted.CreatedAt.Year() == 2000 {
		t.Fatalf("expected adopt to restamp created_at")
	}
}
