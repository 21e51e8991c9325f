// Package assignment links students to problems and tracks the
// submission/grading lifecycle, including quota-bounded auto-assignment.
package assignment

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"englab/internal/model"
	"englab/internal/store"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrScoreOutOfRange    = errors.New("score out of range")
	ErrQuotaExceeded      = errors.New("daily assignment quota exceeded")
	ErrAutoAssignDisabled = errors.New("auto assignment is disabled")
)

type Service struct {
	assignments *store.Collection[model.Assignment]
	problems    *store.Collection[model.Problem]
	students    *store.Collection[model.Student]
	settings    *store.Object[model.SettingsFile]
	now         func() time.Time
	rng         *rand.Rand
}

func NewService(
	assignments *store.Collection[model.Assignment],
	problems *store.Collection[model.Problem],
	students *store.Collection[model.Student],
	settings *store.Object[model.SettingsFile],
) *Service {
	return &Service{
		assignments: assignments,
		problems:    problems,
		students:    students,
		settings:    settings,
		now:         time.Now,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Assign creates one assignment row per problem id, persisted in a single
// batch. Assigning the same problem twice to the same student is allowed by
// design: each row is an independent practice run. Problem ids are weak
// references and are not checked here.
func (s *Service) Assign(studentID int64, problemIDs []int64) ([]model.Assignment, error) {
	if len(problemIDs) == 0 {
		return nil, fmt.Errorf("%w: no problem ids given", ErrInvalidInput)
	}
	if _, ok := s.student(studentID); !ok {
		return nil, ErrStudentNotFound
	}

	created := make([]model.Assignment, 0, len(problemIDs))
	err := s.assignments.Update(func(items []model.Assignment) ([]model.Assignment, error) {
		nextID := store.NextID(items, func(a model.Assignment) int64 { return a.ID })
		now := s.now()
		for _, pid := range problemIDs {
			if pid <= 0 {
				return nil, fmt.Errorf("%w: invalid problem id %d", ErrInvalidInput, pid)
			}
			a := model.Assignment{
				ID:         nextID,
				StudentID:  studentID,
				ProblemID:  pid,
				AssignedAt: now,
			}
			nextID++
			items = append(items, a)
			created = append(created, a)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AutoAssign samples problems at or below the student's level, optionally
// filtered by type, uniformly at random without replacement, bounded by the
// daily quota from the auto_assign settings. Fewer problems than requested
// is not an error; crossing the daily cap is.
func (s *Service) AutoAssign(studentID int64, count int, typeFilter string) ([]model.Problem, error) {
	cfg := s.settings.Get().AutoAssign
	if !cfg.Enabled {
		return nil, ErrAutoAssignDisabled
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive", ErrInvalidInput)
	}
	if len(cfg.Options) > 0 && !containsInt(cfg.Options, count) {
		return nil, fmt.Errorf("%w: count %d is not an allowed option", ErrInvalidInput, count)
	}

	st, ok := s.student(studentID)
	if !ok {
		return nil, ErrStudentNotFound
	}

	assignedToday := s.assignedOn(studentID, s.now())
	if cfg.MaxDailyProblems > 0 && assignedToday+count > cfg.MaxDailyProblems {
		return nil, fmt.Errorf("%w: %d assigned today, %d requested, cap %d",
			ErrQuotaExceeded, assignedToday, count, cfg.MaxDailyProblems)
	}

	wantType := ""
	if !model.IsAllFilter(typeFilter) {
		t, ok := model.NormalizeType(typeFilter)
		if !ok {
			return nil, fmt.Errorf("%w: unknown problem type %q", ErrInvalidInput, typeFilter)
		}
		wantType = t
	}

	levelCap := model.LevelOrdinal(st.Level)
	pool := s.problems.Filter(func(p model.Problem) bool {
		if model.LevelOrdinal(p.Difficulty) > levelCap {
			return false
		}
		if wantType != "" && p.Type != wantType {
			return false
		}
		return true
	})
	if len(pool) == 0 {
		return []model.Problem{}, nil
	}

	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if count < len(pool) {
		pool = pool[:count]
	}

	ids := make([]int64, len(pool))
	for i, p := range pool {
		ids[i] = p.ID
	}
	if _, err := s.Assign(studentID, ids); err != nil {
		return nil, err
	}
	return pool, nil
}

// Submit records the student's answer. Re-submission overwrites the
// previous answer; no submission history is kept.
func (s *Service) Submit(assignmentID int64, answer string) (model.Assignment, error) {
	var updated model.Assignment
	err := s.assignments.Update(func(items []model.Assignment) ([]model.Assignment, error) {
		for i := range items {
			if items[i].ID != assignmentID {
				continue
			}
			now := s.now()
			items[i].Completed = true
			items[i].StudentAnswer = &answer
			items[i].SubmittedAt = &now
			updated = items[i]
			return items, nil
		}
		return nil, ErrAssignmentNotFound
	})
	if err != nil {
		return model.Assignment{}, err
	}
	return updated, nil
}

// Grade sets the score. Grading an assignment that has not been submitted
// is unusual but allowed.
func (s *Service) Grade(assignmentID int64, score int) (model.Assignment, error) {
	if score < 0 || score > 100 {
		return model.Assignment{}, fmt.Errorf("%w: %d not in [0,100]", ErrScoreOutOfRange, score)
	}
	var updated model.Assignment
	err := s.assignments.Update(func(items []model.Assignment) ([]model.Assignment, error) {
		for i := range items {
			if items[i].ID != assignmentID {
				continue
			}
			items[i].Score = &score
			updated = items[i]
			return items, nil
		}
		return nil, ErrAssignmentNotFound
	})
	if err != nil {
		return model.Assignment{}, err
	}
	return updated, nil
}

// ListForStudent returns the student's assignments oldest first.
func (s *Service) ListForStudent(studentID int64) []model.Assignment {
	out := s.assignments.Filter(func(a model.Assignment) bool { return a.StudentID == studentID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Service) Get(assignmentID int64) (model.Assignment, bool) {
	return s.assignments.Find(func(a model.Assignment) bool { return a.ID == assignmentID })
}

// Settings returns the current auto-assign settings record.
func (s *Service) Settings() model.AutoAssignSettings {
	return s.settings.Get().AutoAssign
}

// UpdateSettings replaces the auto-assign settings record.
func (s *Service) UpdateSettings(in model.AutoAssignSettings) error {
	if in.TimeLimit <= 0 {
		return fmt.Errorf("%w: time_limit must be positive", ErrInvalidInput)
	}
	if in.MaxDailyProblems <= 0 {
		return fmt.Errorf("%w: max_daily_problems must be positive", ErrInvalidInput)
	}
	for _, opt := range in.Options {
		if opt <= 0 {
			return fmt.Errorf("%w: count options must be positive", ErrInvalidInput)
		}
	}
	file := s.settings.Get()
	file.AutoAssign = in
	return s.settings.Set(file)
}

func (s *Service) student(id int64) (model.Student, bool) {
	return s.students.Find(func(st model.Student) bool { return st.ID == id })
}

func (s *Service) assignedOn(studentID int64, day time.Time) int {
	y, m, d := day.Date()
	n := 0
	for _, a := range s.assignments.Filter(func(a model.Assignment) bool { return a.StudentID == studentID }) {
		ay, am, ad := a.AssignedAt.Date()
		if ay == y && am == m && ad == d {
			n++
		}
	}
	return n
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
