// Package student owns the student roster. Deleting a student cascades to
// the assignment collection, which is the only cross-collection ownership
// rule in the system.
package student

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"englab/internal/model"
	"englab/internal/store"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrStudentNotFound = errors.New("student not found")
)

type Service struct {
	students    *store.Collection[model.Student]
	assignments *store.Collection[model.Assignment]
	now         func() time.Time
}

func NewService(students *store.Collection[model.Student], assignments *store.Collection[model.Assignment]) *Service {
	return &Service{students: students, assignments: assignments, now: time.Now}
}

type CreateStudentInput struct {
	Name      string `json:"name"`
	Grade     string `json:"grade"`
	Level     string `json:"level"`
	ClassName string `json:"class_name"`
	Contact   string `json:"contact"`
	Notes     string `json:"notes"`
}

type UpdateStudentInput struct {
	Name      *string `json:"name"`
	Grade     *string `json:"grade"`
	Level     *string `json:"level"`
	ClassName *string `json:"class_name"`
	Contact   *string `json:"contact"`
	Notes     *string `json:"notes"`
	Status    *string `json:"status"`
}

func (s *Service) Create(in CreateStudentInput) (model.Student, error) {
	st := model.Student{
		Name:      strings.TrimSpace(in.Name),
		Grade:     strings.TrimSpace(in.Grade),
		ClassName: strings.TrimSpace(in.ClassName),
		Contact:   strings.TrimSpace(in.Contact),
		Notes:     strings.TrimSpace(in.Notes),
		Status:    model.StudentActive,
		CreatedAt: s.now(),
	}
	if st.Name == "" {
		return model.Student{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	level := in.Level
	if strings.TrimSpace(level) == "" {
		level = model.LevelBeginner
	}
	l, ok := model.NormalizeLevel(level)
	if !ok {
		return model.Student{}, fmt.Errorf("%w: unknown level %q", ErrInvalidInput, in.Level)
	}
	st.Level = l

	var stored model.Student
	err := s.students.Update(func(items []model.Student) ([]model.Student, error) {
		st.ID = store.NextID(items, func(it model.Student) int64 { return it.ID })
		stored = st
		return append(items, st), nil
	})
	if err != nil {
		return model.Student{}, err
	}
	return stored, nil
}

func (s *Service) Get(id int64) (model.Student, bool) {
	return s.students.Find(func(st model.Student) bool { return st.ID == id })
}

// GetByName looks a student up by exact name. Names are not required to be
// unique; the first registered match wins, same as the legacy lookup.
func (s *Service) GetByName(name string) (model.Student, bool) {
	name = strings.TrimSpace(name)
	return s.students.Find(func(st model.Student) bool { return st.Name == name })
}

func (s *Service) List() []model.Student {
	return s.students.All()
}

func (s *Service) Update(id int64, in UpdateStudentInput) (model.Student, error) {
	var updated model.Student
	err := s.students.Update(func(items []model.Student) ([]model.Student, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			st := items[i]
			if in.Name != nil {
				name := strings.TrimSpace(*in.Name)
				if name == "" {
					return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
				}
				st.Name = name
			}
			if in.Grade != nil {
				st.Grade = strings.TrimSpace(*in.Grade)
			}
			if in.Level != nil {
				l, ok := model.NormalizeLevel(*in.Level)
				if !ok {
					return nil, fmt.Errorf("%w: unknown level %q", ErrInvalidInput, *in.Level)
				}
				st.Level = l
			}
			if in.ClassName != nil {
				st.ClassName = strings.TrimSpace(*in.ClassName)
			}
			if in.Contact != nil {
				st.Contact = strings.TrimSpace(*in.Contact)
			}
			if in.Notes != nil {
				st.Notes = strings.TrimSpace(*in.Notes)
			}
			if in.Status != nil {
				status := strings.ToLower(strings.TrimSpace(*in.Status))
				if status != model.StudentActive && status != model.StudentInactive {
					return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *in.Status)
				}
				st.Status = status
			}
			items[i] = st
			updated = st
			return items, nil
		}
		return nil, ErrStudentNotFound
	})
	if err != nil {
		return model.Student{}, err
	}
	return updated, nil
}

// Delete removes the student and every assignment row referencing them.
func (s *Service) Delete(id int64) error {
	err := s.students.Update(func(items []model.Student) ([]model.Student, error) {
		for i := range items {
			if items[i].ID == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, ErrStudentNotFound
	})
	if err != nil {
		return err
	}
	return s.assignments.Update(func(items []model.Assignment) ([]model.Assignment, error) {
		kept := items[:0]
		for _, a := range items {
			if a.StudentID != id {
				kept = append(kept, a)
			}
		}
		return kept, nil
	})
}
