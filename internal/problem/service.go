// Package problem owns the live problem bank.
package problem

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
	ErrProblemNotFound = errors.New("problem not found")
)

type Service struct {
	problems *store.Collection[model.Problem]
	now      func() time.Time
}

func NewService(problems *store.Collection[model.Problem]) *Service {
	return &Service{problems: problems, now: time.Now}
}

type CreateProblemInput struct {
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Difficulty  string   `json:"difficulty"`
	Content     string   `json:"content"`
	ModelAnswer string   `json:"model_answer"`
	Keywords    []string `json:"keywords"`
	Explanation string   `json:"explanation"`
	TimeLimit   int      `json:"time_limit"`
	Points      int      `json:"points"`
}

// UpdateProblemInput is a patch: nil fields keep the stored value. The id
// and created_at of the stored record are immutable.
type UpdateProblemInput struct {
	Title       *string   `json:"title"`
	Type        *string   `json:"type"`
	Difficulty  *string   `json:"difficulty"`
	Content     *string   `json:"content"`
	ModelAnswer *string   `json:"model_answer"`
	Keywords    *[]string `json:"keywords"`
	Explanation *string   `json:"explanation"`
	TimeLimit   *int      `json:"time_limit"`
	Points      *int      `json:"points"`
}

func (s *Service) Create(in CreateProblemInput) (model.Problem, error) {
	p, err := buildProblem(in, s.now())
	if err != nil {
		return model.Problem{}, err
	}
	return s.append(p)
}

// Adopt stores an externally built problem, such as an approved draft,
// under a fresh id and creation stamp.
func (s *Service) Adopt(p model.Problem) (model.Problem, error) {
	in := CreateProblemInput{
		Title:       p.Title,
		Type:        p.Type,
		Difficulty:  p.Difficulty,
		Content:     p.Content,
		ModelAnswer: p.ModelAnswer,
		Keywords:    p.Keywords,
		Explanation: p.Explanation,
		TimeLimit:   p.TimeLimit,
		Points:      p.Points,
	}
	return s.Create(in)
}

func (s *Service) append(p model.Problem) (model.Problem, error) {
	var stored model.Problem
	err := s.problems.Update(func(items []model.Problem) ([]model.Problem, error) {
		p.ID = store.NextID(items, func(it model.Problem) int64 { return it.ID })
		stored = p
		return append(items, p), nil
	})
	if err != nil {
		return model.Problem{}, err
	}
	return stored, nil
}

// Get returns the problem or ok=false on a lookup miss; a missing id is
// never an error.
func (s *Service) Get(id int64) (model.Problem, bool) {
	return s.problems.Find(func(p model.Problem) bool { return p.ID == id })
}

// List returns problems in insertion order, optionally filtered by type
// and difficulty.
func (s *Service) List(problemType, difficulty string) []model.Problem {
	typeFilter := ""
	if !model.IsAllFilter(problemType) {
		t, ok := model.NormalizeType(problemType)
		if !ok {
			return []model.Problem{}
		}
		typeFilter = t
	}
	levelFilter := ""
	if strings.TrimSpace(difficulty) != "" {
		l, ok := model.NormalizeLevel(difficulty)
		if !ok {
			return []model.Problem{}
		}
		levelFilter = l
	}

	return s.problems.Filter(func(p model.Problem) bool {
		if typeFilter != "" && p.Type != typeFilter {
			return false
		}
		if levelFilter != "" && p.Difficulty != levelFilter {
			return false
		}
		return true
	})
}

func (s *Service) Update(id int64, in UpdateProblemInput) (model.Problem, error) {
	var updated model.Problem
	err := s.problems.Update(func(items []model.Problem) ([]model.Problem, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			p := items[i]
			if in.Title != nil {
				p.Title = strings.TrimSpace(*in.Title)
			}
			if in.Type != nil {
				t, ok := model.NormalizeType(*in.Type)
				if !ok {
					return nil, fmt.Errorf("%w: unknown problem type %q", ErrInvalidInput, *in.Type)
				}
				p.Type = t
			}
			if in.Difficulty != nil {
				l, ok := model.NormalizeLevel(*in.Difficulty)
				if !ok {
					return nil, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, *in.Difficulty)
				}
				p.Difficulty = l
			}
			if in.Content != nil {
				p.Content = *in.Content
			}
			if in.ModelAnswer != nil {
				p.ModelAnswer = *in.ModelAnswer
			}
			if in.Keywords != nil {
				p.Keywords = cleanKeywords(*in.Keywords)
			}
			if in.Explanation != nil {
				p.Explanation = *in.Explanation
			}
			if in.TimeLimit != nil {
				if *in.TimeLimit <= 0 {
					return nil, fmt.Errorf("%w: time_limit must be positive", ErrInvalidInput)
				}
				p.TimeLimit = *in.TimeLimit
			}
			if in.Points != nil {
				if *in.Points <= 0 {
					return nil, fmt.Errorf("%w: points must be positive", ErrInvalidInput)
				}
				p.Points = *in.Points
			}
			if err := validateProblem(p); err != nil {
				return nil, err
			}
			items[i] = p
			updated = p
			return items, nil
		}
		return nil, ErrProblemNotFound
	})
	if err != nil {
		return model.Problem{}, err
	}
	return updated, nil
}

func (s *Service) Delete(id int64) error {
	return s.problems.Update(func(items []model.Problem) ([]model.Problem, error) {
		for i := range items {
			if items[i].ID == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, ErrProblemNotFound
	})
}

// ReplaceAll swaps the entire bank for the given records, used by the
// remote-sync import. Records keep their ids; invalid records abort the
// whole replacement so a bad blob never lands partially.
func (s *Service) ReplaceAll(problems []model.Problem) error {
	seen := make(map[int64]struct{}, len(problems))
	for i := range problems {
		if err := validateProblem(problems[i]); err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
		if _, dup := seen[problems[i].ID]; dup {
			return fmt.Errorf("%w: duplicate id %d", ErrInvalidInput, problems[i].ID)
		}
		seen[problems[i].ID] = struct{}{}
	}
	return s.problems.Update(func([]model.Problem) ([]model.Problem, error) {
		return problems, nil
	})
}

func buildProblem(in CreateProblemInput, now time.Time) (model.Problem, error) {
	p := model.Problem{
		Title:       strings.TrimSpace(in.Title),
		Content:     strings.TrimSpace(in.Content),
		ModelAnswer: strings.TrimSpace(in.ModelAnswer),
		Keywords:    cleanKeywords(in.Keywords),
		Explanation: strings.TrimSpace(in.Explanation),
		TimeLimit:   in.TimeLimit,
		Points:      in.Points,
		CreatedAt:   now,
	}
	t, ok := model.NormalizeType(in.Type)
	if !ok {
		return model.Problem{}, fmt.Errorf("%w: unknown problem type %q", ErrInvalidInput, in.Type)
	}
	p.Type = t
	l, ok := model.NormalizeLevel(in.Difficulty)
	if !ok {
		return model.Problem{}, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, in.Difficulty)
	}
	p.Difficulty = l
	if p.TimeLimit <= 0 {
		p.TimeLimit = 15
	}
	if p.Points <= 0 {
		p.Points = model.DefaultPoints
	}
	if err := validateProblem(p); err != nil {
		return model.Problem{}, err
	}
	return p, nil
}

func validateProblem(p model.Problem) error {
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if p.Content == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if p.ModelAnswer == "" {
		return fmt.Errorf("%w: model_answer is required", ErrInvalidInput)
	}
	if _, ok := model.NormalizeType(p.Type); !ok {
		return fmt.Errorf("%w: unknown problem type %q", ErrInvalidInput, p.Type)
	}
	if _, ok := model.NormalizeLevel(p.Difficulty); !ok {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, p.Difficulty)
	}
	if p.TimeLimit <= 0 {
		return fmt.Errorf("%w: time_limit must be positive", ErrInvalidInput)
	}
	if p.Points <= 0 {
		return fmt.Errorf("%w: points must be positive", ErrInvalidInput)
	}
	return nil
}

func cleanKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
