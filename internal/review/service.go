// Package review holds the approval queue for AI-drafted problems and the
// students' problem requests. Drafts move pending to approved or rejected,
// both terminal.
package review

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"englab/internal/model"
	"englab/internal/store"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found in queue")
)

// ProblemAdopter receives approved drafts into the live problem bank.
type ProblemAdopter interface {
	Adopt(p model.Problem) (model.Problem, error)
}

type Service struct {
	pending  *store.Collection[model.PendingProblem]
	requests *store.Collection[model.ProblemRequest]
	problems ProblemAdopter
	now      func() time.Time
}

func NewService(
	pending *store.Collection[model.PendingProblem],
	requests *store.Collection[model.ProblemRequest],
	problems ProblemAdopter,
) *Service {
	return &Service{pending: pending, requests: requests, problems: problems, now: time.Now}
}

// Enqueue appends a draft to the pending queue.
func (s *Service) Enqueue(draft model.Problem) (model.PendingProblem, error) {
	if draft.Title == "" || draft.Content == "" || draft.ModelAnswer == "" {
		return model.PendingProblem{}, fmt.Errorf("%w: draft needs title, content and model answer", ErrInvalidInput)
	}
	var queued model.PendingProblem
	err := s.pending.Update(func(items []model.PendingProblem) ([]model.PendingProblem, error) {
		draft.ID = store.NextID(items, func(p model.PendingProblem) int64 { return p.ID })
		draft.CreatedAt = s.now()
		queued = model.PendingProblem{Problem: draft, Status: model.StatusPending}
		return append(items, queued), nil
	})
	if err != nil {
		return model.PendingProblem{}, err
	}
	return queued, nil
}

func (s *Service) ListPending() []model.PendingProblem {
	return s.pending.Filter(func(p model.PendingProblem) bool {
		return p.Status == model.StatusPending
	})
}

// Approve copies the draft into the problem bank and removes it from the
// queue. The approval stamp goes to the caller only; the draft leaves the
// queue rather than being kept with a terminal status.
func (s *Service) Approve(id int64) (model.Problem, model.PendingProblem, error) {
	draft, err := s.take(id)
	if err != nil {
		return model.Problem{}, model.PendingProblem{}, err
	}
	adopted, err := s.problems.Adopt(draft.Problem)
	if err != nil {
		// Put the draft back so the approval can be retried.
		_ = s.pending.Update(func(items []model.PendingProblem) ([]model.PendingProblem, error) {
			return append(items, draft), nil
		})
		return model.Problem{}, model.PendingProblem{}, err
	}
	now := s.now()
	draft.Status = model.StatusApproved
	draft.ApprovedAt = &now
	return adopted, draft, nil
}

// Reject discards the draft.
func (s *Service) Reject(id int64) (model.PendingProblem, error) {
	draft, err := s.take(id)
	if err != nil {
		return model.PendingProblem{}, err
	}
	now := s.now()
	draft.Status = model.StatusRejected
	draft.RejectedAt = &now
	return draft, nil
}

// take removes a pending draft from the queue and returns it.
func (s *Service) take(id int64) (model.PendingProblem, error) {
	var taken model.PendingProblem
	err := s.pending.Update(func(items []model.PendingProblem) ([]model.PendingProblem, error) {
		for i, p := range items {
			if p.ID == id && p.Status == model.StatusPending {
				taken = p
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return model.PendingProblem{}, err
	}
	return taken, nil
}

type RequestInput struct {
	StudentID  int64  `json:"student_id"`
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
	Note       string `json:"note"`
}

// CreateRequest records a student's ask for more problems of a given kind.
func (s *Service) CreateRequest(in RequestInput) (model.ProblemRequest, error) {
	if in.StudentID <= 0 {
		return model.ProblemRequest{}, fmt.Errorf("%w: student id required", ErrInvalidInput)
	}
	ptype, ok := model.NormalizeType(in.Type)
	if !ok {
		return model.ProblemRequest{}, fmt.Errorf("%w: unknown problem type %q", ErrInvalidInput, in.Type)
	}
	level, ok := model.NormalizeLevel(in.Difficulty)
	if !ok {
		return model.ProblemRequest{}, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, in.Difficulty)
	}

	var created model.ProblemRequest
	err := s.requests.Update(func(items []model.ProblemRequest) ([]model.ProblemRequest, error) {
		created = model.ProblemRequest{
			ID:          store.NextID(items, func(r model.ProblemRequest) int64 { return r.ID }),
			StudentID:   in.StudentID,
			Type:        ptype,
			Difficulty:  level,
			Note:        in.Note,
			Status:      model.StatusPending,
			RequestedAt: s.now(),
		}
		return append(items, created), nil
	})
	if err != nil {
		return model.ProblemRequest{}, err
	}
	return created, nil
}

// ListRequests returns requests in insertion order, optionally filtered by
// status (pending, approved, rejected).
func (s *Service) ListRequests(status string) []model.ProblemRequest {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" || model.IsAllFilter(status) {
		return s.requests.All()
	}
	return s.requests.Filter(func(r model.ProblemRequest) bool {
		return r.Status == status
	})
}

// ResolveRequest marks a pending request approved or rejected. Unlike
// drafts, requests stay in their collection with the terminal status and a
// processed_at stamp.
func (s *Service) ResolveRequest(id int64, approve bool) (model.ProblemRequest, error) {
	var resolved model.ProblemRequest
	err := s.requests.Update(func(items []model.ProblemRequest) ([]model.ProblemRequest, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if items[i].Status != model.StatusPending {
				return nil, fmt.Errorf("%w: request %d already processed", ErrInvalidInput, id)
			}
			now := s.now()
			if approve {
				items[i].Status = model.StatusApproved
			} else {
				items[i].Status = model.StatusRejected
			}
			items[i].ProcessedAt = &now
			resolved = items[i]
			return items, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return model.ProblemRequest{}, err
	}
	return resolved, nil
}
