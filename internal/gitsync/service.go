package gitsync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"englab/internal/model"
)

// DefaultPath is where the problem bank lives in the remote repository.
const DefaultPath = "data/problems.json"

// ProblemBank is the slice of problem operations the sync needs.
type ProblemBank interface {
	List(typeFilter, difficultyFilter string) []model.Problem
	ReplaceAll(problems []model.Problem) error
}

type Service struct {
	client   *Client
	problems ProblemBank
	path     string
	now      func() time.Time
}

func NewService(client *Client, problems ProblemBank, path string) *Service {
	if path == "" {
		path = DefaultPath
	}
	return &Service{client: client, problems: problems, path: path, now: time.Now}
}

// Export pushes the whole problem bank to the repository as one JSON blob.
func (s *Service) Export(ctx context.Context) (int, error) {
	problems := s.problems.List("", "")
	blob, err := json.MarshalIndent(problems, "", "  ")
	if err != nil {
		return 0, err
	}
	message := fmt.Sprintf("Update problem bank (%d problems, %s)",
		len(problems), s.now().Format("2006-01-02 15:04"))
	if err := s.client.Write(ctx, s.path, string(blob), message); err != nil {
		return 0, err
	}
	return len(problems), nil
}

// Import replaces the local problem bank with the repository copy. The
// swap is all-or-nothing: a bad blob leaves local data untouched.
func (s *Service) Import(ctx context.Context) (int, error) {
	blob, err := s.client.Read(ctx, s.path)
	if err != nil {
		return 0, err
	}
	var problems []model.Problem
	if err := json.Unmarshal([]byte(blob), &problems); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if err := s.problems.ReplaceAll(problems); err != nil {
		return 0, err
	}
	return len(problems), nil
}
