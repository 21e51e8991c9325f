package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"englab/internal/model"
)

type queueStub struct {
	drafts []model.Problem
}

func (q *queueStub) Enqueue(d model.Problem) (model.PendingProblem, error) {
	q.drafts = append(q.drafts, d)
	return model.PendingProblem{Problem: d, Status: model.StatusPending}, nil
}

// cannedTransport answers every request with the given Gemini payload text.
type cannedTransport struct {
	text string
}

func (t *cannedTransport) RoundTrip(*http.Request) (*http.Response, error) {
	body := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": t.text}}}},
		},
	}
	raw, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(string(raw))),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}, nil
}

func draftJSON(n int) string {
	var parts []string
	for i := 0; i < n; i++ {
		parts = append(parts, fmt.Sprintf(`{
			"type": "문법",
			"title": "Problem %d",
			"content": "Choose the correct form.",
			"difficulty": 2,
			"correct_answer": "goes",
			"keywords": ["goes"],
			"explanation": "3인칭 단수"
		}`, i))
	}
	return "Here you go:\n```json\n[" + strings.Join(parts, ",") + "]\n```"
}

func newTestService(text string) (*Service, *queueStub) {
	queue := &queueStub{}
	svc := NewService(ServiceConfig{
		GeminiAPIKey: "test-key",
		HTTPClient:   &http.Client{Transport: &cannedTransport{text: text}},
	}, queue)
	return svc, queue
}

func TestGenerateQueuesValidDrafts(t *testing.T) {
	svc, queue := newTestService(draftJSON(2))

	queued, err := svc.Generate(context.Background(), GenerateInput{Type: "문법", Difficulty: 2, Count: 2})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(queued) != 2 || len(queue.drafts) != 2 {
		t.Fatalf("expected 2 queued drafts, got %d/%d", len(queued), len(queue.drafts))
	}
	d := queue.drafts[0]
	if d.Type != model.TypeGrammar || d.Difficulty != model.LevelBeginner {
		t.Fatalf("draft not normalized: %+v", d)
	}
	if svc.Remaining() != DailyQuota-2 {
		t.Fatalf("expected quota charged for 2, remaining %d", svc.Remaining())
	}
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	svc := NewService(ServiceConfig{}, &queueStub{})
	if _, err := svc.Generate(context.Background(), GenerateInput{Type: "문법", Difficulty: 2}); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestGenerateInputValidation(t *testing.T) {
	svc, _ := newTestService(draftJSON(1))
	if _, err := svc.Generate(context.Background(), GenerateInput{Type: "riddle", Difficulty: 2}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for type, got %v", err)
	}
	if _, err := svc.Generate(context.Background(), GenerateInput{Type: "문법", Difficulty: 9}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for difficulty, got %v", err)
	}
}

func TestDailyQuota(t *testing.T) {
	svc, _ := newTestService(draftJSON(1))
	day := time.Date(2026, 5, 4, 9, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return day }

	svc.mu.Lock()
	svc.rollover()
	svc.usedToday = 99
	svc.mu.Unlock()

	if _, err := svc.Generate(context.Background(), GenerateInput{Type: "문법", Difficulty: 2, Count: 2}); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded at 99+2, got %v", err)
	}
	if _, err := svc.Generate(context.Background(), GenerateInput{Type: "문법", Difficulty: 2, Count: 1}); err != nil {
		t.Fatalf("99+1 should fit the quota: %v", err)
	}

	// Next day the counter resets.
	svc.now = func() time.Time { return day.Add(24 * time.Hour) }
	if got := svc.Remaining(); got != DailyQuota {
		t.Fatalf("expected full quota after midnight, got %d", got)
	}
}

func TestParseDraftsSingleObject(t *testing.T) {
	text := `The model says: {"type":"어휘","title":"T","content":"C","difficulty":4,"correct_answer":"A","keywords":[],"explanation":"E"}`
	drafts, err := parseDrafts(text)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(drafts) != 1 || drafts[0].Title != "T" {
		t.Fatalf("unexpected drafts: %+v", drafts)
	}
	p, ok := drafts[0].toProblem()
	if !ok {
		t.Fatal("draft should validate")
	}
	if p.Difficulty != model.LevelAdvanced {
		t.Fatalf("difficulty 4 should map to advanced, got %q", p.Difficulty)
	}
}

func TestParseDraftsNoJSON(t *testing.T) {
	if _, err := parseDrafts("sorry, I cannot help"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestDraftValidation(t *testing.T) {
	base := draft{Type: "문법", Title: "T", Content: "C", Difficulty: 3, CorrectAnswer: "A"}
	if _, ok := base.toProblem(); !ok {
		t.Fatal("base draft should validate")
	}

	bad := base
	bad.CorrectAnswer = " "
	if _, ok := bad.toProblem(); ok {
		t.Fatal("empty answer should fail validation")
	}
	bad = base
	bad.Difficulty = 0
	if _, ok := bad.toProblem(); ok {
		t.Fatal("off-scale difficulty should fail validation")
	}
	bad = base
	bad.Type = "unknown"
	if _, ok := bad.toProblem(); ok {
		t.Fatal("unknown type should fail validation")
	}
}
