// Package generator drafts problems with the Gemini API and hands them to
// the review queue. Generation is capped at a daily quota tracked in
// process memory and reset at local midnight.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"englab/internal/model"
)

const DailyQuota = 100

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNoAPIKey      = errors.New("gemini api key is not configured")
	ErrQuotaExceeded = errors.New("daily generation quota exceeded")
	ErrUpstream      = errors.New("gemini request failed")
)

// Enqueuer receives validated drafts for human review.
type Enqueuer interface {
	Enqueue(draft model.Problem) (model.PendingProblem, error)
}

type ServiceConfig struct {
	GeminiAPIKey string
	GeminiModel  string
	HTTPClient   *http.Client
}

type Service struct {
	geminiAPIKey string
	geminiModel  string
	client       *http.Client
	queue        Enqueuer
	now          func() time.Time

	mu        sync.Mutex
	usedToday int
	countDay  time.Time
}

func NewService(cfg ServiceConfig, queue Enqueuer) *Service {
	geminiModel := strings.TrimSpace(cfg.GeminiModel)
	if geminiModel == "" {
		geminiModel = "gemini-2.5-flash"
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 18 * time.Second}
	}
	return &Service{
		geminiAPIKey: strings.TrimSpace(cfg.GeminiAPIKey),
		geminiModel:  geminiModel,
		client:       client,
		queue:        queue,
		now:          time.Now,
	}
}

// Remaining returns how many drafts can still be generated today.
func (s *Service) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollover()
	return DailyQuota - s.usedToday
}

type GenerateInput struct {
	Type       string `json:"type"`
	Difficulty int    `json:"difficulty"`
	Count      int    `json:"count"`
	Topic      string `json:"topic"`
}

// Generate asks Gemini for count problem drafts, validates each one and
// enqueues the valid ones for review. The quota is charged per accepted
// draft, as the original counter did.
func (s *Service) Generate(ctx context.Context, in GenerateInput) ([]model.PendingProblem, error) {
	if s.geminiAPIKey == "" {
		return nil, ErrNoAPIKey
	}
	if _, ok := model.NormalizeType(in.Type); !ok {
		return nil, fmt.Errorf("%w: unknown problem type %q", ErrInvalidInput, in.Type)
	}
	if in.Difficulty < 1 || in.Difficulty > 5 {
		return nil, fmt.Errorf("%w: difficulty must be 1-5", ErrInvalidInput)
	}
	if in.Count < 1 {
		in.Count = 1
	}

	s.mu.Lock()
	s.rollover()
	if s.usedToday+in.Count > DailyQuota {
		remaining := DailyQuota - s.usedToday
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %d remaining today", ErrQuotaExceeded, remaining)
	}
	s.mu.Unlock()

	raw, err := s.callGemini(ctx, buildPrompt(in))
	if err != nil {
		return nil, err
	}
	drafts, err := parseDrafts(raw)
	if err != nil {
		return nil, err
	}

	var queued []model.PendingProblem
	for _, d := range drafts {
		p, ok := d.toProblem()
		if !ok {
			continue
		}
		pending, err := s.queue.Enqueue(p)
		if err != nil {
			continue
		}
		queued = append(queued, pending)
	}
	if len(queued) == 0 {
		return nil, fmt.Errorf("%w: no valid problem in response", ErrUpstream)
	}

	s.mu.Lock()
	s.rollover()
	s.usedToday += len(queued)
	s.mu.Unlock()
	return queued, nil
}

// rollover resets the counter when the local date changed. Callers hold mu.
func (s *Service) rollover() {
	now := s.now()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if !s.countDay.Equal(today) {
		s.countDay = today
		s.usedToday = 0
	}
}

func buildPrompt(in GenerateInput) string {
	var b strings.Builder
	b.WriteString("영어 교육 전문가로서 다음 조건에 맞는 영어 문제를 생성해주세요:\n\n")
	b.WriteString("조건:\n")
	fmt.Fprintf(&b, "- 문제 유형: %s\n", in.Type)
	fmt.Fprintf(&b, "- 난이도: %d점 (1-5점 척도)\n", in.Difficulty)
	if strings.TrimSpace(in.Topic) != "" {
		fmt.Fprintf(&b, "- 주제: %s\n", in.Topic)
	}
	fmt.Fprintf(&b, "- 생성할 문제 수: %d개\n\n", in.Count)
	b.WriteString(`각 문제는 다음 JSON 형식으로 생성해주세요:
{
    "type": "문제 유형",
    "title": "문제 제목",
    "content": "문제 내용",
    "difficulty": 난이도,
    "correct_answer": "정답",
    "keywords": ["채점", "키워드", "목록"],
    "explanation": "문제 해설"
}

응답은 반드시 유효한 JSON 형식이어야 하며, 여러 문제의 경우 JSON 배열로 반환해주세요.`)
	return b.String()
}

func (s *Service) callGemini(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     0.7,
			"maxOutputTokens": 2048,
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", s.geminiModel, s.geminiAPIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var out geminiGenerateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	text := strings.TrimSpace(out.firstText())
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrUpstream)
	}
	return text, nil
}

type draft struct {
	Type          string   `json:"type"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Difficulty    float64  `json:"difficulty"`
	CorrectAnswer string   `json:"correct_answer"`
	Keywords      []string `json:"keywords"`
	Explanation   string   `json:"explanation"`
}

// toProblem validates a draft and maps its 1-5 difficulty onto the level
// enum. Invalid drafts are skipped rather than failing the batch.
func (d draft) toProblem() (model.Problem, bool) {
	ptype, ok := model.NormalizeType(d.Type)
	if !ok {
		return model.Problem{}, false
	}
	if strings.TrimSpace(d.Title) == "" || strings.TrimSpace(d.Content) == "" ||
		strings.TrimSpace(d.CorrectAnswer) == "" {
		return model.Problem{}, false
	}
	scale := int(d.Difficulty)
	if scale < 1 || scale > 5 {
		return model.Problem{}, false
	}
	return model.Problem{
		Title:       strings.TrimSpace(d.Title),
		Type:        ptype,
		Difficulty:  model.LevelFromScale(scale),
		Content:     strings.TrimSpace(d.Content),
		ModelAnswer: strings.TrimSpace(d.CorrectAnswer),
		Keywords:    d.Keywords,
		Explanation: strings.TrimSpace(d.Explanation),
		TimeLimit:   15,
		Points:      model.DefaultPoints,
	}, true
}

// parseDrafts pulls the JSON object or array out of the response text.
// Models often wrap the payload in prose or a code fence.
func parseDrafts(text string) ([]draft, error) {
	payload, ok := extractJSON(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON in response", ErrUpstream)
	}
	if strings.HasPrefix(payload, "[") {
		var drafts []draft
		if err := json.Unmarshal([]byte(payload), &drafts); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return drafts, nil
	}
	var d draft
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return []draft{d}, nil
}

func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if as := strings.Index(text, "["); as != -1 && (start == -1 || as < start) {
		if ae := strings.LastIndex(text, "]"); ae > as {
			return text[as : ae+1], true
		}
	}
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (r geminiGenerateResponse) firstText() string {
	for _, c := range r.Candidates {
		for _, p := range c.Content.Parts {
			if strings.TrimSpace(p.Text) != "" {
				return p.Text
			}
		}
	}
	return ""
}
