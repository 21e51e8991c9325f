// Package model holds the record shapes persisted in the JSON data files
// and the enum normalization shared by every service.
package model

import (
	"strings"
	"time"
)

// Problem types. Korean labels from the legacy data files are accepted as
// input synonyms and normalized to these values.
const (
	TypeGrammar    = "grammar"
	TypeVocabulary = "vocabulary"
	TypeReading    = "reading"
	TypeWriting    = "writing"
	TypeListening  = "listening"
	TypeSpeaking   = "speaking"
)

// Difficulty / student level.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// TypeFilterAll matches every problem type in auto-assignment.
const TypeFilterAll = "all"

const DefaultPoints = 100

type Problem struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Difficulty  string    `json:"difficulty"`
	Content     string    `json:"content"`
	ModelAnswer string    `json:"model_answer"`
	Keywords    []string  `json:"keywords"`
	Explanation string    `json:"explanation,omitempty"`
	TimeLimit   int       `json:"time_limit"`
	Points      int       `json:"points"`
	CreatedAt   time.Time `json:"created_at"`
}

// Pending-problem review states.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// PendingProblem is an AI-drafted problem awaiting review. The approval and
// rejection stamps are set just before the draft leaves the queue; they are
// returned to the caller but not kept long-term.
type PendingProblem struct {
	Problem
	Status     string     `json:"status"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	RejectedAt *time.Time `json:"rejected_at,omitempty"`
}

const (
	StudentActive   = "active"
	StudentInactive = "inactive"
)

type Student struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Grade     string    `json:"grade"`
	Level     string    `json:"level"`
	ClassName string    `json:"class_name,omitempty"`
	Contact   string    `json:"contact,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Assignment links a student to a problem. student_id and problem_id are
// weak references: a lookup after the referent was deleted returns nothing
// rather than an error.
type Assignment struct {
	ID            int64      `json:"id"`
	StudentID     int64      `json:"student_id"`
	ProblemID     int64      `json:"problem_id"`
	AssignedAt    time.Time  `json:"assigned_at"`
	Completed     bool       `json:"completed"`
	StudentAnswer *string    `json:"student_answer"`
	SubmittedAt   *time.Time `json:"submitted_at"`
	Score         *int       `json:"score"`
}

type ProblemRequest struct {
	ID          int64      `json:"id"`
	StudentID   int64      `json:"student_id"`
	Type        string     `json:"type"`
	Difficulty  string     `json:"difficulty"`
	Note        string     `json:"note"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// AutoAssignSettings bounds auto-assignment requests. Stored as the
// auto_assign object in settings.json.
type AutoAssignSettings struct {
	Enabled          bool  `json:"enabled"`
	Options          []int `json:"options"`
	TimeLimit        int   `json:"time_limit"`
	MaxDailyProblems int   `json:"max_daily_problems"`
}

// SettingsFile is the shape of settings.json: one object per settings name.
type SettingsFile struct {
	AutoAssign AutoAssignSettings `json:"auto_assign"`
}

func DefaultAutoAssignSettings() AutoAssignSettings {
	return AutoAssignSettings{
		Enabled:          true,
		Options:          []int{5, 10, 15, 20},
		TimeLimit:        30,
		MaxDailyProblems: 50,
	}
}

var problemTypes = map[string]string{
	TypeGrammar:    TypeGrammar,
	TypeVocabulary: TypeVocabulary,
	TypeReading:    TypeReading,
	TypeWriting:    TypeWriting,
	TypeListening:  TypeListening,
	TypeSpeaking:   TypeSpeaking,
	"문법":           TypeGrammar,
	"어휘":           TypeVocabulary,
	"독해":           TypeReading,
	"영작문":          TypeWriting,
	"듣기":           TypeListening,
	"말하기":          TypeSpeaking,
}

// NormalizeType maps a problem-type label, English or Korean, onto the
// canonical value. Unknown labels return ok=false.
func NormalizeType(v string) (string, bool) {
	t, ok := problemTypes[strings.ToLower(strings.TrimSpace(v))]
	return t, ok
}

var levels = map[string]string{
	LevelBeginner:     LevelBeginner,
	LevelIntermediate: LevelIntermediate,
	LevelAdvanced:     LevelAdvanced,
	"초급":              LevelBeginner,
	"중급":              LevelIntermediate,
	"고급":              LevelAdvanced,
}

// NormalizeLevel maps a difficulty or student-level label onto the
// canonical value.
func NormalizeLevel(v string) (string, bool) {
	l, ok := levels[strings.ToLower(strings.TrimSpace(v))]
	return l, ok
}

// LevelOrdinal is the "at or below my level" ordering: beginner=1,
// intermediate=2, advanced=3. Unknown labels rank as 0.
func LevelOrdinal(level string) int {
	switch level {
	case LevelBeginner:
		return 1
	case LevelIntermediate:
		return 2
	case LevelAdvanced:
		return 3
	default:
		return 0
	}
}

// LevelFromScale maps the 1-5 difficulty scale used by the AI generator
// onto the canonical enum.
func LevelFromScale(n int) string {
	switch {
	case n <= 2:
		return LevelBeginner
	case n == 3:
		return LevelIntermediate
	default:
		return LevelAdvanced
	}
}

// IsAllFilter reports whether a type filter means "every type".
// The legacy UI sends 전체.
func IsAllFilter(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	return s == "" || s == TypeFilterAll || s == "전체"
}
