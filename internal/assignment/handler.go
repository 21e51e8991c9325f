package assignment

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"englab/internal/app/apiresp"
	"englab/internal/feedback"
	"englab/internal/model"

	"github.com/go-chi/chi/v5"
)

// ProblemLookup resolves the problem an assignment points to. The feedback
// endpoint needs the model answer and type without depending on the whole
// problem service.
type ProblemLookup interface {
	Get(id int64) (model.Problem, bool)
}

type Handler struct {
	svc      *Service
	problems ProblemLookup
	fb       *feedback.Generator
}

func NewHandler(svc *Service, problems ProblemLookup, fb *feedback.Generator) *Handler {
	return &Handler{svc: svc, problems: problems, fb: fb}
}

type assignInput struct {
	StudentID  int64   `json:"student_id"`
	ProblemIDs []int64 `json:"problem_ids"`
}

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	var in assignInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.svc.Assign(in.StudentID, in.ProblemIDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusCreated, created)
}

type autoAssignInput struct {
	StudentID int64  `json:"student_id"`
	Count     int    `json:"count"`
	Type      string `json:"type"`
}

func (h *Handler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	var in autoAssignInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	picked, err := h.svc.AutoAssign(in.StudentID, in.Count, in.Type)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusCreated, picked)
}

type submitInput struct {
	Answer string `json:"answer"`
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid assignment id")
		return
	}
	var in submitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	a, err := h.svc.Submit(id, in.Answer)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, a)
}

type gradeInput struct {
	Score int `json:"score"`
}

func (h *Handler) Grade(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid assignment id")
		return
	}
	var in gradeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	a, err := h.svc.Grade(id, in.Score)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, a)
}

func (h *Handler) ListForStudent(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "studentID")
	studentID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || studentID <= 0 {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid student id")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, h.svc.ListForStudent(studentID))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid assignment id")
		return
	}
	a, ok := h.svc.Get(id)
	if !ok {
		apiresp.WriteNotFound(w, r, "assignment not found")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, a)
}

// Feedback runs the heuristic scorer against the submitted answer and the
// problem's model answer. An assignment without a submission gets the
// empty-submission report rather than an error.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid assignment id")
		return
	}
	a, ok := h.svc.Get(id)
	if !ok {
		apiresp.WriteNotFound(w, r, "assignment not found")
		return
	}
	p, ok := h.problems.Get(a.ProblemID)
	if !ok {
		apiresp.WriteNotFound(w, r, "problem for assignment not found")
		return
	}
	answer := ""
	if a.StudentAnswer != nil {
		answer = *a.StudentAnswer
	}
	report := h.fb.Generate(answer, p.ModelAnswer, p.Type)
	apiresp.WriteOK(w, r, http.StatusOK, report)
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	apiresp.WriteOK(w, r, http.StatusOK, h.svc.Settings())
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var in model.AutoAssignSettings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.UpdateSettings(in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, h.svc.Settings())
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrAssignmentNotFound):
		apiresp.WriteNotFound(w, r, "assignment not found")
	case errors.Is(err, ErrStudentNotFound):
		apiresp.WriteNotFound(w, r, "student not found")
	case errors.Is(err, ErrScoreOutOfRange), errors.Is(err, ErrInvalidInput):
		apiresp.WriteError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrQuotaExceeded):
		apiresp.WriteError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, ErrAutoAssignDisabled):
		apiresp.WriteError(w, r, http.StatusForbidden, err.Error())
	default:
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
