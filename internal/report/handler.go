package report

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"englab/internal/app/apiresp"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	apiresp.WriteOK(w, r, http.StatusOK, h.svc.Overview())
}

func (h *Handler) StudentSummary(w http.ResponseWriter, r *http.Request) {
	id, err := studentID(r)
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid student id")
		return
	}
	summary, err := h.svc.StudentSummary(id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, summary)
}

func (h *Handler) ReportCard(w http.ResponseWriter, r *http.Request) {
	id, err := studentID(r)
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid student id")
		return
	}
	data, err := h.svc.ReportCardPDF(id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="report_card_%d.pdf"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrStudentNotFound):
		apiresp.WriteNotFound(w, r, "student not found")
	default:
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func studentID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "studentID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
