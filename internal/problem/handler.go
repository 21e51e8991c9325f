package problem

import (
	"encoding/json"
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items := h.svc.List(r.URL.Query().Get("type"), r.URL.Query().Get("difficulty"))
	apiresp.WriteOK(w, r, http.StatusOK, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid problem id")
		return
	}
	p, ok := h.svc.Get(id)
	if !ok {
		apiresp.WriteNotFound(w, r, "problem not found")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, p)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateProblemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.svc.Create(in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusCreated, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid problem id")
		return
	}
	var in UpdateProblemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.svc.Update(id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid problem id")
		return
	}
	if err := h.svc.Delete(id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.ImportCSV(r.Body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, report)
}

func (h *Handler) ImportXLSX(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.ImportXLSX(r.Body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, report)
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="problems.csv"`)
	if err := h.svc.ExportCSV(w); err != nil {
		// Headers are out; nothing sensible left to send.
		return
	}
}

func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportXLSX()
	if err != nil {
		apiresp.WriteError(w, r, http.StatusInternalServerError, "failed to build xlsx")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="problems.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	seeded, err := h.svc.SeedStarter()
	if err != nil {
		apiresp.WriteError(w, r, http.StatusInternalServerError, "seeding failed")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, map[string]int{"seeded": seeded})
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrProblemNotFound):
		apiresp.WriteNotFound(w, r, "problem not found")
	case errors.Is(err, ErrInvalidInput):
		apiresp.WriteError(w, r, http.StatusUnprocessableEntity, err.Error())
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
