package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"englab/internal/app/apiresp"
	"englab/internal/model"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	apiresp.WriteOK(w, r, http.StatusOK, h.svc.ListPending())
}

func (h *Handler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var draft model.Problem
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	queued, err := h.svc.Enqueue(draft)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusCreated, queued)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid draft id")
		return
	}
	adopted, draft, err := h.svc.Approve(id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, map[string]any{
		"problem": adopted,
		"draft":   draft,
	})
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid draft id")
		return
	}
	draft, err := h.svc.Reject(id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, draft)
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var in RequestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.svc.CreateRequest(in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusCreated, created)
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	apiresp.WriteOK(w, r, http.StatusOK, h.svc.ListRequests(r.URL.Query().Get("status")))
}

func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveRequest(w, r, true)
}

func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveRequest(w, r, false)
}

func (h *Handler) resolveRequest(w http.ResponseWriter, r *http.Request, approve bool) {
	id, err := pathID(r)
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request id")
		return
	}
	resolved, err := h.svc.ResolveRequest(id, approve)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, resolved)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		apiresp.WriteNotFound(w, r, "not found")
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
