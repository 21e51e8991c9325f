package gitsync

import (
	"errors"
	"net/http"

	"englab/internal/app/apiresp"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Export(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, map[string]int{"exported": n})
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Import(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, map[string]int{"imported": n})
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		apiresp.WriteNotFound(w, r, "file not found in repository")
	case errors.Is(err, ErrNotEnabled), errors.Is(err, ErrNoToken):
		apiresp.WriteError(w, r, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ErrUpstream):
		apiresp.WriteError(w, r, http.StatusBadGateway, "github sync failed")
	default:
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
	}
}
