package generator

import (
	"encoding/json"
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

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var in GenerateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	queued, err := h.svc.Generate(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusCreated, map[string]any{
		"queued":    queued,
		"remaining": h.svc.Remaining(),
	})
}

func (h *Handler) Quota(w http.ResponseWriter, r *http.Request) {
	apiresp.WriteOK(w, r, http.StatusOK, map[string]int{
		"daily_quota": DailyQuota,
		"remaining":   h.svc.Remaining(),
	})
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		apiresp.WriteError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrQuotaExceeded):
		apiresp.WriteError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNoAPIKey):
		apiresp.WriteError(w, r, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ErrUpstream):
		apiresp.WriteError(w, r, http.StatusBadGateway, "problem generation failed")
	default:
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
	}
}
