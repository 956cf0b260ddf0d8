package handler

import (
	"context"
	"net/http"
	"time"
)

type accountCounter interface {
	Len(ctx context.Context) int
}

type HealthHandler struct {
	store accountCounter
}

func NewHealthHandler(store accountCounter) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"accounts":  h.store.Len(r.Context()),
	})
}
