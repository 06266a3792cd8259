package handlers

import (
	"net/http"

	"murmur/internal/core/contracts"
	"murmur/pkg/middleware"
)

type HealthHandler struct {
	registry contracts.ConnectionRegistry
}

func NewHealthHandler(registry contracts.ConnectionRegistry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": h.registry.Count(),
	})
}
