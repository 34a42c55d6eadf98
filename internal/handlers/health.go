package handlers

import (
	"net/http"

	"github.com/careerloop/platform/internal/topicmgr"
	"github.com/labstack/echo/v4"
)

// HealthHandler answers liveness probes.
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthGet reports process liveness and the size of the topic registry,
// which doubles as a cheap signal that startup registration completed.
func (h *HealthHandler) HealthGet(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"topics": topicmgr.Default().Count(),
	})
}
