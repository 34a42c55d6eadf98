package handlers

import (
	"net/http"

	"github.com/careerloop/platform/internal/admin"
	"github.com/careerloop/platform/internal/pubsub/runtime"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// ServicesAffected reports partial progress of an aborted maintenance
	// run so the caller knows which services were touched before failure.
	ServicesAffected []string `json:"services_affected,omitempty"`
}

// AdminHandler serves the maintenance and inspection endpoints.
type AdminHandler struct {
	aggregator  *admin.Aggregator
	deadLetters *runtime.DeadLetterStore
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(aggregator *admin.Aggregator, deadLetters *runtime.DeadLetterStore) *AdminHandler {
	return &AdminHandler{aggregator: aggregator, deadLetters: deadLetters}
}

// MaintenanceClearPost fans the clear-data directive out across services.
func (h *AdminHandler) MaintenanceClearPost(c echo.Context) error {
	report, err := h.aggregator.PerformAcrossServices(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:             "maintenance_failed",
			Message:          err.Error(),
			ServicesAffected: report.ServicesAffected,
		})
	}
	return c.JSON(http.StatusOK, report)
}

// DeadLettersGet lists the retained dead-lettered events, oldest first.
func (h *AdminHandler) DeadLettersGet(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"count":        h.deadLetters.Len(),
		"dead_letters": h.deadLetters.List(),
	})
}
