package server

import (
	"github.com/careerloop/platform/internal/middleware"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	s.E.GET("/healthz", s.healthHandler.HealthGet)

	// Administrative surfaces require a verified frontend token.
	requireAuth := middleware.Auth(s.Verifier)

	adminGroup := s.E.Group("/admin", requireAuth)
	adminGroup.POST("/maintenance/clear", s.adminHandler.MaintenanceClearPost)
	adminGroup.GET("/dead-letters", s.adminHandler.DeadLettersGet)
}
