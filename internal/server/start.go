package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Start boots the modules, runs the delivery runtime, and serves HTTP until
// an interrupt or terminate signal arrives.
func (s *Server) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Subscriptions must be bound before the runtime starts routing, so
	// modules boot first.
	for _, m := range s.modules {
		if err := m.Register(s.reg); err != nil {
			slog.Error("Failed to register module", "module", m.Name(), "error", err)
			os.Exit(1)
		}
	}
	for _, m := range s.modules {
		group := s.E.Group("/" + m.Name())
		if err := m.Boot(ctx, group, s.reg); err != nil {
			slog.Error("Failed to boot module", "module", m.Name(), "error", err)
			os.Exit(1)
		}
	}
	if err := s.DeadLetters.Attach(ctx, s.Bus, s.Cfg.GetDeadLetterTopic()); err != nil {
		slog.Error("Failed to attach dead letter store", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := s.Runtime.Run(ctx); err != nil {
			slog.Error("Delivery runtime stopped", "error", err)
		}
	}()
	<-s.Runtime.Running()
	slog.Info("Delivery runtime started")

	go func() {
		if err := s.E.Start(s.Cfg.GetAddr()); err != nil && err != http.ErrServerClosed {
			s.E.Logger.Fatalf("shutting down the server: %v", err)
		}
	}()

	waitForShutdown()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := s.E.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
	// Modules shut down in reverse boot order.
	for i := len(s.modules) - 1; i >= 0; i-- {
		if err := s.modules[i].Shutdown(shutdownCtx); err != nil {
			slog.Error("Module shutdown failed", "module", s.modules[i].Name(), "error", err)
		}
	}
	if err := s.Runtime.Close(); err != nil {
		slog.Error("Runtime close failed", "error", err)
	}
	if err := s.Bus.Close(); err != nil {
		slog.Error("Bus close failed", "error", err)
	}
	if s.db != nil {
		s.db.Close(shutdownCtx)
	}
	if s.otelCleanup != nil {
		s.otelCleanup()
	}
}

// waitForShutdown blocks until an interrupt or terminate signal is received.
func waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
}
