// Package admin fans a single maintenance directive out across services
// and reports exactly which of them were affected when something fails
// partway through.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Maintainable is the maintenance surface a service exposes to the
// aggregator. ClearData must be idempotent: clearing an already-clean
// service is a no-op success.
type Maintainable interface {
	Name() string
	ClearData(ctx context.Context) error
}

// Report summarizes a maintenance run. ServicesAffected lists, in order,
// every service whose operation completed before the run ended.
type Report struct {
	Success          bool      `json:"success"`
	ServicesAffected []string  `json:"services_affected"`
	Timestamp        time.Time `json:"timestamp"`
}

// Aggregator invokes the same maintenance operation against an ordered
// list of services, sequentially.
type Aggregator struct {
	services []Maintainable
}

// NewAggregator creates an aggregator over the given services. Order
// matters: services run first-to-last and a failure stops the sequence.
func NewAggregator(services ...Maintainable) *Aggregator {
	return &Aggregator{services: services}
}

// PerformAcrossServices runs ClearData on every service in order. On the
// first failure the partial-success list is preserved in the report and
// the error names the failing service; the remaining services are never
// invoked, so callers know exactly which were affected versus untouched.
func (a *Aggregator) PerformAcrossServices(ctx context.Context) (Report, error) {
	report := Report{
		ServicesAffected: []string{},
		Timestamp:        time.Now().UTC(),
	}

	for _, svc := range a.services {
		if err := svc.ClearData(ctx); err != nil {
			slog.Error("Maintenance operation failed",
				"service", svc.Name(),
				"affected", report.ServicesAffected,
				"error", err,
			)
			return report, fmt.Errorf("maintenance failed at service %s: %w", svc.Name(), err)
		}
		report.ServicesAffected = append(report.ServicesAffected, svc.Name())
		slog.Info("Maintenance operation completed", "service", svc.Name())
	}

	report.Success = true
	return report, nil
}
