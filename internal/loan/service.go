// Package loan orchestrates loan application processing: it normalizes the
// applicant's claim, obtains the vendor risk assessment through a bounded
// call, runs the policy engine, and forwards audit-worthy rule firings to the
// audit sink. All state is per-request; the service holds only wiring.
package loan

import (
	"context"
	"log/slog"
	"time"

	"lendgate/internal/audit"
	"lendgate/internal/loan/metrics"
	"lendgate/internal/policy"
	"lendgate/internal/vendor"
	"lendgate/pkg/requestcontext"
)

// Application is a raw inbound loan application. All fields are untrusted
// strings straight from the request; normalization happens inside Process.
type Application struct {
	ApplicantID string
	Income      string
	Debt        string
}

// Service processes loan applications.
type Service struct {
	engine  *policy.Engine
	vendor  vendor.Client
	auditor *audit.Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewService wires the processing pipeline. auditor and metrics may be nil in
// tests; the vendor client and engine are required.
func NewService(engine *policy.Engine, vendorClient vendor.Client, auditor *audit.Publisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		engine:  engine,
		vendor:  vendorClient,
		auditor: auditor,
		logger:  logger,
		metrics: m,
	}
}

// Process evaluates one application and always returns a well-formed
// decision: vendor failures and unparsable figures surface as policy
// outcomes, never as errors.
func (s *Service) Process(ctx context.Context, app Application) policy.Decision {
	start := time.Now()
	claim := policy.NormalizeClaim(app.ApplicantID, app.Income, app.Debt)

	vendorStart := time.Now()
	result := s.vendor.Fetch(ctx, app.ApplicantID)
	s.metrics.ObserveVendorCall(result.Status.String(), time.Since(vendorStart))

	decision, notes := s.engine.Evaluate(claim, result)

	for _, note := range notes {
		s.emitAudit(ctx, decision, note)
	}

	s.metrics.IncrementDecision(decision.Mode, string(decision.Outcome), decision.ReasonCode)
	s.metrics.ObserveProcessLatency(time.Since(start))

	if s.logger != nil {
		s.logger.InfoContext(ctx, "application evaluated",
			"request_id", requestcontext.RequestID(ctx),
			"applicant_id", app.ApplicantID,
			"mode", decision.Mode,
			"decision", decision.Outcome,
			"reason_code", decision.ReasonCode,
			"vendor_status", result.Status.String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	return decision
}

func (s *Service) emitAudit(ctx context.Context, decision policy.Decision, note policy.AuditNote) {
	if s.auditor == nil {
		return
	}

	event := audit.Event{
		Mode:        decision.Mode,
		Stage:       note.Stage,
		Code:        note.Code,
		ApplicantID: decision.ApplicantID,
		Detail:      note.Detail,
		RequestID:   requestcontext.RequestID(ctx),
		Client:      requestcontext.Client(ctx),
	}

	// An unhealthy audit sink must not take request handling down with it.
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"stage", note.Stage,
			"code", note.Code,
			"error", err,
		)
	}
}
