package handler

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lendgate/internal/audit"
	"lendgate/internal/loan"
	"lendgate/internal/policy"
	"lendgate/pkg/platform/httputil"
	"lendgate/pkg/requestcontext"
)

//go:embed templates/*.html
var templateFS embed.FS

// Service defines the interface for application processing.
type Service interface {
	Process(ctx context.Context, app loan.Application) policy.Decision
}

// AuditReader lists recent audit events for the internal endpoint.
type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// Handler wires the loan endpoints to the application service.
type Handler struct {
	service Service
	logger  *slog.Logger
	pages   *template.Template
}

// New constructs a loan handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		pages:   template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

// Register mounts the applicant-facing endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.HandleHome)
	r.Get("/apply", h.HandleApply)
	r.Get("/loan", h.HandleLoan)
}

// RegisterAudit mounts the internal audit listing backed by the given reader.
func (h *Handler) RegisterAudit(r chi.Router, reader AuditReader) {
	r.Get("/internal/audit/recent", h.handleAuditRecent(reader))
}

func applicationFromQuery(r *http.Request) loan.Application {
	q := r.URL.Query()
	return loan.Application{
		ApplicantID: q.Get("applicant_id"),
		Income:      q.Get("income_monthly"),
		Debt:        q.Get("existing_debt"),
	}
}

// statusFor maps a decision to a transport status. Every evaluated decision,
// including DENIED and REVIEW, is a successful evaluation and returns 200;
// only a failed vendor call is a gateway problem worth a 502.
func statusFor(d policy.Decision) int {
	if d.ReasonCode == policy.ReasonVendorTimeout {
		return http.StatusBadGateway
	}
	return http.StatusOK
}

// HandleLoan handles GET /loan requests, returning the decision as JSON.
func (h *Handler) HandleLoan(w http.ResponseWriter, r *http.Request) {
	app := applicationFromQuery(r)
	decision := h.service.Process(r.Context(), app)
	httputil.WriteJSON(w, statusFor(decision), decision)
}

// HandleApply handles GET /apply requests, rendering the decision page.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	app := applicationFromQuery(r)
	decision := h.service.Process(r.Context(), app)
	h.renderPage(w, r, &decision)
}

// HandleHome renders the application form without a result.
func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, nil)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, decision *policy.Decision) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages.ExecuteTemplate(w, "index.html", decision); err != nil && h.logger != nil {
		h.logger.ErrorContext(r.Context(), "render page failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
	}
}

func (h *Handler) handleAuditRecent(reader AuditReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				httputil.WriteError(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
				return
			}
			limit = n
		}

		events, err := reader.ListRecent(r.Context(), limit)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "list audit events failed",
				"request_id", requestcontext.RequestID(r.Context()),
				"error", err,
			)
			httputil.WriteError(w, http.StatusInternalServerError, "internal_error", "")
			return
		}

		httputil.WriteJSON(w, http.StatusOK, toAuditResponses(events))
	}
}

// auditEventResponse is the wire shape for the internal audit listing.
type auditEventResponse struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Mode        string    `json:"mode"`
	Stage       string    `json:"stage"`
	Code        string    `json:"code"`
	ApplicantID string    `json:"applicant_id"`
	Detail      string    `json:"detail"`
	RequestID   string    `json:"request_id,omitempty"`
	Client      string    `json:"client,omitempty"`
}

func toAuditResponses(events []audit.Event) []auditEventResponse {
	out := make([]auditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, auditEventResponse{
			ID:          e.ID,
			Timestamp:   e.Timestamp,
			Mode:        e.Mode,
			Stage:       e.Stage,
			Code:        e.Code,
			ApplicantID: e.ApplicantID,
			Detail:      e.Detail,
			RequestID:   e.RequestID,
			Client:      e.Client,
		})
	}
	return out
}
