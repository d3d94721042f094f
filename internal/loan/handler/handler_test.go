package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"lendgate/internal/audit"
	"lendgate/internal/loan"
	"lendgate/internal/platform/middleware"
	"lendgate/internal/policy"
	"lendgate/internal/vendor"
)

// HandlerSuite exercises the loan endpoints against real components: the real
// stub vendor behind a real HTTP server, the real client, engine, and audit
// sink. Only the network failure cases swap the vendor out.
type HandlerSuite struct {
	suite.Suite
	vendorSrv *httptest.Server
	sink      *audit.InMemorySink
	router    http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	vendorRouter := chi.NewRouter()
	vendor.NewStub(nil).Register(vendorRouter)
	s.vendorSrv = httptest.NewServer(vendorRouter)

	s.sink = audit.NewInMemorySink()
	s.router = s.buildRouter(policy.ModeHardened, vendor.NewHTTPClient(s.vendorSrv.URL))
}

func (s *HandlerSuite) TearDownTest() {
	s.vendorSrv.Close()
}

func (s *HandlerSuite) buildRouter(mode policy.Mode, client vendor.Client) http.Handler {
	engine := policy.New(mode, policy.DefaultThresholds())
	svc := loan.NewService(engine, client, audit.NewPublisher(s.sink), nil, nil)
	h := New(svc, nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientInfo)
	h.Register(r)
	h.RegisterAudit(r, s.sink)
	return r
}

func (s *HandlerSuite) getJSON(router http.Handler, target string) (int, map[string]json.RawMessage) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body map[string]json.RawMessage
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	return rec.Code, body
}

func (s *HandlerSuite) field(body map[string]json.RawMessage, key string) string {
	var v string
	s.Require().NoError(json.Unmarshal(body[key], &v), "field %s", key)
	return v
}

func (s *HandlerSuite) TestLoanApproved() {
	code, body := s.getJSON(s.router, "/loan?applicant_id=alice&income_monthly=30000&existing_debt=0")

	s.Equal(http.StatusOK, code)
	s.Equal("DEFENSE", s.field(body, "mode"))
	s.Equal("alice", s.field(body, "applicant_id"))
	s.Equal("30000", s.field(body, "income_monthly"))
	s.Equal("0", s.field(body, "existing_debt"))
	s.Equal("APPROVED", s.field(body, "decision"))
	s.Equal("OK", s.field(body, "reason_code"))
	s.NotEmpty(s.field(body, "reason_user"))
	s.NotEmpty(s.field(body, "reason_internal"))
	s.Contains(body, "vendor_data")
	s.Empty(s.sink.Events())
}

func (s *HandlerSuite) TestLoanSuspiciousLowGoesToReview() {
	code, body := s.getJSON(s.router, "/loan?applicant_id=attacker&income_monthly=30000&existing_debt=0")

	s.Equal(http.StatusOK, code, "an evaluated decision is a transport success")
	s.Equal("REVIEW", s.field(body, "decision"))
	s.Equal("UC_SUSPICIOUS_LOW", s.field(body, "reason_code"))
	s.Contains(body, "vendor_data")

	events := s.sink.Events()
	s.Require().Len(events, 1)
	s.Equal("UC_SUSPICIOUS_LOW", events[0].Code)
	s.NotEmpty(events[0].RequestID, "request ID middleware feeds the audit trail")
}

func (s *HandlerSuite) TestLoanInconsistentData() {
	code, body := s.getJSON(s.router, "/loan?applicant_id=bob&income_monthly=20000&existing_debt=250000")

	s.Equal(http.StatusOK, code)
	s.Equal("REVIEW", s.field(body, "decision"))
	s.Equal("INCONSISTENT_DATA", s.field(body, "reason_code"))
}

func (s *HandlerSuite) TestLoanMissingParamsDefaultToEmpty() {
	code, body := s.getJSON(s.router, "/loan")

	s.Equal(http.StatusOK, code)
	s.Equal("", s.field(body, "applicant_id"))
	s.Equal("", s.field(body, "income_monthly"))
	// Empty figures parse to 0: debt 0 does not trip the plausibility check.
	s.Equal("APPROVED", s.field(body, "decision"))
}

func (s *HandlerSuite) TestLoanVendorDownReturns502() {
	s.vendorSrv.Close()

	code, body := s.getJSON(s.router, "/loan?applicant_id=alice&income_monthly=30000&existing_debt=0")

	s.Equal(http.StatusBadGateway, code)
	s.Equal("REVIEW", s.field(body, "decision"))
	s.Equal("UC_TIMEOUT", s.field(body, "reason_code"))
	s.NotContains(body, "vendor_data")

	events := s.sink.Events()
	s.Require().Len(events, 1)
	s.Equal("vendor_failure", events[0].Stage)
}

func (s *HandlerSuite) TestLoanInsecureModeBlindTrust() {
	router := s.buildRouter(policy.ModeInsecure, vendor.NewHTTPClient(s.vendorSrv.URL))

	code, body := s.getJSON(router, "/loan?applicant_id=attacker&income_monthly=0&existing_debt=9999999")

	s.Equal(http.StatusOK, code)
	s.Equal("ATTACK", s.field(body, "mode"))
	s.Equal("APPROVED", s.field(body, "decision"))
	s.Equal("BLIND_TRUST", s.field(body, "reason_code"))
	s.Empty(s.sink.Events(), "the insecure pipeline audits nothing")
}

func (s *HandlerSuite) TestApplyRendersDecisionPage() {
	req := httptest.NewRequest(http.MethodGet, "/apply?applicant_id=alice&income_monthly=30000&existing_debt=0", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Header().Get("Content-Type"), "text/html")
	s.Contains(rec.Body.String(), "APPROVED")
	s.Contains(rec.Body.String(), "Your application can be approved.")
}

func (s *HandlerSuite) TestHomeRendersForm() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `name="applicant_id"`)
	s.NotContains(rec.Body.String(), "Reason code", "no result block without a submission")
}

func (s *HandlerSuite) TestAuditRecent() {
	s.sink.Append(context.Background(), audit.Event{Code: "UC_TIMEOUT", Stage: "vendor_failure"})
	s.sink.Append(context.Background(), audit.Event{Code: "INCONSISTENT_DATA", Stage: "plausibility"})

	req := httptest.NewRequest(http.MethodGet, "/internal/audit/recent?limit=1", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)

	var body []map[string]any
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	s.Require().Len(body, 1)
	s.Equal("INCONSISTENT_DATA", body[0]["code"], "most recent first")
}

func (s *HandlerSuite) TestAuditRecentRejectsBadLimit() {
	req := httptest.NewRequest(http.MethodGet, "/internal/audit/recent?limit=banana", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
}
