// Package policy implements the loan decision policy engine. The engine is a
// pure function over an applicant claim and a vendor call result: no I/O, no
// shared state, safe for concurrent use from any number of request handlers.
package policy

import "fmt"

// Mode selects which rule pipeline the engine runs. Both modes share the same
// evaluation machinery and diverge only in rule composition.
type Mode int

const (
	// ModeInsecure trusts the vendor risk level unconditionally. It exists to
	// demonstrate the blind-trust defect and for contrast in tests.
	ModeInsecure Mode = iota
	// ModeHardened validates the vendor response against explicit rules
	// before acting on it.
	ModeHardened
)

// Label returns the wire value recorded on decisions produced in this mode.
func (m Mode) Label() string {
	if m == ModeHardened {
		return "DEFENSE"
	}
	return "ATTACK"
}

// ParseMode maps a configuration string to a Mode. Unknown values default to
// the hardened pipeline; the insecure pipeline must be asked for explicitly.
func ParseMode(s string) Mode {
	switch s {
	case "insecure", "attack", "ATTACK":
		return ModeInsecure
	default:
		return ModeHardened
	}
}

// Outcome is the final disposition of a loan application.
type Outcome string

const (
	OutcomeApproved Outcome = "APPROVED"
	OutcomeDenied   Outcome = "DENIED"
	OutcomeReview   Outcome = "REVIEW"
	OutcomeError    Outcome = "ERROR"
)

// Reason codes are stable machine-readable tokens identifying the rule that
// produced a decision. They never change once emitted to the audit trail.
const (
	ReasonVendorTimeout   = "UC_TIMEOUT"
	ReasonVendorMalformed = "UC_MALFORMED"
	ReasonHighRisk        = "UC_HIGH_RISK"
	ReasonSuspiciousLow   = "UC_SUSPICIOUS_LOW"
	ReasonInconsistent    = "INCONSISTENT_DATA"
	ReasonOK              = "OK"
	ReasonBlindTrust      = "BLIND_TRUST"
)

// RiskLevelLow is the vendor's coarse "low risk" band. The insecure pipeline
// approves on this single field alone.
const RiskLevelLow = "LOW"

// VendorAssessment is the risk signal returned by the external vendor.
// It is untrusted input: RiskScore may be absent, and RiskLevel may disagree
// with the score it accompanies.
type VendorAssessment struct {
	ApplicantID string `json:"applicant_id"`
	RiskScore   *int   `json:"risk_score,omitempty"`
	RiskLevel   string `json:"risk_level,omitempty"`
}

// CallStatus classifies how the vendor call ended. Everything short of
// CallSuccess is a transport-level failure, distinct from a valid but
// suspicious assessment.
type CallStatus int

const (
	CallSuccess CallStatus = iota
	CallTimeout
	CallTransportError
	CallMalformed
)

// String returns a short name for logs and audit records.
func (s CallStatus) String() string {
	switch s {
	case CallSuccess:
		return "success"
	case CallTimeout:
		return "timeout"
	case CallTransportError:
		return "transport_error"
	case CallMalformed:
		return "malformed_response"
	}
	return fmt.Sprintf("call_status(%d)", int(s))
}

// VendorResult is the tagged outcome of a vendor call, consumed by the engine
// as ordinary data rather than as a caught fault. Assessment is non-nil only
// when Status is CallSuccess. Detail carries the raw failure description for
// the audit trail.
type VendorResult struct {
	Status     CallStatus
	Assessment *VendorAssessment
	Detail     string
}

// Decision is the single output of an evaluation. Every input combination,
// however degenerate, maps to exactly one Decision; the engine has no error
// path. IncomeMonthly and ExistingDebt echo the applicant's raw request
// values, ReasonUser is safe to show to the applicant, and ReasonInternal is
// audit-only and may embed raw request and vendor values.
type Decision struct {
	Mode           string            `json:"mode"`
	ApplicantID    string            `json:"applicant_id"`
	IncomeMonthly  string            `json:"income_monthly"`
	ExistingDebt   string            `json:"existing_debt"`
	Outcome        Outcome           `json:"decision"`
	ReasonCode     string            `json:"reason_code"`
	ReasonUser     string            `json:"reason_user"`
	ReasonInternal string            `json:"reason_internal"`
	VendorData     *VendorAssessment `json:"vendor_data,omitempty"`
}

// AuditNote flags a rule firing that must reach the audit sink. The engine
// returns notes instead of writing them so it stays free of I/O; the caller
// forwards them.
type AuditNote struct {
	Stage  string
	Code   string
	Detail string
}

// Thresholds are the tunable rule boundaries. The values have no derivation
// beyond operational experience; treat them as configuration, not as
// constants with deeper meaning.
type Thresholds struct {
	// HighRisk denies any application whose vendor score exceeds it.
	HighRisk int
	// SuspiciousLow routes implausibly favorable scores to manual review.
	SuspiciousLow int
	// DebtCeiling and IncomeFloor together form the self-reported
	// plausibility check: debt above the ceiling combined with income below
	// the floor triggers review regardless of the vendor score.
	DebtCeiling int
	IncomeFloor int
}

// DefaultThresholds returns the production rule boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighRisk:      70,
		SuspiciousLow: 10,
		DebtCeiling:   200000,
		IncomeFloor:   25000,
	}
}
