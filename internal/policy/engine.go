package policy

import "fmt"

// User-facing messages. These never leak vendor internals or reason codes;
// everything with raw values goes into ReasonInternal instead.
const (
	msgReview    = "Your application requires manual review."
	msgDenied    = "Your application cannot be approved based on the risk assessment."
	msgApproved  = "Your application can be approved."
	msgProcessed = "Your application has been processed."
	msgTechError = "Technical error during the credit check. Please try again later."
)

// verdict is the result of a matched rule stage.
type verdict struct {
	Outcome  Outcome
	Code     string
	User     string
	Internal string
	// Note, when non-empty, is forwarded to the audit sink together with the
	// stage name and reason code.
	Note string
}

// stage is one guarded rule in the ordered pipeline. eval returns nil when
// the guard does not match; the first non-nil verdict terminates evaluation.
type stage struct {
	name string
	eval func(claim ApplicantClaim, vendor VendorResult, t Thresholds) *verdict
}

// Engine evaluates loan applications against an ordered rule pipeline.
// The goal is to keep the rules centralized and testable: the engine owns no
// mutable state between invocations, so a single instance may serve all
// requests concurrently.
type Engine struct {
	mode       Mode
	thresholds Thresholds
	stages     []stage
}

// New constructs an engine for the given mode. Stage order is load-bearing:
// later stages never override an earlier match.
func New(mode Mode, t Thresholds) *Engine {
	e := &Engine{mode: mode, thresholds: t}
	if mode == ModeHardened {
		e.stages = hardenedStages()
	} else {
		e.stages = insecureStages()
	}
	return e
}

// Mode reports which pipeline this engine runs.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Evaluate maps an applicant claim plus a vendor call result to exactly one
// Decision. It is total: every input combination, including vendor failures
// and unparsable claims, produces a well-formed Decision with a non-empty
// reason code. Audit-worthy rule firings are returned as notes for the caller
// to forward.
func (e *Engine) Evaluate(claim ApplicantClaim, vendor VendorResult) (Decision, []AuditNote) {
	for _, s := range e.stages {
		v := s.eval(claim, vendor, e.thresholds)
		if v == nil {
			continue
		}

		d := Decision{
			Mode:           e.mode.Label(),
			ApplicantID:    claim.ApplicantID,
			IncomeMonthly:  claim.RawIncome,
			ExistingDebt:   claim.RawDebt,
			Outcome:        v.Outcome,
			ReasonCode:     v.Code,
			ReasonUser:     v.User,
			ReasonInternal: v.Internal,
			VendorData:     vendor.Assessment,
		}

		var notes []AuditNote
		if v.Note != "" {
			notes = append(notes, AuditNote{Stage: s.name, Code: v.Code, Detail: v.Note})
		}
		return d, notes
	}

	// Unreachable as long as each pipeline ends in a catch-all stage.
	return Decision{
		Mode:           e.mode.Label(),
		ApplicantID:    claim.ApplicantID,
		IncomeMonthly:  claim.RawIncome,
		ExistingDebt:   claim.RawDebt,
		Outcome:        OutcomeError,
		ReasonCode:     ReasonVendorMalformed,
		ReasonUser:     msgTechError,
		ReasonInternal: "no rule stage matched",
		VendorData:     vendor.Assessment,
	}, nil
}

// insecureStages encodes the blind-trust baseline: the vendor's coarse risk
// level is accepted as sufficient grounds for approval or denial, without
// cross-checking the score or the applicant's own figures.
func insecureStages() []stage {
	return []stage{
		{
			name: "vendor_failure",
			eval: func(_ ApplicantClaim, vendor VendorResult, _ Thresholds) *verdict {
				if vendor.Status == CallSuccess {
					return nil
				}
				return &verdict{
					Outcome:  OutcomeError,
					Code:     ReasonVendorTimeout,
					User:     msgTechError,
					Internal: fmt.Sprintf("vendor call failed: %s: %s", vendor.Status, vendor.Detail),
				}
			},
		},
		{
			name: "blind_trust",
			eval: func(_ ApplicantClaim, vendor VendorResult, _ Thresholds) *verdict {
				outcome := OutcomeDenied
				if vendor.Assessment != nil && vendor.Assessment.RiskLevel == RiskLevelLow {
					outcome = OutcomeApproved
				}
				return &verdict{
					Outcome:  outcome,
					Code:     ReasonBlindTrust,
					User:     msgProcessed,
					Internal: "No validation. Trusting vendor response only.",
				}
			},
		},
	}
}

// hardenedStages is the validated pipeline. Rule priority:
//  1. vendor failure      -> REVIEW (never silently approve or deny)
//  2. missing risk score  -> REVIEW (don't compute on missing data)
//  3. high score          -> DENIED (denial is the safe direction to trust)
//  4. implausibly low     -> REVIEW (manipulation signal, not a free pass)
//  5. debt/income check   -> REVIEW (independent of vendor data)
//  6. default             -> APPROVED, only after every gate is cleared
func hardenedStages() []stage {
	return []stage{
		{
			name: "vendor_failure",
			eval: func(_ ApplicantClaim, vendor VendorResult, _ Thresholds) *verdict {
				if vendor.Status == CallSuccess {
					return nil
				}
				return &verdict{
					Outcome:  OutcomeReview,
					Code:     ReasonVendorTimeout,
					User:     msgReview,
					Internal: "Vendor did not respond or failed within the deadline. Policy: REVIEW on vendor failure.",
					Note:     fmt.Sprintf("vendor failure: %s: %s", vendor.Status, vendor.Detail),
				}
			},
		},
		{
			name: "missing_score",
			eval: func(_ ApplicantClaim, vendor VendorResult, _ Thresholds) *verdict {
				if vendor.Assessment != nil && vendor.Assessment.RiskScore != nil {
					return nil
				}
				return &verdict{
					Outcome:  OutcomeReview,
					Code:     ReasonVendorMalformed,
					User:     msgReview,
					Internal: "Vendor response missing risk_score. Policy: REVIEW on malformed vendor data.",
					Note:     fmt.Sprintf("vendor malformed: %+v", vendor.Assessment),
				}
			},
		},
		{
			name: "high_risk",
			eval: func(_ ApplicantClaim, vendor VendorResult, t Thresholds) *verdict {
				score := *vendor.Assessment.RiskScore
				if score <= t.HighRisk {
					return nil
				}
				return &verdict{
					Outcome:  OutcomeDenied,
					Code:     ReasonHighRisk,
					User:     msgDenied,
					Internal: fmt.Sprintf("Vendor risk_score=%d > %d. Policy: DENY on high risk.", score, t.HighRisk),
				}
			},
		},
		{
			name: "suspicious_low",
			eval: func(_ ApplicantClaim, vendor VendorResult, t Thresholds) *verdict {
				score := *vendor.Assessment.RiskScore
				if score >= t.SuspiciousLow {
					return nil
				}
				return &verdict{
					Outcome:  OutcomeReview,
					Code:     ReasonSuspiciousLow,
					User:     msgReview,
					Internal: fmt.Sprintf("Vendor risk_score=%d is suspiciously low. Policy: REVIEW to prevent blind trust / manipulation.", score),
					Note:     fmt.Sprintf("suspicious low vendor score: %+v", vendor.Assessment),
				}
			},
		},
		{
			name: "plausibility",
			eval: func(claim ApplicantClaim, vendor VendorResult, t Thresholds) *verdict {
				if claim.ExistingDebt <= t.DebtCeiling || claim.IncomeMonthly >= t.IncomeFloor {
					return nil
				}
				return &verdict{
					Outcome:  OutcomeReview,
					Code:     ReasonInconsistent,
					User:     msgReview,
					Internal: fmt.Sprintf("Internal plausibility check triggered: income=%d < %d AND debt=%d > %d.", claim.IncomeMonthly, t.IncomeFloor, claim.ExistingDebt, t.DebtCeiling),
					Note:     fmt.Sprintf("inconsistent data: income=%d, debt=%d, vendor=%+v", claim.IncomeMonthly, claim.ExistingDebt, vendor.Assessment),
				}
			},
		},
		{
			name: "approve",
			eval: func(_ ApplicantClaim, vendor VendorResult, _ Thresholds) *verdict {
				return &verdict{
					Outcome:  OutcomeApproved,
					Code:     ReasonOK,
					User:     msgApproved,
					Internal: fmt.Sprintf("Vendor risk_score=%d within acceptable range and no internal red flags.", *vendor.Assessment.RiskScore),
				}
			},
		},
	}
}
