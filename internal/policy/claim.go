package policy

import (
	"strconv"
	"strings"
)

// ApplicantClaim holds the applicant's self-reported financial figures. The
// raw strings are kept for echoing back in responses; the parsed integers are
// what the rules compute on.
type ApplicantClaim struct {
	ApplicantID   string
	RawIncome     string
	RawDebt       string
	IncomeMonthly int
	ExistingDebt  int
}

// NormalizeClaim builds an ApplicantClaim from raw request parameters.
// Non-numeric figures degrade to 0 rather than failing the request. Zero is
// the conservative default: it leans toward tripping the plausibility check,
// never toward clearing it.
func NormalizeClaim(applicantID, income, debt string) ApplicantClaim {
	return ApplicantClaim{
		ApplicantID:   applicantID,
		RawIncome:     income,
		RawDebt:       debt,
		IncomeMonthly: toInt(income, 0),
		ExistingDebt:  toInt(debt, 0),
	}
}

func toInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
