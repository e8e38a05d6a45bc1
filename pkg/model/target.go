package model

import "net/http"

// ResolvedTarget is a concrete, retrievable location for one descriptor.
// It only lives for the duration of one download.
type ResolvedTarget struct {
	URL           string
	LocalFileName string      // provider-supplied for Nexus sources, descriptor's FileName otherwise
	Header        http.Header // extra request headers for the transfer, may be nil
}

// Progress is a snapshot of one running transfer.
type Progress struct {
	BytesDone  int64
	BytesTotal int64
	Rate       float64 // bytes per second since the transfer started
}

// Fraction returns the completed share of the transfer in [0, 1].
func (p Progress) Fraction() float64 {
	if p.BytesTotal <= 0 {
		return 0
	}
	return float64(p.BytesDone) / float64(p.BytesTotal)
}

// Outcome is the result of comparing a file digest with its expected hash.
type Outcome string

const (
	// OutcomeVerified means the digest matched.
	OutcomeVerified Outcome = "verified"
	// OutcomeMismatched means the digest differed; Verification.Actual holds it.
	OutcomeMismatched Outcome = "mismatched"
)

// Verification carries an Outcome and the digest that produced it.
type Verification struct {
	Outcome Outcome
	Actual  string
}

// Verify compares actual with expected using an exact, case-sensitive match.
func Verify(expected, actual string) Verification {
	if actual == expected {
		return Verification{Outcome: OutcomeVerified, Actual: actual}
	}
	return Verification{Outcome: OutcomeMismatched, Actual: actual}
}
