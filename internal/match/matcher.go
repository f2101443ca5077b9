package match

import "fmt"

// Candidate is one side of an identity comparison. Primary is a web
// address (website or bare domain); Secondary is an optional LinkedIn
// company URL. Name is diagnostic only and never decides identity.
type Candidate struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary,omitempty"`
	Name      string `json:"name,omitempty"`
}

// Factor is one examined comparison, kept for explainability.
type Factor struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Weight int    `json:"weight"`
}

// Factor names in evaluation order.
const (
	FactorDomain   = "domain"
	FactorLinkedIn = "linkedin"
	FactorName     = "name"
)

// Result is the verdict for a single comparison. Confidence is 0 exactly
// when the domain comparison failed; LinkedIn equality pads confidence but
// never establishes a match on its own.
type Result struct {
	Confidence int      `json:"confidence"`
	Factors    []Factor `json:"factors"`
	Reasoning  string   `json:"reasoning"`
}

// Config makes the previously implicit matching policy explicit.
type Config struct {
	// SecondaryWeight is the bonus for LinkedIn URL equality. Small by
	// policy: domain equality alone already yields full confidence.
	SecondaryWeight int `yaml:"secondary_weight" mapstructure:"secondary_weight"`

	// Threshold is the minimum confidence callers should accept.
	Threshold int `yaml:"threshold" mapstructure:"threshold"`
}

// DefaultConfig returns the matching policy used by batch commands.
func DefaultConfig() Config {
	return Config{SecondaryWeight: 5, Threshold: 80}
}

const primaryBaseScore = 100

// Compare scores local against external. Pure function: no side effects,
// identical inputs always produce identical results. A missing or
// unusable primary on either side is the designed no-match outcome, not
// an error.
func Compare(local, external Candidate, cfg Config) Result {
	localPrimary := NormalizeIdentifier(local.Primary)
	externalPrimary := NormalizeIdentifier(external.Primary)

	if localPrimary == "" || externalPrimary == "" {
		return Result{
			Confidence: 0,
			Factors:    []Factor{{Name: FactorDomain, Score: 0, Weight: primaryBaseScore}},
			Reasoning:  "no match: missing primary identifier",
		}
	}

	if localPrimary != externalPrimary {
		return Result{
			Confidence: 0,
			Factors:    []Factor{{Name: FactorDomain, Score: 0, Weight: primaryBaseScore}},
			Reasoning:  fmt.Sprintf("no exact domain match: %s vs %s", localPrimary, externalPrimary),
		}
	}

	confidence := primaryBaseScore
	factors := []Factor{{Name: FactorDomain, Score: primaryBaseScore, Weight: primaryBaseScore}}
	reasoning := fmt.Sprintf("exact domain match: %s", localPrimary)

	// Secondary factors are evaluated only after the primary succeeds.
	localSecondary := NormalizeIdentifier(local.Secondary)
	externalSecondary := NormalizeIdentifier(external.Secondary)
	if localSecondary != "" && externalSecondary != "" {
		score := 0
		if localSecondary == externalSecondary {
			score = primaryBaseScore
			confidence += cfg.SecondaryWeight
			reasoning += fmt.Sprintf("; linkedin match: %s", localSecondary)
		}
		factors = append(factors, Factor{Name: FactorLinkedIn, Score: score, Weight: cfg.SecondaryWeight})
	}

	// Names are a zero-weight diagnostic: a sheet-vs-CRM name mismatch on
	// a confirmed domain is worth flagging, never worth rejecting.
	localName := NormalizeName(local.Name)
	externalName := NormalizeName(external.Name)
	if localName != "" && externalName != "" {
		score := 0
		if localName == externalName {
			score = primaryBaseScore
		} else {
			reasoning += fmt.Sprintf("; names differ: %q vs %q", local.Name, external.Name)
		}
		factors = append(factors, Factor{Name: FactorName, Score: score, Weight: 0})
	}

	if confidence > 100 {
		confidence = 100
	}

	return Result{Confidence: confidence, Factors: factors, Reasoning: reasoning}
}

// Accepted reports whether the result meets the configured threshold.
func (r Result) Accepted(cfg Config) bool {
	return r.Confidence >= cfg.Threshold
}
