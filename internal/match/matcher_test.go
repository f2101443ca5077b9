package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HTTPS://WWW.Foo.com/", "foo.com"},
		{"http://foo.com", "foo.com"},
		{"www.foo.com", "foo.com"},
		{"foo.com/", "foo.com"},
		{"  Foo.COM  ", "foo.com"},
		{"https://linkedin.com/company/acme/", "linkedin.com/company/acme"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeIdentifier(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "ACME", NormalizeName("Acme, Inc."))
	assert.Equal(t, "MUELLER AND SONS", NormalizeName("Müller & Sons LLC"))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestCompare_EquivalentVariantsMatch(t *testing.T) {
	cfg := DefaultConfig()

	variants := []string{"HTTPS://WWW.Acme.com/", "http://acme.com", "www.acme.com", "acme.com/"}
	for _, v := range variants {
		r := Compare(Candidate{Primary: v}, Candidate{Primary: "acme.com"}, cfg)
		assert.Equal(t, 100, r.Confidence, "variant %q", v)
		require.Len(t, r.Factors, 1)
		assert.Equal(t, FactorDomain, r.Factors[0].Name)
		assert.Equal(t, 100, r.Factors[0].Score)
		assert.Contains(t, r.Reasoning, "exact domain match: acme.com")
	}
}

func TestCompare_PrimaryMismatchIsZero(t *testing.T) {
	cfg := DefaultConfig()

	r := Compare(Candidate{Primary: "acme.com"}, Candidate{Primary: "acme.io"}, cfg)
	assert.Equal(t, 0, r.Confidence)
	assert.Contains(t, r.Reasoning, "no exact domain match: acme.com vs acme.io")
}

func TestCompare_SecondaryCannotRescuePrimary(t *testing.T) {
	cfg := DefaultConfig()

	local := Candidate{Primary: "acme.com", Secondary: "linkedin.com/company/acme"}
	external := Candidate{Primary: "acme.io", Secondary: "linkedin.com/company/acme"}

	r := Compare(local, external, cfg)
	assert.Equal(t, 0, r.Confidence)
	// The secondary factor must not even be evaluated.
	require.Len(t, r.Factors, 1)
	assert.Equal(t, FactorDomain, r.Factors[0].Name)
}

func TestCompare_SecondaryPadsButCapsAt100(t *testing.T) {
	cfg := DefaultConfig()

	local := Candidate{Primary: "https://www.acme.com", Secondary: "https://www.linkedin.com/company/acme/"}
	external := Candidate{Primary: "acme.com", Secondary: "linkedin.com/company/acme"}

	r := Compare(local, external, cfg)
	assert.Equal(t, 100, r.Confidence)
	require.Len(t, r.Factors, 2)
	assert.Equal(t, FactorLinkedIn, r.Factors[1].Name)
	assert.Equal(t, 100, r.Factors[1].Score)
	assert.Equal(t, cfg.SecondaryWeight, r.Factors[1].Weight)
	assert.Contains(t, r.Reasoning, "linkedin match")
}

func TestCompare_SecondaryMismatchRecorded(t *testing.T) {
	cfg := DefaultConfig()

	local := Candidate{Primary: "acme.com", Secondary: "linkedin.com/company/acme"}
	external := Candidate{Primary: "acme.com", Secondary: "linkedin.com/company/acme-corp"}

	r := Compare(local, external, cfg)
	assert.Equal(t, 100, r.Confidence)
	require.Len(t, r.Factors, 2)
	assert.Equal(t, 0, r.Factors[1].Score)
}

func TestCompare_NameFactorIsDiagnosticOnly(t *testing.T) {
	cfg := DefaultConfig()

	local := Candidate{Primary: "acme.com", Name: "Acme, Inc."}
	external := Candidate{Primary: "acme.com", Name: "ACMÉ INC"}

	r := Compare(local, external, cfg)
	assert.Equal(t, 100, r.Confidence)
	require.Len(t, r.Factors, 2)
	assert.Equal(t, FactorName, r.Factors[1].Name)
	assert.Equal(t, 100, r.Factors[1].Score)
	assert.Equal(t, 0, r.Factors[1].Weight)
}

func TestCompare_NameMismatchFlaggedNotRejected(t *testing.T) {
	cfg := DefaultConfig()

	local := Candidate{Primary: "acme.com", Name: "Acme Inc"}
	external := Candidate{Primary: "acme.com", Name: "Globex Corp"}

	r := Compare(local, external, cfg)
	assert.Equal(t, 100, r.Confidence, "names never decide identity")
	require.Len(t, r.Factors, 2)
	assert.Equal(t, 0, r.Factors[1].Score)
	assert.Contains(t, r.Reasoning, "names differ")
}

func TestCompare_NameSkippedWhenPrimaryFails(t *testing.T) {
	cfg := DefaultConfig()

	local := Candidate{Primary: "acme.com", Name: "Acme Inc"}
	external := Candidate{Primary: "acme.io", Name: "Acme Inc"}

	r := Compare(local, external, cfg)
	assert.Equal(t, 0, r.Confidence)
	require.Len(t, r.Factors, 1, "no diagnostics after a primary mismatch")
}

func TestCompare_MissingPrimaryIsDesignedNoMatch(t *testing.T) {
	cfg := DefaultConfig()

	r := Compare(Candidate{}, Candidate{Primary: "acme.com"}, cfg)
	assert.Equal(t, 0, r.Confidence)
	assert.Contains(t, r.Reasoning, "missing primary identifier")

	r = Compare(Candidate{Primary: "acme.com"}, Candidate{}, cfg)
	assert.Equal(t, 0, r.Confidence)
}

func TestCompare_ConfidenceAlwaysBounded(t *testing.T) {
	cfg := Config{SecondaryWeight: 500, Threshold: 80}

	inputs := []Candidate{
		{},
		{Primary: "acme.com"},
		{Primary: "https://www.acme.com/", Secondary: "linkedin.com/company/acme"},
		{Primary: "other.com", Secondary: "linkedin.com/company/acme"},
	}
	for _, local := range inputs {
		for _, external := range inputs {
			r := Compare(local, external, cfg)
			assert.GreaterOrEqual(t, r.Confidence, 0)
			assert.LessOrEqual(t, r.Confidence, 100)
		}
	}
}

func TestResult_Accepted(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, Result{Confidence: 100}.Accepted(cfg))
	assert.True(t, Result{Confidence: 80}.Accepted(cfg))
	assert.False(t, Result{Confidence: 0}.Accepted(cfg))
}
