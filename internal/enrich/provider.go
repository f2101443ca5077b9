// Package enrich drives checkpointed enrichment runs: look up each
// company against an external provider, score the match, and record
// accepted matches.
package enrich

import (
	"context"

	"github.com/adrata/crm-ops/internal/model"
)

// Profile is the external record a provider returns for a company.
type Profile struct {
	ExternalID  string
	Name        string
	Website     string
	LinkedInURL string
}

// Provider looks up the external profile for a company. Implementations
// return an error wrapping resilience.ErrNotFound when the company has no
// profile on the provider side.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, company model.Company) (*Profile, error)
}

// MatchWriter is implemented by providers that can record an accepted
// match on the external system. Write-back failures are logged, not
// fatal: the local match record is the source of truth.
type MatchWriter interface {
	RecordExternalMatch(ctx context.Context, externalID string, company model.Company) error
}
