// Package store persists CRM records for the ops commands: companies and
// matches in Postgres, enrichment responses in a local SQLite cache.
package store

import (
	"context"
	"encoding/json"

	"github.com/adrata/crm-ops/internal/model"
)

// CompanyStore is what the enrichment batch needs from durable storage.
type CompanyStore interface {
	ListCompanies(ctx context.Context, filter CompanyFilter) ([]model.Company, error)
	GetCompany(ctx context.Context, id string) (*model.Company, error)
	RecordMatch(ctx context.Context, m *model.Match) error
	MarkEnriched(ctx context.Context, companyID string) error
	SetCustomFields(ctx context.Context, companyID string, custom json.RawMessage) error
}

// CompanyFilter narrows ListCompanies.
type CompanyFilter struct {
	OwnerID string // only companies owned by this user
	Limit   int    // 0 means the default cap
}
