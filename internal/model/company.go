// Package model defines the record types shared across crm-ops commands.
package model

import (
	"encoding/json"
	"time"
)

// Company is a local CRM company record as read from the companies table.
type Company struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Website     string          `json:"website,omitempty" db:"website"`
	Domain      string          `json:"domain,omitempty" db:"domain"`
	LinkedInURL string          `json:"linkedin_url,omitempty" db:"linkedin_url"`
	OwnerID     string          `json:"owner_id,omitempty" db:"owner_id"`
	Custom      json.RawMessage `json:"custom_fields,omitempty" db:"custom_fields"`

	LastEnrichedAt *time.Time `json:"last_enriched_at,omitempty" db:"last_enriched_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Lead is a speedrun queue entry. Rank is recomputed by the rank command and
// is only meaningful within its scope (global or per owner).
type Lead struct {
	ID             string    `json:"id" db:"id"`
	CompanyID      string    `json:"company_id" db:"company_id"`
	OwnerID        string    `json:"owner_id,omitempty" db:"owner_id"`
	Rank           int       `json:"rank" db:"rank"`
	LastActivityAt time.Time `json:"last_activity_at" db:"last_activity_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Match records an accepted identity match between a local company and an
// external record. Confidence is the matcher's bounded score.
type Match struct {
	ID         string    `json:"id" db:"id"`
	CompanyID  string    `json:"company_id" db:"company_id"`
	Source     string    `json:"source" db:"source"`
	ExternalID string    `json:"external_id,omitempty" db:"external_id"`
	Confidence int       `json:"confidence" db:"confidence"`
	Reasoning  string    `json:"reasoning,omitempty" db:"reasoning"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// External match sources.
const (
	SourceSalesforce = "salesforce"
	SourceDataset    = "dataset"
)
