package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/adrata/crm-ops/internal/db"
	"github.com/adrata/crm-ops/internal/model"
	"github.com/adrata/crm-ops/internal/rank"
	"github.com/adrata/crm-ops/internal/resilience"
)

// Postgres reads and writes the CRM database. Writes assume
// last-write-wins; there is no optimistic locking on these tables.
type Postgres struct {
	pool db.Pool
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(pool db.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const companyColumns = `id, name, website, domain, linkedin_url, owner_id, custom_fields, last_enriched_at, created_at, updated_at`

// ListCompanies returns companies ordered by creation time.
func (s *Postgres) ListCompanies(ctx context.Context, filter CompanyFilter) ([]model.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies`
	var args []any

	if filter.OwnerID != "" {
		query += ` WHERE owner_id = $1`
		args = append(args, filter.OwnerID)
	}
	query += ` ORDER BY created_at`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += ` LIMIT ` + strconv.Itoa(limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "store: list companies")
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}
	return companies, eris.Wrap(rows.Err(), "store: list companies iterate")
}

// GetCompany returns one company or resilience.ErrNotFound.
func (s *Postgres) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)

	c, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(resilience.ErrNotFound, "store: company %s", id)
		}
		return nil, err
	}
	return c, nil
}

// RecordMatch upserts an accepted match, one per company and source.
func (s *Postgres) RecordMatch(ctx context.Context, m *model.Match) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO company_matches (id, company_id, source, external_id, confidence, reasoning, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (company_id, source) DO UPDATE
		SET external_id = EXCLUDED.external_id,
		    confidence  = EXCLUDED.confidence,
		    reasoning   = EXCLUDED.reasoning,
		    created_at  = now()`,
		m.ID, m.CompanyID, m.Source, m.ExternalID, m.Confidence, m.Reasoning,
	)
	return eris.Wrapf(err, "store: record match for company %s", m.CompanyID)
}

// MarkEnriched stamps a company's last enrichment time.
func (s *Postgres) MarkEnriched(ctx context.Context, companyID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET last_enriched_at = now(), updated_at = now() WHERE id = $1`,
		companyID,
	)
	if err != nil {
		return eris.Wrapf(err, "store: mark enriched %s", companyID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(resilience.ErrNotFound, "store: company %s", companyID)
	}
	return nil
}

// SetCustomFields replaces a company's custom-fields blob. Callers go
// through model.ParseCustomFields / Encode so the version key is always
// stamped.
func (s *Postgres) SetCustomFields(ctx context.Context, companyID string, custom json.RawMessage) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET custom_fields = $1, updated_at = now() WHERE id = $2`,
		custom, companyID,
	)
	if err != nil {
		return eris.Wrapf(err, "store: set custom fields %s", companyID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(resilience.ErrNotFound, "store: company %s", companyID)
	}
	return nil
}

// BulkUpsertCompanies imports companies via a temp table and
// INSERT ... ON CONFLICT, keyed on domain. Rows without a domain are
// skipped by the caller. Returns the number of rows written.
func (s *Postgres) BulkUpsertCompanies(ctx context.Context, companies []model.Company) (int64, error) {
	if len(companies) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "store: import: begin tx")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`CREATE TEMP TABLE _tmp_import_companies (LIKE companies INCLUDING DEFAULTS) ON COMMIT DROP`)
	if err != nil {
		return 0, eris.Wrap(err, "store: import: create temp table")
	}

	now := time.Now().UTC()
	cols := []string{"id", "name", "website", "domain", "linkedin_url", "owner_id", "created_at", "updated_at"}
	rows := make([][]any, 0, len(companies))
	for _, c := range companies {
		id := c.ID
		if id == "" {
			id = uuid.New().String()
		}
		rows = append(rows, []any{id, c.Name, c.Website, c.Domain, c.LinkedInURL, c.OwnerID, now, now})
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"_tmp_import_companies"}, cols, pgx.CopyFromRows(rows)); err != nil {
		return 0, eris.Wrap(err, "store: import: copy into temp table")
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO companies (id, name, website, domain, linkedin_url, owner_id, created_at, updated_at)
		SELECT id, name, website, domain, linkedin_url, owner_id, created_at, updated_at
		FROM _tmp_import_companies
		ON CONFLICT (domain) DO UPDATE
		SET name         = EXCLUDED.name,
		    website      = EXCLUDED.website,
		    linkedin_url = EXCLUDED.linkedin_url,
		    updated_at   = EXCLUDED.updated_at`)
	if err != nil {
		return 0, eris.Wrap(err, "store: import: upsert from temp table")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "store: import: commit tx")
	}
	return tag.RowsAffected(), nil
}

// ListLeads returns the speedrun queue, most recently active first.
// Ties break on id so retrieval order is deterministic across runs.
// owner_id and rank are nullable: unassigned leads and leads that have
// never been ranked are part of the queue.
func (s *Postgres) ListLeads(ctx context.Context) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, owner_id, rank, last_activity_at, updated_at FROM leads
		 ORDER BY last_activity_at DESC, id`)
	if err != nil {
		return nil, eris.Wrap(err, "store: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		var owner *string
		var rnk *int
		if err := rows.Scan(&l.ID, &l.CompanyID, &owner, &rnk, &l.LastActivityAt, &l.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan lead")
		}
		l.OwnerID = deref(owner)
		if rnk != nil {
			l.Rank = *rnk
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// ListQueue projects the lead queue into rankable entities.
func (s *Postgres) ListQueue(ctx context.Context) ([]rank.Entity, error) {
	leads, err := s.ListLeads(ctx)
	if err != nil {
		return nil, err
	}

	entities := make([]rank.Entity, len(leads))
	for i, l := range leads {
		entities[i] = rank.Entity{ID: l.ID, OwnerID: l.OwnerID, LastActivityAt: l.LastActivityAt}
	}
	return entities, nil
}

// WriteRanks persists computed ranks in one transaction so a ranking pass
// is all-or-nothing.
func (s *Postgres) WriteRanks(ctx context.Context, assignments []rank.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "store: ranks: begin tx")
	}
	defer tx.Rollback(ctx)

	for _, a := range assignments {
		if _, err := tx.Exec(ctx,
			`UPDATE leads SET rank = $1, updated_at = now() WHERE id = $2`,
			a.Rank, a.ID,
		); err != nil {
			return eris.Wrapf(err, "store: ranks: update lead %s", a.ID)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "store: ranks: commit tx")
}

func scanCompany(row pgx.Row) (*model.Company, error) {
	var c model.Company
	var website, domain, linkedin, owner *string
	err := row.Scan(&c.ID, &c.Name, &website, &domain, &linkedin, &owner,
		&c.Custom, &c.LastEnrichedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "store: scan company")
	}
	c.Website = deref(website)
	c.Domain = deref(domain)
	c.LinkedInURL = deref(linkedin)
	c.OwnerID = deref(owner)
	return &c, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

