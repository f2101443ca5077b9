package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrata/crm-ops/internal/model"
	"github.com/adrata/crm-ops/internal/rank"
	"github.com/adrata/crm-ops/internal/resilience"
)

func newMockStore(t *testing.T) (*Postgres, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgres(mock), mock
}

func TestPostgres_GetCompany_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM companies WHERE id = \$1`).
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetCompany(context.Background(), "missing-id")
	require.Error(t, err)
	assert.True(t, resilience.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetCompany(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM companies WHERE id = \$1`).
		WithArgs("c1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "website", "domain", "linkedin_url", "owner_id",
			"custom_fields", "last_enriched_at", "created_at", "updated_at",
		}).AddRow("c1", "Acme", ptr("https://acme.com"), ptr("acme.com"), nil, nil,
			[]byte(nil), (*time.Time)(nil), now, now))

	c, err := s.GetCompany(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, "acme.com", c.Domain)
	assert.Empty(t, c.LinkedInURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListCompanies_OwnerFilter(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM companies WHERE owner_id = \$1 ORDER BY created_at LIMIT 50`).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "website", "domain", "linkedin_url", "owner_id",
			"custom_fields", "last_enriched_at", "created_at", "updated_at",
		}).AddRow("c1", "Acme", nil, ptr("acme.com"), nil, ptr("alice"),
			[]byte(nil), (*time.Time)(nil), now, now))

	companies, err := s.ListCompanies(context.Background(), CompanyFilter{OwnerID: "alice", Limit: 50})
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "alice", companies[0].OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_RecordMatch_Upsert(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO company_matches .+ ON CONFLICT \(company_id, source\) DO UPDATE`).
		WithArgs(pgxmock.AnyArg(), "c1", model.SourceDataset, "ext-9", 100, "exact domain match: acme.com").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.RecordMatch(context.Background(), &model.Match{
		CompanyID:  "c1",
		Source:     model.SourceDataset,
		ExternalID: "ext-9",
		Confidence: 100,
		Reasoning:  "exact domain match: acme.com",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_MarkEnriched_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE companies SET last_enriched_at = now\(\)`).
		WithArgs("ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.MarkEnriched(context.Background(), "ghost")
	assert.True(t, resilience.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SetCustomFields(t *testing.T) {
	s, mock := newMockStore(t)
	blob := json.RawMessage(`{"version":2,"enrichedBy":"dataset"}`)

	mock.ExpectExec(`UPDATE companies SET custom_fields = \$1`).
		WithArgs(blob, "c1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.SetCustomFields(context.Background(), "c1", blob))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SetCustomFields_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE companies SET custom_fields = \$1`).
		WithArgs(json.RawMessage(`{}`), "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.SetCustomFields(context.Background(), "ghost", json.RawMessage(`{}`))
	assert.True(t, resilience.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func leadColumns() []string {
	return []string{"id", "company_id", "owner_id", "rank", "last_activity_at", "updated_at"}
}

func TestPostgres_ListLeads(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, company_id, owner_id, rank, last_activity_at, updated_at FROM leads`).
		WillReturnRows(pgxmock.NewRows(leadColumns()).
			AddRow("l2", "c2", ptr("alice"), intPtr(1), now, now).
			AddRow("l1", "c1", ptr("bob"), intPtr(2), now.Add(-time.Hour), now))

	leads, err := s.ListLeads(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "l2", leads[0].ID)
	assert.Equal(t, "c2", leads[0].CompanyID)
	assert.Equal(t, "alice", leads[0].OwnerID)
	assert.Equal(t, 1, leads[0].Rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListLeads_NullOwnerAndRank(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, company_id, owner_id, rank, last_activity_at, updated_at FROM leads`).
		WillReturnRows(pgxmock.NewRows(leadColumns()).
			AddRow("l1", "c1", (*string)(nil), (*int)(nil), now, now))

	leads, err := s.ListLeads(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Empty(t, leads[0].OwnerID)
	assert.Zero(t, leads[0].Rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListQueue(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, company_id, owner_id, rank, last_activity_at, updated_at FROM leads`).
		WillReturnRows(pgxmock.NewRows(leadColumns()).
			AddRow("l2", "c2", ptr("alice"), intPtr(3), now, now).
			AddRow("l1", "c1", (*string)(nil), (*int)(nil), now.Add(-time.Hour), now))

	entities, err := s.ListQueue(context.Background())
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, rank.Entity{ID: "l2", OwnerID: "alice", LastActivityAt: now}, entities[0])
	assert.Equal(t, rank.Entity{ID: "l1", OwnerID: "", LastActivityAt: now.Add(-time.Hour)}, entities[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_WriteRanks_Transactional(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE leads SET rank = \$1`).
		WithArgs(1, "l2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE leads SET rank = \$1`).
		WithArgs(2, "l1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := s.WriteRanks(context.Background(), []rank.Assignment{
		{ID: "l2", Rank: 1},
		{ID: "l1", Rank: 2},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_WriteRanks_EmptyIsNoOp(t *testing.T) {
	s, mock := newMockStore(t)

	require.NoError(t, s.WriteRanks(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_BulkUpsertCompanies(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE _tmp_import_companies`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_import_companies"},
		[]string{"id", "name", "website", "domain", "linkedin_url", "owner_id", "created_at", "updated_at"}).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO companies .+ ON CONFLICT \(domain\) DO UPDATE`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := s.BulkUpsertCompanies(context.Background(), []model.Company{
		{Name: "Acme", Domain: "acme.com"},
		{Name: "Globex", Domain: "globex.com"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func ptr(s string) *string { return &s }

func intPtr(n int) *int { return &n }
