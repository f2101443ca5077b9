package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/adrata/crm-ops/internal/model"
	"github.com/adrata/crm-ops/internal/resilience"
	sf "github.com/adrata/crm-ops/pkg/salesforce"
)

// SalesforceProvider resolves companies against CRM accounts so local
// records can be deduped against what sales already tracks.
type SalesforceProvider struct {
	client sf.Client
}

func NewSalesforceProvider(client sf.Client) *SalesforceProvider {
	return &SalesforceProvider{client: client}
}

func (p *SalesforceProvider) Name() string { return model.SourceSalesforce }

func (p *SalesforceProvider) Lookup(ctx context.Context, company model.Company) (*Profile, error) {
	domain := strings.TrimSpace(company.Domain)
	if domain == "" {
		return nil, eris.Wrap(resilience.ErrNotFound, "enrich: company has no domain")
	}

	soql := fmt.Sprintf(
		"SELECT Id, Name, Website, LinkedIn_Profile__c FROM Account WHERE Website LIKE '%%%s%%' LIMIT 5",
		soqlEscape(domain),
	)

	var accounts []sf.Account
	if err := p.client.Query(ctx, soql, &accounts); err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, eris.Wrapf(resilience.ErrNotFound, "enrich: no account for %s", domain)
	}

	acct := accounts[0]
	return &Profile{
		ExternalID:  acct.ID,
		Name:        acct.Name,
		Website:     acct.Website,
		LinkedInURL: acct.LinkedInURL,
	}, nil
}

// RecordExternalMatch stamps the matched Account with the local company
// ID so CRM reports can join back to this system.
func (p *SalesforceProvider) RecordExternalMatch(ctx context.Context, externalID string, company model.Company) error {
	return p.client.UpdateOne(ctx, "Account", externalID, map[string]any{
		"Adrata_Company_ID__c": company.ID,
	})
}

// soqlEscape quotes characters that would break out of a SOQL string literal.
func soqlEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return r.Replace(s)
}
