package fetcher

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/adrata/crm-ops/internal/match"
	"github.com/adrata/crm-ops/internal/model"
)

// Recognized company-list column names, lowercased. Warm lists come from
// several exports and don't agree on headers.
var companyColumnAliases = map[string]string{
	"name":         "name",
	"company":      "name",
	"company name": "name",
	"website":      "website",
	"url":          "website",
	"domain":       "domain",
	"linkedin":     "linkedin",
	"linkedin url": "linkedin",
	"owner":        "owner",
	"owner id":     "owner",
}

// MapCompanies converts header+rows into company records. Rows missing
// both website and domain are skipped and counted, not failed: list
// exports routinely have blank lines. Domain is derived from the website
// when absent.
func MapCompanies(header []string, rows [][]string) ([]model.Company, int, error) {
	if len(header) == 0 {
		return nil, 0, eris.New("fetcher: company list has no header row")
	}

	cols := make(map[string]int)
	for i, h := range header {
		if key, ok := companyColumnAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, dup := cols[key]; !dup {
				cols[key] = i
			}
		}
	}
	if _, ok := cols["name"]; !ok {
		return nil, 0, eris.New("fetcher: company list has no name column")
	}

	cell := func(row []string, key string) string {
		i, ok := cols[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var companies []model.Company
	skipped := 0
	for _, row := range rows {
		c := model.Company{
			Name:        cell(row, "name"),
			Website:     cell(row, "website"),
			Domain:      cell(row, "domain"),
			LinkedInURL: cell(row, "linkedin"),
			OwnerID:     cell(row, "owner"),
		}
		if c.Domain == "" {
			c.Domain = match.NormalizeIdentifier(c.Website)
		}
		if c.Name == "" || c.Domain == "" {
			skipped++
			continue
		}
		companies = append(companies, c)
	}

	return companies, skipped, nil
}
