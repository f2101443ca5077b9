package enrich

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/adrata/crm-ops/internal/model"
	"github.com/adrata/crm-ops/internal/store"
	"github.com/adrata/crm-ops/pkg/dataset"
)

// DatasetProvider resolves companies against the external dataset API,
// caching responses locally so re-runs do not re-spend API calls.
type DatasetProvider struct {
	client *dataset.Client
	cache  *store.Cache
	ttl    time.Duration
}

// NewDatasetProvider wraps a dataset client. cache may be nil to disable
// caching; ttl <= 0 falls back to 7 days.
func NewDatasetProvider(client *dataset.Client, cache *store.Cache, ttl time.Duration) *DatasetProvider {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &DatasetProvider{client: client, cache: cache, ttl: ttl}
}

func (p *DatasetProvider) Name() string { return model.SourceDataset }

func (p *DatasetProvider) Lookup(ctx context.Context, company model.Company) (*Profile, error) {
	if p.cache != nil {
		if data, err := p.cache.GetProfile(ctx, company.Domain); err != nil {
			zap.L().Warn("cache read failed", zap.String("domain", company.Domain), zap.Error(err))
		} else if data != nil {
			var prof Profile
			if err := json.Unmarshal(data, &prof); err == nil {
				return &prof, nil
			}
			zap.L().Warn("discarding corrupt cache entry", zap.String("domain", company.Domain))
		}
	}

	rec, err := p.client.FilterByDomain(ctx, company.Domain)
	if err != nil {
		return nil, err
	}

	prof := &Profile{
		ExternalID:  rec.ID,
		Name:        rec.CompanyName,
		Website:     rec.Website,
		LinkedInURL: rec.LinkedInURL,
	}

	if p.cache != nil {
		data, err := json.Marshal(prof)
		if err != nil {
			return nil, eris.Wrap(err, "enrich: encode profile for cache")
		}
		if err := p.cache.SetProfile(ctx, company.Domain, model.SourceDataset, data, p.ttl); err != nil {
			zap.L().Warn("cache write failed", zap.String("domain", company.Domain), zap.Error(err))
		}
	}
	return prof, nil
}
