package main

import (
	"context"
	"os"
	"time"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"

	"github.com/adrata/crm-ops/internal/db"
	"github.com/adrata/crm-ops/internal/enrich"
	"github.com/adrata/crm-ops/internal/store"
	"github.com/adrata/crm-ops/pkg/dataset"
	sfpkg "github.com/adrata/crm-ops/pkg/salesforce"
)

func initStore(ctx context.Context) (*store.Postgres, func(), error) {
	if cfg.Store.DatabaseURL == "" {
		return nil, nil, eris.New("database URL is required (ADRATA_STORE_DATABASE_URL)")
	}
	pool, err := db.Connect(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return store.NewPostgres(pool), pool.Close, nil
}

func initCache(ctx context.Context) (*store.Cache, error) {
	cache, err := store.NewCache(cfg.Store.CachePath)
	if err != nil {
		return nil, err
	}
	if err := cache.Migrate(ctx); err != nil {
		_ = cache.Close()
		return nil, err
	}
	return cache, nil
}

func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (ADRATA_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf, sfpkg.WithRateLimit(cfg.Salesforce.RateLimit)), nil
}

// initProvider builds the lookup provider for the requested source.
func initProvider(ctx context.Context, source string) (enrich.Provider, func(), error) {
	switch source {
	case "dataset":
		if cfg.Dataset.BaseURL == "" || cfg.Dataset.APIKey == "" {
			return nil, nil, eris.New("dataset base URL and API key are required (ADRATA_DATASET_BASE_URL, ADRATA_DATASET_API_KEY)")
		}
		client := dataset.NewClient(
			cfg.Dataset.BaseURL,
			cfg.Dataset.APIKey,
			cfg.Dataset.DatasetID,
			dataset.WithRateLimit(cfg.Dataset.RateLimit),
		)
		cache, err := initCache(ctx)
		if err != nil {
			return nil, nil, err
		}
		ttl := time.Duration(cfg.Dataset.CacheTTLHours) * time.Hour
		return enrich.NewDatasetProvider(client, cache, ttl), func() { _ = cache.Close() }, nil
	case "salesforce":
		client, err := initSalesforce()
		if err != nil {
			return nil, nil, err
		}
		return enrich.NewSalesforceProvider(client), func() {}, nil
	default:
		return nil, nil, eris.Errorf("unsupported source: %s", source)
	}
}
