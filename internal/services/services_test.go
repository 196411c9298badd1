package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/marketpulse/marketpulse/internal/cache"
	"github.com/marketpulse/marketpulse/internal/googleauth"
	"github.com/marketpulse/marketpulse/internal/models"
	"github.com/marketpulse/marketpulse/internal/store"
)

// Shared fakes for the service tests. Fetch-layer clients are faked per test
// file; these cover the stores and the resolver.

type fakeConfigs struct {
	configs map[string]*models.PlatformConfig
	err     error
}

func newFakeConfigs(configs ...*models.PlatformConfig) *fakeConfigs {
	f := &fakeConfigs{configs: map[string]*models.PlatformConfig{}}
	for _, c := range configs {
		f.configs[c.ID] = c
	}
	return f
}

func (f *fakeConfigs) UpsertPlatformConfig(config *models.PlatformConfig) error {
	if f.err != nil {
		return f.err
	}
	f.configs[config.ID] = config
	return nil
}

func (f *fakeConfigs) GetPlatformConfigByUserID(userID string) (*models.PlatformConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	if config, ok := f.configs[userID]; ok {
		return config, nil
	}
	return models.ZeroPlatformConfig(userID), nil
}

type fakeCredentials struct {
	credentials map[string]*models.GoogleCredential
}

func newFakeCredentials(credentials ...*models.GoogleCredential) *fakeCredentials {
	f := &fakeCredentials{credentials: map[string]*models.GoogleCredential{}}
	for _, c := range credentials {
		f.credentials[c.ID] = c
	}
	return f
}

func (f *fakeCredentials) CreateCredential(credential *models.GoogleCredential) error {
	if _, ok := f.credentials[credential.ID]; ok {
		return store.ErrCredentialExists
	}
	f.credentials[credential.ID] = credential
	return nil
}

func (f *fakeCredentials) GetCredentialByUserID(userID string) (*models.GoogleCredential, error) {
	credential, ok := f.credentials[userID]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	return credential, nil
}

func (f *fakeCredentials) DeleteCredentialByUserID(userID string) error {
	delete(f.credentials, userID)
	return nil
}

type fakeResolver struct {
	err        error
	authorized *googleauth.AuthorizedClient
}

func (f *fakeResolver) Resolve(ctx context.Context, platform googleauth.Platform, userID string) (*googleauth.AuthorizedClient, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.authorized, nil
}

func testAuthorized() *googleauth.AuthorizedClient {
	r := googleauth.NewResolver(nil, "client-id", "client-secret", "http://localhost/callback")
	return r.Client(&models.GoogleCredential{
		ID:           "u1",
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiryDate:   time.Now().Add(time.Hour),
	})
}

func newReportCache() cache.Cache[json.RawMessage] {
	return cache.NewMemoryCache[json.RawMessage]()
}

func analyticsTestConfig(userID string) *models.PlatformConfig {
	return &models.PlatformConfig{
		ID:                  userID,
		AnalyticsPropertyID: "315875115",
		SCPropertyType:      models.PropertyTypeDomain,
		SCPropertyName:      "vamos.es",
		AdsDeveloperToken:   "dev-token",
		AdsCustomerID:       "5872255974",
	}
}
