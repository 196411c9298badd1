package services

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/marketpulse/marketpulse/internal/google"
	"github.com/marketpulse/marketpulse/internal/googleauth"
	"github.com/marketpulse/marketpulse/internal/models"
	"github.com/marketpulse/marketpulse/internal/store"

	"golang.org/x/sync/errgroup"
)

// AnalyticsProbe reports the GA4 connection state with the selectable
// property options.
type AnalyticsProbe struct {
	Connected bool              `json:"connected"`
	Current   google.Property   `json:"current"`
	Options   []google.Property `json:"options"`
}

// SearchConsoleProbe reports the Search Console connection state with the
// selectable site options.
type SearchConsoleProbe struct {
	Connected bool                       `json:"connected"`
	Current   models.SearchConsoleConfig `json:"current"`
	Options   []google.Site              `json:"options"`
}

// AdsProbe reports the Google Ads connection state with the accessible
// customer account ids.
type AdsProbe struct {
	Connected bool             `json:"connected"`
	Current   models.AdsConfig `json:"current"`
	Options   []string         `json:"options"`
}

// PlatformStatus is the combined connection state of all platforms.
type PlatformStatus struct {
	GoogleAnalytics     AnalyticsProbe     `json:"google_analytics"`
	GoogleSearchConsole SearchConsoleProbe `json:"google_search_console"`
	GoogleAds           AdsProbe           `json:"google_ads"`
}

// PlatformService aggregates per-platform connection probes and owns the
// platform selection writes.
type PlatformService struct {
	credentials CredentialStore
	configs     PlatformConfigStore
	resolver    CredentialResolver

	newAnalytics     func(ctx context.Context, authorized *googleauth.AuthorizedClient) (google.AnalyticsClient, error)
	newSearchConsole func(ctx context.Context, authorized *googleauth.AuthorizedClient) (google.SearchConsoleClient, error)
	newAds           func(ctx context.Context, authorized *googleauth.AuthorizedClient, developerToken, customerID string) google.AdsClient
}

func NewPlatformService(
	credentials CredentialStore,
	configs PlatformConfigStore,
	resolver CredentialResolver,
) *PlatformService {
	return &PlatformService{
		credentials:      credentials,
		configs:          configs,
		resolver:         resolver,
		newAnalytics:     google.NewAnalyticsClient,
		newSearchConsole: google.NewSearchConsoleClient,
		newAds:           google.NewAdsClient,
	}
}

// requireCredential gates platform operations on a connected Google account.
func (s *PlatformService) requireCredential(userID string) error {
	if _, err := s.credentials.GetCredentialByUserID(userID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return googleauth.ErrCredentialNotFound
		}
		return err
	}
	return nil
}

// Upsert replaces the user's platform selections in one write.
func (s *PlatformService) Upsert(ctx context.Context, userID string, config *models.PlatformConfig) (*models.PlatformConfig, error) {
	if err := s.requireCredential(userID); err != nil {
		return nil, err
	}
	config.ID = userID
	if err := s.configs.UpsertPlatformConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// Status probes every platform concurrently. A failing probe never fails the
// aggregate: it collapses to connected=false with zero-value current and
// empty options, so one broken integration can't hide the others.
func (s *PlatformService) Status(ctx context.Context, userID string) (*PlatformStatus, error) {
	if err := s.requireCredential(userID); err != nil {
		return nil, err
	}

	var status PlatformStatus
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		status.GoogleAnalytics = s.probeAnalytics(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		status.GoogleSearchConsole = s.probeSearchConsole(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		status.GoogleAds = s.probeAds(ctx, userID)
	}()
	wg.Wait()

	return &status, nil
}

func (s *PlatformService) probeAnalytics(ctx context.Context, userID string) AnalyticsProbe {
	disconnected := AnalyticsProbe{Options: []google.Property{}}

	config, err := s.configs.GetPlatformConfigByUserID(userID)
	if err != nil {
		log.Printf("platform: analytics probe for %s: %v", userID, err)
		return disconnected
	}
	propertyID := config.Analytics().PropertyID
	if propertyID == "" {
		return disconnected
	}

	authorized, err := s.resolver.Resolve(ctx, googleauth.PlatformAnalytics, userID)
	if err != nil {
		log.Printf("platform: analytics probe for %s: %v", userID, err)
		return disconnected
	}
	client, err := s.newAnalytics(ctx, authorized)
	if err != nil {
		log.Printf("platform: analytics probe for %s: %v", userID, err)
		return disconnected
	}

	var current google.Property
	var options []google.Property
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = client.CurrentProperty(ctx, propertyID)
		return err
	})
	g.Go(func() error {
		var err error
		options, err = client.ListProperties(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("platform: analytics probe for %s: %v", userID, err)
		return disconnected
	}

	return AnalyticsProbe{Connected: true, Current: current, Options: options}
}

func (s *PlatformService) probeSearchConsole(ctx context.Context, userID string) SearchConsoleProbe {
	disconnected := SearchConsoleProbe{
		Current: models.SearchConsoleConfig{PropertyType: models.PropertyTypeNotSet},
		Options: []google.Site{},
	}

	config, err := s.configs.GetPlatformConfigByUserID(userID)
	if err != nil {
		log.Printf("platform: search console probe for %s: %v", userID, err)
		return disconnected
	}
	current := config.SearchConsole()
	if current.PropertyName == "" || current.PropertyType == models.PropertyTypeNotSet {
		return disconnected
	}

	authorized, err := s.resolver.Resolve(ctx, googleauth.PlatformSearchConsole, userID)
	if err != nil {
		log.Printf("platform: search console probe for %s: %v", userID, err)
		return disconnected
	}
	client, err := s.newSearchConsole(ctx, authorized)
	if err != nil {
		log.Printf("platform: search console probe for %s: %v", userID, err)
		return disconnected
	}

	options, err := client.ListSites(ctx)
	if err != nil {
		log.Printf("platform: search console probe for %s: %v", userID, err)
		return disconnected
	}

	return SearchConsoleProbe{Connected: true, Current: current, Options: options}
}

func (s *PlatformService) probeAds(ctx context.Context, userID string) AdsProbe {
	disconnected := AdsProbe{Options: []string{}}

	config, err := s.configs.GetPlatformConfigByUserID(userID)
	if err != nil {
		log.Printf("platform: ads probe for %s: %v", userID, err)
		return disconnected
	}
	current := config.Ads()
	if current.ManagerAccountDeveloperToken == "" || current.CustomerAccountID == "" {
		return disconnected
	}

	authorized, err := s.resolver.Resolve(ctx, googleauth.PlatformAds, userID)
	if err != nil {
		log.Printf("platform: ads probe for %s: %v", userID, err)
		return disconnected
	}
	client := s.newAds(ctx, authorized, current.ManagerAccountDeveloperToken, current.CustomerAccountID)

	options, err := client.ListAccessibleCustomers(ctx)
	if err != nil {
		log.Printf("platform: ads probe for %s: %v", userID, err)
		return disconnected
	}

	return AdsProbe{Connected: true, Current: current, Options: options}
}
