package google

import (
	"context"

	"github.com/marketpulse/marketpulse/internal/googleauth"

	"google.golang.org/api/option"
	searchconsole "google.golang.org/api/searchconsole/v1"
)

// Site is a Search Console property the user can read.
type Site struct {
	SiteURL         string `json:"site_url"`
	PermissionLevel string `json:"permission_level"`
}

// SearchConsoleClient covers the Search Console API calls the report services
// need.
type SearchConsoleClient interface {
	Query(ctx context.Context, siteURL string, req *searchconsole.SearchAnalyticsQueryRequest) (*searchconsole.SearchAnalyticsQueryResponse, error)
	ListSites(ctx context.Context) ([]Site, error)
}

type searchConsoleClient struct {
	service *searchconsole.Service
}

// NewSearchConsoleClient builds a Search Console service over the user's
// authorized transport.
func NewSearchConsoleClient(ctx context.Context, authorized *googleauth.AuthorizedClient) (SearchConsoleClient, error) {
	service, err := searchconsole.NewService(ctx, option.WithHTTPClient(authorized.HTTPClient(ctx)))
	if err != nil {
		return nil, err
	}
	return &searchConsoleClient{service: service}, nil
}

func (c *searchConsoleClient) Query(ctx context.Context, siteURL string, req *searchconsole.SearchAnalyticsQueryRequest) (*searchconsole.SearchAnalyticsQueryResponse, error) {
	return c.service.Searchanalytics.Query(siteURL, req).Context(ctx).Do()
}

func (c *searchConsoleClient) ListSites(ctx context.Context) ([]Site, error) {
	resp, err := c.service.Sites.List().Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	sites := make([]Site, 0, len(resp.SiteEntry))
	for _, entry := range resp.SiteEntry {
		sites = append(sites, Site{
			SiteURL:         entry.SiteUrl,
			PermissionLevel: entry.PermissionLevel,
		})
	}
	return sites, nil
}
