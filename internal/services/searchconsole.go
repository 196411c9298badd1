package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/marketpulse/marketpulse/internal/cache"
	"github.com/marketpulse/marketpulse/internal/google"
	"github.com/marketpulse/marketpulse/internal/googleauth"
	"github.com/marketpulse/marketpulse/internal/models"
	"github.com/marketpulse/marketpulse/internal/util"

	"golang.org/x/sync/errgroup"
	searchconsole "google.golang.org/api/searchconsole/v1"
)

// SearchMetrics is the common metric set of all search reports.
type SearchMetrics struct {
	Clicks          float64 `json:"clicks"`
	Impressions     float64 `json:"impressions"`
	CtrPercent      float64 `json:"ctr_percent"`
	AveragePosition float64 `json:"average_position"`
}

// DailySearch is one day of search metrics.
type DailySearch struct {
	Date string `json:"date"`
	SearchMetrics
}

// KeywordSearch is the search performance of one query string.
type KeywordSearch struct {
	Keyword string `json:"keyword"`
	SearchMetrics
}

// SearchConsoleService runs Search Console reports against the user's
// configured property.
type SearchConsoleService struct {
	resolver  CredentialResolver
	configs   PlatformConfigStore
	reports   cache.Cache[json.RawMessage]
	ttl       time.Duration
	newClient func(ctx context.Context, authorized *googleauth.AuthorizedClient) (google.SearchConsoleClient, error)
}

func NewSearchConsoleService(
	resolver CredentialResolver,
	configs PlatformConfigStore,
	reports cache.Cache[json.RawMessage],
	ttl time.Duration,
) *SearchConsoleService {
	return &SearchConsoleService{
		resolver:  resolver,
		configs:   configs,
		reports:   reports,
		ttl:       ttl,
		newClient: google.NewSearchConsoleClient,
	}
}

// siteURL derives the Search Console site identifier from the stored
// selection. Domain properties use the sc-domain: prefix, URL-prefix
// properties are passed verbatim.
func siteURL(config models.SearchConsoleConfig) (string, error) {
	if config.PropertyName == "" || config.PropertyType == models.PropertyTypeNotSet {
		return "", ErrSearchConsolePropertyRequired
	}
	if config.PropertyType == models.PropertyTypeDomain {
		return "sc-domain:" + config.PropertyName, nil
	}
	return config.PropertyName, nil
}

func (s *SearchConsoleService) connect(ctx context.Context, userID string) (string, google.SearchConsoleClient, error) {
	var site string
	var client google.SearchConsoleClient

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		config, err := s.configs.GetPlatformConfigByUserID(userID)
		if err != nil {
			return err
		}
		site, err = siteURL(config.SearchConsole())
		return err
	})
	g.Go(func() error {
		authorized, err := s.resolver.Resolve(ctx, googleauth.PlatformSearchConsole, userID)
		if err != nil {
			return err
		}
		client, err = s.newClient(ctx, authorized)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", nil, err
	}
	return site, client, nil
}

func parseSearchMetrics(row *searchconsole.ApiDataRow) SearchMetrics {
	return SearchMetrics{
		Clicks:          row.Clicks,
		Impressions:     row.Impressions,
		CtrPercent:      util.Round2(row.Ctr * 100),
		AveragePosition: util.Round2(row.Position),
	}
}

func (s *SearchConsoleService) key(userID, method string, r DateRange) cache.ServiceKey {
	return cache.ServiceKey{
		UserID:    userID,
		Service:   googleauth.PlatformSearchConsole.String(),
		Method:    method,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}
}

// Overall returns range totals. An empty range yields all-zero metrics.
func (s *SearchConsoleService) Overall(ctx context.Context, userID string, r DateRange) (SearchMetrics, error) {
	return cache.ReadThrough(ctx, s.reports, s.key(userID, "get-overall", r), s.ttl,
		func(ctx context.Context) (SearchMetrics, error) {
			site, client, err := s.connect(ctx, userID)
			if err != nil {
				return SearchMetrics{}, err
			}

			resp, err := client.Query(ctx, site, &searchconsole.SearchAnalyticsQueryRequest{
				StartDate: r.StartDate,
				EndDate:   r.EndDate,
			})
			if err != nil {
				return SearchMetrics{}, err
			}
			if len(resp.Rows) == 0 {
				return SearchMetrics{}, nil
			}
			return parseSearchMetrics(resp.Rows[0]), nil
		})
}

// Daily returns one row per day; the API emits ISO dates directly.
func (s *SearchConsoleService) Daily(ctx context.Context, userID string, r DateRange) ([]DailySearch, error) {
	return cache.ReadThrough(ctx, s.reports, s.key(userID, "get-daily", r), s.ttl,
		func(ctx context.Context) ([]DailySearch, error) {
			site, client, err := s.connect(ctx, userID)
			if err != nil {
				return nil, err
			}

			resp, err := client.Query(ctx, site, &searchconsole.SearchAnalyticsQueryRequest{
				StartDate:  r.StartDate,
				EndDate:    r.EndDate,
				Dimensions: []string{"date"},
			})
			if err != nil {
				return nil, err
			}

			daily := make([]DailySearch, 0, len(resp.Rows))
			for _, row := range resp.Rows {
				if len(row.Keys) == 0 {
					continue
				}
				daily = append(daily, DailySearch{
					Date:          row.Keys[0],
					SearchMetrics: parseSearchMetrics(row),
				})
			}
			return daily, nil
		})
}

// Keywords returns the top search queries, optionally narrowed by a substring
// match. An empty search matches every query.
func (s *SearchConsoleService) Keywords(ctx context.Context, userID string, q FilteredQuery) ([]KeywordSearch, error) {
	key := cache.AdvancedServiceKey{
		ServiceKey: s.key(userID, "get-keywords", q.DateRange),
		Limit:      q.Limit,
		Search:     q.Search,
	}
	return cache.ReadThrough(ctx, s.reports, key, s.ttl,
		func(ctx context.Context) ([]KeywordSearch, error) {
			site, client, err := s.connect(ctx, userID)
			if err != nil {
				return nil, err
			}

			resp, err := client.Query(ctx, site, &searchconsole.SearchAnalyticsQueryRequest{
				StartDate:  q.StartDate,
				EndDate:    q.EndDate,
				Dimensions: []string{"query"},
				DimensionFilterGroups: []*searchconsole.ApiDimensionFilterGroup{
					{
						Filters: []*searchconsole.ApiDimensionFilter{
							{Dimension: "query", Operator: "contains", Expression: q.Search},
						},
					},
				},
				RowLimit: int64(q.Limit),
			})
			if err != nil {
				return nil, err
			}

			keywords := make([]KeywordSearch, 0, len(resp.Rows))
			for _, row := range resp.Rows {
				if len(row.Keys) == 0 {
					continue
				}
				keywords = append(keywords, KeywordSearch{
					Keyword:       row.Keys[0],
					SearchMetrics: parseSearchMetrics(row),
				})
			}
			return keywords, nil
		})
}
