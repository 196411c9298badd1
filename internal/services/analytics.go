package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/marketpulse/marketpulse/internal/cache"
	"github.com/marketpulse/marketpulse/internal/google"
	"github.com/marketpulse/marketpulse/internal/googleauth"
	"github.com/marketpulse/marketpulse/internal/util"

	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"golang.org/x/sync/errgroup"
)

// TrafficMetrics is the common metric set of all analytics reports.
type TrafficMetrics struct {
	Sessions                      int64   `json:"sessions"`
	ScreenPageViews               int64   `json:"screen_page_views"`
	BounceRatePercent             float64 `json:"bounce_rate_percent"`
	AverageSessionDurationSeconds float64 `json:"average_session_duration_seconds"`
	ActiveUsers                   int64   `json:"active_users"`
}

// DailyTraffic is one day of traffic metrics.
type DailyTraffic struct {
	Date string `json:"date"`
	TrafficMetrics
}

// PageTraffic is the traffic of one page over the whole range.
type PageTraffic struct {
	Page  string `json:"page"`
	Title string `json:"title"`
	TrafficMetrics
}

// AnalyticsService runs Google Analytics reports against the user's
// configured GA4 property.
type AnalyticsService struct {
	resolver  CredentialResolver
	configs   PlatformConfigStore
	reports   cache.Cache[json.RawMessage]
	ttl       time.Duration
	newClient func(ctx context.Context, authorized *googleauth.AuthorizedClient) (google.AnalyticsClient, error)
}

func NewAnalyticsService(
	resolver CredentialResolver,
	configs PlatformConfigStore,
	reports cache.Cache[json.RawMessage],
	ttl time.Duration,
) *AnalyticsService {
	return &AnalyticsService{
		resolver:  resolver,
		configs:   configs,
		reports:   reports,
		ttl:       ttl,
		newClient: google.NewAnalyticsClient,
	}
}

// connect loads the configured property id and an authorized client
// concurrently; both are required for every report.
func (s *AnalyticsService) connect(ctx context.Context, userID string) (string, google.AnalyticsClient, error) {
	var propertyID string
	var client google.AnalyticsClient

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		config, err := s.configs.GetPlatformConfigByUserID(userID)
		if err != nil {
			return err
		}
		propertyID = config.Analytics().PropertyID
		if propertyID == "" {
			return ErrAnalyticsPropertyRequired
		}
		return nil
	})
	g.Go(func() error {
		authorized, err := s.resolver.Resolve(ctx, googleauth.PlatformAnalytics, userID)
		if err != nil {
			return err
		}
		client, err = s.newClient(ctx, authorized)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", nil, err
	}
	return propertyID, client, nil
}

func trafficMetricSet() []*analyticsdata.Metric {
	return []*analyticsdata.Metric{
		{Name: "sessions"},
		{Name: "screenPageViews"},
		{Name: "bounceRate"},
		{Name: "averageSessionDuration"},
		{Name: "activeUsers"},
	}
}

func parseTrafficMetrics(values []*analyticsdata.MetricValue) TrafficMetrics {
	if len(values) < 5 {
		return TrafficMetrics{}
	}
	sessions, _ := strconv.ParseInt(values[0].Value, 10, 64)
	views, _ := strconv.ParseInt(values[1].Value, 10, 64)
	bounceRate, _ := strconv.ParseFloat(values[2].Value, 64)
	duration, _ := strconv.ParseFloat(values[3].Value, 64)
	users, _ := strconv.ParseInt(values[4].Value, 10, 64)

	return TrafficMetrics{
		Sessions:                      sessions,
		ScreenPageViews:               views,
		BounceRatePercent:             util.Round2(bounceRate * 100),
		AverageSessionDurationSeconds: util.Round2(duration),
		ActiveUsers:                   users,
	}
}

func (s *AnalyticsService) key(userID, method string, r DateRange) cache.ServiceKey {
	return cache.ServiceKey{
		UserID:    userID,
		Service:   googleauth.PlatformAnalytics.String(),
		Method:    method,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}
}

// Overall returns range totals. An empty range yields all-zero metrics.
func (s *AnalyticsService) Overall(ctx context.Context, userID string, r DateRange) (TrafficMetrics, error) {
	return cache.ReadThrough(ctx, s.reports, s.key(userID, "get-overall", r), s.ttl,
		func(ctx context.Context) (TrafficMetrics, error) {
			propertyID, client, err := s.connect(ctx, userID)
			if err != nil {
				return TrafficMetrics{}, err
			}

			resp, err := client.RunReport(ctx, propertyID, &analyticsdata.RunReportRequest{
				DateRanges: []*analyticsdata.DateRange{{StartDate: r.StartDate, EndDate: r.EndDate}},
				Metrics:    trafficMetricSet(),
			})
			if err != nil {
				return TrafficMetrics{}, err
			}
			if resp.RowCount == 0 || len(resp.Rows) == 0 {
				return TrafficMetrics{}, nil
			}
			return parseTrafficMetrics(resp.Rows[0].MetricValues), nil
		})
}

// Daily returns one row per day in ascending date order.
func (s *AnalyticsService) Daily(ctx context.Context, userID string, r DateRange) ([]DailyTraffic, error) {
	return cache.ReadThrough(ctx, s.reports, s.key(userID, "get-daily", r), s.ttl,
		func(ctx context.Context) ([]DailyTraffic, error) {
			propertyID, client, err := s.connect(ctx, userID)
			if err != nil {
				return nil, err
			}

			resp, err := client.RunReport(ctx, propertyID, &analyticsdata.RunReportRequest{
				Dimensions: []*analyticsdata.Dimension{{Name: "date"}},
				DateRanges: []*analyticsdata.DateRange{{StartDate: r.StartDate, EndDate: r.EndDate}},
				Metrics:    trafficMetricSet(),
				OrderBys: []*analyticsdata.OrderBy{
					{Dimension: &analyticsdata.DimensionOrderBy{DimensionName: "date"}},
				},
			})
			if err != nil {
				return nil, err
			}

			daily := make([]DailyTraffic, 0, len(resp.Rows))
			for _, row := range resp.Rows {
				if len(row.DimensionValues) == 0 {
					continue
				}
				daily = append(daily, DailyTraffic{
					Date:           util.ReformatReportDate(row.DimensionValues[0].Value),
					TrafficMetrics: parseTrafficMetrics(row.MetricValues),
				})
			}
			return daily, nil
		})
}

// Pages returns the top pages by sessions, optionally narrowed by a substring
// match on the page URL. An empty search matches every page.
func (s *AnalyticsService) Pages(ctx context.Context, userID string, q FilteredQuery) ([]PageTraffic, error) {
	key := cache.AdvancedServiceKey{
		ServiceKey: s.key(userID, "get-pages", q.DateRange),
		Limit:      q.Limit,
		Search:     q.Search,
	}
	return cache.ReadThrough(ctx, s.reports, key, s.ttl,
		func(ctx context.Context) ([]PageTraffic, error) {
			propertyID, client, err := s.connect(ctx, userID)
			if err != nil {
				return nil, err
			}

			resp, err := client.RunReport(ctx, propertyID, &analyticsdata.RunReportRequest{
				Dimensions: []*analyticsdata.Dimension{{Name: "fullPageUrl"}, {Name: "pageTitle"}},
				DateRanges: []*analyticsdata.DateRange{{StartDate: q.StartDate, EndDate: q.EndDate}},
				Metrics:    trafficMetricSet(),
				OrderBys: []*analyticsdata.OrderBy{
					{Metric: &analyticsdata.MetricOrderBy{MetricName: "sessions"}, Desc: true},
				},
				DimensionFilter: &analyticsdata.FilterExpression{
					Filter: &analyticsdata.Filter{
						FieldName: "fullPageUrl",
						StringFilter: &analyticsdata.StringFilter{
							MatchType:     "CONTAINS",
							Value:         q.Search,
							CaseSensitive: false,
						},
					},
				},
				Limit: int64(q.Limit),
			})
			if err != nil {
				return nil, err
			}

			pages := make([]PageTraffic, 0, len(resp.Rows))
			for _, row := range resp.Rows {
				if len(row.DimensionValues) < 2 {
					continue
				}
				pages = append(pages, PageTraffic{
					Page:           row.DimensionValues[0].Value,
					Title:          row.DimensionValues[1].Value,
					TrafficMetrics: parseTrafficMetrics(row.MetricValues),
				})
			}
			return pages, nil
		})
}
