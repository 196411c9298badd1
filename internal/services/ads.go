package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/marketpulse/marketpulse/internal/cache"
	"github.com/marketpulse/marketpulse/internal/google"
	"github.com/marketpulse/marketpulse/internal/googleauth"
	"github.com/marketpulse/marketpulse/internal/models"
	"github.com/marketpulse/marketpulse/internal/util"

	"golang.org/x/sync/errgroup"
)

// AdsReport is the common metric set of all ads reports. Spend is the cost in
// the account currency; ROI relates conversion value to spend.
type AdsReport struct {
	Impressions           int64   `json:"impressions"`
	Spend                 float64 `json:"spend"`
	Currency              string  `json:"currency"`
	ConversionRatePercent float64 `json:"conversion_rate_percent"`
	CtrPercent            float64 `json:"ctr_percent"`
	RoiPercent            float64 `json:"roi_percent"`
}

// DailyAdsReport is one day of ads metrics.
type DailyAdsReport struct {
	Date string `json:"date"`
	AdsReport
}

// CampaignReport is the range performance of one campaign.
type CampaignReport struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	AdsReport
}

const adsMetricFields = "metrics.clicks, metrics.impressions, metrics.cost_micros, " +
	"metrics.conversions, metrics.conversions_value, metrics.ctr"

// AdsService runs GAQL reports against the user's configured customer
// account.
type AdsService struct {
	resolver  CredentialResolver
	configs   PlatformConfigStore
	reports   cache.Cache[json.RawMessage]
	ttl       time.Duration
	newClient func(ctx context.Context, authorized *googleauth.AuthorizedClient, developerToken, customerID string) google.AdsClient
}

func NewAdsService(
	resolver CredentialResolver,
	configs PlatformConfigStore,
	reports cache.Cache[json.RawMessage],
	ttl time.Duration,
) *AdsService {
	return &AdsService{
		resolver:  resolver,
		configs:   configs,
		reports:   reports,
		ttl:       ttl,
		newClient: google.NewAdsClient,
	}
}

func (s *AdsService) connect(ctx context.Context, userID string) (google.AdsClient, error) {
	var account models.AdsConfig
	var authorized *googleauth.AuthorizedClient

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		config, err := s.configs.GetPlatformConfigByUserID(userID)
		if err != nil {
			return err
		}
		account = config.Ads()
		if account.ManagerAccountDeveloperToken == "" || account.CustomerAccountID == "" {
			return ErrAdsAccountRequired
		}
		return nil
	})
	g.Go(func() error {
		var err error
		authorized, err = s.resolver.Resolve(ctx, googleauth.PlatformAds, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.newClient(ctx, authorized, account.ManagerAccountDeveloperToken, account.CustomerAccountID), nil
}

// currencyCode reads the account currency, defaulting to usd when the account
// doesn't report one.
func currencyCode(ctx context.Context, client google.AdsClient) (string, error) {
	rows, err := client.Search(ctx, "SELECT customer.currency_code FROM customer LIMIT 1")
	if err != nil {
		return "", err
	}
	if len(rows) == 0 || rows[0].Customer == nil || rows[0].Customer.CurrencyCode == "" {
		return "usd", nil
	}
	return strings.ToLower(rows[0].Customer.CurrencyCode), nil
}

func formatAdsReport(m *google.AdsMetrics, currency string) AdsReport {
	if m == nil {
		m = &google.AdsMetrics{}
	}

	spend := float64(m.CostMicros) / 1e6
	roi := 0.0
	if spend > 0 {
		roi = (m.ConversionsValue - spend) / spend
	}
	conversionRate := 0.0
	if m.Clicks > 0 {
		conversionRate = m.Conversions / float64(m.Clicks)
	}

	return AdsReport{
		Impressions:           m.Impressions,
		Spend:                 util.Round2(spend),
		Currency:              currency,
		ConversionRatePercent: util.Round2(conversionRate * 100),
		CtrPercent:            util.Round2(m.Ctr * 100),
		RoiPercent:            util.Round2(roi * 100),
	}
}

func (s *AdsService) key(userID, method string, r DateRange) cache.ServiceKey {
	return cache.ServiceKey{
		UserID:    userID,
		Service:   googleauth.PlatformAds.String(),
		Method:    method,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}
}

// Overall returns account-level range totals.
func (s *AdsService) Overall(ctx context.Context, userID string, r DateRange) (AdsReport, error) {
	return cache.ReadThrough(ctx, s.reports, s.key(userID, "get-overall", r), s.ttl,
		func(ctx context.Context) (AdsReport, error) {
			client, err := s.connect(ctx, userID)
			if err != nil {
				return AdsReport{}, err
			}

			query := fmt.Sprintf(
				"SELECT %s FROM customer WHERE segments.date BETWEEN '%s' AND '%s'",
				adsMetricFields, r.StartDate, r.EndDate,
			)
			rows, err := client.Search(ctx, query)
			if err != nil {
				return AdsReport{}, err
			}
			if len(rows) == 0 {
				return AdsReport{}, nil
			}

			currency, err := currencyCode(ctx, client)
			if err != nil {
				return AdsReport{}, err
			}
			return formatAdsReport(rows[0].Metrics, currency), nil
		})
}

// Daily returns account-level metrics per day in ascending date order.
func (s *AdsService) Daily(ctx context.Context, userID string, r DateRange) ([]DailyAdsReport, error) {
	return cache.ReadThrough(ctx, s.reports, s.key(userID, "get-daily", r), s.ttl,
		func(ctx context.Context) ([]DailyAdsReport, error) {
			client, err := s.connect(ctx, userID)
			if err != nil {
				return nil, err
			}

			query := fmt.Sprintf(
				"SELECT %s, segments.date FROM customer "+
					"WHERE segments.date BETWEEN '%s' AND '%s' ORDER BY segments.date ASC",
				adsMetricFields, r.StartDate, r.EndDate,
			)
			rows, err := client.Search(ctx, query)
			if err != nil {
				return nil, err
			}
			if len(rows) == 0 {
				return []DailyAdsReport{}, nil
			}

			currency, err := currencyCode(ctx, client)
			if err != nil {
				return nil, err
			}

			daily := make([]DailyAdsReport, 0, len(rows))
			for _, row := range rows {
				date := ""
				if row.Segments != nil {
					date = row.Segments.Date
				}
				daily = append(daily, DailyAdsReport{
					Date:      date,
					AdsReport: formatAdsReport(row.Metrics, currency),
				})
			}
			return daily, nil
		})
}

// Campaigns returns active and paused campaigns that served impressions in
// the range, sorted by ROI descending.
func (s *AdsService) Campaigns(ctx context.Context, userID string, r DateRange) ([]CampaignReport, error) {
	return cache.ReadThrough(ctx, s.reports, s.key(userID, "get-campaigns", r), s.ttl,
		func(ctx context.Context) ([]CampaignReport, error) {
			client, err := s.connect(ctx, userID)
			if err != nil {
				return nil, err
			}

			query := fmt.Sprintf(
				"SELECT campaign.name, campaign.status, %s FROM campaign "+
					"WHERE campaign.status IN ('ENABLED', 'PAUSED') "+
					"AND metrics.impressions > 0 "+
					"AND segments.date BETWEEN '%s' AND '%s' "+
					"ORDER BY metrics.impressions DESC",
				adsMetricFields, r.StartDate, r.EndDate,
			)
			rows, err := client.Search(ctx, query)
			if err != nil {
				return nil, err
			}
			if len(rows) == 0 {
				return []CampaignReport{}, nil
			}

			currency, err := currencyCode(ctx, client)
			if err != nil {
				return nil, err
			}

			campaigns := make([]CampaignReport, 0, len(rows))
			for _, row := range rows {
				if row.Campaign == nil {
					continue
				}
				campaigns = append(campaigns, CampaignReport{
					ID:        strconv.FormatInt(row.Campaign.ID, 10),
					Name:      row.Campaign.Name,
					Status:    row.Campaign.Status,
					AdsReport: formatAdsReport(row.Metrics, currency),
				})
			}
			sort.SliceStable(campaigns, func(i, j int) bool {
				return campaigns[i].RoiPercent > campaigns[j].RoiPercent
			})
			return campaigns, nil
		})
}

// CampaignByID returns one campaign's metrics per day in ascending date
// order. The id must be numeric; it is interpolated into GAQL.
func (s *AdsService) CampaignByID(ctx context.Context, userID, campaignID string, r DateRange) ([]DailyAdsReport, error) {
	if _, err := strconv.ParseInt(campaignID, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCampaignID, campaignID)
	}

	key := cache.ParamServiceKey{
		ServiceKey: s.key(userID, "get-campaign-by-id", r),
		Param:      campaignID,
	}
	return cache.ReadThrough(ctx, s.reports, key, s.ttl,
		func(ctx context.Context) ([]DailyAdsReport, error) {
			client, err := s.connect(ctx, userID)
			if err != nil {
				return nil, err
			}

			query := fmt.Sprintf(
				"SELECT campaign.name, campaign.status, %s, segments.date FROM campaign "+
					"WHERE campaign.id = %s "+
					"AND campaign.status IN ('ENABLED', 'PAUSED') "+
					"AND segments.date BETWEEN '%s' AND '%s' "+
					"ORDER BY segments.date ASC",
				adsMetricFields, campaignID, r.StartDate, r.EndDate,
			)
			rows, err := client.Search(ctx, query)
			if err != nil {
				return nil, err
			}
			if len(rows) == 0 {
				return []DailyAdsReport{}, nil
			}

			currency, err := currencyCode(ctx, client)
			if err != nil {
				return nil, err
			}

			daily := make([]DailyAdsReport, 0, len(rows))
			for _, row := range rows {
				date := ""
				if row.Segments != nil {
					date = row.Segments.Date
				}
				daily = append(daily, DailyAdsReport{
					Date:      date,
					AdsReport: formatAdsReport(row.Metrics, currency),
				})
			}
			return daily, nil
		})
}
