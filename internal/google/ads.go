package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/marketpulse/marketpulse/internal/googleauth"
)

// Google Ads has no official Go client; the REST surface of the API is used
// directly with GAQL queries.
const adsEndpoint = "https://googleads.googleapis.com/v17"

// AdsRow is one result row of a GAQL query. Only the attributes and metrics
// the report services select are decoded. The REST transport encodes int64
// fields as JSON strings.
type AdsRow struct {
	Campaign *AdsCampaign `json:"campaign,omitempty"`
	Customer *AdsCustomer `json:"customer,omitempty"`
	Metrics  *AdsMetrics  `json:"metrics,omitempty"`
	Segments *AdsSegments `json:"segments,omitempty"`
}

type AdsCampaign struct {
	ResourceName string `json:"resourceName,omitempty"`
	ID           int64  `json:"id,string,omitempty"`
	Name         string `json:"name,omitempty"`
	Status       string `json:"status,omitempty"`
}

type AdsCustomer struct {
	CurrencyCode string `json:"currencyCode,omitempty"`
}

type AdsMetrics struct {
	Clicks           int64   `json:"clicks,string,omitempty"`
	Impressions      int64   `json:"impressions,string,omitempty"`
	CostMicros       int64   `json:"costMicros,string,omitempty"`
	Conversions      float64 `json:"conversions,omitempty"`
	ConversionsValue float64 `json:"conversionsValue,omitempty"`
	Ctr              float64 `json:"ctr,omitempty"`
}

type AdsSegments struct {
	Date string `json:"date,omitempty"`
}

// AdsClient runs GAQL queries against one customer account.
type AdsClient interface {
	Search(ctx context.Context, query string) ([]AdsRow, error)
	ListAccessibleCustomers(ctx context.Context) ([]string, error)
}

type adsClient struct {
	httpClient     *http.Client
	endpoint       string
	developerToken string
	customerID     string
}

// NewAdsClient builds a GAQL client for the given customer account. The
// customer id may contain display dashes (123-456-7890).
func NewAdsClient(ctx context.Context, authorized *googleauth.AuthorizedClient, developerToken, customerID string) AdsClient {
	return &adsClient{
		httpClient:     authorized.HTTPClient(ctx),
		endpoint:       adsEndpoint,
		developerToken: developerToken,
		customerID:     strings.ReplaceAll(customerID, "-", ""),
	}
}

type adsSearchRequest struct {
	Query     string `json:"query"`
	PageToken string `json:"pageToken,omitempty"`
}

type adsSearchResponse struct {
	Results       []AdsRow `json:"results"`
	NextPageToken string   `json:"nextPageToken"`
}

func (c *adsClient) Search(ctx context.Context, query string) ([]AdsRow, error) {
	url := fmt.Sprintf("%s/customers/%s/googleAds:search", c.endpoint, c.customerID)

	var rows []AdsRow
	pageToken := ""
	for {
		body, err := json.Marshal(adsSearchRequest{Query: query, PageToken: pageToken})
		if err != nil {
			return nil, err
		}

		var page adsSearchResponse
		if err := c.do(ctx, http.MethodPost, url, body, &page); err != nil {
			return nil, err
		}

		rows = append(rows, page.Results...)
		if page.NextPageToken == "" {
			return rows, nil
		}
		pageToken = page.NextPageToken
	}
}

type listAccessibleCustomersResponse struct {
	ResourceNames []string `json:"resourceNames"`
}

// ListAccessibleCustomers returns the customer ids the credential can query.
func (c *adsClient) ListAccessibleCustomers(ctx context.Context) ([]string, error) {
	url := c.endpoint + "/customers:listAccessibleCustomers"

	var resp listAccessibleCustomersResponse
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.ResourceNames))
	for _, name := range resp.ResourceNames {
		ids = append(ids, strings.TrimPrefix(name, "customers/"))
	}
	return ids, nil
}

func (c *adsClient) do(ctx context.Context, method, url string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("developer-token", c.developerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("google ads request failed: %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
