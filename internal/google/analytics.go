package google

import (
	"context"
	"strings"

	"github.com/marketpulse/marketpulse/internal/googleauth"

	analyticsadmin "google.golang.org/api/analyticsadmin/v1beta"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
)

// Property is a GA4 property as exposed to API consumers.
type Property struct {
	PropertyID string `json:"property_id"`
	Name       string `json:"name"`
}

// AnalyticsClient covers the Analytics Data and Admin API calls the report
// services need.
type AnalyticsClient interface {
	RunReport(ctx context.Context, propertyID string, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error)
	CurrentProperty(ctx context.Context, propertyID string) (Property, error)
	ListProperties(ctx context.Context) ([]Property, error)
}

type analyticsClient struct {
	data  *analyticsdata.Service
	admin *analyticsadmin.Service
}

// NewAnalyticsClient builds Data and Admin API services over the user's
// authorized transport.
func NewAnalyticsClient(ctx context.Context, authorized *googleauth.AuthorizedClient) (AnalyticsClient, error) {
	httpClient := authorized.HTTPClient(ctx)

	data, err := analyticsdata.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	admin, err := analyticsadmin.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}

	return &analyticsClient{data: data, admin: admin}, nil
}

func (c *analyticsClient) RunReport(ctx context.Context, propertyID string, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error) {
	return c.data.Properties.RunReport("properties/"+propertyID, req).Context(ctx).Do()
}

func (c *analyticsClient) CurrentProperty(ctx context.Context, propertyID string) (Property, error) {
	property, err := c.admin.Properties.Get("properties/" + propertyID).Context(ctx).Do()
	if err != nil {
		return Property{}, err
	}
	return Property{PropertyID: propertyID, Name: property.DisplayName}, nil
}

// ListProperties enumerates the GA4 properties under the user's first
// account. Users with no account simply have no options.
func (c *analyticsClient) ListProperties(ctx context.Context) ([]Property, error) {
	accounts, err := c.admin.Accounts.List().Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(accounts.Accounts) == 0 {
		return []Property{}, nil
	}

	resp, err := c.admin.Properties.List().
		Filter("parent:" + accounts.Accounts[0].Name).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	properties := make([]Property, 0, len(resp.Properties))
	for _, p := range resp.Properties {
		// Resource names look like "properties/315875115".
		id := p.Name
		if idx := strings.LastIndex(id, "/"); idx >= 0 {
			id = id[idx+1:]
		}
		properties = append(properties, Property{PropertyID: id, Name: p.DisplayName})
	}
	return properties, nil
}
