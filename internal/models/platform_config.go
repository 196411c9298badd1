package models

import "time"

// Search Console property type values. Absent configuration is represented by
// PropertyTypeNotSet, never by an empty or missing field, so downstream
// serialization is uniform.
const (
	PropertyTypeDomain    = "domain"
	PropertyTypeURLPrefix = "url_prefix"
	PropertyTypeNotSet    = "not_set"
)

// AnalyticsConfig selects the Google Analytics property reports run against.
type AnalyticsConfig struct {
	PropertyID string `json:"property_id"`
}

// SearchConsoleConfig selects the Search Console property reports run against.
type SearchConsoleConfig struct {
	PropertyType string `json:"property_type"` // domain, url_prefix or not_set
	PropertyName string `json:"property_name"`
}

// AdsConfig selects the Google Ads account reports run against.
type AdsConfig struct {
	ManagerAccountDeveloperToken string `json:"manager_account_developer_token"`
	CustomerAccountID            string `json:"customer_account_id"`
}

// PlatformConfig is the per-user aggregate of all platform selections, stored
// as a single row keyed by user id (1:1 with the user).
type PlatformConfig struct {
	ID string `gorm:"primaryKey" json:"id"` // equals the user id

	AnalyticsPropertyID string `json:"-"`
	SCPropertyType      string `json:"-"`
	SCPropertyName      string `json:"-"`
	AdsDeveloperToken   string `json:"-"`
	AdsCustomerID       string `json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName overrides the table name used by PlatformConfig
func (PlatformConfig) TableName() string {
	return "platform_configs"
}

// Analytics returns the analytics sub-config with empty-string defaults.
func (p *PlatformConfig) Analytics() AnalyticsConfig {
	return AnalyticsConfig{PropertyID: p.AnalyticsPropertyID}
}

// SearchConsole returns the search console sub-config; an unset property type
// collapses to PropertyTypeNotSet.
func (p *PlatformConfig) SearchConsole() SearchConsoleConfig {
	propertyType := p.SCPropertyType
	if propertyType == "" {
		propertyType = PropertyTypeNotSet
	}
	return SearchConsoleConfig{
		PropertyType: propertyType,
		PropertyName: p.SCPropertyName,
	}
}

// Ads returns the ads sub-config with empty-string defaults.
func (p *PlatformConfig) Ads() AdsConfig {
	return AdsConfig{
		ManagerAccountDeveloperToken: p.AdsDeveloperToken,
		CustomerAccountID:            p.AdsCustomerID,
	}
}

// ZeroPlatformConfig returns the fully-populated default aggregate used when a
// user has no stored configuration yet.
func ZeroPlatformConfig(userID string) *PlatformConfig {
	return &PlatformConfig{
		ID:             userID,
		SCPropertyType: PropertyTypeNotSet,
	}
}
