// Package services implements the report and account operations behind the
// HTTP API. Report methods are cached read-through: the cache key codec in
// internal/cache defines result identity, and every upstream fetch goes
// through a credential resolved for the platform's OAuth scope.
package services

import (
	"context"
	"errors"

	"github.com/marketpulse/marketpulse/internal/googleauth"
	"github.com/marketpulse/marketpulse/internal/models"

	"golang.org/x/oauth2"
)

var (
	// ErrInvalidCode is returned when an OAuth authorization code cannot be
	// exchanged for tokens.
	ErrInvalidCode = errors.New("invalid credentials")

	// Per-platform configuration prerequisites for running reports.
	ErrAnalyticsPropertyRequired     = errors.New("google analytics property_id is required")
	ErrSearchConsolePropertyRequired = errors.New("google search console property and property_type are required")
	ErrAdsAccountRequired            = errors.New("google ads account is required")
	ErrInvalidCampaignID             = errors.New("campaign id must be numeric")
	ErrInvalidAccessToken            = errors.New("invalid access token")
)

// CredentialResolver yields a scope-checked authorized client for a platform.
type CredentialResolver interface {
	Resolve(ctx context.Context, platform googleauth.Platform, userID string) (*googleauth.AuthorizedClient, error)
}

// CredentialAuthority covers the account-level credential operations the
// connect flow needs: code exchange and scope-free client construction.
type CredentialAuthority interface {
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Client(credential *models.GoogleCredential) *googleauth.AuthorizedClient
}

// CredentialStore persists per-user Google credentials.
type CredentialStore interface {
	CreateCredential(credential *models.GoogleCredential) error
	GetCredentialByUserID(userID string) (*models.GoogleCredential, error)
	DeleteCredentialByUserID(userID string) error
}

// PlatformConfigStore persists the per-user platform selections.
type PlatformConfigStore interface {
	UpsertPlatformConfig(config *models.PlatformConfig) error
	GetPlatformConfigByUserID(userID string) (*models.PlatformConfig, error)
}

// DateRange bounds a report. Dates are inclusive ISO days (2006-01-02),
// validated at the HTTP layer.
type DateRange struct {
	StartDate string
	EndDate   string
}

// FilteredQuery is a DateRange with result-set filtering for the endpoints
// that support it.
type FilteredQuery struct {
	DateRange
	Limit  int
	Search string
}
