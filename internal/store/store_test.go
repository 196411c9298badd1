package store

import (
	"context"
	"testing"
	"time"

	"github.com/marketpulse/marketpulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New("sqlite", ":memory:")
	require.NoError(t, err)
	return s
}

func testCredential(userID string) *models.GoogleCredential {
	return &models.GoogleCredential{
		ID:           userID,
		AccessToken:  "access-" + userID,
		RefreshToken: "refresh-" + userID,
		Scope: "https://www.googleapis.com/auth/analytics.readonly " +
			"https://www.googleapis.com/auth/webmasters.readonly",
		ExpiryDate: time.Now().Add(time.Hour),
	}
}

func TestCreateCredential(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.CreateCredential(testCredential("u1")))

	credential, err := s.GetCredentialByUserID("u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", credential.UserID())
	assert.Equal(t, "access-u1", credential.AccessToken)
}

func TestCreateCredential_Conflict(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.CreateCredential(testCredential("u1")))

	// A second create for the same user must fail, even with fresh tokens.
	second := testCredential("u1")
	second.AccessToken = "newer-token"
	err := s.CreateCredential(second)
	assert.ErrorIs(t, err, ErrCredentialExists)

	// The original record must be untouched.
	credential, err := s.GetCredentialByUserID("u1")
	require.NoError(t, err)
	assert.Equal(t, "access-u1", credential.AccessToken)
}

func TestGetCredentialByUserID_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetCredentialByUserID("missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDeleteCredentialByUserID(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.CreateCredential(testCredential("u1")))
	require.NoError(t, s.CreateCredential(testCredential("u2")))

	require.NoError(t, s.DeleteCredentialByUserID("u1"))

	_, err := s.GetCredentialByUserID("u1")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	// Sibling users are unaffected.
	_, err = s.GetCredentialByUserID("u2")
	assert.NoError(t, err)

	// Create after delete works again.
	assert.NoError(t, s.CreateCredential(testCredential("u1")))
}

func TestDeleteCredentialByUserID_Absent(t *testing.T) {
	s := setupTestStore(t)
	assert.NoError(t, s.DeleteCredentialByUserID("missing"))
}

func TestUpsertPlatformConfig(t *testing.T) {
	s := setupTestStore(t)

	config := &models.PlatformConfig{
		ID:                  "u1",
		AnalyticsPropertyID: "315875115",
		SCPropertyType:      models.PropertyTypeDomain,
		SCPropertyName:      "vamos.es",
		AdsDeveloperToken:   "dev-token",
		AdsCustomerID:       "5872255974",
	}
	require.NoError(t, s.UpsertPlatformConfig(config))

	got, err := s.GetPlatformConfigByUserID("u1")
	require.NoError(t, err)
	assert.Equal(t, "315875115", got.Analytics().PropertyID)
	assert.Equal(t, models.PropertyTypeDomain, got.SearchConsole().PropertyType)
	assert.Equal(t, "vamos.es", got.SearchConsole().PropertyName)
	assert.Equal(t, "5872255974", got.Ads().CustomerAccountID)

	// Upsert overwrites in place; still one row per user.
	config.AnalyticsPropertyID = "999999999"
	require.NoError(t, s.UpsertPlatformConfig(config))

	got, err = s.GetPlatformConfigByUserID("u1")
	require.NoError(t, err)
	assert.Equal(t, "999999999", got.Analytics().PropertyID)

	var count int64
	require.NoError(t, s.DB().Model(&models.PlatformConfig{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetPlatformConfigByUserID_ZeroValue(t *testing.T) {
	s := setupTestStore(t)

	got, err := s.GetPlatformConfigByUserID("nobody")
	require.NoError(t, err)
	require.NotNil(t, got)

	// Absent config collapses to fully-populated defaults, never nil fields.
	assert.Equal(t, "", got.Analytics().PropertyID)
	assert.Equal(t, models.PropertyTypeNotSet, got.SearchConsole().PropertyType)
	assert.Equal(t, "", got.SearchConsole().PropertyName)
	assert.Equal(t, "", got.Ads().ManagerAccountDeveloperToken)
	assert.Equal(t, "", got.Ads().CustomerAccountID)
}

func TestHealth(t *testing.T) {
	s := setupTestStore(t)

	assert.NoError(t, s.Health(context.Background()))
}

func TestHealth_CanceledContext(t *testing.T) {
	s := setupTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Health(ctx))
}

func TestRegisterDriver(t *testing.T) {
	customDriverCalled := false
	RegisterDriver("custom", func(dsn string) gorm.Dialector {
		customDriverCalled = true
		return nil
	})

	dialector, err := GetDialector("custom", "test-dsn")
	assert.NoError(t, err)
	assert.True(t, customDriverCalled)
	assert.Nil(t, dialector)
}

func TestGetDialector_UnknownDriver(t *testing.T) {
	_, err := GetDialector("mysql", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
