package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeIdentity struct {
	exchangeErr error
	userIDErr   error
	userID      string

	lastCode string
}

func (f *fakeIdentity) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	f.lastCode = code
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oauth2.Token{AccessToken: "ms-access-token"}, nil
}

func (f *fakeIdentity) UserID(context.Context, *oauth2.Token) (string, error) {
	if f.userIDErr != nil {
		return "", f.userIDErr
	}
	return f.userID, nil
}

func TestLogin_IssuesTokenForResolvedUser(t *testing.T) {
	identity := &fakeIdentity{userID: "ms-user-1"}
	s := NewAuthService(identity, "login-secret", time.Hour)

	result, err := s.Login(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "auth-code", identity.lastCode)
	assert.Equal(t, "ms-user-1", result.UserID)

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(result.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("login-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)

	subject, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "ms-user-1", subject)

	expiry, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry.Time, time.Minute)
}

func TestLogin_RejectedCode(t *testing.T) {
	s := NewAuthService(&fakeIdentity{exchangeErr: assert.AnError}, "login-secret", time.Hour)

	_, err := s.Login(context.Background(), "bad-code")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestLogin_RejectedAccessToken(t *testing.T) {
	s := NewAuthService(&fakeIdentity{userIDErr: assert.AnError}, "login-secret", time.Hour)

	_, err := s.Login(context.Background(), "auth-code")
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}
