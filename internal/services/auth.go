package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/marketpulse/marketpulse/internal/msauth"
)

// LoginResult is the login response: the resolved user id and the signed
// bearer token the rest of the API accepts.
type LoginResult struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// Identity exchanges an authorization code and resolves the directory user
// behind the resulting token.
type Identity interface {
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	UserID(ctx context.Context, token *oauth2.Token) (string, error)
}

var _ Identity = (*msauth.Authenticator)(nil)

// AuthService signs users in: Microsoft code exchange, Graph user id lookup,
// then an application JWT scoped to that user id.
type AuthService struct {
	identity  Identity
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(identity Identity, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		identity:  identity,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// Login exchanges the authorization code and issues the application token.
// A rejected code fails with ErrInvalidCode; a token Graph refuses fails
// with ErrInvalidAccessToken.
func (s *AuthService) Login(ctx context.Context, code string) (*LoginResult, error) {
	token, err := s.identity.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}

	userID, err := s.identity.UserID(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccessToken, err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &LoginResult{UserID: userID, Token: signed}, nil
}
