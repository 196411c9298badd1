package googleauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/marketpulse/marketpulse/internal/models"
	"github.com/marketpulse/marketpulse/internal/store"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	// ErrCredentialNotFound is returned when the user never completed the
	// OAuth connect flow (or disconnected since).
	ErrCredentialNotFound = errors.New("google oauth not found")

	// ErrUnknownPlatform is returned for platforms outside the registry.
	ErrUnknownPlatform = errors.New("unknown platform")
)

// ScopeError reports a credential that exists but was granted without the
// scope the requested platform needs.
type ScopeError struct {
	Platform Platform
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("%s scope is required on google oauth", e.Platform)
}

// CredentialSource is the slice of the store the resolver needs.
type CredentialSource interface {
	GetCredentialByUserID(userID string) (*models.GoogleCredential, error)
}

// AuthorizedClient is an OAuth2 client handle pre-seeded with a user's stored
// tokens. Token refresh is delegated to the oauth2 package's TokenSource.
type AuthorizedClient struct {
	config *oauth2.Config
	token  *oauth2.Token
}

// Token returns the seeded token.
func (c *AuthorizedClient) Token() *oauth2.Token {
	return c.token
}

// TokenSource returns a self-refreshing token source for the credential.
func (c *AuthorizedClient) TokenSource(ctx context.Context) oauth2.TokenSource {
	return c.config.TokenSource(ctx, c.token)
}

// HTTPClient returns an http.Client that injects and refreshes the token.
func (c *AuthorizedClient) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, c.TokenSource(ctx))
}

// Resolver is the sole gate through which platform services obtain authority
// to call an external API on a user's behalf. Denials are ordinary error
// values; whether they become HTTP failures or "not connected" defaults is the
// caller's policy, not the resolver's.
type Resolver struct {
	credentials CredentialSource
	config      *oauth2.Config
}

// NewResolver builds a resolver over the persisted credentials.
func NewResolver(credentials CredentialSource, clientID, clientSecret, redirectURL string) *Resolver {
	return &Resolver{
		credentials: credentials,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
		},
	}
}

// Resolve loads the user's credential, verifies the platform's required scope
// is in the granted set, and materializes an authorized client seeded with the
// stored tokens.
func (r *Resolver) Resolve(ctx context.Context, platform Platform, userID string) (*AuthorizedClient, error) {
	scope, ok := RequiredScope(platform)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, platform)
	}

	credential, err := r.credentials.GetCredentialByUserID(userID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrCredentialNotFound
		}
		return nil, err
	}

	if !credential.HasScope(scope) {
		return nil, &ScopeError{Platform: platform}
	}

	return r.Client(credential), nil
}

// Client wraps an already-loaded credential without a scope check. Used for
// account-level calls (userinfo) that any granted scope set permits.
func (r *Resolver) Client(credential *models.GoogleCredential) *AuthorizedClient {
	return &AuthorizedClient{
		config: r.config,
		token: &oauth2.Token{
			AccessToken:  credential.AccessToken,
			RefreshToken: credential.RefreshToken,
			Expiry:       credential.ExpiryDate,
		},
	}
}

// Exchange trades an authorization code for tokens. Used by the connect flow;
// the returned token's scope extra carries the granted scope set.
func (r *Resolver) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return r.config.Exchange(ctx, code)
}
