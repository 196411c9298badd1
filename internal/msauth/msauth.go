// Package msauth signs users in through Microsoft OAuth. Application
// sessions are anchored on the Microsoft Graph user id, so the same person
// resolves to the same user id on every login.
package msauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

const graphMeURL = "https://graph.microsoft.com/v1.0/me"

// Authenticator exchanges Microsoft authorization codes and resolves the
// signed-in directory user.
type Authenticator struct {
	config *oauth2.Config
	meURL  string
}

func NewAuthenticator(clientID, clientSecret, tenantID, redirectURL string) *Authenticator {
	return &Authenticator{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     microsoft.AzureADEndpoint(tenantID),
			RedirectURL:  redirectURL,
			Scopes:       []string{"User.Read"},
		},
		meURL: graphMeURL,
	}
}

// Exchange trades an authorization code for Microsoft tokens.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return a.config.Exchange(ctx, code)
}

// UserID fetches the Graph profile behind token and returns the directory
// object id.
func (a *Authenticator) UserID(ctx context.Context, token *oauth2.Token) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.meURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := a.config.Client(ctx, token).Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("microsoft graph request failed: %s: %s", resp.Status, excerpt)
	}

	var profile struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", fmt.Errorf("failed to decode microsoft graph profile: %w", err)
	}
	if profile.ID == "" {
		return "", fmt.Errorf("microsoft graph profile has no id")
	}
	return profile.ID, nil
}
