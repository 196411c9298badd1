package google

import (
	"context"

	"github.com/marketpulse/marketpulse/internal/googleauth"

	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// UserInfo is the Google account identity behind a credential.
type UserInfo struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// UserInfoClient fetches the account identity for an authorized credential.
type UserInfoClient interface {
	Get(ctx context.Context) (*UserInfo, error)
}

type userInfoClient struct {
	service *oauth2api.Service
}

func NewUserInfoClient(ctx context.Context, authorized *googleauth.AuthorizedClient) (UserInfoClient, error) {
	service, err := oauth2api.NewService(ctx, option.WithHTTPClient(authorized.HTTPClient(ctx)))
	if err != nil {
		return nil, err
	}
	return &userInfoClient{service: service}, nil
}

func (c *userInfoClient) Get(ctx context.Context) (*UserInfo, error) {
	info, err := c.service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return &UserInfo{
		Email:    info.Email,
		Name:     info.Name,
		ImageURL: info.Picture,
	}, nil
}
