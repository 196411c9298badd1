package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/marketpulse/marketpulse/internal/cache"
	"github.com/marketpulse/marketpulse/internal/google"
	"github.com/marketpulse/marketpulse/internal/googleauth"
	"github.com/marketpulse/marketpulse/internal/models"
	"github.com/marketpulse/marketpulse/internal/store"
)

// Profile is the stored credential joined with the Google account identity
// behind it.
type Profile struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Scope        []string  `json:"scope"`
	ExpiryDate   time.Time `json:"expiry_date"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	ImageURL     string    `json:"image_url"`
}

// CredentialService owns the Google OAuth credential lifecycle: connect via
// code exchange, profile lookup and disconnect with cache invalidation.
type CredentialService struct {
	credentials CredentialStore
	authority   CredentialAuthority
	reports     cache.Cache[json.RawMessage]
	newUserInfo func(ctx context.Context, authorized *googleauth.AuthorizedClient) (google.UserInfoClient, error)
}

func NewCredentialService(
	credentials CredentialStore,
	authority CredentialAuthority,
	reports cache.Cache[json.RawMessage],
) *CredentialService {
	return &CredentialService{
		credentials: credentials,
		authority:   authority,
		reports:     reports,
		newUserInfo: google.NewUserInfoClient,
	}
}

// Connect exchanges an authorization code and persists the resulting tokens.
// A user has at most one credential; connecting twice without disconnecting
// fails with store.ErrCredentialExists before any exchange happens.
func (s *CredentialService) Connect(ctx context.Context, userID, code string) (*models.GoogleCredential, error) {
	if _, err := s.credentials.GetCredentialByUserID(userID); err == nil {
		return nil, store.ErrCredentialExists
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}

	token, err := s.authority.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}

	scope, _ := token.Extra("scope").(string)
	credential := &models.GoogleCredential{
		ID:           userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Scope:        scope,
		ExpiryDate:   token.Expiry,
	}
	if err := s.credentials.CreateCredential(credential); err != nil {
		return nil, err
	}
	return credential, nil
}

// Profile returns the credential enriched with the account's userinfo.
func (s *CredentialService) Profile(ctx context.Context, userID string) (*Profile, error) {
	credential, err := s.credentials.GetCredentialByUserID(userID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, googleauth.ErrCredentialNotFound
		}
		return nil, err
	}

	client, err := s.newUserInfo(ctx, s.authority.Client(credential))
	if err != nil {
		return nil, err
	}
	info, err := client.Get(ctx)
	if err != nil {
		return nil, err
	}

	return &Profile{
		AccessToken:  credential.AccessToken,
		RefreshToken: credential.RefreshToken,
		Scope:        credential.Scopes(),
		ExpiryDate:   credential.ExpiryDate,
		Email:        info.Email,
		Name:         info.Name,
		ImageURL:     info.ImageURL,
	}, nil
}

// Disconnect removes the credential and purges every cached report belonging
// to the user, so a later reconnect can never serve results fetched under the
// old authorization.
func (s *CredentialService) Disconnect(ctx context.Context, userID string) error {
	if _, err := s.credentials.GetCredentialByUserID(userID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return googleauth.ErrCredentialNotFound
		}
		return err
	}

	if err := s.credentials.DeleteCredentialByUserID(userID); err != nil {
		return err
	}
	if err := s.reports.DeleteByPrefix(ctx, cache.UserPrefix(userID)); err != nil {
		return fmt.Errorf("credential removed but cached reports not purged: %w", err)
	}
	return nil
}
