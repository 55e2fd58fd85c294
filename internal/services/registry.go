package services

import (
	"context"
	"strings"

	"github.com/abrezinsky/revista/internal/repository"
	"github.com/abrezinsky/revista/pkg/registry"
)

// Settings keys for the upstream registry
const (
	settingRegistryURL   = "registry_url"
	settingRegistryToken = "registry_token"
	settingBaseURL       = "base_url"
)

// configureRegistry points the client at the stored registry URL and token.
// It returns ErrRegistryNotSet when no URL has been saved.
func configureRegistry(ctx context.Context, repo repository.SettingsRepository, client registry.Client) error {
	url, err := repo.GetSetting(ctx, settingRegistryURL)
	if err != nil && err != repository.ErrNotFound {
		return err
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrRegistryNotSet
	}
	client.SetBaseURL(url)

	token, err := repo.GetSetting(ctx, settingRegistryToken)
	if err != nil && err != repository.ErrNotFound {
		return err
	}
	client.SetToken(token)
	return nil
}
