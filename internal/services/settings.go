package services

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/abrezinsky/revista/internal/errors"
	"github.com/abrezinsky/revista/internal/logger"
	"github.com/abrezinsky/revista/internal/repository"
)

const settingDefaultInspector = "default_inspector"

// SettingsService handles settings-related business logic
type SettingsService struct {
	log     logger.Logger
	repo    repository.SettingsRepository
	onReset []func(tables []string)
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

// OnReset registers a callback run after ResetTables clears data
func (s *SettingsService) OnReset(fn func(tables []string)) {
	s.onReset = append(s.onReset, fn)
}

// getOptional reads a setting, treating a missing key as empty
func (s *SettingsService) getOptional(ctx context.Context, key string) (string, error) {
	value, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		if err == repository.ErrNotFound {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// GetRegistryURL returns the configured registry URL
func (s *SettingsService) GetRegistryURL(ctx context.Context) (string, error) {
	return s.getOptional(ctx, settingRegistryURL)
}

// SetRegistryURL saves the registry URL
func (s *SettingsService) SetRegistryURL(ctx context.Context, u string) error {
	u, err := normalizeURL(u)
	if err != nil {
		return err
	}
	return s.repo.SetSetting(ctx, settingRegistryURL, u)
}

// GetBaseURL returns the public base URL used in sticker QR codes
func (s *SettingsService) GetBaseURL(ctx context.Context) (string, error) {
	return s.getOptional(ctx, settingBaseURL)
}

// SetBaseURL saves the public base URL
func (s *SettingsService) SetBaseURL(ctx context.Context, u string) error {
	u, err := normalizeURL(u)
	if err != nil {
		return err
	}
	return s.repo.SetSetting(ctx, settingBaseURL, u)
}

// normalizeURL trims a trailing slash and requires an http(s) URL. Empty clears the setting.
func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errors.Validationf("%q is not a valid http(s) URL", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

// GetSetting retrieves an arbitrary setting
func (s *SettingsService) GetSetting(ctx context.Context, key string) (string, error) {
	return s.repo.GetSetting(ctx, key)
}

// SetSetting saves an arbitrary setting
func (s *SettingsService) SetSetting(ctx context.Context, key, value string) error {
	return s.repo.SetSetting(ctx, key, value)
}

// AllSettings returns the dashboard settings as a map. The registry token is
// reported only as configured or not.
func (s *SettingsService) AllSettings(ctx context.Context) (map[string]interface{}, error) {
	settings := make(map[string]interface{})

	registryURL, err := s.GetRegistryURL(ctx)
	if err != nil {
		return nil, err
	}
	settings[settingRegistryURL] = registryURL

	token, err := s.getOptional(ctx, settingRegistryToken)
	if err != nil {
		return nil, err
	}
	settings["registry_token_set"] = token != ""

	baseURL, err := s.GetBaseURL(ctx)
	if err != nil {
		return nil, err
	}
	settings[settingBaseURL] = baseURL

	inspector, err := s.getOptional(ctx, settingDefaultInspector)
	if err != nil {
		return nil, err
	}
	settings[settingDefaultInspector] = inspector

	return settings, nil
}

// Settings represents application settings for update operations.
// Nil fields are left unchanged.
type Settings struct {
	RegistryURL      *string
	RegistryToken    *string
	BaseURL          *string
	DefaultInspector *string
}

// UpdateSettings updates multiple settings at once
func (s *SettingsService) UpdateSettings(ctx context.Context, settings Settings) error {
	if settings.RegistryURL != nil {
		if err := s.SetRegistryURL(ctx, *settings.RegistryURL); err != nil {
			return err
		}
	}
	if settings.RegistryToken != nil {
		if err := s.repo.SetSetting(ctx, settingRegistryToken, strings.TrimSpace(*settings.RegistryToken)); err != nil {
			return err
		}
	}
	if settings.BaseURL != nil {
		if err := s.SetBaseURL(ctx, *settings.BaseURL); err != nil {
			return err
		}
	}
	if settings.DefaultInspector != nil {
		if err := s.repo.SetSetting(ctx, settingDefaultInspector, strings.TrimSpace(*settings.DefaultInspector)); err != nil {
			return err
		}
	}
	return nil
}

// ResetTablesResult contains the result of a database reset
type ResetTablesResult struct {
	Tables  []string `json:"tables"`
	Message string   `json:"message"`
}

// ValidTables defines which tables can be reset and the order they are cleared in
var ValidTables = map[string]int{
	"inspections":     0,
	"vehicles":        1,
	"concessions":     2,
	"holders":         3,
	"catalog_options": 4,
}

// ResetTables validates and clears the specified tables. Clearing vehicles
// also clears inspections since every inspection references one.
func (s *SettingsService) ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error) {
	if len(tables) == 0 {
		return nil, ErrNoTablesSpecified
	}

	var tablesToReset []string
	for _, table := range tables {
		if _, ok := ValidTables[table]; !ok {
			return nil, &InvalidTableError{Table: table}
		}
		if !containsTable(tablesToReset, table) {
			tablesToReset = append(tablesToReset, table)
		}
	}

	if containsTable(tablesToReset, "vehicles") && !containsTable(tablesToReset, "inspections") {
		tablesToReset = append(tablesToReset, "inspections")
	}

	sort.Slice(tablesToReset, func(i, j int) bool {
		return ValidTables[tablesToReset[i]] < ValidTables[tablesToReset[j]]
	})

	for _, table := range tablesToReset {
		if err := s.repo.ClearTable(ctx, table); err != nil {
			return nil, err
		}
	}

	s.log.Info("Tables reset", "tables", tablesToReset)
	for _, fn := range s.onReset {
		fn(tablesToReset)
	}

	return &ResetTablesResult{
		Tables:  tablesToReset,
		Message: "Successfully deleted data from tables",
	}, nil
}

func containsTable(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
