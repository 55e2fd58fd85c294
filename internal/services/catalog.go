package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/abrezinsky/revista/internal/errors"
	"github.com/abrezinsky/revista/internal/logger"
	"github.com/abrezinsky/revista/internal/models"
	"github.com/abrezinsky/revista/internal/repository"
	"github.com/abrezinsky/revista/pkg/registry"
	"github.com/abrezinsky/revista/pkg/scoring"
)

// CatalogServiceRepository defines the repository methods needed by CatalogService
type CatalogServiceRepository interface {
	repository.CatalogRepository
	repository.SettingsRepository
}

// CatalogService keeps the scored-characteristic catalog and caches its scoring form
type CatalogService struct {
	log         logger.Logger
	repo        CatalogServiceRepository
	client      registry.Client
	broadcaster Broadcaster

	mu     sync.RWMutex
	cached []scoring.ScoredCharacteristic
	// bumped by Invalidate; a load started under an older generation is not cached
	generation uint64
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(log logger.Logger, repo CatalogServiceRepository, client registry.Client) *CatalogService {
	return &CatalogService{log: log, repo: repo, client: client}
}

// CatalogSyncResult contains the result of a catalog sync
type CatalogSyncResult struct {
	Status          string `json:"status"`
	Message         string `json:"message,omitempty"`
	Characteristics int    `json:"characteristics"`
	Options         int    `json:"options"`
	MaxScore        int    `json:"max_score"`
}

// SetBroadcaster sets the broadcaster for catalog updates
func (s *CatalogService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Invalidate drops the cached characteristics so the next read hits the database
func (s *CatalogService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.generation++
	s.mu.Unlock()
}

// ListOptions returns the raw catalog rows
func (s *CatalogService) ListOptions(ctx context.Context) ([]models.CatalogOption, error) {
	return s.repo.ListCatalogOptions(ctx)
}

// Characteristics returns the scored characteristics in display order.
// ErrEmptyCatalog is returned until the catalog has been synced or seeded.
func (s *CatalogService) Characteristics(ctx context.Context) ([]scoring.ScoredCharacteristic, error) {
	s.mu.RLock()
	cached, gen := s.cached, s.generation
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	options, err := s.repo.ListCatalogOptions(ctx)
	if err != nil {
		return nil, err
	}
	if len(options) == 0 {
		return nil, ErrEmptyCatalog
	}

	chars := groupOptions(options)

	s.mu.Lock()
	if s.generation == gen {
		s.cached = chars
	}
	s.mu.Unlock()
	return chars, nil
}

// groupOptions folds ordered catalog rows into characteristics
func groupOptions(options []models.CatalogOption) []scoring.ScoredCharacteristic {
	var chars []scoring.ScoredCharacteristic
	index := make(map[string]int)
	for _, o := range options {
		i, ok := index[o.Characteristic]
		if !ok {
			i = len(chars)
			index[o.Characteristic] = i
			chars = append(chars, scoring.ScoredCharacteristic{Key: o.Characteristic, Label: o.CharacteristicLabel})
		}
		chars[i].Options = append(chars[i].Options, scoring.Option{ID: o.OptionID, Label: o.OptionLabel, Points: o.Points})
	}
	return chars
}

// SyncFromRegistry replaces the local catalog with the registry's
func (s *CatalogService) SyncFromRegistry(ctx context.Context) (*CatalogSyncResult, error) {
	if err := configureRegistry(ctx, s.repo, s.client); err != nil {
		return nil, err
	}

	chars, err := s.client.FetchCharacteristics(ctx)
	if err != nil {
		return &CatalogSyncResult{
			Status:  "error",
			Message: fmt.Sprintf("Failed to fetch from registry: %v", err),
		}, nil
	}

	s.log.Info("Fetched catalog from registry", "characteristics", len(chars))
	return s.replace(ctx, chars)
}

// SeedDefaultCatalog installs the built-in sample catalog and returns the number of characteristics
func (s *CatalogService) SeedDefaultCatalog(ctx context.Context) (int, error) {
	result, err := s.replace(ctx, registry.DefaultMockCharacteristics())
	if err != nil {
		return 0, err
	}
	return result.Characteristics, nil
}

func (s *CatalogService) replace(ctx context.Context, chars []registry.Characteristic) (*CatalogSyncResult, error) {
	options, scored, err := catalogRows(chars)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceCatalog(ctx, options); err != nil {
		return nil, fmt.Errorf("failed to store catalog: %w", err)
	}
	s.Invalidate()

	result := &CatalogSyncResult{
		Status:          "success",
		Characteristics: len(scored),
		Options:         len(options),
		MaxScore:        scoring.MaxScore(scored),
	}
	s.log.Info("Catalog replaced", "characteristics", result.Characteristics, "options", result.Options, "max_score", result.MaxScore)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastCatalogSynced(result.Characteristics)
	}
	return result, nil
}

// ScoredFromRegistry converts registry characteristics into engine characteristics,
// applying the same validation as a catalog sync.
func ScoredFromRegistry(chars []registry.Characteristic) ([]scoring.ScoredCharacteristic, error) {
	_, scored, err := catalogRows(chars)
	return scored, err
}

// catalogRows flattens registry characteristics into catalog rows and checks
// them with the same rules the scoring engine applies to a schema.
func catalogRows(chars []registry.Characteristic) ([]models.CatalogOption, []scoring.ScoredCharacteristic, error) {
	if len(chars) == 0 {
		return nil, nil, ErrEmptyCatalog
	}

	var options []models.CatalogOption
	scored := make([]scoring.ScoredCharacteristic, 0, len(chars))
	for i, c := range chars {
		key := strings.TrimSpace(c.Key)
		if len(c.Options) == 0 {
			return nil, nil, errors.Validationf("characteristic %q has no options", key)
		}
		order := c.Order
		if order == 0 {
			order = i + 1
		}
		sc := scoring.ScoredCharacteristic{Key: key, Label: c.Label}
		for j, o := range c.Options {
			id := strings.TrimSpace(o.ID.String())
			options = append(options, models.CatalogOption{
				Characteristic:      key,
				CharacteristicLabel: c.Label,
				CharacteristicOrder: order,
				OptionID:            id,
				OptionLabel:         o.Label,
				Points:              o.Points,
				DisplayOrder:        j + 1,
			})
			sc.Options = append(sc.Options, scoring.Option{ID: id, Label: o.Label, Points: o.Points})
		}
		scored = append(scored, sc)
	}

	check := scoring.Schema{Scored: scored, Banding: scoring.DefaultBanding}
	if err := check.Validate(); err != nil {
		return nil, nil, errors.Validationf("invalid catalog: %v", err)
	}
	return options, scored, nil
}
