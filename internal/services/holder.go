package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/abrezinsky/revista/internal/errors"
	"github.com/abrezinsky/revista/internal/logger"
	"github.com/abrezinsky/revista/internal/models"
	"github.com/abrezinsky/revista/internal/repository"
	"github.com/abrezinsky/revista/pkg/registry"
)

// HolderServiceRepository defines the repository methods needed by HolderService
type HolderServiceRepository interface {
	repository.HolderRepository
	repository.VehicleRepository
	repository.SettingsRepository
}

// HolderService handles titular and concession business logic
type HolderService struct {
	log    logger.Logger
	repo   HolderServiceRepository
	client registry.Client
}

// NewHolderService creates a new HolderService
func NewHolderService(log logger.Logger, repo HolderServiceRepository, client registry.Client) *HolderService {
	return &HolderService{log: log, repo: repo, client: client}
}

// HolderSyncResult contains the result of a registry holder sync
type HolderSyncResult struct {
	Status             string `json:"status"`
	Message            string `json:"message,omitempty"`
	HoldersCreated     int    `json:"holders_created"`
	HoldersUpdated     int    `json:"holders_updated"`
	ConcessionsCreated int    `json:"concessions_created"`
	ConcessionsUpdated int    `json:"concessions_updated"`
}

// ListHolders returns all titulares
func (s *HolderService) ListHolders(ctx context.Context) ([]models.Holder, error) {
	return s.repo.ListHolders(ctx)
}

// SearchHolders matches titulares by name, RFC, CURP or concession number
func (s *HolderService) SearchHolders(ctx context.Context, query string) ([]models.Holder, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.repo.ListHolders(ctx)
	}
	if len(query) < 2 {
		return nil, errors.Validation("search query must have at least 2 characters")
	}
	return s.repo.SearchHolders(ctx, query)
}

// GetHolder returns a titular with their concessions and the vehicles under each
func (s *HolderService) GetHolder(ctx context.Context, id int) (*models.Holder, error) {
	h, err := s.repo.GetHolder(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFoundf("holder %d not found", id)
	}
	if err != nil {
		return nil, err
	}

	concessions, err := s.repo.ListConcessions(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range concessions {
		vehicles, err := s.repo.ListVehiclesByConcession(ctx, concessions[i].ID)
		if err != nil {
			return nil, err
		}
		concessions[i].Vehicles = vehicles
	}
	h.Concessions = concessions
	return h, nil
}

func validateHolder(h models.Holder) error {
	if strings.TrimSpace(h.Name) == "" {
		return errors.Validation("holder name is required")
	}
	if h.RFC != "" && (len(h.RFC) < 12 || len(h.RFC) > 13) {
		return errors.Validationf("RFC %q must have 12 or 13 characters", h.RFC)
	}
	if h.CURP != "" && len(h.CURP) != 18 {
		return errors.Validationf("CURP %q must have 18 characters", h.CURP)
	}
	return nil
}

// CreateHolder creates a titular
func (s *HolderService) CreateHolder(ctx context.Context, h models.Holder) (int64, error) {
	h.RFC = strings.ToUpper(strings.TrimSpace(h.RFC))
	h.CURP = strings.ToUpper(strings.TrimSpace(h.CURP))
	if err := validateHolder(h); err != nil {
		return 0, err
	}
	return s.repo.CreateHolder(ctx, h)
}

// UpdateHolder updates a titular
func (s *HolderService) UpdateHolder(ctx context.Context, h models.Holder) error {
	h.RFC = strings.ToUpper(strings.TrimSpace(h.RFC))
	h.CURP = strings.ToUpper(strings.TrimSpace(h.CURP))
	if err := validateHolder(h); err != nil {
		return err
	}
	err := s.repo.UpdateHolder(ctx, h)
	if err == repository.ErrNotFound {
		return errors.NotFoundf("holder %d not found", h.ID)
	}
	return err
}

// DeleteHolder deletes a titular and their concessions
func (s *HolderService) DeleteHolder(ctx context.Context, id int) error {
	err := s.repo.DeleteHolder(ctx, id)
	if err == repository.ErrNotFound {
		return errors.NotFoundf("holder %d not found", id)
	}
	return err
}

// ListConcessions returns the concessions of a titular, or all with holderID 0
func (s *HolderService) ListConcessions(ctx context.Context, holderID int) ([]models.Concession, error) {
	return s.repo.ListConcessions(ctx, holderID)
}

func (s *HolderService) validateConcession(ctx context.Context, c models.Concession) error {
	if strings.TrimSpace(c.Number) == "" {
		return errors.Validation("concession number is required")
	}
	if strings.TrimSpace(c.Modality) == "" {
		return errors.Validation("concession modality is required")
	}
	if _, err := s.repo.GetHolder(ctx, c.HolderID); err == repository.ErrNotFound {
		return errors.Validationf("holder %d does not exist", c.HolderID)
	} else if err != nil {
		return err
	}
	return nil
}

// CreateConcession adds a concession to a titular
func (s *HolderService) CreateConcession(ctx context.Context, c models.Concession) (int64, error) {
	c.Number = strings.ToUpper(strings.TrimSpace(c.Number))
	if err := s.validateConcession(ctx, c); err != nil {
		return 0, err
	}
	if _, err := s.repo.GetConcessionByNumber(ctx, c.Number); err == nil {
		return 0, errors.Conflictf("concession %s already exists", c.Number)
	} else if err != repository.ErrNotFound {
		return 0, err
	}
	return s.repo.CreateConcession(ctx, c)
}

// UpdateConcession updates a concession
func (s *HolderService) UpdateConcession(ctx context.Context, c models.Concession) error {
	c.Number = strings.ToUpper(strings.TrimSpace(c.Number))
	if err := s.validateConcession(ctx, c); err != nil {
		return err
	}
	if c.Status == "" {
		c.Status = "vigente"
	}
	err := s.repo.UpdateConcession(ctx, c)
	if err == repository.ErrNotFound {
		return errors.NotFoundf("concession %d not found", c.ID)
	}
	return err
}

// SyncFromRegistry imports the titulares matching query from the registry
func (s *HolderService) SyncFromRegistry(ctx context.Context, query string) (*HolderSyncResult, error) {
	if err := configureRegistry(ctx, s.repo, s.client); err != nil {
		return nil, err
	}

	records, err := s.client.SearchHolders(ctx, query)
	if err != nil {
		return &HolderSyncResult{
			Status:  "error",
			Message: fmt.Sprintf("Failed to fetch from registry: %v", err),
		}, nil
	}

	s.log.Info("Fetched holders from registry", "query", query, "count", len(records))

	result, err := importHolders(ctx, s.log, s.repo, records)
	s.log.Info("Holder sync complete", "holders_created", result.HoldersCreated, "holders_updated", result.HoldersUpdated,
		"concessions_created", result.ConcessionsCreated, "concessions_updated", result.ConcessionsUpdated)
	return result, err
}

// SeedMockHolders loads the built-in sample titulares
func (s *HolderService) SeedMockHolders(ctx context.Context) (int, error) {
	result, err := importHolders(ctx, s.log, s.repo, registry.DefaultMockHolders())
	return result.HoldersCreated, err
}

// importHolders upserts registry holders and their concessions, continuing past
// individual failures and returning the first one.
func importHolders(ctx context.Context, log logger.Logger, repo repository.HolderRepository, records []registry.HolderRecord) (*HolderSyncResult, error) {
	result := &HolderSyncResult{Status: "success"}
	var firstError error

	for _, rec := range records {
		registryID := rec.ID
		holderID, created, err := repo.UpsertHolderByRegistryID(ctx, models.Holder{
			RegistryID: &registryID,
			Name:       rec.Name,
			RFC:        strings.ToUpper(rec.RFC),
			CURP:       strings.ToUpper(rec.CURP),
			Phone:      rec.Phone,
			Address:    rec.Address,
		})
		if err != nil {
			log.Error("Error syncing holder", "registry_id", rec.ID, "name", rec.Name, "error", err)
			if firstError == nil {
				firstError = fmt.Errorf("failed to sync holder %d: %w", rec.ID, err)
			}
			continue
		}
		if created {
			result.HoldersCreated++
		} else {
			result.HoldersUpdated++
		}

		for _, c := range rec.Concessions {
			_, created, err := repo.UpsertConcessionByNumber(ctx, models.Concession{
				HolderID:  int(holderID),
				Number:    strings.ToUpper(c.Number),
				Modality:  c.Modality,
				Route:     c.Route,
				Status:    c.Status,
				ExpiresOn: c.ExpiresOn,
			})
			if err != nil {
				log.Error("Error syncing concession", "number", c.Number, "error", err)
				if firstError == nil {
					firstError = fmt.Errorf("failed to sync concession %s: %w", c.Number, err)
				}
				continue
			}
			if created {
				result.ConcessionsCreated++
			} else {
				result.ConcessionsUpdated++
			}
		}
	}

	return result, firstError
}
