package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abrezinsky/revista/internal/errors"
	"github.com/abrezinsky/revista/internal/logger"
	"github.com/abrezinsky/revista/internal/models"
	"github.com/abrezinsky/revista/internal/repository"
	"github.com/abrezinsky/revista/pkg/registry"
)

// VehicleServiceRepository defines the repository methods needed by VehicleService
type VehicleServiceRepository interface {
	repository.HolderRepository
	repository.VehicleRepository
	repository.SettingsRepository
}

// VehicleService handles vehicle business logic
type VehicleService struct {
	log        logger.Logger
	repo       VehicleServiceRepository
	client     registry.Client
	httpClient *http.Client
}

// NewVehicleService creates a new VehicleService
func NewVehicleService(log logger.Logger, repo VehicleServiceRepository, client registry.Client) *VehicleService {
	return &VehicleService{
		log:        log,
		repo:       repo,
		client:     client,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// VehicleSyncResult contains the result of a registry vehicle sync
type VehicleSyncResult struct {
	Status          string   `json:"status"`
	Message         string   `json:"message,omitempty"`
	VehiclesCreated int      `json:"vehicles_created"`
	VehiclesUpdated int      `json:"vehicles_updated"`
	Unlinked        []string `json:"unlinked,omitempty"`
	TotalVehicles   int      `json:"total_vehicles"`
}

// PhotoData contains photo metadata and content
type PhotoData struct {
	Data        []byte
	ContentType string
}

// ListVehicles returns all active vehicles
func (s *VehicleService) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	return s.repo.ListVehicles(ctx)
}

// GetVehicle returns a vehicle by ID
func (s *VehicleService) GetVehicle(ctx context.Context, id int) (*models.Vehicle, error) {
	v, err := s.repo.GetVehicle(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFoundf("vehicle %d not found", id)
	}
	return v, err
}

func (s *VehicleService) validateVehicle(ctx context.Context, v models.Vehicle) error {
	if strings.TrimSpace(v.Plate) == "" {
		return errors.Validation("plate is required")
	}
	if strings.TrimSpace(v.Serial) == "" {
		return errors.Validation("serial number is required")
	}
	if v.Year != 0 && (v.Year < 1950 || v.Year > time.Now().Year()+1) {
		return errors.Validationf("model year %d is out of range", v.Year)
	}
	if v.Capacity < 0 {
		return errors.Validation("capacity cannot be negative")
	}
	if v.ConcessionID != nil {
		if _, err := s.repo.GetConcession(ctx, *v.ConcessionID); err == repository.ErrNotFound {
			return errors.Validationf("concession %d does not exist", *v.ConcessionID)
		} else if err != nil {
			return err
		}
	}
	return nil
}

// CreateVehicle registers a vehicle. Plates are unique among active vehicles.
func (s *VehicleService) CreateVehicle(ctx context.Context, v models.Vehicle) (int64, error) {
	if err := s.validateVehicle(ctx, v); err != nil {
		return 0, err
	}
	exists, err := s.repo.VehicleExists(ctx, v.Plate)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, errors.Conflictf("a vehicle with plate %s already exists", strings.ToUpper(v.Plate))
	}
	return s.repo.CreateVehicle(ctx, v)
}

// UpdateVehicle updates a vehicle
func (s *VehicleService) UpdateVehicle(ctx context.Context, v models.Vehicle) error {
	if err := s.validateVehicle(ctx, v); err != nil {
		return err
	}
	if other, err := s.repo.GetVehicleByPlate(ctx, v.Plate); err == nil && other.ID != v.ID {
		return errors.Conflictf("a vehicle with plate %s already exists", strings.ToUpper(v.Plate))
	} else if err != nil && err != repository.ErrNotFound {
		return err
	}
	err := s.repo.UpdateVehicle(ctx, v)
	if err == repository.ErrNotFound {
		return errors.NotFoundf("vehicle %d not found", v.ID)
	}
	return err
}

// DeleteVehicle deactivates a vehicle. Past inspections keep pointing at it.
func (s *VehicleService) DeleteVehicle(ctx context.Context, id int) error {
	err := s.repo.DeleteVehicle(ctx, id)
	if err == repository.ErrNotFound {
		return errors.NotFoundf("vehicle %d not found", id)
	}
	return err
}

// GetVehiclePhoto fetches the photo for a vehicle from its source URL
func (s *VehicleService) GetVehiclePhoto(ctx context.Context, id int) (*PhotoData, error) {
	v, err := s.repo.GetVehicle(ctx, id)
	if err != nil || v.PhotoURL == "" {
		return nil, errors.NotFound("vehicle photo not available")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.PhotoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build photo request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photo fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo data: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	return &PhotoData{Data: data, ContentType: contentType}, nil
}

// SyncFromRegistry imports the registered vehicles and links them to known concessions
func (s *VehicleService) SyncFromRegistry(ctx context.Context) (*VehicleSyncResult, error) {
	if err := configureRegistry(ctx, s.repo, s.client); err != nil {
		return nil, err
	}

	records, err := s.client.FetchVehicles(ctx)
	if err != nil {
		return &VehicleSyncResult{
			Status:  "error",
			Message: fmt.Sprintf("Failed to fetch from registry: %v", err),
		}, nil
	}

	s.log.Info("Fetched vehicles from registry", "count", len(records))

	result, err := s.importVehicles(ctx, records, s.client.BaseURL())
	s.log.Info("Vehicle sync complete", "created", result.VehiclesCreated, "updated", result.VehiclesUpdated,
		"unlinked", len(result.Unlinked))
	return result, err
}

// SeedMockVehicles loads the built-in sample titulares and their vehicles
func (s *VehicleService) SeedMockVehicles(ctx context.Context) (int, error) {
	if _, err := importHolders(ctx, s.log, s.repo, registry.DefaultMockHolders()); err != nil {
		return 0, err
	}
	result, err := s.importVehicles(ctx, registry.DefaultMockVehicles(), "")
	return result.VehiclesCreated, err
}

func (s *VehicleService) importVehicles(ctx context.Context, records []registry.VehicleRecord, baseURL string) (*VehicleSyncResult, error) {
	result := &VehicleSyncResult{Status: "success"}
	var firstError error

	for _, rec := range records {
		v := models.Vehicle{
			Plate:        rec.Plate,
			Serial:       rec.Serial,
			EngineNumber: rec.EngineNumber,
			Brand:        rec.Brand,
			Model:        rec.Model,
			Year:         rec.Year,
			Color:        rec.Color,
			Capacity:     rec.Capacity,
			FuelType:     rec.FuelType,
			PhotoURL:     resolvePhotoURL(baseURL, rec.PhotoURL),
		}

		if number := rec.ConcessionNumber.String(); number != "" {
			c, err := s.repo.GetConcessionByNumber(ctx, strings.ToUpper(number))
			switch {
			case err == repository.ErrNotFound:
				result.Unlinked = append(result.Unlinked, rec.Plate)
			case err != nil:
				s.log.Error("Error looking up concession", "number", number, "error", err)
				if firstError == nil {
					firstError = fmt.Errorf("failed to look up concession %s: %w", number, err)
				}
				continue
			default:
				id := c.ID
				v.ConcessionID = &id
			}
		}

		created, err := s.repo.UpsertVehicleBySerial(ctx, v)
		if err != nil {
			s.log.Error("Error syncing vehicle", "plate", rec.Plate, "serial", rec.Serial, "error", err)
			if firstError == nil {
				firstError = fmt.Errorf("failed to sync vehicle %s: %w", rec.Plate, err)
			}
			continue
		}
		if created {
			result.VehiclesCreated++
		} else {
			result.VehiclesUpdated++
		}
	}

	result.TotalVehicles = result.VehiclesCreated + result.VehiclesUpdated
	return result, firstError
}

// resolvePhotoURL turns a registry-relative photo path into an absolute URL
func resolvePhotoURL(baseURL, photo string) string {
	if photo == "" || strings.HasPrefix(photo, "http://") || strings.HasPrefix(photo, "https://") || baseURL == "" {
		return photo
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(photo, "/")
}
