package repository

import (
	"context"

	"github.com/abrezinsky/revista/internal/models"
)

// HolderRepository defines holder and concession data operations
type HolderRepository interface {
	ListHolders(ctx context.Context) ([]models.Holder, error)
	SearchHolders(ctx context.Context, query string) ([]models.Holder, error)
	GetHolder(ctx context.Context, id int) (*models.Holder, error)
	CreateHolder(ctx context.Context, h models.Holder) (int64, error)
	UpdateHolder(ctx context.Context, h models.Holder) error
	DeleteHolder(ctx context.Context, id int) error
	UpsertHolderByRegistryID(ctx context.Context, h models.Holder) (id int64, created bool, err error)

	ListConcessions(ctx context.Context, holderID int) ([]models.Concession, error)
	GetConcession(ctx context.Context, id int) (*models.Concession, error)
	GetConcessionByNumber(ctx context.Context, number string) (*models.Concession, error)
	CreateConcession(ctx context.Context, c models.Concession) (int64, error)
	UpdateConcession(ctx context.Context, c models.Concession) error
	UpsertConcessionByNumber(ctx context.Context, c models.Concession) (id int64, created bool, err error)
}

// VehicleRepository defines vehicle data operations
type VehicleRepository interface {
	ListVehicles(ctx context.Context) ([]models.Vehicle, error)
	ListVehiclesByConcession(ctx context.Context, concessionID int) ([]models.Vehicle, error)
	GetVehicle(ctx context.Context, id int) (*models.Vehicle, error)
	GetVehicleByPlate(ctx context.Context, plate string) (*models.Vehicle, error)
	VehicleExists(ctx context.Context, plate string) (bool, error)
	CreateVehicle(ctx context.Context, v models.Vehicle) (int64, error)
	UpdateVehicle(ctx context.Context, v models.Vehicle) error
	DeleteVehicle(ctx context.Context, id int) error
	UpsertVehicleBySerial(ctx context.Context, v models.Vehicle) (created bool, err error)
	CountInspectionsForVehicle(ctx context.Context, vehicleID int) (int, error)
}

// CatalogRepository defines scored-characteristic catalog operations
type CatalogRepository interface {
	ListCatalogOptions(ctx context.Context) ([]models.CatalogOption, error)
	ReplaceCatalog(ctx context.Context, options []models.CatalogOption) error
	CountCatalogOptions(ctx context.Context) (int, error)
}

// InspectionRepository defines inspection data operations
type InspectionRepository interface {
	CreateInspection(ctx context.Context, i *models.Inspection) (int64, error)
	GetInspection(ctx context.Context, id int) (*models.Inspection, error)
	GetInspectionByFolio(ctx context.Context, folio string) (*models.Inspection, error)
	ListInspections(ctx context.Context, filter InspectionFilter) ([]models.Inspection, error)
	UpdateInspection(ctx context.Context, i *models.Inspection) error
	CountInspectionsByClassification(ctx context.Context) (map[string]int, error)
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetDashboardStats(ctx context.Context) (map[string]interface{}, error)
	ClearTable(ctx context.Context, table string) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	HolderRepository
	VehicleRepository
	CatalogRepository
	InspectionRepository
	SettingsRepository
	Close() error
	Ping(ctx context.Context) error
}

// Compile-time check that Repository implements FullRepository
var _ FullRepository = (*Repository)(nil)
