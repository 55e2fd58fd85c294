package services

import (
	"context"

	"github.com/abrezinsky/revista/internal/models"
	"github.com/abrezinsky/revista/internal/repository"
	"github.com/abrezinsky/revista/pkg/scoring"
)

// HolderServicer defines the interface for titular and concession operations
type HolderServicer interface {
	ListHolders(ctx context.Context) ([]models.Holder, error)
	SearchHolders(ctx context.Context, query string) ([]models.Holder, error)
	GetHolder(ctx context.Context, id int) (*models.Holder, error)
	CreateHolder(ctx context.Context, h models.Holder) (int64, error)
	UpdateHolder(ctx context.Context, h models.Holder) error
	DeleteHolder(ctx context.Context, id int) error
	ListConcessions(ctx context.Context, holderID int) ([]models.Concession, error)
	CreateConcession(ctx context.Context, c models.Concession) (int64, error)
	UpdateConcession(ctx context.Context, c models.Concession) error
	SyncFromRegistry(ctx context.Context, query string) (*HolderSyncResult, error)
	SeedMockHolders(ctx context.Context) (int, error)
}

// VehicleServicer defines the interface for vehicle operations
type VehicleServicer interface {
	ListVehicles(ctx context.Context) ([]models.Vehicle, error)
	GetVehicle(ctx context.Context, id int) (*models.Vehicle, error)
	GetVehiclePhoto(ctx context.Context, id int) (*PhotoData, error)
	CreateVehicle(ctx context.Context, v models.Vehicle) (int64, error)
	UpdateVehicle(ctx context.Context, v models.Vehicle) error
	DeleteVehicle(ctx context.Context, id int) error
	SyncFromRegistry(ctx context.Context) (*VehicleSyncResult, error)
	SeedMockVehicles(ctx context.Context) (int, error)
}

// CatalogServicer defines the interface for scored-characteristic catalog operations
type CatalogServicer interface {
	Characteristics(ctx context.Context) ([]scoring.ScoredCharacteristic, error)
	ListOptions(ctx context.Context) ([]models.CatalogOption, error)
	SyncFromRegistry(ctx context.Context) (*CatalogSyncResult, error)
	SeedDefaultCatalog(ctx context.Context) (int, error)
	Invalidate()
	SetBroadcaster(b Broadcaster)
}

// InspectionServicer defines the interface for inspection operations
type InspectionServicer interface {
	Schema(ctx context.Context) (scoring.Schema, error)
	Preview(ctx context.Context, answers scoring.AnswerSet) (*scoring.Result, error)
	Create(ctx context.Context, vehicleID int, inspector string) (*InspectionDetail, error)
	Get(ctx context.Context, id int) (*InspectionDetail, error)
	List(ctx context.Context, filter repository.InspectionFilter) ([]models.Inspection, error)
	ApplyUpdates(ctx context.Context, id int, updates []scoring.Update) (*InspectionDetail, error)
	SetObservations(ctx context.Context, id int, observations string) error
	Submit(ctx context.Context, id int) (*InspectionDetail, error)
	Certify(ctx context.Context, id int) (*InspectionDetail, error)
	Reopen(ctx context.Context, id int) (*InspectionDetail, error)
	Cancel(ctx context.Context, id int) (*InspectionDetail, error)
	Verify(ctx context.Context, folio string) (*Verification, error)
	StickerQR(ctx context.Context, id int) ([]byte, error)
	Stats(ctx context.Context) (map[string]interface{}, error)
	SetBroadcaster(b Broadcaster)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	GetRegistryURL(ctx context.Context) (string, error)
	SetRegistryURL(ctx context.Context, url string) error
	GetBaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	AllSettings(ctx context.Context) (map[string]interface{}, error)
	UpdateSettings(ctx context.Context, settings Settings) error
	ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error)
}

// Broadcaster defines the interface for pushing live updates to connected clients
type Broadcaster interface {
	BroadcastInspectionScored(id int, folio string, result scoring.Result)
	BroadcastInspectionStatus(id int, folio, status string)
	BroadcastCatalogSynced(characteristics int)
}

// Ensure concrete types implement interfaces
var (
	_ HolderServicer     = (*HolderService)(nil)
	_ VehicleServicer    = (*VehicleService)(nil)
	_ CatalogServicer    = (*CatalogService)(nil)
	_ InspectionServicer = (*InspectionService)(nil)
	_ SettingsServicer   = (*SettingsService)(nil)
)
