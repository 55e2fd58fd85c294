package mock

import (
	"context"

	"github.com/abrezinsky/revista/internal/models"
	"github.com/abrezinsky/revista/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.ReplaceCatalogError = errors.New("database error")
//	svc := services.NewCatalogService(log, mockRepo, mockClient)
//	_, err := svc.SyncFromRegistry(ctx)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Holder Errors =====
	ListHoldersError              error
	SearchHoldersError            error
	GetHolderError                error
	CreateHolderError             error
	UpdateHolderError             error
	DeleteHolderError             error
	UpsertHolderByRegistryIDError error
	ListConcessionsError          error
	CreateConcessionError         error
	UpsertConcessionByNumberError error

	// ===== Vehicle Errors =====
	ListVehiclesError               error
	GetVehicleError                 error
	VehicleExistsError              error
	CreateVehicleError              error
	UpdateVehicleError              error
	DeleteVehicleError              error
	UpsertVehicleBySerialError      error
	CountInspectionsForVehicleError error

	// ===== Catalog Errors =====
	ListCatalogOptionsError  error
	ReplaceCatalogError      error
	CountCatalogOptionsError error

	// ===== Inspection Errors =====
	CreateInspectionError                 error
	GetInspectionError                    error
	GetInspectionByFolioError             error
	ListInspectionsError                  error
	UpdateInspectionError                 error
	CountInspectionsByClassificationError error

	// ===== Settings Errors =====
	GetSettingError        error
	SetSettingError        error
	GetDashboardStatsError error
	ClearTableError        error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Holder Methods =====

func (m *Repository) ListHolders(ctx context.Context) ([]models.Holder, error) {
	if m.ListHoldersError != nil {
		return nil, m.ListHoldersError
	}
	return m.FullRepository.ListHolders(ctx)
}

func (m *Repository) SearchHolders(ctx context.Context, query string) ([]models.Holder, error) {
	if m.SearchHoldersError != nil {
		return nil, m.SearchHoldersError
	}
	return m.FullRepository.SearchHolders(ctx, query)
}

func (m *Repository) GetHolder(ctx context.Context, id int) (*models.Holder, error) {
	if m.GetHolderError != nil {
		return nil, m.GetHolderError
	}
	return m.FullRepository.GetHolder(ctx, id)
}

func (m *Repository) CreateHolder(ctx context.Context, h models.Holder) (int64, error) {
	if m.CreateHolderError != nil {
		return 0, m.CreateHolderError
	}
	return m.FullRepository.CreateHolder(ctx, h)
}

func (m *Repository) UpdateHolder(ctx context.Context, h models.Holder) error {
	if m.UpdateHolderError != nil {
		return m.UpdateHolderError
	}
	return m.FullRepository.UpdateHolder(ctx, h)
}

func (m *Repository) DeleteHolder(ctx context.Context, id int) error {
	if m.DeleteHolderError != nil {
		return m.DeleteHolderError
	}
	return m.FullRepository.DeleteHolder(ctx, id)
}

func (m *Repository) UpsertHolderByRegistryID(ctx context.Context, h models.Holder) (int64, bool, error) {
	if m.UpsertHolderByRegistryIDError != nil {
		return 0, false, m.UpsertHolderByRegistryIDError
	}
	return m.FullRepository.UpsertHolderByRegistryID(ctx, h)
}

func (m *Repository) ListConcessions(ctx context.Context, holderID int) ([]models.Concession, error) {
	if m.ListConcessionsError != nil {
		return nil, m.ListConcessionsError
	}
	return m.FullRepository.ListConcessions(ctx, holderID)
}

func (m *Repository) CreateConcession(ctx context.Context, c models.Concession) (int64, error) {
	if m.CreateConcessionError != nil {
		return 0, m.CreateConcessionError
	}
	return m.FullRepository.CreateConcession(ctx, c)
}

func (m *Repository) UpsertConcessionByNumber(ctx context.Context, c models.Concession) (int64, bool, error) {
	if m.UpsertConcessionByNumberError != nil {
		return 0, false, m.UpsertConcessionByNumberError
	}
	return m.FullRepository.UpsertConcessionByNumber(ctx, c)
}

// ===== Vehicle Methods =====

func (m *Repository) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	if m.ListVehiclesError != nil {
		return nil, m.ListVehiclesError
	}
	return m.FullRepository.ListVehicles(ctx)
}

func (m *Repository) GetVehicle(ctx context.Context, id int) (*models.Vehicle, error) {
	if m.GetVehicleError != nil {
		return nil, m.GetVehicleError
	}
	return m.FullRepository.GetVehicle(ctx, id)
}

func (m *Repository) VehicleExists(ctx context.Context, plate string) (bool, error) {
	if m.VehicleExistsError != nil {
		return false, m.VehicleExistsError
	}
	return m.FullRepository.VehicleExists(ctx, plate)
}

func (m *Repository) CreateVehicle(ctx context.Context, v models.Vehicle) (int64, error) {
	if m.CreateVehicleError != nil {
		return 0, m.CreateVehicleError
	}
	return m.FullRepository.CreateVehicle(ctx, v)
}

func (m *Repository) UpdateVehicle(ctx context.Context, v models.Vehicle) error {
	if m.UpdateVehicleError != nil {
		return m.UpdateVehicleError
	}
	return m.FullRepository.UpdateVehicle(ctx, v)
}

func (m *Repository) DeleteVehicle(ctx context.Context, id int) error {
	if m.DeleteVehicleError != nil {
		return m.DeleteVehicleError
	}
	return m.FullRepository.DeleteVehicle(ctx, id)
}

func (m *Repository) UpsertVehicleBySerial(ctx context.Context, v models.Vehicle) (bool, error) {
	if m.UpsertVehicleBySerialError != nil {
		return false, m.UpsertVehicleBySerialError
	}
	return m.FullRepository.UpsertVehicleBySerial(ctx, v)
}

func (m *Repository) CountInspectionsForVehicle(ctx context.Context, vehicleID int) (int, error) {
	if m.CountInspectionsForVehicleError != nil {
		return 0, m.CountInspectionsForVehicleError
	}
	return m.FullRepository.CountInspectionsForVehicle(ctx, vehicleID)
}

// ===== Catalog Methods =====

func (m *Repository) ListCatalogOptions(ctx context.Context) ([]models.CatalogOption, error) {
	if m.ListCatalogOptionsError != nil {
		return nil, m.ListCatalogOptionsError
	}
	return m.FullRepository.ListCatalogOptions(ctx)
}

func (m *Repository) ReplaceCatalog(ctx context.Context, options []models.CatalogOption) error {
	if m.ReplaceCatalogError != nil {
		return m.ReplaceCatalogError
	}
	return m.FullRepository.ReplaceCatalog(ctx, options)
}

func (m *Repository) CountCatalogOptions(ctx context.Context) (int, error) {
	if m.CountCatalogOptionsError != nil {
		return 0, m.CountCatalogOptionsError
	}
	return m.FullRepository.CountCatalogOptions(ctx)
}

// ===== Inspection Methods =====

func (m *Repository) CreateInspection(ctx context.Context, i *models.Inspection) (int64, error) {
	if m.CreateInspectionError != nil {
		return 0, m.CreateInspectionError
	}
	return m.FullRepository.CreateInspection(ctx, i)
}

func (m *Repository) GetInspection(ctx context.Context, id int) (*models.Inspection, error) {
	if m.GetInspectionError != nil {
		return nil, m.GetInspectionError
	}
	return m.FullRepository.GetInspection(ctx, id)
}

func (m *Repository) GetInspectionByFolio(ctx context.Context, folio string) (*models.Inspection, error) {
	if m.GetInspectionByFolioError != nil {
		return nil, m.GetInspectionByFolioError
	}
	return m.FullRepository.GetInspectionByFolio(ctx, folio)
}

func (m *Repository) ListInspections(ctx context.Context, filter repository.InspectionFilter) ([]models.Inspection, error) {
	if m.ListInspectionsError != nil {
		return nil, m.ListInspectionsError
	}
	return m.FullRepository.ListInspections(ctx, filter)
}

func (m *Repository) UpdateInspection(ctx context.Context, i *models.Inspection) error {
	if m.UpdateInspectionError != nil {
		return m.UpdateInspectionError
	}
	return m.FullRepository.UpdateInspection(ctx, i)
}

func (m *Repository) CountInspectionsByClassification(ctx context.Context) (map[string]int, error) {
	if m.CountInspectionsByClassificationError != nil {
		return nil, m.CountInspectionsByClassificationError
	}
	return m.FullRepository.CountInspectionsByClassification(ctx)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

func (m *Repository) GetDashboardStats(ctx context.Context) (map[string]interface{}, error) {
	if m.GetDashboardStatsError != nil {
		return nil, m.GetDashboardStatsError
	}
	return m.FullRepository.GetDashboardStats(ctx)
}

func (m *Repository) ClearTable(ctx context.Context, table string) error {
	if m.ClearTableError != nil {
		return m.ClearTableError
	}
	return m.FullRepository.ClearTable(ctx, table)
}
