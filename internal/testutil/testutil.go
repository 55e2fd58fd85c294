package testutil

import (
	"context"
	"testing"

	"github.com/abrezinsky/revista/internal/models"
	"github.com/abrezinsky/revista/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// SeedVehicle inserts a holder, a concession and one vehicle and returns the vehicle ID
func SeedVehicle(t *testing.T, repo repository.FullRepository, plate string) int {
	t.Helper()
	ctx := context.Background()

	holderID, err := repo.CreateHolder(ctx, models.Holder{Name: "Titular " + plate, RFC: "XAXX010101000"})
	if err != nil {
		t.Fatalf("failed to create holder: %v", err)
	}
	concessionID, err := repo.CreateConcession(ctx, models.Concession{
		HolderID: int(holderID),
		Number:   "CON-" + plate,
		Modality: "taxi",
	})
	if err != nil {
		t.Fatalf("failed to create concession: %v", err)
	}
	cid := int(concessionID)
	vehicleID, err := repo.CreateVehicle(ctx, models.Vehicle{
		ConcessionID: &cid,
		Plate:        plate,
		Serial:       "VIN-" + plate,
		Brand:        "Nissan",
		Model:        "Tsuru",
		Year:         2015,
		Capacity:     4,
	})
	if err != nil {
		t.Fatalf("failed to create vehicle: %v", err)
	}
	return int(vehicleID)
}

// SeedCatalog replaces the catalog with two small characteristics
func SeedCatalog(t *testing.T, repo repository.FullRepository) {
	t.Helper()

	options := []models.CatalogOption{
		{Characteristic: "pintura", CharacteristicLabel: "Pintura", CharacteristicOrder: 1, OptionID: "1", OptionLabel: "Mala", Points: 0, DisplayOrder: 1},
		{Characteristic: "pintura", CharacteristicLabel: "Pintura", CharacteristicOrder: 1, OptionID: "2", OptionLabel: "Buena", Points: 5, DisplayOrder: 2},
		{Characteristic: "tapiceria", CharacteristicLabel: "Tapicería", CharacteristicOrder: 2, OptionID: "1", OptionLabel: "Regular", Points: 2, DisplayOrder: 1},
		{Characteristic: "tapiceria", CharacteristicLabel: "Tapicería", CharacteristicOrder: 2, OptionID: "2", OptionLabel: "Excelente", Points: 5, DisplayOrder: 2},
	}
	if err := repo.ReplaceCatalog(context.Background(), options); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}
}
