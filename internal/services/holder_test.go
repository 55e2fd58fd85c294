package services_test

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/abrezinsky/revista/internal/errors"
	"github.com/abrezinsky/revista/internal/logger"
	"github.com/abrezinsky/revista/internal/models"
	"github.com/abrezinsky/revista/internal/repository/mock"
	"github.com/abrezinsky/revista/internal/services"
	"github.com/abrezinsky/revista/internal/testutil"
	"github.com/abrezinsky/revista/pkg/registry"
)

func TestHolderService_CreateAndGet(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewHolderService(logger.New(), repo, registry.NewMockClient())
	ctx := context.Background()

	id, err := svc.CreateHolder(ctx, models.Holder{Name: "María López", RFC: "lopm800101ab1"})
	if err != nil {
		t.Fatalf("CreateHolder failed: %v", err)
	}
	if _, err := svc.CreateConcession(ctx, models.Concession{HolderID: int(id), Number: "tx-xal-0001", Modality: "taxi"}); err != nil {
		t.Fatalf("CreateConcession failed: %v", err)
	}

	h, err := svc.GetHolder(ctx, int(id))
	if err != nil {
		t.Fatalf("GetHolder failed: %v", err)
	}
	if h.RFC != "LOPM800101AB1" {
		t.Errorf("expected uppercased RFC, got %q", h.RFC)
	}
	if len(h.Concessions) != 1 || h.Concessions[0].Number != "TX-XAL-0001" {
		t.Fatalf("expected one uppercased concession, got %+v", h.Concessions)
	}
}

func TestHolderService_GetHolder_NotFound(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewHolderService(logger.New(), repo, registry.NewMockClient())

	_, err := svc.GetHolder(context.Background(), 999)
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestHolderService_Validation(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewHolderService(logger.New(), repo, registry.NewMockClient())
	ctx := context.Background()

	tests := []struct {
		name   string
		holder models.Holder
	}{
		{"missing name", models.Holder{Name: "  "}},
		{"short RFC", models.Holder{Name: "A", RFC: "ABC"}},
		{"bad CURP", models.Holder{Name: "A", CURP: "ABC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateHolder(ctx, tt.holder)
			if apperrors.KindOf(err) != apperrors.ErrValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestHolderService_CreateConcession_Duplicate(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewHolderService(logger.New(), repo, registry.NewMockClient())
	ctx := context.Background()

	id, _ := svc.CreateHolder(ctx, models.Holder{Name: "Pedro"})
	c := models.Concession{HolderID: int(id), Number: "UR-001", Modality: "urbano"}
	if _, err := svc.CreateConcession(ctx, c); err != nil {
		t.Fatalf("CreateConcession failed: %v", err)
	}
	_, err := svc.CreateConcession(ctx, c)
	if apperrors.KindOf(err) != apperrors.ErrConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestHolderService_CreateConcession_UnknownHolder(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewHolderService(logger.New(), repo, registry.NewMockClient())

	_, err := svc.CreateConcession(context.Background(), models.Concession{HolderID: 42, Number: "X-1", Modality: "taxi"})
	if apperrors.KindOf(err) != apperrors.ErrValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHolderService_SearchHolders(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewHolderService(logger.New(), repo, registry.NewMockClient())
	ctx := context.Background()

	if _, err := svc.SeedMockHolders(ctx); err != nil {
		t.Fatalf("SeedMockHolders failed: %v", err)
	}

	found, err := svc.SearchHolders(ctx, "ur-ver")
	if err != nil {
		t.Fatalf("SearchHolders failed: %v", err)
	}
	if len(found) != 1 || found[0].RFC != "MACJ680101AB1" {
		t.Errorf("expected the urbano concession holder, got %+v", found)
	}

	all, _ := svc.SearchHolders(ctx, "")
	if len(all) != 3 {
		t.Errorf("empty query should list all 3 holders, got %d", len(all))
	}

	if _, err := svc.SearchHolders(ctx, "a"); apperrors.KindOf(err) != apperrors.ErrValidation {
		t.Errorf("expected validation error for one-character query, got %v", err)
	}
}

func TestHolderService_SeedMockHolders_Idempotent(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewHolderService(logger.New(), repo, registry.NewMockClient())
	ctx := context.Background()

	created, err := svc.SeedMockHolders(ctx)
	if err != nil {
		t.Fatalf("SeedMockHolders failed: %v", err)
	}
	if created != 3 {
		t.Errorf("expected 3 holders created, got %d", created)
	}

	created, err = svc.SeedMockHolders(ctx)
	if err != nil {
		t.Fatalf("second SeedMockHolders failed: %v", err)
	}
	if created != 0 {
		t.Errorf("expected no new holders on reseed, got %d", created)
	}

	concessions, _ := svc.ListConcessions(ctx, 0)
	if len(concessions) != 4 {
		t.Errorf("expected 4 concessions, got %d", len(concessions))
	}
}

func TestHolderService_SyncFromRegistry(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	client := registry.NewMockClient()
	svc := services.NewHolderService(logger.New(), repo, client)
	ctx := context.Background()

	repo.SetSetting(ctx, "registry_url", "http://registro.local")
	repo.SetSetting(ctx, "registry_token", "tok")

	result, err := svc.SyncFromRegistry(ctx, "golfo")
	if err != nil {
		t.Fatalf("SyncFromRegistry failed: %v", err)
	}
	if result.Status != "success" || result.HoldersCreated != 1 || result.ConcessionsCreated != 1 {
		t.Errorf("unexpected result %+v", result)
	}
	if client.BaseURL() != "http://registro.local" {
		t.Errorf("client base URL not configured, got %q", client.BaseURL())
	}
	if client.Token() != "tok" {
		t.Errorf("client token not configured, got %q", client.Token())
	}

	result, _ = svc.SyncFromRegistry(ctx, "golfo")
	if result.HoldersUpdated != 1 || result.ConcessionsUpdated != 1 {
		t.Errorf("expected resync to update, got %+v", result)
	}
}

func TestHolderService_SyncFromRegistry_NotConfigured(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewHolderService(logger.New(), repo, registry.NewMockClient())

	_, err := svc.SyncFromRegistry(context.Background(), "")
	if err != services.ErrRegistryNotSet {
		t.Fatalf("expected ErrRegistryNotSet, got %v", err)
	}
}

func TestHolderService_SyncFromRegistry_FetchError(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	client := registry.NewMockClient(registry.WithHoldersError(errors.New("timeout")))
	svc := services.NewHolderService(logger.New(), repo, client)
	ctx := context.Background()
	repo.SetSetting(ctx, "registry_url", "http://registro.local")

	result, err := svc.SyncFromRegistry(ctx, "")
	if err != nil {
		t.Fatalf("fetch errors are reported in the result, got %v", err)
	}
	if result.Status != "error" {
		t.Errorf("expected error status, got %q", result.Status)
	}
}

func TestHolderService_SeedMockHolders_UpsertError(t *testing.T) {
	realRepo := testutil.NewTestRepository(t)
	mockRepo := mock.NewRepository(realRepo)
	mockRepo.UpsertHolderByRegistryIDError = errors.New("database error")
	svc := services.NewHolderService(logger.New(), mockRepo, registry.NewMockClient())

	created, err := svc.SeedMockHolders(context.Background())
	if err == nil {
		t.Fatal("expected first error to be returned")
	}
	if created != 0 {
		t.Errorf("expected nothing created, got %d", created)
	}
}

func TestHolderService_DeleteHolder_NotFound(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewHolderService(logger.New(), repo, registry.NewMockClient())

	if err := svc.DeleteHolder(context.Background(), 5); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
