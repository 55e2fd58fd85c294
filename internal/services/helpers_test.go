package services_test

import (
	"sync"
	"testing"

	"github.com/abrezinsky/revista/internal/logger"
	"github.com/abrezinsky/revista/internal/repository"
	"github.com/abrezinsky/revista/internal/schema"
	"github.com/abrezinsky/revista/internal/services"
	"github.com/abrezinsky/revista/internal/testutil"
	"github.com/abrezinsky/revista/pkg/registry"
	"github.com/abrezinsky/revista/pkg/scoring"
)

// inspectionFixture bundles an inspection service over a seeded in-memory database
type inspectionFixture struct {
	repo      *repository.Repository
	client    *registry.MockClient
	catalog   *services.CatalogService
	svc       *services.InspectionService
	vehicleID int
}

func newInspectionFixture(t *testing.T) *inspectionFixture {
	t.Helper()
	return buildInspectionFixture(t, registry.NewMockClient(), nil)
}

// newInspectionFixtureWithRepo routes the inspection service through wrap so
// tests can inject repository errors.
func newInspectionFixtureWithRepo(t *testing.T, wrap func(repository.FullRepository) services.InspectionServiceRepository) *inspectionFixture {
	t.Helper()
	return buildInspectionFixture(t, registry.NewMockClient(), wrap)
}

func buildInspectionFixture(t *testing.T, client *registry.MockClient, wrap func(repository.FullRepository) services.InspectionServiceRepository) *inspectionFixture {
	t.Helper()
	log := logger.New()
	repo := testutil.NewTestRepository(t)
	testutil.SeedCatalog(t, repo)
	vehicleID := testutil.SeedVehicle(t, repo, "A-100-XAL")

	catalog := services.NewCatalogService(log, repo, client)

	var inspRepo services.InspectionServiceRepository = repo
	if wrap != nil {
		inspRepo = wrap(repo)
	}
	svc := services.NewInspectionService(log, inspRepo, schema.NewStaticStore(log, schema.Default()), catalog, client)

	return &inspectionFixture{repo: repo, client: client, catalog: catalog, svc: svc, vehicleID: vehicleID}
}

// passingEssentials answers every default essential check so it passes
func passingEssentials() []scoring.Update {
	var updates []scoring.Update
	for _, c := range schema.Default().Essential {
		if c.Kind == scoring.KindBoolean {
			updates = append(updates, scoring.Set(c.Key, scoring.Bool(true)))
		} else {
			updates = append(updates, scoring.Set(c.Key, scoring.Text(string(scoring.GradeGood))))
		}
	}
	return updates
}

// mockBroadcaster records broadcasts for assertions
type mockBroadcaster struct {
	mu       sync.Mutex
	scored   []scoring.Result
	statuses []string
	catalogs []int
}

func (m *mockBroadcaster) BroadcastInspectionScored(id int, folio string, result scoring.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scored = append(m.scored, result)
}

func (m *mockBroadcaster) BroadcastInspectionStatus(id int, folio, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
}

func (m *mockBroadcaster) BroadcastCatalogSynced(characteristics int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogs = append(m.catalogs, characteristics)
}
