package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockClient is a mock registry client for testing and offline seeding
type MockClient struct {
	mu              sync.Mutex
	characteristics []Characteristic
	holders         []HolderRecord
	vehicles        []VehicleRecord
	baseURL         string
	token           string
	catalogErr      error
	holdersErr      error
	vehiclesErr     error
	submitErr       error
	submissions     []Submission
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithCharacteristics sets the catalog to return
func WithCharacteristics(c []Characteristic) MockOption {
	return func(m *MockClient) {
		m.characteristics = c
	}
}

// WithCatalogError sets an error to return from FetchCharacteristics
func WithCatalogError(err error) MockOption {
	return func(m *MockClient) {
		m.catalogErr = err
	}
}

// WithHolders sets the holders to search over
func WithHolders(h []HolderRecord) MockOption {
	return func(m *MockClient) {
		m.holders = h
	}
}

// WithHoldersError sets an error to return from SearchHolders
func WithHoldersError(err error) MockOption {
	return func(m *MockClient) {
		m.holdersErr = err
	}
}

// WithVehicles sets the vehicles to return
func WithVehicles(v []VehicleRecord) MockOption {
	return func(m *MockClient) {
		m.vehicles = v
	}
}

// WithVehiclesError sets an error to return from FetchVehicles
func WithVehiclesError(err error) MockOption {
	return func(m *MockClient) {
		m.vehiclesErr = err
	}
}

// WithSubmitError sets an error to return from SubmitInspection
func WithSubmitError(err error) MockOption {
	return func(m *MockClient) {
		m.submitErr = err
	}
}

// WithBaseURL sets the base URL
func WithBaseURL(url string) MockOption {
	return func(m *MockClient) {
		m.baseURL = url
	}
}

// NewMockClient creates a new mock registry client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL:         "http://mock-registro.local",
		characteristics: DefaultMockCharacteristics(),
		holders:         DefaultMockHolders(),
		vehicles:        DefaultMockVehicles(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BaseURL returns the configured base URL
func (m *MockClient) BaseURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseURL
}

// SetBaseURL updates the base URL
func (m *MockClient) SetBaseURL(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseURL = url
}

// SetToken records the token
func (m *MockClient) SetToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

// Token returns the last token set (for testing)
func (m *MockClient) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// FetchCharacteristics returns the configured catalog or error
func (m *MockClient) FetchCharacteristics(ctx context.Context) ([]Characteristic, error) {
	if m.catalogErr != nil {
		return nil, m.catalogErr
	}
	return m.characteristics, nil
}

// SearchHolders matches the query against name, RFC, CURP and concession numbers
func (m *MockClient) SearchHolders(ctx context.Context, query string) ([]HolderRecord, error) {
	if m.holdersErr != nil {
		return nil, m.holdersErr
	}
	q := strings.ToLower(strings.TrimSpace(query))
	var found []HolderRecord
	for _, h := range m.holders {
		if q == "" || holderMatches(h, q) {
			found = append(found, h)
		}
	}
	return found, nil
}

func holderMatches(h HolderRecord, q string) bool {
	for _, s := range []string{h.Name, h.RFC, h.CURP} {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	for _, c := range h.Concessions {
		if strings.Contains(strings.ToLower(c.Number), q) {
			return true
		}
	}
	return false
}

// FetchVehicles returns the configured vehicles or error
func (m *MockClient) FetchVehicles(ctx context.Context) ([]VehicleRecord, error) {
	if m.vehiclesErr != nil {
		return nil, m.vehiclesErr
	}
	return m.vehicles, nil
}

// SubmitInspection records the submission and returns a receipt
func (m *MockClient) SubmitInspection(ctx context.Context, s Submission) (*Receipt, error) {
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions = append(m.submissions, s)
	return &Receipt{ID: FlexString(fmt.Sprintf("REC-%d", len(m.submissions))), Status: "accepted"}, nil
}

// Submissions returns what has been submitted so far (for testing)
func (m *MockClient) Submissions() []Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Submission, len(m.submissions))
	copy(out, m.submissions)
	return out
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)

// tierOptions is the option scale shared by the default characteristics
func tierOptions(labels ...string) []CharacteristicOption {
	opts := make([]CharacteristicOption, len(labels))
	for i, l := range labels {
		opts[i] = CharacteristicOption{ID: FlexString(fmt.Sprintf("%d", i+1)), Label: l, Points: i}
	}
	return opts
}

// DefaultMockCharacteristics returns six characteristics worth up to 3 points each
func DefaultMockCharacteristics() []Characteristic {
	return []Characteristic{
		{Key: "antiguedad", Label: "Antigüedad del vehículo", Order: 1,
			Options: tierOptions("Más de 10 años", "De 7 a 10 años", "De 4 a 6 años", "3 años o menos")},
		{Key: "tipo_frenos", Label: "Tipo de frenos", Order: 2,
			Options: tierOptions("Tambor", "Mixtos", "Disco", "Disco con ABS")},
		{Key: "cinturones", Label: "Cinturones de seguridad", Order: 3,
			Options: tierOptions("Ninguno", "Solo delanteros", "Todos de dos puntos", "Todos de tres puntos")},
		{Key: "aire_acondicionado", Label: "Aire acondicionado", Order: 4,
			Options: tierOptions("No tiene", "Descompuesto", "Funcional", "Funcional con mantenimiento")},
		{Key: "tapiceria", Label: "Tapicería", Order: 5,
			Options: tierOptions("Rota", "Desgastada", "Buena", "Excelente")},
		{Key: "pintura", Label: "Pintura y carrocería", Order: 6,
			Options: tierOptions("Dañada", "Regular", "Buena", "Excelente")},
	}
}

// DefaultMockHolders returns a few titulares with concessions
func DefaultMockHolders() []HolderRecord {
	return []HolderRecord{
		{ID: 1001, Name: "Rosa María Hernández Soto", RFC: "HESR750312KT4", CURP: "HESR750312MVZRTS05", Phone: "228-111-2233",
			Address: "Av. Xalapa 120, Xalapa, Ver.",
			Concessions: []ConcessionRecord{
				{Number: "TX-XAL-0042", Modality: "taxi", Status: "vigente", ExpiresOn: "2027-06-30"},
			}},
		{ID: 1002, Name: "José Luis Martínez Cruz", RFC: "MACJ680101AB1", CURP: "MACJ680101HVZRRS09", Phone: "229-444-5566",
			Address: "Calle Juárez 45, Veracruz, Ver.",
			Concessions: []ConcessionRecord{
				{Number: "UR-VER-0107", Modality: "urbano", Route: "Centro - Boca del Río", Status: "vigente", ExpiresOn: "2026-12-31"},
				{Number: "TX-VER-0315", Modality: "taxi", Status: "vigente", ExpiresOn: "2028-03-15"},
			}},
		{ID: 1003, Name: "Transportes Colectivos del Golfo S.A. de C.V.", RFC: "TCG990505QW2", Phone: "921-777-8899",
			Address: "Blvd. Costero 8, Coatzacoalcos, Ver.",
			Concessions: []ConcessionRecord{
				{Number: "CO-COA-0009", Modality: "colectivo", Route: "Centro - Allende", Status: "suspendida", ExpiresOn: "2025-11-30"},
			}},
	}
}

// DefaultMockVehicles returns vehicles assigned to the default concessions
func DefaultMockVehicles() []VehicleRecord {
	return []VehicleRecord{
		{Plate: "A-123-XAL", Serial: "3N1EB31S8FK123456", EngineNumber: "GA16-778812", Brand: "Nissan", Model: "Tsuru",
			Year: 2015, Color: "Blanco", Capacity: 4, FuelType: "gasolina", ConcessionNumber: "TX-XAL-0042"},
		{Plate: "B-456-VER", Serial: "3VWFE21C8DM654321", EngineNumber: "CBP-220311", Brand: "Volkswagen", Model: "Vento",
			Year: 2021, Color: "Rojo", Capacity: 4, FuelType: "gasolina", ConcessionNumber: "TX-VER-0315"},
		{Plate: "U-789-VER", Serial: "9BM384078JB987654", EngineNumber: "OM924-55120", Brand: "Mercedes-Benz", Model: "Boxer OF-1721",
			Year: 2018, Color: "Verde", Capacity: 40, FuelType: "diésel", ConcessionNumber: "UR-VER-0107"},
		{Plate: "C-321-COA", Serial: "JTFSX23P0G6111222", EngineNumber: "2KD-900114", Brand: "Toyota", Model: "Hiace",
			Year: 2016, Color: "Blanco", Capacity: 15, FuelType: "diésel", ConcessionNumber: "CO-COA-0009"},
	}
}
