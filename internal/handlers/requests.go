package handlers

import (
	"github.com/abrezinsky/revista/internal/models"
	"github.com/abrezinsky/revista/pkg/scoring"
)

// HolderRequest creates or updates a titular
type HolderRequest struct {
	Name    string `json:"name"`
	RFC     string `json:"rfc"`
	CURP    string `json:"curp"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (r HolderRequest) toModel(id int) models.Holder {
	return models.Holder{ID: id, Name: r.Name, RFC: r.RFC, CURP: r.CURP, Phone: r.Phone, Address: r.Address}
}

// ConcessionRequest creates or updates a concession
type ConcessionRequest struct {
	HolderID  int    `json:"holder_id"`
	Number    string `json:"number"`
	Modality  string `json:"modality"`
	Route     string `json:"route"`
	Status    string `json:"status"`
	ExpiresOn string `json:"expires_on"`
}

func (r ConcessionRequest) toModel(id int) models.Concession {
	return models.Concession{
		ID:        id,
		HolderID:  r.HolderID,
		Number:    r.Number,
		Modality:  r.Modality,
		Route:     r.Route,
		Status:    r.Status,
		ExpiresOn: r.ExpiresOn,
	}
}

// VehicleRequest creates or updates a vehicle
type VehicleRequest struct {
	ConcessionID *int   `json:"concession_id"`
	Plate        string `json:"plate"`
	Serial       string `json:"serial"`
	EngineNumber string `json:"engine_number"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Color        string `json:"color"`
	Capacity     int    `json:"capacity"`
	FuelType     string `json:"fuel_type"`
	PhotoURL     string `json:"photo_url"`
}

func (r VehicleRequest) toModel(id int) models.Vehicle {
	return models.Vehicle{
		ID:           id,
		ConcessionID: r.ConcessionID,
		Plate:        r.Plate,
		Serial:       r.Serial,
		EngineNumber: r.EngineNumber,
		Brand:        r.Brand,
		Model:        r.Model,
		Year:         r.Year,
		Color:        r.Color,
		Capacity:     r.Capacity,
		FuelType:     r.FuelType,
		PhotoURL:     r.PhotoURL,
	}
}

// HolderSyncRequest searches the registry for titulares to import
type HolderSyncRequest struct {
	Query string `json:"query"`
}

// InspectionCreateRequest opens a draft inspection for a vehicle
type InspectionCreateRequest struct {
	VehicleID int    `json:"vehicle_id"`
	Inspector string `json:"inspector"`
}

// PreviewRequest scores answers without persisting them
type PreviewRequest struct {
	Answers scoring.AnswerSet `json:"answers"`
}

// UpdatesRequest applies answer updates to a draft, in order
type UpdatesRequest struct {
	Updates []scoring.Update `json:"updates"`
}

// ObservationsRequest replaces the inspector's free-text notes
type ObservationsRequest struct {
	Observations string `json:"observations"`
}

// SettingsUpdateRequest represents a request to update settings.
// Omitted fields are left unchanged.
type SettingsUpdateRequest struct {
	RegistryURL      *string `json:"registry_url"`
	RegistryToken    *string `json:"registry_token"`
	BaseURL          *string `json:"base_url"`
	DefaultInspector *string `json:"default_inspector"`
}

// DatabaseResetRequest represents a request to reset database tables
type DatabaseResetRequest struct {
	Tables []string `json:"tables"`
}

// SeedMockDataRequest represents a request to seed mock data
type SeedMockDataRequest struct {
	SeedType string `json:"seed_type"`
}
