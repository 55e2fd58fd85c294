package models

import (
	"github.com/abrezinsky/revista/pkg/scoring"
)

// Holder is a concession holder (titular)
type Holder struct {
	ID          int          `json:"id"`
	RegistryID  *int         `json:"registry_id,omitempty"`
	Name        string       `json:"name"`
	RFC         string       `json:"rfc"`
	CURP        string       `json:"curp,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Address     string       `json:"address,omitempty"`
	Concessions []Concession `json:"concessions,omitempty"`
}

// Concession is a public-transport permit held by a titular
type Concession struct {
	ID        int    `json:"id"`
	HolderID  int    `json:"holder_id"`
	Number    string `json:"number"`
	Modality  string `json:"modality"` // e.g. "taxi", "colectivo", "urbano"
	Route     string `json:"route,omitempty"`
	Status    string `json:"status"`
	ExpiresOn string `json:"expires_on,omitempty"`
	// Vehicles assigned to the concession, filled by detail lookups
	Vehicles []Vehicle `json:"vehicles,omitempty"`
}

// Vehicle is a unit registered under a concession
type Vehicle struct {
	ID           int    `json:"id"`
	ConcessionID *int   `json:"concession_id"`
	Plate        string `json:"plate"`
	Serial       string `json:"serial"` // VIN
	EngineNumber string `json:"engine_number,omitempty"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Color        string `json:"color,omitempty"`
	Capacity     int    `json:"capacity"`
	FuelType     string `json:"fuel_type,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	// Joined from the concession
	ConcessionNumber string `json:"concession_number,omitempty"`
	HolderName       string `json:"holder_name,omitempty"`
}

// CatalogOption is one row of the scored-characteristic catalog
type CatalogOption struct {
	Characteristic      string `json:"characteristic"`
	CharacteristicLabel string `json:"characteristic_label"`
	CharacteristicOrder int    `json:"characteristic_order"`
	OptionID            string `json:"option_id"`
	OptionLabel         string `json:"option_label"`
	Points              int    `json:"points"`
	DisplayOrder        int    `json:"display_order"`
}

// Inspection statuses
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusCertified = "certified"
	StatusCancelled = "cancelled"
)

// Inspection is one revista vehicular. Score fields hold the last computed result.
type Inspection struct {
	ID               int                    `json:"id"`
	Folio            string                 `json:"folio"`
	VehicleID        int                    `json:"vehicle_id"`
	Inspector        string                 `json:"inspector"`
	Answers          scoring.AnswerSet      `json:"answers"`
	Score            int                    `json:"score"`
	MaxScore         int                    `json:"max_score"`
	Classification   scoring.Classification `json:"classification"`
	ClassificationID int                    `json:"classification_id"`
	Rejected         bool                   `json:"rejected"`
	Complete         bool                   `json:"complete"`
	Status           string                 `json:"status"`
	Observations     string                 `json:"observations,omitempty"`
	SchemaVersion    int                    `json:"schema_version"`
	CreatedAt        string                 `json:"created_at"`
	UpdatedAt        string                 `json:"updated_at,omitempty"`
	SubmittedAt      string                 `json:"submitted_at,omitempty"`
	CertifiedAt      string                 `json:"certified_at,omitempty"`
	// Joined from the vehicle
	Plate            string `json:"plate,omitempty"`
	ConcessionNumber string `json:"concession_number,omitempty"`
}

// ApplyResult copies a scoring result onto the inspection
func (i *Inspection) ApplyResult(r scoring.Result) {
	i.Score = r.Score
	i.MaxScore = r.MaxScore
	i.Classification = r.Classification
	i.ClassificationID = r.ClassID
	i.Rejected = r.Rejected
	i.Complete = r.Complete
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
