package handlers

import "github.com/abrezinsky/revista/internal/models"

// CreatedResponse is returned by create endpoints
type CreatedResponse struct {
	ID int64 `json:"id"`
}

// InspectionListResponse wraps an inspection listing
type InspectionListResponse struct {
	Inspections []models.Inspection `json:"inspections"`
	Count       int                 `json:"count"`
}

// SeedResponse reports how many rows a seed added
type SeedResponse struct {
	Message string `json:"message"`
	Added   int    `json:"added"`
}
