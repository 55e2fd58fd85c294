package services

import "fmt"

// Service errors
var (
	ErrNoTablesSpecified = &ServiceError{Message: "no tables specified"}
	ErrInvalidSeedType   = &ServiceError{Message: "invalid seed type"}
	ErrRegistryNotSet    = &ServiceError{Message: "registry URL is not configured"}
	ErrBaseURLNotSet     = &ServiceError{Message: "base URL is not configured"}
	ErrEmptyCatalog      = &ServiceError{Message: "catalog is empty: sync it from the registry or seed the defaults"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// InvalidTableError represents an invalid table name error
type InvalidTableError struct {
	Table string
}

func (e *InvalidTableError) Error() string {
	return fmt.Sprintf("invalid table name: %s", e.Table)
}
