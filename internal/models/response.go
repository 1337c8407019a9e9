package models

import (
	"time"
)

// APIResponse is the standard envelope for success responses.
type APIResponse struct {
	Success   bool        `json:"success" example:"true"`
	Message   string      `json:"message,omitempty" example:"Consulta realizada com sucesso"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp" example:"2025-08-25T17:25:30.468715-03:00"`
}

// ErrorResponse is the standard envelope for error responses.
type ErrorResponse struct {
	Error     string    `json:"error" example:"URL inválida"`
	Message   string    `json:"message" example:"Informe uma URL de um site de leilões brasileiro"`
	Code      string    `json:"code,omitempty" example:"INVALID_URL"`
	Timestamp time.Time `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Path      string    `json:"path" example:"/api/v1/analises"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status" example:"healthy"`
	Timestamp time.Time              `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Services  map[string]interface{} `json:"services,omitempty"`
	Version   string                 `json:"version,omitempty" example:"1.0.0"`
}
