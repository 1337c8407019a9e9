// Package models defines the domain models and typed errors of the API.
package models

import "fmt"

// ValidationError indicates that an input or a payload failed local validation.
// No network call is retried for it; the caller must fix the input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validação falhou em %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validação falhou: %s", e.Message)
}

// NetworkError represents a transport-level failure reaching a remote system.
type NetworkError struct {
	Operation string
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("falha de rede durante %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError represents a non-2xx response from a remote system.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d de %s", e.StatusCode, e.URL)
}

// ProtocolError indicates the remote system answered with a body that is not
// parseable JSON. Repeating the call will not fix it, so it is never retried.
type ProtocolError struct {
	Operation string
	Err       error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("resposta inválida durante %s: %v", e.Operation, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// TimeoutError represents a single operation exceeding its deadline.
type TimeoutError struct {
	Operation string
	Timeout   string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout durante %s após %s", e.Operation, e.Timeout)
}

// PollingTimeoutError is returned when the polling budget is exhausted without
// the callback store ever producing data.
type PollingTimeoutError struct {
	URL      string
	Attempts int
}

func (e *PollingTimeoutError) Error() string {
	return fmt.Sprintf("tempo limite excedido após %d tentativas de consulta para %s", e.Attempts, e.URL)
}
