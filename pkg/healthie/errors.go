package healthie

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrMissingEndpoint is returned when no API endpoint is configured.
	ErrMissingEndpoint = errors.New("api endpoint is required")

	// ErrGraphQL is returned when the API reports GraphQL-level errors in
	// an otherwise successful HTTP response.
	ErrGraphQL = errors.New("graphql error")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassGraphQL represents errors reported in the GraphQL response
	// body (HTTP 200 with an errors array).
	ErrorClassGraphQL ErrorClass = "graphql"
)

// APIError represents an upstream API failure with classification context.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("healthie %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("healthie %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}
