// Package healthie provides a minimal GraphQL client for the Healthie API,
// scoped to the availability queries the optimizer exercises.
package healthie

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/OpenLoopHealth/healthie-dev-tools/pkg/daterange"
)

// Prometheus metrics for upstream API operations.
var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthie_requests_total",
		Help: "Total Healthie API requests by status",
	}, []string{"status"})

	apiRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "healthie_request_duration_seconds",
		Help:    "Healthie API request duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	apiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthie_errors_total",
		Help: "Total Healthie API errors by class",
	}, []string{"class"})
)

// availableSlotsQuery fetches bookable slots for one provider and date range.
const availableSlotsQuery = `query availableSlotsForRange(
  $provider_id: String,
  $appt_type_id: String,
  $start_date: String,
  $end_date: String,
  $state: String,
  $timezone: String
) {
  availableSlotsForRange(
    provider_id: $provider_id,
    appt_type_id: $appt_type_id,
    start_date: $start_date,
    end_date: $end_date,
    state: $state,
    timezone: $timezone
  ) {
    date
    appointment_id
    user_id
    is_fully_booked
  }
}`

// Client is the Healthie GraphQL API client.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Endpoint is the GraphQL endpoint URL (REQUIRED).
	Endpoint string

	// AuthToken is sent as "Authorization: Basic <token>" when set.
	// Healthie API keys use the Basic scheme.
	AuthToken string

	// Timeout for a single request round trip.
	Timeout time.Duration

	// Headers are additional headers sent with every request.
	Headers map[string]string
}

// DefaultConfig returns a safe default configuration for the given endpoint.
func DefaultConfig(endpoint string) Config {
	return Config{
		Endpoint: endpoint,
		Timeout:  30 * time.Second,
	}
}

// New creates a new Healthie client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "healthie-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// graphqlRequest is the JSON envelope for a GraphQL POST.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlResponse is the JSON envelope for a GraphQL response.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// Execute posts a GraphQL query and returns the raw data payload.
// Network failures, non-2xx statuses and GraphQL-level errors are all
// failures; the caller only depends on latency and outcome.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.AuthToken != "" {
		req.Header.Set("Authorization", "Basic "+c.config.AuthToken)
		req.Header.Set("AuthorizationSource", "API")
	}
	for key, value := range c.config.Headers {
		req.Header.Set(key, value)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	apiRequestDuration.Observe(time.Since(startTime).Seconds())

	if err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		apiRequestsTotal.WithLabelValues("network_error").Inc()
		c.logger.Warn().Err(err).Msg("Request failed")
		return nil, &APIError{
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	apiRequestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errClass := classifyStatus(resp.StatusCode)
		apiErrorsTotal.WithLabelValues(string(errClass)).Inc()
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("API request error")
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	var envelope graphqlResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorClassGraphQL)).Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassGraphQL,
			Message:    "decode response",
			Err:        err,
		}
	}

	if len(envelope.Errors) > 0 {
		apiErrorsTotal.WithLabelValues(string(ErrorClassGraphQL)).Inc()
		c.logger.Warn().
			Str("message", envelope.Errors[0].Message).
			Int("error_count", len(envelope.Errors)).
			Msg("GraphQL errors in response")
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassGraphQL,
			Message:    envelope.Errors[0].Message,
			Err:        ErrGraphQL,
		}
	}

	return envelope.Data, nil
}

// classifyStatus categorizes an HTTP status for observability and handling.
func classifyStatus(status int) ErrorClass {
	switch {
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// AvailabilityParams identifies the provider and appointment configuration
// whose availability is queried.
type AvailabilityParams struct {
	ProviderID string
	ApptTypeID string
	State      string
	Timezone   string
}

// Slot is one bookable slot returned by the availability query.
type Slot struct {
	Date          string `json:"date"`
	AppointmentID string `json:"appointment_id"`
	UserID        string `json:"user_id"`
	IsFullyBooked bool   `json:"is_fully_booked"`
}

// availabilityData is the data payload shape of availableSlotsQuery.
type availabilityData struct {
	AvailableSlotsForRange []Slot `json:"availableSlotsForRange"`
}

// FetchAvailability queries bookable slots for one date range chunk.
func (c *Client) FetchAvailability(ctx context.Context, params AvailabilityParams, r daterange.DateRange) ([]Slot, error) {
	variables := map[string]any{
		"provider_id":  params.ProviderID,
		"appt_type_id": params.ApptTypeID,
		"start_date":   r.StartDate(),
		"end_date":     r.EndDate(),
		"state":        params.State,
		"timezone":     params.Timezone,
	}

	data, err := c.Execute(ctx, availableSlotsQuery, variables)
	if err != nil {
		return nil, fmt.Errorf("fetch availability %s: %w", r, err)
	}

	var payload availabilityData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode availability %s: %w", r, err)
	}

	c.logger.Debug().
		Str("range", r.String()).
		Int("slots", len(payload.AvailableSlotsForRange)).
		Msg("Fetched availability chunk")

	return payload.AvailableSlotsForRange, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}
