package healthie

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/OpenLoopHealth/healthie-dev-tools/internal/testutil"
	"github.com/OpenLoopHealth/healthie-dev-tools/pkg/daterange"
)

func testRange() daterange.DateRange {
	return daterange.DateRange{
		Start: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC),
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError error
	}{
		{
			name:        "valid config",
			config:      DefaultConfig("https://api.example.com/graphql"),
			expectError: nil,
		},
		{
			name:        "missing endpoint",
			config:      Config{},
			expectError: ErrMissingEndpoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if tt.expectError == nil && err != nil {
				t.Errorf("New() unexpected error: %v", err)
			}
			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Errorf("New() error = %v, want %v", err, tt.expectError)
			}
		})
	}
}

func TestFetchAvailability_Success(t *testing.T) {
	mock := testutil.NewMockAvailability()
	defer mock.Close()

	client, err := New(DefaultConfig(mock.URL()))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	params := AvailabilityParams{
		ProviderID: "prov-1",
		ApptTypeID: "appt-1",
		State:      "IA",
		Timezone:   "America/Chicago",
	}

	slots, err := client.FetchAvailability(context.Background(), params, testRange())
	if err != nil {
		t.Fatalf("FetchAvailability failed: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("Expected 1 slot, got %d", len(slots))
	}
	if slots[0].Date != "2025-03-10" {
		t.Errorf("Slot date = %q, want 2025-03-10", slots[0].Date)
	}

	// The query variables must carry the chunk boundaries and params.
	vars := mock.LastVariables
	checks := map[string]string{
		"provider_id":  "prov-1",
		"appt_type_id": "appt-1",
		"start_date":   "2025-03-10",
		"end_date":     "2025-03-16",
		"state":        "IA",
		"timezone":     "America/Chicago",
	}
	for key, want := range checks {
		if got, _ := vars[key].(string); got != want {
			t.Errorf("Variable %s = %q, want %q", key, got, want)
		}
	}
}

func TestExecute_ServerError(t *testing.T) {
	mock := testutil.NewMockAvailability()
	defer mock.Close()
	mock.FailEveryN = 1

	client, _ := New(DefaultConfig(mock.URL()))

	_, err := client.Execute(context.Background(), "query { ping }", nil)
	if err == nil {
		t.Fatal("Expected error for HTTP 500")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %T: %v", err, err)
	}
	if apiErr.ErrorClass != ErrorClassServer {
		t.Errorf("ErrorClass = %q, want %q", apiErr.ErrorClass, ErrorClassServer)
	}
	if apiErr.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
	}
}

func TestExecute_GraphQLError(t *testing.T) {
	mock := testutil.NewMockAvailability()
	defer mock.Close()
	mock.GraphQLErr = "Field 'availableSlotsForRange' is missing required arguments"

	client, _ := New(DefaultConfig(mock.URL()))

	_, err := client.Execute(context.Background(), "query { ping }", nil)
	if err == nil {
		t.Fatal("Expected error for GraphQL-level failure")
	}
	if !errors.Is(err, ErrGraphQL) {
		t.Errorf("Expected error to wrap ErrGraphQL, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %T", err)
	}
	if apiErr.ErrorClass != ErrorClassGraphQL {
		t.Errorf("ErrorClass = %q, want %q", apiErr.ErrorClass, ErrorClassGraphQL)
	}
}

func TestExecute_NetworkError(t *testing.T) {
	mock := testutil.NewMockAvailability()
	url := mock.URL()
	mock.Close() // nothing listening anymore

	client, _ := New(DefaultConfig(url))

	_, err := client.Execute(context.Background(), "query { ping }", nil)
	if err == nil {
		t.Fatal("Expected error for unreachable endpoint")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %T: %v", err, err)
	}
	if apiErr.ErrorClass != ErrorClassNetwork {
		t.Errorf("ErrorClass = %q, want %q", apiErr.ErrorClass, ErrorClassNetwork)
	}
}

func TestExecute_AuthHeader(t *testing.T) {
	mock := testutil.NewMockAvailability()
	defer mock.Close()

	cfg := DefaultConfig(mock.URL())
	cfg.AuthToken = "test-api-key"
	client, _ := New(cfg)

	if _, err := client.Execute(context.Background(), "query { ping }", nil); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if mock.LastAuthHeader != "Basic test-api-key" {
		t.Errorf("Authorization header = %q, want %q", mock.LastAuthHeader, "Basic test-api-key")
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status   int
		expected ErrorClass
	}{
		{400, ErrorClassClient},
		{404, ErrorClassClient},
		{422, ErrorClassClient},
		{500, ErrorClassServer},
		{503, ErrorClassServer},
		{200, ""},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.status); got != tt.expected {
			t.Errorf("classifyStatus(%d) = %q, want %q", tt.status, got, tt.expected)
		}
	}
}
