// Package testutil provides testing utilities for the availability optimizer.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockAvailability is a configurable mock Healthie GraphQL server.
// It answers every POST with an availableSlotsForRange payload derived from
// the request variables, with optional artificial latency and injected
// failures, and tracks the number of concurrently in-flight requests.
type MockAvailability struct {
	server *httptest.Server
	mu     sync.Mutex

	// Behavior knobs.
	Delay      time.Duration // artificial latency per request
	FailEveryN int           // every Nth request answers HTTP 500 (0 = never)
	GraphQLErr string        // when set, every response carries a GraphQL error

	// Tracking.
	RequestCount   int
	inFlight       int
	MaxInFlight    int
	LastVariables  map[string]any
	LastAuthHeader string
}

// NewMockAvailability creates and starts a mock availability server.
func NewMockAvailability() *MockAvailability {
	mock := &MockAvailability{}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock server URL.
func (m *MockAvailability) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAvailability) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAvailability) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.MaxInFlight = 0
	m.LastVariables = nil
	m.LastAuthHeader = ""
}

// Requests returns the total request count.
func (m *MockAvailability) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RequestCount
}

// PeakConcurrency returns the high-water mark of simultaneously in-flight
// requests observed by the server.
func (m *MockAvailability) PeakConcurrency() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.MaxInFlight
}

func (m *MockAvailability) handle(w http.ResponseWriter, r *http.Request) {
	var envelope struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	_ = json.NewDecoder(r.Body).Decode(&envelope)

	m.mu.Lock()
	m.RequestCount++
	seq := m.RequestCount
	m.inFlight++
	if m.inFlight > m.MaxInFlight {
		m.MaxInFlight = m.inFlight
	}
	m.LastVariables = envelope.Variables
	m.LastAuthHeader = r.Header.Get("Authorization")
	delay := m.Delay
	failEvery := m.FailEveryN
	gqlErr := m.GraphQLErr
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if delay > 0 {
		time.Sleep(delay)
	}

	if failEvery > 0 && seq%failEvery == 0 {
		http.Error(w, "injected failure", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if gqlErr != "" {
		fmt.Fprintf(w, `{"data":null,"errors":[{"message":%q}]}`, gqlErr)
		return
	}

	startDate, _ := envelope.Variables["start_date"].(string)
	fmt.Fprintf(w, `{"data":{"availableSlotsForRange":[{"date":%q,"appointment_id":"appt-1","user_id":"prov-1","is_fully_booked":false}]}}`, startDate)
}
