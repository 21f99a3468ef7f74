package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flights "github.com/radicalxdev/mission-gemini-flights-backend"
	"github.com/radicalxdev/mission-gemini-flights-backend/booking"
	"github.com/radicalxdev/mission-gemini-flights-backend/generator"
	"github.com/radicalxdev/mission-gemini-flights-backend/search"
	"github.com/radicalxdev/mission-gemini-flights-backend/server"
	"github.com/radicalxdev/mission-gemini-flights-backend/store/memstore"
)

func newTestServer(t *testing.T) (*server.Server, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	srv := server.New(server.Config{
		Store:     store,
		Searcher:  search.New(store),
		Booker:    booking.New(store),
		Generator: generator.New(),
	})
	return srv, store
}

func seedFlight(t *testing.T, store *memstore.Store) *flights.Flight {
	t.Helper()
	dep := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	f, err := store.Insert(context.Background(), &flights.Flight{
		FlightNumber:     "PA123",
		Airline:          "Phantom",
		Origin:           "JFK",
		Destination:      "LAX",
		Date:             time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		DepartureTime:    dep,
		ArrivalTime:      dep.Add(5 * time.Hour),
		OpenSeatsEconomy: 5,
		CapacityEconomy:  5,
		EconomySeatCost:  120,
	})
	require.NoError(t, err)
	return f
}

func doJSON(t *testing.T, srv *server.Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_GenerateFlights(t *testing.T) {
	srv, store := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/flights/generate",
		`{"origin":"JFK","destination":"LAX","date":"2024-03-15","count":3}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var generated []*flights.Flight
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &generated))
	require.Len(t, generated, 3)
	assert.Equal(t, int64(1), generated[0].FlightID)
	assert.Equal(t, 3, store.Len())
}

func TestServer_GenerateFlights_MissingRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/flights/generate", `{"origin":"JFK"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_GetFlight(t *testing.T) {
	srv, store := newTestServer(t)
	seeded := seedFlight(t, store)

	rec := doJSON(t, srv, http.MethodGet, "/flights/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got flights.Flight
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, seeded.FlightID, got.FlightID)
	assert.Equal(t, "PA123", got.FlightNumber)
}

func TestServer_GetFlight_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/flights/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_SearchFlights(t *testing.T) {
	srv, store := newTestServer(t)
	seedFlight(t, store)

	rec := doJSON(t, srv, http.MethodGet,
		"/flights/search?origin=JFK&destination=LAX&start_date=2024-03-15&end_date=2024-03-15", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result search.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.TotalMatches)
	assert.Equal(t, "PA123", result.Flights[0].FlightNumber)
}

func TestServer_SearchFlights_InvalidCriteria(t *testing.T) {
	srv, _ := newTestServer(t)

	// end before start is rejected by the engine
	rec := doJSON(t, srv, http.MethodGet,
		"/flights/search?origin=JFK&destination=LAX&start_date=2024-03-16&end_date=2024-03-15", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// malformed date is rejected by the handler
	rec = doJSON(t, srv, http.MethodGet,
		"/flights/search?origin=JFK&destination=LAX&start_date=bogus&end_date=2024-03-15", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_BookFlights(t *testing.T) {
	srv, store := newTestServer(t)
	seedFlight(t, store)

	rec := doJSON(t, srv, http.MethodPost, "/flights/book",
		`{"flight_id":1,"seat_type":"economy","num_seats":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result booking.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 240, result.TotalCost)
	assert.NotEmpty(t, result.Confirmation)

	stored, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.OpenSeatsEconomy)
}

func TestServer_BookFlights_RejectionsAre200(t *testing.T) {
	srv, store := newTestServer(t)
	seedFlight(t, store)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "unknown flight",
			body:    `{"flight_id":42,"seat_type":"economy","num_seats":1}`,
			message: "Flight not found.",
		},
		{
			name:    "not enough seats",
			body:    `{"flight_id":1,"seat_type":"economy","num_seats":6}`,
			message: "Not enough economy seats available.",
		},
		{
			name:    "unknown seat class",
			body:    `{"flight_id":1,"seat_type":"premium_economy","num_seats":1}`,
			message: "Not enough premium_economy seats available.",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/flights/book", test.body)
			require.Equal(t, http.StatusOK, rec.Code)

			var result booking.Result
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
			assert.False(t, result.Success)
			assert.Equal(t, test.message, result.Message)
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	srv, store := newTestServer(t)
	seedFlight(t, store)

	doJSON(t, srv, http.MethodGet,
		"/flights/search?origin=JFK&destination=LAX&start_date=2024-03-15&end_date=2024-03-15", "")
	doJSON(t, srv, http.MethodPost, "/flights/book",
		`{"flight_id":1,"seat_type":"economy","num_seats":1}`)

	rec := doJSON(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `flights_searches_total{outcome="ok"} 1`)
	assert.Contains(t, rec.Body.String(), `flights_bookings_total{outcome="ok"} 1`)
}
