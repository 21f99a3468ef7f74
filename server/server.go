// Package server exposes the flight inventory over HTTP for operators and
// integration clients.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	flights "github.com/radicalxdev/mission-gemini-flights-backend"
	"github.com/radicalxdev/mission-gemini-flights-backend/booking"
	"github.com/radicalxdev/mission-gemini-flights-backend/generator"
	"github.com/radicalxdev/mission-gemini-flights-backend/search"
)

// Metrics counts searches and bookings for the /metrics endpoint.
type Metrics struct {
	Searches *prometheus.CounterVec
	Bookings *prometheus.CounterVec
}

// NewMetrics registers the server's counters on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Searches: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "flights_searches_total",
			Help: "Flight searches served, by outcome.",
		}, []string{"outcome"}),
		Bookings: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "flights_bookings_total",
			Help: "Booking attempts served, by outcome.",
		}, []string{"outcome"}),
	}
}

// Server wires the engines behind an echo router.
type Server struct {
	echo      *echo.Echo
	store     flights.Store
	searcher  *search.Engine
	booker    *booking.Engine
	generator *generator.Generator
	metrics   *Metrics
	log       logrus.FieldLogger
	addr      string
}

// Config carries everything a Server needs.
type Config struct {
	Addr      string
	Store     flights.Store
	Searcher  *search.Engine
	Booker    *booking.Engine
	Generator *generator.Generator
	Metrics   *Metrics
	Logger    logrus.FieldLogger
	Gatherer  prometheus.Gatherer
}

// New builds the router. Metrics defaults to a fresh registry and Logger
// to the logrus standard logger.
func New(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	gatherer := cfg.Gatherer
	metrics := cfg.Metrics
	if metrics == nil {
		reg := prometheus.NewRegistry()
		metrics = NewMetrics(reg)
		gatherer = reg
	}

	s := &Server{
		store:     cfg.Store,
		searcher:  cfg.Searcher,
		booker:    cfg.Booker,
		generator: cfg.Generator,
		metrics:   metrics,
		log:       log,
		addr:      cfg.Addr,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.POST("/flights/generate", s.PostGenerateFlights)
	e.GET("/flights", s.GetFlights)
	e.GET("/flights/:id", s.GetFlight)
	e.GET("/flights/search", s.GetSearchFlights)
	e.POST("/flights/book", s.PostBookFlights)
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(
			promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	s.echo = e
	return s
}

// Echo returns the underlying router, mainly for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.log.WithError(err).Error("failed to shutdown HTTP server")
		}
	}()

	s.log.WithField("addr", s.addr).Info("HTTP server listening")
	if err := s.echo.Start(s.addr); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// errorResponse is the JSON body for failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

// httpError maps domain errors onto status codes.
func httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, flights.ErrInvalidCriteria),
		errors.Is(err, flights.ErrInvalidArguments):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, flights.ErrFlightNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, flights.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

// generateRequest is the body of POST /flights/generate.
type generateRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"`
	Count       int    `json:"count"`
}

// PostGenerateFlights generates and stores random flights on a route.
func (s *Server) PostGenerateFlights(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	input := generator.Input{Origin: req.Origin, Destination: req.Destination}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest,
				errorResponse{Error: "date must be YYYY-MM-DD"})
		}
		input.Date = date
	}
	if req.Count < 1 {
		req.Count = 1
	}

	generated, err := s.generator.Generate(c.Request().Context(), input, req.Count)
	if err != nil {
		return httpError(c, err)
	}

	stored := make([]*flights.Flight, 0, len(generated))
	for _, flight := range generated {
		inserted, err := s.store.Insert(c.Request().Context(), flight)
		if err != nil {
			return httpError(c, err)
		}
		stored = append(stored, inserted)
	}

	s.log.WithFields(logrus.Fields{
		"origin":      req.Origin,
		"destination": req.Destination,
		"count":       len(stored),
	}).Info("generated flights")
	return c.JSON(http.StatusCreated, stored)
}

// GetFlights lists every stored flight.
func (s *Server) GetFlights(c echo.Context) error {
	all, err := s.store.Query(c.Request().Context(), nil)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, all)
}

// GetFlight returns a single flight by id.
func (s *Server) GetFlight(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest,
			errorResponse{Error: "flight id must be an integer"})
	}

	flight, err := s.store.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, flight)
}

// GetSearchFlights runs a paginated search from query parameters.
func (s *Server) GetSearchFlights(c echo.Context) error {
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	result, err := s.searcher.Search(c.Request().Context(), criteria, page, pageSize)
	if err != nil {
		s.metrics.Searches.WithLabelValues("invalid").Inc()
		return httpError(c, err)
	}

	if result.TotalMatches == 0 {
		s.metrics.Searches.WithLabelValues("no_matches").Inc()
	} else {
		s.metrics.Searches.WithLabelValues("ok").Inc()
	}
	return c.JSON(http.StatusOK, result)
}

// criteriaFromQuery parses search query parameters. Validation proper is
// left to the engine; only type conversion errors are reported here.
func criteriaFromQuery(c echo.Context) (flights.SearchCriteria, error) {
	criteria := flights.SearchCriteria{
		Origin:       c.QueryParam("origin"),
		Destination:  c.QueryParam("destination"),
		FlightNumber: c.QueryParam("flight_number"),
		Airline:      c.QueryParam("airline"),
		SeatType:     flights.SeatClass(c.QueryParam("seat_type")),
	}

	var err error
	if v := c.QueryParam("start_date"); v != "" {
		if criteria.StartDate, err = time.Parse("2006-01-02", v); err != nil {
			return criteria, errors.New("start_date must be YYYY-MM-DD")
		}
	}
	if v := c.QueryParam("end_date"); v != "" {
		if criteria.EndDate, err = time.Parse("2006-01-02", v); err != nil {
			return criteria, errors.New("end_date must be YYYY-MM-DD")
		}
	}
	if v := c.QueryParam("start_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return criteria, errors.New("start_time must be RFC 3339")
		}
		criteria.StartTime = &t
	}
	if v := c.QueryParam("end_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return criteria, errors.New("end_time must be RFC 3339")
		}
		criteria.EndTime = &t
	}
	if v := c.QueryParam("min_cost"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return criteria, errors.New("min_cost must be an integer")
		}
		criteria.MinCost = &n
	}
	if v := c.QueryParam("max_cost"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return criteria, errors.New("max_cost must be an integer")
		}
		criteria.MaxCost = &n
	}
	return criteria, nil
}

// bookRequest is the body of POST /flights/book.
type bookRequest struct {
	FlightID int64  `json:"flight_id"`
	SeatType string `json:"seat_type"`
	NumSeats int    `json:"num_seats"`
}

// PostBookFlights books seats on a flight. Expected booking failures come
// back as 200 with Success=false, matching the tool payload shape.
func (s *Server) PostBookFlights(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	result, err := s.booker.Book(c.Request().Context(),
		req.FlightID, flights.SeatClass(req.SeatType), req.NumSeats)
	if err != nil {
		s.metrics.Bookings.WithLabelValues("error").Inc()
		return httpError(c, err)
	}

	if result.Success {
		s.metrics.Bookings.WithLabelValues("ok").Inc()
		s.log.WithFields(logrus.Fields{
			"flight_id":    req.FlightID,
			"seat_type":    req.SeatType,
			"num_seats":    req.NumSeats,
			"confirmation": result.Confirmation,
		}).Info("booking confirmed")
	} else {
		s.metrics.Bookings.WithLabelValues("rejected").Inc()
	}
	return c.JSON(http.StatusOK, result)
}
