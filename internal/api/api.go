// Package api serves the backtest pipeline over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/findash/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/findash/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/findash/internal/config"
	"github.com/rxtech-lab/findash/internal/logger"
	"github.com/rxtech-lab/findash/internal/metrics"
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/internal/version"
)

// SeriesSource supplies the daily price series a request runs on.
type SeriesSource interface {
	FetchSeries(ctx context.Context, ticker string, start, end time.Time) (types.PriceSeries, error)
}

// Server holds the collaborators shared by all handlers.
type Server struct {
	source  SeriesSource
	engine  engine.Engine
	metrics *metrics.Metrics
	log     *logger.Logger
	config  config.ServerConfig
}

// NewServer creates a server. A nil metrics registers collectors on a fresh
// registry and a nil logger disables logging.
func NewServer(source SeriesSource, cfg config.ServerConfig, m *metrics.Metrics, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if m == nil {
		m = metrics.NewMetrics(nil)
	}

	return &Server{
		source:  source,
		engine:  engine_v1.NewBacktestEngineV1(log.Component("engine")),
		metrics: m,
		log:     log,
		config:  cfg,
	}
}

// Router returns the HTTP handler with every route and middleware registered.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()

	router.Use(requestIDMiddleware)
	router.Use(corsMiddleware(s.config.AllowedOrigins))
	router.Use(s.observeMiddleware)

	router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/schema", s.handleSchema).Methods(http.MethodGet)
	api.HandleFunc("/backtest", s.handleBacktest).Methods(http.MethodPost, http.MethodOptions)

	stock := api.PathPrefix("/stock").Subrouter()
	stock.HandleFunc("/price-data", s.handlePriceData).Methods(http.MethodPost, http.MethodOptions)
	stock.HandleFunc("/performance", s.handlePerformance).Methods(http.MethodPost, http.MethodOptions)
	stock.HandleFunc("/trades", s.handleTrades).Methods(http.MethodPost, http.MethodOptions)
	stock.HandleFunc("/rsi", s.handleRSI).Methods(http.MethodPost, http.MethodOptions)
	stock.HandleFunc("/macd", s.handleMACD).Methods(http.MethodPost, http.MethodOptions)
	stock.HandleFunc("/bollinger", s.handleBollinger).Methods(http.MethodPost, http.MethodOptions)

	return router
}

// HTTPServer wraps Router in an http.Server listening on the configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "FinDash API is running",
		"status":  "healthy",
		"version": version.GetVersion(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	params := types.DefaultStrategyParams()

	schema, err := params.GenerateSchema()
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, schema)
}
