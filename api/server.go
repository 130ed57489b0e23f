// Package api - Thin, deterministic API layer.
// The API is ONLY responsible for: input ingestion, engine orchestration,
// output serialization. The API NEVER performs pricing logic.
package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"resale-pricing/core/ddp"
	"resale-pricing/core/engine"
	"resale-pricing/core/platform"
	"resale-pricing/core/rates"
	"resale-pricing/core/types"
	"resale-pricing/internal/errors"
	"resale-pricing/internal/logging"
)

// Server is the HTTP API server
type Server struct {
	engine  *engine.Engine
	mux     *http.ServeMux
	version string
	logger  *zap.Logger
}

// NewServer creates the API server over one engine
func NewServer(eng *engine.Engine, version string) *Server {
	s := &Server{
		engine:  eng,
		mux:     http.NewServeMux(),
		version: version,
		logger:  logging.Logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /rates", s.handleRates)
	s.mux.HandleFunc("POST /price", s.handlePrice)
	s.mux.HandleFunc("POST /price/batch", s.handlePriceBatch)
	s.mux.HandleFunc("POST /price/platform", s.handlePlatformPrice)

	// Supporting endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// handleRates handles POST /rates
func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req RatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}
	if req.ActualKg <= 0 {
		s.writeError(w, "VALIDATION_ERROR", "actual_kg must be positive", http.StatusBadRequest)
		return
	}
	if req.DestinationCountry == "" {
		s.writeError(w, "VALIDATION_ERROR", "destination_country is required", http.StatusBadRequest)
		return
	}

	month := time.January
	if req.Month >= 1 && req.Month <= 12 {
		month = time.Month(req.Month)
	}

	results, err := s.engine.AggregateShippingRates(r.Context(), rates.Query{
		Weight: types.WeightSpec{
			ActualKg: req.ActualKg,
			LengthCm: req.LengthCm,
			WidthCm:  req.WidthCm,
			HeightCm: req.HeightCm,
		},
		DestinationCountry: req.DestinationCountry,
		DeclaredValue:      decimal.NewFromFloat(req.DeclaredValue),
		NeedInsurance:      req.NeedInsurance,
		NeedSignature:      req.NeedSignature,
		Month:              month,
	})
	if err != nil {
		s.writeError(w, "ENGINE_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	if results == nil {
		// An uncovered query is an empty list on the wire, not null.
		results = []types.RateResult{}
	}

	meta := s.audit(r, "rates", req, start, true)
	s.writeJSON(w, RatesResponse{Results: results, Count: len(results), Metadata: meta}, http.StatusOK)
}

// handlePrice handles POST /price
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req PriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	result := s.engine.OptimizeDdpPrice(r.Context(), req.toInput())

	// Business failures are 200s with success=false; only transport and
	// decode problems are HTTP errors.
	meta := s.audit(r, "price", req, start, result.Success)
	s.writeJSON(w, PriceResponse{PricingResult: result, Metadata: meta}, http.StatusOK)
}

// handlePriceBatch handles POST /price/batch
func (s *Server) handlePriceBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req BatchPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		s.writeError(w, "VALIDATION_ERROR", "items must not be empty", http.StatusBadRequest)
		return
	}

	items := make([]ddp.BatchItem, 0, len(req.Items))
	for i, item := range req.Items {
		id := item.ID
		if id == "" {
			id = fmt.Sprintf("item_%d", i+1)
		}
		items = append(items, ddp.BatchItem{ID: id, Input: item.toInput()})
	}

	results := s.engine.BatchOptimizeDdpPrice(r.Context(), items, ddp.BatchOptions{Concurrency: req.Concurrency})

	succeeded := 0
	for _, res := range results {
		if res.Result.Success {
			succeeded++
		}
	}

	meta := s.audit(r, "price_batch", req, start, succeeded == len(results))
	s.writeJSON(w, BatchPriceResponse{
		Results:   results,
		Succeeded: succeeded,
		Failed:    len(results) - succeeded,
		Metadata:  meta,
	}, http.StatusOK)
}

// handlePlatformPrice handles POST /price/platform
func (s *Server) handlePlatformPrice(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req PlatformPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	minMargin := req.MinMargin
	if minMargin == 0 {
		minMargin = platform.DefaultMinMargin
	}

	result, err := s.engine.CalculatePlatformPrice(r.Context(), req.toInput(), minMargin)
	if err != nil {
		if errors.IsType(err, errors.TypeInput) {
			s.writeError(w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		} else {
			s.writeError(w, "ENGINE_ERROR", err.Error(), http.StatusInternalServerError)
		}
		return
	}

	meta := s.audit(r, "price_platform", req, start, true)
	s.writeJSON(w, PlatformPriceResponse{PlatformPriceResult: result, Metadata: meta}, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "resale-pricing",
		"api_version": "v1",
	}, http.StatusOK)
}

// audit logs one request and builds its response metadata
func (s *Server) audit(r *http.Request, operation string, req interface{}, start time.Time, success bool) *ResponseMetadata {
	requestID := uuid.NewString()
	hash := computeInputHash(req)
	duration := time.Since(start)

	s.logger.Info("api request",
		zap.String("request_id", requestID),
		zap.String("operation", operation),
		zap.String("path", r.URL.Path),
		zap.String("input_hash", hash),
		zap.Bool("success", success),
		zap.Duration("duration", duration))

	return &ResponseMetadata{
		RequestID:     requestID,
		InputHash:     hash,
		EngineVersion: s.version,
		DurationMs:    duration.Milliseconds(),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	}, status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

func computeInputHash(req interface{}) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
