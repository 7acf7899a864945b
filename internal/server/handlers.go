package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bandfeed/internal/models"
	"github.com/desertthunder/bandfeed/internal/search"
	"github.com/desertthunder/bandfeed/internal/shared"
	"github.com/gorilla/mux"
)

const (
	searchTimeout = 30 * time.Second
	getTimeout    = 10 * time.Second
)

// Resolver resolves a query. Implemented by [search.Resolver].
type Resolver interface {
	Resolve(ctx context.Context, query string, verbose bool) (*search.Report, error)
}

// BandGetter loads a single band. Implemented by repositories.BandRepository.
type BandGetter interface {
	Get(id string) (*models.PersistedBand, error)
}

// Pinger reports whether the backing store is reachable. Implemented by [sql.DB].
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SearchResponse is the body of GET /api/bands/search.
//
// The debug fields are only set when the request asks for debug output.
type SearchResponse struct {
	Query         string           `json:"query"`
	Results       []search.Result  `json:"results"`
	Total         int              `json:"total"`
	SearchMethod  search.Strategy  `json:"search_method,omitempty"`
	VariantsTried []string         `json:"variants_tried,omitempty"`
	ResultCount   *int             `json:"result_count,omitempty"`
	Narrowed      bool             `json:"narrowed,omitempty"`
	Attempts      []search.Attempt `json:"attempts,omitempty"`
}

// BandHandler serves band search and lookup.
type BandHandler struct {
	resolver Resolver
	bands    BandGetter
	db       Pinger
	logger   *log.Logger
}

// NewBandHandler creates a BandHandler. bands and db may be nil, which disables lookup and health probing.
func NewBandHandler(resolver Resolver, bands BandGetter, db Pinger, logger *log.Logger) *BandHandler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &BandHandler{resolver: resolver, bands: bands, db: db, logger: logger}
}

// RegisterRoutes adds the band routes to router.
func (h *BandHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/bands/search", h.SearchBands).Methods(http.MethodGet)
	router.HandleFunc("/api/bands/{id}", h.GetBand).Methods(http.MethodGet)
	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
}

// SearchBands handles GET /api/bands/search?q=&debug=&limit=.
func (h *BandHandler) SearchBands(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), searchTimeout)
	defer cancel()

	params := r.URL.Query()
	query := params.Get("q")
	if strings.TrimSpace(query) == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limit := 0
	if raw := params.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	debug := isTruthy(params.Get("debug"))

	report, err := h.resolver.Resolve(ctx, query, debug)
	if err != nil {
		h.logger.Error("search failed", "query", query, "error", err)
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	results := report.Results
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	resp := SearchResponse{Query: query, Results: results, Total: len(results)}
	if debug {
		count := len(results)
		resp.SearchMethod = report.Method
		resp.VariantsTried = report.VariantsTried
		resp.ResultCount = &count
		resp.Narrowed = report.Narrowed
		resp.Attempts = report.Attempts
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// GetBand handles GET /api/bands/{id}.
func (h *BandHandler) GetBand(w http.ResponseWriter, r *http.Request) {
	if h.bands == nil {
		respondWithError(w, http.StatusNotImplemented, "band lookup unavailable")
		return
	}

	id := mux.Vars(r)["id"]

	band, err := h.bands.Get(id)
	if err != nil {
		if errors.Is(err, shared.ErrBandNotFound) {
			respondWithError(w, http.StatusNotFound, "band not found")
			return
		}
		h.logger.Error("band lookup failed", "id", id, "error", err)
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, search.NewResult(band.Band()))
}

// Health handles GET /healthz.
func (h *BandHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), getTimeout)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Error("health check failed", "error", err)
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := shared.MarshalJSON(payload, false)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
