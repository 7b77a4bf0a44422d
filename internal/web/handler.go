package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"cboard-backend/internal/board"
	"cboard-backend/internal/model"
)

const (
	welcomeMessage = "Welcome to the cboard backend"
	requestTimeout = 30 * time.Second
)

// Board is the set of queries the HTTP layer serves.
type Board interface {
	Organizations(ctx context.Context) ([]model.Organization, error)
	OrganizationBySlug(ctx context.Context, slug string) (model.Organization, error)
	Flyers(ctx context.Context) ([]model.Flyer, error)
	UpcomingFlyers(ctx context.Context) ([]model.Flyer, error)
	PastFlyers(ctx context.Context) ([]model.Flyer, error)
	WeeklyFlyers(ctx context.Context) ([]model.Flyer, error)
	DailyFlyers(ctx context.Context) ([]model.Flyer, error)
	TrendingFlyers(ctx context.Context) ([]model.Flyer, error)
}

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	board  Board
	logger *zap.Logger
}

// New creates a new Handler serving b.
func New(b Board, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		board:  b,
		logger: logger.Named("web"),
	}
}

// RegisterRoutes registers all HTTP routes on the given mux. API routes are
// served both with and without the trailing slash.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /health", h.handleHealth)

	h.handleAPI(mux, "/api/organizations/", h.handleOrganizations)
	h.handleAPI(mux, "/api/organizations/{slug}/", h.handleOrganization)

	h.handleAPI(mux, "/api/flyers/", h.flyers(h.board.Flyers, "Unable to fetch all flyers"))
	h.handleAPI(mux, "/api/flyers/upcoming/", h.flyers(h.board.UpcomingFlyers, "Unable to fetch upcoming flyers"))
	h.handleAPI(mux, "/api/flyers/past/", h.flyers(h.board.PastFlyers, "Unable to fetch past flyers"))
	h.handleAPI(mux, "/api/flyers/weekly/", h.flyers(h.board.WeeklyFlyers, "Unable to fetch weekly flyers"))
	h.handleAPI(mux, "/api/flyers/daily/", h.flyers(h.board.DailyFlyers, "Unable to fetch daily flyers"))
	h.handleAPI(mux, "/api/flyers/trending/", h.flyers(h.board.TrendingFlyers, "Unable to fetch flyers for trending"))

	mux.HandleFunc("/", h.handleNotFound)
}

func (h *Handler) handleAPI(mux *http.ServeMux, path string, fn http.HandlerFunc) {
	mux.HandleFunc("GET "+path+"{$}", h.noCache(fn))
	mux.HandleFunc("GET "+strings.TrimSuffix(path, "/"), h.noCache(fn))
}

func (h *Handler) noCache(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next(w, r)
	}
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(welcomeMessage))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.failure(w, "Not found", http.StatusNotFound)
}

func (h *Handler) handleOrganizations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	orgs, err := h.board.Organizations(ctx)
	if err != nil {
		h.failure(w, "Unable to fetch all organizations", http.StatusNotFound)
		return
	}
	h.success(w, orgs)
}

func (h *Handler) handleOrganization(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	org, err := h.board.OrganizationBySlug(ctx, r.PathValue("slug"))
	if err != nil {
		msg := "Unable to find organization from slug"
		if !errors.Is(err, board.ErrNotFound) {
			msg = "Unable to fetch organization"
		}
		h.failure(w, msg, http.StatusNotFound)
		return
	}
	h.success(w, org)
}

func (h *Handler) flyers(fetch func(context.Context) ([]model.Flyer, error), failMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		flyers, err := fetch(ctx)
		if err != nil || flyers == nil {
			h.failure(w, failMsg, http.StatusNotFound)
			return
		}
		h.success(w, flyers)
	}
}

func (h *Handler) success(w http.ResponseWriter, body interface{}) {
	h.writeJSON(w, http.StatusOK, body)
}

func (h *Handler) failure(w http.ResponseWriter, msg string, code int) {
	h.writeJSON(w, code, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("encoding response", zap.Error(err))
	}
}
