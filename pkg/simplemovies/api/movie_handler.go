package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/tendant/simple-movies/pkg/simplemovies"
)

// MovieHandler serves the movie catalog. Reads are public; writes and key
// repair require an admin token.
type MovieHandler struct {
	service       simplemovies.Service
	auth          *Auth
	verboseErrors bool
}

// NewMovieHandler creates a new movie handler
func NewMovieHandler(service simplemovies.Service, auth *Auth, verboseErrors bool) *MovieHandler {
	return &MovieHandler{service: service, auth: auth, verboseErrors: verboseErrors}
}

// Routes returns the router for movie operations
func (h *MovieHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListMovies)
	r.Get("/{id}", h.GetMovie)

	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verifier())
		r.Use(h.auth.RequireAdmin)
		r.Post("/", h.CreateMovie)
		r.Put("/{id}", h.UpdateMovie)
		r.Delete("/{id}", h.DeleteMovie)
		r.Post("/fix-keys/{id}", h.RepairKeys)
	})

	return r
}

// ListMovies returns the catalog, newest first. Supports ?limit=N and
// ?exclude=<id> for "related movies" queries.
func (h *MovieHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	var req simplemovies.ListMoviesRequest

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: "invalid limit"})
			return
		}
		req.Limit = limit
	}
	if raw := r.URL.Query().Get("exclude"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: "invalid exclude ID"})
			return
		}
		req.Exclude = id
	}

	movies, err := h.service.ListMovies(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, h.verboseErrors)
		return
	}
	renderStatus(w, r, http.StatusOK, movies)
}

// GetMovie returns a single movie with freshly signed media URLs.
func (h *MovieHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}

	movie, err := h.service.GetMovie(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.verboseErrors)
		return
	}
	renderStatus(w, r, http.StatusOK, movie)
}

// CreateMovie adds a movie to the catalog.
func (h *MovieHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var req simplemovies.CreateMovieRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	movie, err := h.service.CreateMovie(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, h.verboseErrors)
		return
	}
	renderStatus(w, r, http.StatusCreated, movie)
}

// UpdateMovie applies a partial update to a movie.
func (h *MovieHandler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}

	var req simplemovies.UpdateMovieRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	movie, err := h.service.UpdateMovie(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err, h.verboseErrors)
		return
	}
	renderStatus(w, r, http.StatusOK, movie)
}

// DeleteMovie removes a movie from the catalog.
func (h *MovieHandler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteMovie(r.Context(), id); err != nil {
		writeServiceError(w, r, err, h.verboseErrors)
		return
	}
	renderMessage(w, r, http.StatusOK, "movie deleted successfully")
}

// RepairKeys normalizes malformed object keys on a movie record and reports
// what changed.
func (h *MovieHandler) RepairKeys(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}

	result, err := h.service.RepairMovieKeys(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.verboseErrors)
		return
	}
	renderStatus(w, r, http.StatusOK, result)
}

func (h *MovieHandler) movieID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: "invalid movie ID"})
		return uuid.Nil, false
	}
	return id, true
}
