package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/tendant/simple-movies/pkg/simplemovies"
)

// ReviewHandler serves device-owned movie reviews. No authentication: a
// review belongs to whichever device ID created it.
type ReviewHandler struct {
	service       simplemovies.Service
	verboseErrors bool
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service simplemovies.Service, verboseErrors bool) *ReviewHandler {
	return &ReviewHandler{service: service, verboseErrors: verboseErrors}
}

// Routes returns the router for review operations
func (h *ReviewHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/movie/{movieID}", h.ListByMovie)
	r.Post("/", h.Put)
	r.Delete("/{id}", h.Delete)
	return r
}

// ListByMovie returns all reviews for a movie.
func (h *ReviewHandler) ListByMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := uuid.Parse(chi.URLParam(r, "movieID"))
	if err != nil {
		renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: "invalid movie ID"})
		return
	}

	reviews, err := h.service.ListReviews(r.Context(), movieID)
	if err != nil {
		writeServiceError(w, r, err, h.verboseErrors)
		return
	}
	renderStatus(w, r, http.StatusOK, reviews)
}

// Put creates or replaces the review the calling device holds for a movie.
func (h *ReviewHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req simplemovies.PutReviewRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	review, err := h.service.PutReview(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, h.verboseErrors)
		return
	}
	renderStatus(w, r, http.StatusCreated, review)
}

type deleteOwnedRequest struct {
	DeviceID string `json:"deviceId"`
}

// Delete removes a review if the caller's device ID matches its owner.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: "invalid review ID"})
		return
	}

	var req deleteOwnedRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	if err := h.service.DeleteReview(r.Context(), id, req.DeviceID); err != nil {
		writeServiceError(w, r, err, h.verboseErrors)
		return
	}
	renderMessage(w, r, http.StatusOK, "review deleted successfully")
}
