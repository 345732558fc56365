package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/tendant/simple-movies/pkg/simplemovies"
)

// CommentHandler serves anonymous movie comments. Ownership falls back to the
// request's network origin when the client supplies no device ID.
type CommentHandler struct {
	service       simplemovies.Service
	verboseErrors bool
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(service simplemovies.Service, verboseErrors bool) *CommentHandler {
	return &CommentHandler{service: service, verboseErrors: verboseErrors}
}

// Routes returns the router for comment operations
func (h *CommentHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/movie/{movieID}", h.ListByMovie)
	r.Post("/", h.Add)
	r.Delete("/{id}", h.Delete)
	return r
}

// ListByMovie returns all comments for a movie.
func (h *CommentHandler) ListByMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := uuid.Parse(chi.URLParam(r, "movieID"))
	if err != nil {
		renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: "invalid movie ID"})
		return
	}

	comments, err := h.service.ListComments(r.Context(), movieID)
	if err != nil {
		writeServiceError(w, r, err, h.verboseErrors)
		return
	}
	renderStatus(w, r, http.StatusOK, comments)
}

// Add posts a comment on a movie.
func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req simplemovies.AddCommentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}
	req.Origin = requestOrigin(r)

	comment, err := h.service.AddComment(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, h.verboseErrors)
		return
	}
	renderStatus(w, r, http.StatusCreated, comment)
}

// Delete removes a comment. The caller must present the owning device ID, or
// come from the network origin the comment was posted from.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: "invalid comment ID"})
		return
	}

	var req deleteOwnedRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		// A bare DELETE with no body still works for origin-owned comments.
		req.DeviceID = ""
	}

	if err := h.service.DeleteComment(r.Context(), id, req.DeviceID, requestOrigin(r)); err != nil {
		writeServiceError(w, r, err, h.verboseErrors)
		return
	}
	renderMessage(w, r, http.StatusOK, "comment deleted successfully")
}
