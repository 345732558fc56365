package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tendant/simple-movies/pkg/simplemovies"
)

// ErrorResponse is the JSON body for all error statuses. Detail carries the
// underlying error text and is only populated outside production.
type ErrorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// MessageResponse is the JSON body for confirmations without a record.
type MessageResponse struct {
	Message string `json:"message"`
}

func renderStatus(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func renderMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	renderStatus(w, r, status, MessageResponse{Message: message})
}

// writeServiceError maps a service error onto an HTTP status. Unrecognized
// errors become a generic 500; their detail is withheld unless verbose.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, verbose bool) {
	var verr *simplemovies.ValidationError
	switch {
	case errors.As(err, &verr):
		renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: verr.Error()})
	case errors.Is(err, simplemovies.ErrMovieNotFound),
		errors.Is(err, simplemovies.ErrReviewNotFound),
		errors.Is(err, simplemovies.ErrCommentNotFound):
		renderStatus(w, r, http.StatusNotFound, ErrorResponse{Message: err.Error()})
	case errors.Is(err, simplemovies.ErrNotOwner):
		renderStatus(w, r, http.StatusForbidden, ErrorResponse{Message: "not authorized to modify this record"})
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		resp := ErrorResponse{Message: "internal server error"}
		if verbose {
			resp.Detail = err.Error()
		}
		renderStatus(w, r, http.StatusInternalServerError, resp)
	}
}
