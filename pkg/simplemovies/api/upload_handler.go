package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/simple-movies/pkg/simplemovies"
)

const defaultVideoQuality = "720p"

// UploadHandler serves media uploads. Both endpoints are admin-only and
// stream the multipart file body to blob storage without buffering it whole.
type UploadHandler struct {
	service       simplemovies.Service
	auth          *Auth
	maxBytes      int64
	verboseErrors bool
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(service simplemovies.Service, auth *Auth, maxBytes int64, verboseErrors bool) *UploadHandler {
	return &UploadHandler{service: service, auth: auth, maxBytes: maxBytes, verboseErrors: verboseErrors}
}

// Routes returns the router for upload operations
func (h *UploadHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.auth.Verifier())
	r.Use(h.auth.RequireAdmin)
	r.Post("/video", h.UploadVideo)
	r.Post("/image", h.UploadImage)
	return r
}

type uploadVideoResponse struct {
	Message string `json:"message"`
	Key     string `json:"key"`
	Quality string `json:"quality"`
}

type uploadImageResponse struct {
	Message string `json:"message"`
	Key     string `json:"key"`
	Type    string `json:"type"`
}

// UploadVideo accepts a multipart "video" file plus an optional "quality"
// field and returns the stored object key.
func (h *UploadHandler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("video")
	if err != nil {
		renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: "no video file uploaded"})
		return
	}
	defer file.Close()

	quality := r.FormValue("quality")
	if quality == "" {
		quality = defaultVideoQuality
	}

	key, err := h.service.UploadAsset(r.Context(), file, simplemovies.UploadAssetRequest{
		Kind:     simplemovies.AssetVideo,
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Quality:  quality,
	})
	if err != nil {
		writeServiceError(w, r, err, h.verboseErrors)
		return
	}
	renderStatus(w, r, http.StatusOK, uploadVideoResponse{
		Message: "video uploaded successfully",
		Key:     key,
		Quality: quality,
	})
}

// UploadImage accepts a multipart "image" file plus an optional "type" field
// ("poster" or "thumbnail", default poster) and returns the stored object key.
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: "no image file uploaded"})
		return
	}
	defer file.Close()

	kind := simplemovies.AssetKind(r.FormValue("type"))
	if kind == "" {
		kind = simplemovies.AssetPoster
	}
	if kind != simplemovies.AssetPoster && kind != simplemovies.AssetThumbnail {
		renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: `type must be "poster" or "thumbnail"`})
		return
	}

	key, err := h.service.UploadAsset(r.Context(), file, simplemovies.UploadAssetRequest{
		Kind:     kind,
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		writeServiceError(w, r, err, h.verboseErrors)
		return
	}
	renderStatus(w, r, http.StatusOK, uploadImageResponse{
		Message: "image uploaded successfully",
		Key:     key,
		Type:    string(kind),
	})
}
