package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tendant/simple-movies/pkg/simplemovies"
	"github.com/tendant/simple-movies/pkg/simplemovies/api"
	memoryrepo "github.com/tendant/simple-movies/pkg/simplemovies/repo/memory"
	memorystorage "github.com/tendant/simple-movies/pkg/simplemovies/storage/memory"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testUsername = "admin"
	testPassword = "correct-horse-battery"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	svc, err := simplemovies.New(
		simplemovies.WithRepository(memoryrepo.New()),
		simplemovies.WithBlobStore(memorystorage.New()),
	)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	auth := api.NewAuth(testSecret, testUsername, string(hash), time.Hour, false)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", api.NewAuthHandler(auth).Routes())
		r.Mount("/movies", api.NewMovieHandler(svc, auth, true).Routes())
		r.Mount("/upload", api.NewUploadHandler(svc, auth, 10<<20, true).Routes())
		r.Mount("/reviews", api.NewReviewHandler(svc, true).Routes())
		r.Mount("/comments", api.NewCommentHandler(svc, true).Routes())
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(out))
}

func adminToken(t *testing.T, router http.Handler) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": testUsername,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// nonAdminToken builds a token signed with the right secret but without the
// admin claim.
func nonAdminToken(t *testing.T) string {
	t.Helper()

	ja := jwtauth.New("HS256", []byte(testSecret), nil)
	claims := map[string]interface{}{"sub": "someone", "admin": false}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, time.Hour)

	_, token, err := ja.Encode(claims)
	require.NoError(t, err)
	return token
}

func movieBody() map[string]interface{} {
	return map[string]interface{}{
		"title":       "The Test Pattern",
		"description": "A movie about movies",
		"director":    "Jane Doe",
		"rating":      7.5,
		"releaseDate": "2023-06-01T00:00:00Z",
		"genre":       []string{"drama"},
	}
}

func TestLogin(t *testing.T) {
	router := newTestRouter(t)

	t.Run("success sets cookie and returns token", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": testUsername,
			"password": testPassword,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Token string                 `json:"token"`
			User  simplemovies.Principal `json:"user"`
		}
		decodeBody(t, w, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.True(t, resp.User.IsAdmin)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "jwt", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": testUsername,
			"password": "wrong-password-here",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed input", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "ab",
			"password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMe(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := adminToken(t, router)
	w = doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var principal simplemovies.Principal
	decodeBody(t, w, &principal)
	assert.Equal(t, testUsername, principal.Username)
}

func TestMovieWriteRequiresAdmin(t *testing.T) {
	router := newTestRouter(t)

	// No token at all.
	w := doJSON(t, router, http.MethodPost, "/api/movies/", "", movieBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token without the admin claim.
	w = doJSON(t, router, http.MethodPost, "/api/movies/", nonAdminToken(t), movieBody())
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Garbage token.
	w = doJSON(t, router, http.MethodPost, "/api/movies/", "not-a-token", movieBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMovieLifecycle(t *testing.T) {
	router := newTestRouter(t)
	token := adminToken(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/movies/", token, movieBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	decodeBody(t, w, &created)
	require.NotEmpty(t, created.ID)

	// Public read with resolved URL fields present.
	w = doJSON(t, router, http.MethodGet, "/api/movies/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"videoUrls"`)

	// Public list.
	w = doJSON(t, router, http.MethodGet, "/api/movies/?limit=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Partial update.
	w = doJSON(t, router, http.MethodPut, "/api/movies/"+created.ID, token, map[string]string{"title": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Renamed")

	// Key repair on a clean record reports no fixes.
	w = doJSON(t, router, http.MethodPost, "/api/movies/fix-keys/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Delete, then the record is gone.
	w = doJSON(t, router, http.MethodDelete, "/api/movies/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/movies/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMovieBadRequests(t *testing.T) {
	router := newTestRouter(t)
	token := adminToken(t, router)

	// Validation failure surfaces as 400.
	body := movieBody()
	body["title"] = ""
	w := doJSON(t, router, http.MethodPost, "/api/movies/", token, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Malformed IDs.
	w = doJSON(t, router, http.MethodGet, "/api/movies/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/movies/?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown but well-formed ID.
	w = doJSON(t, router, http.MethodGet, "/api/movies/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func multipartBody(t *testing.T, field, filename, mimeType string, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake file bytes"))
	require.NoError(t, err)

	for k, v := range extra {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadVideo(t *testing.T) {
	router := newTestRouter(t)
	token := adminToken(t, router)

	body, contentType := multipartBody(t, "video", "clip.mp4", "video/mp4", map[string]string{"quality": "1080p"})
	req := httptest.NewRequest(http.MethodPost, "/api/upload/video", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Key     string `json:"key"`
		Quality string `json:"quality"`
	}
	decodeBody(t, w, &resp)
	assert.Contains(t, resp.Key, "video/")
	assert.Equal(t, "1080p", resp.Quality)
}

func TestUploadVideoRejectsNonVideo(t *testing.T) {
	router := newTestRouter(t)
	token := adminToken(t, router)

	body, contentType := multipartBody(t, "video", "sneaky.png", "image/png", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/upload/video", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadImage(t *testing.T) {
	router := newTestRouter(t)
	token := adminToken(t, router)

	body, contentType := multipartBody(t, "image", "poster.png", "image/png", map[string]string{"type": "thumbnail"})
	req := httptest.NewRequest(http.MethodPost, "/api/upload/image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Key  string `json:"key"`
		Type string `json:"type"`
	}
	decodeBody(t, w, &resp)
	assert.Contains(t, resp.Key, "thumbnail/")
	assert.Equal(t, "thumbnail", resp.Type)
}

func TestUploadRequiresAdmin(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartBody(t, "video", "clip.mp4", "video/mp4", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/upload/video", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func createTestMovie(t *testing.T, router http.Handler, token string) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/movies/", token, movieBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &created)
	return created.ID
}

func TestReviewEndpoints(t *testing.T) {
	router := newTestRouter(t)
	movieID := createTestMovie(t, router, adminToken(t, router))

	w := doJSON(t, router, http.MethodPost, "/api/reviews/", "", map[string]interface{}{
		"movieId":  movieID,
		"deviceId": "device-a",
		"rating":   8,
		"comment":  "loved it",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var review struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &review)

	w = doJSON(t, router, http.MethodGet, "/api/reviews/movie/"+movieID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "device-a")

	// Only the owning device may delete.
	w = doJSON(t, router, http.MethodDelete, "/api/reviews/"+review.ID, "", map[string]string{"deviceId": "device-b"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/reviews/"+review.ID, "", map[string]string{"deviceId": "device-a"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/reviews/"+review.ID, "", map[string]string{"deviceId": "device-a"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentEndpoints(t *testing.T) {
	router := newTestRouter(t)
	movieID := createTestMovie(t, router, adminToken(t, router))

	w := doJSON(t, router, http.MethodPost, "/api/comments/", "", map[string]interface{}{
		"movieId":  movieID,
		"deviceId": "device-a",
		"content":  "great movie",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var comment struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &comment)

	w = doJSON(t, router, http.MethodGet, "/api/comments/movie/"+movieID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "great movie")

	w = doJSON(t, router, http.MethodDelete, "/api/comments/"+comment.ID, "", map[string]string{"deviceId": "device-b"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/comments/"+comment.ID, "", map[string]string{"deviceId": "device-a"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCommentOriginOwnership(t *testing.T) {
	router := newTestRouter(t)
	movieID := createTestMovie(t, router, adminToken(t, router))

	// Post without a device ID; the client address becomes the owner.
	body, _ := json.Marshal(map[string]string{"movieId": movieID, "content": "anon comment"})
	req := httptest.NewRequest(http.MethodPost, "/api/comments/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.9:40000"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var comment struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &comment)

	// A different address cannot delete it.
	req = httptest.NewRequest(http.MethodDelete, "/api/comments/"+comment.ID, nil)
	req.RemoteAddr = "198.51.100.1:40000"
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The posting address can, even with no request body.
	req = httptest.NewRequest(http.MethodDelete, "/api/comments/"+comment.ID, nil)
	req.RemoteAddr = "203.0.113.9:41000"
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
