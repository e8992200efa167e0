package upload_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/upload"
	"postboard/pkg/file"
)

func passthrough(next http.Handler) http.Handler { return next }

func newUploadRouter(t *testing.T, maxSize int64) chi.Router {
	t.Helper()
	storage, err := file.NewLocalStorage(t.TempDir(), "/static/")
	require.NoError(t, err)

	r := chi.NewRouter()
	upload.NewHandler(storage, maxSize, nil).Routes(r, passthrough)
	return r
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestHandler_Upload(t *testing.T) {
	t.Parallel()

	t.Run("stores file and returns url", func(t *testing.T) {
		t.Parallel()
		r := newUploadRouter(t, 1<<20)

		body, contentType := multipartBody(t, "file", "photo.jpg", []byte("image-bytes"))
		req := httptest.NewRequest("POST", "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Successfully uploaded photo.jpg", resp["detail"])
		assert.True(t, strings.HasPrefix(resp["file_url"], "/static/"))
		assert.True(t, strings.HasSuffix(resp["file_url"], "_photo.jpg"))
	})

	t.Run("same filename does not collide", func(t *testing.T) {
		t.Parallel()
		r := newUploadRouter(t, 1<<20)

		urls := make(map[string]bool)
		for range 2 {
			body, contentType := multipartBody(t, "file", "photo.jpg", []byte("image-bytes"))
			req := httptest.NewRequest("POST", "/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			require.Equal(t, http.StatusCreated, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			urls[resp["file_url"]] = true
		}
		assert.Len(t, urls, 2)
	})

	t.Run("missing file field", func(t *testing.T) {
		t.Parallel()
		r := newUploadRouter(t, 1<<20)

		body, contentType := multipartBody(t, "other", "photo.jpg", []byte("x"))
		req := httptest.NewRequest("POST", "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("oversized file", func(t *testing.T) {
		t.Parallel()
		r := newUploadRouter(t, 16)

		body, contentType := multipartBody(t, "file", "big.bin", bytes.Repeat([]byte("a"), 1024))
		req := httptest.NewRequest("POST", "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("traversal filename is sanitized", func(t *testing.T) {
		t.Parallel()
		r := newUploadRouter(t, 1<<20)

		body, contentType := multipartBody(t, "file", "../../etc/passwd", []byte("x"))
		req := httptest.NewRequest("POST", "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, strings.HasSuffix(resp["file_url"], "_passwd"))
		assert.NotContains(t, resp["file_url"], "..")
	})
}
