package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leg100/todo/internal/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestETag(t *testing.T) {
	body := `[{"id":1}]`
	h := ETag(logr.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, body)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, 200, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.NotEmpty(t, w.Body.String())

	t.Run("matching etag", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("If-None-Match", etag)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, 304, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("stale etag", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("If-None-Match", `"stale"`)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, 200, w.Code)
		assert.Equal(t, etag, w.Header().Get("ETag"))
	})
}

func TestETag_Error(t *testing.T) {
	h := ETag(logr.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Error(w, http.StatusInternalServerError, "boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, 500, w.Code)
	assert.Empty(t, w.Header().Get("ETag"))
	assert.JSONEq(t, `{"error":"boom"}`, w.Body.String())
}
