package jsonhttp_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tallal-Arif/MerkleStreamBackend/internal/jsonhttp"
)

func TestRespondErrorShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		write    func(http.ResponseWriter)
		code     int
		wantBody string
	}{
		{"nil", func(w http.ResponseWriter) { jsonhttp.NotFound(w, nil) }, http.StatusNotFound, `{"error":"Not Found"}`},
		{"string", func(w http.ResponseWriter) { jsonhttp.BadRequest(w, "No file part") }, http.StatusBadRequest, `{"error":"No file part"}`},
		{"error", func(w http.ResponseWriter) { jsonhttp.InternalServerError(w, errors.New("boom")) }, http.StatusInternalServerError, `{"error":"boom"}`},
		{"ok", func(w http.ResponseWriter) { jsonhttp.OK(w, map[string]string{"merkle_root": "ab"}) }, http.StatusOK, `{"merkle_root":"ab"}`},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			tc.write(rec)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestNewMaxBodyBytesHandler(t *testing.T) {
	t.Parallel()

	var readErr error
	h := jsonhttp.NewMaxBodyBytesHandler(4, "too big")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
		if jsonhttp.IsBodyTooLarge(readErr) {
			jsonhttp.RequestEntityTooLarge(w, "too big")
			return
		}
		jsonhttp.OK(w, nil)
	}))

	t.Run("content length", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("12345")))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.JSONEq(t, `{"error":"too big"}`, rec.Body.String())
	})

	t.Run("streamed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("12345"))
		req.ContentLength = -1
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Error(t, readErr)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("within limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("1234")))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
