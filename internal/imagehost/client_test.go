package imagehost

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tvcatalog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer k3y", r.Header.Get("Authorization"))

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "posters/fixed-id", r.FormValue("public_id"))

		f, fh, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		assert.Equal(t, "dark.png", fh.Filename)
		assert.Equal(t, "image/png", fh.Header.Get("Content-Type"))
		body, _ := io.ReadAll(f)
		assert.Equal(t, "PNGDATA", string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"public_id":"posters/fixed-id","secure_url":"https://img.example.org/posters/fixed-id.png","format":"png","bytes":7}`)
	}))
	defer srv.Close()

	c := New(config.ImagesCfg{UploadURL: srv.URL, APIKey: "k3y", Folder: "posters"})
	c.newID = func() string { return "fixed-id" }

	img, err := c.Upload(context.Background(), "dark.png", "image/png", strings.NewReader("PNGDATA"))
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.org/posters/fixed-id.png", img.SecureURL)
	assert.Equal(t, int64(7), img.Bytes)
}

func TestUpload_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"no secure url", http.StatusOK, `{"public_id":"x"}`},
		{"not json", http.StatusOK, `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := New(config.ImagesCfg{UploadURL: srv.URL})
			_, err := c.Upload(context.Background(), "a.gif", "image/gif", strings.NewReader("GIF89a"))
			assert.Error(t, err)
		})
	}
}

func TestUpload_NotConfigured(t *testing.T) {
	_, err := New(config.ImagesCfg{}).Upload(context.Background(), "a.gif", "image/gif", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNotConfigured)
}
