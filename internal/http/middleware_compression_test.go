package httpx

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveCompressed(t *testing.T, h http.Handler, method, acceptEncoding string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, "/courses", nil)
	if acceptEncoding != "" {
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}
	rec := httptest.NewRecorder()
	Compression(CompressionConfig{Level: gzip.BestSpeed})(h).ServeHTTP(rec, req)
	resp := rec.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestCompression_GzipsTextForCapableClients(t *testing.T) {
	body := strings.Repeat("<li>Intro to Go</li>", 200)
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, body)
	})

	resp := serveCompressed(t, h, http.MethodGet, "deflate, gzip")
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", resp.Header.Get("Vary"))
	assert.Empty(t, resp.Header.Get("Content-Length"))

	gr, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	defer gr.Close()
	got, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestCompression_PassThrough(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		acceptEncoding string
		contentType    string
		encoding       string
		status         int
		wantEncoding   string
	}{
		{name: "client without gzip", method: http.MethodGet, acceptEncoding: "deflate", contentType: "text/html", status: http.StatusOK},
		{name: "explicit q=0", method: http.MethodGet, acceptEncoding: "gzip;q=0", contentType: "text/html", status: http.StatusOK},
		{name: "binary content", method: http.MethodGet, acceptEncoding: "gzip", contentType: "image/png", status: http.StatusOK},
		{name: "no content", method: http.MethodGet, acceptEncoding: "gzip", status: http.StatusNoContent},
		{name: "not modified", method: http.MethodGet, acceptEncoding: "gzip", status: http.StatusNotModified},
		{name: "head request", method: http.MethodHead, acceptEncoding: "gzip", contentType: "text/html", status: http.StatusOK},
		{name: "already encoded", method: http.MethodGet, acceptEncoding: "gzip", contentType: "text/html", encoding: "br", status: http.StatusOK, wantEncoding: "br"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				if tt.encoding != "" {
					w.Header().Set("Content-Encoding", tt.encoding)
				}
				w.WriteHeader(tt.status)
				if tt.status == http.StatusOK && tt.method != http.MethodHead {
					_, _ = io.WriteString(w, "payload")
				}
			})

			resp := serveCompressed(t, h, tt.method, tt.acceptEncoding)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.wantEncoding, resp.Header.Get("Content-Encoding"))
		})
	}
}

func TestCompression_JSONErrorsAreCompressed(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: io.EOF})
	})
	resp := serveCompressed(t, h, http.MethodGet, "gzip")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
}

func TestAcceptsGzip(t *testing.T) {
	assert.True(t, acceptsGzip("gzip"))
	assert.True(t, acceptsGzip("br, GZIP;q=0.5"))
	assert.False(t, acceptsGzip("gzip; q=0"))
	assert.False(t, acceptsGzip("identity"))
	assert.False(t, acceptsGzip(""))
}
