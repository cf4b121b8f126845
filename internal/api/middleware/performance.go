package middleware

import (
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Compression middleware with gzip support
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Encoding")
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gz := gzipWriterPool.Get().(*gzip.Writer)
		defer gzipWriterPool.Put(gz)
		gz.Reset(w)
		defer gz.Close()

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Del("Content-Length")

		next.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, Writer: gz}, r)
	})
}

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		gz, _ := gzip.NewWriterLevel(io.Discard, 5)
		return gz
	},
}

// gzipResponseWriter wraps http.ResponseWriter to compress the response
type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

// DatasetETag answers conditional GETs from the dataset version alone. The
// tag changes only when a regeneration publishes a new dataset, so a matching
// If-None-Match is answered with 304 without running the handler.
func DatasetETag(version VersionFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			current := version()
			if current == "" {
				next.ServeHTTP(w, r)
				return
			}

			etag := datasetETag(current, r)
			w.Header().Set("X-Dataset-Version", current)
			if r.Header.Get("If-None-Match") == etag {
				w.Header().Set("ETag", etag)
				w.WriteHeader(http.StatusNotModified)
				return
			}

			w.Header().Set("ETag", etag)
			w.Header().Set("Cache-Control", "no-cache")
			next.ServeHTTP(&etagResponseWriter{ResponseWriter: w}, r)
		})
	}
}

func datasetETag(version string, r *http.Request) string {
	hash := sha256.Sum256([]byte(r.URL.Path + "?" + r.URL.RawQuery))
	return `W/"` + version + "-" + hex.EncodeToString(hash[:8]) + `"`
}

// etagResponseWriter drops the ETag from anything but a 200
type etagResponseWriter struct {
	http.ResponseWriter
}

func (w *etagResponseWriter) WriteHeader(statusCode int) {
	if statusCode != http.StatusOK {
		w.Header().Del("ETag")
		w.Header().Del("Cache-Control")
	}
	w.ResponseWriter.WriteHeader(statusCode)
}
