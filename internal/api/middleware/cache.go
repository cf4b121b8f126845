package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/providers"
	"github.com/zatekoja/doctordirectory/backend/internal/infrastructure/observability"
)

// cacheMetricKey labels HTTP response cache hits and misses
const cacheMetricKey = "http_response"

// VersionFunc returns the version of the served dataset, empty before the
// first dataset is loaded
type VersionFunc func() string

// ResponseCache caches successful GET responses in Redis. Keys include the
// dataset version, so a regeneration makes every earlier entry unreachable.
type ResponseCache struct {
	cache   providers.CacheProvider
	version VersionFunc
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewResponseCache creates a new response cache middleware
func NewResponseCache(cache providers.CacheProvider, version VersionFunc, ttl time.Duration, metrics *observability.Metrics) *ResponseCache {
	return &ResponseCache{
		cache:   cache,
		version: version,
		ttl:     ttl,
		metrics: metrics,
	}
}

// Middleware returns the cache middleware handler
func (m *ResponseCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || m == nil || m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}

		version := m.version()
		if version == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		logger := observability.LoggerFromContext(ctx)
		cacheKey := m.generateCacheKey(version, r)

		if cached, err := m.cache.Get(ctx, cacheKey); err == nil {
			observability.RecordCacheHit(ctx, m.metrics, cacheMetricKey)
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write(cached); err != nil {
				logger.Debug().Err(err).Str("key", cacheKey).Msg("Failed to write cached response")
			}
			return
		}

		observability.RecordCacheMiss(ctx, m.metrics, cacheMetricKey)
		w.Header().Set("X-Cache", "MISS")

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}
		next.ServeHTTP(recorder, r)

		// A response rendered from a newer dataset must not land under the old key.
		if recorder.statusCode != http.StatusOK || recorder.body.Len() == 0 || m.version() != version {
			return
		}
		if err := m.cache.Set(ctx, cacheKey, recorder.body.Bytes(), m.ttl); err != nil {
			logger.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache response")
			return
		}
		logger.Debug().Str("key", cacheKey).Dur("ttl", m.ttl).Msg("Cached response")
	})
}

// generateCacheKey hashes method, path and query under the dataset version
func (m *ResponseCache) generateCacheKey(version string, r *http.Request) string {
	key := fmt.Sprintf("%s:%s", r.Method, r.URL.Path)
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}

	hash := sha256.Sum256([]byte(key))
	return "http:cache:" + version + ":" + hex.EncodeToString(hash[:])
}

// responseRecorder captures the response for caching
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

// WriteHeader captures the status code
func (r *responseRecorder) WriteHeader(statusCode int) {
	if !r.written {
		r.statusCode = statusCode
		r.ResponseWriter.WriteHeader(statusCode)
		r.written = true
	}
}

// Write captures the response body and writes to the client
func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
