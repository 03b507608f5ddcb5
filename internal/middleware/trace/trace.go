// Package trace assigns every request an ID and counts requests served.
package trace

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

type ContextKey string

const RequestIDKey ContextKey = "request_id"

// HeaderRequestID is read from incoming requests and echoed on responses.
const HeaderRequestID = "X-Request-ID"

type Middleware struct {
	totalRequests atomic.Int64
}

type Metrics struct {
	TotalRequests int64
}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

// Middleware reuses a well-formed incoming X-Request-ID or mints a new one.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.totalRequests.Add(1)

		id := r.Header.Get(HeaderRequestID)
		if !validID(id) {
			id = GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, id)
		ctx := context.WithValue(r.Context(), RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}

// validID accepts short printable IDs only, so a client cannot inject
// arbitrary text into the logs.
func validID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	return strings.IndexFunc(id, func(r rune) bool {
		return r < '!' || r > '~'
	}) < 0
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// FromRequest is GetRequestID for log.RequestIDMiddleware.
func FromRequest(r *http.Request) string {
	return GetRequestID(r.Context())
}

func (m *Middleware) GetMetrics() Metrics {
	return Metrics{TotalRequests: m.totalRequests.Load()}
}
