// Package steering routes each request on a shared listener to exactly one
// of several protocol handlers, before any protocol-specific parsing.
package steering

import (
	"log/slog"
	"net/http"
	"strings"
)

// Indexes returned by ByContentType.
const (
	RouteHTTP = 0
	RouteRPC  = 1
)

// rpcContentType is the prefix gRPC clients put in Content-Type, with an
// optional "+proto" or "+json" subtype.
const rpcContentType = "application/grpc"

// webContentType shares rpcContentType's prefix but is a different framing
// that the gRPC server cannot decode.
const webContentType = "application/grpc-web"

// Picker chooses a handler index from request metadata. It must not read
// the body.
type Picker func(r *http.Request) int

// ByContentType sends requests whose Content-Type starts with
// application/grpc to RouteRPC and everything else, including requests
// without a Content-Type, to RouteHTTP. gRPC-Web goes to RouteHTTP.
func ByContentType(r *http.Request) int {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, rpcContentType) && !isWeb(ct) {
		return RouteRPC
	}
	return RouteHTTP
}

func isWeb(contentType string) bool {
	return strings.HasPrefix(contentType, webContentType)
}

// RejectWeb answers gRPC-Web requests with 415 Unsupported Media Type and
// passes everything else to next.
func RejectWeb(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isWeb(r.Header.Get("Content-Type")) {
			http.Error(w, "grpc-web is not supported", http.StatusUnsupportedMediaType)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Steer is an http.Handler that delegates every request to one handler.
type Steer struct {
	pick     Picker
	handlers []http.Handler
	logger   *slog.Logger
}

// New returns a Steer over handlers; pick must return an index into handlers.
func New(pick Picker, logger *slog.Logger, handlers ...http.Handler) *Steer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Steer{
		pick:     pick,
		handlers: handlers,
		logger:   logger,
	}
}

func (s *Steer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	idx := s.pick(r)
	if idx < 0 || idx >= len(s.handlers) {
		s.logger.Error("no handler for request",
			slog.Int("index", idx),
			slog.String("content_type", r.Header.Get("Content-Type")),
			slog.String("path", r.URL.Path))
		http.Error(w, "no handler for request", http.StatusInternalServerError)
		return
	}
	s.handlers[idx].ServeHTTP(w, r)
}
