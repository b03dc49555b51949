// Package httpx serves settings slots over HTTP.
//
// Overview:
//   - Responsibility: JSON responses for slot results, coded error responses,
//     security header and CORS middleware for the serving mux
//   - Key Types: ErrorResponse, SecurityHeaders, CORSOptions
//   - Concurrency Model: All handlers and middleware are safe for concurrent use
//   - Error Semantics: Error responses carry the core/errors code and map it to a status
//
// Usage:
//
//	mux.Handle("/settings/sample", httpx.SlotHandler(optionsx.MustGet[Sample](c)))
//	handler := httpx.CORSMiddleware(httpx.CORSOptions{AllowedOrigins: origins})(mux)
package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.eggybyte.com/settingsx/core/errors"
	"go.eggybyte.com/settingsx/optionsx"
)

// ErrorResponse is the JSON body of an error response.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Code     string   `json:"code,omitempty"`
	Message  string   `json:"message,omitempty"`
	Failures []string `json:"failures,omitempty"`
}

// WriteJSON writes data as a JSON response with status.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes err with the status its code maps to.
// A *optionsx.ValidationFailure in the chain contributes its failed rules.
func WriteError(w http.ResponseWriter, err error) error {
	status := StatusOf(err)
	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Code:    string(errors.CodeOf(err)),
		Message: err.Error(),
	}
	var failure *optionsx.ValidationFailure
	if errors.As(err, &failure) {
		resp.Failures = failure.Failures
	}
	return WriteJSON(w, status, resp)
}

// StatusOf maps the core/errors code of err to an HTTP status.
func StatusOf(err error) int {
	switch errors.CodeOf(err) {
	case errors.CodeInvalidArgument:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeAlreadyExists:
		return http.StatusConflict
	case errors.CodeFailedPrecondition:
		return http.StatusServiceUnavailable
	case errors.CodeUnimplemented:
		return http.StatusNotImplemented
	case errors.CodeAborted:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// SlotHandler serves the current value of s. An invalid value is served as
// a 503 error response listing the failed rules.
func SlotHandler[T any](s *optionsx.Slot[T]) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			_ = WriteJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
				Error:   http.StatusText(http.StatusMethodNotAllowed),
				Message: "method " + r.Method + " not allowed for " + r.URL.Path,
			})
			return
		}
		v, err := s.Value()
		if err != nil {
			_ = WriteError(w, err)
			return
		}
		_ = WriteJSON(w, http.StatusOK, v)
	})
}

// SecurityHeaders selects the security headers SecureMiddleware sets.
type SecurityHeaders struct {
	ContentTypeOptions    bool   // X-Content-Type-Options: nosniff
	FrameOptions          bool   // X-Frame-Options: DENY
	ReferrerPolicy        bool   // Referrer-Policy: no-referrer
	ContentSecurityPolicy string // Optional CSP header
}

// DefaultSecurityHeaders enables every boolean header.
func DefaultSecurityHeaders() SecurityHeaders {
	return SecurityHeaders{
		ContentTypeOptions: true,
		FrameOptions:       true,
		ReferrerPolicy:     true,
	}
}

// SecureMiddleware sets headers on every response.
func SecureMiddleware(headers SecurityHeaders) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if headers.ContentTypeOptions {
				h.Set("X-Content-Type-Options", "nosniff")
			}
			if headers.FrameOptions {
				h.Set("X-Frame-Options", "DENY")
			}
			if headers.ReferrerPolicy {
				h.Set("Referrer-Policy", "no-referrer")
			}
			if headers.ContentSecurityPolicy != "" {
				h.Set("Content-Security-Policy", headers.ContentSecurityPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSOptions configures CORSMiddleware.
type CORSOptions struct {
	AllowedOrigins []string // "*" allows any origin
	AllowedMethods []string // Default: GET, HEAD, OPTIONS
	MaxAge         int      // Preflight cache duration in seconds
}

// CORSMiddleware answers preflight requests and sets CORS headers for
// allowed origins. Requests from other origins pass through without them.
func CORSMiddleware(opts CORSOptions) func(http.Handler) http.Handler {
	methods := opts.AllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodHead, http.MethodOptions}
	}
	wildcard := len(opts.AllowedOrigins) == 1 && opts.AllowedOrigins[0] == "*"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(opts.AllowedOrigins, origin) {
				h := w.Header()
				if wildcard {
					h.Set("Access-Control-Allow-Origin", "*")
				} else {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
				h.Set("Access-Control-Allow-Methods", strings.Join(methods, ", "))
				if opts.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(opts.MaxAge))
				}
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(allowed []string, origin string) bool {
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
