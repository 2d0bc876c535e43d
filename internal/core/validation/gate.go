package validation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

type ctxKey string

const ctxRequest ctxKey = "validation_request"

// ErrorResponse is the body written for a failed gate.
type ErrorResponse struct {
	Errors []Outcome `json:"errors"`
}

// Gate returns middleware that runs rules and either forwards the request with
// the resolved resources in its context or writes a single error response.
func Gate(rules ...Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req, err := NewRequest(r)
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
				return
			}
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("rejecting malformed body")
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
				return
			}
			if prev := FromContext(r.Context()); prev != nil {
				for k, v := range prev.attachments() {
					req.Attach(k, v)
				}
			}

			res, err := Run(r.Context(), req, rules)
			if err != nil {
				// client went away; nothing is written
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("validation abandoned")
				return
			}
			if !res.OK() {
				WriteResult(w, res)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxRequest, req)))
		})
	}
}

// WriteResult writes the errors envelope of a failed result with its status.
func WriteResult(w http.ResponseWriter, res Result) {
	writeJSON(w, res.Status(), ErrorResponse{Errors: res.Errors()})
}

// WriteFailure writes a single outcome in the same envelope the gate uses.
func WriteFailure(w http.ResponseWriter, field, message string, kind Kind) {
	WriteResult(w, Result{Outcomes: []Outcome{{Field: field, Message: message, Kind: kind}}})
}

// FromContext returns the validated request stored by Gate.
func FromContext(ctx context.Context) *Request {
	req, _ := ctx.Value(ctxRequest).(*Request)
	return req
}

// Resource returns the resource a rule attached under key.
func Resource(ctx context.Context, key string) (any, bool) {
	req := FromContext(ctx)
	if req == nil {
		return nil, false
	}
	return req.Attached(key)
}

// ResourceAs returns the attached resource under key asserted to T.
func ResourceAs[T any](ctx context.Context, key string) (T, bool) {
	var zero T
	v, ok := Resource(ctx, key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// ReturnResource is a terminal handler echoing the resource attached under key.
func ReturnResource(key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := Resource(r.Context(), key)
		if !ok {
			log.Error().Str("key", key).Str("path", r.URL.Path).Msg("no resource attached")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}
