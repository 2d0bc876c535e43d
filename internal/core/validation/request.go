package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"sync"

	"github.com/go-chi/chi/v5"
)

const (
	// maxMultipartMemory bounds the in-memory part of a parsed multipart body.
	maxMultipartMemory = 10 << 20
	// maxJSONBody bounds a JSON body.
	maxJSONBody = 1 << 20
)

// ErrMalformedBody is returned by NewRequest when the body cannot be decoded.
var ErrMalformedBody = errors.New("malformed request body")

// Request is the read-only view predicates validate against. Resources resolved
// by the rules are attached to it and handed to the next handler on success.
type Request struct {
	HTTP   *http.Request
	Method string
	Body   map[string]any
	Query  url.Values
	Params map[string]string
	Files  map[string][]*multipart.FileHeader

	mu       sync.Mutex
	attached map[string]any
}

// NewRequest decodes the JSON or multipart body of r, collects query values and
// chi path parameters. A JSON body is buffered and restored on r so handlers can
// decode it again.
func NewRequest(r *http.Request) (*Request, error) {
	req := &Request{
		HTTP:   r,
		Method: r.Method,
		Body:   map[string]any{},
		Query:  r.URL.Query(),
		Params: map[string]string{},
		Files:  map[string][]*multipart.FileHeader{},
	}

	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if i < len(rctx.URLParams.Values) {
				req.Params[key] = rctx.URLParams.Values[i]
			}
		}
	}

	if r.Body == nil || r.Body == http.NoBody {
		return req, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case mediaType == "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				req.Body[k] = v[0]
			}
		}
		for k, v := range r.MultipartForm.File {
			req.Files[k] = v
		}
	default:
		raw, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxJSONBody))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(raw))
		if len(bytes.TrimSpace(raw)) == 0 {
			return req, nil
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var body any
		if err := dec.Decode(&body); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		// null and non-object bodies carry no fields
		if m, ok := body.(map[string]any); ok {
			req.Body = m
		}
	}
	return req, nil
}

// Context returns the context of the underlying HTTP request.
func (r *Request) Context() context.Context {
	if r.HTTP == nil {
		return context.Background()
	}
	return r.HTTP.Context()
}

// Value returns the raw value of field at loc and whether it is present.
// An empty field name addresses the whole body.
func (r *Request) Value(loc Location, field string) (any, bool) {
	switch loc {
	case InQuery:
		vs, ok := r.Query[field]
		if !ok || len(vs) == 0 {
			return nil, false
		}
		return vs[0], true
	case InPath:
		v, ok := r.Params[field]
		return v, ok
	default:
		if field == "" {
			return r.Body, true
		}
		if v, ok := r.Body[field]; ok {
			return v, true
		}
		if fs, ok := r.Files[field]; ok && len(fs) > 0 {
			return fs[0], true
		}
		return nil, false
	}
}

// Param returns a path parameter or an empty string.
func (r *Request) Param(name string) string { return r.Params[name] }

// BodyString returns a body field as a string when it is one.
func (r *Request) BodyString(field string) (string, bool) {
	s, ok := r.Body[field].(string)
	return s, ok
}

// File returns the first uploaded file for field.
func (r *Request) File(field string) *multipart.FileHeader {
	if fs := r.Files[field]; len(fs) > 0 {
		return fs[0]
	}
	return nil
}

// Attach stores a resolved resource under key.
func (r *Request) Attach(key string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attached == nil {
		r.attached = map[string]any{}
	}
	r.attached[key] = v
}

// Attached returns the resource stored under key.
func (r *Request) Attached(key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.attached[key]
	return v, ok
}

func (r *Request) attachments() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]any, len(r.attached))
	for k, v := range r.attached {
		out[k] = v
	}
	return out
}

// isEmpty reports whether v counts as absent for optional rules.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}
