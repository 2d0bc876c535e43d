package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serie struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func fetchSeries(known map[string]*serie) Fetcher[serie] {
	return func(_ context.Context, id string, _ *Request) (*serie, error) {
		return known[id], nil
	}
}

func fetchBroken(context.Context, string, *Request) (*serie, error) {
	return nil, errors.New(`pq: relation "series" does not exist`)
}

func decodeErrors(t *testing.T, rec *httptest.ResponseRecorder) []Outcome {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Errors
}

func serve(t *testing.T, pattern string, gate func(http.Handler) http.Handler, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.With(gate).Get(pattern, h)
	r.With(gate).Post(pattern, h)
	r.With(gate).Patch(pattern, h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGate_ForwardsOnceWithResource(t *testing.T) {
	known := map[string]*serie{"1": {ID: "1", Name: "Severance"}}
	var calls int32
	h := func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		ReturnResource("serie")(w, r)
	}

	rec := serve(t, "/tv/{id}", Gate(ResourceExists("id", "serie", fetchSeries(known))), h,
		httptest.NewRequest(http.MethodGet, "/tv/1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	var got serie
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Severance", got.Name)
}

func TestGate_ResourceMissing(t *testing.T) {
	var called bool
	h := func(http.ResponseWriter, *http.Request) { called = true }

	rec := serve(t, "/tv/{id}", Gate(ResourceExists("id", "serie", fetchSeries(nil))), h,
		httptest.NewRequest(http.MethodGet, "/tv/999", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, []Outcome{{Field: "id", Message: "not found"}}, decodeErrors(t, rec))
}

func TestGate_ResourceNotExists(t *testing.T) {
	known := map[string]*serie{"1": {ID: "1"}}
	h := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusCreated) }
	gate := Gate(ResourceNotExists("id", fetchSeries(known)))

	rec := serve(t, "/tv/{id}", gate, h, httptest.NewRequest(http.MethodPost, "/tv/1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []Outcome{{Field: "id", Message: "already exists"}}, decodeErrors(t, rec))

	rec = serve(t, "/tv/{id}", gate, h, httptest.NewRequest(http.MethodPost, "/tv/2", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestGate_FetchErrorIsHidden(t *testing.T) {
	h := func(http.ResponseWriter, *http.Request) { t.Fatal("handler must not run") }

	rec := serve(t, "/tv/{id}", Gate(ResourceExists("id", "serie", fetchBroken)), h,
		httptest.NewRequest(http.MethodGet, "/tv/1", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "relation")
	assert.Equal(t, []Outcome{{Field: "id", Message: "server error"}}, decodeErrors(t, rec))
}

func TestGate_NotFoundWinsOverBadRequest(t *testing.T) {
	gate := Gate(
		ResourceExists("id", "serie", fetchSeries(nil)),
		Body("name", Length(1, 256), "name is required, max 128 characters"),
	)
	rec := serve(t, "/tv/{id}", gate, func(http.ResponseWriter, *http.Request) {},
		httptest.NewRequest(http.MethodPatch, "/tv/3", strings.NewReader(`{"name":""}`)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	errs := decodeErrors(t, rec)
	require.Len(t, errs, 2)
	assert.Equal(t, "id", errs[0].Field)
	assert.Equal(t, "name", errs[1].Field)
}

func TestGate_ServerErrorWinsOverNotFound(t *testing.T) {
	gate := Gate(
		ResourceExists("id", "serie", fetchSeries(nil)),
		ResourceExists("seasonId", "season", fetchBroken),
	)
	rec := serve(t, "/tv/{id}/season/{seasonId}", gate, func(http.ResponseWriter, *http.Request) {},
		httptest.NewRequest(http.MethodGet, "/tv/1/season/1", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Len(t, decodeErrors(t, rec), 2)
}

func TestGate_MalformedJSON(t *testing.T) {
	rec := serve(t, "/tv", Gate(), func(http.ResponseWriter, *http.Request) {},
		httptest.NewRequest(http.MethodPost, "/tv", strings.NewReader(`{"name":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid json"}`, rec.Body.String())
}

func TestGate_BodyTooLarge(t *testing.T) {
	var called atomic.Bool
	body := `{"name":"` + strings.Repeat("a", maxJSONBody) + `"}`
	rec := serve(t, "/tv", Gate(), func(http.ResponseWriter, *http.Request) { called.Store(true) },
		httptest.NewRequest(http.MethodPost, "/tv", strings.NewReader(body)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"request body too large"}`, rec.Body.String())
	assert.False(t, called.Load())
}

func TestGate_HandlerCanReadBodyAgain(t *testing.T) {
	var got map[string]string
	h := func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}
	gate := Gate(Body("name", Length(1, 256), "name is required, max 128 characters"))

	rec := serve(t, "/tv", gate, h,
		httptest.NewRequest(http.MethodPost, "/tv", strings.NewReader(`{"name":"Dark"}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Dark", got["name"])
}

func TestGate_ChainedGatesShareResources(t *testing.T) {
	known := map[string]*serie{"1": {ID: "1", Name: "Dark"}}
	r := chi.NewRouter()
	r.With(
		Gate(ResourceExists("id", "serie", fetchSeries(known))),
		Gate(Query("offset", IntMin(0), MsgOffset).AsOptional()),
	).Get("/tv/{id}", ReturnResource("serie"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tv/1?offset=2", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dark")
}

func TestGate_PagingRules(t *testing.T) {
	tests := []struct {
		query string
		code  int
		msg   string
	}{
		{"", http.StatusOK, ""},
		{"?offset=0&limit=1", http.StatusOK, ""},
		{"?offset=-1", http.StatusBadRequest, MsgOffset},
		{"?limit=0", http.StatusBadRequest, MsgLimit},
		{"?limit=ten", http.StatusBadRequest, MsgLimit},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := serve(t, "/tv", Gate(PagingRules()...), func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}, httptest.NewRequest(http.MethodGet, "/tv"+tt.query, nil))

			assert.Equal(t, tt.code, rec.Code)
			if tt.msg != "" {
				errs := decodeErrors(t, rec)
				require.Len(t, errs, 1)
				assert.Equal(t, tt.msg, errs[0].Message)
			}
		})
	}
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, fileField, contentType string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="poster"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = io.WriteString(part, "GIF89a")
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestGate_ImageRule(t *testing.T) {
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusCreated) }
	gate := Gate(
		Body("name", Length(1, 256), "name is required, max 128 characters").If(OptionalOnPatch("name")),
		Image("image"),
	)

	t.Run("accepted", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/tv", map[string]string{"name": "Dark"}, "image", "image/gif")
		rec := serve(t, "/tv", gate, ok, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("missing on create", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/tv", map[string]string{"name": "Dark"}, "", "")
		rec := serve(t, "/tv", gate, ok, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, []Outcome{{Field: "image", Message: "image is required"}}, decodeErrors(t, rec))
	})

	t.Run("missing on patch", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPatch, "/tv", map[string]string{"tagline": "x"}, "", "")
		rec := serve(t, "/tv", gate, ok, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("illegal mimetype", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/tv", map[string]string{"name": "Dark"}, "image", "text/plain")
		rec := serve(t, "/tv", gate, ok, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		errs := decodeErrors(t, rec)
		require.Len(t, errs, 1)
		assert.Equal(t,
			"Mimetype text/plain is not legal. Only image/jpeg, image/png, image/gif are accepted",
			errs[0].Message)
	})
}

func TestGate_CancelledRequestWritesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := func(ctx context.Context, _ any, _ *Request) error {
		<-ctx.Done()
		return ctx.Err()
	}
	var called bool
	h := func(http.ResponseWriter, *http.Request) { called = true }

	req := httptest.NewRequest(http.MethodGet, "/tv/1", nil).WithContext(ctx)
	rec := serve(t, "/tv/{id}", Gate(Param("id", slow, "")), h, req)

	assert.False(t, called)
	assert.Zero(t, rec.Body.Len())
}

func TestWriteFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteFailure(rec, "username", "username or password incorrect", KindUnauthorized)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"errors":[{"field":"username","message":"username or password incorrect"}]}`, rec.Body.String())
}
