package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"tvcatalog/internal/core/paging"
	"tvcatalog/internal/core/validation"
	"tvcatalog/internal/services/account"
	catalogsvc "tvcatalog/internal/services/catalog"
	"tvcatalog/internal/store/repositories"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service errors to responses. Validation errors use the
// same envelope as the validation gate.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		accountValidation *account.ValidationError
		catalogValidation *catalogsvc.ValidationError
	)
	switch {
	case errors.As(err, &accountValidation):
		validation.WriteFailure(w, accountValidation.Field, accountValidation.Message, validation.KindBadRequest)
	case errors.As(err, &catalogValidation):
		validation.WriteFailure(w, catalogValidation.Field, catalogValidation.Message, validation.KindBadRequest)
	case errors.Is(err, repositories.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// listFunc fetches one page of T.
type listFunc[T any] func(ctx context.Context, limit, offset int) ([]T, error)

// servePage writes a page of T with its links for the request path.
func servePage[T any](w http.ResponseWriter, r *http.Request, links paging.Builder, list listFunc[T]) {
	req := paging.ParseRequest(r.URL.Query())
	items, err := list(r.Context(), req.Limit, req.Offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	page := paging.Page[T]{Items: items, Offset: req.Offset, Limit: req.Limit}
	writeJSON(w, http.StatusOK, paging.Decorate(links, page, r.URL.Path))
}

// pathInt reads an integer path parameter. Routes validate them before the
// handler runs.
func pathInt(r *http.Request, name string) int64 {
	n, _ := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return n
}
