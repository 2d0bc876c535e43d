package handlers

import (
	"net/http"

	"tvcatalog/internal/core/validation"
	"tvcatalog/internal/domain/catalog"
	middlewarex "tvcatalog/internal/http/middleware"
	catalogsvc "tvcatalog/internal/services/catalog"
)

// Rate creates (POST) or changes (PATCH) the caller's rating of the series
func Rate(svc *catalogsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middlewarex.User(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		serie, ok := validation.ResourceAs[*catalog.Serie](r.Context(), keySerie)
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		req := validation.FromContext(r.Context())
		update := r.Method == http.MethodPatch

		rating, err := svc.Rate(r.Context(), u.ID, serie.ID, bodyInt(req, "rating"), update)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		status := http.StatusCreated
		if update {
			status = http.StatusOK
		}
		writeJSON(w, status, rating)
	}
}

// Unrate removes the caller's rating of the series
func Unrate(svc *catalogsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middlewarex.User(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		serie, ok := validation.ResourceAs[*catalog.Serie](r.Context(), keySerie)
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if err := svc.Unrate(r.Context(), u.ID, serie.ID); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, struct{}{})
	}
}

// Track creates (POST) or changes (PATCH) the caller's watch state of the series
func Track(svc *catalogsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middlewarex.User(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		serie, ok := validation.ResourceAs[*catalog.Serie](r.Context(), keySerie)
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		req := validation.FromContext(r.Context())
		update := r.Method == http.MethodPatch

		state, err := svc.Track(r.Context(), u.ID, serie.ID, catalog.WatchState(bodyString(req, "state")), update)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		status := http.StatusCreated
		if update {
			status = http.StatusOK
		}
		writeJSON(w, status, state)
	}
}

// Untrack removes the caller's watch state of the series
func Untrack(svc *catalogsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middlewarex.User(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		serie, ok := validation.ResourceAs[*catalog.Serie](r.Context(), keySerie)
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if err := svc.Untrack(r.Context(), u.ID, serie.ID); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, struct{}{})
	}
}
