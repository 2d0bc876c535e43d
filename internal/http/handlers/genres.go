package handlers

import (
	"net/http"

	"tvcatalog/internal/core/paging"
	"tvcatalog/internal/core/validation"
	catalogsvc "tvcatalog/internal/services/catalog"
)

// ListGenres returns a page of genres
func ListGenres(svc *catalogsvc.Service, links paging.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		servePage(w, r, links, svc.ListGenres)
	}
}

// CreateGenre handles genre creation
func CreateGenre(svc *catalogsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := validation.FromContext(r.Context())
		g, err := svc.CreateGenre(r.Context(), bodyString(req, "name"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, g)
	}
}
