package handlers

import (
	"net/http"

	"tvcatalog/internal/core/paging"
	"tvcatalog/internal/core/validation"
	"tvcatalog/internal/domain/catalog"
	catalogsvc "tvcatalog/internal/services/catalog"
)

// ListSeries returns a page of series
func ListSeries(svc *catalogsvc.Service, links paging.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		servePage(w, r, links, svc.ListSeries)
	}
}

// GetSerie returns the series detail resolved by the route's rules
func GetSerie() http.HandlerFunc {
	return validation.ReturnResource(keySerie)
}

// CreateSerie handles series creation with an image upload
func CreateSerie(svc *catalogsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := validation.FromContext(r.Context())
		in := catalogsvc.SerieInput{
			Name:        bodyString(req, "name"),
			AirDate:     bodyDate(req, "airDate"),
			Tagline:     bodyOptString(req, "tagline"),
			Description: bodyOptString(req, "description"),
			Language:    bodyString(req, "language"),
			Network:     bodyOptString(req, "network"),
			URL:         bodyOptString(req, "url"),
		}
		if b := bodyBool(req, "inProduction"); b != nil {
			in.InProduction = *b
		}

		s, err := svc.CreateSerie(r.Context(), in, req.File("image"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, s)
	}
}

// UpdateSerie handles partial series updates
func UpdateSerie(svc *catalogsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serie, ok := validation.ResourceAs[*catalog.Serie](r.Context(), keySerie)
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		req := validation.FromContext(r.Context())

		patch := catalog.SeriePatch{
			Name:         patchString(req, "name"),
			AirDate:      bodyDate(req, "airDate"),
			InProduction: bodyBool(req, "inProduction"),
			Tagline:      patchString(req, "tagline"),
			Description:  patchString(req, "description"),
			Language:     patchString(req, "language"),
			Network:      patchString(req, "network"),
			URL:          patchString(req, "url"),
		}

		updated, err := svc.UpdateSerie(r.Context(), serie.ID, patch, req.File("image"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// DeleteSerie removes a series
func DeleteSerie(svc *catalogsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serie, ok := validation.ResourceAs[*catalog.Serie](r.Context(), keySerie)
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if err := svc.DeleteSerie(r.Context(), serie.ID); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, struct{}{})
	}
}
