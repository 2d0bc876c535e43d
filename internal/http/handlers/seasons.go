package handlers

import (
	"context"
	"net/http"

	"tvcatalog/internal/core/paging"
	"tvcatalog/internal/core/validation"
	"tvcatalog/internal/domain/catalog"
	catalogsvc "tvcatalog/internal/services/catalog"
)

// ListSeasons returns a page of the seasons of the series in the path
func ListSeasons(svc *catalogsvc.Service, links paging.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serie, ok := validation.ResourceAs[*catalog.Serie](r.Context(), keySerie)
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		servePage(w, r, links, func(ctx context.Context, limit, offset int) ([]catalog.Season, error) {
			return svc.ListSeasons(ctx, serie.ID, limit, offset)
		})
	}
}

// GetSeason returns a season with its episodes
func GetSeason(svc *catalogsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		season, ok := validation.ResourceAs[*catalog.Season](r.Context(), keySeason)
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		detail, err := svc.SeasonDetail(r.Context(), season)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// CreateSeason handles season creation with a poster upload
func CreateSeason(svc *catalogsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serie, ok := validation.ResourceAs[*catalog.Serie](r.Context(), keySerie)
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		req := validation.FromContext(r.Context())
		season, err := svc.CreateSeason(r.Context(), serie, catalogsvc.SeasonInput{
			Name:     bodyString(req, "name"),
			Number:   bodyInt(req, "number"),
			AirDate:  bodyDate(req, "airDate"),
			Overview: bodyOptString(req, "overview"),
		}, req.File("image"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, season)
	}
}

// DeleteSeason removes a season and its episodes
func DeleteSeason(svc *catalogsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		season, ok := validation.ResourceAs[*catalog.Season](r.Context(), keySeason)
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if err := svc.DeleteSeason(r.Context(), season.SerieID, season.Number); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, struct{}{})
	}
}
