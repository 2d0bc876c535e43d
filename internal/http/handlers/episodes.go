package handlers

import (
	"net/http"

	"tvcatalog/internal/core/validation"
	"tvcatalog/internal/domain/catalog"
	catalogsvc "tvcatalog/internal/services/catalog"
)

// GetEpisode returns the episode resolved by the route's rules
func GetEpisode() http.HandlerFunc {
	return validation.ReturnResource(keyEpisode)
}

// CreateEpisode handles episode creation
func CreateEpisode(svc *catalogsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		season, ok := validation.ResourceAs[*catalog.Season](r.Context(), keySeason)
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		req := validation.FromContext(r.Context())
		ep, err := svc.CreateEpisode(r.Context(), season, catalogsvc.EpisodeInput{
			Name:     bodyString(req, "name"),
			Number:   bodyInt(req, "number"),
			AirDate:  bodyDate(req, "airDate"),
			Overview: bodyOptString(req, "overview"),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, ep)
	}
}

// DeleteEpisode removes an episode
func DeleteEpisode(svc *catalogsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ep, ok := validation.ResourceAs[*catalog.Episode](r.Context(), keyEpisode)
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if err := svc.DeleteEpisode(r.Context(), ep.SerieID, ep.SeasonNumber, ep.Number); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, struct{}{})
	}
}
