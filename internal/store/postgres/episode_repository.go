package postgres

import (
	"context"

	"tvcatalog/internal/domain/catalog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// episodeRepository implements EpisodeRepository. Episodes are addressed by
// series ID, season number and episode number.
type episodeRepository struct {
	db querier
}

// NewEpisodeRepository creates a new episode repository
func NewEpisodeRepository(db *pgxpool.Pool) *episodeRepository {
	return &episodeRepository{db: db}
}

// Find finds an episode by series, season number and episode number
func (r *episodeRepository) Find(ctx context.Context, serieID int64, seasonNumber, number int) (*catalog.Episode, error) {
	return singleQuery(ctx, r.db, `
		SELECT e.id, e.serie_id, e.season_id, s.number, e.name, e.number, e.air_date, e.overview
		FROM episodes e
		JOIN seasons s ON s.id = e.season_id
		WHERE e.serie_id = $1 AND s.number = $2 AND e.number = $3`,
		scanEpisode, serieID, seasonNumber, number)
}

// Create inserts an episode and fills its ID
func (r *episodeRepository) Create(ctx context.Context, e *catalog.Episode) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO episodes (serie_id, season_id, name, number, air_date, overview)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		e.SerieID, e.SeasonID, e.Name, e.Number, e.AirDate, e.Overview,
	).Scan(&e.ID)
}

// Delete removes an episode
func (r *episodeRepository) Delete(ctx context.Context, serieID int64, seasonNumber, number int) error {
	return deleteQuery(ctx, r.db, `
		DELETE FROM episodes e
		USING seasons s
		WHERE s.id = e.season_id AND e.serie_id = $1 AND s.number = $2 AND e.number = $3`,
		serieID, seasonNumber, number)
}

// scanEpisode scans a single row into an episode
func scanEpisode(row pgx.CollectableRow) (catalog.Episode, error) {
	var e catalog.Episode
	err := row.Scan(&e.ID, &e.SerieID, &e.SeasonID, &e.SeasonNumber, &e.Name, &e.Number, &e.AirDate, &e.Overview)
	return e, err
}
