package postgres

import (
	"context"

	"tvcatalog/internal/domain/catalog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const seasonColumns = `id, serie_id, name, number, air_date, overview, poster`

// seasonRepository implements SeasonRepository
type seasonRepository struct {
	db querier
}

// NewSeasonRepository creates a new season repository
func NewSeasonRepository(db *pgxpool.Pool) *seasonRepository {
	return &seasonRepository{db: db}
}

// List returns a page of the seasons of a series ordered by number
func (r *seasonRepository) List(ctx context.Context, serieID int64, limit, offset int) ([]catalog.Season, error) {
	return pagedQuery(ctx, r.db,
		`SELECT `+seasonColumns+` FROM seasons WHERE serie_id = $1 ORDER BY number ASC`,
		scanSeason, limit, offset, serieID)
}

// FindByNumber finds the season of a series by its number
func (r *seasonRepository) FindByNumber(ctx context.Context, serieID int64, number int) (*catalog.Season, error) {
	return singleQuery(ctx, r.db,
		`SELECT `+seasonColumns+` FROM seasons WHERE serie_id = $1 AND number = $2`,
		scanSeason, serieID, number)
}

// Episodes returns the episodes of a season ordered by number
func (r *seasonRepository) Episodes(ctx context.Context, seasonID int64) ([]catalog.Episode, error) {
	return listQuery(ctx, r.db, `
		SELECT e.id, e.serie_id, e.season_id, s.number, e.name, e.number, e.air_date, e.overview
		FROM episodes e
		JOIN seasons s ON s.id = e.season_id
		WHERE e.season_id = $1
		ORDER BY e.number ASC`, scanEpisode, seasonID)
}

// Create inserts a season and fills its ID
func (r *seasonRepository) Create(ctx context.Context, s *catalog.Season) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO seasons (serie_id, name, number, air_date, overview, poster)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		s.SerieID, s.Name, s.Number, s.AirDate, s.Overview, s.Poster,
	).Scan(&s.ID)
}

// Delete removes a season and its episodes
func (r *seasonRepository) Delete(ctx context.Context, serieID int64, number int) error {
	return deleteQuery(ctx, r.db, `DELETE FROM seasons WHERE serie_id = $1 AND number = $2`, serieID, number)
}

// scanSeason scans a single row into a season
func scanSeason(row pgx.CollectableRow) (catalog.Season, error) {
	var s catalog.Season
	err := row.Scan(&s.ID, &s.SerieID, &s.Name, &s.Number, &s.AirDate, &s.Overview, &s.Poster)
	return s, err
}
