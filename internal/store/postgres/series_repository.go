package postgres

import (
	"context"
	"fmt"
	"strings"

	"tvcatalog/internal/domain/catalog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const serieColumns = `id, name, air_date, in_production, tagline, image, description, language, network, url`

// seriesRepository implements SeriesRepository
type seriesRepository struct {
	db querier
}

// NewSeriesRepository creates a new series repository
func NewSeriesRepository(db *pgxpool.Pool) *seriesRepository {
	return &seriesRepository{db: db}
}

// List returns a page of series ordered by id
func (r *seriesRepository) List(ctx context.Context, limit, offset int) ([]catalog.Serie, error) {
	return pagedQuery(ctx, r.db, `SELECT `+serieColumns+` FROM series ORDER BY id ASC`, scanSerie, limit, offset)
}

// FindByID finds a series by ID
func (r *seriesRepository) FindByID(ctx context.Context, id int64) (*catalog.Serie, error) {
	return singleQuery(ctx, r.db, `SELECT `+serieColumns+` FROM series WHERE id = $1`, scanSerie, id)
}

// Genres returns the genres of a series
func (r *seriesRepository) Genres(ctx context.Context, serieID int64) ([]catalog.Genre, error) {
	return listQuery(ctx, r.db, `
		SELECT genres.id, genres.name
		FROM series_genres
		JOIN genres ON genres.id = series_genres.genre_id
		WHERE series_genres.serie_id = $1
		ORDER BY genres.name ASC`, scanGenre, serieID)
}

// Seasons returns the seasons of a series ordered by number
func (r *seriesRepository) Seasons(ctx context.Context, serieID int64) ([]catalog.Season, error) {
	return listQuery(ctx, r.db, `SELECT `+seasonColumns+` FROM seasons WHERE serie_id = $1 ORDER BY number ASC`,
		scanSeason, serieID)
}

// RatingSummary returns the average and count of the ratings of a series
func (r *seriesRepository) RatingSummary(ctx context.Context, serieID int64) (catalog.RatingSummary, error) {
	var s catalog.RatingSummary
	err := r.db.QueryRow(ctx, `
		SELECT AVG(rating)::float8, COUNT(*)
		FROM users_series_rating
		WHERE serie_id = $1`, serieID).Scan(&s.Average, &s.Count)
	return s, err
}

// Create inserts a series and fills its ID
func (r *seriesRepository) Create(ctx context.Context, s *catalog.Serie) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO series (name, air_date, in_production, tagline, image, description, language, network, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		s.Name, s.AirDate, s.InProduction, s.Tagline, s.Image, s.Description, s.Language, s.Network, s.URL,
	).Scan(&s.ID)
}

// Update sets the non-nil columns of patch and returns the updated series
func (r *seriesRepository) Update(ctx context.Context, id int64, patch catalog.SeriePatch) (*catalog.Serie, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.AirDate != nil {
		set("air_date", *patch.AirDate)
	}
	if patch.InProduction != nil {
		set("in_production", *patch.InProduction)
	}
	if patch.Tagline != nil {
		set("tagline", *patch.Tagline)
	}
	if patch.Image != nil {
		set("image", *patch.Image)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Language != nil {
		set("language", *patch.Language)
	}
	if patch.Network != nil {
		set("network", *patch.Network)
	}
	if patch.URL != nil {
		set("url", *patch.URL)
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	args = append(args, id)
	q := fmt.Sprintf(`UPDATE series SET %s WHERE id = $%d RETURNING `+serieColumns,
		strings.Join(sets, ", "), len(args))
	return singleQuery(ctx, r.db, q, scanSerie, args...)
}

// Delete removes a series with its seasons, episodes, ratings and states
func (r *seriesRepository) Delete(ctx context.Context, id int64) error {
	return deleteQuery(ctx, r.db, `DELETE FROM series WHERE id = $1`, id)
}

// scanSerie scans a single row into a series
func scanSerie(row pgx.CollectableRow) (catalog.Serie, error) {
	var s catalog.Serie
	err := row.Scan(&s.ID, &s.Name, &s.AirDate, &s.InProduction, &s.Tagline, &s.Image,
		&s.Description, &s.Language, &s.Network, &s.URL)
	return s, err
}

// scanGenre scans a single row into a genre
func scanGenre(row pgx.CollectableRow) (catalog.Genre, error) {
	var g catalog.Genre
	err := row.Scan(&g.ID, &g.Name)
	return g, err
}
