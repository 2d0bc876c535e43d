package postgres

import (
	"context"

	"tvcatalog/internal/domain/catalog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// genreRepository implements GenreRepository
type genreRepository struct {
	db querier
}

// NewGenreRepository creates a new genre repository
func NewGenreRepository(db *pgxpool.Pool) *genreRepository {
	return &genreRepository{db: db}
}

// List returns a page of genres ordered by id
func (r *genreRepository) List(ctx context.Context, limit, offset int) ([]catalog.Genre, error) {
	return pagedQuery(ctx, r.db, `SELECT id, name FROM genres ORDER BY id ASC`, scanGenre, limit, offset)
}

// FindByName finds a genre by exact name
func (r *genreRepository) FindByName(ctx context.Context, name string) (*catalog.Genre, error) {
	return singleQuery(ctx, r.db, `SELECT id, name FROM genres WHERE name = $1`, scanGenre, name)
}

// Create inserts a genre and fills its ID
func (r *genreRepository) Create(ctx context.Context, g *catalog.Genre) error {
	return r.db.QueryRow(ctx, `INSERT INTO genres (name) VALUES ($1) RETURNING id`, g.Name).Scan(&g.ID)
}
