package repositories

import (
	"context"
	"errors"

	"tvcatalog/internal/domain/catalog"
	"tvcatalog/internal/domain/user"
)

// ErrNotFound is returned by lookups, updates and deletes that match no row.
var ErrNotFound = errors.New("not found")

// SeriesRepository defines the contract for series data access
type SeriesRepository interface {
	List(ctx context.Context, limit, offset int) ([]catalog.Serie, error)
	FindByID(ctx context.Context, id int64) (*catalog.Serie, error)
	Genres(ctx context.Context, serieID int64) ([]catalog.Genre, error)
	Seasons(ctx context.Context, serieID int64) ([]catalog.Season, error)
	RatingSummary(ctx context.Context, serieID int64) (catalog.RatingSummary, error)
	Create(ctx context.Context, s *catalog.Serie) error
	Update(ctx context.Context, id int64, patch catalog.SeriePatch) (*catalog.Serie, error)
	Delete(ctx context.Context, id int64) error
}

// SeasonRepository defines the contract for season data access
type SeasonRepository interface {
	List(ctx context.Context, serieID int64, limit, offset int) ([]catalog.Season, error)
	FindByNumber(ctx context.Context, serieID int64, number int) (*catalog.Season, error)
	Episodes(ctx context.Context, seasonID int64) ([]catalog.Episode, error)
	Create(ctx context.Context, s *catalog.Season) error
	Delete(ctx context.Context, serieID int64, number int) error
}

// EpisodeRepository defines the contract for episode data access
type EpisodeRepository interface {
	Find(ctx context.Context, serieID int64, seasonNumber, number int) (*catalog.Episode, error)
	Create(ctx context.Context, e *catalog.Episode) error
	Delete(ctx context.Context, serieID int64, seasonNumber, number int) error
}

// GenreRepository defines the contract for genre data access
type GenreRepository interface {
	List(ctx context.Context, limit, offset int) ([]catalog.Genre, error)
	FindByName(ctx context.Context, name string) (*catalog.Genre, error)
	Create(ctx context.Context, g *catalog.Genre) error
}

// UserRepository defines the contract for user data access
type UserRepository interface {
	List(ctx context.Context, limit, offset int) ([]user.User, error)
	FindByID(ctx context.Context, id int64) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
	UpdateProfile(ctx context.Context, id int64, email, passwordHash *string) (*user.User, error)
	SetAdmin(ctx context.Context, id int64, admin bool) (*user.User, error)
}

// RatingRepository defines the contract for per-user series ratings
type RatingRepository interface {
	Find(ctx context.Context, userID, serieID int64) (*catalog.Rating, error)
	Create(ctx context.Context, r *catalog.Rating) error
	Update(ctx context.Context, r *catalog.Rating) error
	Delete(ctx context.Context, userID, serieID int64) error
}

// StateRepository defines the contract for per-user watch states
type StateRepository interface {
	Find(ctx context.Context, userID, serieID int64) (*catalog.State, error)
	Create(ctx context.Context, s *catalog.State) error
	Update(ctx context.Context, s *catalog.State) error
	Delete(ctx context.Context, userID, serieID int64) error
}
