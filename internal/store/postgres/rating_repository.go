package postgres

import (
	"context"

	"tvcatalog/internal/domain/catalog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ratingRepository implements RatingRepository
type ratingRepository struct {
	db querier
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *pgxpool.Pool) *ratingRepository {
	return &ratingRepository{db: db}
}

// Find finds the rating a user gave a series
func (r *ratingRepository) Find(ctx context.Context, userID, serieID int64) (*catalog.Rating, error) {
	return singleQuery(ctx, r.db, `
		SELECT id, user_id, serie_id, rating
		FROM users_series_rating
		WHERE user_id = $1 AND serie_id = $2`, scanRating, userID, serieID)
}

// Create inserts a rating and fills its ID
func (r *ratingRepository) Create(ctx context.Context, rt *catalog.Rating) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO users_series_rating (user_id, serie_id, rating)
		VALUES ($1, $2, $3)
		RETURNING id`, rt.UserID, rt.SerieID, rt.Rating).Scan(&rt.ID)
}

// Update changes the value of an existing rating
func (r *ratingRepository) Update(ctx context.Context, rt *catalog.Rating) error {
	err := r.db.QueryRow(ctx, `
		UPDATE users_series_rating
		SET rating = $1
		WHERE user_id = $2 AND serie_id = $3
		RETURNING id`, rt.Rating, rt.UserID, rt.SerieID).Scan(&rt.ID)
	return notFound(err)
}

// Delete removes a rating
func (r *ratingRepository) Delete(ctx context.Context, userID, serieID int64) error {
	return deleteQuery(ctx, r.db, `DELETE FROM users_series_rating WHERE user_id = $1 AND serie_id = $2`, userID, serieID)
}

// scanRating scans a single row into a rating
func scanRating(row pgx.CollectableRow) (catalog.Rating, error) {
	var rt catalog.Rating
	err := row.Scan(&rt.ID, &rt.UserID, &rt.SerieID, &rt.Rating)
	return rt, err
}

// stateRepository implements StateRepository
type stateRepository struct {
	db querier
}

// NewStateRepository creates a new watch state repository
func NewStateRepository(db *pgxpool.Pool) *stateRepository {
	return &stateRepository{db: db}
}

// Find finds the watch state a user set on a series
func (r *stateRepository) Find(ctx context.Context, userID, serieID int64) (*catalog.State, error) {
	return singleQuery(ctx, r.db, `
		SELECT id, user_id, serie_id, state
		FROM users_series_state
		WHERE user_id = $1 AND serie_id = $2`, scanState, userID, serieID)
}

// Create inserts a watch state and fills its ID
func (r *stateRepository) Create(ctx context.Context, s *catalog.State) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO users_series_state (user_id, serie_id, state)
		VALUES ($1, $2, $3)
		RETURNING id`, s.UserID, s.SerieID, string(s.State)).Scan(&s.ID)
}

// Update changes an existing watch state
func (r *stateRepository) Update(ctx context.Context, s *catalog.State) error {
	err := r.db.QueryRow(ctx, `
		UPDATE users_series_state
		SET state = $1
		WHERE user_id = $2 AND serie_id = $3
		RETURNING id`, string(s.State), s.UserID, s.SerieID).Scan(&s.ID)
	return notFound(err)
}

// Delete removes a watch state
func (r *stateRepository) Delete(ctx context.Context, userID, serieID int64) error {
	return deleteQuery(ctx, r.db, `DELETE FROM users_series_state WHERE user_id = $1 AND serie_id = $2`, userID, serieID)
}

// scanState scans a single row into a watch state
func scanState(row pgx.CollectableRow) (catalog.State, error) {
	var (
		s     catalog.State
		state string
	)
	err := row.Scan(&s.ID, &s.UserID, &s.SerieID, &state)
	s.State = catalog.WatchState(state)
	return s, err
}
