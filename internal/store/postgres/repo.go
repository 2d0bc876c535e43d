package postgres

import (
	"context"
	"errors"
	"fmt"

	"tvcatalog/internal/store/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo bundles the repositories sharing one pool.
type Repo struct {
	db *pgxpool.Pool

	Series   *seriesRepository
	Seasons  *seasonRepository
	Episodes *episodeRepository
	Genres   *genreRepository
	Users    *userRepository
	Ratings  *ratingRepository
	States   *stateRepository
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db:       db,
		Series:   NewSeriesRepository(db),
		Seasons:  NewSeasonRepository(db),
		Episodes: NewEpisodeRepository(db),
		Genres:   NewGenreRepository(db),
		Users:    NewUserRepository(db),
		Ratings:  NewRatingRepository(db),
		States:   NewStateRepository(db),
	}
}

// DB exposes the underlying pool (migrations, health checks).
func (r *Repo) DB() *pgxpool.Pool { return r.db }

// querier is the subset of pgxpool.Pool the repositories use.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// pagedQuery runs sql with LIMIT and OFFSET appended as the next two
// placeholders after args and collects the rows with scan.
func pagedQuery[T any](ctx context.Context, db querier, sql string, scan pgx.RowToFunc[T], limit, offset int, args ...any) ([]T, error) {
	q := fmt.Sprintf("%s LIMIT $%d OFFSET $%d", sql, len(args)+1, len(args)+2)
	rows, err := db.Query(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scan)
}

// listQuery collects every row of sql with scan.
func listQuery[T any](ctx context.Context, db querier, sql string, scan pgx.RowToFunc[T], args ...any) ([]T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scan)
}

// singleQuery scans exactly one row; no rows maps to repositories.ErrNotFound.
func singleQuery[T any](ctx context.Context, db querier, sql string, scan pgx.RowToFunc[T], args ...any) (*T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	v, err := pgx.CollectExactlyOneRow(rows, scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

// deleteQuery executes sql and reports repositories.ErrNotFound when no row
// was affected.
func deleteQuery(ctx context.Context, db querier, sql string, args ...any) error {
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repositories.ErrNotFound
	}
	return err
}
