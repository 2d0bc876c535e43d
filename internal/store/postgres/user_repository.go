package postgres

import (
	"context"

	"tvcatalog/internal/domain/user"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, email, password, admin, created, updated`

// userRepository implements UserRepository
type userRepository struct {
	db querier
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *userRepository {
	return &userRepository{db: db}
}

// List returns a page of users ordered by id
func (r *userRepository) List(ctx context.Context, limit, offset int) ([]user.User, error) {
	return pagedQuery(ctx, r.db, `SELECT `+userColumns+` FROM users ORDER BY id ASC`, scanUser, limit, offset)
}

// FindByID finds a user by ID
func (r *userRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	return singleQuery(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE id = $1`, scanUser, id)
}

// FindByUsername finds a user by username
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return singleQuery(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE username = $1`, scanUser, username)
}

// FindByEmail finds a user by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return singleQuery(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE email = $1`, scanUser, email)
}

// Create inserts a user and fills its ID and timestamps
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password, admin)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created, updated`,
		u.Username, u.Email, u.Password, u.Admin,
	).Scan(&u.ID, &u.Created, &u.Updated)
}

// UpdateProfile changes the email and/or password hash of a user
func (r *userRepository) UpdateProfile(ctx context.Context, id int64, email, passwordHash *string) (*user.User, error) {
	return singleQuery(ctx, r.db, `
		UPDATE users
		SET email = COALESCE($1, email),
			password = COALESCE($2, password),
			updated = current_timestamp
		WHERE id = $3
		RETURNING `+userColumns, scanUser, email, passwordHash, id)
}

// SetAdmin grants or revokes admin rights
func (r *userRepository) SetAdmin(ctx context.Context, id int64, admin bool) (*user.User, error) {
	return singleQuery(ctx, r.db, `
		UPDATE users
		SET admin = $1, updated = current_timestamp
		WHERE id = $2
		RETURNING `+userColumns, scanUser, admin, id)
}

// scanUser scans a single row into a user
func scanUser(row pgx.CollectableRow) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Admin, &u.Created, &u.Updated)
	return u, err
}
