package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUserNotFound is returned when no user row exists for the given ID.
var ErrUserNotFound = errors.New("user not found")

// UsersRepository reads user profiles from the user directory.
type UsersRepository struct {
	db *pgxpool.Pool
}

// NewUsersRepository creates a new users repository.
func NewUsersRepository(db *pgxpool.Pool) *UsersRepository {
	return &UsersRepository{db: db}
}

// GetInterests returns the user's interest tags in their stored order.
// Returns ErrUserNotFound when the user does not exist; a user with no
// interests returns an empty slice.
func (r *UsersRepository) GetInterests(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var interests []string

	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(interests, '{}') FROM users WHERE id = $1`,
		userID,
	).Scan(&interests)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("get user interests: %w", err)
	}

	return interests, nil
}
