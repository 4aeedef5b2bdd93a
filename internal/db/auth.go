package db

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/signage/internal/model"
)

// inserts new user into table, returns new user ID.
func (s *PostgresStore) CreateUser(ctx context.Context, email, hashedPassword string, name *string) (int, error) {
	const query = `
	INSERT INTO users (email, hashed_password, name, created_at, updated_at)
	VALUES ($1, $2, $3, now(), now())
	RETURNING id;`

	var newID int
	if err := s.db.QueryRowContext(ctx, query, email, hashedPassword, name).Scan(&newID); err != nil {
		log.Error().Err(err).Msg("[db] CreateUser: failed to insert user")
		return 0, translateError(err)
	}
	return newID, nil
}

// fetches user by email. returns ErrNotFound if missing.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	const query = `
	SELECT id, email, hashed_password, name, created_at, updated_at
	FROM users
	WHERE email = $1;`

	if err := s.db.GetContext(ctx, &u, query, email); err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}

// fetches a user by ID. returns ErrNotFound if missing.
func (s *PostgresStore) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	var u model.User
	const query = `
	SELECT id, email, hashed_password, name, created_at, updated_at
	FROM users
	WHERE id = $1;`

	if err := s.db.GetContext(ctx, &u, query, id); err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}
