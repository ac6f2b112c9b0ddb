package pgstore

import (
	"context"
	"database/sql"

	"github.com/go-teller/teller/internal/domain"
	"github.com/go-teller/teller/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

const createUserQuery = `
INSERT INTO
    users (full_name, email, hashed_password)
VALUES
    ($1, $2, $3)
RETURNING id, full_name, email, hashed_password, created_at
`

// CreateUser creates the user and then returns it.
func (s *Store) CreateUser(ctx context.Context, arg domain.CreateUserParams) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	row := s.conn.QueryRowContext(ctx, createUserQuery, arg.FullName, arg.Email, arg.HashedPassword)

	var u domain.User

	err := row.Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.HashedPassword,
		&u.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "users_email_key" {
				return u, domain.ErrEmailAlreadyExists
			}
		}

		return u, errorspkg.ErrInternal
	}

	return u, nil
}

const getUserQuery = `
SELECT
	id, full_name, email, hashed_password, created_at
FROM users
WHERE id = $1
`

// GetUser returns the user with the given id.
func (s *Store) GetUser(ctx context.Context, id int32) (domain.User, error) {
	return s.scanUser(ctx, s.conn.QueryRowContext(ctx, getUserQuery, id))
}

const getUserByEmailQuery = `
SELECT
	id, full_name, email, hashed_password, created_at
FROM users
WHERE email = $1
`

// GetUserByEmail returns the user with the given email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.scanUser(ctx, s.conn.QueryRowContext(ctx, getUserByEmailQuery, email))
}

func (s *Store) scanUser(ctx context.Context, row *sql.Row) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	var u domain.User

	err := row.Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.HashedPassword,
		&u.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return u, domain.ErrUserNotFound
		}

		l.Error().Err(err).Send()

		return u, errorspkg.ErrInternal
	}

	return u, nil
}
