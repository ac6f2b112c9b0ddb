package pgstore

import (
	"context"
	"database/sql"

	"github.com/go-teller/teller/internal/domain"
	"github.com/go-teller/teller/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

const lockUserQuery = `
SELECT id FROM users
WHERE id = $1
FOR UPDATE
`

const countAccountsQuery = `
SELECT count(*) FROM accounts
WHERE user_id = $1
`

const insertAccountQuery = `
INSERT INTO
    accounts (number, user_id, balance)
VALUES
    ($1, $2, 0)
RETURNING number, user_id, balance, created_at
`

// CreateAccount inserts an empty account under the given user.
// The user row is locked first so the ownership-limit check and the insert
// happen in one atomic scope.
func (s *Store) CreateAccount(ctx context.Context, userID int32, number string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var a domain.Account

	tx, err := s.beginTx(ctx)
	if err != nil {
		l.Error().Err(err).Send()
		return a, errorspkg.ErrInternal
	}

	defer func() { _ = tx.Rollback() }()

	var lockedID int32
	if err := tx.QueryRowContext(ctx, lockUserQuery, userID).Scan(&lockedID); err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrUserNotFound
		}

		l.Error().Err(err).Send()

		if isLockTimeout(err) {
			return a, errorspkg.ErrUnavailable
		}

		return a, errorspkg.ErrInternal
	}

	var owned int
	if err := tx.QueryRowContext(ctx, countAccountsQuery, userID).Scan(&owned); err != nil {
		l.Error().Err(err).Send()
		return a, errorspkg.ErrInternal
	}

	if owned >= domain.MaxAccountsPerUser {
		return a, domain.ErrAccountLimitExceeded
	}

	row := tx.QueryRowContext(ctx, insertAccountQuery, number, userID)
	if err := row.Scan(&a.Number, &a.UserID, &a.Balance, &a.CreatedAt); err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "accounts_pkey" {
				return domain.Account{}, domain.ErrAccountNumberTaken
			}
		}

		return domain.Account{}, errorspkg.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

const lockOwnedAccountQuery = `
SELECT number, user_id, balance, created_at
FROM accounts
WHERE number = $1 AND user_id = $2
FOR UPDATE
`

const deleteAccountQuery = `
DELETE FROM accounts
WHERE number = $1 AND user_id = $2
`

// DeleteAccount removes the account if it belongs to the user and holds no
// funds. The zero-balance check reads the row under an exclusive lock so a
// concurrent deposit cannot slip in before the delete.
func (s *Store) DeleteAccount(ctx context.Context, userID int32, number string) error {
	l := zerolog.Ctx(ctx)

	tx, err := s.beginTx(ctx)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	defer func() { _ = tx.Rollback() }()

	var a domain.Account

	row := tx.QueryRowContext(ctx, lockOwnedAccountQuery, number, userID)
	if err := row.Scan(&a.Number, &a.UserID, &a.Balance, &a.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		if isLockTimeout(err) {
			return errorspkg.ErrUnavailable
		}

		return errorspkg.ErrInternal
	}

	if !a.Balance.IsZero() {
		return domain.ErrNonZeroBalance
	}

	if _, err := tx.ExecContext(ctx, deleteAccountQuery, number, userID); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

const listAccountsQuery = `
SELECT
	number, user_id, balance, created_at
FROM accounts
WHERE user_id = $1
ORDER BY number
`

// ListAccounts returns the user's accounts ordered by number.
func (s *Store) ListAccounts(ctx context.Context, userID int32) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := s.conn.QueryContext(ctx, listAccountsQuery, userID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.Number, &a.UserID, &a.Balance, &a.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const getAccountQuery = `
SELECT
	number, user_id, balance, created_at
FROM accounts
WHERE number = $1
`

// GetAccount returns the account with the given number.
func (s *Store) GetAccount(ctx context.Context, number string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var a domain.Account

	row := s.conn.QueryRowContext(ctx, getAccountQuery, number)

	err := row.Scan(&a.Number, &a.UserID, &a.Balance, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}
