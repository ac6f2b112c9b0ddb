package pgstore

import (
	"context"
	"database/sql"

	"github.com/go-teller/teller/internal/domain"
	"github.com/go-teller/teller/pkg/dbpkg"
	"github.com/go-teller/teller/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE number = $2
RETURNING number, user_id, balance, created_at
`

// addBalance adjusts one account's balance by delta within a single statement.
// The accounts_balance_check constraint rejects any adjustment that would
// drive the balance negative, no matter what the caller read before.
func addBalance(ctx context.Context, db dbpkg.SQLInterface, number string, delta decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var a domain.Account

	row := db.QueryRowContext(ctx, addBalanceQuery, delta, number)

	err := row.Scan(&a.Number, &a.UserID, &a.Balance, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_balance_check" {
				l.Info().Err(err).Send()
				return a, domain.ErrInsufficientBalance
			}
		}

		if isLockTimeout(err) {
			l.Warn().Err(err).Send()
			return a, errorspkg.ErrUnavailable
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

// Deposit increases the account's balance by amount.
func (s *Store) Deposit(ctx context.Context, number string, amount decimal.Decimal) (domain.Account, error) {
	return addBalance(ctx, s.conn, number, amount)
}

// Withdraw decreases the account's balance by amount.
func (s *Store) Withdraw(ctx context.Context, number string, amount decimal.Decimal) (domain.Account, error) {
	return addBalance(ctx, s.conn, number, amount.Neg())
}

const lockAccountQuery = `
SELECT number, user_id, balance, created_at
FROM accounts
WHERE number = $1
FOR UPDATE
`

// Transfer debits from and credits to within a single database transaction.
//
// Both rows are locked in ascending number order regardless of transfer
// direction, so two concurrent transfers between the same pair of accounts
// can never hold one lock each while waiting for the other. Balances are
// re-read under the locks; whatever the caller saw earlier is not trusted.
func (s *Store) Transfer(ctx context.Context, from, to string, amount decimal.Decimal) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferTxResult

	tx, err := s.beginTx(ctx)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() { _ = tx.Rollback() }()

	first, second := from, to
	if second < first {
		first, second = second, first
	}

	locked := make(map[string]domain.Account, 2)

	for _, number := range []string{first, second} {
		var a domain.Account

		row := tx.QueryRowContext(ctx, lockAccountQuery, number)
		if err := row.Scan(&a.Number, &a.UserID, &a.Balance, &a.CreatedAt); err != nil {
			if err == sql.ErrNoRows {
				return result, domain.ErrAccountNotFound
			}

			l.Error().Err(err).Send()

			if isLockTimeout(err) {
				return result, errorspkg.ErrUnavailable
			}

			return result, errorspkg.ErrInternal
		}

		locked[number] = a
	}

	if locked[from].Balance.LessThan(amount) {
		return result, domain.ErrInsufficientBalance
	}

	deltas := map[string]decimal.Decimal{
		from: amount.Neg(),
		to:   amount,
	}

	for _, number := range []string{first, second} {
		a, err := addBalance(ctx, tx, number, deltas[number])
		if err != nil {
			return result, err
		}

		locked[number] = a
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	result.FromAccount = locked[from]
	result.ToAccount = locked[to]

	return result, nil
}
