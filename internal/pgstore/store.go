// Package pgstore implements the account store on a relational database.
// Isolation comes from row-level locks: single-row adjustments are one
// UPDATE statement, and the two-row transfer locks both rows FOR UPDATE in
// ascending account-number order before touching either balance.
package pgstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Store provides all account store operations over a sql connection pool.
type Store struct {
	conn        *sql.DB
	lockTimeout time.Duration
}

// New returns a Store using the given connection pool.
func New(conn *sql.DB, lockTimeout time.Duration) *Store {
	return &Store{
		conn:        conn,
		lockTimeout: lockTimeout,
	}
}

// beginTx starts a transaction with a bounded lock wait so an operation
// aborts with a transient error instead of queueing behind a stuck holder.
func (s *Store) beginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	if ms := s.lockTimeout.Milliseconds(); ms > 0 {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", ms)); err != nil {
			_ = tx.Rollback()

			return nil, err
		}
	}

	return tx, nil
}

// lockNotAvailable is the class 55 code postgres reports when lock_timeout expires.
const lockNotAvailable = "55P03"

func isLockTimeout(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == lockNotAvailable
}
