package repository

import (
	"context"
	"database/sql"
	"errors"
	"net"

	"github.com/go-sql-driver/mysql"
)

// Storage error kinds. Repositories classify driver errors into these so the
// layers above never inspect MySQL error numbers themselves.
var (
	ErrNotFound    = errors.New("record not found")
	ErrConflict    = errors.New("constraint violation")
	ErrUnavailable = errors.New("storage unavailable")
)

// MySQL server error numbers the API distinguishes.
const (
	mysqlErrDupEntry        = 1062
	mysqlErrNoReferencedRow = 1452
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// Tx is the unit-of-work handle passed by value into store operations.
// *sql.Tx satisfies it; tests substitute their own.
type Tx interface {
	Commit() error
	Rollback() error
}

// DB begins units of work for the order engine.
type DB struct {
	db *sql.DB
}

func NewDB(db *sql.DB) *DB {
	return &DB{db: db}
}

func (d *DB) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify(err)
	}
	return tx, nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// sqlTx unwraps the handle a SQL-backed repository was given. A handle from
// another store implementation is a programming error, reported as such.
func sqlTx(tx Tx) (*sql.Tx, error) {
	t, ok := tx.(*sql.Tx)
	if !ok {
		return nil, errors.New("repository: tx does not originate from this database")
	}
	return t, nil
}

// classify maps driver errors onto the storage error kinds: duplicate entries
// and missing references are conflicts, connection problems and timeouts are
// transient.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlErrDupEntry, mysqlErrNoReferencedRow:
			return errors.Join(ErrConflict, err)
		case mysqlErrLockWaitTimeout, mysqlErrDeadlock:
			return errors.Join(ErrUnavailable, err)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrUnavailable, err)
	}

	return err
}
