package db

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// Queryer is the subset of *sql.DB / *sql.Tx repositories depend on, so the
// same query code runs inside and outside transactions.
type Queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

const mysqlErrDuplicateEntry = 1062

// IsDuplicate reports whether err is a MySQL duplicate-key violation. The
// unique keys on bookings and the catalog tables are the last line of
// defense behind in-transaction checks.
func IsDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}
