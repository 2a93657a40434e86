package store

import "database/sql"

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx. Stores
// are created over the pool; WithTx rebinds a store to an open transaction so
// multi-store operations commit or roll back as a unit.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
