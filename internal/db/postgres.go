package db

import (
	"github.com/jmoiron/sqlx"
)

// PostgresStore implements Store on top of sqlx and lib/pq.
type PostgresStore struct {
	db *sqlx.DB
}

// compile-time check that PostgresStore implements Store
var _ Store = (*PostgresStore)(nil)

func NewStore(conn *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: conn}
}
