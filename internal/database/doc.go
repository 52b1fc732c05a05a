// Package database manages the PostgreSQL connection pool backing the
// insight history log. Storage is optional; the server runs without it
// when no database is configured.
package database
