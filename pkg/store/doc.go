// Package store provides the persistence layer for thonkybot.
// It wraps a single database/sql connection pool with generic
// search/update/insert primitives that map rows to field-name
// dictionaries, plus embedded schema migrations for the Postgres,
// MySQL and SQLite backends.
package store
