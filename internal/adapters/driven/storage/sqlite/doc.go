// Package sqlite provides the SQLite implementation of driven.CatalogRepository.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Queries go through jmoiron/sqlx.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory (NNN_name.up.sql), tracked in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.aisle/aisle.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. Layout replacement runs in a single transaction.
package sqlite
