// Package sqlite keeps generated articles in a local SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Only finished articles are stored; the chunks, vectors and
// citations used to write an article live in memory for one run.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files; applied
// versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.quill/data/articles.db
package sqlite
