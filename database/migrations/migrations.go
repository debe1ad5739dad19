// Package migrations contains all database migration files.
// Each migration file uses init() to call migration.Register().
// cmd/storefront imports this package for its side effects so every
// migration is registered before the CLI runs.
package migrations
