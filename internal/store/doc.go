// Package store is a small SQLite-backed key-value store for state that must
// survive between runs, such as lifetime token totals.
package store
