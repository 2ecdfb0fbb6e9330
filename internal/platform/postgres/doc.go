// Package postgres implements the store.Repository interface on top of a
// PostgreSQL database. A single generic Store works for every entity; each
// entity contributes a Table descriptor naming its columns and how to scan
// and project them.
package postgres
