// Package store defines the persistence abstractions used by the service
// layer: the generic Repository interface, the filter/sort/changes types it
// operates on, the sentinel errors implementations must return, and the
// transaction helper.
package store
