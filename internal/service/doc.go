// Package service implements the resource service layer: one generic CRUD
// engine instantiated per entity type. The engine enforces the business
// rules that sit between the HTTP layer and the repository: uniqueness
// fast-path checks, existence guards on bulk operations, pagination
// metadata, and the DTO projections returned to callers.
package service
