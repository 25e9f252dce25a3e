// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres). Lookups that match no row
// return sql.ErrNoRows; services translate it.
package repository

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
