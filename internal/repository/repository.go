package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

// PageQuery holds pagination and sorting parameters shared by list queries.
type PageQuery struct {
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
