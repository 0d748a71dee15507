package model

// Page is one window of a list query. Total counts every row matching the
// query's filter, independent of the window.
type Page[T any] struct {
	Items []T
	Total int
}
