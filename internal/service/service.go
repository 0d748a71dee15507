// Package service holds the business rules between the HTTP handlers and
// the repositories.
//
//	Handler (HTTP)      → parses requests, writes envelopes
//	Service (rules)     → validates input, clamps paging, turns "no row" into NotFound
//	Repository (SQL)    → reads and writes rows
//
// Services depend on repository interfaces, never on sqlrepo, so tests run
// them against in-memory fakes.
package service

import (
	"github.com/sakif/blog-api/internal/repository"
)

// Paging limits for every list endpoint.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
)

// PageResult is one page of a list plus the paging it was fetched with.
type PageResult[T any] struct {
	Items []T
	Page  int
	Limit int
	Total int
}

// TotalPages is ceil(Total / Limit).
func (p PageResult[T]) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// Paging clamps a requested page and limit into a valid ListOptions:
// a page below 1 becomes DefaultPage, a limit below 1 becomes DefaultLimit
// and a limit above MaxLimit is capped.
func Paging(page, limit int) repository.ListOptions {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return repository.ListOptions{Page: page, Limit: limit}
}

func pageResult[T any](items []T, total int, opts repository.ListOptions) *PageResult[T] {
	return &PageResult[T]{Items: items, Page: opts.Page, Limit: opts.Limit, Total: total}
}
