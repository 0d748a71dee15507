// Package repository declares the data-access contracts.
//
// Implementations live in sub-packages (sqlrepo runs on SQLite and
// PostgreSQL). Services depend on these interfaces only, which is what lets
// service tests swap in fakes.
//
// NOT FOUND IS NOT AN ERROR HERE:
// Lookups return (nil, nil) when the row does not exist. Deciding whether
// a missing row is a 404 is the service layer's job.
package repository

import (
	"context"

	"github.com/sakif/blog-api/internal/model"
)

// ListOptions selects one page of a list. Page is 1-based. Values are
// trusted: the service layer clamps them before they get here.
type ListOptions struct {
	Page  int
	Limit int
}

// Offset is the number of rows skipped before this page.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

type UserRepository interface {
	Create(ctx context.Context, in model.NewUser) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, opts ListOptions) (*model.Page[model.User], error)
	Update(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ToggleStatus(ctx context.Context, id int64) (*model.User, error)
}

type PostRepository interface {
	Create(ctx context.Context, in model.NewPost) (*model.Post, error)
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	Update(ctx context.Context, id int64, patch model.PostPatch) (*model.Post, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ListWithAuthors(ctx context.Context, opts ListOptions) (*model.Page[model.PostWithAuthor], error)
	ListByAuthor(ctx context.Context, authorID int64, opts ListOptions) (*model.Page[model.Post], error)
	ListPublished(ctx context.Context, opts ListOptions) (*model.Page[model.Post], error)
	Publish(ctx context.Context, id int64) (*model.Post, error)
	Unpublish(ctx context.Context, id int64) (*model.Post, error)
}
