package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
	"github.com/sakif/blog-api/internal/schema"
)

// PostService handles business logic for posts.
type PostService struct {
	repo   repository.PostRepository
	logger *slog.Logger
}

func NewPostService(repo repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and stores a new post. The author must exist; a missing
// author comes back from the repository as apperror.ErrInvalidReference.
func (s *PostService) Create(ctx context.Context, in model.NewPost) (*model.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}
	if in.AuthorID < 1 {
		return nil, apperror.ValidationFailed("authorId", "authorId must be a positive integer")
	}

	post, err := s.repo.Create(ctx, in)
	if err != nil {
		if !errors.Is(err, apperror.ErrInvalidReference) {
			s.logger.Error("failed to create post",
				slog.Int64("author_id", in.AuthorID),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	s.logger.Info("post created",
		slog.Int64("id", post.ID),
		slog.Int64("author_id", in.AuthorID),
	)
	return post, nil
}

func (s *PostService) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperror.NotFound("post", id)
	}
	return post, nil
}

// ListWithAuthors returns one page of posts, newest first, each with its
// author (nil if the author was deleted).
func (s *PostService) ListWithAuthors(ctx context.Context, page, limit int) (*PageResult[model.PostWithAuthor], error) {
	opts := Paging(page, limit)
	posts, err := s.repo.ListWithAuthors(ctx, opts)
	if err != nil {
		return nil, err
	}
	return pageResult(posts.Items, posts.Total, opts), nil
}

func (s *PostService) ListPublished(ctx context.Context, page, limit int) (*PageResult[model.Post], error) {
	opts := Paging(page, limit)
	posts, err := s.repo.ListPublished(ctx, opts)
	if err != nil {
		return nil, err
	}
	return pageResult(posts.Items, posts.Total, opts), nil
}

// ListByAuthor returns one page of an author's posts. An author with no
// posts, or no such author, yields an empty page.
func (s *PostService) ListByAuthor(ctx context.Context, authorID int64, page, limit int) (*PageResult[model.Post], error) {
	opts := Paging(page, limit)
	posts, err := s.repo.ListByAuthor(ctx, authorID, opts)
	if err != nil {
		return nil, err
	}
	return pageResult(posts.Items, posts.Total, opts), nil
}

func (s *PostService) Update(ctx context.Context, id int64, patch model.PostPatch) (*model.Post, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	if patch.Content != nil {
		if err := validateContent(*patch.Content); err != nil {
			return nil, err
		}
	}

	post, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperror.NotFound("post", id)
	}

	s.logger.Info("post updated", slog.Int64("id", id))
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound("post", id)
	}

	s.logger.Info("post deleted", slog.Int64("id", id))
	return nil
}

func (s *PostService) Publish(ctx context.Context, id int64) (*model.Post, error) {
	return s.setPublished(ctx, id, s.repo.Publish)
}

func (s *PostService) Unpublish(ctx context.Context, id int64) (*model.Post, error) {
	return s.setPublished(ctx, id, s.repo.Unpublish)
}

func (s *PostService) setPublished(ctx context.Context, id int64, fn func(context.Context, int64) (*model.Post, error)) (*model.Post, error) {
	post, err := fn(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperror.NotFound("post", id)
	}

	s.logger.Info("post publication changed",
		slog.Int64("id", id),
		slog.Bool("published", post.Published),
	)
	return post, nil
}

func validateTitle(title string) error {
	if title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if utf8.RuneCountInString(title) > schema.MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", schema.MaxTitleLength))
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return apperror.ValidationFailed("content", "content is required")
	}
	return nil
}
