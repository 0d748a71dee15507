package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
	"github.com/sakif/blog-api/internal/schema"
)

// emailPattern is deliberately loose: something@something.tld, no spaces.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserService handles business logic for users.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and stores a new user. The email must not belong to
// another user.
func (s *UserService) Create(ctx context.Context, in model.NewUser) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}

	// Fast path for the common case. The unique index still decides when two
	// requests race for the same address.
	existing, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if existing != nil {
		return nil, apperror.UniqueViolation("user", "email", in.Email)
	}

	user, err := s.repo.Create(ctx, in)
	if err != nil {
		if !errors.Is(err, apperror.ErrUniqueViolation) {
			s.logger.Error("failed to create user",
				slog.String("email", in.Email),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	s.logger.Info("user created",
		slog.Int64("id", user.ID),
		slog.String("email", user.Email),
	)
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user", id)
	}
	return user, nil
}

// List returns one page of users, newest first. page and limit are clamped
// (see Paging).
func (s *UserService) List(ctx context.Context, page, limit int) (*PageResult[model.User], error) {
	opts := Paging(page, limit)
	users, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	return pageResult(users.Items, users.Total, opts), nil
}

// Update applies a partial update. Fields left nil are untouched; an empty
// patch only refreshes updatedAt.
func (s *UserService) Update(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		patch.Email = &email
	}

	user, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user", id)
	}

	s.logger.Info("user updated", slog.Int64("id", id))
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound("user", id)
	}

	s.logger.Info("user deleted", slog.Int64("id", id))
	return nil
}

// ToggleStatus flips a user between active and inactive.
func (s *UserService) ToggleStatus(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.ToggleStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user", id)
	}

	s.logger.Info("user status toggled",
		slog.Int64("id", id),
		slog.Bool("active", user.IsActive),
	)
	return user, nil
}

func validateName(name string) error {
	if name == "" {
		return apperror.ValidationFailed("name", "name is required")
	}
	if utf8.RuneCountInString(name) > schema.MaxNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or less", schema.MaxNameLength))
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}
	if utf8.RuneCountInString(email) > schema.MaxEmailLength {
		return apperror.ValidationFailed("email",
			fmt.Sprintf("email must be %d characters or less", schema.MaxEmailLength))
	}
	if !emailPattern.MatchString(email) {
		return apperror.ValidationFailed("email", "invalid email format")
	}
	return nil
}
