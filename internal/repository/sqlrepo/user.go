package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/database"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
	"github.com/sakif/blog-api/internal/schema"
)

var _ repository.UserRepository = (*UserRepo)(nil)

var userColumns = schema.Users.SelectList("")

// UserRepo stores users.
type UserRepo struct {
	db  *database.DB
	now Clock
}

func NewUserRepo(db *database.DB, opts ...Option) *UserRepo {
	o := buildOptions(opts)
	return &UserRepo{db: db, now: o.now}
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u   model.User
		bio sql.NullString
	)
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&bio,
		&u.IsActive,
		timestamp{&u.CreatedAt},
		timestamp{&u.UpdatedAt},
	)
	if err != nil {
		return nil, err
	}
	u.Bio = nullableString(bio)
	return &u, nil
}

// Create inserts a user. IsActive defaults to true. A taken email is an
// apperror.ErrUniqueViolation and nothing is written.
func (r *UserRepo) Create(ctx context.Context, in model.NewUser) (*model.User, error) {
	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	now := r.now()

	row := r.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, bio, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING `+userColumns,
		in.Name,
		in.Email,
		in.Bio,
		isActive,
		now,
		now,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, r.translate(err, "creating user", in.Email)
	}
	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlrepo: getting user %d: %w", id, err)
	}
	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlrepo: getting user by email: %w", err)
	}
	return u, nil
}

// List returns users newest first. Users created in the same instant are
// ordered by id, highest first, so pages never overlap.
func (r *UserRepo) List(ctx context.Context, opts repository.ListOptions) (*model.Page[model.User], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, fmt.Errorf("sqlrepo: counting users: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlrepo: listing users: %w", err)
	}
	defer rows.Close()

	page := &model.Page[model.User]{Items: []model.User{}, Total: total}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlrepo: scanning user row: %w", err)
		}
		page.Items = append(page.Items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlrepo: iterating user rows: %w", err)
	}
	return page, nil
}

// Update writes the non-nil fields of patch, clears bio when
// patch.ClearBio is set and always refreshes updated_at. It returns (nil, nil) when the user does not exist.
func (r *UserRepo) Update(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	var (
		sets []string
		args []any
	)
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *patch.Email)
	}
	switch {
	case patch.Bio != nil:
		sets = append(sets, "bio = ?")
		args = append(args, *patch.Bio)
	case patch.ClearBio:
		sets = append(sets, "bio = NULL")
	}
	if patch.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *patch.IsActive)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, r.now(), id)

	u, err := scanUser(r.db.QueryRowContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+`
		 WHERE id = ?
		 RETURNING `+userColumns,
		args...,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		email := ""
		if patch.Email != nil {
			email = *patch.Email
		}
		return nil, r.translate(err, fmt.Sprintf("updating user %d", id), email)
	}
	return u, nil
}

// Delete removes the user and reports whether a row existed. The user's
// posts stay, with author_id cleared.
func (r *UserRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlrepo: deleting user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlrepo: deleting user %d: %w", id, err)
	}
	return n > 0, nil
}

// ToggleStatus flips is_active in a single statement, so two concurrent
// toggles always cancel out.
func (r *UserRepo) ToggleStatus(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`UPDATE users SET is_active = NOT is_active, updated_at = ?
		 WHERE id = ?
		 RETURNING `+userColumns,
		r.now(), id,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlrepo: toggling user %d: %w", id, err)
	}
	return u, nil
}

func (r *UserRepo) translate(err error, op, email string) error {
	if errors.Is(r.db.Classify(err), apperror.ErrUniqueViolation) {
		return apperror.UniqueViolation("user", "email", email)
	}
	return fmt.Errorf("sqlrepo: %s: %w", op, err)
}
