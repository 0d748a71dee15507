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

var _ repository.PostRepository = (*PostRepo)(nil)

var postColumns = schema.Posts.SelectList("")

// PostRepo stores posts.
type PostRepo struct {
	db  *database.DB
	now Clock
}

func NewPostRepo(db *database.DB, opts ...Option) *PostRepo {
	o := buildOptions(opts)
	return &PostRepo{db: db, now: o.now}
}

func scanPost(row rowScanner) (*model.Post, error) {
	var (
		p        model.Post
		authorID sql.NullInt64
	)
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&authorID,
		&p.Published,
		timestamp{&p.CreatedAt},
		timestamp{&p.UpdatedAt},
	)
	if err != nil {
		return nil, err
	}
	p.AuthorID = nullableInt64(authorID)
	return &p, nil
}

// Create inserts a post. Published defaults to false. An author id with no
// matching user is an apperror.ErrInvalidReference.
func (r *PostRepo) Create(ctx context.Context, in model.NewPost) (*model.Post, error) {
	published := false
	if in.Published != nil {
		published = *in.Published
	}
	now := r.now()

	p, err := scanPost(r.db.QueryRowContext(ctx,
		`INSERT INTO posts (title, content, author_id, published, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING `+postColumns,
		in.Title,
		in.Content,
		in.AuthorID,
		published,
		now,
		now,
	))
	if err != nil {
		if errors.Is(r.db.Classify(err), apperror.ErrInvalidReference) {
			return nil, apperror.InvalidReference("authorId",
				fmt.Sprintf("author %d does not exist", in.AuthorID))
		}
		return nil, fmt.Errorf("sqlrepo: creating post: %w", err)
	}
	return p, nil
}

func (r *PostRepo) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlrepo: getting post %d: %w", id, err)
	}
	return p, nil
}

// Update writes the non-nil fields of patch and always refreshes
// updated_at. It returns (nil, nil) when the post does not exist.
func (r *PostRepo) Update(ctx context.Context, id int64, patch model.PostPatch) (*model.Post, error) {
	var (
		sets []string
		args []any
	)
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *patch.Content)
	}
	if patch.Published != nil {
		sets = append(sets, "published = ?")
		args = append(args, *patch.Published)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, r.now(), id)

	p, err := scanPost(r.db.QueryRowContext(ctx,
		`UPDATE posts SET `+strings.Join(sets, ", ")+`
		 WHERE id = ?
		 RETURNING `+postColumns,
		args...,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlrepo: updating post %d: %w", id, err)
	}
	return p, nil
}

func (r *PostRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlrepo: deleting post %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlrepo: deleting post %d: %w", id, err)
	}
	return n > 0, nil
}

func (r *PostRepo) Publish(ctx context.Context, id int64) (*model.Post, error) {
	published := true
	return r.Update(ctx, id, model.PostPatch{Published: &published})
}

func (r *PostRepo) Unpublish(ctx context.Context, id int64) (*model.Post, error) {
	published := false
	return r.Update(ctx, id, model.PostPatch{Published: &published})
}

// ListWithAuthors returns posts newest first, each joined to its author.
// A post whose author is gone is still listed, with a nil Author.
func (r *PostRepo) ListWithAuthors(ctx context.Context, opts repository.ListOptions) (*model.Page[model.PostWithAuthor], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return nil, fmt.Errorf("sqlrepo: counting posts: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.title, p.content, p.published, p.created_at, p.updated_at,
		        u.id, u.name, u.email
		 FROM posts p
		 LEFT JOIN users u ON u.id = p.author_id
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlrepo: listing posts with authors: %w", err)
	}
	defer rows.Close()

	page := &model.Page[model.PostWithAuthor]{Items: []model.PostWithAuthor{}, Total: total}
	for rows.Next() {
		var (
			p           model.PostWithAuthor
			authorID    sql.NullInt64
			authorName  sql.NullString
			authorEmail sql.NullString
		)
		err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Content,
			&p.Published,
			timestamp{&p.CreatedAt},
			timestamp{&p.UpdatedAt},
			&authorID,
			&authorName,
			&authorEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlrepo: scanning post row: %w", err)
		}
		if authorID.Valid {
			p.Author = &model.Author{
				ID:    authorID.Int64,
				Name:  authorName.String,
				Email: authorEmail.String,
			}
		}
		page.Items = append(page.Items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlrepo: iterating post rows: %w", err)
	}
	return page, nil
}

func (r *PostRepo) ListByAuthor(ctx context.Context, authorID int64, opts repository.ListOptions) (*model.Page[model.Post], error) {
	return r.listWhere(ctx, "author_id = ?", authorID, opts)
}

func (r *PostRepo) ListPublished(ctx context.Context, opts repository.ListOptions) (*model.Page[model.Post], error) {
	return r.listWhere(ctx, "published = ?", true, opts)
}

// listWhere pages through posts matching a single-argument filter. Total
// is counted with the same filter.
func (r *PostRepo) listWhere(ctx context.Context, where string, arg any, opts repository.ListOptions) (*model.Page[model.Post], error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE `+where, arg,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("sqlrepo: counting posts where %s: %w", where, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE `+where+`
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		arg, opts.Limit, opts.Offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlrepo: listing posts where %s: %w", where, err)
	}
	defer rows.Close()

	page := &model.Page[model.Post]{Items: []model.Post{}, Total: total}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlrepo: scanning post row: %w", err)
		}
		page.Items = append(page.Items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlrepo: iterating post rows: %w", err)
	}
	return page, nil
}
