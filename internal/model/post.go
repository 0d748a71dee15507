package model

import "time"

// Post is an article written by a user.
//
// AuthorID is nullable: deleting a user sets the column to NULL on that
// user's posts instead of deleting them.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  *int64    `json:"authorId"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewPost is the input to PostRepository.Create. Published defaults to
// false when nil.
type NewPost struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	AuthorID  int64  `json:"authorId"`
	Published *bool  `json:"published,omitempty"`
}

// PostPatch is a partial update of a post. There is no AuthorID field:
// authorship cannot change through the general update path.
type PostPatch struct {
	Title     *string `json:"title,omitempty"`
	Content   *string `json:"content,omitempty"`
	Published *bool   `json:"published,omitempty"`
}

// Author is the slice of a User embedded in PostWithAuthor.
type Author struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PostWithAuthor is a post joined to its author. Author is nil when the
// post has no author row (the user was deleted).
type PostWithAuthor struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Author    *Author   `json:"author"`
}
