package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/service"
)

// PostHandler serves /api/v1/posts.
type PostHandler struct {
	posts *service.PostService
	errs  errorWriter
}

func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		posts: posts,
		errs:  errorWriter{resource: "Post", logger: logger},
	}
}

// Routes mounts the post endpoints on r, relative to the /posts prefix.
func (h *PostHandler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/published", h.HandleListPublished)
	r.Get("/{id}", h.HandleGet)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	r.Patch("/{id}/publish", h.HandlePublish)
	r.Patch("/{id}/unpublish", h.HandleUnpublish)
}

// HandleList serves GET /posts?page=&limit=. Each post carries its author.
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	res, err := h.posts.ListWithAuthors(r.Context(), page, limit)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{
		Success:    true,
		Data:       res.Items,
		Pagination: paginationOf(res),
	})
}

// HandleListPublished serves GET /posts/published?page=&limit=
func (h *PostHandler) HandleListPublished(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	res, err := h.posts.ListPublished(r.Context(), page, limit)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{
		Success:    true,
		Data:       res.Items,
		Pagination: paginationOf(res),
	})
}

// HandleGet serves GET /posts/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.errs.idParam(w, r)
	if !ok {
		return
	}
	post, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, post, "")
}

// HandleCreate serves POST /posts
// REQUEST BODY: {"title": "Hi", "content": "...", "authorId": 1, "published": false}
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.NewPost
	if !decodeJSON(w, r, &in) {
		return
	}
	post, err := h.posts.Create(r.Context(), in)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, post, "Post created successfully")
}

// HandleUpdate serves PUT /posts/{id}. authorId cannot be changed here;
// sending it is rejected as an unknown field.
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.errs.idParam(w, r)
	if !ok {
		return
	}
	var patch model.PostPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	post, err := h.posts.Update(r.Context(), id, patch)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, post, "Post updated successfully")
}

// HandleDelete serves DELETE /posts/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.errs.idParam(w, r)
	if !ok {
		return
	}
	if err := h.posts.Delete(r.Context(), id); err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil, "Post deleted successfully")
}

// HandlePublish serves PATCH /posts/{id}/publish
func (h *PostHandler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, h.posts.Publish, "Post published successfully")
}

// HandleUnpublish serves PATCH /posts/{id}/unpublish
func (h *PostHandler) HandleUnpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, h.posts.Unpublish, "Post unpublished successfully")
}

func (h *PostHandler) setPublished(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, int64) (*model.Post, error), message string) {
	id, ok := h.errs.idParam(w, r)
	if !ok {
		return
	}
	post, err := fn(r.Context(), id)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, post, message)
}
