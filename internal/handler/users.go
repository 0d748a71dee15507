package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/service"
)

// UserHandler serves /api/v1/users.
type UserHandler struct {
	users *service.UserService
	posts *service.PostService
	errs  errorWriter
}

func NewUserHandler(users *service.UserService, posts *service.PostService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users: users,
		posts: posts,
		errs:  errorWriter{resource: "User", logger: logger},
	}
}

// Routes mounts the user endpoints on r, relative to the /users prefix.
func (h *UserHandler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.HandleGet)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	r.Patch("/{id}/toggle-status", h.HandleToggleStatus)
	r.Get("/{id}/posts", h.HandleListPosts)
}

// HandleList serves GET /users?page=&limit=
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	res, err := h.users.List(r.Context(), page, limit)
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

// HandleGet serves GET /users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.errs.idParam(w, r)
	if !ok {
		return
	}
	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, user, "")
}

// HandleCreate serves POST /users
// REQUEST BODY: {"name": "Ada", "email": "ada@example.com", "bio": "...", "isActive": true}
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.NewUser
	if !decodeJSON(w, r, &in) {
		return
	}
	user, err := h.users.Create(r.Context(), in)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, user, "User created successfully")
}

// updateUserRequest is the PUT /users/{id} body. Bio stays raw so that an
// absent field and an explicit null can be told apart.
type updateUserRequest struct {
	Name     *string         `json:"name"`
	Email    *string         `json:"email"`
	Bio      json.RawMessage `json:"bio"`
	IsActive *bool           `json:"isActive"`
}

func (req updateUserRequest) patch() (model.UserPatch, error) {
	patch := model.UserPatch{Name: req.Name, Email: req.Email, IsActive: req.IsActive}
	switch {
	case req.Bio == nil:
	case string(req.Bio) == "null":
		patch.ClearBio = true
	default:
		var bio string
		if err := json.Unmarshal(req.Bio, &bio); err != nil {
			return patch, apperror.ValidationFailed("bio", "bio must be a string or null")
		}
		patch.Bio = &bio
	}
	return patch, nil
}

// HandleUpdate serves PUT /users/{id}. Every field is optional; "bio": null
// clears the bio.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.errs.idParam(w, r)
	if !ok {
		return
	}
	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	patch, err := req.patch()
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	user, err := h.users.Update(r.Context(), id, patch)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, user, "User updated successfully")
}

// HandleDelete serves DELETE /users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.errs.idParam(w, r)
	if !ok {
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil, "User deleted successfully")
}

// HandleToggleStatus serves PATCH /users/{id}/toggle-status
func (h *UserHandler) HandleToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.errs.idParam(w, r)
	if !ok {
		return
	}
	user, err := h.users.ToggleStatus(r.Context(), id)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	message := "User deactivated successfully"
	if user.IsActive {
		message = "User activated successfully"
	}
	writeOK(w, http.StatusOK, user, message)
}

// HandleListPosts serves GET /users/{id}/posts?page=&limit=
// An unknown user yields an empty list, not a 404.
func (h *UserHandler) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.errs.idParam(w, r)
	if !ok {
		return
	}
	page, limit := pageParams(r)
	res, err := h.posts.ListByAuthor(r.Context(), id, page, limit)
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
