package handler

// RESPONSE ENVELOPE:
// Every JSON response has the same shape, success or failure:
//
//	{"success": true, "data": {...}, "message": "User created successfully"}
//	{"success": true, "data": [...], "pagination": {"page":1,"limit":10,"total":25,"totalPages":3}}
//	{"success": false, "error": "User not found"}
//
// Clients branch on "success" and never have to guess which fields exist.

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/xid"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/service"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func paginationOf[T any](p *service.PageResult[T]) *Pagination {
	return &Pagination{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      p.Total,
		TotalPages: p.TotalPages(),
	}
}

// writeJSON sends a JSON response with the given status code. Headers must
// be set before WriteHeader; anything set after is silently dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already sent, all we can do is log
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

func writeOK(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, Envelope{Success: true, Data: data, Message: message})
}

func writeFail(w http.ResponseWriter, status int, errMsg string) {
	writeJSON(w, status, Envelope{Success: false, Error: errMsg})
}

// errorWriter maps domain errors to HTTP for one resource ("User", "Post").
type errorWriter struct {
	resource string
	logger   *slog.Logger
}

// write translates err into a status code and envelope.
//
//	ErrValidation        → 400
//	ErrInvalidReference  → 400
//	ErrNotFound          → 404 "<Resource> not found"
//	ErrUniqueViolation   → 409 "<Field> already exists"
//	anything else        → 500 with a reference id; details only go to the log
func (ew errorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrInvalidReference):
			writeFail(w, http.StatusBadRequest, appErr.Message)
			return
		case errors.Is(err, apperror.ErrNotFound):
			writeFail(w, http.StatusNotFound, ew.resource+" not found")
			return
		case errors.Is(err, apperror.ErrUniqueViolation):
			writeFail(w, http.StatusConflict, capitalize(appErr.Field)+" already exists")
			return
		}
	}

	// Never expose raw errors: they can carry SQL or file paths.
	ref := xid.New().String()
	ew.logger.Error("request failed",
		slog.String("ref", ref),
		slog.String("request_id", chimiddleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, Envelope{
		Success: false,
		Error:   "Internal server error",
		Message: fmt.Sprintf("reference %s", ref),
	})
}

// idParam parses the {id} path parameter as a positive integer.
func (ew errorWriter) idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeFail(w, http.StatusBadRequest, "Invalid "+strings.ToLower(ew.resource)+" ID")
		return 0, false
	}
	return id, true
}

// pageParams reads ?page and ?limit. Missing or unparsable values fall back
// to the defaults; the service clamps the rest.
func pageParams(r *http.Request) (page, limit int) {
	q := r.URL.Query()
	page = service.DefaultPage
	if n, err := strconv.Atoi(q.Get("page")); err == nil {
		page = n
	}
	limit = service.DefaultLimit
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		limit = n
	}
	return page, limit
}

// decodeJSON reads the request body into dst and rejects unknown fields
// and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return false
	}
	if dec.More() {
		writeFail(w, http.StatusBadRequest, "Invalid JSON body: unexpected data after object")
		return false
	}
	return true
}

func capitalize(s string) string {
	if s == "" {
		return "Value"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
