package server

import (
	_ "embed"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// openAPIDocument describes every route registered in setupRoutes.
//
//go:embed openapi.json
var openAPIDocument []byte

// handleOpenAPI serves GET /swagger/json
func handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(openAPIDocument)
}

// swaggerUI serves the Swagger UI assets under /swagger/ and points the UI
// at /swagger/json.
var swaggerUI = httpSwagger.Handler(httpSwagger.URL("/swagger/json"))
