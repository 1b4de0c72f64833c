package httpCors

import (
	"net/http"

	"github.com/rs/cors"
)

// CorsSettings - CORS для фронтенда. origins берутся из CORS_ALLOWED_ORIGINS.
func CorsSettings(origins []string, debug bool) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"Authorization", "X-Request-ID"},
		Debug:            debug,
	})
}
