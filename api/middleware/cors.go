package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local dev
	"https://tdb-store.vercel.app",
}

// CORS returns middleware that applies the storefront's allowed origin
// policy. The configured client URL is always allowed.
func CORS(clientURL string) func(http.Handler) http.Handler {
	origins := defaultCORSOrigins
	if u := strings.TrimRight(strings.TrimSpace(clientURL), "/"); u != "" && !contains(origins, u) {
		origins = append(append([]string{}, origins...), u)
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
