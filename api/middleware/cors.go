package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local dashboard
	"http://localhost:5173", // vite dev server
}

// CORS returns middleware that applies the admin dashboard origin policy.
// Extra origins are appended to the local defaults.
func CORS(extraOrigins ...string) func(http.Handler) http.Handler {
	origins := append(append([]string{}, defaultCORSOrigins...), extraOrigins...)
	return cors.New(cors.Options{
		AllowedOrigins:       origins,
		AllowedMethods:       []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:       []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature", "X-Requested-With"},
		ExposedHeaders:       []string{requestIDHeader},
		AllowCredentials:     true,
		MaxAge:               300,
		OptionsSuccessStatus: http.StatusNoContent,
	}).Handler
}
