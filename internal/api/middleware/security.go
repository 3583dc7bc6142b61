package middleware

import (
	"net/http"
	"os"

	"github.com/campusnav/campusnav/internal/api/models"
)

// securityHeaders is the fixed header set for a JSON API that serves no
// browser content: responses may not be embedded, scripted, or cached.
var securityHeaders = map[string]string{
	"X-Content-Type-Options":    "nosniff",
	"X-Frame-Options":           "DENY",
	"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
	"Content-Security-Policy":   "default-src 'none'; frame-ancestors 'none'",
	"Referrer-Policy":           "strict-origin-when-cross-origin",
	"Permissions-Policy":        "geolocation=(), camera=(), microphone=()",
	"Cache-Control":             "no-store",
}

// SecurityHeaders stamps the standard security header set on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range securityHeaders {
			w.Header().Set(k, v)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTLS rejects plain-HTTP requests when REQUIRE_TLS=true. The check
// reads X-Forwarded-Proto, which the load balancer sets after terminating
// TLS; requests without the header (local development) pass through.
func RequireTLS(next http.Handler) http.Handler {
	requireTLS := os.Getenv("REQUIRE_TLS") == "true"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requireTLS {
			if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" && proto != "https" {
				requestID := GetRequestID(r.Context())
				problem := models.NewProblem(
					"https://api.campusnav.app/problems/tls-required",
					"TLS required",
					http.StatusForbidden,
					requestID,
				)
				problem.Detail = "This endpoint requires HTTPS"
				problem.Instance = r.URL.Path
				problem.Write(w)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
