package middlewares

import "net/http"

// CrossOriginResourcePolicy sets the Cross-Origin-Resource-Policy header,
// e.g. "cross-origin" so browsers on other origins may load responses.
func CrossOriginResourcePolicy(policy string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cross-Origin-Resource-Policy", policy)
			next.ServeHTTP(w, r)
		})
	}
}
