package middleware

import "net/http"

// Middleware wraps a handler with one cross-cutting concern (rate limiting,
// auth, logging). Route groups in www/router.go compose them per role.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// MiddlewareChain composes middlewares into a single Middleware. The last
// middleware listed becomes the outermost wrapper and runs first on each
// request.
func MiddlewareChain(middlewares ...Middleware) Middleware {
	return func(handler http.HandlerFunc) http.HandlerFunc {
		for _, mw := range middlewares {
			handler = mw(handler)
		}
		return handler
	}
}
