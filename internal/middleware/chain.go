package middleware

import "net/http"

// Chain applies middleware in order (first to last), so the first one is
// the outermost.
//
// Example:
//
//	handler := Chain(mux,
//	    Recover,          // Executes first
//	    RequestLogging,   // Executes second
//	    CORS(origins),    // Executes third
//	)
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Wrap is Chain for a single route handler.
func Wrap(h http.HandlerFunc, middlewares ...func(http.Handler) http.Handler) http.Handler {
	return Chain(h, middlewares...)
}
