package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// BasicRouter implements the [Router] interface on top of [mux.Router].
//
// Middleware wraps the whole router, so it also sees requests that match no route.
type BasicRouter struct {
	mux         *mux.Router
	middlewares []Middleware
	handler     http.Handler
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	r := &BasicRouter{
		mux:         mux.NewRouter(),
		middlewares: []Middleware{},
	}
	r.mux.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondWithError(w, http.StatusNotFound, "not found")
	})
	r.mux.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.handler = r.mux
	return r
}

// Use adds [Middleware] to the [Router] instance's middleware stack, applied in the order it's added.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
	r.handler = r.Apply(r.mux)
}

// Handle registers a handler for the specified HTTP method and path.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.mux.Handle(path, handler).Methods(method)
}

// Handler registers every route of a custom Handler implementation.
func (r *BasicRouter) Handler(handler Handler) {
	handler.RegisterRoutes(r.mux)
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}
