package server

import (
	"net/http"
	"slices"
	"strings"
)

// BasicRouter is the API's [Router], backed by an [http.ServeMux].
//
// A path may be registered for several methods; requests with any other method get a JSON 405
// with an Allow header. Unmatched paths get a JSON 404 that still runs through the middleware,
// so CORS and request logging cover them too.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	methods     map[string]map[string]http.Handler
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	r := &BasicRouter{
		mux:         http.NewServeMux(),
		middlewares: []Middleware{},
		methods:     make(map[string]map[string]http.Handler),
	}
	r.mux.Handle("/", r.lazy(http.HandlerFunc(notFound)))
	return r
}

// Use adds [Middleware] to the router's stack, applied in the order it's added.
//
// Middleware is resolved per request, so it covers routes registered before the call as well.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers handler for method on path. OPTIONS requests reach the middleware regardless
// of method so CORS preflights can be answered there.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	method = strings.ToUpper(method)
	if byMethod, ok := r.methods[path]; ok {
		byMethod[method] = handler
		return
	}

	byMethod := map[string]http.Handler{method: handler}
	r.methods[path] = byMethod
	r.mux.Handle(path, r.lazy(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h, ok := byMethod[strings.ToUpper(req.Method)]
		if !ok {
			w.Header().Set("Allow", allowed(byMethod))
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.ServeHTTP(w, req)
	})))
}

// Handler registers a [Handler] for every pattern in [Handler.Routes].
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.lazy(handler)
	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
	}
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware, the first added outermost.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}

func (r *BasicRouter) lazy(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.Apply(handler).ServeHTTP(w, req)
	})
}

func allowed(byMethod map[string]http.Handler) string {
	methods := make([]string, 0, len(byMethod)+1)
	for m := range byMethod {
		methods = append(methods, m)
	}
	if _, ok := byMethod[http.MethodOptions]; !ok {
		methods = append(methods, http.MethodOptions)
	}
	slices.Sort(methods)
	return strings.Join(methods, ", ")
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}
