package api

import (
	"context"
	"net/http"
	"regexp"
	"strings"
)

// Route represents a single route
type Route struct {
	Method  string
	Pattern *regexp.Regexp
	Handler http.HandlerFunc
	Params  []string
}

// Router handles HTTP routing using standard library
type Router struct {
	routes      []Route
	middlewares []func(http.Handler) http.Handler
	notFound    http.Handler
}

type paramsKey struct{}

// paramRegex matches {param} placeholders in route patterns
var paramRegex = regexp.MustCompile(`\{([^}]+)\}`)

// NewRouter creates a new router
func NewRouter() *Router {
	return &Router{
		routes:   make([]Route, 0),
		notFound: http.NotFoundHandler(),
	}
}

// AddRoute adds a route to the router
func (r *Router) AddRoute(method, pattern string, handler http.HandlerFunc) {
	regex, params := patternToRegex(pattern)
	route := Route{
		Method:  method,
		Pattern: regexp.MustCompile("^" + regex + "$"),
		Handler: handler,
		Params:  params,
	}
	r.routes = append(r.routes, route)
}

// Use registers middleware that runs after route parameters are extracted,
// so it can inspect them with GetParam
func (r *Router) Use(middlewares ...func(http.Handler) http.Handler) {
	r.middlewares = append(r.middlewares, middlewares...)
}

// NotFound sets the handler used when no route matches
func (r *Router) NotFound(handler http.Handler) {
	r.notFound = handler
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	pathMatched := false
	for _, route := range r.routes {
		matches := route.Pattern.FindStringSubmatch(req.URL.Path)
		if matches == nil {
			continue
		}
		if route.Method != req.Method && !(route.Method == http.MethodGet && req.Method == http.MethodHead) {
			pathMatched = true
			continue
		}

		if len(matches) > 1 {
			req = addParamsToRequest(req, route.Params, matches[1:])
		}

		var handler http.Handler = route.Handler
		for i := len(r.middlewares) - 1; i >= 0; i-- {
			handler = r.middlewares[i](handler)
		}
		handler.ServeHTTP(w, req)
		return
	}

	if pathMatched {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.notFound.ServeHTTP(w, req)
}

// patternToRegex converts a pattern like "/new_file/{room}/{name}/{offset}" to regex
func patternToRegex(pattern string) (string, []string) {
	var params []string
	var regex strings.Builder

	last := 0
	for _, loc := range paramRegex.FindAllStringSubmatchIndex(pattern, -1) {
		regex.WriteString(regexp.QuoteMeta(pattern[last:loc[0]]))
		params = append(params, pattern[loc[2]:loc[3]])
		// Every parameter is a single non-empty path segment; names are
		// validated by middleware so bad input gets a proper error body
		regex.WriteString(`([^/]+)`)
		last = loc[1]
	}
	regex.WriteString(regexp.QuoteMeta(pattern[last:]))

	return regex.String(), params
}

// addParamsToRequest adds route parameters to the request context
func addParamsToRequest(req *http.Request, paramNames []string, paramValues []string) *http.Request {
	if len(paramNames) != len(paramValues) {
		return req
	}

	params := make(map[string]string, len(paramNames))
	for i, name := range paramNames {
		params[name] = paramValues[i]
	}

	return req.WithContext(context.WithValue(req.Context(), paramsKey{}, params))
}

// GetParam extracts a route parameter from the request
func GetParam(req *http.Request, name string) string {
	params, _ := req.Context().Value(paramsKey{}).(map[string]string)
	return params[name]
}

// Convenience methods for adding routes
func (r *Router) GET(pattern string, handler http.HandlerFunc) {
	r.AddRoute(http.MethodGet, pattern, handler)
}

func (r *Router) POST(pattern string, handler http.HandlerFunc) {
	r.AddRoute(http.MethodPost, pattern, handler)
}

func (r *Router) PUT(pattern string, handler http.HandlerFunc) {
	r.AddRoute(http.MethodPut, pattern, handler)
}

func (r *Router) DELETE(pattern string, handler http.HandlerFunc) {
	r.AddRoute(http.MethodDelete, pattern, handler)
}
