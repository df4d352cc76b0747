package router

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-shader-reflect/pkg/utils"
)

type HandlerFunc func(http.ResponseWriter, *http.Request)

type route struct {
	method  string
	pattern string
	handler HandlerFunc
}

// Router dispatches requests to routes registered with an optional "*"
// segment wildcard. Routes are tried in registration order, so register
// more specific patterns first.
type Router struct {
	mux    *http.ServeMux
	routes []route
	paths  map[string]bool // track registered paths
}

func New() *Router {
	r := &Router{
		mux:   http.NewServeMux(),
		paths: make(map[string]bool),
	}
	r.mux.HandleFunc("/", r.dispatch)
	return r
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	pathMatched := false
	handled := false
	for _, rt := range r.routes {
		if !matchRoute(req.URL.Path, rt.pattern) {
			continue
		}
		pathMatched = true
		if rt.method == req.Method {
			rt.handler(lrw, req)
			handled = true
			break
		}
	}

	if !handled {
		if pathMatched {
			http.Error(lrw, "Method Not Allowed", http.StatusMethodNotAllowed)
		} else {
			http.Error(lrw, "Not Found", http.StatusNotFound)
		}
	}

	log.Printf("%s %s %s %s (%v)",
		utils.Decorate("["+start.Format("2006-01-02 15:04:05")+"]", utils.ColorCyan, true),
		utils.Decorate(req.Method, methodColor(req.Method), true),
		req.URL.Path,
		utils.Decorate(strconv.Itoa(lrw.statusCode), statusColor(lrw.statusCode), true),
		time.Since(start),
	)
}

// matchRoute checks if a request path matches a route pattern. A "*" segment
// matches any single segment; a trailing "*" matches any remainder.
func matchRoute(requestPath, routePattern string) bool {
	if !strings.Contains(routePattern, "*") {
		return requestPath == routePattern
	}

	requestSegments := strings.Split(strings.Trim(requestPath, "/"), "/")
	routeSegments := strings.Split(strings.Trim(routePattern, "/"), "/")

	last := len(routeSegments) - 1
	if routeSegments[last] == "*" {
		if len(requestSegments) < len(routeSegments) {
			return false
		}
		for i := 0; i < last; i++ {
			if routeSegments[i] != "*" && requestSegments[i] != routeSegments[i] {
				return false
			}
		}
		return true
	}

	if len(requestSegments) != len(routeSegments) {
		return false
	}
	for i, routeSegment := range routeSegments {
		if routeSegment != "*" && requestSegments[i] != routeSegment {
			return false
		}
	}
	return true
}

// --- Register paths ---
func (r *Router) register(method, path string, handler HandlerFunc) {
	r.routes = append(r.routes, route{method: method, pattern: path, handler: handler})
	r.paths[path] = true
}

func (r *Router) GET(path string, handler HandlerFunc)  { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler HandlerFunc) { r.register(http.MethodPost, path, handler) }

// Paths returns the registered route patterns
func (r *Router) Paths() map[string]bool {
	return r.paths
}

// Handler exposes the router as an http.Handler, e.g. for httptest
func (r *Router) Handler() http.Handler {
	return r.mux
}

// --- Start server ---
func (r *Router) Start(addr string) error {
	log.Printf("🚀 Server started on %s", utils.Decorate(addr, utils.ColorGreen, true))
	return http.ListenAndServe(addr, r.mux)
}

// --- Logging response writer to capture status codes ---
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// --- Color helpers ---
func statusColor(code int) string {
	switch {
	case code >= 200 && code < 300:
		return utils.ColorGreen
	case code >= 300 && code < 400:
		return utils.ColorCyan
	case code >= 400 && code < 500:
		return utils.ColorYellow
	default:
		return utils.ColorRed
	}
}

func methodColor(method string) string {
	switch method {
	case http.MethodGet:
		return utils.ColorGreen
	case http.MethodPost:
		return utils.ColorBlue
	default:
		return utils.ColorCyan
	}
}
