package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/avvvet/terminal-services/internal/terminalsvc/metrics"
)

const maxBodyBytes = 1 << 20

var (
	ErrNoRoute          = errors.New("no route")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// verbs the dispatch table can hold a handler for
var verbs = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

type Result struct {
	Status int
	Body   []byte
}

// HandlerFunc receives the full request path, not the base path it was
// routed on.
type HandlerFunc func(ctx context.Context, path, verb string, body []byte) Result

type Route struct {
	BasePath string
	Handlers map[string]HandlerFunc
}

// Dispatcher routes requests through an ordered table of base paths. The
// first route whose base path is a prefix of the request's base path wins.
type Dispatcher struct {
	routes  []Route
	metrics *metrics.Metrics
}

func NewDispatcher(m *metrics.Metrics, routes ...Route) *Dispatcher {
	return &Dispatcher{routes: routes, metrics: m}
}

// RouteBase drops the last path segment, unless the only slash is the
// leading one: "/terminals/42" and "/terminals" both give "/terminals".
func RouteBase(path string) string {
	if i := strings.LastIndexByte(path, '/'); i > 0 {
		return path[:i]
	}
	return path
}

func (d *Dispatcher) Dispatch(ctx context.Context, path, verb string, body []byte) (Result, error) {
	base := RouteBase(path)

	for _, route := range d.routes {
		if !strings.HasPrefix(base, route.BasePath) {
			continue
		}
		if !verbs[verb] {
			return Result{}, ErrMethodNotAllowed
		}
		fn := route.Handlers[verb]
		if fn == nil {
			return Result{}, ErrMethodNotAllowed
		}
		return fn(ctx, path, verb, body), nil
	}
	return Result{}, ErrNoRoute
}

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		d.write(w, r, Result{Status: http.StatusBadRequest, Body: unspecifiedError("request body could not be read")})
		return
	}

	res, err := d.Dispatch(r.Context(), r.URL.Path, r.Method, body)
	switch {
	case errors.Is(err, ErrNoRoute):
		log.Warnf("no route for %s %s", r.Method, r.URL.Path)
		res = Result{Status: http.StatusBadRequest, Body: unspecifiedError("no resource is served at " + r.URL.Path)}
	case errors.Is(err, ErrMethodNotAllowed):
		log.Warnf("method %s not allowed for %s", r.Method, r.URL.Path)
		res = Result{Status: http.StatusMethodNotAllowed, Body: methodNotAllowedError(r.Method, r.URL.Path)}
	}
	d.write(w, r, res)
}

func (d *Dispatcher) write(w http.ResponseWriter, r *http.Request, res Result) {
	if d.metrics != nil {
		d.metrics.ObserveDispatch(r.Method, strconv.Itoa(res.Status))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Status)
	if _, err := w.Write(res.Body); err != nil {
		log.Errorf("Error writing response for %s %s: %s", r.Method, r.URL.Path, err)
	}
}
