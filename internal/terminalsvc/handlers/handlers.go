package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/avvvet/terminal-services/internal/terminalsvc/models"
	"github.com/avvvet/terminal-services/internal/terminalsvc/service"
)

const (
	TerminalsPath = "/terminals"

	errorURI = "/docs/errors"
)

type Handler struct {
	terminalService *service.TerminalService
}

func NewHandler(terminalService *service.TerminalService) *Handler {
	return &Handler{terminalService: terminalService}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorURI         string `json:"error_uri,omitempty"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "terminal service is running",
		Code:    http.StatusOK,
		Data:    map[string]int{"terminals": h.terminalService.Count()},
	})
}

// Routes is the dispatch table of the terminal service. Only reads are
// served; other verbs on /terminals report method not allowed.
func (h *Handler) Routes() []Route {
	return []Route{
		{
			BasePath: TerminalsPath,
			Handlers: map[string]HandlerFunc{
				http.MethodGet: h.GetTerminals,
			},
		},
	}
}

// GetTerminals serves GET /terminals and GET /terminals/{id}.
func (h *Handler) GetTerminals(_ context.Context, path, verb string, _ []byte) Result {
	switch {
	case path == TerminalsPath:
		data, err := h.terminalService.ListTerminals()
		if err != nil {
			log.Errorf("Error [TerminalService.ListTerminals] %s", err)
			return Result{Status: http.StatusInternalServerError, Body: unspecifiedError("terminals could not be encoded")}
		}
		return Result{Status: http.StatusOK, Body: data}

	case strings.HasPrefix(path, TerminalsPath+"/"):
		id := parseID(strings.TrimPrefix(path, TerminalsPath+"/"))
		log.Debugf("%s URL=%s resource=%d", verb, path, id)

		data, err := h.terminalService.GetTerminal(id)
		if errors.Is(err, models.ErrNotFound) {
			return Result{Status: http.StatusNotFound, Body: notFoundError(fmt.Sprintf("terminal %d does not exist", id))}
		}
		if err != nil {
			log.Errorf("Error [TerminalService.GetTerminal] %s", err)
			return Result{Status: http.StatusInternalServerError, Body: unspecifiedError("terminal could not be encoded")}
		}
		return Result{Status: http.StatusOK, Body: data}

	default:
		return Result{Status: http.StatusBadRequest, Body: unspecifiedError("no resource is served at " + path)}
	}
}

// parseID reads the leading decimal digits of s. Anything that does not start
// with a digit, or does not fit a terminal id, gives 0, which never matches.
func parseID(s string) models.TerminalID {
	s = strings.TrimLeft(s, " \t")
	s = strings.TrimPrefix(s, "+")

	var n uint64
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + uint64(s[i]-'0')
		if n > math.MaxUint32 {
			return 0
		}
	}
	return models.TerminalID(n)
}

func notFoundError(description string) []byte {
	return errorBody(ErrorResponse{Error: "not found", ErrorDescription: description})
}

func unspecifiedError(description string) []byte {
	return errorBody(ErrorResponse{
		Error:            "unspecified error",
		ErrorDescription: description,
		ErrorURI:         errorURI + "#unspecified-error",
	})
}

func methodNotAllowedError(method, path string) []byte {
	return errorBody(ErrorResponse{
		Error:            "method not allowed",
		ErrorDescription: fmt.Sprintf("%s is not supported on %s", method, path),
		ErrorURI:         errorURI + "#method-not-allowed",
	})
}

func errorBody(e ErrorResponse) []byte {
	b, err := json.Marshal(e)
	if err != nil {
		log.Errorf("Error encoding error body: %s", err)
		return []byte(`{"error":"unspecified error"}`)
	}
	return b
}
