package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"tracker/internal/core"
	"tracker/internal/export"
	"tracker/internal/log"
	"tracker/internal/query"
	"tracker/internal/services"
	"tracker/internal/store"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ResponseBuilder provides a fluent API for building responses.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       []byte
}

func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{statusCode: http.StatusOK, headers: make(map[string]string)}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Attachment sets the body as a file download.
func (b *ResponseBuilder) Attachment(name, contentType string, content []byte) *ResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.headers["Content-Disposition"] = fmt.Sprintf("attachment; filename=%q", name)
	b.body = content
	return b
}

// JSON encodes v as the body. Encoding failures turn the response into a 500.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		b.statusCode = http.StatusInternalServerError
		data = []byte(`{"error":"encode response"}`)
	}
	b.headers["Content-Type"] = "application/json"
	b.body = append(data, '\n')
	return b
}

func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewResponse().Status(status).JSON(v).Write(w)
}

func writeError(w http.ResponseWriter, status int, msg, field string) {
	writeJSON(w, status, errorBody{Error: msg, Field: field})
}

// errBadRequest marks malformed input: bad JSON, ids or query values.
var errBadRequest = errors.New("bad request")

// fail maps err onto a status code and writes it. Unexpected errors are
// logged and reported without detail.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr  *core.ValidationError
		vErrs validator.ValidationErrors
	)
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusUnprocessableEntity, verr.Err.Error(), verr.Field)
	case errors.As(err, &vErrs) && len(vErrs) > 0:
		fe := vErrs[0]
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("failed %s validation", fe.Tag()), fe.Field())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, export.ErrNothingSelected),
		errors.Is(err, query.ErrUnknownSortKey),
		errors.Is(err, services.ErrUnknownFormat),
		errors.Is(err, services.ErrSheetsDisabled),
		errors.Is(err, errBadRequest):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	default:
		events := log.NewStructuredLogger(log.FromContext(r.Context()))
		events.LogError(r.Context(), "Request failed", err, log.ComponentHTTP, r.Method+" "+r.Pattern, nil)
		writeError(w, http.StatusInternalServerError, "internal error", "")
	}
}
