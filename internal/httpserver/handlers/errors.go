package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/wanderlust/internal/domain"
	"github.com/MrSnakeDoc/wanderlust/internal/httpserver/deps"
	"github.com/MrSnakeDoc/wanderlust/internal/logger"
)

// policy decides how a route reports store failures.
type policy int

const (
	// readPolicy: not found is 404, bad input 400, anything else 500.
	readPolicy policy = iota
	// writePolicy: every failure of create/update is reported as 400.
	writePolicy
)

const notFoundMessage = "Listing not found"

// statusFor maps an error kind to the HTTP status of a route policy.
func statusFor(kind domain.Kind, p policy) int {
	if p == writePolicy {
		return http.StatusBadRequest
	}
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeStoreError logs err once and writes a plain text response. message is
// the route's generic failure text ("Error fetching listing").
func writeStoreError(w http.ResponseWriter, r *http.Request, d deps.Deps, err error, p policy, message string) {
	kind := domain.KindOf(err)
	status := statusFor(kind, p)

	fields := []logger.Field{
		logger.String("kind", kind.String()),
		logger.Int("status", status),
		logger.String("request_id", middleware.GetReqID(r.Context())),
		logger.Error(err),
	}
	var de *domain.Error
	if errors.As(err, &de) {
		fields = append(fields, logger.String("op", de.Op), logger.String("id", de.ID))
	}

	if status >= http.StatusInternalServerError {
		d.Logger.Error("listing request failed", fields...)
	} else {
		d.Logger.Warn("listing request rejected", fields...)
	}

	body := message
	switch {
	case kind == domain.KindNotFound && p == readPolicy:
		body = notFoundMessage
	case kind == domain.KindValidation && de != nil && len(de.Fields) > 0:
		reasons := make([]string, 0, len(de.Fields))
		for _, f := range de.Fields {
			reasons = append(reasons, f.String())
		}
		body = message + ": " + strings.Join(reasons, ", ")
	}

	writeText(w, d, status, body)
}

func writeText(w http.ResponseWriter, d deps.Deps, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body + "\n")); err != nil {
		d.Logger.Debug("failed to write response", logger.Error(err))
	}
}
