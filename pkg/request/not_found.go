package request

import (
	"log/slog"
	"net/http"
)

// notFound is the body returned for unknown routes.
type notFound struct {
	Message            string   `json:"message"`
	AvailableEndpoints []string `json:"available_endpoints,omitempty"`
}

// NotFoundHandler returns a handler that returns a 404 response listing the available endpoints.
func NotFoundHandler(l *slog.Logger, endpoints ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(l, w, http.StatusNotFound, &notFound{
			Message:            "Not found",
			AvailableEndpoints: endpoints,
		})
	}
}

// MethodNotAllowedHandler returns a handler that returns a 405 response.
func MethodNotAllowedHandler(l *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(l, w, http.StatusMethodNotAllowed, NewMessage("Method not allowed"))
	}
}
