package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Jacobbrewer1/intercord/pkg/logging"
)

// ErrInternalServer is returned to the client when something unexpected happened.
var ErrInternalServer = errors.New("internal server error")

// maxBodyBytes bounds the size of JSON request bodies.
const maxBodyBytes = 1 << 20

// RespondJSON writes v as JSON with the given status code.
func RespondJSON(l *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		l.Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
	}
}

// DecodeJSON decodes the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("error decoding request body: %w", err)
	}
	return nil
}
