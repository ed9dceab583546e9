package request

import "net/http"

// ClientWriter wraps a http.ResponseWriter and records the status code written to the client.
type ClientWriter struct {
	http.ResponseWriter

	// statusCode is the status code written, it defaults to 200 as that is what net/http sends when
	// WriteHeader is never called.
	statusCode int

	// wroteHeader is whether the header has already been sent.
	wroteHeader bool
}

// NewClientWriter creates a new ClientWriter.
func NewClientWriter(w http.ResponseWriter) *ClientWriter {
	return &ClientWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader records the status code and forwards it. Repeated calls are ignored.
func (c *ClientWriter) WriteHeader(code int) {
	if c.wroteHeader {
		return
	}
	c.statusCode = code
	c.wroteHeader = true
	c.ResponseWriter.WriteHeader(code)
}

// Write marks the header as written before forwarding.
func (c *ClientWriter) Write(b []byte) (int, error) {
	c.wroteHeader = true
	return c.ResponseWriter.Write(b)
}

// StatusCode returns the status code sent to the client.
func (c *ClientWriter) StatusCode() int {
	return c.statusCode
}

// Flush implements http.Flusher when the wrapped writer supports it.
func (c *ClientWriter) Flush() {
	if f, ok := c.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
