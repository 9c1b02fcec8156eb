package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/sophialabs/apiaudit/internal/domain/traffic"
	"github.com/sophialabs/apiaudit/internal/infrastructure/ports"
	"github.com/sophialabs/apiaudit/internal/infrastructure/services"
)

const maxBodySize = 10 << 20 // 10 MB capture cap

// Recorder appends one traffic record per completed exchange to the audit
// log. The record is appended only after the wrapped handler returns, so the
// status and body are final and multiple response writes still produce a
// single record. An exchange that never finalizes (handler panic) leaves no
// record; that gap is accepted.
//
// The recorder observes; it never reshapes the exchange. Request bodies
// stream through to the handler untouched and only the captured copy is
// capped, so a proxied upload larger than the cap reaches the target intact.
type Recorder struct {
	log    *traffic.Log
	logger ports.Logger
}

// NewRecorder creates a recorder appending to log.
func NewRecorder(log *traffic.Log, logger ports.Logger) *Recorder {
	return &Recorder{log: log, logger: logger}
}

// Log returns the log this recorder appends to.
func (rec *Recorder) Log() *traffic.Log {
	return rec.log
}

// Middleware wraps next so every exchange it completes is recorded.
func (rec *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var capture *bodyCapture
		if r.Body != nil && r.Body != http.NoBody {
			capture = &bodyCapture{rc: r.Body}
			r.Body = capture
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		var respBuf bytes.Buffer
		ww.Tee(&respBuf)

		method := r.Method
		url := r.URL.RequestURI()

		next.ServeHTTP(ww, r)

		// A handler that ignored the body still gets it recorded.
		if capture != nil {
			_, _ = io.Copy(io.Discard, capture)
		}

		// A handler that returns without writing anything still sends 200.
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		var requestPayload any
		if capture != nil && capture.buf.Len() > 0 {
			requestPayload = services.CapturePayload(r.Header.Get("Content-Type"), capture.buf.Bytes())
		}

		record := traffic.Record{
			Method:   method,
			URL:      url,
			Status:   status,
			Request:  requestPayload,
			Response: services.CapturePayload(ww.Header().Get("Content-Type"), respBuf.Bytes()),
		}
		rec.log.Append(record)
		rec.logger.Debug("recorded exchange", "method", method, "url", url, "status", record.Status)
	})
}

// bodyCapture hands the request body through unchanged while keeping a copy
// of the first maxBodySize bytes for the record.
type bodyCapture struct {
	rc  io.ReadCloser
	buf bytes.Buffer
}

func (c *bodyCapture) Read(p []byte) (int, error) {
	n, err := c.rc.Read(p)
	if n > 0 && c.buf.Len() < maxBodySize {
		keep := n
		if room := maxBodySize - c.buf.Len(); keep > room {
			keep = room
		}
		c.buf.Write(p[:keep])
	}
	return n, err
}

func (c *bodyCapture) Close() error { return c.rc.Close() }
