// internal/middleware/logging.go

package middleware

import (
	"bufio"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// statusRecorder captures the status code written by the wrapped handler.
// It forwards Hijack so websocket upgrades keep working.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	r.status = http.StatusSwitchingProtocols
	return http.NewResponseController(r.ResponseWriter).Hijack()
}

// LogMiddleware is an HTTP middleware that logs each request to a peer
// endpoint once it finishes: method, path, status, duration and remote.
// An upgraded websocket is logged when the session ends.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			entry := logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			})
			if rec.status >= http.StatusBadRequest {
				entry.Warn("Peer request rejected")
				return
			}
			entry.Debug("Peer request")
		})
	}
}

// LogPeerConnect logs a newly accepted or dialed peer connection.
func LogPeerConnect(logger *logrus.Logger, local, remote string) {
	logger.WithFields(logrus.Fields{
		"local":  local,
		"remote": remote,
	}).Info("Peer connected")
}

// LogPeerDisconnect logs the end of a peer connection and why it ended.
func LogPeerDisconnect(logger *logrus.Logger, local, remote string, err error) {
	fields := logrus.Fields{
		"local":  local,
		"remote": remote,
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("Peer disconnected")
}
