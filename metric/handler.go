package metric

import (
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360/spscring/errors"
)

const indexPage = `<html>
<head><title>spscring</title></head>
<body>
<h1>spscring</h1>
<p><a href="%s">Metrics</a></p>
<p><a href="/health">Health</a></p>
</body>
</html>`

// Server exposes a MetricsRegistry over HTTP.
type Server struct {
	port     int
	path     string
	registry *MetricsRegistry
	health   http.Handler

	mu  sync.Mutex
	srv *http.Server
}

// NewServer returns a server for registry. Port 0 means 9090 and an empty
// path means /metrics. health serves /health; nil answers a plain "OK".
func NewServer(port int, path string, registry *MetricsRegistry, health http.Handler) *Server {
	if port == 0 {
		port = 9090
	}
	if path == "" {
		path = "/metrics"
	}
	return &Server{port: port, path: path, registry: registry, health: health}
}

// Handler returns the routes served by Start.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.path, promhttp.HandlerFor(s.registry.PrometheusRegistry(),
		promhttp.HandlerOpts{EnableOpenMetrics: true}))

	health := s.health
	if health == nil {
		health = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("OK"))
		})
	}
	mux.Handle("/health", health)

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprintf(w, indexPage, s.path)
	})
	return mux
}

// Start listens on the configured port and serves until Stop. A second Start
// while running is an invalid error.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Server", "Start", "start metrics server")
	}
	if s.registry == nil {
		s.mu.Unlock()
		return errors.WrapFatal(stderrors.New("nil registry"), "Server", "Start", "start metrics server")
	}

	ln, err := net.Listen("tcp", ":"+strconv.Itoa(s.port))
	if err != nil {
		s.mu.Unlock()
		return errors.WrapFatal(err, "Server", "Start", fmt.Sprintf("listen on port %d", s.port))
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	s.srv = srv
	s.mu.Unlock()

	if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.WrapFatal(err, "Server", "Start", "serve metrics")
	}
	return nil
}

// Stop closes the listener. The server may be started again afterwards.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv == nil {
		return nil
	}
	err := s.srv.Close()
	s.srv = nil
	if err != nil {
		return errors.WrapTransient(err, "Server", "Stop", "close metrics server")
	}
	return nil
}

// Address returns the URL metrics are served at.
func (s *Server) Address() string {
	return fmt.Sprintf("http://localhost:%d%s", s.port, s.path)
}
