package webapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/goadapp/proxybench"
	"github.com/goadapp/proxybench/api"
	"github.com/goadapp/proxybench/bench/types"
	"github.com/goadapp/proxybench/result"
	"github.com/gorilla/websocket"
	log "github.com/inconshreveable/log15"
)

// Message is one websocket frame sent to the client.
type Message struct {
	Type     string                 `json:"type"`
	Progress *api.Progress          `json:"progress,omitempty"`
	Stats    *result.AggregateStats `json:"stats,omitempty"`
}

// Server runs benchmarks on request and streams their progress.
type Server struct {
	logger   log.Logger
	upgrader websocket.Upgrader
}

// NewServer returns a Server logging to logger.
func NewServer(logger log.Logger) *Server {
	return &Server{logger: logger}
}

// Handler returns the routes of the web API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bench", s.serveResults)
	return mux
}

// Serve waits for connections and serves the results
func (s *Server) Serve(addr string) error {
	s.logger.Info("Serving web API", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) serveResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", 405)
		return
	}
	query := r.URL.Query()
	config := types.NewTestConfig()
	config.Proxy = query.Get("proxy")
	if target := query.Get("url"); target != "" {
		config.URL = target
	}

	var err error
	if config.Requests, err = intParam(query.Get("requests"), config.Requests); err != nil {
		http.Error(w, "Invalid total", 400)
		return
	}
	if config.Concurrency, err = intParam(query.Get("c"), config.Concurrency); err != nil {
		http.Error(w, "Invalid concurrency", 400)
		return
	}
	if config.Timeout, err = intParam(query.Get("timeout"), config.Timeout); err != nil {
		http.Error(w, "Invalid timeout", 400)
		return
	}

	logger := s.logger.New("remote", r.RemoteAddr)
	bench, err := proxybench.NewBenchmark(config, logger)
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", "err", err)
		return
	}
	defer c.Close()
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go readLoop(c, cancel)

	var writeErr error
	bench.OnProgress(func(p api.Progress) {
		if writeErr != nil {
			return
		}
		if writeErr = c.WriteJSON(Message{Type: "progress", Progress: &p}); writeErr != nil {
			logger.Warn("Websocket write failed", "err", writeErr)
			cancel()
		}
	})
	report := bench.Run(ctx)
	if writeErr != nil {
		return
	}
	if err := c.WriteJSON(Message{Type: "stats", Stats: &report.Stats}); err != nil {
		logger.Warn("Websocket write failed", "err", err)
		return
	}
	c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
}

func intParam(value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}

// readLoop discards client frames and cancels the run once the client is gone.
func readLoop(c *websocket.Conn, cancel context.CancelFunc) {
	for {
		if _, _, err := c.NextReader(); err != nil {
			cancel()
			c.Close()
			break
		}
	}
}
