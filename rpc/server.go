package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/gorilla/websocket"
)

const (
	// DefaultAddress is the loopback address the viewer listens on when none is configured.
	DefaultAddress = "127.0.0.1:50051"

	// HealthPath serves the JSON health report.
	HealthPath = "/health"

	defaultWorkers        = 8
	defaultMaxMessageSize = 64 << 20
	taskQueueSize         = 256
	writeTimeout          = 10 * time.Second
)

// Server accepts WebSocket connections on one path per mounted service and runs every decoded
// request on a shared worker pool. Calls on one connection may complete in any order; responses
// carry the request id.
type Server interface {
	// Handler returns the HTTP handler serving the service paths and HealthPath.
	Handler() http.Handler

	// ListenAndServe binds the configured address and serves until Shutdown.
	//
	// Returns:
	//   - error: an error if the address cannot be bound; nil after Shutdown
	ListenAndServe() error

	// Serve serves connections accepted on l until Shutdown.
	//
	// Parameters:
	//   - l: the listener, which Serve takes ownership of
	//
	// Returns:
	//   - error: an error if serving fails; nil after Shutdown
	Serve(l net.Listener) error

	// Addr returns the bound address, or nil before Serve.
	Addr() net.Addr

	// Shutdown stops accepting connections, closes open ones and stops the worker pool.
	//
	// Parameters:
	//   - ctx: bounds the wait for in-flight HTTP requests
	//
	// Returns:
	//   - error: the HTTP server's shutdown error, if any
	Shutdown(ctx context.Context) error

	// Kill closes Done. Safe to call more than once and from any goroutine.
	Kill()

	// Done is closed once a client calls KillServer or Kill is called.
	Done() <-chan struct{}
}

// Health is the body served at HealthPath.
type Health struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth reports the scenes held by one service.
type ServiceHealth struct {
	Path     string `json:"path"`
	Clients  int    `json:"clients"`
	Entities int    `json:"entities"`
}

// wsConn serializes writes to one WebSocket connection.
type wsConn struct {
	mu *sync.Mutex
	ws *websocket.Conn
}

func (c *wsConn) send(resp Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteJSON(resp)
}

type server struct {
	mu *sync.Mutex

	addr           string
	workers        int
	maxMessageSize int64
	stores         []scene.Store

	services map[string]*service
	mux      *http.ServeMux
	upgrader websocket.Upgrader
	pool     worker.DynamicWorkerPool

	httpServer *http.Server
	listenAddr net.Addr
	conns      map[*wsConn]struct{}
	closed     bool
	stopOnce   sync.Once

	quit     chan struct{}
	quitOnce sync.Once

	logger *slog.Logger
}

var _ Server = &server{}

// NewServer creates a Server. At least one WithService option is required.
//
// Parameters:
//   - options: functional options such as WithService and WithAddress
//
// Returns:
//   - Server: the server, not yet listening
func NewServer(options ...ServerBuilderOption) Server {
	s := &server{
		mu:             &sync.Mutex{},
		addr:           DefaultAddress,
		workers:        defaultWorkers,
		maxMessageSize: defaultMaxMessageSize,
		services:       make(map[string]*service),
		mux:            http.NewServeMux(),
		conns:          make(map[*wsConn]struct{}),
		quit:           make(chan struct{}),
	}
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = common.Logger()
	}
	if len(s.stores) == 0 {
		panic("rpc: NewServer requires at least one WithService option")
	}

	for _, store := range s.stores {
		if store == nil {
			panic("rpc: WithService store cannot be nil")
		}
		s.services["/"+store.Dim().String()] = newService(store, s.logger)
	}
	for path, svc := range s.services {
		s.mux.HandleFunc(path, s.serveWebSocket(svc))
	}
	s.mux.HandleFunc(HealthPath, s.serveHealth)

	s.pool = worker.NewDynamicWorkerPool(s.workers, taskQueueSize, 1*time.Second)
	return s
}

func (s *server) Handler() http.Handler {
	return s.mux
}

func (s *server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("rpc: listen %s: %w", s.addr, err)
	}
	return s.Serve(l)
}

func (s *server) Serve(l net.Listener) error {
	hs := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return l.Close()
	}
	s.httpServer = hs
	s.listenAddr = l.Addr()
	s.mu.Unlock()

	s.logger.Info("[RPC] listening", "addr", l.Addr().String(), "services", s.paths())
	if err := hs.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("rpc: serve: %w", err)
	}
	return nil
}

func (s *server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listenAddr
}

func (s *server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	hs := s.httpServer
	conns := make([]*wsConn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	var err error
	if hs != nil {
		err = hs.Shutdown(ctx)
	}
	// Hijacked connections are not closed by http.Server.Shutdown.
	for _, c := range conns {
		c.ws.Close()
	}
	s.stopOnce.Do(s.pool.Stop)

	s.logger.Info("[RPC] shut down", "connections_closed", len(conns))
	return err
}

func (s *server) Kill() {
	s.quitOnce.Do(func() {
		close(s.quit)
	})
}

func (s *server) Done() <-chan struct{} {
	return s.quit
}

func (s *server) paths() []string {
	out := make([]string, 0, len(s.services))
	for path := range s.services {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

func (s *server) serveWebSocket(svc *service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Debug("[RPC] upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		c := &wsConn{mu: &sync.Mutex{}, ws: ws}
		if !s.track(c) {
			ws.Close()
			return
		}
		defer s.untrack(c)
		defer ws.Close()

		s.logger.Debug("[RPC] connection opened", "remote", r.RemoteAddr, "path", r.URL.Path)
		s.readLoop(svc, c)
		s.logger.Debug("[RPC] connection closed", "remote", r.RemoteAddr, "path", r.URL.Path)
	}
}

// readLoop decodes requests until the connection fails and hands each one to the worker pool.
func (s *server) readLoop(svc *service, c *wsConn) {
	c.ws.SetReadLimit(s.maxMessageSize)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("[RPC] read failed", "error", err)
			}
			return
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			resp := Response{Error: errorBody(fmt.Errorf("%w: %v", ErrBadRequest, err))}
			if err := c.send(resp); err != nil {
				return
			}
			continue
		}

		s.pool.SubmitTask(worker.Task{
			ID: int(req.ID),
			Do: func() (any, error) {
				resp := svc.handle(req)
				if err := c.send(resp); err != nil {
					s.logger.Debug("[RPC] write failed", "id", req.ID, "method", req.Method, "error", err)
				}
				if req.Method == MethodKillServer && resp.Error == nil {
					s.logger.Info("[RPC] kill requested", "client", req.ClientName)
					s.Kill()
				}
				return nil, nil
			},
		})
	}
}

func (s *server) track(c *wsConn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *server) untrack(c *wsConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}

func (s *server) serveHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h := Health{Status: "ok"}
	select {
	case <-s.quit:
		h.Status = "stopping"
	default:
	}
	for _, path := range s.paths() {
		store := s.services[path].store
		sh := ServiceHealth{Path: path}
		for _, client := range store.Clients() {
			sh.Clients++
			sh.Entities += store.Count(client)
		}
		h.Services = append(h.Services, sh)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h); err != nil {
		s.logger.Debug("[RPC] health write failed", "error", err)
	}
}
