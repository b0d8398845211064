package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hypersurface/core"
	"hypersurface/provider"
	"hypersurface/rendering"
)

// MaxResolution bounds client-requested grid resolutions.
const MaxResolution = 256

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // viewer pages are served from other origins
	},
}

// Server publishes the reconstructed surface over HTTP and websockets.
type Server struct {
	hub   *Hub
	fetch rendering.FetchFunc

	// sendMu is held from computing a payload until it has been sent, so
	// clients receive payloads in seq order. It is taken before mu.
	sendMu sync.Mutex

	mu      sync.Mutex
	surface *rendering.Surface
	set     *core.SampleSet
	mesh    MeshData
	seq     uint64
}

// New creates a Server. fetch is used by Refresh and Run; it may be nil when
// sets are pushed with Update.
func New(opts rendering.Options, fetch rendering.FetchFunc) *Server {
	s := &Server{
		hub:     NewHub(),
		fetch:   fetch,
		surface: rendering.NewSurface(opts),
	}
	s.setMeshLocked(createMeshData(s.surface, nil))
	return s
}

func (s *Server) setMeshLocked(mesh MeshData) {
	s.seq++
	mesh.Seq = s.seq
	s.mesh = mesh
}

func (s *Server) Hub() *Hub {
	return s.hub
}

// Mesh returns the payload most recently sent to clients.
func (s *Server) Mesh() MeshData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mesh
}

// Builds reports how many times geometry has been reconstructed.
func (s *Server) Builds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.Builds()
}

// Update installs set and broadcasts if the geometry changed. A set with the
// version already shown is a no-op.
func (s *Server) Update(set *core.SampleSet) bool {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	changed := s.rebuildLocked(set)
	mesh := s.mesh
	s.mu.Unlock()

	if changed {
		s.hub.Broadcast(mesh)
	}
	return changed
}

func (s *Server) rebuildLocked(set *core.SampleSet) bool {
	before := s.surface.View().Phase
	start := time.Now()
	rebuilt := s.surface.Update(set)
	if rebuilt {
		reconstructDuration.Observe(time.Since(start).Seconds())
	}
	s.set = set

	if !rebuilt && s.surface.View().Phase == before {
		return false
	}
	s.setMeshLocked(createMeshData(s.surface, set))
	return true
}

// Refresh fetches once and applies the result.
func (s *Server) Refresh(ctx context.Context) error {
	if s.fetch == nil {
		return fmt.Errorf("no provider configured")
	}
	set, err := s.fetch(ctx)
	if err != nil {
		refreshTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("refresh: %w", err)
	}
	if s.Update(set) {
		refreshTotal.WithLabelValues("changed").Inc()
	} else {
		refreshTotal.WithLabelValues("unchanged").Inc()
	}
	return nil
}

// Run refreshes immediately and then every interval until ctx is done.
func (s *Server) Run(ctx context.Context, interval time.Duration) {
	if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
		log.Printf("[SERVER] %v", err)
	}
	if interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[SERVER] %v", err)
			}
		}
	}
}

// Handler routes /ws, /api/surface, /api/mesh and /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/surface", s.handleSurface)
	mux.HandleFunc("/api/mesh", s.handleMesh)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[SERVER] encode response: %v", err)
	}
}

// handleSurface serves the current SampleSet in the provider schema.
func (s *Server) handleSurface(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	set := s.set
	s.mu.Unlock()

	if set.Len() == 0 {
		writeJSON(w, http.StatusServiceUnavailable, ErrorMessage{Type: "error", Message: "surface not loaded"})
		return
	}
	writeJSON(w, http.StatusOK, provider.Encode(set))
}

func (s *Server) handleMesh(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Mesh())
}

type clientMessage struct {
	Mode       *string `json:"mode"`
	Resolution *int    `json:"resolution"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[SERVER] websocket upgrade: %v", err)
		return
	}

	s.sendMu.Lock()
	c := s.hub.register(conn)
	err = c.send(s.Mesh())
	s.sendMu.Unlock()
	defer s.hub.unregister(c)

	if err != nil {
		log.Printf("[SERVER] initial send to %s: %v", c.id, err)
		return
	}

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[SERVER] read from %s: %v", c.id, err)
			}
			return
		}

		if err := s.apply(msg); err != nil {
			if err := c.send(ErrorMessage{Type: "error", Message: err.Error()}); err != nil {
				return
			}
		}
	}
}

// apply handles a client request and broadcasts the result.
func (s *Server) apply(msg clientMessage) error {
	if msg.Mode == nil && msg.Resolution == nil {
		return fmt.Errorf("expected \"mode\" or \"resolution\"")
	}

	var mode rendering.Mode
	if msg.Mode != nil {
		m, ok := rendering.ParseMode(*msg.Mode)
		if !ok {
			return fmt.Errorf("unknown mode %q", *msg.Mode)
		}
		mode = m
	}
	if msg.Resolution != nil && (*msg.Resolution < 1 || *msg.Resolution > MaxResolution) {
		return fmt.Errorf("resolution must be between 1 and %d, got %d", MaxResolution, *msg.Resolution)
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	if msg.Mode != nil {
		s.surface.SetMode(mode)
	}
	rebuilt := false
	if msg.Resolution != nil {
		s.surface.SetResolution(*msg.Resolution)
		rebuilt = s.rebuildLocked(s.set)
	}
	if !rebuilt {
		s.setMeshLocked(createMeshData(s.surface, s.set))
	}
	mesh := s.mesh
	s.mu.Unlock()

	s.hub.Broadcast(mesh)
	return nil
}
