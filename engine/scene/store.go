package scene

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/geometry"
)

// Store holds the per-client scenes of one viewer dimensionality. Inbound remote calls write to it
// and the render loop reads it through snapshots.
// Thread-safe for concurrent access.
type Store interface {
	// Dim returns the dimensionality every stored entity shares.
	Dim() geometry.Dim

	// Insert validates and tessellates d, then appends the entity to the client's scene under a
	// freshly assigned ID. The scene is created on first insert. Tessellation runs outside any lock.
	//
	// Parameters:
	//   - client: the client name that owns the scene
	//   - d: the primitive descriptor
	//
	// Returns:
	//   - uint64: the assigned entity ID, 0 on failure
	//   - error: ErrInvalidGeometry for a rejected descriptor, ErrFatal for an internal failure
	Insert(client string, d geometry.Descriptor) (uint64, error)

	// Clear atomically empties the client's scene. IDs are not reset. Unknown clients are ignored.
	//
	// Parameters:
	//   - client: the client name
	Clear(client string)

	// Remove deletes a single entity from the client's scene.
	//
	// Parameters:
	//   - client: the client name
	//   - id: the entity ID returned by Insert
	//
	// Returns:
	//   - error: ErrNotFound if the client or entity is unknown
	Remove(client string, id uint64) error

	// Get returns a stored entity by ID.
	//
	// Parameters:
	//   - client: the client name
	//   - id: the entity ID
	//
	// Returns:
	//   - *geometry.Entity: the entity, which must not be modified
	//   - bool: false if the client or entity is unknown
	Get(client string, id uint64) (*geometry.Entity, bool)

	// Snapshot returns the client's entities ordered by ID. The slice is a copy; the entities are
	// shared and must not be modified. An unknown client yields an empty snapshot.
	//
	// Parameters:
	//   - client: the client name
	//
	// Returns:
	//   - Snapshot: the client's entities at the time of the call
	Snapshot(client string) Snapshot

	// SnapshotAll returns one snapshot per client in client-name order.
	SnapshotAll() []Snapshot

	// Clients returns the names of every client that has a scene, sorted.
	Clients() []string

	// Count returns the number of entities in the client's scene.
	Count(client string) int
}

// Snapshot is a point-in-time view of one client's scene.
type Snapshot struct {
	Client   string
	Entities []*geometry.Entity
}

// clientScene is the mutable entity list of one client. Entities are appended with increasing IDs
// so the slice stays sorted.
type clientScene struct {
	mu       sync.Mutex
	entities []*geometry.Entity
}

type store struct {
	mu     *sync.RWMutex
	dim    geometry.Dim
	scenes map[string]*clientScene
	nextID atomic.Uint64
	logger *slog.Logger
}

var _ Store = &store{}

// NewStore creates an empty Store for the given dimensionality.
//
// Parameters:
//   - dim: geometry.Dim2 or geometry.Dim3
//   - options: functional options such as WithFirstID
//
// Returns:
//   - Store: the new store
func NewStore(dim geometry.Dim, options ...StoreBuilderOption) Store {
	if dim != geometry.Dim2 && dim != geometry.Dim3 {
		panic(fmt.Sprintf("scene: NewStore requires Dim2 or Dim3, got %d", dim))
	}
	s := &store{
		mu:     &sync.RWMutex{},
		dim:    dim,
		scenes: make(map[string]*clientScene),
	}
	s.nextID.Store(1)

	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = common.Logger()
	}
	return s
}

func (s *store) Dim() geometry.Dim {
	return s.dim
}

func (s *store) Insert(client string, d geometry.Descriptor) (id uint64, err error) {
	defer geometry.RecoverFatal(&err)

	if d != nil && d.Dim() != s.dim {
		return 0, &geometry.InvalidGeometryError{
			Kind:   d.Kind(),
			Field:  "descriptor",
			Reason: fmt.Sprintf("is %s, this viewer accepts %s", d.Dim(), s.dim),
		}
	}
	v, err := geometry.Validate(d)
	if err != nil {
		s.logger.Debug("[Store] rejected descriptor", "client", client, "error", err)
		return 0, err
	}
	e := geometry.Tessellate(v)

	cs := s.sceneFor(client)
	cs.mu.Lock()
	e.ID = s.nextID.Add(1) - 1
	cs.entities = append(cs.entities, e)
	cs.mu.Unlock()

	s.logger.Debug("[Store] inserted entity", "client", client, "id", e.ID, "kind", d.Kind(),
		"vertices", e.VertexCount(), "primitives", e.PrimitiveCount())
	return e.ID, nil
}

func (s *store) Clear(client string) {
	cs := s.lookup(client)
	if cs == nil {
		return
	}
	cs.mu.Lock()
	n := len(cs.entities)
	cs.entities = nil
	cs.mu.Unlock()
	s.logger.Debug("[Store] cleared scene", "client", client, "removed", n)
}

func (s *store) Remove(client string, id uint64) error {
	cs := s.lookup(client)
	if cs == nil {
		return fmt.Errorf("client %q: %w", client, geometry.ErrNotFound)
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()

	i, ok := slices.BinarySearchFunc(cs.entities, id, func(e *geometry.Entity, id uint64) int {
		switch {
		case e.ID < id:
			return -1
		case e.ID > id:
			return 1
		}
		return 0
	})
	if !ok {
		return fmt.Errorf("client %q entity %d: %w", client, id, geometry.ErrNotFound)
	}
	cs.entities = slices.Delete(cs.entities, i, i+1)
	return nil
}

func (s *store) Get(client string, id uint64) (*geometry.Entity, bool) {
	for _, e := range s.Snapshot(client).Entities {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

func (s *store) Snapshot(client string) Snapshot {
	snap := Snapshot{Client: client}
	cs := s.lookup(client)
	if cs == nil {
		return snap
	}
	cs.mu.Lock()
	snap.Entities = slices.Clone(cs.entities)
	cs.mu.Unlock()
	return snap
}

func (s *store) SnapshotAll() []Snapshot {
	clients := s.Clients()
	out := make([]Snapshot, 0, len(clients))
	for _, c := range clients {
		out = append(out, s.Snapshot(c))
	}
	return out
}

func (s *store) Clients() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.scenes))
	for name := range s.scenes {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func (s *store) Count(client string) int {
	cs := s.lookup(client)
	if cs == nil {
		return 0
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.entities)
}

func (s *store) lookup(client string) *clientScene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scenes[client]
}

// sceneFor returns the client's scene, creating it on first use.
func (s *store) sceneFor(client string) *clientScene {
	if cs := s.lookup(client); cs != nil {
		return cs
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.scenes[client]
	if !ok {
		cs = &clientScene{}
		s.scenes[client] = cs
	}
	return cs
}
