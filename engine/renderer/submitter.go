package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
)

// FrameTarget is the subset of Renderer a Submitter draws through.
type FrameTarget interface {
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error
	BeginFrame() error
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error
	EndFrame()
	Present()
}

var _ FrameTarget = Renderer(nil)

// ErrFrameSkipped wraps the error of a frame that could not begin. Nothing was drawn or presented.
var ErrFrameSkipped = errors.New("renderer: frame skipped")

// FrameStats summarises one submitted frame.
type FrameStats struct {
	Entities  int
	Uploaded  int
	Evicted   int
	DrawCalls int
}

// Submitter turns store snapshots into draw calls. Entities are immutable once stored, so
// each id is uploaded once and its buffers are released when the id leaves the store. A failed
// upload is retried every frame but only warned about once per id.
type Submitter struct {
	mu     sync.Mutex
	store  scene.Store
	target FrameTarget
	meshes map[uint64]bind_group_provider.BindGroupProvider
	failed map[uint64]struct{}
	logger *slog.Logger
}

// SubmitterOption configures a Submitter.
type SubmitterOption func(*Submitter)

// WithSubmitterLogger sets the logger used for upload failures.
func WithSubmitterLogger(l *slog.Logger) SubmitterOption {
	return func(s *Submitter) {
		s.logger = l
	}
}

// NewSubmitter creates a Submitter for a store. It panics if store or target is nil.
//
// Parameters:
//   - store: the entity store to draw
//   - target: the renderer to draw through
//   - options: optional configuration
//
// Returns:
//   - *Submitter: the submitter
func NewSubmitter(store scene.Store, target FrameTarget, options ...SubmitterOption) *Submitter {
	if store == nil || target == nil {
		panic("renderer: NewSubmitter requires a store and a frame target")
	}
	s := &Submitter{
		store:  store,
		target: target,
		meshes: make(map[uint64]bind_group_provider.BindGroupProvider),
		failed: make(map[uint64]struct{}),
		logger: common.Logger(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Frame draws the current contents of the store. Snapshots are taken first and every GPU call
// happens outside the store's locks. Clients are drawn in name order and entities in id order.
//
// Parameters:
//   - bindGroups: providers bound to groups 0, 1, ... for every draw, starting with the camera
//
// Returns:
//   - FrameStats: counts for the frame
//   - error: ErrFrameSkipped if the frame could not begin, or the last rejected draw
func (s *Submitter) Frame(bindGroups ...bind_group_provider.BindGroupProvider) (FrameStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats FrameStats
	snapshots := s.store.SnapshotAll()
	live := make(map[uint64]struct{})

	for _, snap := range snapshots {
		for _, e := range snap.Entities {
			live[e.ID] = struct{}{}
			stats.Entities++
			if _, ok := s.meshes[e.ID]; ok {
				continue
			}
			provider := bind_group_provider.NewBindGroupProvider("", bind_group_provider.WithOwner(snap.Client, e.ID))
			err := s.target.InitMeshBuffers(provider, common.SliceToBytes(e.Vertices), common.SliceToBytes(e.Indices), len(e.Indices))
			if err != nil {
				provider.Release()
				if _, seen := s.failed[e.ID]; seen {
					s.logger.Debug("[Submitter] mesh upload retry failed", "client", snap.Client, "id", e.ID, "error", err)
				} else {
					s.failed[e.ID] = struct{}{}
					s.logger.Warn("[Submitter] mesh upload failed", "client", snap.Client, "id", e.ID, "error", err)
				}
				continue
			}
			delete(s.failed, e.ID)
			s.meshes[e.ID] = provider
			stats.Uploaded++
		}
	}

	for id, provider := range s.meshes {
		if _, ok := live[id]; !ok {
			client, _ := provider.Owner()
			s.logger.Debug("[Submitter] releasing mesh", "client", client, "id", id)
			provider.Release()
			delete(s.meshes, id)
			stats.Evicted++
		}
	}
	for id := range s.failed {
		if _, ok := live[id]; !ok {
			delete(s.failed, id)
		}
	}

	if err := s.target.BeginFrame(); err != nil {
		return stats, fmt.Errorf("%w: %w", ErrFrameSkipped, err)
	}

	var drawErr error
	for _, snap := range snapshots {
		for _, e := range snap.Entities {
			provider, ok := s.meshes[e.ID]
			if !ok || provider.IndexCount() == 0 {
				continue
			}
			if err := s.target.DrawCall(PipelineKey(e.Dim, e.CellType), provider, bindGroups); err != nil {
				drawErr = err
				continue
			}
			stats.DrawCalls++
		}
	}

	s.target.EndFrame()
	s.target.Present()
	return stats, drawErr
}

// Resident returns how many entities currently hold GPU buffers.
func (s *Submitter) Resident() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.meshes)
}

// Release frees every uploaded mesh.
func (s *Submitter) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, provider := range s.meshes {
		provider.Release()
		delete(s.meshes, id)
	}
}
