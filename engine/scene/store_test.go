package scene

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(cell common.CellType) geometry.Square {
	return geometry.Square{
		XAxis:    common.V2(1, 0),
		YAxis:    common.V2(0, 1),
		LenX:     1,
		LenY:     1,
		TriColor: common.Orange,
		CellType: cell,
	}
}

func TestInsertAssignsIncreasingIDs(t *testing.T) {
	s := NewStore(geometry.Dim2)

	id1, err := s.Insert("alice", square(common.CellTypeTriangle))
	require.NoError(t, err)
	id2, err := s.Insert("alice", square(common.CellTypeLine))
	require.NoError(t, err)
	id3, err := s.Insert("bob", geometry.Circle{Radius: 1, NumSides: 8, CellType: common.CellTypeLine})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), id1)
	assert.Less(t, id1, id2)
	assert.Less(t, id2, id3)

	snap := s.Snapshot("alice")
	require.Len(t, snap.Entities, 2)
	assert.Equal(t, id1, snap.Entities[0].ID)
	assert.Equal(t, 4, snap.Entities[0].VertexCount())
	assert.Equal(t, 2, snap.Entities[0].PrimitiveCount())
	assert.Equal(t, 4, snap.Entities[1].PrimitiveCount())

	assert.Equal(t, []string{"alice", "bob"}, s.Clients())
	assert.Equal(t, 1, s.Count("bob"))
}

func TestInsertRejectsInvalid(t *testing.T) {
	s := NewStore(geometry.Dim2)

	bad := square(common.CellTypeTriangle)
	bad.LenX = 0
	id, err := s.Insert("alice", bad)
	assert.Zero(t, id)
	assert.True(t, errors.Is(err, geometry.ErrInvalidGeometry))
	assert.Empty(t, s.Snapshot("alice").Entities)

	var ige *geometry.InvalidGeometryError
	_, err = s.Insert("alice", geometry.Sphere{Axis: common.V3(0, 0, 1), Radius: 1, NLat: 4, NLong: 4, CellType: common.CellTypeLine})
	require.True(t, errors.As(err, &ige))
	assert.Equal(t, "descriptor", ige.Field)

	// A rejected insert does not consume an ID.
	id, err = s.Insert("alice", square(common.CellTypeLine))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestClearKeepsCounter(t *testing.T) {
	s := NewStore(geometry.Dim2)
	for range 3 {
		_, err := s.Insert("alice", square(common.CellTypeLine))
		require.NoError(t, err)
	}

	s.Clear("alice")
	assert.Empty(t, s.Snapshot("alice").Entities)

	id, err := s.Insert("alice", square(common.CellTypeLine))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), id)
	assert.Len(t, s.Snapshot("alice").Entities, 1)

	s.Clear("nobody")
	assert.Equal(t, []string{"alice"}, s.Clients())
}

func TestRemove(t *testing.T) {
	s := NewStore(geometry.Dim3, WithFirstID(100))
	cub := geometry.Cuboid{
		XAxis: common.V3(1, 0, 0), YAxis: common.V3(0, 1, 0), ZAxis: common.V3(0, 0, 1),
		LenX: 1, LenY: 1, LenZ: 1, CellType: common.CellTypeTriangle,
	}
	a, err := s.Insert("alice", cub)
	require.NoError(t, err)
	b, err := s.Insert("alice", cub)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), a)

	before := s.Snapshot("alice")
	require.NoError(t, s.Remove("alice", a))
	assert.Len(t, before.Entities, 2, "earlier snapshots are unaffected")

	after := s.Snapshot("alice")
	require.Len(t, after.Entities, 1)
	assert.Equal(t, b, after.Entities[0].ID)

	assert.True(t, errors.Is(s.Remove("alice", a), geometry.ErrNotFound))
	assert.True(t, errors.Is(s.Remove("ghost", b), geometry.ErrNotFound))

	e, ok := s.Get("alice", b)
	require.True(t, ok)
	assert.Equal(t, 12, e.PrimitiveCount())
	_, ok = s.Get("alice", a)
	assert.False(t, ok)
}

func TestSnapshotUnknownClient(t *testing.T) {
	s := NewStore(geometry.Dim3)
	snap := s.Snapshot("nobody")
	assert.Equal(t, "nobody", snap.Client)
	assert.Empty(t, snap.Entities)
	assert.Empty(t, s.SnapshotAll())
	assert.Zero(t, s.Count("nobody"))
}

func TestConcurrentInsertsAndSnapshots(t *testing.T) {
	const (
		clients = 4
		perGo   = 50
	)
	s := NewStore(geometry.Dim2)
	names := []string{"a", "b", "c", "d"}

	var wg sync.WaitGroup
	for c := range clients {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			for range perGo {
				_, err := s.Insert(name, geometry.Circle{Radius: 1, NumSides: 16, CellType: common.CellTypeTriangle})
				assert.NoError(t, err)
			}
		}(names[c])
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 200 {
			for _, snap := range s.SnapshotAll() {
				for i := 1; i < len(snap.Entities); i++ {
					assert.Less(t, snap.Entities[i-1].ID, snap.Entities[i].ID)
				}
				for _, e := range snap.Entities {
					assert.Equal(t, 17, e.VertexCount())
				}
			}
		}
	}()

	wg.Wait()
	<-done

	seen := map[uint64]bool{}
	for _, snap := range s.SnapshotAll() {
		assert.Len(t, snap.Entities, perGo)
		for _, e := range snap.Entities {
			assert.False(t, seen[e.ID], "duplicate id %d", e.ID)
			seen[e.ID] = true
		}
	}
	assert.Len(t, seen, clients*perGo)
}

func TestNewStoreRejectsBadDim(t *testing.T) {
	assert.Panics(t, func() { NewStore(geometry.Dim(7)) })
}
