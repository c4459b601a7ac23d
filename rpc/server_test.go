package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/geometry"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testViewer struct {
	srv     Server
	http    *httptest.Server
	store2D scene.Store
	store3D scene.Store
}

func newTestViewer(t *testing.T) *testViewer {
	t.Helper()
	v := &testViewer{
		store2D: scene.NewStore(geometry.Dim2),
		store3D: scene.NewStore(geometry.Dim3),
	}
	v.srv = NewServer(WithService(v.store2D), WithService(v.store3D), WithWorkers(4))
	v.http = httptest.NewServer(v.srv.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = v.srv.Shutdown(ctx)
		v.http.Close()
	})
	return v
}

func (v *testViewer) dial(t *testing.T, dim geometry.Dim) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, URL(strings.TrimPrefix(v.http.URL, "http://"), dim))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestURL(t *testing.T) {
	assert.Equal(t, "ws://127.0.0.1:50051/d2", URL(DefaultAddress, geometry.Dim2))
	assert.Equal(t, "ws://localhost:9000/d3", URL("localhost:9000", geometry.Dim3))
}

func TestClient2DAddRemoveClear(t *testing.T) {
	v := newTestViewer(t)
	ctx := testCtx(t)
	c := NewClient2D(v.dial(t, geometry.Dim2), "alice")

	id1, err := c.AddSquare(ctx, geometry.Square{
		XAxis: common.V2(1, 0), YAxis: common.V2(0, 1), LenX: 2, LenY: 1,
		TriColor: common.Orange, CellType: common.CellTypeTriangle,
	})
	require.NoError(t, err)
	id2, err := c.AddCircle(ctx, geometry.Circle{Radius: 1, NumSides: 16, LineColor: common.Navy, CellType: common.CellTypeLine})
	require.NoError(t, err)
	id3, err := c.AddAxes(ctx, geometry.Axes2D{XAxis: common.V2(1, 0), YAxis: common.V2(0, 1), NegLen: 1, PosLen: 2})
	require.NoError(t, err)
	id4, err := c.AddLine(ctx, geometry.Line2D{V2: common.V2(1, 1), Color: common.Red})
	require.NoError(t, err)
	id5, err := c.AddMesh(ctx, geometry.Mesh2D{
		Vertices: []float32{
			0, 0, 0, 0, 0, 1, 0, 0,
			1, 0, 0, 0, 0, 0, 1, 0,
			0, 1, 0, 0, 0, 0, 0, 1,
		},
		Indices:  []uint32{0, 1, 2},
		CellType: common.CellTypeTriangle,
	})
	require.NoError(t, err)

	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, []uint64{id1, id2, id3, id4, id5})
	assert.Equal(t, 5, v.store2D.Count("alice"))

	e, ok := v.store2D.Get("alice", id1)
	require.True(t, ok)
	assert.Equal(t, common.CellTypeTriangle, e.CellType)
	assert.Equal(t, 4, e.VertexCount())

	require.NoError(t, c.Remove(ctx, id2))
	assert.Equal(t, 4, v.store2D.Count("alice"))

	err = c.Remove(ctx, id2)
	assert.ErrorIs(t, err, geometry.ErrNotFound)
	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeNotFound, re.Code)
	assert.Equal(t, MethodRemove, re.Method)

	require.NoError(t, c.Clear(ctx))
	assert.Zero(t, v.store2D.Count("alice"))

	id6, err := c.AddLine(ctx, geometry.Line2D{V2: common.V2(1, 0)})
	require.NoError(t, err)
	assert.Equal(t, uint64(6), id6, "ids are not reused after Clear")
}

func TestClient3DAddsEveryPrimitive(t *testing.T) {
	v := newTestViewer(t)
	ctx := testCtx(t)
	c := NewClient3D(v.dial(t, geometry.Dim3), "bob")

	x, y, z := common.V3(1, 0, 0), common.V3(0, 1, 0), common.V3(0, 0, 1)
	calls := []func() (uint64, error){
		func() (uint64, error) {
			return c.AddAxes(ctx, geometry.Axes3D{XAxis: x, YAxis: y, ZAxis: z, NegLen: 1, PosLen: 1})
		},
		func() (uint64, error) { return c.AddLine(ctx, geometry.Line3D{V2: z, Color: common.Blue}) },
		func() (uint64, error) {
			return c.AddTriangle(ctx, geometry.Triangle{V1: common.V3(0, 0, 0), V2: x, V3: y, CellType: common.CellTypeTriangle})
		},
		func() (uint64, error) {
			return c.AddPlane(ctx, geometry.Plane{XAxis: x, YAxis: y, XMin: -1, XMax: 1, YMin: -1, YMax: 1, CellType: common.CellTypeLine})
		},
		func() (uint64, error) {
			return c.AddCuboid(ctx, geometry.Cuboid{XAxis: x, YAxis: y, ZAxis: z, LenX: 1, LenY: 2, LenZ: 3, CellType: common.CellTypeTriangle})
		},
		func() (uint64, error) {
			return c.AddCylinder(ctx, geometry.Cylinder{Axis: z, Radius: 1, Height: 2, NumSides: 12, CellType: common.CellTypeTriangle})
		},
		func() (uint64, error) {
			return c.AddDisc(ctx, geometry.Disc{Axis: z, Radius: 1, NumSides: 12, CellType: common.CellTypeTriangle})
		},
		func() (uint64, error) {
			return c.AddSphere(ctx, geometry.Sphere{Axis: z, Radius: 1, NLat: 8, NLong: 12, CellType: common.CellTypeTriangle})
		},
		func() (uint64, error) {
			return c.AddMesh(ctx, geometry.Mesh3D{
				Vertices: []float32{
					0, 0, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0,
					1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0,
				},
				Indices:  []uint32{0, 1},
				CellType: common.CellTypeLine,
			})
		},
	}
	for i, call := range calls {
		id, err := call()
		require.NoError(t, err, "call %d", i)
		assert.Equal(t, uint64(i+1), id)
	}
	assert.Equal(t, len(calls), v.store3D.Count("bob"))
	assert.Zero(t, v.store2D.Count("bob"))
}

func TestInvalidGeometryIsReported(t *testing.T) {
	v := newTestViewer(t)
	ctx := testCtx(t)
	c := NewClient2D(v.dial(t, geometry.Dim2), "alice")

	id, err := c.AddCircle(ctx, geometry.Circle{Radius: 0, NumSides: 8, CellType: common.CellTypeLine})
	assert.Zero(t, id)
	assert.ErrorIs(t, err, geometry.ErrInvalidGeometry)

	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeInvalidGeometry, re.Code)
	assert.Equal(t, "radius", re.Field)

	_, err = c.AddSquare(ctx, geometry.Square{XAxis: common.V2(1, 0), YAxis: common.V2(0, 1), LenX: 1, LenY: 1})
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "cell_type", re.Field)

	assert.Zero(t, v.store2D.Count("alice"))
}

func TestBadRequests(t *testing.T) {
	v := newTestViewer(t)
	ctx := testCtx(t)
	c := v.dial(t, geometry.Dim2)

	_, err := c.Call(ctx, MethodAddLine, "", geometry.Line2D{V2: common.V2(1, 0)})
	assert.ErrorIs(t, err, ErrBadRequest)
	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "client_name", re.Field)

	_, err = c.Call(ctx, MethodAddLine, "alice", nil)
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = c.Call(ctx, MethodAddLine, "alice", map[string]any{"v1": map[string]any{"x": 0, "y": 0}, "colour": "red"})
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = c.Call(ctx, MethodAddCircle, "alice", map[string]any{"radius": 1, "num_sides": -3})
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeBadRequest, re.Code)
	assert.Equal(t, "num_sides", re.Field)

	_, err = c.Call(ctx, MethodAddSphere, "alice", geometry.Sphere{})
	assert.ErrorIs(t, err, ErrUnknownMethod, "3D methods are not offered on /d2")

	_, err = c.Call(ctx, "Teleport", "alice", nil)
	assert.ErrorIs(t, err, ErrUnknownMethod)

	assert.Empty(t, v.store2D.Clients())
}

func TestMalformedEnvelopeKeepsConnection(t *testing.T) {
	v := newTestViewer(t)
	url := URL(strings.TrimPrefix(v.http.URL, "http://"), geometry.Dim2)
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("{not json")))
	var resp Response
	require.NoError(t, ws.ReadJSON(&resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeBadRequest, resp.Error.Code)

	require.NoError(t, ws.WriteJSON(Request{
		ID: 41, Method: MethodAddLine, ClientName: "raw",
		Params: json.RawMessage(`{"v1":{"x":0,"y":0},"v2":{"x":1,"y":1},"color":{"r":1,"g":0,"b":0}}`),
	}))
	resp = Response{}
	require.NoError(t, ws.ReadJSON(&resp))
	assert.Equal(t, uint64(41), resp.ID)
	require.NotNil(t, resp.Result)
	assert.Equal(t, uint64(1), resp.Result.EntityID)
}

func TestConcurrentClients(t *testing.T) {
	v := newTestViewer(t)
	ctx := testCtx(t)

	const clients, perClient = 4, 25
	var mu sync.Mutex
	seen := make(map[uint64]bool)

	var wg sync.WaitGroup
	for i := range clients {
		c := NewClient2D(v.dial(t, geometry.Dim2), string(rune('a'+i)))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range perClient {
				id, err := c.AddLine(ctx, geometry.Line2D{V2: common.V2(float32(j+1), 0)})
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				assert.False(t, seen[id], "duplicate id %d", id)
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, clients*perClient)
	assert.Len(t, v.store2D.Clients(), clients)
	for _, name := range v.store2D.Clients() {
		assert.Equal(t, perClient, v.store2D.Count(name))
	}
}

func TestConcurrentCallsOnOneConnection(t *testing.T) {
	v := newTestViewer(t)
	ctx := testCtx(t)
	c := NewClient3D(v.dial(t, geometry.Dim3), "shared")

	var wg sync.WaitGroup
	ids := make([]uint64, 32)
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := c.AddLine(ctx, geometry.Line3D{V2: common.V3(1, float32(i), 0)})
			assert.NoError(t, err)
			ids[i] = id
		}()
	}
	wg.Wait()

	unique := make(map[uint64]bool)
	for _, id := range ids {
		assert.NotZero(t, id)
		unique[id] = true
	}
	assert.Len(t, unique, len(ids))
	assert.Equal(t, len(ids), v.store3D.Count("shared"))
}

func TestKillServer(t *testing.T) {
	v := newTestViewer(t)
	ctx := testCtx(t)
	c := NewClient3D(v.dial(t, geometry.Dim3), "")

	select {
	case <-v.srv.Done():
		t.Fatal("Done closed before KillServer")
	default:
	}

	require.NoError(t, c.KillServer(ctx))
	select {
	case <-v.srv.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Done not closed after KillServer")
	}

	// A second kill is harmless.
	v.srv.Kill()
}

func TestHealth(t *testing.T) {
	v := newTestViewer(t)
	ctx := testCtx(t)
	c := NewClient2D(v.dial(t, geometry.Dim2), "alice")
	_, err := c.AddLine(ctx, geometry.Line2D{V2: common.V2(1, 0)})
	require.NoError(t, err)

	resp, err := http.Get(v.http.URL + HealthPath)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var h Health
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, []ServiceHealth{
		{Path: "/d2", Clients: 1, Entities: 1},
		{Path: "/d3", Clients: 0, Entities: 0},
	}, h.Services)

	post, err := http.Post(v.http.URL+HealthPath, "application/json", nil)
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, post.StatusCode)
}

func TestUnmountedDimRejected(t *testing.T) {
	srv := NewServer(WithService(scene.NewStore(geometry.Dim2)))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx := testCtx(t)
	_, err := Dial(ctx, URL(strings.TrimPrefix(ts.URL, "http://"), geometry.Dim3))
	assert.Error(t, err)
}

func TestServeAndShutdown(t *testing.T) {
	store := scene.NewStore(geometry.Dim2)
	srv := NewServer(WithService(store), WithAddress("127.0.0.1:0"))
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() { served <- srv.Serve(l) }()
	require.Eventually(t, func() bool { return srv.Addr() != nil }, 5*time.Second, 10*time.Millisecond)

	ctx := testCtx(t)
	c, err := Dial(ctx, URL(srv.Addr().String(), geometry.Dim2))
	require.NoError(t, err)
	_, err = NewClient2D(c, "alice").AddLine(ctx, geometry.Line2D{V2: common.V2(1, 0)})
	require.NoError(t, err)

	require.NoError(t, srv.Shutdown(ctx))
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("client connection not closed by Shutdown")
	}

	_, err = c.Call(ctx, MethodClear, "alice", nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClientCallAfterClose(t *testing.T) {
	v := newTestViewer(t)
	c := v.dial(t, geometry.Dim2)
	require.NoError(t, c.Close())

	_, err := c.Call(testCtx(t), MethodClear, "alice", nil)
	assert.True(t, errors.Is(err, ErrClosed))
}

func TestNewServerRequiresService(t *testing.T) {
	assert.Panics(t, func() { NewServer() })
}
