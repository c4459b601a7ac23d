package rpc

import (
	"context"

	"github.com/Carmen-Shannon/oxy-viewer/engine/geometry"
)

// Client2D calls the /d2 service on behalf of one named client.
type Client2D struct {
	c    *Client
	name string
}

// NewClient2D binds c, which must be connected to a /d2 URL, to the scene of clientName.
//
// Parameters:
//   - c: the connected client
//   - clientName: the scene every call reads and writes
//
// Returns:
//   - *Client2D: the typed client
func NewClient2D(c *Client, clientName string) *Client2D {
	return &Client2D{c: c, name: clientName}
}

// Name returns the client name the calls are made for.
func (c *Client2D) Name() string { return c.name }

func (c *Client2D) AddAxes(ctx context.Context, d geometry.Axes2D) (uint64, error) {
	return c.add(ctx, MethodAddAxes, d)
}

func (c *Client2D) AddLine(ctx context.Context, d geometry.Line2D) (uint64, error) {
	return c.add(ctx, MethodAddLine, d)
}

func (c *Client2D) AddSquare(ctx context.Context, d geometry.Square) (uint64, error) {
	return c.add(ctx, MethodAddSquare, d)
}

func (c *Client2D) AddCircle(ctx context.Context, d geometry.Circle) (uint64, error) {
	return c.add(ctx, MethodAddCircle, d)
}

func (c *Client2D) AddMesh(ctx context.Context, d geometry.Mesh2D) (uint64, error) {
	return c.add(ctx, MethodAddMesh, d)
}

// Clear empties this client's scene.
func (c *Client2D) Clear(ctx context.Context) error {
	_, err := c.c.Call(ctx, MethodClear, c.name, nil)
	return err
}

// Remove deletes one entity from this client's scene.
func (c *Client2D) Remove(ctx context.Context, id uint64) error {
	_, err := c.c.Call(ctx, MethodRemove, c.name, RemoveParams{ID: id})
	return err
}

// KillServer asks the viewer to shut down.
func (c *Client2D) KillServer(ctx context.Context) error {
	_, err := c.c.Call(ctx, MethodKillServer, c.name, nil)
	return err
}

func (c *Client2D) add(ctx context.Context, method string, d geometry.Descriptor) (uint64, error) {
	res, err := c.c.Call(ctx, method, c.name, d)
	return res.EntityID, err
}

// Client3D calls the /d3 service on behalf of one named client.
type Client3D struct {
	c    *Client
	name string
}

// NewClient3D binds c, which must be connected to a /d3 URL, to the scene of clientName.
//
// Parameters:
//   - c: the connected client
//   - clientName: the scene every call reads and writes
//
// Returns:
//   - *Client3D: the typed client
func NewClient3D(c *Client, clientName string) *Client3D {
	return &Client3D{c: c, name: clientName}
}

// Name returns the client name the calls are made for.
func (c *Client3D) Name() string { return c.name }

func (c *Client3D) AddAxes(ctx context.Context, d geometry.Axes3D) (uint64, error) {
	return c.add(ctx, MethodAddAxes, d)
}

func (c *Client3D) AddLine(ctx context.Context, d geometry.Line3D) (uint64, error) {
	return c.add(ctx, MethodAddLine, d)
}

func (c *Client3D) AddTriangle(ctx context.Context, d geometry.Triangle) (uint64, error) {
	return c.add(ctx, MethodAddTriangle, d)
}

func (c *Client3D) AddPlane(ctx context.Context, d geometry.Plane) (uint64, error) {
	return c.add(ctx, MethodAddPlane, d)
}

func (c *Client3D) AddCuboid(ctx context.Context, d geometry.Cuboid) (uint64, error) {
	return c.add(ctx, MethodAddCuboid, d)
}

func (c *Client3D) AddCylinder(ctx context.Context, d geometry.Cylinder) (uint64, error) {
	return c.add(ctx, MethodAddCylinder, d)
}

func (c *Client3D) AddDisc(ctx context.Context, d geometry.Disc) (uint64, error) {
	return c.add(ctx, MethodAddDisc, d)
}

func (c *Client3D) AddSphere(ctx context.Context, d geometry.Sphere) (uint64, error) {
	return c.add(ctx, MethodAddSphere, d)
}

func (c *Client3D) AddMesh(ctx context.Context, d geometry.Mesh3D) (uint64, error) {
	return c.add(ctx, MethodAddMesh, d)
}

// Clear empties this client's scene.
func (c *Client3D) Clear(ctx context.Context) error {
	_, err := c.c.Call(ctx, MethodClear, c.name, nil)
	return err
}

// Remove deletes one entity from this client's scene.
func (c *Client3D) Remove(ctx context.Context, id uint64) error {
	_, err := c.c.Call(ctx, MethodRemove, c.name, RemoveParams{ID: id})
	return err
}

// KillServer asks the viewer to shut down.
func (c *Client3D) KillServer(ctx context.Context) error {
	_, err := c.c.Call(ctx, MethodKillServer, c.name, nil)
	return err
}

func (c *Client3D) add(ctx context.Context, method string, d geometry.Descriptor) (uint64, error) {
	res, err := c.c.Call(ctx, method, c.name, d)
	return res.EntityID, err
}
