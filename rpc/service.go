package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/engine/geometry"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
)

// handler runs one method against the store.
type handler func(store scene.Store, client string, params json.RawMessage) (Result, error)

// method is one entry of a service's method table.
type method struct {
	handle handler
	// needsClient rejects requests without a client name.
	needsClient bool
}

// service binds a method table to the store of one dimensionality.
type service struct {
	store   scene.Store
	methods map[string]method
	logger  *slog.Logger
}

// newService builds the method table matching store.Dim().
func newService(store scene.Store, logger *slog.Logger) *service {
	methods := map[string]method{
		MethodClear:      {handle: clearScene, needsClient: true},
		MethodRemove:     {handle: removeEntity, needsClient: true},
		MethodKillServer: {handle: ack},
	}

	var adds map[string]handler
	switch store.Dim() {
	case geometry.Dim2:
		adds = map[string]handler{
			MethodAddAxes:   add[geometry.Axes2D],
			MethodAddLine:   add[geometry.Line2D],
			MethodAddSquare: add[geometry.Square],
			MethodAddCircle: add[geometry.Circle],
			MethodAddMesh:   add[geometry.Mesh2D],
		}
	case geometry.Dim3:
		adds = map[string]handler{
			MethodAddAxes:     add[geometry.Axes3D],
			MethodAddLine:     add[geometry.Line3D],
			MethodAddTriangle: add[geometry.Triangle],
			MethodAddPlane:    add[geometry.Plane],
			MethodAddCuboid:   add[geometry.Cuboid],
			MethodAddCylinder: add[geometry.Cylinder],
			MethodAddDisc:     add[geometry.Disc],
			MethodAddSphere:   add[geometry.Sphere],
			MethodAddMesh:     add[geometry.Mesh3D],
		}
	}
	for name, h := range adds {
		methods[name] = method{handle: h, needsClient: true}
	}

	return &service{store: store, methods: methods, logger: logger}
}

// handle runs req and builds its response. Panics inside a handler become fatal errors so one bad
// call never takes down the connection.
//
// Parameters:
//   - req: the decoded request
//
// Returns:
//   - Response: the response carrying req.ID
func (s *service) handle(req Request) (resp Response) {
	resp.ID = req.ID
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("[RPC] method panicked", "method", req.Method, "client", req.ClientName, "panic", r)
			resp.Result = nil
			resp.Error = errorBody(fmt.Errorf("%w: %s panicked: %v", geometry.ErrFatal, req.Method, r))
		}
	}()

	result, err := s.call(req)
	if err != nil {
		resp.Error = errorBody(err)
		s.logger.Debug("[RPC] call failed", "method", req.Method, "client", req.ClientName,
			"code", resp.Error.Code, "error", err)
		return resp
	}
	resp.Result = &result
	return resp
}

func (s *service) call(req Request) (Result, error) {
	m, ok := s.methods[req.Method]
	if !ok {
		return Result{}, fmt.Errorf("%w %q on %s", ErrUnknownMethod, req.Method, s.store.Dim())
	}
	if m.needsClient && req.ClientName == "" {
		return Result{}, &paramError{Field: "client_name", Err: errors.New("is required")}
	}
	return m.handle(s.store, req.ClientName, req.Params)
}

// add decodes params as the descriptor D and inserts it.
func add[D geometry.Descriptor](store scene.Store, client string, params json.RawMessage) (Result, error) {
	var d D
	if err := decodeParams(params, &d); err != nil {
		return Result{}, err
	}
	id, err := store.Insert(client, d)
	if err != nil {
		return Result{}, err
	}
	return Result{EntityID: id}, nil
}

func clearScene(store scene.Store, client string, _ json.RawMessage) (Result, error) {
	store.Clear(client)
	return Result{}, nil
}

func removeEntity(store scene.Store, client string, params json.RawMessage) (Result, error) {
	var p RemoveParams
	if err := decodeParams(params, &p); err != nil {
		return Result{}, err
	}
	return Result{}, store.Remove(client, p.ID)
}

func ack(scene.Store, string, json.RawMessage) (Result, error) {
	return Result{}, nil
}

// decodeParams strictly decodes params into v. Missing params and unknown fields are bad requests.
func decodeParams(params json.RawMessage, v any) error {
	if len(bytes.TrimSpace(params)) == 0 || bytes.Equal(bytes.TrimSpace(params), []byte("null")) {
		return &paramError{Err: errors.New("are required")}
	}
	dec := json.NewDecoder(bytes.NewReader(params))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &paramError{Field: typeErr.Field, Err: fmt.Errorf("cannot hold %s", typeErr.Value)}
		}
		return &paramError{Err: err}
	}
	return nil
}
