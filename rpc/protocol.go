// Package rpc exposes the scene stores over WebSocket. Each message is one JSON request or
// response, matched by id, so a connection can carry many calls at once.
package rpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/engine/geometry"
)

// Method names shared by both services.
const (
	MethodAddAxes    = "AddAxes"
	MethodAddLine    = "AddLine"
	MethodAddMesh    = "AddMesh"
	MethodClear      = "Clear"
	MethodRemove     = "Remove"
	MethodKillServer = "KillServer"
)

// 2D-only method names.
const (
	MethodAddSquare = "AddSquare"
	MethodAddCircle = "AddCircle"
)

// 3D-only method names.
const (
	MethodAddTriangle = "AddTriangle"
	MethodAddPlane    = "AddPlane"
	MethodAddCuboid   = "AddCuboid"
	MethodAddCylinder = "AddCylinder"
	MethodAddDisc     = "AddDisc"
	MethodAddSphere   = "AddSphere"
)

var (
	// ErrBadRequest marks a request whose envelope or params could not be decoded, or that is
	// missing its client name.
	ErrBadRequest = errors.New("bad request")

	// ErrUnknownMethod marks a request for a method the service does not offer.
	ErrUnknownMethod = errors.New("unknown method")
)

// ErrorCode classifies a failed call on the wire.
type ErrorCode string

const (
	CodeInvalidGeometry ErrorCode = "invalid_geometry"
	CodeNotFound        ErrorCode = "not_found"
	CodeFatal           ErrorCode = "fatal"
	CodeBadRequest      ErrorCode = "bad_request"
	CodeUnknownMethod   ErrorCode = "unknown_method"
)

// Request is one call. Params holds the method's descriptor or arguments verbatim.
type Request struct {
	ID         uint64          `json:"id"`
	Method     string          `json:"method"`
	ClientName string          `json:"client_name,omitempty"`
	Params     json.RawMessage `json:"params,omitempty"`
}

// Response answers the Request with the same ID. Exactly one of Result and Error is set.
type Response struct {
	ID     uint64     `json:"id"`
	Result *Result    `json:"result,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

// Result is the success payload. EntityID is set by Add* methods; acks carry an empty object.
type Result struct {
	EntityID uint64 `json:"entity_id,omitempty"`
}

// ErrorBody is the failure payload. Field names the offending descriptor field for
// invalid_geometry and, where known, for bad_request.
type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Field   string    `json:"field,omitempty"`
	Message string    `json:"message"`
}

// RemoveParams is the params object of Remove.
type RemoveParams struct {
	ID uint64 `json:"id"`
}

// paramError is a bad_request tied to one params field.
type paramError struct {
	Field string
	Err   error
}

func (e *paramError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("bad request: params: %v", e.Err)
	}
	return fmt.Sprintf("bad request: params.%s: %v", e.Field, e.Err)
}

func (e *paramError) Unwrap() []error { return []error{ErrBadRequest, e.Err} }

// errorBody maps a call error onto its wire form.
//
// Parameters:
//   - err: the non-nil error returned by a method handler
//
// Returns:
//   - *ErrorBody: the code, field and message to send
func errorBody(err error) *ErrorBody {
	body := &ErrorBody{Message: err.Error()}

	var ige *geometry.InvalidGeometryError
	var pe *paramError
	switch {
	case errors.As(err, &ige):
		body.Code = CodeInvalidGeometry
		body.Field = ige.Field
	case errors.Is(err, geometry.ErrInvalidGeometry):
		body.Code = CodeInvalidGeometry
	case errors.Is(err, geometry.ErrNotFound):
		body.Code = CodeNotFound
	case errors.As(err, &pe):
		body.Code = CodeBadRequest
		body.Field = pe.Field
	case errors.Is(err, ErrBadRequest):
		body.Code = CodeBadRequest
	case errors.Is(err, ErrUnknownMethod):
		body.Code = CodeUnknownMethod
	default:
		body.Code = CodeFatal
	}
	return body
}

// sentinel returns the package error a code re-raises as on the client.
func (c ErrorCode) sentinel() error {
	switch c {
	case CodeInvalidGeometry:
		return geometry.ErrInvalidGeometry
	case CodeNotFound:
		return geometry.ErrNotFound
	case CodeBadRequest:
		return ErrBadRequest
	case CodeUnknownMethod:
		return ErrUnknownMethod
	}
	return geometry.ErrFatal
}
