package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/geometry"
	"github.com/stretchr/testify/assert"
)

func TestErrorBodyCodes(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		code  ErrorCode
		field string
	}{
		{
			name:  "invalid geometry names the field",
			err:   &geometry.InvalidGeometryError{Kind: geometry.KindCircle, Field: "radius", Reason: "must be > 0"},
			code:  CodeInvalidGeometry,
			field: "radius",
		},
		{name: "wrapped not found", err: fmt.Errorf("client %q: %w", "alice", geometry.ErrNotFound), code: CodeNotFound},
		{name: "fatal", err: &geometry.FatalError{Msg: "boom"}, code: CodeFatal},
		{name: "unclassified is fatal", err: errors.New("disk on fire"), code: CodeFatal},
		{name: "param error", err: &paramError{Field: "num_sides", Err: errors.New("bad")}, code: CodeBadRequest, field: "num_sides"},
		{name: "bare bad request", err: fmt.Errorf("%w: junk", ErrBadRequest), code: CodeBadRequest},
		{name: "unknown method", err: fmt.Errorf("%w %q", ErrUnknownMethod, "Fly"), code: CodeUnknownMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := errorBody(tt.err)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.field, body.Field)
			assert.Equal(t, tt.err.Error(), body.Message)
		})
	}
}

func TestRemoteErrorMatchesSentinels(t *testing.T) {
	for code, sentinel := range map[ErrorCode]error{
		CodeInvalidGeometry: geometry.ErrInvalidGeometry,
		CodeNotFound:        geometry.ErrNotFound,
		CodeFatal:           geometry.ErrFatal,
		CodeBadRequest:      ErrBadRequest,
		CodeUnknownMethod:   ErrUnknownMethod,
	} {
		var err error = &RemoteError{Method: "AddLine", Code: code, Message: "x"}
		assert.ErrorIs(t, err, sentinel, code)
		if code != CodeNotFound {
			assert.NotErrorIs(t, err, geometry.ErrNotFound, code)
		}
	}
}

func TestResponseWireShape(t *testing.T) {
	ok, err := json.Marshal(Response{ID: 7, Result: &Result{EntityID: 12}})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"result":{"entity_id":12}}`, string(ok))

	acked, err := json.Marshal(Response{ID: 8, Result: &Result{}})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"id":8,"result":{}}`, string(acked))

	failed, err := json.Marshal(Response{ID: 9, Error: &ErrorBody{Code: CodeInvalidGeometry, Field: "radius", Message: "m"}})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"id":9,"error":{"code":"invalid_geometry","field":"radius","message":"m"}}`, string(failed))
}
