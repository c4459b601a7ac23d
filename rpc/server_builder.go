package rpc

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
)

// ServerBuilderOption is a functional option for configuring a Server.
// Use the With* functions to create options.
type ServerBuilderOption func(s *server)

// WithAddress sets the host:port ListenAndServe binds. Defaults to DefaultAddress.
//
// Parameters:
//   - addr: the listen address
//
// Returns:
//   - ServerBuilderOption: option function to apply
func WithAddress(addr string) ServerBuilderOption {
	return func(s *server) {
		s.addr = addr
	}
}

// WithWorkers sets how many calls the worker pool runs at once. Values below 1 keep the default.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - ServerBuilderOption: option function to apply
func WithWorkers(n int) ServerBuilderOption {
	return func(s *server) {
		if n >= 1 {
			s.workers = n
		}
	}
}

// WithService mounts a service for store at /d2 or /d3, matching store.Dim().
// A second store of the same dimensionality replaces the first.
//
// Parameters:
//   - store: the scene store the service writes to
//
// Returns:
//   - ServerBuilderOption: option function to apply
func WithService(store scene.Store) ServerBuilderOption {
	return func(s *server) {
		s.stores = append(s.stores, store)
	}
}

// WithMaxMessageSize caps the size of one inbound message in bytes. Large meshes need a generous
// limit. Values below 1 keep the default.
//
// Parameters:
//   - n: the limit in bytes
//
// Returns:
//   - ServerBuilderOption: option function to apply
func WithMaxMessageSize(n int64) ServerBuilderOption {
	return func(s *server) {
		if n >= 1 {
			s.maxMessageSize = n
		}
	}
}

// WithServerLogger sets the logger for connection and call diagnostics. Defaults to common.Logger().
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - ServerBuilderOption: option function to apply
func WithServerLogger(l *slog.Logger) ServerBuilderOption {
	return func(s *server) {
		s.logger = l
	}
}
