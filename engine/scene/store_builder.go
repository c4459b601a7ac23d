package scene

import "log/slog"

// StoreBuilderOption is a functional option for configuring a Store.
// Use the With* functions to create options.
type StoreBuilderOption func(s *store)

// WithFirstID sets the first entity ID the store hands out. Defaults to 1.
// IDs of 0 are reserved for unassigned entities, so 0 is ignored.
//
// Parameters:
//   - id: the first ID to assign
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithFirstID(id uint64) StoreBuilderOption {
	return func(s *store) {
		if id > 0 {
			s.nextID.Store(id)
		}
	}
}

// WithLogger sets the logger used for store diagnostics. Defaults to common.Logger().
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithLogger(l *slog.Logger) StoreBuilderOption {
	return func(s *store) {
		s.logger = l
	}
}
