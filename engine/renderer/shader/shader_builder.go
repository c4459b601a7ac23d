package shader

// ShaderBuilderOption configures a shader before its source is parsed.
type ShaderBuilderOption func(*shader)

// WithEntryPoint selects a named entry point when the source declares several for the stage.
//
// Parameters:
//   - name: the entry point function name
//
// Returns:
//   - ShaderBuilderOption: a function that applies the entry point to a shader
func WithEntryPoint(name string) ShaderBuilderOption {
	return func(s *shader) {
		s.entryPoint = name
	}
}
