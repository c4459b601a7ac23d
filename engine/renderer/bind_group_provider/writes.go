package bind_group_provider

// BufferWrite is one queued copy into a buffer bound on a provider.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// UniformWrite returns a write of data to the start of the buffer at binding.
//
// Parameters:
//   - p: the provider holding the buffer
//   - binding: the binding index
//   - data: the bytes to copy
//
// Returns:
//   - BufferWrite: the write
func UniformWrite(p BindGroupProvider, binding int, data []byte) BufferWrite {
	return BufferWrite{Provider: p, Binding: binding, Data: data}
}

// Empty reports whether the write has nothing to copy or no provider to copy into.
func (w BufferWrite) Empty() bool {
	return w.Provider == nil || len(w.Data) == 0
}
