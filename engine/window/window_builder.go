package window

// WindowBuilderOption configures NewWindow.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the title bar text.
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial size in screen coordinates. Non-positive values keep the
// 1280x720 default.
//
// Parameters:
//   - width: initial width
//   - height: initial height
//
// Returns:
//   - WindowBuilderOption: the option
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 {
			w.requestedWidth = width
		}
		if height > 0 {
			w.requestedHeight = height
		}
	}
}

// WithMinSize sets the smallest size the user can resize to. Zero leaves that axis
// unbounded.
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth = width
		w.minHeight = height
	}
}
