package common

// Key codes delivered by window key callbacks. They match GLFW key codes, which use ASCII for
// printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87
	KeyA     = 65
	KeyS     = 83
	KeyD     = 68
	KeyQ     = 81
	KeyE     = 69
	KeyR     = 82
	KeyMinus = 45
	KeyEqual = 61 // unshifted "+"
	KeyEsc   = 256

	KeyRight    = 262
	KeyLeft     = 263
	KeyDown     = 264
	KeyUp       = 265
	KeyPageUp   = 266
	KeyPageDown = 267
	KeyHome     = 268

	KeyKPSubtract = 333
	KeyKPAdd      = 334
)
