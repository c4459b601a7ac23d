package camera

import "github.com/chewxy/math32"

// CameraBuilderOption configures a camera in NewOrbitCamera or NewOrthoCamera.
type CameraBuilderOption func(*cameraImpl)

// WithViewport derives the aspect ratio from a framebuffer size. A zero or negative size
// leaves the default square aspect in place.
//
// Parameters:
//   - width: framebuffer width in pixels
//   - height: framebuffer height in pixels
//
// Returns:
//   - CameraBuilderOption: the option
func WithViewport(width, height int) CameraBuilderOption {
	return func(c *cameraImpl) {
		if width > 0 && height > 0 {
			c.aspect = float32(width) / float32(height)
		}
	}
}

// WithFovDegrees sets the vertical field of view of a perspective camera.
func WithFovDegrees(degrees float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = degrees * math32.Pi / 180
	}
}

// WithClipPlanes sets the near and far clipping distances.
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithController attaches ctrl instead of the camera's default controller.
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
