package camera

import (
	"github.com/Carmen-Shannon/splat-go/common"
	"github.com/go-gl/mathgl/mgl32"
)

type CameraBuilderOption func(*cameraImpl)

// WithMotion sets the initial camera pose.
//
// Parameters:
//   - m: camera to world motion
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera pose
func WithMotion(m common.RigidMotion) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.motion = m
	}
}

// WithLookAt places the camera at eye facing target.
//
// Parameters:
//   - eye: the camera position
//   - target: the point to face
//   - up: the world up direction
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera pose
func WithLookAt(eye, target, up mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.motion = LookAtMotion(eye, target, up)
	}
}

// WithController attaches an OrbitController. The camera pose follows it on every Update().
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: a function that attaches the controller
func WithController(ctrl OrbitController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
