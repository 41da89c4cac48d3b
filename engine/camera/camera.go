package camera

import (
	"sync"

	"github.com/Carmen-Shannon/splat-go/common"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	motion     common.RigidMotion
	controller OrbitController
}

// Camera holds the pose handed to the renderer every frame.
// The pose is either set directly or read from an attached OrbitController via Update().
type Camera interface {
	// Motion returns the current camera pose.
	//
	// Returns:
	//   - common.RigidMotion: camera to world motion
	Motion() common.RigidMotion

	// SetMotion replaces the camera pose.
	//
	// Parameters:
	//   - m: the new camera to world motion
	SetMotion(m common.RigidMotion)

	// LookAt places the camera at eye, facing target.
	//
	// Parameters:
	//   - eye: the camera position
	//   - target: the point to face
	//   - up: the world up direction
	LookAt(eye, target, up mgl32.Vec3)

	// Controller returns the attached OrbitController, or nil.
	//
	// Returns:
	//   - OrbitController: the attached controller or nil
	Controller() OrbitController

	// Update copies the controller pose into the camera. It does nothing without a controller.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera at the origin looking down -Z.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		motion: common.IdentityMotion(),
	}
	for _, option := range options {
		option(c)
	}
	c.Update()
	return c
}

func (c *cameraImpl) Motion() common.RigidMotion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.motion
}

func (c *cameraImpl) SetMotion(m common.RigidMotion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.motion = m
}

func (c *cameraImpl) LookAt(eye, target, up mgl32.Vec3) {
	c.SetMotion(LookAtMotion(eye, target, up))
}

func (c *cameraImpl) Controller() OrbitController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return
	}
	c.motion = c.controller.Motion()
}

// LookAtMotion builds the camera pose at eye facing target, with the camera's -Z axis pointing at target.
// If eye and target coincide the orientation is the identity.
//
// Parameters:
//   - eye: the camera position
//   - target: the point to face
//   - up: the world up direction
//
// Returns:
//   - common.RigidMotion: camera to world motion
func LookAtMotion(eye, target, up mgl32.Vec3) common.RigidMotion {
	if eye.ApproxEqual(target) {
		return common.RigidMotion{Position: eye, Orientation: mgl32.QuatIdent()}
	}
	view := mgl32.LookAtV(eye, target, up)
	// the view rotation is orthonormal, so the camera rotation is its transpose
	rotation := view.Mat3().Transpose().Mat4()
	return common.RigidMotion{
		Position:    eye,
		Orientation: mgl32.Mat4ToQuat(rotation).Normalize(),
	}
}
