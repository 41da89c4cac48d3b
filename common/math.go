package common

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidProjection is returned when perspective projection parameters cannot describe a frustum.
var ErrInvalidProjection = errors.New("invalid perspective projection")

// RigidMotion is a rotation followed by a translation. It describes the pose of the camera in world space.
type RigidMotion struct {
	// Position is the translation part of the motion in world space.
	Position mgl32.Vec3
	// Orientation is the rotation part of the motion. It is expected to be a unit quaternion.
	Orientation mgl32.Quat
}

// IdentityMotion returns the motion that leaves every point in place.
//
// Returns:
//   - RigidMotion: a motion at the origin with no rotation
func IdentityMotion() RigidMotion {
	return RigidMotion{Orientation: mgl32.QuatIdent()}
}

// Inverse returns the motion that undoes m. Applying m then m.Inverse() yields the identity.
//
// Returns:
//   - RigidMotion: the inverse motion
func (m RigidMotion) Inverse() RigidMotion {
	inv := m.Orientation.Normalize().Conjugate()
	return RigidMotion{
		Position:    inv.Rotate(m.Position).Mul(-1),
		Orientation: inv,
	}
}

// Apply transforms a point by the motion.
//
// Parameters:
//   - p: the point to transform
//
// Returns:
//   - mgl32.Vec3: the rotated and translated point
func (m RigidMotion) Apply(p mgl32.Vec3) mgl32.Vec3 {
	return m.Orientation.Normalize().Rotate(p).Add(m.Position)
}

// MotionToMatrix converts a rigid motion into a 4x4 column-major transform.
// The camera matrix is MotionToMatrix(pose); the view matrix is MotionToMatrix(pose.Inverse()).
//
// Parameters:
//   - m: the rigid motion to convert
//
// Returns:
//   - mgl32.Mat4: the equivalent homogeneous transform
func MotionToMatrix(m RigidMotion) mgl32.Mat4 {
	out := m.Orientation.Normalize().Mat4()
	out[12], out[13], out[14] = m.Position[0], m.Position[1], m.Position[2]
	return out
}

// Mul4 multiplies two 4x4 matrices. All matrices are stored in column-major order
// (OpenGL/WebGPU convention). Result: a * b, so b is applied first.
//
// Parameters:
//   - a: left-hand matrix
//   - b: right-hand matrix
//
// Returns:
//   - mgl32.Mat4: the product a * b
func Mul4(a, b mgl32.Mat4) mgl32.Mat4 {
	return a.Mul4(b)
}

// PerspectiveProjection creates a perspective projection from the view half extents at unit depth.
// The view looks down -Z and maps depth to the WebGPU clip range [0, 1], near plane to 0 and far plane to 1.
//
// Parameters:
//   - halfWidth: half of the view width at distance 1 (tan of half the horizontal fov)
//   - halfHeight: half of the view height at distance 1 (tan of half the vertical fov)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
//   - error: ErrInvalidProjection if the parameters do not describe a frustum
func PerspectiveProjection(halfWidth, halfHeight, near, far float32) (mgl32.Mat4, error) {
	if !(near > 0) || !(far > near) {
		return mgl32.Mat4{}, fmt.Errorf("%w: near %v, far %v (need 0 < near < far)", ErrInvalidProjection, near, far)
	}
	if !(halfWidth > 0) || !(halfHeight > 0) {
		return mgl32.Mat4{}, fmt.Errorf("%w: half extents %v x %v must be positive", ErrInvalidProjection, halfWidth, halfHeight)
	}

	var out mgl32.Mat4
	out[0] = 1 / halfWidth
	out[5] = 1 / halfHeight
	out[10] = far / (near - far)
	out[11] = -1
	out[14] = (near * far) / (near - far)
	return out, nil
}

// TransformPoint applies m to a homogeneous point. The caller is responsible for the perspective division.
//
// Parameters:
//   - m: the transform to apply
//   - p: the homogeneous point
//
// Returns:
//   - mgl32.Vec4: the transformed homogeneous point
func TransformPoint(m mgl32.Mat4, p mgl32.Vec4) mgl32.Vec4 {
	return m.Mul4x1(p)
}
