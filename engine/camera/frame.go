package camera

import (
	"math"

	"github.com/Carmen-Shannon/splat-go/common"
	"github.com/go-gl/mathgl/mgl32"
)

// FrameMatrices holds the per-frame transforms derived from a camera pose and a viewport.
type FrameMatrices struct {
	Camera         mgl32.Mat4
	View           mgl32.Mat4
	Projection     mgl32.Mat4
	ViewProjection mgl32.Mat4

	// ViewWidth and ViewHeight are the view half extents at unit depth.
	ViewWidth  float32
	ViewHeight float32
}

// ComputeFrameMatrices derives the camera, view, projection and view-projection matrices for one frame.
//
// Parameters:
//   - motion: the camera pose in world space
//   - fovY: the vertical field of view in radians
//   - aspect: the viewport width divided by its height
//   - near: the near plane distance
//   - far: the far plane distance
//
// Returns:
//   - FrameMatrices: the derived matrices
//   - error: common.ErrInvalidProjection if the frustum is degenerate
func ComputeFrameMatrices(motion common.RigidMotion, fovY, aspect, near, far float32) (FrameMatrices, error) {
	viewHeight := float32(math.Tan(float64(fovY) * 0.5))
	viewWidth := aspect * viewHeight
	projection, err := common.PerspectiveProjection(viewWidth, viewHeight, near, far)
	if err != nil {
		return FrameMatrices{}, err
	}
	view := common.MotionToMatrix(motion.Inverse())
	return FrameMatrices{
		Camera:         common.MotionToMatrix(motion),
		View:           view,
		Projection:     projection,
		ViewProjection: common.Mul4(projection, view),
		ViewWidth:      viewWidth,
		ViewHeight:     viewHeight,
	}, nil
}

// Uniforms packs the matrices and viewport into the GPU uniform block.
// The frustum tolerance, ellipse margin and splat scale are left for the caller.
//
// Parameters:
//   - width: the render target width in pixels
//   - height: the render target height in pixels
//
// Returns:
//   - GPUUniforms: the partially filled uniform block
func (f FrameMatrices) Uniforms(width, height uint32) GPUUniforms {
	u := GPUUniforms{
		CameraMatrix:         f.Camera,
		ViewMatrix:           f.View,
		ViewProjectionMatrix: f.ViewProjection,
		ViewSize:             [2]float32{f.ViewWidth, f.ViewHeight},
		ImageSize:            [2]uint32{width, height},
	}
	if width > 0 {
		u.EllipseSizeBias = 0.2 * f.ViewWidth / float32(width)
	}
	return u
}
