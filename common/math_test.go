package common

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-5

func TestMotionToMatrixIdentity(t *testing.T) {
	got := MotionToMatrix(IdentityMotion())
	if !got.ApproxEqualThreshold(mgl32.Ident4(), eps) {
		t.Errorf("MotionToMatrix(identity) = %v, want identity", got)
	}

	// The zero value has a zero quaternion and must still behave as the identity.
	got = MotionToMatrix(RigidMotion{})
	if !got.ApproxEqualThreshold(mgl32.Ident4(), eps) {
		t.Errorf("MotionToMatrix(RigidMotion{}) = %v, want identity", got)
	}
}

func TestMotionToMatrixMatchesApply(t *testing.T) {
	m := RigidMotion{
		Position:    mgl32.Vec3{1, 2, 3},
		Orientation: mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0}),
	}
	p := mgl32.Vec3{1, 0, 0}

	want := mgl32.Vec3{1, 2, 2}
	if got := m.Apply(p); !got.ApproxEqualThreshold(want, eps) {
		t.Errorf("Apply(%v) = %v, want %v", p, got, want)
	}

	h := TransformPoint(MotionToMatrix(m), p.Vec4(1))
	if got := h.Vec3(); !got.ApproxEqualThreshold(want, eps) {
		t.Errorf("TransformPoint(MotionToMatrix(m), %v) = %v, want %v", p, got, want)
	}
	if h[3] != 1 {
		t.Errorf("TransformPoint w = %v, want 1", h[3])
	}
}

func TestRigidMotionInverse(t *testing.T) {
	m := RigidMotion{
		Position:    mgl32.Vec3{-4, 0.5, 7},
		Orientation: mgl32.QuatRotate(0.7, mgl32.Vec3{1, 1, 0}.Normalize()),
	}
	got := Mul4(MotionToMatrix(m), MotionToMatrix(m.Inverse()))
	ident := mgl32.Ident4()
	for i := range got {
		if d := got[i] - ident[i]; d > 1e-5 || d < -1e-5 {
			t.Errorf("(M * M^-1)[%d] = %v, want %v", i, got[i], ident[i])
		}
	}

	p := mgl32.Vec3{3, -2, 5}
	if back := m.Apply(m.Inverse().Apply(p)); !back.ApproxEqualThreshold(p, 1e-4) {
		t.Errorf("Apply(Inverse().Apply(%v)) = %v, want %v", p, back, p)
	}
}

func TestMul4Order(t *testing.T) {
	translate := mgl32.Translate3D(10, 0, 0)
	scale := mgl32.Scale3D(2, 2, 2)

	// Mul4(a, b) applies b first.
	got := TransformPoint(Mul4(translate, scale), mgl32.Vec4{1, 0, 0, 1})
	want := mgl32.Vec4{12, 0, 0, 1}
	if !got.ApproxEqualThreshold(want, eps) {
		t.Errorf("(T*S)p = %v, want %v", got, want)
	}
}

func TestPerspectiveProjectionDepthRange(t *testing.T) {
	proj, err := PerspectiveProjection(1, 1, 1, 1000)
	if err != nil {
		t.Fatalf("PerspectiveProjection() error = %v", err)
	}

	tests := []struct {
		name  string
		point mgl32.Vec4
		wantZ float32
	}{
		{"near plane", mgl32.Vec4{0, 0, -1, 1}, 0},
		{"far plane", mgl32.Vec4{0, 0, -1000, 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := TransformPoint(proj, tt.point)
			if z := h[2] / h[3]; !mgl32.FloatEqualThreshold(z, tt.wantZ, 1e-4) {
				t.Errorf("clip z = %v, want %v", z, tt.wantZ)
			}
		})
	}

	// A point on the edge of the half extents lands on the clip boundary.
	h := TransformPoint(proj, mgl32.Vec4{5, -5, -5, 1})
	if x, y := h[0]/h[3], h[1]/h[3]; !mgl32.FloatEqualThreshold(x, 1, eps) || !mgl32.FloatEqualThreshold(y, -1, eps) {
		t.Errorf("clip xy = (%v, %v), want (1, -1)", x, y)
	}
}

func TestPerspectiveProjectionInvalid(t *testing.T) {
	tests := []struct {
		name                 string
		hw, hh, near, far    float32
	}{
		{"near equals far", 1, 1, 10, 10},
		{"near beyond far", 1, 1, 10, 1},
		{"zero near", 1, 1, 0, 10},
		{"negative near", 1, 1, -1, 10},
		{"zero width", 0, 1, 1, 10},
		{"nan height", 1, float32(math.NaN()), 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PerspectiveProjection(tt.hw, tt.hh, tt.near, tt.far)
			if !errors.Is(err, ErrInvalidProjection) {
				t.Errorf("PerspectiveProjection() error = %v, want ErrInvalidProjection", err)
			}
		})
	}
}

func TestSliceToBytes(t *testing.T) {
	if got := SliceToBytes([]uint32(nil)); got != nil {
		t.Errorf("SliceToBytes(nil) = %v, want nil", got)
	}

	data := []uint32{1, 0xDEADBEEF}
	b := SliceToBytes(data)
	if len(b) != 8 {
		t.Fatalf("len(SliceToBytes) = %d, want 8", len(b))
	}
	if got := binary.LittleEndian.Uint32(b[4:]); got != 0xDEADBEEF {
		t.Errorf("second word = %#x, want 0xdeadbeef", got)
	}

	// The view shares memory with the source.
	data[0] = 7
	if b[0] != 7 {
		t.Errorf("byte view did not observe source write")
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce(0, 0, 3, 4); got != 3 {
		t.Errorf("Coalesce() = %d, want 3", got)
	}
	if got := Coalesce("", ""); got != "" {
		t.Errorf("Coalesce() = %q, want empty", got)
	}
}
