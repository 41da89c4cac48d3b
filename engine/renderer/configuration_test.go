package renderer

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/splat-go/engine/sorting"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewConfigurationDefaults(t *testing.T) {
	cfg, err := NewConfiguration()
	if err != nil {
		t.Fatalf("NewConfiguration() error = %v", err)
	}
	if cfg != DefaultConfiguration() {
		t.Errorf("NewConfiguration() = %+v, want DefaultConfiguration()", cfg)
	}
	if cfg.DepthSorting != DepthSortingGPU || cfg.FieldOfViewY != math.Pi/2 {
		t.Errorf("defaults: sorting %v fov %v, want gpu and pi/2", cfg.DepthSorting, cfg.FieldOfViewY)
	}
}

func TestNewConfigurationOptions(t *testing.T) {
	cfg, err := NewConfiguration(
		WithSurface(wgpu.TextureFormatRGBA8Unorm, 640, 480),
		WithPresentMode(PresentModeUncapped),
		WithDepthSorting(DepthSortingCPU),
		WithCovarianceForScale(true),
		WithUnalignedRectangles(true),
		WithSphericalHarmonicsOrder(3),
		WithMaxSplatCount(1000),
		WithRadixBitsPerDigit(4),
		WithFrustumCullingTolerance(1.1),
		WithEllipseMargin(3),
		WithSplatScale(0.5),
		WithProjection(1, 0.1, 100),
	)
	if err != nil {
		t.Fatalf("NewConfiguration() error = %v", err)
	}
	want := Configuration{
		SurfaceFormat:           wgpu.TextureFormatRGBA8Unorm,
		SurfaceWidth:            640,
		SurfaceHeight:           480,
		PresentMode:             PresentModeUncapped,
		DepthSorting:            DepthSortingCPU,
		UseCovarianceForScale:   true,
		UseUnalignedRectangles:  true,
		SphericalHarmonicsOrder: 3,
		MaxSplatCount:           1000,
		RadixBitsPerDigit:       4,
		FrustumCullingTolerance: 1.1,
		EllipseMargin:           3,
		SplatScale:              0.5,
		NearPlane:               0.1,
		FarPlane:                100,
		FieldOfViewY:            1,
	}
	if cfg != want {
		t.Errorf("NewConfiguration() = %+v, want %+v", cfg, want)
	}
	if l := cfg.RadixLayout(); l.DigitPlaces != 8 || l.Base != 16 {
		t.Errorf("RadixLayout() places %d base %d, want 8 and 16", l.DigitPlaces, l.Base)
	}
}

func TestConfigurationValidate(t *testing.T) {
	tests := []struct {
		name   string
		option ConfigurationOption
		field  string
	}{
		{"zero width", WithSurface(wgpu.TextureFormatBGRA8UnormSrgb, 0, 600), "SurfaceSize"},
		{"unknown sorting", WithDepthSorting(DepthSorting(9)), "DepthSorting"},
		{"negative sh order", WithSphericalHarmonicsOrder(-1), "SphericalHarmonicsOrder"},
		{"sh order too high", WithSphericalHarmonicsOrder(4), "SphericalHarmonicsOrder"},
		{"zero capacity", WithMaxSplatCount(0), "MaxSplatCount"},
		{"capacity beyond dispatch limit", WithMaxSplatCount(sorting.MaxCapacity() + 1), "MaxSplatCount"},
		{"zero radix bits", WithRadixBitsPerDigit(0), "RadixBitsPerDigit"},
		{"too many radix bits", WithRadixBitsPerDigit(9), "RadixBitsPerDigit"},
		{"tolerance of one", WithFrustumCullingTolerance(1), "FrustumCullingTolerance"},
		{"zero margin", WithEllipseMargin(0), "EllipseMargin"},
		{"zero scale", WithSplatScale(0), "SplatScale"},
		{"zero near", WithProjection(1, 0, 10), "NearPlane"},
		{"near equals far", WithProjection(1, 10, 10), "FarPlane"},
		{"far before near", WithProjection(1, 10, 5), "FarPlane"},
		{"flat fov", WithProjection(math.Pi, 1, 10), "FieldOfViewY"},
		{"nan fov", WithProjection(float32(math.NaN()), 1, 10), "FieldOfViewY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfiguration(tt.option)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("NewConfiguration() error = %v, want *ConfigurationError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("errors.Is(err, ErrConfiguration) = false")
			}
		})
	}
}

func TestParseDepthSorting(t *testing.T) {
	for d := DepthSortingNone; d <= DepthSortingGPUIndirectDraw; d++ {
		got, err := ParseDepthSorting(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDepthSorting(%q) = %v, %v, want %v", d.String(), got, err, d)
		}
	}
	if _, err := ParseDepthSorting("bubble"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("ParseDepthSorting(\"bubble\") error = %v, want ErrConfiguration", err)
	}
	if got := DepthSorting(9).String(); got != "DepthSorting(9)" {
		t.Errorf("DepthSorting(9).String() = %q", got)
	}
}

func TestRadixLayoutPanicsOnInvalidConfiguration(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("RadixLayout() on an invalid configuration did not panic")
		}
	}()
	cfg := DefaultConfiguration()
	cfg.RadixBitsPerDigit = 0
	cfg.RadixLayout()
}
