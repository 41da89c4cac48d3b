// Command splatview renders a generated Gaussian splat field in a window with an orbit camera.
//
// Drag with the left mouse button to orbit, scroll to zoom and press Escape to quit.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Carmen-Shannon/splat-go/common"
	"github.com/Carmen-Shannon/splat-go/engine/camera"
	"github.com/Carmen-Shannon/splat-go/engine/profiler"
	"github.com/Carmen-Shannon/splat-go/engine/renderer"
	"github.com/Carmen-Shannon/splat-go/engine/scene"
	"github.com/Carmen-Shannon/splat-go/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// orbitSensitivity converts dragged pixels to radians.
const orbitSensitivity = 0.005

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "splatview:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		sortingName = flag.String("sorting", "gpu", "depth sorting: none, cpu, gpu or gpu-indirect")
		count       = flag.Int("count", 100_000, "number of generated splats")
		seed        = flag.Uint64("seed", 1, "generator seed")
		shOrder     = flag.Int("sh", 2, "spherical harmonics order, 0 to 3")
		radius      = flag.Float64("radius", 10, "radius of the generated field")
		width       = flag.Int("width", 1280, "window width")
		height      = flag.Int("height", 720, "window height")
		vsync       = flag.Bool("vsync", true, "wait for vertical blank")
		validate    = flag.Bool("validate", false, "compile shaders with naga before the first frame")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	mode, err := renderer.ParseDepthSorting(*sortingName)
	if err != nil {
		return err
	}
	presentMode := renderer.PresentModeVSync
	if !*vsync {
		presentMode = renderer.PresentModeUncapped
	}

	win, err := window.NewWindow(
		window.WithTitle("splatview"),
		window.WithSize(*width, *height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	cfg, err := renderer.NewConfiguration(
		renderer.WithSurface(renderer.DefaultConfiguration().SurfaceFormat, uint32(win.Width()), uint32(win.Height())),
		renderer.WithPresentMode(presentMode),
		renderer.WithDepthSorting(mode),
		renderer.WithSphericalHarmonicsOrder(*shOrder),
		renderer.WithMaxSplatCount(max(*count, 1)),
	)
	if err != nil {
		return err
	}

	r, err := renderer.NewRenderer(cfg,
		renderer.WithWindow(win),
		renderer.WithShaderValidation(*validate),
		renderer.WithProfiler(profiler.NewProfiler(profiler.WithUpdateInterval(2*time.Second))),
	)
	if err != nil {
		return err
	}
	defer r.Release()

	sc := scene.NewScene(
		scene.WithSHOrder(*shOrder),
		scene.WithSplats(scene.GenerateField(*seed, *count, *shOrder, float32(*radius))),
	)
	defer sc.Release()

	orbit := camera.NewOrbitController(
		camera.WithRadius(float32(*radius)*2.5),
		camera.WithTarget(mgl32.Vec3{}),
		camera.WithElevation(0.3),
		camera.WithRadiusBounds(0.5, float32(*radius)*20),
	)
	cam := camera.NewCamera(camera.WithController(orbit))

	win.SetDragCallback(func(dx, dy float32) {
		orbit.Orbit(-dx*orbitSensitivity, dy*orbitSensitivity)
	})
	win.SetScrollCallback(func(delta float32) {
		orbit.Zoom(delta)
	})
	win.SetResizeCallback(func(w, h int) {
		if err := r.Resize(uint32(w), uint32(h)); err != nil {
			common.Logger().Warn("resize failed", "width", w, "height", h, "error", err)
		}
	})

	var frameErr error
	win.SetUpdateCallback(func() {
		cam.Update()
		target, err := r.AcquireSurfaceTarget()
		if err != nil {
			common.Logger().Debug("no surface image", "error", err)
			return
		}
		if err := r.RenderFrame(cam.Motion(), sc, target); err != nil {
			frameErr = err
			win.RequestClose()
			return
		}
		r.Present()
	})

	common.Logger().Info("splatview started", "splats", *count, "sorting", mode, "sh", *shOrder)
	win.ProcessMessages()
	return frameErr
}
