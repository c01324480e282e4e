// Command portaldemo drives the portal visibility pipeline against a small scene: a sealed box of six portal
// faces leading into a scaled-up destination region, one free-standing gate, an orbiting camera and a pillar
// that periodically hides the portals. Occlusion samples for each drawn opening are counted by a compute pass
// on the GPU, or on the CPU when no device is available, and land on the query handle for the next frame.
package main

import (
	"flag"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-portal/common"
	"github.com/Carmen-Shannon/oxy-portal/engine/camera"
	"github.com/Carmen-Shannon/oxy-portal/engine/logging"
	"github.com/Carmen-Shannon/oxy-portal/engine/portal"
	"github.com/Carmen-Shannon/oxy-portal/engine/query"
	"github.com/Carmen-Shannon/oxy-portal/engine/renderer"
	"github.com/Carmen-Shannon/oxy-portal/engine/session"
	"github.com/Carmen-Shannon/oxy-portal/engine/visibility"
	"github.com/Carmen-Shannon/oxy-portal/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	overworld portal.WorldID = "overworld"
	nether    portal.WorldID = "nether"
)

type counters struct {
	culled        int
	rendered      int
	skipped       int
	mispredicted  int
	unitsDrawn    int
	countFailures int
}

func main() {
	frames := flag.Int("frames", 600, "number of frames to run (0 runs until the window closes)")
	headless := flag.Bool("headless", false, "run without a window")
	fallback := flag.Bool("fallback-adapter", false, "request the software fallback adapter")
	verbose := flag.Bool("v", false, "log per-frame diagnostics")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	logging.SetLogger(logger)

	var win window.Window
	if !*headless {
		w, err := window.NewWindow(window.WithTitle("Oxy Portal - Sealed Box"))
		if err != nil {
			logger.Warn("window unavailable, running headless", "error", err)
		} else {
			win = w
			defer win.Close()
		}
	}

	if win == nil && *frames == 0 {
		*frames = 600
	}

	var surface *wgpu.SurfaceDescriptor
	if win != nil {
		surface = win.SurfaceDescriptor()
	}
	counter := query.NewCPUCounter()
	dev, err := renderer.NewDevice(surface, *fallback)
	if err != nil {
		logger.Warn("no GPU device, counting occlusion samples on the CPU", "error", err)
	} else {
		defer dev.Release()
		gpuCounter, err := renderer.NewOcclusionCounter(dev)
		if err != nil {
			logger.Warn("occlusion compute pipeline unavailable, counting on the CPU", "error", err)
		} else {
			defer gpuCounter.Release()
			counter = gpuCounter
		}
	}

	sess := session.NewSession(query.NewPool(query.WithPageSize(64)), session.WithProfiler(time.Second))
	defer sess.Close()
	culler := visibility.NewCuller(sess)
	defer culler.Close()

	box, faces := portal.NewSealedBox(
		mgl64.Vec3{0, 4, 0}, mgl64.Vec3{8, 8, 8},
		mgl64.Vec3{0, 64, 0}, 2,
		overworld, nether,
	)
	gate := portal.NewPortal(
		portal.WithTag("gate"),
		portal.WithOrigin(mgl64.Vec3{0, 2, -20}),
		portal.WithAxes(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}),
		portal.WithSize(3, 4),
		portal.WithDestination(mgl64.Vec3{100, 66, 100}),
		portal.WithWorlds(overworld, nether),
	)
	portals := []portal.PortalLike{box, gate}
	occluders := []common.Box{common.NewBox(mgl64.Vec3{14, -2, -2}, mgl64.Vec3{16, 20, 2})}
	chunks := chunkGrid(mgl64.Vec3{0, 64, 0}, 16, 4)
	units := make([]portal.RenderUnit, 0, len(chunks))

	aspect := 16.0 / 9.0
	if win != nil && win.Height() > 0 {
		aspect = float64(win.Width()) / float64(win.Height())
	}
	cam := camera.NewCamera(
		camera.WithAspect(aspect),
		camera.WithClipPlanes(0.1, 300),
		camera.WithController(camera.NewOrbitController(
			camera.WithTarget(mgl64.Vec3{0, 4, 0}),
			camera.WithRadius(30),
			camera.WithElevation(0.25),
		)),
	)
	if win != nil {
		win.SetResizeCallback(func(width, height int) {
			if height > 0 {
				cam.SetAspect(float64(width) / float64(height))
			}
		})
	}

	var stats counters
	var requests []query.Request
	removedAt := *frames / 2
	frame := func() bool {
		n := sess.BeginFrame()
		if removedAt > 0 && n == int64(removedAt) {
			faces[common.DirectionUp].MarkRemoved()
			logger.Info("removed top face of sealed box", "purged", box.Purge(), "members", box.Len())
		}

		cam.Controller().Orbit(2*math.Pi/240, 0)
		cam.Update()
		view := visibility.View{CameraPos: cam.Position(), Frustum: cam.Frustum()}

		requests = requests[:0]
		for _, p := range portals {
			if p.Removed() {
				continue
			}
			v := culler.Decide(p, portal.NewDescriptor(p), view)
			if v.Mispredicted {
				stats.mispredicted++
			}
			switch v.Decision {
			case visibility.DecisionCulled:
				stats.culled++
				continue
			case visibility.DecisionSkip:
				stats.skipped++
			case visibility.DecisionRender:
				stats.rendered++
				through := cam.ThroughPortal(p)
				units = append(units[:0], chunks...)
				stats.unitsDrawn += len(culler.CullUnits(units, through.Frustum(), p))
			}

			// The opening is drawn either way with the query attached; its count is read next frame.
			requests = append(requests, query.Request{Handle: v.Query, Segments: sampleSegments(p, view.CameraPos)})
		}
		if err := query.ResolveRequests(sess.Pool(), counter, requests, occluders); err != nil {
			stats.countFailures++
			logger.Debug("occlusion counts unavailable this frame", "frame", n, "error", err)
		}
		return true
	}

	var ran int
	if win != nil {
		ran = win.RunFrames(*frames, frame)
	} else {
		for ran = 0; ran < *frames; ran++ {
			frame()
		}
	}

	logger.Info("portal demo finished",
		"frames", ran,
		"rendered", stats.rendered,
		"skipped", stats.skipped,
		"culled", stats.culled,
		"mispredicted", stats.mispredicted,
		"units_drawn", stats.unitsDrawn,
		"count_failures", stats.countFailures,
		"queries_in_use", sess.Pool().InUse(),
		"query_capacity", sess.Pool().Capacity(),
	)
}
