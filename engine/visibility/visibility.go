// Package visibility is the per-frame consumer of portal presentation state: it decides whether a portal's
// interior is rendered or skipped from last frame's occlusion result, detects mispredictions, and culls
// destination-side render units.
package visibility

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-portal/common"
	"github.com/Carmen-Shannon/oxy-portal/engine/logging"
	"github.com/Carmen-Shannon/oxy-portal/engine/portal"
	"github.com/Carmen-Shannon/oxy-portal/engine/query"
	"github.com/Carmen-Shannon/oxy-portal/engine/session"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultBatchSize is the number of render units tested per worker task.
const DefaultBatchSize = 512

// Decision is the outcome of Decide for one portal on one frame.
type Decision int

const (
	// DecisionCulled means the portal is outside the view; no query was issued.
	DecisionCulled Decision = iota
	// DecisionRender means the portal's interior must be fully rendered.
	DecisionRender
	// DecisionSkip means last frame's query saw no samples; only the opening is drawn, with the query attached.
	DecisionSkip
)

func (d Decision) String() string {
	switch d {
	case DecisionRender:
		return "render"
	case DecisionSkip:
		return "skip"
	default:
		return "culled"
	}
}

// View is the camera state a decision is made against.
type View struct {
	// CameraPos is the camera position in the portal's origin world.
	CameraPos mgl64.Vec3
	// Frustum is the view frustum, or nil to skip frustum tests.
	Frustum *common.Frustum
}

// Verdict is the result of Decide.
type Verdict struct {
	// Decision says what to draw.
	Decision Decision
	// Query is the handle to wrap this frame's draw of the opening in. Unset when culled.
	Query query.Handle
	// HasQuery reports whether Query is set.
	HasQuery bool
	// Mispredicted reports whether last frame's skip turned out wrong.
	Mispredicted bool
}

// Culler makes per-portal render decisions for one session. Not safe for concurrent use except that CullUnits
// fans its own work out to a worker pool and waits for it before returning.
type Culler interface {
	// Decide returns this frame's decision for p along the render path desc.
	// Missing or unresolved results, and portals that mispredict frequently, always render.
	//
	// Parameters:
	//   - p: the portal or group
	//   - desc: the render path leading to p
	//   - view: the camera state
	//
	// Returns:
	//   - Verdict: what to draw and which query to issue
	Decide(p portal.PortalLike, desc portal.Descriptor, view View) Verdict

	// CullUnits keeps the units that intersect the frustum and then applies through's additional cull.
	// The input slice is filtered in place.
	//
	// Parameters:
	//   - units: candidate render units
	//   - frustum: the view frustum, or nil to skip the frustum test
	//   - through: the portal the units are seen through, or nil
	//
	// Returns:
	//   - []portal.RenderUnit: the surviving units
	CullUnits(units []portal.RenderUnit, frustum *common.Frustum, through portal.PortalLike) []portal.RenderUnit

	// Close stops the worker pool. CullUnits keeps working afterwards but tests every unit on the calling
	// goroutine. Safe to call more than once.
	Close()
}

// cullerImpl is the implementation of the Culler interface.
type cullerImpl struct {
	session   session.Session
	logger    *slog.Logger
	workers   int
	batchSize int
	pool      worker.DynamicWorkerPool
	closed    bool
}

var _ Culler = &cullerImpl{}

// NewCuller creates a Culler bound to s. Panics if s is nil.
//
// Parameters:
//   - s: the render session
//   - options: functional options to configure the culler
//
// Returns:
//   - Culler: the new culler
func NewCuller(s session.Session, options ...CullerBuilderOption) Culler {
	if s == nil {
		panic("visibility: NewCuller requires a non-nil Session")
	}
	c := &cullerImpl{
		session:   s,
		workers:   max(runtime.NumCPU()-1, 1),
		batchSize: DefaultBatchSize,
	}
	for _, opt := range options {
		opt(c)
	}

	// Initialize the pool after options so WithWorkers can override the default.
	c.pool = worker.NewDynamicWorkerPool(c.workers, 256, 1*time.Second)
	return c
}

func (c *cullerImpl) Decide(p portal.PortalLike, desc portal.Descriptor, view View) Verdict {
	if !p.IsRoughlyVisibleTo(view.CameraPos) {
		return Verdict{Decision: DecisionCulled}
	}
	if view.Frustum != nil && !view.Frustum.IntersectsBox(p.ExactAreaBox()) {
		return Verdict{Decision: DecisionCulled}
	}

	st := c.session.Presentation(p)
	qp := c.session.Pool()

	var verdict Verdict
	var samples uint64
	resolved := false
	if last, ok := st.LastFrameQuery(desc); ok {
		samples, resolved = qp.Result(last)
	}

	if resolved && samples > 0 && st.LastFrameRendered() == common.False {
		st.OnMispredict()
		verdict.Mispredicted = true
		logging.Or(c.logger).Debug("portal visibility mispredicted",
			"portal", p.Discriminator(), "path", desc.String(), "samples", samples)
	}

	verdict.Query = st.AcquireThisFrameQuery(desc)
	verdict.HasQuery = true

	switch {
	case st.IsFrequentlyMispredicted(), !resolved, samples > 0:
		verdict.Decision = DecisionRender
	default:
		verdict.Decision = DecisionSkip
	}
	st.SetThisFrameRendered(verdict.Decision == DecisionRender)
	return verdict
}

func (c *cullerImpl) CullUnits(units []portal.RenderUnit, frustum *common.Frustum, through portal.PortalLike) []portal.RenderUnit {
	if frustum != nil && len(units) > 0 {
		keep := c.frustumMask(units, frustum)
		n := 0
		for i, u := range units {
			if keep[i] {
				units[n] = u
				n++
			}
		}
		clear(units[n:])
		units = units[:n]
	}
	if through != nil {
		units = through.DoAdditionalRenderingCull(units)
	}
	return units
}

func (c *cullerImpl) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.pool.Stop()
	logging.Or(c.logger).Debug("culler worker pool stopped", "workers", c.workers)
}

// frustumMask tests every unit against the frustum. Large inputs are split into batches and tested on the
// worker pool; a WaitGroup provides the per-call barrier since the pool itself outlives the call.
func (c *cullerImpl) frustumMask(units []portal.RenderUnit, frustum *common.Frustum) []bool {
	keep := make([]bool, len(units))
	if c.closed || len(units) <= c.batchSize {
		for i, u := range units {
			keep[i] = frustum.IntersectsBox(u.BoundingBox())
		}
		return keep
	}

	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < len(units); start += c.batchSize {
		end := min(start+c.batchSize, len(units))
		batch := units[start:end]
		mask := keep[start:end]

		wg.Add(1)
		c.pool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				for i, u := range batch {
					mask[i] = frustum.IntersectsBox(u.BoundingBox())
				}
				return nil, nil
			},
		})
		taskID++
	}
	wg.Wait()
	return keep
}
