package query

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-portal/common"
	"github.com/go-gl/mathgl/mgl64"
)

// Segment is one visibility sample: a line of sight from the viewer to a point on a portal opening.
type Segment struct {
	From mgl64.Vec3
	To   mgl64.Vec3
}

// Request asks for the number of unblocked samples to report on one query handle.
type Request struct {
	// Handle is the query the drawn opening was wrapped in.
	Handle Handle
	// Segments are the lines of sight to the opening. An empty request counts zero.
	Segments []Segment
}

// Counter measures how many samples of each request reach their target without passing through an occluder.
type Counter interface {
	// Count returns one passed-sample count per request, in request order.
	//
	// Parameters:
	//   - requests: the requests to count
	//   - occluders: opaque boxes that block a sample when its segment touches them
	//
	// Returns:
	//   - []uint64: counts aligned with requests
	//   - error: error if the counts could not be produced
	Count(requests []Request, occluders []common.Box) ([]uint64, error)
}

// cpuCounter tests every segment against every occluder on the calling goroutine.
type cpuCounter struct{}

var _ Counter = cpuCounter{}

// NewCPUCounter creates a Counter that runs on the CPU. It is the fallback when no GPU device is available.
func NewCPUCounter() Counter {
	return cpuCounter{}
}

func (cpuCounter) Count(requests []Request, occluders []common.Box) ([]uint64, error) {
	counts := make([]uint64, len(requests))
	for i, r := range requests {
		for _, s := range r.Segments {
			if !segmentBlocked(s, occluders) {
				counts[i]++
			}
		}
	}
	return counts, nil
}

func segmentBlocked(s Segment, occluders []common.Box) bool {
	for _, o := range occluders {
		if o.SegmentIntersects(s.From, s.To) {
			return true
		}
	}
	return false
}

// ResolveRequests counts the requests with c and records each count on its handle in p.
// Nothing is recorded when counting fails, so the affected portals render next frame.
//
// Parameters:
//   - p: the pool the handles were acquired from
//   - c: the counter to measure with
//   - requests: this frame's requests
//   - occluders: opaque boxes in the scene
//
// Returns:
//   - error: error if the counter failed or returned the wrong number of counts
func ResolveRequests(p Pool, c Counter, requests []Request, occluders []common.Box) error {
	if len(requests) == 0 {
		return nil
	}
	counts, err := c.Count(requests, occluders)
	if err != nil {
		return fmt.Errorf("failed to count occlusion samples: %w", err)
	}
	if len(counts) != len(requests) {
		return fmt.Errorf("counter returned %d counts for %d requests", len(counts), len(requests))
	}
	for i, r := range requests {
		p.Resolve(r.Handle, counts[i])
	}
	return nil
}
