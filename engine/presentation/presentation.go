// Package presentation keeps per-portal occlusion-query bookkeeping across frames. GPU occlusion results arrive
// one frame late, so each portal holds two query sets: the one being issued this frame and the one issued last
// frame, whose results can now be read.
package presentation

import (
	"time"

	"github.com/Carmen-Shannon/oxy-portal/common"
	"github.com/Carmen-Shannon/oxy-portal/engine/portal"
	"github.com/Carmen-Shannon/oxy-portal/engine/query"
)

// State is the presentation bookkeeping of one portal (or portal group).
// Every query accessor first brings the state up to the current frame: on a consecutive frame the "this frame"
// set becomes "last frame"; after a gap everything from before the gap is released and forgotten.
type State interface {
	// LastFrameQuery returns the handle issued for the descriptor during the previous frame.
	//
	// Parameters:
	//   - desc: the render path
	//
	// Returns:
	//   - query.Handle: the previous frame's handle
	//   - bool: false if no query was issued for desc last frame
	LastFrameQuery(desc portal.Descriptor) (query.Handle, bool)

	// AcquireThisFrameQuery returns the handle for the descriptor in this frame, acquiring one from the pool
	// on first use. Equal descriptors return the same handle within a frame.
	//
	// Parameters:
	//   - desc: the render path
	//
	// Returns:
	//   - query.Handle: this frame's handle for desc
	AcquireThisFrameQuery(desc portal.Descriptor) query.Handle

	// LastFrameRendered returns whether the portal's content was rendered last frame.
	LastFrameRendered() common.TriState

	// ThisFrameRendered returns what has been recorded for this frame so far.
	ThisFrameRendered() common.TriState

	// SetThisFrameRendered records whether the portal's content is rendered this frame.
	//
	// Parameters:
	//   - rendered: true if the content is rendered
	SetThisFrameRendered(rendered bool)

	// OnMispredict records that a cached visibility decision turned out wrong.
	OnMispredict()

	// IsFrequentlyMispredicted reports whether the two most recent mispredictions both fall within the
	// misprediction window. Callers should then stop trusting cached decisions for this portal.
	//
	// Returns:
	//   - bool: true if two mispredictions happened within the window
	IsFrequentlyMispredicted() bool

	// LastActive returns when the state was last accessed.
	LastActive() time.Time

	// Dispose returns every held handle to the pool. Safe to call more than once.
	Dispose()
}

// stateImpl is the implementation of the State interface.
type stateImpl struct {
	owner *cacheImpl

	lastActive time.Time

	lastFrameQuery map[portal.DescriptorKey]query.Handle
	thisFrameQuery map[portal.DescriptorKey]query.Handle
	frameIndex     int64

	lastFrameRendered common.TriState
	thisFrameRendered common.TriState

	mispredictTime1 time.Time
	mispredictTime2 time.Time
}

var _ State = &stateImpl{}

func newState(owner *cacheImpl) *stateImpl {
	return &stateImpl{
		owner:      owner,
		lastActive: owner.clk.Now(),
		frameIndex: -1,
	}
}

// updateQuerySet advances the state to the owner's current frame.
func (s *stateImpl) updateQuerySet() {
	s.lastActive = s.owner.clk.Now()

	frame := s.owner.frames.FrameIndex()
	if frame == s.frameIndex {
		return
	}

	if frame == s.frameIndex+1 {
		s.releaseSet(s.lastFrameQuery)
		s.lastFrameQuery = s.thisFrameQuery
		s.thisFrameQuery = nil

		s.lastFrameRendered = s.thisFrameRendered
		s.thisFrameRendered = common.Unknown
	} else {
		// Nothing issued before a gap can be matched to a frame anymore.
		s.releaseSet(s.lastFrameQuery)
		s.releaseSet(s.thisFrameQuery)
		s.lastFrameQuery = nil
		s.thisFrameQuery = nil

		s.lastFrameRendered = common.Unknown
		s.thisFrameRendered = common.Unknown
	}

	s.frameIndex = frame
}

func (s *stateImpl) releaseSet(set map[portal.DescriptorKey]query.Handle) {
	for _, h := range set {
		s.owner.pool.Release(h)
	}
	clear(set)
}

func (s *stateImpl) LastFrameQuery(desc portal.Descriptor) (query.Handle, bool) {
	s.updateQuerySet()
	h, ok := s.lastFrameQuery[desc.Key()]
	return h, ok
}

func (s *stateImpl) AcquireThisFrameQuery(desc portal.Descriptor) query.Handle {
	s.updateQuerySet()
	if s.thisFrameQuery == nil {
		s.thisFrameQuery = make(map[portal.DescriptorKey]query.Handle)
	}
	key := desc.Key()
	if h, ok := s.thisFrameQuery[key]; ok {
		return h
	}
	h := s.owner.pool.Acquire()
	s.thisFrameQuery[key] = h
	return h
}

func (s *stateImpl) LastFrameRendered() common.TriState {
	s.updateQuerySet()
	return s.lastFrameRendered
}

func (s *stateImpl) ThisFrameRendered() common.TriState {
	s.updateQuerySet()
	return s.thisFrameRendered
}

func (s *stateImpl) SetThisFrameRendered(rendered bool) {
	s.updateQuerySet()
	s.thisFrameRendered = common.TriStateOf(rendered)
}

func (s *stateImpl) OnMispredict() {
	s.mispredictTime1 = s.mispredictTime2
	s.mispredictTime2 = s.owner.clk.Now()
}

func (s *stateImpl) IsFrequentlyMispredicted() bool {
	if s.mispredictTime1.IsZero() {
		return false
	}
	return s.owner.clk.Now().Sub(s.mispredictTime1) < s.owner.mispredictWindow
}

func (s *stateImpl) LastActive() time.Time {
	return s.lastActive
}

func (s *stateImpl) Dispose() {
	s.releaseSet(s.lastFrameQuery)
	s.releaseSet(s.thisFrameQuery)
}

// shouldDispose reports whether the state has been idle longer than the owner's timeout.
func (s *stateImpl) shouldDispose(now time.Time) bool {
	return now.Sub(s.lastActive) > s.owner.idleTimeout
}
