// Package query lends and reclaims occlusion query handles and records the sample counts read back for them.
// Handles are slots in fixed-size pages. Sample counts come from a Counter, which measures how many lines of
// sight to a portal opening survive the scene's occluders.
package query

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-portal/engine/logging"
)

// DefaultPageSize is the number of query slots allocated per page.
const DefaultPageSize uint32 = 256

// DefaultLabel is the label the pool reports itself under in diagnostics.
const DefaultLabel = "Portal Occlusion Queries"

// Handle is an opaque reference to one occlusion query slot.
// The zero Handle is a valid slot (page 0, index 0); ownership is tracked by the Pool, not the value.
type Handle struct {
	// Page selects the page the slot belongs to.
	Page uint32
	// Index is the slot index within the page.
	Index uint32
}

func (h Handle) String() string {
	return fmt.Sprintf("query(%d:%d)", h.Page, h.Index)
}

// Pool lends occlusion query handles to per-portal presentation state and takes them back on disposal.
// Not safe for concurrent use; it is driven from the render loop.
type Pool interface {
	// Acquire lends a free handle, growing the pool if needed. Never fails.
	// Any readback result left on the slot by a previous owner is cleared.
	//
	// Returns:
	//   - Handle: a handle owned by the caller until Release
	Acquire() Handle

	// Release returns a handle to the pool. Releasing a handle that is not currently lent out
	// (double release, or a handle the pool never issued) is a contract violation and panics.
	//
	// Parameters:
	//   - h: the handle to return
	Release(h Handle)

	// Resolve records the sample count read back from the GPU for a lent handle.
	// Readbacks for handles that have already been released are stale and dropped.
	//
	// Parameters:
	//   - h: the handle the readback belongs to
	//   - samples: number of samples that passed the depth test
	Resolve(h Handle, samples uint64)

	// Result returns the recorded readback for a handle.
	//
	// Parameters:
	//   - h: the handle to inspect
	//
	// Returns:
	//   - uint64: passed sample count (0 when unresolved)
	//   - bool: true if a readback has been recorded since the handle was acquired
	Result(h Handle) (uint64, bool)

	// InUse returns the number of handles currently lent out.
	InUse() int

	// Capacity returns the total number of slots across all pages.
	Capacity() int

	// Destroy drops every page and resets the pool to empty. Handles lent out before
	// Destroy must not be released afterwards.
	Destroy()
}

// page is one block of query slots.
type page struct {
	lent     []bool
	resolved []bool
	samples  []uint64
}

// poolImpl is the implementation of the Pool interface.
type poolImpl struct {
	pageSize uint32
	label    string
	logger   *slog.Logger

	pages []*page
	free  []Handle
	inUse int
}

var _ Pool = &poolImpl{}

// NewPool creates an empty Pool. Pages are added on demand by Acquire.
//
// Parameters:
//   - options: functional options to configure the pool
//
// Returns:
//   - Pool: the new pool
func NewPool(options ...PoolBuilderOption) Pool {
	p := &poolImpl{
		pageSize: DefaultPageSize,
		label:    DefaultLabel,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *poolImpl) Acquire() Handle {
	if len(p.free) == 0 {
		p.grow()
	}
	h := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	pg := p.pages[h.Page]
	pg.lent[h.Index] = true
	pg.resolved[h.Index] = false
	pg.samples[h.Index] = 0
	p.inUse++
	return h
}

func (p *poolImpl) Release(h Handle) {
	pg := p.lookup(h)
	if pg == nil {
		panic(fmt.Sprintf("query: release of %v which this pool never issued", h))
	}
	if !pg.lent[h.Index] {
		panic(fmt.Sprintf("query: %v released twice", h))
	}
	pg.lent[h.Index] = false
	pg.resolved[h.Index] = false
	p.free = append(p.free, h)
	p.inUse--
}

func (p *poolImpl) Resolve(h Handle, samples uint64) {
	pg := p.lookup(h)
	if pg == nil || !pg.lent[h.Index] {
		logging.Or(p.logger).Debug("dropping stale occlusion readback", "handle", h.String(), "samples", samples)
		return
	}
	pg.resolved[h.Index] = true
	pg.samples[h.Index] = samples
}

func (p *poolImpl) Result(h Handle) (uint64, bool) {
	pg := p.lookup(h)
	if pg == nil || !pg.lent[h.Index] || !pg.resolved[h.Index] {
		return 0, false
	}
	return pg.samples[h.Index], true
}

func (p *poolImpl) InUse() int {
	return p.inUse
}

func (p *poolImpl) Capacity() int {
	return len(p.pages) * int(p.pageSize)
}

func (p *poolImpl) Destroy() {
	if p.inUse > 0 {
		logging.Or(p.logger).Warn("destroying query pool with handles still lent out",
			"pool", p.label, "in_use", p.inUse)
	}
	p.pages = nil
	p.free = nil
	p.inUse = 0
}

// lookup returns the page holding h, or nil if h is out of range.
func (p *poolImpl) lookup(h Handle) *page {
	if int(h.Page) >= len(p.pages) || h.Index >= p.pageSize {
		return nil
	}
	return p.pages[h.Page]
}

// grow appends a new page and pushes its slots onto the free list so that lower indices are lent first.
func (p *poolImpl) grow() {
	pageIndex := uint32(len(p.pages))
	pg := &page{
		lent:     make([]bool, p.pageSize),
		resolved: make([]bool, p.pageSize),
		samples:  make([]uint64, p.pageSize),
	}
	p.pages = append(p.pages, pg)
	logging.Or(p.logger).Debug("query pool grew", "pool", p.label, "page", pageIndex, "capacity", p.Capacity())

	for i := p.pageSize; i > 0; i-- {
		p.free = append(p.free, Handle{Page: pageIndex, Index: i - 1})
	}
}
