package renderer

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-portal/common"
	"github.com/Carmen-Shannon/oxy-portal/engine/query"
	"github.com/go-gl/mathgl/mgl64"
)

func f32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestMarshalSegmentsTagsRequestIndex(t *testing.T) {
	requests := []query.Request{
		{Segments: []query.Segment{{From: mgl64.Vec3{1, 2, 3}, To: mgl64.Vec3{4, 5, 6}}}},
		{},
		{Segments: []query.Segment{
			{From: mgl64.Vec3{0, 0, 0}, To: mgl64.Vec3{1, 1, 1}},
			{From: mgl64.Vec3{-1, -2, -3}, To: mgl64.Vec3{7, 8, 9}},
		}},
	}
	buf, n := marshalSegments(requests)
	if n != 3 || len(buf) != 3*gpuSegmentSize {
		t.Fatalf("marshalSegments = %d segments in %d bytes", n, len(buf))
	}

	wantRequest := []uint32{0, 2, 2}
	for i, want := range wantRequest {
		if got := binary.LittleEndian.Uint32(buf[i*gpuSegmentSize+12:]); got != want {
			t.Errorf("segment %d request = %d, want %d", i, got, want)
		}
	}
	last := 2 * gpuSegmentSize
	if f32At(buf, last) != -1 || f32At(buf, last+8) != -3 {
		t.Errorf("last segment eye = (%v, _, %v)", f32At(buf, last), f32At(buf, last+8))
	}
	if f32At(buf, last+16) != 7 || f32At(buf, last+24) != 9 {
		t.Errorf("last segment point = (%v, _, %v)", f32At(buf, last+16), f32At(buf, last+24))
	}
}

func TestMarshalOccludersNeverEmpty(t *testing.T) {
	if buf := marshalOccluders(nil); len(buf) != gpuOccluderSize {
		t.Errorf("empty occluder list marshals to %d bytes, want one zeroed entry", len(buf))
	}

	buf := marshalOccluders([]common.Box{
		common.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}),
		common.NewBox(mgl64.Vec3{-2, 3, 4}, mgl64.Vec3{5, 6, 7}),
	})
	if len(buf) != 2*gpuOccluderSize {
		t.Fatalf("len = %d", len(buf))
	}
	if f32At(buf, gpuOccluderSize) != -2 || f32At(buf, gpuOccluderSize+16+8) != 7 {
		t.Error("second occluder corners are misplaced")
	}
}

func TestWorkgroupCount(t *testing.T) {
	tests := []struct{ n, want uint32 }{
		{1, 1},
		{occlusionWorkgroupSize, 1},
		{occlusionWorkgroupSize + 1, 2},
		{10 * occlusionWorkgroupSize, 10},
	}
	for _, tt := range tests {
		if got := workgroupCount(tt.n); got != tt.want {
			t.Errorf("workgroupCount(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestShaderMatchesHostLayout(t *testing.T) {
	for _, want := range []string{
		"fn " + occlusionEntryPoint,
		"@workgroup_size(64)",
		"array<atomic<u32>>",
	} {
		if !strings.Contains(occlusionCountSource, want) {
			t.Errorf("shader source is missing %q", want)
		}
	}
}

func TestNewOcclusionCounterRequiresDevice(t *testing.T) {
	if _, err := NewOcclusionCounter(nil); err == nil {
		t.Error("expected an error without a device")
	}
	if _, err := NewOcclusionCounter(&Device{}); err == nil {
		t.Error("expected an error for an uninitialized device")
	}
}
