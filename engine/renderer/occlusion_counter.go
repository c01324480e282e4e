package renderer

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-portal/common"
	"github.com/Carmen-Shannon/oxy-portal/engine/query"
	"github.com/cogentcore/webgpu/wgpu"
)

// occlusionCountSource is the compute shader that tests lines of sight against occluder boxes.
//
//go:embed assets/occlusion_count.wgsl
var occlusionCountSource string

const (
	occlusionEntryPoint    = "count_samples"
	occlusionWorkgroupSize = 64

	// gpuSegmentSize matches the WGSL Segment struct: vec3 eye, u32 request, vec3 point, u32 pad.
	gpuSegmentSize = 32
	// gpuOccluderSize matches the WGSL Occluder struct: two vec4 corners.
	gpuOccluderSize = 32
	// gpuParamsSize matches the WGSL Params uniform.
	gpuParamsSize = 16
)

// OcclusionCounter measures occlusion sample counts with a compute pass on the GPU. Each call uploads the
// segments and occluders, dispatches one invocation per segment, and reads the per-request counters back
// before returning. Safe for concurrent use; calls are serialized.
type OcclusionCounter struct {
	mu             *sync.Mutex
	device         *wgpu.Device
	queue          *wgpu.Queue
	module         *wgpu.ShaderModule
	layout         *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	pipeline       *wgpu.ComputePipeline
}

var _ query.Counter = &OcclusionCounter{}

// NewOcclusionCounter compiles the counting pipeline on d.
//
// Parameters:
//   - d: the device to run on
//
// Returns:
//   - *OcclusionCounter: the counter
//   - error: error if the shader or pipeline could not be created
func NewOcclusionCounter(d *Device) (*OcclusionCounter, error) {
	if d == nil || d.Device() == nil {
		return nil, errors.New("occlusion counter requires an initialized device")
	}
	c := &OcclusionCounter{
		mu:     &sync.Mutex{},
		device: d.Device(),
		queue:  d.Queue(),
	}

	module, err := c.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Portal Occlusion Count",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: occlusionCountSource},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compile occlusion count shader: %w", err)
	}
	c.module = module

	entry := func(binding uint32, t wgpu.BufferBindingType) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageCompute,
			Buffer:     wgpu.BufferBindingLayout{Type: t},
		}
	}
	layout, err := c.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Portal Occlusion Count Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			entry(0, wgpu.BufferBindingTypeUniform),
			entry(1, wgpu.BufferBindingTypeReadOnlyStorage),
			entry(2, wgpu.BufferBindingTypeReadOnlyStorage),
			entry(3, wgpu.BufferBindingTypeStorage),
		},
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("failed to create occlusion count bind group layout: %w", err)
	}
	c.layout = layout

	pipelineLayout, err := c.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Portal Occlusion Count",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("failed to create occlusion count pipeline layout: %w", err)
	}
	c.pipelineLayout = pipelineLayout

	pipeline, err := c.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  "Portal Occlusion Count Compute Pipeline",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: occlusionEntryPoint,
		},
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("failed to create occlusion count pipeline: %w", err)
	}
	c.pipeline = pipeline

	return c, nil
}

func (c *OcclusionCounter) Count(requests []query.Request, occluders []common.Box) ([]uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := make([]uint64, len(requests))
	segmentData, segmentCount := marshalSegments(requests)
	if segmentCount == 0 {
		return counts, nil
	}
	if c.pipeline == nil {
		return nil, errors.New("occlusion counter has been released")
	}

	var buffers []*wgpu.Buffer
	defer func() {
		for _, b := range buffers {
			b.Release()
		}
	}()
	create := func(label string, size uint64, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error) {
		buf, err := c.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Portal Occlusion " + label,
			Size:  size,
			Usage: usage,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %s buffer: %w", label, err)
		}
		buffers = append(buffers, buf)
		if len(data) > 0 {
			if err := c.queue.WriteBuffer(buf, 0, data); err != nil {
				return nil, fmt.Errorf("failed to upload %s buffer: %w", label, err)
			}
		}
		return buf, nil
	}

	occluderData := marshalOccluders(occluders)
	countsSize := uint64(4 * len(requests))

	params, err := create("Params", gpuParamsSize, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst,
		marshalParams(segmentCount, uint32(len(occluders))))
	if err != nil {
		return nil, err
	}
	segments, err := create("Segments", uint64(len(segmentData)), wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, segmentData)
	if err != nil {
		return nil, err
	}
	occluderBuf, err := create("Occluders", uint64(len(occluderData)), wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, occluderData)
	if err != nil {
		return nil, err
	}
	counters, err := create("Counters", countsSize, wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc, nil)
	if err != nil {
		return nil, err
	}
	staging, err := create("Readback", countsSize, wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst, nil)
	if err != nil {
		return nil, err
	}

	bindGroup, err := c.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Portal Occlusion Count Bind Group",
		Layout: c.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: params, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: segments, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: occluderBuf, Size: wgpu.WholeSize},
			{Binding: 3, Buffer: counters, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create occlusion count bind group: %w", err)
	}
	defer bindGroup.Release()

	encoder, err := c.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(c.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(workgroupCount(segmentCount), 1, 1)
	if err := pass.End(); err != nil {
		pass.Release()
		return nil, fmt.Errorf("failed to end occlusion count pass: %w", err)
	}
	pass.Release()

	if err := encoder.CopyBufferToBuffer(counters, 0, staging, 0, countsSize); err != nil {
		return nil, fmt.Errorf("failed to copy occlusion counters: %w", err)
	}
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return nil, err
	}
	c.queue.Submit(commandBuffer)
	commandBuffer.Release()

	status := wgpu.BufferMapAsyncStatusUnknown
	mapped := false
	if err := staging.MapAsync(wgpu.MapModeRead, 0, countsSize, func(s wgpu.BufferMapAsyncStatus) {
		status = s
		mapped = true
	}); err != nil {
		return nil, fmt.Errorf("failed to map occlusion readback: %w", err)
	}
	for !mapped {
		c.device.Poll(true, nil)
	}
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, fmt.Errorf("occlusion readback mapping failed: %v", status)
	}

	raw := wgpu.FromBytes[uint32](staging.GetMappedRange(0, uint(countsSize)))
	for i := range counts {
		counts[i] = uint64(raw[i])
	}
	if err := staging.Unmap(); err != nil {
		return nil, fmt.Errorf("failed to unmap occlusion readback: %w", err)
	}
	return counts, nil
}

// Release frees the pipeline objects. Safe to call more than once; Count fails afterwards.
func (c *OcclusionCounter) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pipeline != nil {
		c.pipeline.Release()
		c.pipeline = nil
	}
	if c.pipelineLayout != nil {
		c.pipelineLayout.Release()
		c.pipelineLayout = nil
	}
	if c.layout != nil {
		c.layout.Release()
		c.layout = nil
	}
	if c.module != nil {
		c.module.Release()
		c.module = nil
	}
}

// workgroupCount returns how many workgroups cover n invocations.
func workgroupCount(n uint32) uint32 {
	return (n + occlusionWorkgroupSize - 1) / occlusionWorkgroupSize
}

// marshalSegments flattens every request's segments into the WGSL Segment layout, tagging each with the
// index of the request it counts toward.
func marshalSegments(requests []query.Request) ([]byte, uint32) {
	var n int
	for _, r := range requests {
		n += len(r.Segments)
	}
	buf := make([]byte, n*gpuSegmentSize)
	off := 0
	for ri, r := range requests {
		for _, s := range r.Segments {
			putVec3(buf[off:], s.From[0], s.From[1], s.From[2])
			binary.LittleEndian.PutUint32(buf[off+12:], uint32(ri))
			putVec3(buf[off+16:], s.To[0], s.To[1], s.To[2])
			off += gpuSegmentSize
		}
	}
	return buf, uint32(n)
}

// marshalOccluders writes the boxes in the WGSL Occluder layout. An empty list still yields one zeroed entry
// because storage bindings cannot be empty; the shader only reads occluder_count entries.
func marshalOccluders(occluders []common.Box) []byte {
	buf := make([]byte, max(len(occluders), 1)*gpuOccluderSize)
	for i, o := range occluders {
		off := i * gpuOccluderSize
		putVec3(buf[off:], o.Min[0], o.Min[1], o.Min[2])
		putVec3(buf[off+16:], o.Max[0], o.Max[1], o.Max[2])
	}
	return buf
}

func marshalParams(segmentCount, occluderCount uint32) []byte {
	buf := make([]byte, gpuParamsSize)
	binary.LittleEndian.PutUint32(buf[0:4], segmentCount)
	binary.LittleEndian.PutUint32(buf[4:8], occluderCount)
	return buf
}

func putVec3(buf []byte, x, y, z float64) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(float32(x)))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(float32(y)))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(float32(z)))
}
