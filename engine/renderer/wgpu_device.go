// Package renderer owns the WebGPU side of portal visibility: it bootstraps the device and runs the compute
// pass that counts occlusion samples for query handles. Mesh and shader submission belong to the host
// renderer and are not handled here.
package renderer

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Device owns the WebGPU instance, adapter and device, plus the surface when one was requested.
type Device struct {
	mu       *sync.Mutex
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
}

// NewDevice creates a WebGPU device. With a surface descriptor the adapter is chosen to be compatible with
// that surface; without one the device is headless, which is enough for compute work.
//
// Parameters:
//   - surfaceDescriptor: platform surface descriptor, or nil for a headless device
//   - forceFallbackAdapter: request the software fallback adapter
//
// Returns:
//   - *Device: the device bundle
//   - error: error if no adapter or device could be obtained
func NewDevice(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool) (*Device, error) {
	d := &Device{
		mu:       &sync.Mutex{},
		instance: wgpu.CreateInstance(nil),
	}

	opts := &wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	}
	if surfaceDescriptor != nil {
		d.surface = d.instance.CreateSurface(surfaceDescriptor)
		opts.CompatibleSurface = d.surface
	}

	a, err := d.instance.RequestAdapter(opts)
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	d.adapter = a

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Portal Device",
	})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	d.device = dev
	d.queue = dev.GetQueue()

	return d, nil
}

// Device returns the WebGPU device.
func (d *Device) Device() *wgpu.Device {
	return d.device
}

// Queue returns the device's default queue.
func (d *Device) Queue() *wgpu.Queue {
	return d.queue
}

// Release frees every GPU object in reverse creation order. Safe to call more than once.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.surface != nil {
		d.surface.Release()
		d.surface = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
