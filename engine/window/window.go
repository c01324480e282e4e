// Package window opens the host window the portal demo renders into and exposes the surface descriptor
// needed to bootstrap a WebGPU device on it.
package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window is a platform window driving a frame loop.
type Window interface {
	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press and repeat events. Escape is handled by the
	// window itself and closes it.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SurfaceDescriptor returns a platform-appropriate wgpu.SurfaceDescriptor for the window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the surface descriptor, or nil if the window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true until the window is closed.
	IsRunning() bool

	// RunFrames polls window events and calls frame once per iteration until the window closes,
	// frame returns false, or maxFrames iterations have run (0 means unbounded).
	//
	// Parameters:
	//   - maxFrames: iteration limit, or 0 for none
	//   - frame: per-iteration callback; return false to stop
	//
	// Returns:
	//   - int: number of frames run
	RunFrames(maxFrames int, frame func() bool) int

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never initialized
	Close() error

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

// hostWindow is the implementation of the Window interface.
type hostWindow struct {
	title  string
	width  int
	height int

	// platform holds the GLFW window state.
	platform *glfwWindow

	onResize  func(width, height int)
	onKeyDown func(keyCode uint32)
}

var _ Window = &hostWindow{}

// NewWindow creates and shows a window. Must be called from the main goroutine; the calling OS thread is
// locked for the lifetime of the window.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &hostWindow{
		title:  "Portal Demo",
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func (w *hostWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *hostWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *hostWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *hostWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *hostWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *hostWindow) RunFrames(maxFrames int, frame func() bool) int {
	n := 0
	for w.IsRunning() && (maxFrames == 0 || n < maxFrames) {
		if !platformProcessMessages(w) {
			break
		}
		n++
		if !frame() {
			break
		}
		runtime.Gosched()
	}
	return n
}

func (w *hostWindow) Width() int {
	return w.width
}

func (w *hostWindow) Height() int {
	return w.height
}
