package lve

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CoreWindow wraps a GLFW window configured for Vulkan rendering. It tracks
// framebuffer resizes so the renderer knows when the chain went stale.
type CoreWindow struct {
	window  *glfw.Window
	width   int
	height  int
	resized bool
	title   string
}

// NewCoreWindow creates a window without a client API context. glfw.Init must
// have been called on the main thread beforehand.
func NewCoreWindow(width, height int, title string) (*CoreWindow, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create glfw window")
	}

	w := &CoreWindow{
		window: window,
		width:  width,
		height: height,
		title:  title,
	}
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized = true
		w.width = width
		w.height = height
	})
	return w, nil
}

func (w *CoreWindow) ShouldClose() bool {
	return w.window.ShouldClose()
}

func (w *CoreWindow) Extent() vk.Extent2D {
	return vk.Extent2D{Width: uint32(w.width), Height: uint32(w.height)}
}

func (w *CoreWindow) WasResized() bool {
	return w.resized
}

func (w *CoreWindow) ResetResized() {
	w.resized = false
}

func (w *CoreWindow) WaitEvents() {
	glfw.WaitEvents()
}

// RequiredInstanceExtensions reports the instance extensions GLFW needs to
// create a surface on this platform.
func (w *CoreWindow) RequiredInstanceExtensions() []string {
	return w.window.GetRequiredInstanceExtensions()
}

// CreateSurface creates the presentation surface for the given instance.
func (w *CoreWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surfPtr, err := w.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, errors.Wrap(err, "create window surface")
	}
	return vk.SurfaceFromPointer(surfPtr), nil
}

func (w *CoreWindow) Destroy() {
	w.window.Destroy()
	w.window = nil
}
