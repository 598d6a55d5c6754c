package lve

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// newMockHandle fabricates a unique non-null Vulkan handle. Handles are
// pointer-sized on this platform, so a fresh heap allocation gives a value
// that is distinct, stable, and never dereferenced by the code under test.
func newMockHandle() unsafe.Pointer {
	return unsafe.Pointer(new(byte))
}

// mockFence models fence state with a channel so tests can observe real
// blocking behavior from WaitForFences.
type mockFence struct {
	name string

	mu       sync.Mutex
	ch       chan struct{}
	signaled bool
}

func newMockFence(name string, signaled bool) *mockFence {
	f := &mockFence{name: name, ch: make(chan struct{})}
	if signaled {
		f.signaled = true
		close(f.ch)
	}
	return f
}

func (f *mockFence) signal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.signaled {
		f.signaled = true
		close(f.ch)
	}
}

func (f *mockFence) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signaled {
		f.signaled = false
		f.ch = make(chan struct{})
	}
}

func (f *mockFence) wait() {
	f.mu.Lock()
	ch := f.ch
	f.mu.Unlock()
	<-ch
}

type acquireScript struct {
	index uint32
	ret   vk.Result
}

// mockDevice implements Device in-process. It fabricates handles, keeps every
// create info it sees, and records a call trace tests assert ordering on.
// Fences behave like real fences: WaitForFences blocks until signaled. With
// autoSignalSubmit set, SubmitGraphics signals its fence immediately, which
// keeps single-threaded tests from deadlocking.
type mockDevice struct {
	mu    sync.Mutex
	calls []string

	support  SwapchainSupportDetails
	families QueueFamilyIndices

	imageCount int

	acquireScripts []acquireScript
	nextAcquire    int
	submitResults  []vk.Result
	presentResults []vk.Result

	autoSignalSubmit bool
	fences           map[vk.Fence]*mockFence
	fenceCount       int
	semaphoreNames   map[vk.Semaphore]string
	semaphoreCount   int

	swapchainNames map[vk.Swapchain]string
	viewNames      map[vk.ImageView]string
	colorViews     []vk.ImageView
	depthViews     []vk.ImageView

	swapchainInfos   []*vk.SwapchainCreateInfo
	framebufferInfos []*vk.FramebufferCreateInfo
	depthImageInfos  []*vk.ImageCreateInfo
}

func newMockDevice() *mockDevice {
	return &mockDevice{
		support:          defaultMockSupport(),
		imageCount:       3,
		autoSignalSubmit: true,
		fences:           make(map[vk.Fence]*mockFence),
		semaphoreNames:   make(map[vk.Semaphore]string),
		swapchainNames:   make(map[vk.Swapchain]string),
		viewNames:        make(map[vk.ImageView]string),
	}
}

// defaultMockSupport reports a window-driven surface: sentinel current extent,
// minimum of two images with no maximum, sRGB available, FIFO only.
func defaultMockSupport() SwapchainSupportDetails {
	return SwapchainSupportDetails{
		Capabilities: vk.SurfaceCapabilities{
			MinImageCount:  2,
			MaxImageCount:  0,
			CurrentExtent:  vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
			MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
			MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
		},
		Formats: []vk.SurfaceFormat{
			{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
		PresentModes: []vk.PresentMode{vk.PresentModeFifo},
	}
}

func (d *mockDevice) record(format string, args ...interface{}) {
	d.mu.Lock()
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
	d.mu.Unlock()
}

func (d *mockDevice) callTrace() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *mockDevice) resetTrace() {
	d.mu.Lock()
	d.calls = nil
	d.mu.Unlock()
}

// callsMatching filters the trace down to calls starting with any of the
// given prefixes, preserving order.
func (d *mockDevice) callsMatching(prefixes ...string) []string {
	var out []string
	for _, call := range d.callTrace() {
		for _, prefix := range prefixes {
			if strings.HasPrefix(call, prefix) {
				out = append(out, call)
				break
			}
		}
	}
	return out
}

func (d *mockDevice) fence(handle vk.Fence) *mockFence {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fences[handle]
}

func (d *mockDevice) SwapchainSupport() SwapchainSupportDetails {
	d.record("SwapchainSupport")
	return d.support
}

func (d *mockDevice) QueueFamilies() QueueFamilyIndices {
	return d.families
}

func (d *mockDevice) Surface() vk.Surface {
	return vk.NullSurface
}

func (d *mockDevice) CreateSwapchain(info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	handle := vk.Swapchain(newMockHandle())
	d.mu.Lock()
	name := fmt.Sprintf("swapchain%d", len(d.swapchainNames))
	d.swapchainNames[handle] = name
	d.swapchainInfos = append(d.swapchainInfos, info)
	d.mu.Unlock()
	d.record("CreateSwapchain(%s)", name)
	return handle, nil
}

func (d *mockDevice) SwapchainImages(swapchain vk.Swapchain) ([]vk.Image, error) {
	images := make([]vk.Image, d.imageCount)
	for i := range images {
		images[i] = vk.Image(newMockHandle())
	}
	return images, nil
}

func (d *mockDevice) DestroySwapchain(swapchain vk.Swapchain) {
	d.record("DestroySwapchain(%s)", d.swapchainNames[swapchain])
}

func (d *mockDevice) CreateImageView(info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	handle := vk.ImageView(newMockHandle())
	d.mu.Lock()
	var name string
	if info.SubresourceRange.AspectMask == vk.ImageAspectFlags(vk.ImageAspectDepthBit) {
		name = fmt.Sprintf("depthView[%d]", len(d.depthViews))
		d.depthViews = append(d.depthViews, handle)
	} else {
		name = fmt.Sprintf("colorView[%d]", len(d.colorViews))
		d.colorViews = append(d.colorViews, handle)
	}
	d.viewNames[handle] = name
	d.mu.Unlock()
	d.record("CreateImageView(%s)", name)
	return handle, nil
}

func (d *mockDevice) DestroyImageView(view vk.ImageView) {
	d.record("DestroyImageView(%s)", d.viewNames[view])
}

func (d *mockDevice) CreateRenderPass(info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	d.record("CreateRenderPass")
	return vk.RenderPass(newMockHandle()), nil
}

func (d *mockDevice) DestroyRenderPass(pass vk.RenderPass) {
	d.record("DestroyRenderPass")
}

func (d *mockDevice) CreateFramebuffer(info *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	d.mu.Lock()
	index := len(d.framebufferInfos)
	d.framebufferInfos = append(d.framebufferInfos, info)
	d.mu.Unlock()
	d.record("CreateFramebuffer(%d)", index)
	return vk.Framebuffer(newMockHandle()), nil
}

func (d *mockDevice) DestroyFramebuffer(framebuffer vk.Framebuffer) {
	d.record("DestroyFramebuffer")
}

func (d *mockDevice) FindSupportedFormat(candidates []vk.Format, tiling vk.ImageTiling, features vk.FormatFeatureFlags) (vk.Format, error) {
	return candidates[0], nil
}

func (d *mockDevice) CreateImageWithMemory(info *vk.ImageCreateInfo, props vk.MemoryPropertyFlagBits) (vk.Image, vk.DeviceMemory, error) {
	d.mu.Lock()
	d.depthImageInfos = append(d.depthImageInfos, info)
	d.mu.Unlock()
	d.record("CreateImageWithMemory")
	return vk.Image(newMockHandle()), vk.DeviceMemory(newMockHandle()), nil
}

func (d *mockDevice) DestroyImage(image vk.Image) {
	d.record("DestroyImage")
}

func (d *mockDevice) FreeMemory(memory vk.DeviceMemory) {
	d.record("FreeMemory")
}

func (d *mockDevice) CreateSemaphore() (vk.Semaphore, error) {
	handle := vk.Semaphore(newMockHandle())
	d.mu.Lock()
	name := fmt.Sprintf("sem%d", d.semaphoreCount)
	d.semaphoreCount++
	d.semaphoreNames[handle] = name
	d.mu.Unlock()
	d.record("CreateSemaphore(%s)", name)
	return handle, nil
}

func (d *mockDevice) DestroySemaphore(semaphore vk.Semaphore) {
	d.record("DestroySemaphore(%s)", d.semaphoreNames[semaphore])
}

func (d *mockDevice) CreateFence(signaled bool) (vk.Fence, error) {
	handle := vk.Fence(newMockHandle())
	d.mu.Lock()
	fence := newMockFence(fmt.Sprintf("fence%d", d.fenceCount), signaled)
	d.fenceCount++
	d.fences[handle] = fence
	d.mu.Unlock()
	d.record("CreateFence(%s signaled=%v)", fence.name, signaled)
	return handle, nil
}

func (d *mockDevice) DestroyFence(fence vk.Fence) {
	d.record("DestroyFence(%s)", d.fence(fence).name)
}

func (d *mockDevice) WaitForFences(fences ...vk.Fence) error {
	for _, handle := range fences {
		fence := d.fence(handle)
		d.record("WaitForFences(%s)", fence.name)
		fence.wait()
	}
	return nil
}

func (d *mockDevice) ResetFences(fences ...vk.Fence) error {
	for _, handle := range fences {
		fence := d.fence(handle)
		d.record("ResetFences(%s)", fence.name)
		fence.reset()
	}
	return nil
}

func (d *mockDevice) AcquireNextImage(swapchain vk.Swapchain, semaphore vk.Semaphore) (uint32, vk.Result) {
	d.mu.Lock()
	var script acquireScript
	if d.nextAcquire < len(d.acquireScripts) {
		script = d.acquireScripts[d.nextAcquire]
	} else {
		script = acquireScript{index: uint32(d.nextAcquire % d.imageCount), ret: vk.Success}
	}
	d.nextAcquire++
	d.mu.Unlock()
	d.record("AcquireNextImage(%s) = %d", d.semaphoreNames[semaphore], script.index)
	return script.index, script.ret
}

func (d *mockDevice) SubmitGraphics(info vk.SubmitInfo, fence vk.Fence) vk.Result {
	d.mu.Lock()
	ret := vk.Success
	if len(d.submitResults) > 0 {
		ret = d.submitResults[0]
		d.submitResults = d.submitResults[1:]
	}
	d.mu.Unlock()
	d.record("SubmitGraphics(fence=%s)", d.fence(fence).name)
	if ret == vk.Success && d.autoSignalSubmit {
		d.fence(fence).signal()
	}
	return ret
}

func (d *mockDevice) Present(info *vk.PresentInfo) vk.Result {
	d.mu.Lock()
	ret := vk.Success
	if len(d.presentResults) > 0 {
		ret = d.presentResults[0]
		d.presentResults = d.presentResults[1:]
	}
	d.mu.Unlock()
	d.record("Present(image=%d)", info.PImageIndices[0])
	return ret
}

func (d *mockDevice) AllocateCommandBuffers(count uint32) ([]vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, count)
	for i := range buffers {
		buffers[i] = vk.CommandBuffer(newMockHandle())
	}
	d.record("AllocateCommandBuffers(%d)", count)
	return buffers, nil
}

func (d *mockDevice) FreeCommandBuffers(buffers []vk.CommandBuffer) {
	d.record("FreeCommandBuffers(%d)", len(buffers))
}

func (d *mockDevice) BeginCommandBuffer(buffer vk.CommandBuffer) error {
	d.record("BeginCommandBuffer")
	return nil
}

func (d *mockDevice) EndCommandBuffer(buffer vk.CommandBuffer) error {
	d.record("EndCommandBuffer")
	return nil
}

func (d *mockDevice) WaitIdle() {
	d.record("WaitIdle")
}

// mockWindow implements Window with settable state.
type mockWindow struct {
	extent  vk.Extent2D
	resized bool

	// onWaitEvents runs on each WaitEvents call so tests can un-minimize
	// the window from inside the renderer's wait loop.
	onWaitEvents func(*mockWindow)
}

func newMockWindow(width, height uint32) *mockWindow {
	return &mockWindow{extent: vk.Extent2D{Width: width, Height: height}}
}

func (w *mockWindow) Extent() vk.Extent2D { return w.extent }
func (w *mockWindow) WasResized() bool    { return w.resized }
func (w *mockWindow) ResetResized()       { w.resized = false }

func (w *mockWindow) WaitEvents() {
	if w.onWaitEvents != nil {
		w.onWaitEvents(w)
	}
}
