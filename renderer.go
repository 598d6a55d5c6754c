package lve

import (
	"log"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CoreRenderer drives the per-frame loop on top of a CoreSwapchain: it hands
// out a command buffer for the frame, submits it, and rebuilds the chain when
// the surface goes stale. Command buffers are allocated once, one per frame
// in flight, and reused.
type CoreRenderer struct {
	device Device
	window Window

	swapchain      *CoreSwapchain
	commandBuffers []vk.CommandBuffer

	currentImageIndex uint32
	currentFrameIndex int
	frameStarted      bool
}

// NewCoreRenderer builds the initial chain for the window's current extent
// and allocates the per-frame command buffers.
func NewCoreRenderer(device Device, window Window) (*CoreRenderer, error) {
	r := &CoreRenderer{
		device: device,
		window: window,
	}
	if err := r.recreateSwapchain(); err != nil {
		return nil, err
	}
	buffers, err := device.AllocateCommandBuffers(MaxFramesInFlight)
	if err != nil {
		r.swapchain.Destroy()
		return nil, err
	}
	r.commandBuffers = buffers
	return r, nil
}

// BeginFrame acquires the next presentable image and starts recording the
// frame's command buffer. A nil buffer with a nil error means the chain was
// just rebuilt and the caller should skip this frame.
func (r *CoreRenderer) BeginFrame() (vk.CommandBuffer, error) {
	if r.frameStarted {
		panic("lve: BeginFrame called while a frame is already in progress")
	}

	imageIndex, ret := r.swapchain.AcquireNextImage()
	if ret == vk.ErrorOutOfDate {
		if err := r.recreateSwapchain(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if ret != vk.Success && ret != vk.Suboptimal {
		return nil, errors.Wrap(NewError(ret), "acquire swapchain image")
	}

	r.currentImageIndex = imageIndex
	r.frameStarted = true

	cmd := r.commandBuffers[r.currentFrameIndex]
	if err := r.device.BeginCommandBuffer(cmd); err != nil {
		r.frameStarted = false
		return nil, err
	}
	return cmd, nil
}

// EndFrame finishes recording, submits the frame, and presents. A stale or
// suboptimal chain, or a pending window resize, triggers a rebuild.
func (r *CoreRenderer) EndFrame() error {
	if !r.frameStarted {
		panic("lve: EndFrame called with no frame in progress")
	}

	cmd := r.commandBuffers[r.currentFrameIndex]
	if err := r.device.EndCommandBuffer(cmd); err != nil {
		return err
	}

	ret := r.swapchain.SubmitCommandBuffers([]vk.CommandBuffer{cmd}, r.currentImageIndex)
	r.frameStarted = false

	if ret == vk.ErrorOutOfDate || ret == vk.Suboptimal || r.window.WasResized() {
		r.window.ResetResized()
		if err := r.recreateSwapchain(); err != nil {
			return err
		}
	} else if ret != vk.Success {
		return errors.Wrap(NewError(ret), "submit swapchain image")
	}

	r.currentFrameIndex = (r.currentFrameIndex + 1) % MaxFramesInFlight
	return nil
}

// BeginSwapchainRenderPass opens the chain's render pass on the frame's
// command buffer, clearing both attachments, and sets the dynamic viewport
// and scissor to cover the full extent.
func (r *CoreRenderer) BeginSwapchainRenderPass(cmd vk.CommandBuffer) {
	if !r.frameStarted {
		panic("lve: BeginSwapchainRenderPass called with no frame in progress")
	}

	extent := r.swapchain.Extent()
	clearValues := []vk.ClearValue{
		vk.NewClearValue([]float32{0.01, 0.01, 0.01, 1}),
		vk.NewClearDepthStencil(1, 0),
	}
	vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  r.swapchain.RenderPass(),
		Framebuffer: r.swapchain.Framebuffer(int(r.currentImageIndex)),
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}, vk.SubpassContentsInline)

	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MaxDepth: 1,
	}})
	vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{{
		Extent: extent,
	}})
}

// EndSwapchainRenderPass closes the render pass opened by
// BeginSwapchainRenderPass.
func (r *CoreRenderer) EndSwapchainRenderPass(cmd vk.CommandBuffer) {
	if !r.frameStarted {
		panic("lve: EndSwapchainRenderPass called with no frame in progress")
	}
	vk.CmdEndRenderPass(cmd)
}

// recreateSwapchain rebuilds the chain for the window's current extent,
// handing the stale chain over as predecessor. It blocks while the window is
// minimized and refuses to continue if the rebuilt chain changed formats,
// since pipelines built against the old render pass would silently stop
// matching.
func (r *CoreRenderer) recreateSwapchain() error {
	extent := r.window.Extent()
	for extent.Width == 0 || extent.Height == 0 {
		r.window.WaitEvents()
		extent = r.window.Extent()
	}
	r.device.WaitIdle()

	if r.swapchain == nil {
		chain, err := NewCoreSwapchain(r.device, extent)
		if err != nil {
			return err
		}
		r.swapchain = chain
		return nil
	}

	old := r.swapchain
	chain, err := NewCoreSwapchainFrom(r.device, extent, old)
	if err != nil {
		return err
	}
	if !old.CompareFormats(chain) {
		chain.Destroy()
		return errors.New("swapchain image or depth format has changed")
	}
	old.Destroy()
	r.swapchain = chain
	log.Printf("vulkan: swapchain recreated at %dx%d", extent.Width, extent.Height)
	return nil
}

// AspectRatio exposes the current chain's aspect ratio for projection setup.
func (r *CoreRenderer) AspectRatio() float32 {
	return r.swapchain.AspectRatio()
}

// FrameStarted reports whether a frame is currently being recorded.
func (r *CoreRenderer) FrameStarted() bool {
	return r.frameStarted
}

// FrameIndex returns the in-flight frame slot of the frame being recorded.
func (r *CoreRenderer) FrameIndex() int {
	if !r.frameStarted {
		panic("lve: FrameIndex called with no frame in progress")
	}
	return r.currentFrameIndex
}

// SwapchainRenderPass exposes the render pass pipelines must be built against.
func (r *CoreRenderer) SwapchainRenderPass() vk.RenderPass {
	return r.swapchain.RenderPass()
}

// Destroy frees the command buffers and the chain.
func (r *CoreRenderer) Destroy() {
	if r.commandBuffers != nil {
		r.device.FreeCommandBuffers(r.commandBuffers)
		r.commandBuffers = nil
	}
	if r.swapchain != nil {
		r.swapchain.Destroy()
		r.swapchain = nil
	}
}
