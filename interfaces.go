package lve

import vk "github.com/vulkan-go/vulkan"

// QueueFamilyIndices identifies the queue families used for graphics work and
// for presentation. The two may name the same family on most hardware.
type QueueFamilyIndices struct {
	Graphics uint32
	Present  uint32
}

// Separate is true when presentation runs on a different family than graphics,
// which forces concurrent sharing of the swapchain images.
func (q QueueFamilyIndices) Separate() bool {
	return q.Graphics != q.Present
}

// Device is the narrow collaborator surface the presentation chain consumes.
// CoreDevice implements it over a real Vulkan device; tests substitute a mock.
//
// All blocking waits use an effectively infinite timeout. Methods returning a
// vk.Result pass it through uninterpreted: distinguishing recoverable results
// (out of date, suboptimal) from fatal ones is the caller's policy.
type Device interface {
	// SwapchainSupport queries the surface capability set the chain
	// negotiates against. Re-queried on every chain construction because a
	// resize changes the reported extents.
	SwapchainSupport() SwapchainSupportDetails
	// QueueFamilies reports the graphics and present queue family indices.
	QueueFamilies() QueueFamilyIndices
	// Surface is the presentation surface the chain targets.
	Surface() vk.Surface

	CreateSwapchain(info *vk.SwapchainCreateInfo) (vk.Swapchain, error)
	SwapchainImages(swapchain vk.Swapchain) ([]vk.Image, error)
	DestroySwapchain(swapchain vk.Swapchain)

	CreateImageView(info *vk.ImageViewCreateInfo) (vk.ImageView, error)
	DestroyImageView(view vk.ImageView)

	CreateRenderPass(info *vk.RenderPassCreateInfo) (vk.RenderPass, error)
	DestroyRenderPass(pass vk.RenderPass)

	CreateFramebuffer(info *vk.FramebufferCreateInfo) (vk.Framebuffer, error)
	DestroyFramebuffer(framebuffer vk.Framebuffer)

	// FindSupportedFormat returns the first candidate format supporting the
	// requested tiling features, or an error when none does.
	FindSupportedFormat(candidates []vk.Format, tiling vk.ImageTiling, features vk.FormatFeatureFlags) (vk.Format, error)
	// CreateImageWithMemory creates an image and binds fresh device memory
	// with the given property preference to it.
	CreateImageWithMemory(info *vk.ImageCreateInfo, props vk.MemoryPropertyFlagBits) (vk.Image, vk.DeviceMemory, error)
	DestroyImage(image vk.Image)
	FreeMemory(memory vk.DeviceMemory)

	CreateSemaphore() (vk.Semaphore, error)
	DestroySemaphore(semaphore vk.Semaphore)
	CreateFence(signaled bool) (vk.Fence, error)
	DestroyFence(fence vk.Fence)
	// WaitForFences blocks until every listed fence is signaled.
	WaitForFences(fences ...vk.Fence) error
	ResetFences(fences ...vk.Fence) error

	// AcquireNextImage requests the next presentable image index, signaling
	// the given semaphore once the image is ready to be rendered to.
	AcquireNextImage(swapchain vk.Swapchain, semaphore vk.Semaphore) (uint32, vk.Result)
	// SubmitGraphics submits recorded work to the graphics queue, signaling
	// fence on completion.
	SubmitGraphics(info vk.SubmitInfo, fence vk.Fence) vk.Result
	// Present requests presentation on the present queue.
	Present(info *vk.PresentInfo) vk.Result

	AllocateCommandBuffers(count uint32) ([]vk.CommandBuffer, error)
	FreeCommandBuffers(buffers []vk.CommandBuffer)
	BeginCommandBuffer(buffer vk.CommandBuffer) error
	EndCommandBuffer(buffer vk.CommandBuffer) error

	// WaitIdle blocks until the device finished all outstanding work.
	WaitIdle()
}

// Window is the windowing surface the renderer watches for size changes.
// CoreWindow implements it over GLFW.
type Window interface {
	// Extent reports the current framebuffer size in pixels.
	Extent() vk.Extent2D
	// WasResized reports whether the framebuffer size changed since the
	// last ResetResized call.
	WasResized() bool
	ResetResized()
	// WaitEvents blocks until at least one window event arrives. Used to
	// park the frame loop while the window is minimized.
	WaitEvents()
}
