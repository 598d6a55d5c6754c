package lve

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// MaxFramesInFlight bounds how many frames the CPU may record ahead of the
// GPU. It is an application policy constant, independent of how many images
// the platform puts in the chain.
const MaxFramesInFlight = 2

// depthFormatCandidates is the descending preference list for the depth
// attachment. Support is queried from the device, never assumed.
var depthFormatCandidates = []vk.Format{
	vk.FormatD32Sfloat,
	vk.FormatD32SfloatS8Uint,
	vk.FormatD24UnormS8Uint,
}

// CoreSwapchain owns the chain of presentable images together with everything
// hanging off them: one color view, one depth image/memory/view and one
// framebuffer per chain slot, the render pass binding them, and the per-frame
// synchronization objects pacing submission against presentation.
//
// The chain is immutable once constructed. A window resize requires building
// a replacement chain, passing the stale one as predecessor so the platform
// can hand its internal state over, then destroying the stale one.
type CoreSwapchain struct {
	device       Device
	windowExtent vk.Extent2D

	swapchain    vk.Swapchain
	oldSwapchain *CoreSwapchain

	imageFormat vk.Format
	depthFormat vk.Format
	extent      vk.Extent2D

	images             []vk.Image
	imageViews         []vk.ImageView
	depthImages        []vk.Image
	depthImageMemories []vk.DeviceMemory
	depthImageViews    []vk.ImageView
	framebuffers       []vk.Framebuffer
	renderPass         vk.RenderPass

	imageAvailableSemaphores []vk.Semaphore
	renderFinishedSemaphores []vk.Semaphore
	inFlightFences           []vk.Fence
	// imagesInFlight maps a chain slot to the in-flight fence currently
	// responsible for it, or vk.NullFence. Indexed by image count, which
	// generally differs from MaxFramesInFlight; the two are never unified.
	imagesInFlight []vk.Fence

	currentFrame int
}

// NewCoreSwapchain builds a fresh chain for the requested extent.
func NewCoreSwapchain(device Device, windowExtent vk.Extent2D) (*CoreSwapchain, error) {
	return newCoreSwapchain(device, windowExtent, nil)
}

// NewCoreSwapchainFrom builds a chain that replaces previous, typically after
// a resize. The predecessor is only borrowed while the platform swaps its
// internal state over; it is released before the constructor returns and the
// caller keeps ownership of it, including destroying it.
func NewCoreSwapchainFrom(device Device, windowExtent vk.Extent2D, previous *CoreSwapchain) (*CoreSwapchain, error) {
	return newCoreSwapchain(device, windowExtent, previous)
}

func newCoreSwapchain(device Device, windowExtent vk.Extent2D, previous *CoreSwapchain) (*CoreSwapchain, error) {
	s := &CoreSwapchain{
		device:       device,
		windowExtent: windowExtent,
		oldSwapchain: previous,
	}
	if err := s.init(); err != nil {
		s.Destroy()
		return nil, err
	}
	s.oldSwapchain = nil
	return s, nil
}

func (s *CoreSwapchain) init() error {
	if err := s.createSwapchain(); err != nil {
		return err
	}
	if err := s.createImageViews(); err != nil {
		return err
	}
	if err := s.createRenderPass(); err != nil {
		return err
	}
	if err := s.createDepthResources(); err != nil {
		return err
	}
	if err := s.createFramebuffers(); err != nil {
		return err
	}
	return s.createSyncObjects()
}

func (s *CoreSwapchain) createSwapchain() error {
	support := s.device.SwapchainSupport()
	if len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		return errors.New("surface reports no formats or present modes")
	}

	surfaceFormat := support.SelectSurfaceFormat()
	presentMode := support.SelectPresentMode()
	extent := support.SelectExtent(s.windowExtent)
	imageCount := support.SelectImageCount()

	info := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          s.device.Surface(),
		MinImageCount:    imageCount,
		ImageFormat:      surfaceFormat.Format,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
	}

	families := s.device.QueueFamilies()
	if families.Separate() {
		info.ImageSharingMode = vk.SharingModeConcurrent
		info.QueueFamilyIndexCount = 2
		info.PQueueFamilyIndices = []uint32{families.Graphics, families.Present}
	} else {
		info.ImageSharingMode = vk.SharingModeExclusive
	}

	if s.oldSwapchain != nil {
		info.OldSwapchain = s.oldSwapchain.swapchain
	}

	swapchain, err := s.device.CreateSwapchain(&info)
	if err != nil {
		return err
	}
	s.swapchain = swapchain

	// Only a minimum image count was requested; the platform may have
	// created more, so query the actual count and size every per-slot
	// container from it.
	images, err := s.device.SwapchainImages(swapchain)
	if err != nil {
		return err
	}
	s.images = images
	s.imageFormat = surfaceFormat.Format
	s.extent = extent
	return nil
}

func (s *CoreSwapchain) createImageViews() error {
	s.imageViews = make([]vk.ImageView, len(s.images))
	for i := range s.images {
		view, err := s.device.CreateImageView(&vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    s.images[i],
			ViewType: vk.ImageViewType2d,
			Format:   s.imageFormat,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		})
		if err != nil {
			return errors.Wrapf(err, "color view for slot %d", i)
		}
		s.imageViews[i] = view
	}
	return nil
}

func (s *CoreSwapchain) createDepthResources() error {
	// Resolved by createRenderPass, which always runs first.
	depthFormat := s.depthFormat

	count := s.ImageCount()
	s.depthImages = make([]vk.Image, count)
	s.depthImageMemories = make([]vk.DeviceMemory, count)
	s.depthImageViews = make([]vk.ImageView, count)

	for i := 0; i < count; i++ {
		image, memory, err := s.device.CreateImageWithMemory(&vk.ImageCreateInfo{
			SType:     vk.StructureTypeImageCreateInfo,
			ImageType: vk.ImageType2d,
			Format:    depthFormat,
			Extent: vk.Extent3D{
				Width:  s.extent.Width,
				Height: s.extent.Height,
				Depth:  1,
			},
			MipLevels:     1,
			ArrayLayers:   1,
			Samples:       vk.SampleCount1Bit,
			Tiling:        vk.ImageTilingOptimal,
			Usage:         vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
			SharingMode:   vk.SharingModeExclusive,
			InitialLayout: vk.ImageLayoutUndefined,
		}, vk.MemoryPropertyDeviceLocalBit)
		if err != nil {
			return errors.Wrapf(err, "depth image for slot %d", i)
		}
		s.depthImages[i] = image
		s.depthImageMemories[i] = memory

		view, err := s.device.CreateImageView(&vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   depthFormat,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectDepthBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		})
		if err != nil {
			return errors.Wrapf(err, "depth view for slot %d", i)
		}
		s.depthImageViews[i] = view
	}
	return nil
}

func (s *CoreSwapchain) createFramebuffers() error {
	s.framebuffers = make([]vk.Framebuffer, s.ImageCount())
	for i := range s.framebuffers {
		// A framebuffer binds the color and depth views of the same slot.
		attachments := []vk.ImageView{s.imageViews[i], s.depthImageViews[i]}
		framebuffer, err := s.device.CreateFramebuffer(&vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      s.renderPass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           s.extent.Width,
			Height:          s.extent.Height,
			Layers:          1,
		})
		if err != nil {
			return errors.Wrapf(err, "framebuffer for slot %d", i)
		}
		s.framebuffers[i] = framebuffer
	}
	return nil
}

func (s *CoreSwapchain) createSyncObjects() error {
	s.imageAvailableSemaphores = make([]vk.Semaphore, MaxFramesInFlight)
	s.renderFinishedSemaphores = make([]vk.Semaphore, MaxFramesInFlight)
	s.inFlightFences = make([]vk.Fence, MaxFramesInFlight)
	s.imagesInFlight = make([]vk.Fence, s.ImageCount())

	for i := 0; i < MaxFramesInFlight; i++ {
		var err error
		if s.imageAvailableSemaphores[i], err = s.device.CreateSemaphore(); err != nil {
			return err
		}
		if s.renderFinishedSemaphores[i], err = s.device.CreateSemaphore(); err != nil {
			return err
		}
		// Created signaled so the very first acquire does not block.
		if s.inFlightFences[i], err = s.device.CreateFence(true); err != nil {
			return err
		}
	}
	return nil
}

// AcquireNextImage blocks until the current frame slot's previous work fully
// retired, then requests the next presentable image index. The result is
// passed through: vk.ErrorOutOfDate means the caller must rebuild the chain.
func (s *CoreSwapchain) AcquireNextImage() (uint32, vk.Result) {
	if err := s.device.WaitForFences(s.inFlightFences[s.currentFrame]); err != nil {
		return 0, vk.ErrorDeviceLost
	}
	return s.device.AcquireNextImage(s.swapchain, s.imageAvailableSemaphores[s.currentFrame])
}

// SubmitCommandBuffers submits recorded work for the acquired image and
// requests its presentation. If the target slot is still owned by another
// in-flight frame, that frame's fence is waited on first before the slot is
// reassigned; this is what makes an image count different from
// MaxFramesInFlight safe. The frame counter advances only on a successful
// present.
func (s *CoreSwapchain) SubmitCommandBuffers(buffers []vk.CommandBuffer, imageIndex uint32) vk.Result {
	if s.imagesInFlight[imageIndex] != vk.NullFence {
		if err := s.device.WaitForFences(s.imagesInFlight[imageIndex]); err != nil {
			return vk.ErrorDeviceLost
		}
	}
	s.imagesInFlight[imageIndex] = s.inFlightFences[s.currentFrame]

	if err := s.device.ResetFences(s.inFlightFences[s.currentFrame]); err != nil {
		return vk.ErrorDeviceLost
	}

	ret := s.device.SubmitGraphics(vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{s.imageAvailableSemaphores[s.currentFrame]},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   uint32(len(buffers)),
		PCommandBuffers:      buffers,
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{s.renderFinishedSemaphores[s.currentFrame]},
	}, s.inFlightFences[s.currentFrame])
	if ret != vk.Success {
		return ret
	}

	ret = s.device.Present(&vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{s.renderFinishedSemaphores[s.currentFrame]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.swapchain},
		PImageIndices:      []uint32{imageIndex},
	})
	if ret != vk.Success {
		return ret
	}

	s.currentFrame = (s.currentFrame + 1) % MaxFramesInFlight
	return ret
}

// FindDepthFormat returns the best supported depth attachment format from the
// preference list.
func (s *CoreSwapchain) FindDepthFormat() (vk.Format, error) {
	return s.device.FindSupportedFormat(depthFormatCandidates,
		vk.ImageTilingOptimal,
		vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit))
}

// CompareFormats reports whether the other chain uses the same color and
// depth formats, which decides whether pipelines built against this chain's
// render pass remain valid after a rebuild.
func (s *CoreSwapchain) CompareFormats(other *CoreSwapchain) bool {
	return other != nil &&
		other.imageFormat == s.imageFormat &&
		other.depthFormat == s.depthFormat
}

func (s *CoreSwapchain) ImageCount() int {
	return len(s.images)
}

func (s *CoreSwapchain) Framebuffer(index int) vk.Framebuffer {
	return s.framebuffers[index]
}

func (s *CoreSwapchain) RenderPass() vk.RenderPass {
	return s.renderPass
}

func (s *CoreSwapchain) ImageView(index int) vk.ImageView {
	return s.imageViews[index]
}

func (s *CoreSwapchain) ImageFormat() vk.Format {
	return s.imageFormat
}

func (s *CoreSwapchain) DepthFormat() vk.Format {
	return s.depthFormat
}

func (s *CoreSwapchain) Extent() vk.Extent2D {
	return s.extent
}

func (s *CoreSwapchain) Width() uint32 {
	return s.extent.Width
}

func (s *CoreSwapchain) Height() uint32 {
	return s.extent.Height
}

func (s *CoreSwapchain) AspectRatio() float32 {
	return float32(s.extent.Width) / float32(s.extent.Height)
}

// Destroy releases every owned resource in reverse dependency order: views
// before their images, images before their memory, framebuffers before the
// render pass, and the per-frame sync objects last. The presentable images
// themselves belong to the platform and are reclaimed with the chain handle.
// Safe to call on a partially constructed chain.
func (s *CoreSwapchain) Destroy() {
	for _, view := range s.imageViews {
		if view != vk.NullImageView {
			s.device.DestroyImageView(view)
		}
	}
	s.imageViews = nil

	if s.swapchain != vk.NullSwapchain {
		s.device.DestroySwapchain(s.swapchain)
		s.swapchain = vk.NullSwapchain
	}

	for i := range s.depthImages {
		if i < len(s.depthImageViews) && s.depthImageViews[i] != vk.NullImageView {
			s.device.DestroyImageView(s.depthImageViews[i])
		}
		if s.depthImages[i] != vk.NullImage {
			s.device.DestroyImage(s.depthImages[i])
		}
		if i < len(s.depthImageMemories) && s.depthImageMemories[i] != vk.NullDeviceMemory {
			s.device.FreeMemory(s.depthImageMemories[i])
		}
	}
	s.depthImages = nil
	s.depthImageMemories = nil
	s.depthImageViews = nil

	for _, framebuffer := range s.framebuffers {
		if framebuffer != vk.NullFramebuffer {
			s.device.DestroyFramebuffer(framebuffer)
		}
	}
	s.framebuffers = nil

	if s.renderPass != vk.NullRenderPass {
		s.device.DestroyRenderPass(s.renderPass)
		s.renderPass = vk.NullRenderPass
	}

	for i := 0; i < len(s.inFlightFences); i++ {
		s.device.DestroySemaphore(s.renderFinishedSemaphores[i])
		s.device.DestroySemaphore(s.imageAvailableSemaphores[i])
		s.device.DestroyFence(s.inFlightFences[i])
	}
	s.imageAvailableSemaphores = nil
	s.renderFinishedSemaphores = nil
	s.inFlightFences = nil
	s.imagesInFlight = nil
}
