package lve

import (
	"log"
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var (
	requiredDeviceExtensions = []string{"VK_KHR_swapchain\x00"}
	defaultValidationLayers  = []string{"VK_LAYER_KHRONOS_validation\x00"}
)

// CoreDevice owns the Vulkan instance, the selected physical device, the
// logical device with its graphics and present queues, and the primary
// command pool. It implements the Device interface consumed by the
// presentation chain and the renderer.
type CoreDevice struct {
	instance      vk.Instance
	debugCallback vk.DebugReportCallback
	gpu           vk.PhysicalDevice
	device        vk.Device
	surface       vk.Surface

	families      QueueFamilyIndices
	graphicsQueue vk.Queue
	presentQueue  vk.Queue
	commandPool   vk.CommandPool

	gpuProperties    vk.PhysicalDeviceProperties
	memoryProperties vk.PhysicalDeviceMemoryProperties

	validate bool
}

// NewCoreDevice creates the full device stack for a window: instance with the
// extensions GLFW requires, optional validation layers with a debug report
// callback, the first physical device offering graphics and presentation on
// the window surface, a logical device, and a command pool.
func NewCoreDevice(window *CoreWindow, appName string, validate bool) (*CoreDevice, error) {
	d := &CoreDevice{validate: validate}

	if err := d.createInstance(window, appName); err != nil {
		return nil, err
	}
	if d.validate {
		d.setupDebugCallback()
	}

	surface, err := window.CreateSurface(d.instance)
	if err != nil {
		d.Destroy()
		return nil, err
	}
	d.surface = surface

	if err := d.pickPhysicalDevice(); err != nil {
		d.Destroy()
		return nil, err
	}
	if err := d.createLogicalDevice(); err != nil {
		d.Destroy()
		return nil, err
	}
	if err := d.createCommandPool(); err != nil {
		d.Destroy()
		return nil, err
	}
	return d, nil
}

func (d *CoreDevice) createInstance(window *CoreWindow, appName string) error {
	required := safeStrings(window.RequiredInstanceExtensions())
	if d.validate {
		required = append(required, safeString("VK_EXT_debug_report"))
	}
	actual, err := InstanceExtensions()
	if err != nil {
		return err
	}
	instanceExtensions, missing := checkExisting(actual, required)
	if missing > 0 {
		log.Println("vulkan warning: missing", missing, "required instance extensions during init")
	}

	var layers []string
	if d.validate {
		actualLayers, err := ValidationLayers()
		if err != nil {
			return err
		}
		layers, missing = checkExisting(actualLayers, defaultValidationLayers)
		if missing > 0 {
			log.Println("vulkan warning: missing", missing, "requested validation layers during init")
		}
	}

	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			PApplicationName:   safeString(appName),
			PEngineName:        "littleVulkanEngine\x00",
		},
		EnabledExtensionCount:   uint32(len(instanceExtensions)),
		PpEnabledExtensionNames: instanceExtensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}, nil, &instance)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "vkCreateInstance")
	}
	d.instance = instance
	vk.InitInstance(instance)
	return nil
}

func (d *CoreDevice) setupDebugCallback() {
	ret := vk.CreateDebugReportCallback(d.instance, &vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
		PfnCallback: dbgCallbackFunc,
	}, nil, &d.debugCallback)
	if isError(ret) {
		log.Println("vulkan warning: debug report callback unavailable")
		return
	}
	log.Println("vulkan: debug report callback enabled")
}

func (d *CoreDevice) pickPhysicalDevice() error {
	var gpuCount uint32
	ret := vk.EnumeratePhysicalDevices(d.instance, &gpuCount, nil)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "vkEnumeratePhysicalDevices")
	}
	if gpuCount == 0 {
		return errors.New("vulkan error: no GPU devices found")
	}
	gpus := make([]vk.PhysicalDevice, gpuCount)
	ret = vk.EnumeratePhysicalDevices(d.instance, &gpuCount, gpus)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "vkEnumeratePhysicalDevices")
	}

	for _, gpu := range gpus {
		families, ok := d.findQueueFamilies(gpu)
		if !ok {
			continue
		}
		if !d.hasDeviceExtensions(gpu) {
			continue
		}
		support := d.querySwapchainSupport(gpu)
		if len(support.Formats) == 0 || len(support.PresentModes) == 0 {
			continue
		}
		d.gpu = gpu
		d.families = families
		break
	}
	if d.gpu == nil {
		return errors.New("vulkan error: no suitable GPU with graphics and present support")
	}

	vk.GetPhysicalDeviceProperties(d.gpu, &d.gpuProperties)
	d.gpuProperties.Deref()
	vk.GetPhysicalDeviceMemoryProperties(d.gpu, &d.memoryProperties)
	d.memoryProperties.Deref()
	log.Printf("vulkan: using device %s", vk.ToString(d.gpuProperties.DeviceName[:]))
	return nil
}

func (d *CoreDevice) findQueueFamilies(gpu vk.PhysicalDevice) (QueueFamilyIndices, bool) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, props)

	var families QueueFamilyIndices
	var graphicsFound, presentFound bool
	for i := uint32(0); i < count; i++ {
		props[i].Deref()
		if !graphicsFound && props[i].QueueCount > 0 &&
			props[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			families.Graphics = i
			graphicsFound = true
		}
		var supportsPresent vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(gpu, i, d.surface, &supportsPresent)
		if !presentFound && props[i].QueueCount > 0 && supportsPresent.B() {
			families.Present = i
			presentFound = true
		}
		if graphicsFound && presentFound {
			break
		}
	}
	return families, graphicsFound && presentFound
}

func (d *CoreDevice) hasDeviceExtensions(gpu vk.PhysicalDevice) bool {
	actual, err := DeviceExtensions(gpu)
	if err != nil {
		return false
	}
	_, missing := checkExisting(actual, requiredDeviceExtensions)
	return missing == 0
}

func (d *CoreDevice) querySwapchainSupport(gpu vk.PhysicalDevice) SwapchainSupportDetails {
	var details SwapchainSupportDetails

	vk.GetPhysicalDeviceSurfaceCapabilities(gpu, d.surface, &details.Capabilities)
	details.Capabilities.Deref()
	details.Capabilities.CurrentExtent.Deref()
	details.Capabilities.MinImageExtent.Deref()
	details.Capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(gpu, d.surface, &formatCount, nil)
	if formatCount > 0 {
		details.Formats = make([]vk.SurfaceFormat, formatCount)
		vk.GetPhysicalDeviceSurfaceFormats(gpu, d.surface, &formatCount, details.Formats)
		for i := range details.Formats {
			details.Formats[i].Deref()
		}
	}

	var modeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(gpu, d.surface, &modeCount, nil)
	if modeCount > 0 {
		details.PresentModes = make([]vk.PresentMode, modeCount)
		vk.GetPhysicalDeviceSurfacePresentModes(gpu, d.surface, &modeCount, details.PresentModes)
	}
	return details
}

func (d *CoreDevice) createLogicalDevice() error {
	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: d.families.Graphics,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}
	if d.families.Separate() {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: d.families.Present,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	var layers []string
	if d.validate {
		actualLayers, _ := ValidationLayers()
		layers, _ = checkExisting(actualLayers, defaultValidationLayers)
	}

	var device vk.Device
	ret := vk.CreateDevice(d.gpu, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(requiredDeviceExtensions)),
		PpEnabledExtensionNames: safeStrings(requiredDeviceExtensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}, nil, &device)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "vkCreateDevice")
	}
	d.device = device

	vk.GetDeviceQueue(d.device, d.families.Graphics, 0, &d.graphicsQueue)
	if d.families.Separate() {
		vk.GetDeviceQueue(d.device, d.families.Present, 0, &d.presentQueue)
	} else {
		d.presentQueue = d.graphicsQueue
	}
	return nil
}

func (d *CoreDevice) createCommandPool() error {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(d.device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: d.families.Graphics,
		Flags: vk.CommandPoolCreateFlags(
			vk.CommandPoolCreateTransientBit | vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "vkCreateCommandPool")
	}
	d.commandPool = pool
	return nil
}

// Destroy releases everything the device owns. Safe to call on a partially
// constructed device.
func (d *CoreDevice) Destroy() {
	if d.device != nil {
		vk.DeviceWaitIdle(d.device)
	}
	if d.commandPool != vk.NullCommandPool {
		vk.DestroyCommandPool(d.device, d.commandPool, nil)
		d.commandPool = vk.NullCommandPool
	}
	if d.device != nil {
		vk.DestroyDevice(d.device, nil)
		d.device = nil
	}
	if d.debugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(d.instance, d.debugCallback, nil)
		d.debugCallback = vk.NullDebugReportCallback
	}
	if d.surface != vk.NullSurface {
		vk.DestroySurface(d.instance, d.surface, nil)
		d.surface = vk.NullSurface
	}
	if d.instance != nil {
		vk.DestroyInstance(d.instance, nil)
		d.instance = nil
	}
}

// Handle gets the logical device handle.
func (d *CoreDevice) Handle() vk.Device {
	return d.device
}

// PhysicalDevice gets the selected physical device.
func (d *CoreDevice) PhysicalDevice() vk.PhysicalDevice {
	return d.gpu
}

func (d *CoreDevice) GraphicsQueue() vk.Queue {
	return d.graphicsQueue
}

func (d *CoreDevice) PresentQueue() vk.Queue {
	return d.presentQueue
}

func (d *CoreDevice) CommandPool() vk.CommandPool {
	return d.commandPool
}

func (d *CoreDevice) MemoryProperties() vk.PhysicalDeviceMemoryProperties {
	return d.memoryProperties
}

func (d *CoreDevice) Properties() vk.PhysicalDeviceProperties {
	return d.gpuProperties
}

// --- Device interface implementation ---

func (d *CoreDevice) SwapchainSupport() SwapchainSupportDetails {
	return d.querySwapchainSupport(d.gpu)
}

func (d *CoreDevice) QueueFamilies() QueueFamilyIndices {
	return d.families
}

func (d *CoreDevice) Surface() vk.Surface {
	return d.surface
}

func (d *CoreDevice) CreateSwapchain(info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	var swapchain vk.Swapchain
	ret := vk.CreateSwapchain(d.device, info, nil, &swapchain)
	if isError(ret) {
		return vk.NullSwapchain, errors.Wrap(NewError(ret), "vkCreateSwapchainKHR")
	}
	return swapchain, nil
}

func (d *CoreDevice) SwapchainImages(swapchain vk.Swapchain) ([]vk.Image, error) {
	var count uint32
	ret := vk.GetSwapchainImages(d.device, swapchain, &count, nil)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "vkGetSwapchainImagesKHR")
	}
	images := make([]vk.Image, count)
	ret = vk.GetSwapchainImages(d.device, swapchain, &count, images)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "vkGetSwapchainImagesKHR")
	}
	return images, nil
}

func (d *CoreDevice) DestroySwapchain(swapchain vk.Swapchain) {
	vk.DestroySwapchain(d.device, swapchain, nil)
}

func (d *CoreDevice) CreateImageView(info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(d.device, info, nil, &view)
	if isError(ret) {
		return vk.NullImageView, errors.Wrap(NewError(ret), "vkCreateImageView")
	}
	return view, nil
}

func (d *CoreDevice) DestroyImageView(view vk.ImageView) {
	vk.DestroyImageView(d.device, view, nil)
}

func (d *CoreDevice) CreateRenderPass(info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	var pass vk.RenderPass
	ret := vk.CreateRenderPass(d.device, info, nil, &pass)
	if isError(ret) {
		return vk.NullRenderPass, errors.Wrap(NewError(ret), "vkCreateRenderPass")
	}
	return pass, nil
}

func (d *CoreDevice) DestroyRenderPass(pass vk.RenderPass) {
	vk.DestroyRenderPass(d.device, pass, nil)
}

func (d *CoreDevice) CreateFramebuffer(info *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	var framebuffer vk.Framebuffer
	ret := vk.CreateFramebuffer(d.device, info, nil, &framebuffer)
	if isError(ret) {
		return vk.NullFramebuffer, errors.Wrap(NewError(ret), "vkCreateFramebuffer")
	}
	return framebuffer, nil
}

func (d *CoreDevice) DestroyFramebuffer(framebuffer vk.Framebuffer) {
	vk.DestroyFramebuffer(d.device, framebuffer, nil)
}

func (d *CoreDevice) FindSupportedFormat(candidates []vk.Format,
	tiling vk.ImageTiling, features vk.FormatFeatureFlags) (vk.Format, error) {

	for _, format := range candidates {
		var props vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(d.gpu, format, &props)
		props.Deref()

		switch tiling {
		case vk.ImageTilingLinear:
			if props.LinearTilingFeatures&features == features {
				return format, nil
			}
		case vk.ImageTilingOptimal:
			if props.OptimalTilingFeatures&features == features {
				return format, nil
			}
		}
	}
	return vk.FormatUndefined, errors.New("vulkan error: no supported format among candidates")
}

func (d *CoreDevice) findMemoryType(typeFilter uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < d.memoryProperties.MemoryTypeCount; i++ {
		d.memoryProperties.MemoryTypes[i].Deref()
		if typeFilter&(1<<i) != 0 &&
			d.memoryProperties.MemoryTypes[i].PropertyFlags&properties == properties {
			return i, nil
		}
	}
	return 0, errors.New("vulkan error: no suitable memory type")
}

func (d *CoreDevice) CreateImageWithMemory(info *vk.ImageCreateInfo,
	props vk.MemoryPropertyFlagBits) (vk.Image, vk.DeviceMemory, error) {

	var image vk.Image
	ret := vk.CreateImage(d.device, info, nil, &image)
	if isError(ret) {
		return vk.NullImage, vk.NullDeviceMemory, errors.Wrap(NewError(ret), "vkCreateImage")
	}

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.device, image, &memReqs)
	memReqs.Deref()

	memType, err := d.findMemoryType(memReqs.MemoryTypeBits, vk.MemoryPropertyFlags(props))
	if err != nil {
		vk.DestroyImage(d.device, image, nil)
		return vk.NullImage, vk.NullDeviceMemory, err
	}

	var memory vk.DeviceMemory
	ret = vk.AllocateMemory(d.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &memory)
	if isError(ret) {
		vk.DestroyImage(d.device, image, nil)
		return vk.NullImage, vk.NullDeviceMemory, errors.Wrap(NewError(ret), "vkAllocateMemory")
	}

	ret = vk.BindImageMemory(d.device, image, memory, 0)
	if isError(ret) {
		vk.FreeMemory(d.device, memory, nil)
		vk.DestroyImage(d.device, image, nil)
		return vk.NullImage, vk.NullDeviceMemory, errors.Wrap(NewError(ret), "vkBindImageMemory")
	}
	return image, memory, nil
}

func (d *CoreDevice) DestroyImage(image vk.Image) {
	vk.DestroyImage(d.device, image, nil)
}

func (d *CoreDevice) FreeMemory(memory vk.DeviceMemory) {
	vk.FreeMemory(d.device, memory, nil)
}

// CreateBuffer creates a host-visible buffer, binds fresh memory to it and
// copies data in. Used for small vertex buffers; large uploads would want a
// staging path instead.
func (d *CoreDevice) CreateBuffer(data []byte, usage vk.BufferUsageFlagBits) (vk.Buffer, vk.DeviceMemory, error) {
	var buffer vk.Buffer
	ret := vk.CreateBuffer(d.device, &vk.BufferCreateInfo{
		SType: vk.StructureTypeBufferCreateInfo,
		Usage: vk.BufferUsageFlags(usage),
		Size:  vk.DeviceSize(len(data)),
	}, nil, &buffer)
	if isError(ret) {
		return vk.NullBuffer, vk.NullDeviceMemory, errors.Wrap(NewError(ret), "vkCreateBuffer")
	}

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.device, buffer, &memReqs)
	memReqs.Deref()

	memType, err := d.findMemoryType(memReqs.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		vk.DestroyBuffer(d.device, buffer, nil)
		return vk.NullBuffer, vk.NullDeviceMemory, err
	}

	var memory vk.DeviceMemory
	ret = vk.AllocateMemory(d.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &memory)
	if isError(ret) {
		vk.DestroyBuffer(d.device, buffer, nil)
		return vk.NullBuffer, vk.NullDeviceMemory, errors.Wrap(NewError(ret), "vkAllocateMemory")
	}
	vk.BindBufferMemory(d.device, buffer, memory, 0)

	if len(data) > 0 {
		var pData unsafe.Pointer
		ret = vk.MapMemory(d.device, memory, 0, vk.DeviceSize(len(data)), 0, &pData)
		if isError(ret) {
			vk.FreeMemory(d.device, memory, nil)
			vk.DestroyBuffer(d.device, buffer, nil)
			return vk.NullBuffer, vk.NullDeviceMemory, errors.Wrap(NewError(ret), "vkMapMemory")
		}
		n := vk.Memcopy(pData, data)
		if n != len(data) {
			log.Printf("vulkan warning: failed to copy buffer data, %d != %d", n, len(data))
		}
		vk.UnmapMemory(d.device, memory)
	}
	return buffer, memory, nil
}

func (d *CoreDevice) DestroyBuffer(buffer vk.Buffer) {
	vk.DestroyBuffer(d.device, buffer, nil)
}

func (d *CoreDevice) CreateSemaphore() (vk.Semaphore, error) {
	var semaphore vk.Semaphore
	ret := vk.CreateSemaphore(d.device, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &semaphore)
	if isError(ret) {
		return vk.NullSemaphore, errors.Wrap(NewError(ret), "vkCreateSemaphore")
	}
	return semaphore, nil
}

func (d *CoreDevice) DestroySemaphore(semaphore vk.Semaphore) {
	vk.DestroySemaphore(d.device, semaphore, nil)
}

func (d *CoreDevice) CreateFence(signaled bool) (vk.Fence, error) {
	info := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	ret := vk.CreateFence(d.device, &info, nil, &fence)
	if isError(ret) {
		return vk.NullFence, errors.Wrap(NewError(ret), "vkCreateFence")
	}
	return fence, nil
}

func (d *CoreDevice) DestroyFence(fence vk.Fence) {
	vk.DestroyFence(d.device, fence, nil)
}

func (d *CoreDevice) WaitForFences(fences ...vk.Fence) error {
	ret := vk.WaitForFences(d.device, uint32(len(fences)), fences, vk.True, vk.MaxUint64)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "vkWaitForFences")
	}
	return nil
}

func (d *CoreDevice) ResetFences(fences ...vk.Fence) error {
	ret := vk.ResetFences(d.device, uint32(len(fences)), fences)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "vkResetFences")
	}
	return nil
}

func (d *CoreDevice) AcquireNextImage(swapchain vk.Swapchain, semaphore vk.Semaphore) (uint32, vk.Result) {
	var imageIndex uint32
	ret := vk.AcquireNextImage(d.device, swapchain, vk.MaxUint64, semaphore, vk.NullFence, &imageIndex)
	return imageIndex, ret
}

func (d *CoreDevice) SubmitGraphics(info vk.SubmitInfo, fence vk.Fence) vk.Result {
	return vk.QueueSubmit(d.graphicsQueue, 1, []vk.SubmitInfo{info}, fence)
}

func (d *CoreDevice) Present(info *vk.PresentInfo) vk.Result {
	return vk.QueuePresent(d.presentQueue, info)
}

func (d *CoreDevice) AllocateCommandBuffers(count uint32) ([]vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, count)
	ret := vk.AllocateCommandBuffers(d.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}, buffers)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "vkAllocateCommandBuffers")
	}
	return buffers, nil
}

func (d *CoreDevice) FreeCommandBuffers(buffers []vk.CommandBuffer) {
	vk.FreeCommandBuffers(d.device, d.commandPool, uint32(len(buffers)), buffers)
}

func (d *CoreDevice) BeginCommandBuffer(buffer vk.CommandBuffer) error {
	ret := vk.BeginCommandBuffer(buffer, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	})
	if isError(ret) {
		return errors.Wrap(NewError(ret), "vkBeginCommandBuffer")
	}
	return nil
}

func (d *CoreDevice) EndCommandBuffer(buffer vk.CommandBuffer) error {
	ret := vk.EndCommandBuffer(buffer)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "vkEndCommandBuffer")
	}
	return nil
}

func (d *CoreDevice) WaitIdle() {
	vk.DeviceWaitIdle(d.device)
}

func dbgCallbackFunc(flags vk.DebugReportFlags, _ vk.DebugReportObjectType,
	_ uint64, _ uint, messageCode int32, layerPrefix string,
	message string, _ unsafe.Pointer) vk.Bool32 {

	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		log.Printf("vulkan ERROR: [%s] Code %d : %s", layerPrefix, messageCode, message)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		log.Printf("vulkan WARNING: [%s] Code %d : %s", layerPrefix, messageCode, message)
	default:
		log.Printf("vulkan INFORMATION: [%s] Code %d : %s", layerPrefix, messageCode, message)
	}
	return vk.Bool32(vk.False)
}
