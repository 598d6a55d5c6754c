package lve

import (
	"log"

	vk "github.com/vulkan-go/vulkan"
)

// SwapchainSupportDetails is the driver-reported capability set a chain is
// negotiated against: surface capabilities, supported pixel formats, and
// supported presentation modes.
type SwapchainSupportDetails struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// SelectSurfaceFormat prefers 8-bit sRGB with a non-linear sRGB color space
// and otherwise falls back to the first format the surface reports.
func (d *SwapchainSupportDetails) SelectSurfaceFormat() vk.SurfaceFormat {
	for _, f := range d.Formats {
		if f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	return d.Formats[0]
}

// SelectPresentMode prefers mailbox for low latency and falls back to FIFO,
// which the spec guarantees to be available. The policy is two-tier on
// purpose: immediate mode would reduce latency further at the cost of
// tearing, so it is not part of the fallback list.
func (d *SwapchainSupportDetails) SelectPresentMode() vk.PresentMode {
	for _, m := range d.PresentModes {
		if m == vk.PresentModeMailbox {
			log.Println("vulkan: present mode: mailbox")
			return m
		}
	}
	log.Println("vulkan: present mode: fifo (v-sync)")
	return vk.PresentModeFifo
}

// SelectExtent resolves the chain extent. A sentinel current extent means the
// surface size follows the window, so the requested extent is used, clamped
// into the supported range. Otherwise the surface dictates its own size and
// the request is ignored.
func (d *SwapchainSupportDetails) SelectExtent(requested vk.Extent2D) vk.Extent2D {
	if d.Capabilities.CurrentExtent.Width != vk.MaxUint32 {
		return d.Capabilities.CurrentExtent
	}
	return vk.Extent2D{
		Width: clampUint32(requested.Width,
			d.Capabilities.MinImageExtent.Width, d.Capabilities.MaxImageExtent.Width),
		Height: clampUint32(requested.Height,
			d.Capabilities.MinImageExtent.Height, d.Capabilities.MaxImageExtent.Height),
	}
}

// SelectImageCount asks for one image more than the reported minimum so the
// driver is less likely to make acquisition wait, clamped to the maximum when
// the surface declares one. A zero maximum means unbounded.
func (d *SwapchainSupportDetails) SelectImageCount() uint32 {
	count := d.Capabilities.MinImageCount + 1
	if d.Capabilities.MaxImageCount > 0 && count > d.Capabilities.MaxImageCount {
		count = d.Capabilities.MaxImageCount
	}
	return count
}
