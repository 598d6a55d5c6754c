package lve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestSelectSurfaceFormatPrefersSrgb(t *testing.T) {
	d := SwapchainSupportDetails{
		Formats: []vk.SurfaceFormat{
			{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
	}
	got := d.SelectSurfaceFormat()
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, got.Format)
	assert.Equal(t, vk.ColorSpaceSrgbNonlinear, got.ColorSpace)
}

func TestSelectSurfaceFormatFallsBackToFirst(t *testing.T) {
	d := SwapchainSupportDetails{
		Formats: []vk.SurfaceFormat{
			{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			{Format: vk.FormatR16g16b16a16Sfloat, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
	}
	assert.Equal(t, vk.FormatR8g8b8a8Unorm, d.SelectSurfaceFormat().Format)
}

func TestSelectPresentModePrefersMailbox(t *testing.T) {
	d := SwapchainSupportDetails{
		PresentModes: []vk.PresentMode{
			vk.PresentModeImmediate,
			vk.PresentModeMailbox,
			vk.PresentModeFifo,
		},
	}
	assert.Equal(t, vk.PresentModeMailbox, d.SelectPresentMode())
}

func TestSelectPresentModeFallsBackToFifo(t *testing.T) {
	d := SwapchainSupportDetails{
		PresentModes: []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo},
	}
	assert.Equal(t, vk.PresentModeFifo, d.SelectPresentMode())
}

func TestSelectExtentSurfaceDictatesSize(t *testing.T) {
	d := SwapchainSupportDetails{
		Capabilities: vk.SurfaceCapabilities{
			CurrentExtent: vk.Extent2D{Width: 800, Height: 600},
		},
	}
	// The request is ignored when the surface reports a concrete extent.
	got := d.SelectExtent(vk.Extent2D{Width: 1024, Height: 768})
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, got)
}

func TestSelectExtentClampsRequested(t *testing.T) {
	d := SwapchainSupportDetails{
		Capabilities: vk.SurfaceCapabilities{
			CurrentExtent:  vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
			MinImageExtent: vk.Extent2D{Width: 320, Height: 240},
			MaxImageExtent: vk.Extent2D{Width: 1280, Height: 720},
		},
	}
	assert.Equal(t, vk.Extent2D{Width: 1280, Height: 720},
		d.SelectExtent(vk.Extent2D{Width: 1920, Height: 1080}))
	assert.Equal(t, vk.Extent2D{Width: 320, Height: 240},
		d.SelectExtent(vk.Extent2D{Width: 100, Height: 100}))
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600},
		d.SelectExtent(vk.Extent2D{Width: 800, Height: 600}))
}

func TestSelectImageCountUnbounded(t *testing.T) {
	d := SwapchainSupportDetails{
		Capabilities: vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 0},
	}
	assert.Equal(t, uint32(3), d.SelectImageCount())
}

func TestSelectImageCountClampedToMax(t *testing.T) {
	d := SwapchainSupportDetails{
		Capabilities: vk.SurfaceCapabilities{MinImageCount: 3, MaxImageCount: 3},
	}
	assert.Equal(t, uint32(3), d.SelectImageCount())
}
