package main

import (
	"flag"
	"log"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"

	lve "github.com/Radseq/littleVulkanEngine"
)

var (
	width    = flag.Int("width", 800, "initial window width")
	height   = flag.Int("height", 600, "initial window height")
	validate = flag.Bool("validate", false, "enable Vulkan validation layers")
	vertPath = flag.String("vert", "shaders/simple.vert.spv", "vertex shader SPIR-V path")
	fragPath = flag.String("frag", "shaders/simple.frag.spv", "fragment shader SPIR-V path")
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	flag.Parse()

	if err := glfw.Init(); err != nil {
		log.Fatalln("glfw init:", err)
	}
	defer glfw.Terminate()

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		log.Fatalln("vulkan init:", err)
	}

	window, err := lve.NewCoreWindow(*width, *height, "little vulkan engine")
	if err != nil {
		log.Fatalln(err)
	}
	defer window.Destroy()

	device, err := lve.NewCoreDevice(window, "little vulkan engine", *validate)
	if err != nil {
		log.Fatalln(err)
	}
	defer device.Destroy()

	renderer, err := lve.NewCoreRenderer(device, window)
	if err != nil {
		log.Fatalln(err)
	}
	defer renderer.Destroy()

	renderSystem, err := lve.NewRenderSystem(device, renderer.SwapchainRenderPass(), *vertPath, *fragPath)
	if err != nil {
		log.Fatalln(err)
	}
	defer renderSystem.Destroy()

	model, err := lve.NewCoreModel(device, []lve.Vertex{
		{Position: mgl32.Vec3{0, -0.5, 0}, Color: mgl32.Vec3{1, 0, 0}},
		{Position: mgl32.Vec3{0.5, 0.5, 0}, Color: mgl32.Vec3{0, 1, 0}},
		{Position: mgl32.Vec3{-0.5, 0.5, 0}, Color: mgl32.Vec3{0, 0, 1}},
	})
	if err != nil {
		log.Fatalln(err)
	}
	defer model.Destroy()

	objects := []lve.RenderObject{{
		Model:     model,
		Transform: mgl32.Ident4(),
	}}

	for !window.ShouldClose() {
		glfw.PollEvents()

		cmd, err := renderer.BeginFrame()
		if err != nil {
			log.Fatalln(err)
		}
		if cmd == nil {
			continue
		}

		renderer.BeginSwapchainRenderPass(cmd)
		renderSystem.Render(cmd, objects)
		renderer.EndSwapchainRenderPass(cmd)

		if err := renderer.EndFrame(); err != nil {
			log.Fatalln(err)
		}
	}

	device.WaitIdle()
}
