// Package gpu implements the compositor's rendering layer on the gogpu/wgpu
// hardware abstraction layer.
//
// This is an internal package used by the compositor for multi-channel video
// rendering. It runs on gogpu/wgpu's Pure Go HAL (zero CGO), which supports
// Vulkan on hardware and a noop backend for headless use.
//
// # Architecture Overview
//
// Each composited frame flows through one render pass:
//
//	Frames -> TextureCache (upload/convert) -> Session (encode, submit, fence wait) -> Target
//
// Key components:
//
//   - Device: HAL device acquisition, owned (registry, noop) or borrowed from a host
//   - VideoPipeline: textured-quad pipelines, one per supported target format
//   - TextureCache: per-channel video textures, reused while frame geometry is stable
//   - Session: records draws, submits, and blocks on the frame fence
//   - Target: offscreen color attachment for headless rendering and readback
//
// # Usage
//
// Open a device, build the pipeline once, then render frames through a
// session:
//
//	dev, err := gpu.OpenNoop()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//
//	pipeline, err := gpu.NewVideoPipeline(dev.Handle(), dev.Queue())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pipeline.Destroy()
//
//	cache := gpu.NewTextureCache(dev.Handle(), dev.Queue(), 0)
//	defer cache.Destroy()
//	session := gpu.NewSession(dev.Handle(), dev.Queue(), pipeline)
//
// # Shaders
//
// The quad shader is WGSL under shaders/, compiled to SPIR-V with
// gogpu/naga when the pipeline is built. There is no runtime shader
// generation.
//
// # Thread Safety
//
// Sessions, caches and pipelines are not synchronized. The compositor drives
// them from a single goroutine; only SetLogger and Logger are safe to call
// concurrently.
//
// # Related Packages
//
//   - github.com/gogpu/wgpu/hal: hardware abstraction layer
//   - github.com/gogpu/naga: WGSL to SPIR-V compilation
//   - github.com/gogpu/gputypes: shared GPU enums and descriptors
package gpu
