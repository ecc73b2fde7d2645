// Package gpu implements the compute render path on the GPU with
// wgpu/hal.
//
// The stamp kernel in shaders/stamp.wgsl is compiled to SPIR-V with naga
// and run as a single compute pass over the padded dirty rectangle. Each
// invocation reads its pixel from a read-only source buffer, composites
// every visible stamp in batch order and writes a separate target buffer.
// Pixels travel as little-endian packed RGBA8 words; results are read
// back through a staging buffer and written to the compositor's target.
//
// Build with -tags nogpu to exclude the Vulkan backend entirely.
package gpu
