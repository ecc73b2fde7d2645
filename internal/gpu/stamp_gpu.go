//go:build !nogpu

package gpu

import (
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/inkpad"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// fenceTimeout bounds how long a dispatch waits for the GPU.
const fenceTimeout = 5 * time.Second

// StampAccelerator runs the stamp kernel as a wgpu/hal compute shader.
// It implements inkpad.StampAccelerator and inkpad.DeviceProviderAware.
//
// Each Dispatch uploads the source pixels of the job's region into a
// read-only buffer, runs one compute pass that composites every visible
// stamp per pixel into a separate target buffer, waits on a fence and reads
// the region back into the job's target.
type StampAccelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	gpuReady       bool
	externalDevice bool // shared device: not destroyed on Close
}

var (
	_ inkpad.StampAccelerator    = (*StampAccelerator)(nil)
	_ inkpad.DeviceProviderAware = (*StampAccelerator)(nil)
)

// Name returns "wgpu".
func (a *StampAccelerator) Name() string { return "wgpu" }

// SetLogger routes internal/gpu diagnostics to l.
func (a *StampAccelerator) SetLogger(l *slog.Logger) { setLogger(l) }

// Init opens a GPU device, unless one was supplied with SetDeviceProvider,
// and builds the compute pipeline. Failures wrap inkpad.ErrNoComputeSupport.
func (a *StampAccelerator) Init(width, height int) error {
	if width <= 0 || height <= 0 {
		return inkpad.ErrInvalidDimensions
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gpuReady {
		return nil
	}
	if err := a.initGPU(); err != nil {
		a.releaseLocked()
		return fmt.Errorf("%w: %w", inkpad.ErrNoComputeSupport, err)
	}
	return nil
}

// Close releases the pipeline and, unless the device is shared, the device.
func (a *StampAccelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseLocked()
}

func (a *StampAccelerator) releaseLocked() {
	a.destroyPipeline()
	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
		}
		if a.instance != nil {
			a.instance.Destroy()
		}
	}
	a.device = nil
	a.instance = nil
	a.queue = nil
	a.gpuReady = false
	a.externalDevice = false
}

// SetDeviceProvider switches the accelerator to a shared GPU device. The
// provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func (a *StampAccelerator) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.releaseLocked()
	a.device = device
	a.queue = queue
	a.externalDevice = true

	if err := a.createPipeline(); err != nil {
		return fmt.Errorf("gpu: create pipeline with shared device: %w", err)
	}
	a.gpuReady = true
	slogger().Info("using shared device")
	return nil
}

// Dispatch composites job on the GPU. It returns inkpad.ErrFallbackToFragment
// if the accelerator is not initialized; any GPU error is returned wrapped
// and the compositor downgrades to a fragment path.
func (a *StampAccelerator) Dispatch(job inkpad.ComputeJob) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady {
		return inkpad.ErrFallbackToFragment
	}

	r := job.Rect.Intersect(job.Source.Bounds()).Intersect(job.Target.Bounds())
	if r.Empty() {
		return nil
	}
	src := job.Source.AppendRect(make([]byte, 0, r.Dx()*r.Dy()*4), r)

	visible := visibleStamps(job.Stamps, r)
	if len(visible) == 0 {
		job.Target.WriteRect(r, src)
		return nil
	}

	out, err := a.dispatchRegion(r, src, job.Stamps, job.Masks, visible)
	if err != nil {
		slogger().Warn("dispatch failed", "region", r, "stamps", len(visible), "err", err)
		return fmt.Errorf("gpu: dispatch: %w", err)
	}
	job.Target.WriteRect(r, out)
	slogger().Debug("dispatched", "region", r, "stamps", len(visible))
	return nil
}

// dispatchRegion uploads the region and the visible stamps, runs a single
// pass over the batch and returns the composited region pixels.
func (a *StampAccelerator) dispatchRegion(
	r image.Rectangle, src []byte,
	stamps []inkpad.KernelStamp, masks []inkpad.KernelMask, visible []uint32,
) ([]byte, error) {
	pixelCount := r.Dx() * r.Dy()
	pixelBufSize := uint64(pixelCount * 4) //nolint:gosec // region sizes are positive

	batch := make([]inkpad.KernelStamp, len(visible))
	for i, idx := range visible {
		batch[i] = stamps[idx]
	}
	maskBytes, offsets := packMasks(masks)
	stampBytes := packStamps(batch, masks, offsets)

	bufs := batchBuffers{
		stampsSize: uint64(len(stampBytes)),
		masksSize:  uint64(len(maskBytes)),
		pixelsSize: pixelBufSize,
	}
	defer a.destroyBuffers(&bufs)

	var err error
	if bufs.params, err = a.createBuffer("stamp_params", uint64(paramsSize),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst); err != nil {
		return nil, err
	}
	if bufs.stamps, err = a.createBuffer("stamp_stamps", bufs.stampsSize,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst); err != nil {
		return nil, err
	}
	if bufs.masks, err = a.createBuffer("stamp_masks", bufs.masksSize,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst); err != nil {
		return nil, err
	}
	if bufs.source, err = a.createBuffer("stamp_source", pixelBufSize,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst); err != nil {
		return nil, err
	}
	if bufs.target, err = a.createBuffer("stamp_target", pixelBufSize,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc); err != nil {
		return nil, err
	}
	if bufs.staging, err = a.createBuffer("stamp_staging", pixelBufSize,
		gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst); err != nil {
		return nil, err
	}

	a.queue.WriteBuffer(bufs.params, 0, makeParams(r, uint32(len(batch)))) //nolint:gosec // batch sizes fit uint32
	a.queue.WriteBuffer(bufs.stamps, 0, stampBytes)
	a.queue.WriteBuffer(bufs.masks, 0, maskBytes)
	a.queue.WriteBuffer(bufs.source, 0, packPixels(src, pixelCount))

	bg, err := a.createBindGroup(&bufs)
	if err != nil {
		return nil, err
	}
	defer a.device.DestroyBindGroup(bg)

	readback, err := a.encodePass(r, bg, &bufs)
	if err != nil {
		return nil, err
	}
	out := make([]byte, pixelCount*4)
	unpackPixels(readback, out, pixelCount)
	return out, nil
}

// batchBuffers holds the buffers of one dispatch. source and target are
// distinct so every invocation reads the pre-batch pixels.
type batchBuffers struct {
	params, stamps, masks             hal.Buffer
	source, target, staging           hal.Buffer
	stampsSize, masksSize, pixelsSize uint64
}

func (a *StampAccelerator) destroyBuffers(b *batchBuffers) {
	for _, buf := range []hal.Buffer{b.params, b.stamps, b.masks, b.source, b.target, b.staging} {
		if buf != nil {
			a.device.DestroyBuffer(buf)
		}
	}
}

func (a *StampAccelerator) createBuffer(label string, size uint64, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := a.device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: size, Usage: usage})
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", label, err)
	}
	return buf, nil
}

func (a *StampAccelerator) createBindGroup(b *batchBuffers) (hal.BindGroup, error) {
	bg, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "stamp_bind", Layout: a.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: b.params.NativeHandle(), Offset: 0, Size: uint64(paramsSize)}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: b.stamps.NativeHandle(), Offset: 0, Size: b.stampsSize}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: b.masks.NativeHandle(), Offset: 0, Size: b.masksSize}},
			{Binding: 3, Resource: gputypes.BufferBinding{Buffer: b.source.NativeHandle(), Offset: 0, Size: b.pixelsSize}},
			{Binding: 4, Resource: gputypes.BufferBinding{Buffer: b.target.NativeHandle(), Offset: 0, Size: b.pixelsSize}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	return bg, nil
}

// encodePass records the compute pass, copies the target to the staging
// buffer, submits and waits for the result.
func (a *StampAccelerator) encodePass(r image.Rectangle, bg hal.BindGroup, b *batchBuffers) ([]byte, error) {
	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "stamp_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("stamp_batch"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	w, h := uint32(r.Dx()), uint32(r.Dy()) //nolint:gosec // region sizes are positive
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "stamp_pass"})
	pass.SetPipeline(a.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch((w+7)/8, (h+7)/8, 1)
	pass.End()

	encoder.CopyBufferToBuffer(b.target, b.staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: b.pixelsSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer a.device.FreeCommandBuffer(cmdBuf)

	fence, err := a.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("create fence: %w", err)
	}
	defer a.device.DestroyFence(fence)
	if err := a.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	ok, err := a.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return nil, fmt.Errorf("wait for GPU: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("wait for GPU: timed out after %s", fenceTimeout)
	}

	readback := make([]byte, b.pixelsSize)
	if err := a.queue.ReadBuffer(b.staging, 0, readback); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}
	return readback, nil
}

func (a *StampAccelerator) initGPU() error {
	if a.device == nil {
		backend, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return fmt.Errorf("vulkan backend not available")
		}
		instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
		if err != nil {
			return fmt.Errorf("create instance: %w", err)
		}
		a.instance = instance
		adapters := instance.EnumerateAdapters(nil)
		if len(adapters) == 0 {
			return fmt.Errorf("no GPU adapters found")
		}
		selected := &adapters[0]
		for i := range adapters {
			if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
				adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
				selected = &adapters[i]
				break
			}
		}
		openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
		if err != nil {
			return fmt.Errorf("open device: %w", err)
		}
		a.device = openDev.Device
		a.queue = openDev.Queue
		slogger().Info("opened device", "adapter", selected.Info.Name)
	}
	if err := a.createPipeline(); err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	a.gpuReady = true
	return nil
}

func (a *StampAccelerator) createPipeline() error {
	code, err := compileSPIRV(stampShaderSource)
	if err != nil {
		return err
	}
	shader, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "stamp",
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return fmt.Errorf("create stamp shader module: %w", err)
	}
	a.shader = shader

	bindLayout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "stamp_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 3, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 4, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create stamp bind group layout: %w", err)
	}
	a.bindLayout = bindLayout

	pipeLayout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "stamp_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{a.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create stamp pipeline layout: %w", err)
	}
	a.pipeLayout = pipeLayout

	pipeline, err := a.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "stamp_pipeline", Layout: a.pipeLayout,
		Compute: hal.ComputeState{Module: a.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create stamp compute pipeline: %w", err)
	}
	a.pipeline = pipeline
	return nil
}

func (a *StampAccelerator) destroyPipeline() {
	if a.device == nil {
		return
	}
	if a.pipeline != nil {
		a.device.DestroyComputePipeline(a.pipeline)
		a.pipeline = nil
	}
	if a.pipeLayout != nil {
		a.device.DestroyPipelineLayout(a.pipeLayout)
		a.pipeLayout = nil
	}
	if a.bindLayout != nil {
		a.device.DestroyBindGroupLayout(a.bindLayout)
		a.bindLayout = nil
	}
	if a.shader != nil {
		a.device.DestroyShaderModule(a.shader)
		a.shader = nil
	}
}
