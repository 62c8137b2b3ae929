package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// Device bundles the HAL handles rendering runs on. Owned devices (opened
// here) are destroyed by Close; borrowed devices are left untouched.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	owned    bool
}

// OpenRegistry acquires a device through a backend registered with the HAL
// registry. The root package registers Vulkan with a blank import; tests
// and headless callers use OpenNoop instead.
func OpenRegistry(backend gputypes.Backend) (*Device, error) {
	b, ok := hal.GetBackend(backend)
	if !ok {
		return nil, fmt.Errorf("backend %d not registered", backend)
	}
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	dev, err := openAdapter(instance)
	if err != nil {
		instance.Destroy()
		return nil, err
	}
	dev.instance = instance
	return dev, nil
}

// OpenNoop acquires a device from the in-process noop backend, which
// accepts every HAL call and renders nothing. The test suite and headless
// smoke paths run on it.
func OpenNoop() (*Device, error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("create noop instance: %w", err)
	}
	dev, err := openAdapter(instance)
	if err != nil {
		instance.Destroy()
		return nil, err
	}
	dev.instance = instance
	return dev, nil
}

// Borrow wraps device handles owned by the host application.
func Borrow(device hal.Device, queue hal.Queue) *Device {
	return &Device{device: device, queue: queue}
}

// openAdapter picks a hardware adapter when one is exposed, otherwise the
// first adapter, and opens it with default limits.
func openAdapter(instance hal.Instance) (*Device, error) {
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("open device: %w", err)
	}
	Logger().Info("gpu: adapter selected",
		"adapter", selected.Info.Name,
		"device_type", int(selected.Info.DeviceType))
	return &Device{device: openDev.Device, queue: openDev.Queue, owned: true}, nil
}

// Handle returns the HAL device.
func (d *Device) Handle() hal.Device { return d.device }

// Queue returns the HAL queue.
func (d *Device) Queue() hal.Queue { return d.queue }

// Close destroys owned handles in reverse acquisition order. Safe to call
// more than once; borrowed handles are only detached.
func (d *Device) Close() {
	if !d.owned {
		d.device = nil
		d.queue = nil
		return
	}
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
		d.queue = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}
