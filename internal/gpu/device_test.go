package gpu

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func TestOpenNoop(t *testing.T) {
	dev, err := OpenNoop()
	if err != nil {
		t.Fatalf("OpenNoop failed: %v", err)
	}
	if dev.Handle() == nil {
		t.Error("expected non-nil device handle")
	}
	if dev.Queue() == nil {
		t.Error("expected non-nil queue")
	}

	dev.Close()
	if dev.Handle() != nil {
		t.Error("expected nil device handle after Close")
	}

	// Double-close should be safe.
	dev.Close()
}

func TestBorrow(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	dev := Borrow(device, queue)
	if dev.Handle() != device {
		t.Error("Handle() did not return the borrowed device")
	}
	if dev.Queue() != queue {
		t.Error("Queue() did not return the borrowed queue")
	}

	// Closing a borrowed device must only detach, never destroy: the
	// owner's handles stay usable.
	dev.Close()
	if dev.Handle() != nil {
		t.Error("expected nil handle after Close")
	}

	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "post_close_probe",
		Size:  16,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		t.Fatalf("borrowed device unusable after Close: %v", err)
	}
	device.DestroyBuffer(buf)
}

func TestOpenRegistryUnknownBackend(t *testing.T) {
	if _, err := OpenRegistry(gputypes.Backend(250)); err == nil {
		t.Fatal("expected error for unregistered backend")
	}
}
