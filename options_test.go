package compositor

import (
	"testing"
	"time"

	"github.com/gogpu/gputypes"
)

// TestDefaultOptions tests the configuration used when no options are given.
func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()

	if o.layout != LayoutGrid {
		t.Errorf("layout = %v, want LayoutGrid", o.layout)
	}
	if o.focused != Front {
		t.Errorf("focused = %v, want Front", o.focused)
	}
	want := gputypes.Color{R: 0, G: 0, B: 0, A: 1}
	if o.clearColor != want {
		t.Errorf("clearColor = %+v, want opaque black", o.clearColor)
	}
	if o.backend != gputypes.BackendVulkan {
		t.Errorf("backend = %v, want Vulkan", o.backend)
	}
	if o.fenceTimeout != 5*time.Second {
		t.Errorf("fenceTimeout = %v, want 5s", o.fenceTimeout)
	}
}

// TestWithLayoutMode tests that the layout option overrides the default.
func TestWithLayoutMode(t *testing.T) {
	o := defaultOptions()
	WithLayoutMode(LayoutHorizontal)(&o)

	if o.layout != LayoutHorizontal {
		t.Errorf("layout = %v, want LayoutHorizontal", o.layout)
	}
}

// TestWithFocusedPosition tests that the focus option overrides the default.
func TestWithFocusedPosition(t *testing.T) {
	o := defaultOptions()
	WithFocusedPosition(Interior)(&o)

	if o.focused != Interior {
		t.Errorf("focused = %v, want Interior", o.focused)
	}
}

// TestWithClearColor tests that clear color components are stored as given.
func TestWithClearColor(t *testing.T) {
	o := defaultOptions()
	WithClearColor(0.1, 0.2, 0.3, 0.4)(&o)

	want := gputypes.Color{R: 0.1, G: 0.2, B: 0.3, A: 0.4}
	if o.clearColor != want {
		t.Errorf("clearColor = %+v, want %+v", o.clearColor, want)
	}
}

// TestWithBackend tests backend selection for New.
func TestWithBackend(t *testing.T) {
	o := defaultOptions()
	WithBackend(gputypes.Backend(3))(&o)

	if o.backend != gputypes.Backend(3) {
		t.Errorf("backend = %v, want 3", o.backend)
	}
}

// TestWithFenceTimeout tests that only positive timeouts are accepted.
func TestWithFenceTimeout(t *testing.T) {
	o := defaultOptions()
	WithFenceTimeout(250 * time.Millisecond)(&o)
	if o.fenceTimeout != 250*time.Millisecond {
		t.Errorf("fenceTimeout = %v, want 250ms", o.fenceTimeout)
	}

	// Zero and negative durations keep the previous value.
	WithFenceTimeout(0)(&o)
	if o.fenceTimeout != 250*time.Millisecond {
		t.Errorf("fenceTimeout after zero = %v, want 250ms", o.fenceTimeout)
	}
	WithFenceTimeout(-time.Second)(&o)
	if o.fenceTimeout != 250*time.Millisecond {
		t.Errorf("fenceTimeout after negative = %v, want 250ms", o.fenceTimeout)
	}
}

// TestMultipleOptions tests combining several options.
func TestMultipleOptions(t *testing.T) {
	o := defaultOptions()
	for _, opt := range []Option{
		WithLayoutMode(LayoutFocus),
		WithFocusedPosition(Rear),
		WithFenceTimeout(time.Second),
	} {
		opt(&o)
	}

	if o.layout != LayoutFocus {
		t.Errorf("layout = %v, want LayoutFocus", o.layout)
	}
	if o.focused != Rear {
		t.Errorf("focused = %v, want Rear", o.focused)
	}
	if o.fenceTimeout != time.Second {
		t.Errorf("fenceTimeout = %v, want 1s", o.fenceTimeout)
	}
}
