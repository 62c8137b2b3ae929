package compositor

import (
	"errors"
	"testing"
)

func validRGBAFrame(w, h int) *VideoFrame {
	return &VideoFrame{
		Pixels: make([]byte, w*h*4),
		Stride: w * 4,
		Width:  w,
		Height: h,
		Format: FormatRGBA8,
	}
}

func validYUVFrame(w, h int) *VideoFrame {
	cs := (w + 1) / 2
	ch := (h + 1) / 2
	return &VideoFrame{
		Pixels: make([]byte, w*h+2*cs*ch),
		Stride: w,
		Width:  w,
		Height: h,
		Format: FormatYUV420,
	}
}

func TestFrameValidate(t *testing.T) {
	tests := []struct {
		name  string
		frame *VideoFrame
		ok    bool
	}{
		{"valid rgba", validRGBAFrame(64, 48), true},
		{"valid bgra", &VideoFrame{
			Pixels: make([]byte, 64*48*4),
			Stride: 64 * 4, Width: 64, Height: 48, Format: FormatBGRA8,
		}, true},
		{"valid yuv420", validYUVFrame(64, 48), true},
		{"valid yuv420 odd dims", validYUVFrame(63, 47), true},
		{"padded stride", &VideoFrame{
			Pixels: make([]byte, 256*48),
			Stride: 256, Width: 60, Height: 48, Format: FormatRGBA8,
		}, true},
		{"nil frame", nil, false},
		{"no pixels", &VideoFrame{
			Stride: 256, Width: 64, Height: 48, Format: FormatRGBA8,
		}, false},
		{"zero width", &VideoFrame{
			Pixels: make([]byte, 1024),
			Stride: 0, Width: 0, Height: 48, Format: FormatRGBA8,
		}, false},
		{"negative height", &VideoFrame{
			Pixels: make([]byte, 1024),
			Stride: 256, Width: 64, Height: -1, Format: FormatRGBA8,
		}, false},
		{"stride too small", &VideoFrame{
			Pixels: make([]byte, 64*48*4),
			Stride: 63 * 4, Width: 64, Height: 48, Format: FormatRGBA8,
		}, false},
		{"buffer too short", &VideoFrame{
			Pixels: make([]byte, 64*47*4),
			Stride: 64 * 4, Width: 64, Height: 48, Format: FormatRGBA8,
		}, false},
		{"yuv buffer missing chroma", &VideoFrame{
			Pixels: make([]byte, 64*48),
			Stride: 64, Width: 64, Height: 48, Format: FormatYUV420,
		}, false},
		{"yuv stride under width", &VideoFrame{
			Pixels: make([]byte, 64*48*2),
			Stride: 32, Width: 64, Height: 48, Format: FormatYUV420,
		}, false},
		{"unknown format", &VideoFrame{
			Pixels: make([]byte, 64*48*4),
			Stride: 64 * 4, Width: 64, Height: 48, Format: PixelFormat(7),
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.frame.validate()
			if tt.ok && err != nil {
				t.Errorf("validate() = %v, want nil", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("validate() = nil, want error")
				}
				if !errors.Is(err, ErrInvalidFrame) {
					t.Errorf("validate() = %v, want ErrInvalidFrame", err)
				}
			}
		})
	}
}

func TestPixelFormatString(t *testing.T) {
	tests := []struct {
		format PixelFormat
		want   string
	}{
		{FormatRGBA8, "rgba8"},
		{FormatBGRA8, "bgra8"},
		{FormatYUV420, "yuv420"},
		{PixelFormat(7), "format(7)"},
	}
	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", int(tt.format), got, tt.want)
		}
	}
}
