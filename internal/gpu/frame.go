package gpu

// FrameFormat identifies the pixel layout of source frame data.
type FrameFormat int

const (
	// FrameRGBA8 is packed 8-bit RGBA, row-major.
	FrameRGBA8 FrameFormat = iota
	// FrameBGRA8 is packed 8-bit BGRA, row-major.
	FrameBGRA8
	// FrameYUV420 is planar YCbCr 4:2:0: a full-resolution Y plane followed
	// by Cb and Cr planes at half resolution in both axes.
	FrameYUV420
)

// String returns the format name.
func (f FrameFormat) String() string {
	switch f {
	case FrameRGBA8:
		return "rgba8"
	case FrameBGRA8:
		return "bgra8"
	case FrameYUV420:
		return "yuv420"
	default:
		return "unknown"
	}
}

// Frame is one channel's decoded pixel data, ready for texture upload.
//
// Stride is the byte distance between rows for the packed formats and the
// Y plane stride for FrameYUV420; chroma planes use stride (Stride+1)/2 and
// height (Height+1)/2. Pixels is read only during the call that receives
// the frame.
type Frame struct {
	Pixels []byte
	Stride int
	Width  int
	Height int
	Format FrameFormat
}
