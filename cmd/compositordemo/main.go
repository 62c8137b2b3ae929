// Command compositordemo composites synthetic multi-channel dashcam
// frames and writes one PNG per layout mode.
package main

import (
	"flag"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	compositor "github.com/kcenon/blackbox-player-sub005"
)

func main() {
	var (
		width    = flag.Int("width", 1280, "output width")
		height   = flag.Int("height", 720, "output height")
		channels = flag.Int("channels", 4, "number of camera channels (1-5)")
		layout   = flag.String("layout", "all", "layout mode: grid, focus, horizontal or all")
		focused  = flag.String("focused", "front", "focused camera for the focus layout")
		output   = flag.String("output", "composite.png", "output file (mode suffix added when -layout=all)")
	)
	flag.Parse()

	modes, err := parseLayout(*layout)
	if err != nil {
		log.Fatal(err)
	}
	pos, err := parsePosition(*focused)
	if err != nil {
		log.Fatal(err)
	}
	if *channels < 1 || *channels > len(demoOrder) {
		log.Fatalf("channels must be between 1 and %d", len(demoOrder))
	}

	opts := []compositor.Option{
		compositor.WithFocusedPosition(pos),
		compositor.WithClearColor(0.08, 0.08, 0.10, 1),
	}
	comp, err := compositor.New(opts...)
	if err != nil {
		log.Printf("GPU unavailable (%v), falling back to noop backend", err)
		comp, err = compositor.NewNoop(opts...)
		if err != nil {
			log.Fatalf("Failed to create compositor: %v", err)
		}
	}
	defer comp.Close()

	frames := syntheticFrames(*channels)
	for _, mode := range modes {
		comp.SetLayoutMode(mode)

		img, err := comp.Snapshot(frames, *width, *height)
		if err != nil {
			log.Fatalf("Snapshot in %v layout failed: %v", mode, err)
		}

		name := outputName(*output, mode, len(modes) > 1)
		if err := savePNG(name, img); err != nil {
			log.Fatalf("Failed to save %s: %v", name, err)
		}

		stats := comp.LastStats()
		log.Printf("Composite saved to %s (%dx%d, %v layout, %d channels drawn in %v)",
			name, *width, *height, mode, stats.ChannelsDrawn, stats.Duration)
	}
}

// outputName inserts the layout mode before the extension when more than
// one composite is written, so -layout=all does not overwrite itself.
func outputName(base string, mode compositor.LayoutMode, multi bool) string {
	if !multi {
		return base
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_" + mode.String() + ext
}

func savePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// demoOrder fixes which cameras the -channels flag switches on.
var demoOrder = []compositor.CameraPosition{
	compositor.Front,
	compositor.Rear,
	compositor.Left,
	compositor.Right,
	compositor.Interior,
}

func parseLayout(s string) ([]compositor.LayoutMode, error) {
	switch strings.ToLower(s) {
	case "grid":
		return []compositor.LayoutMode{compositor.LayoutGrid}, nil
	case "focus":
		return []compositor.LayoutMode{compositor.LayoutFocus}, nil
	case "horizontal":
		return []compositor.LayoutMode{compositor.LayoutHorizontal}, nil
	case "all":
		return []compositor.LayoutMode{
			compositor.LayoutGrid,
			compositor.LayoutFocus,
			compositor.LayoutHorizontal,
		}, nil
	}
	return nil, &flagError{"layout", s}
}

func parsePosition(s string) (compositor.CameraPosition, error) {
	for _, pos := range demoOrder {
		if strings.EqualFold(s, pos.String()) {
			return pos, nil
		}
	}
	return 0, &flagError{"focused", s}
}

type flagError struct {
	flag  string
	value string
}

func (e *flagError) Error() string {
	return "invalid -" + e.flag + " value: " + e.value
}

// syntheticFrames builds one frame per camera: the front channel as a
// larger RGBA gradient, the interior channel as YUV 4:2:0 to exercise
// conversion, and the rest as smaller RGBA gradients in distinct colors.
func syntheticFrames(n int) compositor.FrameSet {
	colors := [][3]int{
		{220, 60, 60},
		{60, 200, 80},
		{70, 110, 230},
		{230, 190, 60},
		{190, 80, 200},
	}
	frames := make(compositor.FrameSet, n)
	for i := 0; i < n; i++ {
		pos := demoOrder[i]
		c := colors[i]
		switch {
		case pos == compositor.Front:
			frames[pos] = makeRGBAFrame(640, 360, c[0], c[1], c[2])
		case pos == compositor.Interior:
			frames[pos] = makeYUVFrame(320, 240)
		default:
			frames[pos] = makeRGBAFrame(320, 240, c[0], c[1], c[2])
		}
	}
	return frames
}

// makeRGBAFrame fills a frame with a vertical gradient of the given color
// and a white border so viewport edges are visible in the composite.
func makeRGBAFrame(w, h, r, g, b int) *compositor.VideoFrame {
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		shade := 64 + 191*y/h
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			if x < 4 || y < 4 || x >= w-4 || y >= h-4 {
				pix[i], pix[i+1], pix[i+2], pix[i+3] = 255, 255, 255, 255
				continue
			}
			pix[i] = uint8(r * shade / 255)
			pix[i+1] = uint8(g * shade / 255)
			pix[i+2] = uint8(b * shade / 255)
			pix[i+3] = 255
		}
	}
	return &compositor.VideoFrame{
		Pixels: pix,
		Stride: w * 4,
		Width:  w,
		Height: h,
		Format: compositor.FormatRGBA8,
	}
}

// makeYUVFrame fills a 4:2:0 frame with a horizontal luma gradient over
// constant warm chroma.
func makeYUVFrame(w, h int) *compositor.VideoFrame {
	cw, ch := (w+1)/2, (h+1)/2
	buf := make([]byte, w*h+2*cw*ch)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			buf[y*w+x] = uint8(16 + 200*x/w)
		}
	}
	cb := buf[w*h : w*h+cw*ch]
	cr := buf[w*h+cw*ch:]
	for i := range cb {
		cb[i] = 110
		cr[i] = 160
	}
	return &compositor.VideoFrame{
		Pixels: buf,
		Stride: w,
		Width:  w,
		Height: h,
		Format: compositor.FormatYUV420,
	}
}
