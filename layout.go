package compositor

import "math"

// LayoutMode selects how the active channels are arranged on the output
// surface.
type LayoutMode int

const (
	// LayoutGrid tiles all channels in a near-square grid.
	LayoutGrid LayoutMode = iota
	// LayoutFocus gives one channel three quarters of the width and stacks
	// the remaining channels in a column on the right.
	LayoutFocus
	// LayoutHorizontal places all channels side by side in a single row.
	LayoutHorizontal
)

// String returns the mode name.
func (m LayoutMode) String() string {
	switch m {
	case LayoutGrid:
		return "grid"
	case LayoutFocus:
		return "focus"
	case LayoutHorizontal:
		return "horizontal"
	default:
		return "layout(?)"
	}
}

// Viewport is a rectangle on the output surface, in pixels, with the origin
// at the top left corner.
type Viewport struct {
	X, Y float64
	W, H float64
}

// Empty reports whether the viewport has no drawable area.
func (v Viewport) Empty() bool {
	return v.W <= 0 || v.H <= 0
}

// LayoutViewports computes the screen region of every channel in positions
// for a surface of the given size. Slots are assigned in canonical position
// order regardless of the order positions arrives in, so the same set of
// channels always produces the same arrangement. An empty position list
// yields an empty map.
func LayoutViewports(mode LayoutMode, focused CameraPosition, positions []CameraPosition, width, height float64) map[CameraPosition]Viewport {
	if len(positions) == 0 {
		return map[CameraPosition]Viewport{}
	}
	sorted := make([]CameraPosition, len(positions))
	copy(sorted, positions)
	sortPositions(sorted)

	switch mode {
	case LayoutFocus:
		return focusViewports(focused, sorted, width, height)
	case LayoutHorizontal:
		return horizontalViewports(sorted, width, height)
	default:
		return gridViewports(sorted, width, height)
	}
}

// gridViewports tiles n channels into ceil(sqrt(n)) columns. The last row
// may be partially filled; cells there keep the same size as everywhere else.
func gridViewports(positions []CameraPosition, width, height float64) map[CameraPosition]Viewport {
	n := len(positions)
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols
	cellW := width / float64(cols)
	cellH := height / float64(rows)

	viewports := make(map[CameraPosition]Viewport, n)
	for i, pos := range positions {
		col := i % cols
		row := i / cols
		viewports[pos] = Viewport{
			X: float64(col) * cellW,
			Y: float64(row) * cellH,
			W: cellW,
			H: cellH,
		}
	}
	return viewports
}

// focusViewports reserves the left 75% of the surface for the focused
// channel and stacks every other channel in a thumbnail column on the
// right. The main region is reserved even when the focused channel is
// absent from positions; thumbnails never move into it, so the strip stays
// put across frames where the focused camera drops out.
func focusViewports(focused CameraPosition, positions []CameraPosition, width, height float64) map[CameraPosition]Viewport {
	mainW := width * 0.75
	thumbW := width - mainW

	viewports := make(map[CameraPosition]Viewport, len(positions))
	others := make([]CameraPosition, 0, len(positions))
	for _, pos := range positions {
		if pos == focused {
			viewports[pos] = Viewport{X: 0, Y: 0, W: mainW, H: height}
		} else {
			others = append(others, pos)
		}
	}

	thumbH := height / float64(max(1, len(others)))
	for i, pos := range others {
		viewports[pos] = Viewport{
			X: mainW,
			Y: float64(i) * thumbH,
			W: thumbW,
			H: thumbH,
		}
	}
	return viewports
}

// horizontalViewports splits the surface into n equal full-height columns.
func horizontalViewports(positions []CameraPosition, width, height float64) map[CameraPosition]Viewport {
	cellW := width / float64(len(positions))

	viewports := make(map[CameraPosition]Viewport, len(positions))
	for i, pos := range positions {
		viewports[pos] = Viewport{
			X: float64(i) * cellW,
			Y: 0,
			W: cellW,
			H: height,
		}
	}
	return viewports
}
