package compositor

import (
	"sort"
	"strconv"
)

// CameraPosition identifies one logical camera channel of a multi-camera
// dashcam recording. Positions are ordered; layout slots are always assigned
// in this order so a channel keeps its place on screen as other channels
// come and go.
type CameraPosition int

const (
	// Front is the forward-facing camera. It is the default focused channel.
	Front CameraPosition = iota
	// Rear is the rear-facing camera.
	Rear
	// Left is the left side camera.
	Left
	// Right is the right side camera.
	Right
	// Interior is the cabin-facing camera.
	Interior
)

// String returns the lowercase channel name. Unknown values format as
// "camera(n)".
func (p CameraPosition) String() string {
	switch p {
	case Front:
		return "front"
	case Rear:
		return "rear"
	case Left:
		return "left"
	case Right:
		return "right"
	case Interior:
		return "interior"
	default:
		return "camera(" + strconv.Itoa(int(p)) + ")"
	}
}

// sortPositions sorts positions into canonical order in place.
// Layout never depends on the caller's ordering or on map iteration order.
func sortPositions(positions []CameraPosition) {
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })
}
