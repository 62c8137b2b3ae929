package compositor

import "time"

// RenderStats describes what the most recent Render or Snapshot call did.
type RenderStats struct {
	// ChannelsDrawn is the number of channels composited onto the target.
	ChannelsDrawn int
	// ChannelsSkipped is the number of channels dropped by per-channel
	// failures such as invalid frames or texture upload errors.
	ChannelsSkipped int
	// Duration is the wall time of the render, including the wait for GPU
	// completion.
	Duration time.Duration
}

// CacheStats describes the texture cache's behavior since the compositor
// was created.
type CacheStats struct {
	// Hits counts uploads that reused a cached texture.
	Hits uint64
	// Misses counts texture allocations, including the first use of a
	// channel.
	Misses uint64
	// Evictions counts textures destroyed because a channel's frame size
	// or format changed, or because the channel was released.
	Evictions uint64
}
