package core

// RuntimeConfig contains the viewer settings shared by the host and scenes.
type RuntimeConfig struct {
	ScreenW int   // Screen width in characters
	ScreenH int   // Screen height in characters
	FPS     int   // Frames per second requested from the host (default 30)
	Seed    int64 // RNG seed for procedural placement (0 = time based)
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW: 80,
		ScreenH: 24,
		FPS:     30,
		Seed:    0, // 0 means use current time in platform layer
	}
}
