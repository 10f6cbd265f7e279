package config

import (
	_ "embed"
)

//go:embed defaults/viewer.yaml
var defaultViewerYAML []byte

//go:embed defaults/village.yaml
var defaultVillageYAML []byte

//go:embed defaults/trainset.yaml
var defaultTrainsetYAML []byte

// DefaultViewerConfig returns the default viewer configuration.
func DefaultViewerConfig() ViewerConfig {
	return ViewerConfig{
		FPS:         30,
		AutoRotate:  false,
		CellAspect:  2.0,
		ShowHUD:     true,
		ErrorBuffer: 64,
	}
}

// DefaultVillageConfig returns the default snowy village configuration.
func DefaultVillageConfig() VillageConfig {
	return VillageConfig{
		Camera: CameraConfig{
			Position: Point{X: 0, Y: 2, Z: 25},
			FOV:      75,
		},
		Fog: FogConfig{
			Near: 2,
			Far:  50,
		},
		Ground: VillageGround{
			Radius:  28,
			Spacing: 1.5,
		},
		Tree: VillageTree{
			Scale: 3,
		},
		Train: VillageTrain{
			Radius:   27,
			SpeedDeg: 40,
		},
		Presents:    ScatterConfig{Count: 100, Radius: 20},
		Rocks:       ScatterConfig{Count: 30, Radius: 25},
		Pines:       ScatterConfig{Count: 200, Radius: 25},
		SnowPatches: ScatterConfig{Count: 200, Radius: 25},
		Snowmen: VillageSnowmen{
			Count:     200,
			Radius:    25,
			SwaySpeed: 2,
		},
		Snowflakes: VillageSnowflake{
			Count: 2000,
			Box:   50,
			Lift:  100,
			Floor: -50,
		},
	}
}

// DefaultTrainsetConfig returns the default train set configuration.
func DefaultTrainsetConfig() TrainsetConfig {
	return TrainsetConfig{
		Camera: CameraConfig{
			Position: Point{X: 0, Y: 2, Z: 10},
			FOV:      70,
		},
		Fog: FogConfig{
			Near: 0.1,
			Far:  100,
		},
		Floor: TrainsetFloor{
			Size:    32,
			Spacing: 1,
		},
		Track: TrainsetTrack{
			Center: Point{X: 3, Y: 0, Z: 3},
			Radius: 0.707,
			Bends:  4,
		},
		Locomotives: TrainsetLocos{
			Count: 4,
			Speed: 2,
		},
		Trees: TrainsetTrees{
			Count: 50,
			Clear: 5,
			Push:  15,
		},
		Presents: ScatterConfig{Count: 10, Radius: 3},
		Flakes: TrainsetSnowfall{
			Count:  200,
			Radius: 16,
			Models: []string{"snowflake-a", "snowflake-b", "snowflake-c"},
		},
	}
}
