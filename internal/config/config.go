// Package config provides YAML-based configuration for the viewer and the
// scenes, plus detail presets that scale scene population.
package config

import "github.com/vovakirdan/snowglobe/internal/core"

// Point is a position in a config file.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Vec returns the point as a core.Vec3.
func (p Point) Vec() core.Vec3 {
	return core.V3(p.X, p.Y, p.Z)
}

// ViewerConfig contains settings of the terminal viewer.
type ViewerConfig struct {
	FPS         int     `yaml:"fps"`
	AutoRotate  bool    `yaml:"auto_rotate"`
	CellAspect  float64 `yaml:"cell_aspect"`  // Height/width ratio of a terminal cell
	ShowHUD     bool    `yaml:"show_hud"`     // Status line with fps, nodes and failures
	ErrorBuffer int     `yaml:"error_buffer"` // Capacity of the asset error channel
	ModelDir    string  `yaml:"model_dir"`    // Optional directory overriding bundled models
}

// CameraConfig places the scene camera.
type CameraConfig struct {
	Position Point   `yaml:"position"`
	Target   Point   `yaml:"target"`
	FOV      float64 `yaml:"fov"` // Vertical field of view, degrees
}

// FogConfig defines linear fog distances.
type FogConfig struct {
	Near float64 `yaml:"near"`
	Far  float64 `yaml:"far"`
}

// ScatterConfig places Count copies of a model around the origin.
type ScatterConfig struct {
	Count  int     `yaml:"count"`
	Radius float64 `yaml:"radius"`
}

// VillageConfig contains all configuration for the snowy village scene.
type VillageConfig struct {
	Camera      CameraConfig     `yaml:"camera"`
	Fog         FogConfig        `yaml:"fog"`
	Ground      VillageGround    `yaml:"ground"`
	Tree        VillageTree      `yaml:"tree"`
	Train       VillageTrain     `yaml:"train"`
	Presents    ScatterConfig    `yaml:"presents"`
	Rocks       ScatterConfig    `yaml:"rocks"`
	Pines       ScatterConfig    `yaml:"pines"`
	SnowPatches ScatterConfig    `yaml:"snow_patches"`
	Snowmen     VillageSnowmen   `yaml:"snowmen"`
	Snowflakes  VillageSnowflake `yaml:"snowflakes"`
}

// VillageGround defines the round ground plane.
type VillageGround struct {
	Radius  float64 `yaml:"radius"`
	Spacing float64 `yaml:"spacing"` // Distance between ground glyphs
}

// VillageTree defines the decorated centre tree.
type VillageTree struct {
	Scale float64 `yaml:"scale"`
}

// VillageTrain defines the locomotive circling the village.
type VillageTrain struct {
	Radius   float64 `yaml:"radius"`
	SpeedDeg float64 `yaml:"speed_deg"` // Degrees per second
}

// VillageSnowmen defines the swaying snowmen.
type VillageSnowmen struct {
	Count     int     `yaml:"count"`
	Radius    float64 `yaml:"radius"`
	SwaySpeed float64 `yaml:"sway_speed"` // Radians per second
}

// VillageSnowflake defines the falling snow.
type VillageSnowflake struct {
	Count int     `yaml:"count"`
	Box   float64 `yaml:"box"`   // Side of the spawn cube
	Lift  float64 `yaml:"lift"`  // Height the spawn cube is raised by
	Floor float64 `yaml:"floor"` // Flakes below this height respawn
}

// TrainsetConfig contains all configuration for the miniature train set scene.
type TrainsetConfig struct {
	Camera      CameraConfig     `yaml:"camera"`
	Fog         FogConfig        `yaml:"fog"`
	Floor       TrainsetFloor    `yaml:"floor"`
	Track       TrainsetTrack    `yaml:"track"`
	Locomotives TrainsetLocos    `yaml:"locomotives"`
	Trees       TrainsetTrees    `yaml:"trees"`
	Presents    ScatterConfig    `yaml:"presents"`
	Flakes      TrainsetSnowfall `yaml:"flakes"`
}

// TrainsetFloor defines the square floor.
type TrainsetFloor struct {
	Size    float64 `yaml:"size"`
	Spacing float64 `yaml:"spacing"`
}

// TrainsetTrack defines the loop of rail bends.
type TrainsetTrack struct {
	Center Point   `yaml:"center"`
	Radius float64 `yaml:"radius"`
	Bends  int     `yaml:"bends"`
}

// TrainsetLocos defines the locomotives running on the track.
type TrainsetLocos struct {
	Count int     `yaml:"count"`
	Speed float64 `yaml:"speed"` // Radians per second
}

// TrainsetTrees defines the scattered snowy trees.
type TrainsetTrees struct {
	Count int     `yaml:"count"`
	Clear float64 `yaml:"clear"` // Trees closer to the centre than this are pushed out
	Push  float64 `yaml:"push"`  // Factor applied to pushed trees
}

// TrainsetSnowfall defines the instanced flake fields.
type TrainsetSnowfall struct {
	Count  int      `yaml:"count"` // Flakes per field
	Radius float64  `yaml:"radius"`
	Models []string `yaml:"models"` // One field per model
}
