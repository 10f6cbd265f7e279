package config

import (
	"fmt"
	"math"
)

// DetailPreset represents a named scene population level.
// Terminals are small and slow compared to a GPU, so lower presets thin out
// the scattered props and particles.
type DetailPreset string

const (
	DetailLow    DetailPreset = "low"
	DetailMedium DetailPreset = "medium"
	DetailHigh   DetailPreset = "high"
)

// ParseDetail validates a preset name. An empty name means high.
func ParseDetail(s string) (DetailPreset, error) {
	switch p := DetailPreset(s); p {
	case "":
		return DetailHigh, nil
	case DetailLow, DetailMedium, DetailHigh:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown detail preset %q (want low, medium or high)", s)
	}
}

// FactorForPreset returns the fraction of props kept at a preset.
func FactorForPreset(preset DetailPreset) float64 {
	switch preset {
	case DetailLow:
		return 0.25
	case DetailMedium:
		return 0.5
	default:
		return 1.0
	}
}

// scaleCount scales n by f, keeping at least one item when n > 0.
func scaleCount(n int, f float64) int {
	if n <= 0 {
		return 0
	}
	return max(1, int(math.Round(float64(n)*f)))
}

// ApplyVillagePreset scales the scattered props and snowflakes of the village.
// The tree and the train are never thinned out.
func ApplyVillagePreset(cfg *VillageConfig, preset DetailPreset) {
	f := FactorForPreset(preset)
	cfg.Presents.Count = scaleCount(cfg.Presents.Count, f)
	cfg.Rocks.Count = scaleCount(cfg.Rocks.Count, f)
	cfg.Pines.Count = scaleCount(cfg.Pines.Count, f)
	cfg.SnowPatches.Count = scaleCount(cfg.SnowPatches.Count, f)
	cfg.Snowmen.Count = scaleCount(cfg.Snowmen.Count, f)
	cfg.Snowflakes.Count = scaleCount(cfg.Snowflakes.Count, f)

	if preset == DetailLow {
		cfg.Ground.Spacing *= 2
	}
}

// ApplyTrainsetPreset scales the trees and flake fields of the train set.
// Track, locomotives and presents are never thinned out.
func ApplyTrainsetPreset(cfg *TrainsetConfig, preset DetailPreset) {
	f := FactorForPreset(preset)
	cfg.Trees.Count = scaleCount(cfg.Trees.Count, f)
	cfg.Flakes.Count = scaleCount(cfg.Flakes.Count, f)

	if preset == DetailLow {
		cfg.Floor.Spacing *= 2
	}
}
