package core

// Color represents a foreground color for a screen cell.
// Values map to ANSI 256-color codes in the terminal renderer.
type Color uint8

// Palette used by the holiday scenes.
const (
	ColorDefault Color = iota
	ColorSnow          // bright white: snow, snowflakes, snowmen
	ColorFrost         // pale blue: snow patches, distant ice
	ColorPine          // dark green: pine trees
	ColorHolly         // bright green: decorated tree, green presents
	ColorBerry         // red: ornaments, presents, locomotive body
	ColorGold          // yellow: star, lights, ribbons
	ColorCoal          // dark gray: locomotive chassis, rocks
	ColorRail          // brown: rails and sleepers
	ColorStone         // gray: rock formations, ground rim
	ColorFog           // faded gray: geometry fading into fog
	ColorNight         // deep blue: ambient tint, HUD accents
)

// colorNames maps palette entries to the names used in model files.
var colorNames = map[string]Color{
	"default": ColorDefault,
	"snow":    ColorSnow,
	"frost":   ColorFrost,
	"pine":    ColorPine,
	"holly":   ColorHolly,
	"berry":   ColorBerry,
	"gold":    ColorGold,
	"coal":    ColorCoal,
	"rail":    ColorRail,
	"stone":   ColorStone,
	"fog":     ColorFog,
	"night":   ColorNight,
}

// ParseColor returns the palette color with the given name.
func ParseColor(name string) (Color, bool) {
	c, ok := colorNames[name]
	return c, ok
}
