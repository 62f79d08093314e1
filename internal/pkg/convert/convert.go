// Package convert maps miniserver value ranges onto the ranges Home Assistant
// presents and back. Every function is pure.
package convert

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	MaxHubLevel     = 100.0
	MaxDisplayLevel = 255

	MinHubColorTemp = 2700.0
	MaxHubColorTemp = 6500.0
	MinMireds       = 153.0
	MaxMireds       = 500.0
)

// ToDisplayLevel converts a hub level (0.0-100.0) to the 0-255 display scale.
func ToDisplayLevel(level float64) int {
	return int(math.Round(level * MaxDisplayLevel / MaxHubLevel))
}

// ToHubLevel converts a display level (0-255) to the hub's 0.0-100.0 scale.
func ToHubLevel(level int) float64 {
	return float64(level) * MaxHubLevel / MaxDisplayLevel
}

// ToDisplayColorTemp maps a hub colour temperature in Kelvin onto mireds.
func ToDisplayColorTemp(kelvin float64) float64 {
	return interp(kelvin, MinHubColorTemp, MaxHubColorTemp, MaxMireds, MinMireds)
}

// ToHubColorTemp maps mireds onto the hub's Kelvin range.
func ToHubColorTemp(mireds float64) float64 {
	return interp(mireds, MinMireds, MaxMireds, MaxHubColorTemp, MinHubColorTemp)
}

// interp linearly interpolates x from [x0,x1] onto [y0,y1]. x outside the
// input range is clamped to the nearest endpoint.
func interp(x, x0, x1, y0, y1 float64) float64 {
	if x <= x0 {
		return y0
	}
	if x >= x1 {
		return y1
	}
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}

// HSToRGB converts hue (degrees) and saturation (percent) at full value to RGB.
func HSToRGB(h, s float64) (r, g, b uint8) {
	return colorful.Hsv(math.Mod(h, 360), clampUnit(s/100), 1).RGB255()
}

// RGBToHSV returns hue in degrees and saturation/value in percent, rounded to
// three decimals.
func RGBToHSV(r, g, b uint8) (h, s, v float64) {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, s, v = c.Hsv()
	return round3(h), round3(s * 100), round3(v * 100)
}

// RGBToHS is RGBToHSV without the value component.
func RGBToHS(r, g, b uint8) (h, s float64) {
	h, s, _ = RGBToHSV(r, g, b)
	return h, s
}

func clampUnit(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
