package timetable

import (
	"fmt"
	"math"
	"math/rand/v2"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	goldenRatioConjugate = 0.61803398875
	hueStep              = goldenRatioConjugate * 360

	colorSaturation = 0.70
	colorLightness  = 0.88
)

// Color is a pastel course color at fixed saturation and lightness.
type Color struct {
	Hue float64 // degrees, [0, 360)
}

// CSS returns the color in hsl() notation.
func (c Color) CSS() string {
	return fmt.Sprintf("hsl(%g, %d%%, %d%%)", c.Hue, int(colorSaturation*100), int(colorLightness*100))
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return colorful.Hsl(c.Hue, colorSaturation, colorLightness).Clamped().Hex()
}

// IsZero reports whether c is unset.
func (c Color) IsZero() bool {
	return c == Color{}
}

// ColorAllocator hands out a new hue per call, stepping around the hue
// circle by the golden-ratio conjugate so consecutive colors stay far apart.
type ColorAllocator struct {
	hue float64
}

// NewColorAllocator seeds the allocator from a random starting hue.
func NewColorAllocator() *ColorAllocator {
	return NewColorAllocatorAt(rand.Float64() * 360)
}

// NewColorAllocatorAt seeds the allocator at the given hue.
func NewColorAllocatorAt(hue float64) *ColorAllocator {
	return &ColorAllocator{hue: math.Mod(hue, 360)}
}

// Next advances the hue and returns the new color.
func (a *ColorAllocator) Next() Color {
	a.hue = math.Mod(a.hue+hueStep, 360)
	return Color{Hue: a.hue}
}
