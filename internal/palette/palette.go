// Package palette assigns every agent a stable color.
//
// Colors are keyed by agent id only, so an agent keeps its color across
// steps, across scenes and across hosts. Ids walk a hue wheel with a stride
// coprime to the wheel size: neighbouring ids land far apart and a hue is
// reused only after Period distinct ids. The shade picks lightness the way
// design palettes number their tints (50 lightest, 900 darkest), which gives
// matching fill and outline families for the same agent.
package palette

import (
	"hash/fnv"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// Common shades.
const (
	ShadeFill        = 200
	ShadeDestination = 300
	ShadeOccupancy   = 400
	ShadeOutline     = 500
)

const (
	DefaultPeriod     = 12
	DefaultSaturation = 0.7
)

type Palette struct {
	Period     int
	Saturation float64
	stride     int
}

func New(period int, saturation float64) *Palette {
	if period < 1 {
		period = DefaultPeriod
	}
	if saturation <= 0 || saturation > 1 {
		saturation = DefaultSaturation
	}
	return &Palette{Period: period, Saturation: saturation, stride: coprimeStride(period)}
}

func Default() *Palette {
	return New(DefaultPeriod, DefaultSaturation)
}

// Color returns the #rrggbb color of id at the given shade.
func (p *Palette) Color(id string, shade int) string {
	return p.Colorful(id, shade).Hex()
}

func (p *Palette) Colorful(id string, shade int) colorful.Color {
	return colorful.Hsl(p.Hue(id), p.Saturation, lightness(shade)).Clamped()
}

// Hue is the wheel position of id in degrees.
func (p *Palette) Hue(id string) float64 {
	slot := (p.index(id) % p.Period) * p.stride % p.Period
	return float64(slot) * 360 / float64(p.Period)
}

func (p *Palette) index(id string) int {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		r := int(n % int64(p.Period))
		if r < 0 {
			r = -r
		}
		return r
	}
	h := fnv.New32a()
	h.Write([]byte(id))
	return int(h.Sum32() % uint32(p.Period))
}

// lightness maps 50..900 onto 0.92..0.28.
func lightness(shade int) float64 {
	s := math.Max(50, math.Min(900, float64(shade)))
	return 0.92 - (s-50)/850*0.64
}

// coprimeStride picks the stride closest to period*5/12 that shares no factor
// with period, so the walk visits every slot.
func coprimeStride(period int) int {
	if period <= 2 {
		return 1
	}
	target := period * 5 / 12
	if target < 1 {
		target = 1
	}
	for d := 0; d < period; d++ {
		for _, s := range []int{target + d, target - d} {
			if s >= 1 && s < period && gcd(s, period) == 1 {
				return s
			}
		}
	}
	return 1
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
