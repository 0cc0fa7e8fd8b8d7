package visualizer

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Clear resets every pixel of img to transparent.
func Clear(img *image.RGBA) {
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// HSLA converts CSS-style hsla components to a color.
// hue is in degrees and wraps; saturation, lightness and alpha are in 0-1.
func HSLA(hue, saturation, lightness, alpha float64) color.NRGBA {
	h := math.Mod(hue, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := HSLToRGB(h/360, saturation, lightness)
	return color.NRGBA{
		R: channel(r),
		G: channel(g),
		B: channel(b),
		A: channel(alpha),
	}
}

// Lerp interpolates between two colors, t in 0-1.
func Lerp(from, to color.NRGBA, t float64) color.NRGBA {
	if t <= 0 {
		return from
	}
	if t >= 1 {
		return to
	}
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return color.NRGBA{
		R: mix(from.R, to.R),
		G: mix(from.G, to.G),
		B: mix(from.B, to.B),
		A: mix(from.A, to.A),
	}
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// HSLToRGB converts HSL to RGB (h, s, l in 0-1 range).
func HSLToRGB(h, s, l float64) (r, g, b float64) {
	if s == 0 {
		return l, l, l
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	r = hueToRGB(p, q, h+1.0/3.0)
	g = hueToRGB(p, q, h)
	b = hueToRGB(p, q, h-1.0/3.0)

	return r, g, b
}

// hueToRGB is a helper for HSL to RGB conversion.
func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 0.5 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
