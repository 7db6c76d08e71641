package average

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

// Mode trades accuracy for speed.
type Mode string

const (
	ModeFast    Mode = "fast"
	ModePrecise Mode = "precise"
)

type Algorithm string

const (
	AlgorithmDominant Algorithm = "dominant"
	AlgorithmSimple   Algorithm = "simple"
	AlgorithmSqrt     Algorithm = "sqrt"
	AlgorithmKmeans   Algorithm = "kmeans"
)

const (
	DefaultFastModeThreshold = 600
	DefaultIgnoreTolerance   = 75

	fastMaxDimension = 100
	dominantDivider  = 24
	darkYIQThreshold = 128
)

var (
	ErrNoPixels         = errors.New("every pixel is ignored or transparent")
	ErrUnknownAlgorithm = errors.New("unknown average algorithm")
)

// IgnoredColor excludes pixels whose four channels are each within
// Tolerance of the color.
type IgnoredColor struct {
	R         uint8 `json:"r"`
	G         uint8 `json:"g"`
	B         uint8 `json:"b"`
	A         uint8 `json:"a"`
	Tolerance int   `json:"tolerance"`
}

type Options struct {
	Mode          Mode
	Algorithm     Algorithm
	IgnoredColors []IgnoredColor
}

type Color struct {
	Hex     string `json:"hex"`
	R       uint8  `json:"r"`
	G       uint8  `json:"g"`
	B       uint8  `json:"b"`
	A       uint8  `json:"a"`
	IsDark  bool   `json:"isDark"`
	IsLight bool   `json:"isLight"`
	Pixels  int    `json:"pixels"`
}

// DefaultIgnoredColors ignores opaque white and opaque black.
func DefaultIgnoredColors(tolerance int) []IgnoredColor {
	return []IgnoredColor{
		{R: 255, G: 255, B: 255, A: 255, Tolerance: tolerance},
		{R: 0, G: 0, B: 0, A: 255, Tolerance: tolerance},
	}
}

// ModeFor picks ModeFast only when both sides exceed threshold.
func ModeFor(width, height, threshold int) Mode {
	if width > threshold && height > threshold {
		return ModeFast
	}
	return ModePrecise
}

func ParseAlgorithm(value string) (Algorithm, error) {
	switch algorithm := Algorithm(strings.ToLower(strings.TrimSpace(value))); algorithm {
	case "":
		return AlgorithmDominant, nil
	case AlgorithmDominant, AlgorithmSimple, AlgorithmSqrt, AlgorithmKmeans:
		return algorithm, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, value)
	}
}

// Extract computes the average color of img.
func Extract(img image.Image, options Options) (Color, error) {
	if img == nil || img.Bounds().Empty() {
		return Color{}, ErrNoPixels
	}

	algorithm := options.Algorithm
	if algorithm == "" {
		algorithm = AlgorithmDominant
	}

	sample := toNRGBA(img)
	if options.Mode == ModeFast {
		sample = shrink(sample, fastMaxDimension)
	}

	var acc accumulator
	switch algorithm {
	case AlgorithmDominant:
		acc = dominant(sample, options.IgnoredColors)
	case AlgorithmSimple:
		acc = simple(sample, options.IgnoredColors, false)
	case AlgorithmSqrt:
		acc = simple(sample, options.IgnoredColors, true)
	case AlgorithmKmeans:
		return kmeans(sample)
	default:
		return Color{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}

	if acc.alpha == 0 {
		return Color{}, ErrNoPixels
	}
	return acc.color(algorithm == AlgorithmSqrt), nil
}

type accumulator struct {
	r, g, b float64
	alpha   float64
	count   int
}

func (a accumulator) color(sqrt bool) Color {
	channel := func(total float64) uint8 {
		value := total / a.alpha
		if sqrt {
			value = math.Sqrt(value)
		}
		return uint8(math.Round(math.Min(value, 255)))
	}
	return newColor(channel(a.r), channel(a.g), channel(a.b), uint8(math.Round(a.alpha/float64(a.count))), a.count)
}

func newColor(r, g, b, alpha uint8, pixels int) Color {
	yiq := (int(r)*299 + int(g)*587 + int(b)*114) / 1000
	dark := yiq < darkYIQThreshold
	return Color{
		Hex:     colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Hex(),
		R:       r,
		G:       g,
		B:       b,
		A:       alpha,
		IsDark:  dark,
		IsLight: !dark,
		Pixels:  pixels,
	}
}

// dominant groups pixels into coarse buckets and averages the most populous
// bucket, weighting each pixel by its alpha.
func dominant(img *image.NRGBA, ignored []IgnoredColor) accumulator {
	groups := make(map[[3]int]*accumulator)
	best := &accumulator{}

	forEachPixel(img, ignored, func(r, g, b, a uint8) {
		key := [3]int{bucket(r), bucket(g), bucket(b)}
		group, ok := groups[key]
		if !ok {
			group = &accumulator{}
			groups[key] = group
		}
		group.add(r, g, b, a, false)
		if group.count > best.count {
			best = group
		}
	})

	return *best
}

func bucket(channel uint8) int {
	return int(math.Round(float64(channel) / dominantDivider))
}

func simple(img *image.NRGBA, ignored []IgnoredColor, squared bool) accumulator {
	var acc accumulator
	forEachPixel(img, ignored, func(r, g, b, a uint8) {
		acc.add(r, g, b, a, squared)
	})
	return acc
}

func (a *accumulator) add(r, g, b, alpha uint8, squared bool) {
	weight := float64(alpha)
	value := func(channel uint8) float64 {
		if squared {
			return float64(channel) * float64(channel) * weight
		}
		return float64(channel) * weight
	}
	a.r += value(r)
	a.g += value(g)
	a.b += value(b)
	a.alpha += weight
	a.count++
}

// kmeans uses prominentcolor's clustering, which masks near white and black
// backgrounds itself.
func kmeans(img *image.NRGBA) (Color, error) {
	items, err := prominentcolor.KmeansWithArgs(prominentcolor.ArgumentNoCropping, img)
	if err != nil {
		return Color{}, fmt.Errorf("kmeans: %w", err)
	}

	var best *prominentcolor.ColorItem
	for index, item := range items {
		if best == nil || item.Cnt > best.Cnt {
			best = &items[index]
		}
	}
	if best == nil || best.Cnt == 0 {
		return Color{}, ErrNoPixels
	}

	return newColor(uint8(best.Color.R), uint8(best.Color.G), uint8(best.Color.B), 255, best.Cnt), nil
}

func forEachPixel(img *image.NRGBA, ignored []IgnoredColor, visit func(r, g, b, a uint8)) {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for offset := 0; offset < len(row); offset += 4 {
			r, g, b, a := row[offset], row[offset+1], row[offset+2], row[offset+3]
			if isIgnored(r, g, b, a, ignored) {
				continue
			}
			visit(r, g, b, a)
		}
	}
}

func isIgnored(r, g, b, a uint8, ignored []IgnoredColor) bool {
	for _, color := range ignored {
		if within(r, color.R, color.Tolerance) &&
			within(g, color.G, color.Tolerance) &&
			within(b, color.B, color.Tolerance) &&
			within(a, color.A, color.Tolerance) {
			return true
		}
	}
	return false
}

func within(value, target uint8, tolerance int) bool {
	diff := int(value) - int(target)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Bounds().Min == (image.Point{}) {
		return nrgba
	}

	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// shrink scales img so its longest side is at most maxDimension.
func shrink(img *image.NRGBA, maxDimension int) *image.NRGBA {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	longest := max(width, height)
	if longest <= maxDimension {
		return img
	}

	scale := float64(maxDimension) / float64(longest)
	target := image.Rect(0, 0,
		max(int(math.Round(float64(width)*scale)), 1),
		max(int(math.Round(float64(height)*scale)), 1),
	)
	dst := image.NewNRGBA(target)
	draw.ApproxBiLinear.Scale(dst, target, img, img.Bounds(), draw.Src, nil)
	return dst
}
