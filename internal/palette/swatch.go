package palette

import (
	"github.com/lucasb-eyer/go-colorful"
)

const (
	textWhite = "#ffffff"
	textBlack = "#000000"

	titleTextYIQThreshold = 200
	bodyTextYIQThreshold  = 150
)

// Swatch is one representative color and the number of sampled pixels it
// stands for. Swatches synthesized from a sibling have zero population.
type Swatch struct {
	Hex            string  `json:"hex"`
	R              uint8   `json:"r"`
	G              uint8   `json:"g"`
	B              uint8   `json:"b"`
	Population     int     `json:"population"`
	Hue            float64 `json:"hue"`
	Saturation     float64 `json:"saturation"`
	Lightness      float64 `json:"lightness"`
	TitleTextColor string  `json:"titleTextColor"`
	BodyTextColor  string  `json:"bodyTextColor"`
}

func NewSwatch(r, g, b uint8, population int) Swatch {
	color := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	hue, saturation, lightness := color.Hsl()

	yiq := (int(r)*299 + int(g)*587 + int(b)*114) / 1000
	title, body := textBlack, textBlack
	if yiq < titleTextYIQThreshold {
		title = textWhite
	}
	if yiq < bodyTextYIQThreshold {
		body = textWhite
	}

	return Swatch{
		Hex:            color.Hex(),
		R:              r,
		G:              g,
		B:              b,
		Population:     population,
		Hue:            hue,
		Saturation:     saturation,
		Lightness:      lightness,
		TitleTextColor: title,
		BodyTextColor:  body,
	}
}

// swatchFromHSL builds a synthesized swatch. Hue is in degrees.
func swatchFromHSL(hue, saturation, lightness float64) Swatch {
	r, g, b := colorful.Hsl(hue, clampFloat(saturation, 0, 1), clampFloat(lightness, 0, 1)).Clamped().RGB255()
	return NewSwatch(r, g, b, 0)
}
