package dynamiccolor

import (
	"context"
	"covertint/internal/average"
	"covertint/internal/palette"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractorSelectsModeFromBothSides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		width, height int
		want          average.Mode
	}{
		{601, 601, average.ModeFast},
		{600, 601, average.ModePrecise},
		{601, 600, average.ModePrecise},
		{500, 500, average.ModePrecise},
	}

	for _, tt := range tests {
		var got average.Options
		averageFn := func(_ image.Image, options average.Options) (average.Color, error) {
			got = options
			return average.Color{Hex: "#123456"}, nil
		}
		palettes := &fakePalettes{byWidth: map[int]palette.Palette{tt.width: completePalette("#123456")}}

		extractor := NewExtractor(palettes, averageFn, DefaultSettings())
		_, _, err := extractor.Extract(context.Background(), image.NewNRGBA(image.Rect(0, 0, tt.width, tt.height)))
		require.NoError(t, err)

		assert.Equal(t, tt.want, got.Mode, "%dx%d", tt.width, tt.height)
		assert.Equal(t, average.DefaultIgnoredColors(75), got.IgnoredColors)
		assert.Equal(t, average.AlgorithmDominant, got.Algorithm)
	}
}

func TestExtractorHonorsConfiguredThreshold(t *testing.T) {
	t.Parallel()

	var got average.Mode
	averageFn := func(_ image.Image, options average.Options) (average.Color, error) {
		got = options.Mode
		return average.Color{}, nil
	}
	palettes := &fakePalettes{byWidth: map[int]palette.Palette{300: completePalette("#123456")}}

	extractor := NewExtractor(palettes, averageFn, DefaultSettings())
	settings := extractor.Settings()
	settings.FastModeThreshold = 200
	extractor.Configure(settings)

	_, _, err := extractor.Extract(context.Background(), image.NewNRGBA(image.Rect(0, 0, 300, 300)))
	require.NoError(t, err)
	assert.Equal(t, average.ModeFast, got)
}

func TestExtractorReportsEitherPassFailing(t *testing.T) {
	t.Parallel()

	failing := errors.New("boom")
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))

	palettes := &fakePalettes{byWidth: map[int]palette.Palette{}}
	okAverage := func(image.Image, average.Options) (average.Color, error) { return average.Color{}, nil }
	_, _, err := NewExtractor(palettes, okAverage, DefaultSettings()).Extract(context.Background(), img)
	assert.ErrorContains(t, err, "palette pass")

	palettes.respond(10, completePalette("#123456"))
	badAverage := func(image.Image, average.Options) (average.Color, error) { return average.Color{}, failing }
	_, _, err = NewExtractor(palettes, badAverage, DefaultSettings()).Extract(context.Background(), img)
	assert.ErrorIs(t, err, failing)

	_, _, err = NewExtractor(palettes, okAverage, DefaultSettings()).Extract(context.Background(), nil)
	assert.Error(t, err)
}

func TestBuiltInPassesProduceCompletePalette(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 242, G: 13, B: 13, A: 255})
		}
	}

	extracted, avg, err := NewExtractor(nil, nil, DefaultSettings()).Extract(context.Background(), img)
	require.NoError(t, err)

	accepted, err := Accept(extracted)
	require.NoError(t, err)
	assert.Equal(t, "#f40c0c", accepted.Vibrant.Hex)
	assert.Equal(t, "#f20d0d", avg.Hex)
}

func TestAcceptRejectsAnyMissingSlot(t *testing.T) {
	t.Parallel()

	for _, slot := range palette.Slots {
		candidate := completePalette("#abcdef")
		switch slot {
		case palette.SlotVibrant:
			candidate.Vibrant = nil
		case palette.SlotDarkVibrant:
			candidate.DarkVibrant = nil
		case palette.SlotLightVibrant:
			candidate.LightVibrant = nil
		case palette.SlotMuted:
			candidate.Muted = nil
		case palette.SlotLightMuted:
			candidate.LightMuted = nil
		case palette.SlotDarkMuted:
			candidate.DarkMuted = nil
		}

		_, err := Accept(candidate)
		require.ErrorIs(t, err, ErrIncompletePalette, "slot %s", slot)
		assert.ErrorContains(t, err, string(slot))
	}

	accepted, err := Accept(completePalette("#abcdef"))
	require.NoError(t, err)
	assert.True(t, accepted.Complete())
}
