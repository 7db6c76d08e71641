package palette

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractClassifiesAllSixSlots(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 120, 80))
	fillRect(img, image.Rect(0, 0, 40, 40), color.NRGBA{R: 242, G: 13, B: 13, A: 255})
	fillRect(img, image.Rect(40, 0, 80, 40), color.NRGBA{R: 134, G: 191, B: 249, A: 255})
	fillRect(img, image.Rect(80, 0, 120, 40), color.NRGBA{R: 6, G: 121, B: 6, A: 255})
	fillRect(img, image.Rect(0, 40, 40, 80), color.NRGBA{R: 166, G: 128, B: 89, A: 255})
	fillRect(img, image.Rect(40, 40, 80, 80), color.NRGBA{R: 191, G: 172, B: 210, A: 255})
	fillRect(img, image.Rect(80, 40, 120, 80), color.NRGBA{R: 83, G: 83, B: 45, A: 255})

	options := DefaultOptions()
	options.Quality = 1
	options.FillMissing = false

	palette, err := NewExtractor().Extract(context.Background(), img, options)
	require.NoError(t, err)
	require.True(t, palette.Complete(), "missing slots: %v", palette.Missing())

	assert.Equal(t, "#f40c0c", palette.Vibrant.Hex)
	assert.Equal(t, "#84bcfc", palette.LightVibrant.Hex)
	assert.Equal(t, "#047c04", palette.DarkVibrant.Hex)
	assert.Equal(t, "#a4845c", palette.Muted.Hex)
	assert.Equal(t, "#bcacd4", palette.LightMuted.Hex)
	assert.Equal(t, "#54542c", palette.DarkMuted.Hex)

	for _, slot := range Slots {
		assert.Equal(t, 1600, palette.Get(slot).Population, "slot %s", slot)
	}

	assert.Equal(t, 120, palette.SourceWidth)
	assert.Equal(t, 80, palette.SourceHeight)
	assert.Equal(t, 120, palette.SampleWidth)
}

func TestExtractLeavesSlotsEmptyWithoutFill(t *testing.T) {
	t.Parallel()

	img := solidImage(64, 64, color.NRGBA{R: 242, G: 13, B: 13, A: 255})
	options := DefaultOptions()
	options.FillMissing = false

	palette, err := NewExtractor().Extract(context.Background(), img, options)
	require.NoError(t, err)

	require.NotNil(t, palette.Vibrant)
	assert.False(t, palette.Complete())
	assert.Equal(t, []Slot{SlotDarkVibrant, SlotLightVibrant, SlotMuted, SlotLightMuted, SlotDarkMuted}, palette.Missing())
}

func TestExtractFillsMissingFromSiblings(t *testing.T) {
	t.Parallel()

	img := solidImage(64, 64, color.NRGBA{R: 242, G: 13, B: 13, A: 255})

	palette, err := NewExtractor().Extract(context.Background(), img, DefaultOptions())
	require.NoError(t, err)
	require.True(t, palette.Complete(), "missing slots: %v", palette.Missing())

	assert.InDelta(t, defaultGeneratorTargets.targetDarkLuma, palette.DarkVibrant.Lightness, 0.01)
	assert.InDelta(t, defaultGeneratorTargets.targetLightLuma, palette.LightVibrant.Lightness, 0.01)
	assert.InDelta(t, defaultGeneratorTargets.targetMutedSat, palette.Muted.Saturation, 0.02)
	assert.InDelta(t, palette.Vibrant.Lightness, palette.Muted.Lightness, 0.01)
	assert.Zero(t, palette.DarkMuted.Population)
	assert.NotZero(t, palette.Vibrant.Population)
}

func TestExtractDownscalesLargeImages(t *testing.T) {
	t.Parallel()

	img := solidImage(900, 600, color.NRGBA{R: 6, G: 121, B: 6, A: 255})
	options := DefaultOptions()
	options.MaxDimension = 180

	palette, err := NewExtractor().Extract(context.Background(), img, options)
	require.NoError(t, err)

	assert.Equal(t, 900, palette.SourceWidth)
	assert.Equal(t, 180, palette.SampleWidth)
	assert.Equal(t, 120, palette.SampleHeight)
	require.NotNil(t, palette.DarkVibrant)
	assert.Equal(t, "#047c04", palette.DarkVibrant.Hex)
}

func TestExtractRejectsUnusableImages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		img  image.Image
		want error
	}{
		{name: "fully transparent", img: image.NewNRGBA(image.Rect(0, 0, 32, 32)), want: ErrNoEligible},
		{name: "near white only", img: solidImage(32, 32, color.NRGBA{R: 255, G: 253, B: 252, A: 255}), want: ErrNoEligible},
		{name: "empty bounds", img: image.NewNRGBA(image.Rectangle{}), want: ErrNoPixels},
		{name: "nil image", img: nil, want: ErrNoPixels},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExtractor().Extract(context.Background(), tt.img, DefaultOptions())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExtractHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExtractor().Extract(ctx, solidImage(32, 32, color.NRGBA{R: 10, G: 20, B: 30, A: 255}), DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeOptionsClampsRanges(t *testing.T) {
	t.Parallel()

	normalized := NormalizeOptions(Options{MaxDimension: 5000, Quality: 50, ColorCount: 2, QuantizationBits: 9, AlphaThreshold: 400})
	assert.Equal(t, 1024, normalized.MaxDimension)
	assert.Equal(t, 12, normalized.Quality)
	assert.Equal(t, 6, normalized.ColorCount)
	assert.Equal(t, 6, normalized.QuantizationBits)
	assert.Equal(t, 254, normalized.AlphaThreshold)
	assert.GreaterOrEqual(t, normalized.WorkerCount, 1)
}

func TestMedianCutStopsAtDistinctColors(t *testing.T) {
	t.Parallel()

	bins := []bin{
		{cell: [3]uint8{1, 1, 1}, rgb: [3]uint8{12, 12, 12}, count: 10},
		{cell: [3]uint8{30, 1, 1}, rgb: [3]uint8{244, 12, 12}, count: 5},
		{cell: [3]uint8{1, 30, 1}, rgb: [3]uint8{12, 244, 12}, count: 1},
	}

	boxes := medianCut(bins, 64)
	require.Len(t, boxes, 3)

	swatches := boxesToSwatches(boxes)
	require.Len(t, swatches, 3)
	assert.Equal(t, 10, swatches[0].Population)
	assert.Equal(t, "#0c0c0c", swatches[0].Hex)
	assert.Equal(t, 1, swatches[2].Population)
}

func TestMedianCutHonorsTarget(t *testing.T) {
	t.Parallel()

	var bins []bin
	for r := uint8(0); r < 16; r++ {
		bins = append(bins, bin{cell: [3]uint8{r, r, r}, rgb: [3]uint8{r * 8, r * 8, r * 8}, count: int(r) + 1})
	}

	boxes := medianCut(bins, 6)
	require.Len(t, boxes, 6)

	total := 0
	for _, box := range boxes {
		total += box.population
	}
	assert.Equal(t, 136, total)
}

func fillRect(img *image.NRGBA, rect image.Rectangle, fill color.NRGBA) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetNRGBA(x, y, fill)
		}
	}
}

func solidImage(width, height int, fill color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	fillRect(img, img.Bounds(), fill)
	return img
}
