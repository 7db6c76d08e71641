package average

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		width, height int
		want          Mode
	}{
		{601, 601, ModeFast},
		{1200, 900, ModeFast},
		{600, 601, ModePrecise},
		{601, 600, ModePrecise},
		{600, 600, ModePrecise},
		{1000, 400, ModePrecise},
		{0, 0, ModePrecise},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ModeFor(tt.width, tt.height, DefaultFastModeThreshold), "%dx%d", tt.width, tt.height)
	}
}

func TestDominantPicksLargestGroupAndSkipsIgnored(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	fillRows(img, 0, 5, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	fillRows(img, 5, 8, color.NRGBA{R: 200, G: 30, B: 30, A: 255})
	fillRows(img, 8, 10, color.NRGBA{R: 20, G: 40, B: 220, A: 255})

	got, err := Extract(img, Options{Mode: ModePrecise, IgnoredColors: DefaultIgnoredColors(DefaultIgnoreTolerance)})
	require.NoError(t, err)

	assert.Equal(t, "#c81e1e", got.Hex)
	assert.Equal(t, uint8(255), got.A)
	assert.Equal(t, 30, got.Pixels)
	assert.True(t, got.IsDark)
	assert.False(t, got.IsLight)
}

func TestIgnoreToleranceBoundary(t *testing.T) {
	t.Parallel()

	ignored := DefaultIgnoredColors(DefaultIgnoreTolerance)
	assert.True(t, isIgnored(75, 75, 75, 255, ignored))
	assert.True(t, isIgnored(180, 200, 255, 255, ignored))
	assert.False(t, isIgnored(76, 0, 0, 255, ignored))
	assert.False(t, isIgnored(0, 0, 0, 100, ignored), "translucent black is not opaque black")

	exact := DefaultIgnoredColors(0)
	assert.True(t, isIgnored(255, 255, 255, 255, exact))
	assert.False(t, isIgnored(254, 255, 255, 255, exact))
	assert.False(t, isIgnored(1, 0, 0, 255, exact))
}

func TestAllPixelsIgnored(t *testing.T) {
	t.Parallel()

	img := solid(20, 20, color.NRGBA{R: 250, G: 250, B: 250, A: 255})
	_, err := Extract(img, Options{IgnoredColors: DefaultIgnoredColors(DefaultIgnoreTolerance)})
	assert.ErrorIs(t, err, ErrNoPixels)

	_, err = Extract(image.NewNRGBA(image.Rectangle{}), Options{})
	assert.ErrorIs(t, err, ErrNoPixels)
}

func TestSimpleAndSqrtAlgorithms(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	fillRows(img, 0, 1, color.NRGBA{R: 100, G: 0, B: 0, A: 255})
	fillRows(img, 1, 2, color.NRGBA{R: 0, G: 0, B: 200, A: 255})

	got, err := Extract(img, Options{Algorithm: AlgorithmSimple})
	require.NoError(t, err)
	assert.Equal(t, [3]uint8{50, 0, 100}, [3]uint8{got.R, got.G, got.B})
	assert.Equal(t, 4, got.Pixels)

	got, err = Extract(img, Options{Algorithm: AlgorithmSqrt})
	require.NoError(t, err)
	assert.Equal(t, [3]uint8{71, 0, 141}, [3]uint8{got.R, got.G, got.B})
}

func TestAlphaWeighting(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 100, G: 0, B: 0, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 0, B: 200, A: 0})

	got, err := Extract(img, Options{Algorithm: AlgorithmSimple})
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{100, 0, 0, 128}, [4]uint8{got.R, got.G, got.B, got.A})
}

func TestFastModeSamplesDownscaledImage(t *testing.T) {
	t.Parallel()

	img := solid(1000, 800, color.NRGBA{R: 50, G: 120, B: 200, A: 255})

	fast, err := Extract(img, Options{Mode: ModeFast})
	require.NoError(t, err)
	assert.Equal(t, 100*80, fast.Pixels)
	assert.InDelta(t, 50, int(fast.R), 1)
	assert.InDelta(t, 120, int(fast.G), 1)
	assert.InDelta(t, 200, int(fast.B), 1)

	precise, err := Extract(img, Options{Mode: ModePrecise})
	require.NoError(t, err)
	assert.Equal(t, 1000*800, precise.Pixels)
	assert.Equal(t, "#3278c8", precise.Hex)
}

func TestKmeansFindsLargestCluster(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 60, 60))
	fillRows(img, 0, 36, color.NRGBA{R: 210, G: 40, B: 40, A: 255})
	fillRows(img, 36, 48, color.NRGBA{R: 40, G: 60, B: 210, A: 255})
	fillRows(img, 48, 60, color.NRGBA{R: 230, G: 200, B: 40, A: 255})

	got, err := Extract(img, Options{Algorithm: AlgorithmKmeans})
	require.NoError(t, err)
	assert.InDelta(t, 210, int(got.R), 20)
	assert.InDelta(t, 40, int(got.G), 20)
	assert.InDelta(t, 40, int(got.B), 20)
}

func TestParseAlgorithm(t *testing.T) {
	t.Parallel()

	algorithm, err := ParseAlgorithm(" Sqrt ")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmSqrt, algorithm)

	algorithm, err = ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmDominant, algorithm)

	_, err = ParseAlgorithm("median")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = Extract(solid(2, 2, color.NRGBA{A: 255}), Options{Algorithm: "median"})
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func fillRows(img *image.NRGBA, fromY, toY int, fill color.NRGBA) {
	for y := fromY; y < toY; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			img.SetNRGBA(x, y, fill)
		}
	}
}

func solid(width, height int, fill color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	fillRows(img, 0, height, fill)
	return img
}
