package dynamiccolor

import (
	"context"
	"covertint/internal/average"
	"covertint/internal/palette"
	"errors"
	"fmt"
	"image"
	"sync"

	"golang.org/x/sync/errgroup"
)

var errEmptyImage = errors.New("image has no pixels")

type PaletteExtractor interface {
	Extract(ctx context.Context, img image.Image, options palette.Options) (palette.Palette, error)
}

type AverageFunc func(img image.Image, options average.Options) (average.Color, error)

type Settings struct {
	FastModeThreshold int               `json:"fastModeThreshold"`
	IgnoreTolerance   int               `json:"ignoreTolerance"`
	Algorithm         average.Algorithm `json:"algorithm"`
	Palette           palette.Options   `json:"palette"`
}

func DefaultSettings() Settings {
	return Settings{
		FastModeThreshold: average.DefaultFastModeThreshold,
		IgnoreTolerance:   average.DefaultIgnoreTolerance,
		Algorithm:         average.AlgorithmDominant,
		Palette:           palette.DefaultOptions(),
	}
}

// Extractor runs the palette and average passes over one bitmap.
type Extractor struct {
	mu       sync.RWMutex
	palettes PaletteExtractor
	average  AverageFunc
	settings Settings
}

// NewExtractor wires the two passes. Nil arguments select the built-in
// implementations.
func NewExtractor(palettes PaletteExtractor, averageFn AverageFunc, settings Settings) *Extractor {
	if palettes == nil {
		palettes = palette.NewExtractor()
	}
	if averageFn == nil {
		averageFn = average.Extract
	}
	return &Extractor{
		palettes: palettes,
		average:  averageFn,
		settings: settings,
	}
}

func (e *Extractor) Configure(settings Settings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = settings
}

func (e *Extractor) Settings() Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings
}

// Extract runs both passes concurrently and returns once both finished.
func (e *Extractor) Extract(ctx context.Context, img image.Image) (palette.Palette, average.Color, error) {
	if img == nil || img.Bounds().Empty() {
		return palette.Palette{}, average.Color{}, errEmptyImage
	}

	settings := e.Settings()
	bounds := img.Bounds()
	averageOptions := average.Options{
		Mode:          average.ModeFor(bounds.Dx(), bounds.Dy(), settings.FastModeThreshold),
		Algorithm:     settings.Algorithm,
		IgnoredColors: average.DefaultIgnoredColors(settings.IgnoreTolerance),
	}

	var (
		extracted palette.Palette
		color     average.Color
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		result, err := e.palettes.Extract(groupCtx, img, settings.Palette)
		if err != nil {
			return fmt.Errorf("palette pass: %w", err)
		}
		extracted = result
		return nil
	})
	group.Go(func() error {
		if err := groupCtx.Err(); err != nil {
			return err
		}
		result, err := e.average(img, averageOptions)
		if err != nil {
			return fmt.Errorf("average pass: %w", err)
		}
		color = result
		return nil
	})

	if err := group.Wait(); err != nil {
		return palette.Palette{}, average.Color{}, err
	}
	return extracted, color, nil
}
