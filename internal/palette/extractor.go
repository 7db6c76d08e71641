package palette

import (
	"context"
	"errors"
	"image"
	"math"
	"runtime"
	"sort"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

const (
	maxWorkers = 8

	// Boxes are split by population alone until this share of the target
	// count exists, then by population times volume.
	populationSplitFraction = 0.75

	nearWhite       = 250
	cancelCheckStep = 4096
)

var (
	ErrNoPixels   = errors.New("image has no pixels")
	ErrNoEligible = errors.New("no eligible pixels after filtering")
)

var defaultOptions = Options{
	MaxDimension:     256,
	Quality:          5,
	ColorCount:       64,
	QuantizationBits: 5,
	AlphaThreshold:   125,
	IgnoreNearWhite:  true,
	FillMissing:      true,
}

// Options tune sampling and quantization. Start from DefaultOptions; the
// zero value disables near-white filtering and slot fill-in.
type Options struct {
	MaxDimension     int  `json:"maxDimension"`
	Quality          int  `json:"quality"`
	ColorCount       int  `json:"colorCount"`
	QuantizationBits int  `json:"quantizationBits"`
	AlphaThreshold   int  `json:"alphaThreshold"`
	IgnoreNearWhite  bool `json:"ignoreNearWhite"`
	FillMissing      bool `json:"fillMissing"`
	WorkerCount      int  `json:"workerCount"`
}

// Palette holds the six named swatches. Any slot may be nil.
type Palette struct {
	Vibrant      *Swatch `json:"vibrant,omitempty"`
	DarkVibrant  *Swatch `json:"darkVibrant,omitempty"`
	LightVibrant *Swatch `json:"lightVibrant,omitempty"`
	Muted        *Swatch `json:"muted,omitempty"`
	LightMuted   *Swatch `json:"lightMuted,omitempty"`
	DarkMuted    *Swatch `json:"darkMuted,omitempty"`
	SourceWidth  int     `json:"sourceWidth"`
	SourceHeight int     `json:"sourceHeight"`
	SampleWidth  int     `json:"sampleWidth"`
	SampleHeight int     `json:"sampleHeight"`
}

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func DefaultOptions() Options {
	return defaultOptions
}

func NormalizeOptions(options Options) Options {
	return options.normalized()
}

// Extract quantizes img into at most ColorCount swatches and classifies them
// into the six palette slots.
func (e *Extractor) Extract(ctx context.Context, img image.Image, options Options) (Palette, error) {
	normalized := options.normalized()
	if img == nil || img.Bounds().Empty() {
		return Palette{}, ErrNoPixels
	}

	sampled := sample(img, normalized.MaxDimension)
	if err := ctx.Err(); err != nil {
		return Palette{}, err
	}

	bins, err := buildHistogram(ctx, sampled, normalized)
	if err != nil {
		return Palette{}, err
	}

	swatches := boxesToSwatches(medianCut(bins, normalized.ColorCount))
	if len(swatches) == 0 {
		return Palette{}, ErrNoEligible
	}

	palette := generate(swatches, defaultGeneratorTargets, normalized.FillMissing)
	palette.SourceWidth = img.Bounds().Dx()
	palette.SourceHeight = img.Bounds().Dy()
	palette.SampleWidth = sampled.Bounds().Dx()
	palette.SampleHeight = sampled.Bounds().Dy()

	return palette, nil
}

func (o Options) normalized() Options {
	orDefault := func(value, fallback, minimum, maximum int) int {
		if value <= 0 {
			value = fallback
		}
		return max(minimum, min(value, maximum))
	}

	n := o
	n.MaxDimension = orDefault(o.MaxDimension, defaultOptions.MaxDimension, 32, 1024)
	n.Quality = orDefault(o.Quality, defaultOptions.Quality, 1, 12)
	n.ColorCount = orDefault(o.ColorCount, defaultOptions.ColorCount, 6, 256)
	n.QuantizationBits = orDefault(o.QuantizationBits, defaultOptions.QuantizationBits, 4, 6)
	n.AlphaThreshold = max(0, min(o.AlphaThreshold, 254))
	n.WorkerCount = orDefault(o.WorkerCount, runtime.GOMAXPROCS(0), 1, maxWorkers)
	return n
}

// sample returns img as NRGBA at origin, scaled so its longest side is at
// most maxDimension.
func sample(img image.Image, maxDimension int) *image.NRGBA {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if longest := max(width, height); longest > maxDimension {
		scale := float64(maxDimension) / float64(longest)
		target := image.Rect(0, 0,
			max(int(math.Round(float64(width)*scale)), 1),
			max(int(math.Round(float64(height)*scale)), 1),
		)
		dst := image.NewNRGBA(target)
		draw.BiLinear.Scale(dst, target, img, bounds, draw.Src, nil)
		return dst
	}

	if nrgba, ok := img.(*image.NRGBA); ok && bounds.Min == (image.Point{}) {
		return nrgba
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// bin is one occupied histogram cell.
type bin struct {
	cell  [3]uint8 // quantized r, g, b
	rgb   [3]uint8 // cell center
	count int
}

// buildHistogram counts every Quality-th eligible pixel into quantized
// cells. Row bands are counted concurrently into private histograms.
func buildHistogram(ctx context.Context, img *image.NRGBA, options Options) ([]bin, error) {
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	bits := uint(options.QuantizationBits)
	shift := 8 - bits
	cells := 1 << (3 * bits)

	bands := min(options.WorkerCount, height)
	partial := make([][]int, bands)

	group, groupCtx := errgroup.WithContext(ctx)
	for band := range bands {
		group.Go(func() error {
			local := make([]int, cells)
			start := band * height / bands * width
			end := (band + 1) * height / bands * width

			// Anchor the stride to pixel 0 so the sampled set does not depend
			// on the band split.
			first := (start + options.Quality - 1) / options.Quality * options.Quality
			visited := 0
			for index := first; index < end; index += options.Quality {
				if visited++; visited%cancelCheckStep == 0 {
					if err := groupCtx.Err(); err != nil {
						return err
					}
				}

				offset := (index/width)*img.Stride + (index%width)*4
				px := img.Pix[offset : offset+4 : offset+4]
				if int(px[3]) < options.AlphaThreshold {
					continue
				}
				if options.IgnoreNearWhite && px[0] > nearWhite && px[1] > nearWhite && px[2] > nearWhite {
					continue
				}
				local[int(px[0]>>shift)<<(2*bits)|int(px[1]>>shift)<<bits|int(px[2]>>shift)]++
			}

			partial[band] = local
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	histogram := make([]int, cells)
	for _, local := range partial {
		for index, count := range local {
			histogram[index] += count
		}
	}

	mask := 1<<bits - 1
	half := (1 << shift) / 2
	var bins []bin
	for index, count := range histogram {
		if count == 0 {
			continue
		}
		cell := [3]uint8{
			uint8((index >> (2 * bits)) & mask),
			uint8((index >> bits) & mask),
			uint8(index & mask),
		}
		var rgb [3]uint8
		for channel, value := range cell {
			rgb[channel] = uint8(min(int(value)<<shift+half, 255))
		}
		bins = append(bins, bin{cell: cell, rgb: rgb, count: count})
	}

	if len(bins) == 0 {
		return nil, ErrNoEligible
	}
	return bins, nil
}

// vbox is a box in quantized color space with the bins inside it.
type vbox struct {
	bins       []bin
	population int
	lo, hi     [3]uint8
}

func newVBox(bins []bin) vbox {
	box := vbox{bins: bins, lo: bins[0].cell, hi: bins[0].cell}
	for _, b := range bins {
		box.population += b.count
		for axis := range 3 {
			box.lo[axis] = min(box.lo[axis], b.cell[axis])
			box.hi[axis] = max(box.hi[axis], b.cell[axis])
		}
	}
	return box
}

func (b vbox) volume() int {
	volume := 1
	for axis := range 3 {
		volume *= int(b.hi[axis]-b.lo[axis]) + 1
	}
	return volume
}

func (b vbox) longestAxis() int {
	longest := 0
	for axis := 1; axis < 3; axis++ {
		if b.hi[axis]-b.lo[axis] > b.hi[longest]-b.lo[longest] {
			longest = axis
		}
	}
	return longest
}

// split cuts the box at the population median of its longest axis. Both
// halves keep at least one bin.
func (b vbox) split() (vbox, vbox, bool) {
	if len(b.bins) < 2 {
		return vbox{}, vbox{}, false
	}

	axis := b.longestAxis()
	ordered := append([]bin(nil), b.bins...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].cell[axis] != ordered[j].cell[axis] {
			return ordered[i].cell[axis] < ordered[j].cell[axis]
		}
		return ordered[i].count > ordered[j].count
	})

	cut, seen := 0, 0
	for cut < len(ordered)-1 {
		seen += ordered[cut].count
		cut++
		if seen*2 >= b.population {
			break
		}
	}

	return newVBox(ordered[:cut:cut]), newVBox(ordered[cut:]), true
}

// medianCut splits boxes until target boxes exist or none can be split.
func medianCut(bins []bin, target int) []vbox {
	if len(bins) == 0 {
		return nil
	}

	boxes := []vbox{newVBox(bins)}
	byPopulation := func(box vbox) int { return box.population }
	byPopulationVolume := func(box vbox) int { return box.population * box.volume() }

	boxes = splitUntil(boxes, int(math.Ceil(populationSplitFraction*float64(target))), byPopulation)
	return splitUntil(boxes, target, byPopulationVolume)
}

func splitUntil(boxes []vbox, target int, priority func(vbox) int) []vbox {
	for len(boxes) < target {
		best := -1
		for index, box := range boxes {
			if len(box.bins) < 2 {
				continue
			}
			if best < 0 || priority(box) > priority(boxes[best]) {
				best = index
			}
		}
		if best < 0 {
			break
		}

		left, right, ok := boxes[best].split()
		if !ok {
			break
		}
		boxes[best] = left
		boxes = append(boxes, right)
	}
	return boxes
}

// boxesToSwatches averages each box into a swatch, most populous first.
func boxesToSwatches(boxes []vbox) []Swatch {
	swatches := make([]Swatch, 0, len(boxes))
	for _, box := range boxes {
		if box.population == 0 {
			continue
		}

		var sums [3]int
		for _, b := range box.bins {
			for channel := range 3 {
				sums[channel] += int(b.rgb[channel]) * b.count
			}
		}
		swatches = append(swatches, NewSwatch(
			uint8(sums[0]/box.population),
			uint8(sums[1]/box.population),
			uint8(sums[2]/box.population),
			box.population,
		))
	}

	sort.SliceStable(swatches, func(i, j int) bool {
		return swatches[i].Population > swatches[j].Population
	})
	return swatches
}

func clampFloat(value float64, minimum float64, maximum float64) float64 {
	return math.Max(minimum, math.Min(value, maximum))
}
