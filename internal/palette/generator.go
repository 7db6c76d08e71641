package palette

import (
	"math"
)

// Slot names a palette position.
type Slot string

const (
	SlotVibrant      Slot = "vibrant"
	SlotDarkVibrant  Slot = "darkVibrant"
	SlotLightVibrant Slot = "lightVibrant"
	SlotMuted        Slot = "muted"
	SlotLightMuted   Slot = "lightMuted"
	SlotDarkMuted    Slot = "darkMuted"
)

// Slots lists every slot in a fixed order.
var Slots = []Slot{
	SlotVibrant,
	SlotDarkVibrant,
	SlotLightVibrant,
	SlotMuted,
	SlotLightMuted,
	SlotDarkMuted,
}

type generatorTargets struct {
	targetDarkLuma   float64
	maxDarkLuma      float64
	minLightLuma     float64
	targetLightLuma  float64
	minNormalLuma    float64
	targetNormalLuma float64
	maxNormalLuma    float64
	targetMutedSat   float64
	maxMutedSat      float64
	targetVibrantSat float64
	minVibrantSat    float64
	weightSaturation float64
	weightLuma       float64
	weightPopulation float64
}

var defaultGeneratorTargets = generatorTargets{
	targetDarkLuma:   0.26,
	maxDarkLuma:      0.45,
	minLightLuma:     0.55,
	targetLightLuma:  0.74,
	minNormalLuma:    0.3,
	targetNormalLuma: 0.5,
	maxNormalLuma:    0.7,
	targetMutedSat:   0.3,
	maxMutedSat:      0.4,
	targetVibrantSat: 1.0,
	minVibrantSat:    0.35,
	weightSaturation: 3,
	weightLuma:       6.5,
	weightPopulation: 0.5,
}

// Get returns the swatch in slot, or nil.
func (p Palette) Get(slot Slot) *Swatch {
	switch slot {
	case SlotVibrant:
		return p.Vibrant
	case SlotDarkVibrant:
		return p.DarkVibrant
	case SlotLightVibrant:
		return p.LightVibrant
	case SlotMuted:
		return p.Muted
	case SlotLightMuted:
		return p.LightMuted
	case SlotDarkMuted:
		return p.DarkMuted
	default:
		return nil
	}
}

// Missing lists the empty slots in Slots order.
func (p Palette) Missing() []Slot {
	var missing []Slot
	for _, slot := range Slots {
		if p.Get(slot) == nil {
			missing = append(missing, slot)
		}
	}
	return missing
}

func (p Palette) Complete() bool {
	return len(p.Missing()) == 0
}

type slotRange struct {
	targetLuma, minLuma, maxLuma float64
	targetSat, minSat, maxSat    float64
}

func generate(swatches []Swatch, targets generatorTargets, fillMissing bool) Palette {
	maxPopulation := 0
	for _, swatch := range swatches {
		maxPopulation = max(maxPopulation, swatch.Population)
	}

	dark := func(targetSat, minSat, maxSat float64) slotRange {
		return slotRange{targets.targetDarkLuma, 0, targets.maxDarkLuma, targetSat, minSat, maxSat}
	}
	normal := func(targetSat, minSat, maxSat float64) slotRange {
		return slotRange{targets.targetNormalLuma, targets.minNormalLuma, targets.maxNormalLuma, targetSat, minSat, maxSat}
	}
	light := func(targetSat, minSat, maxSat float64) slotRange {
		return slotRange{targets.targetLightLuma, targets.minLightLuma, 1, targetSat, minSat, maxSat}
	}
	vibrant := func(r func(float64, float64, float64) slotRange) slotRange {
		return r(targets.targetVibrantSat, targets.minVibrantSat, 1)
	}
	muted := func(r func(float64, float64, float64) slotRange) slotRange {
		return r(targets.targetMutedSat, 0, targets.maxMutedSat)
	}

	var palette Palette
	selected := make([]*Swatch, 0, len(Slots))
	pick := func(r slotRange) *Swatch {
		found := findVariation(swatches, selected, r, targets, maxPopulation)
		if found != nil {
			selected = append(selected, found)
		}
		return found
	}

	palette.Vibrant = pick(vibrant(normal))
	palette.LightVibrant = pick(vibrant(light))
	palette.DarkVibrant = pick(vibrant(dark))
	palette.Muted = pick(muted(normal))
	palette.LightMuted = pick(muted(light))
	palette.DarkMuted = pick(muted(dark))

	if fillMissing {
		fillMissingSwatches(&palette, targets)
	}

	return palette
}

func findVariation(swatches []Swatch, selected []*Swatch, r slotRange, targets generatorTargets, maxPopulation int) *Swatch {
	var best *Swatch
	bestScore := 0.0

	for index := range swatches {
		candidate := &swatches[index]
		if candidate.Saturation < r.minSat || candidate.Saturation > r.maxSat {
			continue
		}
		if candidate.Lightness < r.minLuma || candidate.Lightness > r.maxLuma {
			continue
		}
		if isSelected(selected, candidate) {
			continue
		}

		score := variationScore(candidate, r, targets, maxPopulation)
		if best == nil || score > bestScore {
			best = candidate
			bestScore = score
		}
	}

	if best == nil {
		return nil
	}
	copied := *best
	return &copied
}

func isSelected(selected []*Swatch, candidate *Swatch) bool {
	for _, swatch := range selected {
		if swatch.Hex == candidate.Hex && swatch.Population == candidate.Population {
			return true
		}
	}
	return false
}

func variationScore(swatch *Swatch, r slotRange, targets generatorTargets, maxPopulation int) float64 {
	populationScore := 0.0
	if maxPopulation > 0 {
		populationScore = float64(swatch.Population) / float64(maxPopulation)
	}

	return weightedMean(
		invertDiff(swatch.Saturation, r.targetSat), targets.weightSaturation,
		invertDiff(swatch.Lightness, r.targetLuma), targets.weightLuma,
		populationScore, targets.weightPopulation,
	)
}

func invertDiff(value, target float64) float64 {
	return 1 - math.Abs(value-target)
}

// weightedMean takes alternating value, weight pairs.
func weightedMean(pairs ...float64) float64 {
	sum := 0.0
	weights := 0.0
	for index := 0; index+1 < len(pairs); index += 2 {
		sum += pairs[index] * pairs[index+1]
		weights += pairs[index+1]
	}
	if weights == 0 {
		return 0
	}
	return sum / weights
}

// fillMissingSwatches derives empty slots from their siblings by moving
// lightness (vibrant family) or saturation (muted family) to the slot target.
func fillMissingSwatches(palette *Palette, targets generatorTargets) {
	if palette.Vibrant == nil {
		switch {
		case palette.DarkVibrant != nil:
			palette.Vibrant = derive(palette.DarkVibrant, keep, targets.targetNormalLuma)
		case palette.LightVibrant != nil:
			palette.Vibrant = derive(palette.LightVibrant, keep, targets.targetNormalLuma)
		}
	}

	if palette.DarkVibrant == nil && palette.Vibrant != nil {
		palette.DarkVibrant = derive(palette.Vibrant, keep, targets.targetDarkLuma)
	}
	if palette.LightVibrant == nil && palette.Vibrant != nil {
		palette.LightVibrant = derive(palette.Vibrant, keep, targets.targetLightLuma)
	}

	if palette.Muted == nil && palette.Vibrant != nil {
		palette.Muted = derive(palette.Vibrant, targets.targetMutedSat, keep)
	}
	if palette.DarkMuted == nil && palette.DarkVibrant != nil {
		palette.DarkMuted = derive(palette.DarkVibrant, targets.targetMutedSat, keep)
	}
	if palette.LightMuted == nil && palette.LightVibrant != nil {
		palette.LightMuted = derive(palette.LightVibrant, targets.targetMutedSat, keep)
	}
}

const keep = -1.0

func derive(source *Swatch, saturation, lightness float64) *Swatch {
	if saturation == keep {
		saturation = source.Saturation
	}
	if lightness == keep {
		lightness = source.Lightness
	}
	derived := swatchFromHSL(source.Hue, saturation, lightness)
	return &derived
}
