package dynamiccolor

import (
	"covertint/internal/palette"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrImageLoad         = errors.New("image load failed")
	ErrColorExtraction   = errors.New("color extraction failed")
	ErrIncompletePalette = errors.New("palette is incomplete")
)

// Accept passes a palette only when all six slots are filled.
func Accept(candidate palette.Palette) (palette.Palette, error) {
	missing := candidate.Missing()
	if len(missing) == 0 {
		return candidate, nil
	}

	names := make([]string, 0, len(missing))
	for _, slot := range missing {
		names = append(names, string(slot))
	}
	return palette.Palette{}, fmt.Errorf("%w: missing %s", ErrIncompletePalette, strings.Join(names, ", "))
}
