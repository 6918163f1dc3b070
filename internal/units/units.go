// Package units provides shared constants and conversion for screen distance units
package units

import "fmt"

// Unit constants
const (
	PX = "px"
	MM = "mm"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{PX, MM}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "px, mm"
}

// Converter converts pixel distances to millimetres using a calibrated
// pixel density. A zero Converter behaves like Identity.
type Converter struct {
	PixelsPerMM float64
}

// Identity returns a converter that leaves values in pixels.
func Identity() Converter {
	return Converter{PixelsPerMM: 1}
}

// NewConverter returns a converter for the given pixel density.
func NewConverter(pixelsPerMM float64) (Converter, error) {
	if !(pixelsPerMM > 0) {
		return Converter{}, fmt.Errorf("pixels per mm must be positive, got %g", pixelsPerMM)
	}
	return Converter{PixelsPerMM: pixelsPerMM}, nil
}

// Unit returns the distance unit produced by PxToMm: "px" for the identity
// converter, "mm" otherwise.
func (c Converter) Unit() string {
	if c.density() == 1 {
		return PX
	}
	return MM
}

func (c Converter) density() float64 {
	if c.PixelsPerMM <= 0 {
		return 1
	}
	return c.PixelsPerMM
}

// PxToMm converts pixels to millimetres
func (c Converter) PxToMm(px float64) float64 { return px / c.density() }

// MmToPx converts millimetres to pixels
func (c Converter) MmToPx(mm float64) float64 { return mm * c.density() }

// PxPerSecToMmPerSec converts a pixel velocity to mm/s
func (c Converter) PxPerSecToMmPerSec(v float64) float64 { return v / c.density() }

// PxPerSecSqToMmPerSecSq converts a pixel acceleration to mm/s²
func (c Converter) PxPerSecSqToMmPerSecSq(a float64) float64 { return a / c.density() }
