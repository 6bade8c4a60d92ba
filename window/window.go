// Package window provides the analysis window tables used by the frame
// splitter. Window values are sample-centered: the shape is evaluated at
// index i over [0, size), symmetric about (size-1)/2.
package window

import (
	"fmt"
)

// Type identifies a supported window shape
type Type int

const (
	// None skips windowing entirely, no table is built
	None Type = iota
	// Rectangular multiplies every sample by 1
	Rectangular
	// Hamming is the raised-cosine window with 0.54/0.46 weights
	Hamming
	// Hanning is the raised-cosine window with 0.5/0.5 weights
	Hanning
	// Blackman is the three-term cosine window
	Blackman
)

var typeNames = map[Type]string{
	None:        "none",
	Rectangular: "rect",
	Hamming:     "hamm",
	Hanning:     "hann",
	Blackman:    "blackman",
}

// String returns the canonical configuration name of the window type
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Parse maps a configuration name back to its window type. Unknown names
// report an error so that bad configuration fails before any table is built.
func Parse(name string) (Type, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return None, fmt.Errorf("invalid config: unknown window type %q", name)
}

// Compute builds the multiplier table for the given shape. None returns a
// nil table, the caller treats it as identity.
func Compute(size int, windowType Type) ([]float64, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid config: window size must be positive, got %d", size)
	}

	switch windowType {
	case None:
		return nil, nil
	case Rectangular:
		return generateRectangular(size), nil
	case Hamming:
		return generateHamming(size), nil
	case Hanning:
		return generateHanning(size), nil
	case Blackman:
		return generateBlackman(size), nil
	default:
		return nil, fmt.Errorf("invalid config: unknown window type %d", windowType)
	}
}
