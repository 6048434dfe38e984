package column

import (
	"fmt"
	"math"
	"strconv"
)

// Unit says how a column's width is derived.
type Unit int

const (
	// Pixel is a fixed width in cells.
	Pixel Unit = iota
	// Auto sizes to the wider of header and cell content.
	Auto
	// SizeToCells sizes to cell content only.
	SizeToCells
	// SizeToHeader sizes to the header only.
	SizeToHeader
	// Star takes a weighted share of the space left by the other columns.
	Star
)

func (u Unit) String() string {
	switch u {
	case Pixel:
		return "pixel"
	case Auto:
		return "auto"
	case SizeToCells:
		return "cells"
	case SizeToHeader:
		return "header"
	case Star:
		return "star"
	}
	return "unknown"
}

// Length is a column width. Value is the pixel count or the star weight.
// DesiredValue is the measured or computed natural width (NaN until known)
// and DisplayValue is the width currently laid out.
type Length struct {
	Value        float64
	Unit         Unit
	DesiredValue float64
	DisplayValue float64
}

// Pixels returns a fixed width.
func Pixels(v float64) Length {
	return Length{Value: v, Unit: Pixel, DesiredValue: v, DisplayValue: v}
}

// AutoWidth returns a width sized to header and content.
func AutoWidth() Length {
	return Length{Value: 1, Unit: Auto, DesiredValue: math.NaN(), DisplayValue: math.NaN()}
}

// CellsWidth returns a width sized to cell content.
func CellsWidth() Length {
	return Length{Value: 1, Unit: SizeToCells, DesiredValue: math.NaN(), DisplayValue: math.NaN()}
}

// HeaderWidth returns a width sized to the header.
func HeaderWidth() Length {
	return Length{Value: 1, Unit: SizeToHeader, DesiredValue: math.NaN(), DisplayValue: math.NaN()}
}

// StarWidth returns a proportional width with the given weight.
func StarWidth(weight float64) Length {
	return Length{Value: weight, Unit: Star, DesiredValue: math.NaN(), DisplayValue: math.NaN()}
}

// IsStar reports whether the width is proportional.
func (l Length) IsStar() bool { return l.Unit == Star }

// IsAbsolute reports whether the width is a fixed pixel count.
func (l Length) IsAbsolute() bool { return l.Unit == Pixel }

// IsAuto reports whether the width is measured from content.
func (l Length) IsAuto() bool {
	return l.Unit == Auto || l.Unit == SizeToCells || l.Unit == SizeToHeader
}

// ParseLength reads "auto", "cells", "header", "*", "2*" or a plain number.
func ParseLength(s string) (Length, error) {
	switch s {
	case "auto", "Auto":
		return AutoWidth(), nil
	case "cells":
		return CellsWidth(), nil
	case "header":
		return HeaderWidth(), nil
	case "*":
		return StarWidth(1), nil
	}
	if n := len(s); n > 1 && s[n-1] == '*' {
		w, err := strconv.ParseFloat(s[:n-1], 64)
		if err != nil || w <= 0 {
			return Length{}, fmt.Errorf("invalid star width %q", s)
		}
		return StarWidth(w), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return Length{}, fmt.Errorf("invalid width %q", s)
	}
	return Pixels(v), nil
}

func (l Length) String() string {
	switch l.Unit {
	case Pixel:
		return strconv.FormatFloat(l.Value, 'f', -1, 64)
	case Star:
		if l.Value == 1 {
			return "*"
		}
		return strconv.FormatFloat(l.Value, 'f', -1, 64) + "*"
	}
	return l.Unit.String()
}

const epsilon = 1e-6

func isZero(v float64) bool { return math.Abs(v) < epsilon }

func lessOrClose(a, b float64) bool { return a < b || math.Abs(a-b) < epsilon }

func greaterOrClose(a, b float64) bool { return a > b || math.Abs(a-b) < epsilon }
