package deck

import "math"

// DrawingML measures positions in English Metric Units.
const (
	EMUPerInch  = 914400
	EMUPerPoint = 12700
	// Images without resolution metadata are sized at 72 DPI.
	EMUPerImagePixel = EMUPerInch / 72
)

// Inches converts inches to EMUs, rounding to the nearest unit.
func Inches(v float64) int64 {
	return int64(math.Round(v * EMUPerInch))
}

// ToInches converts EMUs to inches.
func ToInches(emu int64) float64 {
	return float64(emu) / EMUPerInch
}

// centipoints converts a font size in points to the hundredths used by a:rPr/@sz.
func centipoints(pt float64) int {
	return int(math.Round(pt * 100))
}
