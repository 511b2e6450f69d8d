package wml

import "math"

// EMUPerPixel is the number of English Metric Units per pixel at 96 DPI.
const EMUPerPixel = 9525

// PixelsToEMU converts a pixel length to EMU.
func PixelsToEMU(px int) int64 {
	return int64(px) * EMUPerPixel
}

// EMUToPixels converts an EMU length to whole pixels, rounding to nearest.
func EMUToPixels(emu int64) int {
	return int(math.Round(float64(emu) / EMUPerPixel))
}

// HalfPointsToPoints converts a native w:sz value to points.
func HalfPointsToPoints(hp int) float64 {
	return float64(hp) / 2
}

// PointsToHalfPoints converts a font size in points to the native w:sz unit.
func PointsToHalfPoints(pt float64) int {
	return int(math.Round(pt * 2))
}

// Default page geometry in twentieths of a point (US Letter, 1in margins).
const (
	DefaultPageWidth  = 12240
	DefaultPageHeight = 15840
	DefaultMargin     = 1440
	DefaultHeaderDist = 720
)
