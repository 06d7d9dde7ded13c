package redactor

import (
	"image"
	"math"
	"sort"
)

// gaussianKernel builds a normalized 1-D gaussian of the given odd size.
// Sigma follows the OpenCV convention for auto-derived sigma:
// 0.3*((size-1)*0.5 - 1) + 0.8.
func gaussianKernel(size int) []float64 {
	sigma := 0.3*((float64(size)-1)*0.5-1) + 0.8
	kernel := make([]float64, size)
	mid := size / 2

	var sum float64
	for i := range kernel {
		d := float64(i - mid)
		kernel[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// convolveSeparable applies the 1-D kernel horizontally then vertically over
// roi. Samples outside the roi are clamped to its edge, so the blur never
// bleeds content in from unredacted parts of the image.
func convolveSeparable(img *image.RGBA, roi image.Rectangle, kernel []float64) {
	convolveAxis(img, roi, kernel, true)
	convolveAxis(img, roi, kernel, false)
}

func convolveAxis(img *image.RGBA, roi image.Rectangle, kernel []float64, horizontal bool) {
	w, h := roi.Dx(), roi.Dy()
	mid := len(kernel) / 2
	out := make([]uint8, w*h*4)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b, a float64
			for k, weight := range kernel {
				sx, sy := x, y
				if horizontal {
					sx = clamp(x+k-mid, 0, w-1)
				} else {
					sy = clamp(y+k-mid, 0, h-1)
				}
				off := img.PixOffset(roi.Min.X+sx, roi.Min.Y+sy)
				r += weight * float64(img.Pix[off])
				g += weight * float64(img.Pix[off+1])
				b += weight * float64(img.Pix[off+2])
				a += weight * float64(img.Pix[off+3])
			}
			o := (y*w + x) * 4
			out[o] = uint8(r + 0.5)
			out[o+1] = uint8(g + 0.5)
			out[o+2] = uint8(b + 0.5)
			out[o+3] = uint8(a + 0.5)
		}
	}

	writeBack(img, roi, out)
}

// motionBlur convolves roi with a horizontal line kernel of the given
// length, the directional smear pass applied after the gaussian passes.
func motionBlur(img *image.RGBA, roi image.Rectangle, length int) {
	kernel := make([]float64, length)
	for i := range kernel {
		kernel[i] = 1 / float64(length)
	}
	convolveAxis(img, roi, kernel, true)
}

// medianBlur replaces each pixel with the channel-wise median of its 3x3
// neighborhood, clamped to the roi.
func medianBlur(img *image.RGBA, roi image.Rectangle) {
	w, h := roi.Dx(), roi.Dy()
	out := make([]uint8, w*h*4)
	var window [9]uint8

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := (y*w + x) * 4
			for c := 0; c < 4; c++ {
				n := 0
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						sx := clamp(x+dx, 0, w-1)
						sy := clamp(y+dy, 0, h-1)
						off := img.PixOffset(roi.Min.X+sx, roi.Min.Y+sy)
						window[n] = img.Pix[off+c]
						n++
					}
				}
				s := window[:]
				sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
				out[o+c] = s[4]
			}
		}
	}

	writeBack(img, roi, out)
}

func writeBack(img *image.RGBA, roi image.Rectangle, buf []uint8) {
	w := roi.Dx()
	for y := 0; y < roi.Dy(); y++ {
		row := img.PixOffset(roi.Min.X, roi.Min.Y+y)
		copy(img.Pix[row:row+w*4], buf[y*w*4:(y+1)*w*4])
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
