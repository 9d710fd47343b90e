// Package vision computes per-frame engagement signals from decoded
// webcam frames. Face detection itself is an external capability
// injected behind FaceDetector; brightness and contrast are computed
// here from pixel data.
package vision

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"time"

	"intervue/internal/model"
)

// FaceDetector reports face presence in a frame
type FaceDetector interface {
	Detect(img image.Image) (count int)
}

// NullDetector never detects a face. Used when no detector backend is
// configured; face-presence then contributes zero to the engagement
// score instead of failing the pipeline.
type NullDetector struct{}

func (NullDetector) Detect(image.Image) int { return 0 }

// DecodeFrame decodes raw JPEG/PNG bytes into an image
func DecodeFrame(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// AnalyzeFrame produces one VisualSample from a decoded frame.
// Brightness is the mean gray level, contrast the gray standard
// deviation, both on the 0-255 scale.
func AnalyzeFrame(img image.Image, det FaceDetector) model.VisualSample {
	sample := model.VisualSample{Timestamp: time.Now()}
	if img == nil {
		sample.Err = "empty frame"
		return sample
	}

	bounds := img.Bounds()
	n := bounds.Dx() * bounds.Dy()
	if n == 0 {
		sample.Err = "empty frame"
		return sample
	}

	var sum, sumSq float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// ITU-R BT.601 luma, scaled from 16-bit channels to 0-255
			gray := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
			sum += gray
			sumSq += gray * gray
		}
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	sample.Brightness = mean
	sample.Contrast = math.Sqrt(variance)

	if det != nil {
		sample.FaceCount = det.Detect(img)
		sample.FaceDetected = sample.FaceCount > 0
	}
	return sample
}
