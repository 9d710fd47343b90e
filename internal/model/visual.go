package model

import "time"

// VisualWindowSize bounds the rolling sample window; older samples are
// evicted FIFO.
const VisualWindowSize = 10

// VisualSample is one analyzed webcam frame
type VisualSample struct {
	Timestamp    time.Time `json:"timestamp"`
	FaceDetected bool      `json:"faceDetected"`
	FaceCount    int       `json:"faceCount"`
	Brightness   float64   `json:"brightness"`
	Contrast     float64   `json:"contrast"`
	Err          string    `json:"error,omitempty"`
}

// VisualScoreDetails is the engagement outcome reported with the final score
type VisualScoreDetails struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}
