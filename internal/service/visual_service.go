package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"intervue/internal/cache"
	"intervue/internal/model"
	"intervue/internal/vision"
)

// FrameSource supplies camera frames for background sampling. Next
// blocks until a frame is available or the context is done.
type FrameSource interface {
	Next(ctx context.Context) ([]byte, error)
}

const samplerJoinTimeout = 1500 * time.Millisecond

// VisualService analyzes camera frames and scores visual engagement
// over the rolling sample window.
type VisualService struct {
	visuals  cache.VisualCache
	detector vision.FaceDetector

	mu          sync.Mutex
	samplers    map[string]*frameSampler
	broadcaster Broadcaster
}

type frameSampler struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewVisualService(visuals cache.VisualCache, detector vision.FaceDetector) *VisualService {
	if detector == nil {
		detector = vision.NullDetector{}
	}
	return &VisualService{
		visuals:  visuals,
		detector: detector,
		samplers: make(map[string]*frameSampler),
	}
}

// SetBroadcaster wires the optional realtime channel
func (s *VisualService) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	s.broadcaster = b
	s.mu.Unlock()
}

// Ingest decodes one frame, analyzes it, and appends the sample to the
// session's rolling window. Undecodable frames produce an error sample
// rather than failing the request.
func (s *VisualService) Ingest(ctx context.Context, sessionID string, frame []byte) (model.VisualSample, error) {
	var sample model.VisualSample
	img, err := vision.DecodeFrame(frame)
	if err != nil {
		sample = model.VisualSample{Timestamp: time.Now(), Err: err.Error()}
		log.Printf("[Visual] Session %s: frame decode failed: %v", sessionID, err)
	} else {
		sample = vision.AnalyzeFrame(img, s.detector)
	}

	if err := s.visuals.Append(ctx, sessionID, sample); err != nil {
		return sample, fmt.Errorf("storing visual sample: %w", err)
	}

	s.mu.Lock()
	b := s.broadcaster
	s.mu.Unlock()
	if b != nil {
		b.BroadcastToSession(sessionID, EventVisualUpdate, sample)
	}
	return sample, nil
}

// StartSampler launches the background goroutine that pulls frames
// from the source for the session. It is a no-op if a sampler is
// already running for the session.
func (s *VisualService) StartSampler(sessionID string, source FrameSource, interval time.Duration) {
	if source == nil {
		return
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}

	s.mu.Lock()
	if _, running := s.samplers[sessionID]; running {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	sampler := &frameSampler{cancel: cancel, done: make(chan struct{})}
	s.samplers[sessionID] = sampler
	s.mu.Unlock()

	go func() {
		defer close(sampler.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		log.Printf("[Visual] Session %s: frame sampler started", sessionID)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[Visual] Session %s: frame sampler stopped", sessionID)
				return
			case <-ticker.C:
				frame, err := source.Next(ctx)
				if err != nil {
					if ctx.Err() != nil {
						log.Printf("[Visual] Session %s: frame sampler stopped", sessionID)
						return
					}
					log.Printf("[Visual] Session %s: frame fetch failed: %v", sessionID, err)
					continue
				}
				if _, err := s.Ingest(ctx, sessionID, frame); err != nil {
					log.Printf("[Visual] Session %s: %v", sessionID, err)
				}
			}
		}
	}()
}

// StopSampler cancels the session's sampler and waits a bounded time
// for it to exit. An overrun is logged and abandoned, never blocking
// session teardown.
func (s *VisualService) StopSampler(sessionID string) {
	s.mu.Lock()
	sampler, ok := s.samplers[sessionID]
	if ok {
		delete(s.samplers, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	sampler.cancel()
	select {
	case <-sampler.done:
	case <-time.After(samplerJoinTimeout):
		log.Printf("[Visual] Session %s: sampler did not stop within %v, abandoning", sessionID, samplerJoinTimeout)
	}
}

// ClearWindow drops the session's sample window
func (s *VisualService) ClearWindow(ctx context.Context, sessionID string) error {
	return s.visuals.Clear(ctx, sessionID)
}

// Score computes the visual engagement score over the session's window
func (s *VisualService) Score(ctx context.Context, sessionID string) (model.VisualScoreDetails, error) {
	samples, err := s.visuals.List(ctx, sessionID)
	if err != nil {
		return model.VisualScoreDetails{}, fmt.Errorf("loading visual samples: %w", err)
	}
	return ScoreSamples(samples), nil
}

// ScoreSamples derives the 0-10 visual score from the rolling window.
// Face presence carries 60% of the score; image clarity (brightness
// and contrast) carries 40%.
func ScoreSamples(samples []model.VisualSample) model.VisualScoreDetails {
	valid := samples[:0:0]
	for _, s := range samples {
		if s.Err == "" {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return model.VisualScoreDetails{Score: 0, Feedback: "No visual data was captured for scoring."}
	}

	var faceFrames int
	var brightnessSum, contrastSum float64
	for _, s := range valid {
		if s.FaceDetected {
			faceFrames++
		}
		brightnessSum += s.Brightness
		contrastSum += s.Contrast
	}
	n := float64(len(valid))
	faceRatio := float64(faceFrames) / n
	avgBrightness := brightnessSum / n
	avgContrast := contrastSum / n

	var brightnessScore float64 = 10
	if avgBrightness < 100 || avgBrightness > 180 {
		brightnessScore = math.Max(0, 10-math.Abs(avgBrightness-140)/15)
	}
	var contrastScore float64 = 10
	if avgContrast < 50 {
		contrastScore = avgContrast / 5
	}
	clarity := (brightnessScore + contrastScore) / 2

	score := faceRatio*10*0.6 + clarity*0.4
	score = math.Round(score*10) / 10

	var fb []string
	fb = append(fb, fmt.Sprintf("Face was visible in %.0f%% of sampled frames.", faceRatio*100))
	switch {
	case avgBrightness < 100:
		fb = append(fb, "The video appeared too dark; consider improving your lighting.")
	case avgBrightness > 180:
		fb = append(fb, "The video appeared overexposed; consider reducing direct light.")
	default:
		fb = append(fb, "Lighting conditions were good.")
	}
	if avgContrast < 50 {
		fb = append(fb, "Image clarity was low; a steadier camera or better focus would help.")
	} else {
		fb = append(fb, "Image clarity was good.")
	}

	return model.VisualScoreDetails{Score: score, Feedback: strings.Join(fb, " ")}
}
