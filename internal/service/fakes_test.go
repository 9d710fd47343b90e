package service

import (
	"context"
	"errors"
	"sync"

	"intervue/internal/model"
)

// fakeCompletionClient scripts AI responses for tests. Responses are
// consumed in order; an exhausted script returns an error, modelling a
// capability outage.
type fakeCompletionClient struct {
	mu        sync.Mutex
	responses []string
	err       error
	disabled  bool
	calls     int
	prompts   []string
}

func (f *fakeCompletionClient) Complete(_ context.Context, messages []ChatMessage, _ CompleteOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, m := range messages {
		f.prompts = append(f.prompts, m.Text)
	}
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	r := f.responses[0]
	f.responses = f.responses[1:]
	return r, nil
}

func (f *fakeCompletionClient) IsEnabled() bool { return !f.disabled }

func (f *fakeCompletionClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSpeechClient struct {
	audio  []byte
	err    error
	voices []string
}

func (f *fakeSpeechClient) Synthesize(_ context.Context, _, voice string) ([]byte, error) {
	f.voices = append(f.voices, voice)
	return f.audio, f.err
}

func (f *fakeSpeechClient) IsEnabled() bool { return true }

// fakeSessionCache is an in-memory SessionCache
type fakeSessionCache struct {
	mu       sync.Mutex
	sessions map[string]*model.SessionContext
	setErr   error
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{sessions: make(map[string]*model.SessionContext)}
}

func (f *fakeSessionCache) Set(_ context.Context, sc *model.SessionContext) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.sessions[sc.ID] = sc
	return nil
}

func (f *fakeSessionCache) Get(_ context.Context, id string) (*model.SessionContext, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[id], nil
}

func (f *fakeSessionCache) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

// fakeVisualCache keeps the rolling window semantics of the Redis impl
type fakeVisualCache struct {
	mu      sync.Mutex
	windows map[string][]model.VisualSample
}

func newFakeVisualCache() *fakeVisualCache {
	return &fakeVisualCache{windows: make(map[string][]model.VisualSample)}
}

func (f *fakeVisualCache) Append(_ context.Context, sessionID string, sample model.VisualSample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := append(f.windows[sessionID], sample)
	if len(w) > model.VisualWindowSize {
		w = w[len(w)-model.VisualWindowSize:]
	}
	f.windows[sessionID] = w
	return nil
}

func (f *fakeVisualCache) List(_ context.Context, sessionID string) ([]model.VisualSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.VisualSample(nil), f.windows[sessionID]...), nil
}

func (f *fakeVisualCache) Clear(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.windows, sessionID)
	return nil
}

// fakeEvaluationRepo records transcript appends
type fakeEvaluationRepo struct {
	mu      sync.Mutex
	records []*model.EvaluationRecord
	err     error
}

func (f *fakeEvaluationRepo) Append(_ context.Context, r *model.EvaluationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, r)
	return nil
}

func (f *fakeEvaluationRepo) GetBySessionID(_ context.Context, sessionID string) ([]*model.EvaluationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.EvaluationRecord
	for _, r := range f.records {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeSnapshotRepo records final session snapshots
type fakeSnapshotRepo struct {
	mu        sync.Mutex
	snapshots []*model.SessionSnapshot
	err       error
}

func (f *fakeSnapshotRepo) Create(_ context.Context, s *model.SessionSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.snapshots = append(f.snapshots, s)
	return nil
}

func (f *fakeSnapshotRepo) GetBySessionID(_ context.Context, sessionID string) (*model.SessionSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.snapshots {
		if s.SessionID == sessionID {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeSnapshotRepo) last() *model.SessionSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.snapshots) == 0 {
		return nil
	}
	return f.snapshots[len(f.snapshots)-1]
}

// recordingBroadcaster captures realtime events
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingBroadcaster) BroadcastToSession(_, event string, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingBroadcaster) seen(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

// blockingFrameSource blocks until its context is cancelled, for
// sampler shutdown tests.
type blockingFrameSource struct{}

func (blockingFrameSource) Next(ctx context.Context) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
