package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"intervue/internal/bank"
	"intervue/internal/cache"
	"intervue/internal/extract"
	"intervue/internal/model"
	"intervue/internal/repository"
)

var (
	ErrSessionNotFound = errors.New("interview session not found")
	ErrSessionFinished = errors.New("interview session already finished")
)

// stopPhrases end the interview immediately when present anywhere in
// an answer, case-insensitive. The triggering answer is not evaluated.
var stopPhrases = []string{
	"stop this interview",
	"end this interview",
	"stop the interview",
	"end the interview",
}

// lastResortQuestions keep a session viable when both generation and
// the bank come up empty.
var lastResortQuestions = []string{
	"Please describe your most relevant experience.",
	"What are your key strengths for this role/program?",
}

// StartParams carries everything needed to open a session
type StartParams struct {
	Username       string
	Category       string
	Track          string
	SubTrack       string
	JobDescription string
	UseCamera      bool
	ResumeFilename string
	ResumeData     []byte
	// IcebreakerFrame is an optional inline camera frame (data URL)
	// used to open with a personalized icebreaker.
	IcebreakerFrame string
}

// sessionEntry wraps a context with its own lock. The submission path
// for one session is serialized by this lock; distinct sessions never
// contend.
type sessionEntry struct {
	mu  sync.Mutex
	ctx *model.SessionContext
}

// InterviewService owns session lifecycle: queue construction, the
// answer loop with follow-up insertion, and final scoring.
type InterviewService struct {
	bank      *bank.Bank
	extractor *extract.Registry
	generator *GeneratorService
	evaluator *EvaluatorService
	visual    *VisualService

	sessionCache cache.SessionCache
	evalRepo     repository.EvaluationRepo
	snapshotRepo repository.SnapshotRepo

	mu          sync.Mutex
	sessions    map[string]*sessionEntry
	broadcaster Broadcaster

	// frameSources optionally supplies a pull source for background
	// frame sampling; nil means frames arrive only via ingestion.
	frameSources func(sessionID string) FrameSource
}

func NewInterviewService(b *bank.Bank, extractor *extract.Registry, gen *GeneratorService, eval *EvaluatorService, visual *VisualService,
	sessionCache cache.SessionCache, evalRepo repository.EvaluationRepo, snapshotRepo repository.SnapshotRepo) *InterviewService {
	return &InterviewService{
		bank:         b,
		extractor:    extractor,
		generator:    gen,
		evaluator:    eval,
		visual:       visual,
		sessionCache: sessionCache,
		evalRepo:     evalRepo,
		snapshotRepo: snapshotRepo,
		sessions:     make(map[string]*sessionEntry),
	}
}

// SetBroadcaster wires the optional realtime channel
func (s *InterviewService) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	s.broadcaster = b
	s.mu.Unlock()
}

// SetFrameSourceProvider enables background frame sampling for camera
// sessions.
func (s *InterviewService) SetFrameSourceProvider(provider func(sessionID string) FrameSource) {
	s.mu.Lock()
	s.frameSources = provider
	s.mu.Unlock()
}

func (s *InterviewService) broadcast(sessionID, event string, payload interface{}) {
	s.mu.Lock()
	b := s.broadcaster
	s.mu.Unlock()
	if b != nil {
		b.BroadcastToSession(sessionID, event, payload)
	}
}

// Start opens a new session: extracts the resume, builds the question
// queue, optionally prepends an icebreaker, and returns the first
// question.
func (s *InterviewService) Start(ctx context.Context, params StartParams) (*model.StartResponse, error) {
	resumeText, err := s.extractResume(params.ResumeFilename, params.ResumeData)
	if err != nil {
		return nil, err
	}

	sessionID := "s_" + uuid.New().String()[:8]
	sc := &model.SessionContext{
		ID:              sessionID,
		Username:        params.Username,
		Category:        params.Category,
		Track:           params.Track,
		SubTrack:        params.SubTrack,
		JobDescription:  params.JobDescription,
		Status:          model.SessionActive,
		AskedNormalized: make(map[string]bool),
		UseCamera:       params.UseCamera,
		StartedAt:       time.Now(),
	}

	resumeQuestions := s.generator.GenerateFromResume(ctx, resumeText, params.Category, sc.AskedNormalized)
	sc.ResumeQuestionCache = resumeQuestions

	queue := s.buildQueue(sc, resumeQuestions)
	if len(queue) == 0 {
		// One more generation pass before giving up entirely
		resumeQuestions = s.generator.GenerateFromResume(ctx, resumeText, params.Category, sc.AskedNormalized)
		queue = s.buildQueue(sc, resumeQuestions)
	}
	if len(queue) == 0 {
		log.Printf("[Interview] Session %s: falling back to last-resort questions", sessionID)
		queue = append(queue, lastResortQuestions...)
	}

	if params.UseCamera && params.IcebreakerFrame != "" {
		ice := s.generator.GenerateIcebreaker(ctx, params.IcebreakerFrame)
		queue = append([]string{ice}, queue...)
		sc.IcebreakerPrepended = true
		sc.IcebreakerText = ice
	}

	sc.Questions = queue
	for _, q := range queue {
		sc.MarkAsked(q)
	}

	s.mu.Lock()
	s.sessions[sessionID] = &sessionEntry{ctx: sc}
	frameSources := s.frameSources
	s.mu.Unlock()

	s.mirrorSession(ctx, sc)

	if params.UseCamera && frameSources != nil {
		if src := frameSources(sessionID); src != nil {
			s.visual.StartSampler(sessionID, src, 0)
		}
	}

	log.Printf("[Interview] Session %s started for %s (%s/%s), %d questions", sessionID, params.Username, params.Category, params.Track, len(queue))
	return &model.StartResponse{
		SessionID:       sessionID,
		Message:         "Interview started. Answer each question as it is asked.",
		TotalQuestions:  len(queue),
		CurrentQuestion: queue[0],
		QuestionNumber:  1,
		UseCamera:       params.UseCamera,
	}, nil
}

// extractResume pulls text from the uploaded resume. A missing upload
// is fine (bank questions only); an unsupported file type is a caller
// error.
func (s *InterviewService) extractResume(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	text, err := s.extractor.Extract(filename, data)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			return "", fmt.Errorf("resume %q: %w", filename, err)
		}
		log.Printf("[Interview] Resume extraction failed, continuing without resume: %v", err)
		return "", nil
	}
	if strings.TrimSpace(text) == "" || text == extract.EmptyContentSentinel {
		return "", nil
	}
	return text, nil
}

// buildQueue assembles the root question queue for the session's
// track. The resume track leads with all resume-derived questions plus
// a short bank tail; other tracks lead with a resume sample and then
// the full track list. Duplicates are dropped in final order.
func (s *InterviewService) buildQueue(sc *model.SessionContext, resumeQuestions []string) []string {
	var raw []string
	if sc.Track == bank.TrackResume || sc.Track == "" {
		raw = append(raw, resumeQuestions...)
		tail := s.bank.FallbackQuestions(sc.Category, bank.TrackResume, "")
		if len(tail) > 3 {
			tail = tail[:3]
		}
		raw = append(raw, tail...)
	} else {
		head := resumeQuestions
		if len(head) > 5 {
			head = head[:5]
		}
		raw = append(raw, head...)
		raw = append(raw, s.bank.TrackQuestions(sc.Category, sc.Track, sc.SubTrack)...)
	}

	var queue []string
	seen := make(map[string]bool)
	for _, q := range raw {
		norm := model.NormalizeText(q)
		if norm == "" || seen[norm] || sc.WasAsked(q) {
			continue
		}
		seen[norm] = true
		queue = append(queue, q)
	}
	return queue
}

// SubmitAnswer advances the session by one answered question. It
// handles stop phrases, evaluation, follow-up insertion, and finishing.
func (s *InterviewService) SubmitAnswer(ctx context.Context, sessionID, answer string) (*model.SubmitResponse, error) {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	sc := entry.ctx

	if sc.Status == model.SessionFinished {
		return nil, ErrSessionFinished
	}

	if containsStopPhrase(answer) {
		log.Printf("[Interview] Session %s: stop phrase detected, ending", sessionID)
		return s.finishLocked(ctx, sc, model.StatusUserStopped), nil
	}

	question := sc.CurrentQuestion()
	if question == "" {
		log.Printf("[Interview] Session %s: state corrupt (idx %d of %d questions)", sessionID, sc.CurrentIdx, len(sc.Questions))
		return s.finishLocked(ctx, sc, model.StatusSessionError), nil
	}

	if strings.TrimSpace(answer) == "" {
		answer = model.NoAnswerSentinel
	}

	detail, score := s.evaluator.Evaluate(ctx, question, answer, sc.JobDescription)
	feedback := s.generator.AnswerFeedback(ctx, question, answer, sc.JobDescription)

	record := model.EvaluationRecord{
		SessionID:  sessionID,
		Username:   sc.Username,
		Question:   question,
		Answer:     answer,
		Evaluation: detail,
		Score:      score,
		Feedback:   feedback,
		CreatedAt:  time.Now(),
	}
	sc.Answers = append(sc.Answers, answer)
	sc.Scores = append(sc.Scores, score)
	sc.Evaluations = append(sc.Evaluations, record)

	if s.evalRepo != nil {
		if err := s.evalRepo.Append(ctx, &record); err != nil {
			log.Printf("[Interview] Session %s: transcript append failed: %v", sessionID, err)
		}
	}
	s.broadcast(sessionID, EventEvaluationResult, record)

	reply := s.generator.ConversationalReply(ctx, answer, sc.Category)

	s.maybeInsertFollowUp(ctx, sc, question, answer, score)

	sc.CurrentIdx++
	s.mirrorSession(ctx, sc)

	if sc.CurrentIdx >= len(sc.Questions) {
		resp := s.finishLocked(ctx, sc, model.StatusCompleted)
		resp.Reply = reply
		return resp, nil
	}

	next := sc.Questions[sc.CurrentIdx]
	s.broadcast(sessionID, EventNextQuestion, map[string]interface{}{
		"question":       next,
		"questionNumber": sc.CurrentIdx + 1,
		"totalQuestions": len(sc.Questions),
	})
	return &model.SubmitResponse{
		Reply:           reply,
		CurrentQuestion: next,
		QuestionNumber:  sc.CurrentIdx + 1,
		TotalQuestions:  len(sc.Questions),
	}, nil
}

// maybeInsertFollowUp inserts at most one follow-up directly after the
// current question. Icebreakers never spawn follow-ups, and the depth
// counter caps consecutive follow-ups between root questions.
func (s *InterviewService) maybeInsertFollowUp(ctx context.Context, sc *model.SessionContext, question, answer string, score float64) {
	if sc.IcebreakerPrepended && sc.CurrentIdx == 0 {
		return
	}
	if sc.FollowUpDepth >= model.MaxFollowUpDepth {
		sc.FollowUpDepth = 0
		return
	}

	result := s.generator.GenerateFollowUp(ctx, question, answer, score, sc.Track, sc.Category, sc.AskedNormalized)
	switch result.Source {
	case GenGenerated, GenFallback:
		at := sc.CurrentIdx + 1
		sc.Questions = append(sc.Questions[:at], append([]string{result.Text}, sc.Questions[at:]...)...)
		sc.MarkAsked(result.Text)
		sc.FollowUpDepth++
	case GenExhausted:
		sc.FollowUpDepth = 0
	}
}

// finishLocked closes the session under its lock: computes the visual
// and overall scores, backfills feedback, persists the snapshot, and
// stops any sampler. Persistence failures degrade to logs.
func (s *InterviewService) finishLocked(ctx context.Context, sc *model.SessionContext, status string) *model.SubmitResponse {
	now := time.Now()
	sc.Status = model.SessionFinished
	sc.EndedAt = &now

	visual := model.VisualScoreDetails{Feedback: "No visual data was captured for scoring."}
	if s.visual != nil {
		if v, err := s.visual.Score(ctx, sc.ID); err != nil {
			log.Printf("[Interview] Session %s: visual scoring failed: %v", sc.ID, err)
		} else {
			visual = v
		}
	}

	overall := overallScore(sc.Scores, visual.Score)

	for i := range sc.Evaluations {
		if sc.Evaluations[i].Feedback == "" {
			sc.Evaluations[i].Feedback = heuristicFeedback(sc.Evaluations[i].Answer)
		}
	}

	if s.snapshotRepo != nil {
		snapshot := &model.SessionSnapshot{
			SessionID:    sc.ID,
			Username:     sc.Username,
			Category:     sc.Category,
			Track:        sc.Track,
			OverallScore: overall,
			VisualScore:  visual.Score,
			Status:       status,
			Evaluations:  sc.Evaluations,
			CreatedAt:    now,
		}
		if err := s.snapshotRepo.Create(ctx, snapshot); err != nil {
			log.Printf("[Interview] Session %s: snapshot persist failed: %v", sc.ID, err)
		}
	}

	if s.visual != nil {
		s.visual.StopSampler(sc.ID)
	}
	s.mirrorSession(ctx, sc)

	resp := &model.SubmitResponse{
		Reply:        "Thank you, this concludes the interview.",
		Finished:     true,
		Evaluations:  sc.Evaluations,
		OverallScore: overall,
		VisualScore:  &visual,
		Status:       status,
	}
	s.broadcast(sc.ID, EventInterviewFinished, resp)
	log.Printf("[Interview] Session %s finished: %s (overall %.2f, visual %.1f)", sc.ID, status, overall, visual.Score)
	return resp
}

// Icebreaker returns the session's opener, generating one from the
// supplied frame when the session started without one. It never
// mutates the question queue.
func (s *InterviewService) Icebreaker(ctx context.Context, sessionID, frame string) (string, error) {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return "", err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.ctx.IcebreakerText != "" {
		return entry.ctx.IcebreakerText, nil
	}
	ice := s.generator.GenerateIcebreaker(ctx, frame)
	entry.ctx.IcebreakerText = ice
	return ice, nil
}

// CurrentQuestion reports the question awaiting an answer
func (s *InterviewService) CurrentQuestion(sessionID string) (string, int, int, error) {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return "", 0, 0, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	sc := entry.ctx
	if sc.Status == model.SessionFinished {
		return "", 0, 0, ErrSessionFinished
	}
	q := sc.CurrentQuestion()
	if q == "" {
		return "", 0, 0, ErrSessionNotFound
	}
	return q, sc.CurrentIdx + 1, len(sc.Questions), nil
}

// Teardown discards a session and its cached state. Used by logout and
// the explicit delete endpoint; safe to call for unknown sessions.
func (s *InterviewService) Teardown(ctx context.Context, sessionID string) {
	if s.visual != nil {
		s.visual.StopSampler(sessionID)
		if err := s.visual.ClearWindow(ctx, sessionID); err != nil {
			log.Printf("[Interview] Session %s: visual window clear failed: %v", sessionID, err)
		}
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if s.sessionCache != nil {
		if err := s.sessionCache.Delete(ctx, sessionID); err != nil {
			log.Printf("[Interview] Session %s: cache delete failed: %v", sessionID, err)
		}
	}
	log.Printf("[Interview] Session %s torn down", sessionID)
}

// Session returns the live context for a session, primarily for the
// frames and realtime endpoints to verify ownership.
func (s *InterviewService) Session(sessionID string) (*model.SessionContext, error) {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.ctx, nil
}

func (s *InterviewService) lookup(sessionID string) (*sessionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return entry, nil
}

// mirrorSession mirrors the live context to Redis as a best-effort
// read replica. The in-memory map stays authoritative.
func (s *InterviewService) mirrorSession(ctx context.Context, sc *model.SessionContext) {
	if s.sessionCache == nil {
		return
	}
	if err := s.sessionCache.Set(ctx, sc); err != nil {
		log.Printf("[Interview] Session %s: cache mirror failed: %v", sc.ID, err)
	}
}

// overallScore combines per-answer scores (90% weight) with the visual
// engagement score (10% weight), clamped to [0,100] and rounded to two
// decimals.
func overallScore(scores []float64, visual float64) float64 {
	var qnaFraction float64
	if len(scores) > 0 {
		var sum float64
		for _, v := range scores {
			sum += v
		}
		qnaFraction = sum / float64(len(scores)) / 10
	}
	overall := qnaFraction*90 + (visual/10)*10
	overall = math.Min(100, math.Max(0, overall))
	return math.Round(overall*100) / 100
}

func containsStopPhrase(answer string) bool {
	lower := strings.ToLower(answer)
	for _, p := range stopPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
