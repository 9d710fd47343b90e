package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intervue/internal/bank"
	"intervue/internal/extract"
	"intervue/internal/model"
	"intervue/internal/vision"
)

type interviewFixture struct {
	svc       *InterviewService
	client    *fakeCompletionClient
	visuals   *fakeVisualCache
	sessions  *fakeSessionCache
	evals     *fakeEvaluationRepo
	snapshots *fakeSnapshotRepo
	events    *recordingBroadcaster
}

// newInterviewFixture wires the service with a dead AI client so every
// path runs on deterministic local fallbacks unless a test scripts
// responses.
func newInterviewFixture(t *testing.T) *interviewFixture {
	t.Helper()
	b := testBank(t)
	client := &fakeCompletionClient{err: assertAnError}
	visuals := newFakeVisualCache()
	sessions := newFakeSessionCache()
	evals := &fakeEvaluationRepo{}
	snapshots := &fakeSnapshotRepo{}
	events := &recordingBroadcaster{}

	svc := NewInterviewService(
		b,
		extract.NewRegistry(),
		NewGeneratorService(client, b),
		NewEvaluatorService(client),
		NewVisualService(visuals, vision.NullDetector{}),
		sessions, evals, snapshots,
	)
	svc.SetBroadcaster(events)
	return &interviewFixture{svc: svc, client: client, visuals: visuals, sessions: sessions, evals: evals, snapshots: snapshots, events: events}
}

func startSession(t *testing.T, f *interviewFixture, params StartParams) *model.StartResponse {
	t.Helper()
	if params.Username == "" {
		params.Username = "mba_candidate"
	}
	if params.Category == "" {
		params.Category = bank.CategoryMBA
	}
	if params.Track == "" {
		params.Track = bank.TrackResume
	}
	resp, err := f.svc.Start(context.Background(), params)
	require.NoError(t, err)
	return resp
}

// runToCompletion answers every remaining question with the same text
// and returns the finishing response.
func runToCompletion(t *testing.T, f *interviewFixture, sessionID, answer string) *model.SubmitResponse {
	t.Helper()
	for i := 0; i < 100; i++ {
		resp, err := f.svc.SubmitAnswer(context.Background(), sessionID, answer)
		require.NoError(t, err)
		if resp.Finished {
			return resp
		}
	}
	t.Fatal("interview did not finish within 100 answers")
	return nil
}

func TestStartBuildsQueue(t *testing.T) {
	f := newInterviewFixture(t)
	resp := startSession(t, f, StartParams{})

	assert.NotEmpty(t, resp.SessionID)
	assert.True(t, strings.HasPrefix(resp.SessionID, "s_"))
	assert.Greater(t, resp.TotalQuestions, 0)
	assert.Equal(t, 1, resp.QuestionNumber)
	assert.NotEmpty(t, resp.CurrentQuestion)

	// The live context is mirrored to the cache
	cached, err := f.sessions.Get(context.Background(), resp.SessionID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, resp.SessionID, cached.ID)
}

func TestStartRejectsUnsupportedResume(t *testing.T) {
	f := newInterviewFixture(t)
	_, err := f.svc.Start(context.Background(), StartParams{
		Username:       "mba_candidate",
		Category:       bank.CategoryMBA,
		Track:          bank.TrackResume,
		ResumeFilename: "resume.exe",
		ResumeData:     []byte{0x4d, 0x5a},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrUnsupportedType)
}

func TestStartQueueHasNoDuplicates(t *testing.T) {
	f := newInterviewFixture(t)
	resp := startSession(t, f, StartParams{Track: bank.TrackSchoolBased})

	sc, err := f.svc.Session(resp.SessionID)
	require.NoError(t, err)
	seen := make(map[string]bool)
	for _, q := range sc.Questions {
		norm := model.NormalizeText(q)
		assert.False(t, seen[norm], "duplicate question in initial queue: %q", q)
		seen[norm] = true
	}
}

func TestSubmitAnswerAdvances(t *testing.T) {
	f := newInterviewFixture(t)
	start := startSession(t, f, StartParams{})

	answer := "In my previous role I led a team project that improved our onboarding experience significantly over two quarters."
	resp, err := f.svc.SubmitAnswer(context.Background(), start.SessionID, answer)
	require.NoError(t, err)

	assert.False(t, resp.Finished)
	assert.NotEmpty(t, resp.Reply)
	assert.NotEmpty(t, resp.CurrentQuestion)
	assert.NotEqual(t, start.CurrentQuestion, resp.CurrentQuestion)
	assert.True(t, f.events.seen(EventEvaluationResult))
	assert.True(t, f.events.seen(EventNextQuestion))

	require.Len(t, f.evals.records, 1)
	assert.Equal(t, start.CurrentQuestion, f.evals.records[0].Question)
	assert.Equal(t, answer, f.evals.records[0].Answer)
	assert.NotEmpty(t, f.evals.records[0].Feedback)
}

func TestSubmitEmptyAnswerUsesSentinel(t *testing.T) {
	f := newInterviewFixture(t)
	start := startSession(t, f, StartParams{})

	_, err := f.svc.SubmitAnswer(context.Background(), start.SessionID, "   ")
	require.NoError(t, err)

	require.Len(t, f.evals.records, 1)
	assert.Equal(t, model.NoAnswerSentinel, f.evals.records[0].Answer)
	assert.Equal(t, 0.0, f.evals.records[0].Score)
}

func TestStopPhraseEndsImmediately(t *testing.T) {
	f := newInterviewFixture(t)
	start := startSession(t, f, StartParams{})

	answer := "My background is in consulting where I spent five years on growth strategy for retail clients."
	_, err := f.svc.SubmitAnswer(context.Background(), start.SessionID, answer)
	require.NoError(t, err)

	resp, err := f.svc.SubmitAnswer(context.Background(), start.SessionID, "Please STOP this interview now.")
	require.NoError(t, err)

	assert.True(t, resp.Finished)
	assert.Equal(t, model.StatusUserStopped, resp.Status)
	assert.Len(t, resp.Evaluations, 1, "the stopping answer is not evaluated")
	assert.True(t, f.events.seen(EventInterviewFinished))

	// Finished sessions reject further answers
	_, err = f.svc.SubmitAnswer(context.Background(), start.SessionID, "another answer")
	assert.ErrorIs(t, err, ErrSessionFinished)
}

func TestFollowUpDepthBounded(t *testing.T) {
	f := newInterviewFixture(t)
	// Script enough follow-up responses that depth alone must stop them
	var responses []string
	for i := 0; i < 40; i++ {
		responses = append(responses, "Could you expand on the part about question number "+strings.Repeat("i", i+1)+"?")
	}
	f.client.err = nil
	f.client.responses = responses

	start := startSession(t, f, StartParams{})
	sc, err := f.svc.Session(start.SessionID)
	require.NoError(t, err)
	rootCount := len(sc.Questions)

	runToCompletion(t, f, start.SessionID, "I led a project with my team and we achieved strong measurable results over time.")

	sc, err = f.svc.Session(start.SessionID)
	require.NoError(t, err)
	// Every root question can gain at most MaxFollowUpDepth follow-ups
	assert.LessOrEqual(t, len(sc.Questions), rootCount*(model.MaxFollowUpDepth+1))
	assert.LessOrEqual(t, sc.FollowUpDepth, model.MaxFollowUpDepth)
}

func TestQueueNeverRepeatsQuestions(t *testing.T) {
	f := newInterviewFixture(t)
	start := startSession(t, f, StartParams{Track: bank.TrackInterestAreas})
	runToCompletion(t, f, start.SessionID, "I developed my experience leading a team project with measurable goals.")

	sc, err := f.svc.Session(start.SessionID)
	require.NoError(t, err)
	seen := make(map[string]bool)
	for _, q := range sc.Questions {
		norm := model.NormalizeText(q)
		assert.False(t, seen[norm], "question repeated during session: %q", q)
		seen[norm] = true
	}
}

func TestOverallScore(t *testing.T) {
	assert.Equal(t, 98.0, overallScore([]float64{10, 10, 10}, 8.0))
	assert.Equal(t, 0.0, overallScore(nil, 0))
	assert.Equal(t, 10.0, overallScore(nil, 10), "visual alone contributes up to 10 points")
	assert.Equal(t, 100.0, overallScore([]float64{10}, 10))
	assert.Equal(t, 49.5, overallScore([]float64{5, 6}, 0))
}

func TestFinishComputesOverallScore(t *testing.T) {
	f := newInterviewFixture(t)
	start := startSession(t, f, StartParams{})

	// Ideal visual window: 10/10 visual score
	for i := 0; i < 10; i++ {
		require.NoError(t, f.visuals.Append(context.Background(), start.SessionID, graySample(true, 140, 60)))
	}

	final := runToCompletion(t, f, start.SessionID,
		strings.Repeat("detail ", 110)+"my experience leading the team project")

	// Heuristic scores every answer 9 (100+ words with relevance) so
	// qna contributes (9/10)*90 and visual contributes 10.
	assert.Equal(t, model.StatusCompleted, final.Status)
	assert.InDelta(t, 91.0, final.OverallScore, 0.001)
	require.NotNil(t, final.VisualScore)
	assert.Equal(t, 10.0, final.VisualScore.Score)
	assert.GreaterOrEqual(t, final.OverallScore, 0.0)
	assert.LessOrEqual(t, final.OverallScore, 100.0)

	snap := f.snapshots.last()
	require.NotNil(t, snap)
	assert.Equal(t, start.SessionID, snap.SessionID)
	assert.Equal(t, model.StatusCompleted, snap.Status)
	assert.Equal(t, final.OverallScore, snap.OverallScore)
	assert.NotEmpty(t, snap.Evaluations)
}

func TestFinishWithoutVisualData(t *testing.T) {
	f := newInterviewFixture(t)
	start := startSession(t, f, StartParams{})

	final := runToCompletion(t, f, start.SessionID,
		strings.Repeat("detail ", 110)+"my experience leading the team project")

	require.NotNil(t, final.VisualScore)
	assert.Equal(t, 0.0, final.VisualScore.Score)
	assert.InDelta(t, 81.0, final.OverallScore, 0.001, "qna fraction alone: (9/10)*90")
}

func TestPersistenceFailuresDegradeToLogs(t *testing.T) {
	f := newInterviewFixture(t)
	f.evals.err = assertAnError
	f.snapshots.err = assertAnError
	f.sessions.setErr = assertAnError

	start := startSession(t, f, StartParams{})
	final := runToCompletion(t, f, start.SessionID, "A thorough answer about my team experience and project goals.")
	assert.Equal(t, model.StatusCompleted, final.Status)
	assert.NotEmpty(t, final.Evaluations, "transcript survives in memory despite repo failures")
}

func TestIcebreakerPrependedAndExemptFromFollowUps(t *testing.T) {
	f := newInterviewFixture(t)
	f.client.err = nil
	f.client.responses = []string{
		"Is your workspace set up comfortably for our conversation today?",
	}

	start := startSession(t, f, StartParams{UseCamera: true, IcebreakerFrame: "data:image/jpeg;base64,xxxx"})
	assert.Equal(t, "Is your workspace set up comfortably for our conversation today?", start.CurrentQuestion)

	sc, err := f.svc.Session(start.SessionID)
	require.NoError(t, err)
	require.True(t, sc.IcebreakerPrepended)
	before := len(sc.Questions)

	// Script is now empty: any follow-up attempt would error to
	// fallback and grow the queue, so an unchanged queue proves the
	// icebreaker spawned none.
	_, err = f.svc.SubmitAnswer(context.Background(), start.SessionID, "I am feeling great and ready to begin this interview today.")
	require.NoError(t, err)

	sc, err = f.svc.Session(start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, before, len(sc.Questions))
	assert.Equal(t, 0, sc.FollowUpDepth)
}

func TestCurrentQuestion(t *testing.T) {
	f := newInterviewFixture(t)
	start := startSession(t, f, StartParams{})

	q, number, total, err := f.svc.CurrentQuestion(start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, start.CurrentQuestion, q)
	assert.Equal(t, 1, number)
	assert.Equal(t, start.TotalQuestions, total)

	_, _, _, err = f.svc.CurrentQuestion("s_missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestTeardownRemovesSession(t *testing.T) {
	f := newInterviewFixture(t)
	start := startSession(t, f, StartParams{})

	f.svc.Teardown(context.Background(), start.SessionID)
	_, err := f.svc.Session(start.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	cached, _ := f.sessions.Get(context.Background(), start.SessionID)
	assert.Nil(t, cached)

	// Safe for unknown sessions
	f.svc.Teardown(context.Background(), "s_missing")
}

func TestSubmitAnswerUnknownSession(t *testing.T) {
	f := newInterviewFixture(t)
	_, err := f.svc.SubmitAnswer(context.Background(), "s_missing", "an answer")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConcurrentSessionsAreIsolated(t *testing.T) {
	f := newInterviewFixture(t)
	a := startSession(t, f, StartParams{Username: "mba_candidate"})
	b := startSession(t, f, StartParams{Username: "bank_candidate", Category: bank.CategoryBank, Track: bank.TrackBankType})
	require.NotEqual(t, a.SessionID, b.SessionID)

	_, err := f.svc.SubmitAnswer(context.Background(), a.SessionID, "An answer about my team project experience and goals.")
	require.NoError(t, err)

	scB, err := f.svc.Session(b.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, scB.CurrentIdx, "answering one session must not advance another")
	assert.Empty(t, scB.Answers)
}
