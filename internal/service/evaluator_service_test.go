package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intervue/internal/model"
)

const fullRubricResponse = `Ideas: 8 (relevant and insightful)
Organization: 8 (clear structure)
Accuracy: 8 (factually sound)
Voice: 8 (confident)
Grammar Usage and Sentence Fluency: 8 (fluent)
Stop words: 8 (minimal filler)
Justification: A strong, well-structured answer.`

func TestEvaluateEmptyAnswerSkipsAI(t *testing.T) {
	client := &fakeCompletionClient{responses: []string{fullRubricResponse}}
	e := NewEvaluatorService(client)

	_, score := e.Evaluate(context.Background(), "Tell me about yourself?", "   ", "analyst role")
	assert.Equal(t, 0.0, score)

	_, score = e.Evaluate(context.Background(), "Tell me about yourself?", model.NoAnswerSentinel, "analyst role")
	assert.Equal(t, 0.0, score)

	assert.Zero(t, client.callCount(), "empty answers must not consume AI calls")
}

func TestEvaluateSequenceQuestion(t *testing.T) {
	client := &fakeCompletionClient{responses: []string{fullRubricResponse}}
	e := NewEvaluatorService(client)
	q := "What is the next number in the sequence: 2, 5, 10, 17, 26, _?"

	detail, score := e.Evaluate(context.Background(), q, "The answer is 37.", "")
	assert.Equal(t, 10.0, score)
	assert.Contains(t, detail, "37")

	_, score = e.Evaluate(context.Background(), q, "99", "")
	assert.Equal(t, 0.0, score)

	detail, score = e.Evaluate(context.Background(), "Complete the series 1, 2, 4, 8, _?", "16", "")
	assert.Equal(t, 5.0, score)
	assert.Contains(t, detail, "not specifically programmed")

	assert.Zero(t, client.callCount(), "sequence questions are graded deterministically")
}

func TestParseEvaluation(t *testing.T) {
	scores, justifications, summary := parseEvaluation(fullRubricResponse)
	require.Len(t, scores, 6)
	assert.Equal(t, 8, scores["ideas"])
	assert.Equal(t, 8, scores["stop words"])
	assert.Equal(t, "relevant and insightful", justifications["ideas"])
	assert.Equal(t, "A strong, well-structured answer.", summary)
}

func TestParseEvaluationToleratesVariants(t *testing.T) {
	scores, _, _ := parseEvaluation(strings.Join([]string{
		"- IDEAS: 7/10 (good)",
		"organisation: 6",
		"Grammar: 9 (clean)",
		"Unknown Category: 5",
		"Voice: 15 (out of range)",
	}, "\n"))
	assert.Equal(t, 7, scores["ideas"])
	assert.Equal(t, 6, scores["organization"])
	assert.Equal(t, 9, scores["grammar usage and sentence fluency"])
	_, hasVoice := scores["voice"]
	assert.False(t, hasVoice, "out-of-range scores are dropped")
	assert.Len(t, scores, 3)
}

func TestWeightedScoreRenormalizes(t *testing.T) {
	// Only two categories parsed: weighted mean over their weights
	score := weightedScore(map[string]int{"ideas": 8, "voice": 4})
	// (8*0.25 + 4*0.15) / 0.40 = 6.5
	assert.InDelta(t, 6.5, score, 0.001)
}

func TestBoostScore(t *testing.T) {
	assert.InDelta(t, 7.0, boostScore(6.0), 0.001)
	assert.InDelta(t, 8.0, boostScore(7.0), 0.001)
	assert.InDelta(t, 9.0, boostScore(8.0), 0.001)
	assert.InDelta(t, 9.5, boostScore(9.0), 0.001)
	assert.InDelta(t, 10.0, boostScore(9.8), 0.001)
	assert.InDelta(t, 4.0, boostScore(4.0), 0.001, "low scores are not boosted")
}

func TestApplyContentBonuses(t *testing.T) {
	long := strings.Repeat("word ", 85) + "for example our project increased revenue"
	assert.InDelta(t, 8.8, applyContentBonuses(8.0, long), 0.001, "example and quantifiable bonuses stack")

	short := "for example a project"
	assert.InDelta(t, 8.0, applyContentBonuses(8.0, short), 0.001, "example bonus needs a substantial answer")

	assert.InDelta(t, 10.0, applyContentBonuses(9.9, long), 0.001, "bonuses never exceed 10")
}

func TestEvaluateWithRubricResponse(t *testing.T) {
	client := &fakeCompletionClient{responses: []string{fullRubricResponse}}
	e := NewEvaluatorService(client)

	answer := "In my previous role I led a team project that improved onboarding."
	detail, score := e.Evaluate(context.Background(), "Tell me about a leadership experience?", answer, "MBA program")

	// raw 8.0 boosts to 9.0, plus 0.3 for "improved"
	assert.InDelta(t, 9.3, score, 0.001)
	assert.Contains(t, detail, "[AI Detailed Scoring Complete]")
	assert.Contains(t, detail, "Ideas: 8/10")
	assert.Contains(t, detail, "Final Weighted Score: 9.30/10")
}

func TestEvaluateFallsBackToHeuristic(t *testing.T) {
	client := &fakeCompletionClient{err: assertAnError}
	e := NewEvaluatorService(client)

	answer := strings.Repeat("detail ", 30) + "my experience leading the team taught me a lot"
	detail, score := e.Evaluate(context.Background(), "Tell me about yourself?", answer, "")
	assert.Contains(t, detail, "[Heuristic Scoring]")
	assert.Equal(t, 7.0, score, "36 words lands in the 20-50 bucket plus relevance bump")
}

func TestHeuristicEvaluateBuckets(t *testing.T) {
	_, score := heuristicEvaluate("hi")
	assert.Equal(t, 0.0, score, "under 10 normalized characters")

	_, score = heuristicEvaluate("This is a short answer without any signal words at all okay then")
	assert.Equal(t, 4.0, score)

	_, score = heuristicEvaluate(strings.Repeat("plain ", 60))
	assert.Equal(t, 7.0, score)

	_, score = heuristicEvaluate(strings.Repeat("plain ", 60) + "my experience on the project")
	assert.Equal(t, 8.0, score, "relevance bump applies once")

	_, score = heuristicEvaluate(strings.Repeat("plain ", 120) + "team leadership experience")
	assert.Equal(t, 9.0, score, "heuristic scores never exceed 9")
}

var assertAnError = errAI{}

type errAI struct{}

func (errAI) Error() string { return "capability down" }
