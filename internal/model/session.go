package model

import "time"

// SessionStatus is the lifecycle state of an interview session
type SessionStatus string

const (
	SessionActive   SessionStatus = "active"
	SessionFinished SessionStatus = "finished"
)

// MaxFollowUpDepth bounds consecutive AI follow-ups between two root questions
const MaxFollowUpDepth = 2

// NoAnswerSentinel replaces an empty submission before evaluation
const NoAnswerSentinel = "No specific answer was provided."

// SessionContext is the per-interview mutable state. It is keyed by
// session ID in the interview service; concurrent sessions never share
// a context. Mutated only on the answer-submission path, which is not
// re-entrant for a single session.
type SessionContext struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Category       string    `json:"category"` // "mba" or "bank"
	Track          string    `json:"track"`
	SubTrack       string    `json:"subTrack"`
	JobDescription string    `json:"jobDescription"`
	Status         SessionStatus `json:"status"`

	Questions  []string `json:"questions"`  // live queue; follow-ups insert at CurrentIdx+1
	CurrentIdx int      `json:"currentIdx"` // pointer into Questions

	// AskedNormalized holds the NormalizedText of every question ever
	// queued or answered, preventing re-asks across all sources.
	AskedNormalized map[string]bool `json:"askedNormalized"`

	Answers       []string  `json:"answers"`
	Scores        []float64 `json:"scores"`
	FollowUpDepth int       `json:"followUpDepth"`

	ResumeQuestionCache []string `json:"resumeQuestionCache"`

	IcebreakerPrepended bool   `json:"icebreakerPrepended"`
	IcebreakerText      string `json:"icebreakerText,omitempty"`

	UseCamera bool `json:"useCamera"`

	Evaluations []EvaluationRecord `json:"evaluations"`

	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

// CurrentQuestion returns the question awaiting an answer, or "" when
// the queue is exhausted.
func (c *SessionContext) CurrentQuestion() string {
	if c.CurrentIdx < 0 || c.CurrentIdx >= len(c.Questions) {
		return ""
	}
	return c.Questions[c.CurrentIdx]
}

// MarkAsked records a question in the dedup set
func (c *SessionContext) MarkAsked(text string) {
	if c.AskedNormalized == nil {
		c.AskedNormalized = make(map[string]bool)
	}
	c.AskedNormalized[NormalizeText(text)] = true
}

// WasAsked reports whether a question's normalized form is already known
func (c *SessionContext) WasAsked(text string) bool {
	return c.AskedNormalized[NormalizeText(text)]
}
