package service

// Broadcaster pushes live interview events to connected observers.
// Services hold it as an optional dependency; a nil broadcaster means
// no realtime delivery and is always safe.
type Broadcaster interface {
	BroadcastToSession(sessionID, event string, payload interface{})
}

// Event names sent over the realtime channel
const (
	EventEvaluationResult  = "evaluation_result"
	EventNextQuestion      = "next_question"
	EventInterviewFinished = "interview_finished"
	EventVisualUpdate      = "visual_update"
)
