package model

// StartResponse is returned when an interview session starts
type StartResponse struct {
	SessionID       string `json:"sessionId"`
	Message         string `json:"message"`
	TotalQuestions  int    `json:"totalQuestions"`
	CurrentQuestion string `json:"currentQuestion"`
	QuestionNumber  int    `json:"questionNumber"`
	UseCamera       bool   `json:"useCamera"`
}

// SubmitResponse is returned after each answer submission. When
// Finished is true the transcript and composite scores are populated
// and no further questions follow.
type SubmitResponse struct {
	Reply           string             `json:"reply"`
	CurrentQuestion string             `json:"currentQuestion,omitempty"`
	QuestionNumber  int                `json:"questionNumber,omitempty"`
	TotalQuestions  int                `json:"totalQuestions,omitempty"`
	Finished        bool               `json:"finished"`
	Evaluations     []EvaluationRecord `json:"evaluations,omitempty"`
	OverallScore    float64            `json:"overallScore,omitempty"`
	VisualScore     *VisualScoreDetails `json:"visualScoreDetails,omitempty"`
	Status          string             `json:"status,omitempty"`
}

// Session completion statuses reported to the caller
const (
	StatusCompleted    = "Completed Successfully"
	StatusUserStopped  = "Disqualified: User Request"
	StatusSessionError = "Error: Session Failure"
)
