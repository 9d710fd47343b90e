package model

import "time"

// EvaluationRecord is one entry of the interview transcript, appended
// once per answered question (follow-ups included).
type EvaluationRecord struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty"`
	SessionID  string    `json:"sessionId" bson:"sessionId"`
	Username   string    `json:"username,omitempty" bson:"username,omitempty"`
	Question   string    `json:"question" bson:"question"`
	Answer     string    `json:"answer" bson:"answer"`
	Evaluation string    `json:"evaluation" bson:"evaluation"` // rubric detail string
	Score      float64   `json:"score" bson:"score"`           // 0-10
	Feedback   string    `json:"feedback" bson:"feedback"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// SessionSnapshot is the final persisted outcome of a session
type SessionSnapshot struct {
	ID           string             `json:"id,omitempty" bson:"_id,omitempty"`
	SessionID    string             `json:"sessionId" bson:"sessionId"`
	Username     string             `json:"username,omitempty" bson:"username,omitempty"`
	Category     string             `json:"category" bson:"category"`
	Track        string             `json:"track" bson:"track"`
	OverallScore float64            `json:"overallScore" bson:"overallScore"`
	VisualScore  float64            `json:"visualScore" bson:"visualScore"`
	Status       string             `json:"status" bson:"status"`
	Evaluations  []EvaluationRecord `json:"evaluations" bson:"evaluations"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}
