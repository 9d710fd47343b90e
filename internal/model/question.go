package model

import (
	"regexp"
	"strings"
)

// QuestionKind defines how a question is evaluated
type QuestionKind string

const (
	QuestionStandard QuestionKind = "standard" // Free text, rubric-evaluated
	QuestionSequence QuestionKind = "sequence" // Numeric pattern, deterministic evaluation
)

// Question is a single bank or generated question
type Question struct {
	Text string       `json:"text" bson:"text"`
	Kind QuestionKind `json:"kind" bson:"kind"`
}

var (
	numberingRe = regexp.MustCompile(`^\d+\.\s*`)
	sequenceRe  = regexp.MustCompile(`\d+,\s*\d+,\s*\d+.*,\s*_`)
)

// NormalizeText collapses whitespace and lower-cases a question. The
// normalized form is the question's identity for deduplication; there
// are no numeric question IDs.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// StripNumbering removes a leading "N. " enumeration prefix
func StripNumbering(s string) string {
	return strings.TrimSpace(numberingRe.ReplaceAllString(strings.TrimSpace(s), ""))
}

// IsSequenceQuestion reports whether a question text looks like a numeric
// progression puzzle ("The pattern is 2, 5, 10, 17, 26, _?")
func IsSequenceQuestion(text string) bool {
	return sequenceRe.MatchString(text)
}

// KindOf classifies raw question text
func KindOf(text string) QuestionKind {
	if IsSequenceQuestion(text) {
		return QuestionSequence
	}
	return QuestionStandard
}
