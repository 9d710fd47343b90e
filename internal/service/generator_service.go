package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"intervue/internal/bank"
	"intervue/internal/model"
)

// GenSource tags how a generated question was obtained, so callers and
// tests can distinguish paths without matching on message strings.
type GenSource string

const (
	GenGenerated GenSource = "generated" // produced by the AI capability
	GenFallback  GenSource = "fallback"  // served from the question bank
	GenExhausted GenSource = "exhausted" // nothing available; no question
)

// GenResult is the outcome of a single generation attempt
type GenResult struct {
	Source GenSource
	Text   string
	Reason string
}

// followUpFocus gives the AI a track-specific angle for follow-ups
var followUpFocus = map[string]string{
	bank.TrackResume:              "candidate specific experiences, skills, or career goals mentioned in their resume or previous answer",
	bank.TrackSchoolBased:         "their academic motivations, reasons for choosing a particular school, or how their studies relate to career goals",
	bank.TrackInterestAreas:       "their passion for the chosen interest area, depth of knowledge, or practical application of their interests",
	bank.TrackBankType:            "their understanding of the specific bank type, customer service approaches, or relevant operational aspects",
	bank.TrackTechnicalAnalytical: "their technical banking knowledge, problem-solving abilities, or logical reasoning based on the previous answer",
}

const defaultFollowUpFocus = "general relevance, impact, or lessons learned from their previous answer"

var fallbackIcebreakers = []string{
	"I see you're ready for the interview. How are you feeling about this opportunity?",
	"Your setup looks very professional. Are you comfortable and ready to start?",
	"I appreciate you taking the time for this interview. How are you feeling today?",
	"Thank you for joining us. Are you ready to begin our discussion?",
	"I can see you're well-prepared. How are you feeling about this opportunity?",
}

var fallbackReplies = []string{
	"Thank you for that detailed response.",
	"That's very insightful, I appreciate you sharing that.",
	"Excellent point, that really highlights your experience.",
	"I can see you've thought this through carefully.",
	"That's a great perspective on this topic.",
	"Thank you for being so thorough in your answer.",
	"I appreciate the depth of your response.",
	"That's a very thoughtful approach to this question.",
	"Thank you for sharing that experience with us.",
	"That demonstrates excellent understanding of the subject.",
}

// GeneratorService produces interview questions from resumes and prior
// answers, validating AI output and falling back to the question bank
// whenever the capability is down or yields unusable candidates.
type GeneratorService struct {
	client CompletionClient
	bank   *bank.Bank
}

// NewGeneratorService creates a generator backed by the AI client and bank
func NewGeneratorService(client CompletionClient, b *bank.Bank) *GeneratorService {
	return &GeneratorService{client: client, bank: b}
}

// validateCandidate normalizes one AI-proposed question: strips
// enumeration, enforces the trailing question mark and the 3-30 word
// bound, and rejects duplicates against the exclusion set.
func validateCandidate(raw string, excluded map[string]bool) (string, bool) {
	q := model.StripNumbering(strings.TrimSpace(raw))
	if q == "" {
		return "", false
	}
	if !strings.HasSuffix(q, "?") {
		q += "?"
	}
	words := len(strings.Fields(q))
	if words < 3 || words > 30 {
		return "", false
	}
	if excluded[model.NormalizeText(q)] {
		return "", false
	}
	return q, true
}

// excludedSample returns up to 3 normalized entries for prompt context.
// Best effort only; repetition avoidance is enforced by validation, not
// by the prompt.
func excludedSample(excluded map[string]bool) []string {
	sample := make([]string, 0, 3)
	for q := range excluded {
		sample = append(sample, q)
		if len(sample) == 3 {
			break
		}
	}
	return sample
}

// GenerateFromResume asks the capability for 10-12 questions grounded
// in the resume text and validates each. Fewer than 5 valid candidates
// (or a failed call) supplements from the bank's resume track until at
// least 5; the result is capped at 10.
func (s *GeneratorService) GenerateFromResume(ctx context.Context, resumeText, category string, excluded map[string]bool) []string {
	if strings.TrimSpace(resumeText) == "" {
		log.Println("[Generator] Resume questions: no resume text, using bank fallback")
		return s.bank.FallbackQuestions(category, bank.TrackResume, "")
	}

	if s.client != nil && s.client.IsEnabled() {
		if qs := s.resumeQuestionsFromAI(ctx, resumeText, category, excluded); qs != nil {
			return qs
		}
	}

	log.Println("[Generator] Resume questions: using bank fallback")
	return s.bank.FallbackQuestions(category, bank.TrackResume, "")
}

func (s *GeneratorService) resumeQuestionsFromAI(ctx context.Context, resumeText, category string, excluded map[string]bool) []string {
	promptContext := "an MBA program interview"
	if category == bank.CategoryBank {
		promptContext = "a banking role interview"
	}
	truncated := resumeText
	if len(truncated) > 2500 {
		truncated = truncated[:2500]
	}
	prompt := fmt.Sprintf(
		"You are an expert interviewer preparing for %s. " +
			"Based only on the candidate's resume provided below, generate 10-12 unique, insightful questions. " +
			"Focus on their experiences, skills, achievements, and career progression as detailed in the resume. " +
			"Each question must be a complete sentence, concise, and end with a question mark. Avoid truncating questions mid-sentence. " +
			"Do not ask generic questions not directly tied to the resume content. " +
			"Avoid questions similar to these already considered (normalized sample): %v. " +
			"Resume Text: ```%s```",
		promptContext, excludedSample(excluded), truncated)

	response, err := s.client.Complete(ctx, []ChatMessage{{Role: "user", Text: prompt}}, CompleteOptions{Temperature: 0.55, MaxTokens: 1000})
	if err != nil {
		log.Printf("[Generator] Resume questions: AI call failed: %v", err)
		return nil
	}

	var valid []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(response, "\n") {
		q, ok := validateCandidate(line, excluded)
		if !ok || seen[model.NormalizeText(q)] {
			continue
		}
		seen[model.NormalizeText(q)] = true
		valid = append(valid, q)
	}

	if len(valid) >= 5 {
		log.Printf("[Generator] Resume questions: generated %d from AI", len(valid))
		return capAt(valid, 10)
	}

	log.Printf("[Generator] Resume questions: only %d from AI, supplementing with bank fallback", len(valid))
	for _, f := range s.bank.FallbackQuestions(category, bank.TrackResume, "") {
		if !seen[model.NormalizeText(f)] {
			seen[model.NormalizeText(f)] = true
			valid = append(valid, f)
		}
	}
	return capAt(valid, 10)
}

// GenerateFollowUp produces at most one follow-up to a just-answered
// question. Answers under 3 words skip the capability entirely. AI
// attempts are a bounded loop of 2; invalid or duplicate candidates
// consume an attempt. Exhausted attempts or a failed capability fall
// back to the first unexcluded bank question for the track.
func (s *GeneratorService) GenerateFollowUp(ctx context.Context, prevQ, prevAns string, prevScore float64, track, category string, excluded map[string]bool) GenResult {
	if len(strings.Fields(prevAns)) >= 3 && s.client != nil && s.client.IsEnabled() {
		focus := followUpFocus[track]
		if focus == "" {
			focus = defaultFollowUpFocus
		}
		prompt := fmt.Sprintf(
			"You are an interviewer for a %s candidate. They just answered a question. " +
				"Previous Question: %q\nCandidate's Answer: %q\nThis answer was scored %.1f/10.\n" +
				"Based on this, generate ONE insightful follow-up question that delves deeper into their response, focusing on %s. " +
				"The follow-up should be natural, concise, a complete sentence, and end with a question mark. " +
				"Do NOT repeat the previous question or ask something generic if a specific follow-up is possible. " +
				"Avoid questions similar to these already considered (normalized sample): %v. Follow-up Question:",
			category, prevQ, prevAns, prevScore, focus, excludedSample(excluded))

		for attempt := 1; attempt <= 2; attempt++ {
			response, err := s.client.Complete(ctx, []ChatMessage{{Role: "user", Text: prompt}}, CompleteOptions{Temperature: 0.6, MaxTokens: 110})
			if err != nil {
				log.Printf("[Generator] Follow-up: AI call failed: %v", err)
				break
			}
			q, ok := validateCandidate(response, excluded)
			if ok {
				log.Printf("[Generator] Follow-up: generated from AI: %s", q)
				return GenResult{Source: GenGenerated, Text: q}
			}
			log.Printf("[Generator] Follow-up: attempt %d rejected, retrying", attempt)
		}
	} else if len(strings.Fields(prevAns)) < 3 {
		log.Println("[Generator] Follow-up: answer too short, using bank fallback")
	}

	for _, q := range s.bank.FallbackQuestions(category, track, "") {
		if !excluded[model.NormalizeText(q)] {
			log.Printf("[Generator] Follow-up: using bank fallback: %s", q)
			return GenResult{Source: GenFallback, Text: q, Reason: "ai unavailable or candidates rejected"}
		}
	}

	log.Println("[Generator] Follow-up: no fallback questions remain")
	return GenResult{Source: GenExhausted, Reason: "all fallback questions already asked"}
}

// GenerateIcebreaker builds the optional camera-derived opener from an
// inline frame image. The result is exempt from follow-up generation.
func (s *GeneratorService) GenerateIcebreaker(ctx context.Context, imageDataURL string) string {
	if imageDataURL == "" {
		return fallbackIcebreakers[0]
	}
	if s.client != nil && s.client.IsEnabled() {
		prompt := "You are an interviewer conducting a formal interview. The candidate has enabled their camera. " +
			"Observe their professional presentation or a general, neutral aspect of their visible environment from this image. " +
			"Ask a single, brief, and formal icebreaker question. The question must be polite, non-intrusive, and strictly professional. " +
			"Avoid any overly personal remarks or overly casual phrasing. Ensure the question is a complete sentence ending with a question mark. " +
			"Do not thank the candidate for attending. If unsure, stick to the environment or general readiness."
		response, err := s.client.Complete(ctx,
			[]ChatMessage{{Role: "user", Text: prompt, ImageURL: imageDataURL}},
			CompleteOptions{Temperature: 0.6, MaxTokens: 75})
		if err == nil {
			q := strings.TrimSpace(response)
			words := len(strings.Fields(q))
			if strings.HasSuffix(q, "?") && words >= 3 && words <= 35 {
				log.Printf("[Generator] Icebreaker: generated from AI: %s", q)
				return q
			}
			log.Printf("[Generator] Icebreaker: generated question unsuitable (%d words)", words)
		} else {
			log.Printf("[Generator] Icebreaker: AI call failed: %v", err)
		}
	}
	// Fixed selection keeps the fallback deterministic
	return fallbackIcebreakers[len(imageDataURL)%len(fallbackIcebreakers)]
}

// ConversationalReply produces the cosmetic acknowledgment spoken after
// each answer. It never carries a question and has no state impact.
func (s *GeneratorService) ConversationalReply(ctx context.Context, answer, category string) string {
	if s.client != nil && s.client.IsEnabled() {
		role := "HR"
		if category == bank.CategoryBank {
			role = "banking HR"
		}
		sysPrompt := fmt.Sprintf(
			"You are an engaging and human-like %s interviewer. The candidate has just finished their answer. " +
				"Generate a short, complete sentence as a reply, providing feedback or encouragement without asking for further information. " +
				"The reply MUST be a statement (ending with a period or exclamation mark) and MUST NOT contain any questions.", role)
		summary := answer
		if len(summary) > 100 {
			summary = summary[:100] + "..."
		}
		response, err := s.client.Complete(ctx, []ChatMessage{
			{Role: "system", Text: sysPrompt},
			{Role: "user", Text: "Candidate's answer (summary): " + summary},
		}, CompleteOptions{Temperature: 0.75, MaxTokens: 45})
		if err == nil {
			if reply := sanitizeReply(response); reply != "" {
				return reply
			}
		} else {
			log.Printf("[Generator] Reply: AI call failed: %v", err)
		}
	}

	// Longer answers get the more appreciative half of the fixed list
	words := len(strings.Fields(answer))
	if words > 50 {
		return fallbackReplies[words%5]
	}
	return fallbackReplies[5+words%5]
}

// sanitizeReply forces an acknowledgment into statement form
func sanitizeReply(raw string) string {
	reply := strings.TrimSpace(raw)
	if reply == "" {
		return ""
	}
	reply = strings.ReplaceAll(reply, "?", ".")
	if !strings.HasSuffix(reply, ".") && !strings.HasSuffix(reply, "!") {
		reply += "."
	}
	return reply
}

// AnswerFeedback generates the per-answer coaching text shown in the
// final transcript, with a heuristic fallback keyed on answer shape.
func (s *GeneratorService) AnswerFeedback(ctx context.Context, question, answer, jobDescription string) string {
	if s.client != nil && s.client.IsEnabled() {
		prompt := fmt.Sprintf(
			"You are an expert interviewer for a role related to: %s.\n" +
				"The candidate was asked: %q\nCandidate's Answer: %q\n" +
				"Provide concise, constructive feedback to help the candidate improve their interview performance. " +
				"Focus on clarity, detail, relevance to the question, and communication skills. " +
				"Provide 2-3 sentences of specific, actionable advice tailored to the answer's content and weaknesses. " +
				"Avoid repeating the question or answer verbatim, and do not include scores or numerical ratings.",
			jobDescription, question, answer)
		response, err := s.client.Complete(ctx, []ChatMessage{{Role: "user", Text: prompt}}, CompleteOptions{Temperature: 0.65, MaxTokens: 160})
		if err == nil {
			feedback := strings.TrimSpace(response)
			if len(strings.Fields(feedback)) > 5 {
				return feedback
			}
		} else {
			log.Printf("[Generator] Feedback: AI call failed: %v", err)
		}
	}
	return heuristicFeedback(answer)
}

func heuristicFeedback(answer string) string {
	words := len(strings.Fields(answer))
	hasExamples := containsAny(answer, exampleKeywords)
	hasQuantifiable := containsAny(answer, quantifiableKeywords)

	switch {
	case words < 20:
		return "Consider providing more detail in your responses. Include specific examples and experiences to make your answers more compelling and demonstrate your qualifications."
	case words < 50:
		if hasExamples {
			return "Good use of examples! To strengthen your response further, consider adding quantifiable results or outcomes to demonstrate the impact of your actions."
		}
		return "Your response shows good understanding. To make it even stronger, include specific examples from your experience that demonstrate your skills and achievements."
	default:
		if hasQuantifiable {
			return "Excellent response with specific examples and measurable results. This demonstrates strong communication skills and provides clear evidence of your capabilities."
		}
		if hasExamples {
			return "Strong response with good examples. Consider adding specific metrics or outcomes to quantify your achievements and make your answer even more impactful."
		}
		return "Comprehensive response with good detail. To enhance it further, include specific examples or case studies that illustrate your points and demonstrate your experience."
	}
}

func capAt(qs []string, n int) []string {
	if len(qs) > n {
		return qs[:n]
	}
	return qs
}
