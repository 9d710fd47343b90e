package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"regexp"
	"strconv"
	"strings"

	"intervue/internal/model"
)

// Rubric weights. They sum to 1.0; partial parses renormalize over the
// categories actually found so a dropped line does not deflate scores.
var rubricWeights = map[string]float64{
	"ideas":                              0.25,
	"organization":                       0.25,
	"accuracy":                           0.25,
	"voice":                              0.15,
	"grammar usage and sentence fluency": 0.05,
	"stop words":                         0.05,
}

// rubricAliases maps loose category names the model may emit back to
// canonical rubric keys.
var rubricAliases = map[string]string{
	"ideas":                              "ideas",
	"idea":                               "ideas",
	"organization":                       "organization",
	"organisation":                       "organization",
	"accuracy":                           "accuracy",
	"voice":                              "voice",
	"grammar usage and sentence fluency": "grammar usage and sentence fluency",
	"grammar":                            "grammar usage and sentence fluency",
	"grammar usage":                      "grammar usage and sentence fluency",
	"sentence fluency":                   "grammar usage and sentence fluency",
	"stop words":                         "stop words",
	"stopwords":                          "stop words",
}

var exampleKeywords = []string{"example", "instance", "specifically", "when", "project", "team", "result"}

var quantifiableKeywords = []string{"increased", "decreased", "improved", "achieved", "resulted in", "led to", "percentage", "%"}

var relevanceKeywords = []string{"experience", "work", "project", "team", "leadership", "goal", "achieve", "learn", "develop"}

// categoryLineRe matches one rubric line: "Ideas: 8 (justification)" or
// "Ideas: 8/10 (justification)". Case-insensitive on the category.
var categoryLineRe = regexp.MustCompile(`(?i)^\s*[-*]?\s*([A-Za-z ]+?)\s*:\s*(\d{1,2})(?:\s*/\s*10)?\s*(?:\((.*?)\))?\s*$`)

const sequenceAnswerCorrect = "37"

// EvaluatorService scores one answer against its question, blending
// AI rubric evaluation with deterministic handling for special cases.
type EvaluatorService struct {
	client CompletionClient
}

func NewEvaluatorService(client CompletionClient) *EvaluatorService {
	return &EvaluatorService{client: client}
}

// Evaluate returns a human-readable evaluation detail and a score in
// [0,10]. Empty answers and the no-answer sentinel score 0 with no AI
// call. Sequence questions are graded deterministically.
func (s *EvaluatorService) Evaluate(ctx context.Context, question, answer, jobContext string) (string, float64) {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" || trimmed == model.NoAnswerSentinel {
		return "[No Effective Answer] Score: 0/10", 0
	}

	if model.IsSequenceQuestion(question) {
		return evaluateSequence(question, trimmed)
	}

	if s.client != nil && s.client.IsEnabled() {
		if detail, score, ok := s.rubricEvaluate(ctx, question, trimmed, jobContext); ok {
			return detail, score
		}
	}

	return heuristicEvaluate(trimmed)
}

// evaluateSequence grades the numeric-pattern question exactly: the
// known pattern accepts only its next term, any other sequence scores
// a neutral 5.
func evaluateSequence(question, answer string) (string, float64) {
	if strings.Contains(question, "2, 5, 10, 17, 26") {
		if extractFirstNumber(answer) == sequenceAnswerCorrect {
			return "Correct! The pattern adds consecutive odd numbers (+3, +5, +7, +9, +11), so the next number is 37.", 10
		}
		return "Incorrect. The pattern adds consecutive odd numbers (+3, +5, +7, +9, +11), so the next number is 37.", 0
	}
	return "This sequence question is not specifically programmed for evaluation, so a neutral score is assigned.", 5
}

var firstNumberRe = regexp.MustCompile(`-?\d+`)

func extractFirstNumber(s string) string {
	return firstNumberRe.FindString(s)
}

func (s *EvaluatorService) rubricEvaluate(ctx context.Context, question, answer, jobContext string) (string, float64, bool) {
	prompt := fmt.Sprintf(
		"You are an expert interview evaluator for a role related to: %s.\n"+
			"Evaluate the candidate's answer to the question below across these categories, each scored 0-10:\n"+
			"Ideas (weight 25%%): relevance, depth, and insight of the content.\n"+
			"Organization (weight 25%%): logical structure and flow.\n"+
			"Accuracy (weight 25%%): factual correctness and appropriateness.\n"+
			"Voice (weight 15%%): confidence, authenticity, and engagement.\n"+
			"Grammar Usage and Sentence Fluency (weight 5%%): language quality.\n"+
			"Stop words (weight 5%%): absence of filler words and hedging.\n"+
			"Be generous in scoring: a reasonable, on-topic answer should score 6-8, and a strong answer 8-10. "+
			"Reserve scores below 5 for answers that are clearly off-topic, incoherent, or empty of content.\n"+
			"Question: %q\nAnswer: %q\n"+
			"Respond with exactly one line per category in the format:\n"+
			"Category: N (justification)\n"+
			"Then a final line: Justification: <one sentence overall summary>",
		jobContext, question, answer)

	response, err := s.client.Complete(ctx, []ChatMessage{{Role: "user", Text: prompt}}, CompleteOptions{Temperature: 0.3, MaxTokens: 450})
	if err != nil {
		log.Printf("[Evaluator] AI call failed: %v", err)
		return "", 0, false
	}

	scores, justifications, summary := parseEvaluation(response)
	if len(scores) < len(rubricWeights) {
		log.Printf("[Evaluator] AI response parsed only %d of %d rubric categories", len(scores), len(rubricWeights))
		return "", 0, false
	}

	raw := weightedScore(scores)
	boosted := boostScore(raw)
	final := applyContentBonuses(boosted, answer)

	var parts []string
	parts = append(parts, "[AI Detailed Scoring Complete]")
	for _, cat := range []string{"ideas", "organization", "accuracy", "voice", "grammar usage and sentence fluency", "stop words"} {
		if n, ok := scores[cat]; ok {
			label := titleCategory(cat)
			if j := justifications[cat]; j != "" {
				parts = append(parts, fmt.Sprintf("%s: %d/10 (%s)", label, n, j))
			} else {
				parts = append(parts, fmt.Sprintf("%s: %d/10", label, n))
			}
		}
	}
	if summary != "" {
		parts = append(parts, "Overall: "+summary)
	}
	parts = append(parts, fmt.Sprintf("Final Weighted Score: %.2f/10", final))
	return strings.Join(parts, " | "), final, true
}

// parseEvaluation extracts per-category scores and justifications from
// the model's line-oriented response, plus the overall summary line.
func parseEvaluation(response string) (map[string]int, map[string]string, string) {
	scores := make(map[string]int)
	justifications := make(map[string]string)
	var summary string

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if j, ok := strings.CutPrefix(line, "Justification:"); ok {
			summary = strings.TrimSpace(j)
			continue
		}
		m := categoryLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key, ok := rubricAliases[strings.ToLower(strings.TrimSpace(m[1]))]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil || n < 0 || n > 10 {
			continue
		}
		if _, dup := scores[key]; dup {
			continue
		}
		scores[key] = n
		justifications[key] = strings.TrimSpace(m[3])
	}
	return scores, justifications, summary
}

// weightedScore is the weighted mean over parsed categories, with the
// weight denominator restricted to categories actually present.
func weightedScore(scores map[string]int) float64 {
	var sum, applied float64
	for cat, n := range scores {
		w := rubricWeights[cat]
		sum += float64(n) * w
		applied += w
	}
	if applied == 0 {
		return 0
	}
	return sum / applied
}

// boostScore remaps middling raw scores upward so conservative model
// output does not punish reasonable answers. Raw scores in [6,8] map
// to [7,9]; scores above 8 gain 0.5 up to the cap.
func boostScore(raw float64) float64 {
	switch {
	case raw >= 6 && raw <= 8:
		return 7 + (raw - 6)
	case raw > 8:
		return math.Min(10, raw+0.5)
	default:
		return raw
	}
}

// applyContentBonuses rewards substantial answers with concrete
// examples (+0.5) and quantifiable results (+0.3), capped at 10.
func applyContentBonuses(score float64, answer string) float64 {
	words := len(strings.Fields(answer))
	if words > 80 && containsAny(answer, exampleKeywords) {
		score += 0.5
	}
	if containsAny(answer, quantifiableKeywords) {
		score += 0.3
	}
	if score > 10 {
		score = 10
	}
	return round2(score)
}

// heuristicEvaluate is the capability-down scorer: length buckets plus
// a relevance bump, never exceeding 9 so AI-scored answers can rank
// above it.
func heuristicEvaluate(answer string) (string, float64) {
	norm := model.NormalizeText(answer)
	if len(norm) < 10 {
		return "The answer is too short to evaluate meaningfully.", 0
	}

	words := len(strings.Fields(answer))
	var score float64
	switch {
	case words < 20:
		score = 4
	case words < 50:
		score = 6
	case words < 100:
		score = 7
	default:
		score = 8
	}
	if containsAny(answer, relevanceKeywords) && score < 9 {
		score++
	}
	return fmt.Sprintf("[Heuristic Scoring] Answer length and relevance assessed without AI. Score: %.1f/10", score), score
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func titleCategory(cat string) string {
	words := strings.Fields(cat)
	for i, w := range words {
		if w == "and" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
