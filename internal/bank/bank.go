// Package bank holds the per-category interview question sets, loaded
// once at process start from extracted question-document text and
// immutable afterwards. When a source document is missing or unusable
// a built-in fallback set is installed so the system is never left
// with zero questions.
package bank

import (
	"log"
	"strings"
	"sync"

	"intervue/internal/model"
)

// Track names shared with the session layer
const (
	TrackResume              = "resume"
	TrackSchoolBased         = "school_based"
	TrackInterestAreas       = "interest_areas"
	TrackBankType            = "bank_type"
	TrackTechnicalAnalytical = "technical_analytical"
)

// Categories
const (
	CategoryMBA  = "mba"
	CategoryBank = "bank"
)

// subTrackSet is an ordered collection of sub-track question lists.
// Order is fixed by the source document so breadth-first sampling is
// deterministic.
type subTrackSet struct {
	order []string
	lists map[string][]model.Question
}

func newSubTrackSet() *subTrackSet {
	return &subTrackSet{lists: make(map[string][]model.Question)}
}

func (s *subTrackSet) add(subTrack string, q model.Question) {
	if _, ok := s.lists[subTrack]; !ok {
		s.order = append(s.order, subTrack)
	}
	s.lists[subTrack] = append(s.lists[subTrack], q)
}

type categoryBank struct {
	resumeFlow []model.Question
	tracks     map[string]*subTrackSet // track -> sub-tracks
}

// Bank is the in-memory question store for both job categories
type Bank struct {
	mu         sync.RWMutex
	categories map[string]*categoryBank
}

// New returns an empty bank
func New() *Bank {
	return &Bank{categories: make(map[string]*categoryBank)}
}

// sectionRule maps a header substring to a track (and optionally a
// fixed sub-track, as with Current Affairs).
type sectionRule struct {
	match    string
	track    string
	subTrack string
}

// subTrackRule maps a header substring to a sub-track name within a track
type subTrackRule struct {
	track    string
	match    string
	subTrack string
}

var sectionRules = map[string][]sectionRule{
	CategoryMBA: {
		{match: "1. Resume Flow", track: TrackResume},
		{match: "2. Pre-Defined Question Selection", track: TrackSchoolBased},
		{match: "3. Interface to Select Question Areas", track: TrackInterestAreas},
	},
	CategoryBank: {
		{match: "Resume-Based Questions", track: TrackResume},
		{match: "Bank-Type Specific Questions", track: TrackBankType},
		{match: "Technical & Analytical Questions", track: TrackTechnicalAnalytical},
		{match: "Current Affairs", track: TrackTechnicalAnalytical, subTrack: "Current Affairs"},
	},
}

var subTrackRules = map[string][]subTrackRule{
	CategoryMBA: {
		{track: TrackSchoolBased, match: "For IIMs", subTrack: "IIM"},
		{track: TrackSchoolBased, match: "For ISB", subTrack: "ISB"},
		{track: TrackSchoolBased, match: "For Other B-Schools", subTrack: "Other"},
		{track: TrackInterestAreas, match: "General Business & Leadership", subTrack: "General Business"},
		{track: TrackInterestAreas, match: "Finance & Economics", subTrack: "Finance"},
		{track: TrackInterestAreas, match: "Marketing & Strategy", subTrack: "Marketing"},
		{track: TrackInterestAreas, match: "Operations & Supply Chain", subTrack: "Operations"},
	},
	CategoryBank: {
		{track: TrackBankType, match: "Public Sector Banks", subTrack: "Public Sector Banks"},
		{track: TrackBankType, match: "Private Banks", subTrack: "Private Banks"},
		{track: TrackBankType, match: "Regulatory Roles", subTrack: "Regulatory Roles"},
		{track: TrackTechnicalAnalytical, match: "Banking Knowledge", subTrack: "Banking Knowledge"},
		{track: TrackTechnicalAnalytical, match: "Logical Reasoning", subTrack: "Logical Reasoning"},
		{track: TrackTechnicalAnalytical, match: "Situational Judgement", subTrack: "Situational Judgement"},
	},
}

// Load parses extracted question-document text into the bank for one
// category. Returns false (never panics) when the text yields no
// questions; the caller should then call InstallFallback.
func (b *Bank) Load(text, category string) bool {
	rules, ok := sectionRules[category]
	if !ok {
		log.Printf("[Bank] Load: unknown category %q", category)
		return false
	}
	if strings.TrimSpace(text) == "" {
		return false
	}

	cb := &categoryBank{tracks: make(map[string]*subTrackSet)}
	currentTrack := ""
	currentSub := ""
	loaded := 0

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		matched := false
		for _, r := range rules {
			if strings.Contains(line, r.match) {
				currentTrack, currentSub = r.track, r.subTrack
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		// Current Affairs pins its own sub-track; other technical
		// headers must not override it until a new section starts.
		for _, r := range subTrackRules[category] {
			if r.track == currentTrack && strings.Contains(line, r.match) && currentSub != "Current Affairs" {
				currentSub = r.subTrack
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		if !isNumberedLine(line) {
			continue
		}
		text := model.StripNumbering(line)
		if text == "" {
			continue
		}
		if !strings.HasSuffix(text, "?") {
			text += "?"
		}
		q := model.Question{Text: text, Kind: model.KindOf(text)}
		switch {
		case currentTrack == TrackResume:
			cb.resumeFlow = append(cb.resumeFlow, q)
			loaded++
		case currentTrack != "" && currentSub != "":
			set := cb.tracks[currentTrack]
			if set == nil {
				set = newSubTrackSet()
				cb.tracks[currentTrack] = set
			}
			set.add(currentSub, q)
			loaded++
		}
	}

	if loaded == 0 {
		return false
	}

	b.mu.Lock()
	b.categories[category] = cb
	b.mu.Unlock()
	log.Printf("[Bank] Loaded %d questions for category %q", loaded, category)
	return true
}

// isNumberedLine reports whether a line starts with an "N." enumeration
func isNumberedLine(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	first := fields[0]
	return first[0] >= '0' && first[0] <= '9' && strings.Contains(first, ".")
}

// genericQuestions pads short fallback lists so a caller always gets a
// workable set.
var genericQuestions = []string{
	"Tell me about your background and what led you to this opportunity?",
	"What are your key strengths that would be valuable in this role?",
	"Can you describe a challenging situation you've faced and how you handled it?",
	"What are your career goals and how does this position align with them?",
	"What motivates you in your work?",
}

// FallbackQuestions returns bank questions for a track, applying the
// breadth-first sampling policy: a named sub-track contributes its
// first 3 questions; with no sub-track every sub-track contributes its
// first 2, guaranteeing topic diversity. Results are padded with the
// generic set until at least 5 questions and capped at 10. The output
// is deterministic for the same inputs.
func (b *Bank) FallbackQuestions(category, track, subTrack string) []string {
	b.mu.RLock()
	cb := b.categories[category]
	b.mu.RUnlock()

	var out []string
	if cb != nil {
		if track == TrackResume {
			for _, q := range firstN(cb.resumeFlow, 5) {
				out = append(out, q.Text)
			}
		} else if set := cb.tracks[track]; set != nil {
			if subTrack != "" && len(set.lists[subTrack]) > 0 {
				for _, q := range firstN(set.lists[subTrack], 3) {
					out = append(out, q.Text)
				}
			} else {
				for _, name := range set.order {
					for _, q := range firstN(set.lists[name], 2) {
						out = append(out, q.Text)
					}
				}
			}
		}
	}

	if len(out) < 5 {
		need := 5 - len(out)
		if need > len(genericQuestions) {
			need = len(genericQuestions)
		}
		out = append(out, genericQuestions[:need]...)
	}
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

// TrackQuestions returns the full ordered question list for a track:
// the named sub-track when present, otherwise the concatenation of all
// sub-tracks in document order. Used when building the initial session
// queue.
func (b *Bank) TrackQuestions(category, track, subTrack string) []string {
	b.mu.RLock()
	cb := b.categories[category]
	b.mu.RUnlock()
	if cb == nil {
		return nil
	}

	var out []string
	if track == TrackResume {
		for _, q := range cb.resumeFlow {
			out = append(out, q.Text)
		}
		return out
	}
	set := cb.tracks[track]
	if set == nil {
		return nil
	}
	if subTrack != "" && len(set.lists[subTrack]) > 0 {
		for _, q := range set.lists[subTrack] {
			out = append(out, q.Text)
		}
		return out
	}
	for _, name := range set.order {
		for _, q := range set.lists[name] {
			out = append(out, q.Text)
		}
	}
	return out
}

func firstN(qs []model.Question, n int) []model.Question {
	if len(qs) < n {
		return qs
	}
	return qs[:n]
}

// Reset clears all loaded questions. Test and reload tooling only.
func (b *Bank) Reset() {
	b.mu.Lock()
	b.categories = make(map[string]*categoryBank)
	b.mu.Unlock()
}
