package bank

import (
	"log"

	"intervue/internal/model"
)

// Built-in question sets installed when a source document cannot be
// loaded. Each category carries at least 5 resume-flow questions plus
// sub-track material, so every track can still serve fallbacks.

var mbaFallback = struct {
	resume   []string
	school   map[string][]string
	interest map[string][]string
}{
	resume: []string{
		"Tell me about your background and why you are pursuing an MBA?",
		"What are your career goals and how will an MBA help you achieve them?",
		"Can you walk me through your resume and highlight your key achievements?",
		"What challenges have you faced in your career and how did you overcome them?",
		"Why did you choose this particular MBA program?",
	},
	school: map[string][]string{
		"IIM": {
			"What do you know about IIMs and why are you interested in joining?",
			"How do you plan to contribute to the IIM community?",
			"What sets IIMs apart from other business schools in your view?",
		},
		"ISB": {
			"Why are you interested in ISB specifically?",
			"How do you plan to leverage ISB's network and resources?",
			"What do you know about ISB's unique features and programs?",
		},
	},
	interest: map[string][]string{
		"General Business": {
			"What leadership experiences have you had in your career?",
			"How do you handle conflict in a team setting?",
			"What is your leadership style and how has it evolved?",
		},
		"Finance": {
			"What interests you about finance and investment?",
			"How do you stay updated with financial markets and trends?",
			"What financial analysis skills do you possess?",
		},
	},
}

var bankFallback = struct {
	resume   []string
	bankType map[string][]string
	tech     map[string][]string
}{
	resume: []string{
		"Why are you interested in a career in the banking sector?",
		"What do you know about the banking industry and current trends?",
		"Can you tell me about your relevant experience in finance or banking?",
		"What skills do you think are essential for a banking professional?",
		"How do you stay updated with banking regulations and policies?",
	},
	bankType: map[string][]string{
		"Public Sector Banks": {
			"What do you know about public sector banks in India?",
			"How do you think public sector banks differ from private banks?",
			"What role do you think public sector banks play in financial inclusion?",
		},
		"Private Banks": {
			"What attracts you to private sector banking?",
			"How do you think private banks compete in the market?",
			"What innovations in private banking interest you most?",
		},
	},
	tech: map[string][]string{
		"Banking Knowledge": {
			"Can you explain the difference between retail and corporate banking?",
			"What do you understand about risk management in banking?",
			"How do you think digital banking is transforming the industry?",
		},
		"Logical Reasoning": {
			"If a customer has a complex financial situation, how would you analyze it?",
			"How would you approach solving a banking-related problem step by step?",
			"Can you think of a situation where you had to use logical reasoning at work?",
		},
	},
}

// InstallFallback replaces a category's question sets with the built-in
// lists. Called when Load returns false.
func (b *Bank) InstallFallback(category string) {
	cb := &categoryBank{tracks: make(map[string]*subTrackSet)}

	switch category {
	case CategoryMBA:
		for _, text := range mbaFallback.resume {
			cb.resumeFlow = append(cb.resumeFlow, model.Question{Text: text, Kind: model.KindOf(text)})
		}
		installSet(cb, TrackSchoolBased, []string{"IIM", "ISB"}, mbaFallback.school)
		installSet(cb, TrackInterestAreas, []string{"General Business", "Finance"}, mbaFallback.interest)
	case CategoryBank:
		for _, text := range bankFallback.resume {
			cb.resumeFlow = append(cb.resumeFlow, model.Question{Text: text, Kind: model.KindOf(text)})
		}
		installSet(cb, TrackBankType, []string{"Public Sector Banks", "Private Banks"}, bankFallback.bankType)
		installSet(cb, TrackTechnicalAnalytical, []string{"Banking Knowledge", "Logical Reasoning"}, bankFallback.tech)
	default:
		log.Printf("[Bank] InstallFallback: unknown category %q", category)
		return
	}

	b.mu.Lock()
	b.categories[category] = cb
	b.mu.Unlock()
	log.Printf("[Bank] Installed built-in fallback questions for category %q", category)
}

func installSet(cb *categoryBank, track string, order []string, lists map[string][]string) {
	set := newSubTrackSet()
	for _, name := range order {
		for _, text := range lists[name] {
			set.add(name, model.Question{Text: text, Kind: model.KindOf(text)})
		}
	}
	cb.tracks[track] = set
}
