package bank

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBankDoc = `
Resume-Based Questions
1. Walk me through your resume.
2. What attracted you to banking?
3. Describe your most relevant internship.
4. What is your greatest professional achievement?
5. Where do you see yourself in five years?
6. Why should we hire you?

Bank-Type Specific Questions
Public Sector Banks
1. Why do you want to work for a public sector bank?
2. How would you serve rural customers?
3. What do you know about priority sector lending?
Private Banks
1. How do private banks differ from public sector banks?
2. How would you handle sales targets?

Technical & Analytical Questions
Banking Knowledge
1. What is the repo rate?
2. Explain CRR and SLR.
Logical Reasoning
1. What is the next number in the sequence: 2, 5, 10, 17, 26, _
Current Affairs
1. What recent RBI policy change interests you?
`

func TestLoadParsesSections(t *testing.T) {
	b := New()
	require.True(t, b.Load(sampleBankDoc, CategoryBank))

	resume := b.TrackQuestions(CategoryBank, TrackResume, "")
	assert.Len(t, resume, 6)
	assert.Equal(t, "Walk me through your resume?", resume[0])

	public := b.TrackQuestions(CategoryBank, TrackBankType, "Public Sector Banks")
	assert.Len(t, public, 3)

	// No sub-track concatenates all sub-tracks in document order
	all := b.TrackQuestions(CategoryBank, TrackBankType, "")
	assert.Len(t, all, 5)
	assert.Equal(t, "Why do you want to work for a public sector bank?", all[0])
	assert.Equal(t, "How do private banks differ from public sector banks?", all[3])
}

func TestLoadPinsCurrentAffairs(t *testing.T) {
	b := New()
	require.True(t, b.Load(sampleBankDoc, CategoryBank))

	ca := b.TrackQuestions(CategoryBank, TrackTechnicalAnalytical, "Current Affairs")
	require.Len(t, ca, 1)
	assert.Contains(t, ca[0], "RBI policy")
}

func TestLoadAppendsQuestionMark(t *testing.T) {
	b := New()
	require.True(t, b.Load(sampleBankDoc, CategoryBank))
	for _, q := range b.TrackQuestions(CategoryBank, TrackTechnicalAnalytical, "") {
		assert.True(t, strings.HasSuffix(q, "?"), "question %q should end with ?", q)
	}
}

func TestLoadEmptyTextFails(t *testing.T) {
	b := New()
	assert.False(t, b.Load("", CategoryBank))
	assert.False(t, b.Load("   \n  ", CategoryMBA))
	assert.False(t, b.Load(sampleBankDoc, "unknown"))
}

func TestFallbackQuestionsBreadthFirst(t *testing.T) {
	b := New()
	require.True(t, b.Load(sampleBankDoc, CategoryBank))

	// Named sub-track: first 3 of that list
	qs := b.FallbackQuestions(CategoryBank, TrackBankType, "Public Sector Banks")
	require.GreaterOrEqual(t, len(qs), 3)
	assert.Equal(t, "Why do you want to work for a public sector bank?", qs[0])

	// No sub-track: first 2 of every sub-track for diversity
	qs = b.FallbackQuestions(CategoryBank, TrackBankType, "")
	require.GreaterOrEqual(t, len(qs), 4)
	assert.Equal(t, "Why do you want to work for a public sector bank?", qs[0])
	assert.Equal(t, "How would you serve rural customers?", qs[1])
	assert.Equal(t, "How do private banks differ from public sector banks?", qs[2])
}

func TestFallbackQuestionsMinimumFive(t *testing.T) {
	b := New()
	qs := b.FallbackQuestions(CategoryMBA, TrackResume, "")
	assert.Len(t, qs, 5, "empty bank still yields the generic minimum")

	require.True(t, b.Load(sampleBankDoc, CategoryBank))
	qs = b.FallbackQuestions(CategoryBank, TrackTechnicalAnalytical, "Banking Knowledge")
	assert.GreaterOrEqual(t, len(qs), 5)
	assert.LessOrEqual(t, len(qs), 10)
}

func TestFallbackQuestionsDeterministic(t *testing.T) {
	b := New()
	require.True(t, b.Load(sampleBankDoc, CategoryBank))
	first := b.FallbackQuestions(CategoryBank, TrackBankType, "")
	second := b.FallbackQuestions(CategoryBank, TrackBankType, "")
	assert.Equal(t, first, second)
}

func TestInstallFallback(t *testing.T) {
	b := New()
	b.InstallFallback(CategoryMBA)
	b.InstallFallback(CategoryBank)

	assert.NotEmpty(t, b.TrackQuestions(CategoryMBA, TrackResume, ""))
	assert.NotEmpty(t, b.TrackQuestions(CategoryMBA, TrackSchoolBased, ""))
	assert.NotEmpty(t, b.TrackQuestions(CategoryBank, TrackBankType, ""))
	assert.NotEmpty(t, b.TrackQuestions(CategoryBank, TrackTechnicalAnalytical, ""))
}

func TestReset(t *testing.T) {
	b := New()
	require.True(t, b.Load(sampleBankDoc, CategoryBank))
	b.Reset()
	assert.Empty(t, b.TrackQuestions(CategoryBank, TrackResume, ""))
}
