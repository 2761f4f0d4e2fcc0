package ai

import (
	"regexp"
	"strings"

	"github.com/sereno-app/sereno-api/internal/domain"
)

// Keyword lexicons for coarse sentiment scoring. Substring matches are
// counted; majority wins, ties are neutral.
var (
	positiveWords = []string{
		"good", "great", "happy", "positive", "wonderful", "excellent",
		"amazing", "better", "hope", "progress", "helpful",
	}
	negativeWords = []string{
		"sad", "depressed", "anxious", "worried", "difficult", "hard",
		"struggle", "pain", "hurt", "crisis", "hopeless",
	}
)

// categoryPatterns maps mental-health topic tags to the keyword families
// that trigger them.
var categoryPatterns = map[string]*regexp.Regexp{
	"anxiety":       regexp.MustCompile(`anxi|worry|panic|nervous`),
	"depression":    regexp.MustCompile(`depress|sad|hopeless|unhappy`),
	"sleep":         regexp.MustCompile(`sle(ep|pt)|insomnia|tired|fatigue|\brest`),
	"stress":        regexp.MustCompile(`stress|overwhelm|pressure`),
	"relationships": regexp.MustCompile(`relationship|family|friend`),
	"work":          regexp.MustCompile(`\bwork\b|\bjob\b|career`),
	"trauma":        regexp.MustCompile(`trauma|ptsd|flashback|nightmare|abuse`),
	"crisis":        regexp.MustCompile(`suicid|\bharm|kill myself|end it all|\bdie\b|\bdying\b`),
}

// categoryOrder fixes the output ordering so extraction is
// deterministic regardless of map iteration.
var categoryOrder = []string{
	"anxiety", "depression", "sleep", "stress",
	"relationships", "work", "trauma", "crisis",
}

// AnalyzeSentiment scores text against the positive/negative lexicons.
func AnalyzeSentiment(text string) domain.Sentiment {
	lower := strings.ToLower(text)

	var positive, negative int
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			positive++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return domain.SentimentPositive
	case negative > positive:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

// ExtractCategories tags the combined user message and reply with topic
// categories. Returns ["general"] when no keyword family matches.
func ExtractCategories(userMessage, reply string) []string {
	combined := strings.ToLower(userMessage + " " + reply)

	var categories []string
	for _, name := range categoryOrder {
		if categoryPatterns[name].MatchString(combined) {
			categories = append(categories, name)
		}
	}

	if len(categories) == 0 {
		return []string{"general"}
	}
	return categories
}
