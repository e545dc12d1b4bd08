package classifier

import "strings"

// DefaultCategory is assigned when no rule matches.
const DefaultCategory = "general"

// rule maps a set of keywords to a category slug. Rules are evaluated in
// order and the first one with a matching keyword wins.
type rule struct {
	category string
	keywords []string
}

// Classifier infers a topic from article text when the source does not supply
// one. Pure string matching, no I/O; identical input always yields the same
// category.
type Classifier struct {
	rules []rule
}

// New returns a Classifier loaded with the default taxonomy.
func New() *Classifier {
	return &Classifier{rules: defaultRules}
}

var defaultRules = []rule{
	{category: "business", keywords: []string{
		"stock", "market", "economy", "economic", "finance", "financial",
		"invest", "trade", "bank", "inflation", "startup", "revenue",
		"earnings", "ipo", "merger",
	}},
	{category: "sports", keywords: []string{
		"match", "league", "tournament", "championship", "football", "soccer",
		"cricket", "tennis", "basketball", "olympic", "goal", "coach",
		"player", "team wins", "world cup",
	}},
	{category: "technology", keywords: []string{
		"ai", "artificial intelligence", "software", "app", "device",
		"smartphone", "computer", "chip", "robot", "internet", "cyber",
		"startup tech", "gadget", "google", "apple", "microsoft",
	}},
	{category: "health", keywords: []string{
		"health", "hospital", "clinical", "vaccine", "virus", "disease",
		"doctor", "medical", "medicine", "patient", "mental health",
		"outbreak", "therapy",
	}},
	{category: "science", keywords: []string{
		"research", "study finds", "scientist", "space", "nasa", "climate",
		"physics", "biology", "discovery", "experiment", "telescope",
		"species",
	}},
	{category: "entertainment", keywords: []string{
		"film", "movie", "music", "celebrity", "actor", "actress", "album",
		"concert", "festival", "box office", "tv series", "netflix",
		"hollywood",
	}},
}

// Classify returns the category slug for the given title and description.
// Matching is case-insensitive over the concatenated text; whole-word for
// single-word keywords so "ai" does not match inside "rain".
func (c *Classifier) Classify(title, description string) string {
	text := strings.ToLower(title + " " + description)
	words := fieldsSet(text)

	for _, r := range c.rules {
		for _, kw := range r.keywords {
			if strings.Contains(kw, " ") {
				if strings.Contains(text, kw) {
					return r.category
				}
				continue
			}
			if words[kw] {
				return r.category
			}
			// match inflections like "invests", "markets"
			if len(kw) >= 5 {
				for w := range words {
					if strings.HasPrefix(w, kw) {
						return r.category
					}
				}
			}
		}
	}
	return DefaultCategory
}

func fieldsSet(text string) map[string]bool {
	set := make(map[string]bool)
	start := -1
	for i, r := range text {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			set[text[start:i]] = true
			start = -1
		}
	}
	if start >= 0 {
		set[text[start:]] = true
	}
	return set
}
