package corpus

import "strings"

// stopWords is a compact English stop-word list applied before stemming.
// Matching happens on the lowercased surface form.
var stopWords = map[string]struct{}{}

// AddStopWords extends the stop-word list, typically from configuration at
// startup. Not safe to call concurrently with tokenization.
func AddStopWords(words ...string) {
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			stopWords[w] = struct{}{}
		}
	}
}

func init() {
	for _, w := range []string{
		"about", "above", "after", "again", "all", "also", "am", "an", "and",
		"any", "are", "as", "at", "be", "because", "been", "before", "being",
		"below", "between", "both", "but", "by", "can", "cannot", "could",
		"did", "do", "does", "doing", "down", "during", "each", "few", "for",
		"from", "further", "had", "has", "have", "having", "he", "her", "here",
		"hers", "him", "his", "how", "if", "in", "into", "is", "it", "its",
		"itself", "me", "more", "most", "my", "no", "nor", "not", "of", "off",
		"on", "once", "only", "or", "other", "our", "ours", "out", "over",
		"own", "same", "she", "should", "so", "some", "such", "than", "that",
		"the", "their", "theirs", "them", "then", "there", "these", "they",
		"this", "those", "through", "to", "too", "under", "until", "up",
		"very", "was", "we", "were", "what", "when", "where", "which", "while",
		"who", "whom", "why", "will", "with", "would", "you", "your", "yours",
	} {
		stopWords[w] = struct{}{}
	}
}
