package question

import (
	"regexp"
	"strings"
)

// explanationMarkers are substrings that mark answer prose scraped into a bank.
var explanationMarkers = []string{
	" is incorrect",
	" is correct",
	"explanation:",
	"solution:",
}

// numberedStatement matches "12. Some statement" with no question mark.
var numberedStatement = regexp.MustCompile(`^\d+\.\s*[A-Z][^?]*$`)

// LooksLikeExplanation reports whether text reads like an answer explanation
// rather than a question. It is a best-effort filter: a genuine question
// phrased as a numbered statement is dropped too.
func LooksLikeExplanation(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, m := range explanationMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return numberedStatement.MatchString(text) && !strings.Contains(text, "?")
}
