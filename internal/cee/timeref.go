package cee

import "regexp"

// timeRefPatterns is the fixed regex list used to detect a time reference in
// a query, mirroring the alternation-table idiom used for entity extraction
// elsewhere in this codebase: a closed set of known phrasings, each compiled
// once and tried in turn rather than merged into one mega-regex, so new
// phrasings can be added without re-deriving the whole expression.
var timeRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(yesterday|today|tomorrow)\b`),
	regexp.MustCompile(`(?i)\b(last|this|next)\s+(second|minute|hour|day|week|month|year|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
	regexp.MustCompile(`\b\d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}(/\d{2,4})?\b`),
	regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\.?\s+\d{1,2}(st|nd|rd|th)?\b`),
	regexp.MustCompile(`(?i)\b\d+\s+(second|minute|hour|day|week|month|year)s?\s+ago\b`),
}

// HasTimeReference reports whether q contains any recognized time phrasing.
func HasTimeReference(q string) bool {
	for _, p := range timeRefPatterns {
		if p.MatchString(q) {
			return true
		}
	}
	return false
}

// StripTimeReferences removes every recognized time phrasing from q,
// leaving whatever semantic content remains (caller collapses whitespace).
func StripTimeReferences(q string) string {
	out := q
	for _, p := range timeRefPatterns {
		out = p.ReplaceAllString(out, " ")
	}
	return out
}
