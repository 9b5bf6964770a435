package gate

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// commonWords is a small seed dictionary used by the gibberish rule (R-002)
// to recognise short real words that wouldn't otherwise pass the
// length-greater-than-2 heuristic.
var commonWords = map[string]bool{
	"a": true, "i": true, "is": true, "it": true, "ok": true, "hi": true,
	"no": true, "go": true, "me": true, "be": true, "do": true, "so": true,
	"up": true, "on": true, "in": true, "to": true, "of": true, "at": true,
}

// spamPatterns backs R-003.
var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(test|asdf|qwerty)+$`),
	regexp.MustCompile(`(?i)\b(buy now|limited time offer|click here|act now|free trial|unsubscribe)\b`),
	regexp.MustCompile(`^\+?[\d\s().-]{7,}$`), // phone-only
	regexp.MustCompile(`^\d+$`),               // digits-only
}

// fillerWords backs R-005.
var fillerWords = map[string]bool{
	"um": true, "uh": true, "like": true, "so": true, "yeah": true,
	"well": true, "basically": true, "actually": true, "literally": true,
	"just": true, "kinda": true, "sorta": true, "okay": true, "ok": true,
	"hmm": true, "er": true, "erm": true, "you": true, "know": true,
}

// socialOnlyPatterns backs R-008, keyed by ISO 639-1 language code. Unknown
// languages fall back to "en".
var socialOnlyPatterns = map[string]*regexp.Regexp{
	"en": regexp.MustCompile(`(?i)^\s*(hi|hello|hey|thanks|thank you|bye|goodbye|ok|okay|yes|no|sure|cool|nice|great|lol|haha)[\s!.,]*$`),
	"es": regexp.MustCompile(`(?i)^\s*(hola|gracias|adiós|chau|vale|sí|no|claro|genial|jaja)[\s!.,¡¿]*$`),
	"fr": regexp.MustCompile(`(?i)^\s*(salut|bonjour|merci|au revoir|d'accord|oui|non|cool|super|mdr)[\s!.,]*$`),
	"de": regexp.MustCompile(`(?i)^\s*(hallo|danke|tschüss|ok|okay|ja|nein|klar|toll|haha)[\s!.,]*$`),
}

func tier1(text string) (reason string, confidence float64, matched bool) {
	if len([]rune(text)) < 3 {
		return "too_short", 1.0, true
	}
	if isGibberish(text) {
		return "gibberish", 0.98, true
	}
	for _, p := range spamPatterns {
		if p.MatchString(text) {
			return "spam_pattern", 0.97, true
		}
	}
	if hasRepeatedUnit(text) {
		return "spam_pattern", 0.97, true
	}
	if hasRepeatedChar(text, 11) {
		return "repeated_char", 0.96, true
	}
	if isFillerHeavy(text) {
		return "filler_ratio", 0.96, true
	}
	return "", 0, false
}

func isGibberish(text string) bool {
	if shannonEntropy(text) <= 4.5 {
		return false
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return false
	}
	real := 0
	for _, w := range words {
		cleaned := strings.ToLower(strings.Trim(w, ".,!?;:'\"()-"))
		if len([]rune(cleaned)) > 2 || commonWords[cleaned] {
			real++
		}
	}
	ratio := float64(real) / float64(len(words))
	return ratio < 0.3
}

func shannonEntropy(s string) float64 {
	freq := map[rune]int{}
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, c := range freq {
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// hasRepeatedUnit is R-003's repeated-unit spam check: a unit of 1-3
// characters occurring six or more times in a row.
func hasRepeatedUnit(s string) bool {
	r := []rune(s)
	for size := 1; size <= 3; size++ {
		for i := 0; i+6*size <= len(r); i++ {
			if strings.HasPrefix(string(r[i:]), strings.Repeat(string(r[i:i+size]), 6)) {
				return true
			}
		}
	}
	return false
}

func hasRepeatedChar(s string, threshold int) bool {
	var last rune
	run := 0
	for _, r := range s {
		if r == last {
			run++
			if run >= threshold {
				return true
			}
		} else {
			last = r
			run = 1
		}
	}
	return false
}

func isFillerHeavy(text string) bool {
	words := strings.Fields(strings.ToLower(text))
	if len(words) < 5 {
		return false
	}
	filler := 0
	for _, w := range words {
		cleaned := strings.Trim(w, ".,!?;:'\"()-")
		if fillerWords[cleaned] {
			filler++
		}
	}
	ratio := float64(filler) / float64(len(words))
	return ratio > 0.9
}

func tier2SemanticEmptiness(text string) (float64, bool) {
	var b strings.Builder
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || isEmoji(r) {
			continue
		}
		b.WriteRune(r)
	}
	if len([]rune(b.String())) < 2 {
		return 0.88, true
	}
	return 0, false
}

func isEmoji(r rune) bool {
	return r >= 0x1F300 && r <= 0x1FAFF || r >= 0x2600 && r <= 0x27BF
}

func tier2AllCaps(text string) (float64, bool) {
	runes := []rune(text)
	if len(runes) <= 10 {
		return 0, false
	}
	letters := 0
	for _, r := range runes {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsLower(r) {
				return 0, false
			}
		}
	}
	if letters >= 5 {
		return 0.85, true
	}
	return 0, false
}

func tier3SocialOnly(text, lang string) (float64, bool) {
	if lang == "" {
		lang = "en"
	}
	pat, ok := socialOnlyPatterns[lang]
	if !ok {
		pat = socialOnlyPatterns["en"]
	}
	if pat.MatchString(text) {
		return 0.70, true
	}
	return 0, false
}

var (
	collapseWhitespace = regexp.MustCompile(`\s+`)
	collapsePunctRuns  = regexp.MustCompile(`[.!?]{3,}`)
)

// cleanup applies T-001/T-002 to PASS-ing text, returning the cleaned text
// and the list of transformations applied.
func cleanup(text string) (string, []Transformation) {
	var transforms []Transformation

	collapsed := collapseWhitespace.ReplaceAllString(text, " ")
	if collapsed != text {
		transforms = append(transforms, Transformation{Type: "T-001", Before: text, After: collapsed})
	}

	final := collapsePunctRuns.ReplaceAllStringFunc(collapsed, func(m string) string {
		return string(m[0]) + string(m[0])
	})
	if final != collapsed {
		transforms = append(transforms, Transformation{Type: "T-002", Before: collapsed, After: final})
	}

	return final, transforms
}
