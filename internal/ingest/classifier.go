package ingest

import (
	"context"
	"regexp"
	"strings"

	"github.com/hynous/memory-core/internal/model"
	"github.com/hynous/memory-core/internal/ports"
)

// CategoryThresholds is the adaptive (rule, prompt) confidence floor per
// content category, per spec.md §4.2.
type CategoryThresholds struct {
	Rule   float64
	Prompt float64
}

var defaultThresholds = map[model.ContentCategory]CategoryThresholds{
	model.CategoryIdentity:     {Rule: 0.60, Prompt: 0.50},
	model.CategoryAcademic:     {Rule: 0.70, Prompt: 0.60},
	model.CategoryConversation: {Rule: 0.75, Prompt: 0.65},
	model.CategoryWork:         {Rule: 0.70, Prompt: 0.60},
	model.CategoryTemporal:     {Rule: 0.70, Prompt: 0.60},
	model.CategoryDocument:     {Rule: 0.85, Prompt: 0.75},
	model.CategoryGeneral:      {Rule: 0.75, Prompt: 0.65},
}

// ThresholdsFor returns the category's configured thresholds, defaulting to
// "general" for an unrecognized category.
func ThresholdsFor(c model.ContentCategory) CategoryThresholds {
	if t, ok := defaultThresholds[c]; ok {
		return t
	}
	return defaultThresholds[model.CategoryGeneral]
}

// AdjustedThreshold implements clamp(base - 0.2*typicalSaveRate +
// 0.1*(1-promptResponseRate), 0.4, 0.95).
func AdjustedThreshold(base float64, behavior *UserBehaviorContext) float64 {
	if behavior == nil {
		return clamp(base, 0.4, 0.95)
	}
	adjusted := base - 0.2*behavior.TypicalSaveRate + 0.1*(1-behavior.PromptResponseRate)
	return clamp(adjusted, 0.4, 0.95)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var (
	explicitSavePattern = regexp.MustCompile(`(?i)\b(save|remember|keep|note)\s+(this|that|it)\b|\bdon't forget\b`)
	questionPattern      = regexp.MustCompile(`(?i)^\s*(what|who|when|where|why|how|is|are|do|does|did|can|could|would|should|will)\b.*\?\s*$`)
	socialPattern        = regexp.MustCompile(`(?i)^\s*(hi|hello|hey|thanks|thank you|bye|goodbye|ok|okay|yes|no|yep|nope|sure)\b[\s!.,]*$`)
	commandPattern       = regexp.MustCompile(`(?i)\b(search|find|look up|show me)\b|\bcreate a node\b`)
)

var reviewVerbs = []string{"review", "check", "look over", "go over"}
var saveVerbs = []string{"save", "remember", "keep", "record", "note down"}
var ambiguousVerbs = []string{"look at", "here's", "here is", "check out"}

// Classify runs the Stage 2 hybrid cascade: gate, fast rules, user
// learning, action verbs, LLM fallback — first confident match wins.
func Classify(ctx context.Context, env Envelope, gate *GateOutcome, learning UserLearning, llm ports.LLMPort) Classification {
	text := env.Normalized.Text
	category := env.Options.ContentCategory
	if category == "" {
		category = model.CategoryGeneral
	}

	// 1. Gate (skipped for api).
	if env.Source != SourceAPI && gate != nil && gate.Rejected {
		return Classification{
			Intent:          IntentNoise,
			SaveSignal:      SignalNone,
			Confidence:      gate.Confidence,
			ContentCategory: category,
			Gate:            gate,
			ClassifiedBy:    ByFastRules,
		}
	}

	// 2. Fast rules.
	if c, ok := fastRules(text, category); ok {
		return c
	}

	// 3. User learning.
	lower := strings.ToLower(text)
	for _, phrase := range learning.AlwaysSave {
		if phrase != "" && strings.Contains(lower, strings.ToLower(phrase)) {
			return Classification{
				Intent: IntentContent, SaveSignal: SignalImplicit, Confidence: 0.85,
				ContentCategory: category, ClassifiedBy: ByUserLearning,
			}
		}
	}
	for _, phrase := range learning.NeverSave {
		if phrase != "" && strings.Contains(lower, strings.ToLower(phrase)) {
			return Classification{
				Intent: IntentConversation, SaveSignal: SignalNone, Confidence: 0.85,
				ContentCategory: category, ClassifiedBy: ByUserLearning,
			}
		}
	}

	// 4. Action verbs.
	if c, ok := actionVerbClassification(lower, category); ok {
		return c
	}

	// 5. LLM fallback.
	return llmFallback(ctx, text, category, llm)
}

// UserLearning carries the user's explicit always/never-save phrase lists.
type UserLearning struct {
	AlwaysSave []string
	NeverSave  []string
}

func fastRules(text string, category model.ContentCategory) (Classification, bool) {
	switch {
	case explicitSavePattern.MatchString(text):
		c := Classification{Intent: IntentContent, SaveSignal: SignalExplicit, Confidence: 0.95, ContentCategory: category, ClassifiedBy: ByFastRules}
		return c, true
	case questionPattern.MatchString(text):
		c := Classification{Intent: IntentQuery, SaveSignal: SignalNone, Confidence: 0.90, ContentCategory: category, ClassifiedBy: ByFastRules}
		return c, true
	case socialPattern.MatchString(text):
		c := Classification{Intent: IntentConversation, SaveSignal: SignalNone, Confidence: 0.85, ContentCategory: category, ClassifiedBy: ByFastRules}
		return c, true
	case commandPattern.MatchString(text):
		c := Classification{Intent: IntentCommand, SaveSignal: SignalNone, Confidence: 0.90, ContentCategory: category, ClassifiedBy: ByFastRules}
		return c, true
	}
	return Classification{}, false
}

func actionVerbClassification(lower string, category model.ContentCategory) (Classification, bool) {
	if v, ok := firstMatch(lower, reviewVerbs); ok {
		return Classification{
			Intent: IntentQuery, SaveSignal: SignalNone, Confidence: 0.9,
			ContentCategory: category, ActionVerb: v, ClassifiedBy: ByActionVerb,
		}, true
	}
	if v, ok := firstMatch(lower, saveVerbs); ok {
		return Classification{
			Intent: IntentContent, SaveSignal: SignalExplicit, Confidence: 0.95,
			ContentCategory: category, ActionVerb: v, ClassifiedBy: ByActionVerb,
		}, true
	}
	if v, ok := firstMatch(lower, ambiguousVerbs); ok {
		return Classification{
			Intent: IntentContent, SaveSignal: SignalUnclear, Confidence: 0.5,
			ContentCategory: category, ActionVerb: v, ClassifiedBy: ByActionVerb,
		}, true
	}
	return Classification{}, false
}

// firstMatch returns the earliest-occurring verb phrase in text among verbs,
// scanning left to right for the leftmost match across the whole set.
func firstMatch(text string, verbs []string) (string, bool) {
	bestIdx := -1
	best := ""
	for _, v := range verbs {
		if idx := strings.Index(text, v); idx >= 0 {
			if bestIdx == -1 || idx < bestIdx {
				bestIdx = idx
				best = v
			}
		}
	}
	return best, bestIdx >= 0
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func complexityFromWordCount(n int) Complexity {
	switch {
	case n <= 50:
		return ComplexityAtomic
	case n <= 500:
		return ComplexityComposite
	default:
		return ComplexityDocument
	}
}

func llmFallback(ctx context.Context, text string, category model.ContentCategory, llm ports.LLMPort) Classification {
	confidence := 0.7
	if llm != nil {
		if result, err := llm.ClassifyText(ctx, text); err == nil && result.Confidence > 0 {
			confidence = result.Confidence
		}
	}
	return Classification{
		Intent:          IntentContent,
		SaveSignal:      SignalImplicit,
		Confidence:      confidence,
		ContentCategory: category,
		Complexity:      complexityFromWordCount(wordCount(text)),
		ClassifiedBy:    ByLLMFallback,
	}
}
