package model

// SessionState tracks prompt fatigue within the current session.
type SessionState struct {
	PromptsShown        int
	MessagesSincePrompt int
}

// UserBehaviorModel is a per-user prior consulted by the ingestion classifier
// to tilt save/prompt thresholds.
type UserBehaviorModel struct {
	TypicalSaveRate     float64
	PromptResponseRate  float64
	DismissedPrompts    int
	AlwaysSave          []string
	NeverSave           []string
	Session             SessionState
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AdjustedThreshold implements spec.md §4.2's threshold-adjustment formula:
// adjusted = clamp(base - 0.2*typicalSaveRate + 0.1*(1-promptResponseRate), 0.4, 0.95).
func (u UserBehaviorModel) AdjustedThreshold(base float64) float64 {
	adj := base - 0.2*u.TypicalSaveRate + 0.1*(1-u.PromptResponseRate)
	return Clamp(adj, 0.4, 0.95)
}
