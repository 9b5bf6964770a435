package ingest

import "testing"

func TestRoute(t *testing.T) {
	cases := []struct {
		name string
		c    Classification
		want HandlerName
	}{
		{"noise", Classification{Intent: IntentNoise}, HandlerIgnore},
		{"query", Classification{Intent: IntentQuery}, HandlerQuery},
		{"content with no save signal is a query", Classification{Intent: IntentContent, SaveSignal: SignalNone}, HandlerQuery},
		{"content explicit save", Classification{Intent: IntentContent, SaveSignal: SignalExplicit}, HandlerDirectSave},
		{"content implicit save", Classification{Intent: IntentContent, SaveSignal: SignalImplicit}, HandlerAccumulator},
		{"content unclear save", Classification{Intent: IntentContent, SaveSignal: SignalUnclear}, HandlerPrompt},
		{"command", Classification{Intent: IntentCommand}, HandlerCommand},
		{"conversation", Classification{Intent: IntentConversation}, HandlerResponse},
	}
	for _, c := range cases {
		if got := Route(c.c); got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}
