package ingest

// HandlerName identifies which Stage 4 handler a classification routes to.
type HandlerName string

const (
	HandlerIgnore      HandlerName = "Ignore"
	HandlerQuery       HandlerName = "Query"
	HandlerDirectSave  HandlerName = "DirectSave"
	HandlerAccumulator HandlerName = "Accumulator"
	HandlerPrompt      HandlerName = "Prompt"
	HandlerCommand     HandlerName = "Command"
	HandlerResponse    HandlerName = "Response"
)

// Route selects a Stage 4 handler by (intent, saveSignal) per spec.md
// §4.2's routing table.
func Route(c Classification) HandlerName {
	switch {
	case c.Intent == IntentNoise:
		return HandlerIgnore
	case c.Intent == IntentQuery || (c.Intent == IntentContent && c.SaveSignal == SignalNone):
		return HandlerQuery
	case c.Intent == IntentContent && c.SaveSignal == SignalExplicit:
		return HandlerDirectSave
	case c.Intent == IntentContent && c.SaveSignal == SignalImplicit:
		return HandlerAccumulator
	case c.Intent == IntentContent && c.SaveSignal == SignalUnclear:
		return HandlerPrompt
	case c.Intent == IntentCommand:
		return HandlerCommand
	case c.Intent == IntentConversation:
		return HandlerResponse
	default:
		return HandlerQuery
	}
}
