// Package ingest implements the six-stage ingestion pipeline: receive,
// classify, route, process, stage, and commit.
package ingest

import (
	"time"

	"github.com/hynous/memory-core/internal/model"
)

// Mode selects normal vs. incognito processing.
type Mode string

const (
	ModeNormal    Mode = "normal"
	ModeIncognito Mode = "incognito"
)

// Attachment is a file or media reference carried alongside text.
type Attachment struct {
	Name     string
	MimeType string
	URL      string
}

// Normalized holds the source-normalized content of an input.
type Normalized struct {
	Text        string
	Metadata    map[string]string
	Attachments []Attachment
}

// UserBehaviorContext is the minimal behavior snapshot the classifier needs
// for threshold adjustment; distinct from model.UserBehaviorModel so
// ingestion can be exercised without a live BehaviorPort.
type UserBehaviorContext struct {
	TypicalSaveRate    float64
	PromptResponseRate float64
	PromptsShown       int
	DismissedPrompts   int
	MessagesSincePrompt int
}

// InputContext carries session/user identity and optional behavior data.
type InputContext struct {
	SessionID           string
	UserID              string
	ConversationHistory []string
	UserBehavior        *UserBehaviorContext
}

// Options lets the caller override defaults for a single input.
type Options struct {
	ForceSave       bool
	ContentCategory model.ContentCategory
}

// Source identifies where an input came from.
type Source string

const (
	SourceChat   Source = "chat"
	SourceFile   Source = "file"
	SourceVoice  Source = "voice"
	SourceAPI    Source = "api"
	SourceStream Source = "stream"
)

// Envelope is the Stage 1 RECEIVE output: a fully normalized input ready
// for classification.
type Envelope struct {
	ID         string
	Timestamp  time.Time
	Source     Source
	Mode       Mode
	Raw        any
	Normalized Normalized
	Context    InputContext
	Options    Options
}

// Intent is the classifier's top-level bucket.
type Intent string

const (
	IntentNoise        Intent = "noise"
	IntentQuery        Intent = "query"
	IntentContent      Intent = "content"
	IntentCommand      Intent = "command"
	IntentConversation Intent = "conversation"
)

// SaveSignal further qualifies IntentContent (and IntentNoise/none cases).
type SaveSignal string

const (
	SignalNone     SaveSignal = "none"
	SignalExplicit SaveSignal = "explicit"
	SignalImplicit SaveSignal = "implicit"
	SignalUnclear  SaveSignal = "unclear"
)

// Complexity buckets content by rough size, driving chunking decisions.
type Complexity string

const (
	ComplexityAtomic    Complexity = "atomic"
	ComplexityComposite Complexity = "composite"
	ComplexityDocument  Complexity = "document"
)

// ClassifiedBy names which cascade tier produced a classification.
type ClassifiedBy string

const (
	ByGate         ClassifiedBy = "gate"
	ByFastRules    ClassifiedBy = "fast_rules"
	ByUserLearning ClassifiedBy = "user_learning"
	ByActionVerb   ClassifiedBy = "action_verb"
	ByLLMFallback  ClassifiedBy = "llm_fallback"
)

// GateOutcome is the minimal gate result the classifier consults; decoupled
// from internal/gate.Result so ingest doesn't import gate for its full type.
type GateOutcome struct {
	Rejected   bool
	Confidence float64
}

// Classification is the Stage 2 CLASSIFY output.
type Classification struct {
	Intent          Intent
	SaveSignal      SaveSignal
	Confidence      float64
	ContentCategory model.ContentCategory
	Complexity      Complexity
	ContentType     string
	ActionVerb      string
	ThoughtPath     []string
	Gate            *GateOutcome
	ClassifiedBy    ClassifiedBy
}

// HandlerAction names what Stage 4 PROCESS actually did.
type HandlerAction string

const (
	ActionSaved      HandlerAction = "saved"
	ActionAccumulated HandlerAction = "accumulated"
	ActionQueried    HandlerAction = "queried"
	ActionIgnored    HandlerAction = "ignored"
	ActionPrompted   HandlerAction = "prompted"
)

// UserResponse tracks a Prompt handler's outstanding decision.
type UserResponse string

const (
	ResponsePending  UserResponse = "pending"
	ResponseAccepted UserResponse = "accepted"
	ResponseDismissed UserResponse = "dismissed"
)

// ProcessResult is Stage 4 PROCESS's output.
type ProcessResult struct {
	Action       HandlerAction
	Staged       []model.StagingRecord
	UserResponse UserResponse
	Warning      string
}
