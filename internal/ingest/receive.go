package ingest

import (
	"strings"
	"time"

	"github.com/hynous/memory-core/internal/idgen"
)

// RawInput is the unprocessed form of an input before source-specific
// normalization. Exactly one of the typed fields is meaningful for a given
// Source.
type RawInput struct {
	Source Source
	Mode   Mode

	// chat / voice
	Text string

	// file
	FileName string
	MimeType string
	Content  string

	// api: either a bare string (Text) or an object with content/metadata
	APIContent  string
	APIMetadata map[string]string

	Context InputContext
	Options Options
}

// Receive builds the Stage 1 envelope, applying per-source normalization
// rules from spec.md §4.2.
func Receive(in RawInput, now time.Time) Envelope {
	env := Envelope{
		ID:        idgen.New(idgen.PrefixInput, now.UnixMilli()),
		Timestamp: now,
		Source:    in.Source,
		Mode:      in.Mode,
		Raw:       in,
		Context:   in.Context,
		Options:   in.Options,
	}
	if env.Mode == "" {
		env.Mode = ModeNormal
	}

	switch in.Source {
	case SourceChat:
		env.Normalized = Normalized{Text: strings.TrimSpace(in.Text)}
	case SourceFile:
		env.Normalized = Normalized{
			Text:     in.Content,
			Metadata: map[string]string{"fileName": in.FileName, "mimeType": in.MimeType},
		}
	case SourceVoice:
		env.Normalized = Normalized{
			Text:     strings.TrimSpace(in.Text),
			Metadata: map[string]string{"whisperProcessed": "true"},
		}
	case SourceAPI:
		if in.APIContent != "" || in.APIMetadata != nil {
			env.Normalized = Normalized{Text: in.APIContent, Metadata: in.APIMetadata}
		} else {
			env.Normalized = Normalized{Text: in.Text}
		}
	case SourceStream:
		env.Normalized = Normalized{
			Text:     in.Text,
			Metadata: map[string]string{"isBuffered": "true"},
		}
	default:
		env.Normalized = Normalized{Text: in.Text}
	}
	return env
}

// IsIncognitoShortCircuit reports whether an envelope should be ignored
// immediately: incognito mode without a forced save.
func IsIncognitoShortCircuit(env Envelope) bool {
	return env.Mode == ModeIncognito && !env.Options.ForceSave
}

// ShortCircuitResult is the Ignore outcome for an incognito input.
func ShortCircuitResult() ProcessResult {
	return ProcessResult{
		Action:  ActionIgnored,
		Warning: "incognito mode without forceSave: input ignored",
	}
}
