// Package gate implements the sub-5ms rule-based admission controller
// described in spec.md §4.1. It is a pure function of its input and a
// frozen clock; the only impurity is reading time.Now for latency
// measurement.
package gate

import (
	"strings"
	"time"
)

// Decision is the gate's verdict.
type Decision string

const (
	Bypass  Decision = "BYPASS"
	Pass    Decision = "PASS"
	Reject  Decision = "REJECT"
	Prompt  Decision = "PROMPT"
)

// Transformation records a single cleanup applied to PASS-ing input.
type Transformation struct {
	Type   string
	Before string
	After  string
}

// BypassInfo explains why a BYPASS decision fired.
type BypassInfo struct {
	Source string
}

// Result is the gate's full verdict.
type Result struct {
	Decision        Decision
	Confidence      float64
	Reasons         []string
	Transformations []Transformation
	Bypass          *BypassInfo
	LatencyMs       float64
}

// Config tunes the gate's thresholds. Zero value uses spec defaults.
type Config struct {
	RejectThreshold float64
	PromptThreshold float64
}

// DefaultConfig returns the spec's default thresholds.
func DefaultConfig() Config {
	return Config{RejectThreshold: 0.95, PromptThreshold: 0.80}
}

// Clock is overridable for deterministic tests; defaults to time.Now.
var Clock = time.Now

// Run evaluates the gate filter against an envelope.
func Run(e Envelope, cfg Config) Result {
	start := Clock()
	if cfg.RejectThreshold == 0 {
		cfg = DefaultConfig()
	}

	if r, ok := checkBypass(e); ok {
		r.LatencyMs = since(start)
		return r
	}

	text := normalizeWhitespace(e.Text)

	// Tier 1: first match wins, immediate REJECT.
	if reason, conf, ok := tier1(text); ok {
		return Result{
			Decision:   Reject,
			Confidence: conf,
			Reasons:    []string{reason},
			LatencyMs:  since(start),
		}
	}

	// Tier 2 + 3: accumulate, take max.
	maxConf := 0.0
	var reasons []string
	if conf, ok := tier2SemanticEmptiness(text); ok {
		reasons = append(reasons, "semantic_emptiness")
		maxConf = maxF(maxConf, conf)
	}
	if conf, ok := tier2AllCaps(text); ok {
		reasons = append(reasons, "all_caps")
		maxConf = maxF(maxConf, conf)
	}
	if conf, ok := tier3SocialOnly(text, e.Metadata.Language); ok {
		reasons = append(reasons, "social_only")
		maxConf = maxF(maxConf, conf)
	}

	switch {
	case maxConf >= cfg.RejectThreshold:
		return Result{Decision: Reject, Confidence: maxConf, Reasons: reasons, LatencyMs: since(start)}
	case maxConf >= cfg.PromptThreshold:
		return Result{Decision: Prompt, Confidence: maxConf, Reasons: reasons, LatencyMs: since(start)}
	default:
		_, transforms := cleanup(text)
		reasons = append(reasons, "uncertain")
		return Result{
			Decision:        Pass,
			Confidence:      maxConf,
			Reasons:         reasons,
			Transformations: transforms,
			LatencyMs:       since(start),
		}
	}
}

func since(start time.Time) float64 {
	return float64(Clock().Sub(start).Microseconds()) / 1000.0
}

func maxF(a, b float64) float64 {
	if b > a {
		return b
	}
	return a
}

func checkBypass(e Envelope) (Result, bool) {
	switch {
	case e.Source == SourceAPI && e.Metadata.ForceSave:
		return bypassResult("forced_save_api"), true
	case e.Source == SourceFile:
		return bypassResult("file_upload"), true
	case e.Source == SourceVoice && e.Metadata.Whisper:
		return bypassResult("whisper_voice"), true
	case e.Metadata.IsManualNote:
		return bypassResult("manual_note"), true
	}
	return Result{}, false
}

func bypassResult(source string) Result {
	return Result{
		Decision:   Bypass,
		Confidence: 1.0,
		Reasons:    []string{"bypass:" + source},
		Bypass:     &BypassInfo{Source: source},
	}
}

func normalizeWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
