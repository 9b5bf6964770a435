package ingest

import (
	"regexp"
	"sort"
	"strings"
)

// ChunkConfig configures the Stage 4b chunking algorithm.
type ChunkConfig struct {
	TargetMin      int
	TargetMax      int
	SoftMax        int
	HardMax        int
	OverlapPercent float64
}

// DefaultChunkConfig matches spec.md §4.2's defaults.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{TargetMin: 500, TargetMax: 2000, SoftMax: 3000, HardMax: 5000, OverlapPercent: 0.10}
}

// DocumentChunk is one ordered chunk of a document-scale input.
type DocumentChunk struct {
	Seq          float64
	Text         string
	Heading      string
	HeadingLevel int
	OverlapStart string
	SplitMethod  string
}

var (
	headingPattern  = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)
)

type boundary struct {
	pos     int
	end     int // heading boundaries only: exclusive end of the heading line
	level   int
	heading string
}

// ChunkDocument implements Stage 4b's structural+size chunking algorithm.
func ChunkDocument(text string, cfg ChunkConfig) []DocumentChunk {
	if cfg.TargetMin <= 0 {
		cfg = DefaultChunkConfig()
	}

	boundaries := findBoundaries(text)
	var chunks []DocumentChunk

	if len(boundaries) == 0 {
		chunks = []DocumentChunk{{Seq: 0, Text: text, SplitMethod: "single"}}
	} else {
		chunks = emitBoundaryChunks(text, boundaries, cfg.TargetMin)
	}

	chunks = splitOversizedChunks(chunks, cfg.HardMax)
	applyOverlap(chunks, cfg.OverlapPercent)
	return chunks
}

func findBoundaries(text string) []boundary {
	var bs []boundary
	for _, loc := range headingPattern.FindAllStringSubmatchIndex(text, -1) {
		level := loc[3] - loc[2]
		heading := text[loc[4]:loc[5]]
		bs = append(bs, boundary{pos: loc[0], end: loc[1], level: level, heading: strings.TrimSpace(heading)})
	}
	for idx := strings.Index(text, "\n\n"); idx >= 0; {
		bs = append(bs, boundary{pos: idx})
		next := strings.Index(text[idx+2:], "\n\n")
		if next < 0 {
			break
		}
		idx = idx + 2 + next
	}
	sort.Slice(bs, func(i, j int) bool { return bs[i].pos < bs[j].pos })
	return bs
}

// emitBoundaryChunks splits on heading boundaries unconditionally (a new
// heading always starts a new chunk) and on paragraph boundaries only once
// the accumulated span has reached targetMin, so short paragraphs within a
// section merge into one chunk instead of fragmenting.
func emitBoundaryChunks(text string, boundaries []boundary, targetMin int) []DocumentChunk {
	var chunks []DocumentChunk
	seq := 0.0
	start := 0
	var heading string
	var level int

	emit := func(end int) {
		if end <= start {
			return
		}
		span := text[start:end]
		if len(strings.TrimSpace(span)) == 0 {
			start = end
			return
		}
		chunks = append(chunks, DocumentChunk{Seq: seq, Text: span, Heading: heading, HeadingLevel: level, SplitMethod: "structural"})
		seq++
		start = end
	}

	for _, b := range boundaries {
		if b.heading != "" {
			emit(b.pos)
			heading = b.heading
			level = b.level
			start = b.end
			continue
		}
		if len(text[start:b.pos]) >= targetMin {
			emit(b.pos)
		}
	}
	emit(len(text))

	if len(chunks) == 0 {
		return []DocumentChunk{{Seq: 0, Text: text, SplitMethod: "structural"}}
	}
	return chunks
}

func splitOversizedChunks(chunks []DocumentChunk, hardMax int) []DocumentChunk {
	var out []DocumentChunk
	for _, c := range chunks {
		if len(c.Text) <= hardMax {
			out = append(out, c)
			continue
		}
		out = append(out, splitOneChunk(c, hardMax)...)
	}
	return out
}

func splitOneChunk(c DocumentChunk, hardMax int) []DocumentChunk {
	var out []DocumentChunk
	remaining := c.Text
	frac := 0
	for len(remaining) > hardMax {
		window := remaining[:hardMax]
		sentences := sentencePattern.FindAllStringIndex(window, -1)
		cut := hardMax
		if len(sentences) > 0 {
			cut = sentences[len(sentences)-1][1]
		}
		if cut == 0 {
			cut = hardMax
		}
		out = append(out, DocumentChunk{
			Seq:          c.Seq + float64(frac)*0.01,
			Text:         remaining[:cut],
			Heading:      c.Heading,
			HeadingLevel: c.HeadingLevel,
			SplitMethod:  "size_limit",
		})
		remaining = remaining[cut:]
		frac++
	}
	if len(remaining) > 0 {
		out = append(out, DocumentChunk{
			Seq:          c.Seq + float64(frac)*0.01,
			Text:         remaining,
			Heading:      c.Heading,
			HeadingLevel: c.HeadingLevel,
			SplitMethod:  "size_limit",
		})
	}
	return out
}

func applyOverlap(chunks []DocumentChunk, overlapPercent float64) {
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Text
		n := int(float64(len(prev)) * overlapPercent)
		if n <= 0 {
			continue
		}
		if n > len(prev) {
			n = len(prev)
		}
		chunks[i].OverlapStart = prev[len(prev)-n:]
	}
}
