// Package cee implements the Contextual Embedding Ecosystem: deterministic
// context-prefix generation, the provider-fallback embedding service,
// hybrid dense+BM25 scoring, query analysis, and similarity-edge
// maintenance.
package cee

import (
	"fmt"
	"strings"
	"time"

	"github.com/hynous/memory-core/internal/model"
)

// Episode is the minimal source-episode context needed to build a prefix
// for a concept or chunk node.
type Episode struct {
	Title   string
	Subtype string
}

// ClusterInfo carries the topical cluster a node belongs to, used both in
// prefix generation and in minimum-context expansion.
type ClusterInfo struct {
	Name        string
	Description string
	Keywords    []string
}

// PrefixInput gathers everything the template selector needs. Not every
// field applies to every (nodeType, sourceType) pair; unused fields are
// simply ignored by the chosen template.
type PrefixInput struct {
	NodeType      model.NodeKind
	NodeSubtype   string
	SourceType    model.SourceType
	Title         string
	Body          string
	SourceEpisode *Episode
	ClusterInfo   *ClusterInfo

	// episode fields
	Date         time.Time
	HasDate      bool
	DurationMin  int
	Participants []string

	// chunk fields
	ChunkIndex int
	ChunkTotal int
	ParentNode string
	Section    string

	// raw|document fields
	ContentType string
}

// GenerateContextPrefix selects a template by (nodeType, sourceType) and
// renders it per spec.md §4.3. Dates format as "MMM D YYYY"; empty
// parenthesized segments are stripped and whitespace is collapsed.
func GenerateContextPrefix(in PrefixInput) string {
	var raw string
	switch in.NodeType {
	case model.KindConcept:
		if in.SourceType == model.SourceManual {
			raw = conceptManualPrefix(in)
		} else {
			raw = conceptExtractionPrefix(in)
		}
	case model.KindEpisode:
		raw = episodePrefix(in)
	case model.KindChunk:
		raw = chunkPrefix(in)
	case model.KindSection:
		raw = sectionPrefix(in)
	case model.KindNote:
		raw = notePrefix(in)
	case model.KindRaw, model.KindDocument:
		raw = archivePrefix(in)
	default:
		raw = queryPrefix(in)
	}
	prefix := collapseWhitespace(stripEmptyParens(raw))
	return expandMinimumContext(prefix, in)
}

func conceptExtractionPrefix(in PrefixInput) string {
	source, sourceType := "", ""
	if in.SourceEpisode != nil {
		source = in.SourceEpisode.Title
		sourceType = in.SourceEpisode.Subtype
	}
	cluster := ""
	if in.ClusterInfo != nil {
		cluster = in.ClusterInfo.Name
	}
	return fmt.Sprintf("[%s] From %s (%s). %s.", in.NodeSubtype, source, sourceType, cluster)
}

func conceptManualPrefix(in PrefixInput) string {
	cluster := ""
	if in.ClusterInfo != nil {
		cluster = in.ClusterInfo.Name
	}
	return fmt.Sprintf("[%s] Created by user. %s.", in.NodeSubtype, cluster)
}

func episodePrefix(in PrefixInput) string {
	date := ""
	if in.HasDate {
		date = formatPrefixDate(in.Date)
	}
	participants := strings.Join(in.Participants, ", ")
	return fmt.Sprintf("[%s] %s, %dmin. %s.", in.NodeSubtype, date, in.DurationMin, participants)
}

func chunkPrefix(in PrefixInput) string {
	return fmt.Sprintf("[Chunk %d/%d] %s. Section: %s.", in.ChunkIndex, in.ChunkTotal, in.ParentNode, in.Section)
}

func sectionPrefix(in PrefixInput) string {
	return fmt.Sprintf("[Section] %s. %s.", in.ParentNode, in.Title)
}

func notePrefix(in PrefixInput) string {
	cluster := ""
	if in.ClusterInfo != nil {
		cluster = in.ClusterInfo.Name
	}
	return fmt.Sprintf("[note] %s. %s.", cluster, in.Title)
}

func archivePrefix(in PrefixInput) string {
	return fmt.Sprintf("[archive: %s] %s.", in.ContentType, in.Title)
}

func queryPrefix(in PrefixInput) string {
	return fmt.Sprintf("[Query] %s", in.Body)
}

// formatPrefixDate renders a date as "MMM D YYYY", e.g. "Mar 4 2026".
func formatPrefixDate(t time.Time) string {
	return fmt.Sprintf("%s %d %d", t.Month().String()[:3], t.Day(), t.Year())
}

// stripEmptyParens removes "()" groups left over when an interpolated
// segment was empty, e.g. "From  ()." -> "From .".
func stripEmptyParens(s string) string {
	for {
		idx := strings.Index(s, "()")
		if idx < 0 {
			return s
		}
		s = s[:idx] + s[idx+2:]
	}
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// expandMinimumContext appends Topic: / Keywords: segments when the
// rendered prefix is too short to carry useful provenance into the vector
// space, per spec.md §4.3.
func expandMinimumContext(prefix string, in PrefixInput) string {
	if in.ClusterInfo == nil {
		return prefix
	}
	if len([]rune(prefix)) < 10 && in.ClusterInfo.Description != "" {
		prefix = collapseWhitespace(prefix + " Topic: " + in.ClusterInfo.Description)
	}
	if len([]rune(prefix)) < 50 && len(in.ClusterInfo.Keywords) > 0 {
		kw := in.ClusterInfo.Keywords
		if len(kw) > 5 {
			kw = kw[:5]
		}
		prefix = collapseWhitespace(prefix + " Keywords: " + strings.Join(kw, ", "))
	}
	return prefix
}
