package ingest

import (
	"strings"

	"github.com/hynous/memory-core/internal/model"
)

// DedupThreshold is the default Jaccard similarity floor above which two
// staged nodes in the same batch are considered duplicates.
const DedupThreshold = 0.90

// Stage runs Stage 5 STAGE: filter invalid records, then drop later
// duplicates within the batch via pairwise Jaccard over lowercased token
// sets, keeping the earlier node.
func Stage(records []model.StagingRecord, dedupThreshold float64) []model.StagingRecord {
	if dedupThreshold <= 0 {
		dedupThreshold = DedupThreshold
	}
	valid := make([]model.StagingRecord, 0, len(records))
	for _, r := range records {
		if r.Node.Title == "" || !model.ValidBody(r.Node.Body) {
			continue
		}
		valid = append(valid, r)
	}

	tokenSets := make([]map[string]bool, len(valid))
	for i, r := range valid {
		tokenSets[i] = tokenSet(r.Node.Body)
	}

	kept := make([]bool, len(valid))
	for i := range valid {
		kept[i] = true
	}
	for i := 0; i < len(valid); i++ {
		if !kept[i] {
			continue
		}
		for j := i + 1; j < len(valid); j++ {
			if !kept[j] {
				continue
			}
			if jaccard(tokenSets[i], tokenSets[j]) >= dedupThreshold {
				kept[j] = false
			}
		}
	}

	out := make([]model.StagingRecord, 0, len(valid))
	for i, r := range valid {
		if kept[i] {
			out = append(out, r)
		}
	}
	return out
}

func tokenSet(s string) map[string]bool {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
