package ssa

import (
	"errors"
	"fmt"
	"time"

	"github.com/hynous/memory-core/internal/model"
)

// ErrInvalidFilter is the FilterError sentinel: an invalid filter shape is
// rejected before any I/O, per spec.md §7.
var ErrInvalidFilter = errors.New("ssa: invalid filter")

// FilterSpec is the uncompiled, wire-shaped filter request per spec.md §4.4.
type FilterSpec struct {
	DateRange           *DateRangeSpec
	LastAccessedDays    int // last_accessed.within_days; 0 = unset
	Types               []model.NodeKind
	ExcludeTypes        []model.NodeKind
	Clusters            []string
	Tags                []string // ALL
	TagsAny             []string // ANY
	ExcludeTags         []string
	Relationships    []model.EdgeType // whitelist for seeding and spreading
	ConnectedTo      string
	WithinHops       int
}

// CompiledFilter holds the pure node/edge predicates plus the
// connected_to/within_hops constraint, which execute.go resolves into a
// reachable-id set via one BFS before ANDing it into the node predicate.
type CompiledFilter struct {
	Node          func(*model.Node) bool
	Edge          func(model.Edge) bool
	Relationships []model.EdgeType
	ConnectedTo   string
	WithinHops    int
}

// Compile validates and compiles a FilterSpec into pure predicates. A nil
// spec compiles to an accept-everything filter. now anchors the
// last_accessed.within_days window so the resulting predicate stays pure.
func Compile(spec *FilterSpec, now time.Time) (*CompiledFilter, error) {
	if spec == nil {
		return &CompiledFilter{
			Node: func(*model.Node) bool { return true },
			Edge: func(model.Edge) bool { return true },
		}, nil
	}

	if spec.DateRange != nil && spec.DateRange.After != nil && spec.DateRange.Before != nil {
		if spec.DateRange.After.After(*spec.DateRange.Before) {
			return nil, fmt.Errorf("%w: date_range.after must not be after date_range.before", ErrInvalidFilter)
		}
	}
	if spec.LastAccessedDays < 0 {
		return nil, fmt.Errorf("%w: last_accessed.within_days must be > 0", ErrInvalidFilter)
	}
	if spec.ConnectedTo != "" && (spec.WithinHops < 1 || spec.WithinHops > 10) {
		return nil, fmt.Errorf("%w: within_hops must be in [1,10]", ErrInvalidFilter)
	}

	excludeTypes := toSet(spec.ExcludeTypes)
	types := toSet(spec.Types)
	clusters := toStringSet(spec.Clusters)
	tagsAll := toStringSet(spec.Tags)
	tagsAny := toStringSet(spec.TagsAny)
	excludeTags := toStringSet(spec.ExcludeTags)

	var lastAccessedCutoff time.Time
	if spec.LastAccessedDays > 0 {
		lastAccessedCutoff = now.AddDate(0, 0, -spec.LastAccessedDays)
	}

	node := func(n *model.Node) bool {
		if n == nil {
			return false
		}
		if spec.DateRange != nil {
			if spec.DateRange.After != nil && n.CreatedAt.Before(*spec.DateRange.After) {
				return false
			}
			if spec.DateRange.Before != nil && n.CreatedAt.After(*spec.DateRange.Before) {
				return false
			}
		}
		if !lastAccessedCutoff.IsZero() && n.LastAccessedAt.Before(lastAccessedCutoff) {
			return false
		}
		if len(types) > 0 && !types[n.Kind] {
			return false
		}
		if len(excludeTypes) > 0 && excludeTypes[n.Kind] {
			return false
		}
		if len(clusters) > 0 && !clusters[n.ClusterID] {
			return false
		}
		if len(tagsAll) > 0 && !hasAllTags(n.Tags, tagsAll) {
			return false
		}
		if len(tagsAny) > 0 && !hasAnyTag(n.Tags, tagsAny) {
			return false
		}
		if len(excludeTags) > 0 && hasAnyTag(n.Tags, excludeTags) {
			return false
		}
		return true
	}

	relSet := toEdgeTypeSet(spec.Relationships)
	edge := func(e model.Edge) bool {
		if len(relSet) > 0 && !relSet[e.Type] {
			return false
		}
		return true
	}

	return &CompiledFilter{
		Node:          node,
		Edge:          edge,
		Relationships: spec.Relationships,
		ConnectedTo:   spec.ConnectedTo,
		WithinHops:    spec.WithinHops,
	}, nil
}

func toSet(kinds []model.NodeKind) map[model.NodeKind]bool {
	if len(kinds) == 0 {
		return nil
	}
	set := make(map[model.NodeKind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}

func toEdgeTypeSet(types []model.EdgeType) map[model.EdgeType]bool {
	if len(types) == 0 {
		return nil
	}
	set := make(map[model.EdgeType]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}

func toStringSet(ss []string) map[string]bool {
	if len(ss) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ss))
	for _, s := range ss {
		set[s] = true
	}
	return set
}

func hasAllTags(tags []string, want map[string]bool) bool {
	have := toStringSet(tags)
	for t := range want {
		if !have[t] {
			return false
		}
	}
	return true
}

func hasAnyTag(tags []string, want map[string]bool) bool {
	for _, t := range tags {
		if want[t] {
			return true
		}
	}
	return false
}
