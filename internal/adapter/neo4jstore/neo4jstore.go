// Package neo4jstore implements the graph-facing slice of ports.StorePort
// against Neo4j: node/edge upsert, neighbor traversal, and graph metrics.
// It owns the MERGE/SET Cypher idiom the whole store composite relies on
// for its commit transaction.
package neo4jstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hynous/memory-core/internal/model"
	"github.com/hynous/memory-core/internal/ports"
	"github.com/hynous/memory-core/pkg/repo"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

const nodeLabel = "MemoryNode"

// fallbackRelType is used when an edge's Type sanitizes to the empty string.
const fallbackRelType = "RELATES_TO"

var relTypeSanitizer = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// sanitizeRelType turns an arbitrary edge type into a safe Cypher
// relationship-type identifier.
func sanitizeRelType(t model.EdgeType) string {
	s := relTypeSanitizer.ReplaceAllString(string(t), "")
	s = strings.ToUpper(s)
	if s == "" {
		return fallbackRelType
	}
	return s
}

// GraphStore is the sole owner of Neo4j operations for the memory graph.
// Simple single-node lookups go through the generic pkg/repo.Neo4jRepo, the
// same hybrid the teacher's own GraphStore uses (a generic repo for Get,
// hand-written Cypher for batch writes and traversals).
type GraphStore struct {
	driver neo4j.DriverWithContext
	nodes  *repo.Neo4jRepo[model.Node, string]
}

// New wraps an already-connected Neo4j driver.
func New(driver neo4j.DriverWithContext) *GraphStore {
	return &GraphStore{
		driver: driver,
		nodes:  repo.NewNeo4jRepo[model.Node, string](driver, nodeLabel, nodeToProps, nodeFromRecord),
	}
}

func nodeFromRecord(rec *neo4j.Record) (model.Node, error) {
	dbNode, _, err := neo4j.GetRecordValue[dbtype.Node](rec, "n")
	if err != nil {
		return model.Node{}, err
	}
	return nodeFromProps(dbNode.Props), nil
}

// Close closes the underlying driver.
func (g *GraphStore) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}

func (g *GraphStore) session(ctx context.Context) neo4j.SessionWithContext {
	return g.driver.NewSession(ctx, neo4j.SessionConfig{})
}

func nodeToProps(n model.Node) map[string]any {
	return map[string]any{
		"id":               n.ID,
		"kind":             string(n.Kind),
		"subtype":          n.Subtype,
		"title":            n.Title,
		"body":             n.Body,
		"category":         string(n.Category),
		"created_at":       n.CreatedAt.UnixMilli(),
		"last_accessed_at": n.LastAccessedAt.UnixMilli(),
		"version":          int64(n.Version),
		"lifecycle":        string(n.Lifecycle),
		"retrievability":   n.Retrievability,
		"access_count":     int64(n.AccessCount),
		"inbound_edges":    int64(n.InboundEdges),
		"cluster_id":       n.ClusterID,
		"tags":             n.Tags,
	}
}

func int64Prop(props map[string]any, key string) int64 {
	if v, ok := props[key]; ok {
		if i, ok := v.(int64); ok {
			return i
		}
	}
	return 0
}

func strProp(props map[string]any, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func floatProp(props map[string]any, key string) float64 {
	if v, ok := props[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return 0
}

func timeProp(props map[string]any, key string) time.Time {
	if v, ok := props[key]; ok {
		if i, ok := v.(int64); ok {
			return time.UnixMilli(i).UTC()
		}
	}
	return time.Time{}
}

func nodeFromProps(props map[string]any) model.Node {
	var tags []string
	if raw, ok := props["tags"].([]any); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				tags = append(tags, s)
			}
		}
	}
	return model.Node{
		ID:             strProp(props, "id"),
		Kind:           model.NodeKind(strProp(props, "kind")),
		Subtype:        strProp(props, "subtype"),
		Title:          strProp(props, "title"),
		Body:           strProp(props, "body"),
		Category:       model.ContentCategory(strProp(props, "category")),
		CreatedAt:      timeProp(props, "created_at"),
		LastAccessedAt: timeProp(props, "last_accessed_at"),
		Version:        int(int64Prop(props, "version")),
		Lifecycle:      model.LifecycleState(strProp(props, "lifecycle")),
		Retrievability: floatProp(props, "retrievability"),
		AccessCount:    int(int64Prop(props, "access_count")),
		InboundEdges:   int(int64Prop(props, "inbound_edges")),
		ClusterID:      strProp(props, "cluster_id"),
		Tags:           tags,
	}
}

// GetNode fetches a single node by id, via the generic repo.Neo4jRepo. A
// missing node is reported as (nil, nil): ports.StorePort callers (commit's
// create-vs-update precheck, SSA's rerank lookups) treat absence as routine,
// not exceptional. Any other error — a real session, driver, or cypher
// failure — is propagated rather than collapsed, so a store outage can
// never be misread as "node doesn't exist".
func (g *GraphStore) GetNode(ctx context.Context, id string) (*model.Node, error) {
	n, err := g.nodes.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("neo4jstore: get node %s: %w", id, err)
	}
	return &n, nil
}

// GetNeighbors returns every outgoing edge from nodeID along with the
// neighbor node and the edge's stored weight. Incoming edges are not
// returned.
func (g *GraphStore) GetNeighbors(ctx context.Context, nodeID string) ([]ports.NeighborEdge, error) {
	sess := g.session(ctx)
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(`
		MATCH (a:%s {id: $id})-[r]->(b:%s)
		RETURN b, type(r) AS rel_type, r.edge_id AS edge_id, r.weight AS weight`,
		nodeLabel, nodeLabel)
	result, err := sess.Run(ctx, cypher, map[string]any{"id": nodeID})
	if err != nil {
		return nil, fmt.Errorf("neo4jstore: neighbors of %s: %w", nodeID, err)
	}

	var neighbors []ports.NeighborEdge
	for result.Next(ctx) {
		rec := result.Record()
		dbNode, _, err := neo4j.GetRecordValue[dbtype.Node](rec, "b")
		if err != nil {
			return nil, fmt.Errorf("neo4jstore: decode neighbor of %s: %w", nodeID, err)
		}
		relType, _ := rec.Get("rel_type")
		edgeID, _ := rec.Get("edge_id")
		weight, _ := rec.Get("weight")

		neighborNode := nodeFromProps(dbNode.Props)
		w, _ := weight.(float64)
		edge := model.Edge{
			ID:     stringOrEmpty(edgeID),
			From:   nodeID,
			To:     neighborNode.ID,
			Type:   unsanitizeRelType(stringOrEmpty(relType)),
			Weight: w,
		}
		neighbors = append(neighbors, ports.NeighborEdge{
			Node:   neighborNode,
			Edge:   edge,
			Weight: w,
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("neo4jstore: neighbors iteration for %s: %w", nodeID, err)
	}
	return neighbors, nil
}

func stringOrEmpty(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// unsanitizeRelType maps a Cypher relationship type back to model.EdgeType
// by lowercasing it: every known type, including the fallback RELATES_TO,
// comes back as its enum value, and any other type comes back as its
// lowercased raw string, which model.BaseWeight weighs with its default.
func unsanitizeRelType(rel string) model.EdgeType {
	lower := model.EdgeType(strings.ToLower(rel))
	switch lower {
	case model.EdgeSameEntity, model.EdgeParentChild, model.EdgeContradicts,
		model.EdgeSupports, model.EdgeRelatesTo, model.EdgeUserLinked,
		model.EdgeSupersedes, model.EdgeSimilarTo:
		return lower
	default:
		return lower
	}
}

// GetGraphMetrics reports global graph shape for the reranker's authority
// signal.
func (g *GraphStore) GetGraphMetrics(ctx context.Context) (ports.GraphMetrics, error) {
	sess := g.session(ctx)
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(`
		MATCH (n:%s)
		OPTIONAL MATCH (n)-[r]->()
		RETURN count(DISTINCT n) AS total_nodes, count(r) AS total_edges`, nodeLabel)
	result, err := sess.Run(ctx, cypher, nil)
	if err != nil {
		return ports.GraphMetrics{}, fmt.Errorf("neo4jstore: graph metrics: %w", err)
	}
	rec, err := result.Single(ctx)
	if err != nil {
		return ports.GraphMetrics{}, fmt.Errorf("neo4jstore: graph metrics: %w", err)
	}
	totalNodesRaw, _ := rec.Get("total_nodes")
	totalEdgesRaw, _ := rec.Get("total_edges")
	totalNodes := asInt(totalNodesRaw)
	totalEdges := asInt(totalEdgesRaw)

	avgDegree := 0.0
	if totalNodes > 0 {
		avgDegree = float64(totalEdges) / float64(totalNodes)
	}
	return ports.GraphMetrics{
		TotalNodes: totalNodes,
		TotalEdges: totalEdges,
		AvgDegree:  avgDegree,
	}, nil
}

func asInt(v any) int {
	switch t := v.(type) {
	case int64:
		return int(t)
	case int:
		return t
	default:
		return 0
	}
}

// GetNodeForReranking fetches the thin projection SSA's reranker needs.
func (g *GraphStore) GetNodeForReranking(ctx context.Context, id string) (*ports.RerankRecord, error) {
	sess := g.session(ctx)
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(`
		MATCH (n:%s {id: $id})
		OPTIONAL MATCH (n)<-[in]-()
		RETURN n, count(in) AS inbound`, nodeLabel)
	result, err := sess.Run(ctx, cypher, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("neo4jstore: rerank record %s: %w", id, err)
	}
	rec, err := result.Single(ctx)
	if err != nil {
		return nil, nil
	}
	dbNode, _, err := neo4j.GetRecordValue[dbtype.Node](rec, "n")
	if err != nil {
		return nil, fmt.Errorf("neo4jstore: decode rerank record %s: %w", id, err)
	}
	inboundRaw, _ := rec.Get("inbound")
	props := dbNode.Props
	return &ports.RerankRecord{
		ID:               strProp(props, "id"),
		LastAccessed:     timeProp(props, "last_accessed_at"),
		CreatedAt:        timeProp(props, "created_at"),
		AccessCount:      int(int64Prop(props, "access_count")),
		InboundEdgeCount: asInt(inboundRaw),
		Subtype:          strProp(props, "subtype"),
		Category:         model.ContentCategory(strProp(props, "category")),
	}, nil
}

// CommitBatch upserts staged nodes and their suggested-edges-turned-edges in
// a single managed transaction: any failure means no partial write, mirroring
// the teacher's GraphStore.SaveBatch.
func (g *GraphStore) CommitBatch(ctx context.Context, staged []model.StagingRecord, edges []model.Edge) error {
	if len(staged) == 0 && len(edges) == 0 {
		return nil
	}
	sess := g.session(ctx)
	defer sess.Close(ctx)

	_, err := sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		mergeCypher := fmt.Sprintf("MERGE (n:%s {id: $id}) SET n += $props", nodeLabel)
		for _, rec := range staged {
			if _, err := tx.Run(ctx, mergeCypher, map[string]any{
				"id":    rec.Node.ID,
				"props": nodeToProps(rec.Node),
			}); err != nil {
				return nil, fmt.Errorf("merge node %s: %w", rec.Node.ID, err)
			}
		}

		for _, e := range edges {
			if err := e.Validate(); err != nil {
				return nil, err
			}
			relType := sanitizeRelType(e.Type)
			edgeCypher := fmt.Sprintf(`
				MATCH (a:%s {id: $from}), (b:%s {id: $to})
				MERGE (a)-[r:%s]->(b)
				SET r.edge_id = $edge_id, r.weight = $weight`,
				nodeLabel, nodeLabel, relType)
			if _, err := tx.Run(ctx, edgeCypher, map[string]any{
				"from":    e.From,
				"to":      e.To,
				"edge_id": e.ID,
				"weight":  e.Weight,
			}); err != nil {
				return nil, fmt.Errorf("merge edge %s->%s: %w", e.From, e.To, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("neo4jstore: commit batch: %w", err)
	}
	return nil
}
