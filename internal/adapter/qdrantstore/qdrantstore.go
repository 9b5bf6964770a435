// Package qdrantstore implements the vector-facing slice of ports.StorePort
// against Qdrant: embedding upsert, cosine k-NN search, and the
// recently-embedded window CEE's similarity maintenance needs.
package qdrantstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hynous/memory-core/internal/ports"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// VectorStore is the sole owner of Qdrant operations for node embeddings.
type VectorStore struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string

	mu             sync.Mutex
	recentlyAdded  []string // newest-first, capped at recentWindowCap
}

const recentWindowCap = 1000

// New dials Qdrant at addr and returns a VectorStore bound to collection.
func New(addr, collection string) (*VectorStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrantstore: dial %s: %w", addr, err)
	}
	return &VectorStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// Close closes the underlying gRPC connection.
func (v *VectorStore) Close() error {
	return v.conn.Close()
}

// EnsureCollection creates the node-embedding collection if it doesn't
// already exist, sized to dims with cosine distance (CEE embeddings are
// compared by cosine similarity throughout spec.md §3).
func (v *VectorStore) EnsureCollection(ctx context.Context, dims int) error {
	list, err := v.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("qdrantstore: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == v.collection {
			return nil
		}
	}
	_, err = v.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: v.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrantstore: create collection %s: %w", v.collection, err)
	}
	return nil
}

// Upsert stores one point per committed node. Payload carries node_id so
// VectorSearch can map hits back to graph node ids.
func (v *VectorStore) Upsert(ctx context.Context, nodeID string, vector []float32) error {
	if len(vector) == 0 {
		return nil
	}
	point := &pb.PointStruct{
		Id: &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: nodeID}},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: vector}},
		},
		Payload: map[string]*pb.Value{
			"node_id": {Kind: &pb.Value_StringValue{StringValue: nodeID}},
		},
	}
	wait := true
	_, err := v.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: v.collection,
		Wait:           &wait,
		Points:         []*pb.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("qdrantstore: upsert %s: %w", nodeID, err)
	}

	v.mu.Lock()
	v.recentlyAdded = append([]string{nodeID}, v.recentlyAdded...)
	if len(v.recentlyAdded) > recentWindowCap {
		v.recentlyAdded = v.recentlyAdded[:recentWindowCap]
	}
	v.mu.Unlock()
	return nil
}

// VectorSearch performs cosine k-NN search; Score is Qdrant's cosine score,
// already in [0,1] for normalized embeddings per spec.md §5.2.
func (v *VectorStore) VectorSearch(ctx context.Context, vector []float32, limit int) ([]ports.ScoredHit, error) {
	if len(vector) == 0 || limit <= 0 {
		return nil, nil
	}
	resp, err := v.points.Search(ctx, &pb.SearchPoints{
		CollectionName: v.collection,
		Vector:         vector,
		Limit:          uint64(limit),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrantstore: search: %w", err)
	}
	hits := make([]ports.ScoredHit, 0, len(resp.GetResult()))
	for _, r := range resp.GetResult() {
		nodeID := r.GetId().GetUuid()
		if payload := r.GetPayload(); payload != nil {
			if v, ok := payload["node_id"]; ok && v.GetStringValue() != "" {
				nodeID = v.GetStringValue()
			}
		}
		hits = append(hits, ports.ScoredHit{NodeID: nodeID, Score: float64(r.GetScore())})
	}
	return hits, nil
}

// RecentlyEmbedded returns up to limit ids most recently embedded, newest
// first, for CEE's similar_to maintenance window (spec.md §3.5).
//
// Tracking this window in-process (rather than querying Qdrant, which has
// no native "most recently upserted" ordering) mirrors the teacher's
// in-memory caching idioms elsewhere in the pack; it is lost on restart,
// which only degrades similar_to backfill, never correctness.
func (v *VectorStore) RecentlyEmbedded(ctx context.Context, limit int) ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if limit <= 0 || limit > len(v.recentlyAdded) {
		limit = len(v.recentlyAdded)
	}
	out := make([]string, limit)
	copy(out, v.recentlyAdded[:limit])
	return out, nil
}

// sortHitsDescending is exposed for callers that build hits outside Search
// (e.g. tests) and need the same ordering guarantee VectorSearch provides.
func sortHitsDescending(hits []ports.ScoredHit) {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
}
