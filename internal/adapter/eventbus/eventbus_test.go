package eventbus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

func startTestNATS(t *testing.T) *nats.Conn {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Port: -1})
	if err != nil {
		t.Fatal(err)
	}
	srv.Start()
	if !srv.ReadyForConnections(3 * time.Second) {
		t.Fatal("nats not ready")
	}
	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		nc.Close()
		srv.Shutdown()
	})
	return nc
}

func TestPublish_DeliversJSONPayload(t *testing.T) {
	nc := startTestNATS(t)
	bus := New(nc, nil)

	ch := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe("node.committed", ch)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	type commitEvent struct {
		NodeID string `json:"node_id"`
	}
	if err := bus.Publish(context.Background(), "node.committed", commitEvent{NodeID: "node_abc"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case msg := <-ch:
		var got commitEvent
		if err := json.Unmarshal(msg.Data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.NodeID != "node_abc" {
			t.Fatalf("expected node_abc, got %q", got.NodeID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for published event")
	}
}

func TestPublish_NilConnIsNoop(t *testing.T) {
	var bus *NATS
	if err := bus.Publish(context.Background(), "any.subject", map[string]string{"k": "v"}); err != nil {
		t.Fatalf("expected nil-receiver publish to no-op, got %v", err)
	}

	bus = New(nil, nil)
	if err := bus.Publish(context.Background(), "any.subject", map[string]string{"k": "v"}); err != nil {
		t.Fatalf("expected nil-conn publish to no-op, got %v", err)
	}
}
