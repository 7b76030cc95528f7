package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/peer"
)

// newTestServer spins up an httptest server fronting a WSSwarm's inbound
// handler, returning the ws:// URL a client can dial.
func newTestServer(t *testing.T, swarm *WSSwarm, events chan peer.SwarmEvent) *httptest.Server {
	t.Helper()
	swarm.events = events
	mux := http.NewServeMux()
	mux.HandleFunc("/swarm", swarm.handleInbound)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + "/swarm"
}

func waitForEvent(t *testing.T, events chan peer.SwarmEvent, kind peer.SwarmEventKind) peer.SwarmEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %d", kind)
		}
	}
}

func TestHandshakeRegistersPeerAndDeliversMessage(t *testing.T) {
	serverId := ids.NewPeerId()
	clientId := ids.NewPeerId()

	serverEvents := make(chan peer.SwarmEvent, 16)
	swarm := New(serverId)
	go swarm.dispatchLoop(make(chan struct{}))
	srv := newTestServer(t, swarm, serverEvents)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL), nil)
	if err != nil {
		t.Fatalf("client dial failed: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(helloFrame{PeerId: clientId}); err != nil {
		t.Fatalf("client hello write failed: %v", err)
	}
	var serverHello helloFrame
	if err := conn.ReadJSON(&serverHello); err != nil {
		t.Fatalf("client failed to read server hello: %v", err)
	}
	if serverHello.PeerId != serverId {
		t.Fatalf("expected server hello to carry %v, got %v", serverId, serverHello.PeerId)
	}

	connected := waitForEvent(t, serverEvents, peer.PeerConnected)
	if connected.PeerId != clientId {
		t.Fatalf("expected PeerConnected for %v, got %v", clientId, connected.PeerId)
	}

	payload := []byte(`{"ping":true}`)
	if err := conn.WriteJSON(wireFrame{Topic: peer.TopicChat, Payload: payload}); err != nil {
		t.Fatalf("client write failed: %v", err)
	}

	received := waitForEvent(t, serverEvents, peer.MessageReceived)
	if received.Topic != peer.TopicChat {
		t.Fatalf("expected TopicChat, got %v", received.Topic)
	}
	if string(received.Payload) != string(payload) {
		t.Fatalf("expected payload %q, got %q", payload, received.Payload)
	}
}

func TestPublishBroadcastsToConnectedPeers(t *testing.T) {
	serverId := ids.NewPeerId()
	clientId := ids.NewPeerId()

	serverEvents := make(chan peer.SwarmEvent, 16)
	swarm := New(serverId)
	go swarm.dispatchLoop(make(chan struct{}))
	srv := newTestServer(t, swarm, serverEvents)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL), nil)
	if err != nil {
		t.Fatalf("client dial failed: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(helloFrame{PeerId: clientId}); err != nil {
		t.Fatalf("client hello write failed: %v", err)
	}
	var serverHello helloFrame
	if err := conn.ReadJSON(&serverHello); err != nil {
		t.Fatalf("client failed to read server hello: %v", err)
	}
	waitForEvent(t, serverEvents, peer.PeerConnected)

	payload := []byte(`{"seed_info":true}`)
	if err := swarm.Publish(peer.TopicSeedInfo, payload); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame wireFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("client failed to read broadcast: %v", err)
	}
	if frame.Topic != peer.TopicSeedInfo {
		t.Fatalf("expected TopicSeedInfo, got %v", frame.Topic)
	}
	if string(frame.Payload) != string(payload) {
		t.Fatalf("expected payload %q, got %q", payload, frame.Payload)
	}
}

func TestKeypairRoundtrip(t *testing.T) {
	swarm := New(ids.NewPeerId())
	blob := []byte("super-secret-identity-blob")
	swarm.SetKeypair(blob)
	if got := swarm.KeypairBytes(); string(got) != string(blob) {
		t.Fatalf("expected keypair roundtrip to return %q, got %q", blob, got)
	}
}
