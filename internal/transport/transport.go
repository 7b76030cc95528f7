// Package transport implements WSSwarm, a reference gorilla/websocket
// implementation of peer.Transport. Only the message envelope and topic
// semantics are specified at the peer layer; the wire transport itself is
// pluggable, so core logic never imports this package — it only depends on
// the peer.Transport interface WSSwarm satisfies.
//
// Grounded on lab1702-netrek-web/server/websocket.go's Client/Server
// register/unregister/broadcast channel pattern, generalized from a
// star-topology game server (one authoritative server, many thin clients)
// to a symmetric peer mesh: every node runs both an inbound listener
// (handleInbound, served by StartPollingEvents) and outbound dialer (DialSeed), and every connected
// peer gets the same readPump/writePump treatment regardless of which side
// initiated the connection. Per-peer inbound rate limiting is grounded on
// utils.go's ipLimiters/getLimiter pattern, keyed by PeerId
// instead of remote IP since a peer's IP can change across reconnects but
// its PeerId cannot.
package transport

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/peer"
)

const (
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second
	pingPeriod    = 54 * time.Second
	sendBuffer    = 256
)

// helloFrame is the first message exchanged on every connection, letting
// each side learn the other's PeerId before any topic traffic flows.
type helloFrame struct {
	PeerId ids.PeerId `json:"peer_id"`
}

// wireFrame wraps every post-handshake message with the topic it was
// published on, since a single websocket connection carries all six
// topics rather than one socket per topic.
type wireFrame struct {
	Topic   peer.Topic `json:"topic"`
	Payload []byte     `json:"payload"`
}

type wsPeer struct {
	id      ids.PeerId
	conn    *websocket.Conn
	send    chan wireFrame
	swarm   *WSSwarm
	limiter *rate.Limiter
}

// WSSwarm is a gorilla/websocket-backed peer.Transport. Zero value is not
// usable; construct with New.
type WSSwarm struct {
	mu    sync.RWMutex
	peers map[ids.PeerId]*wsPeer

	selfId     ids.PeerId
	keypair    []byte
	upgrader   websocket.Upgrader
	httpServer *http.Server

	register   chan *wsPeer
	unregister chan *wsPeer

	events chan<- peer.SwarmEvent
}

// New constructs an unstarted WSSwarm identified by selfId.
func New(selfId ids.PeerId) *WSSwarm {
	return &WSSwarm{
		peers:      map[ids.PeerId]*wsPeer{},
		selfId:     selfId,
		upgrader:   websocket.Upgrader{EnableCompression: true},
		register:   make(chan *wsPeer),
		unregister: make(chan *wsPeer),
	}
}

// SetKeypair stores the node's signing identity blob, used only to answer
// KeypairBytes; WSSwarm performs no signing, and no layer above it signs or
// verifies gossip envelopes either (internal/security only offers the
// Sign/Verify helpers).
func (s *WSSwarm) SetKeypair(blob []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keypair = append([]byte(nil), blob...)
}

// KeypairBytes returns the previously stored identity blob.
func (s *WSSwarm) KeypairBytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.keypair...)
}

// StartPollingEvents starts the HTTP listener on tcpPort and the
// register/unregister/broadcast dispatch loop, mirroring handlers.go's
// Server.Run. It returns once the listener is up; the dispatch loop and
// HTTP server continue running until cancel closes.
func (s *WSSwarm) StartPollingEvents(events chan<- peer.SwarmEvent, cancel <-chan struct{}, tcpPort int) error {
	s.events = events

	mux := http.NewServeMux()
	mux.HandleFunc("/swarm", s.handleInbound)
	s.httpServer = &http.Server{Addr: fmt.Sprintf(":%d", tcpPort), Handler: mux}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("transport: listen on %s: %w", s.httpServer.Addr, err)
	}
	events <- peer.SwarmEvent{Kind: peer.ListenAddrDiscovered, Addr: ln.Addr().String()}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("transport: http server stopped: %v", err)
		}
	}()

	go s.dispatchLoop(cancel)
	return nil
}

func (s *WSSwarm) dispatchLoop(cancel <-chan struct{}) {
	for {
		select {
		case <-cancel:
			s.httpServer.Close()
			return
		case p := <-s.register:
			s.mu.Lock()
			s.peers[p.id] = p
			s.mu.Unlock()
			s.events <- peer.SwarmEvent{Kind: peer.PeerConnected, PeerId: p.id}
		case p := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.peers[p.id]; ok {
				delete(s.peers, p.id)
				close(p.send)
			}
			s.mu.Unlock()
			s.events <- peer.SwarmEvent{Kind: peer.PeerDisconnected, PeerId: p.id}
		}
	}
}

func (s *WSSwarm) handleInbound(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("transport: upgrade error: %v", err)
		return
	}
	s.completeHandshake(conn)
}

// DialSeed opens an outbound connection to a known seed node's websocket
// address and performs the same handshake an inbound connection would.
func (s *WSSwarm) DialSeed(addr string) error {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return fmt.Errorf("transport: dial seed %s: %w", addr, err)
	}
	s.completeHandshake(conn)
	return nil
}

func (s *WSSwarm) completeHandshake(conn *websocket.Conn) {
	if err := conn.WriteJSON(helloFrame{PeerId: s.selfId}); err != nil {
		conn.Close()
		return
	}
	var hello helloFrame
	if err := conn.ReadJSON(&hello); err != nil {
		conn.Close()
		return
	}

	p := &wsPeer{
		id:      hello.PeerId,
		conn:    conn,
		send:    make(chan wireFrame, sendBuffer),
		swarm:   s,
		limiter: rate.NewLimiter(20, 40),
	}
	s.register <- p
	go p.writePump()
	go p.readPump()
}

// Publish broadcasts payload on topic to every connected peer, the gossip
// layer's flood-fill semantics (no routing, no subscriptions to filter
// on — every node relays every topic it knows about).
func (s *WSSwarm) Publish(topic peer.Topic, payload []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	frame := wireFrame{Topic: topic, Payload: payload}
	for _, p := range s.peers {
		select {
		case p.send <- frame:
		default:
			log.Printf("transport: peer %s send buffer full, dropping %s message", p.id, topic)
		}
	}
	return nil
}

func (p *wsPeer) readPump() {
	defer func() {
		p.swarm.unregister <- p
		p.conn.Close()
	}()

	p.conn.SetReadDeadline(time.Now().Add(readDeadline))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		var frame wireFrame
		if err := p.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("transport: peer %s read error: %v", p.id, err)
			}
			return
		}
		if !p.limiter.Allow() {
			continue
		}
		p.swarm.events <- peer.SwarmEvent{Kind: peer.MessageReceived, PeerId: p.id, Topic: frame.Topic, Payload: frame.Payload}
	}
}

func (p *wsPeer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
