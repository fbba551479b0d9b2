package dashboard

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	clientQueue  = 32
	writeTimeout = 5 * time.Second
)

// peer is one browser connection with its own outgoing queue.
type peer struct {
	conn *websocket.Conn
	out  chan []byte
	once sync.Once
}

// hub fans frames out to every connected peer. A peer whose queue is full is
// disconnected rather than allowed to stall the others.
type hub struct {
	mu     sync.Mutex
	peers  map[*peer]struct{}
	closed bool
	logger *log.Logger
}

func newHub(logger *log.Logger) *hub {
	return &hub{peers: make(map[*peer]struct{}), logger: logger}
}

// join registers conn and starts its writer and reader. first, if non-nil, is
// queued before any broadcast frame.
func (h *hub) join(ctx context.Context, conn *websocket.Conn, first []byte) bool {
	p := &peer{conn: conn, out: make(chan []byte, clientQueue)}
	if first != nil {
		p.out <- first
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		return false
	}
	h.peers[p] = struct{}{}
	n := len(h.peers)
	h.mu.Unlock()

	h.logger.Printf("Client connected (total: %d)", n)
	go h.write(ctx, p)
	go h.read(ctx, p)
	return true
}

func (h *hub) write(ctx context.Context, p *peer) {
	for frame := range p.out {
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := p.conn.Write(wctx, websocket.MessageText, frame)
		cancel()
		if err != nil {
			h.logger.Printf("Failed to send to client: %v", err)
			h.leave(p, websocket.StatusInternalError)
			return
		}
	}
}

// read discards client frames; it returns when the connection drops.
func (h *hub) read(ctx context.Context, p *peer) {
	for {
		if _, _, err := p.conn.Read(ctx); err != nil {
			h.leave(p, websocket.StatusNormalClosure)
			return
		}
	}
}

func (h *hub) leave(p *peer, code websocket.StatusCode) {
	h.mu.Lock()
	_, ok := h.peers[p]
	delete(h.peers, p)
	n := len(h.peers)
	h.mu.Unlock()

	p.once.Do(func() {
		close(p.out)
		_ = p.conn.Close(code, "")
	})
	if ok {
		h.logger.Printf("Client disconnected (total: %d)", n)
	}
}

func (h *hub) publish(frame []byte) {
	h.mu.Lock()
	var slow []*peer
	for p := range h.peers {
		select {
		case p.out <- frame:
		default:
			slow = append(slow, p)
		}
	}
	h.mu.Unlock()

	for _, p := range slow {
		h.logger.Println("WARNING: client queue full, disconnecting")
		h.leave(p, websocket.StatusPolicyViolation)
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// shutdown disconnects every peer and refuses new ones.
func (h *hub) shutdown() {
	h.mu.Lock()
	h.closed = true
	peers := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()

	for _, p := range peers {
		h.leave(p, websocket.StatusGoingAway)
	}
}
