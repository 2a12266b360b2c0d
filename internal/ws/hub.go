package ws

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Client é uma conexão do painel. Admin recebe tudo; consultor recebe só
// eventos dos seus leads e propostas.
type Client struct {
	ID           string
	Admin        bool
	ConsultantID int64
	Send         chan []byte
}

func (c *Client) wants(consultantID int64) bool {
	return c.Admin || (consultantID != 0 && c.ConsultantID == consultantID)
}

type routedMsg struct {
	consultantID int64 // 0: só admins
	msg          []byte
}

type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client // id -> client
	register chan *Client
	unreg    chan *Client
	routed   chan routedMsg

	log     *slog.Logger
	stop    chan struct{}
	stopped chan struct{}

	nextID atomic.Uint64
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:  make(map[string]*Client),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		routed:   make(chan routedMsg, 1024),
		log:      log.With("cmp", "ws.hub"),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (h *Hub) newID() string {
	id := h.nextID.Add(1)
	return fmt.Sprintf("c%d", id)
}

func (h *Hub) Run() {
	h.log.Info("hub_run_start")
	defer close(h.stopped)

	for {
		select {
		case c := <-h.register:
			if c.ID == "" {
				c.ID = h.newID()
			}
			h.mu.Lock()
			h.clients[c.ID] = c
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info("client_registered", "id", c.ID, "admin", c.Admin, "consultant_id", c.ConsultantID, "total", total)

		case c := <-h.unreg:
			h.drop(c)

		case m := <-h.routed:
			h.deliver(m)

		case <-h.stop:
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			h.log.Info("hub_run_stop")
			return
		}
	}
}

func (h *Hub) deliver(m routedMsg) {
	var slow []*Client
	h.mu.RLock()
	for _, c := range h.clients {
		if !c.wants(m.consultantID) {
			continue
		}
		select {
		case c.Send <- m.msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	// cliente lento -> dropa para não travar o hub
	for _, c := range slow {
		h.log.Warn("client_drop_slow", "id", c.ID)
		h.drop(c)
	}
}

func (h *Hub) drop(c *Client) {
	if c == nil || c.ID == "" {
		return
	}
	h.mu.Lock()
	if cur, ok := h.clients[c.ID]; ok && cur == c {
		delete(h.clients, c.ID)
		close(c.Send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	h.log.Info("client_unregistered", "id", c.ID, "total", total)
}

func (h *Hub) Stop() {
	close(h.stop)
	<-h.stopped
}

// Register depois de Stop fecha Send na hora, para o writer do socket sair.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.stopped:
		close(c.Send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unreg <- c:
	case <-h.stopped:
	}
}

// Route entrega aos admins e, quando consultantID != nil, ao consultor dono.
func (h *Hub) Route(b []byte, consultantID *int64) {
	var id int64
	if consultantID != nil {
		id = *consultantID
	}
	select {
	case h.routed <- routedMsg{consultantID: id, msg: b}:
	case <-h.stopped:
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
