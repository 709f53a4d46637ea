package handlers

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"pickem-app-go/logging"
)

// SSEClient is one connected event-stream subscriber
type SSEClient struct {
	Channel chan string
}

// SSEHandler owns the event-stream hub: client registration, ordered
// broadcast, and a periodic heartbeat. The merge layer's change hook
// feeds Broadcast so every pick or result mutation reaches connected
// dashboards.
type SSEHandler struct {
	mu             sync.Mutex
	clients        map[*SSEClient]bool
	messageCounter uint64

	heartbeatTicker *time.Ticker
	stopHeartbeat   chan struct{}
	logger          *logging.Logger
}

// NewSSEHandler creates the hub and starts its heartbeat
func NewSSEHandler() *SSEHandler {
	h := &SSEHandler{
		clients:       make(map[*SSEClient]bool),
		stopHeartbeat: make(chan struct{}),
		logger:        logging.WithPrefix("SSE"),
	}
	h.startHeartbeat()
	return h
}

// Handle upgrades a request to an event stream and pumps messages
// until the client goes away.
func (h *SSEHandler) Handle(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := &SSEClient{Channel: make(chan string, 100)}
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	h.logger.Infof("New client connected from %s", r.RemoteAddr)

	defer func() {
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
		h.logger.Info("Client disconnected")
	}()

	fmt.Fprint(w, "event: connection\ndata: established\n\n")
	flusher.Flush()

	for {
		select {
		case message := <-client.Channel:
			fmt.Fprint(w, message)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// Broadcast sends an event with a monotonically increasing id to every
// connected client. Clients with a full buffer are skipped rather than
// blocked on.
func (h *SSEHandler) Broadcast(eventType, data string) {
	msgID := atomic.AddUint64(&h.messageCounter, 1)
	message := fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", msgID, eventType, data)

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.Channel <- message:
		default:
			h.logger.Warn("Client channel full, skipping message")
		}
	}
}

// BroadcastWeekUpdate tells dashboards that a week's data changed
func (h *SSEHandler) BroadcastWeekUpdate(week int) {
	h.Broadcast("week_update", fmt.Sprintf(`{"week":%d}`, week))
}

// ClientCount returns the number of connected clients
func (h *SSEHandler) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *SSEHandler) startHeartbeat() {
	h.heartbeatTicker = time.NewTicker(30 * time.Second)
	go func() {
		for {
			select {
			case <-h.heartbeatTicker.C:
				if h.ClientCount() > 0 {
					h.Broadcast("heartbeat", "keep-alive")
				}
			case <-h.stopHeartbeat:
				h.heartbeatTicker.Stop()
				return
			}
		}
	}()
}

// Stop halts the heartbeat goroutine
func (h *SSEHandler) Stop() {
	close(h.stopHeartbeat)
}
