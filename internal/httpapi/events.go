package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"lmsbridge/internal/lmclient"
)

const (
	subscriberBuffer = 64
	wsWriteTimeout   = 5 * time.Second
	wsPingInterval   = 30 * time.Second
)

// EventHub fans facade events out to websocket subscribers on /events.
// It implements lmclient.EventPublisher. Slow subscribers drop events.
type EventHub struct {
	mu       sync.Mutex
	subs     map[chan lmclient.Event]struct{}
	upgrader websocket.Upgrader
}

// NewEventHub returns an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{
		subs: make(map[chan lmclient.Event]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Publish never blocks.
func (h *EventHub) Publish(e lmclient.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers returns the number of connected clients.
func (h *EventHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *EventHub) subscribe() chan lmclient.Event {
	ch := make(chan lmclient.Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	wsSubscribers.Inc()
	return ch
}

func (h *EventHub) unsubscribe(ch chan lmclient.Event) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
	wsSubscribers.Dec()
}

// ServeHTTP upgrades the request and streams events as JSON text frames until
// the client disconnects or the server shuts down.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		zlog.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	base := serverBaseCtx
	ch := h.subscribe()
	defer h.unsubscribe(ch)

	// The read loop only exists to notice the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()
	for {
		select {
		case <-gone:
			return
		case <-base.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
				time.Now().Add(wsWriteTimeout))
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		case e := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(e); err != nil {
				zlog.Debug().Err(err).Msg("websocket write failed")
				return
			}
		}
	}
}

// checkOrigin accepts same-origin requests, and any origin allowed by CORS.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if corsEnabled {
		if len(corsAllowedOrigins) == 0 {
			return true
		}
		for _, o := range corsAllowedOrigins {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}
