package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/opendeed/deedd/internal/settlement"
)

// EventFeed is a settlement.Sink that fans out every committed
// settlement.Event to subscribed connections. It implements settlement.Sink
// so it can be handed straight to settlement.Config.Sink (directly, or
// composed into a settlement.MultiSink alongside an audit sink).
type EventFeed struct {
	upgrader    websocket.Upgrader
	connections map[string]*feedConnection
	mu          sync.RWMutex
}

type feedConnection struct {
	id           string
	conn         *websocket.Conn
	sendChannel  chan []byte
	closeChannel chan struct{}
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewEventFeed returns a feed with no active connections.
func NewEventFeed() *EventFeed {
	return &EventFeed{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		connections: make(map[string]*feedConnection),
	}
}

// ServeHTTP upgrades the request to a websocket and streams every
// subsequently published settlement.Event to it as JSON.
func (f *EventFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("rpc: websocket upgrade failed: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	fc := &feedConnection{
		id:           fmt.Sprintf("conn_%d", len(f.connections)+1),
		conn:         conn,
		sendChannel:  make(chan []byte, 256),
		closeChannel: make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}

	f.mu.Lock()
	f.connections[fc.id] = fc
	f.mu.Unlock()

	go f.readLoop(fc)
	go f.writeLoop(fc)
}

func (f *EventFeed) readLoop(fc *feedConnection) {
	defer f.close(fc)
	fc.conn.SetReadLimit(4096)
	fc.conn.SetPongHandler(func(string) error {
		fc.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})
	go f.pingLoop(fc)
	for {
		fc.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		if _, _, err := fc.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *EventFeed) pingLoop(fc *feedConnection) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-fc.ctx.Done():
			return
		case <-ticker.C:
			fc.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := fc.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (f *EventFeed) writeLoop(fc *feedConnection) {
	for {
		select {
		case <-fc.ctx.Done():
			return
		case msg := <-fc.sendChannel:
			fc.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := fc.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

func (f *EventFeed) close(fc *feedConnection) {
	fc.cancel()
	f.mu.Lock()
	delete(f.connections, fc.id)
	f.mu.Unlock()
	fc.conn.Close()
}

// Publish implements settlement.Sink: every committed event is marshaled
// once and pushed to every currently connected client's send channel.
func (f *EventFeed) Publish(e settlement.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		log.Printf("rpc: failed to marshal event: %v", err)
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, fc := range f.connections {
		select {
		case fc.sendChannel <- data:
		default:
			log.Printf("rpc: dropping event for slow connection %s", fc.id)
		}
	}
}

var _ settlement.Sink = (*EventFeed)(nil)
