// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package handlers

import (
	"net/http"
	"sync"
	"time"

	"logsight/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pterm/pterm"
)

const (
	// MaxStreamConnections is the maximum number of simultaneous event streams
	MaxStreamConnections = 100

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EventsHandler streams catalog events to websocket clients.
type EventsHandler struct {
	events            *realtime.Broadcaster
	logger            *pterm.Logger
	maxConnections    int
	activeConnections int
	connectionMutex   sync.Mutex
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(events *realtime.Broadcaster, logger *pterm.Logger) *EventsHandler {
	return &EventsHandler{
		events:         events,
		logger:         logger,
		maxConnections: MaxStreamConnections,
	}
}

// StreamEvents upgrades the request and forwards every published event as JSON.
func (h *EventsHandler) StreamEvents(c *gin.Context) {
	h.connectionMutex.Lock()
	if h.activeConnections >= h.maxConnections {
		h.connectionMutex.Unlock()
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Maximum concurrent connections reached. Please try again later."})
		return
	}
	h.activeConnections++
	current := h.activeConnections
	h.connectionMutex.Unlock()

	defer func() {
		h.connectionMutex.Lock()
		h.activeConnections--
		h.connectionMutex.Unlock()
	}()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", h.logger.Args("error", err))
		return
	}
	defer conn.Close()

	events, unsubscribe := h.events.Subscribe()
	defer unsubscribe()

	h.logger.Debug("Event stream opened", h.logger.Args("client", c.ClientIP(), "connections", current))

	// Read pump: only detects the client going away.
	done := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	// Write pump.
	for {
		select {
		case <-done:
			h.logger.Debug("Event stream closed by client", h.logger.Args("client", c.ClientIP()))
			return

		case ev, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Debug("Websocket write failed", h.logger.Args("error", err))
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ActiveConnections returns the number of open streams.
func (h *EventsHandler) ActiveConnections() int {
	h.connectionMutex.Lock()
	defer h.connectionMutex.Unlock()
	return h.activeConnections
}
