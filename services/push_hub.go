package services

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// PushHub tracks the websocket connection of each signed-in driver app.
// Drivers connect once after login; notifications are written as JSON frames.
type PushHub struct {
	mu    sync.RWMutex
	conns map[uint]*websocket.Conn
}

// NewPushHub creates an empty hub
func NewPushHub() *PushHub {
	return &PushHub{conns: make(map[uint]*websocket.Conn)}
}

// Register tracks a driver's connection, replacing any previous one
func (h *PushHub) Register(driverID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if previous, ok := h.conns[driverID]; ok {
		previous.Close()
	}
	h.conns[driverID] = conn
}

// Unregister drops a driver's connection if it is still the current one
func (h *PushHub) Unregister(driverID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.conns[driverID]; ok && current == conn {
		delete(h.conns, driverID)
	}
}

// Connected reports whether the driver has a live connection
func (h *PushHub) Connected(driverID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[driverID]
	return ok
}

type pushFrame struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Data  PushData `json:"data"`
}

// HubPushNotifier delivers push notifications over the driver's websocket
type HubPushNotifier struct {
	hub *PushHub
}

// Push writes the notification to the driver's connection
func (n *HubPushNotifier) Push(driverID uint, title, body string, data PushData) (*PushResult, error) {
	n.hub.mu.RLock()
	conn, ok := n.hub.conns[driverID]
	n.hub.mu.RUnlock()
	if !ok {
		return nil, errors.New("driver is not connected")
	}
	if err := conn.WriteJSON(pushFrame{Title: title, Body: body, Data: data}); err != nil {
		return nil, err
	}
	return &PushResult{SuccessCount: 1}, nil
}
