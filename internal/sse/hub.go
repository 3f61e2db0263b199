// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package sse fans content change notifications out to Server-Sent Events
// subscribers.
package sse

import (
	"sync"

	"github.com/samber/lo"
)

// TopicAll receives every published event.
const TopicAll = "*"

// bufferSize is the per-client backlog before events are dropped.
const bufferSize = 10

// Hub manages SSE clients per topic. A topic is a content section name;
// clients subscribed to TopicAll see every section.
type Hub struct {
	clients map[string][]chan string
	mu      sync.RWMutex
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string][]chan string),
	}
}

// Register adds a new client for topic and returns the channel to receive
// events on. An empty topic subscribes to everything.
func (h *Hub) Register(topic string) chan string {
	if topic == "" {
		topic = TopicAll
	}
	ch := make(chan string, bufferSize)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[topic] = append(h.clients[topic], ch)
	return ch
}

// Unregister removes and closes a client channel.
func (h *Hub) Unregister(topic string, ch chan string) {
	if topic == "" {
		topic = TopicAll
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[topic] = lo.Filter(h.clients[topic], func(c chan string, _ int) bool {
		return c != ch
	})
	if len(h.clients[topic]) == 0 {
		delete(h.clients, topic)
	}

	close(ch)
}

// Publish sends message to the subscribers of topic and of TopicAll.
func (h *Hub) Publish(topic, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := h.clients[TopicAll]
	if topic != TopicAll {
		targets = append(targets[:len(targets):len(targets)], h.clients[topic]...)
	}
	send(targets, message)
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	send(lo.Flatten(lo.Values(h.clients)), message)
}

// send never blocks: a client with a full buffer misses the event.
func send(clients []chan string, message string) {
	for _, ch := range clients {
		select {
		case ch <- message:
		default:
		}
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return lo.SumBy(lo.Values(h.clients), func(clients []chan string) int {
		return len(clients)
	})
}

// TopicCount returns the number of topics with at least one client.
func (h *Hub) TopicCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
