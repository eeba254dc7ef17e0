// Package realtime fans reply change notifications out to subscribers, both
// in-process consumers and SSE connections.
package realtime

import (
	"sync"

	"github.com/tftboard/tftboard/internal/domain"
)

type Hub struct {
	mu     sync.RWMutex
	nextId int
	subs   map[domain.PostId]map[int]func(domain.ReplyChange)
}

func NewHub() *Hub {
	return &Hub{subs: make(map[domain.PostId]map[int]func(domain.ReplyChange))}
}

// Subscribe registers cb for one post's changes. The returned function
// detaches it; calling it more than once is harmless.
func (h *Hub) Subscribe(post domain.PostId, cb func(domain.ReplyChange)) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextId++
	id := h.nextId
	if h.subs[post] == nil {
		h.subs[post] = make(map[int]func(domain.ReplyChange))
	}
	h.subs[post][id] = cb

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[post], id)
			if len(h.subs[post]) == 0 {
				delete(h.subs, post)
			}
		})
	}
}

// Publish delivers the change to the post's subscribers. A change without a
// post id (listener reconnect) means "anything may have happened" and goes to
// everyone.
func (h *Hub) Publish(change domain.ReplyChange) {
	h.mu.RLock()
	var cbs []func(domain.ReplyChange)
	if change.PostId == "" {
		for _, m := range h.subs {
			for _, cb := range m {
				cbs = append(cbs, cb)
			}
		}
	} else {
		for _, cb := range h.subs[change.PostId] {
			cbs = append(cbs, cb)
		}
	}
	h.mu.RUnlock()

	for _, cb := range cbs {
		cb(change)
	}
}
