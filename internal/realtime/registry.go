package realtime

import (
	"sync"

	"leadflow/internal/platform/metrics"
)

// Registry maps identities to their live channels. It holds no persistence:
// state is rebuilt from scratch when the process restarts, and an identity
// with no bound channel simply receives nothing.
type Registry struct {
	mu         sync.RWMutex
	byIdentity map[string]map[Channel]struct{}
	byChannel  map[Channel]map[string]struct{}
	metrics    *metrics.Metrics
}

func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{
		byIdentity: make(map[string]map[Channel]struct{}),
		byChannel:  make(map[Channel]map[string]struct{}),
		metrics:    m,
	}
}

// Bind registers the channel under the identity. Rebinding an already-bound
// pair is a no-op, which makes in-band join re-assertions bookkeeping only.
func (r *Registry) Bind(identityID string, ch Channel) {
	if identityID == "" || ch == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byIdentity[identityID]; !ok {
		r.byIdentity[identityID] = make(map[Channel]struct{})
	}
	if _, bound := r.byIdentity[identityID][ch]; bound {
		return
	}
	r.byIdentity[identityID][ch] = struct{}{}
	if _, ok := r.byChannel[ch]; !ok {
		r.byChannel[ch] = make(map[string]struct{})
		r.metrics.ChannelOpened()
	}
	r.byChannel[ch][identityID] = struct{}{}
}

// Unbind removes the channel from every identity it was bound to. Idempotent:
// double-unbind is a no-op, never an error.
func (r *Registry) Unbind(ch Channel) {
	if ch == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	identities, ok := r.byChannel[ch]
	if !ok {
		return
	}
	for identityID := range identities {
		delete(r.byIdentity[identityID], ch)
		if len(r.byIdentity[identityID]) == 0 {
			delete(r.byIdentity, identityID)
		}
	}
	delete(r.byChannel, ch)
	r.metrics.ChannelClosed()
}

// Resolve returns the identity's live channels, possibly empty.
func (r *Registry) Resolve(identityID string) []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bound := r.byIdentity[identityID]
	if len(bound) == 0 {
		return nil
	}
	out := make([]Channel, 0, len(bound))
	for ch := range bound {
		out = append(out, ch)
	}
	return out
}

// Len reports the number of distinct bound channels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byChannel)
}

// Close unbinds and closes every channel. Called once at shutdown.
func (r *Registry) Close(reason string) {
	r.mu.Lock()
	channels := make([]Channel, 0, len(r.byChannel))
	for ch := range r.byChannel {
		channels = append(channels, ch)
	}
	r.byIdentity = make(map[string]map[Channel]struct{})
	r.byChannel = make(map[Channel]map[string]struct{})
	r.mu.Unlock()

	for _, ch := range channels {
		ch.Close(reason)
		r.metrics.ChannelClosed()
	}
}
