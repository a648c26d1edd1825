package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Channel is a per-room data path to the client UI
type Channel interface {
	Publish(ctx context.Context, data []byte) error
}

// DefaultSendTimeout bounds a single publish
const DefaultSendTimeout = 5 * time.Second

// Directory maps room names to their outbound channel. The lock only guards
// the map; publishing always happens after it is released.
type Directory struct {
	mu       sync.RWMutex
	channels map[string]Channel
	timeout  time.Duration
}

// NewDirectory creates an empty directory
func NewDirectory(sendTimeout time.Duration) *Directory {
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}
	return &Directory{
		channels: make(map[string]Channel),
		timeout:  sendTimeout,
	}
}

// Register binds a channel to a room, replacing any previous one
func (d *Directory) Register(room string, ch Channel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channels[room] = ch
}

// Unregister removes a room's channel; absent rooms are a no-op
func (d *Directory) Unregister(room string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.channels[room]; !ok {
		return false
	}
	delete(d.channels, room)
	return true
}

// UnregisterIf removes the room's channel only if it is still ch, so a
// disconnecting subscriber cannot drop a newer registration.
func (d *Directory) UnregisterIf(room string, ch Channel) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if current, ok := d.channels[room]; !ok || current != ch {
		return false
	}
	delete(d.channels, room)
	return true
}

// Lookup returns the channel registered for room
func (d *Directory) Lookup(room string) (Channel, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ch, ok := d.channels[room]
	return ch, ok
}

// Send JSON-encodes payload and publishes it to the room. It never panics and
// never returns an error: failures are logged and reported as false.
func (d *Directory) Send(ctx context.Context, room string, payload any) (ok bool) {
	ch, found := d.Lookup(room)
	if !found {
		slog.Warn("no channel registered for room", "room", room)
		return false
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to encode room payload", "room", room, "error", err)
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("room channel panicked", "room", room, "panic", fmt.Sprint(r))
			ok = false
		}
	}()

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := ch.Publish(sendCtx, data); err != nil {
		slog.Warn("failed to send data to room", "room", room, "error", err)
		return false
	}
	slog.Debug("sent data to room", "room", room, "bytes", len(data))
	return true
}

// Rooms returns the sorted names of rooms with a registered channel
func (d *Directory) Rooms() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.channels))
	for name := range d.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered channels
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.channels)
}
