// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package worklist holds the ordered set of files waiting for conversion.
// The list is shared between the caller, which appends files at any time,
// and the engine, which removes converted items and annotates failed ones.
// All access is serialized by the list itself.
package worklist

import (
	"sync"

	"github.com/google/uuid"

	"github.com/pdiddy/batchconv/pkg/types"
)

// List is a concurrency-safe ordered collection of work items. The zero
// value is not usable; call New.
type List struct {
	mu    sync.Mutex
	items []types.WorkItem
	subs  map[int]chan struct{}
	next  int
}

// New returns an empty list.
func New() *List {
	return &List{subs: make(map[int]chan struct{})}
}

// Append adds one item per path, in order, and returns copies of the new
// items. Subscribers are notified once for the whole batch.
func (l *List) Append(paths ...string) []types.WorkItem {
	if len(paths) == 0 {
		return nil
	}
	added := make([]types.WorkItem, 0, len(paths))
	for _, p := range paths {
		added = append(added, types.NewWorkItem(p))
	}

	l.mu.Lock()
	l.items = append(l.items, added...)
	l.notifyLocked()
	l.mu.Unlock()
	return added
}

// Remove deletes the item with the given ID. It reports whether the item
// was present.
func (l *List) Remove(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexLocked(id)
	if i < 0 {
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.notifyLocked()
	return true
}

// Annotate sets the error message of the item with the given ID. An empty
// message clears a previous annotation. It reports whether the item was
// present.
func (l *List) Annotate(id uuid.UUID, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexLocked(id)
	if i < 0 {
		return false
	}
	if l.items[i].Error == msg {
		return true
	}
	l.items[i].Error = msg
	l.notifyLocked()
	return true
}

// Contains reports whether the item with the given ID is still in the list.
func (l *List) Contains(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.indexLocked(id) >= 0
}

// Snapshot returns a copy of the current contents in insertion order.
// Later mutations of the list do not affect the returned slice.
func (l *List) Snapshot() []types.WorkItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.WorkItem, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of items in the list.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Subscribe returns a channel that receives a value after the list
// changes. Notifications coalesce: a subscriber that falls behind sees one
// pending signal, not one per mutation, and should re-read the list with
// Snapshot. The returned cancel function unsubscribes and closes the channel.
func (l *List) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	l.mu.Lock()
	id := l.next
	l.next++
	l.subs[id] = ch
	l.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (l *List) indexLocked(id uuid.UUID) int {
	for i := range l.items {
		if l.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *List) notifyLocked() {
	for _, ch := range l.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
