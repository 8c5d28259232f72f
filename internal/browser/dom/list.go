package dom

import (
	"sync"
	"sync/atomic"
)

// appendList is a copy-on-write slice. Writers serialize on mu and publish a
// fresh backing array; readers load the current array without locking and
// must treat it as read-only.
type appendList[T any] struct {
	mu    sync.Mutex
	items atomic.Pointer[[]T]
}

func newAppendList[T any](initial []T) *appendList[T] {
	l := &appendList[T]{}
	if len(initial) > 0 {
		items := make([]T, len(initial))
		copy(items, initial)
		l.items.Store(&items)
	}
	return l
}

func (l *appendList[T]) append(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var old []T
	if p := l.items.Load(); p != nil {
		old = *p
	}
	next := make([]T, len(old)+1)
	copy(next, old)
	next[len(old)] = v
	l.items.Store(&next)
}

// view returns the published array. Callers must not modify it.
func (l *appendList[T]) view() []T {
	if p := l.items.Load(); p != nil {
		return *p
	}
	return nil
}

func (l *appendList[T]) snapshot() []T {
	v := l.view()
	if len(v) == 0 {
		return nil
	}
	out := make([]T, len(v))
	copy(out, v)
	return out
}

func (l *appendList[T]) len() int {
	return len(l.view())
}
