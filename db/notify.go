package db

import (
	"context"
	"sync"
)

// changeHub fans out "favorites changed" signals to every active watcher.
// Each subscriber owns a channel with a buffer of one, so signals raised while a
// watcher is busy collapse into a single pending wake-up.
type changeHub struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]chan struct{}
}

func newChangeHub() *changeHub {
	return &changeHub{subs: make(map[uint64]chan struct{})}
}

func (h *changeHub) subscribe() (uint64, <-chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	ch := make(chan struct{}, 1)
	h.subs[h.nextID] = ch
	return h.nextID, ch
}

func (h *changeHub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

func (h *changeHub) notify() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// watch turns query into a continuous query. The subscription is registered before
// the first query runs, so a change committed in between is never lost.
// The first result is returned synchronously as an error if it fails; later failures
// are logged and end the stream.
func watch[T any](ctx context.Context, repo *Repository, name string, query func(context.Context) (T, error)) (<-chan T, error) {
	id, changed := repo.changes.subscribe()

	current, err := query(ctx)
	if err != nil {
		repo.changes.unsubscribe(id)
		return nil, err
	}

	out := make(chan T)
	go func() {
		defer close(out)
		defer repo.changes.unsubscribe(id)

		for {
			select {
			case out <- current:
			case <-ctx.Done():
				return
			case <-repo.done:
				return
			}

			select {
			case <-changed:
			case <-ctx.Done():
				return
			case <-repo.done:
				return
			}

			next, err := query(ctx)
			if err != nil {
				if ctx.Err() == nil {
					repo.logger.Error("re-running watched query", "query", name, "error", err)
				}
				return
			}
			current = next
		}
	}()

	return out, nil
}
