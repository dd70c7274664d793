package memory_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rcliao/auto-memory/internal/model"
	"github.com/rcliao/auto-memory/internal/store"
)

// fakeBackend is an in-memory RecordStore recording every call.
type fakeBackend struct {
	mu         sync.Mutex
	entries    map[string]model.Entry
	creates    []string
	deletes    []string
	nsDeletes  []string
	touched    []string
	failCreate bool
	failClear  bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{entries: map[string]model.Entry{}}
}

var errUnavailable = errors.New("backend unavailable")

func (f *fakeBackend) ListByNamespace(_ context.Context, ns string) ([]model.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Entry
	for _, e := range f.entries {
		if e.Namespace == ns {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeBackend) Create(_ context.Context, e model.Entry) (*model.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, e.ID)
	if f.failCreate {
		return nil, errUnavailable
	}
	f.entries[e.ID] = e
	return &e, nil
}

func (f *fakeBackend) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if _, ok := f.entries[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeBackend) DeleteByNamespace(_ context.Context, ns string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nsDeletes = append(f.nsDeletes, ns)
	if f.failClear {
		return 0, errUnavailable
	}
	n := 0
	for id, e := range f.entries {
		if e.Namespace == ns {
			delete(f.entries, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeBackend) Touch(_ context.Context, ids []string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, ids...)
	return nil
}

func (f *fakeBackend) Close() error { return nil }

// stepClock returns strictly increasing times.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}
