package cache

import (
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/KLH-F-2025/campus-safety-service/internal/models"
	"github.com/KLH-F-2025/campus-safety-service/internal/store"
)

// Feed mirrors one store collection in memory. A standing subscription keeps
// it current: every change notification rebuilds the full snapshot, sorted
// newest-first, and fans it out to local subscribers. Consumers never see a
// partial update.
//
// One Feed per collection is constructed at startup and handed to consumers;
// there is no package-level state.
type Feed[T any] struct {
	collection  string
	decode      func(id string, raw json.RawMessage) (T, error)
	timestamp   func(T) int64
	logger      *slog.Logger
	unsubscribe func()

	mu      sync.Mutex
	records []T
	subs    map[int]func([]T)
	nextSub int
}

// NewAlertFeed opens the standing subscription on the alerts collection.
func NewAlertFeed(client store.Client, logger *slog.Logger) (*Feed[models.SOSAlert], error) {
	return newFeed(client, "alerts", logger,
		func(id string, raw json.RawMessage) (models.SOSAlert, error) {
			var alert models.SOSAlert
			if err := json.Unmarshal(raw, &alert); err != nil {
				return alert, err
			}
			alert.ID = id
			return alert, nil
		},
		func(a models.SOSAlert) int64 { return a.Timestamp },
	)
}

// NewComplaintFeed opens the standing subscription on the complaints
// collection.
func NewComplaintFeed(client store.Client, logger *slog.Logger) (*Feed[models.Complaint], error) {
	return newFeed(client, "complaints", logger,
		func(id string, raw json.RawMessage) (models.Complaint, error) {
			var complaint models.Complaint
			if err := json.Unmarshal(raw, &complaint); err != nil {
				return complaint, err
			}
			complaint.ID = id
			return complaint, nil
		},
		func(c models.Complaint) int64 { return c.Timestamp },
	)
}

func newFeed[T any](
	client store.Client,
	collection string,
	logger *slog.Logger,
	decode func(id string, raw json.RawMessage) (T, error),
	timestamp func(T) int64,
) (*Feed[T], error) {
	f := &Feed[T]{
		collection: collection,
		decode:     decode,
		timestamp:  timestamp,
		logger:     logger,
		subs:       make(map[int]func([]T)),
	}
	unsubscribe, err := client.Subscribe(collection, f.rebuild)
	if err != nil {
		return nil, err
	}
	f.unsubscribe = unsubscribe
	return f, nil
}

// rebuild replaces the mirror with the records in snapshot, stamps each
// record's id from its path key, sorts descending by timestamp and notifies
// every subscriber with its own copy.
func (f *Feed[T]) rebuild(snapshot json.RawMessage) {
	var records []T
	if len(snapshot) > 0 {
		children := make(map[string]json.RawMessage)
		if err := json.Unmarshal(snapshot, &children); err != nil {
			f.logger.Error("dropping malformed collection snapshot",
				"collection", f.collection, "error", err)
			return
		}
		records = make([]T, 0, len(children))
		for id, raw := range children {
			record, err := f.decode(id, raw)
			if err != nil {
				f.logger.Warn("skipping undecodable record",
					"collection", f.collection, "id", id, "error", err)
				continue
			}
			records = append(records, record)
		}
		sort.SliceStable(records, func(i, j int) bool {
			return f.timestamp(records[i]) > f.timestamp(records[j])
		})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = records
	for _, notify := range f.subs {
		notify(f.copyLocked())
	}
}

// Snapshot returns a copy of the current ordered records.
func (f *Feed[T]) Snapshot() []T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copyLocked()
}

// Subscribe registers fn, invokes it immediately with the current snapshot
// (even when empty) and returns an unsubscribe function. Each invocation
// receives a fresh copy; mutating it does not affect the mirror or other
// subscribers. Deliveries are serialized under the feed lock, so fn must not
// call back into the feed.
func (f *Feed[T]) Subscribe(fn func([]T)) func() {
	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	// Initial delivery happens under the lock so a concurrent rebuild
	// cannot hand the subscriber a newer snapshot first.
	fn(f.copyLocked())
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

// Close tears down the standing store subscription.
func (f *Feed[T]) Close() {
	if f.unsubscribe != nil {
		f.unsubscribe()
	}
}

func (f *Feed[T]) copyLocked() []T {
	out := make([]T, len(f.records))
	copy(out, f.records)
	return out
}
