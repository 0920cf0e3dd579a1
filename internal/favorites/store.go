// Package favorites owns the favorites collection: an in-memory list of
// product copies, unique by id, mirrored wholesale to one key-value slot.
//
// Reads and mutations are synchronous. Persistence runs on a single
// background writer; callers that need durability call Flush.
package favorites

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"ArtStore/internal/catalog"
	"ArtStore/internal/kvstore"
)

const (
	DefaultKey           = "favoriteProducts"
	DefaultRetries       = 2
	defaultRetryInterval = 200 * time.Millisecond
)

type Options struct {
	// Key is the storage slot. Defaults to DefaultKey.
	Key string
	// Retries is how many extra attempts a failed write gets. Negative
	// means none.
	Retries       int
	RetryInterval time.Duration
	// Debounce delays each write so a burst of mutations becomes one write.
	Debounce time.Duration

	Log     *zap.Logger
	Metrics *Metrics
}

type Store struct {
	kv  kvstore.Store
	key string
	log *zap.Logger

	mu    sync.RWMutex
	items []catalog.Product
	index map[catalog.ProductID]struct{}

	notifyMu sync.Mutex
	subsMu   sync.Mutex
	subs     map[uint64]func([]catalog.Product)
	nextSub  uint64

	hydrateOnce sync.Once
	w           *writer
}

func New(kv kvstore.Store, opts Options) *Store {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = defaultRetryInterval
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	s := &Store{
		kv:    kv,
		key:   opts.Key,
		log:   opts.Log,
		items: []catalog.Product{},
		index: map[catalog.ProductID]struct{}{},
		subs:  map[uint64]func([]catalog.Product){},
		w:     newWriter(kv, opts),
	}
	// the first write must not clobber a slot that was never read
	s.w.prepare = func() { s.Hydrate(context.Background()) }

	if m := opts.Metrics; m != nil {
		s.Subscribe(func(items []catalog.Product) { m.Items.Set(float64(len(items))) })
	}

	go s.w.run()
	return s
}

// Hydrate loads the persisted collection. Only the first call reads
// storage; the writer calls it before its first write if nobody has. A
// missing slot, a storage error and a malformed blob all leave the
// collection as it was; the latter two are logged.
func (s *Store) Hydrate(ctx context.Context) {
	s.hydrateOnce.Do(func() { s.hydrate(ctx) })
}

func (s *Store) hydrate(ctx context.Context) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.log.Warn("load favorites failed", zap.String("key", s.key), zap.Error(err))
		return
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return
	}

	var stored []catalog.Product
	if err := json.Unmarshal(raw, &stored); err != nil {
		s.log.Warn("favorites blob is malformed, starting empty", zap.String("key", s.key), zap.Error(err))
		return
	}

	s.mu.Lock()
	// entries added before hydration make the merged set differ from storage
	persist := len(s.items) > 0
	merged := make([]catalog.Product, 0, len(stored)+len(s.items))
	index := make(map[catalog.ProductID]struct{}, len(stored)+len(s.items))
	// stored entries come first; anything added before hydration follows
	for _, group := range [][]catalog.Product{stored, s.items} {
		for _, p := range group {
			if _, dup := index[p.ID]; dup {
				continue
			}
			index[p.ID] = struct{}{}
			merged = append(merged, p)
		}
	}
	s.items, s.index = merged, index
	s.publishLocked(persist)

	s.log.Info("favorites hydrated", zap.Int("items", len(merged)))
}

// Add stores a copy of p. Adding an id that is already present changes
// nothing and returns false.
func (s *Store) Add(p catalog.Product) bool {
	s.mu.Lock()
	if _, ok := s.index[p.ID]; ok {
		s.mu.Unlock()
		return false
	}
	s.items = append(s.items, p.Clone())
	s.index[p.ID] = struct{}{}
	s.publishLocked(true)
	return true
}

func (s *Store) RemoveOne(id catalog.ProductID) bool {
	return s.RemoveMany([]catalog.ProductID{id}) == 1
}

// RemoveMany drops every entry whose id is in ids, in one pass, and
// returns how many were removed.
func (s *Store) RemoveMany(ids []catalog.ProductID) int {
	drop := make(map[catalog.ProductID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	kept := make([]catalog.Product, 0, len(s.items))
	for _, p := range s.items {
		if _, ok := drop[p.ID]; ok {
			delete(s.index, p.ID)
			continue
		}
		kept = append(kept, p)
	}
	removed := len(s.items) - len(kept)
	if removed == 0 {
		s.mu.Unlock()
		return 0
	}
	s.items = kept
	s.publishLocked(true)
	return removed
}

func (s *Store) IsFavorite(id catalog.ProductID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// List returns the collection in insertion order.
func (s *Store) List() []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.items)
}

// Recent returns the collection newest first, the order it is displayed in.
func (s *Store) Recent() []catalog.Product {
	out := s.List()
	slices.Reverse(out)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Subscribe registers fn to receive the collection after every change. fn
// runs on the mutating goroutine, in mutation order, and must not mutate
// the store.
func (s *Store) Subscribe(fn func([]catalog.Product)) (cancel func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

// Flush blocks until every mutation made before the call has been written,
// and returns the outcome of that write.
func (s *Store) Flush(ctx context.Context) error {
	return s.w.flush(ctx)
}

// Close writes any pending state and stops the writer. The collection
// stays readable and mutable in memory afterwards, but is no longer
// persisted.
func (s *Store) Close(ctx context.Context) error {
	return s.w.close(ctx)
}

// publishLocked hands the new state to the writer and subscribers. It must
// be called with s.mu held and releases it.
func (s *Store) publishLocked(persist bool) {
	snap := cloneAll(s.items)
	if persist {
		s.w.schedule(snap)
	}

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.subsMu.Lock()
	fns := make([]func([]catalog.Product), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(cloneAll(snap))
	}
}

func cloneAll(items []catalog.Product) []catalog.Product {
	out := make([]catalog.Product, len(items))
	for i, p := range items {
		out[i] = p.Clone()
	}
	return out
}
