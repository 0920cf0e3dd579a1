package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"ArtStore/internal/catalog"
	"ArtStore/internal/kvstore"
)

var ErrWriterClosed = errors.New("favorites writer closed")

const maxRetryInterval = 5 * time.Second

// writer serializes full-collection writes. Only the newest snapshot is
// kept, so a burst of mutations costs one write.
type writer struct {
	kv      kvstore.Store
	key     string
	log     *zap.Logger
	metrics *Metrics

	retries       int
	retryInterval time.Duration
	debounce      time.Duration
	// prepare runs before each write, outside mu.
	prepare func()

	mu      sync.Mutex
	pending []catalog.Product
	gen     uint64
	written uint64
	lastErr error
	stopped bool
	settled chan struct{}

	kick      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newWriter(kv kvstore.Store, opts Options) *writer {
	return &writer{
		kv:            kv,
		key:           opts.Key,
		log:           opts.Log,
		metrics:       opts.Metrics,
		retries:       opts.Retries,
		retryInterval: opts.RetryInterval,
		debounce:      opts.Debounce,
		settled:       make(chan struct{}),
		kick:          make(chan struct{}, 1),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

func (w *writer) schedule(snap []catalog.Product) {
	w.mu.Lock()
	w.pending = snap
	w.gen++
	stopped := w.stopped
	w.mu.Unlock()

	if stopped {
		w.log.Warn("favorites changed after close, not persisted")
		return
	}

	select {
	case w.kick <- struct{}{}:
	default:
	}
}

func (w *writer) run() {
	defer close(w.done)

	for {
		select {
		case <-w.kick:
		case <-w.stop:
			w.writeLatest()
			w.finish()
			return
		}

		if w.debounce > 0 {
			t := time.NewTimer(w.debounce)
			select {
			case <-t.C:
			case <-w.stop:
				t.Stop()
			}
		}
		w.writeLatest()
	}
}

func (w *writer) writeLatest() {
	w.mu.Lock()
	idle := w.written == w.gen
	w.mu.Unlock()
	if idle {
		return
	}
	if w.prepare != nil {
		w.prepare()
	}

	w.mu.Lock()
	snap, gen := w.pending, w.gen
	w.mu.Unlock()

	err := w.persist(snap)

	w.mu.Lock()
	w.written = gen
	w.lastErr = err
	close(w.settled)
	w.settled = make(chan struct{})
	w.mu.Unlock()
}

func (w *writer) finish() {
	w.mu.Lock()
	w.stopped = true
	close(w.settled)
	w.settled = make(chan struct{})
	w.mu.Unlock()
}

func (w *writer) persist(snap []catalog.Product) error {
	data, err := json.Marshal(snap)
	if err != nil {
		w.log.Error("encode favorites failed", zap.Error(err))
		w.metrics.observe(err)
		return err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = w.retryInterval
	eb.MaxInterval = maxRetryInterval
	eb.MaxElapsedTime = 0
	policy := backoff.WithMaxRetries(eb, uint64(w.retries))

	attempt := 0
	op := func() error {
		attempt++
		err := w.kv.Set(context.Background(), w.key, data)
		if errors.Is(err, kvstore.ErrClosed) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		w.log.Warn("persist favorites failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	err = backoff.RetryNotify(op, policy, notify)
	w.metrics.observe(err)
	if err != nil {
		w.log.Error("persist favorites failed",
			zap.String("key", w.key),
			zap.Int("attempts", attempt),
			zap.Int("items", len(snap)),
			zap.Error(err),
		)
		return err
	}

	w.log.Debug("favorites persisted", zap.String("key", w.key), zap.Int("items", len(snap)))
	return nil
}

func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	target := w.gen
	w.mu.Unlock()

	for {
		w.mu.Lock()
		if w.written >= target {
			err := w.lastErr
			w.mu.Unlock()
			return err
		}
		if w.stopped {
			w.mu.Unlock()
			return ErrWriterClosed
		}
		ch := w.settled
		w.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *writer) close(ctx context.Context) error {
	w.closeOnce.Do(func() { close(w.stop) })

	select {
	case <-w.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.written < w.gen {
		return ErrWriterClosed
	}
	return w.lastErr
}
