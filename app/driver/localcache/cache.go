package localcache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"pettracker/app/port"
)

// Cache is the persistent key-value store for session material: an
// in-memory mirror read synchronously, backed by a durable store written
// through a strictly ordered queue. Reads before Init returns see the
// zero snapshot; every mutation is visible to same-process reads
// immediately and reaches the durable store best-effort.
type Cache struct {
	store  port.DurableStore
	logger *slog.Logger

	mu   sync.RWMutex
	data map[string]string

	// pending is the FIFO chain of snapshots awaiting persistence.
	// Guarded by qmu; drained by a single writer goroutine so durable
	// writes never interleave or reorder.
	qmu     sync.Mutex
	qcond   *sync.Cond
	pending [][]byte
	closed  bool
	drained chan struct{}
}

// New creates a cache over the given durable store and starts its
// writer. Close releases the writer.
func New(store port.DurableStore, logger *slog.Logger) *Cache {
	c := &Cache{
		store:  store,
		logger: logger.With("component", "localcache"),
		data:   make(map[string]string),
	}
	c.qcond = sync.NewCond(&c.qmu)
	c.drained = make(chan struct{})
	go c.writeLoop()
	return c
}

// Init loads the durable snapshot into the in-memory mirror. It must
// complete before reads are meaningful. A missing snapshot is not an
// error; a corrupt one is.
func (c *Cache) Init(ctx context.Context) error {
	blob, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	if len(blob) == 0 {
		return nil
	}

	data := make(map[string]string)
	if err := json.Unmarshal(blob, &data); err != nil {
		return err
	}

	c.mu.Lock()
	c.data = data
	c.mu.Unlock()
	return nil
}

// Get returns the value for key from the in-memory mirror.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.data[key]
	return value, ok
}

// Set stores key=value in the mirror and enqueues a durable write. The
// new value is visible to Get before the write lands.
func (c *Cache) Set(key, value string) string {
	c.mu.Lock()
	c.data[key] = value
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.enqueue(snapshot)
	return value
}

// Remove deletes key from the mirror and enqueues a durable write.
func (c *Cache) Remove(key string) bool {
	c.mu.Lock()
	delete(c.data, key)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.enqueue(snapshot)
	return true
}

// Clear wipes both the mirror and the durable store.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.data = make(map[string]string)
	c.mu.Unlock()

	return c.store.Clear(ctx)
}

// Flush blocks until every write enqueued so far has been applied to the
// durable store.
func (c *Cache) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.qmu.Lock()
		for len(c.pending) > 0 && !c.closed {
			c.qcond.Wait()
		}
		c.qmu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains the pending queue and stops the writer.
func (c *Cache) Close() error {
	c.qmu.Lock()
	if c.closed {
		c.qmu.Unlock()
		return nil
	}
	c.closed = true
	c.qcond.Broadcast()
	c.qmu.Unlock()

	<-c.drained
	return nil
}

// snapshotLocked serializes the mirror. Marshal of map[string]string
// cannot fail; the value is captured at enqueue time so later mutations
// do not rewrite history.
func (c *Cache) snapshotLocked() []byte {
	blob, _ := json.Marshal(c.data)
	return blob
}

func (c *Cache) enqueue(snapshot []byte) {
	c.qmu.Lock()
	if c.closed {
		c.qmu.Unlock()
		c.logger.Warn("write dropped: cache closed")
		return
	}
	c.pending = append(c.pending, snapshot)
	c.qcond.Broadcast()
	c.qmu.Unlock()
}

// writeLoop applies queued snapshots in FIFO order, one at a time. A
// failed write is logged and does not roll back the mirror or block the
// writes behind it.
func (c *Cache) writeLoop() {
	defer close(c.drained)

	for {
		c.qmu.Lock()
		for len(c.pending) == 0 && !c.closed {
			c.qcond.Wait()
		}
		if len(c.pending) == 0 && c.closed {
			c.qmu.Unlock()
			return
		}
		snapshot := c.pending[0]
		c.qmu.Unlock()

		if err := c.store.Save(context.Background(), snapshot); err != nil {
			c.logger.Warn("durable write failed", "error", err)
		}

		c.qmu.Lock()
		c.pending = c.pending[1:]
		c.qcond.Broadcast()
		c.qmu.Unlock()
	}
}
