package usage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/commitgenie/internal/llm"
)

const (
	// StorageKey is the key lifetime totals are stored under.
	StorageKey = "tokenTrackerData"
	// DataVersion is the current persisted record version. Records with any
	// other version are discarded on load.
	DataVersion = 1

	writeTimeout = 5 * time.Second
)

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("usage: tracker closed")

// KV is the durable storage the tracker persists into.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Stats describes one operation (or one standalone request).
type Stats struct {
	llm.Usage
	// CacheHitRate is cached/prompt tokens as a percentage with one decimal.
	CacheHitRate string `json:"cacheHitRate"`
}

// Historical summarizes every completed operation.
type Historical struct {
	OperationCount   int    `json:"operationCount"`
	TotalTokens      int    `json:"totalTokens"`
	AvgTokens        int    `json:"avgTokens"`
	OverallCacheRate string `json:"overallCacheRate"`
}

type persisted struct {
	Version           int        `json:"version"`
	TotalTokens       int        `json:"totalTokens"`
	TotalPromptTokens int        `json:"totalPromptTokens"`
	TotalCachedTokens int        `json:"totalCachedTokens"`
	OperationCount    int        `json:"operationCount"`
	LastOperation     *llm.Usage `json:"lastOperation,omitempty"`
}

// Tracker accumulates usage. It is safe for concurrent use.
type Tracker struct {
	kv     KV
	logger *zap.Logger

	mu            sync.Mutex
	totals        persisted
	sessionActive bool
	session       llm.Usage
	last          *llm.Usage

	dirty    chan struct{}
	flushReq chan chan error
	quit     chan struct{}
	done     chan struct{}

	closeOnce sync.Once
}

// New loads persisted totals from kv and starts the background writer.
// Unreadable, corrupt, or version-mismatched records are logged and
// replaced by zero totals.
func New(ctx context.Context, kv KV, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		kv:       kv,
		logger:   logger,
		totals:   persisted{Version: DataVersion},
		dirty:    make(chan struct{}, 1),
		flushReq: make(chan chan error),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	t.load(ctx)
	go t.run()
	return t
}

func (t *Tracker) load(ctx context.Context) {
	raw, ok, err := t.kv.Get(ctx, StorageKey)
	if err != nil {
		t.logger.Warn("failed to load token statistics", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	var p persisted
	if err := json.Unmarshal(raw, &p); err != nil {
		t.logger.Warn("discarding corrupt token statistics", zap.Error(err))
		return
	}
	if p.Version != DataVersion {
		t.logger.Warn("discarding token statistics with unknown version",
			zap.Int("version", p.Version),
			zap.Int("expected", DataVersion),
		)
		return
	}
	if p.TotalCachedTokens > p.TotalPromptTokens {
		p.TotalCachedTokens = p.TotalPromptTokens
	}
	t.totals = p
	if p.LastOperation != nil {
		last := *p.LastOperation
		t.last = &last
	}
	t.logger.Debug("token statistics loaded",
		zap.Int("operations", p.OperationCount),
		zap.Int("totalTokens", p.TotalTokens),
	)
}

// StartSession opens a session and zeroes its accumulator.
func (t *Tracker) StartSession() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessionActive = true
	t.session = llm.Usage{}
}

// UpdateUsage records one call's usage. It never blocks on storage.
func (t *Tracker) UpdateUsage(u llm.Usage) {
	t.mu.Lock()
	if t.sessionActive {
		t.session.Add(u)
	} else {
		standalone := u
		t.last = &standalone
	}
	t.totals.TotalTokens += u.TotalTokens
	t.totals.TotalPromptTokens += u.PromptTokens
	t.totals.TotalCachedTokens += u.CachedTokens
	t.mu.Unlock()

	t.markDirty()
}

// EndSession closes the open session, making it the last operation and
// counting it. It is a no-op when no session is open.
func (t *Tracker) EndSession() {
	t.mu.Lock()
	if !t.sessionActive {
		t.mu.Unlock()
		return
	}
	snapshot := t.session
	t.last = &snapshot
	t.totals.OperationCount++
	t.sessionActive = false
	t.mu.Unlock()

	t.markDirty()
}

// SessionActive reports whether a session is open.
func (t *Tracker) SessionActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionActive
}

// CurrentStats returns the open session, or else the last completed
// operation. The boolean is false when neither exists.
func (t *Tracker) CurrentStats() (Stats, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var u llm.Usage
	switch {
	case t.sessionActive:
		u = t.session
	case t.last != nil:
		u = *t.last
	default:
		return Stats{}, false
	}
	return Stats{Usage: u, CacheHitRate: formatRate(u.CacheHitRate())}, true
}

// HistoricalStats summarizes lifetime totals. The boolean is false until an
// operation has completed.
func (t *Tracker) HistoricalStats() (Historical, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.totals
	if p.OperationCount == 0 {
		return Historical{}, false
	}
	h := Historical{
		OperationCount:   p.OperationCount,
		TotalTokens:      p.TotalTokens,
		AvgTokens:        int(math.Round(float64(p.TotalTokens) / float64(p.OperationCount))),
		OverallCacheRate: "0",
	}
	if p.TotalPromptTokens > 0 {
		h.OverallCacheRate = formatRate(llm.CacheRate(p.TotalCachedTokens, p.TotalPromptTokens))
	}
	return h, true
}

// Reset zeroes all lifetime and session state and waits for the zeroed
// record to be written.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	t.totals = persisted{Version: DataVersion}
	t.sessionActive = false
	t.session = llm.Usage{}
	t.last = nil
	t.mu.Unlock()

	if err := t.Flush(ctx); err != nil {
		return fmt.Errorf("persisting reset statistics: %w", err)
	}
	t.logger.Info("token statistics reset")
	return nil
}

// Flush writes the current state and returns the write's error.
func (t *Tracker) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case t.flushReq <- reply:
	case <-t.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes pending state and stops the writer. Later calls are no-ops.
func (t *Tracker) Close() error {
	var err error
	t.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		err = t.Flush(ctx)
		close(t.quit)
		<-t.done
	})
	return err
}

func (t *Tracker) markDirty() {
	select {
	case t.dirty <- struct{}{}:
	default:
	}
}

func (t *Tracker) run() {
	defer close(t.done)
	for {
		select {
		case <-t.dirty:
			if err := t.write(); err != nil {
				t.logger.Error("failed to persist token statistics", zap.Error(err))
			}
		case reply := <-t.flushReq:
			reply <- t.write()
		case <-t.quit:
			return
		}
	}
}

// write persists a snapshot of the latest state.
func (t *Tracker) write() error {
	t.mu.Lock()
	p := t.totals
	if t.last != nil {
		last := *t.last
		p.LastOperation = &last
	}
	t.mu.Unlock()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling token statistics: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return t.kv.Put(ctx, StorageKey, data)
}

func formatRate(pct float64) string {
	return fmt.Sprintf("%.1f", pct)
}
