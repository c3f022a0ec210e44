package content

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Status is the outcome of a document load
type Status int

const (
	StatusOK Status = iota
	StatusNotFound
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not found"
	default:
		return "failed"
	}
}

// Result always carries a Document: the guide itself, or a placeholder
type Result struct {
	ID       string
	Document *Document
	Status   Status
	Err      error
}

// refresher is implemented by sources whose catalog can change at runtime
type refresher interface {
	Refresh() error
}

// Library caches parsed documents and coalesces concurrent loads of one id
type Library struct {
	source Source
	logger *slog.Logger
	group  singleflight.Group

	mu    sync.RWMutex
	cache map[string]*Document
	// epoch is bumped by Reset, revs per id by Invalidate.
	// A load only fills the cache if neither moved while it ran.
	epoch uint64
	revs  map[string]uint64
}

// NewLibrary wraps a source
func NewLibrary(source Source, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		source: source,
		logger: logger,
		cache:  make(map[string]*Document),
		revs:   make(map[string]uint64),
	}
}

// Catalog returns the source's catalog
func (l *Library) Catalog() []Item {
	return l.source.Catalog()
}

// Load returns the document for id. Missing guides map to a placeholder
// document with StatusNotFound; other failures map to StatusFailed.
func (l *Library) Load(ctx context.Context, id string) Result {
	l.mu.RLock()
	doc, ok := l.cache[id]
	epoch, rev := l.epoch, l.revs[id]
	l.mu.RUnlock()
	if ok {
		return Result{ID: id, Document: doc, Status: StatusOK}
	}

	// Loads started before a Reset or Invalidate never share with later ones.
	key := id + "@" + strconv.FormatUint(epoch, 10) + "." + strconv.FormatUint(rev, 10)
	ch := l.group.DoChan(key, func() (interface{}, error) {
		// Detached so one caller's cancellation does not fail the others.
		doc, err := l.source.Load(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		if l.epoch == epoch && l.revs[id] == rev {
			l.cache[id] = doc
		}
		l.mu.Unlock()
		return doc, nil
	})

	select {
	case <-ctx.Done():
		return l.failed(id, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return l.failed(id, res.Err)
		}
		l.logger.Debug("document loaded", slog.String("id", id), slog.Bool("shared", res.Shared))
		return Result{ID: id, Document: res.Val.(*Document), Status: StatusOK}
	}
}

func (l *Library) failed(id string, err error) Result {
	if errors.Is(err, ErrNotFound) {
		l.logger.Info("document not found", slog.String("id", id))
		return Result{ID: id, Document: Placeholder(id), Status: StatusNotFound, Err: err}
	}
	l.logger.Warn("document load failed", slog.String("id", id), slog.String("error", err.Error()))
	return Result{ID: id, Document: unavailable(id, err), Status: StatusFailed, Err: err}
}

// Invalidate drops one cached document
func (l *Library) Invalidate(id string) {
	l.mu.Lock()
	delete(l.cache, id)
	l.revs[id]++
	l.mu.Unlock()
}

// Reset drops every cached document and refreshes the catalog when the source supports it
func (l *Library) Reset() error {
	l.mu.Lock()
	l.cache = make(map[string]*Document)
	l.revs = make(map[string]uint64)
	l.epoch++
	l.mu.Unlock()

	if r, ok := l.source.(refresher); ok {
		return r.Refresh()
	}
	return nil
}
